package architecture

import (
	"testing"
)

func TestJumpKindFlags(t *testing.T) {
	kind := JumpLess | Reverse
	if !kind.IsReverse() {
		t.Errorf("%s should be reverse", kind)
	}
	if kind.Condition() != JumpLess {
		t.Errorf("condition = %s, want less", kind.Condition())
	}
	if !kind.IsValid() {
		t.Errorf("%s should be valid", kind)
	}

	if JumpKind(42).IsValid() {
		t.Errorf("unknown kind reported as valid")
	}
	if (JumpKind(42) | Reverse).IsValid() {
		t.Errorf("unknown reverse kind reported as valid")
	}
}

func TestJumpKindInverse(t *testing.T) {
	pairs := map[JumpKind]JumpKind{
		JumpEqual:          JumpNotEqual,
		JumpNotEqual:       JumpEqual,
		JumpLess:           JumpGreaterOrEqual,
		JumpGreaterOrEqual: JumpLess,
		JumpLessOrEqual:    JumpGreater,
		JumpGreater:        JumpLessOrEqual,
	}

	for kind, expected := range pairs {
		inverse, ok := kind.Inverse()
		if !ok || inverse != expected {
			t.Errorf("inverse(%s) = %s, %v; want %s", kind, inverse, ok, expected)
		}

		inverse, ok = (kind | Reverse).Inverse()
		if !ok || inverse != expected|Reverse {
			t.Errorf("inverse(reverse %s) lost the direction flag", kind)
		}
	}

	_, ok := JumpAlways.Inverse()
	if ok {
		t.Errorf("unconditional jump has no inverse")
	}
}
