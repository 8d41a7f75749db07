package architecture

import (
	"fmt"
)

// A relational jump condition, optionally combined with the Reverse direction
// flag.  Forward jumps target a position that is not yet known when the jump
// is opened; reverse jumps target a position recorded before the jump
// instruction is emitted (i.e., loop back-edges).
type JumpKind uint8

const (
	JumpAlways = JumpKind(iota)
	JumpEqual
	JumpNotEqual
	JumpLess
	JumpLessOrEqual
	JumpGreater
	JumpGreaterOrEqual

	numJumpConditions

	Reverse = JumpKind(0x80)
)

func (kind JumpKind) Condition() JumpKind {
	return kind &^ Reverse
}

func (kind JumpKind) IsReverse() bool {
	return kind&Reverse == Reverse
}

func (kind JumpKind) IsValid() bool {
	return kind.Condition() < numJumpConditions
}

// The condition that holds exactly when kind's condition does not.  The
// unconditional jump has no inverse.
func (kind JumpKind) Inverse() (JumpKind, bool) {
	var inverse JumpKind
	switch kind.Condition() {
	case JumpEqual:
		inverse = JumpNotEqual
	case JumpNotEqual:
		inverse = JumpEqual
	case JumpLess:
		inverse = JumpGreaterOrEqual
	case JumpGreaterOrEqual:
		inverse = JumpLess
	case JumpLessOrEqual:
		inverse = JumpGreater
	case JumpGreater:
		inverse = JumpLessOrEqual
	default:
		return 0, false
	}

	return inverse | (kind & Reverse), true
}

func (kind JumpKind) String() string {
	name := ""
	switch kind.Condition() {
	case JumpAlways:
		name = "always"
	case JumpEqual:
		name = "equal"
	case JumpNotEqual:
		name = "not-equal"
	case JumpLess:
		name = "less"
	case JumpLessOrEqual:
		name = "less-or-equal"
	case JumpGreater:
		name = "greater"
	case JumpGreaterOrEqual:
		name = "greater-or-equal"
	default:
		name = fmt.Sprintf("unknown(%d)", uint8(kind.Condition()))
	}

	if kind.IsReverse() {
		return "reverse " + name
	}
	return name
}
