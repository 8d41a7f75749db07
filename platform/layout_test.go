package platform

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/pattyshack/wren/architecture"
)

func newTestArtifact() *Artifact {
	ctx := NewContext(Options{})
	ctx.Code.AppendBytes(0x48, 0xc7, 0xc0)
	ctx.Code.AppendDword(0xcccccccc)
	ctx.Code.AppendBytes(0x48, 0xc7, 0xc7)
	ctx.Code.AppendDword(0xcccccccc)

	hello := ctx.AddData([]byte("hello\x00")...)
	ctx.Relocations.Add(Relocation{
		Kind: DataRelocation,
		From: 3,
		To:   hello,
		Size: 6,
	})

	empty := ctx.EmptyString()
	ctx.Relocations.Add(Relocation{
		Kind: EmptyStringRelocation,
		From: 10,
		To:   empty,
	})

	return ctx.Artifact()
}

func TestResolve(t *testing.T) {
	artifact := newTestArtifact()

	base := architecture.Address(0x600000)
	code, err := artifact.Resolve(base)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if len(code) != len(artifact.Code) {
		t.Fatalf("unexpected code length: %d", len(code))
	}

	first := binary.LittleEndian.Uint32(code[3:])
	if first != 0x600000 {
		t.Errorf("unexpected first address: 0x%x", first)
	}

	second := binary.LittleEndian.Uint32(code[10:])
	if second != 0x600006 {
		t.Errorf("unexpected second address: 0x%x", second)
	}

	// The artifact itself is left untouched.
	if binary.LittleEndian.Uint32(artifact.Code[3:]) != 0xcccccccc {
		t.Errorf("resolve modified the artifact's code")
	}

	addresses := artifact.Addresses(base)
	if len(addresses) != 2 || addresses[0] != 0x600000 || addresses[1] != 0x600006 {
		t.Errorf("unexpected addresses: %v", addresses)
	}
}

func TestResolveErrors(t *testing.T) {
	type testCase struct {
		name string
		rel  Relocation
		base architecture.Address
	}

	for _, test := range []testCase{
		{"from past end", Relocation{Kind: DataRelocation, From: 11, To: 0, Size: 1}, 0},
		{"negative from", Relocation{Kind: DataRelocation, From: -1, To: 0, Size: 1}, 0},
		{"data past end", Relocation{Kind: DataRelocation, From: 3, To: 6, Size: 2}, 0},
		{"address overflow", Relocation{Kind: DataRelocation, From: 3, To: 0, Size: 1}, 0x80000000},
	} {
		artifact := newTestArtifact()
		artifact.Relocations = append(artifact.Relocations, test.rel)

		_, err := artifact.Resolve(test.base)
		relErr := &RelocationError{}
		if !errors.As(err, &relErr) {
			t.Errorf("%s: expected relocation error, found %v", test.name, err)
		}
	}
}

func TestEmptyStringAllocatedOnce(t *testing.T) {
	ctx := NewContext(Options{})
	ctx.AddData('x')

	first := ctx.EmptyString()
	second := ctx.EmptyString()
	if first != second || first != 1 {
		t.Errorf("unexpected empty string offsets: %s %s", first, second)
	}

	if ctx.Data.Len() != 2 {
		t.Errorf("unexpected data length: %d", ctx.Data.Len())
	}
}

func TestRelocationTableOrder(t *testing.T) {
	table := &RelocationTable{}
	for i := 0; i < 5; i++ {
		table.Add(Relocation{From: architecture.Offset(i * 10)})
	}

	entries := table.Entries()
	for i, entry := range entries {
		if entry.From != architecture.Offset(i*10) {
			t.Errorf("entry %d out of order: %s", i, entry)
		}
	}

	entries[0].From = 99
	if table.Entries()[0].From != 0 {
		t.Errorf("entries is not a copy")
	}
}
