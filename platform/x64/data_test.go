package x64

import (
	"testing"

	"github.com/pattyshack/wren/architecture"
	"github.com/pattyshack/wren/emulator"
	"github.com/pattyshack/wren/platform"
)

func TestLoadStringRelocations(t *testing.T) {
	b := newTestBackend(t, Options{})
	ctx, _ := newTestContext()

	b.LoadString(ctx, rax, "hi")
	b.LoadString(ctx, r9, "")
	b.LoadString(ctx, rsi, "there")
	b.LoadString(ctx, rdi, "")

	expectBytes(
		t,
		"placeholder",
		ctx.Code.Bytes()[:7],
		[]byte{0x48, 0xc7, 0xc0, 0xcc, 0xcc, 0xcc, 0xcc})

	expected := []platform.Relocation{
		{Kind: platform.DataRelocation, From: 3, To: 0, Size: 3},
		{Kind: platform.EmptyStringRelocation, From: 10, To: 3, Size: 0},
		{Kind: platform.DataRelocation, From: 17, To: 4, Size: 6},
		{Kind: platform.EmptyStringRelocation, From: 24, To: 3, Size: 0},
	}

	entries := ctx.Relocations.Entries()
	if len(entries) != len(expected) {
		t.Fatalf("expected %d relocations, found %d", len(expected), len(entries))
	}

	for idx, entry := range entries {
		if entry != expected[idx] {
			t.Errorf("relocation %d: expected %s, found %s", idx, expected[idx], entry)
		}
	}

	expectBytes(t, "data", ctx.Data.Bytes(), []byte("hi\x00\x00there\x00"))
}

func TestLoadStringResolution(t *testing.T) {
	b := newTestBackend(t, Options{})
	ctx, _ := newTestContext()

	b.LoadString(ctx, rbx, "hello")
	b.LoadString(ctx, rcx, "")
	b.Ret(ctx)

	artifact := ctx.Artifact()
	dataBase := architecture.Address(0x610000)

	code, err := artifact.Resolve(dataBase)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	for idx, rel := range artifact.Relocations {
		value := uint32(code[rel.From]) |
			uint32(code[rel.From+1])<<8 |
			uint32(code[rel.From+2])<<16 |
			uint32(code[rel.From+3])<<24

		if architecture.Address(value) != dataBase+architecture.Address(rel.To) {
			t.Errorf("relocation %d: unexpected resolved address 0x%x", idx, value)
		}
	}

	machine, err := emulator.New(artifact, emulator.Config{DataBase: dataBase})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	_, err = machine.Run()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	str, err := machine.ReadString(architecture.Address(machine.Registers[emulator.RBX]))
	if err != nil || str != "hello" {
		t.Errorf("unexpected string %q (%v)", str, err)
	}

	str, err = machine.ReadString(architecture.Address(machine.Registers[emulator.RCX]))
	if err != nil || str != "" {
		t.Errorf("unexpected empty string %q (%v)", str, err)
	}
}
