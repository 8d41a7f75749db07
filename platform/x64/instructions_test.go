package x64

import (
	"errors"
	"strings"
	"testing"

	"github.com/pattyshack/gt/parseutil"
	"golang.org/x/arch/x86/x86asm"

	"github.com/pattyshack/wren/architecture"
	"github.com/pattyshack/wren/ast"
	"github.com/pattyshack/wren/emulator"
	"github.com/pattyshack/wren/platform"
)

func TestInstructionEncoding(t *testing.T) {
	b := newTestBackend(t, Options{})

	type testCase struct {
		name     string
		emit     func(*platform.Context)
		expected []byte
	}

	for _, test := range []testCase{
		{"add rax, rbx", func(ctx *platform.Context) { b.Add(ctx, rax, rbx) }, []byte{0x48, 0x01, 0xd8}},
		{"sub rcx, rdx", func(ctx *platform.Context) { b.Sub(ctx, rcx, rdx) }, []byte{0x48, 0x29, 0xd1}},
		{"and rax, r8", func(ctx *platform.Context) { b.And(ctx, rax, r8) }, []byte{0x4c, 0x21, 0xc0}},
		{"or r9, rax", func(ctx *platform.Context) { b.Or(ctx, r9, rax) }, []byte{0x49, 0x09, 0xc1}},
		{"xor rax, rax", func(ctx *platform.Context) { b.Xor(ctx, rax, rax) }, []byte{0x48, 0x31, 0xc0}},
		{"mov rdi, rax", func(ctx *platform.Context) { b.Mov(ctx, rdi, rax) }, []byte{0x48, 0x89, 0xc7}},
		{"mov rax, rax", func(ctx *platform.Context) { b.Mov(ctx, rax, rax) }, []byte{}},
		{"cmp rax, rcx", func(ctx *platform.Context) { b.Cmp(ctx, rax, rcx) }, []byte{0x48, 0x39, 0xc8}},
		{"test rdx, rdx", func(ctx *platform.Context) { b.Test(ctx, rdx, rdx) }, []byte{0x48, 0x85, 0xd2}},
		{"add rsp, 16", func(ctx *platform.Context) { b.AddImmediate(ctx, rsp, 16) }, []byte{0x48, 0x83, 0xc4, 0x10}},
		{"add rbx, 1000", func(ctx *platform.Context) { b.AddImmediate(ctx, rbx, 1000) }, []byte{0x48, 0x81, 0xc3, 0xe8, 0x03, 0x00, 0x00}},
		{"sub rsp, 16", func(ctx *platform.Context) { b.SubImmediate(ctx, rsp, 16) }, []byte{0x48, 0x83, 0xec, 0x10}},
		{"sub r12, -200", func(ctx *platform.Context) { b.SubImmediate(ctx, r12, -200) }, []byte{0x49, 0x81, 0xec, 0x38, 0xff, 0xff, 0xff}},
		{"imul rcx", func(ctx *platform.Context) { b.Imul(ctx, rcx) }, []byte{0x48, 0xf7, 0xe9}},
		{"inc rax", func(ctx *platform.Context) { b.Inc(ctx, rax) }, []byte{0x48, 0xff, 0xc0}},
		{"inc r15", func(ctx *platform.Context) { b.Inc(ctx, r15) }, []byte{0x49, 0xff, 0xc7}},
		{"push rax", func(ctx *platform.Context) { b.Push(ctx, rax) }, []byte{0x50}},
		{"push r8", func(ctx *platform.Context) { b.Push(ctx, r8) }, []byte{0x41, 0x50}},
		{"pop rbp", func(ctx *platform.Context) { b.Pop(ctx, rbp) }, []byte{0x5d}},
		{"pop r15", func(ctx *platform.Context) { b.Pop(ctx, r15) }, []byte{0x41, 0x5f}},
		{"mov rax, 60", func(ctx *platform.Context) { b.MovImmediate(ctx, rax, 60) }, []byte{0x48, 0xc7, 0xc0, 0x3c, 0x00, 0x00, 0x00}},
		{"mov r10, -1", func(ctx *platform.Context) { b.MovImmediate(ctx, r10, -1) }, []byte{0x49, 0xc7, 0xc2, 0xff, 0xff, 0xff, 0xff}},
		{"mov rax, [rbp - 8]", func(ctx *platform.Context) { b.LoadLocal(ctx, rax, 8) }, []byte{0x48, 0x8b, 0x85, 0xf8, 0xff, 0xff, 0xff}},
		{"mov [rbp - 16], rcx", func(ctx *platform.Context) { b.StoreLocal(ctx, 16, rcx) }, []byte{0x48, 0x89, 0x8d, 0xf0, 0xff, 0xff, 0xff}},
		{"lea rdi, [rbp - 8]", func(ctx *platform.Context) { b.LoadLocalAddress(ctx, rdi, 8) }, []byte{0x48, 0x8d, 0xbd, 0xf8, 0xff, 0xff, 0xff}},
		{"mov rax, [rbx]", func(ctx *platform.Context) { b.LoadIndirect(ctx, rax, rbx) }, []byte{0x48, 0x8b, 0x03}},
		{"mov rax, [rsp]", func(ctx *platform.Context) { b.LoadIndirect(ctx, rax, rsp) }, []byte{0x48, 0x8b, 0x04, 0x24}},
		{"mov rax, [rbp]", func(ctx *platform.Context) { b.LoadIndirect(ctx, rax, rbp) }, []byte{0x48, 0x8b, 0x45, 0x00}},
		{"mov r9, [r13]", func(ctx *platform.Context) { b.LoadIndirect(ctx, r9, r13) }, []byte{0x4d, 0x8b, 0x4d, 0x00}},
		{"mov [r12], rax", func(ctx *platform.Context) { b.StoreIndirect(ctx, r12, rax) }, []byte{0x49, 0x89, 0x04, 0x24}},
		{"call rax", func(ctx *platform.Context) { b.CallRegister(ctx, rax) }, []byte{0xff, 0xd0}},
		{"call r11", func(ctx *platform.Context) { b.CallRegister(ctx, r11) }, []byte{0x41, 0xff, 0xd3}},
		{"call +0x0", func(ctx *platform.Context) { b.CallImmediate(ctx, 0) }, []byte{0xe8, 0xfb, 0xff, 0xff, 0xff}},
		{"ret", func(ctx *platform.Context) { b.Ret(ctx) }, []byte{0xc3}},
		{"int3", func(ctx *platform.Context) { b.Breakpoint(ctx) }, []byte{0xcc}},
		{"nop", func(ctx *platform.Context) { b.Nop(ctx) }, []byte{0x90}},
		{"int 0x80", func(ctx *platform.Context) { b.Interrupt(ctx, 0x80) }, []byte{0xcd, 0x80}},
		{
			"neg rax",
			func(ctx *platform.Context) { b.Neg(ctx, rax) },
			[]byte{
				0x51,             // push rcx
				0x48, 0x31, 0xc9, // xor rcx, rcx
				0x48, 0x29, 0xc1, // sub rcx, rax
				0x48, 0x89, 0xc8, // mov rax, rcx
				0x59, // pop rcx
			},
		},
		{
			"neg rcx",
			func(ctx *platform.Context) { b.Neg(ctx, rcx) },
			[]byte{
				0x52,             // push rdx
				0x48, 0x31, 0xd2, // xor rdx, rdx
				0x48, 0x29, 0xca, // sub rdx, rcx
				0x48, 0x89, 0xd1, // mov rcx, rdx
				0x5a, // pop rdx
			},
		},
		{
			"exit rax",
			func(ctx *platform.Context) { b.Exit(ctx, rax) },
			[]byte{
				0x48, 0x89, 0xc7, // mov rdi, rax
				0x48, 0xc7, 0xc0, 0x3c, 0x00, 0x00, 0x00, // mov rax, 60
				0x0f, 0x05, // syscall
			},
		},
		{
			"exit rdi",
			func(ctx *platform.Context) { b.Exit(ctx, rdi) },
			[]byte{
				0x48, 0xc7, 0xc0, 0x3c, 0x00, 0x00, 0x00, // mov rax, 60
				0x0f, 0x05, // syscall
			},
		},
	} {
		ctx, trace := newTestContext()
		test.emit(ctx)
		expectBytes(t, test.name, ctx.Code.Bytes(), test.expected)

		lines := traceLines(trace)
		if len(test.expected) == 0 {
			if len(lines) != 0 {
				t.Errorf("%s: unexpected trace %q", test.name, lines)
			}
			continue
		}

		if strings.HasPrefix(test.name, "neg") ||
			strings.HasPrefix(test.name, "exit") {
			// multi-instruction sequences
			continue
		}

		if len(lines) != 1 || lines[0] != test.name {
			t.Errorf("%s: unexpected trace %q", test.name, lines)
		}
	}
}

func TestMovImmediateOffset(t *testing.T) {
	b := newTestBackend(t, Options{})
	ctx, _ := newTestContext()

	b.Nop(ctx)
	offset := b.MovImmediate(ctx, r9, 0x12345678)
	if offset != 4 {
		t.Errorf("unexpected immediate offset: %s", offset)
	}

	value, err := ctx.Code.ReadDword(offset)
	if err != nil || value != 0x12345678 {
		t.Errorf("unexpected immediate: 0x%x (%v)", value, err)
	}
}

func TestDivisionOperandRestrictions(t *testing.T) {
	b := newTestBackend(t, Options{})

	ctx, _ := newTestContext()
	_, err := b.Idiv(ctx, rdx)
	operandErr := &platform.UnsupportedOperandError{}
	if !errors.As(err, &operandErr) {
		t.Errorf("expected unsupported operand error, found %v", err)
	}

	_, err = b.Mod(ctx, rbx, rdx)
	if !errors.As(err, &operandErr) {
		t.Errorf("expected unsupported operand error, found %v", err)
	}

	_, err = b.Mod(ctx, rbx, rax)
	if !errors.As(err, &operandErr) {
		t.Errorf("expected unsupported operand error, found %v", err)
	}

	if ctx.Code.Len() != 0 {
		t.Errorf("rejected operations emitted %d bytes", ctx.Code.Len())
	}

	result, err := b.Idiv(ctx, rcx)
	if err != nil || result != rax {
		t.Errorf("unexpected idiv result: %v %v", result, err)
	}
	expectBytes(t, "idiv rcx", ctx.Code.Bytes(), []byte{0x48, 0x99, 0x48, 0xf7, 0xf9})
}

func TestArithmeticExecution(t *testing.T) {
	b := newTestBackend(t, Options{})

	type testCase struct {
		name     string
		a        int32
		c        int32
		emit     func(*platform.Context)
		expected int64
		register int
	}

	for _, test := range []testCase{
		{"add", 40, 2, func(ctx *platform.Context) { b.Add(ctx, rbx, rcx) }, 42, 3},
		{"sub", 2, 44, func(ctx *platform.Context) { b.Sub(ctx, rbx, rcx) }, -42, 3},
		{"and", 0x3c, 0x0f, func(ctx *platform.Context) { b.And(ctx, rbx, rcx) }, 0x0c, 3},
		{"or", 0x30, 0x0a, func(ctx *platform.Context) { b.Or(ctx, rbx, rcx) }, 0x3a, 3},
		{"xor", 0x3c, 0x0f, func(ctx *platform.Context) { b.Xor(ctx, rbx, rcx) }, 0x33, 3},
		{"neg", 42, 0, func(ctx *platform.Context) { b.Neg(ctx, rbx) }, -42, 3},
		{"neg rcx", 0, 7, func(ctx *platform.Context) { b.Neg(ctx, rcx) }, -7, 1},
		{"inc", 41, 0, func(ctx *platform.Context) { b.Inc(ctx, rbx) }, 42, 3},
		{"add imm", 40, 0, func(ctx *platform.Context) { b.AddImmediate(ctx, rbx, 2) }, 42, 3},
		{"sub imm32", 0, 0, func(ctx *platform.Context) { b.SubImmediate(ctx, rbx, 100000) }, -100000, 3},
		{
			"imul",
			-6, 7,
			func(ctx *platform.Context) {
				b.Mov(ctx, rax, rbx)
				b.Imul(ctx, rcx)
			},
			-42, 0,
		},
		{
			"idiv",
			-85, 2,
			func(ctx *platform.Context) {
				b.Mov(ctx, rax, rbx)
				_, _ = b.Idiv(ctx, rcx)
			},
			-42, 0,
		},
		{
			"mod rbx",
			-85, 2,
			func(ctx *platform.Context) { _, _ = b.Mod(ctx, rbx, rcx) },
			-1, 3,
		},
		{
			"mod rax",
			47, 5,
			func(ctx *platform.Context) {
				b.Mov(ctx, rax, rbx)
				_, _ = b.Mod(ctx, rax, rcx)
			},
			2, 0,
		},
	} {
		ctx, _ := newTestContext()
		b.MovImmediate(ctx, rbx, test.a)
		b.MovImmediate(ctx, rcx, test.c)
		test.emit(ctx)
		b.Ret(ctx)

		machine, _ := run(t, ctx)
		result := int64(machine.Registers[test.register])
		if result != test.expected {
			t.Errorf("%s: expected %d, found %d", test.name, test.expected, result)
		}
	}
}

func TestModPreservesAccumulator(t *testing.T) {
	b := newTestBackend(t, Options{})
	ctx, _ := newTestContext()

	b.MovImmediate(ctx, rax, 1234)
	b.MovImmediate(ctx, rbx, 17)
	b.MovImmediate(ctx, rcx, 5)
	_, err := b.Mod(ctx, rbx, rcx)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	b.Ret(ctx)

	machine, _ := run(t, ctx)
	if machine.Registers[emulator.RAX] != 1234 {
		t.Errorf("rax clobbered: %d", machine.Registers[emulator.RAX])
	}

	if machine.Registers[emulator.RBX] != 2 {
		t.Errorf("unexpected remainder: %d", machine.Registers[emulator.RBX])
	}
}

func TestMemoryExecution(t *testing.T) {
	b := newTestBackend(t, Options{})
	ctx, _ := newTestContext()

	b.Push(ctx, rbp)
	b.Mov(ctx, rbp, rsp)
	b.SubImmediate(ctx, rsp, 16)

	b.MovImmediate(ctx, rax, 7)
	b.StoreLocal(ctx, 8, rax)
	b.LoadLocalAddress(ctx, r13, 8)
	b.MovImmediate(ctx, rcx, 35)
	b.LoadIndirect(ctx, r12, r13)
	b.Add(ctx, r12, rcx)
	b.StoreIndirect(ctx, r13, r12)
	b.LoadLocal(ctx, rax, 8)

	b.Mov(ctx, rsp, rbp)
	b.Pop(ctx, rbp)
	b.Ret(ctx)

	_, result := run(t, ctx)
	if result.ExitStatus != 42 {
		t.Errorf("expected 42, found %d", result.ExitStatus)
	}
}

func TestCallExecution(t *testing.T) {
	b := newTestBackend(t, Options{})
	ctx, _ := newTestContext()

	// entry: call func; add rax, 2; ret
	// func:  mov rax, 40; ret
	b.CallImmediate(ctx, 11)
	b.AddImmediate(ctx, rax, 2)
	b.Ret(ctx)
	b.Nop(ctx)

	if ctx.Code.Position() != 11 {
		t.Fatalf("unexpected function offset: %s", ctx.Code.Position())
	}

	b.MovImmediate(ctx, rax, 40)
	b.Ret(ctx)

	_, result := run(t, ctx)
	if result.ExitStatus != 42 {
		t.Errorf("expected 42, found %d", result.ExitStatus)
	}
}

func TestExitExecution(t *testing.T) {
	b := newTestBackend(t, Options{})

	for _, register := range RegisterSet.General {
		ctx, _ := newTestContext()
		b.MovImmediate(ctx, register, 42)
		b.Exit(ctx, register)

		_, result := run(t, ctx)
		if result.ExitStatus != 42 {
			t.Errorf("exit %s: expected 42, found %d", register, result.ExitStatus)
		}

		if len(result.SysCalls) != 1 || result.SysCalls[0].Number != 60 {
			t.Errorf("exit %s: unexpected syscalls %v", register, result.SysCalls)
		}
	}
}

func TestTraceMatchesDecoder(t *testing.T) {
	b := newTestBackend(t, Options{})
	ctx, trace := newTestContext()

	b.Push(ctx, rbp)
	b.Mov(ctx, rbp, rsp)
	b.SubImmediate(ctx, rsp, 32)
	b.MovImmediate(ctx, rax, 3)
	b.MovImmediate(ctx, r8, -3)
	b.Add(ctx, rax, r8)
	b.Sub(ctx, rax, r9)
	b.And(ctx, r10, r11)
	b.Or(ctx, r12, r13)
	b.Xor(ctx, r14, r15)
	b.Cmp(ctx, rax, rcx)
	b.Test(ctx, rax, rax)
	b.Imul(ctx, rbx)
	_, _ = b.Idiv(ctx, rbx)
	_, _ = b.Mod(ctx, rsi, rdi)
	b.Neg(ctx, rdx)
	b.Inc(ctx, r9)
	b.StoreLocal(ctx, 8, rbx)
	b.LoadLocal(ctx, rdi, 8)
	b.LoadLocalAddress(ctx, rsi, 16)
	b.LoadIndirect(ctx, rdx, rsp)
	b.StoreIndirect(ctx, rbp, rdx)
	b.LoadString(ctx, rsi, "hello")
	b.CallImmediate(ctx, 0)
	b.CallRegister(ctx, r14)
	b.Interrupt(ctx, 0x80)
	b.Nop(ctx)

	loop, _ := b.JumpBegin(ctx, architecture.Reverse|architecture.JumpLess)
	forward, _ := b.JumpBegin(ctx, architecture.JumpGreater)
	b.Nop(ctx)
	_ = b.JumpEnd(ctx, forward)
	_ = b.JumpEnd(ctx, loop)

	block, _ := b.IfBegin(ctx, parseutil.Location{}, rax, ast.NotEqual, rcx)
	_ = b.IfElse(ctx, block)
	_ = b.IfEnd(ctx, block)

	b.Exit(ctx, rbx)
	b.Ret(ctx)

	code := ctx.Code.Bytes()
	lines := traceLines(trace)

	idx := 0
	for pos := 0; pos < len(code); idx++ {
		inst, err := x86asm.Decode(code[pos:], 64)
		if err != nil {
			t.Fatalf("cannot decode at %d: %s", pos, err)
		}

		if idx >= len(lines) {
			t.Fatalf("more instructions than trace lines (%d)", len(lines))
		}

		mnemonic := strings.ToUpper(strings.Fields(lines[idx])[0])
		if mnemonic != inst.Op.String() {
			t.Errorf(
				"instruction %d at %d: trace %q, decoded %s",
				idx,
				pos,
				lines[idx],
				x86asm.IntelSyntax(inst, uint64(pos), nil))
		}

		pos += inst.Len
	}

	if idx != len(lines) {
		t.Errorf("decoded %d instructions, traced %d", idx, len(lines))
	}
}
