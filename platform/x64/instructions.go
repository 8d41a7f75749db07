package x64

import (
	"encoding/binary"

	"github.com/pattyshack/wren/architecture"
	"github.com/pattyshack/wren/platform"
)

func (Backend) Add(
	ctx *platform.Context,
	dest *architecture.Register,
	src *architecture.Register,
) *architecture.Register {
	emit(ctx, registerRegisterInstruction(0x01, dest, src), "add %s, %s", dest, src)
	return dest
}

func (Backend) Sub(
	ctx *platform.Context,
	dest *architecture.Register,
	src *architecture.Register,
) *architecture.Register {
	emit(ctx, registerRegisterInstruction(0x29, dest, src), "sub %s, %s", dest, src)
	return dest
}

func (Backend) And(
	ctx *platform.Context,
	dest *architecture.Register,
	src *architecture.Register,
) *architecture.Register {
	emit(ctx, registerRegisterInstruction(0x21, dest, src), "and %s, %s", dest, src)
	return dest
}

func (Backend) Or(
	ctx *platform.Context,
	dest *architecture.Register,
	src *architecture.Register,
) *architecture.Register {
	emit(ctx, registerRegisterInstruction(0x09, dest, src), "or %s, %s", dest, src)
	return dest
}

func (Backend) Xor(
	ctx *platform.Context,
	dest *architecture.Register,
	src *architecture.Register,
) *architecture.Register {
	emit(ctx, registerRegisterInstruction(0x31, dest, src), "xor %s, %s", dest, src)
	return dest
}

func (Backend) Mov(
	ctx *platform.Context,
	dest *architecture.Register,
	src *architecture.Register,
) *architecture.Register {
	if dest == src {
		return dest
	}

	emit(ctx, registerRegisterInstruction(0x89, dest, src), "mov %s, %s", dest, src)
	return dest
}

// https://www.felixcloutier.com/x86/add (83 /0 ib, 81 /0 id)
func (Backend) AddImmediate(
	ctx *platform.Context,
	dest *architecture.Register,
	value int32,
) *architecture.Register {
	emit(ctx, registerImmediateInstruction(0, dest, value), "add %s, %d", dest, value)
	return dest
}

// https://www.felixcloutier.com/x86/sub (83 /5 ib, 81 /5 id)
func (Backend) SubImmediate(
	ctx *platform.Context,
	dest *architecture.Register,
	value int32,
) *architecture.Register {
	emit(ctx, registerImmediateInstruction(5, dest, value), "sub %s, %d", dest, value)
	return dest
}

func (Backend) Cmp(
	ctx *platform.Context,
	a *architecture.Register,
	b *architecture.Register,
) {
	emit(ctx, registerRegisterInstruction(0x39, a, b), "cmp %s, %s", a, b)
}

func (Backend) Test(
	ctx *platform.Context,
	a *architecture.Register,
	b *architecture.Register,
) {
	emit(ctx, registerRegisterInstruction(0x85, a, b), "test %s, %s", a, b)
}

// rdx:rax = rax * src
//
// NOTE: the one operand form clobbers rdx with the upper product bits.
func (Backend) Imul(
	ctx *platform.Context,
	src *architecture.Register,
) *architecture.Register {
	emit(ctx, unaryGroupInstruction(0xf7, 5, src), "imul %s", src)
	return rax
}

// rax = rdx:rax / divisor, rdx = rdx:rax % divisor, where rdx:rax is the
// sign extended rax.
//
// https://www.felixcloutier.com/x86/idiv
//
// 64-bit: REX.W + F7 /7
func (Backend) Idiv(
	ctx *platform.Context,
	divisor *architecture.Register,
) (
	*architecture.Register,
	error,
) {
	if divisor == rdx {
		return nil, &platform.UnsupportedOperandError{
			Operation: "idiv",
			Register:  divisor,
		}
	}

	emitSignedDivide(ctx, divisor)
	return rax, nil
}

func emitSignedDivide(ctx *platform.Context, divisor *architecture.Register) {
	emit(ctx, cqoInstruction, "cqo")
	emit(ctx, unaryGroupInstruction(0xf7, 7, divisor), "idiv %s", divisor)
}

// dest = dest % divisor.  The division is routed through rax; rax is
// preserved unless it is the destination.  rdx is always clobbered.
func (b Backend) Mod(
	ctx *platform.Context,
	dest *architecture.Register,
	divisor *architecture.Register,
) (
	*architecture.Register,
	error,
) {
	if divisor == rdx || (divisor == rax && dest != rax) {
		return nil, &platform.UnsupportedOperandError{
			Operation: "mod",
			Register:  divisor,
		}
	}

	if dest == rax {
		emitSignedDivide(ctx, divisor)
		b.Mov(ctx, rax, rdx)
		return rax, nil
	}

	b.Push(ctx, rax)
	b.Mov(ctx, rax, dest)
	emitSignedDivide(ctx, divisor)
	b.Mov(ctx, dest, rdx)
	b.Pop(ctx, rax)
	return dest, nil
}

// register = 0 - register, computed in a saved counter register.
func (b Backend) Neg(
	ctx *platform.Context,
	register *architecture.Register,
) *architecture.Register {
	counter := rcx
	if register == rcx {
		counter = rdx
	}

	b.Push(ctx, counter)
	b.Xor(ctx, counter, counter)
	b.Sub(ctx, counter, register)
	b.Mov(ctx, register, counter)
	b.Pop(ctx, counter)
	return register
}

// https://www.felixcloutier.com/x86/inc
//
// 64-bit: REX.W + FF /0
//
// NOTE: the single byte 40+r form is a rex prefix in 64-bit mode.
func (Backend) Inc(
	ctx *platform.Context,
	register *architecture.Register,
) *architecture.Register {
	emit(ctx, unaryGroupInstruction(0xff, 0, register), "inc %s", register)
	return register
}

// https://www.felixcloutier.com/x86/push
//
// 50+rd (REX.B for r8-r15)
func (Backend) Push(ctx *platform.Context, register *architecture.Register) {
	emit(ctx, opCodeRegisterInstruction(0x50, register), "push %s", register)
}

// https://www.felixcloutier.com/x86/pop
//
// 58+rd (REX.B for r8-r15)
func (Backend) Pop(ctx *platform.Context, register *architecture.Register) {
	emit(ctx, opCodeRegisterInstruction(0x58, register), "pop %s", register)
}

func (Backend) MovImmediate(
	ctx *platform.Context,
	dest *architecture.Register,
	value int32,
) architecture.Offset {
	instruction := movImmediateInstruction(dest, value)
	start := emit(ctx, instruction, "mov %s, %d", dest, value)
	return start + architecture.Offset(len(instruction)-4)
}

// dest = [rbp - slot]
//
// https://www.felixcloutier.com/x86/mov (REX.W + 8B /r)
func (Backend) LoadLocal(
	ctx *platform.Context,
	dest *architecture.Register,
	slot int32,
) *architecture.Register {
	emit(
		ctx,
		indirectAddressInstruction([]byte{0x8b}, dest.Encoding, rbp.Encoding, -slot, true),
		"mov %s, [rbp - %d]",
		dest,
		slot)
	return dest
}

// [rbp - slot] = src
//
// https://www.felixcloutier.com/x86/mov (REX.W + 89 /r)
func (Backend) StoreLocal(
	ctx *platform.Context,
	slot int32,
	src *architecture.Register,
) {
	emit(
		ctx,
		indirectAddressInstruction([]byte{0x89}, src.Encoding, rbp.Encoding, -slot, true),
		"mov [rbp - %d], %s",
		slot,
		src)
}

// dest = rbp - slot
//
// https://www.felixcloutier.com/x86/lea (REX.W + 8D /r)
func (Backend) LoadLocalAddress(
	ctx *platform.Context,
	dest *architecture.Register,
	slot int32,
) *architecture.Register {
	emit(
		ctx,
		indirectAddressInstruction([]byte{0x8d}, dest.Encoding, rbp.Encoding, -slot, true),
		"lea %s, [rbp - %d]",
		dest,
		slot)
	return dest
}

func (Backend) LoadIndirect(
	ctx *platform.Context,
	dest *architecture.Register,
	address *architecture.Register,
) *architecture.Register {
	emit(
		ctx,
		indirectAddressInstruction([]byte{0x8b}, dest.Encoding, address.Encoding, 0, false),
		"mov %s, [%s]",
		dest,
		address)
	return dest
}

func (Backend) StoreIndirect(
	ctx *platform.Context,
	address *architecture.Register,
	src *architecture.Register,
) {
	emit(
		ctx,
		indirectAddressInstruction([]byte{0x89}, src.Encoding, address.Encoding, 0, false),
		"mov [%s], %s",
		address,
		src)
}

// https://www.felixcloutier.com/x86/call
//
// call rel32: E8 cd, where the displacement is relative to the end of the
// call instruction.
func (Backend) CallImmediate(ctx *platform.Context, target architecture.Offset) {
	next := ctx.Code.Position() + 5
	rel := int32(target - next)

	instruction := binary.LittleEndian.AppendUint32([]byte{0xe8}, uint32(rel))
	emit(ctx, instruction, "call %s", target)
}

func (Backend) CallRegister(ctx *platform.Context, target *architecture.Register) {
	emit(ctx, callRegisterInstruction(target), "call %s", target)
}

func (Backend) Ret(ctx *platform.Context) {
	emit(ctx, retInstruction, "ret")
}

// Terminates the process via the exit syscall.  status is moved into the
// first argument register before the syscall number is loaded, so any
// register may hold the status.
func (b Backend) Exit(ctx *platform.Context, status *architecture.Register) {
	b.Mov(ctx, sysCallArgumentRegisters[0], status)
	b.MovImmediate(ctx, rax, b.sysCallSpec.ExitNumber())
	emit(ctx, syscallInstruction, "syscall")
}

// https://www.felixcloutier.com/x86/intn:into:int3:int1
//
// int imm8: CD ib
func (Backend) Interrupt(ctx *platform.Context, vector byte) {
	emit(ctx, []byte{0xcd, vector}, "int 0x%x", vector)
}

func (Backend) Breakpoint(ctx *platform.Context) {
	emit(ctx, int3Instruction, "int3")
}

func (Backend) Nop(ctx *platform.Context) {
	emit(ctx, nopInstruction, "nop")
}
