package x64

import (
	"github.com/pattyshack/gt/parseutil"
	"github.com/samber/lo"

	"github.com/pattyshack/wren/ast"
	"github.com/pattyshack/wren/platform"
)

// Resources:
//
// x86-64 call convention: https://refspecs.linuxfoundation.org/elf/x86_64-abi-0.99.pdf
//
// Every value is staged on the stack before any argument register is
// written, since evaluating a later argument may clobber earlier registers:
//
//	push number
//	push 0          (once per unused argument register)
//	push arg[n-1]
//	...
//	push arg[0]
//	pop rdi; pop rsi; pop rdx; pop r10; pop r8; pop r9
//	pop rax
//	syscall
//
// rax, rcx, r11 and every argument register are clobbered.
//
// Arity errors are reported before any byte is emitted.  An evaluator error
// leaves the partially emitted staging sequence in ctx, after which the
// context must be discarded.
func (b Backend) InvokeSysCall(
	ctx *platform.Context,
	loc parseutil.Location,
	number ast.Expression,
	args []ast.Expression,
) error {
	maxArgs := b.sysCallSpec.MaxNumberOfArgs()
	if len(sysCallArgumentRegisters) < maxArgs {
		maxArgs = len(sysCallArgumentRegisters)
	}

	if len(args) == 0 || len(args) > maxArgs {
		return &platform.SysCallArityError{
			NumArgs:  len(args),
			Max:      maxArgs,
			Location: loc,
		}
	}

	err := ctx.Evaluate(rax, number)
	if err != nil {
		return err
	}
	b.Push(ctx, rax)

	for i := len(args); i < maxArgs; i++ {
		b.Xor(ctx, rax, rax)
		b.Push(ctx, rax)
	}

	reversed := lo.Reverse(append([]ast.Expression{}, args...))
	for _, arg := range reversed {
		err := ctx.Evaluate(rax, arg)
		if err != nil {
			return err
		}
		b.Push(ctx, rax)
	}

	for _, register := range sysCallArgumentRegisters[:maxArgs] {
		b.Pop(ctx, register)
	}

	b.Pop(ctx, rax)
	emit(ctx, syscallInstruction, "syscall")
	return nil
}
