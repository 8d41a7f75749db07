package platform

import (
	"github.com/pattyshack/gt/parseutil"

	"github.com/pattyshack/wren/architecture"
	"github.com/pattyshack/wren/ast"
)

type ArchitectureName string
type OperatingSystemName string

const (
	Amd64 = ArchitectureName("amd64")

	Linux = OperatingSystemName("linux")
)

// The capability table a code generator drives.  Every emission operation
// appends instruction bytes to ctx.Code, writes one trace line per emitted
// instruction, and returns the register that holds the result (when the
// operation produces one).
//
// Operation results always live in the first register operand, except for
// Imul and Idiv whose results live in the accumulator.
type Backend interface {
	ArchitectureName() ArchitectureName
	OperatingSystemName() OperatingSystemName

	ArchitectureRegisters() *architecture.RegisterSet

	SysCallSpec() SysCallSpec

	// dest := dest <op> src

	Add(ctx *Context, dest *architecture.Register, src *architecture.Register) *architecture.Register
	Sub(ctx *Context, dest *architecture.Register, src *architecture.Register) *architecture.Register
	And(ctx *Context, dest *architecture.Register, src *architecture.Register) *architecture.Register
	Or(ctx *Context, dest *architecture.Register, src *architecture.Register) *architecture.Register
	Xor(ctx *Context, dest *architecture.Register, src *architecture.Register) *architecture.Register

	// dest := src.  Moving a register onto itself emits nothing.
	Mov(ctx *Context, dest *architecture.Register, src *architecture.Register) *architecture.Register

	AddImmediate(ctx *Context, dest *architecture.Register, value int32) *architecture.Register
	SubImmediate(ctx *Context, dest *architecture.Register, value int32) *architecture.Register

	// Set flags according to a - b (Cmp) or a & b (Test).
	Cmp(ctx *Context, a *architecture.Register, b *architecture.Register)
	Test(ctx *Context, a *architecture.Register, b *architecture.Register)

	// accumulator := accumulator * src
	Imul(ctx *Context, src *architecture.Register) *architecture.Register

	// accumulator := accumulator / divisor (signed).
	Idiv(ctx *Context, divisor *architecture.Register) (*architecture.Register, error)

	// dest := dest % divisor (signed).
	Mod(ctx *Context, dest *architecture.Register, divisor *architecture.Register) (*architecture.Register, error)

	Neg(ctx *Context, register *architecture.Register) *architecture.Register
	Inc(ctx *Context, register *architecture.Register) *architecture.Register

	Push(ctx *Context, register *architecture.Register)
	Pop(ctx *Context, register *architecture.Register)

	// Materializes a sign-extended 32-bit immediate.  Returns the code offset
	// of the immediate's bytes.
	MovImmediate(ctx *Context, dest *architecture.Register, value int32) architecture.Offset

	// Materializes the address of a NUL-terminated copy of text in the data
	// segment.  The address is recorded in the relocation table.
	LoadString(ctx *Context, dest *architecture.Register, text string)

	// Frame slots are addressed as [frame pointer - slot].

	LoadLocal(ctx *Context, dest *architecture.Register, slot int32) *architecture.Register
	StoreLocal(ctx *Context, slot int32, src *architecture.Register)
	LoadLocalAddress(ctx *Context, dest *architecture.Register, slot int32) *architecture.Register

	// dest := [address]
	LoadIndirect(ctx *Context, dest *architecture.Register, address *architecture.Register) *architecture.Register

	// [address] := src
	StoreIndirect(ctx *Context, address *architecture.Register, src *architecture.Register)

	CallImmediate(ctx *Context, target architecture.Offset)
	CallRegister(ctx *Context, target *architecture.Register)
	Ret(ctx *Context)

	// Terminates the process with status held in the register.
	Exit(ctx *Context, status *architecture.Register)

	InvokeSysCall(
		ctx *Context,
		loc parseutil.Location,
		number ast.Expression,
		args []ast.Expression,
	) error

	Interrupt(ctx *Context, vector byte)
	Breakpoint(ctx *Context)
	Nop(ctx *Context)

	// Forward jumps are emitted by JumpBegin with a placeholder displacement
	// which JumpEnd patches to target JumpEnd's position.  Reverse jumps record
	// the target position in JumpBegin and are emitted by JumpEnd.
	JumpBegin(ctx *Context, kind architecture.JumpKind) (*BranchState, error)
	JumpEnd(ctx *Context, state *BranchState) error

	// Structured if (a op b) { ... } else { ... }.  op must be relational.
	IfBegin(
		ctx *Context,
		loc parseutil.Location,
		a *architecture.Register,
		op ast.BinaryOperator,
		b *architecture.Register,
	) (*IfBlock, error)
	IfElse(ctx *Context, block *IfBlock) error
	IfEnd(ctx *Context, block *IfBlock) error
}
