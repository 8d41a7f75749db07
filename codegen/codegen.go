package codegen

import (
	"fmt"
	"io"

	"github.com/pattyshack/gt/parseutil"

	"github.com/pattyshack/wren/analyzer"
	"github.com/pattyshack/wren/architecture"
	"github.com/pattyshack/wren/ast"
	"github.com/pattyshack/wren/platform"
)

type Options struct {
	// When non-nil, the backend's instruction trace is written here.
	Trace io.Writer
}

// Walks a program and drives the backend.  Every expression is evaluated into
// the accumulator; binary operations stage the left operand on the stack
// while the right operand is evaluated, then move the right operand into the
// scratch register.
type generator struct {
	backend   platform.Backend
	registers *architecture.RegisterSet
	frame     *architecture.StackFrame

	// One entry per open structured if.  The innermost block is last.
	ifBlocks []*platform.IfBlock
}

// Analyzes and generates the program.  Errors are reported to the emitter;
// the returned artifact is nil whenever the emitter has errors.
func Compile(
	program *ast.Program,
	backend platform.Backend,
	emitter *parseutil.Emitter,
	options Options,
) *platform.Artifact {
	frame := analyzer.Analyze(program, emitter)
	if emitter.HasErrors() {
		return nil
	}

	artifact, err := Generate(program, frame, backend, options)
	if err != nil {
		emitter.EmitErrors(err)
		return nil
	}

	return artifact
}

// Generates code for an analyzed program.  Generation stops at the first
// backend error.
func Generate(
	program *ast.Program,
	frame *architecture.StackFrame,
	backend platform.Backend,
	options Options,
) (
	*platform.Artifact,
	error,
) {
	gen := &generator{
		backend:   backend,
		registers: backend.ArchitectureRegisters(),
		frame:     frame,
	}

	ctx := platform.NewContext(platform.Options{
		Trace:     options.Trace,
		Evaluator: gen.evaluate,
	})

	gen.prologue(ctx)

	err := gen.statements(ctx, program.Statements)
	if err != nil {
		return nil, err
	}

	if len(gen.ifBlocks) != 0 {
		panic("should never happen")
	}

	// Falling off the end of the program exits with status 0.
	acc := gen.registers.Accumulator
	backend.MovImmediate(ctx, acc, 0)
	backend.Exit(ctx, acc)

	return ctx.Artifact(), nil
}

func (gen *generator) prologue(ctx *platform.Context) {
	fp := gen.registers.FramePointer
	gen.backend.Push(ctx, fp)
	gen.backend.Mov(ctx, fp, gen.registers.StackPointer)

	size := gen.frame.Size()
	if size > 0 {
		gen.backend.SubImmediate(ctx, gen.registers.StackPointer, size)
	}
}

func (gen *generator) slot(name string) int32 {
	offset, ok := gen.frame.Offset(name)
	if !ok {
		panic("should never happen")
	}
	return offset
}

func (gen *generator) statements(
	ctx *platform.Context,
	statements []ast.Statement,
) error {
	for _, statement := range statements {
		err := gen.statement(ctx, statement)
		if err != nil {
			return err
		}
	}
	return nil
}

func (gen *generator) statement(
	ctx *platform.Context,
	statement ast.Statement,
) error {
	acc := gen.registers.Accumulator

	switch stmt := statement.(type) {
	case *ast.Assignment:
		err := gen.accumulate(ctx, stmt.Value)
		if err != nil {
			return err
		}
		gen.backend.StoreLocal(ctx, gen.slot(stmt.Name), acc)
		return nil
	case *ast.ExpressionStatement:
		return gen.accumulate(ctx, stmt.Expression)
	case *ast.Exit:
		err := gen.accumulate(ctx, stmt.Value)
		if err != nil {
			return err
		}
		gen.backend.Exit(ctx, acc)
		return nil
	case *ast.If:
		return gen.ifStatement(ctx, stmt)
	case *ast.While:
		return gen.whileStatement(ctx, stmt)
	case *ast.DoWhile:
		return gen.doWhileStatement(ctx, stmt)
	}

	panic(fmt.Sprintf("unhandled statement: %T", statement))
}

// Leaves cond's left operand in the accumulator and right operand in the
// scratch register.
func (gen *generator) operands(
	ctx *platform.Context,
	binary *ast.BinaryExpression,
) error {
	acc := gen.registers.Accumulator
	scratch := gen.registers.Scratch

	err := gen.accumulate(ctx, binary.Left)
	if err != nil {
		return err
	}
	gen.backend.Push(ctx, acc)

	err = gen.accumulate(ctx, binary.Right)
	if err != nil {
		return err
	}
	gen.backend.Mov(ctx, scratch, acc)
	gen.backend.Pop(ctx, acc)
	return nil
}

func (gen *generator) beginIf(
	ctx *platform.Context,
	cond *ast.BinaryExpression,
) error {
	err := gen.operands(ctx, cond)
	if err != nil {
		return err
	}

	block, err := gen.backend.IfBegin(
		ctx,
		cond.Loc(),
		gen.registers.Accumulator,
		cond.Operator,
		gen.registers.Scratch)
	if err != nil {
		return err
	}

	gen.ifBlocks = append(gen.ifBlocks, block)
	return nil
}

func (gen *generator) currentIf() *platform.IfBlock {
	return gen.ifBlocks[len(gen.ifBlocks)-1]
}

func (gen *generator) endIf(ctx *platform.Context) error {
	err := gen.backend.IfEnd(ctx, gen.currentIf())
	if err != nil {
		return err
	}

	gen.ifBlocks = gen.ifBlocks[:len(gen.ifBlocks)-1]
	return nil
}

func (gen *generator) ifStatement(ctx *platform.Context, stmt *ast.If) error {
	err := gen.beginIf(ctx, stmt.Condition)
	if err != nil {
		return err
	}

	err = gen.statements(ctx, stmt.Then)
	if err != nil {
		return err
	}

	if len(stmt.Else) > 0 {
		err = gen.backend.IfElse(ctx, gen.currentIf())
		if err != nil {
			return err
		}

		err = gen.statements(ctx, stmt.Else)
		if err != nil {
			return err
		}
	}

	return gen.endIf(ctx)
}

// loop:
//
//	if (cond) {
//	  body
//	  jmp loop
//	}
func (gen *generator) whileStatement(
	ctx *platform.Context,
	stmt *ast.While,
) error {
	loop, err := gen.backend.JumpBegin(
		ctx,
		architecture.Reverse|architecture.JumpAlways)
	if err != nil {
		return err
	}

	err = gen.beginIf(ctx, stmt.Condition)
	if err != nil {
		return err
	}

	err = gen.statements(ctx, stmt.Body)
	if err != nil {
		return err
	}

	err = gen.backend.JumpEnd(ctx, loop)
	if err != nil {
		return err
	}

	return gen.endIf(ctx)
}

// loop:
//
//	body
//	cmp left, right
//	j<cond> loop
func (gen *generator) doWhileStatement(
	ctx *platform.Context,
	stmt *ast.DoWhile,
) error {
	kind, ok := platform.RelationalJumpKind(stmt.Condition.Operator)
	if !ok {
		return &platform.UnsupportedOperatorError{
			Operator: stmt.Condition.Operator,
			Location: stmt.Condition.Loc(),
		}
	}

	loop, err := gen.backend.JumpBegin(ctx, architecture.Reverse|kind)
	if err != nil {
		return err
	}

	err = gen.statements(ctx, stmt.Body)
	if err != nil {
		return err
	}

	err = gen.operands(ctx, stmt.Condition)
	if err != nil {
		return err
	}

	gen.backend.Cmp(ctx, gen.registers.Accumulator, gen.registers.Scratch)
	return gen.backend.JumpEnd(ctx, loop)
}

// platform.Evaluator implementation.
func (gen *generator) evaluate(
	ctx *platform.Context,
	dest *architecture.Register,
	expr ast.Expression,
) error {
	err := gen.accumulate(ctx, expr)
	if err != nil {
		return err
	}

	gen.backend.Mov(ctx, dest, gen.registers.Accumulator)
	return nil
}

// Evaluates expr into the accumulator.
func (gen *generator) accumulate(
	ctx *platform.Context,
	expression ast.Expression,
) error {
	acc := gen.registers.Accumulator

	switch expr := expression.(type) {
	case *ast.IntLiteral:
		gen.backend.MovImmediate(ctx, acc, int32(expr.Value))
		return nil
	case *ast.StringLiteral:
		gen.backend.LoadString(ctx, acc, expr.Value)
		return nil
	case *ast.Identifier:
		gen.backend.LoadLocal(ctx, acc, gen.slot(expr.Name))
		return nil
	case *ast.AddressOf:
		gen.backend.LoadLocalAddress(ctx, acc, gen.slot(expr.Name))
		return nil
	case *ast.UnaryExpression:
		err := gen.accumulate(ctx, expr.Operand)
		if err != nil {
			return err
		}

		switch expr.Operator {
		case ast.Negate:
			gen.backend.Neg(ctx, acc)
		case ast.Increment:
			gen.backend.Inc(ctx, acc)
		default:
			panic("should never happen")
		}
		return nil
	case *ast.BinaryExpression:
		return gen.binary(ctx, expr)
	case *ast.SysCall:
		return gen.backend.InvokeSysCall(ctx, expr.Loc(), expr.Number, expr.Args)
	}

	panic(fmt.Sprintf("unhandled expression: %T", expression))
}

func (gen *generator) binary(
	ctx *platform.Context,
	expr *ast.BinaryExpression,
) error {
	acc := gen.registers.Accumulator
	scratch := gen.registers.Scratch

	err := gen.operands(ctx, expr)
	if err != nil {
		return err
	}

	switch expr.Operator {
	case ast.Add:
		gen.backend.Add(ctx, acc, scratch)
	case ast.Sub:
		gen.backend.Sub(ctx, acc, scratch)
	case ast.BitwiseAnd:
		gen.backend.And(ctx, acc, scratch)
	case ast.BitwiseOr:
		gen.backend.Or(ctx, acc, scratch)
	case ast.BitwiseXor:
		gen.backend.Xor(ctx, acc, scratch)
	case ast.Mul:
		gen.backend.Imul(ctx, scratch)
	case ast.Div:
		_, err = gen.backend.Idiv(ctx, scratch)
	case ast.Mod:
		_, err = gen.backend.Mod(ctx, acc, scratch)
	default:
		kind, ok := platform.RelationalJumpKind(expr.Operator)
		if !ok {
			panic("should never happen")
		}

		// acc = (acc op scratch) ? 1 : 0.  mov does not modify flags.
		gen.backend.Cmp(ctx, acc, scratch)
		gen.backend.MovImmediate(ctx, acc, 1)

		var skip *platform.BranchState
		skip, err = gen.backend.JumpBegin(ctx, kind)
		if err != nil {
			return err
		}

		gen.backend.MovImmediate(ctx, acc, 0)
		err = gen.backend.JumpEnd(ctx, skip)
	}

	return err
}
