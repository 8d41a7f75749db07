package x64

import (
	"github.com/pattyshack/gt/parseutil"

	"github.com/pattyshack/wren/architecture"
	"github.com/pattyshack/wren/ast"
	"github.com/pattyshack/wren/platform"
)

func (b Backend) debugTraps(ctx *platform.Context) {
	if !b.DebugTraps {
		return
	}

	for i := 0; i < 3; i++ {
		b.Breakpoint(ctx)
	}
}

// Emits `cmp a, b` followed by a jump over the then section, taken when
// `a op b` does not hold.
func (b Backend) IfBegin(
	ctx *platform.Context,
	loc parseutil.Location,
	a *architecture.Register,
	op ast.BinaryOperator,
	bReg *architecture.Register,
) (
	*platform.IfBlock,
	error,
) {
	kind, ok := platform.RelationalJumpKind(op)
	if !ok {
		return nil, &platform.UnsupportedOperatorError{
			Operator: op,
			Location: loc,
		}
	}

	inverse, ok := kind.Inverse()
	if !ok {
		panic("should never happen")
	}

	b.debugTraps(ctx)
	b.Cmp(ctx, a, bReg)

	return &platform.IfBlock{
		Location:          loc,
		State:             platform.IfOpenCondition,
		PlaceholderOffset: emitForwardJump(ctx, inverse),
	}, nil
}

// Ends the then section with a jump over the else section, then points the
// condition jump at the first else byte.
func (Backend) IfElse(ctx *platform.Context, block *platform.IfBlock) error {
	if block.State != platform.IfOpenCondition {
		return platform.ErrIfBlockState
	}

	conditionPlaceholder := block.PlaceholderOffset
	elsePlaceholder := emitForwardJump(ctx, architecture.JumpAlways)

	err := patchForwardJump(ctx, conditionPlaceholder)
	if err != nil {
		return err
	}

	return block.EnterElse(elsePlaceholder)
}

func (b Backend) IfEnd(ctx *platform.Context, block *platform.IfBlock) error {
	if block.State == platform.IfClosed {
		return platform.ErrIfBlockState
	}

	err := patchForwardJump(ctx, block.PlaceholderOffset)
	if err != nil {
		return err
	}

	err = block.Close()
	if err != nil {
		return err
	}

	b.debugTraps(ctx)
	return nil
}
