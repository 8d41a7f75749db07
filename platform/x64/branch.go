package x64

import (
	"github.com/pattyshack/wren/architecture"
	"github.com/pattyshack/wren/platform"
)

// Emits a jump with a placeholder rel32 displacement.  Returns the
// displacement's offset.
func emitForwardJump(
	ctx *platform.Context,
	kind architecture.JumpKind,
) architecture.Offset {
	ctx.Code.AppendBytes(jumpOpCode(kind)...)
	placeholder := ctx.Code.Position()
	ctx.Code.AppendDword(placeholderDword)
	ctx.Tracef("%s <forward>", jumpMnemonic(kind))
	return placeholder
}

// Patches the rel32 displacement at placeholder to target the current
// position.  rel32 is relative to the end of the displacement.
func patchForwardJump(
	ctx *platform.Context,
	placeholder architecture.Offset,
) error {
	rel := int32(ctx.Code.Position() - (placeholder + 4))
	return ctx.Code.OverwriteDword(placeholder, uint32(rel))
}

func (Backend) JumpBegin(
	ctx *platform.Context,
	kind architecture.JumpKind,
) (
	*platform.BranchState,
	error,
) {
	if !kind.IsValid() {
		return nil, &platform.UnsupportedJumpKindError{Kind: kind}
	}

	if kind.IsReverse() {
		return &platform.BranchState{
			Kind:              kind,
			SavedPosition:     ctx.Code.Position(),
			PlaceholderOffset: platform.ClosedOffset,
		}, nil
	}

	placeholder := emitForwardJump(ctx, kind)
	return &platform.BranchState{
		Kind:              kind,
		SavedPosition:     placeholder + 4,
		PlaceholderOffset: placeholder,
	}, nil
}

func (Backend) JumpEnd(
	ctx *platform.Context,
	state *platform.BranchState,
) error {
	if state.IsClosed() {
		return platform.ErrBranchClosed
	}

	if !state.Kind.IsValid() {
		return &platform.UnsupportedJumpKindError{Kind: state.Kind}
	}

	if state.Kind.IsReverse() {
		opCode := jumpOpCode(state.Kind)
		end := ctx.Code.Position() + architecture.Offset(len(opCode)+4)
		rel := int32(state.SavedPosition - end)

		ctx.Code.AppendBytes(opCode...)
		ctx.Code.AppendDword(uint32(rel))
		ctx.Tracef("%s %s", jumpMnemonic(state.Kind), state.SavedPosition)
	} else {
		rel := int32(ctx.Code.Position() - state.SavedPosition)
		err := ctx.Code.OverwriteDword(state.PlaceholderOffset, uint32(rel))
		if err != nil {
			return err
		}
	}

	return state.Close()
}
