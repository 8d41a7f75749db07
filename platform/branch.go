package platform

import (
	"github.com/pattyshack/gt/parseutil"

	"github.com/pattyshack/wren/architecture"
	"github.com/pattyshack/wren/ast"
)

// Marks an unused placeholder offset.
const ClosedOffset = architecture.Offset(-1)

// An open jump.
//
// Forward: SavedPosition is the position immediately after the emitted
// jump instruction, and PlaceholderOffset locates its rel32 displacement.
//
// Reverse: SavedPosition is the jump target, and no instruction has been
// emitted yet (PlaceholderOffset is ClosedOffset).
type BranchState struct {
	Kind architecture.JumpKind

	SavedPosition     architecture.Offset
	PlaceholderOffset architecture.Offset

	closed bool
}

func (state *BranchState) IsClosed() bool {
	return state.closed
}

// Marks the branch consumed.  A branch may only be closed once.
func (state *BranchState) Close() error {
	if state.closed {
		return ErrBranchClosed
	}
	state.closed = true
	return nil
}

type IfBlockState int

const (
	IfOpenCondition = IfBlockState(iota)
	IfOpenElse
	IfClosed
)

func (state IfBlockState) String() string {
	switch state {
	case IfOpenCondition:
		return "open-condition"
	case IfOpenElse:
		return "open-else"
	case IfClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// One nesting level of a structured if.  PlaceholderOffset locates the rel32
// displacement to patch when the current section ends: the condition jump
// while OpenCondition, and the jump over the else section while OpenElse.
type IfBlock struct {
	Location parseutil.Location

	State             IfBlockState
	PlaceholderOffset architecture.Offset
}

// OpenCondition -> OpenElse.
func (block *IfBlock) EnterElse(placeholder architecture.Offset) error {
	if block.State != IfOpenCondition {
		return ErrIfBlockState
	}

	block.State = IfOpenElse
	block.PlaceholderOffset = placeholder
	return nil
}

// OpenCondition | OpenElse -> Closed.
func (block *IfBlock) Close() error {
	if block.State == IfClosed {
		return ErrIfBlockState
	}

	block.State = IfClosed
	block.PlaceholderOffset = ClosedOffset
	return nil
}

// The jump condition which holds exactly when `a op b` holds, after
// `cmp a, b`.
func RelationalJumpKind(op ast.BinaryOperator) (architecture.JumpKind, bool) {
	switch op {
	case ast.Equal:
		return architecture.JumpEqual, true
	case ast.NotEqual:
		return architecture.JumpNotEqual, true
	case ast.Less:
		return architecture.JumpLess, true
	case ast.LessOrEqual:
		return architecture.JumpLessOrEqual, true
	case ast.Greater:
		return architecture.JumpGreater, true
	case ast.GreaterOrEqual:
		return architecture.JumpGreaterOrEqual, true
	default:
		return 0, false
	}
}
