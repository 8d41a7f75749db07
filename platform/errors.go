package platform

import (
	"errors"
	"fmt"

	"github.com/pattyshack/gt/parseutil"

	"github.com/pattyshack/wren/architecture"
	"github.com/pattyshack/wren/ast"
)

var (
	ErrIfBlockState = errors.New("invalid if-block state transition")
	ErrBranchClosed = errors.New("branch already closed")
	ErrNoEvaluator  = errors.New("context has no expression evaluator")
)

type UnsupportedPlatformError struct {
	Architecture    ArchitectureName
	OperatingSystem OperatingSystemName
}

func (err *UnsupportedPlatformError) Error() string {
	if err.Architecture == "" {
		return fmt.Sprintf("unsupported operating system: %s", err.OperatingSystem)
	}
	return fmt.Sprintf(
		"unsupported platform: %s-%s",
		err.Architecture,
		err.OperatingSystem)
}

type UnsupportedOperatorError struct {
	Operator ast.BinaryOperator
	Location parseutil.Location
}

func (err *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf(
		"%s: unsupported if-block operator (%s)",
		err.Location,
		err.Operator)
}

type UnsupportedJumpKindError struct {
	Kind architecture.JumpKind
}

func (err *UnsupportedJumpKindError) Error() string {
	return fmt.Sprintf("unsupported jump kind (%s)", err.Kind)
}

// Returned when an operation's fixed register usage conflicts with the
// requested operand.
type UnsupportedOperandError struct {
	Operation string
	Register  *architecture.Register
}

func (err *UnsupportedOperandError) Error() string {
	return fmt.Sprintf(
		"%s does not support %s as operand",
		err.Operation,
		err.Register)
}

type SysCallArityError struct {
	NumArgs  int
	Max      int
	Location parseutil.Location
}

func (err *SysCallArityError) Error() string {
	return fmt.Sprintf(
		"%s: syscall takes 1 to %d arguments, found %d",
		err.Location,
		err.Max,
		err.NumArgs)
}

type RelocationError struct {
	Index      int
	Relocation Relocation
	Reason     string
}

func (err *RelocationError) Error() string {
	return fmt.Sprintf(
		"relocation %d (%s): %s",
		err.Index,
		err.Relocation,
		err.Reason)
}
