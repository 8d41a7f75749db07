package emulator

import (
	"errors"
	"fmt"

	"golang.org/x/arch/x86/x86asm"

	"github.com/pattyshack/wren/architecture"
)

var (
	ErrStepLimit = errors.New("step limit exceeded")
	ErrDivide    = errors.New("divide error")
)

type MemoryFaultError struct {
	Address architecture.Address
	Size    int
}

func (err *MemoryFaultError) Error() string {
	return fmt.Sprintf("memory fault: %d byte access at %s", err.Size, err.Address)
}

type DecodeError struct {
	Address architecture.Address
	Err     error
}

func (err *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode instruction at %s: %s", err.Address, err.Err)
}

func (err *DecodeError) Unwrap() error {
	return err.Err
}

type UnsupportedInstructionError struct {
	Address     architecture.Address
	Instruction x86asm.Inst
}

func (err *UnsupportedInstructionError) Error() string {
	return fmt.Sprintf(
		"unsupported instruction at %s: %s",
		err.Address,
		x86asm.IntelSyntax(err.Instruction, uint64(err.Address), nil))
}
