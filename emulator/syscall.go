package emulator

import (
	"io"

	"github.com/pattyshack/wren/architecture"
	"github.com/pattyshack/wren/platform"
)

// The emulated kernel is x86-64 linux.
var (
	linux = platform.LinuxSysCallSpec{}

	sysWrite     = uint64(linux.WriteNumber())
	sysExit      = uint64(linux.ExitNumber())
	sysExitGroup = uint64(linux.ExitGroupNumber())
)

const (
	enosys = 38
	ebadf  = 9
	efault = 14
)

// Linux syscall argument registers, in argument order.
var sysCallArgumentRegisters = [6]int{RDI, RSI, RDX, R10, R8, R9}

type SysCall struct {
	Number uint64
	Args   [6]uint64
}

type SysCallHandler interface {
	// Returns the syscall's raw return value (negative errno on failure).  A
	// non-nil error aborts execution.
	HandleSysCall(machine *Machine, call SysCall) (uint64, error)
}

func errno(value uint64) uint64 {
	return -value
}

func (machine *Machine) sysCall() error {
	call := SysCall{Number: machine.Registers[RAX]}
	for idx, register := range sysCallArgumentRegisters {
		call.Args[idx] = machine.Registers[register]
	}

	machine.result.SysCalls = append(machine.result.SysCalls, call)

	// The kernel clobbers rcx (return rip) and r11 (rflags).
	machine.Registers[RCX] = machine.RIP
	machine.Registers[R11] = 0

	if call.Number == sysExit || call.Number == sysExitGroup {
		machine.result.Exited = true
		machine.result.ExitStatus = int(call.Args[0] & 0xff)
		return nil
	}

	if machine.config.SysCalls == nil {
		machine.Registers[RAX] = errno(enosys)
		return nil
	}

	value, err := machine.config.SysCalls.HandleSysCall(machine, call)
	if err != nil {
		return err
	}

	machine.Registers[RAX] = value
	return nil
}

// Implements write(2) on top of in-process writers, keyed by file
// descriptor.  All other syscalls return -ENOSYS.
type WriterHandler struct {
	Files map[uint64]io.Writer
}

func (handler WriterHandler) HandleSysCall(
	machine *Machine,
	call SysCall,
) (
	uint64,
	error,
) {
	if call.Number != sysWrite {
		return errno(enosys), nil
	}

	writer, ok := handler.Files[call.Args[0]]
	if !ok {
		return errno(ebadf), nil
	}

	content, err := machine.ReadMemory(
		architecture.Address(call.Args[1]),
		int(call.Args[2]))
	if err != nil {
		return errno(efault), nil
	}

	n, err := writer.Write(content)
	if err != nil {
		return errno(ebadf), nil
	}

	return uint64(n), nil
}
