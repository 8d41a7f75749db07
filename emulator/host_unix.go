//go:build unix

package emulator

import (
	"golang.org/x/sys/unix"

	"github.com/pattyshack/wren/architecture"
)

// Forwards write(2) on stdout / stderr to the host process.  All other
// syscalls return -ENOSYS.
type HostHandler struct{}

func (HostHandler) HandleSysCall(
	machine *Machine,
	call SysCall,
) (
	uint64,
	error,
) {
	if call.Number != sysWrite {
		return errno(enosys), nil
	}

	fd := int(call.Args[0])
	if fd != unix.Stdout && fd != unix.Stderr {
		return errno(ebadf), nil
	}

	content, err := machine.ReadMemory(
		architecture.Address(call.Args[1]),
		int(call.Args[2]))
	if err != nil {
		return errno(efault), nil
	}

	n, err := unix.Write(fd, content)
	if err != nil {
		errNo, ok := err.(unix.Errno)
		if ok {
			return errno(uint64(errNo)), nil
		}
		return errno(ebadf), nil
	}

	return uint64(n), nil
}
