package platform

// OS specific, (hopefully mostly) architecture-independent, syscall
// specification.
type SysCallSpec interface {
	// Maximum number of arguments that syscall could take.
	MaxNumberOfArgs() int

	ExitNumber() int32
	ExitGroupNumber() int32
	WriteNumber() int32
}

func NewSysCallSpec(os OperatingSystemName) (SysCallSpec, error) {
	switch os {
	case Linux:
		return LinuxSysCallSpec{}, nil
	default:
		return nil, &UnsupportedPlatformError{OperatingSystem: os}
	}
}

// Resources:
//
// syscall numbers: https://chromium.googlesource.com/chromiumos/docs/+/master/constants/syscalls.md
type LinuxSysCallSpec struct {
}

func (LinuxSysCallSpec) MaxNumberOfArgs() int {
	// Note: on most popular architectures (amd64 and arm64), linux accept up to
	// 6 arguments, but on other architectures, the accepted number of arguments
	// could be up to 7.  Make this architecture specific if necessary.
	return 6
}

// The numbers below are x86-64 specific.

func (LinuxSysCallSpec) ExitNumber() int32 {
	return 60
}

func (LinuxSysCallSpec) ExitGroupNumber() int32 {
	return 231
}

func (LinuxSysCallSpec) WriteNumber() int32 {
	return 1
}
