package x64

import (
	"github.com/pattyshack/wren/architecture"
	"github.com/pattyshack/wren/platform"
)

type Options struct {
	// When true, structured if blocks are bracketed by int3 traps.
	DebugTraps bool
}

// The 64-bit x86 backend.  Backend holds no emission state; all state lives
// in the platform.Context passed to each operation.
type Backend struct {
	os          platform.OperatingSystemName
	sysCallSpec platform.SysCallSpec

	Options
}

var _ platform.Backend = Backend{}

func NewBackend(
	os platform.OperatingSystemName,
	options Options,
) (platform.Backend, error) {
	spec, err := platform.NewSysCallSpec(os)
	if err != nil {
		return nil, &platform.UnsupportedPlatformError{
			Architecture:    platform.Amd64,
			OperatingSystem: os,
		}
	}

	return Backend{
		os:          os,
		sysCallSpec: spec,
		Options:     options,
	}, nil
}

func (Backend) ArchitectureName() platform.ArchitectureName {
	return platform.Amd64
}

func (b Backend) OperatingSystemName() platform.OperatingSystemName {
	return b.os
}

func (b Backend) SysCallSpec() platform.SysCallSpec {
	return b.sysCallSpec
}

func (Backend) ArchitectureRegisters() *architecture.RegisterSet {
	return RegisterSet
}

// Appends an encoded instruction, returning its starting offset.
func emit(
	ctx *platform.Context,
	instruction []byte,
	format string,
	args ...interface{},
) architecture.Offset {
	start := ctx.Code.Position()
	ctx.Code.AppendBytes(instruction...)
	ctx.Tracef(format, args...)
	return start
}
