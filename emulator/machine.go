package emulator

import (
	"github.com/pattyshack/wren/architecture"
	"github.com/pattyshack/wren/platform"
)

const (
	DefaultCodeBase  = architecture.Address(0x400000)
	DefaultDataBase  = architecture.Address(0x600000)
	DefaultStackTop  = architecture.Address(0x7ff00000)
	DefaultStackSize = 64 * 1024
	DefaultMaxSteps  = 1000000

	// Returning to this address halts the machine.
	haltAddress = uint64(0)
)

// Hardware register numbers.
const (
	RAX = iota
	RCX
	RDX
	RBX
	RSP
	RBP
	RSI
	RDI
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15

	numRegisters
)

type Config struct {
	CodeBase  architecture.Address
	DataBase  architecture.Address
	StackTop  architecture.Address
	StackSize int

	// Zero means DefaultMaxSteps.
	MaxSteps int

	// Handles syscalls other than exit / exit_group.  When nil, those syscalls
	// return -ENOSYS.
	SysCalls SysCallHandler
}

func (config Config) withDefaults() Config {
	if config.CodeBase == 0 {
		config.CodeBase = DefaultCodeBase
	}
	if config.DataBase == 0 {
		config.DataBase = DefaultDataBase
	}
	if config.StackTop == 0 {
		config.StackTop = DefaultStackTop
	}
	if config.StackSize == 0 {
		config.StackSize = DefaultStackSize
	}
	if config.MaxSteps == 0 {
		config.MaxSteps = DefaultMaxSteps
	}
	return config
}

type flags struct {
	zero     bool
	sign     bool
	overflow bool
	carry    bool
}

// A single threaded x86-64 user mode machine which executes the instruction
// subset the x64 backend emits.
type Machine struct {
	Registers [numRegisters]uint64
	RIP       uint64

	config Config
	flags  flags
	memory *memory
	code   *segment

	result *Result
}

type Result struct {
	// Set when the program terminated via exit / exit_group, or by returning
	// from the entry point (in which case the status is rax).
	Exited     bool
	ExitStatus int

	Steps       int
	Breakpoints int
	Interrupts  []byte
	SysCalls    []SysCall
}

// Loads the artifact with its relocations resolved against the configured
// data base.  The stack holds the halt return address on entry.
func New(artifact *platform.Artifact, config Config) (*Machine, error) {
	config = config.withDefaults()

	code, err := artifact.Resolve(config.DataBase)
	if err != nil {
		return nil, err
	}

	machine := &Machine{
		config: config,
		memory: &memory{},
		result: &Result{},
		code: &segment{
			name:  "code",
			base:  config.CodeBase,
			bytes: code,
		},
	}

	machine.memory.add(machine.code)

	data := make([]byte, len(artifact.Data))
	copy(data, artifact.Data)
	machine.memory.add(&segment{
		name:     "data",
		base:     config.DataBase,
		bytes:    data,
		writable: true,
	})

	machine.memory.add(&segment{
		name:     "stack",
		base:     config.StackTop - architecture.Address(config.StackSize),
		bytes:    make([]byte, config.StackSize),
		writable: true,
	})

	machine.RIP = uint64(config.CodeBase)
	machine.Registers[RSP] = uint64(config.StackTop)
	err = machine.push(haltAddress)
	if err != nil {
		return nil, err
	}

	return machine, nil
}

func Run(artifact *platform.Artifact, config Config) (*Result, error) {
	machine, err := New(artifact, config)
	if err != nil {
		return nil, err
	}
	return machine.Run()
}

func (machine *Machine) Run() (*Result, error) {
	for !machine.result.Exited {
		if machine.result.Steps >= machine.config.MaxSteps {
			return machine.result, ErrStepLimit
		}

		err := machine.step()
		if err != nil {
			return machine.result, err
		}
		machine.result.Steps++
	}

	return machine.result, nil
}

func (machine *Machine) push(value uint64) error {
	machine.Registers[RSP] -= 8
	return machine.memory.write64(
		architecture.Address(machine.Registers[RSP]),
		value)
}

func (machine *Machine) pop() (uint64, error) {
	value, err := machine.memory.read64(
		architecture.Address(machine.Registers[RSP]))
	if err != nil {
		return 0, err
	}
	machine.Registers[RSP] += 8
	return value, nil
}

func (machine *Machine) ReadMemory(
	address architecture.Address,
	size int,
) ([]byte, error) {
	bytes, err := machine.memory.slice(address, size, false)
	if err != nil {
		return nil, err
	}

	result := make([]byte, size)
	copy(result, bytes)
	return result, nil
}

// Reads a NUL-terminated string.
func (machine *Machine) ReadString(address architecture.Address) (string, error) {
	result := []byte{}
	for {
		bytes, err := machine.memory.slice(address, 1, false)
		if err != nil {
			return "", err
		}

		if bytes[0] == 0 {
			return string(result), nil
		}

		result = append(result, bytes[0])
		address++
	}
}
