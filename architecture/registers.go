package architecture

import (
	"fmt"
)

const (
	// Assumption: we only support 64 bit architecture.
	RegisterByteSize = 8
	AddressByteSize  = RegisterByteSize
)

type Register struct {
	Name string

	// Architecture specific register number.  On x64 this is the 4-bit number
	// whose lowest 3 bits are encoded in mod r/m (or the opcode) while the 4th
	// bit is encoded in the rex prefix.
	Encoding int

	// When true, the register is reserved for stack pointer.
	IsStackPointer bool

	// When true, the register is usable for signed/unsigned int and pointer
	// operations, as well as general data storage.
	AllowGeneralOp bool
}

func NewStackPointerRegister(name string, encoding int) *Register {
	return &Register{
		Name:           name,
		Encoding:       encoding,
		IsStackPointer: true,
	}
}

func NewGeneralRegister(name string, encoding int) *Register {
	return &Register{
		Name:           name,
		Encoding:       encoding,
		AllowGeneralOp: true,
	}
}

// The bits encoded in mod r/m reg / rm fields, or added to the opcode.
func (register *Register) LowBits() byte {
	return byte(register.Encoding & 0x07)
}

// True when the register requires an extension bit in the encoding prefix.
func (register *Register) IsExtended() bool {
	return register.Encoding&0x08 != 0
}

func (register *Register) String() string {
	return register.Name
}

// Assumptions (probably needs visiting):
//
// 1. When a portion (e.g., AX) of a register is used, the entire
// register (e.g., RAX) is considered occupied.
//
// 2. Each architecture have exactly one stack pointer register.  The stack
// pointer is always live and hence can't be used as a general register.
//
// 3. Expression results live in the accumulator.  The scratch register holds
// the second operand of binary operations.  Neither is preserved across
// emission operations.
type RegisterSet struct {
	StackPointer *Register

	FramePointer *Register
	Accumulator  *Register
	Scratch      *Register

	// The set of registers usable for signed/unsigned int and pointer operations.
	General []*Register

	byName map[string]*Register
}

func NewRegisterSet(
	framePointer *Register,
	accumulator *Register,
	scratch *Register,
	registers ...*Register,
) *RegisterSet {
	set := &RegisterSet{
		FramePointer: framePointer,
		Accumulator:  accumulator,
		Scratch:      scratch,
		byName:       map[string]*Register{},
	}

	encodings := map[int]struct{}{}
	for _, register := range registers {
		if register.Name == "" {
			panic("no register name")
		}

		_, ok := set.byName[register.Name]
		if ok {
			panic("added duplicate register: " + register.Name)
		}
		set.byName[register.Name] = register

		_, ok = encodings[register.Encoding]
		if ok {
			panic(fmt.Sprintf(
				"added duplicate register encoding %d (%s)",
				register.Encoding,
				register.Name))
		}
		encodings[register.Encoding] = struct{}{}

		set.add(register)
	}

	if set.StackPointer == nil {
		panic("no stack pointer register specified")
	}

	for _, role := range []*Register{framePointer, accumulator, scratch} {
		if role == nil || set.byName[role.Name] != role {
			panic("register role is not part of the register set")
		}
	}

	return set
}

func (set *RegisterSet) add(register *Register) {
	if register.IsStackPointer {
		if register.AllowGeneralOp {
			panic("stack pointer register cannot be general register")
		}

		if set.StackPointer != nil {
			panic("multiple stack pointer register specified")
		}
		set.StackPointer = register
		return
	}

	if !register.AllowGeneralOp {
		panic("added unusable register")
	}

	set.General = append(set.General, register)
}

func (set *RegisterSet) Lookup(name string) (*Register, bool) {
	register, ok := set.byName[name]
	return register, ok
}
