package emulator

import (
	"math"
	"math/bits"

	"golang.org/x/arch/x86/x86asm"

	"github.com/pattyshack/wren/architecture"
)

func registerIndex(reg x86asm.Reg) (int, bool) {
	if reg < x86asm.RAX || reg > x86asm.R15 {
		return 0, false
	}
	return int(reg - x86asm.RAX), true
}

// decoded instruction plus the raw bytes needed to recover immediate widths.
type instruction struct {
	x86asm.Inst

	address architecture.Address
	next    uint64
	opCode  byte
}

func (machine *Machine) unsupported(inst *instruction) error {
	return &UnsupportedInstructionError{
		Address:     inst.address,
		Instruction: inst.Inst,
	}
}

func (machine *Machine) fetch() (*instruction, error) {
	address := architecture.Address(machine.RIP)
	if !machine.code.contains(address, 1) {
		return nil, &MemoryFaultError{Address: address, Size: 1}
	}

	src := machine.code.bytes[address-machine.code.base:]
	inst, err := x86asm.Decode(src, 64)
	if err != nil {
		return nil, &DecodeError{Address: address, Err: err}
	}

	opCode := src[0]
	if opCode&0xf0 == 0x40 && len(src) > 1 { // rex prefix
		opCode = src[1]
	}

	return &instruction{
		Inst:    inst,
		address: address,
		next:    machine.RIP + uint64(inst.Len),
		opCode:  opCode,
	}, nil
}

// Immediates are sign extended to 64 bits.  The imm8 group (0x83) carries a
// single byte while all other emitted immediates carry 4 bytes.
func (inst *instruction) immediate(arg x86asm.Imm) uint64 {
	if inst.opCode == 0x83 {
		return uint64(int64(int8(arg)))
	}
	return uint64(int64(int32(uint32(arg))))
}

func (machine *Machine) address(inst *instruction, mem x86asm.Mem) (
	architecture.Address,
	error,
) {
	if mem.Segment != 0 || mem.Index != 0 {
		return 0, machine.unsupported(inst)
	}

	base, ok := registerIndex(mem.Base)
	if !ok {
		return 0, machine.unsupported(inst)
	}

	// The decoder sign extends disp8 but not disp32.
	disp := int64(int32(mem.Disp))
	return architecture.Address(machine.Registers[base] + uint64(disp)), nil
}

func (machine *Machine) readArg(inst *instruction, arg x86asm.Arg) (
	uint64,
	error,
) {
	switch value := arg.(type) {
	case x86asm.Reg:
		idx, ok := registerIndex(value)
		if !ok {
			return 0, machine.unsupported(inst)
		}
		return machine.Registers[idx], nil
	case x86asm.Imm:
		return inst.immediate(value), nil
	case x86asm.Mem:
		address, err := machine.address(inst, value)
		if err != nil {
			return 0, err
		}
		return machine.memory.read64(address)
	}

	return 0, machine.unsupported(inst)
}

func (machine *Machine) writeArg(
	inst *instruction,
	arg x86asm.Arg,
	value uint64,
) error {
	switch dest := arg.(type) {
	case x86asm.Reg:
		idx, ok := registerIndex(dest)
		if !ok {
			return machine.unsupported(inst)
		}
		machine.Registers[idx] = value
		return nil
	case x86asm.Mem:
		address, err := machine.address(inst, dest)
		if err != nil {
			return err
		}
		return machine.memory.write64(address, value)
	}

	return machine.unsupported(inst)
}

func (machine *Machine) binaryArgs(inst *instruction) (uint64, uint64, error) {
	a, err := machine.readArg(inst, inst.Args[0])
	if err != nil {
		return 0, 0, err
	}

	b, err := machine.readArg(inst, inst.Args[1])
	if err != nil {
		return 0, 0, err
	}

	return a, b, nil
}

func (machine *Machine) setLogicFlags(result uint64) {
	machine.flags = flags{
		zero: result == 0,
		sign: int64(result) < 0,
	}
}

func (machine *Machine) setAddFlags(a uint64, b uint64, result uint64) {
	machine.flags = flags{
		zero:     result == 0,
		sign:     int64(result) < 0,
		carry:    result < a,
		overflow: (a^result)&(b^result)&(1<<63) != 0,
	}
}

func (machine *Machine) setSubFlags(a uint64, b uint64, result uint64) {
	machine.flags = flags{
		zero:     result == 0,
		sign:     int64(result) < 0,
		carry:    a < b,
		overflow: (a^b)&(a^result)&(1<<63) != 0,
	}
}

func (machine *Machine) condition(op x86asm.Op) bool {
	f := machine.flags
	switch op {
	case x86asm.JE:
		return f.zero
	case x86asm.JNE:
		return !f.zero
	case x86asm.JL:
		return f.sign != f.overflow
	case x86asm.JGE:
		return f.sign == f.overflow
	case x86asm.JLE:
		return f.zero || f.sign != f.overflow
	case x86asm.JG:
		return !f.zero && f.sign == f.overflow
	}
	panic("should never happen")
}

func (machine *Machine) jump(inst *instruction) error {
	rel, ok := inst.Args[0].(x86asm.Rel)
	if !ok {
		return machine.unsupported(inst)
	}
	machine.RIP = inst.next + uint64(int64(rel))
	return nil
}

func (machine *Machine) step() error {
	address := architecture.Address(machine.RIP)
	if machine.code.contains(address, 1) &&
		machine.code.bytes[address-machine.code.base] == 0xcc {

		machine.result.Breakpoints++
		machine.RIP++
		return nil
	}

	inst, err := machine.fetch()
	if err != nil {
		return err
	}

	// Most instructions fall through.
	machine.RIP = inst.next

	switch inst.Op {
	case x86asm.NOP:
		return nil

	case x86asm.MOV:
		value, err := machine.readArg(inst, inst.Args[1])
		if err != nil {
			return err
		}
		return machine.writeArg(inst, inst.Args[0], value)

	case x86asm.LEA:
		mem, ok := inst.Args[1].(x86asm.Mem)
		if !ok {
			return machine.unsupported(inst)
		}

		address, err := machine.address(inst, mem)
		if err != nil {
			return err
		}
		return machine.writeArg(inst, inst.Args[0], uint64(address))

	case x86asm.ADD:
		a, b, err := machine.binaryArgs(inst)
		if err != nil {
			return err
		}

		result := a + b
		machine.setAddFlags(a, b, result)
		return machine.writeArg(inst, inst.Args[0], result)

	case x86asm.SUB, x86asm.CMP:
		a, b, err := machine.binaryArgs(inst)
		if err != nil {
			return err
		}

		result := a - b
		machine.setSubFlags(a, b, result)
		if inst.Op == x86asm.CMP {
			return nil
		}
		return machine.writeArg(inst, inst.Args[0], result)

	case x86asm.AND, x86asm.OR, x86asm.XOR, x86asm.TEST:
		a, b, err := machine.binaryArgs(inst)
		if err != nil {
			return err
		}

		var result uint64
		switch inst.Op {
		case x86asm.AND, x86asm.TEST:
			result = a & b
		case x86asm.OR:
			result = a | b
		default:
			result = a ^ b
		}

		machine.setLogicFlags(result)
		if inst.Op == x86asm.TEST {
			return nil
		}
		return machine.writeArg(inst, inst.Args[0], result)

	case x86asm.INC:
		a, err := machine.readArg(inst, inst.Args[0])
		if err != nil {
			return err
		}

		carry := machine.flags.carry
		result := a + 1
		machine.setAddFlags(a, 1, result)
		machine.flags.carry = carry // inc leaves CF intact
		return machine.writeArg(inst, inst.Args[0], result)

	case x86asm.IMUL:
		if inst.Args[1] != nil {
			return machine.unsupported(inst)
		}

		src, err := machine.readArg(inst, inst.Args[0])
		if err != nil {
			return err
		}

		a := machine.Registers[RAX]
		hi, lo := bits.Mul64(a, src)
		if int64(a) < 0 {
			hi -= src
		}
		if int64(src) < 0 {
			hi -= a
		}

		machine.Registers[RAX] = lo
		machine.Registers[RDX] = hi
		overflow := hi != uint64(int64(lo)>>63)
		machine.flags.carry = overflow
		machine.flags.overflow = overflow
		return nil

	case x86asm.CQO:
		machine.Registers[RDX] = uint64(int64(machine.Registers[RAX]) >> 63)
		return nil

	case x86asm.IDIV:
		divisor, err := machine.readArg(inst, inst.Args[0])
		if err != nil {
			return err
		}

		dividend := int64(machine.Registers[RAX])
		if machine.Registers[RDX] != uint64(dividend>>63) {
			// Only sign-extended 64-bit dividends (i.e., cqo; idiv) are
			// supported.
			return machine.unsupported(inst)
		}

		d := int64(divisor)
		if d == 0 || (dividend == math.MinInt64 && d == -1) {
			return ErrDivide
		}

		machine.Registers[RAX] = uint64(dividend / d)
		machine.Registers[RDX] = uint64(dividend % d)
		return nil

	case x86asm.NEG:
		a, err := machine.readArg(inst, inst.Args[0])
		if err != nil {
			return err
		}

		result := -a
		machine.setSubFlags(0, a, result)
		return machine.writeArg(inst, inst.Args[0], result)

	case x86asm.PUSH:
		value, err := machine.readArg(inst, inst.Args[0])
		if err != nil {
			return err
		}
		return machine.push(value)

	case x86asm.POP:
		value, err := machine.pop()
		if err != nil {
			return err
		}
		return machine.writeArg(inst, inst.Args[0], value)

	case x86asm.JMP:
		return machine.jump(inst)

	case x86asm.JE, x86asm.JNE, x86asm.JL, x86asm.JGE, x86asm.JLE, x86asm.JG:
		if !machine.condition(inst.Op) {
			return nil
		}
		return machine.jump(inst)

	case x86asm.CALL:
		err := machine.push(inst.next)
		if err != nil {
			return err
		}

		switch target := inst.Args[0].(type) {
		case x86asm.Rel:
			machine.RIP = inst.next + uint64(int64(target))
		case x86asm.Reg:
			value, err := machine.readArg(inst, target)
			if err != nil {
				return err
			}
			machine.RIP = value
		default:
			return machine.unsupported(inst)
		}
		return nil

	case x86asm.RET:
		target, err := machine.pop()
		if err != nil {
			return err
		}

		machine.RIP = target
		if target == haltAddress {
			machine.result.Exited = true
			machine.result.ExitStatus = int(machine.Registers[RAX] & 0xff)
		}
		return nil

	case x86asm.INT:
		vector, ok := inst.Args[0].(x86asm.Imm)
		if !ok {
			return machine.unsupported(inst)
		}

		machine.result.Interrupts = append(
			machine.result.Interrupts,
			byte(vector))
		return nil

	case x86asm.SYSCALL:
		return machine.sysCall()
	}

	return machine.unsupported(inst)
}
