package x64

import (
	"encoding/binary"

	"github.com/pattyshack/wren/architecture"
)

// Resources:
//
// https://www.felixcloutier.com/x86/
// http://x86asm.net/articles/x86-64-tour-of-intel-manuals/
// https://wiki.osdev.org/X86-64_Instruction_Encoding

const (
	rexPrefix = byte(0x40)
	rexWBit   = byte(0x08)
	rexRBit   = byte(0x04)
	rexBBit   = byte(0x01)

	modRMIndirect      = byte(0x00)
	modRMIndirectDisp8 = byte(0x40)
	modRMIndirectDisp  = byte(0x80)
	modRMDirect        = byte(0xc0)

	// rm = 100 requires a sib byte; base = rsp / r12, no index.
	sibNoIndexBaseRsp = byte(0x24)

	placeholderDword = uint32(0)
)

var (
	// https://www.felixcloutier.com/x86/syscall
	syscallInstruction = []byte{0x0f, 0x05}

	// https://www.felixcloutier.com/x86/ret
	retInstruction = []byte{0xc3}

	// https://www.felixcloutier.com/x86/intn:into:int3:int1
	int3Instruction = []byte{0xcc}

	// https://www.felixcloutier.com/x86/nop
	nopInstruction = []byte{0x90}

	// https://www.felixcloutier.com/x86/cwd:cdq:cqo
	cqoInstruction = []byte{0x48, 0x99}
)

// Returns the rex prefix for the given extension bits, or zero if no prefix
// is needed.
func rex(operandSize int, reg int, rm int) byte {
	prefix := rexPrefix

	switch operandSize {
	case 32:
	case 64:
		prefix |= rexWBit
	default:
		panic("should never happen")
	}

	// reg's rex extension bit (R-bit)
	if reg&0x08 != 0 {
		prefix |= rexRBit
	}

	// rm's / base's rex extension bit (B-bit)
	if rm&0x08 != 0 {
		prefix |= rexBBit
	}

	if prefix == rexPrefix {
		return 0
	}
	return prefix
}

func encodeImmediate(result []byte, immediate interface{}) []byte {
	if immediate == nil {
		return result
	}

	result, err := binary.Append(result, binary.LittleEndian, immediate)
	if err != nil {
		panic("cannot encode immediate: " + err.Error())
	}
	return result
}

// Register-direct addressing mode (mod = 11).
func directAddressInstruction(
	operandSize int,
	opCode []byte,
	regXReg int, // could also be op code extension
	rmXReg int,
	immediate interface{}, // int8 / int32
) []byte {
	result := make([]byte, 0, 2+len(opCode)+4)

	prefix := rex(operandSize, regXReg, rmXReg)
	if prefix != 0 {
		result = append(result, prefix)
	}

	result = append(result, opCode...)
	result = append(
		result,
		modRMDirect|byte(regXReg&0x07)<<3|byte(rmXReg&0x07))

	return encodeImmediate(result, immediate)
}

// [base + displacement] addressing.  The shortest displacement form is
// chosen unless forceDisp32 is set.
//
// NOTE: rm = 100 (rsp / r12) always requires a sib byte, and mod = 00 with
// rm = 101 (rbp / r13) means rip-relative, so those bases always carry at
// least a disp8.
func indirectAddressInstruction(
	opCode []byte,
	regXReg int,
	baseXReg int,
	displacement int32,
	forceDisp32 bool,
) []byte {
	result := make([]byte, 0, 3+len(opCode)+4)

	prefix := rex(64, regXReg, baseXReg)
	result = append(result, prefix)
	result = append(result, opCode...)

	var disp interface{}
	mod := modRMIndirectDisp
	if forceDisp32 {
		disp = displacement
	} else if displacement == 0 && baseXReg&0x07 != 5 {
		mod = modRMIndirect
	} else if displacement >= -128 && displacement <= 127 {
		mod = modRMIndirectDisp8
		disp = int8(displacement)
	} else {
		disp = displacement
	}

	result = append(
		result,
		mod|byte(regXReg&0x07)<<3|byte(baseXReg&0x07))

	if baseXReg&0x07 == 4 {
		result = append(result, sibNoIndexBaseRsp)
	}

	return encodeImmediate(result, disp)
}

// Instructions which encode the register in the opcode's lowest 3 bits (e.g.,
// push / pop).
func opCodeRegisterInstruction(opCode byte, register *architecture.Register) []byte {
	if register.IsExtended() {
		return []byte{rexPrefix | rexBBit, opCode + register.LowBits()}
	}
	return []byte{opCode + register.LowBits()}
}

func fitsInt8(value int32) bool {
	return value >= -128 && value <= 127
}

// <int dest> op= <int src>
//
// https://www.felixcloutier.com/x86/add  (01 /r)
// https://www.felixcloutier.com/x86/sub  (29 /r)
// https://www.felixcloutier.com/x86/and  (21 /r)
// https://www.felixcloutier.com/x86/or   (09 /r)
// https://www.felixcloutier.com/x86/xor  (31 /r)
// https://www.felixcloutier.com/x86/mov  (89 /r)
// https://www.felixcloutier.com/x86/cmp  (39 /r)
// https://www.felixcloutier.com/x86/test (85 /r)
//
// 64-bit: REX.W + <op> /r, with src in reg and dest in r/m.  i.e., the mod r/m
// byte is 0xc0 + src*8 + dest.
func registerRegisterInstruction(
	opCode byte,
	dest *architecture.Register,
	src *architecture.Register,
) []byte {
	return directAddressInstruction(
		64,
		[]byte{opCode},
		src.Encoding,
		dest.Encoding,
		nil)
}

// <int dest> op= <sign-extended immediate>
//
// https://www.felixcloutier.com/x86/add
// https://www.felixcloutier.com/x86/sub
//
// imm8:  REX.W + 83 /<ext> ib
// imm32: REX.W + 81 /<ext> id
func registerImmediateInstruction(
	opCodeExtension int,
	dest *architecture.Register,
	value int32,
) []byte {
	if fitsInt8(value) {
		return directAddressInstruction(
			64,
			[]byte{0x83},
			opCodeExtension,
			dest.Encoding,
			int8(value))
	}

	return directAddressInstruction(
		64,
		[]byte{0x81},
		opCodeExtension,
		dest.Encoding,
		value)
}

// https://www.felixcloutier.com/x86/mov
//
// mov r/m64, imm32: REX.W + C7 /0 id
func movImmediateInstruction(dest *architecture.Register, value int32) []byte {
	return directAddressInstruction(64, []byte{0xc7}, 0, dest.Encoding, value)
}

// One operand F7 / FF group instructions.
//
// https://www.felixcloutier.com/x86/imul (F7 /5)
// https://www.felixcloutier.com/x86/idiv (F7 /7)
// https://www.felixcloutier.com/x86/inc  (FF /0)
func unaryGroupInstruction(
	opCode byte,
	opCodeExtension int,
	register *architecture.Register,
) []byte {
	return directAddressInstruction(
		64,
		[]byte{opCode},
		opCodeExtension,
		register.Encoding,
		nil)
}

// https://www.felixcloutier.com/x86/call
//
// call r/m64: FF /2 (operand size is always 64-bit, no REX.W needed)
func callRegisterInstruction(target *architecture.Register) []byte {
	return directAddressInstruction(32, []byte{0xff}, 2, target.Encoding, nil)
}

// https://www.felixcloutier.com/x86/jcc
// https://www.felixcloutier.com/x86/jmp
//
// jmp rel32: E9 cd
// jcc rel32: 0F 8x cd
func jumpOpCode(kind architecture.JumpKind) []byte {
	switch kind.Condition() {
	case architecture.JumpAlways:
		return []byte{0xe9}
	case architecture.JumpEqual:
		return []byte{0x0f, 0x84}
	case architecture.JumpNotEqual:
		return []byte{0x0f, 0x85}
	case architecture.JumpLess:
		return []byte{0x0f, 0x8c}
	case architecture.JumpGreaterOrEqual:
		return []byte{0x0f, 0x8d}
	case architecture.JumpLessOrEqual:
		return []byte{0x0f, 0x8e}
	case architecture.JumpGreater:
		return []byte{0x0f, 0x8f}
	default:
		panic("should never happen")
	}
}

func jumpMnemonic(kind architecture.JumpKind) string {
	switch kind.Condition() {
	case architecture.JumpAlways:
		return "jmp"
	case architecture.JumpEqual:
		return "je"
	case architecture.JumpNotEqual:
		return "jne"
	case architecture.JumpLess:
		return "jl"
	case architecture.JumpGreaterOrEqual:
		return "jge"
	case architecture.JumpLessOrEqual:
		return "jle"
	case architecture.JumpGreater:
		return "jg"
	default:
		panic("should never happen")
	}
}
