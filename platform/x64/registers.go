package x64

import (
	"github.com/pattyshack/wren/architecture"
)

// https://wiki.osdev.org/X86-64_Instruction_Encoding#Registers
var (
	rax = architecture.NewGeneralRegister("rax", 0)
	rcx = architecture.NewGeneralRegister("rcx", 1)
	rdx = architecture.NewGeneralRegister("rdx", 2)
	rbx = architecture.NewGeneralRegister("rbx", 3)
	rsp = architecture.NewStackPointerRegister("rsp", 4)
	rbp = architecture.NewGeneralRegister("rbp", 5)
	rsi = architecture.NewGeneralRegister("rsi", 6)
	rdi = architecture.NewGeneralRegister("rdi", 7)
	r8  = architecture.NewGeneralRegister("r8", 8)
	r9  = architecture.NewGeneralRegister("r9", 9)
	r10 = architecture.NewGeneralRegister("r10", 10)
	r11 = architecture.NewGeneralRegister("r11", 11)
	r12 = architecture.NewGeneralRegister("r12", 12)
	r13 = architecture.NewGeneralRegister("r13", 13)
	r14 = architecture.NewGeneralRegister("r14", 14)
	r15 = architecture.NewGeneralRegister("r15", 15)

	RegisterSet = architecture.NewRegisterSet(
		rbp, // frame pointer
		rax, // accumulator
		rcx, // scratch
		rax, rcx, rdx, rbx, rsp, rbp, rsi, rdi,
		r8, r9, r10, r11, r12, r13, r14, r15)

	// Linux syscall argument registers, in argument order.
	//
	// caller-saved:  rax rcx r11
	// system number: rax
	// return value:  rax
	sysCallArgumentRegisters = []*architecture.Register{
		rdi, rsi, rdx, r10, r8, r9,
	}
)
