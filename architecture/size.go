package architecture

const (
	// The System V ABI requires the stack pointer to be 16-byte aligned at
	// call boundaries.
	StackAlignment = 16
)

func AlignedStackSize(byteSize int) int {
	return (byteSize + StackAlignment - 1) / StackAlignment * StackAlignment
}
