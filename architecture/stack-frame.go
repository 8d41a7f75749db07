package architecture

// Stack frame layout from top to bottom:
//
// |              | (low address)
// |...           |
// |--------------| <- stack pointer after the prologue (frame size aligned)
// |padding       |
// |--------------|
// |local var n   | [frame pointer - n * 8]
// |--------------|
// |...           |
// |--------------|
// |local var 1   | [frame pointer - 8]
// |--------------|
// |prev frame ptr| <- frame pointer
// |--------------|
// |ret address   |
// |--------------|
// |...           | (high address)
//
// Each unique variable name occupies a unique register-sized slot for the
// lifetime of the frame.  Slot offsets are positive distances below the frame
// pointer, which is what the frame-relative load/store operations expect.
type StackFrame struct {
	offsets map[string]int32
	names   []string
}

func NewStackFrame() *StackFrame {
	return &StackFrame{
		offsets: map[string]int32{},
	}
}

// Returns the slot offset for name, allocating a new slot on first use.
func (frame *StackFrame) Allocate(name string) int32 {
	offset, ok := frame.offsets[name]
	if ok {
		return offset
	}

	offset = int32((len(frame.names) + 1) * RegisterByteSize)
	frame.offsets[name] = offset
	frame.names = append(frame.names, name)
	return offset
}

func (frame *StackFrame) Offset(name string) (int32, bool) {
	offset, ok := frame.offsets[name]
	return offset, ok
}

func (frame *StackFrame) NumSlots() int {
	return len(frame.names)
}

// Number of bytes reserved below the frame pointer.
func (frame *StackFrame) Size() int32 {
	return int32(AlignedStackSize(len(frame.names) * RegisterByteSize))
}

// Variable names, in slot allocation order.
func (frame *StackFrame) Names() []string {
	names := make([]string, len(frame.names))
	copy(names, frame.names)
	return names
}
