package architecture

import (
	"encoding/binary"
	"fmt"
)

// Logical offset from the start of a segment (code or data).  This is never a
// virtual address; only the final resolution step converts an offset into an
// Address.
type Offset int

func (offset Offset) String() string {
	return fmt.Sprintf("+0x%x", int(offset))
}

// Resolved virtual address of a segment byte.
type Address uint64

func (addr Address) String() string {
	return fmt.Sprintf("0x%x", uint64(addr))
}

type OutOfBoundsError struct {
	Segment string
	Offset  Offset
	Size    int
	Length  int
}

func (err *OutOfBoundsError) Error() string {
	return fmt.Sprintf(
		"%s segment: %d byte access at %d is out of bounds (length %d)",
		err.Segment,
		err.Size,
		int(err.Offset),
		err.Length)
}

// Growable little-endian byte segment.  Only offsets into the buffer are ever
// handed out; the backing storage may move on every append.
type Buffer struct {
	name  string
	bytes []byte
}

func NewBuffer(name string) *Buffer {
	return &Buffer{
		name:  name,
		bytes: make([]byte, 0, 256),
	}
}

func (buf *Buffer) Name() string {
	return buf.name
}

func (buf *Buffer) Len() int {
	return len(buf.bytes)
}

// The offset of the next appended byte.
func (buf *Buffer) Position() Offset {
	return Offset(len(buf.bytes))
}

func (buf *Buffer) AppendByte(value byte) {
	buf.bytes = append(buf.bytes, value)
}

func (buf *Buffer) AppendWord(value uint16) {
	buf.bytes = binary.LittleEndian.AppendUint16(buf.bytes, value)
}

func (buf *Buffer) AppendDword(value uint32) {
	buf.bytes = binary.LittleEndian.AppendUint32(buf.bytes, value)
}

func (buf *Buffer) AppendBytes(values ...byte) {
	buf.bytes = append(buf.bytes, values...)
}

func (buf *Buffer) checkBounds(offset Offset, size int) error {
	if offset < 0 || int(offset)+size > len(buf.bytes) {
		return &OutOfBoundsError{
			Segment: buf.name,
			Offset:  offset,
			Size:    size,
			Length:  len(buf.bytes),
		}
	}
	return nil
}

// Rewrites 4 bytes in place.  Requires offset+4 <= Len().
func (buf *Buffer) OverwriteDword(offset Offset, value uint32) error {
	err := buf.checkBounds(offset, 4)
	if err != nil {
		return err
	}

	binary.LittleEndian.PutUint32(buf.bytes[offset:], value)
	return nil
}

func (buf *Buffer) ReadDword(offset Offset) (uint32, error) {
	err := buf.checkBounds(offset, 4)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(buf.bytes[offset:]), nil
}

// Returns a copy of the buffer's content.
func (buf *Buffer) Bytes() []byte {
	result := make([]byte, len(buf.bytes))
	copy(result, buf.bytes)
	return result
}
