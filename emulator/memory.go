package emulator

import (
	"encoding/binary"

	"github.com/pattyshack/wren/architecture"
)

type segment struct {
	name     string
	base     architecture.Address
	bytes    []byte
	writable bool
}

func (seg *segment) contains(address architecture.Address, size int) bool {
	return address >= seg.base &&
		uint64(address-seg.base)+uint64(size) <= uint64(len(seg.bytes))
}

type memory struct {
	segments []*segment
}

func (mem *memory) add(seg *segment) {
	mem.segments = append(mem.segments, seg)
}

func (mem *memory) find(
	address architecture.Address,
	size int,
) (*segment, error) {
	for _, seg := range mem.segments {
		if seg.contains(address, size) {
			return seg, nil
		}
	}
	return nil, &MemoryFaultError{Address: address, Size: size}
}

func (mem *memory) slice(
	address architecture.Address,
	size int,
	write bool,
) ([]byte, error) {
	seg, err := mem.find(address, size)
	if err != nil {
		return nil, err
	}

	if write && !seg.writable {
		return nil, &MemoryFaultError{Address: address, Size: size}
	}

	start := address - seg.base
	return seg.bytes[start : int(start)+size], nil
}

func (mem *memory) read64(address architecture.Address) (uint64, error) {
	bytes, err := mem.slice(address, 8, false)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(bytes), nil
}

func (mem *memory) write64(address architecture.Address, value uint64) error {
	bytes, err := mem.slice(address, 8, true)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(bytes, value)
	return nil
}
