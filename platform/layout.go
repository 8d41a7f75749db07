package platform

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/pattyshack/wren/architecture"
)

type RelocationKind string

const (
	// x64-style sign-extended 32-bit absolute address of a data segment entry,
	// i.e., the imm32 field of `mov r/m64, imm32`.
	//
	// Patched value = uint32(DataBase + To)
	DataRelocation = RelocationKind("data")

	// Same as DataRelocation, but the target is the shared empty string
	// sentinel (a single NUL byte).  Size is always 0.
	EmptyStringRelocation = RelocationKind("empty-string")
)

type Relocation struct {
	Kind RelocationKind

	// Offset of the 4 placeholder bytes, relative to the beginning of the code
	// segment.
	From architecture.Offset

	// Offset of the referenced entry, relative to the beginning of the data
	// segment.
	To architecture.Offset

	// Number of data bytes referenced.  Includes the NUL terminator for strings.
	Size int
}

func (rel Relocation) String() string {
	return fmt.Sprintf(
		"%s code%s -> data%s (%d bytes)",
		rel.Kind,
		rel.From,
		rel.To,
		rel.Size)
}

// Relocations in emission order.  Entries are never reordered or removed.
type RelocationTable struct {
	entries []Relocation
}

func (table *RelocationTable) Add(rel Relocation) {
	table.entries = append(table.entries, rel)
}

func (table *RelocationTable) Len() int {
	return len(table.entries)
}

func (table *RelocationTable) Entries() []Relocation {
	result := make([]Relocation, len(table.entries))
	copy(result, table.entries)
	return result
}

// The finished output of a compilation unit.
type Artifact struct {
	Code        []byte
	Data        []byte
	Relocations []Relocation
}

func (artifact *Artifact) validate(idx int, rel Relocation) error {
	if rel.From < 0 || int(rel.From)+4 > len(artifact.Code) {
		return &RelocationError{
			Index:      idx,
			Relocation: rel,
			Reason: fmt.Sprintf(
				"placeholder is outside of code segment (length %d)",
				len(artifact.Code)),
		}
	}

	if rel.To < 0 || rel.Size < 0 || int(rel.To)+rel.Size > len(artifact.Data) {
		return &RelocationError{
			Index:      idx,
			Relocation: rel,
			Reason: fmt.Sprintf(
				"target is outside of data segment (length %d)",
				len(artifact.Data)),
		}
	}

	return nil
}

// Returns a copy of the code segment with every relocation placeholder
// replaced by the target's address, given the data segment is loaded at
// dataBase.
func (artifact *Artifact) Resolve(dataBase architecture.Address) ([]byte, error) {
	code := make([]byte, len(artifact.Code))
	copy(code, artifact.Code)

	for idx, rel := range artifact.Relocations {
		err := artifact.validate(idx, rel)
		if err != nil {
			return nil, err
		}

		address := dataBase + architecture.Address(rel.To)
		if address > math.MaxInt32 {
			return nil, &RelocationError{
				Index:      idx,
				Relocation: rel,
				Reason: fmt.Sprintf(
					"address %s does not fit in a sign-extended imm32",
					address),
			}
		}

		binary.LittleEndian.PutUint32(code[rel.From:], uint32(address))
	}

	return code, nil
}

// The resolved address of every relocation, in emission order.
func (artifact *Artifact) Addresses(
	dataBase architecture.Address,
) []architecture.Address {
	return lo.Map(
		artifact.Relocations,
		func(rel Relocation, _ int) architecture.Address {
			return dataBase + architecture.Address(rel.To)
		})
}
