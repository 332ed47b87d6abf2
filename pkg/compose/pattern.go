// Package compose resolves a lipid class's tail-position pattern into one
// deterministic representative set of tail building blocks.
package compose

import (
	"github.com/ChrisMcGann/LipidKey/pkg/core"
)

// Position codes recognized in a pattern.
const (
	CodeBase  = 'B'
	CodeAcyl  = 'A'
	CodeEther = 'O'
	CodeVinyl = 'P'
)

// Pattern is the ordered sequence of position codes describing the tail slots
// a class requires, e.g. "AAO" for two acyl slots and one ether slot.
type Pattern string

// Group is one position code and the number of slots it requires.
type Group struct {
	Code  byte
	Count int
}

// ChainType maps a position code to its chain type. ok is false for codes
// that are not recognized.
func ChainType(code byte) (t core.ChainType, ok bool) {
	switch code {
	case CodeBase:
		return core.Base, true
	case CodeAcyl:
		return core.Acyl, true
	case CodeEther:
		return core.Ether, true
	case CodeVinyl:
		return core.Vinyl, true
	}
	return 0, false
}

// Groups counts repeated codes. Groups are returned in the order each code
// first appears in the pattern; unrecognized codes are skipped.
func (p Pattern) Groups() []Group {
	var groups []Group
	index := make(map[byte]int)
	for i := 0; i < len(p); i++ {
		code := p[i]
		if _, ok := ChainType(code); !ok {
			continue
		}
		if j, seen := index[code]; seen {
			groups[j].Count++
			continue
		}
		index[code] = len(groups)
		groups = append(groups, Group{Code: code, Count: 1})
	}
	return groups
}

// Slots returns the recognized codes of the pattern in slot order.
func (p Pattern) Slots() []byte {
	slots := make([]byte, 0, len(p))
	for i := 0; i < len(p); i++ {
		if _, ok := ChainType(p[i]); ok {
			slots = append(slots, p[i])
		}
	}
	return slots
}

// SlotCount is the number of recognized slots, which always equals the sum of
// the group counts.
func (p Pattern) SlotCount() int {
	return len(p.Slots())
}
