package heap

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/joshuapare/lispheap/internal/format"
)

// Segment is a contiguous block of cells plus its link in the segment chain.
type Segment struct {
	id      uint32
	cells   int
	data    []byte         // cells*format.CellSize bytes
	garbage *bitset.BitSet // still-garbage flag per slot
	mapped  bool           // data came from mapSegment and must be unmapped
	next    *Segment
}

// ID returns the segment's ID. IDs of released segments are reused.
func (s *Segment) ID() uint32 { return s.id }

// Len returns the number of cells in the segment.
func (s *Segment) Len() int { return s.cells }

// Next returns the following segment in the chain, or nil.
func (s *Segment) Next() *Segment { return s.next }

// Ref returns the global cell reference of slot.
func (s *Segment) Ref(slot int) format.Ref {
	return format.Ref(int(s.id)*s.cells + slot)
}

// IsGarbage reports whether slot is still flagged garbage.
func (s *Segment) IsGarbage(slot int) bool {
	return s.garbage.Test(uint(slot))
}

// GarbageCount returns the number of flagged slots.
func (s *Segment) GarbageCount() int {
	return int(s.garbage.Count())
}

// flagAll marks every slot as presumed garbage.
func (s *Segment) flagAll() {
	s.garbage.ClearAll()
	s.garbage.FlipRange(0, uint(s.cells))
}

func (s *Segment) word0(slot int) format.Value {
	return format.ReadWord(s.data, format.CellOffset(slot)+format.Word0Offset)
}

func (s *Segment) word1(slot int) format.Value {
	return format.ReadWord(s.data, format.CellOffset(slot)+format.Word1Offset)
}

func (s *Segment) setWord0(slot int, v format.Value) {
	format.PutWord(s.data, format.CellOffset(slot)+format.Word0Offset, v)
}

func (s *Segment) setWord1(slot int, v format.Value) {
	format.PutWord(s.data, format.CellOffset(slot)+format.Word1Offset, v)
}
