package verify

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/joshuapare/lispheap/heap"
	"github.com/joshuapare/lispheap/heap/roots"
	"github.com/joshuapare/lispheap/internal/format"
)

// ValidationError describes a violated invariant.
type ValidationError struct {
	Type    string
	Message string
	Ref     format.Ref // offending cell, 0 when none
	Details map[string]any
}

func (e *ValidationError) Error() string {
	if e.Ref != 0 {
		return fmt.Sprintf("%s at cell %d: %s", e.Type, e.Ref, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// All runs every check and returns the first failure, or nil.
func All(h *heap.Heap, s roots.Scanner) error {
	if err := Segments(h); err != nil {
		return err
	}
	if err := FreeList(h); err != nil {
		return err
	}
	return Reachable(h, s)
}

// Segments validates the segment chain against the heap's bookkeeping.
func Segments(h *heap.Heap) error {
	cfg := h.Config()
	seen := make(map[uint32]bool)
	n := 0
	for seg := h.First(); seg != nil; seg = seg.Next() {
		if seen[seg.ID()] {
			return &ValidationError{
				Type:    "Segments",
				Message: fmt.Sprintf("segment %d linked twice", seg.ID()),
			}
		}
		seen[seg.ID()] = true
		if seg.Len() != h.CellsPerSegment() {
			return &ValidationError{
				Type:    "Segments",
				Message: fmt.Sprintf("segment %d has %d cells, expected %d", seg.ID(), seg.Len(), h.CellsPerSegment()),
			}
		}
		n++
	}

	if n != h.Segments() {
		return &ValidationError{
			Type:    "Segments",
			Message: fmt.Sprintf("chain holds %d segments, heap reports %d", n, h.Segments()),
		}
	}
	if n < cfg.MinSegments {
		return &ValidationError{
			Type:    "Segments",
			Message: fmt.Sprintf("%d segments below minimum %d", n, cfg.MinSegments),
		}
	}
	if cfg.MaxSegments != 0 && n > cfg.MaxSegments {
		return &ValidationError{
			Type:    "Segments",
			Message: fmt.Sprintf("%d segments above maximum %d", n, cfg.MaxSegments),
		}
	}
	return nil
}

// FreeList validates the Free List.
func FreeList(h *heap.Heap) error {
	_, err := freeSet(h)
	return err
}

// freeSet walks the Free List and returns the set of free refs.
func freeSet(h *heap.Heap) (*bitset.BitSet, error) {
	free := bitset.New(uint(h.Stats().Cells))
	n := 0
	for v := h.FreeHead(); v != format.Nil; v = h.Car(v) {
		if !format.IsPair(v) {
			return nil, &ValidationError{
				Type:    "FreeList",
				Message: fmt.Sprintf("entry %d is %s, not a cell", n, v),
			}
		}
		ref := format.RefOf(v)
		if !h.Contains(ref) {
			return nil, &ValidationError{
				Type:    "FreeList",
				Message: "entry outside live segments",
				Ref:     ref,
				Details: map[string]any{"index": n},
			}
		}
		if free.Test(uint(ref)) {
			return nil, &ValidationError{
				Type:    "FreeList",
				Message: "cycle",
				Ref:     ref,
				Details: map[string]any{"index": n},
			}
		}
		free.Set(uint(ref))
		n++
	}

	if n != h.FreeCount() {
		return nil, &ValidationError{
			Type:    "FreeList",
			Message: fmt.Sprintf("length %d, FreeCount %d", n, h.FreeCount()),
		}
	}
	return free, nil
}

// Reachable walks everything reachable from s and checks that no reachable
// cell is dangling or free.
func Reachable(h *heap.Heap, s roots.Scanner) error {
	free, err := freeSet(h)
	if err != nil {
		return err
	}

	seen := bitset.New(free.Len())
	var stack []format.Value
	s.Scan(func(v format.Value) {
		stack = append(stack, v)
	})

	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !format.IsHeap(v) {
			continue
		}

		ref := format.RefOf(v)
		if seen.Test(uint(ref)) {
			continue
		}
		if !h.Contains(ref) {
			return &ValidationError{
				Type:    "Reachable",
				Message: fmt.Sprintf("dangling reference %s", v),
				Ref:     ref,
			}
		}
		if free.Test(uint(ref)) {
			return &ValidationError{
				Type:    "Reachable",
				Message: fmt.Sprintf("reachable %s is on the Free List", v),
				Ref:     ref,
			}
		}
		seen.Set(uint(ref))

		switch {
		case format.IsPair(v):
			stack = append(stack, h.Car(v), h.Cdr(v))
		case format.IsSymbol(v):
			stack = append(stack, h.Val(v), h.Tail(v))
		case format.IsName(v):
			stack = append(stack, h.Val(v))
		}
	}
	return nil
}
