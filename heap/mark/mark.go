// Package mark implements the reachability marker of the collector.
//
// Before marking, every cell is flagged "still garbage". Mark clears the flag
// of each cell reachable from a value: Pair chains recurse into the head and
// iterate along the tail, Symbols recurse into their binding and iterate
// along their name/tail chain, and name fragment cells (terminal heap atoms)
// are cleared iteratively. A cell whose flag is already clear stops the walk,
// which makes marking idempotent and cycle safe.
//
// Iterating the tail keeps native stack growth proportional to the depth of
// nested sub-structure rather than to list length, so a list of a million
// elements marks with constant recursion depth.
package mark

import (
	"github.com/joshuapare/lispheap/heap/roots"
	"github.com/joshuapare/lispheap/internal/format"
)

// Cells is the view of the heap the marker needs. *heap.Heap implements it.
type Cells interface {
	Claim(v format.Value) bool
	Car(v format.Value) format.Value
	Cdr(v format.Value) format.Value
	Val(v format.Value) format.Value
	Tail(v format.Value) format.Value
}

// Layout selects one of two traversal shapes. Both compute the identical
// reachable set and differ only in native stack usage.
type Layout uint8

const (
	// LayoutLoop is a single function with an outer loop that re-enters the
	// tail walk after every nested call.
	LayoutLoop Layout = iota

	// LayoutSplit is a pair of functions: mark walks Pair chains and hands a
	// Symbol's name/tail chain to markTail.
	LayoutSplit
)

// String returns the layout's name.
func (l Layout) String() string {
	switch l {
	case LayoutLoop:
		return "loop"
	case LayoutSplit:
		return "split"
	default:
		return "unknown"
	}
}

// ParseLayout maps a name back to a Layout.
func ParseLayout(s string) (Layout, bool) {
	switch s {
	case "loop":
		return LayoutLoop, true
	case "split":
		return LayoutSplit, true
	default:
		return 0, false
	}
}

// Stats describes the last marking pass.
type Stats struct {
	Roots    int // Root values visited
	Marked   int // Cells whose flag was cleared
	MaxDepth int // Deepest native recursion reached
}

// Marker clears the garbage flags of reachable cells.
type Marker struct {
	h      Cells
	layout Layout

	depth int
	stats Stats
}

// New creates a marker over h.
func New(h Cells, layout Layout) *Marker {
	return &Marker{h: h, layout: layout}
}

// Layout returns the traversal layout in use.
func (m *Marker) Layout() Layout { return m.layout }

// Stats returns the statistics accumulated since the last Reset.
func (m *Marker) Stats() Stats { return m.stats }

// Reset clears the statistics ahead of a new collection.
func (m *Marker) Reset() {
	m.depth = 0
	m.stats = Stats{}
}

// MarkRoots marks everything reachable from every root in s.
func (m *Marker) MarkRoots(s roots.Scanner) {
	s.Scan(func(v format.Value) {
		m.stats.Roots++
		m.Mark(v)
	})
}

// Mark marks everything reachable from v. Inline atoms are ignored.
func (m *Marker) Mark(v format.Value) {
	if !format.IsHeap(v) {
		return
	}
	if m.layout == LayoutSplit {
		m.markSplit(v)
		return
	}
	m.markLoop(v)
}

func (m *Marker) enter() {
	m.depth++
	if m.depth > m.stats.MaxDepth {
		m.stats.MaxDepth = m.depth
	}
}

func (m *Marker) leave() { m.depth-- }

// claim clears v's flag, counting it. False means already visited.
func (m *Marker) claim(v format.Value) bool {
	if !m.h.Claim(v) {
		return false
	}
	m.stats.Marked++
	return true
}

// markNames clears a chain of name fragments.
func (m *Marker) markNames(v format.Value) {
	for format.IsName(v) && m.claim(v) {
		v = m.h.Val(v)
	}
}

func (m *Marker) markLoop(v format.Value) {
	m.enter()
	defer m.leave()

	for {
		switch {
		case format.IsPair(v):
			if !m.claim(v) {
				return
			}
			if head := m.h.Car(v); format.IsHeap(head) {
				m.markLoop(head)
			}
			v = m.h.Cdr(v)
		case format.IsSymbol(v):
			if !m.claim(v) {
				return
			}
			if val := m.h.Val(v); format.IsHeap(val) {
				m.markLoop(val)
			}
			v = m.h.Tail(v)
		case format.IsName(v):
			m.markNames(v)
			return
		default:
			return
		}
	}
}
