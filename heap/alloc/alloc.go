package alloc

import (
	"fmt"

	"github.com/joshuapare/lispheap/heap"
	"github.com/joshuapare/lispheap/heap/mark"
	"github.com/joshuapare/lispheap/heap/roots"
	"github.com/joshuapare/lispheap/internal/format"
)

// Allocator builds cells and collects when the heap runs dry.
type Allocator struct {
	h       *heap.Heap
	rs      *roots.Roots
	scanner roots.Scanner
	marker  *mark.Marker
	opts    Options

	collecting bool
	stats      Stats
}

// New wires an allocator to a heap and its Root Set.
func New(h *heap.Heap, rs *roots.Roots, opts Options) *Allocator {
	var scanner roots.Scanner = rs
	if opts.ExtraRoots != nil {
		scanner = roots.Multi{rs, opts.ExtraRoots}
	}
	return &Allocator{
		h:       h,
		rs:      rs,
		scanner: scanner,
		marker:  mark.New(h, opts.Layout),
		opts:    opts,
	}
}

// Heap returns the underlying heap.
func (a *Allocator) Heap() *heap.Heap { return a.h }

// Roots returns the Root Set scanned by every collection.
func (a *Allocator) Roots() *roots.Roots { return a.rs }

// Options returns the options the allocator was built with.
func (a *Allocator) Options() Options { return a.opts }

// MakePair returns a new Pair {head, tail}. Both arguments are protected
// across any collection this triggers.
func (a *Allocator) MakePair(head, tail format.Value) format.Value {
	r, ok := a.h.Take()
	if !ok {
		a.rs.Push(head)
		a.rs.Push(tail)
		a.exhausted()
		a.rs.Drop(2)
		r = a.mustTake()
	}
	a.h.Init(r, head, tail)
	a.stats.Pairs++
	return format.PairRef(r)
}

// MakeSymbol returns a new Symbol bound to value, or to itself when value is
// Void. Only value is protected: name must be an inline atom or already
// reachable from the Root Set.
func (a *Allocator) MakeSymbol(value, name format.Value) format.Value {
	r, ok := a.h.Take()
	if !ok {
		if value == format.Void {
			a.exhausted()
		} else {
			a.rs.Push(value)
			a.exhausted()
			a.rs.Drop(1)
		}
		r = a.mustTake()
	}
	sym := format.SymbolRef(r)
	if value == format.Void {
		value = sym
	}
	a.h.Init(r, name, value)
	a.stats.Symbols++
	return sym
}

// MakeNamedSlot returns a new name fragment holding the packed text word
// name and pointing at initial, or at itself when initial is Void. Neither
// argument is protected: name is inline and initial must already be
// reachable.
func (a *Allocator) MakeNamedSlot(name, initial format.Value) format.Value {
	r, ok := a.h.Take()
	if !ok {
		a.exhausted()
		r = a.mustTake()
	}
	slot := format.NameRef(r)
	if initial == format.Void {
		initial = slot
	}
	a.h.Init(r, name, initial)
	a.stats.Names++
	return slot
}

func (a *Allocator) mustTake() format.Ref {
	r, ok := a.h.Take()
	if !ok {
		// exhausted always leaves at least one free cell or panics.
		panic(fmt.Errorf("%w: free list empty after collection", heap.ErrOutOfMemory))
	}
	return r
}

// ---- shadow stack ----

// Protect pushes v onto the shadow stack so it survives collections until
// the matching Unprotect.
func (a *Allocator) Protect(v format.Value) {
	a.rs.Push(v)
}

// Unprotect pops the most recently protected value and returns it.
func (a *Allocator) Unprotect() format.Value {
	if a.rs.Depth() == 0 {
		panic(ErrShadowUnderflow)
	}
	return a.rs.Pop()
}

// UnprotectN pops the n most recently protected values.
func (a *Allocator) UnprotectN(n int) {
	if n > a.rs.Depth() {
		panic(ErrShadowUnderflow)
	}
	a.rs.Drop(n)
}

// Protected returns the shadow stack depth.
func (a *Allocator) Protected() int { return a.rs.Depth() }
