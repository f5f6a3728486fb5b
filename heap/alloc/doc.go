// Package alloc is the allocation frontend of the cell heap: the constructors
// the evaluator calls, the collector they trigger on exhaustion, and the
// shadow-stack protocol that keeps caller-held temporaries alive across it.
//
// # Overview
//
//	h, _ := heap.New(heap.DefaultConfig)
//	rs := roots.New()
//	a := alloc.New(h, rs, alloc.DefaultOptions)
//
//	list := format.Nil
//	a.Protect(list)
//	for i := range 10 {
//	    list = a.MakePair(format.Int(int64(i)), list)
//	    a.Unprotect()
//	    a.Protect(list)
//	}
//	a.Unprotect()
//
// # Constructors
//
//   - MakePair(head, tail): a two-reference node
//   - MakeSymbol(value, name): a binding node; value Void binds it to itself
//   - MakeNamedSlot(name, initial): a name fragment; initial Void points it
//     at itself
//
// When the Free List is empty a constructor protects the arguments it owns,
// runs a collection, unprotects them, and takes the now-available cell.
// Exhaustion never surfaces as an error: either the collection frees a cell,
// the heap grows, or the heap's fatal hook fires.
//
// # Protect / Unprotect
//
// The collector only sees values reachable from the Root Set. A Value held in
// a Go local across a call that may allocate is invisible to it and must be
// protected first:
//
//	a.Protect(tmp)
//	x := a.MakePair(y, z) // may collect
//	a.Unprotect()
//
// Protection is strictly LIFO. Skipping it is a use-after-free, not a
// detected error.
//
// # Collection Policies
//
// PolicyAdaptive (the default) releases fully-empty segments on the
// exhaustion path and grows one segment if nothing could be reclaimed.
// PolicyTargeted recycles garbage and grows until a segment's worth of cells
// is free. CollectExplicit always uses the targeted sweep.
//
// # Thread Safety
//
// An Allocator is not thread-safe and a collection is never reentrant.
package alloc
