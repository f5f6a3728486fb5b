package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/lispheap/heap"
	"github.com/joshuapare/lispheap/heap/mark"
	"github.com/joshuapare/lispheap/heap/roots"
	"github.com/joshuapare/lispheap/internal/format"
)

// newTestAllocator builds an allocator over a fresh heap of 64-cell segments.
func newTestAllocator(t testing.TB, opts Options) *Allocator {
	t.Helper()
	return newTestAllocatorConfig(t, heap.Config{CellsPerSegment: 64, MinSegments: 1}, opts)
}

func newTestAllocatorConfig(t testing.TB, cfg heap.Config, opts Options) *Allocator {
	t.Helper()
	h, err := heap.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return New(h, roots.New(), opts)
}

// buildList conses a right-nested list of 0..n-1, keeping the partial list
// protected so intervening collections cannot reclaim it.
func buildList(a *Allocator, n int) format.Value {
	list := format.Nil
	a.Protect(list)
	for i := n - 1; i >= 0; i-- {
		list = a.MakePair(format.Int(int64(i)), list)
		a.Unprotect()
		a.Protect(list)
	}
	return a.Unprotect()
}

// listInts reads a list of fixnums back.
func listInts(h *heap.Heap, v format.Value) []int64 {
	var out []int64
	for format.IsPair(v) {
		out = append(out, format.IntOf(h.Car(v)))
		v = h.Cdr(v)
	}
	return out
}

func seq(n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = int64(i)
	}
	return out
}

var allOptions = map[string]Options{
	"loop/adaptive":  {Layout: mark.LayoutLoop, Policy: PolicyAdaptive},
	"split/adaptive": {Layout: mark.LayoutSplit, Policy: PolicyAdaptive},
	"loop/targeted":  {Layout: mark.LayoutLoop, Policy: PolicyTargeted},
	"split/targeted": {Layout: mark.LayoutSplit, Policy: PolicyTargeted},
}
