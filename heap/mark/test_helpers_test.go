package mark

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/lispheap/heap"
	"github.com/joshuapare/lispheap/internal/format"
)

// builder allocates cells straight off the Free List, growing as needed.
// Marking tests never collect, so nothing needs protecting.
type builder struct {
	t testing.TB
	h *heap.Heap
}

func newBuilder(t testing.TB, cells int) *builder {
	t.Helper()
	h, err := heap.New(heap.Config{CellsPerSegment: cells, MinSegments: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return &builder{t: t, h: h}
}

func (b *builder) take() format.Ref {
	r, ok := b.h.Take()
	if !ok {
		b.h.Grow()
		r, ok = b.h.Take()
		require.True(b.t, ok)
	}
	return r
}

func (b *builder) cons(head, tail format.Value) format.Value {
	r := b.take()
	b.h.Init(r, head, tail)
	return format.PairRef(r)
}

func (b *builder) symbol(val, tail format.Value) format.Value {
	r := b.take()
	b.h.Init(r, tail, val)
	return format.SymbolRef(r)
}

func (b *builder) name(text string, next format.Value) format.Value {
	w, ok := format.PackText([]byte(text))
	require.True(b.t, ok)
	r := b.take()
	b.h.Init(r, w, next)
	return format.NameRef(r)
}

// list builds a right-nested list of n fixnums.
func (b *builder) list(n int) format.Value {
	v := format.Nil
	for i := n - 1; i >= 0; i-- {
		v = b.cons(format.Int(int64(i)), v)
	}
	return v
}

// garbageSet records which cells are still flagged, keyed by ref.
func garbageSet(h *heap.Heap) map[format.Ref]bool {
	out := make(map[format.Ref]bool)
	for seg := h.First(); seg != nil; seg = seg.Next() {
		for slot := range seg.Len() {
			if seg.IsGarbage(slot) {
				out[seg.Ref(slot)] = true
			}
		}
	}
	return out
}
