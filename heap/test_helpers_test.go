package heap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestHeap creates a heap of small segments and closes it with the test.
func newTestHeap(t testing.TB, cells, minSegs int) *Heap {
	t.Helper()
	h, err := New(Config{Name: "test", CellsPerSegment: cells, MinSegments: minSegs})
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

// drain takes every free cell and returns the refs in order.
func drain(t testing.TB, h *Heap) []uint32 {
	t.Helper()
	var refs []uint32
	for {
		r, ok := h.Take()
		if !ok {
			return refs
		}
		refs = append(refs, r)
	}
}
