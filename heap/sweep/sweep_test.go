package sweep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/lispheap/heap"
	"github.com/joshuapare/lispheap/internal/format"
)

func newHeap(t *testing.T, cells, minSegs int) *heap.Heap {
	t.Helper()
	h, err := heap.New(heap.Config{CellsPerSegment: cells, MinSegments: minSegs})
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

// takeAll empties the Free List and returns the refs handed out.
func takeAll(h *heap.Heap) []format.Ref {
	var refs []format.Ref
	for {
		r, ok := h.Take()
		if !ok {
			return refs
		}
		h.Init(r, format.Int(1), format.Nil)
		refs = append(refs, r)
	}
}

// keep simulates a marker that found exactly refs reachable.
func keep(h *heap.Heap, refs ...format.Ref) {
	h.FlagAll()
	for _, r := range refs {
		h.Claim(format.PairRef(r))
	}
}

func TestTargetedReclaimsAllGarbage(t *testing.T) {
	h := newHeap(t, 64, 1)
	refs := takeAll(h)

	keep(h, refs[:10]...)
	res := Targeted(h, 1)

	assert.Equal(t, 54, res.Reclaimed)
	assert.Equal(t, 0, res.Grown)
	assert.Equal(t, 54, h.FreeCount())
	assert.Equal(t, 1, h.Segments())
}

func TestTargetedFullSegmentExactTarget(t *testing.T) {
	h := newHeap(t, 64, 1)
	takeAll(h)

	keep(h)
	res := Targeted(h, 64)

	assert.Equal(t, 64, res.Reclaimed)
	assert.Equal(t, 0, res.Grown, "an exactly met target does not grow")
	assert.Equal(t, 64, h.FreeCount())
	assert.Equal(t, 1, h.Segments())
}

func TestTargetedGrowsShortfall(t *testing.T) {
	h := newHeap(t, 32, 1)
	refs := takeAll(h)

	keep(h, refs...)
	res := Targeted(h, 70)

	assert.Equal(t, 0, res.Reclaimed)
	assert.Equal(t, 3, res.Grown)
	assert.Equal(t, 96, h.FreeCount())
	assert.Equal(t, 4, h.Segments())
}

func TestTargetedRebuildsFreeList(t *testing.T) {
	h := newHeap(t, 16, 1)
	refs := takeAll(h)
	// Four cells were already free before the collection.
	for _, r := range refs[12:] {
		h.Release(r)
	}

	keep(h, refs[:8]...)
	res := Targeted(h, 0)

	assert.Equal(t, 8, res.Reclaimed)
	assert.Equal(t, 8, h.FreeCount())

	got := takeAll(h)
	assert.ElementsMatch(t, refs[8:], got)
}

func TestAdaptiveReleasesEmptySegment(t *testing.T) {
	h := newHeap(t, 16, 1)
	first := takeAll(h)
	h.Grow()
	second := takeAll(h)
	require.Equal(t, 2, h.Segments())

	keep(h, first[0])
	res := Adaptive(h)

	assert.Equal(t, 1, res.Released)
	assert.Equal(t, 15, res.Reclaimed)
	assert.Equal(t, 1, h.Segments())
	assert.Equal(t, 15, h.FreeCount())
	assert.False(t, h.Contains(second[0]))

	for _, r := range takeAll(h) {
		assert.True(t, h.Contains(r), "free list only references live segments")
	}
}

func TestAdaptiveReleasesHeadSegment(t *testing.T) {
	h := newHeap(t, 16, 1)
	takeAll(h)
	h.Grow()
	second := takeAll(h)

	keep(h, second[3])
	res := Adaptive(h)

	assert.Equal(t, 1, res.Released)
	assert.Equal(t, 1, h.Segments())
	assert.Equal(t, h.First().Ref(0), second[0])
	assert.Equal(t, 15, h.FreeCount())
}

func TestAdaptiveKeepsMinSegments(t *testing.T) {
	h := newHeap(t, 16, 2)
	takeAll(h)

	keep(h)
	res := Adaptive(h)

	assert.Equal(t, 0, res.Released)
	assert.Equal(t, 32, res.Reclaimed)
	assert.Equal(t, 2, h.Segments())
}

func TestAdaptiveReleasesDownToMin(t *testing.T) {
	h := newHeap(t, 16, 1)
	h.Grow()
	h.Grow()
	takeAll(h)

	keep(h)
	res := Adaptive(h)

	assert.Equal(t, 2, res.Released)
	assert.Equal(t, 1, h.Segments())
	assert.Equal(t, 16, h.FreeCount())
}
