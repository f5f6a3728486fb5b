// Package sweep reclaims cells the marker left flagged as garbage.
//
// Both policies rebuild the Free List from scratch, so cells that were free
// before the collection (and therefore unreachable and still flagged) return
// to it alongside newly dead cells.
//
//   - Targeted recycles every garbage cell and then grows the heap until at
//     least the requested number of free cells exists. It backs explicit
//     collection requests.
//   - Adaptive releases any segment in which every cell is garbage, keeping
//     at least Config.MinSegments, and recycles the garbage cells of the
//     rest. It backs the ordinary "ran out of cells" path and returns memory
//     promptly at the cost of regrowing sooner.
//
// Both run with the world stopped and cost O(total cells).
package sweep

import (
	"github.com/joshuapare/lispheap/heap"
	"github.com/joshuapare/lispheap/internal/logger"
)

// Result describes one sweep.
type Result struct {
	Reclaimed int // Garbage cells pushed onto the Free List
	Released  int // Segments returned to the system
	Grown     int // Segments added to reach a target
}

// Targeted pushes every garbage cell onto the Free List and then grows the
// heap one segment at a time while fewer than count cells were reclaimed.
// A non-positive count never grows.
func Targeted(h *heap.Heap, count int) Result {
	var res Result
	h.ResetFree()

	for seg := h.First(); seg != nil; seg = seg.Next() {
		res.Reclaimed += sweepSegment(h, seg)
	}

	short := count - res.Reclaimed
	for short > 0 {
		h.Grow()
		res.Grown++
		short -= h.CellsPerSegment()
	}

	logger.Debug("sweep: targeted", "count", count, "reclaimed", res.Reclaimed, "grown", res.Grown)
	return res
}

// Adaptive releases fully-garbage segments and recycles the garbage cells of
// the others.
func Adaptive(h *heap.Heap) Result {
	var res Result
	h.ResetFree()

	minSegs := h.Config().MinSegments
	var prev *heap.Segment
	seg := h.First()
	for seg != nil {
		next := seg.Next()
		saved := h.SaveFree()
		n := sweepSegment(h, seg)

		if n == seg.Len() && h.Segments() > minSegs {
			h.RestoreFree(saved)
			if err := h.ReleaseSegment(prev, seg); err != nil {
				// prev is always seg's predecessor, so only the unmap can fail.
				logger.Warn("sweep: segment release", "id", seg.ID(), "error", err)
			}
			res.Released++
		} else {
			res.Reclaimed += n
			prev = seg
		}
		seg = next
	}

	logger.Debug("sweep: adaptive", "reclaimed", res.Reclaimed, "released", res.Released,
		"segments", h.Segments())
	return res
}

// sweepSegment pushes seg's garbage cells onto the Free List, highest slot
// first, and returns how many it pushed.
func sweepSegment(h *heap.Heap, seg *heap.Segment) int {
	n := 0
	for slot := seg.Len() - 1; slot >= 0; slot-- {
		if seg.IsGarbage(slot) {
			h.Release(seg.Ref(slot))
			n++
		}
	}
	return n
}
