// Package heap owns the cell memory of an interpreter session: a chain of
// fixed-size segments and the Free List threaded through their unused cells.
//
// # Overview
//
// Every heap object is a cell of two 64-bit words. Cells live in segments of
// Config.CellsPerSegment cells; a segment is the unit of growth and release.
// Segment memory is obtained from the system allocator (an anonymous private
// mapping on Linux and Darwin, the Go heap elsewhere), so releasing a segment
// returns its memory to the OS immediately.
//
//	h, err := heap.New(heap.DefaultConfig)
//	if err != nil {
//	    return err
//	}
//	defer h.Close()
//
//	ref, ok := h.Take()      // pop the Free List
//	h.SetCar(format.PairRef(ref), format.Int(1))
//
// # Cell References
//
// A cell reference is segmentID*CellsPerSegment + slot. Segment IDs start at
// 1, so reference 0 never names a cell and format.Void is never a heap value.
// IDs of released segments are recycled by later growth.
//
// # Garbage Flags
//
// Each segment carries a "still garbage" bitset indexed by slot. A collection
// sets every bit (FlagAll), the marker clears the bits of reachable cells
// (Claim), and the sweeper recycles whatever is still set. The flags are
// meaningless outside a collection.
//
// # Fatal Exhaustion
//
// Growth can fail when Config.MaxSegments is reached or the system refuses
// memory. There is no recovery: Config.Fatal is invoked and, if it returns,
// the heap panics with an error wrapping ErrOutOfMemory.
//
// # Thread Safety
//
// A Heap is not thread-safe. The interpreter is single-threaded and a
// collection runs to completion before control returns.
package heap
