package heap

import (
	"errors"
	"fmt"
	"math"

	"github.com/bits-and-blooms/bitset"

	"github.com/joshuapare/lispheap/internal/format"
	"github.com/joshuapare/lispheap/internal/logger"
)

// Heap is the session-owned heap: the segment chain and the Free List.
type Heap struct {
	cfg   Config
	cells int // cfg.CellsPerSegment, cached for the hot paths

	// Segment chain, in growth order
	head  *Segment
	tail  *Segment
	count int

	// Segments by ID for O(1) reference resolution; index 0 is never used
	segs    []*Segment
	freeIDs []uint32

	// Free List: linked through word0, terminated by format.Nil
	avail     format.Value
	freeCount int

	stats  Stats
	closed bool
}

// Stats holds heap statistics for testing and instrumentation.
type Stats struct {
	Segments     int // Live segments
	Cells        int // Live cells (Segments * CellsPerSegment)
	Free         int // Free List length
	GrowCalls    int // Segments ever allocated
	Released     int // Segments ever released
	PeakSegments int // High-water mark of Segments
}

// FreeState is a saved Free List anchor, used by the sweeper to withdraw the
// cells of a segment it decides to release.
type FreeState struct {
	head  format.Value
	count int
}

// New creates a heap holding cfg.MinSegments segments.
func New(cfg Config) (*Heap, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	h := &Heap{
		cfg:   cfg,
		cells: cfg.CellsPerSegment,
		segs:  make([]*Segment, 1, cfg.MinSegments+1),
		avail: format.Nil,
	}
	for range cfg.MinSegments {
		if err := h.grow(); err != nil {
			_ = h.Close()
			return nil, err
		}
	}
	return h, nil
}

// Config returns the configuration the heap was built with.
func (h *Heap) Config() Config { return h.cfg }

// CellsPerSegment returns the segment size in cells.
func (h *Heap) CellsPerSegment() int { return h.cells }

// Segments returns the number of live segments.
func (h *Heap) Segments() int { return h.count }

// First returns the head of the segment chain.
func (h *Heap) First() *Segment { return h.head }

// Stats returns a snapshot of the heap statistics.
func (h *Heap) Stats() Stats {
	s := h.stats
	s.Segments = h.count
	s.Cells = h.count * h.cells
	s.Free = h.freeCount
	return s
}

// Grow allocates one more segment and splices its cells onto the Free List.
// Failure is fatal: Config.Fatal is invoked and Grow panics.
func (h *Heap) Grow() {
	if err := h.grow(); err != nil {
		h.fatal(err)
	}
}

func (h *Heap) grow() error {
	if h.closed {
		return ErrClosed
	}
	if h.cfg.MaxSegments > 0 && h.count >= h.cfg.MaxSegments {
		return fmt.Errorf("%w: segment limit %d reached", ErrOutOfMemory, h.cfg.MaxSegments)
	}

	var id uint32
	if n := len(h.freeIDs); n > 0 {
		id = h.freeIDs[n-1]
	} else {
		id = uint32(len(h.segs))
	}
	if uint64(id+1)*uint64(h.cells) > math.MaxUint32 {
		return fmt.Errorf("%w: cell reference space exhausted", ErrOutOfMemory)
	}

	size := format.SegmentBytes(h.cells)
	var data []byte
	mapped := false
	if h.cfg.GoMemory {
		data = make([]byte, size)
	} else {
		var err error
		if data, err = mapSegment(size); err != nil {
			return fmt.Errorf("%w: %w", ErrOutOfMemory, err)
		}
		mapped = true
	}

	seg := &Segment{
		id:      id,
		cells:   h.cells,
		data:    data,
		garbage: bitset.New(uint(h.cells)),
		mapped:  mapped,
	}

	if n := len(h.freeIDs); n > 0 {
		h.freeIDs = h.freeIDs[:n-1]
		h.segs[id] = seg
	} else {
		h.segs = append(h.segs, seg)
	}
	if h.tail == nil {
		h.head = seg
	} else {
		h.tail.next = seg
	}
	h.tail = seg
	h.count++

	// Push in reverse so the Free List hands out the segment in slot order.
	for slot := h.cells - 1; slot >= 0; slot-- {
		h.push(seg, slot)
	}

	h.stats.GrowCalls++
	if h.count > h.stats.PeakSegments {
		h.stats.PeakSegments = h.count
	}
	logger.Debug("heap: segment grown", "id", id, "segments", h.count, "free", h.freeCount)
	return nil
}

// fatal reports unrecoverable exhaustion.
func (h *Heap) fatal(err error) {
	logger.Error("heap: fatal", "error", err, "segments", h.count)
	if h.cfg.Fatal != nil {
		h.cfg.Fatal(err)
	}
	panic(err)
}

// ReleaseSegment unlinks seg from the chain and returns its memory. prev must
// be the segment before seg, or nil when seg is the head. The caller must
// already have withdrawn seg's cells from the Free List.
func (h *Heap) ReleaseSegment(prev, seg *Segment) error {
	if prev == nil {
		if h.head != seg {
			return fmt.Errorf("%w: segment %d is not the chain head", ErrBadRef, seg.id)
		}
		h.head = seg.next
	} else {
		if prev.next != seg {
			return fmt.Errorf("%w: segment %d does not follow %d", ErrBadRef, seg.id, prev.id)
		}
		prev.next = seg.next
	}
	if h.tail == seg {
		h.tail = prev
	}
	seg.next = nil
	h.segs[seg.id] = nil
	h.freeIDs = append(h.freeIDs, seg.id)
	h.count--
	h.stats.Released++

	var err error
	if seg.mapped {
		err = unmapSegment(seg.data)
	}
	seg.data = nil
	logger.Debug("heap: segment released", "id", seg.id, "segments", h.count)
	return err
}

// Close returns every segment's memory. The heap is unusable afterwards.
func (h *Heap) Close() error {
	if h.closed {
		return nil
	}
	var errs []error
	for seg := h.head; seg != nil; seg = seg.next {
		if seg.mapped {
			errs = append(errs, unmapSegment(seg.data))
		}
		seg.data = nil
	}
	h.head, h.tail, h.segs, h.freeIDs = nil, nil, nil, nil
	h.count, h.freeCount, h.avail = 0, 0, format.Nil
	h.closed = true
	return errors.Join(errs...)
}

// ---- Free List ----

// Take pops the Free List. It reports false when the list is empty; the
// caller must collect or grow first.
func (h *Heap) Take() (format.Ref, bool) {
	if h.avail == format.Nil {
		return 0, false
	}
	ref := format.RefOf(h.avail)
	seg, slot := h.resolve(ref)
	h.avail = seg.word0(slot)
	h.freeCount--
	return ref, true
}

// Release pushes a cell onto the Free List.
func (h *Heap) Release(ref format.Ref) {
	seg, slot := h.resolve(ref)
	h.push(seg, slot)
}

func (h *Heap) push(seg *Segment, slot int) {
	seg.setWord0(slot, h.avail)
	seg.setWord1(slot, format.Void)
	h.avail = format.PairRef(seg.Ref(slot))
	h.freeCount++
}

// FreeCount returns the Free List length.
func (h *Heap) FreeCount() int { return h.freeCount }

// FreeHead returns the first Free List entry, or format.Nil.
func (h *Heap) FreeHead() format.Value { return h.avail }

// ResetFree empties the Free List ahead of a sweep that rebuilds it.
func (h *Heap) ResetFree() {
	h.avail = format.Nil
	h.freeCount = 0
}

// SaveFree captures the Free List anchor.
func (h *Heap) SaveFree() FreeState {
	return FreeState{head: h.avail, count: h.freeCount}
}

// RestoreFree rewinds the Free List to a saved anchor, dropping every cell
// pushed since.
func (h *Heap) RestoreFree(s FreeState) {
	h.avail = s.head
	h.freeCount = s.count
}

// ---- Garbage flags ----

// FlagAll marks every cell in every segment as presumed garbage.
func (h *Heap) FlagAll() {
	for seg := h.head; seg != nil; seg = seg.next {
		seg.flagAll()
	}
}

// Claim clears v's garbage flag and reports whether it was set. Non-heap
// values report false. The marker calls Claim exactly once per reachable cell
// per collection; a false result means "already visited".
func (h *Heap) Claim(v format.Value) bool {
	if !format.IsHeap(v) {
		return false
	}
	seg, slot := h.resolve(format.RefOf(v))
	if !seg.garbage.Test(uint(slot)) {
		return false
	}
	seg.garbage.Clear(uint(slot))
	return true
}

// IsGarbage reports whether v's cell is still flagged garbage.
func (h *Heap) IsGarbage(v format.Value) bool {
	if !format.IsHeap(v) {
		return false
	}
	seg, slot := h.resolve(format.RefOf(v))
	return seg.garbage.Test(uint(slot))
}

// ---- Cell access ----

// Contains reports whether r names a cell in a live segment.
func (h *Heap) Contains(r format.Ref) bool {
	id := int(r) / h.cells
	return id > 0 && id < len(h.segs) && h.segs[id] != nil
}

func (h *Heap) resolve(r format.Ref) (*Segment, int) {
	id := int(r) / h.cells
	if id <= 0 || id >= len(h.segs) || h.segs[id] == nil {
		panic(fmt.Errorf("%w: %d", ErrBadRef, r))
	}
	return h.segs[id], int(r) % h.cells
}

// Init writes both words of a freshly taken cell.
func (h *Heap) Init(r format.Ref, w0, w1 format.Value) {
	seg, slot := h.resolve(r)
	seg.setWord0(slot, w0)
	seg.setWord1(slot, w1)
}

// Car returns a Pair's head.
func (h *Heap) Car(v format.Value) format.Value {
	seg, slot := h.resolve(format.RefOf(v))
	return seg.word0(slot)
}

// Cdr returns a Pair's tail.
func (h *Heap) Cdr(v format.Value) format.Value {
	seg, slot := h.resolve(format.RefOf(v))
	return seg.word1(slot)
}

// SetCar replaces a Pair's head.
func (h *Heap) SetCar(v, x format.Value) {
	seg, slot := h.resolve(format.RefOf(v))
	seg.setWord0(slot, x)
}

// SetCdr replaces a Pair's tail.
func (h *Heap) SetCdr(v, x format.Value) {
	seg, slot := h.resolve(format.RefOf(v))
	seg.setWord1(slot, x)
}

// Val returns a Symbol's binding, or a name cell's next fragment.
func (h *Heap) Val(v format.Value) format.Value {
	seg, slot := h.resolve(format.RefOf(v))
	return seg.word1(slot)
}

// SetVal replaces a Symbol's binding.
func (h *Heap) SetVal(v, x format.Value) {
	seg, slot := h.resolve(format.RefOf(v))
	seg.setWord1(slot, x)
}

// Tail returns a Symbol's name-or-tail, or a name cell's packed text.
func (h *Heap) Tail(v format.Value) format.Value {
	seg, slot := h.resolve(format.RefOf(v))
	return seg.word0(slot)
}

// SetTail replaces a Symbol's name-or-tail.
func (h *Heap) SetTail(v, x format.Value) {
	seg, slot := h.resolve(format.RefOf(v))
	seg.setWord0(slot, x)
}
