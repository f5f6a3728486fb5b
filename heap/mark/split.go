package mark

import "github.com/joshuapare/lispheap/internal/format"

// markSplit walks a Pair chain and passes whatever ends it to markTail.
func (m *Marker) markSplit(v format.Value) {
	m.enter()
	defer m.leave()

	for format.IsPair(v) {
		if !m.claim(v) {
			return
		}
		if head := m.h.Car(v); format.IsHeap(head) {
			m.markSplit(head)
		}
		v = m.h.Cdr(v)
	}
	if format.IsHeap(v) {
		m.markTail(v)
	}
}

// markTail walks a Symbol's name/tail chain, which may mix Pairs, further
// Symbols and a terminal run of name fragments.
func (m *Marker) markTail(v format.Value) {
	m.enter()
	defer m.leave()

	for {
		for format.IsPair(v) {
			if !m.claim(v) {
				return
			}
			if head := m.h.Car(v); format.IsHeap(head) {
				m.markSplit(head)
			}
			v = m.h.Cdr(v)
		}
		if !format.IsSymbol(v) {
			break
		}
		if !m.claim(v) {
			return
		}
		if val := m.h.Val(v); format.IsHeap(val) {
			m.markSplit(val)
		}
		v = m.h.Tail(v)
	}
	m.markNames(v)
}
