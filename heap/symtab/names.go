package symtab

import (
	"fmt"

	"golang.org/x/text/encoding/charmap"

	"github.com/joshuapare/lispheap/heap"
	"github.com/joshuapare/lispheap/heap/alloc"
	"github.com/joshuapare/lispheap/internal/format"
)

// encodeName converts a UTF-8 name to Latin-1 bytes.
func encodeName(name string) ([]byte, error) {
	encoded, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrEncoding, name, err)
	}
	return encoded, nil
}

// decodeName converts Latin-1 bytes back to UTF-8.
func decodeName(data []byte) (string, error) {
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode Latin-1 name: %w", err)
	}
	return string(decoded), nil
}

// packName stores raw name bytes: inline when short, otherwise as a chain of
// name fragments. The returned chain is NOT protected; the caller must
// protect it before the next allocation.
func packName(a *alloc.Allocator, raw []byte) format.Value {
	if w, ok := format.PackText(raw); ok {
		return w
	}

	// Split into 7-byte chunks; the last chunk (1..7 bytes) stays inline.
	n := (len(raw) + format.MaxTextLen - 1) / format.MaxTextLen
	last := raw[(n-1)*format.MaxTextLen:]
	next, _ := format.PackText(last)

	protected := false
	for i := n - 2; i >= 0; i-- {
		chunk, _ := format.PackText(raw[i*format.MaxTextLen : (i+1)*format.MaxTextLen])
		next = a.MakeNamedSlot(chunk, next)
		if protected {
			a.Unprotect()
		}
		a.Protect(next)
		protected = true
	}
	a.Unprotect()
	return next
}

// nameBytes reads a symbol's raw name, skipping any property list in front.
func nameBytes(h *heap.Heap, sym format.Value) ([]byte, error) {
	if !format.IsSymbol(sym) {
		return nil, ErrNotSymbol
	}
	v := h.Tail(sym)
	for format.IsPair(v) {
		v = h.Cdr(v)
	}

	var out []byte
	for format.IsName(v) {
		out = format.AppendText(out, h.Tail(v))
		next := h.Val(v)
		if next == v {
			return nil, fmt.Errorf("%w: self-referencing fragment", ErrCorruptName)
		}
		v = next
	}
	if !format.IsText(v) {
		return nil, fmt.Errorf("%w: ends in %s", ErrCorruptName, v)
	}
	return format.AppendText(out, v), nil
}
