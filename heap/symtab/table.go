package symtab

import (
	"github.com/joshuapare/lispheap/heap/alloc"
	"github.com/joshuapare/lispheap/internal/format"
)

// Table interns symbols for one allocator. Not safe for concurrent use.
type Table struct {
	a *alloc.Allocator

	permanent map[string]format.Value
	transient map[string]format.Value
}

// New creates a table rooted in a's Root Set. Any symbols already listed in
// the Root Set's tables are indexed.
func New(a *alloc.Allocator) *Table {
	t := &Table{
		a:         a,
		permanent: make(map[string]format.Value),
		transient: make(map[string]format.Value),
	}
	t.reindex(a.Roots().Intern, t.permanent)
	t.reindex(a.Roots().Transient, t.transient)
	return t
}

func (t *Table) reindex(list format.Value, index map[string]format.Value) {
	h := t.a.Heap()
	for format.IsPair(list) {
		sym := h.Car(list)
		if raw, err := nameBytes(h, sym); err == nil {
			index[string(raw)] = sym
		}
		list = h.Cdr(list)
	}
}

// Len returns the number of permanent and transient symbols.
func (t *Table) Len() (permanent, transient int) {
	return len(t.permanent), len(t.transient)
}

// Intern returns the permanent symbol named name, creating it unbound
// (bound to itself) on first use.
func (t *Table) Intern(name string) (format.Value, error) {
	raw, err := encodeName(name)
	if err != nil {
		return format.Void, err
	}
	if sym, ok := t.permanent[string(raw)]; ok {
		return sym, nil
	}
	rs := t.a.Roots()
	sym := t.newSymbol(raw)
	rs.Intern = t.a.MakePair(sym, rs.Intern)
	t.permanent[string(raw)] = sym
	return sym, nil
}

// Transient returns the transient symbol named name. A permanent symbol of
// the same name does not shadow it.
func (t *Table) Transient(name string) (format.Value, error) {
	raw, err := encodeName(name)
	if err != nil {
		return format.Void, err
	}
	if sym, ok := t.transient[string(raw)]; ok {
		return sym, nil
	}
	rs := t.a.Roots()
	sym := t.newSymbol(raw)
	rs.Transient = t.a.MakePair(sym, rs.Transient)
	t.transient[string(raw)] = sym
	return sym, nil
}

// ClearTransient drops the transient table. Its symbols become garbage unless
// referenced from elsewhere.
func (t *Table) ClearTransient() {
	t.a.Roots().Transient = format.Nil
	clear(t.transient)
}

// Lookup returns the permanent symbol named name without creating it.
func (t *Table) Lookup(name string) (format.Value, bool) {
	raw, err := encodeName(name)
	if err != nil {
		return format.Void, false
	}
	sym, ok := t.permanent[string(raw)]
	return sym, ok
}

// Name decodes sym's name.
func (t *Table) Name(sym format.Value) (string, error) {
	raw, err := nameBytes(t.a.Heap(), sym)
	if err != nil {
		return "", err
	}
	return decodeName(raw)
}

// newSymbol allocates an unbound symbol named raw. The result is not
// protected.
func (t *Table) newSymbol(raw []byte) format.Value {
	name := packName(t.a, raw)
	if !format.IsName(name) {
		return t.a.MakeSymbol(format.Void, name)
	}
	t.a.Protect(name)
	sym := t.a.MakeSymbol(format.Void, name)
	t.a.Unprotect()
	return sym
}

// Get returns the property key of sym, or Nil.
func (t *Table) Get(sym, key format.Value) (format.Value, error) {
	if !format.IsSymbol(sym) {
		return format.Void, ErrNotSymbol
	}
	h := t.a.Heap()
	for p := h.Tail(sym); format.IsPair(p); p = h.Cdr(p) {
		if entry := h.Car(p); h.Car(entry) == key {
			return h.Cdr(entry), nil
		}
	}
	return format.Nil, nil
}

// Put sets the property key of sym to val.
func (t *Table) Put(sym, key, val format.Value) error {
	if !format.IsSymbol(sym) {
		return ErrNotSymbol
	}
	h := t.a.Heap()
	for p := h.Tail(sym); format.IsPair(p); p = h.Cdr(p) {
		if entry := h.Car(p); h.Car(entry) == key {
			h.SetCdr(entry, val)
			return nil
		}
	}

	t.a.Protect(sym)
	entry := t.a.MakePair(key, val)
	t.a.Protect(entry)
	cell := t.a.MakePair(entry, h.Tail(sym))
	t.a.UnprotectN(2)
	h.SetTail(sym, cell)
	return nil
}
