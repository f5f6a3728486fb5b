package roots

import "github.com/joshuapare/lispheap/internal/format"

// Scanner is anything that can enumerate root Values. The collector depends
// on this rather than on *Roots so embedders can add their own sources.
type Scanner interface {
	Scan(visit func(format.Value))
}

// Scan calls visit once for every root Value, in a fixed order: globals,
// intern tables, call cache, control stack, binding frames (symbol then
// value), catch frames (tag when set, then cleanup). It has no side effects;
// visit must not modify the Root Set.
func (r *Roots) Scan(visit func(format.Value)) {
	for _, v := range r.Globals {
		visit(v)
	}
	visit(r.Intern)
	visit(r.Transient)
	visit(r.CallFn)
	visit(r.CallArgs)
	for _, v := range r.stack {
		visit(v)
	}
	for f := r.bind; f != nil; f = f.Link {
		for i := len(f.Bindings) - 1; i >= 0; i-- {
			visit(f.Bindings[i].Sym)
			visit(f.Bindings[i].Val)
		}
	}
	for f := r.catch; f != nil; f = f.Link {
		if f.Tag != format.Void {
			visit(f.Tag)
		}
		visit(f.Fin)
	}
}

// Count returns the number of Values Scan would visit.
func (r *Roots) Count() int {
	n := 0
	r.Scan(func(format.Value) { n++ })
	return n
}

// Multi combines several scanners into one.
type Multi []Scanner

// Scan visits every scanner in order.
func (m Multi) Scan(visit func(format.Value)) {
	for _, s := range m {
		s.Scan(visit)
	}
}

// Values is a fixed slice of roots, mostly useful in tests.
type Values []format.Value

// Scan visits each value.
func (vs Values) Scan(visit func(format.Value)) {
	for _, v := range vs {
		visit(v)
	}
}

var (
	_ Scanner = (*Roots)(nil)
	_ Scanner = Multi(nil)
	_ Scanner = Values(nil)
)
