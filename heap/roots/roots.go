// Package roots holds the Root Set of an interpreter session: every place the
// evaluator keeps a live Value that the collector must treat as a starting
// point, and the scanner that enumerates them.
//
// The control stack doubles as the shadow stack of the allocator's
// protect/unprotect protocol, so a protected temporary is indistinguishable
// from any other stack entry during a scan.
package roots

import (
	"github.com/joshuapare/lispheap/internal/format"
)

// Binding is one {symbol, saved value} slot of a binding frame.
type Binding struct {
	Sym format.Value
	Val format.Value
}

// BindFrame is a dynamic binding frame; frames chain towards the outermost.
type BindFrame struct {
	Bindings []Binding
	Link     *BindFrame
}

// CatchFrame is an active catch/unwind frame. Tag is format.Void for a
// frame that only carries a cleanup.
type CatchFrame struct {
	Tag  format.Value
	Fin  format.Value
	Link *CatchFrame
}

// Roots is the complete Root Set.
type Roots struct {
	// Globals are evaluator registers that always stay live.
	Globals []format.Value

	// Intern is the permanent symbol table, Transient the per-file one.
	// Both are heap lists maintained by package symtab.
	Intern    format.Value
	Transient format.Value

	// Call cache: the function and argument list of the call in flight.
	CallFn   format.Value
	CallArgs format.Value

	stack []format.Value
	bind  *BindFrame
	catch *CatchFrame
}

// New returns an empty Root Set.
func New() *Roots {
	return &Roots{
		Intern:    format.Nil,
		Transient: format.Nil,
		CallFn:    format.Nil,
		CallArgs:  format.Nil,
		stack:     make([]format.Value, 0, 64),
	}
}

// ---- control stack ----

// Push pushes v onto the control stack.
func (r *Roots) Push(v format.Value) {
	r.stack = append(r.stack, v)
}

// Pop removes and returns the top of the control stack. It panics on an
// empty stack.
func (r *Roots) Pop() format.Value {
	n := len(r.stack)
	if n == 0 {
		panic(ErrUnderflow)
	}
	v := r.stack[n-1]
	r.stack[n-1] = format.Void
	r.stack = r.stack[:n-1]
	return v
}

// Drop removes the top n entries.
func (r *Roots) Drop(n int) {
	if n > len(r.stack) {
		panic(ErrUnderflow)
	}
	clear(r.stack[len(r.stack)-n:])
	r.stack = r.stack[:len(r.stack)-n]
}

// Peek returns the entry n places below the top (0 is the top).
func (r *Roots) Peek(n int) format.Value {
	return r.stack[len(r.stack)-1-n]
}

// Depth returns the number of control stack entries.
func (r *Roots) Depth() int { return len(r.stack) }

// ---- frames ----

// PushBind links a new binding frame.
func (r *Roots) PushBind(bindings ...Binding) *BindFrame {
	f := &BindFrame{Bindings: bindings, Link: r.bind}
	r.bind = f
	return f
}

// PopBind unlinks the innermost binding frame.
func (r *Roots) PopBind() *BindFrame {
	f := r.bind
	if f != nil {
		r.bind = f.Link
	}
	return f
}

// BindChain returns the innermost binding frame.
func (r *Roots) BindChain() *BindFrame { return r.bind }

// PushCatch links a new catch frame.
func (r *Roots) PushCatch(tag, fin format.Value) *CatchFrame {
	f := &CatchFrame{Tag: tag, Fin: fin, Link: r.catch}
	r.catch = f
	return f
}

// PopCatch unlinks the innermost catch frame.
func (r *Roots) PopCatch() *CatchFrame {
	f := r.catch
	if f != nil {
		r.catch = f.Link
	}
	return f
}

// CatchChain returns the innermost catch frame.
func (r *Roots) CatchChain() *CatchFrame { return r.catch }

// ---- call cache ----

// SetCall records the call in flight.
func (r *Roots) SetCall(fn, args format.Value) {
	r.CallFn, r.CallArgs = fn, args
}

// ClearCall forgets the call cache once the call boundary has been crossed.
func (r *Roots) ClearCall() {
	r.CallFn, r.CallArgs = format.Nil, format.Nil
}
