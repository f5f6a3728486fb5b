package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/lispheap/heap"
	"github.com/joshuapare/lispheap/heap/alloc"
	"github.com/joshuapare/lispheap/heap/mark"
	"github.com/joshuapare/lispheap/heap/roots"
	"github.com/joshuapare/lispheap/heap/symtab"
	"github.com/joshuapare/lispheap/internal/format"
)

var (
	// Heap flags, shared by every workload command
	presetName  string
	cellsPerSeg int
	maxSegments int
	layoutName  string
	policyName  string
	goMemory    bool
)

func addHeapFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&presetName, "preset", "default", "Heap preset: embedded, default, hosted")
	f.IntVar(&cellsPerSeg, "cells", 0, "Cells per segment (0 = preset value)")
	f.IntVar(&maxSegments, "max-segments", -1, "Segment cap, 0 = unlimited (-1 = preset value)")
	f.StringVar(&layoutName, "layout", "loop", "Marker layout: loop, split")
	f.StringVar(&policyName, "policy", "adaptive", "Exhaustion policy: adaptive, targeted")
	f.BoolVar(&goMemory, "go-memory", false, "Back segments with Go memory instead of mmap")
}

var presets = map[string]heap.Config{
	"embedded": heap.ConfigEmbedded,
	"default":  heap.DefaultConfig,
	"hosted":   heap.ConfigHosted,
}

// heapConfig resolves the heap flags into a validated configuration.
func heapConfig() (heap.Config, error) {
	cfg, ok := presets[strings.ToLower(presetName)]
	if !ok {
		return heap.Config{}, fmt.Errorf("unknown preset %q", presetName)
	}
	if cellsPerSeg > 0 {
		cfg.CellsPerSegment = cellsPerSeg
	}
	if maxSegments >= 0 {
		cfg.MaxSegments = maxSegments
	}
	cfg.GoMemory = goMemory
	if err := cfg.Validate(); err != nil {
		return heap.Config{}, err
	}
	return cfg, nil
}

// allocOptions resolves the collector flags.
func allocOptions() (alloc.Options, error) {
	opts := alloc.DefaultOptions
	layout, ok := mark.ParseLayout(layoutName)
	if !ok {
		return opts, fmt.Errorf("unknown layout %q", layoutName)
	}
	policy, ok := alloc.ParsePolicy(policyName)
	if !ok {
		return opts, fmt.Errorf("unknown policy %q", policyName)
	}
	opts.Layout = layout
	opts.Policy = policy
	return opts, nil
}

// session is one interpreter-sized heap with its allocator and symbols.
type session struct {
	cfg   heap.Config
	heap  *heap.Heap
	roots *roots.Roots
	alloc *alloc.Allocator
	syms  *symtab.Table
}

func newSession(onCollect func(alloc.Cycle)) (*session, error) {
	cfg, err := heapConfig()
	if err != nil {
		return nil, err
	}
	opts, err := allocOptions()
	if err != nil {
		return nil, err
	}
	opts.OnCollect = onCollect

	cfg.Fatal = func(err error) {
		printVerbose("heap fatal: %v\n", err)
	}
	h, err := heap.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create heap: %w", err)
	}

	rs := roots.New()
	a := alloc.New(h, rs, opts)
	return &session{
		cfg:   cfg,
		heap:  h,
		roots: rs,
		alloc: a,
		syms:  symtab.New(a),
	}, nil
}

func (s *session) Close() error {
	return s.heap.Close()
}

// run calls fn, turning the heap's fatal out-of-memory panic into an error.
func (s *session) run(fn func() error) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if e, ok := r.(error); ok && errors.Is(e, heap.ErrOutOfMemory) {
			err = e
			return
		}
		panic(r)
	}()
	return fn()
}

// buildList conses the list 0..n-1, keeping the partial list protected.
func (s *session) buildList(n int) format.Value {
	a := s.alloc
	list := format.Nil
	a.Protect(list)
	for i := n - 1; i >= 0; i-- {
		list = a.MakePair(format.Int(int64(i)), list)
		a.Unprotect()
		a.Protect(list)
	}
	return a.Unprotect()
}

// listLen counts the cells of a proper list.
func (s *session) listLen(v format.Value) int {
	n := 0
	for format.IsPair(v) {
		n++
		v = s.heap.Cdr(v)
	}
	return n
}
