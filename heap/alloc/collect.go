package alloc

import (
	"log/slog"
	"time"

	"github.com/joshuapare/lispheap/heap/mark"
	"github.com/joshuapare/lispheap/heap/sweep"
	"github.com/joshuapare/lispheap/internal/logger"
)

// Kind names what triggered a collection.
type Kind string

const (
	KindExhausted Kind = "exhausted"
	KindExplicit  Kind = "explicit"
)

// Cycle describes one completed collection.
type Cycle struct {
	Kind     Kind
	Policy   Policy
	Mark     mark.Stats
	Sweep    sweep.Result
	Free     int // Free List length afterwards
	Segments int // Live segments afterwards
	Duration time.Duration
}

// Stats holds allocator statistics for testing and instrumentation.
type Stats struct {
	Pairs       int // MakePair calls
	Symbols     int // MakeSymbol calls
	Names       int // MakeNamedSlot calls
	Collections int // Completed collections
	Exhausted   int // Collections triggered by an empty Free List
	Explicit    int // CollectExplicit calls
	Reclaimed   int64
	Released    int // Segments released by adaptive sweeps
	Grown       int // Segments grown by or right after a collection
	PauseTotal  time.Duration
	Last        Cycle
}

// Stats returns a snapshot of the allocator statistics.
func (a *Allocator) Stats() Stats { return a.stats }

// Collect runs one collection with the configured exhaustion policy.
func (a *Allocator) Collect() {
	a.exhausted()
}

// CollectExplicit runs a targeted collection that leaves at least target
// free cells, growing the heap if reclamation falls short. A non-positive
// target means one segment's worth. CollectExplicit never releases segments;
// use Collect for an explicit adaptive collection that does.
func (a *Allocator) CollectExplicit(target int) {
	if target <= 0 {
		target = a.h.CellsPerSegment()
	}
	a.stats.Explicit++
	a.collect(KindExplicit, PolicyTargeted, func() sweep.Result {
		return sweep.Targeted(a.h, target)
	})
}

// exhausted reclaims cells after Take found the Free List empty. It always
// leaves at least one free cell or the heap's fatal hook fires.
func (a *Allocator) exhausted() {
	a.stats.Exhausted++
	switch a.opts.Policy {
	case PolicyTargeted:
		a.collect(KindExhausted, PolicyTargeted, func() sweep.Result {
			return sweep.Targeted(a.h, a.h.CellsPerSegment())
		})
	default:
		a.collect(KindExhausted, PolicyAdaptive, func() sweep.Result {
			res := sweep.Adaptive(a.h)
			if a.h.FreeCount() == 0 {
				a.h.Grow()
				res.Grown++
			}
			return res
		})
	}
}

// collect runs the pre-pass, the root scan, the marker and the given sweep.
func (a *Allocator) collect(kind Kind, policy Policy, sweepFn func() sweep.Result) {
	if a.collecting {
		panic(ErrReentrant)
	}
	a.collecting = true
	defer func() { a.collecting = false }()

	start := time.Now()

	a.h.FlagAll()
	a.marker.Reset()
	a.marker.MarkRoots(a.scanner)
	res := sweepFn()

	cycle := Cycle{
		Kind:     kind,
		Policy:   policy,
		Mark:     a.marker.Stats(),
		Sweep:    res,
		Free:     a.h.FreeCount(),
		Segments: a.h.Segments(),
		Duration: time.Since(start),
	}

	a.stats.Collections++
	a.stats.Reclaimed += int64(res.Reclaimed)
	a.stats.Released += res.Released
	a.stats.Grown += res.Grown
	a.stats.PauseTotal += cycle.Duration
	a.stats.Last = cycle

	if logger.Enabled(slog.LevelDebug) {
		logger.Debug("gc: collection",
			"kind", string(kind),
			"policy", policy.String(),
			"roots", cycle.Mark.Roots,
			"marked", cycle.Mark.Marked,
			"depth", cycle.Mark.MaxDepth,
			"reclaimed", res.Reclaimed,
			"released", res.Released,
			"grown", res.Grown,
			"free", cycle.Free,
			"segments", cycle.Segments,
			"duration", cycle.Duration,
		)
	}

	if a.opts.OnCollect != nil {
		a.opts.OnCollect(cycle)
	}
}
