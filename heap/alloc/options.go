package alloc

import (
	"github.com/joshuapare/lispheap/heap/mark"
	"github.com/joshuapare/lispheap/heap/roots"
)

// Policy selects how the exhaustion path reclaims cells.
type Policy uint8

const (
	// PolicyAdaptive releases fully-garbage segments, then grows one segment
	// if the Free List is still empty.
	PolicyAdaptive Policy = iota

	// PolicyTargeted recycles garbage and grows until CellsPerSegment cells
	// are free.
	PolicyTargeted
)

// String returns the policy's name.
func (p Policy) String() string {
	switch p {
	case PolicyAdaptive:
		return "adaptive"
	case PolicyTargeted:
		return "targeted"
	default:
		return "unknown"
	}
}

// ParsePolicy maps a name back to a Policy.
func ParsePolicy(s string) (Policy, bool) {
	switch s {
	case "adaptive":
		return PolicyAdaptive, true
	case "targeted":
		return PolicyTargeted, true
	default:
		return 0, false
	}
}

// Options controls the allocator.
type Options struct {
	// Layout is the marker traversal layout.
	Layout mark.Layout

	// Policy is the exhaustion reclaim policy.
	Policy Policy

	// ExtraRoots are scanned after the Root Set on every collection.
	ExtraRoots roots.Scanner

	// OnCollect is called after every collection (nil in production).
	OnCollect func(Cycle)
}

// DefaultOptions is used by most embedders.
var DefaultOptions = Options{
	Layout: mark.LayoutLoop,
	Policy: PolicyAdaptive,
}
