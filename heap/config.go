package heap

import (
	"fmt"
	"math"
)

// Config defines the shape and limits of a heap.
type Config struct {
	// Name for this configuration (shown by heapctl)
	Name string

	// CellsPerSegment is the number of cells in every segment.
	CellsPerSegment int

	// MinSegments is allocated up front and never released by adaptive reclaim.
	MinSegments int

	// MaxSegments caps growth; 0 means unlimited. Exceeding it is fatal.
	MaxSegments int

	// GoMemory forces segment memory onto the Go heap instead of the
	// system allocator.
	GoMemory bool

	// Fatal is called once when the heap cannot grow. The session is
	// expected to halt or reset; if Fatal returns, the heap panics.
	Fatal func(error)
}

// Predefined configurations.
var (
	// ConfigEmbedded matches a microcontroller target: small segments and a
	// hard ceiling standing in for physical RAM.
	ConfigEmbedded = Config{
		Name:            "Embedded",
		CellsPerSegment: 1024,
		MinSegments:     1,
		MaxSegments:     16,
	}

	// ConfigHosted is for running the interpreter on a workstation.
	ConfigHosted = Config{
		Name:            "Hosted",
		CellsPerSegment: 64 * 1024,
		MinSegments:     1,
	}

	// DefaultConfig is used when no configuration is given.
	DefaultConfig = Config{
		Name:            "Default",
		CellsPerSegment: 4096,
		MinSegments:     1,
	}
)

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	if c.CellsPerSegment < 2 {
		return fmt.Errorf("%w: CellsPerSegment must be >= 2, got %d", ErrBadConfig, c.CellsPerSegment)
	}
	if c.MinSegments < 1 {
		return fmt.Errorf("%w: MinSegments must be >= 1, got %d", ErrBadConfig, c.MinSegments)
	}
	if c.MaxSegments != 0 && c.MaxSegments < c.MinSegments {
		return fmt.Errorf("%w: MaxSegments %d below MinSegments %d", ErrBadConfig, c.MaxSegments, c.MinSegments)
	}
	// Cell refs are uint32: the largest segment ID times the segment size must
	// fit. Unlimited heaps are checked at growth time instead.
	if c.MaxSegments != 0 && uint64(c.MaxSegments+1)*uint64(c.CellsPerSegment) > math.MaxUint32 {
		return fmt.Errorf("%w: %d segments of %d cells overflow 32-bit refs",
			ErrBadConfig, c.MaxSegments, c.CellsPerSegment)
	}
	if uint64(c.MinSegments+1)*uint64(c.CellsPerSegment) > math.MaxUint32 {
		return fmt.Errorf("%w: %d cells per segment too large", ErrBadConfig, c.CellsPerSegment)
	}
	return nil
}
