package heap

import "errors"

var (
	// ErrOutOfMemory indicates no segment could be obtained. It is only ever
	// delivered through Config.Fatal and the resulting panic.
	ErrOutOfMemory = errors.New("heap: out of memory")

	// ErrBadConfig indicates an invalid Config.
	ErrBadConfig = errors.New("heap: bad config")

	// ErrBadRef indicates a reference to a cell outside every live segment.
	ErrBadRef = errors.New("heap: bad cell reference")

	// ErrClosed indicates use of a heap after Close.
	ErrClosed = errors.New("heap: closed")
)
