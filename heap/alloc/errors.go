package alloc

import "errors"

var (
	// ErrReentrant indicates a collection was started from inside another.
	ErrReentrant = errors.New("alloc: reentrant collection")

	// ErrShadowUnderflow indicates Unprotect without a matching Protect.
	ErrShadowUnderflow = errors.New("alloc: unprotect without protect")
)
