package roots

import "errors"

// ErrUnderflow indicates a pop or drop past the bottom of the control stack.
var ErrUnderflow = errors.New("roots: control stack underflow")
