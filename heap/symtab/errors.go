package symtab

import "errors"

var (
	// ErrNotSymbol indicates a Symbol reference was required.
	ErrNotSymbol = errors.New("symtab: not a symbol")

	// ErrEncoding indicates a name with characters outside Latin-1.
	ErrEncoding = errors.New("symtab: name not representable in Latin-1")

	// ErrCorruptName indicates a name chain that does not end in text.
	ErrCorruptName = errors.New("symtab: corrupt name chain")
)
