// Package symtab interns symbols and stores their names in the cell heap.
//
// # Names
//
// Symbol names are Latin-1 (ISO 8859-1). A name of up to 7 bytes packs into
// a single inline text word held in the symbol's name-or-tail slot. Longer
// names become a chain of name fragment cells, 7 bytes each, whose last
// fragment points at an inline text word holding the remainder:
//
//	sym.tail -> name("abcdefg") -> name("hijklmn") -> text("op")
//
// # Tables
//
// The permanent table (Root Set Intern) lives for the whole session. The
// transient table (Root Set Transient) holds file-local symbols and is
// dropped with ClearTransient. Both are heap lists, so the collector keeps
// every interned symbol alive without knowing about this package; the Go-side
// maps are only an index into them.
//
// # Properties
//
// Put and Get keep a property list in front of the name: the symbol's tail
// is a list of (key . value) pairs whose final tail is the name itself.
package symtab
