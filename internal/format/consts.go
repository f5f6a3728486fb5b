// Package format houses the low-level word layout of the cell heap: the
// tagged Value encoding, the two-word cell layout inside segment memory and
// the inline text packing used for symbol names. It is deliberately free of
// heap state so that the heap, the collector and the symbol table can share
// one definition of what a word means.
package format

const (
	// WordSize is the size of one cell word in bytes.
	WordSize = 8

	// CellSize is the size of one cell (two words) in bytes.
	// Layout (little-endian):
	//   0x00  word0: Pair head / Symbol name-or-tail / Name packed text (free: next free cell)
	//   0x08  word1: Pair tail / Symbol binding / Name next fragment
	CellSize = 2 * WordSize

	// Word0Offset is the byte offset of the first word inside a cell.
	Word0Offset = 0x00

	// Word1Offset is the byte offset of the second word inside a cell.
	Word1Offset = 0x08

	// TagBits is the number of low bits reserved for the tag.
	TagBits = 3

	// TagMask selects the tag bits of a Value.
	TagMask = 1<<TagBits - 1

	// MaxTextLen is the number of Latin-1 bytes an inline text word can hold.
	MaxTextLen = 7

	// textLenShift is where the 3-bit byte count of a text word starts.
	textLenShift = TagBits

	// textDataShift is where the first packed byte of a text word starts.
	textDataShift = 8
)

// Tags. Heap references use the even tags so the low bit doubles as the
// heap/inline discriminator.
const (
	TagPair    = 0 // heap: two-reference node
	TagInt     = 1 // inline: 61-bit fixnum
	TagSymbol  = 2 // heap: binding + name-or-tail
	TagText    = 3 // inline: up to 7 packed Latin-1 bytes
	TagName    = 4 // heap: name fragment (terminal heap atom)
	TagSpecial = 5 // inline: Nil, T
)
