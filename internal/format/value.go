package format

import "fmt"

// Value is a tagged word: either a reference to a heap cell or an inline atom.
type Value uint64

// Ref is a global cell index. Ref 0 never names a cell.
type Ref = uint32

const (
	// Void is "no value". It is never a heap reference and never reachable.
	Void Value = 0

	// Nil is the empty list and the Free List terminator.
	Nil Value = 1<<TagBits | TagSpecial

	// T is the canonical true atom.
	T Value = 2<<TagBits | TagSpecial
)

// Tag returns the low tag bits of v.
func (v Value) Tag() int { return int(v & TagMask) }

// IsPair reports whether v references a Pair cell.
func IsPair(v Value) bool { return v != Void && v&TagMask == TagPair }

// IsSymbol reports whether v references a Symbol cell.
func IsSymbol(v Value) bool { return v&TagMask == TagSymbol }

// IsName reports whether v references a name fragment cell, the only kind of
// terminal heap atom.
func IsName(v Value) bool { return v&TagMask == TagName }

// IsTerminal is the collector's name for IsName.
func IsTerminal(v Value) bool { return IsName(v) }

// IsHeap reports whether v references any heap cell.
func IsHeap(v Value) bool { return IsPair(v) || IsSymbol(v) || IsName(v) }

// IsInline reports whether v is an inline atom (fixnum, text, special).
func IsInline(v Value) bool { return v&1 == 1 }

// RefOf returns the cell index referenced by v. Only meaningful when IsHeap(v).
func RefOf(v Value) Ref { return Ref(v >> TagBits) }

// PairRef builds a Pair reference.
func PairRef(r Ref) Value { return Value(r)<<TagBits | TagPair }

// SymbolRef builds a Symbol reference.
func SymbolRef(r Ref) Value { return Value(r)<<TagBits | TagSymbol }

// NameRef builds a name fragment reference.
func NameRef(r Ref) Value { return Value(r)<<TagBits | TagName }

// Int packs a fixnum. Values outside the 61-bit range wrap.
func Int(n int64) Value { return Value(uint64(n)<<TagBits | TagInt) }

// IntOf unpacks a fixnum. The result is undefined unless v.Tag() == TagInt.
func IntOf(v Value) int64 { return int64(v) >> TagBits }

// IsInt reports whether v is an inline fixnum.
func IsInt(v Value) bool { return v&TagMask == TagInt }

// IsText reports whether v is an inline packed text word.
func IsText(v Value) bool { return v&TagMask == TagText }

// String renders v for diagnostics. It never dereferences the heap.
func (v Value) String() string {
	switch {
	case v == Void:
		return "<void>"
	case v == Nil:
		return "NIL"
	case v == T:
		return "T"
	case IsPair(v):
		return fmt.Sprintf("pair@%d", RefOf(v))
	case IsSymbol(v):
		return fmt.Sprintf("sym@%d", RefOf(v))
	case IsName(v):
		return fmt.Sprintf("name@%d", RefOf(v))
	case IsInt(v):
		return fmt.Sprintf("%d", IntOf(v))
	case IsText(v):
		return fmt.Sprintf("%q", UnpackText(v))
	default:
		return fmt.Sprintf("<0x%x>", uint64(v))
	}
}
