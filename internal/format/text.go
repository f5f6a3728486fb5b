package format

// Inline text layout:
//
//	bits 0-2   TagText
//	bits 3-5   byte count (0-7)
//	bits 8-63  bytes, first byte lowest

// PackText packs up to MaxTextLen bytes into an inline text word.
// It reports false when b is too long.
func PackText(b []byte) (Value, bool) {
	if len(b) > MaxTextLen {
		return Void, false
	}
	v := Value(len(b))<<textLenShift | TagText
	for i, c := range b {
		v |= Value(c) << (textDataShift + 8*i)
	}
	return v, true
}

// TextLen returns the number of bytes packed in a text word.
func TextLen(v Value) int {
	return int(v>>textLenShift) & 7
}

// UnpackText returns the bytes packed in a text word.
func UnpackText(v Value) []byte {
	n := TextLen(v)
	out := make([]byte, n)
	for i := range n {
		out[i] = byte(v >> (textDataShift + 8*i))
	}
	return out
}

// AppendText appends the bytes packed in v to dst.
func AppendText(dst []byte, v Value) []byte {
	n := TextLen(v)
	for i := range n {
		dst = append(dst, byte(v>>(textDataShift+8*i)))
	}
	return dst
}
