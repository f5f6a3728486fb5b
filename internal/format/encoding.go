package format

import "encoding/binary"

// Word accessors over segment memory. Segments are plain byte slices (often
// mmap'd), so every word goes through encoding/binary in little-endian order.

// ReadWord reads the word at byte offset off.
func ReadWord(b []byte, off int) Value {
	return Value(binary.LittleEndian.Uint64(b[off : off+WordSize]))
}

// PutWord writes v at byte offset off.
func PutWord(b []byte, off int, v Value) {
	binary.LittleEndian.PutUint64(b[off:off+WordSize], uint64(v))
}

// CellOffset returns the byte offset of a cell slot within a segment.
func CellOffset(slot int) int {
	return slot * CellSize
}

// SegmentBytes returns the number of bytes needed for a segment of n cells.
func SegmentBytes(n int) int {
	return n * CellSize
}
