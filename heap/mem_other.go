//go:build !linux && !darwin

package heap

// mapSegment falls back to the Go heap where anonymous mappings are not wired.
func mapSegment(n int) ([]byte, error) {
	return make([]byte, n), nil
}

// unmapSegment drops the slice; the Go collector reclaims it.
func unmapSegment(data []byte) error {
	return nil
}
