//go:build linux || darwin

package heap

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// mapSegment obtains n zeroed bytes from the OS as an anonymous private
// mapping. The memory is outside the Go heap, so segment release hands it
// straight back to the kernel.
func mapSegment(n int) ([]byte, error) {
	data, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("mmap %d bytes: %w", n, err)
	}
	return data, nil
}

// unmapSegment returns memory obtained by mapSegment.
func unmapSegment(data []byte) error {
	if err := unix.Munmap(data); err != nil {
		return fmt.Errorf("munmap: %w", err)
	}
	return nil
}
