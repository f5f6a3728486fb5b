// Package verify checks heap invariants. Tests and the heapctl verify command
// run it between collections; it never mutates the heap.
//
// Checks:
//   - Segments: the chain holds Segments() distinct live segments within the
//     configured bounds.
//   - FreeList: the Free List is acyclic, only names cells of live segments
//     and its length equals FreeCount.
//   - Reachable: every reference reachable from the roots names a live cell
//     that is not on the Free List.
package verify
