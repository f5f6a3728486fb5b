// Command heapctl exercises the lispheap allocator and collector: it runs
// allocation workloads, reports heap statistics and checks heap invariants.
package main

func main() {
	execute()
}
