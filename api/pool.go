// File: api/pool.go
// Author: momentics <momentics@gmail.com>
//
// Abstract contract for the never-free, growable node pool backing
// scheduled callbacks. Concrete implementation lives in internal/nodepool;
// this interface exists so the dispatch loop and tests can swap it.

package api

// NodePool is a fixed-then-growable, never-freed slab allocator with
// stable per-slot addresses. acquire()/release() are only ever called from
// inside the scheduler's critical section, so implementations need not be
// concurrency-safe on their own.
type NodePool[T any] interface {
	// Acquire returns a stable handle and pointer to a zeroed slot,
	// growing the pool if no released slot is available. Panics with a
	// *Error wrapping ErrPoolExhausted if a configured capacity is set
	// and exceeded.
	Acquire() (Handle, *T)

	// Release returns the slot at h to the pool for reuse. A no-op if h
	// does not name a currently-live slot.
	Release(h Handle)

	// Get returns the pointer for a live handle, or nil if unknown.
	Get(h Handle) *T

	// Len returns the number of currently-live (acquired) slots.
	Len() int

	// Cap returns the number of slots currently allocated (live + free).
	Cap() int
}
