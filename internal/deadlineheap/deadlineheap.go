// File: internal/deadlineheap/deadlineheap.go
// Author: momentics <momentics@gmail.com>
//
// Min-heap of pending callback handles, ordered by the signed-modular
// distance from a moving epoch to each node's call_before. Grounded on
// container/heap the way the wider example pack's own schedulers use it
// (other_examples/sneh-joshi-epochq__heap.go tracks heapIdx for O(log n)
// removal-by-handle; other_examples/edirooss-zmux-server__scheduler.go
// keeps the comparator, and an id->index map, entirely separate from the
// scheduler struct). Per spec.md §9's design note, the comparator is a
// free function closing over an EpochFunc rather than a method on the
// scheduler, so this package has zero dependency on the dispatch loop and
// is independently testable.

package deadlineheap

import (
	"container/heap"

	"github.com/momentics/tickd/api"
	"github.com/momentics/tickd/internal/ticktime"
)

// EpochFunc returns the current epoch (last_dispatch) used to order the
// heap. It is read fresh on every comparison -- the heap must never cache
// an ordering independent of the epoch (spec.md §4.C).
type EpochFunc func() ticktime.Tick

// DeadlineFunc returns a node's call_before given its handle.
type DeadlineFunc func(h api.Handle) ticktime.Tick

// Heap is a min-heap of api.Handle ordered by (call_before - epoch) mod W.
type Heap struct {
	items    []api.Handle
	index    map[api.Handle]int // handle -> position in items, for O(log n) removal
	epoch    EpochFunc
	deadline DeadlineFunc
}

// New creates a Heap. epoch and deadline must both be non-nil and remain
// valid for the Heap's lifetime.
func New(epoch EpochFunc, deadline DeadlineFunc) *Heap {
	return &Heap{
		index:    make(map[api.Handle]int),
		epoch:    epoch,
		deadline: deadline,
	}
}

// heap.Interface implementation. These methods are exported because
// container/heap requires it; callers use Len and the typed
// Insert/PeekRoot/RemoveRoot/Remove methods below, never Push/Pop or
// container/heap directly, so the index map can never drift out of sync.

func (h *Heap) Len() int { return len(h.items) }

func (h *Heap) Less(i, j int) bool {
	e := h.epoch()
	di := ticktime.Sub(e, h.deadline(h.items[i]))
	dj := ticktime.Sub(e, h.deadline(h.items[j]))
	return di < dj
}

func (h *Heap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.index[h.items[i]] = i
	h.index[h.items[j]] = j
}

func (h *Heap) Push(x any) {
	handle := x.(api.Handle)
	h.index[handle] = len(h.items)
	h.items = append(h.items, handle)
}

func (h *Heap) Pop() any {
	old := h.items
	n := len(old)
	handle := old[n-1]
	old[n-1] = 0
	h.items = old[:n-1]
	delete(h.index, handle)
	return handle
}

// Insert adds handle to the heap in O(log n).
func (h *Heap) Insert(handle api.Handle) {
	heap.Push(h, handle)
}

// Items returns a snapshot of every handle currently queued, in no
// particular order. For introspection (debug probes) only; never used by
// the dispatch loop itself, which only ever needs the root.
func (h *Heap) Items() []api.Handle {
	out := make([]api.Handle, len(h.items))
	copy(out, h.items)
	return out
}

// PeekRoot returns the minimum handle without removing it, and whether the
// heap is non-empty.
func (h *Heap) PeekRoot() (api.Handle, bool) {
	if len(h.items) == 0 {
		return 0, false
	}
	return h.items[0], true
}

// RemoveRoot removes and returns the minimum handle in O(log n).
func (h *Heap) RemoveRoot() (api.Handle, bool) {
	if len(h.items) == 0 {
		return 0, false
	}
	return heap.Pop(h).(api.Handle), true
}

// Remove removes handle from the heap in O(log n) if present, reporting
// whether it was found. Cancellation races resolve here: if the dispatcher
// already popped the node, Remove returns false.
func (h *Heap) Remove(handle api.Handle) bool {
	idx, ok := h.index[handle]
	if !ok {
		return false
	}
	heap.Remove(h, idx)
	return true
}
