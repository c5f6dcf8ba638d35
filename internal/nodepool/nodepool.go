// File: internal/nodepool/nodepool.go
// Author: momentics <momentics@gmail.com>
//
// Never-free, growable slab allocator with stable per-slot addresses.
// Storage is chunked (first chunk sized Initial, later chunks sized
// GrowthStep) so growing the pool never reallocates a chunk that already
// handed out live pointers -- the property spec.md §4.B calls "nodes must
// have stable identity across heap reorderings".
//
// Released slots are tracked with a FIFO of freed indices, mirroring the
// teacher's retired-buffer reuse queues (pool/slab_pool.go,
// core/concurrency/lock_free_queue.go): acquire() drains the oldest freed
// index before growing the slab. Because every mutation here happens
// inside the scheduler's own critical section (spec.md §5), the FIFO does
// not need to be lock-free -- a plain ring-buffer queue is exactly the
// discipline the teacher already uses, so it is reused directly rather
// than reinvented.

package nodepool

import (
	"github.com/eapache/queue"

	"github.com/momentics/tickd/api"
)

// Pool is the concrete api.NodePool implementation.
type Pool[T any] struct {
	chunks     [][]T
	live       []bool
	free       *queue.Queue
	len        int
	initial    int
	growthStep int
	maxSlots   int // 0 means unbounded
}

// New creates a pool with initial capacity and growth step. maxSlots caps
// total slots ever allocated; 0 means unbounded (the hosted default).
// Embedded builds that must bound worst-case memory pass a real limit.
func New[T any](initial, growthStep, maxSlots int) *Pool[T] {
	if initial <= 0 {
		initial = 50
	}
	if growthStep <= 0 {
		growthStep = 100
	}
	return &Pool[T]{
		free:       queue.New(),
		initial:    initial,
		growthStep: growthStep,
		maxSlots:   maxSlots,
	}
}

var _ api.NodePool[struct{}] = (*Pool[struct{}])(nil)

// locate maps a global slot index to its chunk and in-chunk offset.
func (p *Pool[T]) locate(idx int) (chunk, offset int) {
	if idx < p.initial {
		return 0, idx
	}
	rest := idx - p.initial
	return 1 + rest/p.growthStep, rest % p.growthStep
}

func (p *Pool[T]) at(idx int) *T {
	ci, off := p.locate(idx)
	return &p.chunks[ci][off]
}

func (p *Pool[T]) ensureChunk(idx int) {
	ci, _ := p.locate(idx)
	for len(p.chunks) <= ci {
		size := p.growthStep
		if len(p.chunks) == 0 {
			size = p.initial
		}
		p.chunks = append(p.chunks, make([]T, size))
	}
}

// Acquire returns a stable handle and pointer to a zeroed slot.
func (p *Pool[T]) Acquire() (api.Handle, *T) {
	if p.free.Length() > 0 {
		idx := p.free.Remove().(int)
		p.live[idx] = true
		return api.Handle(idx + 1), p.at(idx)
	}

	idx := p.len
	if p.maxSlots > 0 && idx >= p.maxSlots {
		panic(api.NewError(api.ErrCodeResourceExhausted, "node pool exhausted", api.ErrPoolExhausted).
			WithContext("maxSlots", p.maxSlots))
	}
	p.ensureChunk(idx)
	p.len++
	p.live = append(p.live, true)
	return api.Handle(idx + 1), p.at(idx)
}

// Release returns the slot at h to the pool. No-op if h is not live.
// Handles are 1-based internally (0 is reserved as "no handle") so the
// zero api.Handle can never alias a real slot.
func (p *Pool[T]) Release(h api.Handle) {
	if h == 0 {
		return
	}
	idx := int(h) - 1
	if idx < 0 || idx >= p.len || !p.live[idx] {
		return
	}
	var zero T
	*p.at(idx) = zero
	p.live[idx] = false
	p.free.Add(idx)
}

// Get returns the pointer for a live handle, or nil otherwise.
func (p *Pool[T]) Get(h api.Handle) *T {
	if h == 0 {
		return nil
	}
	idx := int(h) - 1
	if idx < 0 || idx >= p.len || !p.live[idx] {
		return nil
	}
	return p.at(idx)
}

// Len returns the number of live slots.
func (p *Pool[T]) Len() int {
	n := 0
	for _, l := range p.live {
		if l {
			n++
		}
	}
	return n
}

// Cap returns the number of slots allocated so far (live + free).
func (p *Pool[T]) Cap() int {
	return p.len
}
