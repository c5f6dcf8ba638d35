// Package api
// Author: momentics <momentics@gmail.com>
//
// Scheduler contract for deadline-and-tolerance callback dispatch.

package api

import "github.com/momentics/tickd/internal/ticktime"

// Tick re-exports the scheduler's tick type at the API boundary so callers
// never need to import the internal arithmetic package directly.
type Tick = ticktime.Tick

// Handle identifies a scheduled callback for cancellation. The zero Handle
// is never issued to a live node and is safe to pass to Cancel as a no-op.
type Handle uint32

// Callback is a type-erased, nullary invocable. It owns whatever it
// captures; equality is never compared, only identity via Handle.
type Callback func()

// Builder collects a callback's delay/tolerance/period before it commits a
// node into the scheduler. Builder commits exactly once: on an explicit
// Handle() call, or, best-effort, from a finalizer when an uncommitted
// builder is garbage-collected.
type Builder interface {
	// Delay sets the minimum offset from now before the callback may fire.
	Delay(d Tick) Builder

	// Tolerance sets the half-width of the eligibility window around the
	// deadline. Doubled internally to produce a symmetric ±tolerance band.
	Tolerance(t Tick) Builder

	// Period, if non-zero, makes the callback periodic: it is rescheduled
	// call_before+period ticks after each fire instead of released.
	Period(p Tick) Builder

	// Named attaches an optional debug label, surfaced through debug probes.
	Named(name string) Builder

	// Handle commits the builder (if not already committed) and returns
	// the node's cancellation handle. A builder with an empty callback
	// commits to the zero Handle and never enters the heap.
	Handle() Handle
}

// Scheduler abstracts deadline-based callback dispatch for the dispatch
// loop's consumers, keeping scheduler internals out of the public surface.
type Scheduler interface {
	// Post begins building a scheduled callback.
	Post(cb Callback) Builder

	// Cancel removes handle from the pending queue. Returns true if the
	// handle was found and removed, false if it had already fired or was
	// never valid.
	Cancel(h Handle) bool

	// Start runs the dispatch loop until Stop is called. Returns the
	// number of callbacks still queued when the loop exited.
	Start() int

	// Stop requests the dispatch loop to exit after its current
	// iteration. Returns a snapshot of the queue size.
	Stop() int

	// Now returns the current virtual dispatch time, i.e. the "intended"
	// time exposed to the currently-running callback (or the last one
	// that ran, between dispatches).
	Now() Tick

	// MsToTicks and TicksToMs convert between wall time and ticks,
	// panicking on overflow per spec.md §7.
	MsToTicks(ms uint32) Tick
	TicksToMs(t Tick) uint32
}
