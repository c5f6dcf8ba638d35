// File: api/platform.go
// Author: momentics <momentics@gmail.com>
//
// Platform abstracts the host environment the dispatcher runs on: the tick
// source, the low-power sleep primitives, and interrupt masking. A real
// embedded target implements this over its BSP; tickd ships a hosted
// implementation (package platform) and a deterministic fake for tests
// (package internal/faketime).

package api

import "time"

// Platform is the external collaborator spec.md §6 requires from the host.
type Platform interface {
	// Init performs one-shot platform setup, called the first time a
	// Scheduler is materialized. Idempotent.
	Init()

	// Now returns the current tick, wrapped modulo TimeMask.
	Now() Tick

	// Sleep idles until any interrupt occurs.
	Sleep()

	// SleepUntil idles until target or any earlier interrupt. Safe to
	// call with interrupts masked: it must atomically unmask on wake,
	// the standard mask-then-WFE idiom.
	SleepUntil(now, target Tick)

	// EnterCritical masks interrupts, nestably: EnterCritical/ExitCritical
	// calls form a stack-based push/pop of the prior mask state. The hosted
	// implementation in package platform is not nestable (see its
	// EnterCritical).
	EnterCritical()

	// ExitCritical restores the interrupt mask state saved by the
	// matching EnterCritical call.
	ExitCritical()

	// TimeBase returns platform ticks per second.
	TimeBase() uint32

	// TimeMask returns the wrap modulus minus one.
	TimeMask() Tick
}

// WallClockPlatform is a convenience extension some hosted platforms offer
// for translating ticks back to a wall-clock time, useful for logging.
type WallClockPlatform interface {
	Platform
	WallClock(t Tick) time.Time
}

// Notifier is an optional Platform extension for hosts whose Sleep/
// SleepUntil actually block a goroutine rather than returning to real
// hardware's WFE. On such a host, an interrupt is simulated by a separate
// goroutine, so post/cancel must explicitly wake a sleeping dispatch loop
// instead of relying on the CPU already being awake to service it. A
// Platform without a real blocking Sleep (e.g. the deterministic fake used
// in tests) need not implement this.
type Notifier interface {
	Notify()
}
