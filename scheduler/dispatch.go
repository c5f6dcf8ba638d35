// File: scheduler/dispatch.go
// Author: momentics <momentics@gmail.com>
//
// The single-threaded INSPECT/FIRE/SLEEP loop. Every mutation of
// last_dispatch, current_dispatch, stop_flag, the heap and the pool is
// made while the platform's critical section is held, matching the
// concurrency rule that lets post/cancel run safely from a simulated
// interrupt handler goroutine. The two blocking calls -- Sleep and
// SleepUntil -- are made while still holding that section deliberately:
// platform/hosted.go documents the exact unmask-then-remask contract that
// makes this safe, mirroring the mask-then-WFE idiom real hardware uses.

package scheduler

import (
	"github.com/momentics/tickd/api"
	"github.com/momentics/tickd/internal/ticktime"
)

// OptimiseLookahead is spec.md §4's Optimise_Lookahead: reserved for a
// future heuristic that scans the top-k of the heap to pick the
// coalescing-optimal node instead of strictly the root. Unused by the
// current dispatch loop, which always selects the root.
const OptimiseLookahead = 5

// Start runs the dispatch loop until Stop is called, returning the number
// of callbacks still queued when it exits. Re-entrant: calling Start again
// after a prior Stop resumes dispatching the same scheduler state.
func (s *Scheduler) Start() int {
	s.ensureInit()
	if s.cfg.PinCPU >= 0 {
		if err := pinCurrentThread(s.cfg.PinCPU); err != nil && s.cfg.Trace.Warnings {
			s.debugLogf("could not pin dispatch loop to CPU %d: %v", s.cfg.PinCPU, err)
		}
	}
	for {
		stopped, remaining := s.runOnce()
		if stopped {
			return remaining
		}
	}
}

// Stop requests the loop exit after its current iteration and returns a
// snapshot of the queue size taken under the critical section.
func (s *Scheduler) Stop() int {
	s.platform.EnterCritical()
	s.stopFlag = true
	remaining := s.heap.Len()
	s.updateQueueDepth()
	s.platform.ExitCritical()
	s.notify()
	return remaining
}

// Cancel removes h from the pending queue, resolving any race with the
// dispatcher inside the critical section: whichever of Cancel/fire reaches
// the heap first wins.
func (s *Scheduler) Cancel(h api.Handle) bool {
	s.platform.EnterCritical()
	found := s.heap.Remove(h)
	if found {
		s.pool.Release(h)
		s.metrics.Incr("tickd.cancelled", 1)
	}
	s.updateQueueDepth()
	s.platform.ExitCritical()
	s.notify()
	return found
}

// updateQueueDepth republishes the heap's current length as a gauge.
// Callers must already hold the critical section.
func (s *Scheduler) updateQueueDepth() {
	s.metrics.Set("tickd.queue_depth", int64(s.heap.Len()))
}

// notify wakes a platform blocked in Sleep/SleepUntil, for platforms whose
// wait actually parks a goroutine instead of returning to hardware that
// is, by construction, already awake to service the interrupt that called
// Post/Cancel/Stop.
func (s *Scheduler) notify() {
	if nf, ok := s.platform.(api.Notifier); ok {
		nf.Notify()
	}
}

// runOnce executes one INSPECT step followed by exactly one of FIRE or
// SLEEP, per spec.md §4.E's state machine.
func (s *Scheduler) runOnce() (stopped bool, remaining int) {
	s.platform.EnterCritical()

	if s.stopFlag {
		s.stopFlag = false
		remaining = s.heap.Len()
		s.platform.ExitCritical()
		return true, remaining
	}

	now := s.platform.Now()
	rootHandle, hasRoot := s.heap.PeekRoot()

	if hasRoot {
		rootNode := s.pool.Get(rootHandle)
		horizon := ticktime.Wrap(now + rootNode.tolerance)
		if ticktime.InWindow(s.lastDispatch, rootNode.callBefore, horizon) {
			s.fire(now, rootHandle, rootNode)
			return false, 0
		}
	}

	s.sleepPhase(now, hasRoot, rootHandle)
	return false, 0
}

// fire implements the firing path. It is entered holding the critical
// section (from runOnce) and leaves it just before invoking the callback:
// every step up to and including the periodic re-insert mutates shared
// scheduler state, so the stricter reading of spec.md §5's concurrency
// rule keeps them behind the mask even though §4.E's own step numbering
// lists "exit critical section" earlier.
func (s *Scheduler) fire(now ticktime.Tick, h api.Handle, n *node) {
	s.heap.RemoveRoot()
	s.lastDispatch = ticktime.SmallestForward(s.lastDispatch, now, n.callBefore)

	if lag := ticktime.Sub(s.lastDispatch, now); lag > s.warnLagTicks() {
		s.metrics.Incr("tickd.lag_warnings", 1)
		if s.cfg.Trace.Warnings {
			s.debugLogf("lag warning: now=%d last_dispatch=%d lag=%d threshold=%d", now, s.lastDispatch, lag, s.warnLagTicks())
		}
	}

	s.currentDispatch = ticktime.Wrap(n.callBefore - n.tolerance/2)

	periodic := n.isPeriodic()
	if periodic {
		n.callBefore = ticktime.Wrap(n.callBefore + n.interval)
		s.heap.Insert(h)
	}
	s.updateQueueDepth()

	s.platform.ExitCritical()

	if periodic {
		s.notify()
	}
	if s.cfg.Trace.DispatchTrace {
		s.debugLogf("fire: handle=%d name=%q current_dispatch=%d periodic=%v", h, n.name, s.currentDispatch, periodic)
	}

	before := s.platform.Now()
	n.callback()
	after := s.platform.Now()

	if dur := ticktime.Sub(before, after); dur > s.warnDurationTicks() {
		s.metrics.Incr("tickd.duration_warnings", 1)
		if s.cfg.Trace.Warnings {
			s.debugLogf("duration warning: handle=%d name=%q duration=%d threshold=%d", h, n.name, dur, s.warnDurationTicks())
		}
	}

	s.metrics.Incr("tickd.dispatched", 1)

	if !periodic {
		s.platform.EnterCritical()
		s.pool.Release(h)
		s.platform.ExitCritical()
	}
}

// sleepPhase implements the sleeping path. Sleep/SleepUntil are called
// while still holding the critical section: they are documented to
// tolerate this by unmasking internally for the actual wait, exactly like
// the mask-then-WFE primitive spec.md §4.E's sleeping path describes.
func (s *Scheduler) sleepPhase(now ticktime.Tick, hasRoot bool, rootHandle api.Handle) {
	if hasRoot {
		rootNode := s.pool.Get(rootHandle)
		s.lastDispatch = ticktime.SmallestForward(s.lastDispatch, now, rootNode.callBefore)
		if s.cfg.Trace.DispatchTrace {
			s.debugLogf("sleep_until: now=%d target=%d", now, rootNode.callBefore)
		}
		s.platform.SleepUntil(now, rootNode.callBefore)
	} else {
		s.lastDispatch = now
		if s.cfg.Trace.DispatchTrace {
			s.debugLogf("sleep: now=%d", now)
		}
		s.platform.Sleep()
	}
	s.currentDispatch = s.platform.Now()
	s.platform.ExitCritical()
}

// warnLagTicks/warnDurationTicks read the hot-reloadable thresholds from
// the config store, falling back to the construction-time Config values
// when the store holds no ticktime.Tick under that key (for example after
// an override with a value of a different type).
func (s *Scheduler) warnLagTicks() ticktime.Tick {
	if v, ok := s.cfgs.GetSnapshot()["warn_lag_ticks"].(ticktime.Tick); ok {
		return v
	}
	return s.cfg.WarnLagTicks
}

func (s *Scheduler) warnDurationTicks() ticktime.Tick {
	if v, ok := s.cfgs.GetSnapshot()["warn_duration_ticks"].(ticktime.Tick); ok {
		return v
	}
	return s.cfg.WarnDurationTicks
}
