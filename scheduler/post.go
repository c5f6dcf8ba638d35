// File: scheduler/post.go
// Author: momentics <momentics@gmail.com>
//
// builder implements api.Builder, the fluent front end to spec.md §4.D.
// Grounded on the teacher's own chainable option-setter constructors
// (e.g. facade builders returning themselves from every setter): each
// setter mutates and returns the same *builder so calls read as one
// fluent chain, exactly as spec.md's post(cb).delay(d).tolerance(t) does.

package scheduler

import (
	"runtime"

	"github.com/momentics/tickd/api"
	"github.com/momentics/tickd/internal/ticktime"
)

type builder struct {
	sched     *Scheduler
	cb        api.Callback
	delay     ticktime.Tick
	tolerance ticktime.Tick
	period    ticktime.Tick
	name      string
	committed bool
	handle    api.Handle
}

var _ api.Builder = (*builder)(nil)

// Post begins building a scheduled callback. spec.md §9's design note
// resolves the original's "commits on scope exit" behavior for a language
// without deterministic destructors: Handle() is the primary, guaranteed
// commit path, and an uncommitted builder additionally carries a
// finalizer as a best-effort fallback, since the garbage collector gives
// no timing guarantee about when (or whether, at process exit) it runs.
// Callers that need the commit to happen at all must call Handle().
func (s *Scheduler) Post(cb api.Callback) api.Builder {
	b := &builder{
		sched:     s,
		cb:        cb,
		tolerance: s.cfg.DefaultTolerance,
	}
	if cb != nil {
		runtime.SetFinalizer(b, func(b *builder) { b.commit() })
	}
	return b
}

func (b *builder) Delay(d api.Tick) api.Builder {
	b.delay = d
	return b
}

func (b *builder) Tolerance(t api.Tick) api.Builder {
	b.tolerance = t
	return b
}

func (b *builder) Period(p api.Tick) api.Builder {
	b.period = p
	return b
}

func (b *builder) Named(name string) api.Builder {
	b.name = name
	return b
}

func (b *builder) Handle() api.Handle {
	runtime.SetFinalizer(b, nil)
	return b.commit()
}

// commit implements the exactly-once semantics spec.md §4.D requires: a
// second call, whether from an explicit Handle() after the finalizer
// already ran or vice versa, is a no-op that returns the handle already
// issued.
func (b *builder) commit() api.Handle {
	if b.committed {
		return b.handle
	}
	b.committed = true
	if b.cb == nil {
		return 0
	}
	if b.tolerance >= ticktime.Mask/2+1 {
		fatalInvariant("tolerance exceeds half the tick width", api.ErrInvalidTolerance)
	}

	s := b.sched
	s.ensureInit()

	s.platform.EnterCritical()
	now := s.platform.Now()
	h, n := s.pool.Acquire()
	n.callback = b.cb
	n.callBefore = ticktime.Wrap(now + b.delay + b.period)
	n.tolerance = ticktime.Wrap(2 * b.tolerance)
	n.interval = b.period
	n.name = b.name
	s.heap.Insert(h)
	s.updateQueueDepth()
	s.platform.ExitCritical()
	s.notify()

	if s.cfg.Trace.MemoryTrace {
		s.debugLogf("post: handle=%d call_before=%d tolerance=%d interval=%d name=%q", h, n.callBefore, n.tolerance, n.interval, n.name)
	}

	b.handle = h
	return h
}
