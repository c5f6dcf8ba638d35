// File: platform/hosted.go
// Author: momentics <momentics@gmail.com>
//
// Hosted implements api.Platform over the Go runtime's own clock and
// scheduler, for running tickd on a regular OS instead of bare metal. The
// nestable critical section is a counting mutex, the direct analogue of
// the push-old-state/mask/pop-old-state discipline spec.md §5 describes
// for real interrupt masking: a single mutex serializes the sections that
// would otherwise run with interrupts off. The mutex is not reentrant: a
// goroutine that calls EnterCritical while already holding the section
// blocks forever, so sections are not nestable here; the depth counter
// only counts entries.
//
// Sleep/SleepUntil are backed by a single-slot wake channel so Post/Cancel
// from other goroutines (standing in for interrupt handlers) can interrupt
// an in-progress sleep immediately instead of waiting out its full
// duration -- mirroring the WFE (wait-for-event) primitive spec.md §6
// requires: any interrupt, not just the awaited timer, must wake the loop.

package platform

import (
	"sync"
	"time"

	"github.com/momentics/tickd/api"
	"github.com/momentics/tickd/internal/ticktime"
)

// Hosted is a production api.Platform backed by time.Now and time.Timer.
type Hosted struct {
	initOnce sync.Once
	epoch    time.Time // wall-clock instant tick 0 corresponds to

	mu    sync.Mutex // the "interrupt mask": held for the critical section
	depth int        // nesting depth of EnterCritical/ExitCritical

	wake     chan struct{} // signaled by Notify to interrupt a sleep early
	timeBase uint32
	timeMask ticktime.Tick
}

var _ api.WallClockPlatform = (*Hosted)(nil)

// New creates a Hosted platform ticking at base ticks/second.
func New(base uint32) *Hosted {
	if base == 0 {
		base = ticktime.Base
	}
	return &Hosted{
		wake:     make(chan struct{}, 1),
		timeBase: base,
		timeMask: ticktime.Mask,
	}
}

func (h *Hosted) Init() {
	h.initOnce.Do(func() {
		h.epoch = time.Now()
	})
}

// Now returns elapsed wall time since Init as ticks, wrapped.
func (h *Hosted) Now() ticktime.Tick {
	elapsed := time.Since(h.epoch)
	ticks := uint64(elapsed.Seconds() * float64(h.timeBase))
	return ticktime.Wrap(ticktime.Tick(ticks))
}

func (h *Hosted) WallClock(t ticktime.Tick) time.Time {
	d := time.Duration(float64(t) / float64(h.timeBase) * float64(time.Second))
	return h.epoch.Add(d)
}

// Notify wakes any goroutine currently blocked in Sleep/SleepUntil,
// standing in for an asynchronous interrupt firing. post/cancel call this
// after mutating the heap so the loop reacts immediately instead of idling
// out its previous sleep target.
func (h *Hosted) Notify() {
	select {
	case h.wake <- struct{}{}:
	default:
	}
}

// Sleep and SleepUntil are the WFE analogue: spec.md §6 requires them to
// tolerate being called with the critical section held, atomically
// unmasking for the wait and remasking on return. Here that means
// releasing h.mu for the actual blocking wait and reacquiring it before
// returning, so Post/Cancel (standing in for interrupt handlers) can run
// while the dispatch loop is otherwise "masked". Callers must hold the
// critical section with depth exactly 1 when calling either method.

func (h *Hosted) Sleep() {
	h.mu.Unlock()
	<-h.wake
	h.mu.Lock()
}

func (h *Hosted) SleepUntil(now, target ticktime.Tick) {
	remaining := ticktime.Sub(now, target)
	d := time.Duration(float64(remaining) / float64(h.timeBase) * float64(time.Second))
	h.mu.Unlock()
	defer h.mu.Lock()
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-h.wake:
	}
}

// EnterCritical acquires the platform's single critical-section mutex.
// Unlike a real nested-IRQ mask stack, this hosted stand-in uses a plain
// mutex: concurrent goroutines serialize correctly, but a goroutine that
// already holds the section and calls EnterCritical again deadlocks. The
// depth counter exists purely for symmetry/assertions with the embedded
// model.
func (h *Hosted) EnterCritical() {
	h.mu.Lock()
	h.depth++
}

func (h *Hosted) ExitCritical() {
	h.depth--
	h.mu.Unlock()
}

func (h *Hosted) TimeBase() uint32        { return h.timeBase }
func (h *Hosted) TimeMask() ticktime.Tick { return h.timeMask }
