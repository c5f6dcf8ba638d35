// File: internal/faketime/faketime.go
// Author: momentics <momentics@gmail.com>
//
// Deterministic fake api.Platform for dispatch-loop tests. Grounded on the
// teacher's fake package (fake/buffer.go, fake/transport.go): a hand-rolled
// stand-in behind the real interface, guarded by a mutex, with explicit
// knobs a test can drive instead of racing against wall-clock sleep.

package faketime

import (
	"sync"

	"github.com/momentics/tickd/api"
	"github.com/momentics/tickd/internal/ticktime"
)

var _ api.Platform = (*Platform)(nil)

// Platform is a manually-advanced clock implementing api.Platform.
// SleepUntil/Sleep never actually block; they record what the scheduler
// asked for so a test can assert on it, then return immediately, letting
// the test drive time with Advance/Set.
type Platform struct {
	mu sync.Mutex

	now      ticktime.Tick
	critical int // nesting depth, for detecting unbalanced enter/exit

	lastSleepUntilTarget ticktime.Tick
	sleptUntilCalls      int
	sleptCalls           int

	timeBase uint32
	timeMask ticktime.Tick
}

// New creates a fake platform starting at tick 0.
func New() *Platform {
	return &Platform{
		timeBase: ticktime.Base,
		timeMask: ticktime.Mask,
	}
}

func (p *Platform) Init() {}

func (p *Platform) Now() ticktime.Tick {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.now
}

// Set pins the fake clock to an absolute tick, wrapping it first.
func (p *Platform) Set(t ticktime.Tick) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.now = ticktime.Wrap(t)
}

// Advance moves the fake clock forward by delta ticks, wrapping.
func (p *Platform) Advance(delta ticktime.Tick) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.now = ticktime.Wrap(p.now + delta)
}

// Sleep records that the scheduler asked to idle until any interrupt and
// returns immediately -- tests drive time explicitly with Advance.
func (p *Platform) Sleep() {
	p.mu.Lock()
	p.sleptCalls++
	p.mu.Unlock()
}

// SleepUntil records the requested wake target and returns immediately.
func (p *Platform) SleepUntil(now, target ticktime.Tick) {
	p.mu.Lock()
	p.lastSleepUntilTarget = target
	p.sleptUntilCalls++
	p.mu.Unlock()
}

func (p *Platform) EnterCritical() {
	p.mu.Lock()
	p.critical++
	p.mu.Unlock()
}

func (p *Platform) ExitCritical() {
	p.mu.Lock()
	p.critical--
	p.mu.Unlock()
}

func (p *Platform) TimeBase() uint32        { return p.timeBase }
func (p *Platform) TimeMask() ticktime.Tick { return p.timeMask }

// LastSleepUntilTarget returns the most recent target passed to SleepUntil,
// so a test can move the fake clock to the wake-up tick the scheduler asked
// for.
func (p *Platform) LastSleepUntilTarget() ticktime.Tick {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSleepUntilTarget
}

// SleepUntilCalls returns how many times SleepUntil was invoked.
func (p *Platform) SleepUntilCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sleptUntilCalls
}

// SleepCalls returns how many times the unconditional Sleep was invoked.
func (p *Platform) SleepCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sleptCalls
}

// CriticalDepth exposes the current nesting depth, for tests asserting the
// scheduler always balances EnterCritical/ExitCritical.
func (p *Platform) CriticalDepth() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.critical
}
