// File: scheduler/scheduler.go
// Author: momentics <momentics@gmail.com>
//
// Scheduler owns the deadline heap, node pool, and epoch state described in
// spec.md §3. Per spec.md §9's design note, the original's process-wide
// lazily-initialized global is reformulated as an explicit value the
// application's entry point owns; Default()/SetDefault provide the thin
// static accessor spec.md §6's instance() asked for, for ergonomic parity
// with callers that just want "the scheduler" without threading a value
// through their whole call graph.

package scheduler

import (
	"log"
	"sync"

	"github.com/momentics/tickd/api"
	"github.com/momentics/tickd/control"
	"github.com/momentics/tickd/internal/deadlineheap"
	"github.com/momentics/tickd/internal/nodepool"
	"github.com/momentics/tickd/internal/ticktime"
)

// Scheduler dispatches callbacks from a single-threaded main loop, per
// spec.md §1-§9 in full.
type Scheduler struct {
	platform api.Platform
	cfg      Config

	pool *nodepool.Pool[node]
	heap *deadlineheap.Heap

	// lastDispatch, currentDispatch and stopFlag are the Scheduler State
	// fields from spec.md §3, mutated only inside the platform's critical
	// section.
	lastDispatch    ticktime.Tick
	currentDispatch ticktime.Tick
	stopFlag        bool

	metrics *control.MetricsRegistry
	debug   *control.DebugProbes
	cfgs    *control.ConfigStore

	initOnce sync.Once
}

var _ api.Scheduler = (*Scheduler)(nil)
var _ api.GracefulShutdown = (*Scheduler)(nil)

// New constructs a Scheduler bound to platform with cfg. The platform's
// Init() is invoked exactly once, on the first Start() or the first commit
// of a posted callback, per spec.md §6.
func New(platform api.Platform, cfg Config) *Scheduler {
	s := &Scheduler{
		platform: platform,
		cfg:      cfg,
		pool:     nodepool.New[node](cfg.InitialPoolSize, cfg.PoolGrowthStep, cfg.MaxPoolSlots),
		metrics:  control.NewMetricsRegistry(),
		debug:    control.NewDebugProbes(),
		cfgs:     control.NewConfigStore(),
	}
	s.heap = deadlineheap.New(s.epoch, s.deadlineOf)
	s.cfgs.SetConfig(map[string]any{
		"warn_lag_ticks":      cfg.WarnLagTicks,
		"warn_duration_ticks": cfg.WarnDurationTicks,
	})
	// Bridge this scheduler's own config store onto the package-wide
	// hot-reload bus, so a process hosting several tickd instances (or
	// other control-wired components) can react to one scheduler's
	// threshold change via control.RegisterReloadHook.
	s.cfgs.OnReload(func() { control.TriggerHotReloadSync() })
	s.registerDebugProbes()
	return s
}

func (s *Scheduler) ensureInit() {
	s.initOnce.Do(func() {
		s.platform.Init()
		s.lastDispatch = s.platform.Now()
		s.currentDispatch = s.lastDispatch
	})
}

// epoch is the deadlineheap.EpochFunc: the heap always compares against the
// scheduler's own last_dispatch field.
func (s *Scheduler) epoch() ticktime.Tick {
	return s.lastDispatch
}

// deadlineOf is the deadlineheap.DeadlineFunc, resolving a handle's
// call_before through the node pool.
func (s *Scheduler) deadlineOf(h api.Handle) ticktime.Tick {
	n := s.pool.Get(h)
	if n == nil {
		return s.lastDispatch // orphaned handle: treat as already due
	}
	return n.callBefore
}

// Now returns the virtual "intended" time exposed to the currently-running
// (or most recently run) callback, per spec.md §4.E step 5.
func (s *Scheduler) Now() ticktime.Tick {
	s.platform.EnterCritical()
	defer s.platform.ExitCritical()
	return s.currentDispatch
}

// MsToTicks converts milliseconds to ticks using the bound platform's
// Time_Base, panicking on overflow per spec.md §7.
func (s *Scheduler) MsToTicks(ms uint32) ticktime.Tick {
	return ticktime.FromMillisWithBase(ms, s.platform.TimeBase())
}

// TicksToMs converts ticks back to milliseconds.
func (s *Scheduler) TicksToMs(t ticktime.Tick) uint32 {
	return ticktime.ToMillisWithBase(t, s.platform.TimeBase())
}

// Pending returns the number of callbacks currently queued, taking the
// critical section since the heap is shared with interrupt-context
// post/cancel.
func (s *Scheduler) Pending() int {
	s.platform.EnterCritical()
	defer s.platform.ExitCritical()
	return s.heap.Len()
}

// SetWarnThresholds hot-reloads the lag/duration warning thresholds
// without restarting the dispatch loop, propagating the change through
// the config store's reload listeners (see New).
func (s *Scheduler) SetWarnThresholds(lag, duration ticktime.Tick) {
	s.cfgs.SetConfig(map[string]any{
		"warn_lag_ticks":      lag,
		"warn_duration_ticks": duration,
	})
}

// Shutdown implements api.GracefulShutdown by requesting the dispatch loop
// stop and returning any error surfaced doing so (never non-nil today, but
// kept for interface parity with the teacher's facade components).
func (s *Scheduler) Shutdown() error {
	s.Stop()
	return nil
}

func (s *Scheduler) registerDebugProbes() {
	s.debug.RegisterProbe("scheduler.heap_len", func() any { return s.heap.Len() })
	s.debug.RegisterProbe("scheduler.pool_cap", func() any { return s.pool.Cap() })
	s.debug.RegisterProbe("scheduler.pool_len", func() any { return s.pool.Len() })
	s.debug.RegisterProbe("scheduler.last_dispatch", func() any { return s.lastDispatch })
	s.debug.RegisterProbe("scheduler.node_names", s.dumpNodeNames)
	control.RegisterPlatformProbes(s.debug)
}

// dumpNodeNames surfaces every queued node's Builder.Named label, the only
// introspection an opaque callback offers.
func (s *Scheduler) dumpNodeNames() any {
	handles := s.heap.Items()
	names := make([]string, 0, len(handles))
	for _, h := range handles {
		if n := s.pool.Get(h); n != nil && n.name != "" {
			names = append(names, n.name)
		}
	}
	return names
}

// Metrics exposes the dispatch loop's runtime counters.
func (s *Scheduler) Metrics() *control.MetricsRegistry { return s.metrics }

// Debug exposes the registered debug probes.
func (s *Scheduler) Debug() *control.DebugProbes { return s.debug }

// debugLogf writes a trace line via the standard logger, matching the
// teacher's own preference for stdlib log over a structured logging
// dependency it never pulled in.
func (s *Scheduler) debugLogf(format string, args ...any) {
	log.Printf("tickd: "+format, args...)
}

// -------------------------------------------------------------------------
// Process-wide accessor, for ergonomic parity with spec.md §6's instance().
// -------------------------------------------------------------------------

var (
	defaultMu  sync.Mutex
	defaultSch *Scheduler
)

// Default lazily materializes a process-wide Scheduler over the hosted
// platform the first time it is called, and returns the same instance on
// every subsequent call. Prefer holding an explicit *Scheduler from New in
// new code; Default exists for call sites that want "the scheduler"
// without threading a value through, matching spec.md's instance().
func Default() *Scheduler {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultSch == nil {
		defaultSch = New(defaultPlatform(), DefaultConfig())
	}
	return defaultSch
}

// SetDefault installs s as the process-wide default, for hosts that want to
// control construction (custom Config, custom Platform) while still using
// the package-level accessors elsewhere. Every later Default() call returns
// s; a Scheduler already obtained from an earlier Default() call is not
// affected.
func SetDefault(s *Scheduler) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultSch = s
}
