// File: scheduler/config.go
// Author: momentics <momentics@gmail.com>
//
// Config holds the scheduler's construction-time tunables, in the
// teacher's facade.Config style: exported fields, a DefaultConfig
// constructor, one comment per field. Warn thresholds are additionally
// mirrored into a control.ConfigStore (see scheduler.go's New) so they can be
// hot-reloaded at runtime without restarting the dispatch loop, matching
// the teacher's control/hotreload.go pattern.

package scheduler

import (
	"github.com/momentics/tickd/api"
	"github.com/momentics/tickd/internal/ticktime"
)

// Config configures a Scheduler at construction time.
type Config struct {
	// InitialPoolSize is the node pool's starting slab size.
	InitialPoolSize int

	// PoolGrowthStep is how many extra slots each pool growth adds.
	PoolGrowthStep int

	// MaxPoolSlots caps total node slots ever allocated; 0 = unbounded.
	// An embedded build with a fixed heap budget sets this to a real cap.
	MaxPoolSlots int

	// WarnLagTicks is the lag threshold (now - last_dispatch) beyond
	// which the dispatch loop logs a lag warning.
	WarnLagTicks ticktime.Tick

	// WarnDurationTicks is the callback-duration threshold beyond which
	// the dispatch loop logs a duration warning.
	WarnDurationTicks ticktime.Tick

	// DefaultTolerance is used by Builder when Tolerance is never called.
	DefaultTolerance ticktime.Tick

	// Trace controls the three compile-time-flavored observability
	// switches from spec.md §6.
	Trace api.TraceFlags

	// PinCPU, if >= 0, pins the dispatch loop's OS thread to that
	// logical CPU on platforms where affinity.Pin is supported. -1
	// (the default) leaves the loop unpinned.
	PinCPU int
}

// DefaultConfig returns sane defaults for a hosted (non-embedded) build.
func DefaultConfig() Config {
	return Config{
		InitialPoolSize:   50,
		PoolGrowthStep:    100,
		MaxPoolSlots:      0,
		WarnLagTicks:      ticktime.FromMillis(50),
		WarnDurationTicks: ticktime.FromMillis(10),
		DefaultTolerance:  ticktime.FromMillis(50),
		Trace:             api.DefaultTraceFlags(),
		PinCPU:            -1,
	}
}
