// File: scheduler/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Optional pinning of the dispatch loop's OS thread, mirroring the
// teacher's affinity subsystem. spec.md §1 calls the main loop "the
// primary execution context"; on constrained hardware that context is
// nailed to one core by the BSP, and Config.PinCPU exposes the same knob
// for a hosted Linux build.

package scheduler

import (
	"runtime"

	"github.com/momentics/tickd/affinity"
)

func pinCurrentThread(cpuID int) error {
	runtime.LockOSThread()
	return affinity.Pin(cpuID)
}
