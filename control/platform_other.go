//go:build !linux && !windows
// +build !linux,!windows

// control/platform_other.go
// Author: momentics <momentics@gmail.com>
//
// Fallback for platforms without a dedicated probe set below.

package control

import "runtime"

// RegisterPlatformProbes sets the generic runtime-only debug probes.
func RegisterPlatformProbes(dp *DebugProbes) {
	dp.RegisterProbe("platform.cpus", func() any {
		return runtime.NumCPU()
	})
}
