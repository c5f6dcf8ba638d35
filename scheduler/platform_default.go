// File: scheduler/platform_default.go
// Author: momentics <momentics@gmail.com>
//
// defaultPlatform backs the package-level Default() accessor with the
// hosted, real-time platform. Embedded builds never call Default(); they
// construct a Scheduler with New() over their own BSP-backed api.Platform.

package scheduler

import "github.com/momentics/tickd/platform"

func defaultPlatform() *platform.Hosted {
	return platform.New(0)
}
