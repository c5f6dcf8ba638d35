//go:build linux
// +build linux

// File: affinity/affinity_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux CPU affinity via golang.org/x/sys/unix, no cgo required.

package affinity

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func pinPlatform(cpuID int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpuID)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("affinity: SchedSetaffinity(cpu=%d): %w", cpuID, err)
	}
	return nil
}
