//go:build !linux
// +build !linux

// File: affinity/affinity_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub for platforms without a CPU affinity implementation.

package affinity

import (
	"fmt"

	"github.com/momentics/tickd/api"
)

func pinPlatform(cpuID int) error {
	return fmt.Errorf("affinity: %w", api.ErrNotSupported)
}
