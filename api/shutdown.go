// File: api/shutdown.go
// Package api defines a unified graceful shutdown contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// GracefulShutdown unifies orderly component teardown.
type GracefulShutdown interface {
	// Shutdown stops the component and releases its resources. Returns
	// an error if it could not stop cleanly.
	Shutdown() error
}
