// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for pinning the dispatch loop's OS thread to a
// logical CPU. Grounded on the teacher's affinity package layout
// (affinity/affinity.go dispatching to per-platform setAffinityPlatform
// implementations selected by build tag) but implemented without cgo,
// following the teacher's own cgo-free fallback
// (internal/concurrency/affinity_linux_pure.go) and wired to the real
// golang.org/x/sys/unix syscall on Linux instead of a no-op, since tickd
// has no cgo build requirement to preserve.

package affinity

// Pin binds the calling OS thread to cpuID. Callers must have already
// called runtime.LockOSThread(), since Go otherwise may migrate the
// goroutine to a different OS thread between scheduler preemptions.
// Returns api.ErrNotSupported-wrapping error on platforms without an
// implementation.
func Pin(cpuID int) error {
	return pinPlatform(cpuID)
}
