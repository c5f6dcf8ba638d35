// File: scheduler/errors.go
// Author: momentics <momentics@gmail.com>
//
// Fatal-condition helper. spec.md §7 treats pool exhaustion and posting-time
// invariant violations as aborts; a hosted build turns that abort into a
// panic carrying a *api.Error, matching nodepool.Pool.Acquire's own
// exhaustion panic, so a caller that wants a recoverable abort (a test
// harness, say) can recover() it at whatever call depth suits it, while an
// embedded build is free to let the panic reach a hard fault handler
// unmodified.

package scheduler

import "github.com/momentics/tickd/api"

func fatalInvariant(message string, cause error) {
	panic(api.NewError(api.ErrCodeInvalidArgument, message, cause))
}
