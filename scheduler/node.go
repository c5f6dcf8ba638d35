// File: scheduler/node.go
// Author: momentics <momentics@gmail.com>
//
// CallbackNode is one scheduled activation, per spec.md §3.

package scheduler

import (
	"github.com/momentics/tickd/api"
	"github.com/momentics/tickd/internal/ticktime"
)

// node is the pool-resident record for one scheduled callback.
type node struct {
	callback api.Callback

	// callBefore is the latest wall-tick at which the callback should
	// have started.
	callBefore ticktime.Tick

	// tolerance is stored already doubled (see Builder.Handle): the node
	// is eligible from callBefore-tolerance/2 through callBefore+tolerance/2.
	tolerance ticktime.Tick

	// interval is 0 for one-shot nodes, otherwise the node is
	// rescheduled to callBefore+interval after each fire.
	interval ticktime.Tick

	// name is an optional debug label (spec.md §9's addressForFunction
	// note: the runtime cannot introspect an opaque callable, so a
	// caller-supplied label is the only debug name available).
	name string
}

func (n *node) isPeriodic() bool { return n.interval != 0 }
