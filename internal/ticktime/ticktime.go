// File: internal/ticktime/ticktime.go
// Author: momentics <momentics@gmail.com>
//
// Wrap-aware arithmetic over a finite-width tick counter. All comparisons in
// the scheduler are relative to a moving epoch, never absolute, so this
// package never assumes a global ordering of ticks.

package ticktime

import "fmt"

// Tick is a platform tick count, always kept within [0, Mask].
type Tick uint32

// Width is the tick counter's bit width. The scheduler is built against a
// single Width for its lifetime; 32 matches spec.md's "typically 32 bits".
const Width = 32

// Mask is Time_Mask: 2^Width - 1. Width == 32 lets Mask fit exactly in a
// uint32 without a special-case for the all-ones value.
const Mask Tick = 1<<Width - 1

// Wrap folds x back into [0, Mask]. Tick is already a uint32 so this is a
// no-op mask, kept as a named operation to match spec.md's vocabulary and to
// give every call site an unambiguous, greppable name.
func Wrap(x Tick) Tick {
	return x & Mask
}

// Base is Time_Base: platform ticks per second. Overridable by build so a
// host binary can match its platform's real tick rate; the default suits a
// 1ms-resolution embedded timer.
var Base uint32 = 1000

// FromMillis converts a millisecond duration to ticks using the package's
// global Base. It panics if the result would not fit in [0, Mask), matching
// spec.md §7's "Fatal invariant" treatment of ms->tick overflow.
func FromMillis(ms uint32) Tick {
	return FromMillisWithBase(ms, Base)
}

// ToMillis converts ticks back to milliseconds using the package's global Base.
func ToMillis(t Tick) uint32 {
	return ToMillisWithBase(t, Base)
}

// FromMillisWithBase is FromMillis parameterized on a caller-supplied tick
// rate, for platforms whose Time_Base differs from the package default.
func FromMillisWithBase(ms uint32, base uint32) Tick {
	t := (uint64(ms) * uint64(base)) / 1000
	if t >= uint64(Mask) {
		panic(fmt.Sprintf("ticktime: %dms overflows tick width (Base=%d, Mask=%d)", ms, base, Mask))
	}
	return Tick(t)
}

// ToMillisWithBase is ToMillis parameterized on a caller-supplied tick rate.
func ToMillisWithBase(t Tick, base uint32) uint32 {
	return uint32((uint64(t) * 1000) / uint64(base))
}

// InWindow reports whether t lies on the forward modular arc from start to
// end: inclusive of start, exclusive of end, with the degenerate case
// start == end == t treated as true.
func InWindow(start, t, end Tick) bool {
	if t >= start {
		return t < end || start >= end
	}
	return end < start && end > t
}

// SmallestForward returns whichever of a, b is the earlier tick going
// forward from from, given that at least one of them has not already
// passed from (modularly). It is used exclusively to step an epoch forward
// without ever moving it past a live deadline.
func SmallestForward(from, a, b Tick) Tick {
	aAhead := a >= from
	bAhead := b >= from
	switch {
	case aAhead == bAhead:
		if a < b {
			return a
		}
		return b
	case aAhead:
		return a
	default:
		return b
	}
}

// Sub returns the forward modular distance from a to b: (b - a) mod (Mask+1).
// This is the quantity the deadline heap orders by.
func Sub(a, b Tick) Tick {
	return Wrap(b - a)
}
