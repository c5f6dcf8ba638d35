package ticktime

import "testing"

func TestWrapIdempotent(t *testing.T) {
	for _, x := range []Tick{0, 1, Mask, Mask - 1, Mask / 2} {
		if Wrap(Wrap(x)) != Wrap(x) {
			t.Errorf("Wrap(Wrap(%d)) != Wrap(%d)", x, x)
		}
	}
}

func TestFromMillisToMillisRoundTrip(t *testing.T) {
	old := Base
	Base = 1000
	defer func() { Base = old }()

	for _, ms := range []uint32{0, 1, 500, 5000, 30000} {
		ticks := FromMillis(ms)
		if got := ToMillis(ticks); got != ms {
			t.Errorf("round trip failed: ms=%d ticks=%d got=%d", ms, ticks, got)
		}
	}
}

func TestFromMillisOverflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on tick overflow")
		}
	}()
	// With Base ticks/sec == Mask, a large ms value overflows the tick width.
	old := Base
	Base = uint32(Mask)
	defer func() { Base = old }()
	FromMillis(1_000_000_000)
}

func TestInWindowDegenerate(t *testing.T) {
	if !InWindow(5, 5, 5) {
		t.Error("in_window(s, s, s) must be true")
	}
}

func TestInWindowWrappedArc(t *testing.T) {
	// Mask is the package's 32-bit Time_Mask; the arc from Mask-2 wraps
	// through 0 up to (but excluding) 3.
	if !InWindow(Mask-2, 1, 3) {
		t.Error("expected wrapped arc [Mask-2 .. 3) to contain 1")
	}
}

func TestInWindowOrdinaryArc(t *testing.T) {
	if !InWindow(10, 12, 20) {
		t.Error("expected 12 in [10, 20)")
	}
	if InWindow(10, 25, 20) {
		t.Error("expected 25 outside [10, 20)")
	}
	if InWindow(10, 5, 20) {
		t.Error("expected 5 outside [10, 20) (not wrapped, before start)")
	}
}

func TestSmallestForwardNoWrap(t *testing.T) {
	if got := SmallestForward(0, 10, 20); got != 10 {
		t.Errorf("expected 10, got %d", got)
	}
}

func TestSmallestForwardOneWrapped(t *testing.T) {
	// from=100; a=90 has wrapped behind us, b=110 is ahead: pick b.
	if got := SmallestForward(100, 90, 110); got != 110 {
		t.Errorf("expected 110, got %d", got)
	}
	// symmetric case
	if got := SmallestForward(100, 110, 90); got != 110 {
		t.Errorf("expected 110, got %d", got)
	}
}

func TestSmallestForwardBothWrapped(t *testing.T) {
	if got := SmallestForward(100, 50, 70); got != 50 {
		t.Errorf("expected 50, got %d", got)
	}
}

func TestSub(t *testing.T) {
	if got := Sub(10, 15); got != 5 {
		t.Errorf("expected 5, got %d", got)
	}
	if got := Sub(Mask, 1); got != 2 {
		t.Errorf("expected wraparound distance of 2, got %d", got)
	}
}
