// File: scheduler/dispatch_test.go
// Author: momentics <momentics@gmail.com>
//
// End-to-end dispatch-loop scenarios, driven step by step through the
// unexported runOnce so the fake platform's clock advances exactly when a
// test says it should -- no goroutines, no wall-clock races.

package scheduler

import (
	"testing"

	"github.com/momentics/tickd/api"
	"github.com/momentics/tickd/internal/faketime"
	"github.com/momentics/tickd/internal/ticktime"
)

func TestWrapAroundFiring(t *testing.T) {
	pf := faketime.New()
	pf.Set(ticktime.Mask - 1)
	s := New(pf, DefaultConfig())

	fired := false
	s.Post(func() { fired = true }).Delay(4).Tolerance(2).Handle()
	// call_before = wrap((Mask-1) + 4) = 2, tolerance_stored = 4.

	pf.Set(1) // wall clock wraps past Mask back around to 1.
	if stopped, _ := s.runOnce(); stopped {
		t.Fatal("unexpected stop_flag observed")
	}
	if !fired {
		t.Fatal("expected a deadline that wraps past Time_Mask to still fire")
	}
}

func TestCoalescingFiresBothWithoutSleeping(t *testing.T) {
	pf := faketime.New()
	s := New(pf, DefaultConfig())

	var order []int
	s.Post(func() { order = append(order, 1) }).Delay(10).Tolerance(5).Handle()
	s.Post(func() { order = append(order, 2) }).Delay(12).Tolerance(5).Handle()

	pf.Advance(12) // both windows ([5,15] and [7,17]) already cover now=12.

	if stopped, _ := s.runOnce(); stopped {
		t.Fatal("unexpected stop_flag observed")
	}
	if stopped, _ := s.runOnce(); stopped {
		t.Fatal("unexpected stop_flag observed")
	}

	if len(order) != 2 {
		t.Fatalf("expected both callbacks to fire, got %v", order)
	}
	if pf.SleepCalls() != 0 || pf.SleepUntilCalls() != 0 {
		t.Fatalf("expected no sleep between coalesced fires, got sleep=%d sleep_until=%d",
			pf.SleepCalls(), pf.SleepUntilCalls())
	}
}

func TestSelfCancelInPeriodic(t *testing.T) {
	pf := faketime.New()
	s := New(pf, DefaultConfig())

	var count int
	var handle api.Handle
	handle = s.Post(func() {
		count++
		if count == 3 {
			s.Cancel(handle)
		}
	}).Delay(0).Period(10).Tolerance(5).Handle()

	for i := 0; i < 3; i++ {
		pf.Advance(10)
		if stopped, _ := s.runOnce(); stopped {
			t.Fatal("unexpected stop_flag observed")
		}
	}
	if count != 3 {
		t.Fatalf("expected exactly 3 fires before self-cancel, got %d", count)
	}
	if s.Pending() != 0 {
		t.Fatalf("expected the node to be gone after self-cancel, got %d pending", s.Pending())
	}

	pf.Advance(10)
	if stopped, _ := s.runOnce(); stopped {
		t.Fatal("unexpected stop_flag observed")
	}
	if count != 3 {
		t.Fatalf("expected no further fires after self-cancel, got %d", count)
	}
}

func TestLagAndDurationWarnings(t *testing.T) {
	pf := faketime.New()
	cfg := DefaultConfig()
	cfg.WarnDurationTicks = 10
	cfg.WarnLagTicks = 10
	s := New(pf, cfg)

	var fires int
	burn := func() {
		fires++
		pf.Advance(200) // simulate a slow, CPU-burning callback body.
	}
	s.Post(burn).Delay(0).Tolerance(50).Handle()
	s.Post(burn).Delay(0).Tolerance(50).Handle()

	if stopped, _ := s.runOnce(); stopped {
		t.Fatal("unexpected stop_flag observed")
	}
	if stopped, _ := s.runOnce(); stopped {
		t.Fatal("unexpected stop_flag observed")
	}

	if fires != 2 {
		t.Fatalf("expected both callbacks to fire despite the lag, got %d", fires)
	}

	snap := s.Metrics().GetSnapshot()
	if got, _ := snap["tickd.duration_warnings"].(int64); got != 2 {
		t.Fatalf("expected 2 duration warnings, got %v", snap["tickd.duration_warnings"])
	}
	if got, _ := snap["tickd.lag_warnings"].(int64); got < 1 {
		t.Fatalf("expected at least 1 lag warning, got %v", snap["tickd.lag_warnings"])
	}
}

func TestComplexDispatch(t *testing.T) {
	pf := faketime.New()
	s := New(pf, DefaultConfig())

	var oneShotFires, periodicFires int
	s.Post(func() { oneShotFires++ }).Delay(5).Tolerance(2).Named("mid").Handle()
	s.Post(func() { periodicFires++ }).Delay(0).Period(3).Tolerance(1).Named("tick").Handle()
	s.Post(func() { oneShotFires++ }).Delay(20).Tolerance(3).Named("late").Handle()
	s.Post(func() { oneShotFires++ }).Delay(0).Tolerance(3).Named("immediate").Handle()

	const horizon = ticktime.Tick(25)
	for i := 0; i < 200 && pf.Now() < horizon; i++ {
		beforeSU := pf.SleepUntilCalls()
		beforeS := pf.SleepCalls()

		stopped, _ := s.runOnce()
		if stopped {
			t.Fatal("unexpected stop_flag observed")
		}

		if pf.SleepUntilCalls() > beforeSU {
			target := pf.LastSleepUntilTarget()
			if target > horizon {
				break
			}
			pf.Set(target)
		} else if pf.SleepCalls() > beforeS {
			break
		}
	}

	if oneShotFires != 3 {
		t.Fatalf("expected all 3 one-shots to fire by tick %d, got %d", horizon, oneShotFires)
	}
	if periodicFires != 8 {
		t.Fatalf("expected 8 periodic fires by tick %d (3,6,...,24), got %d", horizon, periodicFires)
	}
	if s.Pending() != 1 {
		t.Fatalf("expected only the rescheduled periodic callback left pending, got %d", s.Pending())
	}
}
