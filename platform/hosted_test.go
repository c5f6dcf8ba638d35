// File: platform/hosted_test.go
// Author: momentics <momentics@gmail.com>

package platform

import (
	"testing"
	"time"

	"github.com/momentics/tickd/internal/ticktime"
)

func TestSleepUnlocksForInterruptsAndWakesOnNotify(t *testing.T) {
	h := New(1000)
	h.Init()

	wokeUp := make(chan struct{})
	go func() {
		h.EnterCritical()
		h.Sleep()
		h.ExitCritical()
		close(wokeUp)
	}()

	time.Sleep(20 * time.Millisecond) // let the goroutine above reach Sleep

	// A simulated interrupt handler must be able to take the critical
	// section while the dispatch loop is asleep -- this is exactly the
	// deadlock Sleep's internal unlock/relock exists to avoid.
	interruptDone := make(chan struct{})
	go func() {
		h.EnterCritical()
		h.ExitCritical()
		close(interruptDone)
	}()

	select {
	case <-interruptDone:
	case <-time.After(time.Second):
		t.Fatal("interrupt-context critical section blocked by a sleeping dispatch loop")
	}

	h.Notify()

	select {
	case <-wokeUp:
	case <-time.After(time.Second):
		t.Fatal("Sleep did not return after Notify")
	}
}

func TestSleepUntilWakesOnTimer(t *testing.T) {
	h := New(1000) // 1000 ticks/sec => 1 tick == 1ms
	h.Init()

	h.EnterCritical()
	start := time.Now()
	now := h.Now()
	h.SleepUntil(now, now+ticktime.Tick(20))
	h.ExitCritical()

	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Fatalf("SleepUntil returned too early: %v", elapsed)
	}
}

func TestSleepUntilReturnsImmediatelyWhenAlreadyDue(t *testing.T) {
	h := New(1000)
	h.Init()

	h.EnterCritical()
	start := time.Now()
	now := h.Now()
	h.SleepUntil(now, now)
	h.ExitCritical()

	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Fatalf("SleepUntil with zero remaining took too long: %v", elapsed)
	}
}

func TestNotifyIsNonBlockingWithoutASleeper(t *testing.T) {
	h := New(1000)
	h.Init()
	// Notify with nobody sleeping must not block or panic.
	h.Notify()
	h.Notify()
}
