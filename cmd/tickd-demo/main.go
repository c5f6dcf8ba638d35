// File: cmd/tickd-demo/main.go
// Author: momentics <momentics@gmail.com>

package main

import (
	"fmt"

	"github.com/momentics/tickd/platform"
	"github.com/momentics/tickd/scheduler"
)

func main() {
	plat := platform.New(1000) // 1ms ticks
	cfg := scheduler.DefaultConfig()
	cfg.PinCPU = 0

	s := scheduler.New(plat, cfg)

	var greetings int
	s.Post(func() {
		greetings++
		fmt.Println("tick:", s.Now())
	}).Delay(s.MsToTicks(50)).Period(s.MsToTicks(100)).Tolerance(s.MsToTicks(10)).Named("greeter").Handle()

	s.Post(func() {
		fmt.Println("stopping after", greetings, "greetings")
		s.Stop()
	}).Delay(s.MsToTicks(550)).Tolerance(s.MsToTicks(20)).Handle()

	remaining := s.Start()
	fmt.Println("dispatch loop exited, remaining queued:", remaining)
	fmt.Println("metrics:", s.Metrics().GetSnapshot())
}
