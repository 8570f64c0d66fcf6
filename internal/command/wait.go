package command

import (
	"context"
	"fmt"
	"time"
)

// waitCommand finishes once a wall-clock duration has elapsed since
// Initialize. The clock is injectable so tests can drive time manually.
type waitCommand struct {
	name     string
	duration time.Duration
	now      func() time.Time
	deadline time.Time
}

// Wait returns a command that finishes after d has elapsed.
func Wait(d time.Duration) Command {
	return WaitWithClock(d, time.Now)
}

// WaitWithClock is Wait with an explicit time source.
func WaitWithClock(d time.Duration, now func() time.Time) Command {
	if now == nil {
		now = time.Now
	}
	return &waitCommand{
		name:     fmt.Sprintf("wait(%s)", d),
		duration: d,
		now:      now,
	}
}

func (w *waitCommand) Name() string { return w.name }

func (w *waitCommand) Initialize(ctx context.Context) {
	w.deadline = w.now().Add(w.duration)
}

func (w *waitCommand) Execute(ctx context.Context) {}

func (w *waitCommand) IsFinished() bool {
	return !w.now().Before(w.deadline)
}

func (w *waitCommand) End(ctx context.Context, interrupted bool) {}

func (w *waitCommand) Requirements() []Subsystem { return nil }

// Pauses carry no actuation, so they may run while disabled.
func (w *waitCommand) RunsWhenDisabled() bool { return true }

func (w *waitCommand) InterruptionBehavior() InterruptionBehavior { return CancelSelf }

// WaitUntil returns a command that finishes as soon as cond reports true.
func WaitUntil(cond func() bool) Command {
	return &Functional{
		CommandName: "wait_until",
		Finished:    cond,
		DisabledOK:  true,
	}
}
