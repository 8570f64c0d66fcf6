package command

import (
	"context"
	"fmt"
	"time"

	"github.com/frc-5160-the-chargers/gocommand/internal/ctxlog"
)

// WithTimeout bounds cmd to d: whichever of cmd or the timer finishes first
// ends the composition, interrupting the loser.
func WithTimeout(cmd Command, d time.Duration) Command {
	return Race(fmt.Sprintf("%s.timeout(%s)", cmd.Name(), d), cmd, Wait(d))
}

// withTimeoutClock is WithTimeout with an explicit time source, for tests.
func withTimeoutClock(cmd Command, d time.Duration, now func() time.Time) Command {
	return Race(fmt.Sprintf("%s.timeout(%s)", cmd.Name(), d), cmd, WaitWithClock(d, now))
}

// Until bounds cmd by a condition: the composition ends as soon as cond
// reports true, interrupting cmd if it is still running.
func Until(cmd Command, cond func() bool) Command {
	return Race(fmt.Sprintf("%s.until", cmd.Name()), cmd, WaitUntil(cond))
}

// LoggedCommand is a transparent wrapper that records the wrapped command's
// lifecycle through the ambient slog logger: one line at initialize and one
// at end, with the elapsed time and whether the run was interrupted.
type LoggedCommand struct {
	inner Command
	start time.Time
}

// Logged wraps cmd with lifecycle logging.
func Logged(cmd Command) Command {
	return &LoggedCommand{inner: cmd}
}

func (l *LoggedCommand) Name() string { return l.inner.Name() }

func (l *LoggedCommand) Initialize(ctx context.Context) {
	l.start = time.Now()
	ctxlog.FromContext(ctx).Info("▶️ Command initialized", "command", l.inner.Name())
	l.inner.Initialize(ctx)
}

func (l *LoggedCommand) Execute(ctx context.Context) { l.inner.Execute(ctx) }

func (l *LoggedCommand) IsFinished() bool { return l.inner.IsFinished() }

func (l *LoggedCommand) End(ctx context.Context, interrupted bool) {
	l.inner.End(ctx, interrupted)
	logger := ctxlog.FromContext(ctx)
	elapsed := time.Since(l.start)
	if interrupted {
		logger.Warn("⛔ Command interrupted", "command", l.inner.Name(), "elapsed", elapsed)
		return
	}
	logger.Info("✅ Command finished", "command", l.inner.Name(), "elapsed", elapsed)
}

func (l *LoggedCommand) Requirements() []Subsystem { return l.inner.Requirements() }

func (l *LoggedCommand) RunsWhenDisabled() bool { return l.inner.RunsWhenDisabled() }

func (l *LoggedCommand) InterruptionBehavior() InterruptionBehavior {
	return l.inner.InterruptionBehavior()
}
