package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frc-5160-the-chargers/gocommand/internal/command"
)

// countingSub counts Periodic calls.
type countingSub struct {
	name     string
	periodic int
}

func (s *countingSub) Name() string                 { return s.name }
func (s *countingSub) Periodic(ctx context.Context) { s.periodic++ }

// fake is a minimal observable command for scheduler tests.
type fake struct {
	name          string
	ticksToFinish int
	execs         int
	inits         int
	ends          int
	interrupted   bool
	reqs          []command.Subsystem
	disabledOK    bool
	interruption  command.InterruptionBehavior
	onExecute     func(ctx context.Context)
}

func newFake(name string, ticksToFinish int, reqs ...command.Subsystem) *fake {
	return &fake{name: name, ticksToFinish: ticksToFinish, reqs: reqs}
}

func (f *fake) Name() string { return f.name }

func (f *fake) Initialize(ctx context.Context) {
	f.inits++
	f.execs = 0
}

func (f *fake) Execute(ctx context.Context) {
	f.execs++
	if f.onExecute != nil {
		f.onExecute(ctx)
	}
}

func (f *fake) IsFinished() bool {
	return f.ticksToFinish > 0 && f.execs >= f.ticksToFinish
}

func (f *fake) End(ctx context.Context, interrupted bool) {
	f.ends++
	f.interrupted = interrupted
}

func (f *fake) Requirements() []command.Subsystem { return f.reqs }

func (f *fake) RunsWhenDisabled() bool { return f.disabledOK }

func (f *fake) InterruptionBehavior() command.InterruptionBehavior { return f.interruption }

func TestScheduleRunFinishLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	var initialized, finished []string
	s.OnInitialize(func(c command.Command) { initialized = append(initialized, c.Name()) })
	s.OnFinish(func(c command.Command) { finished = append(finished, c.Name()) })

	cmd := newFake("two_ticks", 2)
	s.Schedule(ctx, cmd)
	require.True(t, s.IsScheduled(cmd))
	assert.Equal(t, []string{"two_ticks"}, initialized)

	s.Run(ctx)
	require.True(t, s.IsScheduled(cmd))
	s.Run(ctx)
	require.False(t, s.IsScheduled(cmd))

	assert.Equal(t, 2, cmd.execs)
	assert.Equal(t, 1, cmd.ends)
	assert.False(t, cmd.interrupted)
	assert.Equal(t, []string{"two_ticks"}, finished)
}

func TestScheduleTwiceIsNoOp(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	cmd := newFake("once", 0)
	s.Schedule(ctx, cmd)
	s.Schedule(ctx, cmd)
	assert.Equal(t, 1, cmd.inits)
}

func TestPeriodicRunsEveryTickBeforeCommands(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	sub := &countingSub{name: "sub"}
	s.RegisterSubsystem(sub)
	s.Run(ctx)
	s.Run(ctx)
	assert.Equal(t, 2, sub.periodic)
}

func TestRequirementArbitrationInterruptsIncumbent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	sub := &countingSub{name: "arm"}
	incumbent := newFake("incumbent", 0, sub)
	newcomer := newFake("newcomer", 0, sub)

	s.Schedule(ctx, incumbent)
	s.Schedule(ctx, newcomer)

	assert.False(t, s.IsScheduled(incumbent))
	assert.True(t, incumbent.interrupted)
	assert.True(t, s.IsScheduled(newcomer))

	holder, ok := s.Requiring(sub)
	require.True(t, ok)
	assert.Same(t, command.Command(newcomer), holder)
}

func TestCancelIncomingIncumbentRefusesNewcomer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	sub := &countingSub{name: "arm"}
	incumbent := newFake("incumbent", 0, sub)
	incumbent.interruption = command.CancelIncoming
	newcomer := newFake("newcomer", 0, sub)

	s.Schedule(ctx, incumbent)
	s.Schedule(ctx, newcomer)

	assert.True(t, s.IsScheduled(incumbent))
	assert.False(t, s.IsScheduled(newcomer))
	assert.Zero(t, newcomer.inits)
}

func TestDisabledRefusesAndInterrupts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	running := newFake("running", 0)
	s.Schedule(ctx, running)

	s.SetDisabled(true)

	// New non-disabled-safe commands are refused outright.
	refused := newFake("refused", 0)
	s.Schedule(ctx, refused)
	assert.False(t, s.IsScheduled(refused))

	// Disabled-safe commands still schedule and run.
	safe := newFake("safe", 0)
	safe.disabledOK = true
	s.Schedule(ctx, safe)
	require.True(t, s.IsScheduled(safe))

	// The running command is interrupted on the next tick.
	s.Run(ctx)
	assert.False(t, s.IsScheduled(running))
	assert.True(t, running.interrupted)
	assert.True(t, s.IsScheduled(safe))
	assert.Equal(t, 1, safe.execs)
}

func TestDefaultCommandFillsIdleSubsystem(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	sub := &countingSub{name: "arm"}
	idle := newFake("idle", 0, sub)
	require.NoError(t, s.SetDefaultCommand(sub, idle))

	// Default picks up the free subsystem at the end of the first tick.
	s.Run(ctx)
	require.True(t, s.IsScheduled(idle))

	// A real command takes over; the default is interrupted.
	active := newFake("active", 2, sub)
	s.Schedule(ctx, active)
	assert.False(t, s.IsScheduled(idle))
	assert.True(t, idle.interrupted)

	// When the active command finishes, the default returns.
	s.Run(ctx)
	s.Run(ctx)
	require.False(t, s.IsScheduled(active))
	assert.True(t, s.IsScheduled(idle))
}

func TestSetDefaultCommandValidation(t *testing.T) {
	t.Parallel()
	s := New()
	sub := &countingSub{name: "arm"}

	// Must require the subsystem.
	err := s.SetDefaultCommand(sub, newFake("unrelated", 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not require subsystem")

	// Must not refuse interruption.
	stubborn := newFake("stubborn", 0, sub)
	stubborn.interruption = command.CancelIncoming
	err = s.SetDefaultCommand(sub, stubborn)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cancel_incoming")
}

func TestScheduleDuringTickIsDeferred(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	followUp := newFake("follow_up", 0)
	trigger := newFake("trigger", 1)
	trigger.onExecute = func(ctx context.Context) {
		s.Schedule(ctx, followUp)
		// Not yet applied inside the tick.
		assert.False(t, s.IsScheduled(followUp))
	}

	s.Schedule(ctx, trigger)
	s.Run(ctx)

	assert.False(t, s.IsScheduled(trigger))
	assert.True(t, s.IsScheduled(followUp))
}

func TestCancelDuringTickIsDeferred(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	victim := newFake("victim", 0)
	trigger := newFake("trigger", 1)
	trigger.onExecute = func(ctx context.Context) {
		s.Cancel(ctx, victim)
	}

	s.Schedule(ctx, victim)
	s.Schedule(ctx, trigger)
	s.Run(ctx)

	assert.False(t, s.IsScheduled(victim))
	assert.True(t, victim.interrupted)
}

func TestQueuedCancelsApplyBeforeQueuedSchedules(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	restarted := newFake("restarted", 0)
	trigger := newFake("trigger", 1)
	trigger.onExecute = func(ctx context.Context) {
		s.Cancel(ctx, restarted)
		s.Schedule(ctx, restarted)
	}

	s.Schedule(ctx, restarted)
	s.Schedule(ctx, trigger)
	s.Run(ctx)

	// The queued cancel lands first, so the queued schedule restarts the
	// command within the same tick boundary.
	assert.True(t, s.IsScheduled(restarted))
	assert.True(t, restarted.interrupted)
	assert.Equal(t, 2, restarted.inits)
}

func TestCancelAll(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	a := newFake("a", 0)
	b := newFake("b", 0)
	s.Schedule(ctx, a, b)
	s.CancelAll(ctx)

	assert.False(t, s.IsScheduled(a))
	assert.False(t, s.IsScheduled(b))
	assert.True(t, a.interrupted)
	assert.True(t, b.interrupted)
}

func TestReentrantRunPanics(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	reentrant := newFake("reentrant", 1)
	reentrant.onExecute = func(ctx context.Context) { s.Run(ctx) }
	s.Schedule(ctx, reentrant)

	assert.Panics(t, func() { s.Run(ctx) })
}

func TestRunLoopStopsOnCondition(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	cmd := newFake("three_ticks", 3)
	s.Schedule(ctx, cmd)

	err := s.RunLoop(ctx, time.Millisecond, func() bool {
		return !s.IsScheduled(cmd)
	})
	require.NoError(t, err)
	assert.Equal(t, 3, cmd.execs)
}

func TestRunLoopStopsOnContextCancel(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	s := New()

	cmd := newFake("forever", 0)
	s.Schedule(ctx, cmd)

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := s.RunLoop(ctx, time.Millisecond, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunLoopRejectsNonPositivePeriod(t *testing.T) {
	t.Parallel()
	s := New()
	err := s.RunLoop(context.Background(), 0, nil)
	require.Error(t, err)
}
