package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/frc-5160-the-chargers/gocommand/internal/command"
	"github.com/frc-5160-the-chargers/gocommand/internal/ctxlog"
)

// Scheduler is the cooperative command engine. It is not safe for
// concurrent use: all calls are expected from the single control loop
// goroutine, matching the tick model.
type Scheduler struct {
	subsystems   []command.Subsystem
	subsystemSet map[command.Subsystem]struct{}
	defaults     map[command.Subsystem]command.Command
	scheduled    []command.Command
	scheduledSet map[command.Command]struct{}
	requirements map[command.Subsystem]command.Command
	disabled     bool
	inRunLoop    bool
	toSchedule   []command.Command
	toCancel     []command.Command
	onInitialize []func(command.Command)
	onFinish     []func(command.Command)
	onInterrupt  []func(command.Command)
}

// New returns an empty scheduler.
func New() *Scheduler {
	return &Scheduler{
		subsystemSet: make(map[command.Subsystem]struct{}),
		defaults:     make(map[command.Subsystem]command.Command),
		scheduledSet: make(map[command.Command]struct{}),
		requirements: make(map[command.Subsystem]command.Command),
	}
}

// RegisterSubsystem registers subsystems for Periodic calls and default
// command dispatch. Re-registering is a no-op.
func (s *Scheduler) RegisterSubsystem(subs ...command.Subsystem) {
	for _, sub := range subs {
		if _, ok := s.subsystemSet[sub]; ok {
			continue
		}
		s.subsystemSet[sub] = struct{}{}
		s.subsystems = append(s.subsystems, sub)
	}
}

// DefaultCommandProvider is implemented by subsystems that supply their own
// default command. The app attaches it at startup so the subsystem is held
// whenever no routine command requires it.
type DefaultCommandProvider interface {
	command.Subsystem
	DefaultCommand() command.Command
}

// SetDefaultCommand attaches cmd as the command scheduled for sub whenever
// nothing else requires it. The default must itself require sub (otherwise
// it would never be associated with it) and must not refuse interruption,
// or no other command could ever take the subsystem.
func (s *Scheduler) SetDefaultCommand(sub command.Subsystem, cmd command.Command) error {
	requiresSub := false
	for _, r := range cmd.Requirements() {
		if r == sub {
			requiresSub = true
			break
		}
	}
	if !requiresSub {
		return fmt.Errorf("default command '%s' does not require subsystem '%s'", cmd.Name(), sub.Name())
	}
	if cmd.InterruptionBehavior() == command.CancelIncoming {
		return fmt.Errorf("default command '%s' must not use cancel_incoming interruption", cmd.Name())
	}
	s.RegisterSubsystem(sub)
	s.defaults[sub] = cmd
	return nil
}

// OnInitialize registers a hook called whenever a command starts a run.
func (s *Scheduler) OnInitialize(fn func(command.Command)) {
	s.onInitialize = append(s.onInitialize, fn)
}

// OnFinish registers a hook called whenever a command finishes normally.
func (s *Scheduler) OnFinish(fn func(command.Command)) {
	s.onFinish = append(s.onFinish, fn)
}

// OnInterrupt registers a hook called whenever a command is interrupted.
func (s *Scheduler) OnInterrupt(fn func(command.Command)) {
	s.onInterrupt = append(s.onInterrupt, fn)
}

// SetDisabled flips the disabled gate. Running commands that may not run
// while disabled are interrupted on the next tick.
func (s *Scheduler) SetDisabled(disabled bool) { s.disabled = disabled }

// Disabled reports the disabled gate.
func (s *Scheduler) Disabled() bool { return s.disabled }

// Schedule starts cmds. Inside a tick the calls are deferred to the end of
// that tick so command bodies can schedule follow-ups safely.
func (s *Scheduler) Schedule(ctx context.Context, cmds ...command.Command) {
	if s.inRunLoop {
		s.toSchedule = append(s.toSchedule, cmds...)
		return
	}
	for _, c := range cmds {
		s.schedule(ctx, c)
	}
}

// schedule performs requirement arbitration and initializes cmd.
func (s *Scheduler) schedule(ctx context.Context, cmd command.Command) {
	logger := ctxlog.FromContext(ctx)
	if cmd == nil {
		logger.Warn("Ignoring nil command passed to Schedule.")
		return
	}
	if _, ok := s.scheduledSet[cmd]; ok {
		return
	}
	if s.disabled && !cmd.RunsWhenDisabled() {
		logger.Debug("Refusing command while disabled.", "command", cmd.Name())
		return
	}

	reqs := cmd.Requirements()
	var conflicts []command.Command
	conflictSet := make(map[command.Command]struct{})
	for _, sub := range reqs {
		if incumbent, held := s.requirements[sub]; held {
			if _, ok := conflictSet[incumbent]; !ok {
				conflictSet[incumbent] = struct{}{}
				conflicts = append(conflicts, incumbent)
			}
		}
	}
	for _, incumbent := range conflicts {
		if incumbent.InterruptionBehavior() == command.CancelIncoming {
			logger.Debug("Refusing command: incumbent declines interruption.",
				"command", cmd.Name(), "incumbent", incumbent.Name())
			return
		}
	}
	for _, incumbent := range conflicts {
		s.interrupt(ctx, incumbent)
	}

	s.scheduledSet[cmd] = struct{}{}
	s.scheduled = append(s.scheduled, cmd)
	for _, sub := range reqs {
		s.requirements[sub] = cmd
	}
	cmd.Initialize(ctx)
	for _, fn := range s.onInitialize {
		fn(cmd)
	}
}

// Cancel interrupts cmds if they are scheduled. Deferred when called during
// a tick.
func (s *Scheduler) Cancel(ctx context.Context, cmds ...command.Command) {
	if s.inRunLoop {
		s.toCancel = append(s.toCancel, cmds...)
		return
	}
	for _, c := range cmds {
		if _, ok := s.scheduledSet[c]; ok {
			s.interrupt(ctx, c)
		}
	}
}

// CancelAll interrupts every scheduled command.
func (s *Scheduler) CancelAll(ctx context.Context) {
	s.Cancel(ctx, append([]command.Command(nil), s.scheduled...)...)
}

// IsScheduled reports whether cmd is currently running.
func (s *Scheduler) IsScheduled(cmd command.Command) bool {
	_, ok := s.scheduledSet[cmd]
	return ok
}

// Requiring returns the command currently holding sub, if any.
func (s *Scheduler) Requiring(sub command.Subsystem) (command.Command, bool) {
	c, ok := s.requirements[sub]
	return c, ok
}

// interrupt ends cmd with interrupted=true and releases its requirements.
func (s *Scheduler) interrupt(ctx context.Context, cmd command.Command) {
	cmd.End(ctx, true)
	s.remove(cmd)
	for _, fn := range s.onInterrupt {
		fn(cmd)
	}
}

// finish ends cmd normally and releases its requirements.
func (s *Scheduler) finish(ctx context.Context, cmd command.Command) {
	cmd.End(ctx, false)
	s.remove(cmd)
	for _, fn := range s.onFinish {
		fn(cmd)
	}
}

func (s *Scheduler) remove(cmd command.Command) {
	delete(s.scheduledSet, cmd)
	for i, c := range s.scheduled {
		if c == cmd {
			s.scheduled = append(s.scheduled[:i], s.scheduled[i+1:]...)
			break
		}
	}
	for sub, holder := range s.requirements {
		if holder == cmd {
			delete(s.requirements, sub)
		}
	}
}

// Run performs one scheduler tick. See the package documentation for the
// tick phases.
func (s *Scheduler) Run(ctx context.Context) {
	if s.inRunLoop {
		panic("scheduler: Run called reentrantly from inside a tick")
	}

	for _, sub := range s.subsystems {
		sub.Periodic(ctx)
	}

	s.inRunLoop = true
	for _, cmd := range append([]command.Command(nil), s.scheduled...) {
		if _, still := s.scheduledSet[cmd]; !still {
			continue
		}
		if s.disabled && !cmd.RunsWhenDisabled() {
			s.interrupt(ctx, cmd)
			continue
		}
		cmd.Execute(ctx)
		if cmd.IsFinished() {
			s.finish(ctx, cmd)
		}
	}
	s.inRunLoop = false

	// Apply requests queued by command bodies during the tick: cancels
	// first, then schedules, each batch in the order it was made.
	queuedCancel := s.toCancel
	queuedSchedule := s.toSchedule
	s.toCancel = nil
	s.toSchedule = nil
	for _, c := range queuedCancel {
		if _, ok := s.scheduledSet[c]; ok {
			s.interrupt(ctx, c)
		}
	}
	for _, c := range queuedSchedule {
		s.schedule(ctx, c)
	}

	for _, sub := range s.subsystems {
		if _, held := s.requirements[sub]; held {
			continue
		}
		if def, ok := s.defaults[sub]; ok {
			s.schedule(ctx, def)
		}
	}
}

// RunLoop drives Run every period until ctx is cancelled or until (when
// non-nil) reports true after a tick. Returns ctx.Err on cancellation, nil
// when the stop condition fired.
func (s *Scheduler) RunLoop(ctx context.Context, period time.Duration, until func() bool) error {
	if period <= 0 {
		return fmt.Errorf("scheduler run loop period must be positive, got %s", period)
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Run(ctx)
			if until != nil && until() {
				return nil
			}
		}
	}
}
