package command

import "context"

// InterruptionBehavior controls what happens when a newly scheduled command
// requires a subsystem held by an already running command.
type InterruptionBehavior int

const (
	// CancelSelf means the running command yields: it is interrupted and the
	// incoming command takes its requirements. This is the default.
	CancelSelf InterruptionBehavior = iota

	// CancelIncoming means the running command refuses to yield: the
	// incoming command is not scheduled at all.
	CancelIncoming
)

// String returns the lowercase name of the behavior for logs.
func (b InterruptionBehavior) String() string {
	if b == CancelIncoming {
		return "cancel_incoming"
	}
	return "cancel_self"
}

// Subsystem is a named robot mechanism. The scheduler calls Periodic exactly
// once per tick, before any command bodies run, whether or not a command
// currently requires the subsystem.
type Subsystem interface {
	Name() string
	Periodic(ctx context.Context)
}

// Command is the unit of work executed by the cooperative scheduler.
//
// Lifecycle contract: Initialize is called once when the command is
// scheduled; Execute is called every tick while the command is scheduled;
// IsFinished is polled after each Execute; End is called exactly once per
// run, with interrupted=true when the command was cancelled before
// IsFinished reported true. A command may be scheduled again after it ends;
// Initialize must reset any per-run state.
type Command interface {
	Name() string
	Initialize(ctx context.Context)
	Execute(ctx context.Context)
	IsFinished() bool
	End(ctx context.Context, interrupted bool)

	// Requirements lists the subsystems this command needs exclusive use of
	// while scheduled. For compositions this is the union of the children's
	// requirements.
	Requirements() []Subsystem

	// RunsWhenDisabled reports whether the command may keep running while
	// the scheduler is in the disabled state.
	RunsWhenDisabled() bool

	InterruptionBehavior() InterruptionBehavior
}

// unionRequirements merges the requirements of cmds, preserving first-seen
// order and dropping duplicates.
func unionRequirements(cmds []Command) []Subsystem {
	var out []Subsystem
	seen := make(map[Subsystem]struct{})
	for _, c := range cmds {
		for _, s := range c.Requirements() {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// requirementsOverlap reports whether two requirement sets share a subsystem.
func requirementsOverlap(a, b []Subsystem) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[Subsystem]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}
	for _, s := range b {
		if _, ok := set[s]; ok {
			return true
		}
	}
	return false
}

// allRunWhenDisabled reports whether every child may run while disabled.
// A composition may only run disabled when all of its members may.
func allRunWhenDisabled(cmds []Command) bool {
	for _, c := range cmds {
		if !c.RunsWhenDisabled() {
			return false
		}
	}
	return true
}

// strictestInterruption returns CancelIncoming if any child is
// CancelIncoming, so a composition is as hard to interrupt as its most
// stubborn member.
func strictestInterruption(cmds []Command) InterruptionBehavior {
	for _, c := range cmds {
		if c.InterruptionBehavior() == CancelIncoming {
			return CancelIncoming
		}
	}
	return CancelSelf
}
