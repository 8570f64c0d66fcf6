package command

import "context"

// Functional is a fully general command assembled from closures. Zero-value
// hooks are no-ops; a nil Finished means the command never finishes on its
// own and must be interrupted or composed under a terminating group.
type Functional struct {
	CommandName  string
	OnInit       func(ctx context.Context)
	OnExecute    func(ctx context.Context)
	OnEnd        func(ctx context.Context, interrupted bool)
	Finished     func() bool
	Reqs         []Subsystem
	DisabledOK   bool
	Interruption InterruptionBehavior
}

func (f *Functional) Name() string {
	if f.CommandName == "" {
		return "functional"
	}
	return f.CommandName
}

func (f *Functional) Initialize(ctx context.Context) {
	if f.OnInit != nil {
		f.OnInit(ctx)
	}
}

func (f *Functional) Execute(ctx context.Context) {
	if f.OnExecute != nil {
		f.OnExecute(ctx)
	}
}

func (f *Functional) IsFinished() bool {
	if f.Finished == nil {
		return false
	}
	return f.Finished()
}

func (f *Functional) End(ctx context.Context, interrupted bool) {
	if f.OnEnd != nil {
		f.OnEnd(ctx, interrupted)
	}
}

func (f *Functional) Requirements() []Subsystem { return f.Reqs }

func (f *Functional) RunsWhenDisabled() bool { return f.DisabledOK }

func (f *Functional) InterruptionBehavior() InterruptionBehavior { return f.Interruption }

// RunOnce returns a command that runs fn a single time and finishes.
func RunOnce(name string, fn func(ctx context.Context), reqs ...Subsystem) Command {
	return &Functional{
		CommandName: name,
		OnInit:      fn,
		Finished:    func() bool { return true },
		Reqs:        reqs,
	}
}

// Run returns a command that runs fn every tick and never finishes on its
// own.
func Run(name string, fn func(ctx context.Context), reqs ...Subsystem) Command {
	return &Functional{
		CommandName: name,
		OnExecute:   fn,
		Reqs:        reqs,
	}
}

// StartEnd returns a command that runs onStart when scheduled and onEnd when
// it is interrupted or its enclosing group terminates it. It never finishes
// on its own.
func StartEnd(name string, onStart, onEnd func(ctx context.Context), reqs ...Subsystem) Command {
	return &Functional{
		CommandName: name,
		OnInit:      onStart,
		OnEnd: func(ctx context.Context, _ bool) {
			if onEnd != nil {
				onEnd(ctx)
			}
		},
		Reqs: reqs,
	}
}

// Idle returns a command that holds the given subsystems and does nothing.
// Useful as a default command or as a parallel member that blocks others
// from taking a mechanism.
func Idle(name string, reqs ...Subsystem) Command {
	return &Functional{CommandName: name, Reqs: reqs}
}
