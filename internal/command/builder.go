package command

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Builder assembles a sequential command composition through a fluent API.
//
// Bookkeeping rules:
//   - children are kept in insertion order, deduplicated by identity: adding
//     the same command twice logs a warning and keeps the first occurrence;
//   - every builder method panics once Build has returned (mutation lock);
//   - the built command's requirements are the union of the children's plus
//     anything declared with Require;
//   - values registered via OnceDuringRun are re-armed on every run of the
//     built command.
type Builder struct {
	name        string
	commands    []Command
	seen        map[Command]struct{}
	reqs        []Subsystem
	resets      []func()
	locked      bool
	logChildren bool
}

// BuildOption configures a Build call.
type BuildOption func(*Builder)

// WithLoggedChildren wraps every top-level child in the lifecycle-logging
// adapter, giving a per-step trace of the built command in the logs.
func WithLoggedChildren() BuildOption {
	return func(b *Builder) { b.logChildren = true }
}

// Build runs fn against a fresh Builder and returns the resulting command.
// The builder is locked when Build returns; keeping a reference to it past
// that point and calling any method panics.
func Build(name string, fn func(b *Builder), opts ...BuildOption) Command {
	b := &Builder{name: name, seen: make(map[Command]struct{})}
	for _, opt := range opts {
		opt(b)
	}
	fn(b)
	b.locked = true

	group := Sequential(name, b.commands...)
	group.addRequirements(b.reqs...)
	for _, reset := range b.resets {
		group.addInitHook(reset)
	}
	return group
}

func (b *Builder) checkMutable(op string) {
	if b.locked {
		panic(fmt.Sprintf("command builder '%s': %s called after Build", b.name, op))
	}
}

// Add appends an existing command to the composition. Duplicate additions
// of the same command value are skipped with a warning.
func (b *Builder) Add(cmds ...Command) *Builder {
	b.checkMutable("Add")
	for _, c := range cmds {
		if c == nil {
			panic(fmt.Sprintf("command builder '%s': Add given a nil command", b.name))
		}
		if _, dup := b.seen[c]; dup {
			slog.Warn("Duplicate command skipped by builder.", "builder", b.name, "command", c.Name())
			continue
		}
		b.seen[c] = struct{}{}
		if b.logChildren {
			// Keep deadline markers outermost so group constructors can
			// still see them.
			if m, ok := c.(*deadlineMarker); ok {
				c = AsDeadline(Logged(m.Command))
			} else {
				c = Logged(c)
			}
		}
		b.commands = append(b.commands, c)
	}
	return b
}

// Require declares subsystems the built command holds for its whole run,
// beyond what its children require.
func (b *Builder) Require(subs ...Subsystem) *Builder {
	b.checkMutable("Require")
	b.reqs = append(b.reqs, subs...)
	return b
}

// RunOnce appends a command that runs fn a single time.
func (b *Builder) RunOnce(name string, fn func(ctx context.Context)) *Builder {
	return b.Add(RunOnce(name, fn))
}

// LoopFor appends a command that runs fn every tick for duration d.
func (b *Builder) LoopFor(d time.Duration, name string, fn func(ctx context.Context)) *Builder {
	return b.Add(WithTimeout(Run(name, fn), d))
}

// LoopUntil appends a command that runs fn every tick until cond is true.
func (b *Builder) LoopUntil(cond func() bool, name string, fn func(ctx context.Context)) *Builder {
	return b.Add(Until(Run(name, fn), cond))
}

// Wait appends a pause of duration d.
func (b *Builder) Wait(d time.Duration) *Builder {
	return b.Add(Wait(d))
}

// WaitUntil appends a pause that ends when cond reports true.
func (b *Builder) WaitUntil(cond func() bool) *Builder {
	return b.Add(WaitUntil(cond))
}

// Conditional appends a two-way conditional command.
func (b *Builder) Conditional(name string, cond func() bool, onTrue, onFalse Command) *Builder {
	return b.Add(Conditional(name, cond, onTrue, onFalse))
}

// IfElse appends a multi-branch if/else chain. fn assembles the branches
// against a fresh chain, which is appended already populated.
func (b *Builder) IfElse(name string, fn func(c *IfElse)) *Builder {
	b.checkMutable("IfElse")
	chain := NewIfElse(name)
	fn(chain)
	return b.Add(chain)
}

// Sequential appends a nested sequential group built by fn.
func (b *Builder) Sequential(fn func(b *Builder)) *Builder {
	return b.Add(b.nested("sequential", fn, func(name string, cmds []Command) Command {
		return Sequential(name, cmds...)
	}))
}

// Parallel appends a nested all-must-finish group built by fn.
func (b *Builder) Parallel(fn func(b *Builder)) *Builder {
	return b.Add(b.nested("parallel", fn, func(name string, cmds []Command) Command {
		return Parallel(name, cmds...)
	}))
}

// Race appends a nested first-to-finish group built by fn.
func (b *Builder) Race(fn func(b *Builder)) *Builder {
	return b.Add(b.nested("race", fn, func(name string, cmds []Command) Command {
		return Race(name, cmds...)
	}))
}

// Deadline appends a nested deadline group built by fn. Mark the deadline
// member with AsDeadline; without a marker the first child is the deadline.
func (b *Builder) Deadline(fn func(b *Builder)) *Builder {
	return b.Add(b.nested("deadline", fn, DeadlineFromChildrenCommand))
}

// DeadlineFromChildrenCommand adapts DeadlineFromChildren to the nested
// group constructor signature.
func DeadlineFromChildrenCommand(name string, cmds []Command) Command {
	return DeadlineFromChildren(name, cmds...)
}

// nested runs fn against a child builder sharing this builder's options and
// reset list, then wraps the children with wrap.
func (b *Builder) nested(kind string, fn func(b *Builder), wrap func(string, []Command) Command) Command {
	b.checkMutable(kind)
	child := &Builder{
		name:        fmt.Sprintf("%s.%s", b.name, kind),
		seen:        make(map[Command]struct{}),
		logChildren: b.logChildren,
	}
	fn(child)
	child.locked = true
	// Once values registered inside the nested scope still belong to the
	// outermost built command's reset list.
	b.resets = append(b.resets, child.resets...)
	b.reqs = append(b.reqs, child.reqs...)
	return wrap(child.name, child.commands)
}
