package command

import (
	"context"
	"fmt"
)

// ConditionalCommand picks one of two commands when it initializes, based on
// a condition polled at that moment. A nil branch finishes immediately.
type ConditionalCommand struct {
	name     string
	cond     func() bool
	onTrue   Command
	onFalse  Command
	selected Command
}

// Conditional returns a command that runs onTrue or onFalse depending on
// cond at schedule time. Either branch may be nil.
func Conditional(name string, cond func() bool, onTrue, onFalse Command) *ConditionalCommand {
	if cond == nil {
		panic(fmt.Sprintf("conditional command '%s' built with a nil condition", name))
	}
	return &ConditionalCommand{name: name, cond: cond, onTrue: onTrue, onFalse: onFalse}
}

func (c *ConditionalCommand) Name() string { return c.name }

func (c *ConditionalCommand) Initialize(ctx context.Context) {
	if c.cond() {
		c.selected = c.onTrue
	} else {
		c.selected = c.onFalse
	}
	if c.selected != nil {
		c.selected.Initialize(ctx)
	}
}

func (c *ConditionalCommand) Execute(ctx context.Context) {
	if c.selected != nil {
		c.selected.Execute(ctx)
	}
}

func (c *ConditionalCommand) IsFinished() bool {
	if c.selected == nil {
		return true
	}
	return c.selected.IsFinished()
}

func (c *ConditionalCommand) End(ctx context.Context, interrupted bool) {
	if c.selected != nil {
		c.selected.End(ctx, interrupted)
		c.selected = nil
	}
}

func (c *ConditionalCommand) Requirements() []Subsystem {
	return unionRequirements(c.branches())
}

func (c *ConditionalCommand) RunsWhenDisabled() bool {
	return allRunWhenDisabled(c.branches())
}

func (c *ConditionalCommand) InterruptionBehavior() InterruptionBehavior {
	return strictestInterruption(c.branches())
}

func (c *ConditionalCommand) branches() []Command {
	var out []Command
	if c.onTrue != nil {
		out = append(out, c.onTrue)
	}
	if c.onFalse != nil {
		out = append(out, c.onFalse)
	}
	return out
}

// IfElse is a multi-branch conditional that stays mutable until its first
// run. Branches are evaluated in insertion order at Initialize; the first
// condition that reports true selects its command. With no matching branch
// and no else command, IfElse finishes immediately.
type IfElse struct {
	name     string
	branches []ifBranch
	elseCmd  Command
	locked   bool
	selected Command
	decided  bool
}

type ifBranch struct {
	cond func() bool
	cmd  Command
}

// NewIfElse returns an empty, mutable if/else chain.
func NewIfElse(name string) *IfElse {
	return &IfElse{name: name}
}

// ElseIf appends a branch. Panics once the chain has been scheduled.
func (c *IfElse) ElseIf(cond func() bool, cmd Command) *IfElse {
	if c.locked {
		panic(fmt.Sprintf("if/else command '%s' mutated after being scheduled", c.name))
	}
	if cond == nil {
		panic(fmt.Sprintf("if/else command '%s' given a nil branch condition", c.name))
	}
	c.branches = append(c.branches, ifBranch{cond: cond, cmd: cmd})
	return c
}

// Else sets the fallback command. Panics once the chain has been scheduled
// or when a fallback is already set.
func (c *IfElse) Else(cmd Command) *IfElse {
	if c.locked {
		panic(fmt.Sprintf("if/else command '%s' mutated after being scheduled", c.name))
	}
	if c.elseCmd != nil {
		panic(fmt.Sprintf("if/else command '%s' already has an else branch", c.name))
	}
	c.elseCmd = cmd
	return c
}

func (c *IfElse) Name() string { return c.name }

func (c *IfElse) Initialize(ctx context.Context) {
	c.locked = true
	c.decided = true
	c.selected = c.elseCmd
	for _, b := range c.branches {
		if b.cond() {
			c.selected = b.cmd
			break
		}
	}
	if c.selected != nil {
		c.selected.Initialize(ctx)
	}
}

func (c *IfElse) Execute(ctx context.Context) {
	if c.selected != nil {
		c.selected.Execute(ctx)
	}
}

func (c *IfElse) IsFinished() bool {
	if !c.decided {
		return false
	}
	if c.selected == nil {
		return true
	}
	return c.selected.IsFinished()
}

func (c *IfElse) End(ctx context.Context, interrupted bool) {
	if c.selected != nil {
		c.selected.End(ctx, interrupted)
	}
	c.selected = nil
	c.decided = false
}

func (c *IfElse) Requirements() []Subsystem {
	return unionRequirements(c.allCommands())
}

func (c *IfElse) RunsWhenDisabled() bool {
	return allRunWhenDisabled(c.allCommands())
}

func (c *IfElse) InterruptionBehavior() InterruptionBehavior {
	return strictestInterruption(c.allCommands())
}

func (c *IfElse) allCommands() []Command {
	var out []Command
	for _, b := range c.branches {
		if b.cmd != nil {
			out = append(out, b.cmd)
		}
	}
	if c.elseCmd != nil {
		out = append(out, c.elseCmd)
	}
	return out
}
