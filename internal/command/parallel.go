package command

import (
	"context"
	"fmt"
)

// checkDisjoint panics if any two children share a requirement. Two commands
// contending for one mechanism inside a parallel composition is always a
// composition bug, and catching it here beats racing the scheduler's
// arbitration at runtime.
func checkDisjoint(groupName string, cmds []Command) {
	claimed := make(map[Subsystem]string)
	for _, c := range cmds {
		for _, s := range c.Requirements() {
			if prev, ok := claimed[s]; ok {
				panic(fmt.Sprintf(
					"parallel group '%s': commands '%s' and '%s' both require subsystem '%s'",
					groupName, prev, c.Name(), s.Name()))
			}
			claimed[s] = c.Name()
		}
	}
}

// ParallelGroup runs all children every tick and finishes once every child
// has finished.
type ParallelGroup struct {
	name     string
	commands []Command
	running  []bool
}

// Parallel composes cmds into a group that finishes when all children have
// finished. Children must have disjoint requirements.
func Parallel(name string, cmds ...Command) *ParallelGroup {
	checkDisjoint(name, cmds)
	return &ParallelGroup{name: name, commands: cmds}
}

func (g *ParallelGroup) Name() string { return g.name }

func (g *ParallelGroup) Initialize(ctx context.Context) {
	g.running = make([]bool, len(g.commands))
	for i, c := range g.commands {
		c.Initialize(ctx)
		g.running[i] = true
	}
}

func (g *ParallelGroup) Execute(ctx context.Context) {
	for i, c := range g.commands {
		if !g.running[i] {
			continue
		}
		c.Execute(ctx)
		if c.IsFinished() {
			c.End(ctx, false)
			g.running[i] = false
		}
	}
}

func (g *ParallelGroup) IsFinished() bool {
	for _, r := range g.running {
		if r {
			return false
		}
	}
	return true
}

func (g *ParallelGroup) End(ctx context.Context, interrupted bool) {
	if !interrupted {
		return
	}
	for i, c := range g.commands {
		if g.running[i] {
			c.End(ctx, true)
			g.running[i] = false
		}
	}
}

func (g *ParallelGroup) Requirements() []Subsystem { return unionRequirements(g.commands) }

func (g *ParallelGroup) RunsWhenDisabled() bool { return allRunWhenDisabled(g.commands) }

func (g *ParallelGroup) InterruptionBehavior() InterruptionBehavior {
	return strictestInterruption(g.commands)
}
