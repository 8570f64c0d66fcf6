package command

import (
	"context"
	"fmt"
)

// SequentialGroup runs its children one after another in insertion order.
// When a child reports finished its End(false) runs and the next child is
// initialized and executed within the same tick, so a run of instant
// children completes in a single tick.
type SequentialGroup struct {
	name      string
	commands  []Command
	current   int
	locked    bool
	extraReqs []Subsystem
	initHooks []func()
}

// Sequential composes cmds into an ordered group.
func Sequential(name string, cmds ...Command) *SequentialGroup {
	g := &SequentialGroup{name: name, current: len(cmds)}
	g.commands = append(g.commands, cmds...)
	return g
}

// AddCommands appends children to the group. Panics once the group has been
// scheduled: compositions are immutable after their first run begins.
func (g *SequentialGroup) AddCommands(cmds ...Command) {
	if g.locked {
		panic(fmt.Sprintf("sequential group '%s' mutated after being scheduled", g.name))
	}
	g.commands = append(g.commands, cmds...)
	g.current = len(g.commands)
}

// addInitHook registers fn to run at every Initialize, before the first
// child starts. The builder uses this to re-arm per-run Once values.
func (g *SequentialGroup) addInitHook(fn func()) {
	if g.locked {
		panic(fmt.Sprintf("sequential group '%s' mutated after being scheduled", g.name))
	}
	g.initHooks = append(g.initHooks, fn)
}

// addRequirements declares requirements beyond the union of the children's.
func (g *SequentialGroup) addRequirements(subs ...Subsystem) {
	if g.locked {
		panic(fmt.Sprintf("sequential group '%s' mutated after being scheduled", g.name))
	}
	g.extraReqs = append(g.extraReqs, subs...)
}

func (g *SequentialGroup) Name() string { return g.name }

func (g *SequentialGroup) Initialize(ctx context.Context) {
	g.locked = true
	for _, fn := range g.initHooks {
		fn()
	}
	g.current = 0
	if len(g.commands) > 0 {
		g.commands[0].Initialize(ctx)
	}
}

func (g *SequentialGroup) Execute(ctx context.Context) {
	for g.current < len(g.commands) {
		c := g.commands[g.current]
		c.Execute(ctx)
		if !c.IsFinished() {
			return
		}
		c.End(ctx, false)
		g.current++
		if g.current < len(g.commands) {
			g.commands[g.current].Initialize(ctx)
		}
	}
}

func (g *SequentialGroup) IsFinished() bool {
	return g.current >= len(g.commands)
}

func (g *SequentialGroup) End(ctx context.Context, interrupted bool) {
	if interrupted && g.current < len(g.commands) {
		g.commands[g.current].End(ctx, true)
	}
	g.current = len(g.commands)
}

func (g *SequentialGroup) Requirements() []Subsystem {
	reqs := unionRequirements(g.commands)
	for _, s := range g.extraReqs {
		if !requirementsOverlap(reqs, []Subsystem{s}) {
			reqs = append(reqs, s)
		}
	}
	return reqs
}

func (g *SequentialGroup) RunsWhenDisabled() bool {
	return allRunWhenDisabled(g.commands)
}

func (g *SequentialGroup) InterruptionBehavior() InterruptionBehavior {
	return strictestInterruption(g.commands)
}
