package command

import "context"

// RaceGroup runs all children every tick and finishes as soon as any child
// finishes; the remaining children are interrupted.
type RaceGroup struct {
	name     string
	commands []Command
	done     bool
	winner   int
}

// Race composes cmds into a first-to-finish group. Children must have
// disjoint requirements.
func Race(name string, cmds ...Command) *RaceGroup {
	checkDisjoint(name, cmds)
	return &RaceGroup{name: name, commands: cmds, winner: -1}
}

func (g *RaceGroup) Name() string { return g.name }

func (g *RaceGroup) Initialize(ctx context.Context) {
	g.done = false
	g.winner = -1
	for _, c := range g.commands {
		c.Initialize(ctx)
	}
}

func (g *RaceGroup) Execute(ctx context.Context) {
	if g.done {
		return
	}
	for _, c := range g.commands {
		c.Execute(ctx)
	}
	for i, c := range g.commands {
		if c.IsFinished() {
			g.done = true
			g.winner = i
			return
		}
	}
}

func (g *RaceGroup) IsFinished() bool { return g.done }

func (g *RaceGroup) End(ctx context.Context, interrupted bool) {
	for i, c := range g.commands {
		if g.done && i == g.winner {
			c.End(ctx, false)
			continue
		}
		c.End(ctx, true)
	}
	g.done = false
	g.winner = -1
}

func (g *RaceGroup) Requirements() []Subsystem { return unionRequirements(g.commands) }

func (g *RaceGroup) RunsWhenDisabled() bool { return allRunWhenDisabled(g.commands) }

func (g *RaceGroup) InterruptionBehavior() InterruptionBehavior {
	return strictestInterruption(g.commands)
}
