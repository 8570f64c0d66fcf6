package command

import "context"

// deadlineMarker tags a command as the deadline member of a group built
// from a flat child list (builder and routine files use this).
type deadlineMarker struct {
	Command
}

// AsDeadline marks cmd as the deadline member for a DeadlineGroup assembled
// from a flat list of children.
func AsDeadline(cmd Command) Command {
	return &deadlineMarker{Command: cmd}
}

// unwrapDeadline strips the marker, reporting whether it was present.
func unwrapDeadline(cmd Command) (Command, bool) {
	if m, ok := cmd.(*deadlineMarker); ok {
		return m.Command, true
	}
	return cmd, false
}

// DeadlineGroup runs all children in parallel and finishes when its
// deadline member finishes; any still-running children are interrupted at
// that point.
type DeadlineGroup struct {
	name     string
	deadline Command
	others   []Command
	running  []bool
	deadDone bool
}

// Deadline composes a group gated by the deadline command. The deadline and
// the other children must have disjoint requirements.
func Deadline(name string, deadline Command, others ...Command) *DeadlineGroup {
	deadline, _ = unwrapDeadline(deadline)
	all := append([]Command{deadline}, others...)
	checkDisjoint(name, all)
	return &DeadlineGroup{name: name, deadline: deadline, others: others}
}

// DeadlineFromChildren builds a DeadlineGroup from a flat child list: the
// child wrapped with AsDeadline is the deadline; with no marker the first
// child is.
func DeadlineFromChildren(name string, cmds ...Command) *DeadlineGroup {
	if len(cmds) == 0 {
		return Deadline(name, RunOnce("noop", nil))
	}
	deadlineIdx := 0
	for i, c := range cmds {
		if _, ok := c.(*deadlineMarker); ok {
			deadlineIdx = i
			break
		}
	}
	deadline, _ := unwrapDeadline(cmds[deadlineIdx])
	var others []Command
	for i, c := range cmds {
		if i == deadlineIdx {
			continue
		}
		c, _ = unwrapDeadline(c)
		others = append(others, c)
	}
	return Deadline(name, deadline, others...)
}

func (g *DeadlineGroup) Name() string { return g.name }

func (g *DeadlineGroup) Initialize(ctx context.Context) {
	g.deadDone = false
	g.running = make([]bool, len(g.others))
	g.deadline.Initialize(ctx)
	for i, c := range g.others {
		c.Initialize(ctx)
		g.running[i] = true
	}
}

func (g *DeadlineGroup) Execute(ctx context.Context) {
	if g.deadDone {
		return
	}
	g.deadline.Execute(ctx)
	for i, c := range g.others {
		if !g.running[i] {
			continue
		}
		c.Execute(ctx)
		if c.IsFinished() {
			c.End(ctx, false)
			g.running[i] = false
		}
	}
	if g.deadline.IsFinished() {
		g.deadline.End(ctx, false)
		g.deadDone = true
	}
}

func (g *DeadlineGroup) IsFinished() bool { return g.deadDone }

func (g *DeadlineGroup) End(ctx context.Context, interrupted bool) {
	if interrupted && !g.deadDone {
		g.deadline.End(ctx, true)
	}
	for i, c := range g.others {
		if g.running[i] {
			c.End(ctx, true)
			g.running[i] = false
		}
	}
	g.deadDone = false
}

func (g *DeadlineGroup) Requirements() []Subsystem {
	return unionRequirements(append([]Command{g.deadline}, g.others...))
}

func (g *DeadlineGroup) RunsWhenDisabled() bool {
	return allRunWhenDisabled(append([]Command{g.deadline}, g.others...))
}

func (g *DeadlineGroup) InterruptionBehavior() InterruptionBehavior {
	return strictestInterruption(append([]Command{g.deadline}, g.others...))
}
