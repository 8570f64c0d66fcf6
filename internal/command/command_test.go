package command

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// testSub is a no-op subsystem for requirement bookkeeping in tests.
type testSub struct{ name string }

func (s *testSub) Name() string                 { return s.name }
func (s *testSub) Periodic(ctx context.Context) {}

// track records lifecycle events into a shared journal. It finishes after
// a fixed number of Execute calls; ticksToFinish <= 0 means it never
// finishes on its own.
type track struct {
	name          string
	journal       *[]string
	ticksToFinish int
	execs         int
	reqs          []Subsystem
	disabledOK    bool
	interruption  InterruptionBehavior
}

func newTrack(name string, journal *[]string, ticksToFinish int, reqs ...Subsystem) *track {
	return &track{name: name, journal: journal, ticksToFinish: ticksToFinish, reqs: reqs}
}

func (c *track) log(event string) {
	*c.journal = append(*c.journal, fmt.Sprintf("%s:%s", event, c.name))
}

func (c *track) Name() string { return c.name }

func (c *track) Initialize(ctx context.Context) {
	c.execs = 0
	c.log("init")
}

func (c *track) Execute(ctx context.Context) {
	c.execs++
	c.log("exec")
}

func (c *track) IsFinished() bool {
	return c.ticksToFinish > 0 && c.execs >= c.ticksToFinish
}

func (c *track) End(ctx context.Context, interrupted bool) {
	if interrupted {
		c.log("interrupt")
		return
	}
	c.log("end")
}

func (c *track) Requirements() []Subsystem { return c.reqs }

func (c *track) RunsWhenDisabled() bool { return c.disabledOK }

func (c *track) InterruptionBehavior() InterruptionBehavior { return c.interruption }

// tick drives cmd like one scheduler iteration and reports whether it
// finished (and was ended) this tick.
func tick(ctx context.Context, cmd Command) bool {
	cmd.Execute(ctx)
	if cmd.IsFinished() {
		cmd.End(ctx, false)
		return true
	}
	return false
}

// runToCompletion initializes cmd and ticks until it finishes, failing the
// test if it takes more than maxTicks.
func runToCompletion(t *testing.T, ctx context.Context, cmd Command, maxTicks int) int {
	t.Helper()
	cmd.Initialize(ctx)
	for n := 1; n <= maxTicks; n++ {
		if tick(ctx, cmd) {
			return n
		}
	}
	t.Fatalf("command %q did not finish within %d ticks", cmd.Name(), maxTicks)
	return 0
}

func TestUnionRequirements(t *testing.T) {
	t.Parallel()
	var journal []string
	a := &testSub{name: "a"}
	b := &testSub{name: "b"}

	union := unionRequirements([]Command{
		newTrack("one", &journal, 1, a),
		newTrack("two", &journal, 1, b, a),
	})
	assert.Equal(t, []Subsystem{a, b}, union)
}

func TestStrictestInterruption(t *testing.T) {
	t.Parallel()
	var journal []string
	soft := newTrack("soft", &journal, 1)
	hard := newTrack("hard", &journal, 1)
	hard.interruption = CancelIncoming

	assert.Equal(t, CancelSelf, strictestInterruption([]Command{soft}))
	assert.Equal(t, CancelIncoming, strictestInterruption([]Command{soft, hard}))
}
