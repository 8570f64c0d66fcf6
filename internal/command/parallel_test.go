package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelFinishesWhenAllChildrenDone(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	var journal []string

	g := Parallel("par",
		newTrack("fast", &journal, 1),
		newTrack("slow", &journal, 3),
	)

	g.Initialize(ctx)
	require.False(t, tick(ctx, g))
	// fast is done and ended, slow keeps executing alone
	assert.Contains(t, journal, "end:fast")
	require.False(t, tick(ctx, g))
	require.True(t, tick(ctx, g))
	assert.Contains(t, journal, "end:slow")
}

func TestParallelFinishedChildStopsExecuting(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	var journal []string

	fast := newTrack("fast", &journal, 1)
	g := Parallel("par", fast, newTrack("slow", &journal, 2))

	g.Initialize(ctx)
	tick(ctx, g)
	tick(ctx, g)
	assert.Equal(t, 1, fast.execs)
}

func TestParallelInterruptEndsOnlyRunningChildren(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	var journal []string

	g := Parallel("par",
		newTrack("fast", &journal, 1),
		newTrack("slow", &journal, 0),
	)
	g.Initialize(ctx)
	tick(ctx, g)

	g.End(ctx, true)
	assert.Contains(t, journal, "end:fast")
	assert.Contains(t, journal, "interrupt:slow")
	assert.NotContains(t, journal, "interrupt:fast")
}

func TestParallelOverlappingRequirementsPanics(t *testing.T) {
	t.Parallel()
	var journal []string
	shared := &testSub{name: "shared"}

	assert.PanicsWithValue(t,
		"parallel group 'par': commands 'one' and 'two' both require subsystem 'shared'",
		func() {
			Parallel("par",
				newTrack("one", &journal, 1, shared),
				newTrack("two", &journal, 1, shared),
			)
		})
}

func TestParallelEmptyFinishesImmediately(t *testing.T) {
	t.Parallel()
	g := Parallel("empty")
	g.Initialize(context.Background())
	assert.True(t, g.IsFinished())
}
