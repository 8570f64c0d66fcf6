package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaceWinnerEndsCleanLosersInterrupted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	var journal []string

	g := Race("race",
		newTrack("fast", &journal, 2),
		newTrack("slow", &journal, 5),
	)

	g.Initialize(ctx)
	require.False(t, tick(ctx, g))
	require.True(t, tick(ctx, g))

	assert.Contains(t, journal, "end:fast")
	assert.Contains(t, journal, "interrupt:slow")
	assert.NotContains(t, journal, "end:slow")
}

func TestRaceInterruptedEndsEveryChildInterrupted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	var journal []string

	g := Race("race",
		newTrack("a", &journal, 0),
		newTrack("b", &journal, 0),
	)
	g.Initialize(ctx)
	tick(ctx, g)
	g.End(ctx, true)

	assert.Contains(t, journal, "interrupt:a")
	assert.Contains(t, journal, "interrupt:b")
}

func TestRaceRunsAgainAfterFinishing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	var journal []string

	g := Race("race", newTrack("only", &journal, 1))
	runToCompletion(t, ctx, g, 3)
	runToCompletion(t, ctx, g, 3)

	assert.Equal(t, []string{
		"init:only", "exec:only", "end:only",
		"init:only", "exec:only", "end:only",
	}, journal)
}

func TestRaceOverlappingRequirementsPanics(t *testing.T) {
	t.Parallel()
	var journal []string
	shared := &testSub{name: "shared"}

	assert.Panics(t, func() {
		Race("race",
			newTrack("one", &journal, 1, shared),
			newTrack("two", &journal, 1, shared),
		)
	})
}
