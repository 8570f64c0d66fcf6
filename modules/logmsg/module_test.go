package logmsg

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frc-5160-the-chargers/gocommand/internal/ctxlog"
)

func runPrint(t *testing.T, input *Input) string {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := ctxlog.WithLogger(context.Background(), logger)

	cmd, err := BuildPrint(ctx, nil, input)
	require.NoError(t, err)

	cmd.Initialize(ctx)
	require.True(t, cmd.IsFinished())
	cmd.End(ctx, false)
	return buf.String()
}

func TestPrintLogsMessage(t *testing.T) {
	t.Parallel()
	out := runPrint(t, &Input{Message: "hello there"})
	assert.Contains(t, out, "hello there")
	assert.Contains(t, out, "level=INFO")
}

func TestPrintHonorsLevel(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"debug": "level=DEBUG",
		"warn":  "level=WARN",
		"error": "level=ERROR",
		"":      "level=INFO",
	}
	for level, want := range cases {
		out := runPrint(t, &Input{Message: "leveled", Level: level})
		assert.Contains(t, out, want, "level %q", level)
	}
}
