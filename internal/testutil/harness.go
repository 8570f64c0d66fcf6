// Package testutil provides shared helpers for integration-style tests:
// a log-capturing harness that runs whole routines from HCL source plus
// assertions over the captured logs.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/frc-5160-the-chargers/gocommand/internal/app"
	"github.com/frc-5160-the-chargers/gocommand/internal/hclloader"
	"github.com/frc-5160-the-chargers/gocommand/internal/registry"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
}

// RunRoutineTest writes the given HCL files to a temp directory, boots an
// app over them with the provided modules, and runs every routine to
// completion on a fast tick. Startup panics and run errors land in Err.
func RunRoutineTest(t *testing.T, files map[string]string, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return RunRoutineTestWithContext(context.Background(), t, files, modules...)
}

// RunRoutineTestWithContext is RunRoutineTest with a caller-owned context.
func RunRoutineTestWithContext(ctx context.Context, t *testing.T, files map[string]string, modules ...registry.Module) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}

	cfg, err := app.NewConfig(app.Config{
		RoutinePath: tmpDir,
		LogFormat:   "text",
		LogLevel:    "debug",
		TickPeriod:  time.Millisecond,
	})
	require.NoError(t, err)

	logBuffer := &SafeBuffer{}
	result := &HarnessResult{}

	func() {
		defer func() {
			if r := recover(); r != nil {
				result.Err = fmt.Errorf("application startup panicked: %v", r)
			}
		}()
		result.App = app.NewApp(logBuffer, cfg, hclloader.NewLoader(), modules...)
		result.Err = result.App.Run(ctx, cfg)
	}()

	result.LogOutput = logBuffer.String()
	t.Cleanup(func() {
		if os.Getenv("GOCOMMAND_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), result.LogOutput)
		}
	})
	return result
}
