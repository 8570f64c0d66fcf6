package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertRoutineFinished checks the log output to confirm that a routine ran
// to completion.
func AssertRoutineFinished(t *testing.T, result *HarnessResult, routineName string) {
	t.Helper()
	expected := fmt.Sprintf("routine=%s", routineName)
	require.True(t,
		strings.Contains(result.LogOutput, "Routine finished.") && strings.Contains(result.LogOutput, expected),
		"expected routine '%s' to finish; logs:\n%s", routineName, result.LogOutput,
	)
}

// AssertCommandFinished checks that a named command completed without
// interruption. Only commands under a logging wrapper appear in the logs.
func AssertCommandFinished(t *testing.T, result *HarnessResult, commandName string) {
	t.Helper()
	require.True(t,
		strings.Contains(result.LogOutput, "✅ Command finished") && strings.Contains(result.LogOutput, commandName),
		"expected command '%s' to finish in logs:\n%s", commandName, result.LogOutput,
	)
}

// AssertLogContains checks for a raw substring in the captured logs.
func AssertLogContains(t *testing.T, result *HarnessResult, substring string) {
	t.Helper()
	require.Contains(t, result.LogOutput, substring)
}
