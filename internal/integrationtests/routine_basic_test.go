package integrationtests

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frc-5160-the-chargers/gocommand/internal/testutil"
)

func TestRoutineRunsToCompletion(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"main.hcl": `
routine "greet" {
	run "logmsg.print" {
		arguments {
			message = "hello from routine"
		}
	}
	wait {
		duration = "1ms"
	}
}
`,
	}

	result := testutil.RunRoutineTest(t, files)
	require.NoError(t, result.Err)
	testutil.AssertRoutineFinished(t, result, "greet")
	testutil.AssertCommandFinished(t, result, "greet")
	testutil.AssertLogContains(t, result, "hello from routine")
}

func TestMultipleRoutinesRunInNameOrder(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"main.hcl": `
routine "b_second" {
	run "logmsg.print" {
		arguments {
			message = "second routine"
		}
	}
}

routine "a_first" {
	run "logmsg.print" {
		arguments {
			message = "first routine"
		}
	}
}
`,
	}

	result := testutil.RunRoutineTest(t, files)
	require.NoError(t, result.Err)
	testutil.AssertRoutineFinished(t, result, "a_first")
	testutil.AssertRoutineFinished(t, result, "b_second")

	first := strings.Index(result.LogOutput, "first routine")
	second := strings.Index(result.LogOutput, "second routine")
	require.GreaterOrEqual(t, first, 0)
	require.GreaterOrEqual(t, second, 0)
	assert.Less(t, first, second, "routines should run sorted by name")
}

func TestTimeoutBoundsNonTerminatingCommand(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"main.hcl": `
subsystem "drivetrain" "main" {
	arguments {
		max_speed = 0.5
	}
}

routine "drive_briefly" {
	timeout {
		duration = "5ms"
		run "drivetrain.drive" {
			arguments {
				speed = 0.3
			}
			uses {
				drivetrain = subsystem.drivetrain.main
			}
		}
	}
	run "drivetrain.stop" {
		uses {
			drivetrain = subsystem.drivetrain.main
		}
	}
}
`,
	}

	result := testutil.RunRoutineTest(t, files)
	require.NoError(t, result.Err)
	testutil.AssertRoutineFinished(t, result, "drive_briefly")
}
