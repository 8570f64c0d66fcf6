package integrationtests

import (
	"context"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/frc-5160-the-chargers/gocommand/internal/command"
	"github.com/frc-5160-the-chargers/gocommand/internal/model"
	"github.com/frc-5160-the-chargers/gocommand/internal/registry"
	"github.com/frc-5160-the-chargers/gocommand/internal/testutil"
)

type pingInput struct {
	Count int64 `hcl:"count,optional"`
}

func TestCustomModuleCommandRuns(t *testing.T) {
	t.Parallel()

	var total atomic.Int64
	countDefault := cty.NumberIntVal(1)
	module := &testutil.SimpleModule{
		CommandName: "BuildPing",
		Command: &registry.RegisteredCommand{
			NewInput:  func() any { return new(pingInput) },
			InputType: reflect.TypeOf(pingInput{}),
			Build: func(ctx context.Context, deps any, input *pingInput) (command.Command, error) {
				return command.RunOnce("Ping", func(ctx context.Context) {
					total.Add(input.Count)
				}), nil
			},
		},
		CommandDef: &model.CommandDefinition{
			Type:      "probe.ping",
			BuildFunc: "BuildPing",
			Inputs: map[string]*model.InputDefinition{
				"count": {Name: "count", Type: cty.Number, Default: &countDefault, Optional: true},
			},
			Uses: map[string]*model.UsesDefinition{},
		},
	}

	files := map[string]string{
		"main.hcl": `
routine "pings" {
	run "probe.ping" {
		arguments {
			count = 3
		}
	}
	run "probe.ping" {}
}
`,
	}

	result := testutil.RunRoutineTest(t, files, module)
	require.NoError(t, result.Err)
	testutil.AssertRoutineFinished(t, result, "pings")
	assert.Equal(t, int64(4), total.Load(), "explicit count plus defaulted count")
}

func TestUnregisteredBuildHandlerFailsStartup(t *testing.T) {
	t.Parallel()

	module := &testutil.SimpleModule{
		CommandDef: &model.CommandDefinition{
			Type:      "probe.ping",
			BuildFunc: "BuildPing",
			Inputs:    map[string]*model.InputDefinition{},
			Uses:      map[string]*model.UsesDefinition{},
		},
	}

	files := map[string]string{
		"main.hcl": `
routine "pings" {
	run "probe.ping" {}
}
`,
	}

	result := testutil.RunRoutineTest(t, files, module)
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "application startup panicked")
	assert.Contains(t, result.Err.Error(), "build handler 'BuildPing' not registered")
}
