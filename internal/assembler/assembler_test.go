package assembler

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/frc-5160-the-chargers/gocommand/internal/command"
	"github.com/frc-5160-the-chargers/gocommand/internal/hclloader"
	"github.com/frc-5160-the-chargers/gocommand/internal/model"
	"github.com/frc-5160-the-chargers/gocommand/internal/registry"
	"github.com/frc-5160-the-chargers/gocommand/internal/scheduler"
	"github.com/frc-5160-the-chargers/gocommand/modules/drivetrain"
	"github.com/frc-5160-the-chargers/gocommand/modules/elevator"
	"github.com/frc-5160-the-chargers/gocommand/modules/logmsg"
)

// loadModel parses src into a model with a populated, validated registry.
func loadModel(t *testing.T, src string, modules ...registry.Module) (*model.Model, *registry.Registry) {
	t.Helper()
	ctx := context.Background()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.hcl"), []byte(src), 0644))
	m, err := hclloader.NewLoader().Load(ctx, dir)
	require.NoError(t, err)

	r := registry.New()
	if len(modules) == 0 {
		modules = []registry.Module{&drivetrain.Module{}, &elevator.Module{}, &logmsg.Module{}}
	}
	for _, mod := range modules {
		mod.Register(r)
	}
	require.NoError(t, r.PopulateDefinitionsFromModel(m))
	require.NoError(t, r.Validate(ctx))
	return m, r
}

func TestCreateSubsystemsAppliesArgumentsAndDefaults(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m, r := loadModel(t, `
subsystem "elevator" "lift" {
	arguments {
		speed = 0.5
	}
}
`)
	asm := New(r)
	require.NoError(t, asm.CreateSubsystems(ctx, m))
	defer asm.DestroySubsystems(ctx)

	subs := asm.Subsystems()
	require.Len(t, subs, 1)
	lift, ok := subs[0].(*elevator.Elevator)
	require.True(t, ok)
	assert.Equal(t, "elevator", lift.Name())
}

func TestAssembleRoutineRunsEndToEnd(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m, r := loadModel(t, `
subsystem "elevator" "lift" {
	arguments {
		speed     = 0.5
		tolerance = 0.01
	}
}

routine "score" {
	run "elevator.move_to" {
		arguments {
			setpoint = 1.5
		}
		uses {
			elevator = subsystem.elevator.lift
		}
	}
	run "logmsg.print" {
		arguments {
			message = "scored"
		}
	}
}
`)
	asm := New(r)
	require.NoError(t, asm.CreateSubsystems(ctx, m))
	defer asm.DestroySubsystems(ctx)

	cmd, err := asm.AssembleRoutine(ctx, m.Routines["score"])
	require.NoError(t, err)

	sched := scheduler.New()
	sched.RegisterSubsystem(asm.Subsystems()...)
	sched.Schedule(ctx, cmd)
	for i := 0; i < 10 && sched.IsScheduled(cmd); i++ {
		sched.Run(ctx)
	}
	require.False(t, sched.IsScheduled(cmd), "routine should finish within 10 ticks")

	lift := asm.Subsystems()[0].(*elevator.Elevator)
	assert.InDelta(t, 1.5, lift.Position(), 0.01)
}

func TestDefaultCommandHoldsElevatorBetweenCommands(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m, r := loadModel(t, `
subsystem "elevator" "lift" {
	arguments {
		speed     = 0.5
		tolerance = 0.01
	}
}

routine "raise" {
	run "elevator.move_to" {
		arguments {
			setpoint = 1.0
		}
		uses {
			elevator = subsystem.elevator.lift
		}
	}
}
`)
	asm := New(r)
	require.NoError(t, asm.CreateSubsystems(ctx, m))
	defer asm.DestroySubsystems(ctx)

	lift := asm.Subsystems()[0].(*elevator.Elevator)
	sched := scheduler.New()
	sched.RegisterSubsystem(asm.Subsystems()...)
	require.NoError(t, sched.SetDefaultCommand(lift, lift.DefaultCommand()))

	cmd, err := asm.AssembleRoutine(ctx, m.Routines["raise"])
	require.NoError(t, err)
	sched.Schedule(ctx, cmd)

	holder, ok := sched.Requiring(lift)
	require.True(t, ok)
	assert.Equal(t, "raise", holder.Name())

	for i := 0; i < 10 && sched.IsScheduled(cmd); i++ {
		sched.Run(ctx)
	}
	require.False(t, sched.IsScheduled(cmd), "routine should finish within 10 ticks")

	// The routine released the elevator, so the hold command now owns it
	// and keeps the carriage parked at the last setpoint.
	holder, ok = sched.Requiring(lift)
	require.True(t, ok)
	assert.Equal(t, "HoldElevator", holder.Name())

	for i := 0; i < 3; i++ {
		sched.Run(ctx)
	}
	assert.InDelta(t, 1.0, lift.Position(), 0.01)
}

func TestAssembleGroupsAndWaits(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m, r := loadModel(t, `
routine "mixed" {
	parallel {
		wait {
			duration = "1ms"
		}
		wait {
			duration = "2ms"
		}
	}
	race {
		wait {
			duration = "1ms"
		}
		wait {
			duration = "1h"
		}
	}
	deadline {
		wait {
			duration = "1ms"
		}
		wait {
			duration = "1h"
		}
	}
	timeout {
		duration = "1ms"
		wait {
			duration = "1h"
		}
	}
}
`)
	asm := New(r)
	require.NoError(t, asm.CreateSubsystems(ctx, m))

	cmd, err := asm.AssembleRoutine(ctx, m.Routines["mixed"])
	require.NoError(t, err)
	assert.Equal(t, "mixed", cmd.Name())

	// The whole tree is wall-clock bounded, so it must finish quickly.
	sched := scheduler.New()
	sched.Schedule(ctx, cmd)
	err = sched.RunLoop(ctx, time.Millisecond, func() bool {
		return !sched.IsScheduled(cmd)
	})
	require.NoError(t, err)
}

func TestAssembleInputDefaultApplied(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	type recordedInput struct {
		Message string `hcl:"message"`
		Level   string `hcl:"level,optional"`
	}
	var got *recordedInput

	levelDefault := cty.StringVal("info")
	mod := &recorderModule{
		build: func(ctx context.Context, deps any, input *recordedInput) (command.Command, error) {
			got = input
			return command.RunOnce("recorded", nil), nil
		},
		def: &model.CommandDefinition{
			Type:      "record",
			BuildFunc: "BuildRecord",
			Inputs: map[string]*model.InputDefinition{
				"message": {Name: "message", Type: cty.String},
				"level":   {Name: "level", Type: cty.String, Default: &levelDefault, Optional: true},
			},
			Uses: map[string]*model.UsesDefinition{},
		},
	}

	m, r := loadModel(t, `
routine "auto" {
	run "record" {
		arguments {
			message = "hello"
		}
	}
}
`, mod)

	asm := New(r)
	_, err := asm.AssembleRoutine(ctx, m.Routines["auto"])
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "hello", got.Message)
	assert.Equal(t, "info", got.Level, "manifest default should fill the unset field")
}

func TestAssembleErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("unknown command type", func(t *testing.T) {
		t.Parallel()
		m, r := loadModel(t, `
routine "auto" {
	run "does.not.exist" {
	}
}
`, &logmsg.Module{})
		// The run block references a definition the registry never saw, so
		// assembly (not validation) reports it.
		asm := New(r)
		_, err := asm.AssembleRoutine(ctx, m.Routines["auto"])
		require.Error(t, err)
		assert.ErrorContains(t, err, "unknown command type 'does.not.exist'")
	})

	t.Run("missing subsystem instance", func(t *testing.T) {
		t.Parallel()
		m, r := loadModel(t, `
routine "auto" {
	run "drivetrain.stop" {
		uses {
			drivetrain = subsystem.drivetrain.ghost
		}
	}
}
`)
		asm := New(r)
		_, err := asm.AssembleRoutine(ctx, m.Routines["auto"])
		require.Error(t, err)
		assert.ErrorContains(t, err, "was not declared")
	})

	t.Run("missing uses entry", func(t *testing.T) {
		t.Parallel()
		m, r := loadModel(t, `
subsystem "drivetrain" "main" {
}

routine "auto" {
	run "drivetrain.stop" {
	}
}
`)
		asm := New(r)
		require.NoError(t, asm.CreateSubsystems(ctx, m))
		_, err := asm.AssembleRoutine(ctx, m.Routines["auto"])
		require.Error(t, err)
		assert.ErrorContains(t, err, "missing uses entry 'drivetrain'")
	})
}

// recorderModule registers one command type whose build handler captures
// its decoded input.
type recorderModule struct {
	build any
	def   *model.CommandDefinition
}

func (m *recorderModule) Register(r *registry.Registry) {
	var newInput func() any
	var inputType reflect.Type
	if m.def != nil && len(m.def.Inputs) > 0 {
		bt := reflect.TypeOf(m.build)
		inputType = bt.In(2).Elem()
		structType := inputType
		newInput = func() any { return reflect.New(structType).Interface() }
	}
	r.RegisterCommand(m.def.BuildFunc, &registry.RegisteredCommand{
		NewInput:  newInput,
		InputType: inputType,
		Build:     m.build,
	})
	r.DefineCommand(m.def)
}
