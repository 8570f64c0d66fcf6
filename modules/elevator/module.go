// Package elevator provides a simulated elevator subsystem with a
// position-seeking move command.
package elevator

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"sync"

	"github.com/zclconf/go-cty/cty"

	"github.com/frc-5160-the-chargers/gocommand/internal/command"
	"github.com/frc-5160-the-chargers/gocommand/internal/ctxlog"
	"github.com/frc-5160-the-chargers/gocommand/internal/model"
	"github.com/frc-5160-the-chargers/gocommand/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// CreateInput defines the arguments for creating an elevator subsystem.
type CreateInput struct {
	Speed     float64 `hcl:"speed,optional"`
	Tolerance float64 `hcl:"tolerance,optional"`
}

// Elevator simulates a single-axis lift. Periodic slews the carriage
// toward the setpoint at the configured speed per tick.
type Elevator struct {
	name      string
	speed     float64
	tolerance float64

	mu       sync.Mutex
	position float64
	setpoint float64
}

// Name implements command.Subsystem.
func (e *Elevator) Name() string { return e.name }

// Periodic moves the carriage one step toward the setpoint.
func (e *Elevator) Periodic(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delta := e.setpoint - e.position
	if math.Abs(delta) <= e.speed {
		e.position = e.setpoint
		return
	}
	if delta > 0 {
		e.position += e.speed
	} else {
		e.position -= e.speed
	}
}

// MoveTo sets the target position.
func (e *Elevator) MoveTo(setpoint float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setpoint = setpoint
}

// Hold pins the setpoint at the current position.
func (e *Elevator) Hold() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setpoint = e.position
}

// AtSetpoint reports whether the carriage is within tolerance of the
// target.
func (e *Elevator) AtSetpoint() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return math.Abs(e.setpoint-e.position) <= e.tolerance
}

// Position returns the current carriage position.
func (e *Elevator) Position() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position
}

// DefaultCommand keeps the elevator occupied at its last setpoint whenever
// no other command requires it. Periodic keeps slewing toward that
// setpoint, so the hold needs no body of its own.
func (e *Elevator) DefaultCommand() command.Command {
	return command.Idle("HoldElevator", e)
}

// Create is the create lifecycle handler for the elevator type.
func Create(ctx context.Context, input *CreateInput) (*Elevator, error) {
	speed := input.Speed
	if speed <= 0 {
		speed = 1
	}
	ctxlog.FromContext(ctx).Debug("Creating elevator.", "speed", speed, "tolerance", input.Tolerance)
	return &Elevator{name: "elevator", speed: speed, tolerance: input.Tolerance}, nil
}

// Destroy is the destroy lifecycle handler.
func Destroy(ctx context.Context, e *Elevator) error {
	e.Hold()
	return nil
}

// MoveToInput defines the arguments for the move_to command.
type MoveToInput struct {
	Setpoint float64 `hcl:"setpoint"`
}

// MoveToDeps receives the elevator to move.
type MoveToDeps struct {
	Elevator *Elevator `uses:"elevator"`
}

// BuildMoveTo assembles a command that drives the elevator to a setpoint
// and finishes once it arrives.
func BuildMoveTo(ctx context.Context, deps *MoveToDeps, input *MoveToInput) (command.Command, error) {
	if deps.Elevator == nil {
		return nil, fmt.Errorf("move_to command needs an elevator")
	}
	e := deps.Elevator
	return &command.Functional{
		CommandName: fmt.Sprintf("MoveElevatorTo(%.2f)", input.Setpoint),
		OnInit:      func(ctx context.Context) { e.MoveTo(input.Setpoint) },
		Finished:    e.AtSetpoint,
		Reqs:        []command.Subsystem{e},
	}, nil
}

// Register registers the handlers and in-code manifest definitions.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterSubsystem("CreateElevator", &registry.RegisteredSubsystem{
		NewInput:  func() any { return new(CreateInput) },
		InputType: reflect.TypeOf(CreateInput{}),
		Create:    Create,
	})
	r.RegisterSubsystem("DestroyElevator", &registry.RegisteredSubsystem{
		Destroy: Destroy,
	})
	r.RegisterCommand("BuildMoveTo", &registry.RegisteredCommand{
		NewInput:  func() any { return new(MoveToInput) },
		InputType: reflect.TypeOf(MoveToInput{}),
		NewDeps:   func() any { return new(MoveToDeps) },
		Build:     BuildMoveTo,
	})

	speedDefault := cty.NumberFloatVal(1)
	toleranceDefault := cty.NumberFloatVal(0)
	r.DefineSubsystemType(&model.SubsystemTypeDefinition{
		Type:        "elevator",
		Description: "Simulated single-axis elevator.",
		CreateFunc:  "CreateElevator",
		DestroyFunc: "DestroyElevator",
		Inputs: map[string]*model.InputDefinition{
			"speed":     {Name: "speed", Type: cty.Number, Default: &speedDefault, Optional: true},
			"tolerance": {Name: "tolerance", Type: cty.Number, Default: &toleranceDefault, Optional: true},
		},
	})
	r.DefineCommand(&model.CommandDefinition{
		Type:        "elevator.move_to",
		Description: "Drive the elevator to a setpoint and finish on arrival.",
		BuildFunc:   "BuildMoveTo",
		Inputs: map[string]*model.InputDefinition{
			"setpoint": {Name: "setpoint", Type: cty.Number},
		},
		Uses: map[string]*model.UsesDefinition{
			"elevator": {LocalName: "elevator", SubsystemType: "elevator"},
		},
	})
}
