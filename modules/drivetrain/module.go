// Package drivetrain provides a simulated differential drivetrain
// subsystem and its motion commands.
package drivetrain

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

// CreateInput defines the arguments for creating a drivetrain subsystem.
type CreateInput struct {
	MaxSpeed float64 `hcl:"max_speed,optional"`
}

// Drivetrain is a simulated arcade drive. Periodic integrates the demanded
// speeds into a pose so tests and telemetry can observe motion.
type Drivetrain struct {
	name     string
	maxSpeed float64

	mu       sync.Mutex
	speed    float64
	rotation float64
	x, y     float64
	heading  float64
}

// Name implements command.Subsystem.
func (d *Drivetrain) Name() string { return d.name }

// Periodic advances the simulated pose by one tick of the current demand.
func (d *Drivetrain) Periodic(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.heading += d.rotation
	d.x += d.speed * math.Cos(d.heading)
	d.y += d.speed * math.Sin(d.heading)
}

// Drive sets the arcade demand, clamped to the configured maximum.
func (d *Drivetrain) Drive(speed, rotation float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.speed = clamp(speed, d.maxSpeed)
	d.rotation = clamp(rotation, d.maxSpeed)
}

// Stop zeroes the demand.
func (d *Drivetrain) Stop() {
	d.Drive(0, 0)
}

// Pose returns the simulated position and heading.
func (d *Drivetrain) Pose() (x, y, heading float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.x, d.y, d.heading
}

func clamp(v, limit float64) float64 {
	if limit <= 0 {
		return v
	}
	return math.Max(-limit, math.Min(limit, v))
}

// Create is the create lifecycle handler for the drivetrain type.
func Create(ctx context.Context, input *CreateInput) (*Drivetrain, error) {
	ctxlog.FromContext(ctx).Debug("Creating drivetrain.", "max_speed", input.MaxSpeed)
	return &Drivetrain{name: "drivetrain", maxSpeed: input.MaxSpeed}, nil
}

// Destroy is the destroy lifecycle handler.
func Destroy(ctx context.Context, d *Drivetrain) error {
	d.Stop()
	return nil
}

// DriveInput defines the arguments for the drive command.
type DriveInput struct {
	Speed    float64 `hcl:"speed"`
	Rotation float64 `hcl:"rotation,optional"`
}

// DriveDeps receives the drivetrain to act on.
type DriveDeps struct {
	Drivetrain *Drivetrain `uses:"drivetrain"`
}

// BuildDrive assembles a command that applies the arcade demand every tick
// until interrupted. Wrap it in a timeout or deadline group to bound it.
func BuildDrive(ctx context.Context, deps *DriveDeps, input *DriveInput) (command.Command, error) {
	if deps.Drivetrain == nil {
		return nil, fmt.Errorf("drive command needs a drivetrain")
	}
	d := deps.Drivetrain
	return &command.Functional{
		CommandName: fmt.Sprintf("Drive(%.2f, %.2f)", input.Speed, input.Rotation),
		OnExecute:   func(ctx context.Context) { d.Drive(input.Speed, input.Rotation) },
		OnEnd:       func(ctx context.Context, _ bool) { d.Stop() },
		Reqs:        []command.Subsystem{d},
	}, nil
}

// StopDeps receives the drivetrain to stop.
type StopDeps struct {
	Drivetrain *Drivetrain `uses:"drivetrain"`
}

// BuildStop assembles a one-shot command that zeroes the drive demand.
func BuildStop(ctx context.Context, deps *StopDeps, input any) (command.Command, error) {
	if deps.Drivetrain == nil {
		return nil, fmt.Errorf("stop command needs a drivetrain")
	}
	d := deps.Drivetrain
	return command.RunOnce("StopDrivetrain", func(ctx context.Context) { d.Stop() }, d), nil
}

// Register registers the handlers and in-code manifest definitions.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterSubsystem("CreateDrivetrain", &registry.RegisteredSubsystem{
		NewInput:  func() any { return new(CreateInput) },
		InputType: reflect.TypeOf(CreateInput{}),
		Create:    Create,
	})
	r.RegisterSubsystem("DestroyDrivetrain", &registry.RegisteredSubsystem{
		Destroy: Destroy,
	})
	r.RegisterCommand("BuildDrive", &registry.RegisteredCommand{
		NewInput:  func() any { return new(DriveInput) },
		InputType: reflect.TypeOf(DriveInput{}),
		NewDeps:   func() any { return new(DriveDeps) },
		Build:     BuildDrive,
	})
	r.RegisterCommand("BuildStop", &registry.RegisteredCommand{
		NewDeps: func() any { return new(StopDeps) },
		Build:   BuildStop,
	})

	maxSpeedDefault := cty.NumberFloatVal(0)
	r.DefineSubsystemType(&model.SubsystemTypeDefinition{
		Type:        "drivetrain",
		Description: "Simulated arcade drivetrain.",
		CreateFunc:  "CreateDrivetrain",
		DestroyFunc: "DestroyDrivetrain",
		Inputs: map[string]*model.InputDefinition{
			"max_speed": {Name: "max_speed", Type: cty.Number, Default: &maxSpeedDefault, Optional: true},
		},
	})

	rotationDefault := cty.NumberFloatVal(0)
	r.DefineCommand(&model.CommandDefinition{
		Type:        "drivetrain.drive",
		Description: "Apply an arcade drive demand until interrupted.",
		BuildFunc:   "BuildDrive",
		Inputs: map[string]*model.InputDefinition{
			"speed":    {Name: "speed", Type: cty.Number},
			"rotation": {Name: "rotation", Type: cty.Number, Default: &rotationDefault, Optional: true},
		},
		Uses: map[string]*model.UsesDefinition{
			"drivetrain": {LocalName: "drivetrain", SubsystemType: "drivetrain"},
		},
	})
	r.DefineCommand(&model.CommandDefinition{
		Type:        "drivetrain.stop",
		Description: "Zero the drive demand once.",
		BuildFunc:   "BuildStop",
		Inputs:      map[string]*model.InputDefinition{},
		Uses: map[string]*model.UsesDefinition{
			"drivetrain": {LocalName: "drivetrain", SubsystemType: "drivetrain"},
		},
	})
}
