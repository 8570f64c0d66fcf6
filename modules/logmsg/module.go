// Package logmsg provides a command that logs a message once, mirroring
// the shape of a module with no subsystem dependencies.
package logmsg

import (
	"context"
	"reflect"

	"github.com/zclconf/go-cty/cty"

	"github.com/frc-5160-the-chargers/gocommand/internal/command"
	"github.com/frc-5160-the-chargers/gocommand/internal/ctxlog"
	"github.com/frc-5160-the-chargers/gocommand/internal/model"
	"github.com/frc-5160-the-chargers/gocommand/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the print command.
type Input struct {
	Message string `hcl:"message"`
	Level   string `hcl:"level,optional"`
}

// BuildPrint assembles a one-shot command that logs the message at the
// requested level.
func BuildPrint(ctx context.Context, deps any, input *Input) (command.Command, error) {
	return command.RunOnce("LogMessage", func(ctx context.Context) {
		logger := ctxlog.FromContext(ctx)
		switch input.Level {
		case "debug":
			logger.Debug(input.Message)
		case "warn":
			logger.Warn(input.Message)
		case "error":
			logger.Error(input.Message)
		default:
			logger.Info(input.Message)
		}
	}), nil
}

// Register registers the handler and in-code manifest definition.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterCommand("BuildPrint", &registry.RegisteredCommand{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		Build:     BuildPrint,
	})

	levelDefault := cty.StringVal("info")
	r.DefineCommand(&model.CommandDefinition{
		Type:        "logmsg.print",
		Description: "Log a message once.",
		BuildFunc:   "BuildPrint",
		Inputs: map[string]*model.InputDefinition{
			"message": {Name: "message", Type: cty.String},
			"level":   {Name: "level", Type: cty.String, Default: &levelDefault, Optional: true},
		},
		Uses: map[string]*model.UsesDefinition{},
	})
}
