package registry

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/frc-5160-the-chargers/gocommand/internal/model"
)

// RegisteredCommand holds the compiled Go parts of a command type.
type RegisteredCommand struct {
	// NewInput returns a pointer to a fresh input struct for argument
	// decoding. Nil when the command type takes no arguments.
	NewInput  func() any
	InputType reflect.Type

	// NewDeps returns a pointer to a fresh dependency struct whose
	// `uses`-tagged fields receive subsystem instances.
	NewDeps func() any

	// Build is func(ctx context.Context, deps *D, input *I)
	// (command.Command, error); invoked reflectively by the assembler.
	Build any
}

// RegisteredSubsystem holds Go functions for a subsystem type's lifecycle.
type RegisteredSubsystem struct {
	NewInput  func() any
	InputType reflect.Type

	// Create is func(ctx context.Context, input *I) (S, error) where S
	// implements command.Subsystem.
	Create any

	// Destroy is func(ctx context.Context, sub S) error.
	Destroy any
}

// RegisterCommand registers the build handler for a command type under
// name. Registering the same name twice is a programmer error.
func (r *Registry) RegisterCommand(name string, handler *RegisteredCommand) {
	if _, exists := r.CommandHandlers[name]; exists {
		panic(fmt.Sprintf("command handler '%s' already registered", name))
	}
	slog.Debug("Registering command handler.", "name", name)
	r.CommandHandlers[name] = handler
}

// RegisterSubsystem registers the lifecycle handlers for a subsystem type
// under name.
func (r *Registry) RegisterSubsystem(name string, handler *RegisteredSubsystem) {
	if _, exists := r.SubsystemHandlers[name]; exists {
		panic(fmt.Sprintf("subsystem handler '%s' already registered", name))
	}
	slog.Debug("Registering subsystem handler.", "name", name)
	r.SubsystemHandlers[name] = handler
}

// DefineCommand registers a manifest definition from Go code. Built-in
// modules use this instead of shipping .hcl manifests.
func (r *Registry) DefineCommand(def *model.CommandDefinition) {
	if _, exists := r.CommandDefs[def.Type]; exists {
		panic(fmt.Sprintf("command definition '%s' already registered", def.Type))
	}
	r.CommandDefs[def.Type] = def
}

// DefineSubsystemType registers a subsystem type definition from Go code.
func (r *Registry) DefineSubsystemType(def *model.SubsystemTypeDefinition) {
	if _, exists := r.SubsystemTypeDefs[def.Type]; exists {
		panic(fmt.Sprintf("subsystem type definition '%s' already registered", def.Type))
	}
	r.SubsystemTypeDefs[def.Type] = def
}
