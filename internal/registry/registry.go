package registry

import (
	"fmt"

	"github.com/frc-5160-the-chargers/gocommand/internal/model"
)

// Module is implemented by every package that contributes handlers and
// definitions to an application instance.
type Module interface {
	Register(r *Registry)
}

// Registry holds all registered handlers and definitions for a single
// application instance.
type Registry struct {
	CommandHandlers   map[string]*RegisteredCommand
	SubsystemHandlers map[string]*RegisteredSubsystem
	CommandDefs       map[string]*model.CommandDefinition
	SubsystemTypeDefs map[string]*model.SubsystemTypeDefinition
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		CommandHandlers:   make(map[string]*RegisteredCommand),
		SubsystemHandlers: make(map[string]*RegisteredSubsystem),
		CommandDefs:       make(map[string]*model.CommandDefinition),
		SubsystemTypeDefs: make(map[string]*model.SubsystemTypeDefinition),
	}
}

// PopulateDefinitionsFromModel copies manifest definitions loaded from
// configuration files into the registry, next to any definitions modules
// registered in code.
func (r *Registry) PopulateDefinitionsFromModel(m *model.Model) error {
	for key, def := range m.Commands {
		if _, exists := r.CommandDefs[key]; exists {
			return fmt.Errorf("command definition '%s' conflicts with an already registered definition", key)
		}
		r.CommandDefs[key] = def
	}
	for key, def := range m.SubsystemTypes {
		if _, exists := r.SubsystemTypeDefs[key]; exists {
			return fmt.Errorf("subsystem type definition '%s' conflicts with an already registered definition", key)
		}
		r.SubsystemTypeDefs[key] = def
	}
	return nil
}
