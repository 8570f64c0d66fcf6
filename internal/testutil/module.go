package testutil

import (
	"github.com/frc-5160-the-chargers/gocommand/internal/model"
	"github.com/frc-5160-the-chargers/gocommand/internal/registry"
)

// SimpleModule is a test helper for easily creating a mock module that
// registers a single command or subsystem handler, optionally with in-code
// definitions.
type SimpleModule struct {
	CommandName string
	Command     *registry.RegisteredCommand
	CommandDef  *model.CommandDefinition

	SubsystemName    string
	Subsystem        *registry.RegisteredSubsystem
	SubsystemTypeDef *model.SubsystemTypeDefinition
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	if m.CommandName != "" && m.Command != nil {
		r.RegisterCommand(m.CommandName, m.Command)
	}
	if m.CommandDef != nil {
		r.DefineCommand(m.CommandDef)
	}
	if m.SubsystemName != "" && m.Subsystem != nil {
		r.RegisterSubsystem(m.SubsystemName, m.Subsystem)
	}
	if m.SubsystemTypeDef != nil {
		r.DefineSubsystemType(m.SubsystemTypeDef)
	}
}
