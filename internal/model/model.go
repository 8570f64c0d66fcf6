package model

import "fmt"

// Model is the merged result of loading every configuration file.
type Model struct {
	Routines       map[string]*Routine
	Subsystems     []*SubsystemInstance
	Commands       map[string]*CommandDefinition
	SubsystemTypes map[string]*SubsystemTypeDefinition
}

// New returns an empty model.
func New() *Model {
	return &Model{
		Routines:       make(map[string]*Routine),
		Commands:       make(map[string]*CommandDefinition),
		SubsystemTypes: make(map[string]*SubsystemTypeDefinition),
	}
}

// Merge folds other into m, rejecting duplicate names across files.
func (m *Model) Merge(other *Model) error {
	for name, r := range other.Routines {
		if _, exists := m.Routines[name]; exists {
			return fmt.Errorf("duplicate routine '%s' (declared in %s)", name, r.DeclFile)
		}
		m.Routines[name] = r
	}
	for _, s := range other.Subsystems {
		for _, existing := range m.Subsystems {
			if existing.Type == s.Type && existing.Name == s.Name {
				return fmt.Errorf("duplicate subsystem '%s.%s' (declared in %s)", s.Type, s.Name, s.DeclFile)
			}
		}
		m.Subsystems = append(m.Subsystems, s)
	}
	for name, d := range other.Commands {
		if _, exists := m.Commands[name]; exists {
			return fmt.Errorf("duplicate command definition '%s'", name)
		}
		m.Commands[name] = d
	}
	for name, d := range other.SubsystemTypes {
		if _, exists := m.SubsystemTypes[name]; exists {
			return fmt.Errorf("duplicate subsystem type definition '%s'", name)
		}
		m.SubsystemTypes[name] = d
	}
	return nil
}
