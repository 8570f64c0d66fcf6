package model

import "github.com/zclconf/go-cty/cty"

// InputDefinition is one declared input of a command or subsystem type.
type InputDefinition struct {
	Name        string
	Type        cty.Type
	Description string
	Default     *cty.Value
	Optional    bool
}

// UsesDefinition declares a subsystem dependency slot of a command type.
type UsesDefinition struct {
	LocalName     string
	SubsystemType string
}

// CommandDefinition is the manifest of a buildable command type: which Go
// handler assembles it, what inputs it accepts, and which subsystems it
// needs injected.
type CommandDefinition struct {
	Type        string
	Description string
	BuildFunc   string
	Inputs      map[string]*InputDefinition
	Uses        map[string]*UsesDefinition
}

// SubsystemTypeDefinition is the manifest of a creatable subsystem type and
// its create/destroy lifecycle handlers.
type SubsystemTypeDefinition struct {
	Type        string
	Description string
	CreateFunc  string
	DestroyFunc string
	Inputs      map[string]*InputDefinition
}
