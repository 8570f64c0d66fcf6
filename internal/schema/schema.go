// Package schema defines the HCL shapes of manifest blocks. Routine bodies
// are not declared here: their nested command blocks interleave across
// block types and gohcl cannot preserve that ordering, so hclloader walks
// them directly off the syntax tree.
package schema

import "github.com/hashicorp/hcl/v2"

// CommandLifecycle maps a command type to its registered Go build handler.
// The attribute is optional at the HCL level so the loader can report a
// missing handler with a manifest-specific error.
type CommandLifecycle struct {
	Build string `hcl:"build,optional"`
}

// SubsystemLifecycle maps a subsystem type to its registered create and
// destroy handlers.
type SubsystemLifecycle struct {
	Create  string `hcl:"create,optional"`
	Destroy string `hcl:"destroy,optional"`
}

// InputBlock declares a single typed input of a command or subsystem type.
type InputBlock struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type"`
	Description string         `hcl:"description,optional"`
	Default     hcl.Expression `hcl:"default,optional"`
}

// UsesBlock declares a subsystem dependency slot of a command type.
type UsesBlock struct {
	LocalName     string `hcl:"local_name,label"`
	SubsystemType string `hcl:"subsystem_type"`
}

// CommandManifest is the `command` manifest block for a buildable command
// type.
type CommandManifest struct {
	Type        string            `hcl:"type,label"`
	Description string            `hcl:"description,optional"`
	Lifecycle   *CommandLifecycle `hcl:"lifecycle,block"`
	Inputs      []*InputBlock     `hcl:"input,block"`
	Uses        []*UsesBlock      `hcl:"uses,block"`
}

// SubsystemTypeManifest is the `subsystem_type` manifest block for a
// creatable subsystem type.
type SubsystemTypeManifest struct {
	Type        string              `hcl:"type,label"`
	Description string              `hcl:"description,optional"`
	Lifecycle   *SubsystemLifecycle `hcl:"lifecycle,block"`
	Inputs      []*InputBlock       `hcl:"input,block"`
}
