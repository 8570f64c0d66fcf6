package model

import (
	"context"

	"github.com/hashicorp/hcl/v2"
)

// Loader produces a Model from configuration paths. The concrete HCL loader
// lives in hclloader; the app depends only on this interface.
type Loader interface {
	Load(ctx context.Context, paths ...string) (*Model, error)
}

// NodeKind discriminates the command-tree node types a routine file can
// express.
type NodeKind int

const (
	KindRun NodeKind = iota
	KindWait
	KindSequential
	KindParallel
	KindRace
	KindDeadline
	KindTimeout
)

// String returns the routine-file block name for the kind.
func (k NodeKind) String() string {
	switch k {
	case KindRun:
		return "run"
	case KindWait:
		return "wait"
	case KindSequential:
		return "sequential"
	case KindParallel:
		return "parallel"
	case KindRace:
		return "race"
	case KindDeadline:
		return "deadline"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Node is one block of a routine's command tree.
type Node struct {
	Kind NodeKind

	// Path is the stable dotted address of the node within its routine,
	// e.g. "auto_score.sequential[0].run.drivetrain.drive". Used for log
	// and telemetry correlation.
	Path string

	// Handler names the command definition for run nodes.
	Handler string

	// Arguments is the raw `arguments` block body of a run node, decoded
	// later against the handler's input struct. Nil when absent.
	Arguments hcl.Body

	// Uses maps local dependency names to subsystem reference expressions
	// for run nodes.
	Uses map[string]hcl.Expression

	// Duration holds the parsed literal of wait and timeout nodes.
	Duration string

	// Children holds nested command nodes for group kinds, in source
	// order. Timeout nodes have exactly one child.
	Children []*Node

	// DefRange locates the block for diagnostics.
	DefRange hcl.Range
}

// Routine is a named, schedulable command tree. Its body is an implicit
// sequential group.
type Routine struct {
	Name     string
	Root     *Node
	DeclFile string
}

// SubsystemInstance is a `subsystem` block: one created instance of a
// registered subsystem type.
type SubsystemInstance struct {
	Type      string
	Name      string
	Arguments hcl.Body
	DeclFile  string
}

// ID returns the reference key used by `uses` expressions,
// subsystem.<type>.<name>.
func (s *SubsystemInstance) ID() string {
	return "subsystem." + s.Type + "." + s.Name
}
