package hclloader

import (
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/frc-5160-the-chargers/gocommand/internal/model"
)

// decodeRoutine turns a `routine "<name>"` block into a command tree. The
// routine body is an implicit sequential group.
func decodeRoutine(blk *hclsyntax.Block, filePath string) (*model.Routine, error) {
	if len(blk.Labels) != 1 {
		return nil, fmt.Errorf("%s: routine block needs exactly one name label at %s",
			filePath, blk.DefRange().String())
	}
	name := blk.Labels[0]

	root := &model.Node{
		Kind:     model.KindSequential,
		Path:     name,
		DefRange: blk.DefRange(),
	}
	children, err := decodeChildren(blk.Body, name, filePath)
	if err != nil {
		return nil, err
	}
	root.Children = children

	return &model.Routine{Name: name, Root: root, DeclFile: filePath}, nil
}

// decodeSubsystem turns a `subsystem "<type>" "<name>"` block into an
// instance declaration.
func decodeSubsystem(blk *hclsyntax.Block, filePath string) (*model.SubsystemInstance, error) {
	if len(blk.Labels) != 2 {
		return nil, fmt.Errorf("%s: subsystem block needs type and name labels at %s",
			filePath, blk.DefRange().String())
	}
	sub := &model.SubsystemInstance{
		Type:     blk.Labels[0],
		Name:     blk.Labels[1],
		DeclFile: filePath,
	}
	for _, inner := range blk.Body.Blocks {
		if inner.Type != "arguments" {
			return nil, fmt.Errorf("%s: unexpected block '%s' in subsystem '%s.%s'",
				filePath, inner.Type, sub.Type, sub.Name)
		}
		sub.Arguments = inner.Body
	}
	return sub, nil
}

// decodeChildren walks a group body's blocks in source order, producing one
// node per command block.
func decodeChildren(body *hclsyntax.Body, parentPath, filePath string) ([]*model.Node, error) {
	if len(body.Attributes) > 0 {
		for name, attr := range body.Attributes {
			return nil, fmt.Errorf("%s: unexpected attribute '%s' in command group at %s",
				filePath, name, attr.SrcRange.String())
		}
	}
	var children []*model.Node
	for i, blk := range body.Blocks {
		node, err := decodeNode(blk, parentPath, i, filePath)
		if err != nil {
			return nil, err
		}
		children = append(children, node)
	}
	return children, nil
}

// decodeNode translates one command block into a model node.
func decodeNode(blk *hclsyntax.Block, parentPath string, idx int, filePath string) (*model.Node, error) {
	path := fmt.Sprintf("%s.%s[%d]", parentPath, blk.Type, idx)
	node := &model.Node{Path: path, DefRange: blk.DefRange()}

	switch blk.Type {
	case "run":
		if len(blk.Labels) != 1 {
			return nil, fmt.Errorf("%s: run block needs exactly one command-type label at %s",
				filePath, blk.DefRange().String())
		}
		node.Kind = model.KindRun
		node.Handler = blk.Labels[0]
		node.Path = fmt.Sprintf("%s.run.%s[%d]", parentPath, node.Handler, idx)
		for _, inner := range blk.Body.Blocks {
			switch inner.Type {
			case "arguments":
				node.Arguments = inner.Body
			case "uses":
				uses := make(map[string]hcl.Expression, len(inner.Body.Attributes))
				for name, attr := range inner.Body.Attributes {
					uses[name] = attr.Expr
				}
				node.Uses = uses
			default:
				return nil, fmt.Errorf("%s: unexpected block '%s' in run block at %s",
					filePath, inner.Type, inner.DefRange().String())
			}
		}
		return node, nil

	case "wait":
		node.Kind = model.KindWait
		d, err := durationAttribute(blk, filePath)
		if err != nil {
			return nil, err
		}
		node.Duration = d
		return node, nil

	case "timeout":
		node.Kind = model.KindTimeout
		d, err := durationAttribute(blk, filePath)
		if err != nil {
			return nil, err
		}
		node.Duration = d
		children, err := decodeTimeoutChildren(blk.Body, path, filePath)
		if err != nil {
			return nil, err
		}
		node.Children = children
		return node, nil

	case "sequential", "parallel", "race", "deadline":
		switch blk.Type {
		case "sequential":
			node.Kind = model.KindSequential
		case "parallel":
			node.Kind = model.KindParallel
		case "race":
			node.Kind = model.KindRace
		case "deadline":
			node.Kind = model.KindDeadline
		}
		children, err := decodeChildren(blk.Body, path, filePath)
		if err != nil {
			return nil, err
		}
		if node.Kind == model.KindDeadline && len(children) == 0 {
			return nil, fmt.Errorf("%s: deadline group at %s needs at least one child; the first is the deadline",
				filePath, blk.DefRange().String())
		}
		node.Children = children
		return node, nil

	default:
		return nil, fmt.Errorf("%s: unknown command block '%s' at %s",
			filePath, blk.Type, blk.DefRange().String())
	}
}

// decodeTimeoutChildren decodes the single wrapped command of a timeout
// block. The duration attribute has already been consumed by the caller.
func decodeTimeoutChildren(body *hclsyntax.Body, parentPath, filePath string) ([]*model.Node, error) {
	if len(body.Blocks) != 1 {
		return nil, fmt.Errorf("%s: timeout block at %s must wrap exactly one command block",
			filePath, body.SrcRange.String())
	}
	child, err := decodeNode(body.Blocks[0], parentPath, 0, filePath)
	if err != nil {
		return nil, err
	}
	return []*model.Node{child}, nil
}

// durationAttribute reads and validates the `duration` attribute of a wait
// or timeout block. The value is a Go duration string literal ("250ms",
// "1.5s").
func durationAttribute(blk *hclsyntax.Block, filePath string) (string, error) {
	attr, ok := blk.Body.Attributes["duration"]
	if !ok {
		return "", fmt.Errorf("%s: %s block at %s is missing the 'duration' attribute",
			filePath, blk.Type, blk.DefRange().String())
	}
	for name, other := range blk.Body.Attributes {
		if name != "duration" {
			return "", fmt.Errorf("%s: unexpected attribute '%s' in %s block at %s",
				filePath, name, blk.Type, other.SrcRange.String())
		}
	}
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return "", fmt.Errorf("%s: evaluating duration at %s: %w", filePath, attr.SrcRange.String(), diags)
	}
	if val.Type() != cty.String {
		return "", fmt.Errorf("%s: duration at %s must be a string like \"1.5s\"", filePath, attr.SrcRange.String())
	}
	s := val.AsString()
	if _, err := time.ParseDuration(s); err != nil {
		return "", fmt.Errorf("%s: invalid duration %q at %s: %w", filePath, s, attr.SrcRange.String(), err)
	}
	return s, nil
}
