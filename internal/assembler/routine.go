package assembler

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"

	"github.com/frc-5160-the-chargers/gocommand/internal/command"
	"github.com/frc-5160-the-chargers/gocommand/internal/ctxlog"
	"github.com/frc-5160-the-chargers/gocommand/internal/model"
)

// AssembleRoutine turns a routine's node tree into one runnable command.
// Subsystems must have been created first.
func (a *Assembler) AssembleRoutine(ctx context.Context, routine *model.Routine) (command.Command, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Assembling routine.", "routine", routine.Name)

	cmd, err := a.assembleNode(ctx, routine.Root)
	if err != nil {
		return nil, fmt.Errorf("assembling routine '%s': %w", routine.Name, err)
	}
	return cmd, nil
}

// assembleNode recursively builds the command for one node.
func (a *Assembler) assembleNode(ctx context.Context, node *model.Node) (command.Command, error) {
	switch node.Kind {
	case model.KindRun:
		return a.assembleRun(ctx, node)

	case model.KindWait:
		d, err := time.ParseDuration(node.Duration)
		if err != nil {
			return nil, fmt.Errorf("wait at %s: %w", node.Path, err)
		}
		return command.Wait(d), nil

	case model.KindTimeout:
		d, err := time.ParseDuration(node.Duration)
		if err != nil {
			return nil, fmt.Errorf("timeout at %s: %w", node.Path, err)
		}
		child, err := a.assembleNode(ctx, node.Children[0])
		if err != nil {
			return nil, err
		}
		return command.WithTimeout(child, d), nil

	case model.KindSequential, model.KindParallel, model.KindRace, model.KindDeadline:
		children := make([]command.Command, 0, len(node.Children))
		for _, childNode := range node.Children {
			child, err := a.assembleNode(ctx, childNode)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		switch node.Kind {
		case model.KindParallel:
			return command.Parallel(node.Path, children...), nil
		case model.KindRace:
			return command.Race(node.Path, children...), nil
		case model.KindDeadline:
			return command.DeadlineFromChildren(node.Path, children...), nil
		default:
			return command.Sequential(node.Path, children...), nil
		}

	default:
		return nil, fmt.Errorf("node at %s has unknown kind %d", node.Path, node.Kind)
	}
}

// assembleRun decodes a run node's input and deps and invokes the command
// type's build handler.
func (a *Assembler) assembleRun(ctx context.Context, node *model.Node) (command.Command, error) {
	logger := ctxlog.FromContext(ctx)

	def, ok := a.registry.CommandDefs[node.Handler]
	if !ok {
		return nil, fmt.Errorf("run at %s references unknown command type '%s'", node.Path, node.Handler)
	}
	handler := a.registry.CommandHandlers[def.BuildFunc]

	var input any
	if handler.NewInput != nil {
		input = handler.NewInput()
		if node.Arguments != nil {
			if diags := gohcl.DecodeBody(node.Arguments, nil, input); diags.HasErrors() {
				return nil, fmt.Errorf("decoding arguments at %s: %w", node.Path, diags)
			}
		}
		if err := applyInputDefaults(ctx, input, def.Inputs, node.Arguments); err != nil {
			return nil, fmt.Errorf("run at %s: %w", node.Path, err)
		}
	}

	deps, err := a.buildDepsStruct(ctx, node, handler)
	if err != nil {
		return nil, err
	}

	logger.Debug("Calling command build handler.", "node", node.Path, "handler", def.BuildFunc)
	buildFn := reflect.ValueOf(handler.Build)
	callArgs := []reflect.Value{reflect.ValueOf(ctx)}
	if deps == nil {
		callArgs = append(callArgs, reflect.Zero(buildFn.Type().In(1)))
	} else {
		callArgs = append(callArgs, reflect.ValueOf(deps))
	}
	if input == nil {
		callArgs = append(callArgs, reflect.Zero(buildFn.Type().In(2)))
	} else {
		callArgs = append(callArgs, reflect.ValueOf(input))
	}

	results := buildFn.Call(callArgs)
	if errResult := results[1].Interface(); errResult != nil {
		return nil, fmt.Errorf("building command at %s: %w", node.Path, errResult.(error))
	}
	cmd, ok := results[0].Interface().(command.Command)
	if !ok || cmd == nil {
		return nil, fmt.Errorf("build handler '%s' at %s did not return a command", def.BuildFunc, node.Path)
	}
	return cmd, nil
}
