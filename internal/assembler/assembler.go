package assembler

import (
	"context"
	"fmt"
	"reflect"

	"github.com/hashicorp/hcl/v2/gohcl"

	"github.com/frc-5160-the-chargers/gocommand/internal/command"
	"github.com/frc-5160-the-chargers/gocommand/internal/ctxlog"
	"github.com/frc-5160-the-chargers/gocommand/internal/model"
	"github.com/frc-5160-the-chargers/gocommand/internal/registry"
)

// Assembler builds subsystems and commands from the model using the
// registry's handlers.
type Assembler struct {
	registry   *registry.Registry
	subsystems map[string]command.Subsystem
	cleanup    []func(ctx context.Context)
}

// New returns an Assembler over the given registry.
func New(r *registry.Registry) *Assembler {
	return &Assembler{
		registry:   r,
		subsystems: make(map[string]command.Subsystem),
	}
}

// Subsystems returns every created subsystem instance.
func (a *Assembler) Subsystems() []command.Subsystem {
	out := make([]command.Subsystem, 0, len(a.subsystems))
	for _, sub := range a.subsystems {
		out = append(out, sub)
	}
	return out
}

// CreateSubsystems instantiates every subsystem declared in the model by
// calling its type's create handler. Instances become resolvable by their
// canonical ID for dependency injection into commands.
func (a *Assembler) CreateSubsystems(ctx context.Context, m *model.Model) error {
	logger := ctxlog.FromContext(ctx)

	for _, decl := range m.Subsystems {
		id := decl.ID()
		if _, exists := a.subsystems[id]; exists {
			return fmt.Errorf("duplicate subsystem instance '%s'", id)
		}

		def, ok := a.registry.SubsystemTypeDefs[decl.Type]
		if !ok {
			return fmt.Errorf("subsystem '%s' has unknown type '%s'", id, decl.Type)
		}
		handler := a.registry.SubsystemHandlers[def.CreateFunc]

		var input any
		if handler.NewInput != nil {
			input = handler.NewInput()
			if decl.Arguments != nil {
				if diags := gohcl.DecodeBody(decl.Arguments, nil, input); diags.HasErrors() {
					return fmt.Errorf("decoding arguments for subsystem '%s': %w", id, diags)
				}
			}
			if err := applyInputDefaults(ctx, input, def.Inputs, decl.Arguments); err != nil {
				return fmt.Errorf("subsystem '%s': %w", id, err)
			}
		}

		logger.Debug("Calling subsystem create handler.", "subsystem", id, "handler", def.CreateFunc)
		createFn := reflect.ValueOf(handler.Create)
		callArgs := []reflect.Value{reflect.ValueOf(ctx)}
		if input == nil {
			callArgs = append(callArgs, reflect.Zero(createFn.Type().In(1)))
		} else {
			callArgs = append(callArgs, reflect.ValueOf(input))
		}
		results := createFn.Call(callArgs)
		if errResult := results[1].Interface(); errResult != nil {
			return fmt.Errorf("creating subsystem '%s': %w", id, errResult.(error))
		}

		sub, ok := results[0].Interface().(command.Subsystem)
		if !ok {
			return fmt.Errorf("create handler '%s' for '%s' did not return a subsystem", def.CreateFunc, id)
		}
		a.subsystems[id] = sub

		destroyHandler := a.registry.SubsystemHandlers[def.DestroyFunc]
		a.pushCleanup(func(ctx context.Context) {
			logger.Info("🔥 Destroying subsystem.", "subsystem", id)
			results := reflect.ValueOf(destroyHandler.Destroy).Call(
				[]reflect.Value{reflect.ValueOf(ctx), reflect.ValueOf(sub)})
			if errResult := results[0].Interface(); errResult != nil {
				logger.Error("Subsystem destroy failed.", "subsystem", id, "error", errResult)
			}
		})

		logger.Info("✅ Subsystem created.", "subsystem", id)
	}
	return nil
}

// DestroySubsystems tears down created subsystems in reverse creation
// order. Safe to call when nothing was created.
func (a *Assembler) DestroySubsystems(ctx context.Context) {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i](ctx)
	}
	a.cleanup = nil
	a.subsystems = make(map[string]command.Subsystem)
}

func (a *Assembler) pushCleanup(fn func(ctx context.Context)) {
	a.cleanup = append(a.cleanup, fn)
}
