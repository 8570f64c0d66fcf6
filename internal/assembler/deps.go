package assembler

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/hashicorp/hcl/v2"

	"github.com/frc-5160-the-chargers/gocommand/internal/ctxlog"
	"github.com/frc-5160-the-chargers/gocommand/internal/model"
	"github.com/frc-5160-the-chargers/gocommand/internal/registry"
)

// buildDepsStruct populates a command handler's deps struct from the run
// block's uses attributes. Each uses value must be a bare reference of the
// form subsystem.<type>.<name>.
func (a *Assembler) buildDepsStruct(ctx context.Context, node *model.Node, handler *registry.RegisteredCommand) (any, error) {
	logger := ctxlog.FromContext(ctx)
	if handler.NewDeps == nil {
		return nil, nil
	}
	depsStruct := handler.NewDeps()
	depsValue := reflect.ValueOf(depsStruct).Elem()
	depsType := depsValue.Type()

	for i := 0; i < depsValue.NumField(); i++ {
		field := depsType.Field(i)
		tagName := strings.Split(field.Tag.Get("uses"), ",")[0]
		if tagName == "" || tagName == "-" {
			continue
		}

		expr, ok := node.Uses[tagName]
		if !ok {
			return nil, fmt.Errorf("command at %s is missing uses entry '%s'", node.Path, tagName)
		}

		vars := expr.Variables()
		if len(vars) != 1 {
			return nil, fmt.Errorf("uses '%s' at %s must be a direct reference to one subsystem", tagName, node.Path)
		}
		subsystemID, err := traversalToSubsystemID(vars[0])
		if err != nil {
			return nil, fmt.Errorf("uses '%s' at %s: %w", tagName, node.Path, err)
		}

		instance, found := a.subsystems[subsystemID]
		if !found {
			return nil, fmt.Errorf("command at %s requires subsystem '%s', which was not declared", node.Path, subsystemID)
		}

		instanceType := reflect.TypeOf(instance)
		fieldType := field.Type
		if fieldType.Kind() == reflect.Interface {
			if !instanceType.Implements(fieldType) {
				return nil, fmt.Errorf("uses '%s' at %s: subsystem of type %v does not implement %v",
					tagName, node.Path, instanceType, fieldType)
			}
		} else if !instanceType.AssignableTo(fieldType) {
			return nil, fmt.Errorf("uses '%s' at %s: subsystem of type %v is not assignable to %v",
				tagName, node.Path, instanceType, fieldType)
		}

		logger.Debug("Injecting subsystem dependency.", "node", node.Path, "uses", tagName, "subsystem", subsystemID)
		depsValue.Field(i).Set(reflect.ValueOf(instance))
	}

	return depsStruct, nil
}

// traversalToSubsystemID converts a subsystem reference traversal into its
// canonical instance ID.
func traversalToSubsystemID(v hcl.Traversal) (string, error) {
	if len(v) != 3 {
		return "", fmt.Errorf("expected a reference like subsystem.<type>.<name>")
	}
	if v.RootName() != "subsystem" {
		return "", fmt.Errorf("expected a 'subsystem' reference, got '%s'", v.RootName())
	}
	typeName, ok := v[1].(hcl.TraverseAttr)
	if !ok {
		return "", fmt.Errorf("invalid subsystem reference")
	}
	instName, ok := v[2].(hcl.TraverseAttr)
	if !ok {
		return "", fmt.Errorf("invalid subsystem reference")
	}
	return fmt.Sprintf("subsystem.%s.%s", typeName.Name, instName.Name), nil
}
