package registry

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/frc-5160-the-chargers/gocommand/internal/ctxlog"
	"github.com/frc-5160-the-chargers/gocommand/internal/model"
)

// Validate performs a strict parity check between manifest definitions and
// the registered Go handlers: every definition must have its handlers, and
// declared inputs must match the handler input struct's hcl-tagged fields
// in both presence and cty type. It also checks that every `uses` slot
// names a known subsystem type and has a matching deps-struct field.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	names := make([]string, 0, len(r.CommandDefs))
	for name := range r.CommandDefs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		def := r.CommandDefs[name]
		handler, ok := r.CommandHandlers[def.BuildFunc]
		if !ok {
			errs = append(errs, fmt.Sprintf("command '%s': build handler '%s' not registered", name, def.BuildFunc))
			continue
		}
		errs = append(errs, validateInputs(ctx, "command", name, def.Inputs, handler.InputType)...)
		errs = append(errs, r.validateUses(name, def, handler)...)
	}

	subNames := make([]string, 0, len(r.SubsystemTypeDefs))
	for name := range r.SubsystemTypeDefs {
		subNames = append(subNames, name)
	}
	sort.Strings(subNames)
	for _, name := range subNames {
		def := r.SubsystemTypeDefs[name]
		createHandler, ok := r.SubsystemHandlers[def.CreateFunc]
		if !ok || createHandler.Create == nil {
			errs = append(errs, fmt.Sprintf("subsystem type '%s': create handler '%s' not registered", name, def.CreateFunc))
			continue
		}
		if destroyHandler, ok := r.SubsystemHandlers[def.DestroyFunc]; !ok || destroyHandler.Destroy == nil {
			errs = append(errs, fmt.Sprintf("subsystem type '%s': destroy handler '%s' not registered", name, def.DestroyFunc))
		}
		errs = append(errs, validateInputs(ctx, "subsystem type", name, def.Inputs, createHandler.InputType)...)
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	logger.Debug("Registry validation passed.",
		"command_defs", len(r.CommandDefs), "subsystem_type_defs", len(r.SubsystemTypeDefs))
	return nil
}

// validateInputs checks declared manifest inputs against the hcl-tagged
// exported fields of the handler's input struct.
func validateInputs(ctx context.Context, kind, owner string, inputs map[string]*model.InputDefinition, inputType reflect.Type) []string {
	logger := ctxlog.FromContext(ctx)
	var errs []string

	if inputType == nil {
		if len(inputs) > 0 {
			errs = append(errs, fmt.Sprintf("%s '%s': manifest declares inputs, but the Go handler has no input struct", kind, owner))
		}
		return errs
	}

	goInputs := make(map[string]reflect.StructField)
	for i := 0; i < inputType.NumField(); i++ {
		field := inputType.Field(i)
		if !field.IsExported() {
			continue
		}
		tagName := strings.Split(field.Tag.Get("hcl"), ",")[0]
		if tagName != "" && tagName != "-" {
			goInputs[tagName] = field
		}
	}

	for name := range goInputs {
		if _, ok := inputs[name]; !ok {
			errs = append(errs, fmt.Sprintf("%s '%s': Go struct has field for input '%s' which is not declared in the manifest", kind, owner, name))
		}
	}
	for name := range inputs {
		if _, ok := goInputs[name]; !ok {
			errs = append(errs, fmt.Sprintf("%s '%s': manifest declares input '%s' which has no field in the Go struct", kind, owner, name))
		}
	}

	for name, inputDef := range inputs {
		goField, ok := goInputs[name]
		if !ok {
			continue // presence mismatch already reported
		}
		if inputDef.Type.Equals(cty.DynamicPseudoType) {
			logger.Debug("Skipping type check for 'any' input.", "owner", owner, "input", name)
			continue
		}
		goFieldType, err := gocty.ImpliedType(reflect.Zero(goField.Type).Interface())
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s '%s', input '%s': cannot imply cty type from Go field type %s: %v",
				kind, owner, name, goField.Type, err))
			continue
		}
		if !inputDef.Type.Equals(goFieldType) {
			errs = append(errs, fmt.Sprintf("%s '%s', input '%s': type mismatch; manifest requires '%s' but Go field '%s' is '%s'",
				kind, owner, name, inputDef.Type.FriendlyName(), goField.Name, goFieldType.FriendlyName()))
		}
	}

	return errs
}

// validateUses checks a command definition's subsystem dependency slots
// against the handler's deps struct and the known subsystem types.
func (r *Registry) validateUses(owner string, def *model.CommandDefinition, handler *RegisteredCommand) []string {
	var errs []string

	for name, use := range def.Uses {
		if _, ok := r.SubsystemTypeDefs[use.SubsystemType]; !ok {
			errs = append(errs, fmt.Sprintf("command '%s': uses '%s' references unknown subsystem type '%s'",
				owner, name, use.SubsystemType))
		}
	}

	if handler.NewDeps == nil {
		if len(def.Uses) > 0 {
			errs = append(errs, fmt.Sprintf("command '%s': manifest declares uses, but the Go handler has no deps struct", owner))
		}
		return errs
	}

	depsType := reflect.TypeOf(handler.NewDeps())
	if depsType.Kind() == reflect.Ptr {
		depsType = depsType.Elem()
	}
	goUses := make(map[string]struct{})
	for i := 0; i < depsType.NumField(); i++ {
		field := depsType.Field(i)
		tagName := strings.Split(field.Tag.Get("uses"), ",")[0]
		if tagName != "" && tagName != "-" {
			goUses[tagName] = struct{}{}
		}
	}
	for name := range goUses {
		if _, ok := def.Uses[name]; !ok {
			errs = append(errs, fmt.Sprintf("command '%s': deps struct has field for '%s' which is not declared in the manifest", owner, name))
		}
	}
	for name := range def.Uses {
		if _, ok := goUses[name]; !ok {
			errs = append(errs, fmt.Sprintf("command '%s': manifest declares uses '%s' which has no field in the deps struct", owner, name))
		}
	}
	return errs
}
