package hclloader

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/zclconf/go-cty/cty"

	"github.com/frc-5160-the-chargers/gocommand/internal/ctxlog"
	"github.com/frc-5160-the-chargers/gocommand/internal/model"
	"github.com/frc-5160-the-chargers/gocommand/internal/schema"
)

// manifestFile captures the manifest blocks of a file; routine and
// subsystem blocks fall through into Remain and are handled by the syntax
// walk.
type manifestFile struct {
	Commands       []*schema.CommandManifest       `hcl:"command,block"`
	SubsystemTypes []*schema.SubsystemTypeManifest `hcl:"subsystem_type,block"`
	Remain         hcl.Body                        `hcl:",remain"`
}

// loadManifests decodes command and subsystem_type manifest blocks from a
// file body into the model.
func (l *Loader) loadManifests(ctx context.Context, m *model.Model, body hcl.Body, filePath string) error {
	var mf manifestFile
	if diags := gohcl.DecodeBody(body, nil, &mf); diags.HasErrors() {
		return fmt.Errorf("decoding manifests in %s: %w", filePath, diags)
	}

	for _, cm := range mf.Commands {
		def, err := translateCommandManifest(ctx, cm, filePath)
		if err != nil {
			return err
		}
		if _, exists := m.Commands[def.Type]; exists {
			return fmt.Errorf("%s: duplicate command definition '%s'", filePath, def.Type)
		}
		m.Commands[def.Type] = def
	}
	for _, sm := range mf.SubsystemTypes {
		def, err := translateSubsystemTypeManifest(ctx, sm, filePath)
		if err != nil {
			return err
		}
		if _, exists := m.SubsystemTypes[def.Type]; exists {
			return fmt.Errorf("%s: duplicate subsystem type definition '%s'", filePath, def.Type)
		}
		m.SubsystemTypes[def.Type] = def
	}
	return nil
}

// translateCommandManifest converts the HCL manifest schema into the
// agnostic model form, resolving input types and default values.
func translateCommandManifest(ctx context.Context, cm *schema.CommandManifest, filePath string) (*model.CommandDefinition, error) {
	if cm.Lifecycle == nil || cm.Lifecycle.Build == "" {
		return nil, fmt.Errorf("%s: command '%s' is missing its lifecycle build handler", filePath, cm.Type)
	}
	def := &model.CommandDefinition{
		Type:        cm.Type,
		Description: cm.Description,
		BuildFunc:   cm.Lifecycle.Build,
		Inputs:      make(map[string]*model.InputDefinition),
		Uses:        make(map[string]*model.UsesDefinition),
	}
	for _, in := range cm.Inputs {
		input, err := translateInput(ctx, in, cm.Type, filePath)
		if err != nil {
			return nil, err
		}
		def.Inputs[in.Name] = input
	}
	for _, use := range cm.Uses {
		def.Uses[use.LocalName] = &model.UsesDefinition{
			LocalName:     use.LocalName,
			SubsystemType: use.SubsystemType,
		}
	}
	return def, nil
}

// translateSubsystemTypeManifest converts a subsystem_type manifest block.
func translateSubsystemTypeManifest(ctx context.Context, sm *schema.SubsystemTypeManifest, filePath string) (*model.SubsystemTypeDefinition, error) {
	if sm.Lifecycle == nil || sm.Lifecycle.Create == "" || sm.Lifecycle.Destroy == "" {
		return nil, fmt.Errorf("%s: subsystem type '%s' must declare create and destroy handlers", filePath, sm.Type)
	}
	def := &model.SubsystemTypeDefinition{
		Type:        sm.Type,
		Description: sm.Description,
		CreateFunc:  sm.Lifecycle.Create,
		DestroyFunc: sm.Lifecycle.Destroy,
		Inputs:      make(map[string]*model.InputDefinition),
	}
	for _, in := range sm.Inputs {
		input, err := translateInput(ctx, in, sm.Type, filePath)
		if err != nil {
			return nil, err
		}
		def.Inputs[in.Name] = input
	}
	return def, nil
}

// translateInput resolves one input block's declared type and optional
// default. A default that evaluates to a non-null value makes the input
// optional.
func translateInput(ctx context.Context, in *schema.InputBlock, owner, filePath string) (*model.InputDefinition, error) {
	logger := ctxlog.FromContext(ctx)

	ctyType, diags := typeFromExpression(in.Type)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%s: input '%s' of '%s': %w", filePath, in.Name, owner, diags)
	}
	if ctyType.Equals(cty.DynamicPseudoType) {
		logger.Warn("Input declared with 'type = any' disables static type checking.",
			"owner", owner, "input", in.Name)
	}

	input := &model.InputDefinition{
		Name:        in.Name,
		Type:        ctyType,
		Description: in.Description,
	}
	if in.Default != nil {
		val, diags := in.Default.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("%s: default for input '%s' of '%s': %w", filePath, in.Name, owner, diags)
		}
		if !val.IsNull() {
			input.Default = &val
			input.Optional = true
		}
	}
	return input, nil
}
