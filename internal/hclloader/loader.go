// Package hclloader parses routine and manifest HCL files into the
// format-agnostic model. Manifest blocks decode through gohcl; routine
// command trees are walked directly off the hclsyntax AST because their
// semantics depend on the source order of sibling blocks of different
// types, which gohcl does not preserve.
package hclloader

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"

	"github.com/frc-5160-the-chargers/gocommand/internal/ctxlog"
	"github.com/frc-5160-the-chargers/gocommand/internal/fsutil"
	"github.com/frc-5160-the-chargers/gocommand/internal/model"
)

// Loader is the HCL implementation of model.Loader.
type Loader struct{}

// NewLoader returns a ready Loader.
func NewLoader() *Loader { return &Loader{} }

// Load discovers every .hcl file under the given paths, parses each, and
// merges the results into one model. Any block kind may appear in any file:
// routine, subsystem, command and subsystem_type blocks are all accepted,
// so built-in manifests and user routines can live side by side.
func (l *Loader) Load(ctx context.Context, paths ...string) (*model.Model, error) {
	logger := ctxlog.FromContext(ctx)
	m := model.New()
	parser := hclparse.NewParser()

	var filePaths []string
	for _, p := range paths {
		found, err := fsutil.FindFilesByExtension(p, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("discovering config files under %s: %w", p, err)
		}
		filePaths = append(filePaths, found...)
	}
	if len(filePaths) == 0 {
		logger.Warn("No .hcl configuration files found.", "paths", paths)
	}

	for _, filePath := range filePaths {
		f, diags := parser.ParseHCLFile(filePath)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse %s: %w", filePath, diags)
		}
		fileModel, err := l.loadFile(ctx, f, filePath)
		if err != nil {
			return nil, err
		}
		if err := m.Merge(fileModel); err != nil {
			return nil, fmt.Errorf("merging %s: %w", filePath, err)
		}
		logger.Debug("Loaded configuration file.", "file", filePath)
	}

	logger.Info("Configuration loaded.",
		"files", len(filePaths),
		"routines", len(m.Routines),
		"subsystems", len(m.Subsystems),
		"command_defs", len(m.Commands),
		"subsystem_type_defs", len(m.SubsystemTypes))
	return m, nil
}

// loadFile translates one parsed file. Manifest blocks go through gohcl;
// routine and subsystem blocks are pulled from the syntax body.
func (l *Loader) loadFile(ctx context.Context, f *hcl.File, filePath string) (*model.Model, error) {
	m := model.New()

	body, ok := f.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("%s: expected native HCL syntax", filePath)
	}

	if err := l.loadManifests(ctx, m, f.Body, filePath); err != nil {
		return nil, err
	}

	for _, blk := range body.Blocks {
		switch blk.Type {
		case "routine":
			routine, err := decodeRoutine(blk, filePath)
			if err != nil {
				return nil, err
			}
			if _, exists := m.Routines[routine.Name]; exists {
				return nil, fmt.Errorf("%s: duplicate routine '%s'", filePath, routine.Name)
			}
			m.Routines[routine.Name] = routine
		case "subsystem":
			sub, err := decodeSubsystem(blk, filePath)
			if err != nil {
				return nil, err
			}
			m.Subsystems = append(m.Subsystems, sub)
		case "command", "subsystem_type":
			// Handled by loadManifests.
		default:
			return nil, fmt.Errorf("%s: unexpected top-level block '%s' at %s",
				filePath, blk.Type, blk.DefRange().String())
		}
	}

	return m, nil
}
