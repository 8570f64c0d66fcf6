package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/frc-5160-the-chargers/gocommand/internal/ctxlog"
	"github.com/frc-5160-the-chargers/gocommand/internal/model"
	"github.com/frc-5160-the-chargers/gocommand/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	model    *model.Model
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// Startup errors are programmer or configuration errors and panic.
func NewApp(outW io.Writer, cfg *Config, loader model.Loader, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	var configPaths []string
	if cfg.RoutinePath != "" {
		configPaths = append(configPaths, cfg.RoutinePath)
	}
	if cfg.ModulesPath != "" {
		configPaths = append(configPaths, cfg.ModulesPath)
	}

	m, err := loader.Load(ctx, configPaths...)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded into unified model.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	if err := reg.PopulateDefinitionsFromModel(m); err != nil {
		panic(err)
	}
	logger.Debug("Registry definitions populated from config model.")

	if err := reg.Validate(ctx); err != nil {
		panic(err)
	}

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		model:    m,
	}
}

// Registry returns the application's registry. This is primarily for
// testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Model returns the loaded configuration model. Primarily for testing.
func (a *App) Model() *model.Model {
	return a.model
}
