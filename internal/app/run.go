package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/frc-5160-the-chargers/gocommand/internal/assembler"
	"github.com/frc-5160-the-chargers/gocommand/internal/command"
	"github.com/frc-5160-the-chargers/gocommand/internal/ctxlog"
	"github.com/frc-5160-the-chargers/gocommand/internal/scheduler"
	"github.com/frc-5160-the-chargers/gocommand/internal/telemetry"
)

// Run executes the configured routines on a freshly assembled scheduler.
func (a *App) Run(ctx context.Context, cfg *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if cfg.HealthcheckPort > 0 {
		go a.startHealthcheckServer(cfg.HealthcheckPort)
	}

	asm := assembler.New(a.registry)
	if err := asm.CreateSubsystems(ctx, a.model); err != nil {
		return fmt.Errorf("failed to create subsystems: %w", err)
	}
	defer asm.DestroySubsystems(ctx)

	sched := scheduler.New()
	sched.RegisterSubsystem(asm.Subsystems()...)
	for _, sub := range asm.Subsystems() {
		provider, ok := sub.(scheduler.DefaultCommandProvider)
		if !ok {
			continue
		}
		if err := sched.SetDefaultCommand(sub, provider.DefaultCommand()); err != nil {
			return fmt.Errorf("failed to attach default command for subsystem '%s': %w", sub.Name(), err)
		}
		a.logger.Debug("Default command attached.", "subsystem", sub.Name())
	}

	// Telemetry is best-effort: a dashboard outage must not stop routines.
	publisher, err := telemetry.Connect(ctx, cfg.TelemetryURL)
	if err != nil {
		a.logger.Warn("Telemetry unavailable, continuing without it.", "error", err)
		publisher = nil
	}
	defer publisher.Close()
	publisher.Attach(sched)

	routineNames, err := a.selectRoutines(cfg.RoutineName)
	if err != nil {
		return err
	}
	if len(routineNames) == 0 {
		a.logger.Warn("No routines found, nothing to run.")
		return nil
	}

	for _, name := range routineNames {
		if err := a.runRoutine(ctx, cfg, sched, asm, publisher, name); err != nil {
			return err
		}
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// selectRoutines resolves which routines to run. An explicit name must
// exist; otherwise every loaded routine runs in name order.
func (a *App) selectRoutines(name string) ([]string, error) {
	if name != "" {
		if _, ok := a.model.Routines[name]; !ok {
			return nil, fmt.Errorf("routine '%s' not found", name)
		}
		return []string{name}, nil
	}
	names := make([]string, 0, len(a.model.Routines))
	for n := range a.model.Routines {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

// runRoutine assembles one routine, schedules it, and ticks the scheduler
// until it finishes.
func (a *App) runRoutine(ctx context.Context, cfg *Config, sched *scheduler.Scheduler, asm *assembler.Assembler, publisher *telemetry.Publisher, name string) error {
	routine := a.model.Routines[name]
	cmd, err := asm.AssembleRoutine(ctx, routine)
	if err != nil {
		return err
	}
	cmd = command.Logged(cmd)

	a.logger.Info("🚀 Starting routine.", "routine", name)
	start := time.Now()

	sched.Schedule(ctx, cmd)
	err = sched.RunLoop(ctx, cfg.TickPeriod, func() bool {
		return !sched.IsScheduled(cmd)
	})
	if err != nil {
		return fmt.Errorf("routine '%s' aborted: %w", name, err)
	}

	elapsed := time.Since(start)
	publisher.RoutineCompleted(name, elapsed)
	a.logger.Info("🏁 Routine finished.", "routine", name, "elapsed", elapsed)
	return nil
}
