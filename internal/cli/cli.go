package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/frc-5160-the-chargers/gocommand/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config, a
// boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("gocommand", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
gocommand - A declarative command scheduler for cooperative robotics routines.

Usage:
  gocommand [options] [ROUTINE_PATH]

Arguments:
  ROUTINE_PATH
    Path to a single .hcl file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	routineFlag := flagSet.String("routines", "", "Path to the routine file or directory.")
	rFlag := flagSet.String("r", "", "Path to the routine file or directory (shorthand).")
	routineNameFlag := flagSet.String("routine", "", "Name of the routine to run. Empty runs every routine.")
	tickFlag := flagSet.String("tick-period", "20ms", "Scheduler tick period as a duration string.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	modulesPathFlag := flagSet.String("modules-path", "", "Path to a directory with additional manifest definitions.")
	telemetryFlag := flagSet.String("telemetry-url", "", "socket.io endpoint for scheduler telemetry. Empty is disabled.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *routineFlag != "" {
		path = *routineFlag
	} else if *rFlag != "" {
		path = *rFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Routine path determined.", "path", path)

	if path == "" {
		slog.Debug("No routine path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	tickPeriod, err := time.ParseDuration(*tickFlag)
	if err != nil || tickPeriod <= 0 {
		return nil, false, &ExitError{Code: 2, Message: "invalid tick-period: must be a positive duration like '20ms'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		RoutinePath:     path,
		ModulesPath:     *modulesPathFlag,
		RoutineName:     *routineNameFlag,
		TickPeriod:      tickPeriod,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		TelemetryURL:    *telemetryFlag,
		HealthcheckPort: *healthPortFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
