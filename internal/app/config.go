package app

import (
	"errors"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	RoutinePath string // hcl files with routines and subsystems
	ModulesPath string // hcl files with additional manifests
	RoutineName string // routine to run; empty means every routine in order

	TickPeriod      time.Duration
	LogFormat       string
	LogLevel        string
	TelemetryURL    string
	HealthcheckPort int
}

// DefaultTickPeriod is the scheduler period used when none is configured.
const DefaultTickPeriod = 20 * time.Millisecond

// NewConfig validates a Config and fills defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.RoutinePath == "" {
		return nil, errors.New("RoutinePath is a required configuration field and cannot be empty")
	}
	if cfg.TickPeriod <= 0 {
		cfg.TickPeriod = DefaultTickPeriod
	}
	return &cfg, nil
}
