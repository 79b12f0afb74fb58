// Package config defines the analysis configuration and how it is layered
// from defaults, an optional YAML file, and PITCHMETRICS_* environment variables.
package config

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// DBPath is the SQLite database holding spatial_fact.
	DBPath string `koanf:"db_path"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is json or console.
	LogFormat string `koanf:"log_format"`

	// HorizonSeconds is the largest classifiable timestamp. It must exceed the
	// latest timestamp in the data; a run aborts when it does not.
	HorizonSeconds int `koanf:"horizon_seconds"`

	// IntensityWidth and SpreadWidth are the bin widths in seconds of the two
	// profiles. They are independent of each other.
	IntensityWidth int `koanf:"intensity_width"`
	SpreadWidth    int `koanf:"spread_width"`

	// BallObjectID is the trackable object excluded from spread.
	BallObjectID int64 `koanf:"ball_object_id"`

	// Workers bounds the spread computation fan-out.
	Workers int `koanf:"workers"`

	OutputDir   string `koanf:"output_dir"`
	ActionsFile string `koanf:"actions_file"`
	SpreadFile  string `koanf:"spread_file"`

	// MetricsFile, when set, receives a Prometheus textfile of run metrics.
	MetricsFile string `koanf:"metrics_file"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		DBPath:         "pitchmetrics.db",
		LogLevel:       "info",
		LogFormat:      "console",
		HorizonSeconds: 9000,
		IntensityWidth: 300,
		SpreadWidth:    120,
		BallObjectID:   55,
		Workers:        runtime.NumCPU(),
		OutputDir:      ".",
		ActionsFile:    "actions.csv",
		SpreadFile:     "spread.csv",
	}
}

// Validate checks value ranges. Errors wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.HorizonSeconds < 1:
		return fmt.Errorf("%w: horizon_seconds must be >= 1, got %d", ErrInvalidConfig, c.HorizonSeconds)
	case c.IntensityWidth < 1:
		return fmt.Errorf("%w: intensity_width must be >= 1, got %d", ErrInvalidConfig, c.IntensityWidth)
	case c.SpreadWidth < 1:
		return fmt.Errorf("%w: spread_width must be >= 1, got %d", ErrInvalidConfig, c.SpreadWidth)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be >= 1, got %d", ErrInvalidConfig, c.Workers)
	case c.DBPath == "":
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	case c.ActionsFile == "" || c.SpreadFile == "":
		return fmt.Errorf("%w: actions_file and spread_file must not be empty", ErrInvalidConfig)
	case c.ActionsFile == c.SpreadFile:
		return fmt.Errorf("%w: actions_file and spread_file must differ", ErrInvalidConfig)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("%w: log_format must be json or console, got %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}

// ActionsPath is the full path of the intensity artifact.
func (c *Config) ActionsPath() string { return filepath.Join(c.OutputDir, c.ActionsFile) }

// SpreadPath is the full path of the spread artifact.
func (c *Config) SpreadPath() string { return filepath.Join(c.OutputDir, c.SpreadFile) }
