package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestNew_Defaults(t *testing.T) {
	cfg := New()
	if cfg.HorizonSeconds != 9000 || cfg.IntensityWidth != 300 || cfg.SpreadWidth != 120 {
		t.Errorf("unexpected binning defaults: %+v", cfg)
	}
	if cfg.BallObjectID != 55 {
		t.Errorf("expected ball sentinel 55, got %d", cfg.BallObjectID)
	}
	if cfg.Workers != runtime.NumCPU() {
		t.Errorf("expected workers = NumCPU, got %d", cfg.Workers)
	}
	if cfg.ActionsPath() != "actions.csv" || cfg.SpreadPath() != "spread.csv" {
		t.Errorf("unexpected artifact paths %s, %s", cfg.ActionsPath(), cfg.SpreadPath())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"zero horizon":    func(c *Config) { c.HorizonSeconds = 0 },
		"zero intensity":  func(c *Config) { c.IntensityWidth = 0 },
		"negative spread": func(c *Config) { c.SpreadWidth = -1 },
		"no workers":      func(c *Config) { c.Workers = 0 },
		"no db":           func(c *Config) { c.DBPath = "" },
		"same artifacts":  func(c *Config) { c.SpreadFile = c.ActionsFile },
		"bad log format":  func(c *Config) { c.LogFormat = "xml" },
	}
	for name, mutate := range cases {
		cfg := New()
		mutate(cfg)
		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", name, err)
		}
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pitchmetrics.yaml")
	yaml := "spread_width: 60\nintensity_width: 600\noutput_dir: out\nball_object_id: 99\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PITCHMETRICS_INTENSITY_WIDTH", "900")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SpreadWidth != 60 {
		t.Errorf("file value not applied: spread_width=%d", cfg.SpreadWidth)
	}
	if cfg.IntensityWidth != 900 {
		t.Errorf("env should override file: intensity_width=%d", cfg.IntensityWidth)
	}
	if cfg.BallObjectID != 99 {
		t.Errorf("ball_object_id=%d", cfg.BallObjectID)
	}
	if cfg.HorizonSeconds != 9000 {
		t.Errorf("unset keys keep defaults: horizon=%d", cfg.HorizonSeconds)
	}
	if cfg.ActionsPath() != filepath.Join("out", "actions.csv") {
		t.Errorf("unexpected actions path %s", cfg.ActionsPath())
	}
}

func TestLoad_ConfigFromEnvPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	os.WriteFile(path, []byte("horizon_seconds: 10800\n"), 0644)
	t.Setenv("PITCHMETRICS_CONFIG", path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HorizonSeconds != 10800 {
		t.Errorf("expected horizon from PITCHMETRICS_CONFIG file, got %d", cfg.HorizonSeconds)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, ErrLoadConfig) {
		t.Errorf("expected ErrLoadConfig, got %v", err)
	}
}
