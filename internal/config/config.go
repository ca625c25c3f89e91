// Package config defines service configuration and how it is loaded.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Store drivers accepted by Validate.
var storeDrivers = map[string]bool{"memory": true, "sqlite": true, "postgres": true}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFile, when set, also writes logs to a rotating file.
	LogFile       string `koanf:"log_file"`
	LogMaxSizeMB  int    `koanf:"log_max_size_mb"`
	LogMaxBackups int    `koanf:"log_max_backups"`
	LogMaxAgeDays int    `koanf:"log_max_age_days"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreDriver is one of memory, sqlite or postgres.
	StoreDriver string `koanf:"store_driver"`
	StoreDSN    string `koanf:"store_dsn"`

	// SettingsPath points at the user settings YAML (theme, auto save).
	SettingsPath string `koanf:"settings_path"`

	// ExportDir receives files written by export jobs.
	ExportDir       string `koanf:"export_dir"`
	ExportQueueSize int    `koanf:"export_queue_size"`
	ExportWorkers   int    `koanf:"export_workers"`

	// DedupeSize bounds how many export job ids are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	ChartWidth       int     `koanf:"chart_width"`
	ChartDPR         float64 `koanf:"chart_dpr"`
	ChartZoom        float64 `koanf:"chart_zoom"`
	ChartAnimationMS int     `koanf:"chart_animation_ms"`
	FrameIntervalMS  int     `koanf:"frame_interval_ms"`
}

// New returns a Config filled with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:         "info",
		LogMaxSizeMB:     50,
		LogMaxBackups:    3,
		LogMaxAgeDays:    28,
		Addr:             ":9080",
		StoreDriver:      "memory",
		SettingsPath:     "settings.yaml",
		ExportDir:        "exports",
		ExportQueueSize:  256,
		ExportWorkers:    runtime.NumCPU(),
		DedupeSize:       50_000,
		ChartWidth:       600,
		ChartDPR:         1,
		ChartZoom:        1,
		ChartAnimationMS: 500,
		FrameIntervalMS:  16,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case !storeDrivers[strings.ToLower(c.StoreDriver)]:
		return fmt.Errorf("%w: store_driver %q", ErrInvalidConfig, c.StoreDriver)
	case c.StoreDriver != "memory" && strings.TrimSpace(c.StoreDSN) == "":
		return fmt.Errorf("%w: store_dsn is required for %s", ErrInvalidConfig, c.StoreDriver)
	case c.ChartZoom < 0.5 || c.ChartZoom > 2:
		return fmt.Errorf("%w: chart_zoom %v outside [0.5, 2]", ErrInvalidConfig, c.ChartZoom)
	case c.ChartDPR <= 0:
		return fmt.Errorf("%w: chart_dpr must be positive", ErrInvalidConfig)
	case c.ExportQueueSize < 1:
		return fmt.Errorf("%w: export_queue_size must be positive", ErrInvalidConfig)
	}
	return nil
}

// ChartAnimation returns the full-transition duration.
func (c *Config) ChartAnimation() time.Duration {
	return time.Duration(c.ChartAnimationMS) * time.Millisecond
}

// FrameInterval returns the scheduler tick used by the live chart.
func (c *Config) FrameInterval() time.Duration {
	return time.Duration(c.FrameIntervalMS) * time.Millisecond
}
