package config

import (
	"fmt"
	"time"

	"github.com/sdejongh/syncreplica/pkg/models"
	"github.com/sdejongh/syncreplica/pkg/ratelimit"
)

// Config represents the application configuration
type Config struct {
	Sync        SyncConfig        `yaml:"sync"`
	Performance PerformanceConfig `yaml:"performance"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
	Exclude     []string          `yaml:"exclude"`
}

// SyncConfig holds sync-related settings
type SyncConfig struct {
	Source          string `yaml:"source"`
	Replica         string `yaml:"replica"`
	IntervalSeconds int    `yaml:"interval_seconds"`
	ExitOnError     bool   `yaml:"exit_on_error"`
}

// Interval returns the polling interval as a duration
func (s SyncConfig) Interval() time.Duration {
	return time.Duration(s.IntervalSeconds) * time.Second
}

// PerformanceConfig holds performance-related settings
type PerformanceConfig struct {
	BufferSize     int    `yaml:"buffer_size"`
	BandwidthLimit string `yaml:"bandwidth_limit"` // e.g. "10MB", "512KiB"; empty or "0" = unlimited
}

// BandwidthBytes returns the bandwidth limit in bytes per second
func (p PerformanceConfig) BandwidthBytes() (int64, error) {
	return ratelimit.ParseLimit(p.BandwidthLimit)
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format string `yaml:"format"` // "human" or "json"
	Quiet  bool   `yaml:"quiet"`  // Suppress non-error output
	Color  bool   `yaml:"color"`  // Colorize console output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Format     string `yaml:"format"`      // "json" or "text"
	Level      string `yaml:"level"`       // "debug", "info", "warn", "error"
	File       string `yaml:"file"`        // Log file path (empty = console only)
	MaxSize    int64  `yaml:"max_size"`    // Rotate after this many MB
	MaxBackups int    `yaml:"max_backups"` // Rotated files to keep
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Sync: SyncConfig{
			IntervalSeconds: 60,
			ExitOnError:     false,
		},
		Performance: PerformanceConfig{
			BufferSize:     65536,
			BandwidthLimit: "",
		},
		Output: OutputConfig{
			Format: "human",
			Quiet:  false,
			Color:  true,
		},
		Logging: LoggingConfig{
			Format:     "text",
			Level:      "info",
			File:       "",
			MaxSize:    10,
			MaxBackups: 5,
		},
		Exclude: []string{},
	}
}

// Validate checks if the configuration is valid. Source and replica are
// checked by the command that uses them.
func (c *Config) Validate() error {
	if c.Sync.IntervalSeconds < 1 {
		return &models.ValidationError{
			Field:   "sync.interval_seconds",
			Message: "must be at least 1",
		}
	}

	if c.Performance.BufferSize < 1024 {
		return &models.ValidationError{
			Field:   "performance.buffer_size",
			Message: "must be at least 1024 bytes",
		}
	}

	if _, err := c.Performance.BandwidthBytes(); err != nil {
		return &models.ValidationError{
			Field:   "performance.bandwidth_limit",
			Message: err.Error(),
		}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	if c.Logging.MaxSize < 1 {
		return &models.ValidationError{
			Field:   "logging.max_size",
			Message: "must be at least 1 MB",
		}
	}

	if c.Logging.MaxBackups < 0 {
		return &models.ValidationError{
			Field:   "logging.max_backups",
			Message: fmt.Sprintf("must not be negative, got %d", c.Logging.MaxBackups),
		}
	}

	return nil
}
