package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/matshell/internal/cli/output"
	"github.com/leapstack-labs/matshell/internal/registry"
	"github.com/leapstack-labs/matshell/pkg/matrix"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error
	if c.Capacity < 1 || c.Capacity > MaxCapacity {
		errs = append(errs, fmt.Errorf("capacity must be between 1 and %d, got %d", MaxCapacity, c.Capacity))
	}
	if _, err := registry.ParseMatchMode(c.NameMatch); err != nil {
		errs = append(errs, fmt.Errorf("name_match: %w", err))
	}
	if _, err := output.ParseGridStyle(c.Display); err != nil {
		errs = append(errs, fmt.Errorf("display: %w", err))
	}
	if _, err := output.ParseMode(c.OutputFormat); err != nil {
		errs = append(errs, fmt.Errorf("output: %w", err))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}
	if err := matrix.ValidateName(c.Bootstrap.Name); err != nil {
		errs = append(errs, fmt.Errorf("bootstrap.name: %w", err))
	}
	if c.Bootstrap.Low > c.Bootstrap.High {
		errs = append(errs, fmt.Errorf("bootstrap.low (%d) is greater than bootstrap.high (%d)", c.Bootstrap.Low, c.Bootstrap.High))
	}
	return errors.Join(errs...)
}

// Level returns the slog level to log at. Verbose forces debug.
func (c *Config) Level() slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	lvl, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}
	return lvl
}

func parseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelWarn, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("unknown level %q (want debug, info, warn or error)", s)
	}
	return lvl, nil
}
