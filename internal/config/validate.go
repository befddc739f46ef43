package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig tags all configuration validation failures.
var ErrInvalidConfig = errors.New("invalid configuration")

// Validate checks bounds and enum fields. Required fields that may arrive via
// CLI flags (root, language codes) are checked later by ValidateForRun.
func (c *Config) Validate() error {
	if c.Run.Workers < MinWorkers || c.Run.Workers > MaxWorkers {
		return fmt.Errorf("%w: workers must be between %d and %d, got %d",
			ErrInvalidConfig, MinWorkers, MaxWorkers, c.Run.Workers)
	}
	if c.Mux.ProbeTimeoutSeconds <= 0 {
		return fmt.Errorf("%w: probe_timeout must be positive, got %d", ErrInvalidConfig, c.Mux.ProbeTimeoutSeconds)
	}
	if c.Mux.MergeTimeoutSeconds <= 0 {
		return fmt.Errorf("%w: merge_timeout must be positive, got %d", ErrInvalidConfig, c.Mux.MergeTimeoutSeconds)
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("%w: logging format must be console or json, got %q", ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}

// ValidateForRun checks the fields the merge pipeline requires after flags
// have been merged in.
func (c *Config) ValidateForRun() error {
	if c.Paths.Root == "" {
		return fmt.Errorf("%w: root directory is required (--root or [paths] root)", ErrInvalidConfig)
	}
	if c.Languages.Check == "" {
		return fmt.Errorf("%w: check language is required (--check-lang or [languages] check)", ErrInvalidConfig)
	}
	if c.Languages.Set == "" {
		return fmt.Errorf("%w: set language is required (--set-lang or [languages] set)", ErrInvalidConfig)
	}
	return c.Validate()
}
