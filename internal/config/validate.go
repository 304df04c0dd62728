package config

import (
	"errors"
	"fmt"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for errors and inconsistencies.
// Returns nil if valid, or an error describing the problem.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Param == "" && !cfg.PrintAgents {
		errs = append(errs, ValidationError{
			Field:   "param",
			Message: "a parameter value is required (directory passed to all agents)",
		})
	}

	if cfg.Workers < 1 {
		errs = append(errs, ValidationError{
			Field:   "workers",
			Message: "must be at least 1",
		})
	}

	if cfg.RunTimeout <= 0 {
		errs = append(errs, ValidationError{
			Field:   "timeout",
			Message: "must be positive",
		})
	}

	if cfg.TermGrace <= 0 {
		errs = append(errs, ValidationError{
			Field:   "grace",
			Message: "must be positive",
		})
	}

	if cfg.AgentsFile == "" {
		errs = append(errs, ValidationError{
			Field:   "agents",
			Message: "agents manifest path must not be empty",
		})
	}

	if cfg.OutputDir == "" {
		errs = append(errs, ValidationError{
			Field:   "output-dir",
			Message: "output directory must not be empty",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.LogFormat] {
		errs = append(errs, ValidationError{
			Field:   "log-format",
			Message: fmt.Sprintf("must be 'json' or 'text' (got %q)", cfg.LogFormat),
		})
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}
