package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/leefowlercu/compage/internal/logging"
)

// ValidationError represents a config validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation failures.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var b strings.Builder
	b.WriteString("config validation failed:\n")
	for _, err := range e {
		b.WriteString("  - ")
		b.WriteString(err.Error())
		b.WriteString("\n")
	}
	return b.String()
}

// Validate checks the configuration for errors.
// Returns ValidationErrors if validation fails.
func Validate(cfg *Config) error {
	var errs ValidationErrors

	if _, ok := logging.ParseLevel(cfg.LogLevel); !ok {
		errs = append(errs, ValidationError{
			Field:   "log_level",
			Message: fmt.Sprintf("must be one of: %s; got %q", strings.Join(logging.LevelNames, ", "), cfg.LogLevel),
		})
	}

	if cfg.ShutdownTimeout < 1 {
		errs = append(errs, ValidationError{
			Field:   "shutdown_timeout",
			Message: fmt.Sprintf("must be at least 1 second, got %d", cfg.ShutdownTimeout),
		})
	}

	// The listener settings only matter when the server is on.
	if cfg.HTTP.Enabled {
		if cfg.HTTP.Port < 1 || cfg.HTTP.Port > 65535 {
			errs = append(errs, ValidationError{
				Field:   "http.port",
				Message: fmt.Sprintf("must be between 1 and 65535, got %d", cfg.HTTP.Port),
			})
		}

		if cfg.HTTP.Bind == "" {
			errs = append(errs, ValidationError{
				Field:   "http.bind",
				Message: "must not be empty",
			})
		} else if cfg.HTTP.Bind != "localhost" && net.ParseIP(cfg.HTTP.Bind) == nil {
			errs = append(errs, ValidationError{
				Field:   "http.bind",
				Message: fmt.Sprintf("must be an IP address or localhost, got %q", cfg.HTTP.Bind),
			})
		}
	}

	if cfg.Metrics.CollectionInterval < 1 {
		errs = append(errs, ValidationError{
			Field:   "metrics.collection_interval",
			Message: fmt.Sprintf("must be at least 1 second, got %d", cfg.Metrics.CollectionInterval),
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	var ve ValidationError
	var ves ValidationErrors
	return errors.As(err, &ve) || errors.As(err, &ves)
}
