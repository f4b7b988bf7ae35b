package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// SupportedDrivers lists the SQL drivers a table can be read through.
var SupportedDrivers = []string{"mysql", "postgres", "sqlite", "sqlserver"}

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	var errors ValidationErrors

	errors = append(errors, c.validateSource()...)
	errors = append(errors, c.validateScan()...)
	errors = append(errors, c.validateOutput()...)
	errors = append(errors, c.validateLogging()...)

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func (c *Config) validateSource() ValidationErrors {
	var errors ValidationErrors
	src := &c.Source

	switch src.Kind {
	case SourceFile, "":
		if src.Path == "" {
			errors = append(errors, ValidationError{
				Field:   "source.path",
				Message: "path is required for file sources",
			})
		}
	case SourceSQL:
		if !isSupportedDriver(src.Driver) {
			errors = append(errors, ValidationError{
				Field:   "source.driver",
				Message: fmt.Sprintf("driver must be one of %s", strings.Join(SupportedDrivers, ", ")),
			})
		}
		if src.DSN == "" && src.Driver != "mysql" {
			errors = append(errors, ValidationError{
				Field:   "source.dsn",
				Message: "dsn is required for driver " + src.Driver,
			})
		}
		if src.DSN == "" && src.Driver == "mysql" {
			if src.Host == "" {
				errors = append(errors, ValidationError{
					Field:   "source.host",
					Message: "host is required when dsn is not set",
				})
			}
			if src.Port <= 0 || src.Port > 65535 {
				errors = append(errors, ValidationError{
					Field:   "source.port",
					Message: "port must be between 1 and 65535",
				})
			}
			if src.User == "" {
				errors = append(errors, ValidationError{
					Field:   "source.user",
					Message: "user is required when dsn is not set",
				})
			}
		}
		validTLS := map[string]bool{"disable": true, "preferred": true, "required": true, "": true}
		if !validTLS[src.TLS] {
			errors = append(errors, ValidationError{
				Field:   "source.tls",
				Message: "tls must be 'disable', 'preferred', or 'required'",
			})
		}
	default:
		errors = append(errors, ValidationError{
			Field:   "source.kind",
			Message: "kind must be 'file' or 'sql'",
		})
	}

	if len([]rune(src.Delimiter)) > 1 {
		errors = append(errors, ValidationError{
			Field:   "source.delimiter",
			Message: "delimiter must be a single character",
		})
	}

	return errors
}

func isSupportedDriver(driver string) bool {
	for _, d := range SupportedDrivers {
		if d == driver {
			return true
		}
	}
	return false
}

func (c *Config) validateScan() ValidationErrors {
	var errors ValidationErrors

	if c.Scan.MaxColumns < 1 {
		errors = append(errors, ValidationError{
			Field:   "scan.max_columns",
			Message: "max_columns must be at least 1",
		})
	}

	if p := c.Scan.PrecisionRatio(); p > 1 {
		errors = append(errors, ValidationError{
			Field:   "scan.precision",
			Message: "precision must be a percentage between 0 and 100",
		})
	}

	if c.Scan.Sort < 1 || c.Scan.Sort > 3 {
		errors = append(errors, ValidationError{
			Field:   "scan.sort",
			Message: "sort must be 1, 2 or 3",
		})
	}

	if c.Scan.Workers < 0 {
		errors = append(errors, ValidationError{
			Field:   "scan.workers",
			Message: "workers cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateOutput() ValidationErrors {
	var errors ValidationErrors

	validFormats := map[string]bool{"text": true, "json": true, "yaml": true, "": true}
	if !validFormats[c.Output.Format] {
		errors = append(errors, ValidationError{
			Field:   "output.format",
			Message: "format must be 'text', 'json', or 'yaml'",
		})
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}
	if !validLevels[c.Logging.Level] {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: "level must be 'debug', 'info', 'warn', or 'error'",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "": true}
	if !validFormats[c.Logging.Format] {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: "format must be 'json' or 'text'",
		})
	}

	return errors
}
