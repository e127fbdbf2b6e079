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

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	var errors ValidationErrors

	errors = append(errors, c.validateCatalog()...)
	errors = append(errors, c.validateUsage()...)
	errors = append(errors, c.validateDiff()...)
	errors = append(errors, c.validateReport()...)
	errors = append(errors, c.validateProgress()...)
	errors = append(errors, c.validateLogging()...)

	if len(errors) > 0 {
		return errors
	}
	return nil
}

// ValidateCatalog checks only the catalog connection settings. Commands that
// never touch the usage data or the report (e.g. listing groups) use this.
func (c *Config) ValidateCatalog() error {
	if errs := c.validateCatalog(); len(errs) > 0 {
		return errs
	}
	return nil
}

func (c *Config) validateCatalog() ValidationErrors {
	var errors ValidationErrors
	db := &c.Catalog.DatabaseConfig

	validDrivers := map[string]bool{"mysql": true, "postgres": true}
	if !validDrivers[db.Driver] {
		errors = append(errors, ValidationError{
			Field:   "catalog.driver",
			Message: "driver must be 'mysql' or 'postgres'",
		})
	}

	if db.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "catalog.host",
			Message: "host is required",
		})
	}

	if db.Port <= 0 || db.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "catalog.port",
			Message: "port must be between 1 and 65535",
		})
	}

	if db.User == "" {
		errors = append(errors, ValidationError{
			Field:   "catalog.user",
			Message: "user is required",
		})
	}

	if db.Database == "" {
		errors = append(errors, ValidationError{
			Field:   "catalog.database",
			Message: "database name is required",
		})
	}

	validTLS := map[string]bool{"disable": true, "preferred": true, "required": true, "": true}
	if !validTLS[db.TLS] {
		errors = append(errors, ValidationError{
			Field:   "catalog.tls",
			Message: "tls must be 'disable', 'preferred', or 'required'",
		})
	}

	if db.MaxConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   "catalog.max_connections",
			Message: "max_connections cannot be negative",
		})
	}

	if db.MaxIdleConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   "catalog.max_idle_connections",
			Message: "max_idle_connections cannot be negative",
		})
	}

	if db.ConnectAttempts < 1 || db.ConnectAttempts > 10 {
		errors = append(errors, ValidationError{
			Field:   "catalog.connect_attempts",
			Message: "connect_attempts must be between 1 and 10",
		})
	}

	tables := []struct{ field, name string }{
		{"catalog.tables.assembly_groups", c.Catalog.Tables.AssemblyGroups},
		{"catalog.tables.apis", c.Catalog.Tables.APIs},
		{"catalog.tables.containment", c.Catalog.Tables.Containment},
	}
	for _, t := range tables {
		if t.name == "" {
			errors = append(errors, ValidationError{
				Field:   t.field,
				Message: "table name is required",
			})
		}
	}

	if c.Catalog.NameCacheSize <= 0 {
		errors = append(errors, ValidationError{
			Field:   "catalog.name_cache_size",
			Message: "name_cache_size must be positive",
		})
	}

	return errors
}

func (c *Config) validateUsage() ValidationErrors {
	var errors ValidationErrors

	if c.Usage.Path == "" {
		errors = append(errors, ValidationError{
			Field:   "usage.path",
			Message: "path is required",
		})
	}

	validCompression := map[string]bool{"auto": true, "none": true, "gzip": true, "zstd": true, "": true}
	if !validCompression[c.Usage.Compression] {
		errors = append(errors, ValidationError{
			Field:   "usage.compression",
			Message: "compression must be 'auto', 'none', 'gzip', or 'zstd'",
		})
	}

	return errors
}

func (c *Config) validateDiff() ValidationErrors {
	var errors ValidationErrors

	if c.Diff.Before == "" {
		errors = append(errors, ValidationError{
			Field:   "diff.before",
			Message: "area path of the earlier platform is required",
		})
	}

	if c.Diff.After == "" {
		errors = append(errors, ValidationError{
			Field:   "diff.after",
			Message: "area path of the later platform is required",
		})
	}

	if c.Diff.Before != "" && c.Diff.Before == c.Diff.After {
		errors = append(errors, ValidationError{
			Field:   "diff.after",
			Message: "must differ from diff.before",
		})
	}

	return errors
}

func (c *Config) validateReport() ValidationErrors {
	var errors ValidationErrors

	if c.Report.Output == "" {
		errors = append(errors, ValidationError{
			Field:   "report.output",
			Message: "output path is required",
		})
	}

	validVerify := map[string]bool{"count": true, "sha256": true, "skip": true, "": true}
	if !validVerify[c.Report.Verify] {
		errors = append(errors, ValidationError{
			Field:   "report.verify",
			Message: "verify must be 'count', 'sha256', or 'skip'",
		})
	}

	return errors
}

func (c *Config) validateProgress() ValidationErrors {
	var errors ValidationErrors

	validModes := map[string]bool{"auto": true, "always": true, "never": true, "": true}
	if !validModes[c.Progress.Mode] {
		errors = append(errors, ValidationError{
			Field:   "progress.mode",
			Message: "mode must be 'auto', 'always', or 'never'",
		})
	}

	if c.Progress.Interval < 0 {
		errors = append(errors, ValidationError{
			Field:   "progress.interval",
			Message: "interval cannot be negative",
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

	if c.Logging.Rotation.MaxSize < 0 || c.Logging.Rotation.MaxBackups < 0 || c.Logging.Rotation.MaxAge < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.rotation",
			Message: "rotation limits cannot be negative",
		})
	}

	return errors
}
