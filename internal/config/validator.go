package config

import (
	"fmt"
	"strings"

	"github.com/platinenmacher/pio-helpers/internal/buildinfo"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	messages := make([]string, 0, len(e))
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	var errs ValidationErrors

	// git accepts --abbrev=4..40
	if c.Version.Abbrev < 4 || c.Version.Abbrev > 40 {
		errs = append(errs, ValidationError{
			Field:   "version.abbrev",
			Message: fmt.Sprintf("must be between 4 and 40, got %d", c.Version.Abbrev),
		})
	}

	if !c.knownFormat(c.Version.Format) {
		errs = append(errs, ValidationError{
			Field:   "version.format",
			Message: fmt.Sprintf("unknown format %q", c.Version.Format),
		})
	}

	for name, content := range c.Version.Formats {
		if strings.TrimSpace(content) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("version.formats.%s", name),
				Message: "template cannot be empty",
			})
		}
	}

	if strings.ContainsAny(c.Version.Define, " \t'\"=") {
		errs = append(errs, ValidationError{
			Field:   "version.define",
			Message: fmt.Sprintf("invalid macro name %q", c.Version.Define),
		})
	}

	if len(c.Filter.Command) > 0 && strings.TrimSpace(c.Filter.Command[0]) == "" {
		errs = append(errs, ValidationError{
			Field:   "filter.command",
			Message: "command name cannot be empty",
		})
	}

	errs = append(errs, validateLogConfig(&c.Logging)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// knownFormat reports whether name is a built-in or configured format.
func (c *Config) knownFormat(name string) bool {
	switch name {
	case buildinfo.FormatDefine, buildinfo.FormatPlain, buildinfo.FormatLDFlags:
		return true
	}
	_, ok := c.Version.Formats[name]
	return ok
}

// validateLogConfig validates logging configuration
func validateLogConfig(cfg *LogConfig) ValidationErrors {
	var errs ValidationErrors

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(cfg.Level)] {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", cfg.Level),
		})
	}

	switch strings.ToLower(cfg.Format) {
	case "text", "json":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid log format: %s (must be text or json)", cfg.Format),
		})
	}

	switch strings.ToLower(cfg.Color) {
	case "auto", "always", "never":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.color",
			Message: fmt.Sprintf("invalid color mode: %s (must be auto, always, or never)", cfg.Color),
		})
	}

	return errs
}
