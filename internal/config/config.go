// Package config loads the pio-helpers configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/platinenmacher/pio-helpers/internal/buildinfo"
	"github.com/platinenmacher/pio-helpers/internal/monitor"
	"github.com/platinenmacher/pio-helpers/internal/vcs"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = ".pio-helpers.yml"

// Config represents the complete configuration.
type Config struct {
	Version VersionConfig `yaml:"version"`
	Filter  FilterConfig  `yaml:"filter"`
	Logging LogConfig     `yaml:"logging"`
}

// VersionConfig configures the git-version command.
type VersionConfig struct {
	GitBinary string            `yaml:"git_binary"`
	Dir       string            `yaml:"dir"`
	Abbrev    int               `yaml:"abbrev"`
	Dirty     *bool             `yaml:"dirty"` // Pointer to distinguish unset from false
	Always    *bool             `yaml:"always"`
	Tags      *bool             `yaml:"tags"`
	Format    string            `yaml:"format"`
	Define    string            `yaml:"define"`
	Package   string            `yaml:"package"`
	Formats   map[string]string `yaml:"formats"` // Extra named format templates
}

// FilterConfig configures the filter command.
type FilterConfig struct {
	File     string   `yaml:"file"`
	Patterns []string `yaml:"patterns"` // Appended after the file's patterns
	Command  []string `yaml:"command"`  // Host monitor command, stdin when empty
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Color  string `yaml:"color"`
}

// Default configuration values
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
	DefaultLogColor  = "auto"
)

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads and parses a config file from the given path. The result is not
// validated; callers apply their overrides first and then call Validate.
func Load(path string) (*Config, error) {
	// Path is from command-line argument
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyDefaults(&cfg)
	MergeWithEnvironment(&cfg)

	return &cfg, nil
}

// LoadOrDefault loads the config at path. When optional is set and the file
// does not exist, the built-in configuration is returned instead.
func LoadOrDefault(path string, optional bool) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if !optional || !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	cfg = Default()
	MergeWithEnvironment(cfg)
	return cfg, nil
}

// MergeWithEnvironment merges environment variables into configuration
func MergeWithEnvironment(cfg *Config) {
	if git := os.Getenv("PIO_HELPERS_GIT"); git != "" {
		cfg.Version.GitBinary = git
	}
	if file := os.Getenv("PIO_HELPERS_FILTER_FILE"); file != "" {
		cfg.Filter.File = file
	}
	if level := os.Getenv("PIO_HELPERS_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = strings.ToLower(level)
	}
}

// applyDefaults applies default values to missing config fields
func applyDefaults(cfg *Config) {
	defaults := vcs.DefaultDescribeOptions()

	if cfg.Version.GitBinary == "" {
		cfg.Version.GitBinary = vcs.DefaultBinary
	}
	if cfg.Version.Abbrev == 0 {
		cfg.Version.Abbrev = defaults.Abbrev
	}
	if cfg.Version.Dirty == nil {
		cfg.Version.Dirty = boolPtr(defaults.Dirty)
	}
	if cfg.Version.Always == nil {
		cfg.Version.Always = boolPtr(defaults.Always)
	}
	if cfg.Version.Tags == nil {
		cfg.Version.Tags = boolPtr(defaults.Tags)
	}
	if cfg.Version.Format == "" {
		cfg.Version.Format = buildinfo.FormatDefine
	}
	if cfg.Version.Define == "" {
		cfg.Version.Define = buildinfo.DefaultDefine
	}

	if cfg.Filter.File == "" {
		cfg.Filter.File = monitor.DefaultFilterFile
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
	if cfg.Logging.Color == "" {
		cfg.Logging.Color = DefaultLogColor
	}
}

// DescribeOptions returns the git describe flags selected by the configuration.
func (v VersionConfig) DescribeOptions() vcs.DescribeOptions {
	opts := vcs.DescribeOptions{Abbrev: v.Abbrev}
	if v.Dirty != nil {
		opts.Dirty = *v.Dirty
	}
	if v.Always != nil {
		opts.Always = *v.Always
	}
	if v.Tags != nil {
		opts.Tags = *v.Tags
	}
	return opts
}

func boolPtr(b bool) *bool {
	return &b
}
