package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/platinenmacher/pio-helpers/internal/vcs"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultPath)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Version.GitBinary != "git" {
		t.Errorf("GitBinary = %q, want git", cfg.Version.GitBinary)
	}
	if cfg.Version.Format != "define" || cfg.Version.Define != "GIT_HASH" {
		t.Errorf("Format/Define = %q/%q, want define/GIT_HASH", cfg.Version.Format, cfg.Version.Define)
	}
	if cfg.Filter.File != "monitor.filter" {
		t.Errorf("Filter.File = %q, want monitor.filter", cfg.Filter.File)
	}
	if got, want := cfg.Version.DescribeOptions(), vcs.DefaultDescribeOptions(); got != want {
		t.Errorf("DescribeOptions() = %+v, want %+v", got, want)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
version:
  abbrev: 10
  dirty: false
  format: header
  formats:
    header: '#define {{.Define}} "{{.Revision}}"'
filter:
  file: logs/esp32.filter
  patterns:
    - "E (*"
  command: [pio, device, monitor]
logging:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	opts := cfg.Version.DescribeOptions()
	want := vcs.DescribeOptions{Abbrev: 10, Dirty: false, Always: true, Tags: true}
	if opts != want {
		t.Errorf("DescribeOptions() = %+v, want %+v", opts, want)
	}
	if cfg.Version.Format != "header" {
		t.Errorf("Format = %q, want header", cfg.Version.Format)
	}
	if cfg.Filter.File != "logs/esp32.filter" {
		t.Errorf("Filter.File = %q", cfg.Filter.File)
	}
	if !reflect.DeepEqual(cfg.Filter.Patterns, []string{"E (*"}) {
		t.Errorf("Filter.Patterns = %v", cfg.Filter.Patterns)
	}
	if !reflect.DeepEqual(cfg.Filter.Command, []string{"pio", "device", "monitor"}) {
		t.Errorf("Filter.Command = %v", cfg.Filter.Command)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" || cfg.Logging.Color != "auto" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("PIO_HELPERS_GIT", "/opt/git/bin/git")
	t.Setenv("PIO_HELPERS_FILTER_FILE", "ci.filter")
	t.Setenv("PIO_HELPERS_LOG_LEVEL", "WARN")

	cfg, err := Load(writeConfig(t, "filter:\n  file: ignored.filter\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Version.GitBinary != "/opt/git/bin/git" {
		t.Errorf("GitBinary = %q", cfg.Version.GitBinary)
	}
	if cfg.Filter.File != "ci.filter" {
		t.Errorf("Filter.File = %q", cfg.Filter.File)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{name: "bad yaml", content: "version: [", errMsg: "parsing config file"},
		{name: "abbrev too long", content: "version:\n  abbrev: 64\n", errMsg: "version.abbrev"},
		{name: "unknown format", content: "version:\n  format: json\n", errMsg: "version.format"},
		{name: "empty template", content: "version:\n  formats:\n    x: ' '\n", errMsg: "version.formats.x"},
		{name: "bad macro", content: "version:\n  define: \"GIT HASH\"\n", errMsg: "version.define"},
		{name: "empty command", content: "filter:\n  command: ['']\n", errMsg: "filter.command"},
		{name: "bad level", content: "logging:\n  level: loud\n", errMsg: "logging.level"},
		{name: "bad log format", content: "logging:\n  format: xml\n", errMsg: "logging.format"},
		{name: "bad color", content: "logging:\n  color: sometimes\n", errMsg: "logging.color"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.content))
			if err == nil {
				err = cfg.Validate()
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error = %v, want it to contain %q", err, tt.errMsg)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Version.Abbrev = 2
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("Validate() error = %v, want ValidationErrors", err)
	}
	if len(verrs) != 2 {
		t.Errorf("got %d validation errors, want 2: %v", len(verrs), verrs)
	}
}

func TestLoadOrDefault(t *testing.T) {
	missing := filepath.Join(t.TempDir(), DefaultPath)

	cfg, err := LoadOrDefault(missing, true)
	if err != nil {
		t.Fatalf("LoadOrDefault(optional) error = %v", err)
	}
	if cfg.Filter.File != "monitor.filter" {
		t.Errorf("Filter.File = %q", cfg.Filter.File)
	}

	if _, err := LoadOrDefault(missing, false); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadOrDefault(required) error = %v, want ErrNotExist", err)
	}

	if _, err := LoadOrDefault(writeConfig(t, "version: ["), true); err == nil {
		t.Error("LoadOrDefault() should report parse errors even when optional")
	}
}

func TestLoad_OverridesBeforeValidate(t *testing.T) {
	t.Setenv("PIO_HELPERS_LOG_LEVEL", "trace")

	cfg, err := Load(writeConfig(t, "logging:\n  format: text\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() accepted log level trace")
	}

	cfg.Logging.Level = "debug"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() after override error = %v", err)
	}
}
