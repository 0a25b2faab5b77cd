// Package buildinfo renders build-time version strings.
package buildinfo

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/template"
	"time"
)

// Built-in format names.
const (
	FormatDefine  = "define"
	FormatPlain   = "plain"
	FormatLDFlags = "ldflags"
)

const (
	// DateLayout renders times as "05 Mar 2024 14:07".
	DateLayout = "02 Jan 2006 15:04"

	// DefaultDefine is the preprocessor macro the firmware reads its version from.
	DefaultDefine = "GIT_HASH"
)

var builtinFormats = map[string]string{
	FormatDefine:  `-D{{.Define}}='"Version: {{.Revision}} built: {{.Date}}"'`,
	FormatPlain:   `Version: {{.Revision}} built: {{.Date}}`,
	FormatLDFlags: `-X '{{.Package}}.Version={{.Revision}}' -X '{{.Package}}.BuildTime={{.Date}}'`,
}

// Stamp is the version information captured once per build.
type Stamp struct {
	Revision string    // git describe output
	Built    time.Time // local build time
	Define   string    // macro name for the define format
	Package  string    // Go import path for the ldflags format
}

// NewStamp creates a stamp for revision built at t with the default macro name.
func NewStamp(revision string, t time.Time) Stamp {
	return Stamp{
		Revision: revision,
		Built:    t,
		Define:   DefaultDefine,
	}
}

// Date returns the build time in DateLayout.
func (s Stamp) Date() string {
	return s.Built.Format(DateLayout)
}

// Formatter holds the named templates a stamp can be rendered with.
type Formatter struct {
	templates map[string]*template.Template
}

// NewFormatter creates a formatter with the built-in formats loaded.
func NewFormatter() *Formatter {
	f := &Formatter{
		templates: make(map[string]*template.Template),
	}
	for name, content := range builtinFormats {
		f.templates[name] = template.Must(template.New(name).Funcs(FuncMap()).Parse(content))
	}
	return f
}

// LoadFile loads a format template from a file path.
func (f *Formatter) LoadFile(name, path string) error {
	// Path is from user configuration
	content, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return fmt.Errorf("reading format template: %w", err)
	}

	return f.LoadString(name, strings.TrimRight(string(content), "\r\n"))
}

// LoadString loads a format template from a string, replacing any
// format of the same name.
func (f *Formatter) LoadString(name, content string) error {
	tmpl, err := template.New(name).Funcs(FuncMap()).Option("missingkey=error").Parse(content)
	if err != nil {
		return fmt.Errorf("parsing format %q: %w", name, err)
	}

	f.templates[name] = tmpl
	return nil
}

// Formats returns the known format names in sorted order.
func (f *Formatter) Formats() []string {
	names := make([]string, 0, len(f.templates))
	for name := range f.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render renders the stamp with the named format.
func (f *Formatter) Render(name string, s Stamp) (string, error) {
	tmpl, ok := f.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown format %q (known: %s)", name, strings.Join(f.Formats(), ", "))
	}

	if name == FormatDefine && s.Define == "" {
		return "", fmt.Errorf("format %q requires a macro name", name)
	}
	if name == FormatLDFlags && s.Package == "" {
		return "", fmt.Errorf("format %q requires a Go package path", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, s); err != nil {
		return "", fmt.Errorf("executing format %q: %w", name, err)
	}

	return buf.String(), nil
}
