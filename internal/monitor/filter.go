// Package monitor filters serial-monitor output by glob patterns.
package monitor

import (
	"log/slog"
	"strings"
)

// Filter buffers received text and releases complete lines that match
// at least one pattern. A filter with no patterns releases every line.
type Filter struct {
	patterns []Pattern
	buf      string
}

// New creates a filter from glob patterns, tried in the given order.
func New(patterns []string) (*Filter, error) {
	compiled := make([]Pattern, 0, len(patterns))
	for _, raw := range patterns {
		p, err := CompilePattern(raw)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, p)
	}
	return &Filter{patterns: compiled}, nil
}

// NewFromFile creates a filter from the patterns in the file at path,
// followed by any extra patterns. Each pattern is logged at info level
// when log is non-nil.
func NewFromFile(path string, log *slog.Logger, extra ...string) (*Filter, error) {
	patterns, err := LoadPatterns(path)
	if err != nil {
		return nil, err
	}
	patterns = append(patterns, extra...)

	if log != nil {
		for _, p := range patterns {
			log.Info("Filter log for", "pattern", p)
		}
	}

	return New(patterns)
}

// Rx appends text to the buffer. When the buffer holds a complete line, the
// first one is removed and returned with its newline if it is accepted;
// otherwise Rx returns "". Partial lines stay buffered until terminated.
//
// Rx releases at most one line per call. Use Pending to find out whether
// more complete lines are waiting.
func (f *Filter) Rx(text string) string {
	f.buf += text

	idx := strings.IndexByte(f.buf, '\n')
	if idx < 0 {
		return ""
	}

	line := f.buf[:idx]
	f.buf = f.buf[idx+1:]

	if f.Accept(line) {
		return line + "\n"
	}
	return ""
}

// Accept reports whether line passes the filter.
func (f *Filter) Accept(line string) bool {
	if len(f.patterns) == 0 {
		return true
	}
	for _, p := range f.patterns {
		if p.Match(line) {
			return true
		}
	}
	return false
}

// Pending reports whether a complete line is still buffered.
func (f *Filter) Pending() bool {
	return strings.IndexByte(f.buf, '\n') >= 0
}

// Buffered returns the text not yet released.
func (f *Filter) Buffered() string {
	return f.buf
}

// Patterns returns the filter's patterns in match order.
func (f *Filter) Patterns() []string {
	out := make([]string, len(f.patterns))
	for i, p := range f.patterns {
		out[i] = p.String()
	}
	return out
}
