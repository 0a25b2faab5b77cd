package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// TextHandler is a compact human-readable slog handler.
type TextHandler struct {
	opts   *TextHandlerOptions
	writer io.Writer
	mu     *sync.Mutex
	attrs  []slog.Attr
	group  string
}

// TextHandlerOptions are options for the TextHandler
type TextHandlerOptions struct {
	Level       slog.Leveler
	TimeFormat  string
	ColorOutput bool
}

// NewTextHandler creates a new text handler
func NewTextHandler(w io.Writer, opts *TextHandlerOptions) *TextHandler {
	if opts == nil {
		opts = &TextHandlerOptions{}
	}
	if opts.Level == nil {
		opts.Level = slog.LevelInfo
	}
	if opts.TimeFormat == "" {
		opts.TimeFormat = time.TimeOnly
	}
	return &TextHandler{
		opts:   opts,
		writer: w,
		mu:     &sync.Mutex{},
	}
}

// Enabled reports whether the handler handles records at the given level
func (h *TextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

// Handle formats and writes the log record
//
//nolint:gocritic // hugeParam: signature fixed by slog.Handler
func (h *TextHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder

	if !r.Time.IsZero() {
		h.colored(&sb, "\033[90m", r.Time.Format(h.opts.TimeFormat))
		sb.WriteString(" ")
	}

	h.colored(&sb, levelColor(r.Level), formatLevel(r.Level))
	sb.WriteString(" ")
	sb.WriteString(r.Message)

	for _, attr := range h.attrs {
		h.writeAttr(&sb, "", attr)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&sb, h.group, a)
		return true
	})

	sb.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.writer, sb.String())
	return err
}

// WithAttrs returns a new Handler with the given attributes added
func (h *TextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prefixed := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	prefixed = append(prefixed, h.attrs...)
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		prefixed = append(prefixed, a)
	}
	return &TextHandler{
		opts:   h.opts,
		writer: h.writer,
		mu:     h.mu,
		attrs:  prefixed,
		group:  h.group,
	}
}

// WithGroup returns a new Handler with the given group name
func (h *TextHandler) WithGroup(name string) slog.Handler {
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &TextHandler{
		opts:   h.opts,
		writer: h.writer,
		mu:     h.mu,
		attrs:  h.attrs,
		group:  group,
	}
}

// writeAttr writes " key=value", with key qualified by group when set.
func (h *TextHandler) writeAttr(sb *strings.Builder, group string, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if group != "" {
		key = group + "." + key
	}
	sb.WriteString(" ")
	h.colored(sb, "\033[96m", key)
	sb.WriteString("=")
	formatValue(sb, a.Value.Resolve())
}

func (h *TextHandler) colored(sb *strings.Builder, color, s string) {
	if !h.opts.ColorOutput {
		sb.WriteString(s)
		return
	}
	sb.WriteString(color)
	sb.WriteString(s)
	sb.WriteString("\033[0m")
}

// formatLevel formats the log level
func formatLevel(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return "DEBUG"
	case slog.LevelInfo:
		return "INFO "
	case slog.LevelWarn:
		return "WARN "
	case slog.LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("%-5s", level.String())
	}
}

// levelColor returns ANSI color code for the level
func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "\033[31m" // red
	case level >= slog.LevelWarn:
		return "\033[33m" // yellow
	case level >= slog.LevelInfo:
		return "\033[32m" // green
	default:
		return "\033[36m" // cyan
	}
}

// formatValue formats an attribute value
func formatValue(sb *strings.Builder, v slog.Value) {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if s == "" || strings.ContainsAny(s, " \t\n\r\"=") {
			fmt.Fprintf(sb, "%q", s)
		} else {
			sb.WriteString(s)
		}
	case slog.KindTime:
		sb.WriteString(v.Time().Format(time.RFC3339))
	case slog.KindGroup:
		sb.WriteString("{")
		for i, attr := range v.Group() {
			if i > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(attr.Key)
			sb.WriteString("=")
			formatValue(sb, attr.Value.Resolve())
		}
		sb.WriteString("}")
	default:
		fmt.Fprint(sb, v.Any())
	}
}
