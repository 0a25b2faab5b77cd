package buildinfo

import (
	"strings"
	"text/template"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FuncMap returns the template function map for format templates.
func FuncMap() template.FuncMap {
	titleCaser := cases.Title(language.English)
	return template.FuncMap{
		// String functions
		"lower":     strings.ToLower,
		"upper":     strings.ToUpper,
		"title":     titleCaser.String,
		"trimSpace": strings.TrimSpace,
		"replace":   strings.ReplaceAll,

		// Formatting functions
		"date":       formatDate,
		"utc":        func(t time.Time) time.Time { return t.UTC() },
		"shellQuote": shellQuote,
	}
}

// formatDate formats t with a Go time layout.
func formatDate(layout string, t time.Time) string {
	return t.Format(layout)
}

// shellQuote wraps s in single quotes for POSIX shells.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
