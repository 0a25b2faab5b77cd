// Package github writes step outputs when running inside GitHub Actions.
package github

import (
	"fmt"
	"os"
	"strings"
)

// Output is a single step output.
type Output struct {
	Name  string
	Value string
}

// InActions reports whether the process runs inside GitHub Actions.
func InActions() bool {
	return os.Getenv("GITHUB_ACTIONS") == "true"
}

// WriteOutputs appends outputs to the GITHUB_OUTPUT file.
// It returns false without error when not running in GitHub Actions.
func WriteOutputs(outputs ...Output) (bool, error) {
	if !InActions() {
		return false, nil
	}

	outputFile := os.Getenv("GITHUB_OUTPUT")
	if outputFile == "" {
		return false, nil
	}

	f, err := os.OpenFile(outputFile, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return false, fmt.Errorf("opening GITHUB_OUTPUT: %w", err)
	}
	defer f.Close()

	for _, out := range outputs {
		if _, err := fmt.Fprint(f, formatOutput(out)); err != nil {
			return false, fmt.Errorf("writing output %s: %w", out.Name, err)
		}
	}

	return true, nil
}

// formatOutput renders name=value, using a heredoc delimiter for multiline values.
func formatOutput(out Output) string {
	if !strings.ContainsAny(out.Value, "\r\n") {
		return fmt.Sprintf("%s=%s\n", out.Name, out.Value)
	}

	delimiter := "EOF"
	for strings.Contains(out.Value, delimiter) {
		delimiter += "_"
	}
	return fmt.Sprintf("%s<<%s\n%s\n%s\n", out.Name, delimiter, out.Value, delimiter)
}
