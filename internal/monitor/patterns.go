package monitor

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	textunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultFilterFile is the pattern file looked up in the working directory.
const DefaultFilterFile = "monitor.filter"

// LoadPatterns reads one glob pattern per line from the file at path.
func LoadPatterns(path string) ([]string, error) {
	// Path is from user configuration or command-line argument
	file, err := os.Open(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("opening filter file: %w", err)
	}
	defer file.Close()

	patterns, err := ReadPatterns(file)
	if err != nil {
		return nil, fmt.Errorf("reading filter file %s: %w", path, err)
	}
	return patterns, nil
}

// ReadPatterns reads one glob pattern per line from r.
// Trailing whitespace is stripped and file order is kept. Blank lines are
// kept as empty patterns, which only match empty lines.
func ReadPatterns(r io.Reader) ([]string, error) {
	decoded := transform.NewReader(r, textunicode.UTF8BOM.NewDecoder())
	scanner := bufio.NewScanner(decoded)

	patterns := []string{}
	for scanner.Scan() {
		patterns = append(patterns, strings.TrimRightFunc(scanner.Text(), unicode.IsSpace))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return patterns, nil
}
