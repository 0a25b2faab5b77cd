package monitor

import (
	"fmt"
	"regexp"
	"strings"
)

// matchNothing is a character class that can never match.
const matchNothing = `[^\x00-\x{10FFFF}]`

// Pattern is a compiled shell-style glob matched against whole lines.
type Pattern struct {
	raw string
	re  *regexp.Regexp
}

// CompilePattern compiles a glob pattern.
//
// Supported syntax:
//   - "*" matches any run of characters, including "/" and none at all
//   - "?" matches exactly one character
//   - "[seq]" matches one character in seq, "[!seq]" one character not in seq
//   - "a-z" inside a set is a range; reversed ranges are ignored
//
// A "[" without a closing "]" is matched literally. Matching is case-sensitive.
func CompilePattern(pattern string) (Pattern, error) {
	re, err := regexp.Compile(translate(pattern))
	if err != nil {
		return Pattern{}, fmt.Errorf("compiling pattern %q: %w", pattern, err)
	}
	return Pattern{raw: pattern, re: re}, nil
}

// Match reports whether line matches pattern.
func Match(pattern, line string) (bool, error) {
	p, err := CompilePattern(pattern)
	if err != nil {
		return false, err
	}
	return p.Match(line), nil
}

// Match reports whether the whole line matches the pattern.
func (p Pattern) Match(line string) bool {
	if p.re == nil {
		return false
	}
	return p.re.MatchString(line)
}

// String returns the pattern as written in the filter file.
func (p Pattern) String() string {
	return p.raw
}

// translate converts a glob into an anchored regular expression.
func translate(pattern string) string {
	runes := []rune(pattern)
	n := len(runes)

	var sb strings.Builder
	sb.WriteString(`\A(?s:`)

	for i := 0; i < n; {
		c := runes[i]
		i++

		switch c {
		case '*':
			// Collapse runs of stars
			for i < n && runes[i] == '*' {
				i++
			}
			sb.WriteString(".*")
		case '?':
			sb.WriteString(".")
		case '[':
			j := i
			if j < n && runes[j] == '!' {
				j++
			}
			if j < n && runes[j] == ']' {
				j++
			}
			for j < n && runes[j] != ']' {
				j++
			}
			if j >= n {
				sb.WriteString(`\[`)
				continue
			}
			sb.WriteString(translateSet(runes[i:j]))
			i = j + 1
		default:
			sb.WriteString(regexp.QuoteMeta(string(c)))
		}
	}

	sb.WriteString(`)\z`)
	return sb.String()
}

// translateSet converts the body of a "[...]" set into a regexp class.
func translateSet(set []rune) string {
	negate := len(set) > 0 && set[0] == '!'
	if negate {
		set = set[1:]
	}

	var items strings.Builder
	for k := 0; k < len(set); k++ {
		lo := set[k]
		if k+2 < len(set) && set[k+1] == '-' {
			hi := set[k+2]
			k += 2
			if lo > hi {
				continue
			}
			items.WriteString(setLiteral(lo))
			items.WriteByte('-')
			items.WriteString(setLiteral(hi))
			continue
		}
		items.WriteString(setLiteral(lo))
	}

	if items.Len() == 0 {
		if negate {
			return "."
		}
		return matchNothing
	}

	if negate {
		return "[^" + items.String() + "]"
	}
	return "[" + items.String() + "]"
}

// setLiteral escapes ASCII punctuation so it stays literal inside a class.
func setLiteral(r rune) string {
	if r < 0x80 && !isAlnum(r) && r > ' ' {
		return `\` + string(r)
	}
	return string(r)
}

func isAlnum(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
