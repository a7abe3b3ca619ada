// Package scan reconstructs just enough structure from raw Terraform text
// (blocks, nesting, heredocs, comments) for line-oriented style rules to
// decide which lines belong together and what indentation each line is
// entitled to. It is deliberately not a parser: unrecognized input passes
// through without diagnostics.
package scan

import "strings"

// StripComments removes trailing # comments that appear outside quoted
// strings while preserving line count. Comment-only lines are kept verbatim
// so later stages can still see them (they are invisible to grouping but
// must not shift line numbers or column arithmetic).
func StripComments(content string) []string {
	lines := strings.Split(content, "\n")
	cleaned := make([]string, len(lines))

	for i, line := range lines {
		cleaned[i] = stripLineComment(line)
	}

	return cleaned
}

func stripLineComment(line string) string {
	if !strings.Contains(line, "#") {
		return line
	}

	inQuotes := false
	var quoteChar byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case (c == '"' || c == '\'') && (i == 0 || line[i-1] != '\\'):
			if !inQuotes {
				inQuotes = true
				quoteChar = c
			} else if c == quoteChar {
				inQuotes = false
			}
		case c == '#' && !inQuotes:
			if strings.TrimSpace(line[:i]) == "" {
				// Comment-only line, keep as-is.
				return line
			}
			return strings.TrimRight(line[:i], " \t")
		}
	}

	return line
}

// IsBlank reports whether the line contains nothing but whitespace.
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// IsComment reports whether the line is a comment-only line.
func IsComment(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "#")
}

// Indent returns the number of leading spaces of a line, or -1 when the
// indentation contains a tab (tab handling belongs to a different rule).
func Indent(line string) int {
	n := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case ' ':
			n++
		case '\t':
			return -1
		default:
			return n
		}
	}
	return n
}

// leadingSpaces is Indent without the tab guard: tabs terminate the count
// the same way any other character does. This mirrors how grouping measures
// indentation, where tab-bearing lines are excluded later at reporting time.
func leadingSpaces(line string) int {
	return len(line) - len(strings.TrimLeft(line, " "))
}
