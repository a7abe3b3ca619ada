// Package indent implements the indentation level rule. Every line is
// expected to sit at two spaces per enclosing brace or bracket, with
// top-level declarations flush left.
package indent

import (
	"fmt"
	"strings"

	"github.com/santosr2/tfstyle/internal/scan"
	"github.com/santosr2/tfstyle/pkg/sdk"
)

// RuleID identifies the indentation rule in reports and configuration.
const RuleID = "ST.005"

var topLevelKeywords = []string{
	"resource ", "data ", "variable ", "output ", "locals ", "terraform ", "provider ",
}

// Rule is the indentation checker. It satisfies sdk.LineRule.
type Rule struct{}

// New returns the indentation rule.
func New() *Rule { return &Rule{} }

func (*Rule) ID() string   { return RuleID }
func (*Rule) Name() string { return "Indentation level check" }

func (*Rule) Description() string {
	return "Validates that each line is indented two spaces per nesting level"
}

// Check walks the file line by line, maintaining brace and bracket
// depth, and reports every line whose indentation does not match the
// depth in effect before the line.
func (r *Rule) Check(path, content string, report sdk.ReportFunc) {
	isTfvars := strings.HasSuffix(path, ".tfvars")
	lines := strings.Split(content, "\n")

	var hd scan.HeredocTracker
	var nest scan.NestingTracker

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		wasInside := hd.Active()
		if hd.Observe(line) {
			continue
		}
		if !wasInside && hd.Active() {
			// The heredoc introducer carries an opaque tail and is not
			// held to the indentation contract.
			continue
		}

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			continue
		}

		counts := scan.Count(line)
		before, after := nest.Observe(line)

		indent := scan.Indent(line)
		if indent == -1 {
			// Tabs are someone else's problem.
			continue
		}

		if msg := validate(trimmed, indent, isTfvars, counts, before, after); msg != "" {
			report(path, RuleID, msg, i+1)
		}
	}
}

// validate decides the expected indentation for one line and returns a
// diagnostic message when the actual indentation differs.
func validate(trimmed string, indent int, isTfvars bool, counts scan.BracketCounts, before, after scan.Depths) string {
	if isTopLevelDecl(trimmed) {
		if indent > 0 {
			return incorrect(indent, 0)
		}
		return ""
	}

	if indent > 0 && indent%2 != 0 {
		return incorrect(indent, nearestEven(indent))
	}

	if indent == 0 && !isTfvars && strings.Contains(trimmed, "=") && !hasTopLevelPrefix(trimmed) {
		return incorrect(indent, 2)
	}

	expected := expectedIndent(trimmed, counts, before, after)
	if indent != expected {
		return incorrect(indent, expected)
	}
	return ""
}

// expectedIndent derives the required indentation from bracket depth.
// Lines that close more than they open align with the opener; a line
// that closes one context and opens another in one go aligns with the
// closing side.
func expectedIndent(trimmed string, counts scan.BracketCounts, before, after scan.Depths) int {
	netCloseBraces := counts.CloseBraces - counts.OpenBraces
	netCloseBrackets := counts.CloseBrackets - counts.OpenBrackets
	hasClosing := counts.CloseBraces > 0 || counts.CloseBrackets > 0
	hasOpening := counts.OpenBraces > 0 || counts.OpenBrackets > 0

	// Balanced pairs on one line, like an inline object or array, do
	// not move the depth and the line is treated as ordinary content.
	if (counts.BracesBalanced() || counts.BracketsBalanced()) && netCloseBraces <= 0 && netCloseBrackets <= 0 {
		hasClosing, hasOpening = false, false
	}
	// On assignment lines any stray braces are likely inside string
	// values, ignore them unless the line has unmatched closers.
	if strings.Contains(trimmed, "=") && !strings.HasPrefix(trimmed, "#") &&
		netCloseBraces <= 0 && netCloseBrackets <= 0 {
		hasClosing, hasOpening = false, false
	}

	switch {
	case hasClosing && (netCloseBraces > 0 || netCloseBrackets > 0):
		totalNetClose := netCloseBraces + netCloseBrackets
		if totalNetClose == 0 && hasOpening {
			return closeReopenIndent(counts, after)
		}
		e := (before.Level() - totalNetClose) * 2
		if e < 0 {
			e = 0
		}
		return e
	case hasClosing && hasOpening:
		return closeReopenIndent(counts, after)
	default:
		return before.Level() * 2
	}
}

// closeReopenIndent aligns a line such as "] : {" with the context it
// closes rather than the one it opens.
func closeReopenIndent(counts scan.BracketCounts, after scan.Depths) int {
	switch {
	case counts.CloseBrackets > 0:
		brackets := after.Brackets - counts.CloseBrackets
		if brackets < 0 {
			brackets = 0
		}
		return (after.Braces + brackets) * 2
	case counts.CloseBraces > 0:
		braces := after.Braces - counts.CloseBraces
		if braces < 0 {
			braces = 0
		}
		return (braces + after.Brackets) * 2
	default:
		return after.Level() * 2
	}
}

// isTopLevelDecl matches block declarations written without an opening
// brace on the same line, such as a header split across lines.
func isTopLevelDecl(trimmed string) bool {
	if !hasTopLevelPrefix(trimmed) {
		return false
	}
	return strings.Contains(trimmed, " ") &&
		!strings.HasSuffix(trimmed, "{") &&
		!strings.Contains(trimmed, " = ")
}

func hasTopLevelPrefix(trimmed string) bool {
	for _, kw := range topLevelKeywords {
		if strings.HasPrefix(trimmed, kw) {
			return true
		}
	}
	return false
}

// nearestEven picks the even indentation an odd one was most likely
// meant to be.
func nearestEven(indent int) int {
	switch indent {
	case 1, 3:
		return 2
	case 5, 7:
		return 6
	case 9:
		return 8
	default:
		return indent - 1
	}
}

func incorrect(actual, expected int) string {
	return fmt.Sprintf("Indentation level incorrect. Current indentation: %d spaces, Expected: %d spaces", actual, expected)
}
