package align

import (
	"fmt"
	"strings"

	"github.com/santosr2/tfstyle/internal/scan"
)

// tfvars files have no enclosing blocks, so assignments are collected
// into a flat stream and grouped by indentation level and enclosing
// container. The alignment rules are looser than in .tf files: a group
// that is already self-consistent at some column wider than the
// formula column is accepted, and a strict plurality of members may
// establish the column when it sits close to the formula one.

type tfEntry struct {
	text string
	line int // 1-based line number
}

func checkTfvars(lines []string) []diag {
	var hd scan.HeredocTracker
	var stack []int
	nextID := 0

	// A group key is the indentation level plus the identity of the
	// enclosing container, so entries in sibling objects never align
	// against each other.
	type key struct {
		level     int
		container int
	}
	var groups [][]tfEntry
	var groupLevel []int
	open := make(map[key]int)
	prevLine := make(map[key]int)

	for i, raw := range lines {
		line := strings.TrimRight(raw, " \t")
		if hd.Observe(line) {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		container := 0
		if len(stack) > 0 {
			container = stack[len(stack)-1]
		}

		if strings.Contains(line, "=") && !blockDeclPattern.MatchString(line) && !equalsInString(line) {
			indent := leadingWidth(line)
			if indent%2 == 0 {
				k := key{level: indent / 2, container: container}
				// A blank line between two entries closes the group
				// and starts a fresh one within the same container.
				if prev, ok := prevLine[k]; ok && blankBetween(lines, prev-1, i) {
					delete(open, k)
				}
				idx, ok := open[k]
				if !ok {
					groups = append(groups, nil)
					groupLevel = append(groupLevel, k.level)
					idx = len(groups) - 1
					open[k] = idx
				}
				groups[idx] = append(groups[idx], tfEntry{text: line, line: i + 1})
				prevLine[k] = i + 1
			}
		}

		for _, r := range line {
			switch r {
			case '{', '[':
				nextID++
				stack = append(stack, nextID)
			case '}', ']':
				if len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}
			}
		}
	}

	var diags []diag
	for n, group := range groups {
		diags = append(diags, checkTfvarsGroup(group, groupLevel[n])...)
		for _, e := range group {
			diags = append(diags, tfvarsSpacing(e)...)
		}
	}
	return diags
}

// tfParam is one parsed assignment inside a tfvars alignment group.
type tfParam struct {
	name    string
	text    string
	line    int
	equals  int // position of '=' after tab expansion
	skipped bool
	quoted  bool
}

func checkTfvarsGroup(entries []tfEntry, level int) []diag {
	params := buildTfvarsParams(entries)
	if len(params) < 2 {
		return nil
	}

	indentSpaces := level * 2
	longest := longestTfvarsName(params)
	quoteChars := 0
	for _, p := range params {
		if p.quoted {
			quoteChars = 2
			break
		}
	}
	expected := indentSpaces + longest + quoteChars + 1

	// Count distinct '=' columns, tab lines excluded. Insertion order
	// matters when two columns tie for most common.
	type posCount struct {
		pos   int
		count int
	}
	var positions []posCount
	total := 0
	for _, p := range params {
		if strings.Contains(p.text, "\t") {
			continue
		}
		total++
		found := false
		for n := range positions {
			if positions[n].pos == p.equals {
				positions[n].count++
				found = true
				break
			}
		}
		if !found {
			positions = append(positions, posCount{pos: p.equals, count: 1})
		}
	}

	var diags []diag

	if len(positions) == 1 {
		// Everything already lines up at one column. Wider than the
		// formula column is fine, narrower means the longest name was
		// not accounted for.
		if positions[0].pos < expected {
			for _, p := range params {
				if p.skipped || strings.Contains(p.text, "\t") {
					continue
				}
				if p.equals != expected {
					required := expected - indentSpaces - len(p.name)
					diags = append(diags, diag{p.line, tfvarsUnder(required, expected)})
				}
			}
		}
		for _, p := range params {
			if p.skipped || strings.Contains(p.text, "\t") {
				continue
			}
			diags = append(diags, tfvarsAfterOnly(p)...)
		}
		return diags
	}

	mostCommon := positions[0]
	for _, pc := range positions[1:] {
		if pc.count > mostCommon.count {
			mostCommon = pc
		}
	}

	useMostCommon := false
	if mostCommon.count*2 > total || (total == 2 && mostCommon.count == 2) {
		if abs(mostCommon.pos-expected) < 2 {
			expected = mostCommon.pos
			useMostCommon = true
		}
	}

	if useMostCommon {
		for _, p := range params {
			if p.skipped || p.equals == expected {
				continue
			}
			if mostCommon.count > 1 && p.equals == mostCommon.pos {
				continue
			}
			if abs(p.equals-expected) <= 1 {
				continue
			}
			required := expected - indentSpaces - len(p.name)
			if p.equals < expected {
				diags = append(diags, diag{p.line, tfvarsUnder(required, expected)})
			} else {
				diags = append(diags, diag{p.line, tfvarsOver(expected)})
			}
		}
		for _, p := range params {
			if p.skipped {
				continue
			}
			diags = append(diags, tfvarsAfterOnly(p)...)
		}
		return diags
	}

	for _, p := range params {
		if p.skipped || p.equals == expected {
			continue
		}
		if strings.Contains(p.text, "\t") {
			continue
		}
		// Members that already align with at least one other member at
		// or near the formula column are left alone.
		alignedCount := 0
		for _, q := range params {
			if q.equals == p.equals && !strings.Contains(q.text, "\t") {
				alignedCount++
			}
		}
		if alignedCount >= 2 && abs(p.equals-expected) <= 1 {
			continue
		}
		displayLen := len(p.name)
		if p.quoted {
			displayLen += 2
		}
		required := expected - indentSpaces - displayLen
		if p.equals < expected {
			diags = append(diags, diag{p.line, tfvarsUnder(required, expected)})
		} else {
			diags = append(diags, diag{p.line, tfvarsOver(expected)})
		}
	}
	return diags
}

func buildTfvarsParams(entries []tfEntry) []tfParam {
	seen := make(map[int]struct{}, len(entries))
	var params []tfParam
	for _, e := range entries {
		if _, dup := seen[e.line]; dup {
			continue
		}
		seen[e.line] = struct{}{}

		display := expandTabs(e.text)
		pos := strings.Index(display, "=")
		if pos < 0 || equalsInString(display) {
			continue
		}
		before := display[:pos]
		beforeTrim := strings.TrimSpace(before)
		if strings.HasPrefix(beforeTrim, "[") || (beforeTrim == "" && strings.HasPrefix(strings.TrimSpace(e.text), "[")) {
			continue
		}
		after := strings.TrimSpace(display[pos+1:])
		isDecl := strings.HasPrefix(after, "[") || strings.HasPrefix(after, "{")

		name, quoted, ok := tfvarsParamName(beforeTrim)
		if !ok {
			continue
		}
		params = append(params, tfParam{
			name:    name,
			text:    e.text,
			line:    e.line,
			equals:  pos,
			skipped: isDecl && leadingWidth(e.text) > 0,
			quoted:  quoted,
		})
	}
	return params
}

// tfvarsParamName takes the leading identifier off the left side of
// '='. Unlike the block path, trailing junk after the name does not
// disqualify the line.
func tfvarsParamName(s string) (string, bool, bool) {
	if s == "" {
		return "", false, false
	}
	if s[0] == '"' || s[0] == '\'' {
		q := s[0]
		rest := s[1:]
		end := strings.IndexByte(rest, q)
		if end <= 0 {
			return "", false, false
		}
		name := rest[:end]
		if strings.ContainsAny(name, "\"'= \t") {
			return "", false, false
		}
		return name, true, true
	}
	end := strings.IndexAny(s, "\"'= \t")
	if end == 0 {
		return "", false, false
	}
	if end < 0 {
		return s, false, true
	}
	return s[:end], false, true
}

// longestTfvarsName finds the name length the alignment column is
// derived from. Object and array declarations only participate when
// they are at least four characters longer than every plain value,
// and tab lines never do.
func longestTfvarsName(params []tfParam) int {
	longest := 0
	found := false
	for _, p := range params {
		if p.skipped || strings.Contains(p.text, "\t") {
			continue
		}
		found = true
		if len(p.name) > longest {
			longest = len(p.name)
		}
	}
	if found {
		longestSkipped := 0
		for _, p := range params {
			if p.skipped && !strings.Contains(p.text, "\t") && len(p.name) > longestSkipped {
				longestSkipped = len(p.name)
			}
		}
		if longestSkipped > longest && longestSkipped-longest >= 4 {
			longest = longestSkipped
		}
		return longest
	}
	for _, p := range params {
		if !strings.Contains(p.text, "\t") && len(p.name) > longest {
			longest = len(p.name)
		}
	}
	if longest > 0 {
		return longest
	}
	for _, p := range params {
		if len(p.name) > longest {
			longest = len(p.name)
		}
	}
	return longest
}

// equalsInString reports whether the first '=' on the line belongs to
// a comparison operator inside a quoted value rather than to an
// assignment.
func equalsInString(line string) bool {
	pos := strings.Index(line, "=")
	if pos < 0 {
		return false
	}
	trimmed := strings.TrimSpace(line)
	ops := []string{"==", "!=", ">=", "<="}

	for _, q := range []string{`"`, `'`} {
		if strings.HasPrefix(trimmed, q) {
			for _, op := range ops {
				if strings.Contains(line, q+op) || strings.Contains(line, op+q) {
					return true
				}
			}
		}
	}

	after := strings.TrimSpace(line[pos+1:])
	before := strings.TrimSpace(line[:pos])
	if before != "" {
		return false
	}
	for _, q := range []string{`"`, `'`} {
		if strings.HasPrefix(after, q) {
			for _, op := range ops {
				if strings.Contains(after, q+op) || strings.Contains(after, op+q) {
					return true
				}
			}
		}
	}
	return false
}

// tfvarsSpacing is the weak spacing contract applied to every
// assignment: at least one space on each side of '=', never two or
// more after it.
func tfvarsSpacing(e tfEntry) []diag {
	pos := strings.Index(e.text, "=")
	if pos < 0 {
		return nil
	}
	var diags []diag
	before := e.text[:pos]
	if strings.TrimSpace(before) == "" || !strings.HasSuffix(before, " ") {
		diags = append(diags, diag{e.line, "Parameter assignment should have at least one space before '=' in tfvars"})
	}
	after := e.text[pos+1:]
	switch {
	case after == "" || after[0] != ' ':
		diags = append(diags, diag{e.line, "Parameter assignment should have at least one space after '=' in tfvars"})
	case strings.HasPrefix(after, "  "):
		diags = append(diags, diag{e.line, "Parameter assignment should have exactly one space after '=' in tfvars, found multiple spaces"})
	}
	return diags
}

func tfvarsAfterOnly(p tfParam) []diag {
	pos := strings.Index(p.text, "=")
	if pos < 0 {
		return nil
	}
	after := p.text[pos+1:]
	if after == "" || after[0] != ' ' {
		return []diag{{p.line, "Parameter assignment should have at least one space after '=' in tfvars"}}
	}
	return nil
}

func tfvarsUnder(required, expected int) string {
	return fmt.Sprintf(
		"Parameter assignment equals sign not aligned in tfvars. Expected %d spaces between parameter name and '=', equals sign should be at column %d",
		required, expected+1)
}

func tfvarsOver(expected int) string {
	return fmt.Sprintf(
		"Parameter assignment equals sign not aligned in tfvars. Too many spaces before '=', equals sign should be at column %d",
		expected+1)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
