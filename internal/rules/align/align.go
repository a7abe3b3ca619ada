// Package align implements the equals sign alignment rule for
// Terraform parameter assignments. Parameters that belong to the same
// group must have their '=' in the same column, one space past the
// longest parameter name, and exactly one space after '='.
package align

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/santosr2/tfstyle/internal/scan"
	"github.com/santosr2/tfstyle/pkg/sdk"
)

// RuleID identifies the alignment rule in reports and configuration.
const RuleID = "ST.003"

var (
	blockDeclPattern   = regexp.MustCompile(`^\s*(data|resource|variable|output|locals|module)\s+`)
	providerEntryStart = regexp.MustCompile(`^\s*[a-zA-Z_][a-zA-Z0-9_]*\s*=\s*\{`)

	// Meta-arguments keep their own spacing conventions and are never
	// reported for misalignment.
	metaArguments = map[string]struct{}{
		"count":      {},
		"for_each":   {},
		"provider":   {},
		"depends_on": {},
		"lifecycle":  {},
	}
)

// Rule is the alignment checker. It satisfies sdk.LineRule.
type Rule struct{}

// New returns the alignment rule.
func New() *Rule { return &Rule{} }

func (*Rule) ID() string   { return RuleID }
func (*Rule) Name() string { return "Parameter alignment check" }

func (*Rule) Description() string {
	return "Validates that equals signs line up within parameter groups and that exactly one space follows '='"
}

// Check runs the rule over a single file. Files ending in .tfvars use
// the flat variable-definition path, everything else the block path.
func (r *Rule) Check(path, content string, report sdk.ReportFunc) {
	lines := scan.StripComments(content)

	var diags []diag
	if strings.HasSuffix(path, ".tfvars") {
		diags = checkTfvars(lines)
	} else {
		for _, blk := range scan.ExtractBlocks(lines) {
			diags = append(diags, checkBlock(blk)...)
		}
	}
	emit(path, RuleID, diags, report)
}

type diag struct {
	line int
	msg  string
}

// emit sorts diagnostics by line, drops duplicates with the same line
// and message, and forwards the rest to the report callback.
func emit(path, ruleID string, diags []diag, report sdk.ReportFunc) {
	sort.SliceStable(diags, func(i, j int) bool { return diags[i].line < diags[j].line })
	seen := make(map[diag]struct{}, len(diags))
	for _, d := range diags {
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		report(path, ruleID, d.msg, d.line)
	}
}

// param is one assignment line inside an alignment group.
type param struct {
	name   string
	line   string
	index  int // offset into the block body
	equals int // byte position of '=' in line
}

func checkBlock(blk scan.Block) []diag {
	var diags []diag
	for _, grp := range scan.Partition(blk.Body) {
		diags = append(diags, checkSection(grp, blk)...)
	}
	return diags
}

// checkSection verifies one partitioned group. Assignment lines are
// re-grouped by indentation level and split at blank lines before the
// alignment formula is applied; a parameter two levels deep never
// aligns against one at the block top level.
func checkSection(grp scan.Group, blk scan.Block) []diag {
	var diags []diag

	assigns := assignmentLines(grp)
	if len(assigns) == 0 {
		return nil
	}

	byLevel := make(map[int][]scan.Member)
	var levels []int
	for _, m := range assigns {
		level := leadingWidth(expandTabs(m.Text)) / 2
		if _, ok := byLevel[level]; !ok {
			levels = append(levels, level)
		}
		byLevel[level] = append(byLevel[level], m)
	}
	sort.Ints(levels)

	for _, level := range levels {
		members := byLevel[level]
		sort.SliceStable(members, func(i, j int) bool { return members[i].Index < members[j].Index })

		for _, sub := range splitOnBlanks(members, blk.Body) {
			diags = append(diags, checkGroup(sub, level, blk)...)
			for _, m := range sub {
				diags = append(diags, checkSpacingAfter(m, blk)...)
			}
		}
	}
	return diags
}

// assignmentLines picks the members of a group that look like
// parameter assignments. Block declarations, required_providers
// entries and expression continuations are not assignments.
func assignmentLines(grp scan.Group) []scan.Member {
	var hasRequiredProviders bool
	for _, m := range grp.Members {
		if strings.Contains(m.Text, "required_providers") {
			hasRequiredProviders = true
			break
		}
	}

	var out []scan.Member
	for _, m := range grp.Members {
		line := strings.TrimRight(m.Text, " \t")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || !strings.Contains(line, "=") {
			continue
		}
		if blockDeclPattern.MatchString(line) {
			continue
		}
		if hasRequiredProviders && providerEntryStart.MatchString(line) {
			continue
		}
		if strings.HasPrefix(trimmed, "(") && (strings.Contains(line, "==") || strings.Contains(line, "!=")) {
			continue
		}
		out = append(out, scan.Member{Text: line, Index: m.Index})
	}
	return out
}

// splitOnBlanks cuts a run of same-level members wherever a blank line
// sits between two consecutive members in the block body.
func splitOnBlanks(members []scan.Member, body []string) [][]scan.Member {
	var subs [][]scan.Member
	var cur []scan.Member
	prev := -1
	for _, m := range members {
		if prev >= 0 && blankBetween(body, prev, m.Index) {
			if len(cur) > 0 {
				subs = append(subs, cur)
			}
			cur = nil
		}
		cur = append(cur, m)
		prev = m.Index
	}
	if len(cur) > 0 {
		subs = append(subs, cur)
	}
	return subs
}

func blankBetween(body []string, from, to int) bool {
	for i := from + 1; i < to && i < len(body); i++ {
		if strings.TrimSpace(body[i]) == "" {
			return true
		}
	}
	return false
}

// checkGroup applies the alignment formula to one sub-group. A single
// parameter is only required to have one space before '='; two or more
// must align at indent + longest name + quotes + 1.
func checkGroup(members []scan.Member, level int, blk scan.Block) []diag {
	params := buildParams(members)
	if len(params) == 0 {
		return nil
	}

	if len(params) == 1 {
		return checkLoneParam(params[0], level, blk)
	}

	longest := 0
	hasQuoted := false
	for _, p := range params {
		if len(p.name) > longest {
			longest = len(p.name)
		}
		if strings.HasPrefix(strings.TrimSpace(p.line[:p.equals]), `"`) {
			hasQuoted = true
		}
	}
	quoteChars := 0
	if hasQuoted {
		quoteChars = 2
	}
	indentSpaces := level * 2
	expected := indentSpaces + longest + quoteChars + 1

	var diags []diag
	for _, p := range params {
		if p.equals == expected {
			continue
		}
		if skipAlignment(p.line, p.name) {
			continue
		}
		lineNum := blk.StartLine + p.index + 1
		required := expected - indentSpaces - len(p.name)
		if p.equals < expected {
			diags = append(diags, diag{lineNum, notAlignedUnder(blk.Type, required, expected)})
		} else {
			diags = append(diags, diag{lineNum, notAlignedOver(blk.Type, expected)})
		}
	}
	return diags
}

func checkLoneParam(p param, level int, blk scan.Block) []diag {
	if skipAlignment(p.line, p.name) {
		return nil
	}
	before := p.line[:p.equals]
	spacesBefore := len(before) - len(strings.TrimRight(before, " "))
	if spacesBefore == 1 {
		return nil
	}
	return []diag{{
		blk.StartLine + p.index + 1,
		"Parameter assignment equals sign spacing incorrect in " + blk.Type +
			". Expected exactly 1 space between parameter name and '='",
	}}
}

// buildParams parses member lines into params. Lines whose left side
// is not a bare (optionally quoted) identifier are ignored, as are
// array continuations.
func buildParams(members []scan.Member) []param {
	var params []param
	for _, m := range members {
		pos := strings.Index(m.Text, "=")
		if pos < 0 {
			continue
		}
		before := m.Text[:pos]
		beforeTrim := strings.TrimSpace(before)
		if strings.HasPrefix(beforeTrim, "[") || (beforeTrim == "" && strings.HasPrefix(strings.TrimSpace(m.Text), "[")) {
			continue
		}
		name, ok := parseParamName(before)
		if !ok {
			continue
		}
		params = append(params, param{
			name:   name,
			line:   m.Text,
			index:  m.Index,
			equals: pos,
		})
	}
	return params
}

// parseParamName extracts the identifier left of '='. The left side
// must consist of nothing but the name, optionally wrapped in matching
// quotes.
func parseParamName(before string) (string, bool) {
	s := strings.TrimSpace(before)
	if s == "" {
		return "", false
	}
	if s[0] == '"' || s[0] == '\'' {
		q := s[0]
		if len(s) < 3 || s[len(s)-1] != q {
			return "", false
		}
		s = s[1 : len(s)-1]
		if s == "" {
			return "", false
		}
	}
	if strings.ContainsAny(s, "\"'= \t") {
		return "", false
	}
	return s, true
}

// skipAlignment reports whether misalignment on this line is already
// covered by another concern: tabs, odd indentation, or the line being
// a meta-argument.
func skipAlignment(line, name string) bool {
	if strings.Contains(line, "\t") {
		return true
	}
	if leadingWidth(line)%2 != 0 {
		return true
	}
	_, meta := metaArguments[name]
	return meta
}

// checkSpacingAfter requires exactly one space after '=' on any
// assignment line, aligned or not.
func checkSpacingAfter(m scan.Member, blk scan.Block) []diag {
	pos := strings.Index(m.Text, "=")
	if pos < 0 {
		return nil
	}
	after := m.Text[pos+1:]
	lineNum := blk.StartLine + m.Index + 1
	switch {
	case !strings.HasPrefix(after, " "):
		return []diag{{lineNum, "Parameter assignment should have exactly one space after '=' in " + blk.Type}}
	case strings.HasPrefix(after, "  "):
		return []diag{{lineNum, "Parameter assignment should have exactly one space after '=' in " + blk.Type + ", found multiple spaces"}}
	}
	return nil
}

func notAlignedUnder(blockType string, required, expected int) string {
	return fmt.Sprintf(
		"Parameter assignment equals sign not aligned in %s. Expected %d spaces between parameter name and '=', equals sign should be at column %d",
		blockType, required, expected+1)
}

func notAlignedOver(blockType string, expected int) string {
	return fmt.Sprintf(
		"Parameter assignment equals sign not aligned in %s. Too many spaces before '=', equals sign should be at column %d",
		blockType, expected+1)
}

// expandTabs rewrites tabs as two-space stops so indentation depth can
// be measured on lines that mix tabs and spaces.
func expandTabs(line string) string {
	if !strings.Contains(line, "\t") {
		return line
	}
	var b strings.Builder
	col := 0
	for _, r := range line {
		if r == '\t' {
			n := 2 - col%2
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(r)
		col++
	}
	return b.String()
}

func leadingWidth(line string) int {
	return len(line) - len(strings.TrimLeft(line, " "))
}
