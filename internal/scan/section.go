package scan

import (
	"sort"
	"strings"
)

// Member is one body line that landed in a group, with its 0-based index
// into the block body it came from.
type Member struct {
	Text  string
	Index int
}

// Group is an ordered run of lines whose parameter assignments are expected
// to share one equals column. Groups never cross a truly blank line; nested
// object and array bodies get groups of their own while the surrounding
// declaration group is suspended and later restored.
type Group struct {
	Members []Member
}

func (g *Group) append(text string, idx int) {
	g.Members = append(g.Members, Member{Text: text, Index: idx})
}

// callPatterns are the function calls whose brace or bracket argument bodies
// group independently of the enclosing block. A parameter line strictly
// inside one of these literals aligns with its siblings at the same
// indentation inside the same call.
var callPatterns = []string{
	"jsonencode(", "merge(", "try(", "lookup(", "alltrue(", "anytrue(",
	"cidrsubnet(", "cidrhost(", "flatten(", "keys(", "values(", "zipmap(",
}

// afterEquals returns the trimmed text after the first '=' of a line, or ""
// when the line has none.
func afterEquals(line string) string {
	if i := strings.Index(line, "="); i >= 0 {
		return strings.TrimSpace(line[i+1:])
	}
	return ""
}

// isCallOpener reports whether the line assigns one of the recognized
// function-call literals whose argument opens a brace or bracket body.
func isCallOpener(line string) bool {
	after := afterEquals(line)
	if after == "" {
		return false
	}
	for _, p := range callPatterns {
		if strings.HasPrefix(after, p) {
			return strings.Contains(after, "{") || strings.Contains(after, "[")
		}
	}
	return false
}

type contextKind int

const (
	ctxObject contextKind = iota
	ctxArray
	ctxCall
)

// openContext is one unit of unmatched nesting, recorded in file order so
// membership questions ("is this line inside a function-call literal, and
// which one?") are answered from a stack instead of rescanning backwards.
type openContext struct {
	kind         contextKind
	anchorIndent int
	anchorLine   int
}

// callKey identifies an alignment scope inside a function-call literal: the
// line that opened the call plus the member's own indentation.
type callKey struct {
	site   int
	indent int
}

const blockBodyIndent = 2 // top-level parameters inside a block

// Partition splits a block body into alignment groups. A single forward
// pass maintains the open group, a LIFO of suspended groups for nested
// constructs, and a stack of open contexts for call-literal ancestry; two
// cleanup passes then widen top-level groups across non-blank gaps and
// re-key members that live inside function-call literals.
func Partition(body []string) []Group {
	var (
		groups    []Group
		cur       Group
		suspended []Group
		ctxStack  []openContext
		heredoc   HeredocTracker
		nesting   NestingTracker
	)
	callKeys := make(map[int]callKey)

	flush := func() {
		if len(cur.Members) > 0 {
			groups = append(groups, cur)
		}
		cur = Group{}
	}

	for idx, line := range body {
		if heredoc.Observe(line) {
			continue
		}

		if IsBlank(line) {
			// A truly blank line always ends the open group.
			flush()
			continue
		}
		if IsComment(line) {
			continue
		}

		trimmed := strings.TrimSpace(line)
		counts := Count(line)
		before, after := nesting.Observe(line)

		// Record call-literal ancestry before this line can change it
		// for deeper lines.
		if ck, ok := innermostCall(ctxStack, idx); ok {
			callKeys[idx] = callKey{site: ck.anchorLine, indent: leadingSpaces(line)}
		}

		// Maintain the context stack from the net depth change. Balanced
		// one-liners ({for ...}, [for ...]) produce no change and leave
		// the stack alone.
		if d := before.Level() - after.Level(); d > 0 {
			for ; d > 0 && len(ctxStack) > 0; d-- {
				ctxStack = ctxStack[:len(ctxStack)-1]
			}
		} else if d < 0 {
			kind := ctxObject
			switch {
			case isCallOpener(line):
				kind = ctxCall
			case after.Brackets > before.Brackets:
				kind = ctxArray
			}
			for ; d < 0; d++ {
				ctxStack = append(ctxStack, openContext{
					kind:         kind,
					anchorIndent: leadingSpaces(line),
					anchorLine:   idx,
				})
			}
		}

		balanced := counts.BracesBalanced() || counts.BracketsBalanced()

		switch {
		case isCloser(trimmed) && !balanced:
			// Leaving a nested construct: the nested group is done and
			// the suspended declaration group becomes current again, so
			// a following parameter at the declaration's indentation
			// keeps aligning with it.
			flush()
			if n := len(suspended); n > 0 {
				cur = suspended[n-1]
				suspended = suspended[:n-1]
			}
			cur.append(line, idx)

		case trimmed == "{":
			// Standalone brace starts an array element. While still
			// inside an outer object the element stays in the open
			// group; only at brace depth zero does it become a fresh
			// group of its own.
			if before.Brackets >= 1 && before.Braces == 0 {
				flush()
			}
			cur.append(line, idx)

		case entersNested(trimmed, counts):
			// The declaration line itself stays with its siblings; its
			// body opens a new group. Nested list(object({ keeps a
			// snapshot so the outer declaration group survives two
			// levels of restoration.
			cur.append(line, idx)
			if strings.Contains(trimmed, "list(") && strings.Contains(trimmed, "object(") {
				suspended = append(suspended, snapshot(cur))
			} else {
				suspended = append(suspended, cur)
			}
			cur = Group{}

		default:
			cur.append(line, idx)
		}
	}
	flush()
	for i := len(suspended) - 1; i >= 0; i-- {
		if len(suspended[i].Members) > 0 {
			groups = append(groups, suspended[i])
		}
	}

	groups = mergeTopLevel(groups, body)
	groups = splitCallLiterals(groups, callKeys)
	return groups
}

// entersNested reports whether the line declares a construct whose body
// spans following lines: `name = {`, `name = [`, `type = object({`,
// `type = list(object({`, or any assignment left open at a brace.
func entersNested(trimmed string, counts BracketCounts) bool {
	if !strings.Contains(trimmed, "=") {
		return false
	}
	if strings.HasSuffix(trimmed, "{") && !counts.BracesBalanced() {
		return true
	}
	if strings.HasSuffix(trimmed, "[") && !counts.BracketsBalanced() {
		return afterEquals(trimmed) == "["
	}
	return false
}

// isCloser reports whether the line exits a nested construct: `}`, `})`,
// `}))`, `]`, `],` and friends, or an expression close that pulls a brace
// shut with it.
func isCloser(trimmed string) bool {
	if strings.HasPrefix(trimmed, "}") || strings.HasPrefix(trimmed, "]") {
		return true
	}
	if strings.Contains(trimmed, "})") {
		return true
	}
	return strings.HasSuffix(trimmed, ")") && strings.Contains(trimmed, "}")
}

func snapshot(g Group) Group {
	cp := Group{Members: make([]Member, len(g.Members))}
	copy(cp.Members, g.Members)
	return cp
}

// innermostCall finds the deepest call-literal context opened strictly
// before the given line.
func innermostCall(stack []openContext, idx int) (openContext, bool) {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].kind == ctxCall && stack[i].anchorLine < idx {
			return stack[i], true
		}
	}
	return openContext{}, false
}

// hasParamAtIndent reports whether the group holds an assignment line at
// exactly the given indentation.
func hasParamAtIndent(g Group, indent int) bool {
	for _, m := range g.Members {
		if strings.Contains(m.Text, "=") && !IsComment(m.Text) && leadingSpaces(m.Text) == indent {
			return true
		}
	}
	return false
}

// mergeTopLevel joins adjacent groups that both hold block-top-level
// parameters when no blank source line separates them, so a value that
// interposes an array or object between two top-level parameters does not
// break their alignment.
func mergeTopLevel(groups []Group, body []string) []Group {
	var out []Group
	for _, g := range groups {
		if len(out) > 0 &&
			hasParamAtIndent(out[len(out)-1], blockBodyIndent) &&
			hasParamAtIndent(g, blockBodyIndent) &&
			!blankBetween(body, lastIndex(out[len(out)-1]), firstIndex(g)) {
			out[len(out)-1].Members = append(out[len(out)-1].Members, g.Members...)
			continue
		}
		out = append(out, g)
	}
	return out
}

func firstIndex(g Group) int {
	if len(g.Members) == 0 {
		return -1
	}
	return g.Members[0].Index
}

func lastIndex(g Group) int {
	n := -1
	for _, m := range g.Members {
		if m.Index > n {
			n = m.Index
		}
	}
	return n
}

// blankBetween reports whether any line strictly between the two indexes is
// blank.
func blankBetween(body []string, from, to int) bool {
	if from < 0 || to < 0 {
		return false
	}
	for i := from + 1; i < to && i < len(body); i++ {
		if IsBlank(body[i]) {
			return true
		}
	}
	return false
}

// splitCallLiterals separates members living inside a function-call literal
// from members outside it, re-keys the inside members by their call site and
// indentation, and re-merges singleton groups that share a key. Parameters
// of the same call at the same depth align together even when the structural
// pass put them in different groups.
func splitCallLiterals(groups []Group, callKeys map[int]callKey) []Group {
	var out []Group
	byKey := make(map[callKey]int) // key -> index in out

	for _, g := range groups {
		var inside map[callKey][]Member
		var outside []Member

		for _, m := range g.Members {
			if k, ok := callKeys[m.Index]; ok && strings.Contains(m.Text, "=") && !IsComment(m.Text) {
				if inside == nil {
					inside = make(map[callKey][]Member)
				}
				inside[k] = append(inside[k], m)
				continue
			}
			outside = append(outside, m)
		}

		if inside == nil {
			out = append(out, g)
			continue
		}

		if len(outside) > 0 {
			out = append(out, Group{Members: outside})
		}
		keys := make([]callKey, 0, len(inside))
		for k := range inside {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(a, b int) bool {
			return inside[keys[a]][0].Index < inside[keys[b]][0].Index
		})
		for _, k := range keys {
			if i, ok := byKey[k]; ok {
				out[i].Members = append(out[i].Members, inside[k]...)
				continue
			}
			byKey[k] = len(out)
			out = append(out, Group{Members: inside[k]})
		}
	}

	return out
}
