package scan

import "strings"

// BracketCounts holds the raw per-line open/close counts for both bracket
// types, before any balancing logic is applied.
type BracketCounts struct {
	OpenBraces    int
	CloseBraces   int
	OpenBrackets  int
	CloseBrackets int
}

// Count tallies braces and brackets on a line. Quoted strings are not
// excluded; callers that care (block headers) accept this as a documented
// limitation.
func Count(line string) BracketCounts {
	return BracketCounts{
		OpenBraces:    strings.Count(line, "{"),
		CloseBraces:   strings.Count(line, "}"),
		OpenBrackets:  strings.Count(line, "["),
		CloseBrackets: strings.Count(line, "]"),
	}
}

// BracesBalanced reports whether the line opens and closes the same nonzero
// number of braces, e.g. a `{for ...}` comprehension. Such lines leave the
// brace depth untouched.
func (c BracketCounts) BracesBalanced() bool {
	return c.OpenBraces == c.CloseBraces && c.OpenBraces > 0
}

// BracketsBalanced is the bracket analogue of BracesBalanced.
func (c BracketCounts) BracketsBalanced() bool {
	return c.OpenBrackets == c.CloseBrackets && c.OpenBrackets > 0
}

// Depths is a snapshot of the nesting state, tracked independently per
// bracket type. Depths never go negative: unbalanced closers clamp at zero.
type Depths struct {
	Braces   int
	Brackets int
}

// Level is the total nesting level, brace depth plus bracket depth.
func (d Depths) Level() int {
	return d.Braces + d.Brackets
}

// NestingTracker folds bracket counts over a file's lines, yielding for each
// line the depth before and after it. The pre-line depth is what indentation
// expectations are computed from; the post-line depth is what grouping
// decisions consult.
type NestingTracker struct {
	depths Depths
}

// Observe advances the tracker by one line.
func (t *NestingTracker) Observe(line string) (before, after Depths) {
	before = t.depths
	c := Count(line)

	if net := c.OpenBraces - c.CloseBraces; net != 0 {
		t.depths.Braces += net
		if t.depths.Braces < 0 {
			t.depths.Braces = 0
		}
	}
	if net := c.OpenBrackets - c.CloseBrackets; net != 0 {
		t.depths.Brackets += net
		if t.depths.Brackets < 0 {
			t.depths.Brackets = 0
		}
	}

	return before, t.depths
}

// Depths returns the current state without advancing.
func (t *NestingTracker) Depths() Depths {
	return t.depths
}

// Reset returns the tracker to zero depth. Used at file boundaries.
func (t *NestingTracker) Reset() {
	t.depths = Depths{}
}
