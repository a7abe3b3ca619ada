package scan

import (
	"regexp"
	"strings"
)

// heredocStart matches a heredoc introducer at the end of a line, e.g.
// `content = <<EOT` or `policy = <<-JSON`. Only uppercase terminators are
// recognized; lowercase ones, while valid Terraform, pass through unseen.
var heredocStart = regexp.MustCompile(`<<-?([A-Z]+)\s*$`)

// HeredocTracker is a single-pass state machine that marks the lines
// strictly inside a heredoc span as suppressed. The introducer line and the
// terminator line are both visible to the caller; everything between is not.
// Heredocs do not nest.
type HeredocTracker struct {
	terminator string
}

// Observe advances the tracker by one line and reports whether that line is
// suppressed (strictly inside a heredoc body).
func (t *HeredocTracker) Observe(line string) bool {
	if t.terminator != "" {
		if strings.TrimSpace(line) == t.terminator {
			t.terminator = ""
			return false
		}
		return true
	}

	if m := heredocStart.FindStringSubmatch(line); m != nil {
		t.terminator = m[1]
	}
	return false
}

// Active reports whether the tracker is currently inside a heredoc span.
func (t *HeredocTracker) Active() bool {
	return t.terminator != ""
}

// Reset clears any open span. Used at file boundaries.
func (t *HeredocTracker) Reset() {
	t.terminator = ""
}
