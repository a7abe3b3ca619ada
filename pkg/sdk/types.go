// Package sdk holds the types shared between the style rules and their
// callers: the report callback the rules emit through, the finding shape the
// CLI aggregates, and the rule metadata interface.
package sdk

// Severity represents the severity level of a finding
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// ReportFunc receives one diagnostic. Rules call it once per finding, with
// findings for a file already sorted by line and deduplicated.
type ReportFunc func(file, ruleID, message string, line int)

// Finding represents a rule violation found in a file
type Finding struct {
	Rule     string   `json:"rule"`
	Message  string   `json:"message"`
	File     string   `json:"file"`
	Line     int      `json:"line"`
	Severity Severity `json:"severity"`
}

// Collector adapts a findings slice to a ReportFunc with a fixed severity.
type Collector struct {
	Severity Severity
	Findings []Finding
}

// Report implements ReportFunc.
func (c *Collector) Report(file, ruleID, message string, line int) {
	c.Findings = append(c.Findings, Finding{
		Rule:     ruleID,
		Message:  message,
		File:     file,
		Line:     line,
		Severity: c.Severity,
	})
}

// LineRule is a style rule working on raw file text. Description metadata is
// documentation only; the observable contract is what Check reports.
type LineRule interface {
	ID() string
	Name() string
	Description() string
	Check(path, content string, report ReportFunc)
}
