package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santosr2/tfstyle/pkg/sdk"
)

func sampleFindings() []sdk.Finding {
	return []sdk.Finding{
		{
			Rule:     "ST.003",
			Message:  "Parameter assignment equals sign not aligned in resource block",
			File:     "main.tf",
			Line:     4,
			Severity: sdk.SeverityError,
		},
		{
			Rule:     "ST.005",
			Message:  "Indentation level incorrect. Current indentation: 3 spaces, Expected: 2 spaces",
			File:     "variables.tf",
			Line:     7,
			Severity: sdk.SeverityWarning,
		},
	}
}

func TestTextFormatter(t *testing.T) {
	tests := []struct {
		name     string
		findings []sdk.Finding
		verbose  bool
		want     string
	}{
		{
			name:     "no findings",
			findings: nil,
			want:     "✓ No issues found\n",
		},
		{
			name: "single error",
			findings: []sdk.Finding{
				{
					Rule:     "ST.003",
					Message:  "Test error message",
					File:     "test.tf",
					Line:     3,
					Severity: sdk.SeverityError,
				},
			},
			want: "✗ test.tf: Test error message (ST.003)\n",
		},
		{
			name: "verbose includes line number",
			findings: []sdk.Finding{
				{
					Rule:     "ST.005",
					Message:  "Test warning",
					File:     "test.tf",
					Line:     12,
					Severity: sdk.SeverityWarning,
				},
			},
			verbose: true,
			want:    "⚠ test.tf:12: Test warning (ST.005)\n",
		},
		{
			name: "info icon",
			findings: []sdk.Finding{
				{
					Rule:     "ST.003",
					Message:  "Informational",
					File:     "test.tf",
					Line:     1,
					Severity: sdk.SeverityInfo,
				},
			},
			want: "ℹ test.tf: Informational (ST.003)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			f := &TextFormatter{Verbose: tt.verbose}
			require.NoError(t, f.Format(tt.findings, &buf))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := &JSONFormatter{Pretty: false}
	require.NoError(t, f.Format(sampleFindings(), &buf))

	var out JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	assert.Equal(t, 2, out.Summary.Total)
	assert.Equal(t, 1, out.Summary.Errors)
	assert.Equal(t, 1, out.Summary.Warnings)
	assert.Equal(t, 0, out.Summary.Info)

	require.Len(t, out.Findings, 2)
	assert.Equal(t, "ST.003", out.Findings[0].Rule)
	assert.Equal(t, "main.tf", out.Findings[0].File)
	assert.Equal(t, 4, out.Findings[0].Line)
	assert.Equal(t, "error", out.Findings[0].Severity)
}

func TestJSONFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	f := &JSONFormatter{Pretty: true}
	require.NoError(t, f.Format(nil, &buf))

	var out JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Empty(t, out.Findings)
	assert.Equal(t, 0, out.Summary.Total)
}

func TestSARIFFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := &SARIFFormatter{Version: "1.2.3"}
	require.NoError(t, f.Format(sampleFindings(), &buf))

	var doc SARIF
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "2.1.0", doc.Version)
	require.Len(t, doc.Runs, 1)

	run := doc.Runs[0]
	assert.Equal(t, "tfstyle", run.Tool.Driver.Name)
	assert.Equal(t, "1.2.3", run.Tool.Driver.Version)

	// Rules are deduplicated and sorted by ID
	require.Len(t, run.Tool.Driver.Rules, 2)
	assert.Equal(t, "ST.003", run.Tool.Driver.Rules[0].ID)
	assert.Equal(t, "ST.005", run.Tool.Driver.Rules[1].ID)

	require.Len(t, run.Results, 2)
	assert.Equal(t, "ST.003", run.Results[0].RuleID)
	assert.Equal(t, "error", run.Results[0].Level)
	assert.Equal(t, "main.tf", run.Results[0].Locations[0].PhysicalLocation.ArtifactLocation.URI)
	assert.Equal(t, 4, run.Results[0].Locations[0].PhysicalLocation.Region.StartLine)
	assert.Equal(t, "warning", run.Results[1].Level)
}

func TestSARIFLevel(t *testing.T) {
	tests := []struct {
		severity sdk.Severity
		want     string
	}{
		{sdk.SeverityError, "error"},
		{sdk.SeverityWarning, "warning"},
		{sdk.SeverityInfo, "note"},
		{sdk.Severity("bogus"), "warning"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sarifLevel(tt.severity))
	}
}

func TestGetFormatter(t *testing.T) {
	tests := []struct {
		format  string
		want    any
		wantErr bool
	}{
		{format: "text", want: &TextFormatter{}},
		{format: "", want: &TextFormatter{}},
		{format: "json", want: &JSONFormatter{}},
		{format: "json-compact", want: &JSONFormatter{}},
		{format: "sarif", want: &SARIFFormatter{}},
		{format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			f, err := GetFormatter(tt.format, false, "dev")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, f)
		})
	}
}
