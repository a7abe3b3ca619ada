package indent

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santosr2/tfstyle/pkg/sdk"
)

func runIndent(t *testing.T, path, content string) []sdk.Finding {
	t.Helper()
	c := &sdk.Collector{Severity: sdk.SeverityError}
	New().Check(path, content, c.Report)
	return c.Findings
}

func TestRule_Metadata(t *testing.T) {
	r := New()
	assert.Equal(t, "ST.005", r.ID())
	assert.NotEmpty(t, r.Name())
	assert.NotEmpty(t, r.Description())
}

func TestCheck_WellFormed(t *testing.T) {
	content := `resource "aws_instance" "web" {
  ami = "abc"
  tags = {
    Name = "x"
  }
}
`
	assert.Empty(t, runIndent(t, "main.tf", content))
}

func TestCheck_WrongDepth(t *testing.T) {
	content := `resource "aws_instance" "web" {
    ami = "abc"
}
`
	findings := runIndent(t, "main.tf", content)
	require.Len(t, findings, 1)
	assert.Equal(t, 2, findings[0].Line)
	assert.Equal(t,
		"Indentation level incorrect. Current indentation: 4 spaces, Expected: 2 spaces",
		findings[0].Message)
}

func TestCheck_OddIndentTable(t *testing.T) {
	tests := []struct {
		indent   int
		expected int
	}{
		{1, 2},
		{3, 2},
		{5, 6},
		{7, 6},
		{9, 8},
		{11, 10},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d spaces", tt.indent), func(t *testing.T) {
			content := strings.Repeat(" ", tt.indent) + "x = 1\n"
			findings := runIndent(t, "main.tf", content)
			require.Len(t, findings, 1)
			assert.Equal(t,
				fmt.Sprintf("Indentation level incorrect. Current indentation: %d spaces, Expected: %d spaces", tt.indent, tt.expected),
				findings[0].Message)
		})
	}
}

func TestCheck_TopLevelAssignmentInTf(t *testing.T) {
	// A bare assignment at column zero only makes sense in tfvars; in a
	// .tf file it is assumed to have lost its block indentation.
	findings := runIndent(t, "main.tf", "ami = \"abc\"\n")
	require.Len(t, findings, 1)
	assert.Equal(t,
		"Indentation level incorrect. Current indentation: 0 spaces, Expected: 2 spaces",
		findings[0].Message)
}

func TestCheck_TopLevelAssignmentInTfvars(t *testing.T) {
	assert.Empty(t, runIndent(t, "terraform.tfvars", "region = \"us\"\n"))
}

func TestCheck_TfvarsNested(t *testing.T) {
	content := `tags = {
  a = 1
}
`
	assert.Empty(t, runIndent(t, "terraform.tfvars", content))
}

func TestCheck_SplitDeclarationHeader(t *testing.T) {
	findings := runIndent(t, "main.tf", `  resource "aws_instance"`+"\n")
	require.Len(t, findings, 1)
	assert.Equal(t,
		"Indentation level incorrect. Current indentation: 2 spaces, Expected: 0 spaces",
		findings[0].Message)
}

func TestCheck_HeredocSkipped(t *testing.T) {
	content := `resource "aws_instance" "web" {
      user_data = <<EOT
        anything
   goes here
  EOT
}
`
	// The introducer line and the entire heredoc body are exempt from
	// the indentation contract.
	assert.Empty(t, runIndent(t, "main.tf", content))
}

func TestCheck_CommentsAndBlanksSkipped(t *testing.T) {
	content := `resource "aws_instance" "web" {
      # badly indented comment

  ami = "abc"
}
`
	assert.Empty(t, runIndent(t, "main.tf", content))
}

func TestCheck_InlineBalancedObject(t *testing.T) {
	content := `locals {
  m = {a = 1}
  l = [1, 2]
}
`
	assert.Empty(t, runIndent(t, "main.tf", content))
}

func TestCheck_CloserAlignsWithOpenerLevel(t *testing.T) {
	content := `locals {
  list = [
    1,
    ]
}
`
	findings := runIndent(t, "main.tf", content)
	require.Len(t, findings, 1)
	assert.Equal(t, 4, findings[0].Line)
	assert.Equal(t,
		"Indentation level incorrect. Current indentation: 4 spaces, Expected: 2 spaces",
		findings[0].Message)
}

func TestCheck_CloseThenReopen(t *testing.T) {
	content := `locals {
  matrix = [
    [
      1,
    ], {
      a = 1
    },
  ]
}
`
	assert.Empty(t, runIndent(t, "main.tf", content))
}

func TestCheck_TabsSkipped(t *testing.T) {
	content := "resource \"aws_instance\" \"web\" {\n\tami = \"abc\"\n}\n"
	assert.Empty(t, runIndent(t, "main.tf", content))
}

func TestCheck_UnbalancedClosersClampAtZero(t *testing.T) {
	assert.Empty(t, runIndent(t, "main.tf", "}\n}\n"))
}
