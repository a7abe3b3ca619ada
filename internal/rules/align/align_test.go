package align

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santosr2/tfstyle/pkg/sdk"
)

func runAlign(t *testing.T, path, content string) []sdk.Finding {
	t.Helper()
	c := &sdk.Collector{Severity: sdk.SeverityError}
	New().Check(path, content, c.Report)
	return c.Findings
}

func TestRule_Metadata(t *testing.T) {
	r := New()
	assert.Equal(t, "ST.003", r.ID())
	assert.NotEmpty(t, r.Name())
	assert.NotEmpty(t, r.Description())
}

func TestCheck_AlignedResource(t *testing.T) {
	content := `resource "aws_instance" "web" {
  ami           = "abc"
  instance_type = "t3.micro"
}
`
	assert.Empty(t, runAlign(t, "main.tf", content))
}

func TestCheck_UnderAligned(t *testing.T) {
	content := `resource "aws_instance" "web" {
  ami = "abc"
  instance_type = "t3.micro"
}
`
	findings := runAlign(t, "main.tf", content)
	require.Len(t, findings, 1)
	assert.Equal(t, 2, findings[0].Line)
	assert.Equal(t,
		"Parameter assignment equals sign not aligned in resource.aws_instance.web. Expected 11 spaces between parameter name and '=', equals sign should be at column 17",
		findings[0].Message)
}

func TestCheck_OverAligned(t *testing.T) {
	content := `resource "aws_instance" "web" {
  ami            = "abc"
  instance_type = "t3.micro"
}
`
	findings := runAlign(t, "main.tf", content)
	require.Len(t, findings, 1)
	assert.Equal(t, 2, findings[0].Line)
	assert.Equal(t,
		"Parameter assignment equals sign not aligned in resource.aws_instance.web. Too many spaces before '=', equals sign should be at column 17",
		findings[0].Message)
}

func TestCheck_LoneParamSpacing(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		messages []string
	}{
		{
			name: "single space is fine",
			line: `  ami = "abc"`,
		},
		{
			name: "extra space before equals",
			line: `  ami  = "abc"`,
			messages: []string{
				"Parameter assignment equals sign spacing incorrect in resource.aws_instance.web. Expected exactly 1 space between parameter name and '='",
			},
		},
		{
			name: "no space after equals",
			line: `  ami ="abc"`,
			messages: []string{
				"Parameter assignment should have exactly one space after '=' in resource.aws_instance.web",
			},
		},
		{
			name: "multiple spaces after equals",
			line: `  ami =  "abc"`,
			messages: []string{
				"Parameter assignment should have exactly one space after '=' in resource.aws_instance.web, found multiple spaces",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := "resource \"aws_instance\" \"web\" {\n" + tt.line + "\n}\n"
			findings := runAlign(t, "main.tf", content)
			require.Len(t, findings, len(tt.messages))
			for i, msg := range tt.messages {
				assert.Equal(t, 2, findings[i].Line)
				assert.Equal(t, msg, findings[i].Message)
			}
		})
	}
}

func TestCheck_MetaArgumentsNotReported(t *testing.T) {
	content := `resource "aws_instance" "web" {
  count = 2
  instance_type = "t3.micro"
}
`
	assert.Empty(t, runAlign(t, "main.tf", content))
}

func TestCheck_QuotedNamesWidenColumn(t *testing.T) {
	content := `locals {
  "a" = 1
  "bb" = 2
}
`
	findings := runAlign(t, "main.tf", content)
	require.Len(t, findings, 1)
	assert.Equal(t, 2, findings[0].Line)
	assert.Contains(t, findings[0].Message, "equals sign should be at column 8")
}

func TestCheck_NestedGroupAlignsIndependently(t *testing.T) {
	content := `resource "aws_instance" "web" {
  ami           = "abc"
  instance_type = "t3.micro"
  tags          = {
    Name = "web"
    Env  = "prod"
  }
}
`
	assert.Empty(t, runAlign(t, "main.tf", content))
}

func TestCheck_NestedGroupMisalignment(t *testing.T) {
	content := `resource "aws_instance" "web" {
  ami           = "abc"
  instance_type = "t3.micro"
  tags          = {
    Name = "web"
    Env = "prod"
  }
}
`
	findings := runAlign(t, "main.tf", content)
	require.Len(t, findings, 1)
	assert.Equal(t, 6, findings[0].Line)
	assert.Contains(t, findings[0].Message, "Expected 2 spaces between parameter name and '='")
}

func TestCheck_BlankLineStartsNewGroup(t *testing.T) {
	content := `resource "aws_instance" "web" {
  ami = "abc"

  instance_type = "t3.micro"
}
`
	// Each sub-group has a single parameter with one space before '='.
	assert.Empty(t, runAlign(t, "main.tf", content))
}

func TestCheck_RequiredProvidersEntriesSkipped(t *testing.T) {
	content := `terraform {
  required_providers {
    aws = {
      source  = "hashicorp/aws"
      version = "~> 5.0"
    }
  }
}
`
	assert.Empty(t, runAlign(t, "versions.tf", content))
}

func TestCheck_TrailingCommentsIgnored(t *testing.T) {
	content := `resource "aws_instance" "web" {
  ami           = "abc"          # the image
  instance_type = "t3.micro"
}
`
	assert.Empty(t, runAlign(t, "main.tf", content))
}

func TestCheck_HeredocBodyIgnored(t *testing.T) {
	content := `resource "aws_instance" "web" {
  user_data = <<EOT
x=1
y   = 2
EOT
}
`
	assert.Empty(t, runAlign(t, "main.tf", content))
}

func TestCheck_TabLinesNotReported(t *testing.T) {
	content := "resource \"aws_instance\" \"web\" {\n\tami = \"abc\"\n  instance_type = \"t3.micro\"\n}\n"
	findings := runAlign(t, "main.tf", content)
	for _, f := range findings {
		assert.NotContains(t, f.Message, "not aligned")
	}
}

func TestCheck_FindingsSortedAndDeduplicated(t *testing.T) {
	content := `resource "aws_instance" "web" {
  ami = "abc"
  subnet_id = "s-1"
  instance_type = "t3.micro"
}
`
	findings := runAlign(t, "main.tf", content)
	require.NotEmpty(t, findings)
	for i := 1; i < len(findings); i++ {
		assert.LessOrEqual(t, findings[i-1].Line, findings[i].Line)
	}
	seen := make(map[string]bool)
	for _, f := range findings {
		k := fmt.Sprintf("%d:%s", f.Line, f.Message)
		assert.False(t, seen[k], "duplicate finding on line %d", f.Line)
		seen[k] = true
	}
}

func TestCheck_NoBlocks(t *testing.T) {
	assert.Empty(t, runAlign(t, "main.tf", "# only a comment\n"))
	assert.Empty(t, runAlign(t, "main.tf", ""))
}
