package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripComments(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "no comments",
			content: "resource \"aws_instance\" \"web\" {\n  ami = \"abc\"\n}",
			want:    []string{"resource \"aws_instance\" \"web\" {", "  ami = \"abc\"", "}"},
		},
		{
			name:    "trailing comment removed",
			content: "  ami = \"abc\" # the image",
			want:    []string{"  ami = \"abc\""},
		},
		{
			name:    "comment-only line kept verbatim",
			content: "# header comment\n  ami = \"abc\"",
			want:    []string{"# header comment", "  ami = \"abc\""},
		},
		{
			name:    "hash inside double quotes kept",
			content: "  name = \"color#1\"",
			want:    []string{"  name = \"color#1\""},
		},
		{
			name:    "hash inside single quotes kept",
			content: "  name = 'color#1'",
			want:    []string{"  name = 'color#1'"},
		},
		{
			name:    "hash after closing quote removed",
			content: "  name = \"x\" # note",
			want:    []string{"  name = \"x\""},
		},
		{
			name:    "line count preserved",
			content: "a\n\nb\n",
			want:    []string{"a", "", "b", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripComments(tt.content))
		})
	}
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(""))
	assert.True(t, IsBlank("   \t "))
	assert.False(t, IsBlank("  x"))
}

func TestIsComment(t *testing.T) {
	assert.True(t, IsComment("# comment"))
	assert.True(t, IsComment("   # indented comment"))
	assert.False(t, IsComment("ami = \"abc\" # trailing"))
	assert.False(t, IsComment(""))
}

func TestIndent(t *testing.T) {
	tests := []struct {
		line string
		want int
	}{
		{"no indent", 0},
		{"  two spaces", 2},
		{"    four", 4},
		{"\ttabbed", -1},
		{"  \tmixed", -1},
		{"   ", 3},
		{"", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Indent(tt.line), "line %q", tt.line)
	}
}
