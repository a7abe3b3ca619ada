package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCount(t *testing.T) {
	tests := []struct {
		line string
		want BracketCounts
	}{
		{"resource \"x\" \"y\" {", BracketCounts{OpenBraces: 1}},
		{"}", BracketCounts{CloseBraces: 1}},
		{"  list = [1, 2]", BracketCounts{OpenBrackets: 1, CloseBrackets: 1}},
		{"  m = {a = [{", BracketCounts{OpenBraces: 2, OpenBrackets: 1}},
		{"plain line", BracketCounts{}},
		// Braces inside strings are counted; documented limitation.
		{`  s = "{"`, BracketCounts{OpenBraces: 1}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Count(tt.line), "line %q", tt.line)
	}
}

func TestBalanced(t *testing.T) {
	c := Count("  tags = {for k, v in var.tags : k => v}")
	assert.True(t, c.BracesBalanced())
	assert.False(t, c.BracketsBalanced())

	c = Count("  ids = [for i in var.ids : i]")
	assert.True(t, c.BracketsBalanced())
	assert.False(t, c.BracesBalanced())

	// Zero of each is not "balanced".
	c = Count("plain")
	assert.False(t, c.BracesBalanced())
	assert.False(t, c.BracketsBalanced())
}

func TestNestingTracker(t *testing.T) {
	var nest NestingTracker

	before, after := nest.Observe("resource \"x\" \"y\" {")
	assert.Equal(t, Depths{}, before)
	assert.Equal(t, Depths{Braces: 1}, after)

	before, after = nest.Observe("  tags = {")
	assert.Equal(t, Depths{Braces: 1}, before)
	assert.Equal(t, Depths{Braces: 2}, after)

	before, after = nest.Observe("    ids = [")
	assert.Equal(t, Depths{Braces: 2}, before)
	assert.Equal(t, Depths{Braces: 2, Brackets: 1}, after)
	assert.Equal(t, 3, after.Level())

	_, after = nest.Observe("    ]")
	assert.Equal(t, Depths{Braces: 2}, after)

	_, after = nest.Observe("  }")
	_, after = nest.Observe("}")
	assert.Equal(t, Depths{}, after)
}

func TestNestingTracker_ClampsAtZero(t *testing.T) {
	var nest NestingTracker

	_, after := nest.Observe("}")
	assert.Equal(t, Depths{}, after)

	_, after = nest.Observe("]")
	assert.Equal(t, Depths{}, after)
}

func TestNestingTracker_BalancedLineNoChange(t *testing.T) {
	var nest NestingTracker

	nest.Observe("locals {")
	before, after := nest.Observe("  m = {a = 1}")
	assert.Equal(t, before, after)
	assert.Equal(t, Depths{Braces: 1}, nest.Depths())
}

func TestNestingTracker_Reset(t *testing.T) {
	var nest NestingTracker

	nest.Observe("{")
	nest.Observe("[")
	nest.Reset()
	assert.Equal(t, Depths{}, nest.Depths())
}
