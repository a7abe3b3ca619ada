package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeredocTracker(t *testing.T) {
	t.Run("basic heredoc", func(t *testing.T) {
		var hd HeredocTracker

		assert.False(t, hd.Observe("  user_data = <<EOT"))
		assert.True(t, hd.Active())
		assert.True(t, hd.Observe("#!/bin/bash"))
		assert.True(t, hd.Observe("echo { not counted }"))
		assert.False(t, hd.Observe("EOT"))
		assert.False(t, hd.Active())
	})

	t.Run("indented terminator form", func(t *testing.T) {
		var hd HeredocTracker

		assert.False(t, hd.Observe("  policy = <<-JSON"))
		assert.True(t, hd.Observe(`    {"Version": "2012-10-17"}`))
		assert.False(t, hd.Observe("  JSON"))
		assert.False(t, hd.Active())
	})

	t.Run("lowercase terminator not recognized", func(t *testing.T) {
		var hd HeredocTracker

		assert.False(t, hd.Observe("  content = <<eot"))
		assert.False(t, hd.Active())
	})

	t.Run("introducer must end the line", func(t *testing.T) {
		var hd HeredocTracker

		assert.False(t, hd.Observe("  a = \"<<EOT inside string\""))
		assert.False(t, hd.Active())
	})

	t.Run("terminator comparison ignores surrounding whitespace", func(t *testing.T) {
		var hd HeredocTracker

		hd.Observe("x = <<EOF")
		assert.True(t, hd.Observe("body"))
		assert.False(t, hd.Observe("   EOF   "))
		assert.False(t, hd.Active())
	})

	t.Run("no nesting inside a span", func(t *testing.T) {
		var hd HeredocTracker

		hd.Observe("x = <<EOF")
		assert.True(t, hd.Observe("y = <<INNER"))
		assert.False(t, hd.Observe("EOF"))
		assert.False(t, hd.Active())
	})

	t.Run("reset clears open span", func(t *testing.T) {
		var hd HeredocTracker

		hd.Observe("x = <<EOF")
		hd.Reset()
		assert.False(t, hd.Active())
		assert.False(t, hd.Observe("plain line"))
	})
}
