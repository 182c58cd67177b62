package status

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name   string
		before string
		after  string
		want   Stats
	}{
		{name: "equal", before: "same", after: "same", want: Stats{}},
		{name: "append", before: "hello", after: "hello world", want: Stats{Insertions: 6}},
		{name: "remove", before: "hello world", after: "hello", want: Stats{Deletions: 6}},
		{name: "replace_word", before: "foo bar", after: "baz bar", want: Stats{Insertions: 3, Deletions: 3}},
		{name: "counts_runes", before: "héllo", after: "hallo", want: Stats{Insertions: 1, Deletions: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.before, tt.after)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.before != tt.after, got.Changed())
		})
	}
}

func TestDelta(t *testing.T) {
	delta := Delta("hello", "hello world")
	assert.True(t, strings.HasPrefix(delta, "=5\t+"), delta)
	assert.Contains(t, delta, "world")
	assert.Equal(t, "=4", Delta("same", "same"))
}

func TestUnifiedDiff(t *testing.T) {
	t.Run("equal_is_empty", func(t *testing.T) {
		assert.Equal(t, "", UnifiedDiff("a.txt", "x\n", "x\n"))
	})

	t.Run("changed_line", func(t *testing.T) {
		got := UnifiedDiff("notes.txt", "one\ntwo\nthree\n", "one\n2\nthree\n")
		assert.Contains(t, got, "--- a/notes.txt\n+++ b/notes.txt\n")
		assert.Contains(t, got, "\n-two\n+2\n")
		assert.Contains(t, got, " one\n")
	})
}
