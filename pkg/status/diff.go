package status

import (
	"unicode/utf8"

	"github.com/aymanbagabas/go-udiff"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Stats counts the characters a rewrite inserted and deleted.
type Stats struct {
	Insertions int
	Deletions  int
}

// Changed reports whether anything was inserted or deleted.
func (s Stats) Changed() bool {
	return s.Insertions > 0 || s.Deletions > 0
}

// Compute diffs two versions of a document at character level.
func Compute(before, after string) Stats {
	if before == after {
		return Stats{}
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var s Stats
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			s.Insertions += utf8.RuneCountInString(d.Text)
		case diffmatchpatch.DiffDelete:
			s.Deletions += utf8.RuneCountInString(d.Text)
		}
	}
	return s
}

// Delta encodes the rewrite compactly, so it can be logged or stored.
func Delta(before, after string) string {
	dmp := diffmatchpatch.New()
	return dmp.DiffToDelta(dmp.DiffMain(before, after, false))
}

// UnifiedDiff renders a line-level unified diff labelled a/uri and b/uri.
// Equal inputs produce the empty string.
func UnifiedDiff(uri, before, after string) string {
	return udiff.Unified("a/"+uri, "b/"+uri, before, after)
}
