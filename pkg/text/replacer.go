package text

import (
	"context"
	"io"

	"github.com/walteh/multichange/pkg/change"
)

// RuleResult records what a single rule did to a document
type RuleResult struct {
	// Index is the position of the rule in the batch
	Index int

	// Replacements is the number of matches the rule replaced
	Replacements int

	// Skipped is set when the rule did not run (empty matcher or invalid pattern)
	Skipped bool
}

// ReplacementResult contains the results of applying a batch to one document
type ReplacementResult struct {
	// WasModified indicates if the document text changed
	WasModified bool

	// ReplacementCount is the number of replacements made across all rules
	ReplacementCount int

	// OriginalContent is the content before replacements
	OriginalContent []byte

	// ModifiedContent is the content after replacements
	ModifiedContent []byte

	// Rules holds one entry per rule, in batch order
	Rules []RuleResult

	// PatternErrors lists the rules that were skipped because they did not compile
	PatternErrors []*change.InvalidPatternError
}

// TextReplacer defines the interface for applying a batch of changes
type TextReplacer interface {
	// ReplaceText folds every change of the batch over the content, in order
	ReplaceText(ctx context.Context, content io.Reader, changes change.List) (*ReplacementResult, error)

	// ValidateRules checks that every change compiles
	ValidateRules(changes change.List) error
}
