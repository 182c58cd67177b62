package text

import (
	"context"
	"io"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/walteh/multichange/pkg/change"
	"gitlab.com/tozd/go/errors"
)

// BatchReplacer implements TextReplacer on top of compiled changes
type BatchReplacer struct{}

// NewBatchReplacer creates a new BatchReplacer
func NewBatchReplacer() *BatchReplacer {
	return &BatchReplacer{}
}

// ReplaceText implements TextReplacer.ReplaceText
func (r *BatchReplacer) ReplaceText(ctx context.Context, content io.Reader, changes change.List) (*ReplacementResult, error) {
	originalContent, err := io.ReadAll(content)
	if err != nil {
		return nil, errors.Errorf("reading content: %w", err)
	}

	replacers, perrs := change.CompileList(changes)
	result, err := Apply(ctx, string(originalContent), replacers)
	if err != nil {
		return nil, err
	}
	result.PatternErrors = perrs
	return result, nil
}

// Apply folds the replacers over text. Nil replacers stand for rules that
// did not compile and are skipped. The fold stops between rules when ctx is
// cancelled; nothing partial is returned in that case. Text that is not
// valid UTF-8 is refused with change.ErrInvalidUTF8.
func Apply(ctx context.Context, text string, replacers []*change.Replacer) (*ReplacementResult, error) {
	logger := zerolog.Ctx(ctx)

	if !utf8.ValidString(text) {
		return nil, errors.WithStack(change.ErrInvalidUTF8)
	}

	result := &ReplacementResult{
		OriginalContent: []byte(text),
		Rules:           make([]RuleResult, len(replacers)),
	}

	current := text
	for i, rep := range replacers {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("applying rule %d: %w", i, err)
		}

		result.Rules[i].Index = i
		if rep == nil || rep.Change().IsEmpty() {
			result.Rules[i].Skipped = true
			continue
		}

		next, n, err := rep.Replace(current)
		if err != nil {
			return nil, errors.Errorf("applying rule %d: %w", i, err)
		}

		logger.Trace().Int("rule", i).Int("replacements", n).Msg("applied rule")

		result.Rules[i].Replacements = n
		result.ReplacementCount += n
		current = next
	}

	result.ModifiedContent = []byte(current)
	result.WasModified = current != text
	return result, nil
}

// ValidateRules implements TextReplacer.ValidateRules
func (r *BatchReplacer) ValidateRules(changes change.List) error {
	_, perrs := change.CompileList(changes)
	if len(perrs) == 0 {
		return nil
	}
	errs := make([]error, 0, len(perrs))
	for _, perr := range perrs {
		errs = append(errs, perr)
	}
	return errors.Join(errs...)
}

// Transform applies changes to a string and returns the final text along
// with the rules that were skipped as invalid.
func Transform(changes change.List, text string) (string, []*change.InvalidPatternError) {
	replacers, perrs := change.CompileList(changes)
	current := text
	for _, rep := range replacers {
		current = rep.Transform(current)
	}
	return current, perrs
}
