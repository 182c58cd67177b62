package text

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/multichange/pkg/change"
	"gitlab.com/tozd/go/errors"
)

func setupTestLogger(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.TestWriter{T: t}).Level(zerolog.TraceLevel)
	return logger.WithContext(context.Background())
}

func TestBatchReplacer_ReplaceText(t *testing.T) {
	tests := []struct {
		name          string
		content       string
		changes       change.List
		want          string
		wantCount     int
		wantModified  bool
		wantErrorRule []int
	}{
		{
			name:    "simple_replacement",
			content: "Hello World",
			changes: change.List{
				{Matcher: "World", Resolver: "Universe"},
			},
			want:         "Hello Universe",
			wantCount:    1,
			wantModified: true,
		},
		{
			name:    "sequential_fold",
			content: "a",
			changes: change.List{
				{Matcher: "a", Resolver: "b"},
				{Matcher: "b", Resolver: "c"},
			},
			want:         "c",
			wantCount:    2,
			wantModified: true,
		},
		{
			name:    "order_matters",
			content: "a",
			changes: change.List{
				{Matcher: "b", Resolver: "c"},
				{Matcher: "a", Resolver: "b"},
			},
			want:         "b",
			wantCount:    1,
			wantModified: true,
		},
		{
			name:    "invalid_rule_is_skipped",
			content: "one two",
			changes: change.List{
				{Matcher: "one", Resolver: "1"},
				{Matcher: "(", Resolver: "x", IsUsingRegEx: true},
				{Matcher: "two", Resolver: "2"},
			},
			want:          "1 2",
			wantCount:     2,
			wantModified:  true,
			wantErrorRule: []int{1},
		},
		{
			name:    "empty_matcher_is_skipped",
			content: "abc",
			changes: change.List{
				{Matcher: "", Resolver: "x"},
			},
			want:         "abc",
			wantCount:    0,
			wantModified: false,
		},
		{
			name:    "replacement_back_to_original_is_not_modified",
			content: "abc",
			changes: change.List{
				{Matcher: "b", Resolver: "B", IsCaseSensitive: true},
				{Matcher: "B", Resolver: "b", IsCaseSensitive: true},
			},
			want:         "abc",
			wantCount:    2,
			wantModified: false,
		},
		{
			name:         "empty_rules",
			content:      "Hello World",
			changes:      change.List{},
			want:         "Hello World",
			wantCount:    0,
			wantModified: false,
		},
		{
			name:    "empty_content",
			content: "",
			changes: change.List{
				{Matcher: "World", Resolver: "Universe"},
			},
			want:         "",
			wantCount:    0,
			wantModified: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := setupTestLogger(t)
			replacer := NewBatchReplacer()
			result, err := replacer.ReplaceText(ctx, strings.NewReader(tt.content), tt.changes)
			require.NoError(t, err)
			require.NotNil(t, result)

			assert.Equal(t, tt.content, string(result.OriginalContent))
			assert.Equal(t, tt.want, string(result.ModifiedContent))
			assert.Equal(t, tt.wantCount, result.ReplacementCount)
			assert.Equal(t, tt.wantModified, result.WasModified)
			assert.Len(t, result.Rules, len(tt.changes))

			var gotErrorRules []int
			for _, perr := range result.PatternErrors {
				gotErrorRules = append(gotErrorRules, perr.Index)
				assert.True(t, result.Rules[perr.Index].Skipped)
			}
			assert.Equal(t, tt.wantErrorRule, gotErrorRules)
		})
	}
}

func TestApply_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(setupTestLogger(t))
	cancel()

	replacers, _ := change.CompileList(change.List{{Matcher: "a", Resolver: "b"}})
	_, err := Apply(ctx, "a", replacers)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestBatchReplacer_ReplaceText_InvalidUTF8(t *testing.T) {
	ctx := setupTestLogger(t)

	result, err := NewBatchReplacer().ReplaceText(ctx, strings.NewReader("a caf\xe9"), change.List{{Matcher: "a", Resolver: "b"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, change.ErrInvalidUTF8))
	assert.Nil(t, result)
}

func TestBatchReplacer_ValidateRules(t *testing.T) {
	tests := []struct {
		name      string
		changes   change.List
		wantError []string
	}{
		{
			name: "valid_rules",
			changes: change.List{
				{Matcher: "foo", Resolver: "bar"},
				{Matcher: `\d+`, IsUsingRegEx: true},
			},
		},
		{
			name: "literal_paren_is_valid",
			changes: change.List{
				{Matcher: "(", Resolver: "bar"},
			},
		},
		{
			name: "invalid_regex",
			changes: change.List{
				{Matcher: "ok"},
				{Matcher: "(", IsUsingRegEx: true},
				{Matcher: "[", IsUsingRegEx: true},
			},
			wantError: []string{"rule 1", "rule 2"},
		},
		{
			name:    "empty_rules",
			changes: change.List{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewBatchReplacer().ValidateRules(tt.changes)
			if len(tt.wantError) > 0 {
				require.Error(t, err)
				for _, want := range tt.wantError {
					assert.Contains(t, err.Error(), want)
				}
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTransform(t *testing.T) {
	out, perrs := Transform(change.List{
		{Matcher: "x", Resolver: "y"},
		{Matcher: "(", IsUsingRegEx: true},
	}, "xx")
	assert.Equal(t, "yy", out)
	require.Len(t, perrs, 1)
	assert.Equal(t, 1, perrs[0].Index)
}
