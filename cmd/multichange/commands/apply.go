package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/multichange/cmd/multichange/opts"
	"github.com/walteh/multichange/pkg/change"
	"github.com/walteh/multichange/pkg/log"
	"github.com/walteh/multichange/pkg/provider"
	"github.com/walteh/multichange/pkg/status"
	"github.com/walteh/multichange/pkg/text"
)

// NewApplyCmd creates a new apply command
func NewApplyCmd(opts *opts.RootOpts) *cobra.Command {
	var (
		all       bool
		dryRun    bool
		rulesFile string
	)

	cmd := &cobra.Command{
		Use:   "apply [file|-]",
		Short: "Apply the rule list to a file or to every target",
		Long: `Apply folds every rule of the list, in order, over the document text
and overwrites the document with the result.

With a file argument the file is the active document. With --all (or
multi_document in the config, or the session's all files toggle) every file
matched by the configured targets is transformed. "-" reads stdin and
writes the result to stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "apply").Logger().WithContext(cmd.Context())

			list, sessionMulti, err := opts.Rules(ctx, rulesFile)
			if err != nil {
				return err
			}

			if len(args) == 1 && args[0] == "-" {
				return applyStdin(ctx, opts, list)
			}

			active := ""
			if len(args) == 1 {
				active = args[0]
			}
			multi := all || (active == "" && (opts.Config.MultiDocument || sessionMulti))

			_, err = runApply(ctx, opts, list, active, multi, dryRun)
			return err
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "apply to every file matched by the configured targets")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print a unified diff instead of writing")
	cmd.Flags().StringVarP(&rulesFile, "rules", "r", "", "read the rule list from a JSON file instead of the session")

	return cmd
}

func applyStdin(ctx context.Context, opts *opts.RootOpts, list change.List) error {
	result, err := text.NewBatchReplacer().ReplaceText(ctx, opts.Stdin, list)
	if err != nil {
		return errors.Errorf("applying changes to stdin: %w", err)
	}
	for _, perr := range result.PatternErrors {
		zerolog.Ctx(ctx).Warn().Int("rule", perr.Index+1).Err(perr).Msg("skipping invalid rule")
	}
	if _, err := opts.Stdout.Write(result.ModifiedContent); err != nil {
		return errors.Errorf("writing stdout: %w", err)
	}
	return nil
}

// runApply transforms the active document, or every visible one, and prints
// one line per document.
func runApply(ctx context.Context, opts *opts.RootOpts, list change.List, active string, multi, dryRun bool) (*provider.TransformResult, error) {
	host := opts.Host(active)
	reporter := status.New()
	p := opts.Provider(host, dryRun, reporter)

	opts.Console.StartBatch(ctx, log.BatchOperation{Rules: len(list), All: multi, DryRun: dryRun})
	defer opts.Console.EndBatch(ctx)

	result, err := p.Transform(ctx, list, multi)
	if result != nil {
		opts.UserLogger.LogPatternErrors(result.PatternErrors)
		for _, dr := range result.Documents {
			if dr == nil {
				continue
			}
			logDocument(ctx, opts, dr, dryRun)
		}
	}
	if err != nil {
		return result, errors.Errorf("applying changes: %w", err)
	}

	summary := reporter.Summary()
	zerolog.Ctx(ctx).Debug().
		Int("documents", summary.Documents).
		Int("modified", summary.Modified).
		Int("insertions", summary.Stats.Insertions).
		Int("deletions", summary.Stats.Deletions).
		Msg("apply summary")

	if err := result.Failed(); err != nil {
		return result, err
	}
	return result, nil
}

func logDocument(ctx context.Context, opts *opts.RootOpts, dr *provider.DocumentResult, dryRun bool) {
	op := log.DocumentOperation{
		Path:         dr.Document.URI,
		Language:     dr.Document.Language,
		Status:       status.StatusUnchanged.String(),
		Replacements: dr.Result.ReplacementCount,
	}

	switch {
	case dr.Err != nil:
		op.IsFailed = true
		op.Status = status.StatusFailed.String()
	case dr.Result.WasModified:
		op.IsModified = true
		op.Status = status.StatusModified.String()
	}
	opts.Console.LogDocumentOperation(ctx, op)

	if dr.Err != nil {
		opts.UserLogger.LogValidation(false, fmt.Sprintf("could not apply changes to %s", dr.Document.URI), dr.Err)
	}

	if dryRun && dr.Result.WasModified {
		fmt.Fprint(opts.Stdout, status.UnifiedDiff(dr.Document.URI,
			string(dr.Result.OriginalContent), string(dr.Result.ModifiedContent)))
	}
}
