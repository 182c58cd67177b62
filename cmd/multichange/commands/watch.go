package commands

import (
	"context"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/multichange/cmd/multichange/opts"
	"github.com/walteh/multichange/pkg/watch"
)

// NewWatchCmd creates a new watch command
func NewWatchCmd(opts *opts.RootOpts) *cobra.Command {
	var (
		all       bool
		rulesFile string
		debounce  = watch.DefaultDebounce
	)

	cmd := &cobra.Command{
		Use:   "watch [file]",
		Short: "Re-apply the rule list whenever it changes",
		Long: `Watch applies the rule list once, then again every time the rules file
(or the session file) is written, until interrupted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			active := ""
			if len(args) == 1 {
				active = args[0]
			}

			apply := func(ctx context.Context, path string) error {
				list, sessionMulti, err := opts.Rules(ctx, rulesFile)
				if err != nil {
					return err
				}
				multi := all || (active == "" && (opts.Config.MultiDocument || sessionMulti))
				_, err = runApply(ctx, opts, list, active, multi, false)
				return err
			}

			path := opts.RulesPath(rulesFile)
			w, err := watch.New([]string{path}, watch.WithDebounce(debounce))
			if err != nil {
				return errors.Errorf("watching %s: %w", path, err)
			}
			defer w.Close()

			if err := apply(ctx, path); err != nil {
				opts.UserLogger.LogValidation(false, "Initial apply failed", err)
			}

			opts.UserLogger.LogStateChange("Watching " + path)
			zerolog.Ctx(ctx).Debug().Strs("files", w.Files()).Msg("watching")

			return w.Run(ctx, apply)
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "apply to every file matched by the configured targets")
	cmd.Flags().StringVarP(&rulesFile, "rules", "r", "", "watch and apply a JSON rule file instead of the session")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "wait this long for writes to settle")

	return cmd
}
