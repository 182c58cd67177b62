package main

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/walteh/multichange/cmd/multichange/commands"
	"github.com/walteh/multichange/cmd/multichange/opts"
	"github.com/walteh/multichange/pkg/session"
)

// newRootCmd creates the multichange command tree
func newRootCmd() *cobra.Command {
	rootOpts := &opts.RootOpts{}

	cmd := &cobra.Command{
		Use:   "multichange",
		Short: "Apply ordered find/replace rules to your files",
		Long: `multichange keeps an ordered list of find/replace rules (plain text or
regular expressions, with case and whole word toggles) and applies it to
one file or to every file matched by the configured targets.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging(cmd.Context(), rootOpts.Debug)
			cmd.SetContext(ctx)
			return rootOpts.Init(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	addRootFlags(cmd, rootOpts)

	cmd.AddCommand(
		commands.NewApplyCmd(rootOpts),
		commands.NewSaveCmd(rootOpts),
		commands.NewImportCmd(rootOpts),
		commands.NewRuleCmd(rootOpts),
		commands.NewPanelCmd(rootOpts),
		commands.NewWatchCmd(rootOpts),
		commands.NewSchemaCmd(rootOpts),
		newVersionCmd(),
	)

	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	cmd.PersistentFlags().StringVarP(&o.ConfigFile, "config", "c", "", "config file path (default: first of .multichange.{hcl,yaml,yml,json})")
	cmd.PersistentFlags().BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&o.StateFile, "state", "", "session state file (default: "+session.DefaultFileName+")")
}

// setupLogging configures the context logger based on flags
func setupLogging(ctx context.Context, debug bool) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.Ctx(ctx).Level(level)
	return logger.WithContext(ctx)
}
