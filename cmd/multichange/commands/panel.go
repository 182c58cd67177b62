package commands

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/multichange/cmd/multichange/opts"
	"github.com/walteh/multichange/pkg/document"
	"github.com/walteh/multichange/pkg/panel"
)

// NewPanelCmd creates a new panel command
func NewPanelCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "panel [file]",
		Short: "Edit and apply the rule list interactively",
		Long: `Panel opens an interactive editor over the session rule list. Every edit
is saved to the session immediately. The file argument is the active
document that apply and import work on.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			st, err := opts.LoadState(ctx)
			if err != nil {
				return err
			}

			active := ""
			if len(args) == 1 {
				active = args[0]
			}

			// the terminal belongs to the panel, so warnings come back as
			// errors and untitled documents go to disk
			hostOpts := opts.HostOptions(active)
			hostOpts.OnWarn = func(ctx context.Context, msg string) {
				zerolog.Ctx(ctx).Warn().Msg(msg)
			}
			if hostOpts.UntitledDir == "" {
				hostOpts.UntitledDir = opts.Config.Root
			}

			p := opts.Provider(document.NewFileHost(hostOpts), false, nil)
			model := panel.New(ctx, st, p, opts.Store)

			program := tea.NewProgram(model,
				tea.WithContext(ctx),
				tea.WithInput(opts.Stdin),
				tea.WithOutput(opts.Stdout),
				tea.WithAltScreen(),
			)
			if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return errors.Errorf("running panel: %w", err)
			}
			return nil
		},
	}

	return cmd
}
