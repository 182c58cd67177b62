package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/multichange/cmd/multichange/opts"
	"github.com/walteh/multichange/pkg/change"
)

// NewSaveCmd creates a new save command
func NewSaveCmd(opts *opts.RootOpts) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Export the session rule list as JSON",
		Long: `Save writes the session rule list as an indented JSON array. Without
--output the list is opened as a new untitled document: a file in
untitled_dir when configured, otherwise stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			st, err := opts.LoadState(ctx)
			if err != nil {
				return err
			}

			if output != "" {
				data, err := change.Marshal(st.Changes)
				if err != nil {
					return errors.Errorf("encoding changes: %w", err)
				}
				if err := os.WriteFile(output, data, 0644); err != nil {
					return errors.Errorf("writing %s: %w", output, err)
				}
				opts.UserLogger.LogStateChange(fmt.Sprintf("Saved %d changes to %s", len(st.Changes), output))
				return nil
			}

			uri, err := opts.Provider(opts.Host(""), false, nil).Save(ctx, st.Changes)
			if err != nil {
				return errors.Errorf("saving changes: %w", err)
			}
			if opts.Config.UntitledDir != "" {
				opts.UserLogger.LogStateChange(fmt.Sprintf("Saved %d changes to %s", len(st.Changes), uri))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the rule list to this file")

	return cmd
}
