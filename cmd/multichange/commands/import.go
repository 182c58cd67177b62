package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/multichange/cmd/multichange/opts"
	"github.com/walteh/multichange/pkg/change"
	"github.com/walteh/multichange/pkg/remote"

	_ "github.com/walteh/multichange/pkg/remote/github"
)

// NewImportCmd creates a new import command
func NewImportCmd(opts *opts.RootOpts) *cobra.Command {
	var githubRef string

	cmd := &cobra.Command{
		Use:   "import [file|-]",
		Short: "Replace the session rule list with an exported one",
		Long: `Import reads a JSON array of changes and replaces the session rule list
with it. Missing or mistyped fields fall back to their defaults; anything
that is not an array is rejected and the session is left untouched.

The list is read from the file argument, from stdin with "-", or from a
repository with --github owner/repo/path/to/rules.json[@ref].`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var (
				list change.List
				err  error
			)
			switch {
			case githubRef != "":
				if len(args) > 0 {
					return errors.New("--github does not take a file argument")
				}
				ref, perr := remote.ParseReference(githubRef)
				if perr != nil {
					return perr
				}
				list, err = remote.FetchRules(ctx, ref)
			case len(args) == 1 && args[0] == "-":
				list, err = change.Decode(opts.Stdin)
			default:
				active := ""
				if len(args) == 1 {
					active = args[0]
				}
				list, err = opts.Provider(opts.Host(active), false, nil).Import(ctx)
			}
			if err != nil {
				return errors.Errorf("importing changes: %w", err)
			}

			st, err := opts.LoadState(ctx)
			if err != nil {
				return err
			}
			st.Replace(list)
			if err := opts.SaveState(ctx, st); err != nil {
				return err
			}

			opts.UserLogger.LogStateChange(fmt.Sprintf("Imported %d changes", len(list)))
			return nil
		},
	}

	cmd.Flags().StringVar(&githubRef, "github", "", "import from a repository file, owner/repo/path[@ref]")

	return cmd
}
