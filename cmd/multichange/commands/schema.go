package commands

import (
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/multichange/cmd/multichange/opts"
	"github.com/walteh/multichange/pkg/change"
)

// NewSchemaCmd creates a new schema command
func NewSchemaCmd(opts *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of an exported rule list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := change.Schema()
			if err != nil {
				return errors.Errorf("generating schema: %w", err)
			}
			if _, err := opts.Stdout.Write(append(data, '\n')); err != nil {
				return errors.Errorf("writing schema: %w", err)
			}
			return nil
		},
	}
}
