package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danforbes/dots/internal/schema"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the CUE schema of the normalized document",
		Long: `Schema prints the CUE definition that "dots validate" checks documents
against. Save it to validate documents with the cue tool directly:

  dots schema > metadata.cue
  cue vet -d '#Metadata' metadata.cue metadata.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			if f.Structured() {
				return f.Success(map[string]string{"schema": schema.Source()})
			}
			_, err := fmt.Fprint(cmd.OutOrStdout(), schema.Source())
			return err
		},
	}
}
