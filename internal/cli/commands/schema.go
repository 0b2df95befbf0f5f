package commands

import (
	"github.com/spf13/cobra"

	"github.com/impo12-ty0076/sql-agent-sub002/internal/cli/output"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "schema",
		Short:   "List the tables visible through a connection",
		Long:    `Describe the tables and columns the named connection can see.`,
		Example: `  sqlbridge schema -c warehouse`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ex, err := openExecutor(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = ex.Close() }()

			desc, err := ex.Schema(cmd.Context())
			if err != nil {
				return err
			}
			return output.RenderSchema(cmd.OutOrStdout(), desc, outputFormat(cmd))
		},
	}
}
