package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/impo12-ty0076/sql-agent-sub002/internal/cli/output"
	"github.com/impo12-ty0076/sql-agent-sub002/internal/config"
	"github.com/impo12-ty0076/sql-agent-sub002/pkg/convert"
	"github.com/impo12-ty0076/sql-agent-sub002/pkg/core"
	"github.com/impo12-ty0076/sql-agent-sub002/pkg/translate"
)

// NewConvertCommand creates the convert command.
func NewConvertCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert [sql]",
		Short: "Translate a query between SQL dialects",
		Long: `Translate a query to the target dialect without executing it.

When --from is given, the translation runs between the named dialects.
Without --from, the source dialect is inferred from the constructs found
in the query.`,
		Example: `  sqlbridge convert --to hana "SELECT TOP 10 * FROM users"
  sqlbridge convert --from hana --to mssql "SELECT * FROM t LIMIT 5"
  sqlbridge convert --to hana --file report.sql`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sql, err := readSQLArg(cmd, args)
			if err != nil {
				return err
			}

			toFlag, _ := cmd.Flags().GetString("to")
			target, err := parseDialectFlag(toFlag, "to")
			if err != nil {
				return err
			}

			fromFlag, _ := cmd.Flags().GetString("from")
			if fromFlag != "" {
				source, err := parseDialectFlag(fromFlag, "from")
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), translate.Convert(sql, source, target))
				return nil
			}

			logger := config.GetLogger(cmd.Context())
			outcome := convert.New(logger).AutoConvert(sql, core.ConnectionConfig{Type: target})
			output.RenderWarnings(cmd.ErrOrStderr(), outcome.Warnings)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), outcome.Query)
			return nil
		},
	}

	cmd.Flags().String("from", "", "Source dialect (inferred when omitted)")
	cmd.Flags().String("to", "", "Target dialect (required)")
	cmd.Flags().String("file", "", "Read SQL from a file instead of the argument")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
