package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/impo12-ty0076/sql-agent-sub002/internal/cli/output"
	"github.com/impo12-ty0076/sql-agent-sub002/pkg/connector"
)

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query [sql]",
		Short: "Execute a query against a configured backend",
		Long: `Execute a query against the named connection.

The query is translated for the backend's dialect before dispatch unless
--no-convert is given. Statements that modify data or schema are rejected
unless --allow-writes is given.`,
		Example: `  sqlbridge query -c warehouse "SELECT TOP 10 * FROM orders"
  sqlbridge query -c warehouse --timeout 30s --file report.sql
  sqlbridge query -c warehouse --allow-writes "DELETE FROM staging"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sql, err := readSQLArg(cmd, args)
			if err != nil {
				return err
			}

			ex, err := openExecutor(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = ex.Close() }()

			noConvert, _ := cmd.Flags().GetBool("no-convert")
			allowWrites, _ := cmd.Flags().GetBool("allow-writes")
			timeout, _ := cmd.Flags().GetDuration("timeout")
			params, _ := cmd.Flags().GetStringArray("param")

			args2 := make([]any, len(params))
			for i, p := range params {
				args2[i] = p
			}

			res, err := ex.ExecuteQuery(cmd.Context(), sql, connector.Options{
				Params:      args2,
				NoConvert:   noConvert,
				AllowWrites: allowWrites,
				Timeout:     timeout,
			})
			if err != nil {
				return err
			}

			output.RenderWarnings(cmd.ErrOrStderr(), res.Warnings)
			if err := output.RenderResultSet(cmd.OutOrStdout(), res.Data, outputFormat(cmd)); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "execution %s took %s\n",
				res.ExecutionID, res.Duration.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().String("file", "", "Read SQL from a file instead of the argument")
	cmd.Flags().Bool("no-convert", false, "Send the SQL verbatim without dialect translation")
	cmd.Flags().Bool("allow-writes", false, "Allow statements that modify data or schema")
	cmd.Flags().Duration("timeout", 0, "Bound the whole execution including retries")
	cmd.Flags().StringArray("param", nil, "Positional query parameter (repeatable)")
	return cmd
}
