package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/impo12-ty0076/sql-agent-sub002/pkg/advisor"
	"github.com/impo12-ty0076/sql-agent-sub002/pkg/core"
)

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [sql]",
		Short: "Check a query's compatibility with a target dialect",
		Long: `Report the dialect-specific constructs a query uses, whether it can run
on the target dialect, and any optimization suggestions for it.`,
		Example: `  sqlbridge check --target hana "SELECT TOP 10 * FROM t WITH (NOLOCK)"`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sql, err := readSQLArg(cmd, args)
			if err != nil {
				return err
			}

			targetFlag, _ := cmd.Flags().GetString("target")
			target, err := parseDialectFlag(targetFlag, "target")
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()

			features := advisor.DetectFeatures(sql)
			if len(features) > 0 {
				t := table.NewWriter()
				t.SetOutputMirror(w)
				t.SetStyle(table.StyleLight)
				t.AppendHeader(table.Row{"Dialect", "Construct", "Count"})
				for _, dialect := range []core.DialectTag{core.DialectMSSQL, core.DialectHANA} {
					for _, hit := range features[dialect] {
						t.AppendRow(table.Row{dialect.String(), hit.Name, hit.Count})
					}
				}
				t.Render()
			} else {
				_, _ = fmt.Fprintln(w, "No dialect-specific constructs detected.")
			}

			ok, reason := advisor.IsCompatible(sql, target)
			if ok {
				_, _ = fmt.Fprintf(w, "\nCompatible with %s.\n", target)
			} else {
				_, _ = fmt.Fprintf(w, "\nNot compatible with %s: %s\n", target, reason)
			}

			suggestions := advisor.SuggestOptimizations(sql, target)
			if len(suggestions) > 0 {
				_, _ = fmt.Fprintln(w, "\nSuggestions:")
				for _, s := range suggestions {
					_, _ = fmt.Fprintf(w, "  - %s\n", s)
				}
			}

			if !ok {
				return fmt.Errorf("query is not compatible with %s", target)
			}
			return nil
		},
	}

	cmd.Flags().String("target", "", "Target dialect to check against (required)")
	cmd.Flags().String("file", "", "Read SQL from a file instead of the argument")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}
