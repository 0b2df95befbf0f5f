// Package commands implements the sqlbridge subcommands.
package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/impo12-ty0076/sql-agent-sub002/internal/config"
	"github.com/impo12-ty0076/sql-agent-sub002/pkg/connector"
	"github.com/impo12-ty0076/sql-agent-sub002/pkg/core"
)

// openExecutor resolves the requested connection, connects its backend, and
// wraps it with the execution policy. The caller owns Close.
func openExecutor(cmd *cobra.Command) (*connector.Executor, error) {
	cfg := config.FromContext(cmd.Context())
	logger := config.GetLogger(cmd.Context())

	name, _ := cmd.Root().PersistentFlags().GetString("connection")
	cc, err := cfg.Connection(name)
	if err != nil {
		return nil, err
	}

	conn, err := connector.New(cc, logger)
	if err != nil {
		return nil, err
	}
	if err := conn.Connect(cmd.Context(), cc); err != nil {
		return nil, fmt.Errorf("connecting to %q: %w", cc.Name, err)
	}
	return connector.NewExecutor(conn, cc, logger), nil
}

// readSQLArg resolves the SQL text for a command: the positional argument,
// or the contents of --file, or stdin when the argument is "-".
func readSQLArg(cmd *cobra.Command, args []string) (string, error) {
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading SQL file: %w", err)
		}
		return string(data), nil
	}
	if len(args) == 0 {
		return "", fmt.Errorf("no SQL given; pass it as an argument or via --file")
	}
	if args[0] == "-" {
		data, err := os.ReadFile("/dev/stdin")
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	return strings.Join(args, " "), nil
}

// parseDialectFlag parses a dialect flag value, rejecting unknown names.
func parseDialectFlag(value, flag string) (core.DialectTag, error) {
	tag := core.ParseDialect(value)
	if tag == core.DialectUnknown {
		return tag, fmt.Errorf("unknown dialect %q for --%s (mssql, hana, postgres)", value, flag)
	}
	return tag, nil
}

// outputFormat resolves the output format. The --output flag is already
// merged into the config by the loader's flag provider.
func outputFormat(cmd *cobra.Command) string {
	return config.FromContext(cmd.Context()).Output
}
