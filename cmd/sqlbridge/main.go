// Package main provides the sqlbridge CLI.
package main

import (
	"os"

	"github.com/impo12-ty0076/sql-agent-sub002/internal/cli"

	// Register the backend connectors.
	_ "github.com/impo12-ty0076/sql-agent-sub002/pkg/connectors/hana"
	_ "github.com/impo12-ty0076/sql-agent-sub002/pkg/connectors/mssql"
	_ "github.com/impo12-ty0076/sql-agent-sub002/pkg/connectors/postgres"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
