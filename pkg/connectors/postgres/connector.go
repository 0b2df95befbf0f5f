// Package postgres provides the PostgreSQL connector.
//
// PostgreSQL has no translation rule set, so queries pass through the
// conversion layer unchanged; the connector exists for backends that speak
// standard SQL already.
//
// Import this package with a blank identifier to register the connector:
//
//	import _ "github.com/impo12-ty0076/sql-agent-sub002/pkg/connectors/postgres"
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver

	"github.com/impo12-ty0076/sql-agent-sub002/pkg/connector"
	"github.com/impo12-ty0076/sql-agent-sub002/pkg/core"
)

// transientStates are the SQLSTATE classes worth retrying: serialization
// and deadlock failures, plus connection-level faults.
var transientStates = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
	"57P03": true, // cannot_connect_now
	"08000": true, // connection_exception
	"08003": true, // connection_does_not_exist
	"08006": true, // connection_failure
}

// permanentCodes maps well-known SQLSTATEs to stable codes.
var permanentCodes = map[string]string{
	"42601": "syntax_error",
	"42P01": "object_not_found",
	"42703": "column_not_found",
	"42501": "permission_denied",
}

// Connector implements connector.Connector for PostgreSQL.
type Connector struct {
	connector.Base
}

// New creates a PostgreSQL connector. If logger is nil, a discard logger is
// used.
func New(logger *slog.Logger) *Connector {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c := &Connector{}
	c.Logger = logger
	return c
}

// Dialect returns the SQL dialect for this connector.
func (c *Connector) Dialect() core.DialectTag { return core.DialectPostgres }

// Connect establishes a connection to PostgreSQL.
func (c *Connector) Connect(ctx context.Context, cfg core.ConnectionConfig) error {
	cfg.ApplyDefaults()
	dsn := buildDSN(cfg)

	c.Logger.Debug("connecting to postgres",
		slog.String("host", cfg.Host),
		slog.String("database", cfg.Database))

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	c.DB = db
	c.Cfg = cfg
	c.InitPool()
	return nil
}

// buildDSN constructs a key=value PostgreSQL connection string.
func buildDSN(cfg core.ConnectionConfig) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := "disable"
	if cfg.Options != nil {
		if mode, ok := cfg.Options["sslmode"]; ok {
			sslmode = mode
		}
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		host, port, cfg.Database, sslmode)

	if cfg.Username != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.Username)
	}
	if pw := cfg.Password.Reveal(); pw != "" {
		dsn += fmt.Sprintf(" password=%s", pw)
	}
	return dsn
}

// Schema lists the tables and columns visible through information_schema.
func (c *Connector) Schema(ctx context.Context) (*core.SchemaDescription, error) {
	if c.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	const query = `
		SELECT c.table_schema, c.table_name, c.column_name, c.data_type, c.is_nullable, c.ordinal_position
		FROM information_schema.columns c
		JOIN information_schema.tables t
		  ON t.table_schema = c.table_schema AND t.table_name = c.table_name
		WHERE t.table_type = 'BASE TABLE'
		  AND c.table_schema NOT IN ('pg_catalog', 'information_schema')
		ORDER BY c.table_schema, c.table_name, c.ordinal_position`

	rows, err := c.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query schema: %w", err)
	}
	defer func() { _ = rows.Close() }()

	desc := &core.SchemaDescription{Database: c.Cfg.Database}
	var cur *core.TableMetadata
	for rows.Next() {
		var schema, table, colName, colType, nullable string
		var position int
		if err := rows.Scan(&schema, &table, &colName, &colType, &nullable, &position); err != nil {
			return nil, fmt.Errorf("failed to scan schema row: %w", err)
		}
		if cur == nil || cur.Schema != schema || cur.Name != table {
			desc.Tables = append(desc.Tables, core.TableMetadata{Schema: schema, Name: table})
			cur = &desc.Tables[len(desc.Tables)-1]
		}
		cur.Columns = append(cur.Columns, core.Column{
			Name:     colName,
			Type:     colType,
			Nullable: nullable == "YES",
			Position: position,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schema rows: %w", err)
	}
	return desc, nil
}

// ValidateQuery applies the dialect-specific lexical checks.
func (c *Connector) ValidateQuery(_ context.Context, sql string) (bool, string) {
	if strings.ContainsAny(sql, "[]") {
		return false, "bracketed identifiers are not valid in PostgreSQL"
	}
	return true, ""
}

// IsTransient classifies an error by its SQLSTATE, falling back to
// network-level heuristics for transport errors.
func (c *Connector) IsTransient(err error) bool {
	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		return transientStates[pge.Code]
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "i/o timeout")
}

// FormatError maps a PostgreSQL error to the normalized shape.
func (c *Connector) FormatError(err error) *core.QueryError {
	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		class := core.ErrPermanent
		code := pge.Code
		if transientStates[pge.Code] {
			class = core.ErrTransient
		} else if named, ok := permanentCodes[pge.Code]; ok {
			code = named
		}
		return core.NewQueryError(class, code, pge.Message, err)
	}
	if c.IsTransient(err) {
		return core.NewQueryError(core.ErrTransient, "connection", err.Error(), err)
	}
	return core.NewQueryError(core.ErrPermanent, "", err.Error(), err)
}

func init() {
	connector.Register(core.DialectPostgres, func(logger *slog.Logger) connector.Connector {
		return New(logger)
	})
}

var _ connector.Connector = (*Connector)(nil)
