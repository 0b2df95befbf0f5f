// Package mssql provides the SQL Server connector.
//
// Import this package with a blank identifier to register the connector:
//
//	import _ "github.com/impo12-ty0076/sql-agent-sub002/pkg/connectors/mssql"
package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"strings"

	mssqldb "github.com/microsoft/go-mssqldb"

	"github.com/impo12-ty0076/sql-agent-sub002/pkg/connector"
	"github.com/impo12-ty0076/sql-agent-sub002/pkg/core"
)

// transientNumbers are the SQL Server error numbers worth retrying:
// deadlock victim, lock timeout, throttling, and connection-level faults.
var transientNumbers = map[int32]bool{
	1205:  true, // deadlock victim
	1222:  true, // lock request timeout
	4060:  true, // cannot open database (failover in progress)
	10928: true, // resource limit reached
	10929: true, // resource governor throttling
	40197: true, // service error processing request
	40501: true, // service busy
	40613: true, // database unavailable
	233:   true, // transport-level error
	64:    true, // connection reset
}

// permanentCodes maps well-known SQL Server error numbers to stable codes.
var permanentCodes = map[int32]string{
	102: "syntax_error",
	105: "syntax_error", // unclosed quotation mark
	156: "syntax_error", // incorrect syntax near keyword
	207: "column_not_found",
	208: "object_not_found",
	229: "permission_denied",
	297: "permission_denied",
}

// Connector implements connector.Connector for SQL Server.
type Connector struct {
	connector.Base
}

// New creates a SQL Server connector. If logger is nil, a discard logger is
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
func (c *Connector) Dialect() core.DialectTag { return core.DialectMSSQL }

// Connect establishes a connection to SQL Server.
func (c *Connector) Connect(ctx context.Context, cfg core.ConnectionConfig) error {
	cfg.ApplyDefaults()
	dsn := buildDSN(cfg)

	c.Logger.Debug("connecting to sqlserver",
		slog.String("host", cfg.Host),
		slog.String("database", cfg.Database))

	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlserver connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlserver: %w", err)
	}

	c.DB = db
	c.Cfg = cfg
	c.InitPool()
	return nil
}

// buildDSN constructs a sqlserver:// connection URL.
func buildDSN(cfg core.ConnectionConfig) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 1433
	}

	u := &url.URL{
		Scheme: "sqlserver",
		Host:   net.JoinHostPort(host, fmt.Sprintf("%d", port)),
	}
	if cfg.Username != "" {
		u.User = url.UserPassword(cfg.Username, cfg.Password.Reveal())
	}

	q := url.Values{}
	q.Set("database", cfg.Database)
	for k, v := range cfg.Options {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Schema lists the tables and columns visible through INFORMATION_SCHEMA.
func (c *Connector) Schema(ctx context.Context) (*core.SchemaDescription, error) {
	if c.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	const query = `
		SELECT c.TABLE_SCHEMA, c.TABLE_NAME, c.COLUMN_NAME, c.DATA_TYPE, c.IS_NULLABLE, c.ORDINAL_POSITION
		FROM INFORMATION_SCHEMA.COLUMNS c
		JOIN INFORMATION_SCHEMA.TABLES t
		  ON t.TABLE_SCHEMA = c.TABLE_SCHEMA AND t.TABLE_NAME = c.TABLE_NAME
		WHERE t.TABLE_TYPE = 'BASE TABLE'
		ORDER BY c.TABLE_SCHEMA, c.TABLE_NAME, c.ORDINAL_POSITION`

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

// ValidateQuery applies the dialect-specific lexical checks: bracketed
// identifiers must be balanced.
func (c *Connector) ValidateQuery(_ context.Context, sql string) (bool, string) {
	depth := 0
	for _, r := range sql {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				return false, "unbalanced bracketed identifier"
			}
		}
	}
	if depth != 0 {
		return false, "unbalanced bracketed identifier"
	}
	return true, ""
}

// IsTransient classifies an error by its SQL Server error number, falling
// back to network-level heuristics for driver and transport errors.
func (c *Connector) IsTransient(err error) bool {
	var se mssqldb.Error
	if errors.As(err, &se) {
		return transientNumbers[se.Number]
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

// FormatError maps a SQL Server error to the normalized shape.
func (c *Connector) FormatError(err error) *core.QueryError {
	var se mssqldb.Error
	if errors.As(err, &se) {
		class := core.ErrPermanent
		code := fmt.Sprintf("%d", se.Number)
		if transientNumbers[se.Number] {
			class = core.ErrTransient
		} else if named, ok := permanentCodes[se.Number]; ok {
			code = named
		}
		return core.NewQueryError(class, code, se.Message, err)
	}
	if c.IsTransient(err) {
		return core.NewQueryError(core.ErrTransient, "connection", err.Error(), err)
	}
	return core.NewQueryError(core.ErrPermanent, "", err.Error(), err)
}

func init() {
	connector.Register(core.DialectMSSQL, func(logger *slog.Logger) connector.Connector {
		return New(logger)
	})
}

var _ connector.Connector = (*Connector)(nil)
