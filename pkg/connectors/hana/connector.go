// Package hana provides the SAP HANA connector.
//
// Import this package with a blank identifier to register the connector:
//
//	import _ "github.com/impo12-ty0076/sql-agent-sub002/pkg/connectors/hana"
package hana

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

	hdb "github.com/SAP/go-hdb/driver"

	"github.com/impo12-ty0076/sql-agent-sub002/pkg/connector"
	"github.com/impo12-ty0076/sql-agent-sub002/pkg/core"
)

// transientCodes are the HANA error codes worth retrying: lock conflicts,
// rollback by deadlock, and resource exhaustion the server resolves itself.
var transientCodes = map[int]bool{
	129: true, // transaction rolled back by lock wait timeout
	131: true, // transaction rolled back by deadlock
	133: true, // transaction rolled back by serialization failure
	146: true, // resource busy and acquire with NOWAIT specified
	149: true, // distributed transaction rolled back
}

// permanentCodes maps well-known HANA error codes to stable codes.
var permanentCodes = map[int]string{
	257: "syntax_error",
	258: "permission_denied",
	259: "object_not_found", // invalid table name
	260: "column_not_found",
	362: "object_not_found", // invalid schema name
}

// Connector implements connector.Connector for SAP HANA.
type Connector struct {
	connector.Base
}

// New creates a HANA connector. If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Connector {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c := &Connector{}
	c.Logger = logger
	return c
}

// Dialect returns the SQL dialect for this connector.
func (c *Connector) Dialect() core.DialectTag { return core.DialectHANA }

// Connect establishes a connection to HANA.
func (c *Connector) Connect(ctx context.Context, cfg core.ConnectionConfig) error {
	cfg.ApplyDefaults()
	dsn := buildDSN(cfg)

	c.Logger.Debug("connecting to hana",
		slog.String("host", cfg.Host),
		slog.String("database", cfg.Database))

	db, err := sql.Open(hdb.DriverName, dsn)
	if err != nil {
		return fmt.Errorf("failed to open hana connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping hana: %w", err)
	}

	c.DB = db
	c.Cfg = cfg
	c.InitPool()
	return nil
}

// buildDSN constructs an hdb:// connection URL. HANA addresses a tenant
// database through its own SQL port, so Database maps to the databaseName
// URL parameter rather than a path.
func buildDSN(cfg core.ConnectionConfig) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 30015
	}

	u := &url.URL{
		Scheme: "hdb",
		Host:   net.JoinHostPort(host, fmt.Sprintf("%d", port)),
	}
	if cfg.Username != "" {
		u.User = url.UserPassword(cfg.Username, cfg.Password.Reveal())
	}

	q := url.Values{}
	if cfg.Database != "" {
		q.Set("databaseName", cfg.Database)
	}
	for k, v := range cfg.Options {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Schema lists the tables and columns of the current schema through the SYS
// views.
func (c *Connector) Schema(ctx context.Context) (*core.SchemaDescription, error) {
	if c.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	const query = `
		SELECT c.SCHEMA_NAME, c.TABLE_NAME, c.COLUMN_NAME, c.DATA_TYPE_NAME, c.IS_NULLABLE, c.POSITION
		FROM SYS.TABLE_COLUMNS c
		WHERE c.SCHEMA_NAME = CURRENT_SCHEMA
		ORDER BY c.TABLE_NAME, c.POSITION`

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
			Nullable: nullable == "TRUE",
			Position: position,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schema rows: %w", err)
	}
	return desc, nil
}

// ValidateQuery applies the dialect-specific lexical checks: HANA quotes
// identifiers with double quotes, so bracketed identifiers are a sign of
// untranslated T-SQL.
func (c *Connector) ValidateQuery(_ context.Context, sql string) (bool, string) {
	if strings.ContainsAny(sql, "[]") {
		return false, "bracketed identifiers are not valid in HANA SQL"
	}
	return true, ""
}

// hanaError is the slice of the driver's server-error type the classifier
// needs: every go-hdb server error carries its HANA error code.
type hanaError interface {
	error
	Code() int
}

// IsTransient classifies an error by its HANA error code, falling back to
// network-level heuristics for transport errors.
func (c *Connector) IsTransient(err error) bool {
	var he hanaError
	if errors.As(err, &he) {
		return transientCodes[he.Code()]
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

// FormatError maps a HANA error to the normalized shape.
func (c *Connector) FormatError(err error) *core.QueryError {
	var he hanaError
	if errors.As(err, &he) {
		class := core.ErrPermanent
		code := fmt.Sprintf("%d", he.Code())
		if transientCodes[he.Code()] {
			class = core.ErrTransient
		} else if named, ok := permanentCodes[he.Code()]; ok {
			code = named
		}
		return core.NewQueryError(class, code, he.Error(), err)
	}
	if c.IsTransient(err) {
		return core.NewQueryError(core.ErrTransient, "connection", err.Error(), err)
	}
	return core.NewQueryError(core.ErrPermanent, "", err.Error(), err)
}

func init() {
	connector.Register(core.DialectHANA, func(logger *slog.Logger) connector.Connector {
		return New(logger)
	})
}

var _ connector.Connector = (*Connector)(nil)
