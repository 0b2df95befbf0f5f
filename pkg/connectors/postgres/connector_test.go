package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impo12-ty0076/sql-agent-sub002/pkg/core"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name     string
		config   core.ConnectionConfig
		expected string
	}{
		{
			name: "basic connection",
			config: core.ConnectionConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "testdb",
				Username: "user",
				Password: core.Secret("pass"),
			},
			expected: "host=localhost port=5432 dbname=testdb sslmode=disable user=user password=pass",
		},
		{
			name: "with custom sslmode",
			config: core.ConnectionConfig{
				Host:     "prod.example.com",
				Port:     5432,
				Database: "proddb",
				Username: "admin",
				Options:  map[string]string{"sslmode": "require"},
			},
			expected: "host=prod.example.com port=5432 dbname=proddb sslmode=require user=admin",
		},
		{
			name: "defaults",
			config: core.ConnectionConfig{
				Database: "mydb",
			},
			expected: "host=localhost port=5432 dbname=mydb sslmode=disable",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildDSN(tt.config))
		})
	}
}

func TestIsTransient(t *testing.T) {
	c := New(nil)

	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock detected", &pgconn.PgError{Code: "40P01"}, true},
		{"connection failure", &pgconn.PgError{Code: "08006"}, true},
		{"syntax error", &pgconn.PgError{Code: "42601"}, false},
		{"undefined table", &pgconn.PgError{Code: "42P01"}, false},
		{"connection reset string", errors.New("read tcp: connection reset by peer"), true},
		{"plain error", errors.New("something else"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.transient, c.IsTransient(tt.err))
		})
	}
}

func TestFormatError(t *testing.T) {
	c := New(nil)

	qe := c.FormatError(&pgconn.PgError{Code: "42601", Message: `syntax error at or near "FORM"`})
	assert.Equal(t, core.ErrPermanent, qe.Class)
	assert.Equal(t, "syntax_error", qe.Code)

	qe = c.FormatError(&pgconn.PgError{Code: "40P01", Message: "deadlock detected"})
	assert.Equal(t, core.ErrTransient, qe.Class)
	assert.True(t, qe.Retryable())
}

func TestSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	c := New(nil)
	c.DB = db
	c.Cfg = core.ConnectionConfig{Database: "testdb"}

	rows := sqlmock.NewRows([]string{
		"table_schema", "table_name", "column_name", "data_type", "is_nullable", "ordinal_position",
	}).
		AddRow("public", "users", "id", "integer", "NO", 1).
		AddRow("public", "users", "name", "text", "YES", 2)
	mock.ExpectQuery("information_schema.columns").WillReturnRows(rows)

	desc, err := c.Schema(context.Background())
	require.NoError(t, err)

	require.Len(t, desc.Tables, 1)
	assert.Equal(t, "users", desc.Tables[0].Name)
	require.Len(t, desc.Tables[0].Columns, 2)

	assert.NoError(t, mock.ExpectationsWereMet())
}
