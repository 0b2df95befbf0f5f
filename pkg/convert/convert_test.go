package convert

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impo12-ty0076/sql-agent-sub002/pkg/core"
)

func hanaConfig() core.ConnectionConfig {
	return core.ConnectionConfig{Name: "analytics", Type: core.DialectHANA, Host: "hana.local"}
}

func TestAutoConvert_MSSQLToHANA(t *testing.T) {
	c := New(nil)

	out := c.AutoConvert("SELECT TOP 10 * FROM Products ORDER BY Price DESC", hanaConfig())

	assert.Equal(t, "SELECT * FROM Products ORDER BY Price DESC LIMIT 10", out.Query)
	require.Len(t, out.Warnings, 1)
	assert.Equal(t, "converted from mssql to hana", out.Warnings[0])
}

// No-op law: no dialect-specific feature means identical query and an empty
// warning list.
func TestAutoConvert_NoOp(t *testing.T) {
	c := New(nil)
	q := "SELECT id, name FROM users WHERE active = 1"

	out := c.AutoConvert(q, hanaConfig())

	assert.Equal(t, q, out.Query)
	assert.Empty(t, out.Warnings)
}

func TestAutoConvert_UnsupportedTarget(t *testing.T) {
	c := New(nil)
	q := "SELECT TOP 5 * FROM t"

	out := c.AutoConvert(q, core.ConnectionConfig{Name: "x", Type: core.DialectTag("oracle")})

	assert.Equal(t, q, out.Query, "query must pass through unchanged")
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "unsupported database type")
}

// Blocking features do not reject the query; they degrade to a warning and
// the caller decides whether to proceed.
func TestAutoConvert_SoftCompatibilityWarning(t *testing.T) {
	c := New(nil)

	out := c.AutoConvert("SELECT TOP 5 * FROM Products WITH (NOLOCK)", hanaConfig())

	assert.Contains(t, out.Query, "LIMIT 5", "translatable parts still convert")
	var found bool
	for _, w := range out.Warnings {
		if strings.Contains(w, "may not be fully compatible") && strings.Contains(w, "NOLOCK") {
			found = true
		}
	}
	assert.True(t, found, "expected soft compatibility warning naming NOLOCK, got %v", out.Warnings)
}

func TestAutoConvert_TargetNativeQueryUntouched(t *testing.T) {
	c := New(nil)
	q := "SELECT IFNULL(a, 0) FROM t LIMIT 10"

	out := c.AutoConvert(q, hanaConfig())

	assert.Equal(t, q, out.Query, "HANA-native query needs no conversion for a HANA target")
}

// A rule application blowing up must never corrupt or drop the SQL: the
// original text comes back with a conversion warning.
func TestAutoConvert_RecoversFromPanic(t *testing.T) {
	c := New(nil)
	c.convertFn = func(string, core.DialectTag, core.DialectTag) string {
		panic("rule exploded")
	}
	q := "SELECT TOP 5 * FROM t"

	out := c.AutoConvert(q, hanaConfig())

	assert.Equal(t, q, out.Query)
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "Failed to convert query: rule exploded")
}

func TestAutoConvert_PostgresTargetPassthrough(t *testing.T) {
	c := New(nil)
	q := "SELECT TOP 5 * FROM t"

	out := c.AutoConvert(q, core.ConnectionConfig{Name: "pg", Type: core.DialectPostgres})

	// Postgres is a valid backend but has no rule sets; mssql features pass
	// through with no conversion warning.
	assert.Equal(t, q, out.Query)
	assert.Empty(t, out.Warnings)
}
