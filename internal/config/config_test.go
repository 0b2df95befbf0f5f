package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impo12-ty0076/sql-agent-sub002/pkg/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const sampleConfig = `
default: warehouse
output: json
connections:
  warehouse:
    type: hana
    host: hana.example.com
    port: 30015
    database: HXE
    username: reader
    password: secret
    pool:
      max_size: 10
      idle_timeout: 2m
    retry:
      max_attempts: 5
      delay: 500ms
  legacy:
    type: mssql
    host: mssql.example.com
    database: erp
    username: reader
    password: ${SQLBRIDGE_TEST_MSSQL_PW}
`

func TestLoad(t *testing.T) {
	t.Setenv("SQLBRIDGE_TEST_MSSQL_PW", "hunter2")

	cfg, err := Load(writeConfig(t, sampleConfig), nil)
	require.NoError(t, err)

	assert.Equal(t, "warehouse", cfg.Default)
	assert.Equal(t, "json", cfg.Output)
	require.Len(t, cfg.Connections, 2)

	wh := cfg.Connections["warehouse"]
	assert.Equal(t, core.DialectHANA, wh.Type)
	assert.Equal(t, 30015, wh.Port)
	assert.Equal(t, 10, wh.Pool.MaxSize)
	assert.Equal(t, 2*time.Minute, wh.Pool.IdleTimeout)
	assert.Equal(t, 5, wh.Retry.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, wh.Retry.Delay)

	legacy := cfg.Connections["legacy"]
	assert.Equal(t, "hunter2", legacy.Password.Reveal(), "password must come from the environment")
	assert.Equal(t, core.DefaultMaxPoolSize, legacy.Pool.MaxSize, "unset pool options fall back to defaults")
	assert.Equal(t, core.DefaultRetryDelay, legacy.Retry.Delay)
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, cfg.Connections)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadFlagOverridesFile(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output", "", "")
	require.NoError(t, flags.Set("output", "csv"))

	cfg, err := Load(writeConfig(t, sampleConfig), flags)
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.Output, "flags must override the config file")
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("SQLBRIDGE_OUTPUT", "csv")

	cfg, err := Load(writeConfig(t, sampleConfig), nil)
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.Output)
}

func TestLoadRejectsUnknownDefault(t *testing.T) {
	_, err := Load(writeConfig(t, `
default: missing
connections:
  db:
    type: postgres
    host: localhost
`), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default connection")
}

func TestLoadRejectsUnknownType(t *testing.T) {
	_, err := Load(writeConfig(t, `
connections:
  db:
    type: oracle
    host: localhost
`), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown connection type")
}

func TestConnectionResolution(t *testing.T) {
	cfg := &Config{
		Default: "a",
		Connections: map[string]core.ConnectionConfig{
			"a": {Type: core.DialectMSSQL, Host: "h1"},
			"b": {Type: core.DialectHANA, Host: "h2"},
		},
	}

	cc, err := cfg.Connection("")
	require.NoError(t, err)
	assert.Equal(t, "a", cc.Name)

	cc, err = cfg.Connection("b")
	require.NoError(t, err)
	assert.Equal(t, "h2", cc.Host)

	_, err = cfg.Connection("c")
	assert.Error(t, err)
}

func TestConnectionSingleWithoutDefault(t *testing.T) {
	cfg := &Config{
		Connections: map[string]core.ConnectionConfig{
			"only": {Type: core.DialectPostgres, Host: "h"},
		},
	}
	cc, err := cfg.Connection("")
	require.NoError(t, err)
	assert.Equal(t, "only", cc.Name)
}
