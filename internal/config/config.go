// Package config loads sqlbridge configuration from file, environment
// variables, and flags. It is decoupled from CLI concerns so other tools can
// load the same configuration.
package config

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"github.com/impo12-ty0076/sql-agent-sub002/pkg/core"
)

// Config is the root sqlbridge configuration.
type Config struct {
	// Default names the connection used when a command gets no --connection
	// flag.
	Default string `koanf:"default"`

	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`

	// Output selects the result rendering (table|csv|json).
	Output string `koanf:"output"`

	// Connections maps connection names to backend configuration.
	Connections map[string]core.ConnectionConfig `koanf:"connections"`
}

// Connection resolves a connection by name, falling back to the default
// connection when name is empty. A single configured connection is used
// without needing a default.
func (c *Config) Connection(name string) (core.ConnectionConfig, error) {
	if name == "" {
		name = c.Default
	}
	if name == "" {
		if len(c.Connections) == 1 {
			for n, cc := range c.Connections {
				cc.Name = n
				return cc, nil
			}
		}
		return core.ConnectionConfig{}, fmt.Errorf("no connection specified and no default set")
	}

	cc, ok := c.Connections[name]
	if !ok {
		return core.ConnectionConfig{}, fmt.Errorf("unknown connection %q, available: %v", name, c.ConnectionNames())
	}
	cc.Name = name
	return cc, nil
}

// ConnectionNames lists the configured connection names, sorted.
func (c *Config) ConnectionNames() []string {
	names := make([]string, 0, len(c.Connections))
	for name := range c.Connections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks every configured connection.
func (c *Config) Validate() error {
	if c.Default != "" {
		if _, ok := c.Connections[c.Default]; !ok {
			return fmt.Errorf("default connection %q is not configured", c.Default)
		}
	}
	for name, cc := range c.Connections {
		cc.Name = name
		if err := cc.Validate(); err != nil {
			return err
		}
	}
	return nil
}

var envVarRe = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns with environment variable values.
// Unset variables are left as-is so the error surfaces at connect time with
// the variable name visible.
func expandEnvVars(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		name := match[2 : len(match)-1]
		if val := os.Getenv(name); val != "" {
			return val
		}
		return match
	})
}

// expandConnectionEnvVars expands environment variables in the fields that
// commonly hold credentials or deployment-specific values.
func expandConnectionEnvVars(cc *core.ConnectionConfig) {
	cc.Host = expandEnvVars(cc.Host)
	cc.Database = expandEnvVars(cc.Database)
	cc.Username = expandEnvVars(cc.Username)
	cc.Password = core.Secret(expandEnvVars(cc.Password.Reveal()))
}
