package connector

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/impo12-ty0076/sql-agent-sub002/pkg/core"
)

// Factory creates a connector for one backend type.
type Factory func(logger *slog.Logger) Connector

var (
	registryMu sync.RWMutex
	registry   = map[core.DialectTag]Factory{}
)

// Register installs a factory for a backend type. Connectors call it from
// init(); importing a connector package is what makes its backend available.
func Register(tag core.DialectTag, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[tag] = factory
}

// UnknownConnectorError is returned when no connector is registered for the
// requested backend type.
type UnknownConnectorError struct {
	Type      core.DialectTag
	Available []string
}

func (e *UnknownConnectorError) Error() string {
	return fmt.Sprintf("unknown connection type %q, available types: %s",
		e.Type, strings.Join(e.Available, ", "))
}

// New creates the connector for cfg.Type. The returned connector is not yet
// connected; call Connect with the same cfg.
func New(cfg core.ConnectionConfig, logger *slog.Logger) (Connector, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	registryMu.RLock()
	factory, ok := registry[cfg.Type]
	registryMu.RUnlock()
	if !ok {
		return nil, &UnknownConnectorError{Type: cfg.Type, Available: Available()}
	}
	return factory(logger), nil
}

// Available lists the registered backend types, sorted.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for tag := range registry {
		names = append(names, tag.String())
	}
	sort.Strings(names)
	return names
}
