package adapter

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/leapstack-labs/leaporm/pkg/connection"
	"github.com/leapstack-labs/leaporm/pkg/dialect"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Adapter)
)

// ErrTypeRequired is returned when a config names no adapter type.
var ErrTypeRequired = errors.New("adapter type not specified")

// Register adds an adapter to the registry.
// Called by adapter implementations in their init() functions.
func Register(a Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(a.Name())] = a
}

// Get retrieves an adapter by name.
func Get(name string) (Adapter, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	a, ok := registry[strings.ToLower(name)]
	return a, ok
}

// Lookup resolves the adapter for cfg.Type.
func Lookup(cfg Config) (Adapter, error) {
	if cfg.Type == "" {
		return nil, ErrTypeRequired
	}
	a, ok := Get(cfg.Type)
	if !ok {
		return nil, &UnknownAdapterError{
			Type:      cfg.Type,
			Available: ListAdapters(),
		}
	}
	return a, nil
}

// NewProvider opens a pool for cfg and wraps it in a connection provider
// that owns the pool. The logger is handed to the provider's connections
// (nil uses a discard logger).
func NewProvider(cfg Config, logger *slog.Logger) (*connection.SQLProvider, dialect.Dialect, error) {
	a, err := Lookup(cfg)
	if err != nil {
		return nil, nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	logger.Debug("opening adapter", slog.String("type", a.Name()), slog.String("host", cfg.Host), slog.String("database", cfg.Database))
	db, err := a.OpenDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.Pool.MaxOpenConns)
	}
	if cfg.Pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.Pool.MaxIdleConns)
	}
	if cfg.Pool.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.Pool.ConnMaxLifetime)
	}

	p := connection.DBProvider(db, connection.WithLogger(logger), connection.WithPoolOwnership())
	return p, a.Dialect(), nil
}

// ListAdapters returns all registered adapter names (sorted).
func ListAdapters() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if an adapter type is registered.
func IsRegistered(name string) bool {
	_, ok := Get(name)
	return ok
}

// UnknownAdapterError is returned when an unknown adapter type is requested.
type UnknownAdapterError struct {
	Type      string
	Available []string
}

func (e *UnknownAdapterError) Error() string {
	return fmt.Sprintf("unknown adapter type %q\nAvailable adapters: %v\nHint: Check your target.type in leaporm.yaml", e.Type, e.Available)
}
