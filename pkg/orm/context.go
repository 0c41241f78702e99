// Package orm is the unit-of-work surface: a Context owns one managed
// connection and executes mapped CRUD and filtered queries through it.
//
// A Context is single-owner. Create one per unit of work and Close it when
// done; mappings, dialects and generated statements are shared process-wide.
package orm

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"reflect"

	"github.com/leapstack-labs/leaporm/pkg/adapter"
	"github.com/leapstack-labs/leaporm/pkg/connection"
	"github.com/leapstack-labs/leaporm/pkg/core"
	"github.com/leapstack-labs/leaporm/pkg/dialect"
	"github.com/leapstack-labs/leaporm/pkg/mapping"
	"github.com/leapstack-labs/leaporm/pkg/sqlgen"
)

// Errors returned by Context operations.
var (
	ErrNotFound  = errors.New("orm: entity not found")
	ErrTxActive  = errors.New("orm: transaction already active")
	ErrNoTx      = errors.New("orm: no active transaction")
	ErrKeyValues = errors.New("orm: wrong number of key values")
)

var defaultGenerators sqlgen.Generators

// Option configures a Context.
type Option func(*Context)

// WithLogger sets the context logger (nil uses a discard logger).
func WithLogger(logger *slog.Logger) Option {
	return func(c *Context) { c.logger = logger }
}

// WithCache resolves mappings through cache instead of mapping.Default.
func WithCache(cache *mapping.Cache) Option {
	return func(c *Context) { c.cache = cache }
}

// WithGenerators uses gens for statement templates instead of the
// process-wide set.
func WithGenerators(gens *sqlgen.Generators) Option {
	return func(c *Context) { c.gens = gens }
}

// Context is a unit of work over one managed connection.
type Context struct {
	d      dialect.Dialect
	conns  *connection.Manager
	cache  *mapping.Cache
	gens   *sqlgen.Generators
	logger *slog.Logger
	tx     *sql.Tx
	owned  io.Closer
}

// New creates a context drawing connections from provider and generating
// SQL for d. A nil provider or dialect is a configuration error.
func New(provider connection.Provider, d dialect.Dialect, opts ...Option) (*Context, error) {
	if d == nil {
		return nil, core.Configf("", "context requires a dialect: %v", dialect.ErrDialectRequired)
	}
	c := &Context{d: d}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.cache == nil {
		c.cache = mapping.Default
	}
	if c.gens == nil {
		c.gens = &defaultGenerators
	}

	m, err := connection.NewManager(provider, c.logger)
	if err != nil {
		return nil, err
	}
	c.conns = m
	return c, nil
}

// Open resolves the adapter for cfg.Type and creates a context that owns
// the adapter's pool. The adapter package must be imported for its
// registration side effect.
func Open(cfg core.AdapterConfig, opts ...Option) (*Context, error) {
	probe := &Context{}
	for _, opt := range opts {
		opt(probe)
	}
	provider, d, err := adapter.NewProvider(cfg, probe.logger)
	if err != nil {
		return nil, err
	}
	c, err := New(provider, d, opts...)
	if err != nil {
		_ = provider.Close()
		return nil, err
	}
	c.owned = provider
	return c, nil
}

// Dialect returns the context dialect.
func (c *Context) Dialect() dialect.Dialect {
	return c.d
}

// State reports the managed connection state.
func (c *Context) State() connection.State {
	return c.conns.State()
}

// Ping verifies the managed connection, opening it if needed.
func (c *Context) Ping(ctx context.Context) error {
	conn, err := c.conns.Connection(ctx)
	if err != nil {
		return err
	}
	return conn.PingContext(ctx)
}

// BeginTx starts a transaction; subsequent operations run inside it until
// Commit or Rollback.
func (c *Context) BeginTx(ctx context.Context, opts *sql.TxOptions) error {
	if c.tx != nil {
		return ErrTxActive
	}
	tx, err := c.conns.BeginTx(ctx, opts)
	if err != nil {
		return err
	}
	c.logger.Debug("transaction started")
	c.tx = tx
	return nil
}

// Commit commits the active transaction.
func (c *Context) Commit() error {
	if c.tx == nil {
		return ErrNoTx
	}
	err := c.tx.Commit()
	c.tx = nil
	c.logger.Debug("transaction committed", "error", err)
	return err
}

// Rollback aborts the active transaction.
func (c *Context) Rollback() error {
	if c.tx == nil {
		return ErrNoTx
	}
	err := c.tx.Rollback()
	c.tx = nil
	c.logger.Debug("transaction rolled back", "error", err)
	return err
}

// Close rolls back any active transaction, disposes the connection and,
// for contexts created by Open, closes the pool.
func (c *Context) Close() error {
	var errs []error
	if c.tx != nil {
		errs = append(errs, c.Rollback())
	}
	errs = append(errs, c.conns.Close())
	if c.owned != nil {
		errs = append(errs, c.owned.Close())
		c.owned = nil
	}
	return errors.Join(errs...)
}

// Exec runs a statement outside the mapping layer, such as DDL, on the
// context's connection or active transaction.
func (c *Context) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	exec, err := c.executor(ctx)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("exec", "sql", query)
	return exec.ExecContext(ctx, query, args...)
}

// executor is the subset of *sql.Tx and connection.Connection statements run on.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (c *Context) executor(ctx context.Context) (executor, error) {
	if c.tx != nil {
		return c.tx, nil
	}
	return c.conns.Connection(ctx)
}

// MappingFor returns the mapping for T.
func MappingFor[T any](c *Context) (*mapping.EntityMapping, error) {
	return c.cache.Get(reflect.TypeFor[T]())
}

func generatorFor[T any](c *Context) (*sqlgen.Generator, error) {
	m, err := MappingFor[T](c)
	if err != nil {
		return nil, err
	}
	return c.gens.Get(m, c.d)
}
