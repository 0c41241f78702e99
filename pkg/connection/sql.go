package connection

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/leapstack-labs/leaporm/pkg/core"
)

// Connection lifecycle errors.
var (
	ErrAlreadyOpened = errors.New("connection: already opened")
	ErrNotOpen       = errors.New("connection: not open")
)

// SQLConnection is a Connection holding one dedicated *sql.Conn from a pool.
type SQLConnection struct {
	db     *sql.DB
	conn   *sql.Conn
	state  State
	opened bool
	logger *slog.Logger
}

var _ Connection = (*SQLConnection)(nil)

// NewSQLConnection creates an unopened connection drawing from db.
func NewSQLConnection(db *sql.DB, logger *slog.Logger) *SQLConnection {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLConnection{db: db, logger: logger}
}

// Open acquires the dedicated connection and verifies it with a ping.
func (c *SQLConnection) Open(ctx context.Context) error {
	if c.opened {
		return ErrAlreadyOpened
	}
	c.opened = true

	conn, err := c.db.Conn(ctx)
	if err != nil {
		c.state = StateBroken
		return err
	}
	c.conn = conn
	c.state = StateOpen
	if err := c.PingContext(ctx); err != nil {
		c.release()
		return err
	}
	return nil
}

// release hands the dedicated connection back to the pool without leaving
// the Broken state.
func (c *SQLConnection) release() {
	if c.conn == nil {
		return
	}
	if err := c.conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		c.logger.Debug("release after failed open", "error", err)
	}
	c.conn = nil
}

// State returns the observed state.
func (c *SQLConnection) State() State {
	return c.state
}

// MarkBroken forces the Broken state so the next manager access replaces it.
func (c *SQLConnection) MarkBroken() {
	if c.state == StateOpen {
		c.state = StateBroken
	}
}

// Close returns the connection to the pool. A connection the pool already
// discarded closes cleanly.
func (c *SQLConnection) Close() error {
	c.state = StateClosed
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	if errors.Is(err, sql.ErrConnDone) {
		return nil
	}
	return err
}

// observe marks the connection broken on errors that mean the physical
// connection is unusable.
func (c *SQLConnection) observe(err error) error {
	if err != nil && (errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone)) {
		c.logger.Debug("connection marked broken", "error", err)
		c.state = StateBroken
	}
	return err
}

func (c *SQLConnection) ready() error {
	if c.state != StateOpen {
		return fmt.Errorf("%w (state %s)", ErrNotOpen, c.state)
	}
	return nil
}

// ExecContext executes a statement that returns no rows.
func (c *SQLConnection) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	c.logger.Debug("exec", "sql", query)
	res, err := c.conn.ExecContext(ctx, query, args...)
	return res, c.observe(err)
}

// QueryContext executes a statement that returns rows.
func (c *SQLConnection) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	c.logger.Debug("query", "sql", query)
	//nolint:rowserrcheck // rows.Err() must be checked by caller after iteration completes
	rows, err := c.conn.QueryContext(ctx, query, args...)
	return rows, c.observe(err)
}

// QueryRowContext executes a statement expected to return at most one row.
// The connection must be open.
func (c *SQLConnection) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	c.logger.Debug("query row", "sql", query)
	return c.conn.QueryRowContext(ctx, query, args...)
}

// BeginTx starts a transaction on the dedicated connection.
func (c *SQLConnection) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	tx, err := c.conn.BeginTx(ctx, opts)
	return tx, c.observe(err)
}

// PingContext verifies the connection; any failure marks it broken.
func (c *SQLConnection) PingContext(ctx context.Context) error {
	if err := c.ready(); err != nil {
		return err
	}
	if err := c.conn.PingContext(ctx); err != nil {
		c.state = StateBroken
		return err
	}
	return nil
}

// SQLProvider creates SQLConnections over one shared *sql.DB pool.
type SQLProvider struct {
	driverName string
	dsn        string
	pool       core.PoolConfig
	logger     *slog.Logger
	owned      bool
	adopt      bool

	once sync.Once
	db   *sql.DB
	err  error
}

var _ Provider = (*SQLProvider)(nil)

// ProviderOption configures an SQLProvider.
type ProviderOption func(*SQLProvider)

// WithLogger sets the logger handed to created connections.
func WithLogger(logger *slog.Logger) ProviderOption {
	return func(p *SQLProvider) { p.logger = logger }
}

// WithPool applies pool limits when the provider opens its pool.
func WithPool(pool core.PoolConfig) ProviderOption {
	return func(p *SQLProvider) { p.pool = pool }
}

// NewSQLProvider opens driverName/dsn lazily on the first CreateConnection.
// The provider owns the pool and closes it in Close.
func NewSQLProvider(driverName, dsn string, opts ...ProviderOption) *SQLProvider {
	p := &SQLProvider{driverName: driverName, dsn: dsn, owned: true}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	return p
}

// WithPoolOwnership makes a DBProvider close the wrapped pool in Close.
func WithPoolOwnership() ProviderOption {
	return func(p *SQLProvider) { p.adopt = true }
}

// DBProvider wraps an existing pool. The caller keeps ownership of db
// unless WithPoolOwnership is given.
func DBProvider(db *sql.DB, opts ...ProviderOption) *SQLProvider {
	p := NewSQLProvider("", "", opts...)
	p.owned = p.adopt
	p.once.Do(func() { p.db = db })
	return p
}

// CreateConnection returns a new unopened connection.
func (p *SQLProvider) CreateConnection() (Connection, error) {
	db, err := p.DB()
	if err != nil {
		return nil, err
	}
	return NewSQLConnection(db, p.logger), nil
}

// DB returns the pool, opening it on first use.
func (p *SQLProvider) DB() (*sql.DB, error) {
	p.once.Do(func() {
		p.logger.Debug("opening connection pool", "driver", p.driverName)
		p.db, p.err = sql.Open(p.driverName, p.dsn)
		if p.err != nil {
			p.err = fmt.Errorf("failed to open %s pool: %w", p.driverName, p.err)
			return
		}
		if p.pool.MaxOpenConns > 0 {
			p.db.SetMaxOpenConns(p.pool.MaxOpenConns)
		}
		if p.pool.MaxIdleConns > 0 {
			p.db.SetMaxIdleConns(p.pool.MaxIdleConns)
		}
		if p.pool.ConnMaxLifetime > 0 {
			p.db.SetConnMaxLifetime(p.pool.ConnMaxLifetime)
		}
	})
	return p.db, p.err
}

// Close closes the pool if the provider opened it.
func (p *SQLProvider) Close() error {
	if !p.owned || p.db == nil {
		return nil
	}
	p.logger.Debug("closing connection pool", "driver", p.driverName)
	return p.db.Close()
}
