package connection

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/leapstack-labs/leaporm/pkg/core"
)

// Manager owns at most one live connection. It is single-owner: callers
// scope one Manager per unit of work and never share it across goroutines.
type Manager struct {
	provider Provider
	conn     Connection
	logger   *slog.Logger
}

// NewManager creates a manager in the Closed state. A nil provider is a
// configuration error.
func NewManager(provider Provider, logger *slog.Logger) (*Manager, error) {
	if provider == nil {
		return nil, core.Configf("", "connection manager requires a connection provider")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{provider: provider, logger: logger}, nil
}

// Connection returns the managed connection.
//
// With no connection it creates and opens one. When the existing connection
// reports Broken it is disposed and replaced once; a failure of the
// replacement is returned unchanged with no further attempt. Otherwise the
// existing connection is returned untouched.
func (m *Manager) Connection(ctx context.Context) (Connection, error) {
	if m.conn != nil {
		if m.conn.State() != StateBroken {
			return m.conn, nil
		}
		m.logger.Debug("connection broken, recreating")
		m.dispose()
	}

	conn, err := m.provider.CreateConnection()
	if err != nil {
		return nil, err
	}
	if err := conn.Open(ctx); err != nil {
		if cerr := conn.Close(); cerr != nil {
			m.logger.Debug("dispose after failed open", "error", cerr)
		}
		return nil, err
	}
	m.conn = conn
	m.logger.Debug("connection opened")
	return conn, nil
}

// BeginTx begins a transaction on the managed connection.
func (m *Manager) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	conn, err := m.Connection(ctx)
	if err != nil {
		return nil, err
	}
	return conn.BeginTx(ctx, opts)
}

// State reports the managed connection's observed state; Closed when none exists.
func (m *Manager) State() State {
	if m.conn == nil {
		return StateClosed
	}
	return m.conn.State()
}

// Close disposes the managed connection and returns to Closed.
func (m *Manager) Close() error {
	return m.dispose()
}

func (m *Manager) dispose() error {
	if m.conn == nil {
		return nil
	}
	err := m.conn.Close()
	m.conn = nil
	m.logger.Debug("connection disposed", "error", err)
	return err
}
