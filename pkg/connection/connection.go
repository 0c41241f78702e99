// Package connection manages the single physical connection a unit of work
// runs on: opened on first use, reused while healthy, and replaced exactly
// once when observed broken.
package connection

import (
	"context"
	"database/sql"
)

// State is the observed state of a connection.
type State int

// Connection states.
const (
	StateClosed State = iota
	StateOpen
	StateBroken
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateBroken:
		return "broken"
	default:
		return "unknown"
	}
}

// Connection is one physical database connection. An instance is opened at
// most once in its lifetime.
type Connection interface {
	Open(ctx context.Context) error
	Close() error
	State() State

	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	PingContext(ctx context.Context) error
}

// Provider creates unopened connections.
type Provider interface {
	CreateConnection() (Connection, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func() (Connection, error)

// CreateConnection implements Provider.
func (f ProviderFunc) CreateConnection() (Connection, error) {
	return f()
}
