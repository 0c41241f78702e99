package connection

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"testing"

	"github.com/leapstack-labs/leaporm/internal/testutil"
	"github.com/leapstack-labs/leaporm/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	id      int
	state   State
	opens   int
	closes  int
	openErr error
}

func (c *fakeConn) Open(context.Context) error {
	c.opens++
	if c.openErr != nil {
		c.state = StateBroken
		return c.openErr
	}
	c.state = StateOpen
	return nil
}

func (c *fakeConn) Close() error {
	c.closes++
	c.state = StateClosed
	return nil
}

func (c *fakeConn) State() State { return c.state }

func (c *fakeConn) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, nil
}

func (c *fakeConn) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, nil
}

func (c *fakeConn) QueryRowContext(context.Context, string, ...any) *sql.Row { return nil }

func (c *fakeConn) BeginTx(context.Context, *sql.TxOptions) (*sql.Tx, error) {
	return nil, errors.New("not supported")
}

func (c *fakeConn) PingContext(context.Context) error { return nil }

type fakeProvider struct {
	created []*fakeConn
	openErr error
	err     error
}

func (p *fakeProvider) CreateConnection() (Connection, error) {
	if p.err != nil {
		return nil, p.err
	}
	c := &fakeConn{id: len(p.created) + 1, openErr: p.openErr}
	p.created = append(p.created, c)
	return c, nil
}

func TestNewManager_NilProvider(t *testing.T) {
	_, err := NewManager(nil, nil)
	require.Error(t, err)

	var cfgErr *core.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

func TestManager_ReusesHealthyConnection(t *testing.T) {
	p := &fakeProvider{}
	m, err := NewManager(p, testutil.NewTestLogger(t))
	require.NoError(t, err)
	assert.Equal(t, StateClosed, m.State())

	first, err := m.Connection(context.Background())
	require.NoError(t, err)
	second, err := m.Connection(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	require.Len(t, p.created, 1)
	assert.Equal(t, 1, p.created[0].opens)
	assert.Equal(t, StateOpen, m.State())
}

func TestManager_ReplacesBrokenConnectionOnce(t *testing.T) {
	p := &fakeProvider{}
	m, err := NewManager(p, testutil.NewTestLogger(t))
	require.NoError(t, err)

	first, err := m.Connection(context.Background())
	require.NoError(t, err)
	p.created[0].state = StateBroken

	second, err := m.Connection(context.Background())
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, 1, p.created[0].closes)
	require.Len(t, p.created, 2)
	assert.Equal(t, 1, p.created[1].opens)
	assert.Equal(t, StateOpen, second.State())
}

func TestManager_RecreateFailurePropagates(t *testing.T) {
	boom := errors.New("server unreachable")
	p := &fakeProvider{}
	m, err := NewManager(p, testutil.NewTestLoggerLevel(t, slog.LevelInfo))
	require.NoError(t, err)

	_, err = m.Connection(context.Background())
	require.NoError(t, err)
	p.created[0].state = StateBroken
	p.openErr = boom

	_, err = m.Connection(context.Background())
	assert.Same(t, boom, err)
	assert.Len(t, p.created, 2, "exactly one replacement attempt")
	assert.Equal(t, 1, p.created[0].closes)
	assert.Equal(t, 1, p.created[1].closes, "failed replacement is disposed")
	assert.Equal(t, StateClosed, m.State())
}

func TestManager_ProviderErrorPropagates(t *testing.T) {
	boom := errors.New("no driver")
	m, err := NewManager(&fakeProvider{err: boom}, nil)
	require.NoError(t, err)

	_, err = m.Connection(context.Background())
	assert.Same(t, boom, err)
}

func TestManager_Close(t *testing.T) {
	p := &fakeProvider{}
	m, err := NewManager(p, nil)
	require.NoError(t, err)

	require.NoError(t, m.Close(), "closing an idle manager is a no-op")

	_, err = m.Connection(context.Background())
	require.NoError(t, err)
	require.NoError(t, m.Close())

	assert.Equal(t, 1, p.created[0].closes)
	assert.Equal(t, StateClosed, m.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "broken", StateBroken.String())
	assert.Equal(t, "unknown", State(9).String())
}
