package duckdb

import (
	"context"
	"testing"

	"github.com/leapstack-labs/leaporm/pkg/adapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapter_Registration(t *testing.T) {
	a, ok := adapter.Get("duckdb")
	require.True(t, ok)
	assert.Equal(t, "duckdb", a.Dialect().Name())
}

func TestAdapter_OpenDB_InMemory(t *testing.T) {
	db, err := New().OpenDB(adapter.Config{
		Path:   ":memory:",
		Params: map[string]any{"settings": map[string]any{"threads": "2"}},
	})
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.PingContext(ctx))

	var threads string
	require.NoError(t, db.QueryRowContext(ctx, "SELECT current_setting('threads')::VARCHAR").Scan(&threads))
	assert.Equal(t, "2", threads)
}

func TestAdapter_OpenDB_BadParams(t *testing.T) {
	_, err := New().OpenDB(adapter.Config{Params: map[string]any{"settings": "threads=2"}})
	require.Error(t, err)
}
