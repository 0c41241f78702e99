package orm

import (
	"context"
	"testing"

	"github.com/leapstack-labs/leaporm/internal/testutil"
	"github.com/leapstack-labs/leaporm/pkg/connection"
	"github.com/leapstack-labs/leaporm/pkg/core"
	"github.com/leapstack-labs/leaporm/pkg/expr"
	"github.com/leapstack-labs/leaporm/pkg/mapping"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/leapstack-labs/leaporm/pkg/adapters/sqlite"
)

func TestOpen_SQLiteRoundTrip(t *testing.T) {
	logger := testutil.NewTestLogger(t)
	c, err := Open(core.AdapterConfig{Type: "sqlite"},
		WithLogger(logger), WithCache(mapping.NewCache(testModel(), logger)))
	require.NoError(t, err)
	defer func() { require.NoError(t, c.Close()) }()

	ctx := context.Background()
	require.NoError(t, c.Ping(ctx))
	assert.Equal(t, connection.StateOpen, c.State())

	_, err = c.Exec(ctx, `CREATE TABLE customers (
		ID INTEGER PRIMARY KEY AUTOINCREMENT,
		full_name TEXT NOT NULL,
		Email TEXT NOT NULL,
		Age INTEGER NOT NULL
	)`)
	require.NoError(t, err)

	ann := &Customer{Name: "Ann", Email: "ann@example.com", Age: 30}
	kid := &Customer{Name: "Kim", Email: "kim@example.com", Age: 12}
	require.NoError(t, Insert(ctx, c, ann))
	require.NoError(t, Insert(ctx, c, kid))
	assert.Equal(t, int64(1), ann.ID)
	assert.Equal(t, int64(2), kid.ID)

	got, err := Find[Customer](ctx, c, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, *ann, *got)

	ann.Age = 31
	require.NoError(t, Update(ctx, c, ann))

	adults, err := Where[Customer](ctx, c, expr.Ge(expr.Prop("Age"), expr.Val(18)))
	require.NoError(t, err)
	require.Len(t, adults, 1)
	assert.Equal(t, 31, adults[0].Age)

	n, err := Count[Customer](ctx, c, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, Delete(ctx, c, kid))
	assert.ErrorIs(t, Delete(ctx, c, kid), ErrNotFound)

	_, err = Find[Customer](ctx, c, kid.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpen_UnknownAdapter(t *testing.T) {
	_, err := Open(core.AdapterConfig{Type: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown adapter type "oracle"`)
}
