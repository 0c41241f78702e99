package mysql

import (
	"reflect"
	"testing"

	"github.com/leapstack-labs/leaporm/pkg/core"
	"github.com/leapstack-labs/leaporm/pkg/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectRegistration(t *testing.T) {
	d, ok := dialect.Get("mysql")
	require.True(t, ok, "mysql dialect should be registered")
	assert.Equal(t, "mysql", d.Name())

	_, isSeq := d.(dialect.SequenceDialect)
	assert.False(t, isSeq, "mysql has no sequences")
}

func TestFormatting(t *testing.T) {
	d := MySQL

	assert.Equal(t, "`orders`", d.QuoteIdentifier("orders"))
	assert.Equal(t, "`a``b`", d.QuoteIdentifier("a`b"))
	assert.Equal(t, "?", d.FormatParameter("p0"))
	assert.Equal(t, "TRUE", d.FormatBoolean(true))

	typ, ok := d.MapDbType(reflect.TypeFor[*uint32]())
	assert.True(t, ok)
	assert.Equal(t, core.DbType("int unsigned"), typ)

	args := d.BindArgs([]string{"a", "b", "a"}, map[string]any{"a": 1, "b": 2})
	assert.Equal(t, []any{1, 2, 1}, args)
}

func TestBuildInsertReturningID(t *testing.T) {
	base := "INSERT INTO `t` (`name`) VALUES (?)"

	identity := []core.KeyColumn{{Column: "id", Property: "ID", Generation: core.GenerationIdentity}}
	assert.Equal(t, base+"; SELECT LAST_INSERT_ID() AS `id`", MySQL.BuildInsertReturningID(base, "t", identity))
	assert.Empty(t, MySQL.ReturningParameters(identity))

	composite := []core.KeyColumn{
		{Column: "k1", Property: "K1"},
		{Column: "k2", Property: "K2"},
	}
	assert.Equal(t, base+"; SELECT ? AS `k1`, ? AS `k2`", MySQL.BuildInsertReturningID(base, "t", composite))
	assert.Equal(t, []string{"K1", "K2"}, MySQL.ReturningParameters(composite))
}
