package duckdb

import (
	"database/sql"
	"reflect"
	"testing"

	"github.com/leapstack-labs/leaporm/pkg/core"
	"github.com/leapstack-labs/leaporm/pkg/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectRegistration(t *testing.T) {
	d, ok := dialect.Get("duckdb")
	require.True(t, ok, "duckdb dialect should be registered")
	assert.Equal(t, "duckdb", d.Name())
	assert.Equal(t, "main", d.Config().DefaultSchema)
}

func TestFormatting(t *testing.T) {
	d := DuckDB

	assert.Equal(t, `"my table"`, d.QuoteIdentifier("my table"))
	assert.Equal(t, "$p0", d.FormatParameter("p0"))
	assert.Equal(t, "true", d.FormatBoolean(true))
	assert.Equal(t, "false", d.FormatBoolean(false))

	typ, ok := d.MapDbType(reflect.TypeFor[sql.NullFloat64]())
	assert.True(t, ok)
	assert.Equal(t, core.DbType("DOUBLE"), typ)

	_, ok = d.MapDbType(reflect.TypeFor[map[string]any]())
	assert.False(t, ok)
}

func TestSequences(t *testing.T) {
	base := `INSERT INTO "t" ("k1", "k2") VALUES ($K1, $K2)`
	keys := []core.KeyColumn{
		{Column: "k1", Property: "K1", Generation: core.GenerationSequence, Sequence: "s1"},
		{Column: "k2", Property: "K2", Generation: core.GenerationSequence, Sequence: "s2"},
	}
	assert.Equal(t, base+` RETURNING "k1", "k2"`, DuckDB.BuildInsertReturningID(base, "t", keys))
	assert.Equal(t, "SELECT nextval('s1')", DuckDB.NextSequenceValue("s1"))
}
