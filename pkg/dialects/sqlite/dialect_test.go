package sqlite

import (
	"database/sql"
	"reflect"
	"testing"
	"time"

	"github.com/leapstack-labs/leaporm/pkg/core"
	"github.com/leapstack-labs/leaporm/pkg/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectRegistration(t *testing.T) {
	d, ok := dialect.Get("sqlite")
	require.True(t, ok, "sqlite dialect should be registered")
	assert.Equal(t, "sqlite", d.Name())
}

func TestFormatting(t *testing.T) {
	d := SQLite

	assert.Equal(t, `"orders"`, d.QuoteIdentifier("orders"))
	assert.Equal(t, "@p1", d.FormatParameter("p1"))
	assert.Equal(t, "1", d.FormatBoolean(true))
	assert.Equal(t, "0", d.FormatBoolean(false))

	typ, ok := d.MapDbType(reflect.TypeFor[time.Time]())
	assert.True(t, ok)
	assert.Equal(t, core.DbType("TEXT"), typ)

	args := d.BindArgs([]string{"Name"}, map[string]any{"Name": "x"})
	assert.Equal(t, []any{sql.Named("Name", "x")}, args)
}

func TestBuildInsertReturningID(t *testing.T) {
	base := `INSERT INTO "t" ("name") VALUES (@Name)`
	keys := []core.KeyColumn{{Column: "id", Property: "ID", Generation: core.GenerationIdentity}}
	assert.Equal(t, base+` RETURNING "id"`, SQLite.BuildInsertReturningID(base, "t", keys))
}
