package sqlserver

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
	d, ok := dialect.Get("sqlserver")
	require.True(t, ok, "sqlserver dialect should be registered")
	assert.Equal(t, "sqlserver", d.Name())
	assert.Equal(t, "dbo", d.Config().DefaultSchema)
}

func TestFormatting(t *testing.T) {
	d := SQLServer

	assert.Equal(t, "[orders]", d.QuoteIdentifier("orders"))
	assert.Equal(t, "[a]]b]", d.QuoteIdentifier("a]b"))
	assert.Equal(t, "@p0", d.FormatParameter("p0"))
	assert.Equal(t, "1", d.FormatBoolean(true))
	assert.Equal(t, "0", d.FormatBoolean(false))

	typ, ok := d.MapDbType(reflect.TypeFor[sql.NullInt64]())
	assert.True(t, ok)
	assert.Equal(t, core.DbType("bigint"), typ)
}

func TestBuildInsertReturningID(t *testing.T) {
	base := "INSERT INTO [t] ([name]) VALUES (@Name)"

	tests := []struct {
		name       string
		keys       []core.KeyColumn
		want       string
		wantParams []string
	}{
		{
			name: "identity",
			keys: []core.KeyColumn{{Column: "id", Property: "ID", Generation: core.GenerationIdentity}},
			want: base + "; SELECT CAST(SCOPE_IDENTITY() AS bigint) AS [id]",
		},
		{
			name: "composite sequence",
			keys: []core.KeyColumn{
				{Column: "k1", Property: "k1", Generation: core.GenerationSequence, Sequence: "s1"},
				{Column: "k2", Property: "k2", Generation: core.GenerationSequence, Sequence: "s2"},
			},
			want:       base + "; SELECT @k1 AS [k1], @k2 AS [k2]",
			wantParams: []string{"k1", "k2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SQLServer.BuildInsertReturningID(base, "t", tt.keys))
			assert.Equal(t, tt.wantParams, SQLServer.ReturningParameters(tt.keys))
		})
	}
}

func TestNextSequenceValue(t *testing.T) {
	assert.Equal(t, "SELECT NEXT VALUE FOR [sales].[order_no_seq]", SQLServer.NextSequenceValue("sales.order_no_seq"))
}
