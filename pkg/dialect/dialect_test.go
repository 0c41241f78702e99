package dialect

import (
	"database/sql"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/leaporm/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type status int

type testDialect struct {
	Base
}

func (d testDialect) BuildInsertReturningID(base, _ string, keys []core.KeyColumn) string {
	return AppendReturning(d, base, keys)
}

func newTestDialect(name string, style core.PlaceholderStyle) testDialect {
	return testDialect{NewBase(&core.DialectConfig{
		Name: name,
		Identifiers: core.IdentifierConfig{
			Quote:    "[",
			QuoteEnd: "]",
			Escape:   "]]",
		},
		Placeholder:  style,
		BooleanTrue:  "1",
		BooleanFalse: "0",
		Types: map[core.HostKind]core.DbType{
			core.KindInt32:  "int",
			core.KindInt64:  "bigint",
			core.KindString: "nvarchar",
		},
	})}
}

func TestBase_QuoteIdentifier(t *testing.T) {
	d := newTestDialect("test", core.PlaceholderAtNamed)

	tests := []struct {
		in   string
		want string
	}{
		{"orders", "[orders]"},
		{"order lines", "[order lines]"},
		{"odd]name", "[odd]]name]"},
		{"", "[]"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, d.QuoteIdentifier(tt.in))
		})
	}
}

func TestBase_FormatParameter(t *testing.T) {
	tests := []struct {
		style core.PlaceholderStyle
		want  string
	}{
		{core.PlaceholderQuestion, "?"},
		{core.PlaceholderAtNamed, "@Id"},
		{core.PlaceholderDollarNamed, "$Id"},
	}
	for _, tt := range tests {
		t.Run(tt.style.String(), func(t *testing.T) {
			d := newTestDialect("test", tt.style)
			assert.Equal(t, tt.want, d.FormatParameter("Id"))
		})
	}
}

func TestBase_FormatBooleanAndPassThrough(t *testing.T) {
	d := newTestDialect("test", core.PlaceholderAtNamed)

	assert.Equal(t, "1", d.FormatBoolean(true))
	assert.Equal(t, "0", d.FormatBoolean(false))
	assert.Equal(t, "total_amount", d.FormatColumn("total_amount"))
	assert.Equal(t, "Total", d.FormatAlias("Total"))
}

func TestBase_MapDbType(t *testing.T) {
	d := newTestDialect("test", core.PlaceholderAtNamed)

	tests := []struct {
		name   string
		typ    reflect.Type
		want   core.DbType
		wantOK bool
	}{
		{"int64", reflect.TypeFor[int64](), "bigint", true},
		{"int", reflect.TypeFor[int](), "bigint", true},
		{"pointer", reflect.TypeFor[*int32](), "int", true},
		{"null wrapper", reflect.TypeFor[sql.NullString](), "nvarchar", true},
		{"generic null", reflect.TypeFor[sql.Null[int32]](), "int", true},
		{"enum", reflect.TypeFor[status](), "bigint", true},
		{"unmapped kind", reflect.TypeFor[float64](), "", false},
		{"map", reflect.TypeFor[map[string]int](), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := d.MapDbType(tt.typ)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHostKindOf(t *testing.T) {
	tests := []struct {
		typ    reflect.Type
		want   core.HostKind
		wantOK bool
	}{
		{reflect.TypeFor[bool](), core.KindBool, true},
		{reflect.TypeFor[**int16](), core.KindInt16, true},
		{reflect.TypeFor[uint](), core.KindUint64, true},
		{reflect.TypeFor[float32](), core.KindFloat32, true},
		{reflect.TypeFor[[]byte](), core.KindBytes, true},
		{reflect.TypeFor[time.Time](), core.KindTime, true},
		{reflect.TypeFor[sql.NullTime](), core.KindTime, true},
		{reflect.TypeFor[uuid.UUID](), core.KindUUID, true},
		{reflect.TypeFor[*uuid.UUID](), core.KindUUID, true},
		{reflect.TypeFor[sql.NullByte](), core.KindUint8, true},
		{reflect.TypeFor[[]string](), core.KindInvalid, false},
		{reflect.TypeFor[struct{ A int }](), core.KindInvalid, false},
		{reflect.TypeFor[chan int](), core.KindInvalid, false},
		{nil, core.KindInvalid, false},
	}
	for _, tt := range tests {
		name := "nil"
		if tt.typ != nil {
			name = tt.typ.String()
		}
		t.Run(name, func(t *testing.T) {
			got, ok := HostKindOf(tt.typ)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBase_BindArgs(t *testing.T) {
	values := map[string]any{"Id": 7, "Name": "x"}

	t.Run("positional repeats values in order", func(t *testing.T) {
		d := newTestDialect("test", core.PlaceholderQuestion)
		got := d.BindArgs([]string{"Name", "Id", "Id"}, values)
		assert.Equal(t, []any{"x", 7, 7}, got)
	})

	t.Run("named binds each name once", func(t *testing.T) {
		d := newTestDialect("test", core.PlaceholderAtNamed)
		got := d.BindArgs([]string{"Name", "Id", "Id"}, values)
		assert.Equal(t, []any{sql.Named("Name", "x"), sql.Named("Id", 7)}, got)
	})
}

func TestReturningHelpers(t *testing.T) {
	d := newTestDialect("test", core.PlaceholderAtNamed)
	keys := []core.KeyColumn{
		{Column: "tenant_id", Property: "TenantID"},
		{Column: "id", Property: "ID", Generation: core.GenerationIdentity},
	}

	assert.Equal(t, "INSERT x RETURNING [tenant_id], [id]", AppendReturning(d, "INSERT x", keys))
	assert.Equal(t, "INSERT x", AppendReturning(d, "INSERT x", nil))
	assert.Equal(t,
		"INSERT x; SELECT @TenantID AS [tenant_id], IDENT() AS [id]",
		AppendSelectBack(d, "INSERT x", keys, "IDENT()"))
	assert.Equal(t, []string{"TenantID"}, SelectBackParameters(keys))
}

func TestQualifiedName(t *testing.T) {
	d := newTestDialect("test", core.PlaceholderAtNamed)
	assert.Equal(t, "[orders]", QualifiedName(d, "", "orders"))
	assert.Equal(t, "[sales].[orders]", QualifiedName(d, "sales", "orders"))
}

func TestRegistry(t *testing.T) {
	d := newTestDialect("Registry_Test", core.PlaceholderAtNamed)
	Register(d)

	got, ok := Get("registry_test")
	require.True(t, ok)
	assert.Equal(t, "Registry_Test", got.Name())
	assert.Contains(t, List(), "registry_test")
	assert.NotPanics(t, func() { MustGet("REGISTRY_TEST") })

	_, ok = Get("nonexistent")
	assert.False(t, ok)
	assert.Panics(t, func() { MustGet("nonexistent") })
}
