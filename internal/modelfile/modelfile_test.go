package modelfile

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/leapstack-labs/leaporm/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shopModel = `
schema: sales
entities:
  - name: Customer
    table: customers
    keys: [ID]
    properties:
      - {name: ID, type: int64, identity: true}
      - {name: Name, type: string, column: full_name}
      - {name: Birthday, type: time, nullable: true}
      - {name: Notes, type: string, ignore: true}
    navigations:
      - {name: Orders, target: Order, many: true, inverse: Customer, foreign_key: CustomerID}
  - name: Order
    table: orders
    schema: billing
    keys: [No]
    properties:
      - {name: No, type: int, sequence: order_no}
      - {name: CustomerID, type: int64}
      - {name: Ref, type: uuid}
    navigations:
      - {name: Customer, target: Customer, inverse: Orders, foreign_key: CustomerID}
`

func TestParse_Build(t *testing.T) {
	f, err := Parse(strings.NewReader(shopModel))
	require.NoError(t, err)
	require.Len(t, f.Entities, 2)

	mappings, err := f.Build()
	require.NoError(t, err)
	require.Len(t, mappings, 2)

	customer := mappings[0]
	assert.Equal(t, "Customer", customer.Name())
	assert.Equal(t, "customers", customer.Table())
	assert.Equal(t, "sales", customer.Schema())
	assert.True(t, customer.HasGeneratedKey())

	name, ok := customer.Property("Name")
	require.True(t, ok)
	assert.Equal(t, "full_name", name.Column)

	birthday, ok := customer.Property("Birthday")
	require.True(t, ok)
	assert.Equal(t, reflect.Pointer, birthday.Type.Kind())

	_, ok = customer.Property("Notes")
	assert.False(t, ok, "ignored property must not be mapped")

	require.Len(t, customer.Relationships(), 1)
	rel := customer.Relationships()[0]
	assert.Equal(t, "Customer", rel.Principal)
	assert.Equal(t, "Order", rel.Dependent)
	assert.Equal(t, "CustomerID", rel.ForeignKey)

	order := mappings[1]
	assert.Equal(t, "billing", order.Schema())
	no, ok := order.Property("No")
	require.True(t, ok)
	assert.Equal(t, core.GenerationSequence, no.Generation)
	assert.Equal(t, "order_no", no.Sequence)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "empty",
			input:   "",
			wantErr: "model file is empty",
		},
		{
			name:    "unknown field",
			input:   "entities:\n  - name: A\n    tabel: a\n",
			wantErr: "field tabel not found",
		},
		{
			name:    "unknown type",
			input:   "entities:\n  - name: A\n    properties:\n      - {name: ID, type: decimal}\n",
			wantErr: `A.ID has unknown type "decimal"`,
		},
		{
			name:    "duplicate entity",
			input:   "entities:\n  - name: A\n  - name: A\n",
			wantErr: "entity A declared twice",
		},
		{
			name:    "unknown target",
			input:   "entities:\n  - name: A\n    navigations:\n      - {name: B, target: B}\n",
			wantErr: `A.B targets unknown entity "B"`,
		},
		{
			name:    "missing name",
			input:   "entities:\n  - table: a\n",
			wantErr: "entity without a name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuild_ConfigError(t *testing.T) {
	f, err := Parse(strings.NewReader(`
entities:
  - name: Audit
    properties:
      - {name: At, type: time}
`))
	require.NoError(t, err)

	_, err = f.Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrConfiguration)

	var cfgErr *core.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "Audit", cfgErr.Entity)
}

func TestBuilder_Pluralize(t *testing.T) {
	f, err := Parse(strings.NewReader(`
pluralize: true
entities:
  - name: Category
    keys: [ID]
    properties:
      - {name: ID, type: int}
`))
	require.NoError(t, err)

	m, err := f.Builder().BuildNamed("Category")
	require.NoError(t, err)
	assert.Equal(t, "Categories", m.Table())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(shopModel), 0o600))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sales", f.Schema)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read model file")
}
