package mapping

import (
	"reflect"

	"github.com/leapstack-labs/leaporm/pkg/core"
)

// PropertyMapping maps one scalar property to its column.
type PropertyMapping struct {
	Name       string
	Column     string
	Type       reflect.Type
	IsKey      bool
	Generation core.Generation
	Sequence   string
	// Index is the reflect field index path, nil for hand-built shapes.
	Index []int
}

// RelationshipConfig describes a navigation between two entities.
type RelationshipConfig struct {
	Navigation    string
	Principal     string
	Dependent     string
	PrincipalType reflect.Type
	DependentType reflect.Type
	// IsReference is true when Navigation points at a single entity.
	IsReference bool
	Inverse     string
	ForeignKey  string
}

// EntityMapping is the compiled, immutable description of an entity's
// table, columns, keys and relationships. All accessors return copies.
type EntityMapping struct {
	name          string
	goType        reflect.Type
	table         string
	schema        string
	properties    []PropertyMapping
	keys          []int // indexes into properties, declaration order
	byName        map[string]int
	byColumn      map[string]int
	relationships []RelationshipConfig
}

// Name returns the entity name.
func (m *EntityMapping) Name() string { return m.name }

// Type returns the entity's Go type, or nil for hand-built shapes.
func (m *EntityMapping) Type() reflect.Type { return m.goType }

// Table returns the table name.
func (m *EntityMapping) Table() string { return m.table }

// Schema returns the schema name, empty when unqualified.
func (m *EntityMapping) Schema() string { return m.schema }

// Properties returns every mapped property in mapping order.
func (m *EntityMapping) Properties() []PropertyMapping {
	return append([]PropertyMapping(nil), m.properties...)
}

// Keys returns the key properties in declaration order.
func (m *EntityMapping) Keys() []PropertyMapping {
	out := make([]PropertyMapping, len(m.keys))
	for i, idx := range m.keys {
		out[i] = m.properties[idx]
	}
	return out
}

// NonKeys returns the non-key properties in mapping order.
func (m *EntityMapping) NonKeys() []PropertyMapping {
	out := make([]PropertyMapping, 0, len(m.properties)-len(m.keys))
	for _, p := range m.properties {
		if !p.IsKey {
			out = append(out, p)
		}
	}
	return out
}

// Property looks up a property by name.
func (m *EntityMapping) Property(name string) (PropertyMapping, bool) {
	i, ok := m.byName[name]
	if !ok {
		return PropertyMapping{}, false
	}
	return m.properties[i], true
}

// PropertyForColumn looks up a property by column name.
func (m *EntityMapping) PropertyForColumn(column string) (PropertyMapping, bool) {
	i, ok := m.byColumn[column]
	if !ok {
		return PropertyMapping{}, false
	}
	return m.properties[i], true
}

// ColumnFor returns the column a property maps to.
func (m *EntityMapping) ColumnFor(property string) (string, bool) {
	p, ok := m.Property(property)
	return p.Column, ok
}

// KeyColumns returns the keys in the form dialects consume.
func (m *EntityMapping) KeyColumns() []core.KeyColumn {
	out := make([]core.KeyColumn, len(m.keys))
	for i, idx := range m.keys {
		p := m.properties[idx]
		out[i] = core.KeyColumn{
			Column:     p.Column,
			Property:   p.Name,
			Generation: p.Generation,
			Sequence:   p.Sequence,
		}
	}
	return out
}

// HasGeneratedKey reports whether any key is identity- or sequence-generated.
func (m *EntityMapping) HasGeneratedKey() bool {
	for _, idx := range m.keys {
		if m.properties[idx].Generation.Generated() {
			return true
		}
	}
	return false
}

// Relationships returns the configured navigations.
func (m *EntityMapping) Relationships() []RelationshipConfig {
	return append([]RelationshipConfig(nil), m.relationships...)
}
