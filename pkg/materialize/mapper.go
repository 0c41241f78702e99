// Package materialize maps result columns onto struct members and scans rows.
//
// Column resolution goes through a TypeMapper. Mappers compose with
// FallbackMapper; a column no mapper resolves is scanned into a sink and
// dropped, never reported as an error.
package materialize

import (
	"reflect"
	"strings"
	"sync"

	"github.com/leapstack-labs/leaporm/pkg/mapping"
	"golang.org/x/text/cases"
)

// Member is a settable struct field reached by Index from the root struct.
type Member struct {
	Name  string
	Index []int
	Type  reflect.Type
}

// TypeMapper resolves a result column to a member of t.
// It returns nil when the column has no match.
type TypeMapper interface {
	FindMember(t reflect.Type, column string) *Member
}

// fold returns the Unicode case-folded form of s. Casers are stateful, so
// each call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

// fieldSet is the per-type lookup table used by ColumnAttributeMapper.
type fieldSet struct {
	byTag    map[string]*Member
	byName   map[string]*Member
	byFolded map[string]*Member
}

// ColumnAttributeMapper matches declared `db:"..."` column metadata first,
// then the field name exactly, then the case-folded field name.
type ColumnAttributeMapper struct {
	sets sync.Map // reflect.Type -> *fieldSet
}

var _ TypeMapper = (*ColumnAttributeMapper)(nil)

// FindMember implements TypeMapper.
func (m *ColumnAttributeMapper) FindMember(t reflect.Type, column string) *Member {
	t = structType(t)
	if t.Kind() != reflect.Struct {
		return nil
	}
	fs := m.fieldSet(t)
	if mem, ok := fs.byTag[column]; ok {
		return mem
	}
	if mem, ok := fs.byName[column]; ok {
		return mem
	}
	return fs.byFolded[fold(column)]
}

func (m *ColumnAttributeMapper) fieldSet(t reflect.Type) *fieldSet {
	if v, ok := m.sets.Load(t); ok {
		return v.(*fieldSet)
	}
	fs := &fieldSet{
		byTag:    make(map[string]*Member),
		byName:   make(map[string]*Member),
		byFolded: make(map[string]*Member),
	}
	if shape, err := mapping.ShapeFor(t); err == nil {
		for _, f := range shape.Fields {
			if f.Kind != mapping.FieldScalar {
				continue
			}
			mem := &Member{Name: f.Name, Index: f.Index, Type: f.Type}
			if f.Column != "" {
				fs.byTag[f.Column] = mem
			}
			fs.byName[f.Name] = mem
			key := fold(f.Name)
			if _, taken := fs.byFolded[key]; !taken {
				fs.byFolded[key] = mem
			}
		}
	}
	actual, _ := m.sets.LoadOrStore(t, fs)
	return actual.(*fieldSet)
}

// MappingMapper resolves columns through a compiled entity mapping: the
// mapped column name, then the property name (projection alias), then the
// case-folded property name for backends that fold unquoted aliases.
type MappingMapper struct {
	Mapping *mapping.EntityMapping
}

var _ TypeMapper = MappingMapper{}

// FindMember implements TypeMapper.
func (m MappingMapper) FindMember(t reflect.Type, column string) *Member {
	if m.Mapping == nil || structType(t) != structType(m.Mapping.Type()) {
		return nil
	}
	if p, ok := m.Mapping.PropertyForColumn(column); ok {
		return propertyMember(p)
	}
	if p, ok := m.Mapping.Property(column); ok {
		return propertyMember(p)
	}
	folded := fold(column)
	for _, p := range m.Mapping.Properties() {
		if fold(p.Name) == folded {
			return propertyMember(p)
		}
	}
	return nil
}

func propertyMember(p mapping.PropertyMapping) *Member {
	if p.Index == nil {
		return nil
	}
	return &Member{Name: p.Name, Index: p.Index, Type: p.Type}
}

// FallbackMapper tries each mapper in order; the first non-nil match wins.
type FallbackMapper []TypeMapper

var _ TypeMapper = FallbackMapper(nil)

// FindMember implements TypeMapper.
func (f FallbackMapper) FindMember(t reflect.Type, column string) *Member {
	for _, m := range f {
		if m == nil {
			continue
		}
		if mem := m.FindMember(t, column); mem != nil {
			return mem
		}
	}
	return nil
}

// ForMapping returns the default chain for an entity: mapping first, then
// column metadata and field names.
func ForMapping(m *mapping.EntityMapping) TypeMapper {
	return FallbackMapper{MappingMapper{Mapping: m}, &ColumnAttributeMapper{}}
}

func structType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return reflect.TypeFor[struct{}]()
	}
	return t
}

// columnsSignature joins column names with a separator that does not occur
// in identifiers.
func columnsSignature(cols []string) string {
	return strings.Join(cols, "\x1f")
}
