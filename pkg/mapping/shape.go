package mapping

import (
	"database/sql"
	"database/sql/driver"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/leaporm/pkg/core"
)

// FieldKind classifies a shape field.
type FieldKind int

const (
	// FieldScalar is a column-backed value.
	FieldScalar FieldKind = iota
	// FieldReference is a single related entity (struct or pointer to struct).
	FieldReference
	// FieldCollection is a slice of related entities.
	FieldCollection
)

// String returns the field kind name.
func (k FieldKind) String() string {
	switch k {
	case FieldScalar:
		return "scalar"
	case FieldReference:
		return "reference"
	case FieldCollection:
		return "collection"
	default:
		return "unknown"
	}
}

// Field is one member of an entity shape.
type Field struct {
	Name string
	// Type is the Go type of the field. Hand-built shapes may leave it nil.
	Type reflect.Type
	// Column is the declared column name from `db:"..."` metadata, if any.
	Column string
	Kind   FieldKind
	// Target names the related entity for navigation fields.
	Target     string
	TargetType reflect.Type
	// Index is the reflect field index path; nil for hand-built shapes.
	Index []int
}

// Shape describes the members of an entity type.
type Shape struct {
	Name   string
	GoType reflect.Type
	Fields []Field

	index map[string]int
}

// NewShape assembles a shape by hand. goType may be nil when the entity has
// no Go struct behind it (e.g. a model file).
func NewShape(name string, goType reflect.Type, fields ...Field) *Shape {
	s := &Shape{Name: name, GoType: goType, Fields: fields, index: make(map[string]int, len(fields))}
	for i, f := range fields {
		s.index[f.Name] = i
	}
	return s
}

// Field returns the field with the given name.
func (s *Shape) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.Fields[i], true
}

// ShapeOf reflects the exported fields of T.
func ShapeOf[T any]() (*Shape, error) {
	return ShapeFor(reflect.TypeFor[T]())
}

// ShapeFor reflects the exported fields of a struct type (or pointer to one).
// Embedded structs are flattened and fields tagged `db:"-"` are skipped.
func ShapeFor(t reflect.Type) (*Shape, error) {
	if t == nil {
		return nil, core.Configf("", "entity type is nil")
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, core.Configf(t.String(), "entity type must be a struct, got %s", t.Kind())
	}
	var fields []Field
	collectFields(t, nil, &fields)
	return NewShape(t.Name(), t, fields...), nil
}

func collectFields(t reflect.Type, parent []int, out *[]Field) {
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		index := append(append([]int(nil), parent...), i)

		tag, _, _ := strings.Cut(sf.Tag.Get("db"), ",")
		if tag == "-" {
			continue
		}
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct && tag == "" && !isScalarStruct(sf.Type) {
			collectFields(sf.Type, index, out)
			continue
		}

		f := Field{Name: sf.Name, Type: sf.Type, Column: tag, Index: index}
		f.Kind, f.TargetType = classify(sf.Type)
		if f.TargetType != nil {
			f.Target = f.TargetType.Name()
		}
		*out = append(*out, f)
	}
}

var (
	scannerType = reflect.TypeFor[sql.Scanner]()
	valuerType  = reflect.TypeFor[driver.Valuer]()
	timeType    = reflect.TypeFor[time.Time]()
	uuidType    = reflect.TypeFor[uuid.UUID]()
)

// classify decides whether t is a column value or a navigation to another
// entity, returning the entity type for navigations.
func classify(t reflect.Type) (FieldKind, reflect.Type) {
	switch {
	case isEntityStruct(t):
		return FieldReference, t
	case t.Kind() == reflect.Pointer && isEntityStruct(t.Elem()):
		return FieldReference, t.Elem()
	case t.Kind() == reflect.Slice:
		elem := t.Elem()
		if elem.Kind() == reflect.Pointer {
			elem = elem.Elem()
		}
		if isEntityStruct(elem) {
			return FieldCollection, elem
		}
	}
	return FieldScalar, nil
}

func isEntityStruct(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && !isScalarStruct(t)
}

// isScalarStruct reports struct types that are stored in a single column.
func isScalarStruct(t reflect.Type) bool {
	if t == timeType || t == uuidType {
		return true
	}
	if t.PkgPath() == "database/sql" && strings.HasPrefix(t.Name(), "Null") {
		return true
	}
	return t.Implements(valuerType) ||
		reflect.PointerTo(t).Implements(scannerType)
}
