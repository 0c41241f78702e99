// Package modelfile reads entity models described in YAML and registers
// them on a mapping.ModelBuilder.
//
//	entities:
//	  - name: Customer
//	    table: customers
//	    keys: [ID]
//	    properties:
//	      - {name: ID, type: int64, identity: true}
//	      - {name: Name, type: string, column: full_name}
//	    navigations:
//	      - {name: Orders, many: true, target: Order, inverse: Customer, foreign_key: CustomerID}
package modelfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/leaporm/pkg/mapping"
	"gopkg.in/yaml.v3"
)

// File is a parsed model file.
type File struct {
	// Pluralize derives table names by pluralizing entity names.
	Pluralize bool     `yaml:"pluralize"`
	Schema    string   `yaml:"schema"`
	Entities  []Entity `yaml:"entities"`
}

// Entity describes one entity.
type Entity struct {
	Name        string       `yaml:"name"`
	Table       string       `yaml:"table"`
	Schema      string       `yaml:"schema"`
	Keys        []string     `yaml:"keys"`
	Properties  []Property   `yaml:"properties"`
	Navigations []Navigation `yaml:"navigations"`
}

// Property describes a scalar property.
type Property struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Column   string `yaml:"column"`
	Identity bool   `yaml:"identity"`
	Sequence string `yaml:"sequence"`
	Nullable bool   `yaml:"nullable"`
	Ignore   bool   `yaml:"ignore"`
}

// Navigation describes a reference (many: false) or collection navigation.
type Navigation struct {
	Name       string `yaml:"name"`
	Target     string `yaml:"target"`
	Many       bool   `yaml:"many"`
	Inverse    string `yaml:"inverse"`
	InverseOne bool   `yaml:"inverse_one"`
	ForeignKey string `yaml:"foreign_key"`
}

var scalarTypes = map[string]reflect.Type{
	"string":  reflect.TypeFor[string](),
	"bool":    reflect.TypeFor[bool](),
	"int":     reflect.TypeFor[int64](),
	"int16":   reflect.TypeFor[int16](),
	"int32":   reflect.TypeFor[int32](),
	"int64":   reflect.TypeFor[int64](),
	"float32": reflect.TypeFor[float32](),
	"float64": reflect.TypeFor[float64](),
	"bytes":   reflect.TypeFor[[]byte](),
	"time":    reflect.TypeFor[time.Time](),
	"uuid":    reflect.TypeFor[uuid.UUID](),
}

// Types lists the accepted property type names.
func Types() []string {
	names := make([]string, 0, len(scalarTypes))
	for name := range scalarTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Parse decodes a model file. Unknown fields are rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("model file is empty")
		}
		return nil, fmt.Errorf("failed to parse model file: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Load reads and parses the model file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the user
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

func (f *File) validate() error {
	seen := make(map[string]bool, len(f.Entities))
	for _, e := range f.Entities {
		if e.Name == "" {
			return fmt.Errorf("model file: entity without a name")
		}
		if seen[e.Name] {
			return fmt.Errorf("model file: entity %s declared twice", e.Name)
		}
		seen[e.Name] = true
		for _, p := range e.Properties {
			if _, ok := scalarTypes[strings.ToLower(p.Type)]; !ok && p.Type != "" {
				return fmt.Errorf("model file: %s.%s has unknown type %q (want one of %s)",
					e.Name, p.Name, p.Type, strings.Join(Types(), ", "))
			}
		}
	}
	for _, e := range f.Entities {
		for _, n := range e.Navigations {
			if !seen[n.Target] {
				return fmt.Errorf("model file: %s.%s targets unknown entity %q", e.Name, n.Name, n.Target)
			}
		}
	}
	return nil
}

// Shape returns the hand-built shape for e.
func (e Entity) Shape() *mapping.Shape {
	fields := make([]mapping.Field, 0, len(e.Properties)+len(e.Navigations))
	for _, p := range e.Properties {
		t := scalarTypes[strings.ToLower(p.Type)]
		if t == nil {
			t = scalarTypes["string"]
		}
		if p.Nullable && t.Kind() != reflect.Slice {
			t = reflect.PointerTo(t)
		}
		fields = append(fields, mapping.Field{Name: p.Name, Type: t, Column: p.Column, Kind: mapping.FieldScalar})
	}
	for _, n := range e.Navigations {
		kind := mapping.FieldReference
		if n.Many {
			kind = mapping.FieldCollection
		}
		fields = append(fields, mapping.Field{Name: n.Name, Kind: kind, Target: n.Target})
	}
	return mapping.NewShape(e.Name, nil, fields...)
}

// Builder registers every entity in f on a new model builder. Shapes are
// registered before any navigation is configured so navigations may refer
// to entities declared later in the file.
func (f *File) Builder() *mapping.ModelBuilder {
	var opts []mapping.Option
	if f.Pluralize {
		opts = append(opts, mapping.WithPluralizedTableNames())
	}
	if f.Schema != "" {
		opts = append(opts, mapping.WithDefaultSchema(f.Schema))
	}
	mb := mapping.NewModelBuilder(opts...)

	shapes := make([]*mapping.Shape, len(f.Entities))
	for i, e := range f.Entities {
		shapes[i] = e.Shape()
		mb.EntityShape(shapes[i], nil)
	}
	for i, e := range f.Entities {
		mb.EntityShape(shapes[i], e.configure)
	}
	return mb
}

func (e Entity) configure(b *mapping.EntityBuilder) {
	if e.Table != "" || e.Schema != "" {
		table := e.Table
		if table == "" {
			table = e.Name
		}
		if e.Schema != "" {
			b.ToTable(table, e.Schema)
		} else {
			b.ToTable(table)
		}
	}
	b.HasKey(e.Keys...)
	for _, p := range e.Properties {
		pb := b.Property(p.Name)
		if p.Column != "" {
			pb.HasColumnName(p.Column)
		}
		if p.Identity {
			pb.IsIdentity()
		}
		if p.Sequence != "" {
			pb.HasSequence(p.Sequence)
		}
		if p.Ignore {
			pb.Ignore()
		}
	}
	for _, n := range e.Navigations {
		var nb *mapping.NavigationBuilder
		if n.Many {
			nb = b.HasMany(n.Name)
		} else {
			nb = b.HasOne(n.Name)
		}
		if n.Inverse != "" {
			if n.Many || n.InverseOne {
				nb.WithOne(n.Inverse)
			} else {
				nb.WithMany(n.Inverse)
			}
		}
		if n.ForeignKey != "" {
			nb.HasForeignKey(n.ForeignKey)
		}
	}
}

// Build compiles every entity, returning mappings in file order. The first
// configuration error stops the build.
func (f *File) Build() ([]*mapping.EntityMapping, error) {
	mb := f.Builder()
	out := make([]*mapping.EntityMapping, 0, len(f.Entities))
	for _, e := range f.Entities {
		m, err := mb.BuildNamed(e.Name)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
