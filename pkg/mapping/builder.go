package mapping

import (
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-openapi/inflect"
	"github.com/leapstack-labs/leaporm/pkg/core"
)

// Option configures model-wide conventions.
type Option func(*ModelBuilder)

// WithPluralizedTableNames derives default table names by pluralizing the
// entity name ("Order" -> "Orders").
func WithPluralizedTableNames() Option {
	return func(mb *ModelBuilder) { mb.pluralize = true }
}

// WithDefaultSchema qualifies every table without an explicit schema.
func WithDefaultSchema(schema string) Option {
	return func(mb *ModelBuilder) { mb.defaultSchema = schema }
}

// ModelBuilder accumulates entity configuration. Configure every entity
// before calling Build; Build itself only reads the accumulated state and is
// safe to call from multiple goroutines.
type ModelBuilder struct {
	mu            sync.RWMutex
	byType        map[reflect.Type]*EntityBuilder
	byName        map[string]*EntityBuilder
	pluralize     bool
	defaultSchema string
}

// NewModelBuilder creates an empty model.
func NewModelBuilder(opts ...Option) *ModelBuilder {
	mb := &ModelBuilder{
		byType: make(map[reflect.Type]*EntityBuilder),
		byName: make(map[string]*EntityBuilder),
	}
	for _, opt := range opts {
		opt(mb)
	}
	return mb
}

// Entity selects T and runs configure against its handle. Repeated calls for
// the same type configure the same handle.
func Entity[T any](mb *ModelBuilder, configure func(e *EntityBuilder)) *ModelBuilder {
	t := reflect.TypeFor[T]()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	mb.mu.Lock()
	e, ok := mb.byType[t]
	if !ok {
		shape, err := ShapeFor(t)
		if err != nil {
			e = newEntityBuilder(NewShape(t.String(), t))
			e.fail(err)
		} else {
			e = newEntityBuilder(shape)
		}
		mb.byType[t] = e
		mb.byName[e.shape.Name] = e
	}
	mb.mu.Unlock()

	if configure != nil {
		configure(e)
	}
	return mb
}

// EntityShape registers a hand-built shape and runs configure against it.
func (mb *ModelBuilder) EntityShape(shape *Shape, configure func(e *EntityBuilder)) *ModelBuilder {
	mb.mu.Lock()
	e, ok := mb.byName[shape.Name]
	if !ok {
		e = newEntityBuilder(shape)
		mb.byName[shape.Name] = e
		if shape.GoType != nil {
			mb.byType[shape.GoType] = e
		}
	}
	mb.mu.Unlock()

	if configure != nil {
		configure(e)
	}
	return mb
}

// Entities lists the configured entity names (sorted).
func (mb *ModelBuilder) Entities() []string {
	mb.mu.RLock()
	defer mb.mu.RUnlock()
	names := make([]string, 0, len(mb.byName))
	for name := range mb.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build compiles the mapping for t. Types never passed to Entity are built
// from conventions alone, which fails because no key is declared.
func (mb *ModelBuilder) Build(t reflect.Type) (*EntityMapping, error) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	mb.mu.RLock()
	e, ok := mb.byType[t]
	mb.mu.RUnlock()
	if !ok {
		shape, err := ShapeFor(t)
		if err != nil {
			return nil, err
		}
		e = newEntityBuilder(shape)
	}
	return mb.compile(e)
}

// BuildNamed compiles the mapping for the entity registered under name.
func (mb *ModelBuilder) BuildNamed(name string) (*EntityMapping, error) {
	mb.mu.RLock()
	e, ok := mb.byName[name]
	mb.mu.RUnlock()
	if !ok {
		return nil, core.Configf(name, "entity is not configured")
	}
	return mb.compile(e)
}

func (mb *ModelBuilder) defaultTable(name string) string {
	if mb.pluralize {
		return inflect.Pluralize(name)
	}
	return name
}

// EntityBuilder is the mutable configuration handle for one entity.
type EntityBuilder struct {
	shape      *Shape
	table      string
	schema     string
	keys       []string
	properties map[string]*PropertyBuilder
	propOrder  []string
	navs       []*NavigationBuilder
	err        error
}

func newEntityBuilder(shape *Shape) *EntityBuilder {
	return &EntityBuilder{shape: shape, properties: make(map[string]*PropertyBuilder)}
}

func (e *EntityBuilder) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

// Name returns the entity name.
func (e *EntityBuilder) Name() string { return e.shape.Name }

// ToTable sets the table name and, optionally, its schema.
func (e *EntityBuilder) ToTable(name string, schema ...string) *EntityBuilder {
	e.table = name
	if len(schema) > 0 {
		e.schema = schema[0]
	}
	return e
}

// HasKey appends key properties. Declaration order is preserved across calls.
func (e *EntityBuilder) HasKey(properties ...string) *EntityBuilder {
	e.keys = append(e.keys, properties...)
	return e
}

// Property returns the configuration handle for a scalar property.
func (e *EntityBuilder) Property(name string) *PropertyBuilder {
	p, ok := e.properties[name]
	if !ok {
		p = &PropertyBuilder{name: name}
		e.properties[name] = p
		e.propOrder = append(e.propOrder, name)
	}
	return p
}

// HasOne declares a reference navigation. This entity is the dependent side
// and carries the foreign key.
func (e *EntityBuilder) HasOne(selector string) *NavigationBuilder {
	n := &NavigationBuilder{selector: selector}
	e.navs = append(e.navs, n)
	return n
}

// HasMany declares a collection navigation. This entity is the principal side.
func (e *EntityBuilder) HasMany(selector string) *NavigationBuilder {
	n := &NavigationBuilder{selector: selector, collection: true}
	e.navs = append(e.navs, n)
	return n
}

// PropertyBuilder configures one property.
type PropertyBuilder struct {
	name       string
	column     string
	generation core.Generation
	sequence   string
	ignored    bool
}

// HasColumnName overrides the column name.
func (p *PropertyBuilder) HasColumnName(column string) *PropertyBuilder {
	p.column = column
	return p
}

// HasSequence draws the property's value from a named sequence before insert.
func (p *PropertyBuilder) HasSequence(sequence string) *PropertyBuilder {
	p.generation = core.GenerationSequence
	p.sequence = sequence
	return p
}

// IsIdentity marks the property as engine-assigned during insert.
func (p *PropertyBuilder) IsIdentity() *PropertyBuilder {
	p.generation = core.GenerationIdentity
	p.sequence = ""
	return p
}

// IsGeneratedNever marks the property as always caller-supplied.
func (p *PropertyBuilder) IsGeneratedNever() *PropertyBuilder {
	p.generation = core.GenerationNone
	p.sequence = ""
	return p
}

// Ignore excludes the property from the mapping.
func (p *PropertyBuilder) Ignore() *PropertyBuilder {
	p.ignored = true
	return p
}

// NavigationBuilder configures one navigation.
type NavigationBuilder struct {
	selector   string
	collection bool
	inverse    string
	foreignKey string
}

// WithOne names the inverse reference navigation on the related entity.
func (n *NavigationBuilder) WithOne(inverse string) *NavigationBuilder {
	n.inverse = inverse
	return n
}

// WithMany names the inverse collection navigation on the related entity.
func (n *NavigationBuilder) WithMany(inverse string) *NavigationBuilder {
	n.inverse = inverse
	return n
}

// HasForeignKey names the foreign-key property on the dependent entity.
func (n *NavigationBuilder) HasForeignKey(property string) *NavigationBuilder {
	n.foreignKey = property
	return n
}

// compile turns a handle into an immutable mapping. It never mutates e.
func (mb *ModelBuilder) compile(e *EntityBuilder) (*EntityMapping, error) {
	if e.err != nil {
		return nil, e.err
	}
	shape := e.shape
	fail := func(format string, args ...any) (*EntityMapping, error) {
		return nil, core.Configf(shape.Name, format, args...)
	}

	for _, name := range e.propOrder {
		f, ok := shape.Field(name)
		if !ok {
			return fail("property %s does not exist", name)
		}
		if f.Kind != FieldScalar {
			return fail("property %s is a %s navigation, not a column", name, f.Kind)
		}
	}

	keyOrder := make(map[string]int, len(e.keys))
	for i, name := range e.keys {
		if _, dup := keyOrder[name]; dup {
			return fail("property %s is declared as key more than once", name)
		}
		f, ok := shape.Field(name)
		if !ok {
			return fail("key property %s does not exist", name)
		}
		if f.Kind != FieldScalar {
			return fail("key property %s is a %s navigation", name, f.Kind)
		}
		if p, ok := e.properties[name]; ok && p.ignored {
			return fail("key property %s is ignored", name)
		}
		keyOrder[name] = i
	}
	if len(keyOrder) == 0 {
		return fail("no key property declared")
	}

	m := &EntityMapping{
		name:     shape.Name,
		goType:   shape.GoType,
		table:    e.table,
		schema:   e.schema,
		byName:   make(map[string]int),
		byColumn: make(map[string]int),
		keys:     make([]int, len(keyOrder)),
	}
	if m.table == "" {
		m.table = mb.defaultTable(shape.Name)
	}
	if m.schema == "" {
		m.schema = mb.defaultSchema
	}
	if m.table == "" {
		return fail("table name is empty")
	}

	identity := ""
	for _, f := range shape.Fields {
		if f.Kind != FieldScalar {
			continue
		}
		pm := PropertyMapping{Name: f.Name, Column: f.Name, Type: f.Type, Index: f.Index}
		if f.Column != "" {
			pm.Column = f.Column
		}
		if cfg, ok := e.properties[f.Name]; ok {
			if cfg.ignored {
				continue
			}
			if cfg.column != "" {
				pm.Column = cfg.column
			}
			pm.Generation = cfg.generation
			pm.Sequence = cfg.sequence
		}
		order, isKey := keyOrder[f.Name]
		pm.IsKey = isKey

		switch pm.Generation {
		case core.GenerationSequence:
			if strings.TrimSpace(pm.Sequence) == "" {
				return fail("property %s has an empty sequence name", f.Name)
			}
		case core.GenerationIdentity:
			if identity != "" {
				return fail("properties %s and %s are both identity columns", identity, f.Name)
			}
			identity = f.Name
		}
		if pm.Generation.Generated() && !isKey {
			return fail("property %s is %s-generated but not a key", f.Name, pm.Generation)
		}
		if other, dup := m.byColumn[pm.Column]; dup {
			return fail("properties %s and %s both map to column %s", m.properties[other].Name, f.Name, pm.Column)
		}

		idx := len(m.properties)
		m.properties = append(m.properties, pm)
		m.byName[pm.Name] = idx
		m.byColumn[pm.Column] = idx
		if isKey {
			m.keys[order] = idx
		}
	}

	for _, n := range e.navs {
		rel, err := mb.relationship(shape, keyOrder, n)
		if err != nil {
			return nil, err
		}
		m.relationships = append(m.relationships, rel)
	}
	return m, nil
}

func (mb *ModelBuilder) relationship(shape *Shape, keys map[string]int, n *NavigationBuilder) (RelationshipConfig, error) {
	fail := func(format string, args ...any) (RelationshipConfig, error) {
		return RelationshipConfig{}, core.Configf(shape.Name, format, args...)
	}
	if n.selector == "" || strings.ContainsAny(n.selector, ".()[]") {
		return fail("navigation selector %q is not a direct property access", n.selector)
	}
	f, ok := shape.Field(n.selector)
	if !ok {
		return fail("navigation selector %q does not name a property", n.selector)
	}
	switch {
	case f.Kind == FieldScalar:
		return fail("navigation selector %q names a scalar property", n.selector)
	case n.collection && f.Kind != FieldCollection:
		return fail("HasMany(%q) requires a collection property, got %s", n.selector, f.Kind)
	case !n.collection && f.Kind != FieldReference:
		return fail("HasOne(%q) requires a reference property, got %s", n.selector, f.Kind)
	}

	target := f.Target
	var targetShape *Shape
	if f.TargetType != nil {
		targetShape, _ = ShapeFor(f.TargetType)
	} else {
		mb.mu.RLock()
		if te, ok := mb.byName[target]; ok {
			targetShape = te.shape
		}
		mb.mu.RUnlock()
	}

	if n.inverse != "" {
		if _, isKey := keys[n.inverse]; isKey && target == shape.Name {
			return fail("inverse navigation %s names key property %s", n.inverse, n.inverse)
		}
		if targetShape != nil {
			inv, ok := targetShape.Field(n.inverse)
			switch {
			case !ok:
				return fail("inverse navigation %s does not exist on %s", n.inverse, target)
			case inv.Kind == FieldScalar:
				return fail("inverse navigation %s on %s names a scalar property", n.inverse, target)
			}
		}
	}

	rel := RelationshipConfig{
		Navigation:  n.selector,
		IsReference: !n.collection,
		Inverse:     n.inverse,
		ForeignKey:  n.foreignKey,
	}
	if n.collection {
		rel.Principal, rel.PrincipalType = shape.Name, shape.GoType
		rel.Dependent, rel.DependentType = target, f.TargetType
		if n.foreignKey != "" && targetShape != nil {
			if fk, ok := targetShape.Field(n.foreignKey); !ok || fk.Kind != FieldScalar {
				return fail("foreign key %s does not exist on %s", n.foreignKey, target)
			}
		}
	} else {
		rel.Principal, rel.PrincipalType = target, f.TargetType
		rel.Dependent, rel.DependentType = shape.Name, shape.GoType
		if n.foreignKey != "" {
			if fk, ok := shape.Field(n.foreignKey); !ok || fk.Kind != FieldScalar {
				return fail("foreign key %s does not exist on %s", n.foreignKey, shape.Name)
			}
		}
	}
	return rel, nil
}
