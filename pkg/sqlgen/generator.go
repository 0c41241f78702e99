// Package sqlgen renders parameterized CRUD statements for an entity mapping
// in a dialect. Templates are rendered on first use and cached for the life
// of the Generator.
package sqlgen

import (
	"strings"
	"sync"

	"github.com/leapstack-labs/leaporm/pkg/core"
	"github.com/leapstack-labs/leaporm/pkg/dialect"
	"github.com/leapstack-labs/leaporm/pkg/mapping"
)

// Operation identifies a cached statement template.
type Operation int

// Operation constants.
const (
	OpSelect Operation = iota
	OpSelectByKey
	OpInsert
	OpUpdate
	OpDelete
	OpCount
	opCount
)

// String returns the operation name.
func (o Operation) String() string {
	switch o {
	case OpSelect:
		return "select"
	case OpSelectByKey:
		return "select-by-key"
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	case OpCount:
		return "count"
	default:
		return "unknown"
	}
}

// GeneratedSQL is a statement plus the property names bound to its
// placeholders. For positional dialects Params has one entry per placeholder
// in order, so a property may repeat.
type GeneratedSQL struct {
	SQL    string
	Params []string
}

// Generator renders statements for one (mapping, dialect) pair.
// It is immutable after construction and safe for concurrent use.
type Generator struct {
	m *mapping.EntityMapping
	d dialect.Dialect

	once  [opCount]sync.Once
	stmts [opCount]GeneratedSQL
	errs  [opCount]error
}

// New creates a generator. Nil arguments and sequence-generated keys on a
// dialect without sequences are configuration errors.
func New(m *mapping.EntityMapping, d dialect.Dialect) (*Generator, error) {
	if m == nil {
		return nil, core.Configf("", "sql generator requires an entity mapping")
	}
	if d == nil {
		return nil, core.Configf(m.Name(), "sql generator requires a dialect: %v", dialect.ErrDialectRequired)
	}
	if _, ok := d.(dialect.SequenceDialect); !ok {
		for _, k := range m.Keys() {
			if k.Generation == core.GenerationSequence {
				return nil, core.Configf(m.Name(), "dialect %s does not support sequences (property %s)", d.Name(), k.Name)
			}
		}
	}
	return &Generator{m: m, d: d}, nil
}

// Mapping returns the entity mapping.
func (g *Generator) Mapping() *mapping.EntityMapping { return g.m }

// Dialect returns the dialect.
func (g *Generator) Dialect() dialect.Dialect { return g.d }

func (g *Generator) get(op Operation, render func() (GeneratedSQL, error)) (GeneratedSQL, error) {
	g.once[op].Do(func() {
		g.stmts[op], g.errs[op] = render()
	})
	return g.stmts[op], g.errs[op]
}

// Table returns the quoted, schema-qualified table name.
func (g *Generator) Table() string {
	return dialect.QualifiedName(g.d, g.m.Schema(), g.m.Table())
}

// SelectList returns the projection for every property in mapping order:
// the quoted column, aliased to the property name when the two differ.
func (g *Generator) SelectList() []string {
	props := g.m.Properties()
	cols := make([]string, len(props))
	for i, p := range props {
		cols[i] = g.d.QuoteIdentifier(p.Column)
		if p.Column != p.Name {
			cols[i] += " AS " + g.d.FormatAlias(p.Name)
		}
	}
	return cols
}

// Select returns SELECT of every mapped column.
func (g *Generator) Select() GeneratedSQL {
	stmt, _ := g.get(OpSelect, func() (GeneratedSQL, error) {
		return GeneratedSQL{SQL: "SELECT " + strings.Join(g.SelectList(), ", ") + " FROM " + g.Table()}, nil
	})
	return stmt
}

// SelectByKey returns Select filtered on every key in declaration order.
func (g *Generator) SelectByKey() GeneratedSQL {
	stmt, _ := g.get(OpSelectByKey, func() (GeneratedSQL, error) {
		where, params := g.keyPredicate()
		return GeneratedSQL{SQL: g.Select().SQL + " WHERE " + where, Params: params}, nil
	})
	return stmt
}

// Insert returns the INSERT statement. Identity keys are left to the engine;
// every other property, sequence keys included, is bound. The dialect's
// returning clause is appended when any key is generated.
func (g *Generator) Insert() GeneratedSQL {
	stmt, _ := g.get(OpInsert, func() (GeneratedSQL, error) {
		var cols, values, params []string
		for _, p := range g.m.Properties() {
			if p.IsKey && p.Generation == core.GenerationIdentity {
				continue
			}
			cols = append(cols, g.d.QuoteIdentifier(p.Column))
			values = append(values, g.d.FormatParameter(p.Name))
			params = append(params, p.Name)
		}

		var sb strings.Builder
		sb.WriteString("INSERT INTO ")
		sb.WriteString(g.Table())
		if len(cols) == 0 {
			empty := g.d.Config().EmptyInsert
			if empty == "" {
				empty = "DEFAULT VALUES"
			}
			sb.WriteString(" " + empty)
		} else {
			sb.WriteString(" (")
			sb.WriteString(strings.Join(cols, ", "))
			sb.WriteString(") VALUES (")
			sb.WriteString(strings.Join(values, ", "))
			sb.WriteString(")")
		}
		sql := sb.String()

		if g.m.HasGeneratedKey() {
			keys := g.m.KeyColumns()
			sql = g.d.BuildInsertReturningID(sql, g.m.Table(), keys)
			if rp, ok := g.d.(dialect.ReturningParameters); ok {
				params = append(params, rp.ReturningParameters(keys)...)
			}
		}
		return GeneratedSQL{SQL: sql, Params: params}, nil
	})
	return stmt
}

// Update returns UPDATE of every non-key property filtered on the keys.
// A mapping with no non-key property is a configuration error.
func (g *Generator) Update() (GeneratedSQL, error) {
	return g.get(OpUpdate, func() (GeneratedSQL, error) {
		nonKeys := g.m.NonKeys()
		if len(nonKeys) == 0 {
			return GeneratedSQL{}, core.Configf(g.m.Name(), "cannot generate UPDATE: no non-key properties to set")
		}
		sets := make([]string, len(nonKeys))
		params := make([]string, 0, len(nonKeys)+len(g.m.Keys()))
		for i, p := range nonKeys {
			sets[i] = g.d.QuoteIdentifier(p.Column) + " = " + g.d.FormatParameter(p.Name)
			params = append(params, p.Name)
		}
		where, keyParams := g.keyPredicate()
		return GeneratedSQL{
			SQL:    "UPDATE " + g.Table() + " SET " + strings.Join(sets, ", ") + " WHERE " + where,
			Params: append(params, keyParams...),
		}, nil
	})
}

// Delete returns DELETE filtered on every key.
func (g *Generator) Delete() GeneratedSQL {
	stmt, _ := g.get(OpDelete, func() (GeneratedSQL, error) {
		where, params := g.keyPredicate()
		return GeneratedSQL{SQL: "DELETE FROM " + g.Table() + " WHERE " + where, Params: params}, nil
	})
	return stmt
}

// Count returns SELECT COUNT(*) over the table.
func (g *Generator) Count() GeneratedSQL {
	stmt, _ := g.get(OpCount, func() (GeneratedSQL, error) {
		return GeneratedSQL{SQL: "SELECT COUNT(*) FROM " + g.Table()}, nil
	})
	return stmt
}

// NextSequenceValue returns the statement fetching the next value for a
// sequence-generated property.
func (g *Generator) NextSequenceValue(property string) (GeneratedSQL, error) {
	p, ok := g.m.Property(property)
	if !ok {
		return GeneratedSQL{}, core.Configf(g.m.Name(), "property %s does not exist", property)
	}
	if p.Generation != core.GenerationSequence {
		return GeneratedSQL{}, core.Configf(g.m.Name(), "property %s is not sequence-generated", property)
	}
	sd, ok := g.d.(dialect.SequenceDialect)
	if !ok {
		return GeneratedSQL{}, core.Configf(g.m.Name(), "dialect %s does not support sequences (property %s)", g.d.Name(), property)
	}
	return GeneratedSQL{SQL: sd.NextSequenceValue(p.Sequence)}, nil
}

// keyPredicate renders "k1 = @K1 AND k2 = @K2" in key declaration order.
func (g *Generator) keyPredicate() (string, []string) {
	keys := g.m.Keys()
	parts := make([]string, len(keys))
	params := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = g.d.QuoteIdentifier(k.Column) + " = " + g.d.FormatParameter(k.Name)
		params[i] = k.Name
	}
	return strings.Join(parts, " AND "), params
}
