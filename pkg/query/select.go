package query

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leaporm/pkg/core"
	"github.com/leapstack-labs/leaporm/pkg/dialect"
	"github.com/leapstack-labs/leaporm/pkg/expr"
	"github.com/leapstack-labs/leaporm/pkg/mapping"
)

// Statement is a rendered query with driver arguments in placeholder order.
type Statement struct {
	SQL  string
	Args []any
}

type orderTerm struct {
	property string
	desc     bool
}

// Builder assembles a SELECT for entity type T. Errors are deferred to Build.
type Builder[T any] struct {
	m      *mapping.EntityMapping
	d      dialect.Dialect
	props  []string
	filter expr.Expr
	orders []orderTerm
	limit  int
}

// Select starts a query for T.
func Select[T any]() *Builder[T] {
	return &Builder[T]{}
}

// From sets the mapping and dialect.
func (b *Builder[T]) From(m *mapping.EntityMapping, d dialect.Dialect) *Builder[T] {
	b.m, b.d = m, d
	return b
}

// Project restricts the selected properties. Without it every property is selected.
func (b *Builder[T]) Project(props ...string) *Builder[T] {
	b.props = append(b.props, props...)
	return b
}

// Where sets the filter; repeated calls combine with AND.
func (b *Builder[T]) Where(filter expr.Expr) *Builder[T] {
	if b.filter == nil {
		b.filter = filter
	} else {
		b.filter = expr.And(b.filter, filter)
	}
	return b
}

// OrderBy appends a sort key.
func (b *Builder[T]) OrderBy(property string, desc bool) *Builder[T] {
	b.orders = append(b.orders, orderTerm{property: property, desc: desc})
	return b
}

// Limit caps the number of rows; zero means no limit.
func (b *Builder[T]) Limit(n int) *Builder[T] {
	b.limit = n
	return b
}

// Build renders the statement.
func (b *Builder[T]) Build() (Statement, error) {
	if b.m == nil {
		return Statement{}, core.Configf(reflect.TypeFor[T]().Name(), "query has no entity mapping")
	}
	if b.d == nil {
		return Statement{}, core.Configf(b.m.Name(), "query has no dialect: %v", dialect.ErrDialectRequired)
	}
	if t := b.m.Type(); t != nil && t != reflect.TypeFor[T]() {
		return Statement{}, core.Configf(b.m.Name(), "mapping is for %s, query is for %s", t, reflect.TypeFor[T]())
	}
	if b.limit < 0 {
		return Statement{}, core.Configf(b.m.Name(), "negative limit %d", b.limit)
	}

	cols, err := Project(b.m, b.d, b.props...)
	if err != nil {
		return Statement{}, err
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	if b.limit > 0 && b.d.Config().Limit == core.LimitTop {
		sb.WriteString("TOP (" + strconv.Itoa(b.limit) + ") ")
	}
	sb.WriteString(strings.Join(cols, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(dialect.QualifiedName(b.d, b.m.Schema(), b.m.Table()))

	var args []any
	if b.filter != nil {
		pred, err := Translate(b.m, b.d, b.filter)
		if err != nil {
			return Statement{}, err
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(pred.SQL)
		args = pred.Args(b.d)
	}

	if len(b.orders) > 0 {
		terms := make([]string, len(b.orders))
		for i, o := range b.orders {
			col, err := resolveColumn(b.m, nil, o.property)
			if err != nil {
				return Statement{}, err
			}
			terms[i] = b.d.FormatColumn(col)
			if o.desc {
				terms[i] += " DESC"
			}
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(terms, ", "))
	}

	if b.limit > 0 && b.d.Config().Limit == core.LimitClause {
		sb.WriteString(" LIMIT " + strconv.Itoa(b.limit))
	}
	return Statement{SQL: sb.String(), Args: args}, nil
}
