package orm

import (
	"context"

	"github.com/leapstack-labs/leaporm/pkg/expr"
	"github.com/leapstack-labs/leaporm/pkg/materialize"
	"github.com/leapstack-labs/leaporm/pkg/query"
)

// Query is a filtered SELECT bound to a context.
type Query[T any] struct {
	c *Context
	b *query.Builder[T]
}

// From starts a query for T on c.
func From[T any](c *Context) *Query[T] {
	return &Query[T]{c: c, b: query.Select[T]()}
}

// Where adds a filter; repeated calls combine with AND.
func (q *Query[T]) Where(filter expr.Expr) *Query[T] {
	q.b.Where(filter)
	return q
}

// OrderBy appends a sort key.
func (q *Query[T]) OrderBy(property string, desc bool) *Query[T] {
	q.b.OrderBy(property, desc)
	return q
}

// Limit caps the number of rows returned.
func (q *Query[T]) Limit(n int) *Query[T] {
	q.b.Limit(n)
	return q
}

// All runs the query and materializes every row.
func (q *Query[T]) All(ctx context.Context) ([]T, error) {
	m, err := MappingFor[T](q.c)
	if err != nil {
		return nil, err
	}
	stmt, err := q.b.From(m, q.c.d).Build()
	if err != nil {
		return nil, err
	}
	exec, err := q.c.executor(ctx)
	if err != nil {
		return nil, err
	}
	q.c.logger.Debug("query", "entity", m.Name(), "sql", stmt.SQL)
	rows, err := exec.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return materialize.ScanAll[T](scannerFor(m), rows)
}

// First returns the first row, or ErrNotFound.
func (q *Query[T]) First(ctx context.Context) (*T, error) {
	items, err := q.Limit(1).All(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return &items[0], nil
}

// Where returns every T matching filter.
func Where[T any](ctx context.Context, c *Context, filter expr.Expr) ([]T, error) {
	return From[T](c).Where(filter).All(ctx)
}

// Count returns the number of T rows matching filter; a nil filter counts
// every row.
func Count[T any](ctx context.Context, c *Context, filter expr.Expr) (int64, error) {
	g, err := generatorFor[T](c)
	if err != nil {
		return 0, err
	}
	m := g.Mapping()
	sqlText := g.Count().SQL
	var args []any
	if filter != nil {
		pred, err := query.Translate(m, c.d, filter)
		if err != nil {
			return 0, err
		}
		sqlText += " WHERE " + pred.SQL
		args = pred.Args(c.d)
	}

	exec, err := c.executor(ctx)
	if err != nil {
		return 0, err
	}
	c.logger.Debug("count", "entity", m.Name(), "sql", sqlText)
	rows, err := exec.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return 0, err
	}
	defer func() { _ = rows.Close() }()

	var n int64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, err
		}
	}
	return n, rows.Err()
}
