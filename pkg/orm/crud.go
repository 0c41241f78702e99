package orm

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"sync"

	"github.com/leapstack-labs/leaporm/pkg/core"
	"github.com/leapstack-labs/leaporm/pkg/mapping"
	"github.com/leapstack-labs/leaporm/pkg/materialize"
	"github.com/leapstack-labs/leaporm/pkg/sqlgen"
)

// scanners holds one materializer per mapping so scan plans are shared.
var scanners sync.Map // *mapping.EntityMapping -> *materialize.Scanner

func scannerFor(m *mapping.EntityMapping) *materialize.Scanner {
	if s, ok := scanners.Load(m); ok {
		return s.(*materialize.Scanner)
	}
	s, _ := scanners.LoadOrStore(m, materialize.NewScanner(materialize.ForMapping(m)))
	return s.(*materialize.Scanner)
}

// Insert stores entity. Sequence-generated keys are fetched first and
// written to the entity; generated keys returned by the insert are written
// back as well.
func Insert[T any](ctx context.Context, c *Context, entity *T) error {
	g, err := generatorFor[T](c)
	if err != nil {
		return err
	}
	m := g.Mapping()
	v, err := entityValue(m, entity)
	if err != nil {
		return err
	}

	exec, err := c.executor(ctx)
	if err != nil {
		return err
	}

	for _, k := range m.Keys() {
		if k.Generation != core.GenerationSequence {
			continue
		}
		if err := c.fetchSequence(ctx, exec, g, v, k); err != nil {
			return err
		}
	}

	stmt := g.Insert()
	args, err := c.bind(v, m, stmt)
	if err != nil {
		return err
	}
	c.logger.Debug("insert", "entity", m.Name(), "sql", stmt.SQL)

	if !m.HasGeneratedKey() {
		_, err := exec.ExecContext(ctx, stmt.SQL, args...)
		return err
	}

	rows, err := exec.QueryContext(ctx, stmt.SQL, args...)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	if err := firstResultSetWithColumns(rows); err != nil {
		return err
	}
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return fmt.Errorf("orm: insert into %s returned no generated keys", m.Table())
	}
	dst, err := keyTargets(v, m)
	if err != nil {
		return err
	}
	if err := rows.Scan(dst...); err != nil {
		return err
	}
	return rows.Err()
}

// firstResultSetWithColumns skips the empty result sets that multi-statement
// drivers report for the INSERT ahead of the trailing SELECT.
func firstResultSetWithColumns(rows *sql.Rows) error {
	for {
		cols, err := rows.Columns()
		if err != nil {
			return err
		}
		if len(cols) > 0 || !rows.NextResultSet() {
			return nil
		}
	}
}

func (c *Context) fetchSequence(ctx context.Context, exec executor, g *sqlgen.Generator, v reflect.Value, k mapping.PropertyMapping) error {
	seq, err := g.NextSequenceValue(k.Name)
	if err != nil {
		return err
	}
	c.logger.Debug("next sequence value", "entity", g.Mapping().Name(), "sequence", k.Sequence)

	f, err := field(v, g.Mapping(), k, true)
	if err != nil {
		return err
	}
	rows, err := exec.QueryContext(ctx, seq.SQL)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return fmt.Errorf("orm: sequence %s returned no value", k.Sequence)
	}
	if err := rows.Scan(f.Addr().Interface()); err != nil {
		return err
	}
	return rows.Err()
}

// Update writes every non-key property of entity, matched on its keys.
// ErrNotFound is returned when no row matches.
func Update[T any](ctx context.Context, c *Context, entity *T) error {
	g, err := generatorFor[T](c)
	if err != nil {
		return err
	}
	stmt, err := g.Update()
	if err != nil {
		return err
	}
	return c.execByKey(ctx, g, entity, stmt)
}

// Delete removes the row matching entity's keys.
// ErrNotFound is returned when no row matches.
func Delete[T any](ctx context.Context, c *Context, entity *T) error {
	g, err := generatorFor[T](c)
	if err != nil {
		return err
	}
	return c.execByKey(ctx, g, entity, g.Delete())
}

func (c *Context) execByKey(ctx context.Context, g *sqlgen.Generator, entity any, stmt sqlgen.GeneratedSQL) error {
	m := g.Mapping()
	v := reflect.ValueOf(entity)
	if v.IsNil() {
		return fmt.Errorf("orm: nil %s entity", m.Name())
	}
	v = v.Elem()
	if v.Type() != m.Type() {
		return core.Configf(m.Name(), "mapping is bound to %v, not %v", m.Type(), v.Type())
	}

	args, err := c.bind(v, m, stmt)
	if err != nil {
		return err
	}
	exec, err := c.executor(ctx)
	if err != nil {
		return err
	}
	c.logger.Debug("exec", "entity", m.Name(), "sql", stmt.SQL)
	res, err := exec.ExecContext(ctx, stmt.SQL, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Find loads the entity whose keys equal keyValues, given in key
// declaration order. ErrNotFound is returned when no row matches.
func Find[T any](ctx context.Context, c *Context, keyValues ...any) (*T, error) {
	g, err := generatorFor[T](c)
	if err != nil {
		return nil, err
	}
	m := g.Mapping()
	keys := m.Keys()
	if len(keyValues) != len(keys) {
		return nil, fmt.Errorf("%w: %s has %d keys, got %d values", ErrKeyValues, m.Name(), len(keys), len(keyValues))
	}
	vals := make(map[string]any, len(keys))
	for i, k := range keys {
		vals[k.Name] = keyValues[i]
	}

	stmt := g.SelectByKey()
	exec, err := c.executor(ctx)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("find", "entity", m.Name(), "sql", stmt.SQL)
	rows, err := exec.QueryContext(ctx, stmt.SQL, c.d.BindArgs(stmt.Params, vals)...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	item, found, err := materialize.ScanOne[T](scannerFor(m), rows)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (c *Context) bind(v reflect.Value, m *mapping.EntityMapping, stmt sqlgen.GeneratedSQL) ([]any, error) {
	vals, err := values(v, m, stmt.Params)
	if err != nil {
		return nil, err
	}
	return c.d.BindArgs(stmt.Params, vals), nil
}
