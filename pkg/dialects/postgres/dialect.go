package postgres

import (
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/leapstack-labs/leaporm/pkg/core"
	"github.com/leapstack-labs/leaporm/pkg/dialect"
)

func init() {
	dialect.Register(Postgres)
}

// Dialect is the PostgreSQL dialect.
type Dialect struct {
	dialect.Base
}

var (
	_ dialect.Dialect         = Dialect{}
	_ dialect.SequenceDialect = Dialect{}
)

// Postgres is the shared PostgreSQL dialect instance.
var Postgres = Dialect{Base: dialect.NewBase(Config)}

// BuildInsertReturningID appends RETURNING with every key column.
func (d Dialect) BuildInsertReturningID(baseInsertSQL, _ string, keys []core.KeyColumn) string {
	return dialect.AppendReturning(d, baseInsertSQL, keys)
}

// NextSequenceValue returns the nextval() query for sequence.
func (d Dialect) NextSequenceValue(sequence string) string {
	return "SELECT nextval('" + strings.ReplaceAll(sequence, "'", "''") + "')"
}

// BindArgs passes every value through a single pgx.NamedArgs, which pgx
// rewrites into positional $n parameters.
func (d Dialect) BindArgs(names []string, values map[string]any) []any {
	args := make(pgx.NamedArgs, len(names))
	for _, name := range names {
		args[name] = values[name]
	}
	return []any{args}
}
