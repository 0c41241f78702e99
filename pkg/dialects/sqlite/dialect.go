package sqlite

import (
	"github.com/leapstack-labs/leaporm/pkg/core"
	"github.com/leapstack-labs/leaporm/pkg/dialect"
)

func init() {
	dialect.Register(SQLite)
}

// Dialect is the SQLite dialect (3.35+ for RETURNING).
type Dialect struct {
	dialect.Base
}

var _ dialect.Dialect = Dialect{}

// SQLite is the shared SQLite dialect instance.
var SQLite = Dialect{Base: dialect.NewBase(Config)}

// BuildInsertReturningID appends RETURNING with every key column.
func (d Dialect) BuildInsertReturningID(baseInsertSQL, _ string, keys []core.KeyColumn) string {
	return dialect.AppendReturning(d, baseInsertSQL, keys)
}
