package duckdb

import (
	"strings"

	"github.com/leapstack-labs/leaporm/pkg/core"
	"github.com/leapstack-labs/leaporm/pkg/dialect"
)

func init() {
	dialect.Register(DuckDB)
}

// Dialect is the DuckDB dialect.
type Dialect struct {
	dialect.Base
}

var (
	_ dialect.Dialect         = Dialect{}
	_ dialect.SequenceDialect = Dialect{}
)

// DuckDB is the shared DuckDB dialect instance.
var DuckDB = Dialect{Base: dialect.NewBase(Config)}

// BuildInsertReturningID appends RETURNING with every key column.
func (d Dialect) BuildInsertReturningID(baseInsertSQL, _ string, keys []core.KeyColumn) string {
	return dialect.AppendReturning(d, baseInsertSQL, keys)
}

// NextSequenceValue returns the nextval() query for sequence.
func (d Dialect) NextSequenceValue(sequence string) string {
	return "SELECT nextval('" + strings.ReplaceAll(sequence, "'", "''") + "')"
}
