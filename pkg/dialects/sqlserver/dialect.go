package sqlserver

import (
	"strings"

	"github.com/leapstack-labs/leaporm/pkg/core"
	"github.com/leapstack-labs/leaporm/pkg/dialect"
)

func init() {
	dialect.Register(SQLServer)
}

// scopeIdentity reads the identity value produced by the preceding insert
// in the same batch.
const scopeIdentity = "CAST(SCOPE_IDENTITY() AS bigint)"

// Dialect is the SQL Server dialect.
type Dialect struct {
	dialect.Base
}

var (
	_ dialect.Dialect             = Dialect{}
	_ dialect.SequenceDialect     = Dialect{}
	_ dialect.ReturningParameters = Dialect{}
)

// SQLServer is the shared SQL Server dialect instance.
var SQLServer = Dialect{Base: dialect.NewBase(Config)}

// BuildInsertReturningID appends a trailing SELECT in the same batch.
// Identity keys read SCOPE_IDENTITY(); sequence and caller-assigned keys
// echo their bound parameters.
func (d Dialect) BuildInsertReturningID(baseInsertSQL, _ string, keys []core.KeyColumn) string {
	return dialect.AppendSelectBack(d, baseInsertSQL, keys, scopeIdentity)
}

// ReturningParameters lists the parameters referenced by the trailing SELECT.
func (d Dialect) ReturningParameters(keys []core.KeyColumn) []string {
	return dialect.SelectBackParameters(keys)
}

// NextSequenceValue returns NEXT VALUE FOR with each name part quoted.
func (d Dialect) NextSequenceValue(sequence string) string {
	parts := strings.Split(sequence, ".")
	for i, p := range parts {
		parts[i] = d.QuoteIdentifier(p)
	}
	return "SELECT NEXT VALUE FOR " + strings.Join(parts, ".")
}
