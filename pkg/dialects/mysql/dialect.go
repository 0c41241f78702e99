package mysql

import (
	"github.com/leapstack-labs/leaporm/pkg/core"
	"github.com/leapstack-labs/leaporm/pkg/dialect"
)

func init() {
	dialect.Register(MySQL)
}

// Dialect is the MySQL dialect.
type Dialect struct {
	dialect.Base
}

var (
	_ dialect.Dialect             = Dialect{}
	_ dialect.ReturningParameters = Dialect{}
)

// MySQL is the shared MySQL dialect instance.
var MySQL = Dialect{Base: dialect.NewBase(Config)}

// BuildInsertReturningID appends a trailing SELECT; the driver must allow
// multi-statement batches. Identity keys read LAST_INSERT_ID().
func (d Dialect) BuildInsertReturningID(baseInsertSQL, _ string, keys []core.KeyColumn) string {
	return dialect.AppendSelectBack(d, baseInsertSQL, keys, "LAST_INSERT_ID()")
}

// ReturningParameters lists the positional parameters of the trailing SELECT.
func (d Dialect) ReturningParameters(keys []core.KeyColumn) []string {
	return dialect.SelectBackParameters(keys)
}
