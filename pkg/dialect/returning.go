package dialect

import (
	"strings"

	"github.com/leapstack-labs/leaporm/pkg/core"
)

// AppendReturning appends a RETURNING list naming every key column in order.
// It serves identity and sequence keys alike: the engine echoes the stored values.
func AppendReturning(d Dialect, baseInsertSQL string, keys []core.KeyColumn) string {
	if len(keys) == 0 {
		return baseInsertSQL
	}
	cols := make([]string, len(keys))
	for i, k := range keys {
		cols[i] = d.QuoteIdentifier(k.Column)
	}
	return baseInsertSQL + " RETURNING " + strings.Join(cols, ", ")
}

// AppendSelectBack appends a trailing SELECT statement with one expression per
// key. identityExpr renders the engine-assigned value; every other key echoes
// its bound parameter.
func AppendSelectBack(d Dialect, baseInsertSQL string, keys []core.KeyColumn, identityExpr string) string {
	if len(keys) == 0 {
		return baseInsertSQL
	}
	exprs := make([]string, len(keys))
	for i, k := range keys {
		value := d.FormatParameter(k.Property)
		if k.Generation == core.GenerationIdentity {
			value = identityExpr
		}
		exprs[i] = value + " AS " + d.QuoteIdentifier(k.Column)
	}
	return baseInsertSQL + "; SELECT " + strings.Join(exprs, ", ")
}

// SelectBackParameters lists the parameters bound by AppendSelectBack, in order.
func SelectBackParameters(keys []core.KeyColumn) []string {
	var names []string
	for _, k := range keys {
		if k.Generation != core.GenerationIdentity {
			names = append(names, k.Property)
		}
	}
	return names
}
