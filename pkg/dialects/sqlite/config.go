// Package sqlite provides the SQLite dialect definition.
// This package is pure Go with no database driver dependencies.
package sqlite

import "github.com/leapstack-labs/leaporm/pkg/core"

// Config is the SQLite dialect configuration.
// SQLite uses type affinity, so the type table names storage classes.
var Config = &core.DialectConfig{
	Name:          "sqlite",
	DefaultSchema: "main",
	Placeholder:   core.PlaceholderAtNamed,
	Identifiers: core.IdentifierConfig{
		Quote:         `"`,
		QuoteEnd:      `"`,
		Escape:        `""`,
		Normalization: core.NormCaseInsensitive,
	},
	BooleanTrue:       "1",
	BooleanFalse:      "0",
	SupportsReturning: true,
	Types: map[core.HostKind]core.DbType{
		core.KindBool:    "INTEGER",
		core.KindInt8:    "INTEGER",
		core.KindInt16:   "INTEGER",
		core.KindInt32:   "INTEGER",
		core.KindInt64:   "INTEGER",
		core.KindUint8:   "INTEGER",
		core.KindUint16:  "INTEGER",
		core.KindUint32:  "INTEGER",
		core.KindUint64:  "INTEGER",
		core.KindFloat32: "REAL",
		core.KindFloat64: "REAL",
		core.KindString:  "TEXT",
		core.KindBytes:   "BLOB",
		core.KindTime:    "TEXT",
		core.KindUUID:    "TEXT",
	},
}
