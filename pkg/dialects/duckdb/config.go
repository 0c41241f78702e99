// Package duckdb provides the DuckDB dialect definition.
// This package is pure Go with no database driver dependencies.
package duckdb

import "github.com/leapstack-labs/leaporm/pkg/core"

// Config is the DuckDB dialect configuration.
var Config = &core.DialectConfig{
	Name:          "duckdb",
	DefaultSchema: "main",
	Placeholder:   core.PlaceholderDollarNamed,
	Identifiers: core.IdentifierConfig{
		Quote:         `"`,
		QuoteEnd:      `"`,
		Escape:        `""`,
		Normalization: core.NormCaseInsensitive,
	},
	BooleanTrue:       "true",
	BooleanFalse:      "false",
	SupportsReturning: true,
	SupportsSequences: true,
	Types: map[core.HostKind]core.DbType{
		core.KindBool:    "BOOLEAN",
		core.KindInt8:    "TINYINT",
		core.KindInt16:   "SMALLINT",
		core.KindInt32:   "INTEGER",
		core.KindInt64:   "BIGINT",
		core.KindUint8:   "UTINYINT",
		core.KindUint16:  "USMALLINT",
		core.KindUint32:  "UINTEGER",
		core.KindUint64:  "UBIGINT",
		core.KindFloat32: "FLOAT",
		core.KindFloat64: "DOUBLE",
		core.KindString:  "VARCHAR",
		core.KindBytes:   "BLOB",
		core.KindTime:    "TIMESTAMPTZ",
		core.KindUUID:    "UUID",
	},
}
