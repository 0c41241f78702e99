// Package postgres provides the PostgreSQL SQL dialect definition.
package postgres

import "github.com/leapstack-labs/leaporm/pkg/core"

// Config is the PostgreSQL dialect configuration.
// Parameters use the @name form understood by pgx.NamedArgs.
var Config = &core.DialectConfig{
	Name:          "postgres",
	DefaultSchema: "public",
	Placeholder:   core.PlaceholderAtNamed,
	Identifiers: core.IdentifierConfig{
		Quote:         `"`,
		QuoteEnd:      `"`,
		Escape:        `""`,
		Normalization: core.NormLowercase, // Postgres normalizes unquoted to lowercase
	},
	BooleanTrue:       "TRUE",
	BooleanFalse:      "FALSE",
	SupportsReturning: true,
	SupportsSequences: true,
	Types: map[core.HostKind]core.DbType{
		core.KindBool:    "boolean",
		core.KindInt8:    "smallint", // no single-byte integer
		core.KindInt16:   "smallint",
		core.KindInt32:   "integer",
		core.KindInt64:   "bigint",
		core.KindUint8:   "smallint",
		core.KindUint16:  "integer",
		core.KindUint32:  "bigint",
		core.KindUint64:  "numeric(20,0)",
		core.KindFloat32: "real",
		core.KindFloat64: "double precision",
		core.KindString:  "text",
		core.KindBytes:   "bytea",
		core.KindTime:    "timestamptz",
		core.KindUUID:    "uuid",
	},
}
