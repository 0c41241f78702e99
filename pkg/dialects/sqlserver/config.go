// Package sqlserver provides the Microsoft SQL Server dialect definition.
// This package is pure Go with no database driver dependencies.
package sqlserver

import "github.com/leapstack-labs/leaporm/pkg/core"

// Config is the SQL Server dialect configuration.
var Config = &core.DialectConfig{
	Name:          "sqlserver",
	DefaultSchema: "dbo",
	Placeholder:   core.PlaceholderAtNamed,
	Identifiers: core.IdentifierConfig{
		Quote:         "[",
		QuoteEnd:      "]",
		Escape:        "]]",
		Normalization: core.NormCaseInsensitive,
	},
	BooleanTrue:       "1",
	BooleanFalse:      "0",
	SupportsSequences: true,
	Limit:             core.LimitTop,
	Types: map[core.HostKind]core.DbType{
		core.KindBool:    "bit",
		core.KindInt8:    "smallint", // tinyint is unsigned
		core.KindInt16:   "smallint",
		core.KindInt32:   "int",
		core.KindInt64:   "bigint",
		core.KindUint8:   "tinyint",
		core.KindUint16:  "int",
		core.KindUint32:  "bigint",
		core.KindUint64:  "decimal(20,0)",
		core.KindFloat32: "real",
		core.KindFloat64: "float",
		core.KindString:  "nvarchar(max)",
		core.KindBytes:   "varbinary(max)",
		core.KindTime:    "datetime2",
		core.KindUUID:    "uniqueidentifier",
	},
}
