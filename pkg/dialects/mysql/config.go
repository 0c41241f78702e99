// Package mysql provides the MySQL dialect definition.
// This package is pure Go with no database driver dependencies.
package mysql

import "github.com/leapstack-labs/leaporm/pkg/core"

// Config is the MySQL dialect configuration.
// Parameters are positional, so a value referenced twice is bound twice.
var Config = &core.DialectConfig{
	Name:        "mysql",
	Placeholder: core.PlaceholderQuestion,
	Identifiers: core.IdentifierConfig{
		Quote:         "`",
		QuoteEnd:      "`",
		Escape:        "``",
		Normalization: core.NormCaseSensitive,
	},
	BooleanTrue:  "TRUE",
	BooleanFalse: "FALSE",
	EmptyInsert:  "() VALUES ()",
	Types: map[core.HostKind]core.DbType{
		core.KindBool:    "tinyint(1)",
		core.KindInt8:    "tinyint",
		core.KindInt16:   "smallint",
		core.KindInt32:   "int",
		core.KindInt64:   "bigint",
		core.KindUint8:   "tinyint unsigned",
		core.KindUint16:  "smallint unsigned",
		core.KindUint32:  "int unsigned",
		core.KindUint64:  "bigint unsigned",
		core.KindFloat32: "float",
		core.KindFloat64: "double",
		core.KindString:  "longtext",
		core.KindBytes:   "longblob",
		core.KindTime:    "datetime(6)",
		core.KindUUID:    "char(36)",
	},
}
