// Package adapter binds database backends to the ORM.
//
// An adapter pairs a dialect with the knowledge of how to open a pool for
// its driver. Concrete adapters live in pkg/adapters/ subdirectories and
// register themselves on import:
//
//	import _ "github.com/leapstack-labs/leaporm/pkg/adapters/postgres"
package adapter

import (
	"database/sql"

	"github.com/leapstack-labs/leaporm/pkg/core"
	"github.com/leapstack-labs/leaporm/pkg/dialect"
)

// Config is an alias for core.AdapterConfig.
type Config = core.AdapterConfig

// Adapter defines the interface that all database adapters must implement.
type Adapter interface {
	// Name is the registry key, matching the target type in configuration.
	Name() string

	// Dialect returns the SQL dialect statements are generated for.
	Dialect() dialect.Dialect

	// OpenDB opens a pool for cfg. Opening is lazy for most drivers; no
	// connection is established until first use.
	OpenDB(cfg Config) (*sql.DB, error)
}
