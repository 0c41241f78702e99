// Package duckdb provides a DuckDB database adapter.
package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/leapstack-labs/leaporm/pkg/adapter"
	ddialect "github.com/leapstack-labs/leaporm/pkg/dialects/duckdb"
	"github.com/marcboeker/go-duckdb"
)

// Adapter implements the adapter.Adapter interface for DuckDB.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new DuckDB adapter instance.
func New() *Adapter {
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{
			AdapterName: "duckdb",
			DriverName:  "duckdb",
			SQLDialect:  ddialect.DuckDB,
		},
	}
}

// OpenDB opens a DuckDB database. Use ":memory:" (or an empty path) for an
// in-memory database. Configured extensions and settings are applied to
// each new connection.
func (a *Adapter) OpenDB(cfg adapter.Config) (*sql.DB, error) {
	params, err := parseParams(cfg.Params)
	if err != nil {
		return nil, err
	}

	path := cfg.Path
	if path == ":memory:" {
		path = ""
	}

	stmts := params.bootStatements()
	connector, err := duckdb.NewConnector(path, func(execer driver.ExecerContext) error {
		for _, stmt := range stmts {
			if _, err := execer.ExecContext(context.Background(), stmt, nil); err != nil {
				return fmt.Errorf("failed to run %q: %w", stmt, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb connection: %w", err)
	}
	return sql.OpenDB(connector), nil
}
