// Package sqlite provides an SQLite database adapter on the pure Go
// modernc.org/sqlite driver.
package sqlite

import (
	"database/sql"
	"net/url"
	"sort"
	"strings"

	"github.com/leapstack-labs/leaporm/pkg/adapter"
	litedialect "github.com/leapstack-labs/leaporm/pkg/dialects/sqlite"

	_ "modernc.org/sqlite" // sqlite driver
)

// Params holds SQLite specific configuration.
type Params struct {
	// Pragmas are applied to every new connection, e.g. journal_mode: wal.
	Pragmas map[string]string `mapstructure:"pragmas"`
}

// Adapter implements the adapter.Adapter interface for SQLite.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new SQLite adapter instance.
func New() *Adapter {
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{
			AdapterName: "sqlite",
			DriverName:  "sqlite",
			SQLDialect:  litedialect.SQLite,
		},
	}
}

// OpenDB opens the database file named by cfg.Path.
// Use ":memory:" (the default) for an in-memory database; such a pool is
// pinned to one connection since each connection would otherwise see its
// own empty database.
func (a *Adapter) OpenDB(cfg adapter.Config) (*sql.DB, error) {
	dsn, err := buildSQLiteDSN(cfg)
	if err != nil {
		return nil, err
	}
	db, err := a.OpenDSN(dsn)
	if err != nil {
		return nil, err
	}
	if isMemory(cfg.Path) {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

func isMemory(path string) bool {
	return path == "" || path == ":memory:"
}

// buildSQLiteDSN appends _pragma parameters to the file path.
// Foreign key enforcement is on unless overridden.
func buildSQLiteDSN(cfg adapter.Config) (string, error) {
	var params Params
	if err := adapter.DecodeParams(cfg.Params, &params); err != nil {
		return "", err
	}

	path := cfg.Path
	if isMemory(path) {
		path = ":memory:"
	}

	pragmas := map[string]string{"foreign_keys": "1"}
	for k, v := range params.Pragmas {
		pragmas[strings.ToLower(k)] = v
	}
	names := make([]string, 0, len(pragmas))
	for name := range pragmas {
		names = append(names, name)
	}
	sort.Strings(names)

	q := make([]string, 0, len(names))
	for _, name := range names {
		q = append(q, "_pragma="+url.QueryEscape(name+"("+pragmas[name]+")"))
	}
	return "file:" + path + "?" + strings.Join(q, "&"), nil
}
