// Package mysql provides a MySQL database adapter.
package mysql

import (
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/leapstack-labs/leaporm/pkg/adapter"
	mydialect "github.com/leapstack-labs/leaporm/pkg/dialects/mysql"
)

// Params holds MySQL specific configuration.
type Params struct {
	Collation string        `mapstructure:"collation"`
	Timeout   time.Duration `mapstructure:"timeout"`
	TLS       string        `mapstructure:"tls"`
}

// Adapter implements the adapter.Adapter interface for MySQL.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new MySQL adapter instance.
func New() *Adapter {
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{
			AdapterName: "mysql",
			DriverName:  "mysql",
			SQLDialect:  mydialect.MySQL,
		},
	}
}

// OpenDB opens a go-sql-driver/mysql pool.
func (a *Adapter) OpenDB(cfg adapter.Config) (*sql.DB, error) {
	myCfg, err := buildMySQLConfig(cfg)
	if err != nil {
		return nil, err
	}
	connector, err := gomysql.NewConnector(myCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure mysql connector: %w", err)
	}
	return sql.OpenDB(connector), nil
}

// buildMySQLConfig maps the adapter config onto a driver config.
// Inserts read generated keys back with a trailing SELECT, so multi
// statements are always enabled. Affected-row counts report matched rows so
// an UPDATE that changes nothing is not mistaken for a missing entity.
func buildMySQLConfig(cfg adapter.Config) (*gomysql.Config, error) {
	var params Params
	if err := adapter.DecodeParams(cfg.Params, &params); err != nil {
		return nil, err
	}

	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 3306
	}

	c := gomysql.NewConfig()
	c.User = cfg.Username
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	c.DBName = cfg.Database
	c.ParseTime = true
	c.MultiStatements = true
	c.ClientFoundRows = true
	if params.Collation != "" {
		c.Collation = params.Collation
	}
	if params.Timeout > 0 {
		c.Timeout = params.Timeout
	}
	if params.TLS != "" {
		c.TLSConfig = params.TLS
	}
	return c, nil
}
