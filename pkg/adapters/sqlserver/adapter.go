// Package sqlserver provides a Microsoft SQL Server database adapter.
package sqlserver

import (
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"

	mssql "github.com/denisenkom/go-mssqldb"
	"github.com/leapstack-labs/leaporm/pkg/adapter"
	msdialect "github.com/leapstack-labs/leaporm/pkg/dialects/sqlserver"
)

// Params holds SQL Server specific configuration.
// Parsed from adapter.Config.Params.
type Params struct {
	// Encrypt is "true", "false" or "disable".
	Encrypt string `mapstructure:"encrypt"`

	// TrustServerCertificate skips certificate validation.
	TrustServerCertificate bool `mapstructure:"trust_server_certificate"`

	// AppName is reported to the server as the application name.
	AppName string `mapstructure:"app_name"`

	// Instance names a SQL Server instance; the port is then resolved by the browser service.
	Instance string `mapstructure:"instance"`
}

// Adapter implements the adapter.Adapter interface for SQL Server.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new SQL Server adapter instance.
func New() *Adapter {
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{
			AdapterName: "sqlserver",
			DriverName:  "sqlserver",
			SQLDialect:  msdialect.SQLServer,
		},
	}
}

// OpenDB opens a go-mssqldb pool. Statements use @name parameters.
func (a *Adapter) OpenDB(cfg adapter.Config) (*sql.DB, error) {
	dsn, err := buildSQLServerDSN(cfg)
	if err != nil {
		return nil, err
	}
	connector, err := mssql.NewConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sqlserver config: %w", err)
	}
	return sql.OpenDB(connector), nil
}

// buildSQLServerDSN constructs a sqlserver:// URL.
func buildSQLServerDSN(cfg adapter.Config) (string, error) {
	var params Params
	if err := adapter.DecodeParams(cfg.Params, &params); err != nil {
		return "", err
	}

	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	u := &url.URL{Scheme: "sqlserver"}
	if params.Instance != "" {
		u.Host = host
		u.Path = params.Instance
	} else {
		port := cfg.Port
		if port == 0 {
			port = 1433
		}
		u.Host = net.JoinHostPort(host, strconv.Itoa(port))
	}
	if cfg.Username != "" {
		u.User = url.UserPassword(cfg.Username, cfg.Password)
	}

	q := url.Values{}
	if cfg.Database != "" {
		q.Set("database", cfg.Database)
	}
	if params.Encrypt != "" {
		q.Set("encrypt", params.Encrypt)
	}
	if params.TrustServerCertificate {
		q.Set("TrustServerCertificate", "true")
	}
	if params.AppName != "" {
		q.Set("app name", params.AppName)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}
