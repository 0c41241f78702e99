package core

import "time"

// AdapterConfig holds configuration for connecting to a database.
type AdapterConfig struct {
	Type     string
	Path     string
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Schema   string
	Options  map[string]string
	Params   map[string]any
	Pool     PoolConfig
}

// PoolConfig bounds the database/sql pool behind a provider.
// A unit of work only ever holds one connection from the pool.
type PoolConfig struct {
	MaxOpenConns    int           `koanf:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
}
