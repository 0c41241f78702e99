package adapter

import (
	"database/sql"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/leapstack-labs/leaporm/pkg/dialect"
)

// BaseSQLAdapter provides the common parts of a database/sql backed adapter.
// Embed it in concrete adapters and supply OpenDB.
type BaseSQLAdapter struct {
	AdapterName string
	DriverName  string
	SQLDialect  dialect.Dialect
}

// Name returns the adapter name.
func (b *BaseSQLAdapter) Name() string {
	return b.AdapterName
}

// Dialect returns the adapter's dialect.
func (b *BaseSQLAdapter) Dialect() dialect.Dialect {
	return b.SQLDialect
}

// OpenDSN opens a pool for the adapter's driver.
func (b *BaseSQLAdapter) OpenDSN(dsn string) (*sql.DB, error) {
	db, err := sql.Open(b.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", b.AdapterName, err)
	}
	return db, nil
}

// DecodeParams decodes adapter-specific params into out.
// Unknown keys are an error so typos surface at startup.
func DecodeParams(params map[string]any, out any) error {
	if len(params) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("invalid adapter params: %w", err)
	}
	return nil
}

// Option returns cfg.Options[key], or def when unset.
func Option(cfg Config, key, def string) string {
	if v, ok := cfg.Options[key]; ok && v != "" {
		return v
	}
	return def
}
