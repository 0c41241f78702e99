package config

import (
	"fmt"

	"github.com/leapstack-labs/leaporm/pkg/adapter"
	"github.com/leapstack-labs/leaporm/pkg/dialect"
)

var defaultPorts = map[string]int{
	"postgres":  5432,
	"sqlserver": 1433,
	"mysql":     3306,
}

// DefaultSchemaForType returns the dialect's default schema, or "" when the
// dialect is unknown or schemaless.
func DefaultSchemaForType(dbType string) string {
	if d, ok := dialect.Get(dbType); ok {
		return d.Config().DefaultSchema
	}
	return ""
}

// ApplyTargetDefaults fills the schema and port from the target type.
func ApplyTargetDefaults(t *TargetConfig) {
	if t == nil {
		return
	}
	if t.Schema == "" {
		t.Schema = DefaultSchemaForType(t.Type)
	}
	if t.Port == 0 {
		t.Port = defaultPorts[t.Type]
	}
}

// ValidateTarget checks the target names a registered adapter.
func ValidateTarget(t *TargetConfig) error {
	if t == nil {
		return nil
	}
	if t.Type == "" {
		return fmt.Errorf("target type is required")
	}
	if !adapter.IsRegistered(t.Type) {
		return &adapter.UnknownAdapterError{
			Type:      t.Type,
			Available: adapter.ListAdapters(),
		}
	}
	return nil
}
