// Package dialect provides the per-backend SQL strategy contract.
//
// This package contains the public contract for dialect implementations used by
// the SQL generator, the expression visitors and the unit-of-work context.
// Concrete dialects are registered from pkg/dialects/*/ packages.
package dialect

import (
	"database/sql"
	"reflect"
	"strings"

	"github.com/leapstack-labs/leaporm/pkg/core"
)

// Dialect is an immutable, stateless strategy for one database backend.
// Every implementation satisfies the same contract so the generator and the
// visitors never branch on backend names.
type Dialect interface {
	// Name returns the dialect identifier used in diagnostics and the registry.
	Name() string

	// QuoteIdentifier wraps and escapes a single identifier.
	QuoteIdentifier(name string) string

	// FormatParameter returns the placeholder token for a bound value.
	FormatParameter(baseName string) string

	// FormatBoolean returns the literal rendering of a boolean.
	FormatBoolean(value bool) string

	// MapDbType maps a host value type to a backend parameter type.
	// Pointers, sql.Null* wrappers and enum-like named types are unwrapped first.
	MapDbType(hostType reflect.Type) (core.DbType, bool)

	// BuildInsertReturningID appends the syntax that retrieves generated key
	// values after an insert. keys are in declaration order.
	BuildInsertReturningID(baseInsertSQL, tableName string, keys []core.KeyColumn) string

	// FormatColumn renders a column reference inside a projection or predicate.
	FormatColumn(name string) string

	// FormatAlias renders a projection alias.
	FormatAlias(alias string) string

	// Config returns the static configuration for this dialect.
	Config() *core.DialectConfig

	// BindArgs converts a statement's ordered parameter names and their values
	// into driver arguments.
	BindArgs(names []string, values map[string]any) []any
}

// SequenceDialect is implemented by backends with named sequences.
type SequenceDialect interface {
	// NextSequenceValue returns a statement yielding the next value of sequence.
	NextSequenceValue(sequence string) string
}

// ReturningParameters is implemented by dialects whose returning clause binds
// parameters itself (e.g. a trailing SELECT echoing pre-assigned keys).
// The generator appends these names to the insert's parameter list.
type ReturningParameters interface {
	ReturningParameters(keys []core.KeyColumn) []string
}

// Base implements the formatting operations shared by every backend from a
// DialectConfig. Concrete dialects embed Base and add BuildInsertReturningID.
type Base struct {
	cfg *core.DialectConfig
}

// NewBase creates a Base around cfg. cfg must not be mutated afterwards.
func NewBase(cfg *core.DialectConfig) Base {
	return Base{cfg: cfg}
}

// Name returns the dialect name.
func (b Base) Name() string {
	return b.cfg.Name
}

// Config returns the pure data configuration for this dialect.
func (b Base) Config() *core.DialectConfig {
	return b.cfg
}

// NormalizeName normalizes an identifier according to dialect rules.
func (b Base) NormalizeName(name string) string {
	switch b.cfg.Identifiers.Normalization {
	case core.NormUppercase:
		return strings.ToUpper(name)
	case core.NormLowercase, core.NormCaseInsensitive:
		return strings.ToLower(name)
	default: // NormCaseSensitive
		return name
	}
}

// QuoteIdentifier quotes an identifier using the dialect's quote characters.
func (b Base) QuoteIdentifier(name string) string {
	id := b.cfg.Identifiers
	// Escape any existing quote end characters in the name (e.g., ] -> ]])
	escaped := strings.ReplaceAll(name, id.QuoteEnd, id.Escape)
	return id.Quote + escaped + id.QuoteEnd
}

// FormatParameter returns the placeholder for a named parameter.
// Returns "?" for PlaceholderQuestion style, "@name" or "$name" for the named styles.
func (b Base) FormatParameter(baseName string) string {
	switch b.cfg.Placeholder {
	case core.PlaceholderAtNamed:
		return "@" + baseName
	case core.PlaceholderDollarNamed:
		return "$" + baseName
	default: // PlaceholderQuestion
		return "?"
	}
}

// FormatBoolean renders a boolean literal.
func (b Base) FormatBoolean(value bool) string {
	if value {
		return b.cfg.BooleanTrue
	}
	return b.cfg.BooleanFalse
}

// MapDbType maps a host type through the dialect's type table.
func (b Base) MapDbType(hostType reflect.Type) (core.DbType, bool) {
	kind, ok := HostKindOf(hostType)
	if !ok {
		return "", false
	}
	t, ok := b.cfg.Types[kind]
	return t, ok
}

// FormatColumn is a pass-through; quoting dialects override it.
func (b Base) FormatColumn(name string) string {
	return name
}

// FormatAlias is a pass-through; quoting dialects override it.
func (b Base) FormatAlias(alias string) string {
	return alias
}

// BindArgs returns positional values in name order for "?" backends and one
// sql.Named argument per distinct name otherwise.
func (b Base) BindArgs(names []string, values map[string]any) []any {
	args := make([]any, 0, len(names))
	if b.cfg.Placeholder.Positional() {
		for _, name := range names {
			args = append(args, values[name])
		}
		return args
	}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		args = append(args, sql.Named(name, values[name]))
	}
	return args
}

// QualifiedName renders a possibly schema-qualified table name.
func QualifiedName(d Dialect, schema, table string) string {
	if schema == "" {
		return d.QuoteIdentifier(table)
	}
	return d.QuoteIdentifier(schema) + "." + d.QuoteIdentifier(table)
}
