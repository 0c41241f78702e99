package core

// DialectConfig holds the static configuration for a SQL dialect.
// The runtime behavior (quoting, returning clauses, type mapping) lives in
// pkg/dialect, which wraps this config.
type DialectConfig struct {
	// Name is the dialect identifier (e.g., "postgres", "sqlserver")
	Name string

	// Identifiers defines quoting and normalization rules
	Identifiers IdentifierConfig

	// DefaultSchema is the default schema name ("public" for Postgres, "dbo" for SQL Server)
	DefaultSchema string

	// Placeholder defines how query parameters are formatted
	Placeholder PlaceholderStyle

	// BooleanTrue and BooleanFalse are the literal renderings of booleans
	BooleanTrue  string
	BooleanFalse string

	// SupportsReturning is true when INSERT ... RETURNING is available
	SupportsReturning bool

	// SupportsSequences is true when the backend has named sequences
	SupportsSequences bool

	// Limit defines how row limits are rendered
	Limit LimitStyle

	// EmptyInsert follows the table name in an INSERT that binds no columns.
	// Empty means the standard "DEFAULT VALUES".
	EmptyInsert string

	// Types maps host value kinds to backend parameter types
	Types map[HostKind]DbType
}

// NormalizationStrategy defines how unquoted identifiers are normalized.
type NormalizationStrategy int

const (
	// NormLowercase normalizes unquoted identifiers to lowercase (default SQL behavior).
	NormLowercase NormalizationStrategy = iota
	// NormUppercase normalizes unquoted identifiers to uppercase (Oracle).
	NormUppercase
	// NormCaseSensitive preserves identifier case exactly (MySQL on Linux).
	NormCaseSensitive
	// NormCaseInsensitive normalizes to lowercase for comparison (SQL Server, SQLite, DuckDB).
	NormCaseInsensitive
)

// PlaceholderStyle defines how query parameters are formatted.
type PlaceholderStyle int

const (
	// PlaceholderQuestion uses ? for all parameters (MySQL).
	// Statements using this style bind arguments by position.
	PlaceholderQuestion PlaceholderStyle = iota
	// PlaceholderAtNamed uses @name (SQL Server, SQLite, PostgreSQL through pgx.NamedArgs).
	PlaceholderAtNamed
	// PlaceholderDollarNamed uses $name (DuckDB).
	PlaceholderDollarNamed
)

// Positional reports whether arguments are bound by position rather than name.
func (p PlaceholderStyle) Positional() bool {
	return p == PlaceholderQuestion
}

// String returns the string representation of the placeholder style.
func (p PlaceholderStyle) String() string {
	switch p {
	case PlaceholderQuestion:
		return "?"
	case PlaceholderAtNamed:
		return "@name"
	case PlaceholderDollarNamed:
		return "$name"
	default:
		return "unknown"
	}
}

// IdentifierConfig defines how identifiers are quoted and normalized.
type IdentifierConfig struct {
	Quote         string                // Quote character: ", `, [
	QuoteEnd      string                // End quote character (usually same as Quote, ] for [)
	Escape        string                // Escape sequence: "", ``, ]]
	Normalization NormalizationStrategy // How to normalize unquoted identifiers
}

// LimitStyle defines how a row limit is rendered.
type LimitStyle int

const (
	// LimitClause appends LIMIT n (PostgreSQL, MySQL, SQLite, DuckDB).
	LimitClause LimitStyle = iota
	// LimitTop inserts TOP (n) after SELECT (SQL Server).
	LimitTop
)
