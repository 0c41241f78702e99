// Package core defines the shared language of the leaporm system.
//
// This package contains:
//   - Key generation and column descriptors (Generation, KeyColumn)
//   - Dialect configuration data (DialectConfig, IdentifierConfig, PlaceholderStyle)
//   - Host type classification and backend type names (HostKind, DbType)
//   - Connection and target configuration (AdapterConfig, TargetConfig)
//   - The error taxonomy (ConfigError, TranslationError)
//
// The Golden Rule: pkg/core imports ONLY the standard library.
// All other packages depend on core, not the reverse.
package core
