package core

import (
	"errors"
	"fmt"
)

// Sentinel errors matched with errors.Is.
var (
	// ErrConfiguration classifies every model, generator and context setup failure.
	ErrConfiguration = errors.New("configuration error")
	// ErrTranslation classifies every filter or projection translation failure.
	ErrTranslation = errors.New("translation error")
)

// ConfigError is raised at model-build or generator-build time, never at execution.
type ConfigError struct {
	Entity string // entity name; empty for context-level errors
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Entity == "" {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("configuration error for entity %s: %s", e.Entity, e.Reason)
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

// Configf builds a ConfigError with a formatted reason.
func Configf(entity, format string, args ...any) *ConfigError {
	return &ConfigError{Entity: entity, Reason: fmt.Sprintf(format, args...)}
}

// TranslationError names the expression construct that could not be rendered.
type TranslationError struct {
	Construct string // e.g. "Not", "Call(Contains)", "Member(Customer.Name)"
	Reason    string
}

func (e *TranslationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("translation error: unsupported construct %s", e.Construct)
	}
	return fmt.Sprintf("translation error: unsupported construct %s: %s", e.Construct, e.Reason)
}

// Is reports whether target is ErrTranslation.
func (e *TranslationError) Is(target error) bool {
	return target == ErrTranslation
}
