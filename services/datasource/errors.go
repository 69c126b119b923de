package datasource

import (
	"errors"
	"fmt"
)

// Sentinel errors for adapter dispatch and registry lookup.
var (
	// ErrAdapterNotFound is returned when no adapter is registered for a source
	ErrAdapterNotFound = errors.New("adapter not found")

	// ErrSourceUnavailable is returned when a source's adapter failed to initialize
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrConfigNotFound is returned when an indicator is not declared in its source catalog
	ErrConfigNotFound = errors.New("indicator config not found")
)

// ConfigurationError indicates an adapter could not be built from its SourceConfig,
// typically because required credentials are missing. The message never contains
// credential values.
type ConfigurationError struct {
	Source string
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for %s: %s (field: %s)", e.Source, e.Reason, e.Field)
}

// NewConfigurationError creates a ConfigurationError for a source config field
func NewConfigurationError(source, field, reason string) *ConfigurationError {
	return &ConfigurationError{Source: source, Field: field, Reason: reason}
}

// UpstreamError indicates a provider returned a non-success status or an
// unparseable payload. The message carries the status and a body snippet,
// never the request URL (query strings may hold API keys).
type UpstreamError struct {
	Source     string
	StatusCode int
	Reason     string
	Cause      error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream error from %s (status %d): %s", e.Source, e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("upstream error from %s: %s", e.Source, e.Reason)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// IsConfigurationError reports whether err is a ConfigurationError
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsUpstreamError reports whether err is an UpstreamError
func IsUpstreamError(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
