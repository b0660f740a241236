// Package apperrors holds the error types shared by the pipeline packages.
package apperrors

import (
	"errors"
	"fmt"
)

// ConfigurationError reports an invalid setting that makes a pipeline run impossible.
// It is always fatal to the invocation.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// NewConfigurationError creates a ConfigurationError.
func NewConfigurationError(field, reason string) error {
	return &ConfigurationError{Field: field, Reason: reason}
}

// IsConfigurationError reports whether err has a ConfigurationError in its chain.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}

// TokenizerLoadError reports that a precise tokenizer could not be loaded or used.
// Callers recover from it by falling back to an approximate backend.
type TokenizerLoadError struct {
	Model string
	Err   error
}

func (e *TokenizerLoadError) Error() string {
	return fmt.Sprintf("load tokenizer %q: %v", e.Model, e.Err)
}

func (e *TokenizerLoadError) Unwrap() error {
	return e.Err
}
