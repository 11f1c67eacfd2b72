// ABOUTME: Error taxonomy for executor sizing
// ABOUTME: Typed invalid-input and configuration errors matchable with errors.Is

package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput matches any *InvalidInputError
	ErrInvalidInput = errors.New("invalid input")
	// ErrConfiguration matches any *ConfigurationError
	ErrConfiguration = errors.New("invalid configuration")
)

// InvalidInputError reports a node shape that cannot produce a safe recommendation.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is reports whether target is ErrInvalidInput.
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ConfigurationError reports a missing or malformed constants document.
type ConfigurationError struct {
	Key    string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	msg := "configuration error"
	if e.Key != "" {
		msg += " in " + e.Key
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}
