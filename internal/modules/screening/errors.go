package screening

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks per-instrument data problems. They never abort a run
	// unless fail-fast mode is enabled.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConfiguration marks caller programming errors detected before any data is touched
	ErrConfiguration = errors.New("invalid configuration")
)

// InvalidInputError reports why the metrics of one instrument could not be computed
type InvalidInputError struct {
	ID  string // Instrument identifier, empty when raised by a standalone calculation
	Op  string // Calculation that failed, e.g. "momentum_score"
	Err error
}

func (e *InvalidInputError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.ID, e.Op, e.Err)
}

// Unwrap exposes both ErrInvalidInput and the underlying cause to errors.Is
func (e *InvalidInputError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidInput}
	}
	return []error{ErrInvalidInput, e.Err}
}

// ConfigurationError reports a window or rule value the screener cannot run with
type ConfigurationError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s=%v %s", e.Field, e.Value, e.Reason)
}

// Is lets errors.Is(err, ErrConfiguration) match
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}
