package cloak

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrInvalidTag indicates a mask tag has an invalid format.
	ErrInvalidTag = errors.New("invalid tag")

	// ErrNotStruct indicates a descriptor was requested for a non-struct type.
	ErrNotStruct = errors.New("not a struct type")

	// ErrCopy indicates the private copy made before mutation failed.
	ErrCopy = errors.New("copy failed")

	// ErrFieldAccess indicates a field could not be read or written.
	ErrFieldAccess = errors.New("field access failed")

	// ErrStrategyPanic indicates a strategy panicked while masking a value.
	ErrStrategyPanic = errors.New("strategy panicked")

	// ErrUnmarshal indicates the codec failed to unmarshal input data.
	ErrUnmarshal = errors.New("unmarshal failed")

	// ErrMarshal indicates the codec failed to marshal output data.
	ErrMarshal = errors.New("marshal failed")
)

// ConfigError represents a metadata configuration error.
// It wraps a sentinel error with additional context about the field and strategy.
type ConfigError struct {
	Err      error  // Underlying sentinel error (ErrInvalidTag, ErrNotStruct)
	Field    string // Field name that triggered the error
	Strategy string // Strategy name or type that was invalid
}

func (e *ConfigError) Error() string {
	if e.Field != "" && e.Strategy != "" {
		return fmt.Sprintf("%s for strategy %q (field %s)", e.Err.Error(), e.Strategy, e.Field)
	}
	if e.Strategy != "" {
		return fmt.Sprintf("%s for strategy %q", e.Err.Error(), e.Strategy)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s (field %s)", e.Err.Error(), e.Field)
	}
	return e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// TransformError represents an error while masking a single field.
// It wraps a sentinel error with context about which field and operation failed.
type TransformError struct {
	Err       error  // Underlying sentinel error (ErrFieldAccess, ErrStrategyPanic)
	Field     string // Field name that failed
	Operation string // Operation that failed (read, write, apply)
	Cause     error  // Original error from the underlying operation
}

func (e *TransformError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s field %s: %v", e.Operation, e.Field, e.Cause)
	}
	return fmt.Sprintf("%s field %s", e.Operation, e.Field)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// CodecError represents a marshal/unmarshal or copy error.
type CodecError struct {
	Err   error // Underlying sentinel error (ErrMarshal, ErrUnmarshal, ErrCopy)
	Cause error // Original error from the codec
}

func (e *CodecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Err.Error(), e.Cause)
	}
	return e.Err.Error()
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// newConfigError creates a ConfigError for invalid metadata.
func newConfigError(sentinel error, strategy, field string) error {
	return &ConfigError{
		Err:      sentinel,
		Strategy: strategy,
		Field:    field,
	}
}

// newTransformError creates a TransformError for field masking failures.
func newTransformError(sentinel error, operation, field string, cause error) error {
	return &TransformError{
		Err:       sentinel,
		Field:     field,
		Operation: operation,
		Cause:     cause,
	}
}

// newCodecError creates a CodecError for marshal/unmarshal failures.
func newCodecError(sentinel error, cause error) error {
	return &CodecError{
		Err:   sentinel,
		Cause: cause,
	}
}
