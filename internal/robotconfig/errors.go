package robotconfig

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for configuration store operations

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeLoad indicates the backing file is present but its content is
	// unparsable, or a referenced certificate file is unreadable. Not
	// recoverable by the store; the caller must fix the file.
	ErrTypeLoad ErrorType = iota
	// ErrTypeValidation indicates a required field is missing on write.
	// Recoverable by supplying corrected data; no partial write occurs.
	ErrTypeValidation
	// ErrTypeIO indicates a filesystem-level failure (create/read/write
	// denied or impossible).
	ErrTypeIO
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeLoad:
		return "Configuration Load Error"
	case ErrTypeValidation:
		return "Configuration Validation Error"
	case ErrTypeIO:
		return "Configuration I/O Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// ConfigError represents a failure in a store operation.
type ConfigError struct {
	Type          ErrorType // Category of error
	Message       string    // Human-readable error message
	Path          string    // File or directory involved (if known)
	SerialNumber  string    // Section / robot involved (if known)
	MissingFields []string  // Missing required fields (validation only)
	Err           error     // Underlying error (if any)
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	parts := []string{fmt.Sprintf("%s: %s", e.Type, e.Message)}
	if e.SerialNumber != "" {
		parts = append(parts, fmt.Sprintf("serial %s", e.SerialNumber))
	}
	if len(e.MissingFields) > 0 {
		parts = append(parts, fmt.Sprintf("missing %s", strings.Join(e.MissingFields, ", ")))
	}
	msg := strings.Join(parts, " — ")
	if e.Err != nil {
		return fmt.Sprintf("%s (caused by: %v)", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewLoadError creates a ConfigError for unparsable content or an
// unreadable certificate reference.
func NewLoadError(message string, err error) *ConfigError {
	return &ConfigError{Type: ErrTypeLoad, Message: message, Err: err}
}

// NewValidationError creates a ConfigError for an entry missing required
// persistence fields.
func NewValidationError(serialNumber string, missing []string) *ConfigError {
	return &ConfigError{
		Type:          ErrTypeValidation,
		Message:       "entry is missing required fields",
		SerialNumber:  serialNumber,
		MissingFields: missing,
	}
}

// NewIOError creates a ConfigError for a filesystem-level failure.
func NewIOError(message, path string, err error) *ConfigError {
	return &ConfigError{Type: ErrTypeIO, Message: message, Path: path, Err: err}
}

// IsLoadError checks if an error is a configuration load error
func IsLoadError(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr) && cfgErr.Type == ErrTypeLoad
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr) && cfgErr.Type == ErrTypeValidation
}

// IsIOError checks if an error is a filesystem I/O error
func IsIOError(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr) && cfgErr.Type == ErrTypeIO
}
