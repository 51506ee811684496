package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the category of an export failure
type ErrorType string

const (
	ErrorTypeConfiguration  ErrorType = "configuration"
	ErrorTypeQuery          ErrorType = "query"
	ErrorTypeFilesystem     ErrorType = "filesystem"
	ErrorTypeNotImplemented ErrorType = "not_implemented"
)

// ExportError represents an export-specific error
type ExportError struct {
	Type      ErrorType
	Step      string
	Message   string
	Cause     error
	Retryable bool
}

// Error implements the error interface
func (e *ExportError) Error() string {
	if e == nil {
		return "unknown export error"
	}
	msg := fmt.Sprintf("[%s] %s", e.Type, e.Message)
	if e.Step != "" {
		msg = fmt.Sprintf("[%s] %s: %s", e.Type, e.Step, e.Message)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *ExportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewConfigurationError creates an error for missing or unusable configuration.
// Configuration errors are always fatal and raised before any query runs.
func NewConfigurationError(step, message string, cause error) *ExportError {
	return &ExportError{
		Type:    ErrorTypeConfiguration,
		Step:    step,
		Message: message,
		Cause:   cause,
	}
}

// NewQueryError creates an error for a failed backend query
func NewQueryError(step string, cause error, retryable bool) *ExportError {
	return &ExportError{
		Type:      ErrorTypeQuery,
		Step:      step,
		Message:   "query failed",
		Cause:     cause,
		Retryable: retryable,
	}
}

// NewFilesystemError creates an error for a failed directory or file operation
func NewFilesystemError(step, path string, cause error) *ExportError {
	return &ExportError{
		Type:    ErrorTypeFilesystem,
		Step:    step,
		Message: fmt.Sprintf("filesystem operation on %s failed", path),
		Cause:   cause,
	}
}

// NewNotImplementedError creates an error for an operation with no body yet
func NewNotImplementedError(step, message string) *ExportError {
	return &ExportError{
		Type:    ErrorTypeNotImplemented,
		Step:    step,
		Message: message,
	}
}

// GetErrorType returns the type of the error, or "" if err is not an ExportError
func GetErrorType(err error) ErrorType {
	var eErr *ExportError
	if stderrors.As(err, &eErr) {
		return eErr.Type
	}
	return ""
}

// IsRetryable checks if an error is marked retryable by the layer that raised it
func IsRetryable(err error) bool {
	var eErr *ExportError
	if stderrors.As(err, &eErr) {
		return eErr.Retryable
	}
	return false
}

// IsConfiguration reports whether err is a configuration error
func IsConfiguration(err error) bool {
	return GetErrorType(err) == ErrorTypeConfiguration
}

// IsQuery reports whether err is a query error
func IsQuery(err error) bool {
	return GetErrorType(err) == ErrorTypeQuery
}

// IsFilesystem reports whether err is a filesystem error
func IsFilesystem(err error) bool {
	return GetErrorType(err) == ErrorTypeFilesystem
}
