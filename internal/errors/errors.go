// Package errors provides shared error types that map to both CLI exit codes
// and HTTP status codes, enabling consistent error handling across the CLI,
// the interactive shell and the API.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind represents the category of an error, which determines both the
// CLI exit code and HTTP status code.
type Kind int

const (
	// KindInvalidInput represents malformed input: bad timestamps, non-finite
	// numbers, empty names or unknown format specs.
	// CLI exit code: 2, HTTP status: 400 Bad Request
	KindInvalidInput Kind = iota

	// KindNotFound represents a missing resource, such as a timer index
	// outside the list.
	// CLI exit code: 3, HTTP status: 404 Not Found
	KindNotFound

	// KindDuplicateKey represents a timer name whose key already exists.
	// CLI exit code: 4, HTTP status: 409 Conflict
	KindDuplicateKey

	// KindStorageUnavailable represents an inaccessible persistence backend.
	// CLI exit code: 5, HTTP status: 503 Service Unavailable
	KindStorageUnavailable

	// KindInternal represents an internal error.
	// CLI exit code: 5, HTTP status: 500 Internal Server Error
	KindInternal

	// KindGeneral represents a general error that doesn't fit other categories.
	// CLI exit code: 1, HTTP status: 500 Internal Server Error
	KindGeneral
)

// String returns a human-readable name for the error kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "InvalidInput"
	case KindNotFound:
		return "NotFound"
	case KindDuplicateKey:
		return "DuplicateKey"
	case KindStorageUnavailable:
		return "StorageUnavailable"
	case KindInternal:
		return "Internal"
	case KindGeneral:
		return "General"
	default:
		return "Unknown"
	}
}

// Error represents a structured error with kind, message, cause, and optional details.
type Error struct {
	Kind       Kind
	Message    string
	Cause      error
	Details    map[string]interface{}
	Suggestion string // Optional suggestion for resolving the error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// CLIExitCode returns the appropriate CLI exit code for this error.
func (e *Error) CLIExitCode() int {
	switch e.Kind {
	case KindInvalidInput:
		return 2
	case KindNotFound:
		return 3
	case KindDuplicateKey:
		return 4
	case KindStorageUnavailable, KindInternal:
		return 5
	default:
		return 1
	}
}

// HTTPStatus returns the appropriate HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindDuplicateKey:
		return http.StatusConflict
	case KindStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WithDetails adds details to the error and returns it for chaining.
func (e *Error) WithDetails(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds a suggestion to the error and returns it for chaining.
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestion = suggestion
	return e
}

// Constructor functions

// InvalidInput creates an error for malformed input.
func InvalidInput(format string, args ...interface{}) *Error {
	return &Error{
		Kind:    KindInvalidInput,
		Message: fmt.Sprintf(format, args...),
	}
}

// NotFound creates an error for missing resources.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf(format, args...),
	}
}

// DuplicateKey creates an error for a timer key collision.
func DuplicateKey(format string, args ...interface{}) *Error {
	return &Error{
		Kind:    KindDuplicateKey,
		Message: fmt.Sprintf(format, args...),
	}
}

// StorageUnavailable creates an error for an inaccessible persistence backend.
func StorageUnavailable(cause error, format string, args ...interface{}) *Error {
	return Wrap(cause, KindStorageUnavailable, format, args...)
}

// Internal creates an error for internal failures.
func Internal(format string, args ...interface{}) *Error {
	return &Error{
		Kind:    KindInternal,
		Message: fmt.Sprintf(format, args...),
	}
}

// General creates a general error.
func General(format string, args ...interface{}) *Error {
	return &Error{
		Kind:    KindGeneral,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with a specific kind and message.
func Wrap(err error, kind Kind, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// WrapInternal wraps an error as an internal error.
func WrapInternal(err error, format string, args ...interface{}) *Error {
	return Wrap(err, KindInternal, format, args...)
}

// Helper functions for extracting error information

// As finds the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// GetKind extracts the Kind from an error, returning KindGeneral if the chain
// holds no *Error.
func GetKind(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindGeneral
}

// GetCLIExitCode extracts the CLI exit code from an error.
func GetCLIExitCode(err error) int {
	if e, ok := As(err); ok {
		return e.CLIExitCode()
	}
	return 1
}

// GetHTTPStatus extracts the HTTP status code from an error.
func GetHTTPStatus(err error) int {
	if e, ok := As(err); ok {
		return e.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// Is returns true if the error chain holds an *Error of the specified kind.
func Is(err error, kind Kind) bool {
	if e, ok := As(err); ok {
		return e.Kind == kind
	}
	return false
}
