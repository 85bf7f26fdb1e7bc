package cli

import (
	"strings"

	cerrors "github.com/spetersoncode/countdown/internal/errors"
)

// ExitCode returns the exit code for any error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	return cerrors.GetCLIExitCode(err)
}

// FormatErrorMessage returns formatted error with suggestion if available.
func FormatErrorMessage(err error) string {
	var b strings.Builder
	b.WriteString("Error: ")
	b.WriteString(err.Error())
	if e, ok := cerrors.As(err); ok && e.Suggestion != "" {
		b.WriteString("\n\nSuggestion: ")
		b.WriteString(e.Suggestion)
	}
	return b.String()
}

// ErrInvalidArgs creates an error for invalid arguments (exit code 2)
func ErrInvalidArgs(format string, args ...interface{}) error {
	return cerrors.InvalidInput(format, args...)
}

// ErrInvalidArgsWithSuggestion creates an error for invalid arguments with a suggestion
func ErrInvalidArgsWithSuggestion(suggestion, format string, args ...interface{}) error {
	return cerrors.InvalidInput(format, args...).WithSuggestion(suggestion)
}

// ErrStorage creates an error for an inaccessible store (exit code 5)
func ErrStorage(cause error, format string, args ...interface{}) error {
	return cerrors.StorageUnavailable(cause, format, args...)
}

// ErrStorageWithSuggestion creates a storage error with a suggestion
func ErrStorageWithSuggestion(cause error, suggestion, format string, args ...interface{}) error {
	return cerrors.StorageUnavailable(cause, format, args...).WithSuggestion(suggestion)
}

// ErrGeneral creates a general error (exit code 1)
func ErrGeneral(format string, args ...interface{}) error {
	return cerrors.General(format, args...)
}

// ErrGeneralWithCause creates a general error with a cause
func ErrGeneralWithCause(cause error, format string, args ...interface{}) error {
	return cerrors.Wrap(cause, cerrors.KindGeneral, format, args...)
}

// Common suggestions
const (
	SuggestRunInit    = "Run 'countdown init' to create the timer store."
	SuggestListTimers = "Run 'countdown list' to see timer indexes."
	SuggestSpecFormat = "Specs are unit letters from coarse to fine, e.g. dhms, wd or hmsms."
)
