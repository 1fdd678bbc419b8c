package errors

import (
	"fmt"
)

// ForgeError is the structured error type for component-forge.
// It provides rich context for error handling, logging, and user presentation.
type ForgeError struct {
	// Code is the unique error code (e.g., "ERR_401_REQUIREMENT_INVALID").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Network, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *ForgeError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *ForgeError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with ForgeError.
func (e *ForgeError) Is(target error) bool {
	if t, ok := target.(*ForgeError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *ForgeError) WithDetail(key, value string) *ForgeError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
// Returns the error for method chaining.
func (e *ForgeError) WithSuggestion(suggestion string) *ForgeError {
	e.Suggestion = suggestion
	return e
}

// New creates a new ForgeError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *ForgeError {
	return &ForgeError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a ForgeError from an existing error.
// The error's message becomes the ForgeError message.
func Wrap(code string, err error) *ForgeError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ValidationError creates a requirement validation error.
// Surfaced to the caller immediately, never retried.
func ValidationError(message string, cause error) *ForgeError {
	return New(ErrCodeRequirementInvalid, message, cause)
}

// IndexError creates a lexical index error. Fatal: the service must not
// serve with a broken index.
func IndexError(message string, cause error) *ForgeError {
	return New(ErrCodeCorruptIndex, message, cause)
}

// ChannelError creates a semantic-channel error. Recovered locally by
// degrading the request to lexical-only.
func ChannelError(message string, cause error) *ForgeError {
	return New(ErrCodeChannelUnavailable, message, cause)
}

// ExplanationError creates a per-item explanation error. Recovered locally
// by degrading that item's explanation to a generic template.
func ExplanationError(message string, cause error) *ForgeError {
	return New(ErrCodeExplanationFailed, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *ForgeError {
	return New(ErrCodeInternal, message, cause)
}

// IsRetryable checks if an error is retryable.
// Returns true if the error is a ForgeError with Retryable flag set.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if fe, ok := err.(*ForgeError); ok {
		return fe.Retryable
	}
	return false
}

// IsFatal checks if an error has fatal severity.
// Fatal errors should abort the current operation.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if fe, ok := err.(*ForgeError); ok {
		return fe.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from a ForgeError.
// Returns empty string if not a ForgeError.
func GetCode(err error) string {
	if fe, ok := err.(*ForgeError); ok {
		return fe.Code
	}
	return ""
}

// GetCategory extracts the category from a ForgeError.
// Returns empty string if not a ForgeError.
func GetCategory(err error) Category {
	if fe, ok := err.(*ForgeError); ok {
		return fe.Category
	}
	return ""
}
