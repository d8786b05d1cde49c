// Package errors provides centralized error definitions for the application.
// Errors are organized by domain to avoid duplication and provide consistent naming.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - Unexported errors (err*): Use for internal package errors
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import "errors"

// Circuit breaker errors.
var (
	// ErrCircuitBreakerOpen indicates the circuit breaker has tripped and requests are blocked.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")
)

// Client and connection errors.
var (
	// ErrClientDisabled indicates a client or feature is disabled.
	ErrClientDisabled = errors.New("client disabled")
)

// Response and parsing errors.
var (
	// ErrEmptyResponse indicates an empty response was received.
	ErrEmptyResponse = errors.New("empty response")

	// ErrUnexpectedShape indicates a model or API returned data of an unexpected shape.
	ErrUnexpectedShape = errors.New("unexpected shape")
)

// Validation errors.
var (
	// ErrInvalidInput indicates input that violates the caller contract, e.g. invalid UTF-8.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTooManyTexts indicates a batch exceeded the allowed size.
	ErrTooManyTexts = errors.New("too many texts")

	// ErrMissingTextColumn indicates a CSV upload without a "text" column.
	ErrMissingTextColumn = errors.New("CSV must contain 'text' column")

	// ErrEmptyCSV indicates an empty CSV upload.
	ErrEmptyCSV = errors.New("CSV file is empty")

	// ErrInvalidURL indicates a URL that cannot be fetched.
	ErrInvalidURL = errors.New("invalid url")
)

// Content source errors.
var (
	// ErrCommentsUnavailable indicates a source whose comments cannot be retrieved.
	ErrCommentsUnavailable = errors.New("comments unavailable")
)

// History errors.
var (
	// ErrHistoryNotFound indicates a history entry that does not exist.
	ErrHistoryNotFound = errors.New("history entry not found")
)

// Cache errors.
var (
	// ErrCacheNotFound indicates a cache entry was not found.
	ErrCacheNotFound = errors.New("cache entry not found")
)
