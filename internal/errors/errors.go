package errors

import (
	"errors"
	"fmt"
)

// Domain-specific error types
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrAccountNotFound indicates the email account was not found
	ErrAccountNotFound = errors.New("email account not found")

	// ErrSnapshotNotFound indicates no briefing snapshot exists for the day
	ErrSnapshotNotFound = errors.New("briefing snapshot not found")

	// ErrDuplicateEntry indicates a unique constraint violation
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrInvalidInput indicates invalid input data
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates unauthorized access
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller does not own the resource
	ErrForbidden = errors.New("forbidden")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal server error")

	// Briefing-specific errors
	// ErrFutureDate indicates a briefing was requested for a future day
	ErrFutureDate = errors.New("cannot view future dates")

	// ErrOldDate indicates a briefing was requested beyond the retention window
	ErrOldDate = errors.New("snapshot not available for dates older than 90 days")

	// OAuth linking errors
	// ErrLinkingNotEnabled indicates OAuth linking is not configured
	ErrLinkingNotEnabled = errors.New("account linking is not enabled")

	// ErrInvalidState indicates the OAuth state parameter failed validation
	ErrInvalidState = errors.New("invalid OAuth state")

	// ErrDuplicateRequestTimeout indicates a duplicate callback timed out
	// waiting for the first request to finish
	ErrDuplicateRequestTimeout = errors.New("timed out waiting for duplicate request")
)

// Error codes for API responses
const (
	CodeNotFound                = "NOT_FOUND"
	CodeDuplicateEntry          = "DUPLICATE_ENTRY"
	CodeInvalidInput            = "INVALID_INPUT"
	CodeUnauthorized            = "UNAUTHORIZED"
	CodeForbidden               = "FORBIDDEN"
	CodeInternalError           = "INTERNAL_ERROR"
	CodeFutureDate              = "FUTURE_DATE"
	CodeOldDate                 = "OLD_DATE"
	CodeLinkingNotEnabled       = "LINKING_NOT_ENABLED"
	CodeInvalidState            = "INVALID_STATE"
	CodeDuplicateRequestTimeout = "DUPLICATE_REQUEST_TIMEOUT"
)

// AppError represents an application error with context
type AppError struct {
	Err     error
	Message string
	Code    string
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(err error, message string, code string) *AppError {
	return &AppError{
		Err:     err,
		Message: message,
		Code:    code,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrSnapshotNotFound)
}

// IsDateValidation checks if the error is a briefing date validation error
func IsDateValidation(err error) bool {
	return errors.Is(err, ErrFutureDate) || errors.Is(err, ErrOldDate)
}

// GetErrorCode returns the appropriate error code for an error
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != "" {
		return appErr.Code
	}

	switch {
	case IsNotFound(err):
		return CodeNotFound
	case errors.Is(err, ErrDuplicateEntry):
		return CodeDuplicateEntry
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrFutureDate):
		return CodeFutureDate
	case errors.Is(err, ErrOldDate):
		return CodeOldDate
	case errors.Is(err, ErrLinkingNotEnabled):
		return CodeLinkingNotEnabled
	case errors.Is(err, ErrInvalidState):
		return CodeInvalidState
	case errors.Is(err, ErrDuplicateRequestTimeout):
		return CodeDuplicateRequestTimeout
	default:
		return CodeInternalError
	}
}
