package apperrors

import "errors"

// Common errors
var (
	// Membership errors
	ErrAlreadyMember    = errors.New("user already occupies a meetup")
	ErrNotMember        = errors.New("user is not in a meetup")
	ErrCapacityExceeded = errors.New("meetup is full")
	ErrInvalidSpec      = errors.New("invalid meetup spec")

	// Resource errors
	ErrMeetupNotFound = errors.New("meetup not found")
	ErrUserNotFound   = errors.New("user not found")

	// Signup errors
	ErrAlreadyRegistered = errors.New("user already registered")

	// Authentication errors
	ErrAuthFailure  = errors.New("portal authentication failed")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Store / serialization failures; the only class eligible for retry
	ErrInternal = errors.New("internal error")
)

// NewNotFoundError creates a custom error for a missing meetup with a message
func NewNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrMeetupNotFound,
		Message: message,
	}
}

// NewBadRequestError creates a custom error for bad requests with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewInternalError wraps a store or serialization failure
func NewInternalError(cause error) error {
	return &CustomError{
		Err:     ErrInternal,
		Message: "internal error",
		Cause:   cause,
	}
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Cause   error
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}
