package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeForbidden    ErrorType = "forbidden"
	ErrorTypeConflict     ErrorType = "conflict"
	ErrorTypeInternal     ErrorType = "internal"
	ErrorTypeExternal     ErrorType = "external"
)

// DomainError represents a structured error with a stable machine-readable code
type DomainError struct {
	Type    ErrorType
	Code    string
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is; two domain errors match on their code
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithCause returns a copy of the error carrying the underlying cause
func (e *DomainError) WithCause(err error) *DomainError {
	return &DomainError{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
		Details: e.Details,
	}
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, code, message string) *DomainError {
	return &DomainError{
		Type:    errType,
		Code:    code,
		Message: message,
	}
}

// Domain error variables

var (
	// Not Found Errors
	ErrUserNotFound        = NewDomainError(ErrorTypeNotFound, "USER_NOT_FOUND", "user not found")
	ErrTaskNotFound        = NewDomainError(ErrorTypeNotFound, "TASK_NOT_FOUND", "task not found")
	ErrUnsupportedProvider = NewDomainError(ErrorTypeNotFound, "UNSUPPORTED_PROVIDER", "unsupported identity provider")

	// Validation Errors
	ErrValidationFailed = NewDomainError(ErrorTypeValidation, "VALIDATION_FAILED", "validation failed")

	// Authorization Errors. Login failure never reveals whether the account
	// exists or which credential was wrong.
	ErrLoginFailed  = NewDomainError(ErrorTypeUnauthorized, "LOGIN_FAILED", "invalid email or password")
	ErrMissingToken = NewDomainError(ErrorTypeUnauthorized, "MISSING_TOKEN", "authentication token required")
	ErrInvalidToken = NewDomainError(ErrorTypeUnauthorized, "INVALID_TOKEN", "invalid authentication token")
	ErrTokenExpired = NewDomainError(ErrorTypeUnauthorized, "TOKEN_EXPIRED", "authentication token expired")

	// Permission Errors
	ErrAccessDenied = NewDomainError(ErrorTypeForbidden, "ACCESS_DENIED", "access denied")

	// Conflict Errors
	ErrDuplicateEmail    = NewDomainError(ErrorTypeConflict, "DUPLICATE_EMAIL", "email already registered")
	ErrDuplicateUsername = NewDomainError(ErrorTypeConflict, "DUPLICATE_USERNAME", "username already taken")

	// Internal Errors
	ErrInternal = NewDomainError(ErrorTypeInternal, "INTERNAL_ERROR", "internal server error")

	// External Provider Errors
	ErrProviderExchange = NewDomainError(ErrorTypeExternal, "PROVIDER_EXCHANGE_FAILED", "identity provider exchange failed")
)

// Error type checking helper functions

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return GetErrorType(err) == ErrorTypeNotFound
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return GetErrorType(err) == ErrorTypeValidation
}

// IsUnauthorizedError checks if an error is an unauthorized error
func IsUnauthorizedError(err error) bool {
	return GetErrorType(err) == ErrorTypeUnauthorized
}

// IsForbiddenError checks if an error is a forbidden error
func IsForbiddenError(err error) bool {
	return GetErrorType(err) == ErrorTypeForbidden
}

// IsConflictError checks if an error is a conflict error
func IsConflictError(err error) bool {
	return GetErrorType(err) == ErrorTypeConflict
}

// IsInternalError checks if an error is an internal error
func IsInternalError(err error) bool {
	return GetErrorType(err) == ErrorTypeInternal
}

// IsExternalError checks if an error is an external provider error
func IsExternalError(err error) bool {
	return GetErrorType(err) == ErrorTypeExternal
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorCode returns the machine-readable code of a domain error,
// or empty string if not a domain error
func GetErrorCode(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return &DomainError{
		Type:    ErrorTypeInternal,
		Code:    ErrInternal.Code,
		Message: message,
		Err:     err,
	}
}
