package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrInvalidAmount            = errors.New("invalid amount")
	ErrUnsupportedMethod        = errors.New("unsupported calculation method")
	ErrInvalidRate              = errors.New("invalid rate")
	ErrNoSessionsRemaining      = errors.New("no sessions remaining")
	ErrInconsistentPricing      = errors.New("inconsistent session pricing")
	ErrMissingPricing           = errors.New("session count or session price is required")
	ErrAuditWriteFailure        = errors.New("audit log write failed")
	ErrPackageNotFound          = errors.New("package not found")
	ErrPackageInactive          = errors.New("package is inactive")
	ErrSessionNotFound          = errors.New("session not found")
	ErrInvalidSessionTransition = errors.New("invalid session status transition")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeInvalidAmount            = "INVALID_AMOUNT"
	ErrCodeUnsupportedMethod        = "UNSUPPORTED_METHOD"
	ErrCodeInvalidRate              = "INVALID_RATE"
	ErrCodeNoSessionsRemaining      = "NO_SESSIONS_REMAINING"
	ErrCodeInconsistentPricing      = "INCONSISTENT_PRICING"
	ErrCodeMissingPricing           = "MISSING_PRICING"
	ErrCodeAuditWriteFailure        = "AUDIT_WRITE_FAILURE"
	ErrCodePackageNotFound          = "PACKAGE_NOT_FOUND"
	ErrCodePackageInactive          = "PACKAGE_INACTIVE"
	ErrCodeSessionNotFound          = "SESSION_NOT_FOUND"
	ErrCodeInvalidSessionTransition = "INVALID_SESSION_TRANSITION"
	ErrCodeDatabaseError            = "DATABASE_ERROR"
	ErrCodeCacheError               = "CACHE_ERROR"
)

// Code returns the business code carried by err, or "" when err is not a BusinessError.
func Code(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// Wrap common errors with business context
func WrapInvalidAmount(amount int64) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidAmount,
		fmt.Sprintf("Amount %d must not be negative", amount),
		ErrInvalidAmount,
	)
}

func WrapUnsupportedMethod(method string) *BusinessError {
	return NewBusinessError(
		ErrCodeUnsupportedMethod,
		fmt.Sprintf("Calculation method %q is not supported", method),
		ErrUnsupportedMethod,
	)
}

func WrapInvalidRate(name, rate string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidRate,
		fmt.Sprintf("%s %s must be in [0, 1)", name, rate),
		ErrInvalidRate,
	)
}

func WrapNoSessionsRemaining(packageID string) *BusinessError {
	return NewBusinessError(
		ErrCodeNoSessionsRemaining,
		fmt.Sprintf("Package %s has no sessions remaining", packageID),
		ErrNoSessionsRemaining,
	)
}

func WrapInconsistentPricing(gross, sessions, price int64) *BusinessError {
	return NewBusinessError(
		ErrCodeInconsistentPricing,
		fmt.Sprintf("%d sessions x %d does not match gross amount %d", sessions, price, gross),
		ErrInconsistentPricing,
	)
}

func WrapMissingPricing() *BusinessError {
	return NewBusinessError(
		ErrCodeMissingPricing,
		"Either total_sessions or session_price must be provided",
		ErrMissingPricing,
	)
}

func WrapAuditWriteFailure(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeAuditWriteFailure,
		"fee audit entry could not be persisted",
		fmt.Errorf("%w: %v", ErrAuditWriteFailure, err),
	)
}

func WrapPackageNotFound(packageID string) *BusinessError {
	return NewBusinessError(
		ErrCodePackageNotFound,
		fmt.Sprintf("Package with ID %s not found", packageID),
		ErrPackageNotFound,
	)
}

func WrapPackageInactive(packageID string) *BusinessError {
	return NewBusinessError(
		ErrCodePackageInactive,
		fmt.Sprintf("Package with ID %s is inactive", packageID),
		ErrPackageInactive,
	)
}

func WrapSessionNotFound(sessionID string) *BusinessError {
	return NewBusinessError(
		ErrCodeSessionNotFound,
		fmt.Sprintf("Session with ID %s not found", sessionID),
		ErrSessionNotFound,
	)
}

func WrapInvalidSessionTransition(sessionID, from, to string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidSessionTransition,
		fmt.Sprintf("Session %s cannot move from %s to %s", sessionID, from, to),
		ErrInvalidSessionTransition,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}
