// Package errors provides application-level error types for the login
// broker. Every external-provider failure is mapped into one of these
// kinds before it reaches the transport boundary.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeValidation         ErrorType = "validation_error"
	ErrorTypeChallengeFailure   ErrorType = "challenge_failure"
	ErrorTypeDispatchFailure    ErrorType = "dispatch_failure"
	ErrorTypeSessionExpired     ErrorType = "session_expired"
	ErrorTypeVerificationFailed ErrorType = "verification_failed"
	ErrorTypeUpstreamFailure    ErrorType = "upstream_failure"
	ErrorTypeInternal           ErrorType = "internal_error"
)

// AppError represents an application error with additional context
type AppError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    int       `json:"code"`
	Details string    `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func newAppError(errType ErrorType, code int, message string, details ...string) *AppError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &AppError{
		Type:    errType,
		Message: message,
		Code:    code,
		Details: detail,
	}
}

// NewValidationError creates a new validation error (rejected input format)
func NewValidationError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message, details...)
}

// NewChallengeFailureError creates an error for anti-bot provider failures
func NewChallengeFailureError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeChallengeFailure, http.StatusBadRequest, message, details...)
}

// NewDispatchFailureError creates an error for rejected SMS dispatch
func NewDispatchFailureError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeDispatchFailure, http.StatusBadRequest, message, details...)
}

// NewSessionExpiredError creates an error for unknown, consumed or expired sessions
func NewSessionExpiredError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeSessionExpired, http.StatusBadRequest, message, details...)
}

// NewVerificationFailedError creates an error for a rejected SMS code (retryable)
func NewVerificationFailedError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeVerificationFailed, http.StatusBadRequest, message, details...)
}

// NewUpstreamFailureError creates an error for unexpected upstream provider faults
func NewUpstreamFailureError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeUpstreamFailure, http.StatusInternalServerError, message, details...)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message, details...)
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from error
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

func isType(err error, t ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == t
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return isType(err, ErrorTypeValidation)
}

// IsSessionExpiredError checks if the error reports an expired/unknown session
func IsSessionExpiredError(err error) bool {
	return isType(err, ErrorTypeSessionExpired)
}

// IsVerificationFailedError checks if the error reports a rejected SMS code
func IsVerificationFailedError(err error) bool {
	return isType(err, ErrorTypeVerificationFailed)
}

// IsDispatchFailureError checks if the error reports a rejected SMS dispatch
func IsDispatchFailureError(err error) bool {
	return isType(err, ErrorTypeDispatchFailure)
}

// IsChallengeFailureError checks if the error reports an anti-bot provider failure
func IsChallengeFailureError(err error) bool {
	return isType(err, ErrorTypeChallengeFailure)
}

// IsUpstreamFailureError checks if the error reports an upstream provider fault
func IsUpstreamFailureError(err error) bool {
	return isType(err, ErrorTypeUpstreamFailure)
}
