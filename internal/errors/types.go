package errors

import (
	"fmt"
)

// ErrorCode represents a categorized error type
type ErrorCode string

const (
	// Actor lacks a required role or capability; user-facing, never retried.
	ErrCodePermissionDenied ErrorCode = "PERMISSION_DENIED"

	// A reference could not be resolved to a chat or user.
	ErrCodeResolutionFailed ErrorCode = "RESOLUTION_FAILED"

	// The Bot API call itself failed (network, rate limit, platform-side
	// rejection).
	ErrCodeTransportFailed ErrorCode = "TRANSPORT_FAILED"

	// A decision referenced an unknown or already-resolved request id.
	ErrCodeProtocolInvalid ErrorCode = "PROTOCOL_INVALID"

	// A best-effort notification failed; logged only, never surfaced to the
	// primary actor.
	ErrCodeNotifyFailed ErrorCode = "NOTIFY_FAILED"

	// Configuration errors
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"

	// Audit database errors
	ErrCodeDatabaseQuery ErrorCode = "DATABASE_QUERY"

	// Internal errors
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// AppError represents a structured application error
type AppError struct {
	Code        ErrorCode              `json:"code"`
	Message     string                 `json:"message"`
	Cause       error                  `json:"-"`
	Context     map[string]interface{} `json:"context,omitempty"`
	UserMessage string                 `json:"user_message,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithUserMessage sets the text shown to the user at the handler boundary
func (e *AppError) WithUserMessage(msg string) *AppError {
	e.UserMessage = msg
	return e
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return ErrCodeInternalError
}

// GetUserMessage extracts the user-facing message from an error
func GetUserMessage(err error) string {
	if appErr, ok := err.(*AppError); ok && appErr.UserMessage != "" {
		return appErr.UserMessage
	}
	return "An internal error occurred. Please try again later."
}
