package errors

import "fmt"

// Constructors for the error kinds every handler boundary converts into.

// NewPermissionError reports a missing role or capability.
func NewPermissionError(actor, requirement string) *AppError {
	return New(ErrCodePermissionDenied, fmt.Sprintf("%s lacks %s", actor, requirement)).
		WithContext("actor", actor).
		WithContext("requirement", requirement)
}

// NewResolutionError reports a reference that could not be resolved.
func NewResolutionError(ref string, err error) *AppError {
	return Wrap(err, ErrCodeResolutionFailed, fmt.Sprintf("could not resolve %q", ref)).
		WithContext("reference", ref)
}

// NewTransportError reports a failed Bot API call.
func NewTransportError(method string, err error) *AppError {
	return Wrap(err, ErrCodeTransportFailed, fmt.Sprintf("%s call failed", method)).
		WithContext("method", method)
}

// NewProtocolError reports a decision against an unknown or already-resolved
// request id.
func NewProtocolError(requestID string) *AppError {
	return New(ErrCodeProtocolInvalid, "request id is unknown or already resolved").
		WithContext("request_id", requestID).
		WithUserMessage("This approval request is no longer valid.")
}

// NewConfigError creates a configuration error
func NewConfigError(key, message string) *AppError {
	return New(ErrCodeInvalidConfig, message).
		WithContext("config_key", key).
		WithUserMessage("Configuration error")
}

// NewDatabaseError creates an audit database error with operation context
func NewDatabaseError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeDatabaseQuery, fmt.Sprintf("database %s failed", operation)).
		WithContext("operation", operation)
}
