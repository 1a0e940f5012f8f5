package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode is the machine-readable error identifier returned to clients.
type ErrorCode string

const (
	ErrorCode_INTERNAL               ErrorCode = "internal_error"
	ErrorCode_UNAUTHORIZED           ErrorCode = "unauthorized"
	ErrorCode_VALIDATION_FAILED      ErrorCode = "validation_failed"
	ErrorCode_CONVERSATION_NOT_FOUND ErrorCode = "conversation_not_found"
	ErrorCode_NOT_AWAITING_UPLOAD    ErrorCode = "not_awaiting_upload"
	ErrorCode_NOT_RETRYABLE          ErrorCode = "not_retryable"
	ErrorCode_RETRY_IN_FLIGHT        ErrorCode = "retry_in_flight"
)

// AppError is the error envelope the HTTP layer renders.
type AppError struct {
	Raw      error
	HTTPCode int
	Code     ErrorCode
	Message  string
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is/As.
func (e AppError) Unwrap() error {
	return e.Raw
}

// ErrInternal wraps an unexpected failure. The raw error is logged, never
// returned to the client.
func ErrInternal(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTERNAL,
		Message:  "Internal server error",
	}
}

// ErrUnauthorized signals a missing or invalid caller identity.
func ErrUnauthorized(message string) AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_UNAUTHORIZED,
		Message:  message,
	}
}

// ErrValidation signals a malformed request payload.
func ErrValidation(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_VALIDATION_FAILED,
		Message:  "Request validation failed",
	}
}

// ErrConversationNotFound covers both a missing conversation and one
// owned by another user.
func ErrConversationNotFound(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_CONVERSATION_NOT_FOUND,
		Message:  "Conversation not found",
	}
}

// ErrNotAwaitingUpload signals confirm-upload on a conversation past the
// pending status.
func ErrNotAwaitingUpload(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_NOT_AWAITING_UPLOAD,
		Message:  "Conversation is not awaiting upload confirmation",
	}
}

// ErrNotRetryable signals a force-retry on a conversation that is not in
// a terminal failure status.
func ErrNotRetryable(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_NOT_RETRYABLE,
		Message:  "Conversation is not in a failed status",
	}
}

// ErrRetryInFlight signals a duplicate concurrent force-retry.
func ErrRetryInFlight(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_RETRY_IN_FLIGHT,
		Message:  "A retry is already in flight for this conversation",
	}
}
