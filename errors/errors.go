package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified error type of the nexus packages.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// HTTPStatus returns the recommended HTTP status for this error.
func (e *AppError) HTTPStatus() int { return HTTPStatus(e.Code) }

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf creates a new AppError with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// --- Constructors ---

// InvalidInput creates an error for a value the input stage cannot accept.
func InvalidInput(reason string) *AppError {
	return New(ErrCodeInvalidInput, reason)
}

// TransformFailed creates an error for a record the transform stage cannot enrich.
func TransformFailed(reason string) *AppError {
	return New(ErrCodeTransformFailed, reason)
}

// ParseFailed creates an error for an adapter that could not parse its input.
func ParseFailed(format, reason string) *AppError {
	return &AppError{
		Code: ErrCodeParseFailed, Message: reason,
		Details: map[string]any{"format": format},
	}
}

// ChainFatal creates an error for a stage failure the chain driver had to absorb.
func ChainFatal(pipelineID, stage string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeChainFatal, Message: fmt.Sprintf("stage %s failed", stage),
		Details: map[string]any{"pipeline": pipelineID, "stage": stage},
		Cause:   cause,
	}
}

// HandlerFailed creates an error for a stream handler that failed on a batch.
func HandlerFailed(streamID string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeHandlerFailed, Message: fmt.Sprintf("stream %s failed", streamID),
		Details: map[string]any{"stream": streamID},
		Cause:   cause,
	}
}

// InvalidConfig creates an error for configuration that failed validation.
func InvalidConfig(message string) *AppError {
	return New(ErrCodeInvalidConfig, message)
}

// Internal creates an error for an unexpected internal failure.
func Internal(cause error) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: "an unexpected error occurred", Cause: cause}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
