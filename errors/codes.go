package errors

import "net/http"

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Stage and adapter errors
const (
	// ErrCodeInvalidInput indicates the input stage rejected a value (empty or unsupported shape).
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeTransformFailed indicates the transform stage could not enrich a record.
	ErrCodeTransformFailed ErrorCode = "TRANSFORM_FAILED"
	// ErrCodeParseFailed indicates an adapter could not parse its native input shape.
	ErrCodeParseFailed ErrorCode = "PARSE_FAILED"
	// ErrCodeChainFatal indicates a stage failed outside its documented recoverable set.
	ErrCodeChainFatal ErrorCode = "CHAIN_FATAL"
	// ErrCodeStagesFrozen indicates a stage was added after the chain first ran.
	ErrCodeStagesFrozen ErrorCode = "STAGE_LIST_FROZEN"
)

// Stream errors
const (
	// ErrCodeHandlerFailed indicates a stream handler failed on a batch.
	ErrCodeHandlerFailed ErrorCode = "HANDLER_FAILED"
)

// Configuration and internal errors
const (
	// ErrCodeInvalidConfig indicates configuration failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var httpStatusByCode = map[ErrorCode]int{
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeParseFailed:     http.StatusBadRequest,
	ErrCodeInvalidConfig:   http.StatusBadRequest,
	ErrCodeTransformFailed: http.StatusUnprocessableEntity,
	ErrCodeChainFatal:      http.StatusUnprocessableEntity,
	ErrCodeHandlerFailed:   http.StatusUnprocessableEntity,
	ErrCodeStagesFrozen:    http.StatusConflict,
}

// HTTPStatus returns the recommended HTTP status for a code.
func HTTPStatus(code ErrorCode) int {
	if s, ok := httpStatusByCode[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}
