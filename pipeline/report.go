package pipeline

import (
	stderrors "errors"
	"strings"
)

// Leading tags of report strings.
const (
	OutputTag = "[OUTPUT]"
	ErrorTag  = "[ERROR]"
)

var (
	// ErrInvalidDataFormat is the fixed failure raised by Manager.SimulateErrorRecovery.
	ErrInvalidDataFormat = stderrors.New("invalid data format")
	// ErrStagesFrozen is returned by AddStage once the chain has run.
	ErrStagesFrozen = stderrors.New("stage list is frozen after first run")
)

// IsErrorReport reports whether s carries the error tag.
func IsErrorReport(s string) bool {
	return strings.HasPrefix(s, ErrorTag)
}

// IsOutputReport reports whether s carries the output tag.
func IsOutputReport(s string) bool {
	return strings.HasPrefix(s, OutputTag)
}

func errorReport(format, reason string) string {
	return ErrorTag + " " + format + " parsing failed: " + reason
}
