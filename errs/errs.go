// Package errs holds the sentinel and structured error types shared across
// the orchestration engine.
package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors for comparison with errors.Is.
var (
	ErrToolNotFound = errors.New("tool not registered")
	ErrEmptyPlan    = errors.New("plan has no tasks")
)

// Code identifies the kind of failure inside an OrchestratorError, used so
// callers can branch on failure class without string matching.
type Code string

const (
	CodeRouting     Code = "ROUTING_FAILURE"
	CodeExecution   Code = "EXECUTION_FAILURE"
	CodeSynthesis   Code = "SYNTHESIS_FAILURE"
	CodeCircuitOpen Code = "CIRCUIT_OPEN"
	CodeToolError   Code = "TOOL_ERROR"
	CodeDecodeError Code = "DECODE_FAILURE"
	CodeTranslation Code = "TRANSLATION_ERROR"
	CodeRetrieval   Code = "RETRIEVAL_ERROR"
)

// OrchestratorError carries structured context about a failure: an
// operation name, a code, and a wrapped cause.
type OrchestratorError struct {
	Op      string
	Code    Code
	Message string
	Err     error
}

func (e *OrchestratorError) Error() string {
	if e.Op != "" && e.Err != nil {
		return fmt.Sprintf("%s [%s]: %v", e.Op, e.Code, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return string(e.Code)
}

func (e *OrchestratorError) Unwrap() error {
	return e.Err
}

// New builds an OrchestratorError.
func New(op string, code Code, err error) *OrchestratorError {
	return &OrchestratorError{Op: op, Code: code, Err: err}
}

// Newf builds an OrchestratorError with a formatted message and no cause.
func Newf(code Code, format string, args ...interface{}) *OrchestratorError {
	return &OrchestratorError{Code: code, Message: fmt.Sprintf(format, args...)}
}
