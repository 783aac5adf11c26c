package adapter

import (
	"fmt"
	"strings"
)

// Error codes used by the built-in adapters.
const (
	CodeBinaryNotFound  = "BINARY_NOT_FOUND"
	CodeExecutionFailed = "EXECUTION_FAILED"
	CodeTimeout         = "TIMEOUT"
	CodeParseError      = "PARSE_ERROR"
	CodeInvalidInput    = "INVALID_INPUT"
)

// Error is a structured adapter failure. It renders as
// "tool [operation/code]: message: cause".
type Error struct {
	Tool      string
	Operation string
	Code      string
	Message   string
	Cause     error
}

// NewError creates an adapter error.
func NewError(tool, operation, code, message string) *Error {
	return &Error{Tool: tool, Operation: operation, Code: code, Message: message}
}

// WithCause attaches the underlying error and returns e for chaining.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

func (e *Error) Error() string {
	parts := []string{fmt.Sprintf("%s [%s/%s]", e.Tool, e.Operation, e.Code)}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same tool, operation and
// code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Tool == t.Tool && e.Operation == t.Operation && e.Code == t.Code
}
