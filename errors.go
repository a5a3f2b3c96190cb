package agentgate

import (
	"errors"
	"fmt"
)

// ErrorType is the coarse classification surfaced to callers. Error payloads
// are restricted to a message string plus this tag; raw causes and stack
// traces stay server-side.
type ErrorType string

const (
	// ErrorValidation marks a malformed request, recoverable by the caller
	// resubmitting a corrected one.
	ErrorValidation ErrorType = "validation"

	// ErrorEngine marks a failure raised by the execution engine.
	ErrorEngine ErrorType = "engine"

	// ErrorTransport marks a failure in the gateway's own streaming path.
	ErrorTransport ErrorType = "transport"
)

// Error is a categorized gateway error.
type Error struct {
	Msg   string
	Type  ErrorType
	Cause error
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
	}
	return e.Msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a categorized error wrapping an optional cause.
func NewError(t ErrorType, msg string, cause error) *Error {
	return &Error{Msg: msg, Type: t, Cause: cause}
}

// TypeOf extracts the coarse type of err, defaulting to ErrorEngine for
// uncategorized failures crossing the engine boundary.
func TypeOf(err error) ErrorType {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Type
	}
	if errors.Is(err, ErrMissingConversationID) || errors.Is(err, ErrMissingPrompt) {
		return ErrorValidation
	}
	return ErrorEngine
}
