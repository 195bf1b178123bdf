package errors

import (
	"errors"
	"fmt"
)

// Error type constants
const (
	Validation = "validation"
	Resource   = "resource"
	Safety     = "safety"
	Action     = "action"
	State      = "state"
)

// RunError is a structured error carrying the failure kind and, for
// validation failures, the JSON path of the offending field.
type RunError struct {
	Type    string `json:"type"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *RunError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s", e.Path, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// NewValidation reports a structural problem at the given document path.
func NewValidation(path, msg string) *RunError {
	return &RunError{Type: Validation, Path: path, Message: msg}
}

// NewValidationf reports a structural problem with a formatted message.
func NewValidationf(path, format string, args ...any) *RunError {
	return &RunError{Type: Validation, Path: path, Message: fmt.Sprintf(format, args...)}
}

// NewResource reports a missing or unreadable external resource.
func NewResource(msg string, err error) *RunError {
	return &RunError{Type: Resource, Message: msg, Err: err}
}

// NewSafety reports a platform safety abort.
func NewSafety(msg string) *RunError {
	return &RunError{Type: Safety, Message: msg}
}

// NewAction reports a runtime action failure.
func NewAction(msg string, err error) *RunError {
	return &RunError{Type: Action, Message: msg, Err: err}
}

// NewState reports an illegal lifecycle transition.
func NewState(msg string) *RunError {
	return &RunError{Type: State, Message: msg}
}

// TypeOf returns the RunError type of err, or Action for plain errors.
func TypeOf(err error) string {
	var re *RunError
	if errors.As(err, &re) {
		return re.Type
	}
	return Action
}

// IsType reports whether err is a RunError of type t.
func IsType(err error, t string) bool {
	var re *RunError
	return errors.As(err, &re) && re.Type == t
}
