package optimization

import "fmt"

// Error is an optimization error carrying the operation and component it
// originated from, so callers can report where a run failed.
type Error struct {
	// Message describes the error that occurred.
	Message string
	// Op is the operation that caused the error, e.g. "evaluate objective".
	Op string
	// Component is the component where the error occurred, e.g. "neldermead".
	Component string
	// Err is the underlying error that triggered this one, if any.
	Err error
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var prefix string
	switch {
	case e.Component != "" && e.Op != "":
		prefix = fmt.Sprintf("%s: %s", e.Component, e.Op)
	case e.Component != "":
		prefix = e.Component
	case e.Op != "":
		prefix = e.Op
	}

	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if prefix != "" {
		return fmt.Sprintf("%s: %s", prefix, msg)
	}
	return msg
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError creates a new optimization error with the given message.
func NewError(component, op, message string) *Error {
	return &Error{
		Message:   message,
		Op:        op,
		Component: component,
	}
}

// NewErrorf creates a new optimization error with a formatted message.
func NewErrorf(component, op, format string, args ...interface{}) *Error {
	return &Error{
		Message:   fmt.Sprintf(format, args...),
		Op:        op,
		Component: component,
	}
}

// WrapError wraps an existing error with optimization context.
// If err is nil, WrapError returns nil.
func WrapError(err error, component, op, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Message:   message,
		Op:        op,
		Component: component,
		Err:       err,
	}
}

// IsOptimizationError checks if an error is of type Error.
// If the error is an optimization error, it returns the error and true.
// Otherwise, it returns nil and false.
func IsOptimizationError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	if e, ok := err.(*Error); ok {
		return e, true
	}
	return nil, false
}
