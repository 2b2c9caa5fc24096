package errors

import (
	"fmt"
)

// NullArgumentError occurs when a required function argument is nil
type NullArgumentError struct{ Name string }

// Error returns a textual representation of this NullArgumentError
func (e NullArgumentError) Error() string {
	return fmt.Sprintf("%s must not be nil", e.Name)
}

// InvalidFieldError occurs when a field reference is neither an ordinal position nor a named expression
type InvalidFieldError struct{ Value interface{} }

// Error returns a textual representation of this InvalidFieldError
func (e InvalidFieldError) Error() string {
	return fmt.Sprintf("Field %v (%T) must be an ordinal position (int) or a named expression (string)", e.Value, e.Value)
}

// UnsupportedOperationError occurs when an operation is invoked on a node kind which cannot support it
type UnsupportedOperationError struct {
	Op     string
	Reason string
}

// Error returns a textual representation of this UnsupportedOperationError
func (e UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s is not supported: %s", e.Op, e.Reason)
}

// NotTransferableError occurs when an operation cannot be made safe for transfer to a remote worker
type NotTransferableError struct{ Reason error }

// Error returns a textual representation of this NotTransferableError
func (e NotTransferableError) Error() string {
	return fmt.Sprintf("Operation is not transferable to workers: %s", e.Reason)
}

// Unwrap returns the underlying cause of this NotTransferableError
func (e NotTransferableError) Unwrap() error {
	return e.Reason
}

// IncompatibleSchemaError occurs when the Schemas of merged streams are not equivalent
type IncompatibleSchemaError struct{ Reason error }

// Error returns a textual representation of this IncompatibleSchemaError
func (e IncompatibleSchemaError) Error() string {
	return fmt.Sprintf("Stream schemas are not compatible: %s", e.Reason)
}

// Unwrap returns the underlying cause of this IncompatibleSchemaError
func (e IncompatibleSchemaError) Unwrap() error {
	return e.Reason
}
