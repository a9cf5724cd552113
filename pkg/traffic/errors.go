package traffic

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrNoReceivers           = errors.New("no eligible receivers")
	ErrInsufficientReceivers = errors.New("not enough eligible receivers")
	ErrUnknownClass          = errors.New("unknown traffic class")
	ErrInvalidCatalog        = errors.New("invalid catalog")
)

// GenerationError carries the host and class a queue generation step
// failed for.
type GenerationError struct {
	Op      string // Operation that failed (e.g., "periodic", "resolve")
	Host    string // Originating host (if applicable)
	ClassID int    // Traffic class ID (if applicable)
	Cause   error  // Underlying error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	switch {
	case e.Host != "" && e.ClassID != 0:
		return fmt.Sprintf("%s host %s class %d: %v", e.Op, e.Host, e.ClassID, e.Cause)
	case e.Host != "":
		return fmt.Sprintf("%s host %s: %v", e.Op, e.Host, e.Cause)
	case e.ClassID != 0:
		return fmt.Sprintf("%s class %d: %v", e.Op, e.ClassID, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error's cause.
func (e *GenerationError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// ErrorBuilder provides a fluent interface for building GenerationErrors.
type ErrorBuilder struct {
	err GenerationError
}

// NewError creates a new error builder with the given operation.
func NewError(op string) *ErrorBuilder {
	return &ErrorBuilder{err: GenerationError{Op: op}}
}

// Host sets the originating host.
func (b *ErrorBuilder) Host(name string) *ErrorBuilder {
	b.err.Host = name
	return b
}

// Class sets the traffic class ID.
func (b *ErrorBuilder) Class(id int) *ErrorBuilder {
	b.err.ClassID = id
	return b
}

// Cause sets the underlying error cause.
func (b *ErrorBuilder) Cause(err error) *ErrorBuilder {
	b.err.Cause = err
	return b
}

// Build returns the constructed GenerationError.
func (b *ErrorBuilder) Build() *GenerationError {
	return &b.err
}

// Err returns the error as an error interface.
func (b *ErrorBuilder) Err() error {
	return &b.err
}

// NoReceiversError reports a class with nobody to send to.
func NoReceiversError(host string, classID int) error {
	return NewError("periodic").Host(host).Class(classID).Cause(ErrNoReceivers).Err()
}
