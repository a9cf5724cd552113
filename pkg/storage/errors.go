package storage

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrMalformedLine       = errors.New("malformed line")
	ErrUnknownSection      = errors.New("unknown section")
	ErrChecksumMismatch    = errors.New("checksum mismatch")
	ErrBadMagic            = errors.New("not a queue file")
	ErrUnsupportedVersion  = errors.New("unsupported queue file version")
	ErrTruncated           = errors.New("truncated data")
	ErrUnknownFormat       = errors.New("unknown queue format")
	ErrDecompressionFailed = errors.New("decompression failed")
	ErrFrameTooLarge       = errors.New("frame length exceeds largest record")
)

// StorageError provides structured error information for persistence
// operations.
type StorageError struct {
	Op      string // Operation that failed (e.g., "read", "write")
	Entity  string // Entity type (e.g., "topology", "queue")
	Path    string // File path (if applicable)
	Line    int    // 1-based line or entry number (if applicable)
	Cause   error  // Underlying error
	Context string // Additional context
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	where := e.Entity
	if e.Path != "" {
		where = fmt.Sprintf("%s %s", e.Entity, e.Path)
	}
	if e.Line != 0 {
		where = fmt.Sprintf("%s line %d", where, e.Line)
	}
	if e.Context != "" {
		return fmt.Sprintf("%s %s (%s): %v", e.Op, where, e.Context, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, where, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error or its cause.
func (e *StorageError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// ErrorBuilder provides a fluent interface for building StorageErrors.
type ErrorBuilder struct {
	err StorageError
}

// NewError creates a new error builder with the given operation.
func NewError(op string) *ErrorBuilder {
	return &ErrorBuilder{err: StorageError{Op: op}}
}

// Topology sets the entity to "topology".
func (b *ErrorBuilder) Topology() *ErrorBuilder {
	b.err.Entity = "topology"
	return b
}

// Queue sets the entity to "queue".
func (b *ErrorBuilder) Queue() *ErrorBuilder {
	b.err.Entity = "queue"
	return b
}

// Path sets the file path.
func (b *ErrorBuilder) Path(path string) *ErrorBuilder {
	b.err.Path = path
	return b
}

// Line sets the line or entry number.
func (b *ErrorBuilder) Line(n int) *ErrorBuilder {
	b.err.Line = n
	return b
}

// Context sets additional context information.
func (b *ErrorBuilder) Context(ctx string) *ErrorBuilder {
	b.err.Context = ctx
	return b
}

// Cause sets the underlying error cause.
func (b *ErrorBuilder) Cause(err error) *ErrorBuilder {
	b.err.Cause = err
	return b
}

// Build returns the constructed StorageError.
func (b *ErrorBuilder) Build() *StorageError {
	return &b.err
}

// Err returns the error as an error interface.
func (b *ErrorBuilder) Err() error {
	return &b.err
}

// Convenience functions for common error patterns

// TopologyLineError reports a topology file line that could not be parsed.
func TopologyLineError(line int, text string) error {
	return NewError("read").Topology().Line(line).Context(text).Cause(ErrMalformedLine).Err()
}

// QueueLineError reports a queue text line that could not be parsed.
func QueueLineError(line int, cause error) error {
	return NewError("read").Queue().Line(line).Cause(cause).Err()
}

// ChecksumError reports a corrupt binary queue frame.
func ChecksumError(entry int) error {
	return NewError("read").Queue().Line(entry).Context("binary frame").Cause(ErrChecksumMismatch).Err()
}

// withPath returns err with path set when it is a StorageError.
func withPath(err error, path string) error {
	var se *StorageError
	if errors.As(err, &se) && se.Path == "" {
		se.Path = path
	}
	return err
}

// IsCorrupt returns true if the error indicates damaged file content.
func IsCorrupt(err error) bool {
	return errors.Is(err, ErrChecksumMismatch) ||
		errors.Is(err, ErrTruncated) ||
		errors.Is(err, ErrBadMagic) ||
		errors.Is(err, ErrDecompressionFailed) ||
		errors.Is(err, ErrFrameTooLarge)
}
