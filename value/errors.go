package value

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for value access and conversion.
var (
	// ErrNoSuchValue is returned when a row or object lookup names a
	// column that does not exist.
	ErrNoSuchValue = errors.New("mappa: no such value")

	// ErrConvert is returned when a value cannot be converted to the
	// requested Go type.
	ErrConvert = errors.New("mappa: value conversion failed")
)

// TypeMismatchError reports a conversion attempt against an incompatible
// value kind.
type TypeMismatchError struct {
	Expected string // Go type or kind name that was requested
	Found    Kind   // Kind actually stored
	Index    int    // Element index for array and list payloads, -1 otherwise
}

// Error returns the error string.
func (e *TypeMismatchError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("mappa: type mismatch at index %d: expected %s, found %s", e.Index, e.Expected, e.Found)
	}
	return fmt.Sprintf("mappa: type mismatch: expected %s, found %s", e.Expected, e.Found)
}

// Is reports whether the target error matches TypeMismatchError.
func (e *TypeMismatchError) Is(err error) bool {
	return err == ErrConvert
}

// NewTypeMismatchError returns a new TypeMismatchError.
func NewTypeMismatchError(expected string, found Kind) *TypeMismatchError {
	return &TypeMismatchError{Expected: expected, Found: found, Index: -1}
}

// IsTypeMismatch returns true if the error is a TypeMismatchError.
func IsTypeMismatch(err error) bool {
	if err == nil {
		return false
	}
	var e *TypeMismatchError
	return errors.As(err, &e)
}

// ParseError reports a failed textual parse into a typed target.
type ParseError struct {
	Input  string // Text that failed to parse
	Target string // Go type that was requested
	Err    error  // Underlying parse error, if any
}

// Error returns the error string.
func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mappa: cannot parse %q as %s: %v", e.Input, e.Target, e.Err)
	}
	return fmt.Sprintf("mappa: cannot parse %q as %s", e.Input, e.Target)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches ParseError.
func (e *ParseError) Is(err error) bool {
	return err == ErrConvert
}

// NewParseError returns a new ParseError.
func NewParseError(input, target string, err error) *ParseError {
	return &ParseError{Input: input, Target: target, Err: err}
}

// IsParseError returns true if the error is a ParseError.
func IsParseError(err error) bool {
	if err == nil {
		return false
	}
	var e *ParseError
	return errors.As(err, &e)
}

// NoSuchValueError reports a lookup of a missing column or key.
type NoSuchValueError struct {
	Name string
}

// Error returns the error string.
func (e *NoSuchValueError) Error() string {
	return fmt.Sprintf("mappa: no such value %q", e.Name)
}

// Is reports whether the target error matches NoSuchValueError.
func (e *NoSuchValueError) Is(err error) bool {
	return err == ErrNoSuchValue
}

// IsNoSuchValue returns true if the error is a NoSuchValueError.
func IsNoSuchValue(err error) bool {
	if err == nil {
		return false
	}
	var e *NoSuchValueError
	return errors.As(err, &e) || errors.Is(err, ErrNoSuchValue)
}

// IndexOutOfBoundsError reports a positional access past the end of a
// row or list.
type IndexOutOfBoundsError struct {
	Index int
	Len   int
}

// Error returns the error string.
func (e *IndexOutOfBoundsError) Error() string {
	return fmt.Sprintf("mappa: index %d out of bounds (len %d)", e.Index, e.Len)
}

// IsIndexOutOfBounds returns true if the error is an IndexOutOfBoundsError.
func IsIndexOutOfBounds(err error) bool {
	if err == nil {
		return false
	}
	var e *IndexOutOfBoundsError
	return errors.As(err, &e)
}
