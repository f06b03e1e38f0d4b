// Package errors provides standardized error types and helpers for the pedigree codebase.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a record or resource was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrAmbiguous indicates a singular accessor had more than one candidate
	ErrAmbiguous = errors.New("ambiguous result")
	// ErrMalformed indicates a structurally broken line hierarchy
	ErrMalformed = errors.New("malformed hierarchy")
	// ErrUnsupported indicates an unsupported operation or format
	ErrUnsupported = errors.New("unsupported")
)

// NotFoundError represents a resource not found error with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "individual", "family", "record")
	ID       string // Identifier of the resource
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// AmbiguousError is returned by singular accessors (father, mother, family,
// common ancestor, ...) when two or more equally valid candidates exist.
// Callers wanting every candidate use the plural accessor instead.
type AmbiguousError struct {
	Subject string // Xref of the record the question was asked about
	What    string // What was asked for (e.g., "father", "parent family")
	Count   int    // Number of candidates found
}

func (e *AmbiguousError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("%s has %d candidates for %s", e.Subject, e.Count, e.What)
	}
	return fmt.Sprintf("%d candidates for %s", e.Count, e.What)
}

func (e *AmbiguousError) Unwrap() error {
	return ErrAmbiguous
}

// MalformedError reports an entry that cannot be placed in the line hierarchy
// (level skips, orphaned sub-lines, duplicate xref declarations).
type MalformedError struct {
	Index  int    // Zero-based position of the entry in the input stream
	Level  int    // Level of the offending entry
	Tag    string // Tag of the offending entry
	Reason string // What is wrong
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed entry %d (%d %s): %s", e.Index, e.Level, e.Tag, e.Reason)
}

func (e *MalformedError) Unwrap() error {
	return ErrMalformed
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "write", "open")
	Path      string // File/resource path involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ParseError represents a parsing or deserialization error
type ParseError struct {
	Format  string // Format being parsed (e.g., "GEDCOM", "XML")
	Path    string // File path, if applicable
	Line    int    // 1-based line number, 0 when unknown
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	where := e.Path
	if e.Line > 0 {
		if where != "" {
			where = fmt.Sprintf("%s:%d", where, e.Line)
		} else {
			where = fmt.Sprintf("line %d", e.Line)
		}
	}
	if where != "" {
		return fmt.Sprintf("failed to parse %s at %s: %s", e.Format, where, e.Message)
	}
	return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// UnsupportedError represents an unsupported feature or format
type UnsupportedError struct {
	Feature string // Feature or format that is unsupported
	Reason  string // Why it's not supported
	Err     error  // Underlying error, if any
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("unsupported %s", e.Feature)
}

func (e *UnsupportedError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrUnsupported
}

// Helper functions for creating common errors

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// NewAmbiguous creates an AmbiguousError
func NewAmbiguous(subject, what string, count int) *AmbiguousError {
	return &AmbiguousError{
		Subject: subject,
		What:    what,
		Count:   count,
	}
}

// NewMalformed creates a MalformedError
func NewMalformed(index, level int, tag, reason string) *MalformedError {
	return &MalformedError{
		Index:  index,
		Level:  level,
		Tag:    tag,
		Reason: reason,
	}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

// NewParse creates a ParseError
func NewParse(format string, line int, message string) *ParseError {
	return &ParseError{
		Format:  format,
		Line:    line,
		Message: message,
	}
}

// NewUnsupported creates an UnsupportedError
func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{
		Feature: feature,
		Reason:  reason,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
