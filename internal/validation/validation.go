// Package validation checks user-supplied paths and cross-reference ids
// before they reach the parser, the exporter or the query server.
package validation

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"
)

// Resource limits for user input (CWE-400).
const (
	// MaxFileSize is the largest input file accepted (256 MB).
	MaxFileSize = 256 << 20
	// MaxPathLength is the maximum allowed path length.
	MaxPathLength = 4096
	// MaxXrefLength bounds an xref including its @ delimiters.
	MaxXrefLength = 64
)

// Common validation errors.
var (
	ErrEmptyPath        = errors.New("path cannot be empty")
	ErrPathTooLong      = errors.New("path too long")
	ErrInvalidCharacter = errors.New("invalid character in path")
	ErrFileTooLarge     = errors.New("file too large")
	ErrNotRegular       = errors.New("not a regular file")
	ErrInvalidXref      = errors.New("invalid xref")
)

// ValidatePath rejects empty or overlong paths and paths carrying null bytes
// or control characters.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if len(path) > MaxPathLength {
		return ErrPathTooLong
	}
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: null byte not allowed", ErrInvalidCharacter)
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidCharacter)
		}
	}
	return nil
}

// ValidateInputFile validates path and checks that it names a regular file
// no larger than MaxFileSize.
func ValidateInputFile(path string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrNotRegular, path)
	}
	if info.Size() > MaxFileSize {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, info.Size(), MaxFileSize)
	}
	return nil
}

// ValidateXref accepts "@I1@" as well as the bare "I1" form. The id may not
// contain whitespace, control characters or further @ signs.
func ValidateXref(xref string) error {
	id := strings.TrimSuffix(strings.TrimPrefix(xref, "@"), "@")
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidXref)
	}
	if len(xref) > MaxXrefLength {
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidXref, MaxXrefLength)
	}
	if strings.HasPrefix(xref, "@") != strings.HasSuffix(xref, "@") || len(xref) == 1 {
		return fmt.Errorf("%w: unbalanced @ in %q", ErrInvalidXref, xref)
	}
	for _, r := range id {
		if r == '@' || unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("%w: character %q not allowed", ErrInvalidXref, r)
		}
	}
	return nil
}

// NormalizeXref trims surrounding blanks, validates the xref and returns it
// in its delimited form, so "I1" and "@I1@" name the same record.
func NormalizeXref(xref string) (string, error) {
	xref = strings.TrimSpace(xref)
	if err := ValidateXref(xref); err != nil {
		return "", err
	}
	if strings.HasPrefix(xref, "@") {
		return xref, nil
	}
	return "@" + xref + "@", nil
}
