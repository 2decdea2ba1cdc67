package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Typed errors below unwrap to one of these so callers
// can branch with errors.Is without caring about the details.
var (
	ErrDataUnavailable = errors.New("data unavailable")
	ErrSchemaMismatch  = errors.New("schema mismatch")
	ErrMalformed       = errors.New("malformed csv")
	ErrEmptyFile       = errors.New("file has no header row")

	errUnterminatedQuote = errors.New("unterminated quoted field")
)

// DataUnavailableError reports that no data source could be found
type DataUnavailableError struct {
	Expected string
	Searched []string
	Err      error
}

func (e *DataUnavailableError) Error() string {
	msg := fmt.Sprintf("data file not found, place it at %s", e.Expected)
	if len(e.Searched) > 1 {
		msg += fmt.Sprintf(" (searched: %s)", strings.Join(e.Searched, ", "))
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DataUnavailableError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrDataUnavailable, e.Err}
	}
	return []error{ErrDataUnavailable}
}

// SchemaError lists the columns that prevent a file from being loaded
type SchemaError struct {
	Source    string
	Missing   []string
	Duplicate []string
}

func (e *SchemaError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing columns: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Duplicate) > 0 {
		parts = append(parts, "duplicate columns: "+strings.Join(e.Duplicate, ", "))
	}
	return fmt.Sprintf("%s: %s", e.Source, strings.Join(parts, "; "))
}

func (e *SchemaError) Unwrap() error {
	return ErrSchemaMismatch
}

// ParseError locates a malformed cell or row. Line is 1-based and counts
// the header; Column is empty for row-level problems.
type ParseError struct {
	Source string
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("%s:%d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("%s:%d: column %s: invalid value %q: %v", e.Source, e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrMalformed, e.Err}
}
