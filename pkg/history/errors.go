package history

import (
	"fmt"

	"emperror.dev/errors"
)

const (
	ErrEmptyValue    = errors.Sentinel("empty value")
	ErrMissingField  = errors.Sentinel("missing field")
	ErrMissingColumn = errors.Sentinel("missing column")
	ErrInvalidCPI    = errors.Sentinel("cpi must be a finite non-negative number")
	ErrUnknownMode   = errors.Sentinel("unknown read mode")
)

// ParseError reports a record that could not be converted into a Sample.
// Row is the 1-based data row number (the header is row 0).
type ParseError struct {
	Row   int
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("row %d: %v", e.Row, e.Err)
	}
	if e.Row == 0 {
		return fmt.Sprintf("header: field %q: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("row %d: field %q: invalid value %q: %v", e.Row, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// SourceError reports a source that exists but could not be read.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err is or wraps a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
