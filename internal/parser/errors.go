package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingFiles is returned when a line-coverage payload has no "files" key.
	ErrMissingFiles = errors.New(`missing required "files" key`)
	// ErrMissingField is returned when an entry lacks a required metric group.
	ErrMissingField = errors.New("missing required field")
	// ErrMalformedJSON wraps JSON syntax and type errors from the decoders.
	ErrMalformedJSON = errors.New("malformed coverage payload")
)

// StructuralError reports a payload that does not match the expected schema.
// File is the offending entry key, empty for top-level problems.
type StructuralError struct {
	File  string
	Field string
	Err   error
}

func (e *StructuralError) Error() string {
	switch {
	case e.File != "" && e.Field != "":
		return fmt.Sprintf("%s: %s: %v", e.File, e.Field, e.Err)
	case e.File != "":
		return fmt.Sprintf("%s: %v", e.File, e.Err)
	case e.Field != "":
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	default:
		return e.Err.Error()
	}
}

func (e *StructuralError) Unwrap() error {
	return e.Err
}
