package statusline

import "fmt"

// MalformedInputError reports a payload that cannot produce a status line:
// it is empty, is not JSON, or lacks a required field.
type MalformedInputError struct {
	// Field names the offending key; empty when the payload as a whole
	// could not be decoded.
	Field string
	Err   error
}

func (e *MalformedInputError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("malformed input: %v", e.Err)
	}
	return fmt.Sprintf("malformed input: %s: %v", e.Field, e.Err)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

func malformed(field string, err error) error {
	return &MalformedInputError{Field: field, Err: err}
}
