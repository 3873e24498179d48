package survey

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord is matched by every error produced while parsing a
// serialized survey.
var ErrMalformedRecord = errors.New("malformed record")

// RecordError describes a survey record that could not be parsed.
type RecordError struct {
	Line   int    // 1-based line of the record, 0 if unknown
	Column string // Column header, empty for whole-record errors
	Err    error
}

func (e *RecordError) Error() string {
	switch {
	case e.Column != "":
		return fmt.Sprintf("%s: line %d, column %q: %s", ErrMalformedRecord, e.Line, e.Column, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("%s: line %d: %s", ErrMalformedRecord, e.Line, e.Err)
	default:
		return fmt.Sprintf("%s: %s", ErrMalformedRecord, e.Err)
	}
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

func (e *RecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}
