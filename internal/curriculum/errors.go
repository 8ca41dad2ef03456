package curriculum

import (
	"errors"
	"fmt"
)

// ErrUnknownFieldOfStudy is returned when a course row references a field-of-study
// code that the page's filter does not list.
var ErrUnknownFieldOfStudy = errors.New("unknown field of study")

var errNotDecimal = errors.New("not a decimal number")

// StructureError reports that the page does not have the expected shape at Level.
type StructureError struct {
	Level  string
	Detail string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("unexpected page structure at %s: %s", e.Level, e.Detail)
}

func structureErr(level, format string, args ...interface{}) *StructureError {
	return &StructureError{Level: level, Detail: fmt.Sprintf(format, args...)}
}

// CreditsError reports a credit cell that is not a number once period markers are removed.
type CreditsError struct {
	Raw string
	Err error
}

func (e *CreditsError) Error() string {
	return fmt.Sprintf("invalid credits %q: %v", e.Raw, e.Err)
}

func (e *CreditsError) Unwrap() error {
	return e.Err
}
