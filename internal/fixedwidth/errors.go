package fixedwidth

import "fmt"

// TruncatedLineError is returned when a line is shorter than its schema.
type TruncatedLineError struct {
	Want int
	Got  int
}

func (e *TruncatedLineError) Error() string {
	return fmt.Sprintf("truncated line: want at least %d characters, got %d", e.Want, e.Got)
}

// FieldError reports a field whose content cannot be converted to its kind.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: invalid value %q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }
