package fixedwidth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// errBlank marks an all-blank numeric field.
var errBlank = errors.New("blank")

// Record is one decoded line: field name to the exact substring.
type Record struct {
	schema *Schema
	values map[string]string
}

// Decode splits line into the schema's fields. The line must be at least
// Width() bytes long; a trailing carriage return is ignored and anything
// beyond the schema width is discarded.
func Decode(schema *Schema, line string) (Record, error) {
	line = strings.TrimSuffix(line, "\r")
	if len(line) < schema.width {
		return Record{}, &TruncatedLineError{Want: schema.width, Got: len(line)}
	}

	values := make(map[string]string, len(schema.index))
	pos := 0
	for _, f := range schema.fields {
		raw := line[pos : pos+f.Width]
		pos += f.Width
		if f.Kind == Filler {
			continue
		}
		values[f.Name] = raw
	}
	return Record{schema: schema, values: values}, nil
}

// Text returns the raw, untrimmed content of a field.
func (r Record) Text(name string) string {
	return r.values[name]
}

// Int parses a field as a base-10 integer, ignoring surrounding spaces.
func (r Record) Int(name string) (int, error) {
	raw, err := r.numeric(name)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &FieldError{Field: name, Value: r.values[name], Err: err}
	}
	return v, nil
}

// Float parses a field as a float64, ignoring surrounding spaces.
func (r Record) Float(name string) (float64, error) {
	raw, err := r.numeric(name)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &FieldError{Field: name, Value: r.values[name], Err: err}
	}
	return v, nil
}

func (r Record) numeric(name string) (string, error) {
	raw, ok := r.values[name]
	if !ok {
		return "", &FieldError{Field: name, Err: errors.New("no such field")}
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", &FieldError{Field: name, Value: raw, Err: errBlank}
	}
	return trimmed, nil
}

// IsBlank reports whether err came from reading an all-blank numeric field.
func IsBlank(err error) bool {
	return errors.Is(err, errBlank)
}

// NewRecord builds a Record from field values, for use with Encode.
func NewRecord(schema *Schema, values map[string]string) Record {
	return Record{schema: schema, values: values}
}

// Encode writes a record back into its fixed-width form. Text fields must
// already have the field's exact width; numeric fields are right-aligned and
// space-padded; fillers are written as spaces.
func Encode(schema *Schema, r Record) (string, error) {
	var b strings.Builder
	b.Grow(schema.width)
	for _, f := range schema.fields {
		if f.Kind == Filler {
			b.WriteString(strings.Repeat(" ", f.Width))
			continue
		}
		v := r.values[f.Name]
		n := len(v)
		switch {
		case n == f.Width:
		case n < f.Width && f.Kind != Text:
			v = strings.Repeat(" ", f.Width-n) + v
		default:
			return "", fmt.Errorf("field %q: value %q does not fit width %d", f.Name, v, f.Width)
		}
		b.WriteString(v)
	}
	return b.String(), nil
}
