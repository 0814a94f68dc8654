// Package fixedwidth decodes and encodes text records whose fields are
// identified by position and width rather than by delimiters.
package fixedwidth

import (
	"fmt"
)

// Kind controls how a field's raw characters are interpreted.
type Kind int

const (
	// Text fields are kept verbatim, padding included.
	Text Kind = iota
	// Int fields are trimmed and parsed as base-10 integers on access.
	Int
	// Float fields are trimmed and parsed as float64 on access.
	Float
	// Filler columns separate fields. They count toward the line width but
	// are not exposed in the decoded Record.
	Filler
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Int:
		return "int"
	case Float:
		return "float"
	case Filler:
		return "filler"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Field is one named column of a Schema.
type Field struct {
	Name  string
	Width int
	Kind  Kind
}

// Schema is an ordered list of fields. Widths sum to the expected line length.
type Schema struct {
	fields []Field
	index  map[string]int
	width  int
}

// NewSchema validates the field list and builds a Schema. Names must be
// unique among non-filler fields and every width must be positive.
func NewSchema(fields ...Field) (*Schema, error) {
	s := &Schema{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if f.Width <= 0 {
			return nil, fmt.Errorf("field %q: width must be positive, got %d", f.Name, f.Width)
		}
		if f.Kind != Filler {
			if f.Name == "" {
				return nil, fmt.Errorf("field %d: name is required", len(s.fields))
			}
			if _, dup := s.index[f.Name]; dup {
				return nil, fmt.Errorf("field %q: duplicate name", f.Name)
			}
			s.index[f.Name] = len(s.fields)
		}
		s.fields = append(s.fields, f)
		s.width += f.Width
	}
	return s, nil
}

// MustNewSchema is NewSchema for package-level schema literals.
func MustNewSchema(fields ...Field) *Schema {
	s, err := NewSchema(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Width returns the sum of all field widths.
func (s *Schema) Width() int { return s.width }

// Fields returns a copy of the field list in column order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Gap returns a filler field of the given width.
func Gap(width int) Field {
	return Field{Width: width, Kind: Filler}
}
