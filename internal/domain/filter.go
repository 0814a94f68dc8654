package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Box is a latitude/longitude rectangle. Edges are inclusive.
type Box struct {
	North float64 `json:"north"`
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
}

// Contains reports whether the point lies inside the box.
func (b Box) Contains(lat, lon float64) bool {
	return b.South <= lat && lat <= b.North && b.West <= lon && lon <= b.East
}

// ParseBox reads "north,west,south,east".
func ParseBox(s string) (Box, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Box{}, fmt.Errorf("box %q: want north,west,south,east", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Box{}, fmt.Errorf("box %q: %w", s, err)
		}
		v[i] = f
	}
	return Box{North: v[0], West: v[1], South: v[2], East: v[3]}, nil
}

// Criteria selects stations. Each dimension is a set of accepted values;
// an empty dimension accepts everything. Values within a dimension are
// alternatives, dimensions must all match.
type Criteria struct {
	Countries []string
	Elements  []string
	Boxes     []Box
}

// Located is implemented by both station record types.
type Located interface {
	CountryCode() string
	Coordinates() (lat, lon float64)
}

// Predicate decides whether a record belongs in a filter result.
type Predicate[T any] func(T) bool

// All combines predicates with logical AND. Nil predicates are skipped, so
// All() with no active predicates accepts every record.
func All[T any](preds ...Predicate[T]) Predicate[T] {
	active := make([]Predicate[T], 0, len(preds))
	for _, p := range preds {
		if p != nil {
			active = append(active, p)
		}
	}
	return func(v T) bool {
		for _, p := range active {
			if !p(v) {
				return false
			}
		}
		return true
	}
}

// CountryIn matches records whose country code is in codes. Codes are
// compared in upper case. Returns nil for an empty set.
func CountryIn[T Located](codes []string) Predicate[T] {
	if len(codes) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		set[strings.ToUpper(strings.TrimSpace(c))] = struct{}{}
	}
	return func(v T) bool {
		_, ok := set[v.CountryCode()]
		return ok
	}
}

// InAnyBox matches records inside at least one box. Returns nil for no boxes.
func InAnyBox[T Located](boxes []Box) Predicate[T] {
	if len(boxes) == 0 {
		return nil
	}
	return func(v T) bool {
		lat, lon := v.Coordinates()
		for _, b := range boxes {
			if b.Contains(lat, lon) {
				return true
			}
		}
		return false
	}
}

// ElementIn matches inventory records measuring one of elements, by exact
// comparison. Returns nil for an empty set.
func ElementIn(elements []string) Predicate[StationRecord] {
	if len(elements) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(elements))
	for _, e := range elements {
		set[e] = struct{}{}
	}
	return func(r StationRecord) bool {
		_, ok := set[r.Element]
		return ok
	}
}

// apply returns the records accepted by p, in their original order.
func apply[T any](records []T, p Predicate[T]) []T {
	out := make([]T, 0)
	for _, r := range records {
		if p(r) {
			out = append(out, r)
		}
	}
	return out
}
