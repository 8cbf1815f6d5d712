package attribute

import (
	"fmt"
	"maps"
	"slices"
)

// Set is an immutable map of named attribute values.
type Set struct {
	values map[string]Value
}

// NewSet copies values into a Set. Zero-kind values are dropped.
func NewSet(values map[string]Value) Set {
	m := make(map[string]Value, len(values))
	for k, v := range values {
		if v.kind == 0 {
			continue
		}
		m[k] = v
	}
	return Set{values: m}
}

// FromMap builds a Set from a decoded JSON/YAML object.
func FromMap(raw map[string]any) (Set, error) {
	m := make(map[string]Value, len(raw))
	for k, r := range raw {
		v, err := FromAny(r)
		if err != nil {
			return Set{}, fmt.Errorf("attribute %q: %w", k, err)
		}
		m[k] = v
	}
	return NewSet(m), nil
}

// Get returns the value for key and whether it is present.
func (s Set) Get(key string) (Value, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Float returns the numeric value for key.
// present is false when the key is missing or carries no signal;
// err wraps domain.ErrDataError when a present value does not parse.
func (s Set) Float(key string) (f float64, present bool, err error) {
	v, ok := s.values[key]
	if !ok {
		return 0, false, nil
	}
	return v.Float()
}

// Text returns the string form of key, or "" when absent.
func (s Set) Text(key string) string {
	v, ok := s.values[key]
	if !ok {
		return ""
	}
	return v.Text()
}

// Strings returns key as a list, or nil when absent.
func (s Set) Strings(key string) []string {
	v, ok := s.values[key]
	if !ok {
		return nil
	}
	return v.Strings()
}

// Has reports whether key is present.
func (s Set) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Keys returns the attribute names in sorted order.
func (s Set) Keys() []string {
	return slices.Sorted(maps.Keys(s.values))
}

// Len returns the number of attributes.
func (s Set) Len() int { return len(s.values) }

// Without returns a copy of the set with key removed.
func (s Set) Without(key string) Set {
	m := maps.Clone(s.values)
	delete(m, key)
	return Set{values: m}
}

// With returns a copy of the set with key set to v.
func (s Set) With(key string, v Value) Set {
	m := maps.Clone(s.values)
	if m == nil {
		m = make(map[string]Value, 1)
	}
	m[key] = v
	return Set{values: m}
}

// Map returns a copy of the underlying values.
func (s Set) Map() map[string]Value {
	return maps.Clone(s.values)
}
