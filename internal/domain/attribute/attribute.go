// Package attribute models loosely typed preference and listing fields
// as a key to variant map with explicit present/absent semantics.
package attribute

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/kailas-cloud/matchdex/internal/domain"
)

// Kind discriminates the variant held by a Value.
type Kind uint8

const (
	// KindNumber is a numeric value.
	KindNumber Kind = iota + 1
	// KindString is a text value (may still hold a number, e.g. "450,000").
	KindString
	// KindList is an ordered list of strings.
	KindList
)

// Value is an immutable tagged variant.
type Value struct {
	kind Kind
	num  float64
	str  string
	list []string
}

// Number creates a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// String creates a text value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// List creates a list value.
func List(items ...string) Value { return Value{kind: KindList, list: slices.Clone(items)} }

// Kind returns the variant kind.
func (v Value) Kind() Kind { return v.kind }

// Float interprets the value as a number.
// ok is false when the value carries no signal (empty string or empty list).
// NaN and infinities are data errors: they defeat every comparison.
func (v Value) Float() (f float64, ok bool, err error) {
	switch v.kind {
	case KindNumber:
		if !finite(v.num) {
			return 0, true, fmt.Errorf("non-finite number %v: %w", v.num, domain.ErrDataError)
		}
		return v.num, true, nil
	case KindString:
		cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(v.str))
		if cleaned == "" {
			return 0, false, nil
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil || !finite(f) {
			return 0, true, fmt.Errorf("parse %q: %w", v.str, domain.ErrDataError)
		}
		return f, true, nil
	case KindList:
		if len(v.list) == 0 {
			return 0, false, nil
		}
		return 0, true, fmt.Errorf("list is not numeric: %w", domain.ErrDataError)
	default:
		return 0, false, nil
	}
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// Text renders the value as a single string.
func (v Value) Text() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindString:
		return v.str
	case KindList:
		return strings.Join(v.list, ", ")
	default:
		return ""
	}
}

// Strings returns the value as a list. A plain string becomes a one-element list.
func (v Value) Strings() []string {
	switch v.kind {
	case KindList:
		return slices.Clone(v.list)
	case KindString:
		if s := strings.TrimSpace(v.str); s != "" {
			return []string{s}
		}
	case KindNumber:
		return []string{v.Text()}
	}
	return nil
}

// MarshalJSON encodes the variant as a JSON number, string or array.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(v.num)
	case KindString:
		return json.Marshal(v.str)
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes a JSON number, string, bool or array of scalars.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode attribute: %w", err)
	}
	parsed, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// FromAny converts a decoded JSON/YAML scalar or list into a Value.
func FromAny(raw any) (Value, error) {
	switch val := raw.(type) {
	case nil:
		return Value{}, nil
	case float64:
		return Number(val), nil
	case float32:
		return Number(float64(val)), nil
	case int:
		return Number(float64(val)), nil
	case int64:
		return Number(float64(val)), nil
	case bool:
		return String(strconv.FormatBool(val)), nil
	case string:
		return String(val), nil
	case []string:
		return List(val...), nil
	case []any:
		items := make([]string, 0, len(val))
		for _, item := range val {
			if item == nil {
				continue
			}
			items = append(items, fmt.Sprint(item))
		}
		return List(items...), nil
	default:
		return Value{}, fmt.Errorf("unsupported attribute type %T", raw)
	}
}
