package ir

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"unicode/utf16"
)

// Value is a sealed interface over literal values carried by the IR.
// Only Null, String, Integer, Boolean, Decimal, Array and Object implement it.
type Value interface {
	irValue()
}

// Null is the absent value.
type Null struct{}

func (Null) irValue() {}

// String is a string literal.
type String string

func (String) irValue() {}

// Integer is a 64-bit integer literal.
type Integer int64

func (Integer) irValue() {}

// Boolean is a boolean literal.
type Boolean bool

func (Boolean) irValue() {}

// Decimal is an exact decimal literal kept as its textual form.
// Construct it with ParseDecimal so the text is always well formed.
type Decimal string

func (Decimal) irValue() {}

// Array is an ordered list of values.
type Array []Value

func (Array) irValue() {}

// Object maps string keys to values. Use SortedKeys for deterministic iteration.
type Object map[string]Value

func (Object) irValue() {}

var decimalPattern = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?$`)

// ParseDecimal validates s as a plain decimal numeral (no exponent, no
// leading zeros, optional fraction) and returns it as a Decimal.
func ParseDecimal(s string) (Decimal, error) {
	if !decimalPattern.MatchString(s) {
		return "", fmt.Errorf("invalid decimal literal %q", s)
	}
	return Decimal(s), nil
}

// FromGo converts a decoded Go value (as produced by encoding/json or
// yaml.v3) into a Value. Floats are converted to Decimal using the shortest
// exact representation; NaN and infinities are rejected.
func FromGo(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case bool:
		return Boolean(val), nil
	case int:
		return Integer(val), nil
	case int64:
		return Integer(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d out of range", val)
		}
		return Integer(val), nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, fmt.Errorf("non-finite number %v", val)
		}
		return ParseDecimal(strconv.FormatFloat(val, 'f', -1, 64))
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			conv, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = conv
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			conv, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			obj[k] = conv
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported literal type: %T", v)
	}
}

// SortedKeys returns keys in RFC 8785 order (UTF-16 code units).
// Go's native string ordering compares UTF-8 bytes, which differs for
// characters outside the Basic Multilingual Plane.
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}
