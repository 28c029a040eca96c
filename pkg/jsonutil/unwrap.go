// Package jsonutil smooths over the loosely shaped JSON that document
// analyzers emit. Scalar fields frequently arrive wrapped in a single-key
// object ({"valueString": "Guest"} instead of "Guest"); Unwrap peels that
// layer off regardless of which key the analyzer chose.
package jsonutil

import (
	"fmt"
	"strconv"
)

// Unwrap returns the payload inside a single-key container. An empty map
// yields nil. When the map carries preferredKey that value wins; otherwise a
// one-entry map yields its sole value. Anything else passes through as-is.
func Unwrap(value any, preferredKey string) any {
	m, ok := value.(map[string]any)
	if !ok {
		return value
	}
	if len(m) == 0 {
		return nil
	}
	if preferredKey != "" {
		if v, ok := m[preferredKey]; ok {
			return v
		}
	}
	if len(m) == 1 {
		for _, v := range m {
			return v
		}
	}
	return value
}

// UnwrapString unwraps value and coerces the result to a string. Numeric and
// boolean payloads are formatted; nil becomes the empty string.
func UnwrapString(value any, preferredKey string) string {
	switch v := Unwrap(value, preferredKey).(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// UnwrapFloat unwraps value and coerces the result to a float64. String
// payloads are parsed; anything unparseable reports ok=false.
func UnwrapFloat(value any, preferredKey string) (float64, bool) {
	switch v := Unwrap(value, preferredKey).(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// UnwrapBool unwraps value and coerces the result to a bool. Accepts native
// booleans and the strings strconv.ParseBool understands.
func UnwrapBool(value any, preferredKey string) (bool, bool) {
	switch v := Unwrap(value, preferredKey).(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, false
		}
		return b, true
	default:
		return false, false
	}
}
