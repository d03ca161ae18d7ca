package validation

import (
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"
)

// Rule checks one field value. present is false when the field was absent
// from the request; value is the raw query string or decoded JSON value.
// A non-empty return is the client-visible failure message; it must
// describe the expectation, never echo the submitted value.
type Rule func(value interface{}, present bool) string

// Required fails when the field is absent or empty
func Required() Rule {
	return func(value interface{}, present bool) string {
		if !present {
			return "is required"
		}
		if s, ok := value.(string); ok && s == "" {
			return "is required"
		}
		return ""
	}
}

// String requires a string value no longer than maxLen (0 = no bound)
func String(maxLen int) Rule {
	return func(value interface{}, present bool) string {
		if !present {
			return ""
		}
		s, ok := value.(string)
		if !ok {
			return "must be a string"
		}
		if maxLen > 0 && len(s) > maxLen {
			return fmt.Sprintf("must be at most %d characters", maxLen)
		}
		return ""
	}
}

// Int requires an integer within [min, max]. Query values arrive as
// strings and are parsed; JSON numbers decode as float64.
func Int(min, max int64) Rule {
	return func(value interface{}, present bool) string {
		if !present {
			return ""
		}
		var n int64
		switch v := value.(type) {
		case string:
			parsed, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return "must be an integer"
			}
			n = parsed
		case float64:
			if v != math.Trunc(v) {
				return "must be an integer"
			}
			n = int64(v)
		default:
			return "must be an integer"
		}
		if n < min || n > max {
			return fmt.Sprintf("must be between %d and %d", min, max)
		}
		return ""
	}
}

// Enum requires the value to be one of the allowed strings
func Enum(allowed ...string) Rule {
	return func(value interface{}, present bool) string {
		if !present {
			return ""
		}
		s, ok := value.(string)
		if !ok {
			return "must be a string"
		}
		for _, a := range allowed {
			if s == a {
				return ""
			}
		}
		return "must be one of the allowed values"
	}
}

// UUID requires a canonical UUID string
func UUID() Rule {
	return func(value interface{}, present bool) string {
		if !present {
			return ""
		}
		s, ok := value.(string)
		if !ok {
			return "must be a string"
		}
		if _, err := uuid.Parse(s); err != nil {
			return "must be a valid UUID"
		}
		return ""
	}
}

// Bool requires a boolean value ("true"/"false" for query params)
func Bool() Rule {
	return func(value interface{}, present bool) string {
		if !present {
			return ""
		}
		switch v := value.(type) {
		case bool:
			return ""
		case string:
			if _, err := strconv.ParseBool(v); err != nil {
				return "must be a boolean"
			}
			return ""
		default:
			return "must be a boolean"
		}
	}
}
