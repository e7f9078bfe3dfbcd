package schema

import (
	"regexp"
	"strconv"
)

// uuidPattern matches the canonical 8-4-4-4-12 hex form.
var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// StringSchema validates string values with optional length, pattern, and
// format constraints.
type StringSchema struct {
	minLen  int
	maxLen  int
	hasMin  bool
	hasMax  bool
	pattern *regexp.Regexp
	uuid    bool
}

// String creates a validator that accepts string values.
func String() *StringSchema {
	return &StringSchema{}
}

// Min requires the string to be at least n characters long.
func (s *StringSchema) Min(n int) *StringSchema {
	c := *s
	c.minLen, c.hasMin = n, true
	return &c
}

// Max requires the string to be at most n characters long.
func (s *StringSchema) Max(n int) *StringSchema {
	c := *s
	c.maxLen, c.hasMax = n, true
	return &c
}

// NonEmpty requires the string to have at least one character.
func (s *StringSchema) NonEmpty() *StringSchema {
	return s.Min(1)
}

// Pattern requires the string to match the given regular expression.
func (s *StringSchema) Pattern(re *regexp.Regexp) *StringSchema {
	c := *s
	c.pattern = re
	return &c
}

// UUID requires the string to be a canonically formatted UUID.
func (s *StringSchema) UUID() *StringSchema {
	c := *s
	c.uuid = true
	return &c
}

// Validate implements the Validator interface.
func (s *StringSchema) Validate(raw any) (any, Issues) {
	str, ok := raw.(string)
	if !ok {
		return nil, fail("", "type", "expected string, got %T", raw)
	}
	if s.hasMin && len(str) < s.minLen {
		return nil, fail("", "min", "must be at least %d characters", s.minLen)
	}
	if s.hasMax && len(str) > s.maxLen {
		return nil, fail("", "max", "must be at most %d characters", s.maxLen)
	}
	if s.pattern != nil && !s.pattern.MatchString(str) {
		return nil, fail("", "pattern", "must match %s", s.pattern.String())
	}
	if s.uuid && !uuidPattern.MatchString(str) {
		return nil, fail("", "uuid", "must be a valid UUID")
	}
	return str, nil
}

// IntSchema validates integer values. String inputs are coerced, since path
// and query parameters always arrive as text. JSON numbers arrive as float64
// and are accepted when integral.
type IntSchema struct {
	min    int64
	max    int64
	hasMin bool
	hasMax bool
}

// Int creates a validator that accepts integer values.
func Int() *IntSchema {
	return &IntSchema{}
}

// Min requires the value to be at least n.
func (s *IntSchema) Min(n int64) *IntSchema {
	c := *s
	c.min, c.hasMin = n, true
	return &c
}

// Max requires the value to be at most n.
func (s *IntSchema) Max(n int64) *IntSchema {
	c := *s
	c.max, c.hasMax = n, true
	return &c
}

// Validate implements the Validator interface.
func (s *IntSchema) Validate(raw any) (any, Issues) {
	var n int64
	switch v := raw.(type) {
	case int:
		n = int64(v)
	case int64:
		n = v
	case float64:
		if v != float64(int64(v)) {
			return nil, fail("", "type", "expected integer, got %v", v)
		}
		n = int64(v)
	case string:
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fail("", "type", "expected integer, got %q", v)
		}
		n = parsed
	default:
		return nil, fail("", "type", "expected integer, got %T", raw)
	}
	if s.hasMin && n < s.min {
		return nil, fail("", "min", "must be at least %d", s.min)
	}
	if s.hasMax && n > s.max {
		return nil, fail("", "max", "must be at most %d", s.max)
	}
	return n, nil
}

// FloatSchema validates floating-point values, coercing from strings and
// integer inputs.
type FloatSchema struct {
	min    float64
	max    float64
	hasMin bool
	hasMax bool
}

// Float creates a validator that accepts floating-point values.
func Float() *FloatSchema {
	return &FloatSchema{}
}

// Min requires the value to be at least n.
func (s *FloatSchema) Min(n float64) *FloatSchema {
	c := *s
	c.min, c.hasMin = n, true
	return &c
}

// Max requires the value to be at most n.
func (s *FloatSchema) Max(n float64) *FloatSchema {
	c := *s
	c.max, c.hasMax = n, true
	return &c
}

// Validate implements the Validator interface.
func (s *FloatSchema) Validate(raw any) (any, Issues) {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fail("", "type", "expected number, got %q", v)
		}
		f = parsed
	default:
		return nil, fail("", "type", "expected number, got %T", raw)
	}
	if s.hasMin && f < s.min {
		return nil, fail("", "min", "must be at least %v", s.min)
	}
	if s.hasMax && f > s.max {
		return nil, fail("", "max", "must be at most %v", s.max)
	}
	return f, nil
}

// BoolSchema validates boolean values, coercing the usual textual encodings.
type BoolSchema struct{}

// Bool creates a validator that accepts boolean values.
func Bool() *BoolSchema {
	return &BoolSchema{}
}

// Validate implements the Validator interface.
func (s *BoolSchema) Validate(raw any) (any, Issues) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		switch v {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		}
		return nil, fail("", "type", "expected boolean, got %q", v)
	default:
		return nil, fail("", "type", "expected boolean, got %T", raw)
	}
}

// EnumSchema validates that a string is one of a fixed set of values.
type EnumSchema struct {
	allowed []string
}

// Enum creates a validator that accepts only the listed string values.
func Enum(values ...string) *EnumSchema {
	return &EnumSchema{allowed: values}
}

// Validate implements the Validator interface.
func (s *EnumSchema) Validate(raw any) (any, Issues) {
	str, ok := raw.(string)
	if !ok {
		return nil, fail("", "type", "expected string, got %T", raw)
	}
	for _, v := range s.allowed {
		if str == v {
			return str, nil
		}
	}
	return nil, fail("", "enum", "must be one of %v", s.allowed)
}

// AnySchema accepts any value unchanged.
type AnySchema struct{}

// Any creates a validator that accepts any value.
func Any() *AnySchema {
	return &AnySchema{}
}

// Validate implements the Validator interface.
func (s *AnySchema) Validate(raw any) (any, Issues) {
	return raw, nil
}

// OptionalSchema wraps another validator and accepts a missing (nil) value.
type OptionalSchema struct {
	inner Validator
}

// Optional wraps v so that a missing value passes validation as nil.
func Optional(v Validator) *OptionalSchema {
	return &OptionalSchema{inner: v}
}

// Validate implements the Validator interface.
func (s *OptionalSchema) Validate(raw any) (any, Issues) {
	if raw == nil {
		return nil, nil
	}
	return s.inner.Validate(raw)
}
