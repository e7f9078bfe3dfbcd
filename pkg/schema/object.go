package schema

import (
	"sort"
	"strconv"
)

// Fields maps field names to their validators.
type Fields map[string]Validator

// ObjectSchema validates a structured record with named fields. Unknown
// input keys are dropped; missing non-optional fields are reported as
// issues. Field validation order is deterministic (sorted by name) so issue
// lists are stable across runs.
type ObjectSchema struct {
	fields Fields
	order  []string
}

// Object creates a validator for a record with the given named fields.
func Object(fields Fields) *ObjectSchema {
	order := make([]string, 0, len(fields))
	for name := range fields {
		order = append(order, name)
	}
	sort.Strings(order)
	return &ObjectSchema{fields: fields, order: order}
}

// Extend returns a new object schema validating the union of the receiver's
// and other's fields. On a field-name collision the field from other wins.
// Neither input schema is modified.
func (s *ObjectSchema) Extend(other *ObjectSchema) *ObjectSchema {
	merged := make(Fields, len(s.fields)+len(other.fields))
	for name, v := range s.fields {
		merged[name] = v
	}
	for name, v := range other.fields {
		merged[name] = v
	}
	return Object(merged)
}

// Field returns the validator for a named field, if present.
func (s *ObjectSchema) Field(name string) (Validator, bool) {
	v, ok := s.fields[name]
	return v, ok
}

// Validate implements the Validator interface. The raw value must be a
// map[string]any or map[string]string record. The typed output is a
// map[string]any holding each field's validated value.
func (s *ObjectSchema) Validate(raw any) (any, Issues) {
	record, issues := asRecord(raw)
	if issues != nil {
		return nil, issues
	}

	out := make(map[string]any, len(s.order))
	var all Issues
	for _, name := range s.order {
		v := s.fields[name]
		value, present := record[name]
		if !present {
			if _, optional := v.(*OptionalSchema); optional {
				continue
			}
			all = append(all, Issue{Path: name, Code: "required", Message: "is required"})
			continue
		}
		typed, fieldIssues := v.Validate(value)
		if fieldIssues != nil {
			all = append(all, fieldIssues.prefix(name)...)
			continue
		}
		out[name] = typed
	}
	if all != nil {
		return nil, all
	}
	return out, nil
}

// asRecord converts the supported record encodings to map[string]any.
func asRecord(raw any) (map[string]any, Issues) {
	switch v := raw.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	case map[string]string:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = val
		}
		return out, nil
	default:
		return nil, fail("", "type", "expected object, got %T", raw)
	}
}

// ListSchema validates a sequence of values against an element validator.
// A scalar input is coerced into a single-element list, matching the
// optional-scalar-or-list encoding of repeated query parameters.
type ListSchema struct {
	elem   Validator
	minLen int
	maxLen int
	hasMin bool
	hasMax bool
}

// List creates a validator for a sequence whose elements satisfy elem.
func List(elem Validator) *ListSchema {
	return &ListSchema{elem: elem}
}

// Min requires the list to contain at least n elements.
func (s *ListSchema) Min(n int) *ListSchema {
	c := *s
	c.minLen, c.hasMin = n, true
	return &c
}

// Max requires the list to contain at most n elements.
func (s *ListSchema) Max(n int) *ListSchema {
	c := *s
	c.maxLen, c.hasMax = n, true
	return &c
}

// Validate implements the Validator interface.
func (s *ListSchema) Validate(raw any) (any, Issues) {
	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case []string:
		items = make([]any, len(v))
		for i, str := range v {
			items[i] = str
		}
	default:
		// Scalar-or-list encoding: a single value is a one-element list.
		items = []any{raw}
	}

	if s.hasMin && len(items) < s.minLen {
		return nil, fail("", "min", "must contain at least %d elements", s.minLen)
	}
	if s.hasMax && len(items) > s.maxLen {
		return nil, fail("", "max", "must contain at most %d elements", s.maxLen)
	}

	out := make([]any, 0, len(items))
	var all Issues
	for i, item := range items {
		typed, issues := s.elem.Validate(item)
		if issues != nil {
			all = append(all, issues.prefix(strconv.Itoa(i))...)
			continue
		}
		out = append(out, typed)
	}
	if all != nil {
		return nil, all
	}
	return out, nil
}
