// Package schema provides the validator capability used by the endpoint
// framework. A Validator checks and converts a raw input value into its typed
// form, or reports a structured list of issues. Validators for path and query
// inputs coerce from strings, since those channels only carry text.
//
// Constraint methods (Min, Max, Pattern, ...) return a derived validator and
// never modify their receiver, so a schema shared between endpoints can be
// further constrained by one without affecting the other.
package schema

import (
	"fmt"
	"strings"
)

// Issue describes a single validation failure.
type Issue struct {
	// Path locates the failing value, e.g. "user.email" or "tags.2".
	// Empty for issues about the root value.
	Path string `json:"path"`

	// Code is a stable machine-readable identifier, e.g. "required",
	// "type", "min".
	Code string `json:"code"`

	// Message is a human-readable description of the failure.
	Message string `json:"message"`
}

// String returns a compact "path: message" rendering of the issue.
func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// Issues is the structured failure list produced by a Validator.
// It implements the error interface so validators can be composed with
// ordinary error plumbing.
type Issues []Issue

// Error implements the error interface.
func (e Issues) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(e))
	for i, issue := range e {
		parts[i] = issue.String()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// prefix returns a copy of the issues with every path nested under parent.
func (e Issues) prefix(parent string) Issues {
	out := make(Issues, len(e))
	for i, issue := range e {
		if issue.Path == "" {
			issue.Path = parent
		} else {
			issue.Path = parent + "." + issue.Path
		}
		out[i] = issue
	}
	return out
}

// Validator checks a raw input value and returns its typed form.
// On failure the returned Issues is non-empty and the value is nil.
// A nil Issues result means the value passed validation.
type Validator interface {
	Validate(raw any) (any, Issues)
}

// fail builds a single-issue failure list.
func fail(path, code, format string, args ...any) Issues {
	return Issues{{Path: path, Code: code, Message: fmt.Sprintf(format, args...)}}
}
