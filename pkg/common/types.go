// Package common provides shared types used across the endpoint framework.
package common

import (
	"context"
	"net/http"
)

// Attrs is the runtime context accumulated across a middleware chain.
// It is mutated by replacement only: each middleware step that contributes
// an increment produces a new merged map, so a map captured at one chain
// position is never changed by a later position.
type Attrs map[string]any

// Merge returns a new Attrs containing all entries of a overlaid with all
// entries of inc. Entries in inc win on key collisions. Neither input is
// modified.
func (a Attrs) Merge(inc Attrs) Attrs {
	merged := make(Attrs, len(a)+len(inc))
	for k, v := range a {
		merged[k] = v
	}
	for k, v := range inc {
		merged[k] = v
	}
	return merged
}

// Request is the per-invocation view handed to every middleware and to the
// terminal handler. Params, Query, Body and Meta hold validated values once
// the corresponding validation stage has run; downstream code never sees the
// raw inputs. Context is the runtime context built up by the chain.
type Request struct {
	// HTTP is the original request as received from the host transport.
	HTTP *http.Request

	// Params holds the validated path parameters.
	Params any

	// Query holds the validated query values.
	Query any

	// Body holds the validated request body.
	Body any

	// Meta holds the endpoint's metadata value, validated if a metadata
	// validator is configured. Nil when no metadata was set.
	Meta any

	// Context is the runtime context accumulated across the middleware
	// chain. It starts empty on every invocation.
	Context Attrs
}

// Next is the continuation passed to a middleware. Invoking it runs the rest
// of the chain and eventually the terminal handler. The increment, if
// non-nil, is merged into the request's runtime context before the next
// position executes. The returned value is whatever the remainder of the
// chain produced.
type Next func(inc Attrs) (any, error)

// Middleware is one position in the chain. It must do exactly one of:
// invoke next (optionally wrapping or inspecting the result before returning
// it), return a value directly without invoking next to short-circuit the
// chain, or return an error to abort the invocation.
type Middleware func(ctx context.Context, req *Request, next Next) (any, error)

// Handler is the terminal position of a chain. The returned value is
// normalized into a response by the endpoint layer; returning a *Response
// bypasses normalization.
type Handler func(ctx context.Context, req *Request) (any, error)

// Response is an explicit response value. Handlers and middleware may return
// one to take full control of status, headers and body; the endpoint layer
// passes it through unchanged.
type Response struct {
	Status int
	Header http.Header
	Body   any
}

// NewResponse creates a Response with the given status code and an empty
// header map.
func NewResponse(status int) *Response {
	return &Response{
		Status: status,
		Header: make(http.Header),
	}
}

// WithHeader sets a header on the response and returns it for chaining.
func (r *Response) WithHeader(key, value string) *Response {
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	r.Header.Set(key, value)
	return r
}

// WithBody sets the response body and returns it for chaining.
func (r *Response) WithBody(body any) *Response {
	r.Body = body
	return r
}
