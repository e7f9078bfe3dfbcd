package common

import (
	"context"
)

// Chain represents an ordered sequence of middleware
type Chain []Middleware

// NewChain creates a new middleware chain
func NewChain(middlewares ...Middleware) Chain {
	return middlewares
}

// Append returns a new chain with the middleware added to the end.
// The receiver is not modified; the result never shares backing storage
// with the receiver, so two builders forked from the same parent can both
// append without clobbering each other.
func (c Chain) Append(middlewares ...Middleware) Chain {
	result := make(Chain, 0, len(c)+len(middlewares))
	result = append(result, c...)
	result = append(result, middlewares...)
	return result
}

// Prepend returns a new chain with the middleware added to the beginning.
func (c Chain) Prepend(middlewares ...Middleware) Chain {
	result := make(Chain, 0, len(middlewares)+len(c))
	result = append(result, middlewares...)
	result = append(result, c...)
	return result
}

// Run executes the chain against req with terminal as the final position.
// Execution proceeds strictly in order via explicit continuation invocation:
// the middleware at position i only runs if the middleware at position i-1
// invoked its continuation. A context increment supplied to a continuation is
// merged into req.Context before the next position executes, so each position
// observes exactly the context built by the positions before it. A middleware
// that returns without invoking its continuation short-circuits the chain,
// and its return value travels back through the positions already entered.
func (c Chain) Run(ctx context.Context, req *Request, terminal Handler) (any, error) {
	var run func(pos int) (any, error)
	run = func(pos int) (any, error) {
		if pos == len(c) {
			return terminal(ctx, req)
		}
		next := Next(func(inc Attrs) (any, error) {
			if len(inc) > 0 {
				req.Context = req.Context.Merge(inc)
			}
			return run(pos + 1)
		})
		return c[pos](ctx, req, next)
	}
	return run(0)
}
