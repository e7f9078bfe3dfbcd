// Package endpoint composes schema validation, an ordered middleware chain
// with an accumulating runtime context, metadata injection, and response
// normalization into a single invocable request handler. Builders are
// immutable values: every chaining call returns a new builder carrying the
// updated configuration, so a partially configured builder can be safely
// shared and forked across many endpoints.
package endpoint

import (
	"go.uber.org/zap"

	"github.com/unrouted/endpoint/pkg/binding"
	"github.com/unrouted/endpoint/pkg/common"
	"github.com/unrouted/endpoint/pkg/schema"
)

// config is one immutable configuration snapshot. Chaining methods copy the
// whole snapshot and substitute only the changed fields; the statusByMethod
// map is built once at New and never mutated afterwards, so snapshots may
// share it.
type config struct {
	paramsValidator schema.Validator
	queryValidator  schema.Validator
	bodyValidator   schema.Validator
	metaValidator   schema.Validator
	chain           common.Chain
	metaValue       any
	metaSet         bool
	translator      ErrorTranslator
	formDecoder     binding.FormDecoder
	statusByMethod  map[string]int
	logger          *zap.Logger
}

// Builder is an immutable, chainable endpoint configuration. The zero value
// is not usable; construct one with New.
type Builder struct {
	cfg config
}

// New creates a Builder with the given options.
func New(opts Options) Builder {
	statusByMethod := defaultStatusByMethod()
	for method, status := range opts.StatusByMethod {
		statusByMethod[method] = status
	}
	return Builder{cfg: config{
		translator:     opts.ErrorTranslator,
		formDecoder:    opts.FormDecoder,
		statusByMethod: statusByMethod,
		logger:         newLogger(opts.Logger),
	}}
}

// Params returns a builder whose path parameters are validated by v,
// replacing any previously configured params validator.
func (b Builder) Params(v schema.Validator) Builder {
	cfg := b.cfg
	cfg.paramsValidator = v
	return Builder{cfg: cfg}
}

// ParamsExtend returns a builder whose params validator is the merge of the
// existing object validator and v: the result validates the union of both
// field sets, with v's fields winning on name collisions. If no params
// validator was configured, or either validator is not an object schema, v
// replaces the existing validator outright.
//
// ParamsExtend also resets the middleware chain to empty. This supports
// deriving a fresh nested-route builder from a shared parent param shape,
// decoupled from whatever middleware the parent had accumulated. The reset
// is easy to overlook; see TestParamsExtendResetsChain.
func (b Builder) ParamsExtend(v schema.Validator) Builder {
	cfg := b.cfg
	cfg.paramsValidator = v
	if old, ok := b.cfg.paramsValidator.(*schema.ObjectSchema); ok {
		if next, ok := v.(*schema.ObjectSchema); ok {
			cfg.paramsValidator = old.Extend(next)
		}
	}
	cfg.chain = nil
	return Builder{cfg: cfg}
}

// Query returns a builder whose query values are validated by v.
func (b Builder) Query(v schema.Validator) Builder {
	cfg := b.cfg
	cfg.queryValidator = v
	return Builder{cfg: cfg}
}

// Body returns a builder whose decoded request body is validated by v.
func (b Builder) Body(v schema.Validator) Builder {
	cfg := b.cfg
	cfg.bodyValidator = v
	return Builder{cfg: cfg}
}

// DefineMetadata returns a builder whose metadata value is validated by v.
// Redefining the metadata shape starts a new configuration lineage for the
// middleware chain and the static metadata value: both are cleared.
func (b Builder) DefineMetadata(v schema.Validator) Builder {
	cfg := b.cfg
	cfg.metaValidator = v
	cfg.chain = nil
	cfg.metaValue = nil
	cfg.metaSet = false
	return Builder{cfg: cfg}
}

// Metadata returns a builder carrying value as its static metadata. The
// value is not derived from the request; it is made available to every
// middleware and the handler, validated against the metadata validator at
// invocation time if one is configured.
func (b Builder) Metadata(value any) Builder {
	cfg := b.cfg
	cfg.metaValue = value
	cfg.metaSet = true
	return Builder{cfg: cfg}
}

// Use returns a builder with the middleware appended to the end of the
// chain. Insertion order is execution order. The receiver's chain is not
// modified, so builders forked from a common parent accumulate middleware
// independently.
func (b Builder) Use(middlewares ...common.Middleware) Builder {
	cfg := b.cfg
	cfg.chain = b.cfg.chain.Append(middlewares...)
	return Builder{cfg: cfg}
}

// Handler produces a standalone invocable handler closing over the current
// configuration snapshot. The builder is not consumed; the same builder may
// produce any number of independent handlers.
func (b Builder) Handler(fn common.Handler) *Handler {
	return &Handler{cfg: b.cfg, fn: fn}
}
