package endpoint

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/unrouted/endpoint/pkg/binding"
	"github.com/unrouted/endpoint/pkg/common"
	"github.com/unrouted/endpoint/pkg/schema"
)

// Handler is the standalone invocable unit produced by Builder.Handler.
// One invocation parses inputs, validates them in fixed order, runs the
// middleware chain with the user handler as the terminal position, and
// normalizes the result or translates the failure into a response.
//
// Invocations are fully independent: each allocates its own per-invocation
// state and only reads the immutable configuration snapshot, so a Handler is
// safe for unlimited concurrent use.
type Handler struct {
	cfg config
	fn  common.Handler
}

// Invoke runs one invocation against r, obtaining raw path parameters from
// params (which may be nil when the route has none). It never returns an
// error: all failure paths are caught and converted into a response, so the
// host transport always receives a well-formed response value.
func (h *Handler) Invoke(r *http.Request, params binding.ParamsSource) (resp *common.Response) {
	// Panics anywhere in decoding, validation, middleware, or the handler
	// are routed through the same error translation as returned failures.
	defer func() {
		if rec := recover(); rec != nil {
			h.cfg.logger.Error("Panic recovered",
				zap.Any("panic", rec),
				zap.String("stack", string(debug.Stack())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
			)
			resp = h.translate(r, fmt.Errorf("panic: %v", rec))
		}
	}()

	ctx := r.Context()

	// Resolve the raw path-parameter record once, before validation.
	rawParams := map[string]any{}
	if params != nil {
		resolved, err := params(ctx)
		if err != nil {
			return h.translate(r, err)
		}
		rawParams = resolved
	}

	rawQuery := binding.Query(r.URL)

	// Body decoding is skipped entirely for no-body-by-convention methods.
	// A decode failure is held rather than escalated immediately: the body
	// stage is third in the validation order, so params and query get to
	// fail first, and without a body validator the failure is absorbed and
	// the body slot stays an empty record.
	var rawBody any = map[string]any{}
	var bodyDecodeErr error
	if bodyAllowed(r.Method) {
		decoded, err := binding.Body(r, h.cfg.formDecoder)
		if err != nil {
			bodyDecodeErr = err
		} else {
			rawBody = decoded
		}
	}

	req := &common.Request{
		HTTP:    r,
		Params:  rawParams,
		Query:   rawQuery,
		Body:    rawBody,
		Context: common.Attrs{},
	}

	// Validation runs in fixed order and short-circuits on first failure.
	// Downstream code only ever sees the validators' typed outputs.
	if v := h.cfg.paramsValidator; v != nil {
		typed, issues := v.Validate(req.Params)
		if issues != nil {
			return h.respondInvalid(r, &ValidationError{Stage: MsgInvalidParams, Issues: issues})
		}
		req.Params = typed
	}
	if v := h.cfg.queryValidator; v != nil {
		typed, issues := v.Validate(req.Query)
		if issues != nil {
			return h.respondInvalid(r, &ValidationError{Stage: MsgInvalidQuery, Issues: issues})
		}
		req.Query = typed
	}
	if v := h.cfg.bodyValidator; v != nil {
		if bodyDecodeErr != nil {
			// Decoding failure is folded into a body-validation failure.
			return h.respondInvalid(r, &ValidationError{
				Stage:  MsgInvalidBody,
				Issues: schema.Issues{{Code: "decode", Message: bodyDecodeErr.Error()}},
			})
		}
		typed, issues := v.Validate(req.Body)
		if issues != nil {
			return h.respondInvalid(r, &ValidationError{Stage: MsgInvalidBody, Issues: issues})
		}
		req.Body = typed
	}

	// Metadata is the only slot where absence is a legitimate terminal
	// state: validation is skipped entirely when no value is present.
	if h.cfg.metaSet {
		req.Meta = h.cfg.metaValue
		if v := h.cfg.metaValidator; v != nil {
			typed, issues := v.Validate(req.Meta)
			if issues != nil {
				return h.respondInvalid(r, &ValidationError{Stage: MsgInvalidMetadata, Issues: issues})
			}
			req.Meta = typed
		}
	}

	result, err := h.cfg.chain.Run(ctx, req, h.fn)
	if err != nil {
		return h.translate(r, err)
	}
	return h.normalize(r, result)
}

// bodyAllowed reports whether body decoding runs for the method. Read and
// delete requests carry no body by convention, regardless of what the
// transport would permit.
func bodyAllowed(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodDelete:
		return false
	}
	return true
}

// respondInvalid converts a validation failure into the fixed client error
// response: status 400 with the stage message and the validator's issues.
func (h *Handler) respondInvalid(r *http.Request, verr *ValidationError) *common.Response {
	h.cfg.logger.Warn("Validation failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("stage", verr.Stage),
		zap.Int("issues", len(verr.Issues)),
	)
	return common.NewResponse(http.StatusBadRequest).
		WithHeader("Content-Type", "application/json").
		WithBody(errorPayload{Message: verr.Stage, Errors: verr.Issues})
}

// translate applies the two-tier error policy. A validation failure always
// yields the fixed 400 response and is never passed to the translator. Any
// other failure goes to the configured translator; a non-nil result is used
// verbatim, while a nil result (or no translator at all) falls back to an
// opaque 500 that omits the failure's own message. The caller always gets a
// non-nil response.
func (h *Handler) translate(r *http.Request, err error) *common.Response {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return h.respondInvalid(r, verr)
	}

	if h.cfg.translator != nil {
		if resp := h.cfg.translator(err); resp != nil {
			h.cfg.logger.Debug("Error translated",
				zap.Error(err),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
			)
			return resp
		}
	}

	h.cfg.logger.Error("Handler error",
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)
	return common.NewResponse(http.StatusInternalServerError).
		WithHeader("Content-Type", "application/json").
		WithBody(errorPayload{Message: msgInternalError})
}

// normalize converts a handler or middleware result into a response. An
// explicit *common.Response passes through unchanged; anything else is
// serialized as a structured success payload with the status taken from the
// method-to-status table.
func (h *Handler) normalize(r *http.Request, result any) *common.Response {
	if resp, ok := result.(*common.Response); ok {
		return resp
	}

	status, ok := h.cfg.statusByMethod[r.Method]
	if !ok {
		status = http.StatusOK
	}
	if status == http.StatusNoContent {
		return common.NewResponse(status)
	}
	return common.NewResponse(status).
		WithHeader("Content-Type", "application/json").
		WithBody(result)
}
