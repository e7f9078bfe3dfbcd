package endpoint

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/unrouted/endpoint/pkg/binding"
)

// contextKey is a type for context keys stored by the adapters.
type contextKey string

// ParamsKey is the key under which httprouter.Params are stored in the
// request context by hosts that route before calling ServeHTTP.
const ParamsKey contextKey = "params"

// Route returns an httprouter.Handle that invokes the handler, supplying the
// matched route parameters as the raw params record. This is the integration
// point for hosts that use httprouter directly:
//
//	router := httprouter.New()
//	router.GET("/users/:id", getUser.Route())
func (h *Handler) Route() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		writeResponse(w, h.Invoke(r, routeParams(ps)), h.cfg.logger)
	}
}

// ServeHTTP implements http.Handler. Route parameters are taken from the
// request context under ParamsKey when a host router stored them there;
// otherwise the invocation runs with an empty params record.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var source binding.ParamsSource
	if ps, ok := r.Context().Value(ParamsKey).(httprouter.Params); ok {
		source = routeParams(ps)
	}
	writeResponse(w, h.Invoke(r, source), h.cfg.logger)
}

// WithParams stores httprouter params in the request context so that
// ServeHTTP can recover them. Hosts that mount handlers through plain
// http.Handler plumbing use this to forward matched parameters.
func WithParams(r *http.Request, ps httprouter.Params) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ParamsKey, ps))
}

// routeParams converts matched httprouter params into a ParamsSource.
func routeParams(ps httprouter.Params) binding.ParamsSource {
	return func(ctx context.Context) (map[string]any, error) {
		params := make(map[string]any, len(ps))
		for _, p := range ps {
			params[p.Key] = p.Value
		}
		return params, nil
	}
}
