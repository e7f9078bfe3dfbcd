package endpoint

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/unrouted/endpoint/pkg/binding"
)

// Options defines the construction-time configuration of a Builder.
// All fields are optional.
type Options struct {
	// Logger is used for all pipeline logging. If nil, a production zap
	// logger is created, falling back to a no-op logger on failure.
	Logger *zap.Logger

	// ErrorTranslator converts non-validation failures into responses.
	// Failures it returns nil for, like all failures when no translator is
	// configured, produce an opaque 500 response.
	ErrorTranslator ErrorTranslator

	// FormDecoder overrides how urlencoded and multipart bodies are turned
	// into a plain structured value before body validation.
	FormDecoder binding.FormDecoder

	// StatusByMethod overrides the default success status code used when a
	// handler returns a plain value rather than an explicit response.
	// Entries are overlaid on the defaults (GET 200, POST 201, PUT 200,
	// PATCH 200, DELETE 204); methods absent from both maps get 200.
	StatusByMethod map[string]int
}

// defaultStatusByMethod returns the default method-to-status table.
func defaultStatusByMethod() map[string]int {
	return map[string]int{
		http.MethodGet:    http.StatusOK,
		http.MethodPost:   http.StatusCreated,
		http.MethodPut:    http.StatusOK,
		http.MethodPatch:  http.StatusOK,
		http.MethodDelete: http.StatusNoContent,
	}
}

// newLogger resolves the logger for a builder, mirroring Options.Logger
// semantics.
func newLogger(logger *zap.Logger) *zap.Logger {
	if logger != nil {
		return logger
	}
	l, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return l
}
