package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/unrouted/endpoint/pkg/common"
)

// TraceIDKey is the runtime-context key under which the trace ID is stored.
const TraceIDKey = "trace_id"

// TraceID creates a middleware that generates a unique trace ID for each
// invocation and contributes it to the runtime context, making it visible to
// every later chain position and the handler. This allows for request
// tracing across logs.
func TraceID() common.Middleware {
	return func(ctx context.Context, req *common.Request, next common.Next) (any, error) {
		return next(common.Attrs{TraceIDKey: uuid.New().String()})
	}
}

// GetTraceID extracts the trace ID from the runtime context.
// Returns an empty string if no trace ID is present.
func GetTraceID(req *common.Request) string {
	if traceID, ok := req.Context[TraceIDKey].(string); ok {
		return traceID
	}
	return ""
}
