// Package middleware provides a collection of stock middleware for the
// endpoint framework, adapted to its continuation-passing contract: each
// middleware receives the validated request view and a continuation, and may
// contribute a context increment, short-circuit with a response, or abort
// with an error.
package middleware

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/unrouted/endpoint/pkg/common"
)

// Logging creates a middleware that logs each invocation. Failures are
// logged at Error level, slow invocations at Warn, everything else at Debug
// to avoid log spam. The trace ID is included when the TraceID middleware
// runs earlier in the chain.
func Logging(logger *zap.Logger) common.Middleware {
	return func(ctx context.Context, req *common.Request, next common.Next) (any, error) {
		start := time.Now()

		result, err := next(nil)

		duration := time.Since(start)
		fields := []zap.Field{
			zap.String("method", req.HTTP.Method),
			zap.String("path", req.HTTP.URL.Path),
			zap.Duration("duration", duration),
		}
		if traceID := GetTraceID(req); traceID != "" {
			fields = append([]zap.Field{zap.String("trace_id", traceID)}, fields...)
		}

		if err != nil {
			logger.Error("Handler error", append(fields, zap.Error(err))...)
		} else if duration > 1*time.Second {
			logger.Warn("Slow request", fields...)
		} else {
			logger.Debug("Request", fields...)
		}

		return result, err
	}
}
