package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/unrouted/endpoint/pkg/common"
)

// UserKey is the runtime-context key under which the authenticated user is
// stored.
const UserKey = "user"

// AuthFunc validates a bearer token and returns the authenticated user.
// The second return value is false when the token is invalid.
type AuthFunc func(ctx context.Context, token string) (any, bool)

// unauthorized is the short-circuit response for failed authentication.
func unauthorized() *common.Response {
	return common.NewResponse(http.StatusUnauthorized).
		WithHeader("Content-Type", "application/json").
		WithBody(map[string]string{"message": "Unauthorized"})
}

// Authentication creates a middleware that requires a valid bearer token.
// On success the authenticated user is contributed to the runtime context
// under UserKey; on failure the chain is short-circuited with a 401
// response.
func Authentication(auth AuthFunc, logger *zap.Logger) common.Middleware {
	return func(ctx context.Context, req *common.Request, next common.Next) (any, error) {
		header := req.HTTP.Header.Get("Authorization")
		if header == "" {
			logger.Warn("Authentication failed",
				zap.String("method", req.HTTP.Method),
				zap.String("path", req.HTTP.URL.Path),
				zap.String("reason", "no authorization header"),
			)
			return unauthorized(), nil
		}

		token := strings.TrimPrefix(header, "Bearer ")
		user, valid := auth(ctx, token)
		if !valid {
			logger.Warn("Authentication failed",
				zap.String("method", req.HTTP.Method),
				zap.String("path", req.HTTP.URL.Path),
				zap.String("reason", "invalid token"),
			)
			return unauthorized(), nil
		}

		logger.Debug("Authentication successful",
			zap.String("method", req.HTTP.Method),
			zap.String("path", req.HTTP.URL.Path),
		)
		return next(common.Attrs{UserKey: user})
	}
}

// AuthenticationOptional creates a middleware that attempts authentication
// but allows the invocation to proceed either way. A valid token contributes
// the user to the runtime context; anything else proceeds without one.
func AuthenticationOptional(auth AuthFunc, logger *zap.Logger) common.Middleware {
	return func(ctx context.Context, req *common.Request, next common.Next) (any, error) {
		header := req.HTTP.Header.Get("Authorization")
		if header == "" {
			return next(nil)
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if user, valid := auth(ctx, token); valid {
			logger.Debug("Authentication successful",
				zap.String("method", req.HTTP.Method),
				zap.String("path", req.HTTP.URL.Path),
			)
			return next(common.Attrs{UserKey: user})
		}
		return next(nil)
	}
}

// GetUser extracts the authenticated user from the runtime context.
// Returns nil if no user is present.
func GetUser(req *common.Request) any {
	return req.Context[UserKey]
}
