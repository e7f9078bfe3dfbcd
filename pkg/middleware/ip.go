package middleware

import (
	"context"
	"net"
	"strings"

	"github.com/unrouted/endpoint/pkg/common"
)

// IPSourceType defines the source for client IP addresses
type IPSourceType string

const (
	// IPSourceRemoteAddr uses the request's RemoteAddr field
	IPSourceRemoteAddr IPSourceType = "remote_addr"

	// IPSourceXForwardedFor uses the X-Forwarded-For header
	IPSourceXForwardedFor IPSourceType = "x_forwarded_for"

	// IPSourceXRealIP uses the X-Real-IP header
	IPSourceXRealIP IPSourceType = "x_real_ip"

	// IPSourceCustomHeader uses a custom header specified in the configuration
	IPSourceCustomHeader IPSourceType = "custom_header"
)

// IPConfig defines configuration for client IP extraction
type IPConfig struct {
	// Source specifies where to extract the client IP from
	Source IPSourceType

	// CustomHeader is the header to use when Source is IPSourceCustomHeader
	CustomHeader string

	// TrustProxy determines whether to trust proxy headers.
	// If false, RemoteAddr is used for all sources.
	TrustProxy bool
}

// DefaultIPConfig returns the default IP configuration
func DefaultIPConfig() *IPConfig {
	return &IPConfig{
		Source:     IPSourceXForwardedFor,
		TrustProxy: true,
	}
}

// ClientIPKey is the runtime-context key under which the client IP is stored.
const ClientIPKey = "client_ip"

// ClientIP creates a middleware that extracts the client IP from the request
// and contributes it to the runtime context under ClientIPKey. Later
// middleware (rate limiting in particular) key off this value.
func ClientIP(config *IPConfig) common.Middleware {
	if config == nil {
		config = DefaultIPConfig()
	}
	return func(ctx context.Context, req *common.Request, next common.Next) (any, error) {
		return next(common.Attrs{ClientIPKey: extractClientIP(req, config)})
	}
}

// GetClientIP extracts the client IP from the runtime context.
// Returns an empty string if the ClientIP middleware did not run.
func GetClientIP(req *common.Request) string {
	if ip, ok := req.Context[ClientIPKey].(string); ok {
		return ip
	}
	return ""
}

// extractClientIP resolves the client IP according to the configured source.
func extractClientIP(req *common.Request, config *IPConfig) string {
	r := req.HTTP

	if config.TrustProxy {
		switch config.Source {
		case IPSourceXForwardedFor:
			// The first entry is the originating client; later entries
			// are intermediate proxies.
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				parts := strings.Split(xff, ",")
				return strings.TrimSpace(parts[0])
			}
		case IPSourceXRealIP:
			if ip := r.Header.Get("X-Real-IP"); ip != "" {
				return ip
			}
		case IPSourceCustomHeader:
			if ip := r.Header.Get(config.CustomHeader); ip != "" {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
