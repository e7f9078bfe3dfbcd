package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/ratelimit"
	"go.uber.org/zap"

	"github.com/unrouted/endpoint/pkg/common"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Unique identifier for this rate limit bucket.
	// Endpoints sharing the same BucketName share the same rate limit.
	BucketName string

	// Maximum number of requests allowed in the time window
	Limit int

	// Time window for the rate limit (e.g., 1 minute, 1 hour)
	Window time.Duration

	// KeyExtractor identifies the client being limited. If nil, the client
	// IP from the runtime context is used, falling back to RemoteAddr.
	KeyExtractor func(req *common.Request) (string, error)

	// ExceededResponse is returned when the limit is exceeded.
	// If nil, a default 429 Too Many Requests response is used.
	ExceededResponse *common.Response
}

// bucket tracks one client's window alongside a leaky-bucket pacer built on
// Uber's ratelimit library.
type bucket struct {
	pacer       ratelimit.Limiter
	mu          sync.Mutex
	windowStart time.Time
	count       int
}

// RateLimiter applies keyed rate limits across any number of endpoints.
type RateLimiter struct {
	buckets sync.Map // map[string]*bucket
	mu      sync.Mutex
}

// NewRateLimiter creates a rate limiter backed by Uber's ratelimit library.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{}
}

// getBucket gets or creates the bucket for a key at the given rate.
func (l *RateLimiter) getBucket(key string, rps int) *bucket {
	if b, ok := l.buckets.Load(key); ok {
		return b.(*bucket)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring lock
	if b, ok := l.buckets.Load(key); ok {
		return b.(*bucket)
	}

	b := &bucket{pacer: ratelimit.New(rps), windowStart: time.Now()}
	l.buckets.Store(key, b)
	return b
}

// Allow reports whether a request for key fits inside the window, and the
// number of remaining requests. Allowed requests are additionally paced
// through the leaky bucket to smooth bursts.
func (l *RateLimiter) Allow(key string, limit int, window time.Duration) (bool, int) {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Second
	}
	rps := int(float64(limit) / window.Seconds())
	if rps < 1 {
		rps = 1
	}

	b := l.getBucket(key, rps)

	b.mu.Lock()
	now := time.Now()
	if now.Sub(b.windowStart) > window {
		b.windowStart = now
		b.count = 0
	}
	b.count++
	count := b.count
	b.mu.Unlock()

	if count > limit {
		return false, 0
	}

	b.pacer.Take()
	return true, limit - count
}

// RateLimit creates a middleware that enforces the given rate limit,
// short-circuiting with a 429 response when a client exceeds it.
func RateLimit(config *RateLimitConfig, limiter *RateLimiter, logger *zap.Logger) common.Middleware {
	return func(ctx context.Context, req *common.Request, next common.Next) (any, error) {
		key, err := limitKey(req, config)
		if err != nil {
			return nil, err
		}

		allowed, remaining := limiter.Allow(config.BucketName+":"+key, config.Limit, config.Window)
		if !allowed {
			logger.Warn("Rate limit exceeded",
				zap.String("bucket", config.BucketName),
				zap.String("key", key),
				zap.String("method", req.HTTP.Method),
				zap.String("path", req.HTTP.URL.Path),
			)
			if config.ExceededResponse != nil {
				return config.ExceededResponse, nil
			}
			return common.NewResponse(http.StatusTooManyRequests).
				WithHeader("Content-Type", "application/json").
				WithBody(map[string]string{"message": "Too many requests"}), nil
		}

		result, err := next(nil)
		if resp, ok := result.(*common.Response); ok && err == nil {
			resp.WithHeader("X-RateLimit-Remaining", strconv.Itoa(remaining))
		}
		return result, err
	}
}

// limitKey resolves the client key for one invocation.
func limitKey(req *common.Request, config *RateLimitConfig) (string, error) {
	if config.KeyExtractor != nil {
		return config.KeyExtractor(req)
	}
	if ip := GetClientIP(req); ip != "" {
		return ip, nil
	}
	return req.HTTP.RemoteAddr, nil
}
