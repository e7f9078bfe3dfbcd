package middleware

import (
	"context"
	"net/http"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/unrouted/endpoint/pkg/common"
)

// TestRateLimiterAllow tests the windowed counter directly
func TestRateLimiterAllow(t *testing.T) {
	limiter := NewRateLimiter()

	allowed, remaining := limiter.Allow("client", 2, 100*time.Millisecond)
	if !allowed || remaining != 1 {
		t.Errorf("Expected first request allowed with 1 remaining, got %v %d", allowed, remaining)
	}
	allowed, remaining = limiter.Allow("client", 2, 100*time.Millisecond)
	if !allowed || remaining != 0 {
		t.Errorf("Expected second request allowed with 0 remaining, got %v %d", allowed, remaining)
	}
	allowed, _ = limiter.Allow("client", 2, 100*time.Millisecond)
	if allowed {
		t.Error("Expected third request to be denied")
	}
}

// TestRateLimiterWindowReset tests that the counter resets after the window
// elapses
func TestRateLimiterWindowReset(t *testing.T) {
	limiter := NewRateLimiter()

	if allowed, _ := limiter.Allow("client", 1, 30*time.Millisecond); !allowed {
		t.Fatal("Expected first request to be allowed")
	}
	if allowed, _ := limiter.Allow("client", 1, 30*time.Millisecond); allowed {
		t.Fatal("Expected second request to be denied")
	}

	time.Sleep(50 * time.Millisecond)

	if allowed, _ := limiter.Allow("client", 1, 30*time.Millisecond); !allowed {
		t.Error("Expected request to be allowed after window reset")
	}
}

// TestRateLimiterIndependentKeys tests that different clients do not share a
// counter
func TestRateLimiterIndependentKeys(t *testing.T) {
	limiter := NewRateLimiter()

	if allowed, _ := limiter.Allow("alice", 1, time.Minute); !allowed {
		t.Fatal("Expected alice's first request to be allowed")
	}
	if allowed, _ := limiter.Allow("alice", 1, time.Minute); allowed {
		t.Fatal("Expected alice's second request to be denied")
	}
	if allowed, _ := limiter.Allow("bob", 1, time.Minute); !allowed {
		t.Error("Expected bob's first request to be allowed despite alice's limit")
	}
}

// TestRateLimitMiddleware tests the 429 short-circuit and the remaining
// header on allowed responses
func TestRateLimitMiddleware(t *testing.T) {
	config := &RateLimitConfig{
		BucketName: "test",
		Limit:      2,
		Window:     time.Second,
		KeyExtractor: func(req *common.Request) (string, error) {
			return "fixed", nil
		},
	}
	mw := RateLimit(config, NewRateLimiter(), zap.NewNop())

	terminal := func(ctx context.Context, r *common.Request) (any, error) {
		return common.NewResponse(http.StatusOK), nil
	}

	// First two requests pass, with remaining counts on the response
	for i, want := range []string{"1", "0"} {
		req := newTestRequest("GET", "http://example.com/limited")
		result, err := common.NewChain(mw).Run(context.Background(), req, terminal)
		if err != nil {
			t.Fatalf("Expected no error on request %d, got %v", i+1, err)
		}
		resp := result.(*common.Response)
		if resp.Status != http.StatusOK {
			t.Fatalf("Expected 200 on request %d, got %d", i+1, resp.Status)
		}
		if got := resp.Header.Get("X-RateLimit-Remaining"); got != want {
			t.Errorf("Expected remaining %s on request %d, got %q", want, i+1, got)
		}
	}

	// Third request is short-circuited without reaching the terminal
	terminalRan := false
	req := newTestRequest("GET", "http://example.com/limited")
	result, err := common.NewChain(mw).Run(context.Background(), req, func(ctx context.Context, r *common.Request) (any, error) {
		terminalRan = true
		return nil, nil
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if terminalRan {
		t.Error("Expected terminal not to run when the limit is exceeded")
	}
	if resp := result.(*common.Response); resp.Status != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %d", resp.Status)
	}
}

// TestRateLimitCustomExceededResponse tests that a configured response
// replaces the default 429
func TestRateLimitCustomExceededResponse(t *testing.T) {
	custom := common.NewResponse(http.StatusServiceUnavailable).WithBody("slow down")
	config := &RateLimitConfig{
		BucketName:       "custom",
		Limit:            1,
		Window:           time.Minute,
		KeyExtractor:     func(req *common.Request) (string, error) { return "fixed", nil },
		ExceededResponse: custom,
	}
	mw := RateLimit(config, NewRateLimiter(), zap.NewNop())

	terminal := func(ctx context.Context, r *common.Request) (any, error) { return nil, nil }

	req := newTestRequest("GET", "http://example.com/limited")
	if _, err := common.NewChain(mw).Run(context.Background(), req, terminal); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	result, err := common.NewChain(mw).Run(context.Background(), req, terminal)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result != custom {
		t.Errorf("Expected the configured response, got %v", result)
	}
}

// TestRateLimitKeyFromClientIP tests that the limiter keys off the client IP
// contributed earlier in the chain
func TestRateLimitKeyFromClientIP(t *testing.T) {
	config := &RateLimitConfig{BucketName: "ip", Limit: 1, Window: time.Minute}
	limiter := NewRateLimiter()
	chain := common.NewChain(ClientIP(nil), RateLimit(config, limiter, zap.NewNop()))

	terminal := func(ctx context.Context, r *common.Request) (any, error) { return "ok", nil }

	send := func(ip string) any {
		req := newTestRequest("GET", "http://example.com/limited")
		req.HTTP.Header.Set("X-Forwarded-For", ip)
		result, err := chain.Run(context.Background(), req, terminal)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		return result
	}

	if result := send("203.0.113.9"); result != "ok" {
		t.Fatalf("Expected first request from the IP to pass, got %v", result)
	}
	if result := send("203.0.113.9"); result == "ok" {
		t.Error("Expected second request from the same IP to be limited")
	}
	if result := send("198.51.100.7"); result != "ok" {
		t.Errorf("Expected request from a different IP to pass, got %v", result)
	}
}
