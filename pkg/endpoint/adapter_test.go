package endpoint

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"

	"github.com/unrouted/endpoint/pkg/common"
	"github.com/unrouted/endpoint/pkg/schema"
)

// TestRouteAdapter tests the full path through an httprouter host: route
// matching, raw-params supply, validation, and JSON response writing
func TestRouteAdapter(t *testing.T) {
	h := newTestBuilder().
		Params(schema.Object(schema.Fields{"id": schema.Int()})).
		Handler(func(ctx context.Context, req *common.Request) (any, error) {
			id := req.Params.(map[string]any)["id"]
			return map[string]any{"id": id}, nil
		})

	router := httprouter.New()
	router.GET("/users/:id", h.Route())

	server := httptest.NewServer(router)
	defer server.Close()

	resp, err := http.Get(server.URL + "/users/42")
	if err != nil {
		t.Fatalf("Failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON content type, got %q", ct)
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if payload["id"] != float64(42) {
		t.Errorf("Expected id 42, got %v", payload["id"])
	}
}

// TestRouteAdapterValidationError tests that a validation failure is written
// as a 400 JSON response over the wire
func TestRouteAdapterValidationError(t *testing.T) {
	h := newTestBuilder().
		Params(schema.Object(schema.Fields{"id": schema.Int()})).
		Handler(func(ctx context.Context, req *common.Request) (any, error) {
			return nil, nil
		})

	router := httprouter.New()
	router.GET("/users/:id", h.Route())

	server := httptest.NewServer(router)
	defer server.Close()

	resp, err := http.Get(server.URL + "/users/abc")
	if err != nil {
		t.Fatalf("Failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	var payload struct {
		Message string         `json:"message"`
		Errors  []schema.Issue `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if payload.Message != MsgInvalidParams {
		t.Errorf("Expected message %q, got %q", MsgInvalidParams, payload.Message)
	}
	if len(payload.Errors) == 0 {
		t.Error("Expected issues in the payload")
	}
}

// TestRouteAdapterNoContent tests that a 204 response is written without a
// body
func TestRouteAdapterNoContent(t *testing.T) {
	h := newTestBuilder().
		Handler(func(ctx context.Context, req *common.Request) (any, error) {
			return nil, nil
		})

	router := httprouter.New()
	router.DELETE("/users/:id", h.Route())

	server := httptest.NewServer(router)
	defer server.Close()

	req, _ := http.NewRequest(http.MethodDelete, server.URL+"/users/1", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected status %d, got %d", http.StatusNoContent, resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if len(body) != 0 {
		t.Errorf("Expected empty body, got %q", string(body))
	}
}

// TestServeHTTPWithContextParams tests the plain http.Handler adapter with
// params forwarded through the request context
func TestServeHTTPWithContextParams(t *testing.T) {
	h := newTestBuilder().
		Params(schema.Object(schema.Fields{"id": schema.Int()})).
		Handler(func(ctx context.Context, req *common.Request) (any, error) {
			return req.Params, nil
		})

	r := httptest.NewRequest(http.MethodGet, "http://example.com/users/9", nil)
	r = WithParams(r, httprouter.Params{{Key: "id", Value: "9"}})
	w := httptest.NewRecorder()

	h.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d (body %s)", w.Code, w.Body.String())
	}
	var payload map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if payload["id"] != float64(9) {
		t.Errorf("Expected id 9, got %v", payload["id"])
	}
}

// TestServeHTTPWithoutParams tests that ServeHTTP runs with an empty params
// record when no host router stored any
func TestServeHTTPWithoutParams(t *testing.T) {
	h := newTestBuilder().
		Handler(func(ctx context.Context, req *common.Request) (any, error) {
			return map[string]any{"ok": true}, nil
		})

	r := httptest.NewRequest(http.MethodGet, "http://example.com/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Errorf("Expected ok payload, got %s", w.Body.String())
	}
}

// TestWriteResponseRawBodies tests that string and byte-slice bodies are
// written raw rather than JSON-encoded
func TestWriteResponseRawBodies(t *testing.T) {
	h := newTestBuilder().
		Handler(func(ctx context.Context, req *common.Request) (any, error) {
			return common.NewResponse(http.StatusOK).
				WithHeader("Content-Type", "text/plain").
				WithBody("plain text"), nil
		})

	r := httptest.NewRequest(http.MethodGet, "http://example.com/text", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Body.String() != "plain text" {
		t.Errorf("Expected raw string body, got %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/plain" {
		t.Errorf("Expected text/plain, got %q", ct)
	}
}

// TestWriteResponseNullPayload tests that a normalized nil return value for
// a read request serializes as a JSON null body
func TestWriteResponseNullPayload(t *testing.T) {
	h := newTestBuilder().
		Handler(func(ctx context.Context, req *common.Request) (any, error) {
			return nil, nil
		})

	r := httptest.NewRequest(http.MethodGet, "http://example.com/nothing", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
	if w.Body.String() != "null" {
		t.Errorf("Expected null payload, got %q", w.Body.String())
	}
}
