package system

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

func newTestRouter(ready func(ctx context.Context) error) http.Handler {
	h := NewHandler(ready)
	h.Now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	r := chi.NewRouter()
	h.Register(r)
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.NotFound)
	return r
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestRoot(t *testing.T) {
	rr := get(t, newTestRouter(nil), "/")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body["message"] != "Hello World!" || body["service"] != "IoT Monitor API" {
		t.Fatalf("unexpected body: %v", body)
	}
	if _, err := time.Parse(time.RFC3339, body["timestamp"]); err != nil {
		t.Fatalf("timestamp not RFC3339: %q", body["timestamp"])
	}
}

func TestHealth(t *testing.T) {
	rr := get(t, newTestRouter(nil), "/health")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body struct {
		Status    string  `json:"status"`
		Uptime    float64 `json:"uptime"`
		Timestamp string  `json:"timestamp"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body.Status != "OK" {
		t.Fatalf("expected status OK, got %q", body.Status)
	}
	if body.Uptime <= 0 {
		t.Fatalf("expected positive uptime, got %f", body.Uptime)
	}
	if _, err := time.Parse(time.RFC3339, body.Timestamp); err != nil {
		t.Fatalf("timestamp not RFC3339: %q", body.Timestamp)
	}
}

func TestReadyz(t *testing.T) {
	rr := get(t, newTestRouter(func(context.Context) error { return nil }), "/readyz")
	if rr.Code != http.StatusOK {
		t.Fatalf("ready expected 200, got %d", rr.Code)
	}

	rr = get(t, newTestRouter(func(context.Context) error { return errors.New("pg down") }), "/readyz")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("not ready expected 503, got %d", rr.Code)
	}
}

func TestAPIDocs(t *testing.T) {
	rr := get(t, newTestRouter(nil), "/api-docs")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	var doc struct {
		OpenAPI string                     `json:"openapi"`
		Paths   map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &doc); err != nil {
		t.Fatalf("document is not valid JSON: %v", err)
	}
	if doc.OpenAPI != "3.0.0" {
		t.Fatalf("expected openapi 3.0.0, got %q", doc.OpenAPI)
	}
	for _, path := range []string{"/api/todos", "/api/todos/{id}", "/health"} {
		if _, ok := doc.Paths[path]; !ok {
			t.Fatalf("document missing path %s", path)
		}
	}
}

func TestNotFoundEchoesPath(t *testing.T) {
	rr := get(t, newTestRouter(nil), "/no/such/route")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body["error"] != "Route not found" || body["path"] != "/no/such/route" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestWrongMethodIsRouteNotFound(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/health", nil)
	rr := httptest.NewRecorder()
	newTestRouter(nil).ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unmatched method, got %d", rr.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	rr := get(t, newTestRouter(nil), "/metrics")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if body := rr.Body.String(); !strings.Contains(body, "process_uptime_seconds") {
		t.Fatalf("metrics output missing uptime gauge: %s", body)
	}
}
