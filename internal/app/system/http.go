// Package system serves the non-resource endpoints: service banner, health,
// readiness, the OpenAPI document, and the JSON not-found fallback.
package system

import (
	"context"
	_ "embed"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/iotmonitor/api/internal/platform/metrics"
)

//go:embed openapi.json
var openAPIDocument []byte

const serviceName = "IoT Monitor API"

type Handler struct {
	// Ready reports whether downstream dependencies are reachable.
	Ready func(ctx context.Context) error
	Now   func() time.Time
}

func NewHandler(ready func(ctx context.Context) error) *Handler {
	return &Handler{
		Ready: ready,
		Now:   func() time.Time { return time.Now().UTC() },
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.handleRoot)
	r.Get("/health", h.handleHealth)
	r.Get("/readyz", h.handleReady)
	r.Get("/api-docs", h.handleDocs)
	r.Method(http.MethodGet, "/metrics", metrics.DefaultHandler())
}

func (h *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"message":   "Hello World!",
		"timestamp": h.Now().Format(time.RFC3339),
		"service":   serviceName,
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "OK",
		"uptime":    metrics.Uptime().Seconds(),
		"timestamp": h.Now().Format(time.RFC3339),
	})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.Ready != nil {
		if err := h.Ready(r.Context()); err != nil {
			h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
			return
		}
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (h *Handler) handleDocs(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openAPIDocument)
}

// NotFound answers every unmatched path, and unmatched methods on matched
// paths, with the same JSON body.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusNotFound, map[string]string{
		"error": "Route not found",
		"path":  r.URL.Path,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
