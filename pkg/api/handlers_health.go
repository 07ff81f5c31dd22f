package api

import (
	"context"
	"net/http"
	"time"
)

// HealthHandler reports service and processor availability.
type HealthHandler struct {
	processor Processor
	timeout   time.Duration
}

// NewHealthHandler creates a new HealthHandler. processor may be nil.
func NewHealthHandler(processor Processor) *HealthHandler {
	return &HealthHandler{processor: processor, timeout: 2 * time.Second}
}

// RegisterRoutes registers the health route on the router.
func (h *HealthHandler) RegisterRoutes(router *Router) {
	router.GET("/health", h.Health)
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Processor string `json:"processor"`
	Error     string `json:"error,omitempty"`
}

// Health handles GET /health. The service itself is always "ok"; processor
// trouble is reported in the body, not the status code.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Processor: "not_configured"}
	if h.processor != nil {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()
		if err := h.processor.Health(ctx); err != nil {
			resp.Processor = "unavailable"
			resp.Error = err.Error()
		} else {
			resp.Processor = "ok"
		}
	}
	WriteJSON(w, http.StatusOK, resp)
}
