package api

import (
	"net/http"
	"strings"

	serrors "github.com/r3d91ll/spectra/pkg/errors"
	"github.com/r3d91ll/spectra/pkg/results"
)

// ResultsHandler serves the result list and result metadata.
type ResultsHandler struct {
	registry *results.Registry
	events   EventBroadcaster
}

// NewResultsHandler creates a new ResultsHandler.
func NewResultsHandler(registry *results.Registry, events EventBroadcaster) *ResultsHandler {
	return &ResultsHandler{registry: registry, events: eventsOrNop(events)}
}

// RegisterRoutes registers the result routes on the router.
func (h *ResultsHandler) RegisterRoutes(router *Router) {
	router.GET("/api/results", h.ListResults)
	router.GET("/api/results/:id", h.GetResult)
	router.PATCH("/api/results/:id", h.UpdateResult)
}

// ResultListResponse is the response body for GET /api/results.
type ResultListResponse struct {
	Results []results.Summary `json:"results"`
	Total   int               `json:"total"`
}

// UpdateResultRequest is the request body for PATCH /api/results/:id.
type UpdateResultRequest struct {
	Description string `json:"description"`
}

// ListResults handles GET /api/results. The q parameter filters by name or
// description.
func (h *ResultsHandler) ListResults(w http.ResponseWriter, r *http.Request) {
	found := h.registry.Search(r.URL.Query().Get("q"))
	resp := ResultListResponse{
		Results: make([]results.Summary, 0, len(found)),
		Total:   h.registry.Len(),
	}
	for _, res := range found {
		resp.Results = append(resp.Results, res.Summary())
	}
	WriteJSON(w, http.StatusOK, resp)
}

// GetResult handles GET /api/results/:id.
func (h *ResultsHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	res, err := h.registry.Get(PathParam(r, "id"))
	if err != nil {
		WriteErr(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, res.Summary())
}

// UpdateResult handles PATCH /api/results/:id. A description can be set
// once; later writes answer 409.
func (h *ResultsHandler) UpdateResult(w http.ResponseWriter, r *http.Request) {
	var req UpdateResultRequest
	if err := ReadJSON(r, &req); err != nil {
		WriteErr(w, err)
		return
	}
	desc := strings.TrimSpace(req.Description)
	if desc == "" {
		WriteErr(w, serrors.Validation(serrors.ErrValidationRequired, "description is required").
			WithContext("field", "description"))
		return
	}

	res, err := h.registry.SetDescription(PathParam(r, "id"), desc)
	if err != nil {
		WriteErr(w, err)
		return
	}
	summary := res.Summary()
	_ = h.events.DescriptionSet(summary)
	WriteJSON(w, http.StatusOK, summary)
}
