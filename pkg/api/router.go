// Package api provides the HTTP/WebSocket server for Spectra: uploads,
// result browsing, chart rendering and interactive chart sessions.
package api

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"strings"
	"sync"

	serrors "github.com/r3d91ll/spectra/pkg/errors"
)

// HandlerFunc is the function signature for API handlers.
type HandlerFunc func(w http.ResponseWriter, r *http.Request)

// Route represents a registered route with its handler.
type Route struct {
	Method  string
	Pattern string
	Handler HandlerFunc
}

// Router is a simple HTTP router that supports path parameters.
type Router struct {
	routes []Route
	mu     sync.RWMutex

	// NotFound is called when no route matches
	NotFound http.Handler

	// MethodNotAllowed is called when the path matches but the method does not.
	MethodNotAllowed http.Handler
}

// NewRouter creates a new Router instance.
func NewRouter() *Router {
	return &Router{
		routes: make([]Route, 0),
		NotFound: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "The requested resource was not found")
		}),
		MethodNotAllowed: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed for this resource")
		}),
	}
}

// Handle registers a handler for the given method and pattern.
// Patterns support path parameters with :param syntax (e.g., /api/results/:id).
func (rt *Router) Handle(method, pattern string, handler HandlerFunc) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.routes = append(rt.routes, Route{
		Method:  method,
		Pattern: pattern,
		Handler: handler,
	})
}

// GET registers a handler for GET requests.
func (rt *Router) GET(pattern string, handler HandlerFunc) {
	rt.Handle(http.MethodGet, pattern, handler)
}

// POST registers a handler for POST requests.
func (rt *Router) POST(pattern string, handler HandlerFunc) {
	rt.Handle(http.MethodPost, pattern, handler)
}

// PATCH registers a handler for PATCH requests.
func (rt *Router) PATCH(pattern string, handler HandlerFunc) {
	rt.Handle(http.MethodPatch, pattern, handler)
}

// Routes returns a copy of the registered routes.
func (rt *Router) Routes() []Route {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return append([]Route(nil), rt.routes...)
}

// ServeHTTP implements the http.Handler interface. Literal routes win over
// parameterised ones of the same length, so /api/results/download is not
// captured by /api/results/:id.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.mu.RLock()
	routes := rt.routes
	rt.mu.RUnlock()

	var (
		best       *Route
		bestParams map[string]string
		bestScore  = -1
		pathMatch  bool
	)
	for i := range routes {
		route := &routes[i]
		params, score, matched := matchPath(route.Pattern, r.URL.Path)
		if !matched {
			continue
		}
		pathMatch = true
		if route.Method != r.Method {
			continue
		}
		if score > bestScore {
			best, bestParams, bestScore = route, params, score
		}
	}

	switch {
	case best != nil:
		if len(bestParams) > 0 {
			r = setPathParams(r, bestParams)
		}
		best.Handler(w, r)
	case pathMatch:
		rt.MethodNotAllowed.ServeHTTP(w, r)
	default:
		rt.NotFound.ServeHTTP(w, r)
	}
}

// matchPath matches a URL path against a pattern and extracts path
// parameters. The score counts literal segments.
func matchPath(pattern, path string) (map[string]string, int, bool) {
	patternParts := strings.Split(strings.Trim(pattern, "/"), "/")
	pathParts := strings.Split(strings.Trim(path, "/"), "/")

	if len(patternParts) != len(pathParts) {
		return nil, 0, false
	}

	params := make(map[string]string)
	score := 0
	for i, patternPart := range patternParts {
		switch {
		case strings.HasPrefix(patternPart, ":"):
			if pathParts[i] == "" {
				return nil, 0, false
			}
			params[patternPart[1:]] = pathParts[i]
		case patternPart == pathParts[i]:
			score++
		default:
			return nil, 0, false
		}
	}
	return params, score, true
}

// contextKey is a type for context keys to avoid collisions.
type contextKey string

const pathParamsKey contextKey = "pathParams"

// setPathParams stores path parameters in the request context.
func setPathParams(r *http.Request, params map[string]string) *http.Request {
	ctx := context.WithValue(r.Context(), pathParamsKey, params)
	return r.WithContext(ctx)
}

// PathParam extracts a path parameter from the request.
func PathParam(r *http.Request, name string) string {
	params, ok := r.Context().Value(pathParamsKey).(map[string]string)
	if !ok {
		return ""
	}
	return params[name]
}

// -----------------------------------------------------------------------------
// Response Helpers
// -----------------------------------------------------------------------------

// APIResponse is the standard response wrapper for API endpoints.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError represents an error response.
type APIError struct {
	Code        string            `json:"code"`
	Message     string            `json:"message"`
	Context     map[string]string `json:"context,omitempty"`
	Suggestions []string          `json:"suggestions,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}
	// Headers are already sent; an encoding failure cannot be reported.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	writeAPIError(w, status, &APIError{Code: code, Message: message})
}

// WriteErr writes err with the status and code derived from its SpectraError
// form. Other errors become 500 INTERNAL_ERROR without exposing their text.
func WriteErr(w http.ResponseWriter, err error) {
	se, ok := serrors.AsSpectraError(err)
	if !ok {
		WriteError(w, http.StatusInternalServerError, serrors.ErrInternalError, "An unexpected error occurred")
		return
	}
	writeAPIError(w, serrors.HTTPStatus(se), &APIError{
		Code:        se.Code,
		Message:     se.Message,
		Context:     se.Context,
		Suggestions: se.Suggestions,
	})
}

func writeAPIError(w http.ResponseWriter, status int, apiErr *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse{Success: false, Error: apiErr})
}

// ReadJSON reads and decodes a JSON request body into the given target.
func ReadJSON(r *http.Request, target interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return serrors.Validation(serrors.ErrValidationInvalidJSON, "request body is not valid JSON").
			WithCause(err)
	}
	return nil
}

// WriteAttachment writes data as a file download.
func WriteAttachment(w http.ResponseWriter, filename, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
