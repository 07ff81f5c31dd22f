package api

import (
	"net/http"

	"github.com/r3d91ll/spectra/pkg/config"
)

// ConfigHandler exposes the settings a browser client needs before it
// uploads or draws anything.
type ConfigHandler struct {
	upload config.UploadConfig
	chart  config.ChartConfig
	bounds config.ProcessorConfig
}

// NewConfigHandler creates a new ConfigHandler.
func NewConfigHandler(upload config.UploadConfig, chart config.ChartConfig, bounds config.ProcessorConfig) *ConfigHandler {
	return &ConfigHandler{upload: upload, chart: chart, bounds: bounds}
}

// RegisterRoutes registers the configuration API routes on the router.
func (h *ConfigHandler) RegisterRoutes(router *Router) {
	router.GET("/api/config", h.GetConfig)
}

// -----------------------------------------------------------------------------
// API Response Types
// -----------------------------------------------------------------------------

// ConfigResponse is the JSON response for GET /api/config.
type ConfigResponse struct {
	Upload UploadSettings `json:"upload"`
	Chart  ChartSettings  `json:"chart"`
	Bounds BoundSettings  `json:"bounds"`
}

// UploadSettings describes what POST /api/upload accepts.
type UploadSettings struct {
	MaxBytes   int64    `json:"maxBytes"`
	Extensions []string `json:"extensions"`
}

// ChartSettings are the chart defaults.
type ChartSettings struct {
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	MaxWidth  float64 `json:"maxWidth"`
	MaxHeight float64 `json:"maxHeight"`
	ZoomMin   float64 `json:"zoomMin"`
	ZoomMax   float64 `json:"zoomMax"`
	LineColor string  `json:"lineColor"`
	FillColor string  `json:"fillColor"`
}

// BoundSettings are the default processor targets. Unset targets are left
// to the processor.
type BoundSettings struct {
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Interval *float64 `json:"interval,omitempty"`
}

// GetConfig handles GET /api/config.
func (h *ConfigHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	exts := h.upload.AllowedExtensions
	if exts == nil {
		exts = []string{}
	}
	WriteJSON(w, http.StatusOK, ConfigResponse{
		Upload: UploadSettings{
			MaxBytes:   h.upload.MaxBytes,
			Extensions: exts,
		},
		Chart: ChartSettings{
			Width:     h.chart.Width,
			Height:    h.chart.Height,
			MaxWidth:  h.chart.MaxWidth,
			MaxHeight: h.chart.MaxHeight,
			ZoomMin:   h.chart.ZoomMin,
			ZoomMax:   h.chart.ZoomMax,
			LineColor: h.chart.LineColor,
			FillColor: h.chart.FillColor,
		},
		Bounds: BoundSettings{
			Min:      h.bounds.TargetMin,
			Max:      h.bounds.TargetMax,
			Interval: h.bounds.TargetInterval,
		},
	})
}
