package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/r3d91ll/spectra/pkg/chart"
	"github.com/r3d91ll/spectra/pkg/config"
	serrors "github.com/r3d91ll/spectra/pkg/errors"
	"github.com/r3d91ll/spectra/pkg/export"
	"github.com/r3d91ll/spectra/pkg/results"
)

// Chart output formats.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
)

// ChartHandler renders stored results as static charts.
type ChartHandler struct {
	registry *results.Registry
	config   config.ChartConfig
	metrics  *Metrics
}

// NewChartHandler creates a new ChartHandler. m may be nil.
func NewChartHandler(registry *results.Registry, cfg config.ChartConfig, m *Metrics) *ChartHandler {
	if m == nil {
		m = NewMetrics()
	}
	return &ChartHandler{registry: registry, config: cfg, metrics: m}
}

// RegisterRoutes registers the chart routes on the router.
func (h *ChartHandler) RegisterRoutes(router *Router) {
	router.GET("/api/results/:id/chart.svg", h.ChartSVG)
	router.GET("/api/results/:id/chart.png", h.ChartPNG)
}

// ChartSVG handles GET /api/results/:id/chart.svg.
func (h *ChartHandler) ChartSVG(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, FormatSVG)
}

// ChartPNG handles GET /api/results/:id/chart.png.
func (h *ChartHandler) ChartPNG(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, FormatPNG)
}

func (h *ChartHandler) render(w http.ResponseWriter, r *http.Request, format string) {
	res, err := h.registry.Get(PathParam(r, "id"))
	if err != nil {
		WriteErr(w, err)
		return
	}
	params, err := ParseChartParams(r.URL.Query())
	if err != nil {
		WriteErr(w, err)
		return
	}

	// Results are immutable apart from their description, so the reference
	// and the query fully determine the image.
	tag := export.ETag(chartHash(res.Ref, format, r.URL.Query()))
	w.Header().Set("ETag", tag)
	if export.MatchesETag(r.Header.Get("If-None-Match"), tag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	start := time.Now()
	body, err := RenderChart(res, params, h.config, format)
	if err != nil {
		WriteErr(w, err)
		return
	}
	h.metrics.RenderSeconds.WithLabelValues(format).Observe(time.Since(start).Seconds())
	h.metrics.ChartsRendered.WithLabelValues(format).Inc()

	contentType := "image/svg+xml"
	if format == FormatPNG {
		contentType = "image/png"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// RenderChart draws one result with the given parameters and encodes the
// frame as SVG or PNG.
func RenderChart(res *results.Result, params ChartParams, cfg config.ChartConfig, format string) ([]byte, error) {
	series, _, err := params.Series(res.Ref, res.Table)
	if err != nil {
		return nil, err
	}
	opts, err := params.Options(cfg)
	if err != nil {
		return nil, err
	}

	c := chart.New(series, opts)
	defer c.Close()
	frame := c.Draw(params.Size(cfg))

	switch format {
	case FormatSVG:
		return []byte(frame.SVG()), nil
	case FormatPNG:
		if frame.Empty() {
			return nil, serrors.Chart(serrors.ErrChartNoSeries, "nothing to draw").
				WithContext("result", res.Name)
		}
		var buf bytes.Buffer
		if err := chart.RenderPNG(frame, &buf); err != nil {
			if errors.Is(err, chart.ErrFrameTooLarge) {
				return nil, serrors.InvalidOption("size", fmt.Sprintf("%.0fx%.0f", frame.Width, frame.Height), err)
			}
			return nil, serrors.Chart(serrors.ErrChartRenderFailed, "failed to render png").
				WithContext("result", res.Name).
				WithCause(err)
		}
		return buf.Bytes(), nil
	default:
		return nil, serrors.InvalidOption("format", format, nil)
	}
}

func chartHash(ref, format string, query map[string][]string) string {
	params := map[string]string{"ref": ref, "format": format}
	for k, vs := range query {
		if len(vs) > 0 {
			params["q:"+k] = vs[0]
		}
	}
	return export.ParamsHash(params)
}
