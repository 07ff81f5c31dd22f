package api

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/r3d91ll/spectra/pkg/chart"
	"github.com/r3d91ll/spectra/pkg/config"
	serrors "github.com/r3d91ll/spectra/pkg/errors"
	"github.com/r3d91ll/spectra/pkg/table"
)

// ChartParams are the chart settings accepted as query parameters by the
// render endpoints and as the body of an "options" session message.
type ChartParams struct {
	Column          string            `json:"column,omitempty"`
	X               string            `json:"x,omitempty"`
	Width           float64           `json:"width,omitempty"`
	ContainerHeight float64           `json:"container_height,omitempty"`
	Height          string            `json:"height,omitempty"`
	Ratio           float64           `json:"ratio,omitempty"`
	Axes            string            `json:"axes,omitempty"`
	Fill            bool              `json:"fill,omitempty"`
	Window          *chart.IndexRange `json:"window,omitempty"`
	Breakpoints     []int             `json:"breakpoints,omitempty"`
	Mask            bool              `json:"mask,omitempty"`
	Selection       *chart.IndexRange `json:"selection,omitempty"`
	Title           string            `json:"title,omitempty"`
}

// ParseChartParams reads chart settings from a query string. Axes default
// to "xy"; "none" hides both.
func ParseChartParams(q url.Values) (ChartParams, error) {
	p := ChartParams{
		Column: q.Get("column"),
		X:      q.Get("x"),
		Height: q.Get("height"),
		Axes:   q.Get("axes"),
		Title:  q.Get("title"),
	}

	var err error
	if p.Width, err = floatParam(q, "width"); err != nil {
		return p, err
	}
	if p.ContainerHeight, err = floatParam(q, "container_height"); err != nil {
		return p, err
	}
	if p.Ratio, err = floatParam(q, "ratio"); err != nil {
		return p, err
	}
	if p.Fill, err = boolParam(q, "fill"); err != nil {
		return p, err
	}
	if p.Mask, err = boolParam(q, "mask"); err != nil {
		return p, err
	}
	if p.Window, err = rangeParam(q, "window"); err != nil {
		return p, err
	}
	if p.Selection, err = rangeParam(q, "selection"); err != nil {
		return p, err
	}
	if raw := q.Get("breakpoints"); raw != "" {
		if p.Breakpoints, err = parseInts(raw); err != nil {
			return p, serrors.InvalidOption("breakpoints", raw, err)
		}
	}
	return p, p.validate()
}

func (p ChartParams) validate() error {
	if _, err := chart.ParseHeight(p.Height); err != nil {
		return serrors.InvalidOption("height", p.Height, err)
	}
	switch p.Axes {
	case "", "x", "y", "xy", "none":
	default:
		return serrors.InvalidOption("axes", p.Axes, fmt.Errorf("want x, y, xy or none"))
	}
	for name, v := range map[string]float64{"width": p.Width, "container_height": p.ContainerHeight, "ratio": p.Ratio} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return serrors.InvalidOption(name, strconv.FormatFloat(v, 'g', -1, 64), fmt.Errorf("must be a non-negative number"))
		}
	}
	return nil
}

// Series extracts the X and Y columns from tbl. Without an X column the
// row index is used; without a Y column the first numeric column other
// than X is drawn. The returned name is the Y column.
func (p ChartParams) Series(id string, tbl *table.Table) (chart.Series, string, error) {
	column := p.Column
	if column == "" {
		for _, c := range tbl.NumericColumns() {
			if c != p.X {
				column = c
				break
			}
		}
		if column == "" {
			return chart.Series{}, "", serrors.Chart(serrors.ErrChartNoSeries, "result has no numeric column to draw").
				WithContext("result", tbl.Name)
		}
	}

	y, err := tbl.Numeric(column)
	if err != nil {
		return chart.Series{}, "", err
	}

	var x []float64
	if p.X != "" {
		if x, err = tbl.Numeric(p.X); err != nil {
			return chart.Series{}, "", err
		}
	} else {
		x = make([]float64, len(y))
		for i := range x {
			x[i] = float64(i)
		}
	}

	return chart.Series{ID: id + "/" + p.X + "/" + column, X: x, Y: y}, column, nil
}

// Options converts the parameters into engine options, taking colours and
// zoom bounds from cfg.
func (p ChartParams) Options(cfg config.ChartConfig) (chart.Options, error) {
	h, err := chart.ParseHeight(p.Height)
	if err != nil {
		return chart.Options{}, serrors.InvalidOption("height", p.Height, err)
	}
	if err := p.checkLimits(cfg, h); err != nil {
		return chart.Options{}, err
	}

	style := chart.DefaultStyle()
	if cfg.LineColor != "" {
		style.LineColor = cfg.LineColor
	}
	if cfg.FillColor != "" {
		style.FillColor = cfg.FillColor
		style.HighlightColor = cfg.FillColor
	}

	axes := p.Axes
	if axes == "" {
		axes = "xy"
	}

	return chart.Options{
		Title:            p.Title,
		AspectRatio:      p.Ratio,
		Height:           h,
		ShowXAxis:        strings.Contains(axes, "x"),
		ShowYAxis:        strings.Contains(axes, "y"),
		EnableBrush:      p.Selection != nil,
		InitialSelection: p.Selection,
		FillArea:         p.Fill,
		Window:           p.Window,
		Breakpoints:      p.Breakpoints,
		MaskSegments:     p.Mask,
		MaxHeight:        cfg.MaxHeight,
		ZoomMin:          cfg.ZoomMin,
		ZoomMax:          cfg.ZoomMax,
		Style:            &style,
	}, nil
}

// checkLimits rejects sizes above the configured maximums.
func (p ChartParams) checkLimits(cfg config.ChartConfig, h chart.Height) error {
	if err := CheckSize(cfg, chart.Size{Width: p.Width, Height: p.ContainerHeight}); err != nil {
		return err
	}
	if cfg.MaxHeight > 0 && !h.Percent && h.Value > cfg.MaxHeight {
		return serrors.InvalidOption("height", p.Height, fmt.Errorf("exceeds maximum %g", cfg.MaxHeight))
	}
	return nil
}

// CheckSize rejects a container larger than the configured maximums. Zero
// maximums disable the check.
func CheckSize(cfg config.ChartConfig, size chart.Size) error {
	if cfg.MaxWidth > 0 && size.Width > cfg.MaxWidth {
		return serrors.InvalidOption("width", strconv.FormatFloat(size.Width, 'g', -1, 64),
			fmt.Errorf("exceeds maximum %g", cfg.MaxWidth))
	}
	if cfg.MaxHeight > 0 && size.Height > cfg.MaxHeight {
		return serrors.InvalidOption("container_height", strconv.FormatFloat(size.Height, 'g', -1, 64),
			fmt.Errorf("exceeds maximum %g", cfg.MaxHeight))
	}
	return nil
}

// Size returns the container size, falling back to the configured defaults.
func (p ChartParams) Size(cfg config.ChartConfig) chart.Size {
	size := chart.Size{Width: p.Width, Height: p.ContainerHeight}
	if size.Width == 0 {
		size.Width = cfg.Width
	}
	if size.Height == 0 {
		size.Height = cfg.Height
	}
	return size
}

func floatParam(q url.Values, name string) (float64, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(raw, "px"), 64)
	if err != nil {
		return 0, serrors.InvalidOption(name, raw, err)
	}
	return v, nil
}

func boolParam(q url.Values, name string) (bool, error) {
	raw := q.Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, serrors.InvalidOption(name, raw, err)
	}
	return v, nil
}

func rangeParam(q url.Values, name string) (*chart.IndexRange, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	r, err := ParseRange(raw)
	if err != nil {
		return nil, serrors.InvalidOption(name, raw, err)
	}
	return r, nil
}

// ParseRange parses "a,b" into an index range.
func ParseRange(raw string) (*chart.IndexRange, error) {
	ints, err := parseInts(raw)
	if err != nil {
		return nil, err
	}
	if len(ints) != 2 {
		return nil, fmt.Errorf("want two comma separated indices, got %d", len(ints))
	}
	return chart.Range(ints[0], ints[1]), nil
}

func parseInts(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
