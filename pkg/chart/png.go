package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// MaxRasterSide bounds each side of a rasterised frame, in pixels.
const MaxRasterSide = 8192

// ErrFrameTooLarge is returned by RenderPNG for frames wider or taller than
// MaxRasterSide.
var ErrFrameTooLarge = errors.New("frame too large to rasterise")

// RenderPNG rasterises a frame. The raster keeps the frame's domains, drawn
// points, segments and selection; the zoom transform and window mask are
// interactive decoration and are not rasterised.
func RenderPNG(f *Frame, w io.Writer) error {
	if f.Empty() {
		return fmt.Errorf("render png: nothing to draw")
	}
	if !(f.Width <= MaxRasterSide && f.Height <= MaxRasterSide) {
		return fmt.Errorf("render png: %.0fx%.0f: %w", f.Width, f.Height, ErrFrameTooLarge)
	}
	l := f.Layout
	if len(l.Points) < 2 {
		return fmt.Errorf("render png: need at least 2 points, got %d", len(l.Points))
	}
	st := f.Style

	xs := make([]float64, len(l.Points))
	ys := make([]float64, len(l.Points))
	for i, p := range l.Points {
		xs[i], ys[i] = p.X, p.Y
	}

	main := gochart.ContinuousSeries{
		Name: "series",
		Style: gochart.Style{
			StrokeColor: parseColor(st.LineColor),
			StrokeWidth: math.Max(1, st.LineWidth),
		},
		XValues: xs,
		YValues: ys,
	}
	if f.Has(LayerArea) {
		main.Style.FillColor = parseColor(st.FillColor)
	}
	series := []gochart.Series{main}

	if layer, ok := f.Layer(LayerSegments); ok {
		for i, s := range layer.Segments {
			x := l.XScale()
			y := l.YScale()
			series = append(series, gochart.ContinuousSeries{
				Name: fmt.Sprintf("segment-%d", i),
				Style: gochart.Style{
					StrokeColor: parseColor(s.Stroke).WithAlpha(uint8(255 * clampFloat(s.Opacity, 0, 1))),
					StrokeWidth: 2,
				},
				XValues: []float64{x.Invert(s.From.X), x.Invert(s.To.X)},
				YValues: []float64{y.Invert(s.From.Y), y.Invert(s.To.Y)},
			})
		}
	}

	if f.Has(LayerSelection) {
		sel := selectionPoints(f)
		if len(sel) >= 2 {
			sx := make([]float64, len(sel))
			sy := make([]float64, len(sel))
			for i, p := range sel {
				sx[i], sy[i] = p.X, p.Y
			}
			series = append(series, gochart.ContinuousSeries{
				Name: "selection",
				Style: gochart.Style{
					StrokeColor: parseColor(st.HighlightColor),
					FillColor:   parseColor(st.HighlightColor),
				},
				XValues: sx,
				YValues: sy,
			})
		}
	}

	xd, yd := widen(l.XDomain), widen(l.YDomain)
	ch := gochart.Chart{
		Title:  layerText(f, LayerTitle),
		Width:  int(math.Round(f.Width)),
		Height: int(math.Round(f.Height)),
		Background: gochart.Style{
			Padding: gochart.Box{
				Top:    int(l.Margin.Top),
				Left:   int(l.Margin.Left),
				Right:  int(l.Margin.Right),
				Bottom: int(l.Margin.Bottom),
			},
		},
		XAxis: gochart.XAxis{
			Style: gochart.Style{Hidden: !f.Has(LayerXAxis)},
			Range: &gochart.ContinuousRange{Min: xd.Min, Max: xd.Max},
			Ticks: chartTicks(f, LayerXAxis),
		},
		YAxis: gochart.YAxis{
			Style: gochart.Style{Hidden: !f.Has(LayerYAxis)},
			Range: &gochart.ContinuousRange{Min: yd.Min, Max: yd.Max},
			Ticks: chartTicks(f, LayerYAxis),
		},
		Series: series,
	}

	if err := ch.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	return nil
}

func selectionPoints(f *Frame) []Point {
	layer, ok := f.Layer(LayerBrush)
	if !ok || len(layer.Rects) < 2 {
		return nil
	}
	l := f.Layout
	r := layer.Rects[1]
	sel := selectionFromPixels(l, r.X, r.X+r.Width)
	var out []Point
	for _, p := range selectedPositions(l, sel) {
		out = append(out, l.Points[p])
	}
	return out
}

func chartTicks(f *Frame, kind LayerKind) []gochart.Tick {
	layer, ok := f.Layer(kind)
	if !ok {
		return nil
	}
	ticks := make([]gochart.Tick, len(layer.Ticks))
	for i, t := range layer.Ticks {
		ticks[i] = gochart.Tick{Value: t.Value, Label: t.Label}
	}
	return ticks
}

func layerText(f *Frame, kind LayerKind) string {
	if layer, ok := f.Layer(kind); ok {
		return layer.Text
	}
	return ""
}

// widen gives a zero-width domain some extent; the raster backend rejects
// empty ranges.
func widen(d Domain) Domain {
	if d.Width() > 0 {
		return d
	}
	return Domain{Min: d.Min - 0.5, Max: d.Max + 0.5}
}

var namedColors = map[string]string{
	"green":       "#008000",
	"red":         "#ff0000",
	"black":       "#000000",
	"white":       "#ffffff",
	"transparent": "#0000",
}

// parseColor accepts #RGB, #RGBA, #RRGGBB, #RRGGBBAA and a few CSS names.
// Anything else falls back to opaque black.
func parseColor(s string) drawing.Color {
	s = strings.ToLower(strings.TrimSpace(s))
	if hex, ok := namedColors[s]; ok {
		s = hex
	}
	s = strings.TrimPrefix(s, "#")

	if len(s) == 3 || len(s) == 4 {
		var b strings.Builder
		for _, r := range s {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		s = b.String()
	}
	if len(s) == 6 {
		s += "ff"
	}
	if len(s) != 8 {
		return drawing.ColorBlack
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return drawing.ColorBlack
	}
	return drawing.Color{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}
}
