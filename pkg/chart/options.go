package chart

import (
	"fmt"
	"strconv"
	"strings"
)

// Default zoom scale bounds.
const (
	DefaultZoomMin = 0.1
	DefaultZoomMax = 50
)

// Height is an explicit plot height, either in pixels or as a percentage of
// the container height. The zero value means "not set".
type Height struct {
	Value   float64
	Percent bool
}

// Px returns a pixel height.
func Px(v float64) Height {
	return Height{Value: v}
}

// Percent returns a height relative to the container.
func Percent(v float64) Height {
	return Height{Value: v, Percent: true}
}

// IsSet reports whether an explicit height was given.
func (h Height) IsSet() bool {
	return h.Value > 0
}

// Resolve converts the height to pixels for the given container height.
func (h Height) Resolve(container float64) float64 {
	if h.Percent {
		return container * h.Value / 100
	}
	return h.Value
}

// String formats the height the way ParseHeight accepts it.
func (h Height) String() string {
	if !h.IsSet() {
		return ""
	}
	v := strconv.FormatFloat(h.Value, 'f', -1, 64)
	if h.Percent {
		return v + "%"
	}
	return v
}

// ParseHeight parses "120", "120px" or "50%". An empty string yields the
// zero Height.
func ParseHeight(s string) (Height, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Height{}, nil
	}

	percent := false
	switch {
	case strings.HasSuffix(s, "%"):
		percent = true
		s = strings.TrimSuffix(s, "%")
	case strings.HasSuffix(s, "px"):
		s = strings.TrimSuffix(s, "px")
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Height{}, fmt.Errorf("invalid height %q: %w", s, err)
	}
	if v < 0 || !finite(v) {
		return Height{}, fmt.Errorf("invalid height %q: must be a non-negative number", s)
	}
	return Height{Value: v, Percent: percent}, nil
}

// Options configures a chart. The zero value draws a bare line that fills
// the container.
type Options struct {
	// Title is drawn in the top-left corner of the plot.
	Title string

	// AspectRatio is xUnitsPerPixel / yUnitsPerPixel. Zero disables the
	// aspect lock.
	AspectRatio float64

	// Height is an explicit plot height. Combined with AspectRatio it locks
	// the X:Y proportion inside a fixed box.
	Height Height

	// MaxHeight caps the plot height derived from AspectRatio alone. Taller
	// content is locked inside a box of MaxHeight as if Height were set.
	// Zero means no cap.
	MaxHeight float64

	ShowXAxis bool
	ShowYAxis bool

	// EnableBrush installs the horizontal range selector.
	EnableBrush bool

	// OnRangeSelect receives the first and last selected index of the drawn
	// series on every brush update, and (0, 0) when the selection is cleared.
	OnRangeSelect func(start, end int)

	// InitialSelection seeds the brush on the first draw of a series. The
	// callback is not invoked for it.
	InitialSelection *IndexRange

	// FillArea draws the area under the curve.
	FillArea bool

	// Window restricts drawing to an index range of the series.
	Window *IndexRange

	// Breakpoints are indices into the series; each consecutive pair is
	// drawn as a segment coloured by direction.
	Breakpoints []int

	// MaskSegments clips the segment overlay to the plot rectangle.
	MaskSegments bool

	// EnableZoom enables wheel zoom and drag pan of the plot group.
	EnableZoom bool

	// ZoomMin and ZoomMax bound the zoom scale. Zero selects the defaults.
	ZoomMin float64
	ZoomMax float64

	// XTickFormatter formats X axis labels. Defaults to FormatValue.
	XTickFormatter func(float64) string

	// Style overrides the default colours.
	Style *Style
}

func (o Options) style() Style {
	if o.Style != nil {
		return *o.Style
	}
	return DefaultStyle()
}

func (o Options) zoomBounds() (float64, float64) {
	lo, hi := o.ZoomMin, o.ZoomMax
	if lo <= 0 {
		lo = DefaultZoomMin
	}
	if hi <= 0 {
		hi = DefaultZoomMax
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo, hi
}

// Style holds the colours and stroke settings used when drawing.
type Style struct {
	LineColor      string
	LineWidth      float64
	FillColor      string
	HighlightColor string
	RisingColor    string
	FallingColor   string
	SegmentOpacity float64
	MaskColor      string
	SelectionColor string
	AxisColor      string
	FontFamily     string
	TitleSize      float64
	TickSize       float64
}

// DefaultStyle returns the standard palette.
func DefaultStyle() Style {
	return Style{
		LineColor:      "#82C4FF",
		LineWidth:      1,
		FillColor:      "#82C4FF99",
		HighlightColor: "#82C4FF99",
		RisingColor:    "green",
		FallingColor:   "red",
		SegmentOpacity: 0.5,
		MaskColor:      "#3331",
		SelectionColor: "#3333",
		AxisColor:      "#374151",
		FontFamily:     "Arial, sans-serif",
		TitleSize:      16,
		TickSize:       10,
	}
}
