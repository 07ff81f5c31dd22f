package chart

import "math"

// Axis margins, reserved only for visible axes.
const (
	marginTopXAxis    = 20
	marginBottomXAxis = 30
	marginSideYAxis   = 40

	minPlotWidth  = 10
	defaultHeight = 200
)

// Size is a container size in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Margin is the space around the plot rectangle.
type Margin struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// PaddedAxis records which axis the aspect lock expanded.
type PaddedAxis int

const (
	PadNone PaddedAxis = iota
	PadX
	PadY
)

func (p PaddedAxis) String() string {
	switch p {
	case PadX:
		return "x"
	case PadY:
		return "y"
	default:
		return "none"
	}
}

// Layout is the result of the scale computation for one draw.
type Layout struct {
	Margin Margin

	// Width and Height are the inner plot size.
	Width  float64
	Height float64

	// XDomain and YDomain are the scale domains after aspect padding.
	XDomain Domain
	YDomain Domain

	// RawX and RawY are the extents of the working series.
	RawX Domain
	RawY Domain

	// Points are the points to draw, in order.
	Points []Point

	// Windowed is set when a caller window restricted the series.
	Windowed bool

	Padded PaddedAxis
}

// OuterWidth returns the plot width plus margins.
func (l Layout) OuterWidth() float64 {
	return l.Width + l.Margin.Left + l.Margin.Right
}

// OuterHeight returns the plot height plus margins.
func (l Layout) OuterHeight() float64 {
	return l.Height + l.Margin.Top + l.Margin.Bottom
}

// XScale maps X values onto [0, Width].
func (l Layout) XScale() LinearScale {
	return NewLinearScale(l.XDomain, 0, l.Width)
}

// YScale maps Y values onto [Height, 0].
func (l Layout) YScale() LinearScale {
	return NewLinearScale(l.YDomain, l.Height, 0)
}

// Project converts a data point to plot coordinates.
func (l Layout) Project(x, y float64) Vec {
	return Vec{X: l.XScale().Map(x), Y: l.YScale().Map(y)}
}

func marginsFor(opts Options) Margin {
	var m Margin
	if opts.ShowXAxis {
		m.Top = marginTopXAxis
		m.Bottom = marginBottomXAxis
	}
	if opts.ShowYAxis {
		m.Left = marginSideYAxis
		m.Right = marginSideYAxis
	}
	return m
}

// ComputeLayout windows the series, derives the domains and resolves the
// aspect lock for the given container size. It returns false when there is
// nothing to draw.
func ComputeLayout(s Series, opts Options, size Size) (Layout, bool) {
	n := s.Len()
	if n == 0 {
		return Layout{}, false
	}

	l := Layout{Margin: marginsFor(opts)}

	window := IndexRange{Start: 0, End: n - 1}
	if opts.Window != nil {
		if r, ok := opts.Window.Clamp(n); ok {
			window = r
			l.Windowed = true
		}
	}

	pts := s.points(window)
	if len(pts) == 0 {
		return Layout{}, false
	}

	l.RawX = extentX(pts)
	l.RawY = extentY(pts)
	xRange := l.RawX.flooredWidth()
	yRange := l.RawY.flooredWidth()

	availWidth := math.Max(minPlotWidth, size.Width-l.Margin.Left-l.Margin.Right)

	var boxHeight float64
	if opts.Height.IsSet() {
		boxHeight = opts.Height.Resolve(size.Height)
	} else {
		boxHeight = size.Height
	}
	if boxHeight <= 0 {
		boxHeight = defaultHeight
	}
	boxHeight = math.Max(0, boxHeight-l.Margin.Top-l.Margin.Bottom)

	xDomain, yDomain := l.RawX, l.RawY
	ratio := opts.AspectRatio
	if ratio < 0 || !finite(ratio) {
		ratio = 0
	}

	locked := ratio > 0 && opts.Height.IsSet()
	if ratio > 0 && !opts.Height.IsSet() {
		xUnitsPerPixel := xRange / availWidth
		yUnitsPerPixel := xUnitsPerPixel / ratio
		derived := yRange / yUnitsPerPixel
		if opts.MaxHeight > 0 && !(derived <= opts.MaxHeight) {
			// Content too tall for the cap is locked inside a box of that height.
			boxHeight = opts.MaxHeight
			locked = true
		} else {
			l.Height = derived
		}
	}

	if locked {
		// Y fills the box; the ratio then implies how wide the content is.
		impliedWidth := xRange * boxHeight / (ratio * yRange)
		if impliedWidth > 0 && finite(impliedWidth) {
			fit := availWidth / impliedWidth
			if impliedWidth > availWidth {
				yDomain = yDomain.Pad(yRange/fit - yRange)
				l.Padded = PadY
			} else {
				xDomain = xDomain.Pad(xRange*fit - xRange)
				l.Padded = PadX
				pts = s.pointsWithin(xDomain)
				if l.Windowed {
					// The padding exposes points beyond the window; Y must cover them.
					l.RawY = extentY(pts)
					yDomain = l.RawY
				}
			}
		}
	}
	if l.Height == 0 {
		l.Height = boxHeight
	}
	l.Width = availWidth

	l.XDomain = xDomain
	l.YDomain = yDomain
	l.Points = pts
	return l, true
}
