package chart

// LayerKind identifies a drawn layer. Layers are composed in the order of
// these constants, later layers on top.
type LayerKind string

const (
	LayerTitle     LayerKind = "title"
	LayerXAxis     LayerKind = "x-axis"
	LayerYAxis     LayerKind = "y-axis"
	LayerLine      LayerKind = "line"
	LayerArea      LayerKind = "area"
	LayerSegments  LayerKind = "segments"
	LayerWindow    LayerKind = "window-mask"
	LayerSelection LayerKind = "selection"
	LayerBrush     LayerKind = "brush"
)

// Direction is the slope of a segment between two breakpoints.
type Direction string

const (
	Rising  Direction = "rising"
	Falling Direction = "falling"
)

// Path is a polyline or a filled area in plot coordinates.
type Path struct {
	Points      []Vec
	Baseline    float64 // for areas: the pixel Y the area closes against
	Area        bool
	Fill        string
	Stroke      string
	StrokeWidth float64
}

// Segment is a straight line between two breakpoints.
type Segment struct {
	From      Vec
	To        Vec
	FromIndex int
	ToIndex   int
	Direction Direction
	Stroke    string
	Opacity   float64
}

// Rect is an axis-aligned rectangle in plot coordinates.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
	Fill   string
}

// Tick is an axis tick with its label.
type Tick struct {
	Value    float64
	Position float64
	Label    string
}

// Layer is one independently gated part of the visual.
type Layer struct {
	Kind     LayerKind
	Paths    []Path
	Segments []Segment
	Rects    []Rect
	Ticks    []Tick
	Text     string

	// Clipped layers are clipped to the plot rectangle.
	Clipped bool
}

// Frame is the complete visual produced by one draw. It is rebuilt from
// scratch on every draw and never patched.
type Frame struct {
	// Width and Height are the outer size including margins.
	Width  float64
	Height float64

	Layout    Layout
	Transform Transform
	Style     Style
	Layers    []Layer
}

// Empty reports whether nothing was drawn.
func (f *Frame) Empty() bool {
	return f == nil || len(f.Layers) == 0
}

// Layer returns the layer of the given kind.
func (f *Frame) Layer(kind LayerKind) (*Layer, bool) {
	if f == nil {
		return nil, false
	}
	for i := range f.Layers {
		if f.Layers[i].Kind == kind {
			return &f.Layers[i], true
		}
	}
	return nil, false
}

// Has reports whether a layer of the given kind was drawn.
func (f *Frame) Has(kind LayerKind) bool {
	_, ok := f.Layer(kind)
	return ok
}

// Kinds lists the drawn layers in composition order.
func (f *Frame) Kinds() []LayerKind {
	if f == nil {
		return nil
	}
	kinds := make([]LayerKind, len(f.Layers))
	for i, l := range f.Layers {
		kinds[i] = l.Kind
	}
	return kinds
}
