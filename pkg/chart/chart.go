// Package chart is an interactive line chart engine. It maps numeric series
// into pixel space, optionally locks the X:Y aspect ratio, and tracks brush
// and zoom gestures. Every draw produces a fresh Frame that can be written out
// as SVG or rasterised to PNG.
package chart

import (
	"sync"
	"sync/atomic"
)

// Chart owns one drawing surface and the gesture state attached to it.
// Pixel positions passed to gesture methods are relative to the plot
// rectangle, before the zoom transform.
type Chart struct {
	mu sync.Mutex

	series   Series
	opts     Options
	identity string
	size     Size

	layout Layout
	drawn  bool
	frame  *Frame

	brush  brushState
	zoom   zoomState
	seeded bool

	// cbMu is held while the range callback runs so Close can wait for it.
	cbMu   sync.Mutex
	closed atomic.Bool
}

// New creates a chart for the series. Nothing is drawn until Draw.
func New(s Series, opts Options) *Chart {
	return &Chart{
		series:   s,
		opts:     opts,
		identity: s.identity(),
		zoom:     newZoomState(),
	}
}

// Draw recomputes everything for the container size and replaces the
// previous frame.
func (c *Chart) Draw(size Size) *Frame {
	if c.closed.Load() {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.size = size
	return c.redraw()
}

// Resize is Draw under the name callers use for container size changes.
func (c *Chart) Resize(size Size) *Frame {
	return c.Draw(size)
}

// Update replaces the inputs and redraws at the last size. Gesture state is
// torn down when the series identity changes.
func (c *Chart) Update(s Series, opts Options) *Frame {
	if c.closed.Load() {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if id := s.identity(); id != c.identity {
		c.identity = id
		c.brush.reset()
		c.zoom = newZoomState()
		c.seeded = false
	}
	if !opts.EnableBrush {
		c.brush.reset()
	}
	if !opts.EnableZoom {
		c.zoom = newZoomState()
	}
	c.series = s
	c.opts = opts
	return c.redraw()
}

// Frame returns the last drawn frame.
func (c *Chart) Frame() *Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame
}

// Layout returns the layout of the last draw.
func (c *Chart) Layout() Layout {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.layout
}

// redraw must be called with mu held.
func (c *Chart) redraw() *Frame {
	l, ok := ComputeLayout(c.series, c.opts, c.size)
	c.layout = l
	c.drawn = ok
	if !ok {
		c.frame = &Frame{Transform: c.zoom.transform, Style: c.opts.style()}
		return c.frame
	}

	if !c.seeded && c.opts.EnableBrush && c.opts.InitialSelection != nil {
		if sel, ok := selectionForPositions(l, *c.opts.InitialSelection); ok {
			c.brush.selection = sel
		}
	}
	c.seeded = true

	t := Identity
	if c.opts.EnableZoom {
		t = c.zoom.transform
	}
	c.frame = buildFrame(c.series, c.opts, l, c.brush.selection, t)
	return c.frame
}

// brushable must be called with mu held.
func (c *Chart) brushable() bool {
	return c.opts.EnableBrush && c.drawn
}

// BrushStart begins a brush gesture at plot X position px. Any previous
// selection is discarded.
func (c *Chart) BrushStart(px float64) *Frame {
	if c.closed.Load() {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.brushable() {
		return c.frame
	}
	c.brush.active = true
	c.brush.anchor = clampFloat(px, 0, c.layout.Width)
	c.brush.selection = nil
	return c.redraw()
}

// BrushMove extends the active gesture to px and reports the selected range.
func (c *Chart) BrushMove(px float64) *Frame {
	return c.brushUpdate(px, false)
}

// BrushEnd finishes the gesture at px. An empty interval clears the
// selection and reports (0, 0).
func (c *Chart) BrushEnd(px float64) *Frame {
	return c.brushUpdate(px, true)
}

func (c *Chart) brushUpdate(px float64, end bool) *Frame {
	if c.closed.Load() {
		return nil
	}
	c.mu.Lock()
	if !c.brushable() || !c.brush.active {
		f := c.frame
		c.mu.Unlock()
		return f
	}
	c.brush.selection = selectionFromPixels(c.layout, c.brush.anchor, px)
	if end {
		c.brush.active = false
	}
	f := c.redraw()
	r := selectedRange(c.layout, c.brush.selection)
	fn := c.opts.OnRangeSelect
	c.mu.Unlock()

	c.emit(fn, r)
	return f
}

// ClearBrush removes the selection and reports (0, 0).
func (c *Chart) ClearBrush() *Frame {
	if c.closed.Load() {
		return nil
	}
	c.mu.Lock()
	if !c.opts.EnableBrush {
		f := c.frame
		c.mu.Unlock()
		return f
	}
	c.brush.reset()
	f := c.redraw()
	fn := c.opts.OnRangeSelect
	c.mu.Unlock()

	c.emit(fn, IndexRange{})
	return f
}

// MoveBrush sets the selection to the pixel interval [p0, p1] without
// invoking the callback.
func (c *Chart) MoveBrush(p0, p1 float64) *Frame {
	if c.closed.Load() {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.brushable() {
		return c.frame
	}
	c.brush.active = false
	c.brush.selection = selectionFromPixels(c.layout, p0, p1)
	return c.redraw()
}

// SelectIndices moves the brush onto positions r of the drawn series
// without invoking the callback.
func (c *Chart) SelectIndices(r IndexRange) *Frame {
	if c.closed.Load() {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.brushable() {
		return c.frame
	}
	sel, ok := selectionForPositions(c.layout, r)
	if !ok {
		return c.frame
	}
	c.brush.active = false
	c.brush.selection = sel
	return c.redraw()
}

// Selection returns the current selection as drawn positions. ok is false
// when nothing is selected.
func (c *Chart) Selection() (r IndexRange, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.brush.selection == nil || !c.drawn {
		return IndexRange{}, false
	}
	pos := selectedPositions(c.layout, c.brush.selection)
	if len(pos) == 0 {
		return IndexRange{}, false
	}
	return IndexRange{Start: pos[0], End: pos[len(pos)-1]}, true
}

// SelectedPoints returns the drawn points inside the current selection.
func (c *Chart) SelectedPoints() []Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	pos := selectedPositions(c.layout, c.brush.selection)
	out := make([]Point, len(pos))
	for i, p := range pos {
		out[i] = c.layout.Points[p]
	}
	return out
}

// Wheel zooms about the plot position (px, py). Positive deltaY zooms out.
func (c *Chart) Wheel(px, py, deltaY float64) *Frame {
	return c.zoomGesture(func(z *zoomState, o Options) {
		lo, hi := o.zoomBounds()
		z.wheel(Vec{X: px, Y: py}, deltaY, lo, hi)
	})
}

// PanStart begins a drag at (px, py).
func (c *Chart) PanStart(px, py float64) *Frame {
	return c.zoomGesture(func(z *zoomState, _ Options) { z.panStart(Vec{X: px, Y: py}) })
}

// PanMove translates the plot by the pointer movement since the last event.
func (c *Chart) PanMove(px, py float64) *Frame {
	return c.zoomGesture(func(z *zoomState, _ Options) { z.panMove(Vec{X: px, Y: py}) })
}

// PanEnd finishes a drag.
func (c *Chart) PanEnd() *Frame {
	return c.zoomGesture(func(z *zoomState, _ Options) { z.panEnd() })
}

// ResetZoom restores the identity transform.
func (c *Chart) ResetZoom() *Frame {
	return c.zoomGesture(func(z *zoomState, _ Options) { *z = newZoomState() })
}

func (c *Chart) zoomGesture(apply func(*zoomState, Options)) *Frame {
	if c.closed.Load() {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.opts.EnableZoom {
		return c.frame
	}
	apply(&c.zoom, c.opts)
	return c.redraw()
}

// Transform returns the current zoom transform.
func (c *Chart) Transform() Transform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoom.transform
}

// Close detaches the callback and drops all drawn state. No callback is
// invoked after Close returns, so it must not be called from the callback.
func (c *Chart) Close() {
	if c.closed.Swap(true) {
		return
	}
	// Wait for a callback in flight.
	c.cbMu.Lock()
	c.cbMu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.opts.OnRangeSelect = nil
	c.brush.reset()
	c.zoom = newZoomState()
	c.frame = nil
	c.layout = Layout{}
	c.drawn = false
}

func (c *Chart) emit(fn func(start, end int), r IndexRange) {
	if fn == nil {
		return
	}
	c.cbMu.Lock()
	defer c.cbMu.Unlock()
	if c.closed.Load() {
		return
	}
	fn(r.Start, r.End)
}
