package chart

import (
	"fmt"
	"math"
)

// wheelSensitivity converts wheel deltaY into a log2 scale step.
const wheelSensitivity = 0.002

// Transform is a uniform scale followed by a translation, applied to the
// plot group when zoom is enabled.
type Transform struct {
	K float64 `json:"k"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Identity is the transform that leaves the plot unchanged.
var Identity = Transform{K: 1}

// IsIdentity reports whether t leaves the plot unchanged.
func (t Transform) IsIdentity() bool {
	return t.K == 1 && t.X == 0 && t.Y == 0
}

// Apply maps a plot position through the transform.
func (t Transform) Apply(v Vec) Vec {
	return Vec{X: v.X*t.K + t.X, Y: v.Y*t.K + t.Y}
}

// Invert maps a transformed position back to plot coordinates.
func (t Transform) Invert(v Vec) Vec {
	return Vec{X: (v.X - t.X) / t.K, Y: (v.Y - t.Y) / t.K}
}

// String renders the transform as an SVG transform attribute value.
func (t Transform) String() string {
	return fmt.Sprintf("translate(%s,%s) scale(%s)", num(t.X), num(t.Y), num(t.K))
}

// zoomState is the session-local pan/zoom gesture state.
type zoomState struct {
	transform Transform
	panning   bool
	last      Vec
}

func newZoomState() zoomState {
	return zoomState{transform: Identity}
}

// wheel scales about the pointer so the point under it stays fixed.
func (z *zoomState) wheel(at Vec, deltaY, lo, hi float64) {
	t := z.transform
	k := clampFloat(t.K*math.Pow(2, -deltaY*wheelSensitivity), lo, hi)
	anchor := t.Invert(at)
	z.transform = Transform{
		K: k,
		X: at.X - anchor.X*k,
		Y: at.Y - anchor.Y*k,
	}
}

func (z *zoomState) panStart(at Vec) {
	z.panning = true
	z.last = at
}

func (z *zoomState) panMove(at Vec) {
	if !z.panning {
		return
	}
	z.transform.X += at.X - z.last.X
	z.transform.Y += at.Y - z.last.Y
	z.last = at
}

func (z *zoomState) panEnd() {
	z.panning = false
}
