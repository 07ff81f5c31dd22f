package chart

import (
	"fmt"
	"math"
)

// Series is a pair of parallel numeric sequences. X is usually a timestamp
// or sample index, Y the measured quantity.
type Series struct {
	// ID identifies the data set. Gesture state (brush, zoom) is reset
	// whenever the identity of the series changes. When empty, the identity
	// of the underlying slices is used instead.
	ID string

	X []float64
	Y []float64
}

// Len returns the number of usable points. A length mismatch between X and
// Y is tolerated by ignoring the tail of the longer slice.
func (s Series) Len() int {
	if len(s.X) < len(s.Y) {
		return len(s.X)
	}
	return len(s.Y)
}

// identity returns a key that changes whenever the caller hands over a
// different data set.
func (s Series) identity() string {
	if s.ID != "" {
		return s.ID
	}
	if s.Len() == 0 {
		return "empty"
	}
	return fmt.Sprintf("%p/%p/%d", &s.X[0], &s.Y[0], s.Len())
}

// IndexRange is an inclusive pair of indices into a series.
type IndexRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Range is a convenience constructor for IndexRange.
func Range(start, end int) *IndexRange {
	return &IndexRange{Start: start, End: end}
}

// Clamp orders the pair and restricts it to [0, n-1]. It returns false when
// n is zero and no valid range exists.
func (r IndexRange) Clamp(n int) (IndexRange, bool) {
	if n <= 0 {
		return IndexRange{}, false
	}
	if r.Start > r.End {
		r.Start, r.End = r.End, r.Start
	}
	r.Start = clampInt(r.Start, 0, n-1)
	r.End = clampInt(r.End, 0, n-1)
	return r, true
}

// Len returns the number of indices covered by the range.
func (r IndexRange) Len() int {
	return r.End - r.Start + 1
}

// Point is a drawn data point together with its index in the source series.
type Point struct {
	Index int
	X     float64
	Y     float64
}

// Vec is a position in pixel space.
type Vec struct {
	X float64
	Y float64
}

// points returns the finite points inside r, in order.
func (s Series) points(r IndexRange) []Point {
	pts := make([]Point, 0, r.Len())
	for i := r.Start; i <= r.End; i++ {
		if !finite(s.X[i]) || !finite(s.Y[i]) {
			continue
		}
		pts = append(pts, Point{Index: i, X: s.X[i], Y: s.Y[i]})
	}
	return pts
}

// pointsWithin returns the finite points of the whole series whose X lies in
// d, preserving the original order.
func (s Series) pointsWithin(d Domain) []Point {
	n := s.Len()
	eps := tolerance(d)
	pts := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		x, y := s.X[i], s.Y[i]
		if !finite(x) || !finite(y) {
			continue
		}
		if x < d.Min-eps || x > d.Max+eps {
			continue
		}
		pts = append(pts, Point{Index: i, X: x, Y: y})
	}
	return pts
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
