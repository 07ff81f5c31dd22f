package chart

import (
	"math"
	"sort"
	"strconv"
)

// minRange is the smallest value range used by the aspect computations.
// It keeps the unit-per-pixel rates finite when every value is equal.
const minRange = 1.0

// Domain is the value range of data along one axis.
type Domain struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Width returns Max - Min.
func (d Domain) Width() float64 {
	return d.Max - d.Min
}

// Mid returns the midpoint of the domain.
func (d Domain) Mid() float64 {
	return (d.Min + d.Max) / 2
}

// Pad widens the domain by delta, half on each side. The midpoint is kept.
func (d Domain) Pad(delta float64) Domain {
	return Domain{Min: d.Min - delta/2, Max: d.Max + delta/2}
}

// Contains reports whether v lies inside the domain, allowing for rounding
// error introduced by a pixel round-trip.
func (d Domain) Contains(v float64) bool {
	eps := tolerance(d)
	return v >= d.Min-eps && v <= d.Max+eps
}

// flooredWidth returns the width of the domain, never less than minRange.
func (d Domain) flooredWidth() float64 {
	return math.Max(minRange, d.Width())
}

// tolerance is the slack allowed when comparing values against a domain.
func tolerance(d Domain) float64 {
	scale := math.Max(math.Abs(d.Min), math.Abs(d.Max))
	return math.Max(d.Width(), scale) * 1e-9
}

// extentX returns the X extent of pts. pts must not be empty.
func extentX(pts []Point) Domain {
	d := Domain{Min: pts[0].X, Max: pts[0].X}
	for _, p := range pts[1:] {
		d.Min = math.Min(d.Min, p.X)
		d.Max = math.Max(d.Max, p.X)
	}
	return d
}

// extentY returns the Y extent of pts. pts must not be empty.
func extentY(pts []Point) Domain {
	d := Domain{Min: pts[0].Y, Max: pts[0].Y}
	for _, p := range pts[1:] {
		d.Min = math.Min(d.Min, p.Y)
		d.Max = math.Max(d.Max, p.Y)
	}
	return d
}

// LinearScale maps a domain linearly onto a pixel range. The range may be
// inverted (RangeMin > RangeMax), as it is for the Y axis.
type LinearScale struct {
	Domain   Domain
	RangeMin float64
	RangeMax float64
}

// NewLinearScale creates a scale mapping d onto [r0, r1].
func NewLinearScale(d Domain, r0, r1 float64) LinearScale {
	return LinearScale{Domain: d, RangeMin: r0, RangeMax: r1}
}

// Map converts a domain value to a pixel position. A zero-width domain maps
// every value to the middle of the range.
func (s LinearScale) Map(v float64) float64 {
	return scaleValue(v, s.Domain.Min, s.Domain.Max, s.RangeMin, s.RangeMax)
}

// Invert converts a pixel position back to a domain value.
func (s LinearScale) Invert(p float64) float64 {
	if s.RangeMax == s.RangeMin {
		return s.Domain.Min
	}
	return scaleValue(p, s.RangeMin, s.RangeMax, s.Domain.Min, s.Domain.Max)
}

// scaleValue maps a value from one range to another.
func scaleValue(value, srcMin, srcMax, dstMin, dstMax float64) float64 {
	if srcMax == srcMin {
		return (dstMin + dstMax) / 2
	}
	return dstMin + (value-srcMin)*(dstMax-dstMin)/(srcMax-srcMin)
}

// axisTicks returns the de-duplicated, sorted tick values for an axis: the
// data extent and the (possibly padded) domain. No intermediate ticks are
// generated.
func axisTicks(raw, domain Domain) []float64 {
	values := []float64{raw.Min, raw.Max, domain.Min, domain.Max}
	sort.Float64s(values)

	ticks := values[:1]
	for _, v := range values[1:] {
		if v != ticks[len(ticks)-1] {
			ticks = append(ticks, v)
		}
	}
	return ticks
}

// FormatValue is the default tick label formatter.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
