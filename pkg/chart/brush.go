package chart

// Selection is an active brush selection. It is kept in data space so it
// survives resizes; the pixel interval is re-derived on every draw.
type Selection struct {
	Min float64
	Max float64
}

// Pixels projects the selection onto the plot, clamped to its width.
func (s Selection) Pixels(l Layout) (float64, float64) {
	x := l.XScale()
	p0 := clampFloat(x.Map(s.Min), 0, l.Width)
	p1 := clampFloat(x.Map(s.Max), 0, l.Width)
	if p0 > p1 {
		p0, p1 = p1, p0
	}
	return p0, p1
}

// brushState is the gesture state of the range selector.
type brushState struct {
	selection *Selection
	active    bool
	anchor    float64
}

func (b *brushState) reset() {
	*b = brushState{}
}

// selectionFromPixels inverts a pixel interval into data space. It returns
// nil for an empty interval.
func selectionFromPixels(l Layout, p0, p1 float64) *Selection {
	p0 = clampFloat(p0, 0, l.Width)
	p1 = clampFloat(p1, 0, l.Width)
	if p0 > p1 {
		p0, p1 = p1, p0
	}
	if p0 == p1 {
		return nil
	}
	x := l.XScale()
	return &Selection{Min: x.Invert(p0), Max: x.Invert(p1)}
}

// selectedPositions returns the positions in l.Points whose X lies inside
// the selection.
func selectedPositions(l Layout, sel *Selection) []int {
	if sel == nil {
		return nil
	}
	d := Domain{Min: sel.Min, Max: sel.Max}
	var out []int
	for i, p := range l.Points {
		if d.Contains(p.X) {
			out = append(out, i)
		}
	}
	return out
}

// selectedRange converts a selection to the first and last drawn position,
// or (0, 0) when nothing matches.
func selectedRange(l Layout, sel *Selection) IndexRange {
	pos := selectedPositions(l, sel)
	if len(pos) == 0 {
		return IndexRange{}
	}
	return IndexRange{Start: pos[0], End: pos[len(pos)-1]}
}

// selectionForPositions returns the data-space selection spanning the given
// positions of the drawn series, the same index space the range callback
// reports in.
func selectionForPositions(l Layout, r IndexRange) (*Selection, bool) {
	r, ok := r.Clamp(len(l.Points))
	if !ok {
		return nil, false
	}
	a, b := l.Points[r.Start].X, l.Points[r.End].X
	if a > b {
		a, b = b, a
	}
	return &Selection{Min: a, Max: b}, true
}
