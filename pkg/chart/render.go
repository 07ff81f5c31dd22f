package chart

// buildFrame composes the layers of one draw in their fixed order. It is a
// pure function of its arguments; nothing from a previous frame is reused.
func buildFrame(s Series, opts Options, l Layout, sel *Selection, t Transform) *Frame {
	st := opts.style()
	f := &Frame{
		Width:     l.OuterWidth(),
		Height:    l.OuterHeight(),
		Layout:    l,
		Transform: t,
		Style:     st,
	}

	if opts.Title != "" {
		f.Layers = append(f.Layers, Layer{Kind: LayerTitle, Text: opts.Title})
	}
	if opts.ShowXAxis {
		f.Layers = append(f.Layers, xAxisLayer(l, opts))
	}
	if opts.ShowYAxis {
		f.Layers = append(f.Layers, yAxisLayer(l))
	}

	drawn := project(l, l.Points)
	if len(drawn) >= 2 {
		f.Layers = append(f.Layers, Layer{
			Kind: LayerLine,
			Paths: []Path{{
				Points:      drawn,
				Stroke:      st.LineColor,
				StrokeWidth: st.LineWidth,
			}},
			Clipped: true,
		})
		if opts.FillArea {
			f.Layers = append(f.Layers, Layer{
				Kind:    LayerArea,
				Paths:   []Path{areaPath(l, drawn, st.FillColor)},
				Clipped: true,
			})
		}
	}

	if segs := segments(s, l, opts.Breakpoints, st); len(segs) > 0 {
		f.Layers = append(f.Layers, Layer{
			Kind:     LayerSegments,
			Segments: segs,
			Clipped:  opts.MaskSegments,
		})
	}

	if l.Windowed {
		x := l.XScale()
		x0, x1 := x.Map(l.RawX.Min), x.Map(l.RawX.Max)
		f.Layers = append(f.Layers, Layer{
			Kind:  LayerWindow,
			Rects: []Rect{{X: x0, Y: 0, Width: x1 - x0, Height: l.Height, Fill: st.MaskColor}},
		})
	}

	if opts.EnableBrush {
		if sel != nil {
			if pos := selectedPositions(l, sel); len(pos) > 0 {
				pts := make([]Point, len(pos))
				for i, p := range pos {
					pts[i] = l.Points[p]
				}
				f.Layers = append(f.Layers, Layer{
					Kind:    LayerSelection,
					Paths:   []Path{areaPath(l, project(l, pts), st.HighlightColor)},
					Clipped: true,
				})
			}
		}
		f.Layers = append(f.Layers, brushLayer(l, sel, st))
	}
	return f
}

func project(l Layout, pts []Point) []Vec {
	x, y := l.XScale(), l.YScale()
	out := make([]Vec, len(pts))
	for i, p := range pts {
		out[i] = Vec{X: x.Map(p.X), Y: y.Map(p.Y)}
	}
	return out
}

// areaPath closes the curve against the lowest value of the working series.
func areaPath(l Layout, pts []Vec, fill string) Path {
	return Path{
		Points:   pts,
		Baseline: l.YScale().Map(l.RawY.Min),
		Area:     true,
		Fill:     fill,
	}
}

func xAxisLayer(l Layout, opts Options) Layer {
	format := opts.XTickFormatter
	if format == nil {
		format = FormatValue
	}
	x := l.XScale()
	layer := Layer{Kind: LayerXAxis}
	for _, v := range axisTicks(l.RawX, l.XDomain) {
		layer.Ticks = append(layer.Ticks, Tick{Value: v, Position: x.Map(v), Label: format(v)})
	}
	return layer
}

func yAxisLayer(l Layout) Layer {
	y := l.YScale()
	layer := Layer{Kind: LayerYAxis}
	for _, v := range axisTicks(l.RawY, l.YDomain) {
		layer.Ticks = append(layer.Ticks, Tick{Value: v, Position: y.Map(v), Label: FormatValue(v)})
	}
	return layer
}

// segments joins consecutive breakpoints. Breakpoints index the full series;
// indices out of range or pointing at non-finite values are skipped.
func segments(s Series, l Layout, breakpoints []int, st Style) []Segment {
	if len(breakpoints) < 2 || len(l.Points) < 2 {
		return nil
	}
	n := s.Len()
	valid := make([]int, 0, len(breakpoints))
	for _, b := range breakpoints {
		if b < 0 || b >= n || !finite(s.X[b]) || !finite(s.Y[b]) {
			continue
		}
		valid = append(valid, b)
	}

	var out []Segment
	for i := 0; i+1 < len(valid); i++ {
		a, b := valid[i], valid[i+1]
		dir, stroke := Rising, st.RisingColor
		if s.Y[b] < s.Y[a] {
			dir, stroke = Falling, st.FallingColor
		}
		out = append(out, Segment{
			From:      l.Project(s.X[a], s.Y[a]),
			To:        l.Project(s.X[b], s.Y[b]),
			FromIndex: a,
			ToIndex:   b,
			Direction: dir,
			Stroke:    stroke,
			Opacity:   st.SegmentOpacity,
		})
	}
	return out
}

// brushLayer holds the pointer capture area and, when set, the selection
// rectangle.
func brushLayer(l Layout, sel *Selection, st Style) Layer {
	layer := Layer{
		Kind:  LayerBrush,
		Rects: []Rect{{Width: l.Width, Height: l.Height, Fill: "transparent"}},
	}
	if sel != nil {
		p0, p1 := sel.Pixels(l)
		layer.Rects = append(layer.Rects, Rect{X: p0, Width: p1 - p0, Height: l.Height, Fill: st.SelectionColor})
	}
	return layer
}
