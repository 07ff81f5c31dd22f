package chart

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// SVG document constants.
const (
	SVGVersion   = "1.1"
	SVGNamespace = "http://www.w3.org/2000/svg"
)

// SVG serialises the frame as a standalone SVG document. An empty frame
// yields an empty document of the frame's size.
func (f *Frame) SVG() string {
	var sb strings.Builder
	f.writeSVG(&sb)
	return sb.String()
}

// WriteTo writes the SVG document to w.
func (f *Frame) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, f.SVG())
	return int64(n), err
}

func (f *Frame) writeSVG(sb *strings.Builder) {
	if f == nil {
		f = &Frame{}
	}
	writeHeader(sb, f.Width, f.Height)
	if f.Empty() {
		sb.WriteString("</svg>\n")
		return
	}

	l := f.Layout
	clip := clipID(l)
	writeDefinitions(sb, f.Style, clip, l)

	fmt.Fprintf(sb, "  <g transform=\"translate(%s,%s)\">\n", num(l.Margin.Left), num(l.Margin.Top))
	if f.Transform.IsIdentity() {
		sb.WriteString("   <g class=\"plot\">\n")
	} else {
		fmt.Fprintf(sb, "   <g class=\"plot\" transform=\"%s\">\n", f.Transform)
	}

	for _, layer := range f.Layers {
		writeLayer(sb, f, layer, clip)
	}

	sb.WriteString("   </g>\n")
	sb.WriteString("  </g>\n")
	sb.WriteString("</svg>\n")
}

func writeHeader(sb *strings.Builder, width, height float64) {
	sb.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	fmt.Fprintf(sb, "<svg version=\"%s\" xmlns=\"%s\" width=\"%s\" height=\"%s\" viewBox=\"0 0 %s %s\">\n",
		SVGVersion, SVGNamespace, num(width), num(height), num(width), num(height))
}

func writeDefinitions(sb *strings.Builder, st Style, clip string, l Layout) {
	sb.WriteString("  <defs>\n")
	sb.WriteString("    <style type=\"text/css\">\n")
	fmt.Fprintf(sb, "      .title { font-family: %s; font-size: %spx; fill: %s; }\n",
		st.FontFamily, num(st.TitleSize), st.AxisColor)
	fmt.Fprintf(sb, "      .tick-label { font-family: %s; font-size: %spx; fill: %s; }\n",
		st.FontFamily, num(st.TickSize), st.AxisColor)
	sb.WriteString("    </style>\n")
	fmt.Fprintf(sb, "    <clipPath id=\"%s\"><rect width=\"%s\" height=\"%s\"/></clipPath>\n",
		clip, num(l.Width), num(l.Height))
	sb.WriteString("  </defs>\n")
}

// clipID is derived from the plot size so documents inlined on one page
// only share an id when their clip rectangles are identical.
func clipID(l Layout) string {
	return "plot-clip-" + strings.ReplaceAll(num(l.Width)+"x"+num(l.Height), ".", "_")
}

func writeLayer(sb *strings.Builder, f *Frame, layer Layer, clip string) {
	if layer.Clipped {
		fmt.Fprintf(sb, "    <g class=\"%s\" clip-path=\"url(#%s)\">\n", layer.Kind, clip)
	} else {
		fmt.Fprintf(sb, "    <g class=\"%s\">\n", layer.Kind)
	}

	switch layer.Kind {
	case LayerTitle:
		fmt.Fprintf(sb, "      <text x=\"4\" y=\"%s\" class=\"title\">%s</text>\n",
			num(f.Style.TitleSize), escapeXML(layer.Text))
	case LayerXAxis:
		writeXAxis(sb, f, layer)
	case LayerYAxis:
		writeYAxis(sb, f, layer)
	}

	for _, p := range layer.Paths {
		writePath(sb, p)
	}
	for _, s := range layer.Segments {
		fmt.Fprintf(sb, "      <line x1=\"%s\" y1=\"%s\" x2=\"%s\" y2=\"%s\" stroke=\"%s\" stroke-opacity=\"%s\" stroke-width=\"2\" data-direction=\"%s\"/>\n",
			num(s.From.X), num(s.From.Y), num(s.To.X), num(s.To.Y), s.Stroke, num(s.Opacity), s.Direction)
	}
	for _, r := range layer.Rects {
		fmt.Fprintf(sb, "      <rect x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\" fill=\"%s\"/>\n",
			num(r.X), num(r.Y), num(r.Width), num(r.Height), r.Fill)
	}

	sb.WriteString("    </g>\n")
}

func writeXAxis(sb *strings.Builder, f *Frame, layer Layer) {
	l, color := f.Layout, f.Style.AxisColor
	h := num(l.Height)
	fmt.Fprintf(sb, "      <line x1=\"0\" y1=\"%s\" x2=\"%s\" y2=\"%s\" stroke=\"%s\" stroke-width=\"1\"/>\n",
		h, num(l.Width), h, color)
	for _, t := range layer.Ticks {
		x := num(t.Position)
		fmt.Fprintf(sb, "      <line x1=\"%s\" y1=\"%s\" x2=\"%s\" y2=\"%s\" stroke=\"%s\"/>\n",
			x, h, x, num(l.Height+6), color)
		fmt.Fprintf(sb, "      <text x=\"%s\" y=\"%s\" class=\"tick-label\" text-anchor=\"middle\">%s</text>\n",
			x, num(l.Height+18), escapeXML(t.Label))
	}
}

func writeYAxis(sb *strings.Builder, f *Frame, layer Layer) {
	l, color := f.Layout, f.Style.AxisColor
	fmt.Fprintf(sb, "      <line x1=\"0\" y1=\"0\" x2=\"0\" y2=\"%s\" stroke=\"%s\" stroke-width=\"1\"/>\n",
		num(l.Height), color)
	for _, t := range layer.Ticks {
		y := num(t.Position)
		fmt.Fprintf(sb, "      <line x1=\"-6\" y1=\"%s\" x2=\"0\" y2=\"%s\" stroke=\"%s\"/>\n", y, y, color)
		fmt.Fprintf(sb, "      <text x=\"-9\" y=\"%s\" class=\"tick-label\" text-anchor=\"end\" dominant-baseline=\"middle\">%s</text>\n",
			y, escapeXML(t.Label))
	}
}

func writePath(sb *strings.Builder, p Path) {
	if len(p.Points) == 0 {
		return
	}
	var d strings.Builder
	if p.Area {
		fmt.Fprintf(&d, "M %s %s", num(p.Points[0].X), num(p.Baseline))
		for _, v := range p.Points {
			fmt.Fprintf(&d, " L %s %s", num(v.X), num(v.Y))
		}
		fmt.Fprintf(&d, " L %s %s Z", num(p.Points[len(p.Points)-1].X), num(p.Baseline))
		fmt.Fprintf(sb, "      <path d=\"%s\" fill=\"%s\" stroke=\"none\"/>\n", d.String(), p.Fill)
		return
	}

	for i, v := range p.Points {
		if i == 0 {
			fmt.Fprintf(&d, "M %s %s", num(v.X), num(v.Y))
		} else {
			fmt.Fprintf(&d, " L %s %s", num(v.X), num(v.Y))
		}
	}
	fmt.Fprintf(sb, "      <path d=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"%s\" stroke-linecap=\"round\" stroke-linejoin=\"round\"/>\n",
		d.String(), p.Stroke, num(p.StrokeWidth))
}

// num formats a coordinate with at most two decimals.
func num(v float64) string {
	r := math.Round(v*100) / 100
	if r == 0 {
		r = 0 // drop negative zero
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// escapeXML escapes special characters for XML/SVG content.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
