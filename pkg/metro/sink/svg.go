package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/metromap/pkg/graph"
	"github.com/matzehuels/metromap/pkg/metro/pathgen"
)

const stationCSS = `
    .line { fill: none; stroke-width: 8; stroke-linecap: round; stroke-linejoin: round; }
    .connection { fill: none; stroke: #64748b; stroke-width: 2; }
    .connection.optional { stroke-dasharray: 6 4; }
    .station { fill: #ffffff; stroke: #1e293b; stroke-width: 3; }
    .station.interchange { stroke-width: 4; }
    .label { font-family: Helvetica, Arial, sans-serif; font-size: 13px; fill: #1e293b; }
    .here { fill: none; stroke: #ef4444; stroke-width: 3; }
    .here-label { font-family: Helvetica, Arial, sans-serif; font-size: 12px; font-weight: bold; fill: #ef4444; }
    .legend { fill: #ffffff; stroke: #cbd5e1; }
    .legend-label { font-family: Helvetica, Arial, sans-serif; font-size: 12px; fill: #1e293b; }`

// Palette supplies colors for lines that do not declare one.
var Palette = []string{
	"#e11d48", "#2563eb", "#16a34a", "#f59e0b",
	"#9333ea", "#0891b2", "#ea580c", "#4b5563",
}

// LineColor returns the line's color or the palette color for its index.
func LineColor(l graph.Line, index int) string {
	if l.Color != "" {
		return l.Color
	}
	return Palette[index%len(Palette)]
}

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	highlight string
	legend    bool
	labels    bool
}

// WithHighlight marks the station with the given ID as the viewer's
// current position.
func WithHighlight(stationID string) SVGOption {
	return func(r *svgRenderer) { r.highlight = stationID }
}

// WithLegend adds a legend naming every line.
func WithLegend() SVGOption { return func(r *svgRenderer) { r.legend = true } }

// WithLabels toggles station labels. Labels are on by default.
func WithLabels(show bool) SVGOption { return func(r *svgRenderer) { r.labels = show } }

// RenderSVG draws l as a standalone SVG document whose viewBox is l.Bounds.
func RenderSVG(l graph.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{labels: true}
	for _, opt := range opts {
		opt(&r)
	}

	b := l.Bounds
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%s %s %s %s" width="%s" height="%s">`+"\n",
		num(b.MinX), num(b.MinY), num(b.Width()), num(b.Height()), num(b.Width()), num(b.Height()))
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", stationCSS)

	renderLines(&buf, l)
	renderConnections(&buf, l)
	renderStations(&buf, l)
	if r.labels {
		renderLabels(&buf, l)
	}
	if r.highlight != "" {
		renderHighlight(&buf, l, r.highlight)
	}
	if r.legend && len(l.Lines) > 0 {
		renderLegend(&buf, l)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderLines(buf *bytes.Buffer, l graph.Layout) {
	buf.WriteString(`  <g class="lines">` + "\n")
	for i, line := range l.Lines {
		if line.D == "" {
			continue
		}
		fmt.Fprintf(buf, `    <path id="line-%s" class="line" d="%s" stroke="%s"/>`+"\n",
			escapeXML(line.ID), line.D, escapeXML(LineColor(line, i)))
	}
	buf.WriteString("  </g>\n")
}

func renderConnections(buf *bytes.Buffer, l graph.Layout) {
	if len(l.Connections) == 0 {
		return
	}
	buf.WriteString(`  <g class="connections">` + "\n")
	for _, c := range l.Connections {
		class := "connection"
		if !c.Recommended {
			class += " optional"
		}
		fmt.Fprintf(buf, `    <path class="%s" d="%s" data-from="%s" data-to="%s"/>`+"\n",
			class, c.D, escapeXML(c.FromID), escapeXML(c.ToID))
	}
	buf.WriteString("  </g>\n")
}

func renderStations(buf *bytes.Buffer, l graph.Layout) {
	buf.WriteString(`  <g class="stations">` + "\n")
	for _, s := range l.Stations {
		id := escapeXML(s.ID)
		if s.Interchange {
			r := l.InterchangeRadius
			fmt.Fprintf(buf, `    <rect id="station-%s" class="station interchange" x="%s" y="%s" width="%s" height="%s" rx="%s"/>`+"\n",
				id, num(s.X-r), num(s.Y-r), num(2*r), num(2*r), num(r/2))
			continue
		}
		fmt.Fprintf(buf, `    <circle id="station-%s" class="station" cx="%s" cy="%s" r="%s"/>`+"\n",
			id, num(s.X), num(s.Y), num(l.NodeRadius))
	}
	buf.WriteString("  </g>\n")
}

func renderLabels(buf *bytes.Buffer, l graph.Layout) {
	buf.WriteString(`  <g class="labels">` + "\n")
	for _, s := range l.Stations {
		r := l.NodeRadius
		if s.Interchange {
			r = l.InterchangeRadius
		}
		fmt.Fprintf(buf, `    <text class="label" x="%s" y="%s" text-anchor="middle">%s</text>`+"\n",
			num(s.X), num(s.Y+r+16), escapeXML(s.Label()))
	}
	buf.WriteString("  </g>\n")
}

func renderHighlight(buf *bytes.Buffer, l graph.Layout, id string) {
	s, ok := l.Station(id)
	if !ok {
		return
	}
	r := max(l.NodeRadius, l.InterchangeRadius) + 8
	fmt.Fprintf(buf, `  <circle class="here" cx="%s" cy="%s" r="%s"/>`+"\n", num(s.X), num(s.Y), num(r))
	fmt.Fprintf(buf, `  <text class="here-label" x="%s" y="%s" text-anchor="middle">You are here</text>`+"\n",
		num(s.X), num(s.Y-r-6))
}

func renderLegend(buf *bytes.Buffer, l graph.Layout) {
	const (
		rowH   = 20.0
		swatch = 24.0
		width  = 180.0
	)
	x := l.Bounds.MinX + 10
	y := l.Bounds.MinY + 10
	h := float64(len(l.Lines))*rowH + 12

	buf.WriteString(`  <g class="legend-group">` + "\n")
	fmt.Fprintf(buf, `    <rect class="legend" x="%s" y="%s" width="%s" height="%s" rx="4"/>`+"\n",
		num(x), num(y), num(width), num(h))
	for i, line := range l.Lines {
		ly := y + 16 + float64(i)*rowH
		fmt.Fprintf(buf, `    <line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="6" stroke-linecap="round"/>`+"\n",
			num(x+10), num(ly-4), num(x+10+swatch), num(ly-4), escapeXML(LineColor(line, i)))
		name := line.Name
		if name == "" {
			name = line.ID
		}
		fmt.Fprintf(buf, `    <text class="legend-label" x="%s" y="%s">%s</text>`+"\n",
			num(x+20+swatch), num(ly), escapeXML(name))
	}
	buf.WriteString("  </g>\n")
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func num(v float64) string { return pathgen.Num(v) }
