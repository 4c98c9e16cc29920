package sink

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/metromap/pkg/graph"
)

// ToDOT converts l to Graphviz DOT source.
//
// Stations are pinned with pos="x,y!" so neato keeps the computed layout;
// y is negated because Graphviz places the origin at the bottom left. Each
// line becomes a chain of colored edges between consecutive stations and
// each connection a dashed or solid grey edge.
func ToDOT(l graph.Layout) string {
	return toDOT(l, 0)
}

func toDOT(l graph.Layout, dpi float64) string {
	var buf bytes.Buffer
	name := l.Name
	if name == "" {
		name = "metro"
	}
	fmt.Fprintf(&buf, "graph %q {\n", name)
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  notranslate=true;\n")
	buf.WriteString("  bgcolor=\"white\";\n")
	if dpi > 0 {
		fmt.Fprintf(&buf, "  dpi=%s;\n", num(dpi))
	}
	fmt.Fprintf(&buf, "  node [shape=circle, style=filled, fillcolor=white, penwidth=2, fixedsize=true, width=%s, fontsize=10, fontname=\"Helvetica\"];\n",
		num(2*l.NodeRadius/72))
	buf.WriteString("  edge [penwidth=6];\n\n")

	for _, s := range l.Stations {
		attrs := fmt.Sprintf("label=\"\", xlabel=%q, pos=\"%s,%s!\"", s.Label(), num(s.X), num(-s.Y))
		if s.Interchange {
			attrs += fmt.Sprintf(", shape=box, style=\"rounded,filled\", width=%s, height=%s",
				num(2*l.InterchangeRadius/72), num(2*l.InterchangeRadius/72))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", s.ID, attrs)
	}

	buf.WriteString("\n")
	for i, line := range l.Lines {
		color := LineColor(line, i)
		for j := 1; j < len(line.StationIDs); j++ {
			fmt.Fprintf(&buf, "  %q -- %q [color=%q];\n", line.StationIDs[j-1], line.StationIDs[j], color)
		}
	}

	if len(l.Connections) > 0 {
		buf.WriteString("\n")
	}
	for _, c := range l.Connections {
		style := "dashed"
		if c.Recommended {
			style = "solid"
		}
		fmt.Fprintf(&buf, "  %q -- %q [color=\"#64748b\", penwidth=2, style=%s];\n", c.FromID, c.ToID, style)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderPNG renders l to PNG through Graphviz's neato engine with pinned
// positions. A scale of 2 doubles the output resolution.
func RenderPNG(ctx context.Context, l graph.Layout, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(toDOT(l, 72*scale)))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
