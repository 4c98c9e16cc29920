package sink

import (
	"github.com/matzehuels/metromap/pkg/graph"
)

// RenderJSON exports l as a pretty-printed JSON document, the same format
// [graph.ReadLayoutFile] reads back. Lines without a color are given their
// palette color so consumers draw them the way [RenderSVG] does.
//
// RenderJSON does not modify l and is safe to call concurrently.
func RenderJSON(l graph.Layout) ([]byte, error) {
	out := l
	out.Lines = make([]graph.Line, len(l.Lines))
	for i, line := range l.Lines {
		line.Color = LineColor(line, i)
		out.Lines[i] = line
	}
	return graph.MarshalLayout(out)
}
