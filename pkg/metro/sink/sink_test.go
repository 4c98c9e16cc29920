package sink

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/metromap/pkg/geom"
	"github.com/matzehuels/metromap/pkg/graph"
)

func testLayout() graph.Layout {
	return graph.Layout{
		Name:   "eng",
		Bounds: geom.Rect{MinX: 0, MinY: 0, MaxX: 400, MaxY: 250},
		Stations: []graph.Station{
			{ID: "eng1", Name: "Engineer", Level: 0, X: 50, Y: 50, PathIDs: []string{"ic"}},
			{ID: "lead", Name: "Tech <Lead>", Level: 1, X: 200, Y: 100, Interchange: true, PathIDs: []string{"ic", "mgmt"}},
			{ID: "em", Level: 2, X: 350, Y: 150, PathIDs: []string{"mgmt"}},
		},
		Lines: []graph.Line{
			{ID: "ic", Name: "Engineering", Color: "#ff0000", StationIDs: []string{"eng1", "lead"}, D: "M 50 50 L 200 100"},
			{ID: "mgmt", StationIDs: []string{"lead", "em"}, D: "M 200 100 L 350 150"},
		},
		Connections: []graph.ConnectionPath{
			{FromID: "eng1", ToID: "em", Recommended: true, D: "M 50 50 C 200 50 200 150 350 150"},
			{FromID: "em", ToID: "eng1", D: "M 350 150 C 200 150 200 50 50 50"},
		},
		NodeRadius:        12,
		InterchangeRadius: 12,
	}
}

func TestRenderSVG(t *testing.T) {
	svg := string(RenderSVG(testLayout()))

	checks := []string{
		`viewBox="0 0 400 250"`,
		`<path id="line-ic" class="line" d="M 50 50 L 200 100" stroke="#ff0000"/>`,
		`stroke="` + Palette[1] + `"`,
		`<circle id="station-eng1" class="station" cx="50" cy="50" r="12"/>`,
		`<rect id="station-lead" class="station interchange"`,
		`Tech &lt;Lead&gt;`,
		`class="connection optional"`,
		`>em</text>`,
	}
	for _, want := range checks {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
	if strings.Contains(svg, "You are here") {
		t.Error("highlight rendered without WithHighlight")
	}
	if strings.Contains(svg, "legend-label") && strings.Contains(svg, `class="legend"`) {
		t.Error("legend rendered without WithLegend")
	}
	if !strings.HasSuffix(svg, "</svg>\n") {
		t.Error("SVG not closed")
	}
}

func TestRenderSVGOptions(t *testing.T) {
	svg := string(RenderSVG(testLayout(), WithHighlight("lead"), WithLegend(), WithLabels(false)))

	if !strings.Contains(svg, `<circle class="here" cx="200" cy="100"`) {
		t.Error("missing highlight marker at lead")
	}
	if !strings.Contains(svg, ">Engineering</text>") || !strings.Contains(svg, ">mgmt</text>") {
		t.Error("legend should name every line")
	}
	if strings.Contains(svg, `class="label"`) {
		t.Error("labels rendered with WithLabels(false)")
	}

	// Unknown highlight is ignored.
	svg = string(RenderSVG(testLayout(), WithHighlight("ghost")))
	if strings.Contains(svg, "You are here") {
		t.Error("highlight rendered for unknown station")
	}
}

func TestRenderSVGEmpty(t *testing.T) {
	l := graph.Layout{Bounds: geom.Rect{MaxX: 1000, MaxY: 600}}
	svg := string(RenderSVG(l, WithLegend()))
	if !strings.Contains(svg, `viewBox="0 0 1000 600"`) {
		t.Errorf("unexpected viewBox in %s", svg)
	}
}

func TestRenderJSON(t *testing.T) {
	l := testLayout()
	data, err := RenderJSON(l)
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}

	var out graph.Layout
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}
	if len(out.Stations) != 3 {
		t.Errorf("Stations = %d, want 3", len(out.Stations))
	}
	if out.Lines[1].Color != Palette[1] {
		t.Errorf("Lines[1].Color = %q, want palette color %q", out.Lines[1].Color, Palette[1])
	}
	if l.Lines[1].Color != "" {
		t.Error("RenderJSON modified its input")
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testLayout())

	checks := []string{
		`graph "eng" {`,
		`layout=neato;`,
		`"eng1" [label="", xlabel="Engineer", pos="50,-50!"]`,
		`"lead" [label="", xlabel="Tech <Lead>", pos="200,-100!", shape=box`,
		`"eng1" -- "lead" [color="#ff0000"];`,
		`"lead" -- "em" [color="` + Palette[1] + `"];`,
		`"eng1" -- "em" [color="#64748b", penwidth=2, style=solid];`,
		`"em" -- "eng1" [color="#64748b", penwidth=2, style=dashed];`,
	}
	for _, want := range checks {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "dpi=") {
		t.Error("ToDOT should not set dpi")
	}
}

func TestLineColor(t *testing.T) {
	if got := LineColor(graph.Line{Color: "red"}, 3); got != "red" {
		t.Errorf("LineColor = %q, want red", got)
	}
	if got := LineColor(graph.Line{}, len(Palette)); got != Palette[0] {
		t.Errorf("LineColor wraps to %q, want %q", got, Palette[0])
	}
}
