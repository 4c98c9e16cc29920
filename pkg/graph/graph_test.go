package graph

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	errs "github.com/matzehuels/metromap/pkg/errors"
	"github.com/matzehuels/metromap/pkg/geom"
)

const careerYAML = `
name: Engineering
paths:
  - id: ic
    name: Individual Contributor
    color: "#E32017"
    roles:
      - {id: eng1, name: Engineer I, level: 1}
      - {id: eng2, name: Engineer II, level: 2}
  - id: mgmt
    roles:
      - {id: eng2, level: 2}
      - {id: em, name: Engineering Manager, level: 3}
transitions:
  - {from: eng2, to: em, recommended: true}
`

const careerTOML = `
name = "Engineering"

[[paths]]
id = "ic"
name = "Individual Contributor"
color = "#E32017"
roles = [
  { id = "eng1", name = "Engineer I", level = 1 },
  { id = "eng2", name = "Engineer II", level = 2 },
]

[[paths]]
id = "mgmt"
roles = [
  { id = "eng2", level = 2 },
  { id = "em", name = "Engineering Manager", level = 3 },
]

[[transitions]]
from = "eng2"
to = "em"
recommended = true
`

func TestReadCareerMapFormats(t *testing.T) {
	fromYAML, err := ReadCareerMap(strings.NewReader(careerYAML), FormatYAML)
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	fromTOML, err := ReadCareerMap(strings.NewReader(careerTOML), FormatTOML)
	if err != nil {
		t.Fatalf("toml: %v", err)
	}

	data, err := MarshalCareerMap(fromYAML)
	if err != nil {
		t.Fatal(err)
	}
	fromJSON, err := UnmarshalCareerMap(data)
	if err != nil {
		t.Fatalf("json: %v", err)
	}

	for name, m := range map[string]CareerMap{"yaml": fromYAML, "toml": fromTOML, "json": fromJSON} {
		if m.Name != "Engineering" || len(m.Paths) != 2 || m.RoleCount() != 4 {
			t.Errorf("%s: name=%q paths=%d roles=%d", name, m.Name, len(m.Paths), m.RoleCount())
		}
		if len(m.Transitions) != 1 || !m.Transitions[0].Recommended {
			t.Errorf("%s: transitions = %+v", name, m.Transitions)
		}
		if got := m.Paths[1].Roles[1].Name; got != "Engineering Manager" {
			t.Errorf("%s: role name = %q", name, got)
		}
	}

	a, _ := MarshalCareerMap(fromYAML)
	b, _ := MarshalCareerMap(fromTOML)
	if string(a) != string(b) {
		t.Error("equal maps should marshal identically")
	}
}

func TestReadCareerMapErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format string
		code   errs.Code
	}{
		{"malformed json", `{"paths": [`, FormatJSON, errs.ErrCodeInvalidInput},
		{"malformed yaml", "paths: [", FormatYAML, errs.ErrCodeInvalidInput},
		{"unknown format", `{}`, "xml", errs.ErrCodeInvalidFormat},
		{"path without id", `{"paths": [{"roles": []}]}`, FormatJSON, errs.ErrCodeInvalidInput},
		{"duplicate path", `{"paths": [{"id": "a"}, {"id": "a"}]}`, FormatJSON, errs.ErrCodeInvalidInput},
		{"role without id", `{"paths": [{"id": "a", "roles": [{"level": 1}]}]}`, FormatJSON, errs.ErrCodeInvalidInput},
		{"transition without to", `{"paths": [], "transitions": [{"from": "a"}]}`, FormatJSON, errs.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCareerMap(strings.NewReader(tt.input), tt.format)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errs.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (%v)", got, tt.code, err)
			}
		})
	}
}

func TestValidateAcceptsDataQualityIssues(t *testing.T) {
	// Level conflicts and transitions to unknown roles are handled later.
	m := CareerMap{
		Paths: []CareerPath{
			{ID: "a", Roles: []Role{{ID: "x", Level: 1}}},
			{ID: "b", Roles: []Role{{ID: "x", Level: 3}}},
		},
		Transitions: []Transition{{FromID: "x", ToID: "ghost"}},
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]string{
		"careers.toml":  FormatTOML,
		"careers.YAML":  FormatYAML,
		"careers.yml":   FormatYAML,
		"careers.json":  FormatJSON,
		"careers":       FormatJSON,
		"dir.v2/ladder": FormatJSON,
	}
	for path, want := range tests {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestReadCareerMapFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "careers.yaml")
	if err := os.WriteFile(path, []byte(careerYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := ReadCareerMapFile(path)
	if err != nil {
		t.Fatalf("ReadCareerMapFile: %v", err)
	}
	if m.RoleCount() != 4 {
		t.Errorf("RoleCount = %d, want 4", m.RoleCount())
	}

	_, err = ReadCareerMapFile(filepath.Join(dir, "missing.yaml"))
	if !errs.IsNotFound(err) {
		t.Errorf("missing file error = %v, want not found", err)
	}
}

func TestCareerMapFromRows(t *testing.T) {
	paths := []PathRow{
		{ID: "mgmt", Name: "Management", Order: 2},
		{ID: "ic", Name: "IC", Color: "#E32017", Order: 1},
	}
	rows := []PositionRow{
		{ID: "eng1", CareerPathID: "ic", Title: "Engineer I", Level: 1},
		{ID: "em", CareerPathID: "mgmt", Title: "Manager", Level: 3},
		{ID: "eng2", CareerPathID: "ic", Title: "Engineer II", Level: 2},
		{ID: "orphan", CareerPathID: "gone", Title: "Orphan", Level: 1},
	}
	m := CareerMapFromRows(paths, rows, []Transition{{FromID: "eng2", ToID: "em"}})

	if len(m.Paths) != 2 || m.Paths[0].ID != "ic" || m.Paths[1].ID != "mgmt" {
		t.Fatalf("paths = %+v, want ic then mgmt", m.Paths)
	}
	ic := m.Paths[0]
	if len(ic.Roles) != 2 || ic.Roles[0].ID != "eng1" || ic.Roles[1].Name != "Engineer II" {
		t.Errorf("ic roles = %+v", ic.Roles)
	}
	if m.RoleCount() != 3 {
		t.Errorf("RoleCount = %d, orphan row should be dropped", m.RoleCount())
	}
	if len(m.Transitions) != 1 {
		t.Errorf("transitions = %+v", m.Transitions)
	}
}

func testLayout() Layout {
	return Layout{
		Name:   "Engineering",
		Bounds: geom.Rect{MinX: 0, MinY: 0, MaxX: 300, MaxY: 150},
		Stations: []Station{
			{ID: "eng1", Name: "Engineer I", Level: 1, X: 50, Y: 50, PathIDs: []string{"ic"}},
			{ID: "eng2", Level: 2, X: 200, Y: 75, Interchange: true, PathIDs: []string{"ic", "mgmt"}},
		},
		Lines: []Line{{ID: "ic", Color: "#E32017", StationIDs: []string{"eng1", "eng2"}, D: "M 50.00 50.00 L 200.00 75.00"}},
	}
}

func TestLayoutLookup(t *testing.T) {
	l := testLayout()

	s, ok := l.Station("eng2")
	if !ok || !s.Interchange {
		t.Fatalf("Station(eng2) = %+v, %v", s, ok)
	}
	if s.Label() != "eng2" {
		t.Errorf("Label falls back to ID, got %q", s.Label())
	}
	if _, ok := l.Station("ghost"); ok {
		t.Error("unknown station found")
	}
	if got := l.StationMap()["eng1"].Label(); got != "Engineer I" {
		t.Errorf("StationMap label = %q", got)
	}
	if n := l.InterchangeCount(); n != 1 {
		t.Errorf("InterchangeCount = %d, want 1", n)
	}
}

func TestLayoutFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "careers.layout.json")
	l := testLayout()
	if err := WriteLayoutFile(l, path); err != nil {
		t.Fatal(err)
	}
	got, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("ReadLayoutFile: %v", err)
	}
	if got.Name != l.Name || len(got.Stations) != 2 || got.Lines[0].D != l.Lines[0].D || got.Bounds != l.Bounds {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestUnmarshalLayoutRejectsEmptyBounds(t *testing.T) {
	if _, err := UnmarshalLayout([]byte(`{"stations": [{"id": "a"}]}`)); err == nil {
		t.Error("layout with stations and empty bounds should be rejected")
	}
	if _, err := UnmarshalLayout([]byte(`{"stations": []}`)); err != nil {
		t.Errorf("empty layout: %v", err)
	}
	if _, err := UnmarshalLayout([]byte(`{`)); err == nil {
		t.Error("malformed layout should fail")
	}
}

func TestFilterLines(t *testing.T) {
	l := testLayout()
	l.Lines = append(l.Lines, Line{ID: "mgmt", StationIDs: []string{"eng2", "mgr"}})
	l.Stations = append(l.Stations, Station{ID: "mgr", Level: 3, X: 280, Y: 100, PathIDs: []string{"mgmt"}})
	l.Connections = []ConnectionPath{{FromID: "eng1", ToID: "mgr"}}
	l.Conflicts = []Conflict{{RoleID: "eng2", PathID: "ic", Level: 2, CanonicalLevel: 3}}

	got, err := l.FilterLines([]string{"mgmt"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Lines) != 1 || got.Lines[0].ID != "mgmt" {
		t.Fatalf("lines = %+v", got.Lines)
	}
	if len(got.Stations) != 2 {
		t.Fatalf("stations = %+v", got.Stations)
	}
	if s, _ := got.Station("eng2"); s.Interchange || len(s.PathIDs) != 1 {
		t.Errorf("eng2 should lose interchange status, got %+v", s)
	}
	if len(got.Connections) != 0 || len(got.Conflicts) != 0 {
		t.Errorf("connections/conflicts not filtered: %+v %+v", got.Connections, got.Conflicts)
	}
	if got.Bounds != l.Bounds {
		t.Errorf("bounds changed: %+v", got.Bounds)
	}
	if s, _ := l.Station("eng2"); !s.Interchange {
		t.Error("FilterLines modified the receiver")
	}

	if _, err := l.FilterLines([]string{"ghost"}); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("unknown line: got %v", err)
	}
}
