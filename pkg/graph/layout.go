package graph

import (
	"encoding/json"
	"fmt"
	"os"

	errs "github.com/matzehuels/metromap/pkg/errors"
	"github.com/matzehuels/metromap/pkg/geom"
	"github.com/matzehuels/metromap/pkg/metro"
)

// =============================================================================
// Layout - Positioned Metro Map
// =============================================================================

// Layout is the serialization format of a computed metro map.
//
// Coordinates are final screen coordinates in the space described by
// Bounds; renderers use Bounds as their viewBox.
type Layout struct {
	Name   string    `json:"name,omitempty" bson:"name,omitempty"`
	Bounds geom.Rect `json:"bounds" bson:"bounds"`

	Stations    []Station        `json:"stations" bson:"stations"`
	Lines       []Line           `json:"lines" bson:"lines"`
	Connections []ConnectionPath `json:"connections,omitempty" bson:"connections,omitempty"`

	// NodeRadius and InterchangeRadius size station markers.
	NodeRadius        float64 `json:"node_radius" bson:"node_radius"`
	InterchangeRadius float64 `json:"interchange_radius" bson:"interchange_radius"`

	// Data-quality and layout diagnostics.
	Conflicts  []Conflict `json:"conflicts,omitempty" bson:"conflicts,omitempty"`
	Collisions int        `json:"collisions,omitempty" bson:"collisions,omitempty"`

	// Config is the layout configuration the coordinates were computed with.
	Config metro.Config `json:"config" bson:"config"`
}

// Station is a positioned node.
type Station struct {
	ID          string   `json:"id" bson:"id"`
	Name        string   `json:"name,omitempty" bson:"name,omitempty"`
	Level       int      `json:"level" bson:"level"`
	X           float64  `json:"x" bson:"x"`
	Y           float64  `json:"y" bson:"y"`
	Interchange bool     `json:"interchange,omitempty" bson:"interchange,omitempty"`
	PathIDs     []string `json:"path_ids" bson:"path_ids"`
}

// Label returns the display name, falling back to the ID.
func (s Station) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}

// Line is a drawn career path.
type Line struct {
	ID         string   `json:"id" bson:"id"`
	Name       string   `json:"name,omitempty" bson:"name,omitempty"`
	Color      string   `json:"color" bson:"color"`
	StationIDs []string `json:"station_ids" bson:"station_ids"`
	D          string   `json:"d" bson:"d"` // SVG path data
}

// ConnectionPath is a drawn transition.
type ConnectionPath struct {
	FromID      string `json:"from" bson:"from"`
	ToID        string `json:"to" bson:"to"`
	Recommended bool   `json:"recommended,omitempty" bson:"recommended,omitempty"`
	D           string `json:"d" bson:"d"`
}

// Conflict reports a role listed at different levels by different paths.
type Conflict struct {
	RoleID         string `json:"role_id" bson:"role_id"`
	PathID         string `json:"path_id" bson:"path_id"`
	Level          int    `json:"level" bson:"level"`
	CanonicalLevel int    `json:"canonical_level" bson:"canonical_level"`
}

// Station returns the station with the given ID.
func (l *Layout) Station(id string) (Station, bool) {
	for _, s := range l.Stations {
		if s.ID == id {
			return s, true
		}
	}
	return Station{}, false
}

// InterchangeCount returns the number of stations shared by several lines.
func (l *Layout) InterchangeCount() int {
	n := 0
	for _, s := range l.Stations {
		if s.Interchange {
			n++
		}
	}
	return n
}

// StationMap returns the positioned stations keyed by ID.
func (l *Layout) StationMap() map[string]Station {
	m := make(map[string]Station, len(l.Stations))
	for _, s := range l.Stations {
		m[s.ID] = s
	}
	return m
}

// FilterLines returns a copy of l that keeps only the given lines, the
// stations on them and the connections between kept stations. Coordinates
// and bounds are unchanged so filtered maps line up with the full one. A
// station stays an interchange only if two kept lines share it.
func (l Layout) FilterLines(ids []string) (Layout, error) {
	keep := make(map[string]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
	}
	out := l
	out.Lines = nil
	onLine := map[string]bool{}
	for _, line := range l.Lines {
		if !keep[line.ID] {
			continue
		}
		delete(keep, line.ID)
		out.Lines = append(out.Lines, line)
		for _, id := range line.StationIDs {
			onLine[id] = true
		}
	}
	for id := range keep {
		return Layout{}, errs.New(errs.ErrCodeInvalidInput, "no line %q in layout", id)
	}

	kept := make(map[string]bool, len(ids))
	for _, line := range out.Lines {
		kept[line.ID] = true
	}
	out.Stations = nil
	for _, st := range l.Stations {
		if !onLine[st.ID] {
			continue
		}
		var paths []string
		for _, p := range st.PathIDs {
			if kept[p] {
				paths = append(paths, p)
			}
		}
		st.PathIDs = paths
		st.Interchange = len(paths) > 1
		out.Stations = append(out.Stations, st)
	}
	out.Connections = nil
	for _, c := range l.Connections {
		if onLine[c.FromID] && onLine[c.ToID] {
			out.Connections = append(out.Connections, c)
		}
	}
	out.Conflicts = nil
	for _, c := range l.Conflicts {
		if kept[c.PathID] {
			out.Conflicts = append(out.Conflicts, c)
		}
	}
	return out, nil
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// A layout whose bounds are empty while it has stations is rejected.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if len(l.Stations) > 0 && (l.Bounds.Width() <= 0 || l.Bounds.Height() <= 0) {
		return Layout{}, fmt.Errorf("layout with stations must have non-empty bounds")
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
