package metro

import (
	"slices"

	"github.com/matzehuels/metromap/pkg/geom"
)

// =============================================================================
// Node - Station
// =============================================================================

// Node is a station: one role at one level, shared by every line listing it.
type Node struct {
	ID      string
	Name    string
	Level   int
	PathIDs []string

	// Position is meaningful only when Placed is true.
	Position geom.Point
	Placed   bool
}

// IsInterchange reports whether the station belongs to more than one line.
func (n Node) IsInterchange() bool { return len(n.PathIDs) > 1 }

// Label returns the display name, falling back to the ID.
func (n Node) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// WithPosition returns a copy of n placed at p.
func (n Node) WithPosition(p geom.Point) Node {
	n.Position = p
	n.Placed = true
	return n
}

func (n Node) clone() Node {
	n.PathIDs = slices.Clone(n.PathIDs)
	return n
}

// =============================================================================
// Path - Line
// =============================================================================

// Path is a line: a career track whose stations are ordered by level.
type Path struct {
	ID      string
	Name    string
	Color   string
	NodeIDs []string
}

// =============================================================================
// Connection - Transition
// =============================================================================

// Connection is a directed transition between two stations.
// Recommended only affects rendering.
type Connection struct {
	FromID      string
	ToID        string
	Recommended bool
}

// LevelConflict records a role listed at different levels by different
// lines. The first occurrence wins; later ones are reported here.
type LevelConflict struct {
	NodeID         string
	PathID         string
	Level          int
	CanonicalLevel int
}

// =============================================================================
// Graph - Layout Input/Output
// =============================================================================

// Graph is the node set, lines and connections of one layout pass.
//
// Nodes keep the order in which the adapter first saw them. Stages treat a
// Graph as a value: they [Graph.Clone] before changing anything.
type Graph struct {
	Nodes       []Node
	Paths       []Path
	Connections []Connection

	// Data-quality findings from the adapter. They never stop a layout.
	Conflicts []LevelConflict
	Skipped   []Connection
}

// Clone returns a deep copy of g.
func (g Graph) Clone() Graph {
	out := Graph{
		Nodes:       make([]Node, len(g.Nodes)),
		Paths:       make([]Path, len(g.Paths)),
		Connections: slices.Clone(g.Connections),
		Conflicts:   slices.Clone(g.Conflicts),
		Skipped:     slices.Clone(g.Skipped),
	}
	for i, n := range g.Nodes {
		out.Nodes[i] = n.clone()
	}
	for i, p := range g.Paths {
		p.NodeIDs = slices.Clone(p.NodeIDs)
		out.Paths[i] = p
	}
	return out
}

// Index returns a map from node ID to its position in g.Nodes.
func (g Graph) Index() map[string]int {
	idx := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		idx[n.ID] = i
	}
	return idx
}

// Node returns the node with the given ID.
func (g Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// PathIndex returns the zero-based index of the line with the given ID,
// or -1 if there is none.
func (g Graph) PathIndex(id string) int {
	return slices.IndexFunc(g.Paths, func(p Path) bool { return p.ID == id })
}

// NodesOf returns the stations of a line in line order.
// Unknown IDs in the line are skipped.
func (g Graph) NodesOf(p Path) []Node {
	idx := g.Index()
	out := make([]Node, 0, len(p.NodeIDs))
	for _, id := range p.NodeIDs {
		if i, ok := idx[id]; ok {
			out = append(out, g.Nodes[i])
		}
	}
	return out
}

// Interchanges returns the number of stations shared by several lines.
func (g Graph) Interchanges() int {
	n := 0
	for _, node := range g.Nodes {
		if node.IsInterchange() {
			n++
		}
	}
	return n
}
