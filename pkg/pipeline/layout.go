package pipeline

import (
	errs "github.com/matzehuels/metromap/pkg/errors"
	"github.com/matzehuels/metromap/pkg/graph"
	"github.com/matzehuels/metromap/pkg/metro"
	"github.com/matzehuels/metromap/pkg/metro/adapter"
	"github.com/matzehuels/metromap/pkg/metro/collision"
	"github.com/matzehuels/metromap/pkg/metro/layout"
	"github.com/matzehuels/metromap/pkg/metro/pathgen"
)

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout runs the geometry stages on m and returns the
// serializable layout:
//
//  1. adapter: roles become stations, shared roles become interchanges
//  2. layout: stations are placed by level and line
//  3. collision: stations closer than two interchange radii are pushed apart
//  4. pathgen: line and connection paths and the view bounds are generated
//
// Data-quality findings (level conflicts, transitions to unknown roles) are
// logged at warn level and never stop the layout.
func GenerateLayout(m graph.CareerMap, opts Options) (graph.Layout, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Layout{}, err
	}
	if n := m.RoleCount(); n > MaxStations {
		return graph.Layout{}, errs.New(errs.ErrCodeInvalidInput, "map has %d roles, limit is %d", n, MaxStations)
	}
	logger := opts.Logger

	g := adapter.FromCareerMap(m)
	for _, c := range g.Conflicts {
		logger.Warn("role listed at different levels",
			"role", c.NodeID, "path", c.PathID,
			"level", c.Level, "using", c.CanonicalLevel)
	}
	for _, c := range g.Skipped {
		logger.Warn("skipping transition with unknown role", "from", c.FromID, "to", c.ToID)
	}

	g = layout.Calculate(g, opts.Layout)
	g, collisions := collision.Apply(g, opts.Layout)
	if collisions > 0 {
		logger.Debug("resolved station collisions", "pairs", collisions)
	}

	l := ExportLayout(g, opts.Layout, opts.Lines)
	l.Name = m.Name
	l.Collisions = collisions
	return l, nil
}

// ExportLayout converts a placed graph to the serialization format,
// generating every line and connection path and the view bounds.
func ExportLayout(g metro.Graph, cfg metro.Config, lines pathgen.LineOptions) graph.Layout {
	scales := pathgen.Identity()
	l := graph.Layout{
		Bounds:            pathgen.ViewBounds(g.Nodes, cfg.Padding),
		NodeRadius:        cfg.NodeRadius,
		InterchangeRadius: cfg.InterchangeRadius,
		Config:            cfg,
		Stations:          make([]graph.Station, 0, len(g.Nodes)),
		Lines:             make([]graph.Line, 0, len(g.Paths)),
	}

	for _, n := range g.Nodes {
		if !n.Placed {
			continue
		}
		l.Stations = append(l.Stations, graph.Station{
			ID:          n.ID,
			Name:        n.Name,
			Level:       n.Level,
			X:           n.Position.X,
			Y:           n.Position.Y,
			Interchange: n.IsInterchange(),
			PathIDs:     n.PathIDs,
		})
	}

	for _, p := range g.Paths {
		nodes := g.NodesOf(p)
		ids := make([]string, len(nodes))
		for i, n := range nodes {
			ids[i] = n.ID
		}
		l.Lines = append(l.Lines, graph.Line{
			ID:         p.ID,
			Name:       p.Name,
			Color:      p.Color,
			StationIDs: ids,
			D:          pathgen.LinePath(nodes, scales, lines),
		})
	}

	idx := g.Index()
	for _, c := range g.Connections {
		from, to := g.Nodes[idx[c.FromID]], g.Nodes[idx[c.ToID]]
		l.Connections = append(l.Connections, graph.ConnectionPath{
			FromID:      c.FromID,
			ToID:        c.ToID,
			Recommended: c.Recommended,
			D:           pathgen.ConnectionPath(from, to, scales),
		})
	}

	for _, c := range g.Conflicts {
		l.Conflicts = append(l.Conflicts, graph.Conflict{
			RoleID:         c.NodeID,
			PathID:         c.PathID,
			Level:          c.Level,
			CanonicalLevel: c.CanonicalLevel,
		})
	}
	return l
}
