// Package adapter converts career data into the metro layout model.
//
// Every role becomes exactly one station. A role listed by several career
// paths becomes a single interchange station whose PathIDs name every path
// that lists it, in path order.
//
// Inconsistent data is tolerated and reported rather than rejected:
//
//   - a role listed at different levels keeps its first level; each later
//     disagreement is recorded in Graph.Conflicts
//   - a transition naming an unknown role is dropped into Graph.Skipped
//
// The adapter never mutates its input.
package adapter

import (
	"cmp"
	"slices"

	"github.com/matzehuels/metromap/pkg/graph"
	"github.com/matzehuels/metromap/pkg/metro"
)

// FromCareerMap builds the layout graph for m.
func FromCareerMap(m graph.CareerMap) metro.Graph {
	var g metro.Graph
	index := make(map[string]int)

	for _, cp := range m.Paths {
		path := metro.Path{ID: cp.ID, Name: cp.Name, Color: cp.Color}
		onPath := make(map[string]bool, len(cp.Roles))

		for _, role := range cp.Roles {
			i, exists := index[role.ID]
			if !exists {
				index[role.ID] = len(g.Nodes)
				g.Nodes = append(g.Nodes, metro.Node{
					ID:      role.ID,
					Name:    role.Name,
					Level:   role.Level,
					PathIDs: []string{cp.ID},
				})
				onPath[role.ID] = true
				path.NodeIDs = append(path.NodeIDs, role.ID)
				continue
			}

			node := &g.Nodes[i]
			if role.Level != node.Level {
				g.Conflicts = append(g.Conflicts, metro.LevelConflict{
					NodeID:         role.ID,
					PathID:         cp.ID,
					Level:          role.Level,
					CanonicalLevel: node.Level,
				})
			}
			if onPath[role.ID] {
				continue
			}
			onPath[role.ID] = true
			node.PathIDs = append(node.PathIDs, cp.ID)
			path.NodeIDs = append(path.NodeIDs, role.ID)
		}

		sortByLevel(path.NodeIDs, g.Nodes, index)
		g.Paths = append(g.Paths, path)
	}

	for _, t := range m.Transitions {
		c := metro.Connection{FromID: t.FromID, ToID: t.ToID, Recommended: t.Recommended}
		_, okFrom := index[t.FromID]
		_, okTo := index[t.ToID]
		if !okFrom || !okTo {
			g.Skipped = append(g.Skipped, c)
			continue
		}
		g.Connections = append(g.Connections, c)
	}

	return g
}

// FromPositionRows builds the layout graph from relational rows: one row
// per position, each referencing its career path.
func FromPositionRows(paths []graph.PathRow, rows []graph.PositionRow, transitions []graph.Transition) metro.Graph {
	return FromCareerMap(graph.CareerMapFromRows(paths, rows, transitions))
}

// sortByLevel orders a path's stations by canonical level, keeping the
// listed order among equal levels.
func sortByLevel(ids []string, nodes []metro.Node, index map[string]int) {
	slices.SortStableFunc(ids, func(a, b string) int {
		return cmp.Compare(nodes[index[a]].Level, nodes[index[b]].Level)
	})
}
