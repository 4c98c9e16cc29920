// Package layout assigns coordinates to metro stations.
//
// [Calculate] runs three passes, each reading the result of the previous:
//
//  1. Base placement: x from the station level, y from the index of the
//     first line listing it.
//  2. Interchange consolidation: a shared station moves to the mean y of
//     every line it belongs to, so it is drawn once at one place.
//  3. Level alignment: every station of a level takes the level's mean x.
//
// Passes 2 and 3 can be disabled through metro.Config. The calculation is
// total: malformed levels produce correspondingly odd coordinates rather
// than errors.
package layout

import (
	"math/rand/v2"

	"github.com/matzehuels/metromap/pkg/geom"
	"github.com/matzehuels/metromap/pkg/metro"
)

// Calculate returns a copy of g with every station placed.
// Stations not listed by any line keep Placed == false.
func Calculate(g metro.Graph, cfg metro.Config) metro.Graph {
	out := g.Clone()
	if len(out.Nodes) == 0 {
		return out
	}

	placeBase(out, cfg)
	if cfg.AdjustInterchanges {
		consolidateInterchanges(out, cfg)
	}
	if cfg.AlignLevels {
		alignLevels(out)
	}
	return out
}

// placeBase places each station on the first line that lists it.
func placeBase(g metro.Graph, cfg metro.Config) {
	idx := g.Index()
	rng := newJitter(cfg)

	for pathIndex, p := range g.Paths {
		baseY := cfg.Padding + float64(pathIndex)*cfg.PathSpacing
		for _, id := range p.NodeIDs {
			i, ok := idx[id]
			if !ok || g.Nodes[i].Placed {
				continue
			}
			n := g.Nodes[i]
			x := cfg.Padding + float64(n.Level)*cfg.LevelSpacing + rng.offset()
			g.Nodes[i] = n.WithPosition(geom.Pt(x, baseY))
		}
	}
}

// consolidateInterchanges moves shared stations to the mean y of their lines.
func consolidateInterchanges(g metro.Graph, cfg metro.Config) {
	pathIndex := make(map[string]int, len(g.Paths))
	for i, p := range g.Paths {
		pathIndex[p.ID] = i
	}

	for i, n := range g.Nodes {
		if !n.Placed || !n.IsInterchange() {
			continue
		}
		sum, count := 0.0, 0
		for _, pid := range n.PathIDs {
			if pi, ok := pathIndex[pid]; ok {
				sum += float64(pi)
				count++
			}
		}
		if count == 0 {
			continue
		}
		avg := sum / float64(count)
		g.Nodes[i].Position.Y = cfg.Padding + avg*cfg.PathSpacing
	}
}

// alignLevels gives every station of a level the level's mean x.
func alignLevels(g metro.Graph) {
	type acc struct {
		sum   float64
		count int
	}
	levels := make(map[int]*acc)
	for _, n := range g.Nodes {
		if !n.Placed {
			continue
		}
		a, ok := levels[n.Level]
		if !ok {
			a = &acc{}
			levels[n.Level] = a
		}
		a.sum += n.Position.X
		a.count++
	}
	for i, n := range g.Nodes {
		if !n.Placed {
			continue
		}
		a := levels[n.Level]
		g.Nodes[i].Position.X = a.sum / float64(a.count)
	}
}

// jitter draws symmetric x offsets. A zero amount never touches the RNG.
type jitter struct {
	amount float64
	rng    *rand.Rand
}

func newJitter(cfg metro.Config) *jitter {
	j := &jitter{amount: cfg.JitterAmount}
	if j.amount > 0 {
		j.rng = rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0xdeadbeef))
	}
	return j
}

func (j *jitter) offset() float64 {
	if j.rng == nil {
		return 0
	}
	return (j.rng.Float64() - 0.5) * j.amount
}
