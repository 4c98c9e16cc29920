// Package collision finds and separates stations that sit too close.
//
// Two stations collide when their centers are closer than twice the
// interchange radius. [Resolve] performs exactly one pass over the
// collisions found before any adjustment: separating (A, B) and then
// (B, C) may push B back into A. That approximation is the default;
// [ResolveIterative] repeats passes up to a cap for callers that want
// convergence.
//
// [Find] is quadratic in the number of stations, which is fine for the
// tens to low hundreds of stations a career map holds. [FindGrid] buckets
// stations into a spatial hash and returns the same pairs in the same
// order for larger maps.
package collision

import (
	"cmp"
	"math"
	"slices"

	"github.com/matzehuels/metromap/pkg/geom"
	"github.com/matzehuels/metromap/pkg/metro"
)

// Pair identifies two colliding stations by index, I < J.
type Pair struct {
	I, J int
}

// Collides reports whether a and b are closer than 2*radius.
func Collides(a, b metro.Node, radius float64) bool {
	return geom.Distance(a.Position, b.Position) < 2*radius
}

// Find returns every colliding pair among the placed stations, ordered by
// (I, J).
func Find(nodes []metro.Node, radius float64) []Pair {
	var pairs []Pair
	for i := 0; i < len(nodes); i++ {
		if !nodes[i].Placed {
			continue
		}
		for j := i + 1; j < len(nodes); j++ {
			if nodes[j].Placed && Collides(nodes[i], nodes[j], radius) {
				pairs = append(pairs, Pair{i, j})
			}
		}
	}
	return pairs
}

// FindGrid returns the same pairs as [Find] using a uniform grid whose
// cells are 2*radius wide, so only neighbouring cells are compared.
func FindGrid(nodes []metro.Node, radius float64) []Pair {
	cell := 2 * radius
	if cell <= 0 {
		return nil
	}
	type key struct{ cx, cy int }
	keyOf := func(p geom.Point) key {
		return key{int(math.Floor(p.X / cell)), int(math.Floor(p.Y / cell))}
	}

	buckets := make(map[key][]int)
	for i, n := range nodes {
		if n.Placed {
			k := keyOf(n.Position)
			buckets[k] = append(buckets[k], i)
		}
	}

	var pairs []Pair
	for i, n := range nodes {
		if !n.Placed {
			continue
		}
		k := keyOf(n.Position)
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for _, j := range buckets[key{k.cx + dx, k.cy + dy}] {
					if j > i && Collides(n, nodes[j], radius) {
						pairs = append(pairs, Pair{i, j})
					}
				}
			}
		}
	}
	slices.SortFunc(pairs, func(a, b Pair) int {
		if c := cmp.Compare(a.I, b.I); c != 0 {
			return c
		}
		return cmp.Compare(a.J, b.J)
	})
	return pairs
}

// Resolve returns a copy of nodes with every initially colliding pair
// pushed apart symmetrically along its center line until the two centers
// are exactly 2*radius apart. Each pair uses the positions current at the
// time it is handled; a pair already separated by an earlier push is left
// alone. Coincident stations are pushed apart along the x axis.
func Resolve(nodes []metro.Node, radius float64) []metro.Node {
	out := slices.Clone(nodes)
	resolvePairs(out, find(out, radius), radius)
	return out
}

// ResolveIterative repeats resolution passes until no collisions remain or
// maxPasses passes have run. It returns the adjusted nodes and the number
// of passes performed. maxPasses < 1 is treated as 1.
func ResolveIterative(nodes []metro.Node, radius float64, maxPasses int) ([]metro.Node, int) {
	maxPasses = max(maxPasses, 1)
	out := slices.Clone(nodes)
	passes := 0
	for passes < maxPasses {
		pairs := find(out, radius)
		if len(pairs) == 0 {
			break
		}
		resolvePairs(out, pairs, radius)
		passes++
	}
	return out, passes
}

// Apply resolves collisions in g using cfg.InterchangeRadius and
// cfg.ResolvePasses. It returns the adjusted graph and the number of
// pairs that collided before adjustment.
func Apply(g metro.Graph, cfg metro.Config) (metro.Graph, int) {
	out := g.Clone()
	found := len(find(out.Nodes, cfg.InterchangeRadius))
	if found == 0 {
		return out, 0
	}
	if cfg.ResolvePasses <= 1 {
		out.Nodes = Resolve(out.Nodes, cfg.InterchangeRadius)
	} else {
		out.Nodes, _ = ResolveIterative(out.Nodes, cfg.InterchangeRadius, cfg.ResolvePasses)
	}
	return out, found
}

// gridThreshold is the station count above which find switches to FindGrid.
const gridThreshold = 256

func find(nodes []metro.Node, radius float64) []Pair {
	if len(nodes) > gridThreshold {
		return FindGrid(nodes, radius)
	}
	return Find(nodes, radius)
}

func resolvePairs(nodes []metro.Node, pairs []Pair, radius float64) {
	minDist := 2 * radius
	for _, p := range pairs {
		a, b := nodes[p.I].Position, nodes[p.J].Position
		delta := b.Sub(a)
		dist := delta.Len()
		if dist >= minDist {
			continue
		}
		push := delta.Unit().Scale((minDist - dist) / 2)
		nodes[p.I].Position = a.Sub(push)
		nodes[p.J].Position = b.Add(push)
	}
}
