// Package metro defines the layout model for career metro maps.
//
// A metro map draws career data as a subway diagram:
//
//   - [Node] (a station) is one role at one seniority level
//   - [Path] (a line) is an ordered career track of stations
//   - [Connection] is a transition drawn independently of the lines
//
// A station listed by more than one line is an interchange.
//
// # Pipeline
//
// The layout stages live in subpackages and each returns a new [Graph]
// rather than mutating its input:
//
//	g := adapter.FromCareerMap(m)          // domain → nodes and paths
//	g = layout.Calculate(g, cfg)           // assign positions
//	g, _ = collision.Apply(g, cfg)         // separate close stations
//	d := pathgen.LinePath(nodes, sc, opt)  // SVG path data per line
//
// # Configuration
//
// [Config] is read-only for every stage. Use [DefaultConfig] for the
// documented defaults and override fields as needed. Values are not
// validated here; pkg/config rejects unusable spacing and radii.
//
// # Determinism
//
// With JitterAmount == 0 every stage is a pure function of its inputs.
// Jitter draws from a PCG generator seeded with Config.Seed, so a fixed
// seed also reproduces the same layout.
package metro
