// Package pathgen turns placed stations into SVG path data.
//
// It produces three things:
//
//   - [LinePath]: the drawn route of one line through its stations
//   - [ConnectionPath]: a smooth curve for a transition between two stations
//   - [ViewBounds]: the viewport enclosing every placed station
//
// Coordinates pass through a [Scales] pair first, so a caller rendering into
// a differently sized canvas can map layout space onto it. [Identity] keeps
// layout coordinates unchanged.
package pathgen

import (
	"strconv"
	"strings"

	"github.com/matzehuels/metromap/pkg/geom"
	"github.com/matzehuels/metromap/pkg/metro"
)

// straightThreshold is the axis delta below which a segment is drawn
// straight even in orthogonal mode.
const straightThreshold = 5.0

// DefaultCornerRadius is the rounding applied to orthogonal elbows.
const DefaultCornerRadius = 10.0

// DefaultViewport is returned by [ViewBounds] when nothing is placed.
var DefaultViewport = geom.Rect{MinX: 0, MinY: 0, MaxX: 1000, MaxY: 600}

// =============================================================================
// Scales
// =============================================================================

// Scale maps one layout coordinate to drawing space.
type Scale func(float64) float64

// Scales holds the x and y mappings.
type Scales struct {
	X Scale
	Y Scale
}

// Identity returns scales that leave coordinates unchanged.
func Identity() Scales {
	id := func(v float64) float64 { return v }
	return Scales{X: id, Y: id}
}

// Linear maps the domain [d0, d1] onto the range [r0, r1].
// A degenerate domain maps everything to r0.
func Linear(d0, d1, r0, r1 float64) Scale {
	span := d1 - d0
	if span == 0 {
		return func(float64) float64 { return r0 }
	}
	k := (r1 - r0) / span
	return func(v float64) float64 { return r0 + (v-d0)*k }
}

func (s Scales) apply(p geom.Point) geom.Point {
	x, y := p.X, p.Y
	if s.X != nil {
		x = s.X(x)
	}
	if s.Y != nil {
		y = s.Y(y)
	}
	return geom.Pt(x, y)
}

// =============================================================================
// Lines
// =============================================================================

// LineOptions controls how [LinePath] draws segments.
type LineOptions struct {
	Orthogonal     bool    `json:"orthogonal" toml:"orthogonal"`
	RoundedCorners bool    `json:"rounded_corners" toml:"rounded_corners"`
	CornerRadius   float64 `json:"corner_radius" toml:"corner_radius"`
}

// DefaultLineOptions returns orthogonal lines with rounded corners.
func DefaultLineOptions() LineOptions {
	return LineOptions{Orthogonal: true, RoundedCorners: true, CornerRadius: DefaultCornerRadius}
}

// LinePath returns the SVG path data for a line through nodes in order.
// It returns "" when fewer than two nodes are given.
//
// In orthogonal mode a segment whose endpoints differ on both axes by more
// than a few units is drawn as horizontal, vertical, horizontal with the
// vertical leg at the horizontal midpoint. Otherwise each segment is a
// straight line.
func LinePath(nodes []metro.Node, scales Scales, opts LineOptions) string {
	if len(nodes) < 2 {
		return ""
	}

	var b pathBuilder
	prev := scales.apply(nodes[0].Position)
	b.cmd('M', prev)

	for _, n := range nodes[1:] {
		cur := scales.apply(n.Position)
		dx, dy := cur.X-prev.X, cur.Y-prev.Y

		if !opts.Orthogonal || abs(dx) <= straightThreshold || abs(dy) <= straightThreshold {
			b.cmd('L', cur)
			prev = cur
			continue
		}

		midX := prev.X + dx/2
		if opts.RoundedCorners && opts.CornerRadius > 0 {
			r := min(opts.CornerRadius, abs(dx)/2, abs(dy)/2)
			sx, sy := sign(dx), sign(dy)

			b.lineTo(geom.Pt(midX-sx*r, prev.Y))
			b.quad(geom.Pt(midX, prev.Y), geom.Pt(midX, prev.Y+sy*r))
			b.lineTo(geom.Pt(midX, cur.Y-sy*r))
			b.quad(geom.Pt(midX, cur.Y), geom.Pt(midX+sx*r, cur.Y))
			b.lineTo(cur)
		} else {
			b.cmd('L', geom.Pt(midX, prev.Y))
			b.cmd('L', geom.Pt(midX, cur.Y))
			b.cmd('L', cur)
		}
		prev = cur
	}
	return b.String()
}

// ConnectionPath returns a cubic Bezier from one station to another with
// both control points on the horizontal midpoint, at each endpoint's y.
func ConnectionPath(from, to metro.Node, scales Scales) string {
	a := scales.apply(from.Position)
	z := scales.apply(to.Position)
	midX := (a.X + z.X) / 2

	var b pathBuilder
	b.cmd('M', a)
	b.cubic(geom.Pt(midX, a.Y), geom.Pt(midX, z.Y), z)
	return b.String()
}

// =============================================================================
// Bounds
// =============================================================================

// ViewBounds returns the tight box around every placed node expanded by
// padding on all sides, or [DefaultViewport] if no node is placed.
func ViewBounds(nodes []metro.Node, padding float64) geom.Rect {
	var r geom.Rect
	seen := false
	for _, n := range nodes {
		if !n.Placed {
			continue
		}
		if !seen {
			r = geom.RectAt(n.Position)
			seen = true
			continue
		}
		r = r.Include(n.Position)
	}
	if !seen {
		return DefaultViewport
	}
	return r.Expand(padding)
}

// =============================================================================
// Formatting
// =============================================================================

type pathBuilder struct {
	sb  strings.Builder
	pen geom.Point
}

func (b *pathBuilder) cmd(c byte, p geom.Point) {
	b.sep()
	b.sb.WriteByte(c)
	b.sb.WriteByte(' ')
	b.point(p)
	b.pen = p
}

// lineTo draws a line to p unless it would have zero length once printed.
// Clamped corners leave zero-length legs.
func (b *pathBuilder) lineTo(p geom.Point) {
	if Num(p.X) == Num(b.pen.X) && Num(p.Y) == Num(b.pen.Y) {
		return
	}
	b.cmd('L', p)
}

func (b *pathBuilder) quad(ctrl, end geom.Point) {
	b.sep()
	b.sb.WriteString("Q ")
	b.point(ctrl)
	b.sb.WriteByte(' ')
	b.point(end)
	b.pen = end
}

func (b *pathBuilder) cubic(c1, c2, end geom.Point) {
	b.sep()
	b.sb.WriteString("C ")
	b.point(c1)
	b.sb.WriteByte(' ')
	b.point(c2)
	b.sb.WriteByte(' ')
	b.point(end)
	b.pen = end
}

func (b *pathBuilder) sep() {
	if b.sb.Len() > 0 {
		b.sb.WriteByte(' ')
	}
}

func (b *pathBuilder) point(p geom.Point) {
	b.sb.WriteString(Num(p.X))
	b.sb.WriteByte(' ')
	b.sb.WriteString(Num(p.Y))
}

func (b *pathBuilder) String() string { return b.sb.String() }

// Num formats v with at most two decimals and no trailing zeros.
func Num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
