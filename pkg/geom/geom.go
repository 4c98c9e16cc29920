// Package geom provides the 2D primitives shared by the metro layout stages.
//
// Coordinates are plain float64 values in user units (pixels in SVG output).
// All functions are pure and safe for concurrent use.
package geom

import "math"

// Point is a position or a vector in the plane.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p multiplied by k.
func (p Point) Scale(k float64) Point { return Point{p.X * k, p.Y * k} }

// Len returns the Euclidean length of p treated as a vector.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// Unit returns p scaled to length 1.
// Vectors shorter than Epsilon map to (1, 0) so callers pushing points
// apart never divide by zero.
func (p Point) Unit() Point {
	l := p.Len()
	if l < Epsilon {
		return Point{1, 0}
	}
	return Point{p.X / l, p.Y / l}
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 { return b.Sub(a).Len() }

// Mid returns the midpoint of a and b.
func Mid(a, b Point) Point { return Point{(a.X + b.X) / 2, (a.Y + b.Y) / 2} }

// Epsilon is the distance below which two points are treated as coincident.
const Epsilon = 1e-9

// Rect is an axis-aligned bounding box.
type Rect struct {
	MinX float64 `json:"min_x" bson:"min_x"`
	MinY float64 `json:"min_y" bson:"min_y"`
	MaxX float64 `json:"max_x" bson:"max_x"`
	MaxY float64 `json:"max_y" bson:"max_y"`
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent of r.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Expand grows r by pad on every side.
func (r Rect) Expand(pad float64) Rect {
	return Rect{r.MinX - pad, r.MinY - pad, r.MaxX + pad, r.MaxY + pad}
}

// Include returns the smallest rect containing both r and p.
func (r Rect) Include(p Point) Rect {
	return Rect{
		MinX: min(r.MinX, p.X),
		MinY: min(r.MinY, p.Y),
		MaxX: max(r.MaxX, p.X),
		MaxY: max(r.MaxY, p.Y),
	}
}

// RectAt returns the degenerate rect covering only p.
func RectAt(p Point) Rect { return Rect{p.X, p.Y, p.X, p.Y} }
