// Package geometry is the polygon kernel used by the nesting engine: winding
// normalization, affine transforms, convex decomposition, overlap testing and
// no-fit polygon construction.
//
// Conventions: x increases to the right and y increases up the sheet, so a
// positive signed area means counter-clockwise winding. All polygons handed
// out by this package are counter-clockwise and implicitly closed.
package geometry

import "math"

// Epsilon is the relative tolerance used for collinearity and winding tests.
const Epsilon = 1e-9

// Tolerance is the absolute tolerance (in sheet units, usually mm) below which
// a penetration or a clearance shortfall is treated as rounding noise.
const Tolerance = 1e-6

// Point is a 2D coordinate.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Neg returns -p.
func (p Point) Neg() Point { return Point{-p.X, -p.Y} }

// Dot returns the dot product of p and q as vectors.
func (p Point) Dot(q Point) float64 { return p.X*q.X + p.Y*q.Y }

// Cross returns the z component of the cross product of p and q as vectors.
func (p Point) Cross(q Point) float64 { return p.X*q.Y - p.Y*q.X }

// Len returns the length of p as a vector.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// Less orders points by y, then x. This is the bottom-left order.
func (p Point) Less(q Point) bool {
	if p.Y != q.Y {
		return p.Y < q.Y
	}
	return p.X < q.X
}

// cross returns (a-o) x (b-o). Positive when o->a->b turns left.
func cross(o, a, b Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// turn classifies o->a->b as left (1), right (-1) or collinear (0), using a
// tolerance relative to the lengths of the two legs.
func turn(o, a, b Point) int {
	c := cross(o, a, b)
	tol := Epsilon * a.Sub(o).Len() * b.Sub(o).Len()
	switch {
	case c > tol:
		return 1
	case c < -tol:
		return -1
	}
	return 0
}

// clean turns negative zero into zero so reported coordinates print cleanly.
func clean(v float64) float64 {
	if v == 0 {
		return 0
	}
	return v
}

// sinCos returns sin and cos of an angle in degrees. Multiples of 90 degrees
// are exact so axis-aligned rectangles stay axis-aligned after rotation.
func sinCos(deg float64) (float64, float64) {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	switch d {
	case 0:
		return 0, 1
	case 90:
		return 1, 0
	case 180:
		return 0, -1
	case 270:
		return -1, 0
	}
	return math.Sincos(d * math.Pi / 180)
}
