package geometry

import "math"

// Rect is an axis-aligned rectangle given by its lower-left and upper-right
// corners. A Rect with Max below Min on either axis is empty.
type Rect struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// R builds a Rect from corner coordinates.
func R(x0, y0, x1, y1 float64) Rect {
	return Rect{Min: Point{x0, y0}, Max: Point{x1, y1}}
}

// Width is the horizontal extent of the rectangle.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height is the vertical extent of the rectangle.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Area returns the rectangle area, or 0 for an empty rectangle.
func (r Rect) Area() float64 {
	if r.Empty() {
		return 0
	}
	return r.Width() * r.Height()
}

// Empty reports whether the rectangle contains no points.
func (r Rect) Empty() bool {
	return r.Max.X < r.Min.X || r.Max.Y < r.Min.Y
}

// Expand grows the rectangle by d on every side.
func (r Rect) Expand(d float64) Rect {
	return Rect{
		Min: Point{r.Min.X - d, r.Min.Y - d},
		Max: Point{r.Max.X + d, r.Max.Y + d},
	}
}

// Union returns the smallest rectangle containing r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		Min: Point{math.Min(r.Min.X, o.Min.X), math.Min(r.Min.Y, o.Min.Y)},
		Max: Point{math.Max(r.Max.X, o.Max.X), math.Max(r.Max.Y, o.Max.Y)},
	}
}

// Intersects reports whether the closed rectangles share at least one point.
func (r Rect) Intersects(o Rect) bool {
	return r.Min.X <= o.Max.X && o.Min.X <= r.Max.X &&
		r.Min.Y <= o.Max.Y && o.Min.Y <= r.Max.Y
}

// Contains reports whether p lies in the closed rectangle grown by tol.
func (r Rect) Contains(p Point, tol float64) bool {
	return p.X >= r.Min.X-tol && p.X <= r.Max.X+tol &&
		p.Y >= r.Min.Y-tol && p.Y <= r.Max.Y+tol
}

// ContainsRect reports whether o lies inside r grown by tol.
func (r Rect) ContainsRect(o Rect, tol float64) bool {
	return r.Contains(o.Min, tol) && r.Contains(o.Max, tol)
}

// Clamp moves p onto the nearest point of the rectangle.
func (r Rect) Clamp(p Point) Point {
	return Point{
		X: math.Max(r.Min.X, math.Min(p.X, r.Max.X)),
		Y: math.Max(r.Min.Y, math.Min(p.Y, r.Max.Y)),
	}
}

// Corners returns the distinct corners in bottom-left order. A degenerate
// rectangle (a segment or a point) yields fewer than four corners.
func (r Rect) Corners() []Point {
	pts := []Point{r.Min, {r.Max.X, r.Min.Y}, {r.Min.X, r.Max.Y}, r.Max}
	out := make([]Point, 0, len(pts))
	for _, p := range pts {
		dup := false
		for _, q := range out {
			if p == q {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, p)
		}
	}
	return out
}

// Polygon returns the rectangle as a counter-clockwise polygon.
func (r Rect) Polygon() Polygon {
	return Polygon{
		r.Min,
		{r.Max.X, r.Min.Y},
		r.Max,
		{r.Min.X, r.Max.Y},
	}
}

// InnerFitRect returns the set of reference-point translations that keep a
// shape with local bounds b at least clearance away from the edges of a
// width x height sheet whose origin is its lower-left corner. ok is false
// when the shape cannot fit at all.
func InnerFitRect(width, height float64, b Rect, clearance float64) (r Rect, ok bool) {
	r = Rect{
		Min: Point{clearance - b.Min.X, clearance - b.Min.Y},
		Max: Point{width - clearance - b.Max.X, height - clearance - b.Max.Y},
	}
	// Collapse rounding noise on exact fits.
	if r.Max.X < r.Min.X && r.Min.X-r.Max.X <= Tolerance {
		r.Max.X = r.Min.X
	}
	if r.Max.Y < r.Min.Y && r.Min.Y-r.Max.Y <= Tolerance {
		r.Max.Y = r.Min.Y
	}
	return r, !r.Empty()
}
