package geometry

import (
	"errors"
	"fmt"
	"math"
)

// Errors returned by Normalize.
var (
	// ErrTooFewVertices means fewer than three distinct, non-collinear vertices remain.
	ErrTooFewVertices = errors.New("polygon requires 3 or more distinct vertices")
	// ErrZeroArea means the outline encloses no area.
	ErrZeroArea = errors.New("polygon has zero area")
	// ErrSelfIntersecting means two non-adjacent edges touch or cross.
	ErrSelfIntersecting = errors.New("polygon is self-intersecting")
	// ErrNonFinite means a vertex coordinate is NaN or infinite.
	ErrNonFinite = errors.New("polygon has a non-finite coordinate")
)

// Polygon is a simple polygon as a sequence of vertices. The last vertex
// connects back to the first.
type Polygon []Point

// SignedArea returns the shoelace area. Positive means counter-clockwise.
func (p Polygon) SignedArea() float64 {
	n := len(p)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += p[i].X*p[j].Y - p[j].X*p[i].Y
	}
	return sum / 2
}

// Area returns the absolute area of the polygon.
func (p Polygon) Area() float64 {
	return math.Abs(p.SignedArea())
}

// IsCCW reports whether the polygon winds counter-clockwise.
func (p Polygon) IsCCW() bool {
	return p.SignedArea() > 0
}

// BoundingBox returns the min and max corners of the polygon.
func (p Polygon) BoundingBox() Rect {
	if len(p) == 0 {
		return Rect{}
	}
	r := Rect{Min: p[0], Max: p[0]}
	for _, v := range p[1:] {
		if v.X < r.Min.X {
			r.Min.X = v.X
		}
		if v.Y < r.Min.Y {
			r.Min.Y = v.Y
		}
		if v.X > r.Max.X {
			r.Max.X = v.X
		}
		if v.Y > r.Max.Y {
			r.Max.Y = v.Y
		}
	}
	return r
}

// Clone returns a copy that shares no storage with p.
func (p Polygon) Clone() Polygon {
	out := make(Polygon, len(p))
	copy(out, p)
	return out
}

// Reverse returns the polygon with its winding reversed.
func (p Polygon) Reverse() Polygon {
	out := make(Polygon, len(p))
	for i, v := range p {
		out[len(p)-1-i] = v
	}
	return out
}

// Translate shifts all vertices by dx, dy.
func (p Polygon) Translate(dx, dy float64) Polygon {
	out := make(Polygon, len(p))
	for i, v := range p {
		out[i] = Point{clean(v.X + dx), clean(v.Y + dy)}
	}
	return out
}

// Rotate rotates the polygon counter-clockwise by deg degrees about the local
// origin (0, 0), not about the centroid. Placement coordinates are anchored
// to that origin.
func (p Polygon) Rotate(deg float64) Polygon {
	s, c := sinCos(deg)
	out := make(Polygon, len(p))
	for i, v := range p {
		out[i] = Point{clean(v.X*c - v.Y*s), clean(v.X*s + v.Y*c)}
	}
	return out
}

// Reflect returns the point reflection of the polygon through the origin.
// Winding is preserved because a point reflection is a 180 degree rotation.
func (p Polygon) Reflect() Polygon {
	out := make(Polygon, len(p))
	for i, v := range p {
		out[i] = Point{clean(-v.X), clean(-v.Y)}
	}
	return out
}

// IsConvex reports whether a counter-clockwise polygon is convex. Collinear
// vertices are allowed.
func (p Polygon) IsConvex() bool {
	n := len(p)
	if n < 3 {
		return false
	}
	for i := 0; i < n; i++ {
		if turn(p[(i+n-1)%n], p[i], p[(i+1)%n]) < 0 {
			return false
		}
	}
	return true
}

// IsAxisAlignedRect reports whether the polygon is a rectangle whose edges are
// all exactly horizontal or vertical.
func (p Polygon) IsAxisAlignedRect() bool {
	if len(p) != 4 {
		return false
	}
	for i := 0; i < 4; i++ {
		a, b := p[i], p[(i+1)%4]
		if a.X != b.X && a.Y != b.Y {
			return false
		}
		if a == b {
			return false
		}
	}
	// Alternate horizontal and vertical edges.
	return (p[0].X == p[1].X) != (p[1].X == p[2].X)
}

// Normalize validates the polygon and returns its canonical form:
// counter-clockwise, without repeated or collinear vertices. It rejects
// polygons with non-finite coordinates, fewer than three distinct vertices,
// self-intersections, or zero area. A crossing outline is reported as
// self-intersecting even when its lobes cancel to zero signed area.
func Normalize(p Polygon) (Polygon, error) {
	for i, v := range p {
		if !finite(v.X) || !finite(v.Y) {
			return nil, fmt.Errorf("%w: vertex %d is (%v, %v)", ErrNonFinite, i, v.X, v.Y)
		}
	}
	if len(p) < 3 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewVertices, len(p))
	}
	out := dropCollinear(dropDuplicates(p))
	if len(out) < 3 {
		return nil, fmt.Errorf("%w: got %d after removing repeats", ErrTooFewVertices, len(out))
	}
	if out.SelfIntersects() {
		return nil, ErrSelfIntersecting
	}
	area := out.SignedArea()
	bb := out.BoundingBox()
	if math.Abs(area) <= Epsilon*math.Max(bb.Width()*bb.Height(), 1) {
		return nil, ErrZeroArea
	}
	if area < 0 {
		out = out.Reverse()
	}
	return out, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// dropDuplicates removes consecutive repeated vertices, including a closing
// vertex equal to the first.
func dropDuplicates(p Polygon) Polygon {
	out := make(Polygon, 0, len(p))
	for _, v := range p {
		if len(out) > 0 && samePoint(out[len(out)-1], v) {
			continue
		}
		out = append(out, v)
	}
	for len(out) > 1 && samePoint(out[0], out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out
}

// dropCollinear removes vertices lying on the line through their neighbours,
// including zero-width spikes.
func dropCollinear(p Polygon) Polygon {
	out := p.Clone()
	for changed := true; changed && len(out) >= 3; {
		changed = false
		n := len(out)
		for i := 0; i < n; i++ {
			if turn(out[(i+n-1)%n], out[i], out[(i+1)%n]) == 0 {
				out = append(out[:i], out[i+1:]...)
				changed = true
				break
			}
		}
	}
	return out
}

func samePoint(a, b Point) bool {
	scale := math.Max(1, math.Max(math.Abs(a.X)+math.Abs(a.Y), math.Abs(b.X)+math.Abs(b.Y)))
	return math.Abs(a.X-b.X) <= Epsilon*scale && math.Abs(a.Y-b.Y) <= Epsilon*scale
}

// SelfIntersects reports whether any two non-adjacent edges touch or cross.
func (p Polygon) SelfIntersects() bool {
	n := len(p)
	if n < 4 {
		return false
	}
	for i := 0; i < n; i++ {
		a1, a2 := p[i], p[(i+1)%n]
		for j := i + 1; j < n; j++ {
			if j == i+1 || (i == 0 && j == n-1) {
				continue
			}
			if segmentsIntersect(a1, a2, p[j], p[(j+1)%n]) {
				return true
			}
		}
	}
	return false
}

// segmentsIntersect reports whether closed segments ab and cd share a point.
func segmentsIntersect(a, b, c, d Point) bool {
	d1 := turn(c, d, a)
	d2 := turn(c, d, b)
	d3 := turn(a, b, c)
	d4 := turn(a, b, d)
	if d1*d2 < 0 && d3*d4 < 0 {
		return true
	}
	return (d1 == 0 && onSegment(c, d, a)) ||
		(d2 == 0 && onSegment(c, d, b)) ||
		(d3 == 0 && onSegment(a, b, c)) ||
		(d4 == 0 && onSegment(a, b, d))
}

// onSegment reports whether p, known to be collinear with ab, lies within the
// bounding box of ab.
func onSegment(a, b, p Point) bool {
	return p.X >= math.Min(a.X, b.X)-Tolerance && p.X <= math.Max(a.X, b.X)+Tolerance &&
		p.Y >= math.Min(a.Y, b.Y)-Tolerance && p.Y <= math.Max(a.Y, b.Y)+Tolerance
}

// segmentIntersection returns the crossing point of segments ab and cd when
// they intersect at a single point.
func segmentIntersection(a, b, c, d Point) (Point, bool) {
	r := b.Sub(a)
	s := d.Sub(c)
	den := r.Cross(s)
	if math.Abs(den) <= Epsilon*r.Len()*s.Len() {
		return Point{}, false
	}
	qp := c.Sub(a)
	t := qp.Cross(s) / den
	u := qp.Cross(r) / den
	const slack = 1e-12
	if t < -slack || t > 1+slack || u < -slack || u > 1+slack {
		return Point{}, false
	}
	pt := Point{a.X + t*r.X, a.Y + t*r.Y}
	// Axis-aligned edges keep their exact coordinate.
	switch {
	case r.X == 0:
		pt.X = a.X
	case s.X == 0:
		pt.X = c.X
	}
	switch {
	case r.Y == 0:
		pt.Y = a.Y
	case s.Y == 0:
		pt.Y = c.Y
	}
	return pt, true
}

// pointSegmentDistance returns the distance from p to the closed segment ab.
func pointSegmentDistance(p, a, b Point) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return p.Sub(a).Len()
	}
	t := p.Sub(a).Dot(ab) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Sub(Point{a.X + t*ab.X, a.Y + t*ab.Y}).Len()
}

// segmentDistance returns the distance between closed segments ab and cd.
func segmentDistance(a, b, c, d Point) float64 {
	if segmentsIntersect(a, b, c, d) {
		return 0
	}
	return math.Min(
		math.Min(pointSegmentDistance(a, c, d), pointSegmentDistance(b, c, d)),
		math.Min(pointSegmentDistance(c, a, b), pointSegmentDistance(d, a, b)),
	)
}
