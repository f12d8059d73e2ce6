package geometry

import "math"

// clearanceSides is the number of sides of the polygon used to approximate the
// disc of radius clearance. The polygon circumscribes the disc, so growing a
// no-fit polygon by it never admits a position closer than the clearance.
const clearanceSides = 8

// NoFitPolygon returns the locus of reference-point translations of moving
// that would bring it into positive-area overlap with stationary, or closer
// than clearance. The region is returned as a non-empty ordered set of convex
// polygons whose union is the forbidden zone; concave inputs generally produce
// several pieces and the pieces may be disjoint.
func NoFitPolygon(stationary, moving Polygon, clearance float64) []Polygon {
	return NewBody(stationary).NoFit(NewBody(moving), clearance)
}

// NoFit returns the no-fit polygon of moving around b. See NoFitPolygon.
func (b Body) NoFit(moving Body, clearance float64) []Polygon {
	var disc Polygon
	if clearance > 0 {
		disc = clearanceDisc(clearance)
	}
	out := make([]Polygon, 0, len(b.Pieces)*len(moving.Pieces))
	for _, s := range b.Pieces {
		for _, m := range moving.Pieces {
			out = append(out, convexNoFit(s, m, clearance, disc))
		}
	}
	return out
}

// NoFitBounds returns the bounding box of b.NoFit(moving, clearance) without
// building it.
func (b Body) NoFitBounds(moving Body, clearance float64) Rect {
	return Rect{
		Min: Point{b.Bounds.Min.X - moving.Bounds.Max.X - clearance, b.Bounds.Min.Y - moving.Bounds.Max.Y - clearance},
		Max: Point{b.Bounds.Max.X - moving.Bounds.Min.X + clearance, b.Bounds.Max.Y - moving.Bounds.Min.Y + clearance},
	}
}

// convexNoFit returns the no-fit polygon of two convex pieces: the Minkowski
// sum of s and the point reflection of m, grown by the clearance disc. Two
// axis-aligned rectangles take a fast path that adds their extents directly.
func convexNoFit(s, m Polygon, clearance float64, disc Polygon) Polygon {
	if s.IsAxisAlignedRect() && m.IsAxisAlignedRect() {
		sb, mb := s.BoundingBox(), m.BoundingBox()
		return Rect{
			Min: Point{sb.Min.X - mb.Max.X - clearance, sb.Min.Y - mb.Max.Y - clearance},
			Max: Point{sb.Max.X - mb.Min.X + clearance, sb.Max.Y - mb.Min.Y + clearance},
		}.Polygon()
	}
	pts := make([]Point, 0, len(s)*len(m))
	for _, a := range s {
		for _, q := range m {
			pts = append(pts, a.Sub(q))
		}
	}
	nfp := ConvexHull(pts)
	if disc != nil {
		nfp = MinkowskiSum(nfp, disc)
	}
	return nfp
}

// clearanceDisc returns a regular polygon circumscribing the disc of radius r.
// Its edges are axis-aligned on the four principal directions so the grown
// bounds equal NoFitBounds exactly.
func clearanceDisc(r float64) Polygon {
	R := r / math.Cos(math.Pi/clearanceSides)
	out := make(Polygon, clearanceSides)
	for k := 0; k < clearanceSides; k++ {
		a := math.Pi/clearanceSides + 2*math.Pi*float64(k)/clearanceSides
		out[k] = Point{R * math.Cos(a), R * math.Sin(a)}
	}
	return out
}

// Depth returns how far p lies inside the convex counter-clockwise polygon c:
// the smallest signed distance from p to the left of any edge. Positive values
// mean strictly inside.
func Depth(c Polygon, p Point) float64 {
	depth := math.Inf(1)
	n := len(c)
	for i := 0; i < n; i++ {
		a, b := c[i], c[(i+1)%n]
		e := b.Sub(a)
		l := e.Len()
		if l == 0 {
			continue
		}
		d := e.Cross(p.Sub(a)) / l
		if d < depth {
			depth = d
		}
	}
	return depth
}

// SegmentIntersection returns the single crossing point of segments ab and cd.
// Parallel or disjoint segments report false.
func SegmentIntersection(a, b, c, d Point) (Point, bool) {
	return segmentIntersection(a, b, c, d)
}
