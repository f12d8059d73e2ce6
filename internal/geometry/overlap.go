package geometry

import "math"

// Overlaps reports whether a and b, each grown by clearance/2, intersect with
// positive area. Equivalently the polygons overlap, or the gap between them is
// less than clearance. Edge contact with zero clearance is not an overlap.
func Overlaps(a, b Polygon, clearance float64) bool {
	return NewBody(a).Overlaps(NewBody(b), clearance)
}

// Overlaps is the Body form of the package-level Overlaps.
func (b Body) Overlaps(o Body, clearance float64) bool {
	gapX := math.Max(o.Bounds.Min.X-b.Bounds.Max.X, b.Bounds.Min.X-o.Bounds.Max.X)
	gapY := math.Max(o.Bounds.Min.Y-b.Bounds.Max.Y, b.Bounds.Min.Y-o.Bounds.Max.Y)
	if gapX >= clearance-Tolerance || gapY >= clearance-Tolerance {
		return false
	}
	for _, pa := range b.Pieces {
		for _, pb := range o.Pieces {
			if convexPenetrate(pa, pb) {
				return true
			}
		}
	}
	if clearance <= Tolerance {
		return false
	}
	return Distance(b.Outline, o.Outline) < clearance-Tolerance
}

// convexPenetrate runs the separating axis test on two convex polygons and
// reports whether they overlap by more than Tolerance on every axis.
func convexPenetrate(a, b Polygon) bool {
	return !separated(a, b) && !separated(b, a)
}

// separated reports whether one of a's edge normals separates a from b.
func separated(a, b Polygon) bool {
	n := len(a)
	for i := 0; i < n; i++ {
		e := a[(i+1)%n].Sub(a[i])
		l := e.Len()
		if l == 0 {
			continue
		}
		axis := Point{-e.Y / l, e.X / l}
		minA, maxA := project(a, axis)
		minB, maxB := project(b, axis)
		if math.Min(maxA, maxB)-math.Max(minA, minB) <= Tolerance {
			return true
		}
	}
	return false
}

func project(p Polygon, axis Point) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range p {
		d := v.Dot(axis)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return lo, hi
}

// Distance returns the minimum distance between the boundaries of a and b.
// It is 0 when the boundaries touch or cross. Containment of one polygon in
// the other is not detected here; Overlaps handles that case first.
func Distance(a, b Polygon) float64 {
	best := math.Inf(1)
	na, nb := len(a), len(b)
	for i := 0; i < na; i++ {
		a1, a2 := a[i], a[(i+1)%na]
		for j := 0; j < nb; j++ {
			d := segmentDistance(a1, a2, b[j], b[(j+1)%nb])
			if d < best {
				best = d
				if best == 0 {
					return 0
				}
			}
		}
	}
	return best
}
