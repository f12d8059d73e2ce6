package geometry

import "sort"

// ConvexHull returns the counter-clockwise convex hull of pts using Andrew's
// monotone chain. Collinear points are dropped. The first vertex is the
// lowest-leftmost point.
func ConvexHull(pts []Point) Polygon {
	if len(pts) < 3 {
		return Polygon(append([]Point(nil), pts...))
	}
	sorted := append([]Point(nil), pts...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	hull := make(Polygon, 0, 2*len(sorted))
	// Lower hull
	for _, p := range sorted {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	// Upper hull
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		p := sorted[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	hull = hull[:len(hull)-1]
	return rotateToBottomLeft(hull)
}

// rotateToBottomLeft rotates the vertex list so it starts at the lowest,
// then leftmost vertex.
func rotateToBottomLeft(p Polygon) Polygon {
	if len(p) == 0 {
		return p
	}
	start := 0
	for i, v := range p {
		if v.Less(p[start]) {
			start = i
		}
	}
	if start == 0 {
		return p
	}
	out := make(Polygon, 0, len(p))
	out = append(out, p[start:]...)
	return append(out, p[:start]...)
}

// MinkowskiSum returns the Minkowski sum of two convex polygons.
func MinkowskiSum(a, b Polygon) Polygon {
	pts := make([]Point, 0, len(a)*len(b))
	for _, p := range a {
		for _, q := range b {
			pts = append(pts, p.Add(q))
		}
	}
	return ConvexHull(pts)
}
