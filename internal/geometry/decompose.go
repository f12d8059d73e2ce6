package geometry

import "math"

// ConvexPieces splits a normalized counter-clockwise simple polygon into
// convex counter-clockwise pieces with disjoint interiors whose union is the
// polygon. Convex input comes back as a single piece. Concave input is ear
// clipped and the triangles are merged greedily while the result stays convex
// (Hertel-Mehlhorn).
func ConvexPieces(p Polygon) []Polygon {
	if len(p) < 3 {
		return nil
	}
	if p.IsConvex() {
		return []Polygon{p.Clone()}
	}

	tris := triangulate(p)
	pieces := make([][]int, 0, len(tris))
	for _, t := range tris {
		pieces = append(pieces, []int{t[0], t[1], t[2]})
	}

	for merged := true; merged; {
		merged = false
		for i := 0; i < len(pieces) && !merged; i++ {
			for j := i + 1; j < len(pieces) && !merged; j++ {
				if m, ok := mergePieces(p, pieces[i], pieces[j]); ok {
					pieces[i] = m
					pieces = append(pieces[:j], pieces[j+1:]...)
					merged = true
				}
			}
		}
	}

	out := make([]Polygon, 0, len(pieces))
	for _, idx := range pieces {
		poly := make(Polygon, len(idx))
		for k, v := range idx {
			poly[k] = p[v]
		}
		out = append(out, poly)
	}
	return out
}

// triangulate ear-clips a counter-clockwise simple polygon and returns the
// triangles as vertex index triples in counter-clockwise order.
func triangulate(p Polygon) [][3]int {
	idx := make([]int, len(p))
	for i := range idx {
		idx[i] = i
	}
	tris := make([][3]int, 0, len(p)-2)

	for len(idx) > 3 {
		m := len(idx)
		ear := -1
		for i := 0; i < m; i++ {
			a, b, c := idx[(i+m-1)%m], idx[i], idx[(i+1)%m]
			if turn(p[a], p[b], p[c]) <= 0 {
				continue
			}
			if triangleHoldsVertex(p, idx, a, b, c) {
				continue
			}
			ear = i
			break
		}
		if ear < 0 {
			// Rounding can hide every ear on nearly degenerate input; clip the
			// sharpest convex corner so the loop always terminates.
			best := math.Inf(-1)
			for i := 0; i < m; i++ {
				if c := cross(p[idx[(i+m-1)%m]], p[idx[i]], p[idx[(i+1)%m]]); c > best {
					best, ear = c, i
				}
			}
		}
		a, b, c := idx[(ear+m-1)%m], idx[ear], idx[(ear+1)%m]
		if cross(p[a], p[b], p[c]) > 0 {
			tris = append(tris, [3]int{a, b, c})
		}
		idx = append(idx[:ear], idx[ear+1:]...)
	}
	if cross(p[idx[0]], p[idx[1]], p[idx[2]]) > 0 {
		tris = append(tris, [3]int{idx[0], idx[1], idx[2]})
	}
	return tris
}

// triangleHoldsVertex reports whether any remaining vertex other than a, b, c
// lies inside or on the triangle abc.
func triangleHoldsVertex(p Polygon, idx []int, a, b, c int) bool {
	for _, v := range idx {
		if v == a || v == b || v == c {
			continue
		}
		q := p[v]
		if q == p[a] || q == p[b] || q == p[c] {
			continue
		}
		if turn(p[a], p[b], q) >= 0 && turn(p[b], p[c], q) >= 0 && turn(p[c], p[a], q) >= 0 {
			return true
		}
	}
	return false
}

// mergePieces joins two index polygons across a shared edge when the result
// is convex.
func mergePieces(p Polygon, a, b []int) ([]int, bool) {
	na, nb := len(a), len(b)
	for i := 0; i < na; i++ {
		u, v := a[i], a[(i+1)%na]
		for j := 0; j < nb; j++ {
			if b[j] != v || b[(j+1)%nb] != u {
				continue
			}
			// Walk a from v round to u, then b's vertices strictly between u and v.
			out := make([]int, 0, na+nb-2)
			for k := 1; k <= na; k++ {
				out = append(out, a[(i+k)%na])
			}
			for k := 2; k < nb; k++ {
				out = append(out, b[(j+k)%nb])
			}
			if convexIndices(p, out) {
				return out, true
			}
			return nil, false
		}
	}
	return nil, false
}

func convexIndices(p Polygon, idx []int) bool {
	n := len(idx)
	for i := 0; i < n; i++ {
		if turn(p[idx[(i+n-1)%n]], p[idx[i]], p[idx[(i+1)%n]]) < 0 {
			return false
		}
	}
	return true
}
