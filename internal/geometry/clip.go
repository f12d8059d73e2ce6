package geometry

import (
	"math"

	"github.com/ctessum/geom"
)

// OverlapArea clips a against b and returns the area they share. It runs a
// general polygon clipper and shares no code with Overlaps, so layout checks
// use it to cross-check the separating axis test.
func OverlapArea(a, b Polygon) float64 {
	if !a.BoundingBox().Intersects(b.BoundingBox()) {
		return 0
	}
	return toGeom(a).Intersection(toGeom(b)).Area()
}

// Overlapping reports whether a and b share more area than clipping noise.
func Overlapping(a, b Polygon) bool {
	limit := Tolerance * math.Max(1, math.Min(a.Area(), b.Area()))
	return OverlapArea(a, b) > limit
}

func toGeom(p Polygon) geom.Polygon {
	path := make(geom.Path, len(p))
	for i, v := range p {
		path[i] = geom.Point{X: v.X, Y: v.Y}
	}
	return geom.Polygon{path}
}
