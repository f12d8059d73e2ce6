package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/piwi3910/SlabNest/internal/geometry"
	"github.com/piwi3910/SlabNest/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
)

// dxfCircleSegments is the number of sides used for DXF circles.
const dxfCircleSegments = 64

// chainTolerance is the largest endpoint gap (mm) bridged when chaining
// loose LINE and ARC entities.
const chainTolerance = 0.01

// segment is a line segment between two points, used for chaining
// disconnected LINE entities into closed outlines.
type segment struct {
	start geometry.Point
	end   geometry.Point
}

// ImportDXF imports shapes from a DXF file. Each closed LWPOLYLINE, CIRCLE,
// or chain of connected LINEs and ARCs becomes one polygon spec, moved so
// its bounding box starts at the origin.
func ImportDXF(path string) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var outlines []geometry.Polygon
	var segments []segment

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			outline := lwPolylineToPolygon(e)
			if len(outline) >= 3 {
				outlines = append(outlines, outline)
			} else {
				result.Warnings = append(result.Warnings, "Skipped LWPOLYLINE with fewer than 3 vertices")
			}

		case *entity.Circle:
			outlines = append(outlines, circleToPolygon(e.Center[0], e.Center[1], e.Radius, dxfCircleSegments))

		case *entity.Arc:
			pts := arcToPoints(e, 32)
			if len(pts) >= 2 {
				segments = append(segments, pointsToSegments(pts)...)
			}

		case *entity.Line:
			segments = append(segments, segment{
				start: geometry.Pt(e.Start[0], e.Start[1]),
				end:   geometry.Pt(e.End[0], e.End[1]),
			})
		}
	}

	outlines = append(outlines, chainSegments(segments, chainTolerance)...)

	if len(outlines) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	result.Specs = outlinesToSpecs(outlines, &result)
	return result
}

// outlinesToSpecs turns raw outlines into polygon specs named dxf-1, dxf-2...
// Degenerate outlines are skipped with a warning.
func outlinesToSpecs(outlines []geometry.Polygon, result *ImportResult) []model.ShapeSpec {
	var specs []model.ShapeSpec
	for i, outline := range outlines {
		normalized := normalizeOutline(outline)
		bb := normalized.BoundingBox()
		if bb.Width() < 0.01 || bb.Height() < 0.01 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Skipped degenerate shape (%.2f x %.2f mm)", bb.Width(), bb.Height()))
			continue
		}
		spec := model.ShapeSpec{ID: fmt.Sprintf("dxf-%d", i+1), Quantity: 1}
		spec.Polygon = make([][2]float64, len(normalized))
		for k, p := range normalized {
			spec.Polygon[k] = [2]float64{p.X, p.Y}
		}
		specs = append(specs, spec)
	}
	return specs
}

// lwPolylineToPolygon converts a DXF LWPOLYLINE entity to a polygon.
// Bulge values on vertices produce interpolated arc segments.
func lwPolylineToPolygon(lw *entity.LwPolyline) geometry.Polygon {
	var outline geometry.Polygon

	for i := 0; i < len(lw.Vertices); i++ {
		v := lw.Vertices[i]
		current := geometry.Pt(v[0], v[1])

		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}

		if math.Abs(bulge) > 1e-9 {
			nextIdx := (i + 1) % len(lw.Vertices)
			next := geometry.Pt(lw.Vertices[nextIdx][0], lw.Vertices[nextIdx][1])
			arcPts := bulgeArcPoints(current, next, bulge, 32)
			// The next vertex is added by the following iteration.
			outline = append(outline, arcPts[:len(arcPts)-1]...)
		} else {
			outline = append(outline, current)
		}
	}

	return outline
}

// bulgeArcPoints generates points along an arc defined by two endpoints and a
// DXF bulge factor. The bulge is the tangent of 1/4 the included angle.
func bulgeArcPoints(p1, p2 geometry.Point, bulge float64, numSegments int) []geometry.Point {
	mx := (p1.X + p2.X) / 2
	my := (p1.Y + p2.Y) / 2
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	chordLen := math.Hypot(dx, dy)
	if chordLen < 1e-9 {
		return []geometry.Point{p1, p2}
	}

	sagitta := math.Abs(bulge) * chordLen / 2
	radius := (chordLen*chordLen/(4*sagitta) + sagitta) / 2

	// Centre lies on the chord's perpendicular bisector.
	perpX := -dy / chordLen
	perpY := dx / chordLen
	dist := radius - sagitta
	if bulge > 0 {
		perpX, perpY = -perpX, -perpY
	}
	cx := mx + perpX*dist
	cy := my + perpY*dist

	startAngle := math.Atan2(p1.Y-cy, p1.X-cx)
	endAngle := math.Atan2(p2.Y-cy, p2.X-cx)
	if bulge < 0 {
		if endAngle > startAngle {
			endAngle -= 2 * math.Pi
		}
	} else if endAngle < startAngle {
		endAngle += 2 * math.Pi
	}

	pts := make([]geometry.Point, 0, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		t := float64(i) / float64(numSegments)
		angle := startAngle + t*(endAngle-startAngle)
		pts = append(pts, geometry.Pt(cx+radius*math.Cos(angle), cy+radius*math.Sin(angle)))
	}
	return pts
}

// circleToPolygon approximates a circle as a regular polygon.
func circleToPolygon(cx, cy, r float64, numSegments int) geometry.Polygon {
	outline := make(geometry.Polygon, numSegments)
	for i := 0; i < numSegments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(numSegments)
		outline[i] = geometry.Pt(cx+r*math.Cos(angle), cy+r*math.Sin(angle))
	}
	return outline
}

// arcToPoints converts a DXF ARC entity to a series of points.
func arcToPoints(a *entity.Arc, numSegments int) []geometry.Point {
	cx, cy := a.Circle.Center[0], a.Circle.Center[1]
	r := a.Circle.Radius

	startRad := a.Angle[0] * math.Pi / 180
	endRad := a.Angle[1] * math.Pi / 180
	if endRad <= startRad {
		endRad += 2 * math.Pi
	}

	pts := make([]geometry.Point, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		t := float64(i) / float64(numSegments)
		angle := startRad + t*(endRad-startRad)
		pts[i] = geometry.Pt(cx+r*math.Cos(angle), cy+r*math.Sin(angle))
	}
	return pts
}

// pointsToSegments converts a point sequence to a slice of connected segments.
func pointsToSegments(pts []geometry.Point) []segment {
	segs := make([]segment, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		segs = append(segs, segment{start: pts[i], end: pts[i+1]})
	}
	return segs
}

// chainSegments connects individual segments into closed outlines, largest
// area first. Chains that do not close are dropped.
func chainSegments(segs []segment, tolerance float64) []geometry.Polygon {
	if len(segs) == 0 {
		return nil
	}

	used := make([]bool, len(segs))
	var outlines []geometry.Polygon

	for {
		startIdx := -1
		for i, u := range used {
			if !u {
				startIdx = i
				break
			}
		}
		if startIdx == -1 {
			break
		}

		chain := []geometry.Point{segs[startIdx].start, segs[startIdx].end}
		used[startIdx] = true

		for changed := true; changed; {
			changed = false
			tail := chain[len(chain)-1]
			for i, seg := range segs {
				if used[i] {
					continue
				}
				if pointsClose(tail, seg.start, tolerance) {
					chain = append(chain, seg.end)
					used[i] = true
					changed = true
					break
				}
				if pointsClose(tail, seg.end, tolerance) {
					chain = append(chain, seg.start)
					used[i] = true
					changed = true
					break
				}
			}
		}

		if len(chain) >= 4 && pointsClose(chain[0], chain[len(chain)-1], tolerance) {
			outlines = append(outlines, geometry.Polygon(chain[:len(chain)-1]))
		}
	}

	sort.SliceStable(outlines, func(i, j int) bool {
		return outlines[i].Area() > outlines[j].Area()
	})
	return outlines
}

// pointsClose checks whether two points are within the given tolerance.
func pointsClose(a, b geometry.Point, tolerance float64) bool {
	return a.Sub(b).Len() <= tolerance
}

// normalizeOutline translates the outline so its bounding box starts at (0, 0).
func normalizeOutline(o geometry.Polygon) geometry.Polygon {
	if len(o) == 0 {
		return o
	}
	bb := o.BoundingBox()
	return o.Translate(-bb.Min.X, -bb.Min.Y)
}
