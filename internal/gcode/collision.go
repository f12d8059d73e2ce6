package gcode

import (
	"fmt"
	"math"

	"github.com/piwi3910/SlabNest/internal/geometry"
	"github.com/piwi3910/SlabNest/internal/model"
)

// ClampZone is a rectangular fixture on the machine bed, in sheet
// coordinates.
type ClampZone struct {
	Label  string  `json:"label" yaml:"label"`
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Collision is a tool position at which the dust shoe comes too close to a
// clamp.
type Collision struct {
	ClampLabel  string  `json:"clamp"`
	ShapeID     string  `json:"shape_id"`
	PartIndex   int     `json:"part_index"`
	ToolX       float64 `json:"tool_x"`
	ToolY       float64 `json:"tool_y"`
	Clearance   float64 `json:"clearance"` // gap between shoe edge and clamp, negative when overlapping
	IsDuringCut bool    `json:"is_during_cut"`
}

// CheckCollisions walks the toolpath of every placed shape and reports
// where the dust shoe, a circle of DustShoeWidth around the tool centre,
// gets within DustShoeClearance of a clamp zone. The approach point is
// checked as a rapid move, the rest of the contour as cutting. At most one
// collision is reported per shape and clamp.
func (g *Generator) CheckCollisions(p *model.Problem, layout *model.Layout) []Collision {
	s := g.Settings
	if !s.DustShoeEnabled || len(s.ClampZones) == 0 {
		return nil
	}

	shoeRadius := s.DustShoeWidth / 2.0
	effectiveRadius := shoeRadius + s.DustShoeClearance

	var collisions []Collision
	for partIdx, pl := range layout.Placements {
		shape, ok := p.Shape(pl.ShapeID)
		if !ok {
			continue
		}
		path := offsetOutline(pl.World(shape), s.ToolDiameter/2)

		for _, cz := range s.ClampZones {
			for _, pos := range partCutPositions(path) {
				dist := distanceToClampZone(pos.x, pos.y, cz)
				if dist < effectiveRadius {
					collisions = append(collisions, Collision{
						ClampLabel:  cz.Label,
						ShapeID:     pl.ShapeID,
						PartIndex:   partIdx,
						ToolX:       pos.x,
						ToolY:       pos.y,
						Clearance:   dist - shoeRadius,
						IsDuringCut: pos.isCut,
					})
					break
				}
			}
		}
	}
	return collisions
}

// toolPosition represents a position the tool center visits during machining.
type toolPosition struct {
	x, y  float64
	isCut bool // true = during cutting, false = during rapid move
}

// partCutPositions samples the tool centre along a contour: the approach
// point, then every vertex and edge midpoint.
func partCutPositions(path geometry.Polygon) []toolPosition {
	if len(path) == 0 {
		return nil
	}
	positions := make([]toolPosition, 0, 2*len(path)+1)
	positions = append(positions, toolPosition{path[0].X, path[0].Y, false})
	for i, v := range path {
		next := path[(i+1)%len(path)]
		positions = append(positions,
			toolPosition{v.X, v.Y, true},
			toolPosition{(v.X + next.X) / 2, (v.Y + next.Y) / 2, true})
	}
	return positions
}

// distanceToClampZone computes the minimum distance from a point (px, py)
// to a clamp zone rectangle. Returns 0 if the point is inside the zone.
func distanceToClampZone(px, py float64, cz ClampZone) float64 {
	nearestX := math.Max(cz.X, math.Min(px, cz.X+cz.Width))
	nearestY := math.Max(cz.Y, math.Min(py, cz.Y+cz.Height))
	return math.Hypot(px-nearestX, py-nearestY)
}

// FormatCollisionWarnings produces human-readable warning messages from collision data.
func FormatCollisionWarnings(collisions []Collision) []string {
	var warnings []string
	for _, c := range collisions {
		moveType := "cutting"
		if !c.IsDuringCut {
			moveType = "approaching"
		}
		warnings = append(warnings, fmt.Sprintf(
			"dust shoe may hit clamp %q while %s %s at (%.0f, %.0f), clearance %.1f mm",
			c.ClampLabel, moveType, c.ShapeID, c.ToolX, c.ToolY, c.Clearance))
	}
	return warnings
}
