package model

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/piwi3910/SlabNest/internal/geometry"
)

// Sheet is the rectangular stock the shapes are nested on. The origin is the
// lower-left corner.
type Sheet struct {
	Width  float64 `json:"width" yaml:"width"`   // mm
	Height float64 `json:"height" yaml:"height"` // mm
}

// Area returns the sheet area.
func (s Sheet) Area() float64 {
	return s.Width * s.Height
}

// Validate checks that both dimensions are positive and finite.
func (s Sheet) Validate() error {
	if !(s.Width > 0) || !(s.Height > 0) || math.IsInf(s.Width, 0) || math.IsInf(s.Height, 0) {
		return fmt.Errorf("%w: %v x %v", ErrInvalidSheet, s.Width, s.Height)
	}
	return nil
}

// Shape is a part to be nested: a simple polygon in its own local frame plus
// an optional list of rotations it accepts.
type Shape struct {
	ID      string           `json:"id" yaml:"id"`
	Polygon geometry.Polygon `json:"polygon" yaml:"polygon"`
	Angles  []float64        `json:"angles,omitempty" yaml:"angles,omitempty"` // nil = use the constraint
}

// NewShape creates a shape with a short random ID.
func NewShape(poly geometry.Polygon) Shape {
	return Shape{
		ID:      uuid.New().String()[:8],
		Polygon: poly,
	}
}

// Area returns the absolute area of the shape polygon.
func (s Shape) Area() float64 {
	return s.Polygon.Area()
}

// Constraint holds the rotation and clearance rules for a run.
type Constraint struct {
	AllowRotation bool      `json:"allow_rotation" yaml:"allow_rotation"`
	RotationStep  float64   `json:"rotation_step_degrees,omitempty" yaml:"rotation_step_degrees,omitempty"` // 90 = 0/90/180/270
	Angles        []float64 `json:"angles,omitempty" yaml:"angles,omitempty"`                               // explicit list, wins over RotationStep
	MinGap        float64   `json:"min_gap" yaml:"min_gap"`                                                 // mm between shapes and to the sheet edge
}

// DefaultConstraint allows quarter turns and no gap.
func DefaultConstraint() Constraint {
	return Constraint{
		AllowRotation: true,
		RotationStep:  90,
		MinGap:        0,
	}
}

// Validate checks the gap and rotation settings.
func (c Constraint) Validate() error {
	if c.MinGap < 0 || math.IsNaN(c.MinGap) || math.IsInf(c.MinGap, 0) {
		return fmt.Errorf("%w: min_gap %v", ErrInvalidConstraint, c.MinGap)
	}
	if c.RotationStep < 0 || c.RotationStep > 360 || math.IsNaN(c.RotationStep) {
		return fmt.Errorf("%w: rotation_step_degrees %v", ErrInvalidConstraint, c.RotationStep)
	}
	for _, a := range c.Angles {
		if math.IsNaN(a) || math.IsInf(a, 0) {
			return fmt.Errorf("%w: angle %v", ErrInvalidConstraint, a)
		}
	}
	return nil
}

// AllowedAngles resolves the rotations a shape may take, in degrees within
// [0, 360), without duplicates and in first-seen order. Resolution order:
// rotation disabled globally gives [0]; then the shape's own list; then the
// constraint's list; then the rotation step; otherwise [0].
func (c Constraint) AllowedAngles(s Shape) []float64 {
	if !c.AllowRotation {
		return []float64{0}
	}
	var raw []float64
	switch {
	case len(s.Angles) > 0:
		raw = s.Angles
	case len(c.Angles) > 0:
		raw = c.Angles
	case c.RotationStep > 0:
		n := int(math.Floor(360/c.RotationStep + 1e-9))
		for i := 0; i < n; i++ {
			raw = append(raw, float64(i)*c.RotationStep)
		}
	default:
		return []float64{0}
	}
	out := make([]float64, 0, len(raw))
	for _, a := range raw {
		a = math.Mod(a, 360)
		if a < 0 {
			a += 360
		}
		dup := false
		for _, b := range out {
			if math.Abs(a-b) < 1e-9 {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, a)
		}
	}
	if len(out) == 0 {
		return []float64{0}
	}
	return out
}

// Placement is one shape placed on the sheet: its polygon is rotated about its
// local origin by Rotation degrees and then translated by (X, Y).
type Placement struct {
	ShapeID  string  `json:"shape_id" yaml:"shape_id"`
	X        float64 `json:"x" yaml:"x"`
	Y        float64 `json:"y" yaml:"y"`
	Rotation float64 `json:"rotation_degrees" yaml:"rotation_degrees"`
}

// World returns the placed polygon in sheet coordinates.
func (p Placement) World(s Shape) geometry.Polygon {
	return s.Polygon.Rotate(p.Rotation).Translate(p.X, p.Y)
}

// Layout is the result of decoding one placement order onto a sheet.
// Shapes that did not fit are listed in UnplacedIDs; that is an ordinary
// outcome, not an error.
type Layout struct {
	Sheet       Sheet       `json:"sheet" yaml:"sheet"`
	Placements  []Placement `json:"placements" yaml:"placements"`
	UnplacedIDs []string    `json:"unplaced_ids" yaml:"unplaced_ids"`
	Utilization float64     `json:"utilization" yaml:"utilization"` // placed area / sheet area, in [0, 1]
	PlacedArea  float64     `json:"placed_area" yaml:"placed_area"`
}

// NewLayout returns an empty layout for a sheet.
func NewLayout(sheet Sheet) *Layout {
	return &Layout{
		Sheet:       sheet,
		Placements:  []Placement{},
		UnplacedIDs: []string{},
	}
}

// Stats summarizes a layout.
type Stats struct {
	PartsPlaced int     `json:"parts_placed"`
	TotalParts  int     `json:"total_parts"`
	PlacedArea  float64 `json:"placed_area"`
	SheetArea   float64 `json:"sheet_area"`
	WasteArea   float64 `json:"waste_area"`
	Utilization float64 `json:"utilization"`
}

// Stats returns the placed/total counts and area figures of the layout.
func (l *Layout) Stats() Stats {
	sheetArea := l.Sheet.Area()
	return Stats{
		PartsPlaced: len(l.Placements),
		TotalParts:  len(l.Placements) + len(l.UnplacedIDs),
		PlacedArea:  l.PlacedArea,
		SheetArea:   sheetArea,
		WasteArea:   math.Max(0, sheetArea-l.PlacedArea),
		Utilization: l.Utilization,
	}
}

// Efficiency returns the usage percentage.
func (l *Layout) Efficiency() float64 {
	return l.Utilization * 100.0
}
