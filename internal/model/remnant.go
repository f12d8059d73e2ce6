package model

import (
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/piwi3910/SlabNest/internal/geometry"
)

// Remnant is a rectangular area of the sheet left free after nesting that is
// large enough to be kept as stock.
type Remnant struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"` // mm from the left edge
	Y      float64 `json:"y"` // mm from the bottom edge
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns the area of the remnant in square mm.
func (r Remnant) Area() float64 {
	return r.Width * r.Height
}

// ToSheet converts a remnant into a sheet for a follow-up job.
func (r Remnant) ToSheet() Sheet {
	return Sheet{Width: r.Width, Height: r.Height}
}

// MinRemnantDimension is the minimum width or height (in mm) for a free strip
// to count as a remnant.
const MinRemnantDimension = 50.0

// MinRemnantArea is the minimum area (in sq mm) for a remnant.
const MinRemnantArea = 10000.0 // 100mm x 100mm equivalent

// PlacedExtent returns the bounding box of every placed polygon. ok is false
// when nothing is placed.
func PlacedExtent(l *Layout, p *Problem) (geometry.Rect, bool) {
	var ext geometry.Rect
	found := false
	for _, pl := range l.Placements {
		s, ok := p.Shape(pl.ShapeID)
		if !ok {
			continue
		}
		bb := pl.World(s).BoundingBox()
		if !found {
			ext = bb
			found = true
			continue
		}
		ext = ext.Union(bb)
	}
	return ext, found
}

// DetectRemnants finds the strip to the right of all placed shapes and the
// strip above them, keeping those that meet the minimum size. gap is the
// clearance kept between parts and the remnant cut. Results are sorted by
// area, largest first.
func DetectRemnants(l *Layout, p *Problem, gap float64) []Remnant {
	sheetW := l.Sheet.Width
	sheetH := l.Sheet.Height

	ext, ok := PlacedExtent(l, p)
	if !ok {
		return []Remnant{{
			ID:     uuid.New().String()[:8],
			Width:  sheetW,
			Height: sheetH,
		}}
	}

	maxRight := math.Min(ext.Max.X+gap, sheetW)
	maxTop := math.Min(ext.Max.Y+gap, sheetH)

	var remnants []Remnant

	// Right strip spans the full sheet height.
	rightW := sheetW - maxRight
	if rightW >= MinRemnantDimension && sheetH >= MinRemnantDimension && rightW*sheetH >= MinRemnantArea {
		remnants = append(remnants, Remnant{
			ID:     uuid.New().String()[:8],
			X:      maxRight,
			Width:  rightW,
			Height: sheetH,
		})
	}

	// Top strip stops at the right strip.
	topH := sheetH - maxTop
	if topH >= MinRemnantDimension && maxRight >= MinRemnantDimension && topH*maxRight >= MinRemnantArea {
		remnants = append(remnants, Remnant{
			ID:     uuid.New().String()[:8],
			Y:      maxTop,
			Width:  maxRight,
			Height: topH,
		})
	}

	sort.Slice(remnants, func(i, j int) bool {
		return remnants[i].Area() > remnants[j].Area()
	})
	return remnants
}

// TotalRemnantArea returns the summed remnant area in square mm.
func TotalRemnantArea(remnants []Remnant) float64 {
	var total float64
	for _, r := range remnants {
		total += r.Area()
	}
	return total
}
