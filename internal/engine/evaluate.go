package engine

import (
	"fmt"
	"math"

	"github.com/piwi3910/SlabNest/internal/geometry"
	"github.com/piwi3910/SlabNest/internal/model"
)

// Fitness scores a decoded layout. Higher Score is better.
type Fitness struct {
	Score        float64 `json:"score"`
	Utilization  float64 `json:"utilization"`
	Compactness  float64 `json:"compactness"` // 1 - occupied extent / sheet area
	Unplaced     int     `json:"unplaced"`
	UnplacedArea float64 `json:"unplaced_area"`
}

// Better reports whether a beats b: higher score, then higher utilization,
// then a tighter occupied extent. Equal fitness is not better, so the
// incumbent is kept on ties.
func (a Fitness) Better(b Fitness) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Utilization != b.Utilization {
		return a.Utilization > b.Utilization
	}
	return a.Compactness > b.Compactness
}

// InvariantViolation is raised when a decoded layout breaks the overlap or
// bounds rules. It always points at a placement engine defect.
type InvariantViolation struct {
	Kind string // "overlap", "bounds" or "unknown-shape"
	A, B string // shape IDs; B is empty for single-shape violations
}

// Error names the violated invariant and the shapes involved.
func (e *InvariantViolation) Error() string {
	if e.B == "" {
		return fmt.Sprintf("invariant violation: %s: shape %q", e.Kind, e.A)
	}
	return fmt.Sprintf("invariant violation: %s: shapes %q and %q", e.Kind, e.A, e.B)
}

// Evaluator scores layouts of one problem.
type Evaluator struct {
	problem *model.Problem
	cat     *catalog
	weight  float64
	total   float64

	// Strict makes Score panic when Check fails.
	Strict bool
}

// NewEvaluator returns an evaluator penalizing unplaced area by weight.
func NewEvaluator(p *model.Problem, weight float64) *Evaluator {
	return newEvaluatorWithCatalog(p, newCatalog(p), weight)
}

func newEvaluatorWithCatalog(p *model.Problem, c *catalog, weight float64) *Evaluator {
	return &Evaluator{problem: p, cat: c, weight: weight, total: p.TotalArea()}
}

// Score computes the fitness of a layout:
//
//	score = utilization - weight * unplaced area / sheet area
//
// With every shape placed the score equals the utilization.
func (e *Evaluator) Score(l *model.Layout) Fitness {
	if e.Strict {
		if err := e.Check(l); err != nil {
			panic(err)
		}
	}
	sheetArea := e.problem.Sheet.Area()
	unplacedArea := math.Max(0, e.total-l.PlacedArea)

	f := Fitness{
		Score:        (l.PlacedArea - e.weight*unplacedArea) / sheetArea,
		Utilization:  l.Utilization,
		Unplaced:     len(l.UnplacedIDs),
		UnplacedArea: unplacedArea,
	}
	if ext, ok := e.extent(l); ok {
		f.Compactness = 1 - ext.Area()/sheetArea
	} else {
		f.Compactness = 1
	}
	return f
}

// extent is the bounding box of all placed shapes.
func (e *Evaluator) extent(l *model.Layout) (geometry.Rect, bool) {
	var ext geometry.Rect
	found := false
	for _, pl := range l.Placements {
		b, ok := e.world(pl)
		if !ok {
			continue
		}
		if !found {
			ext, found = b.Bounds, true
			continue
		}
		ext = ext.Union(b.Bounds)
	}
	return ext, found
}

// world returns the placed body of a placement.
func (e *Evaluator) world(pl model.Placement) (geometry.Body, bool) {
	i, ok := e.problem.Index(pl.ShapeID)
	if !ok {
		return geometry.Body{}, false
	}
	if k, ok := e.cat.angleIndex(i, pl.Rotation); ok {
		return e.cat.bodies[i][k].Translate(pl.X, pl.Y), true
	}
	return geometry.NewBody(e.problem.Shapes[i].Polygon).Rotate(pl.Rotation).Translate(pl.X, pl.Y), true
}

// Check verifies that every placement lies within the sheet and that no two
// placements come closer than the minimum gap. Pairs the gap test accepts
// are clipped as well and must share no area.
func (e *Evaluator) Check(l *model.Layout) error {
	sheet := geometry.R(0, 0, e.problem.Sheet.Width, e.problem.Sheet.Height)
	gap := e.problem.Constraint.MinGap

	bodies := make([]geometry.Body, len(l.Placements))
	for i, pl := range l.Placements {
		b, ok := e.world(pl)
		if !ok {
			return &InvariantViolation{Kind: "unknown-shape", A: pl.ShapeID}
		}
		if !sheet.ContainsRect(b.Bounds, geometry.Tolerance) {
			return &InvariantViolation{Kind: "bounds", A: pl.ShapeID}
		}
		bodies[i] = b
	}
	for i := range bodies {
		for j := i + 1; j < len(bodies); j++ {
			if bodies[i].Overlaps(bodies[j], gap) || geometry.Overlapping(bodies[i].Outline, bodies[j].Outline) {
				return &InvariantViolation{Kind: "overlap", A: l.Placements[i].ShapeID, B: l.Placements[j].ShapeID}
			}
		}
	}
	return nil
}
