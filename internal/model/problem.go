package model

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/piwi3910/SlabNest/internal/geometry"
	"k8s.io/klog/v2"
)

// Problem is a validated nesting input: the sheet, the rules, and the shapes
// that survived ingestion with CCW-normalized polygons. It is read-only once
// built and shared by every concurrent evaluation.
type Problem struct {
	Sheet      Sheet
	Constraint Constraint
	Shapes     []Shape
	Rejected   []Rejection

	index map[string]int
}

// NewProblem validates the input. Sheet and constraint errors are fatal.
// Shapes with invalid geometry or a repeated ID are left out and listed in
// Rejected; the remaining shapes keep their input order.
func NewProblem(sheet Sheet, constraint Constraint, shapes []Shape) (*Problem, error) {
	if err := sheet.Validate(); err != nil {
		return nil, err
	}
	if err := constraint.Validate(); err != nil {
		return nil, err
	}

	p := &Problem{
		Sheet:      sheet,
		Constraint: constraint,
		Shapes:     make([]Shape, 0, len(shapes)),
		index:      make(map[string]int, len(shapes)),
	}
	for i, s := range shapes {
		if s.ID == "" {
			s.ID = fallbackID(i)
		}
		if _, dup := p.index[s.ID]; dup {
			err := fmt.Errorf("%w: %q", ErrDuplicateID, s.ID)
			p.reject(s.ID, err)
			continue
		}
		poly, err := geometry.Normalize(s.Polygon)
		if err != nil {
			p.reject(s.ID, &GeometryError{ShapeID: s.ID, Err: err})
			continue
		}
		s.Polygon = poly
		p.index[s.ID] = len(p.Shapes)
		p.Shapes = append(p.Shapes, s)
	}
	if len(p.Rejected) > 0 {
		klog.V(1).InfoS("Rejected shapes at ingestion", "rejected", len(p.Rejected), "accepted", len(p.Shapes))
	}
	return p, nil
}

// fallbackID names an ID-less shape by its 1-based input position, so
// identical input always yields identical IDs.
func fallbackID(i int) string {
	return "shape-" + strconv.Itoa(i+1)
}

func (p *Problem) reject(id string, err error) {
	reason := "invalid geometry"
	switch {
	case errors.Is(err, ErrDuplicateID):
		reason = "duplicate id"
	case errors.Is(err, geometry.ErrTooFewVertices):
		reason = "fewer than 3 vertices"
	case errors.Is(err, geometry.ErrZeroArea):
		reason = "zero area"
	case errors.Is(err, geometry.ErrSelfIntersecting):
		reason = "self-intersecting"
	case errors.Is(err, geometry.ErrNonFinite):
		reason = "non-finite coordinate"
	}
	klog.V(2).InfoS("Rejected shape", "id", id, "reason", reason)
	p.Rejected = append(p.Rejected, Rejection{ShapeID: id, Reason: reason, Err: err})
}

// Index returns the position of a shape in Shapes.
func (p *Problem) Index(id string) (int, bool) {
	i, ok := p.index[id]
	return i, ok
}

// Shape returns the shape with the given ID.
func (p *Problem) Shape(id string) (Shape, bool) {
	i, ok := p.index[id]
	if !ok {
		return Shape{}, false
	}
	return p.Shapes[i], true
}

// TotalArea is the summed area of all accepted shapes.
func (p *Problem) TotalArea() float64 {
	var total float64
	for _, s := range p.Shapes {
		total += s.Area()
	}
	return total
}

// Angles returns the allowed rotations of shape i.
func (p *Problem) Angles(i int) []float64 {
	return p.Constraint.AllowedAngles(p.Shapes[i])
}
