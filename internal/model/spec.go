package model

import (
	"fmt"
	"math"
	"strconv"

	"github.com/piwi3910/SlabNest/internal/geometry"
)

// CircleSegments is the number of polygon sides used to approximate a circle.
const CircleSegments = 32

// ShapeSpec is the external description of one or more identical shapes.
// Exactly one geometry form must be given: an explicit polygon, a rectangle
// (Width/Height), a triangle (Base/Height) or a circle (Radius).
type ShapeSpec struct {
	ID       string       `json:"id" yaml:"id"`
	Quantity int          `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	Polygon  [][2]float64 `json:"polygon,omitempty" yaml:"polygon,omitempty"`
	Width    float64      `json:"width,omitempty" yaml:"width,omitempty"`
	Height   float64      `json:"height,omitempty" yaml:"height,omitempty"`
	Base     float64      `json:"base,omitempty" yaml:"base,omitempty"`
	Radius   float64      `json:"radius,omitempty" yaml:"radius,omitempty"`
	Angles   []float64    `json:"angles,omitempty" yaml:"angles,omitempty"`
}

// Outline builds the polygon described by the spec, in its local frame with
// the bounding box anchored at the origin for the shorthand forms.
func (s ShapeSpec) Outline() (geometry.Polygon, error) {
	switch {
	case len(s.Polygon) > 0:
		poly := make(geometry.Polygon, len(s.Polygon))
		for i, v := range s.Polygon {
			poly[i] = geometry.Pt(v[0], v[1])
		}
		return poly, nil
	case s.Radius > 0:
		return Circle(s.Radius, CircleSegments), nil
	case s.Base > 0 && s.Height > 0:
		return Triangle(s.Base, s.Height), nil
	case s.Width > 0 && s.Height > 0:
		return Rectangle(s.Width, s.Height), nil
	}
	return nil, fmt.Errorf("%w: shape %q has no polygon, rectangle, triangle or circle", ErrInvalidShapeSpec, s.ID)
}

// Expand turns the spec into Quantity shapes. A quantity above one yields
// IDs suffixed _1.._n. A missing ID becomes "shape".
func (s ShapeSpec) Expand() ([]Shape, error) {
	poly, err := s.Outline()
	if err != nil {
		return nil, err
	}
	qty := s.Quantity
	if qty <= 0 {
		qty = 1
	}
	base := Shape{ID: s.ID, Polygon: poly, Angles: s.Angles}
	if base.ID == "" {
		base.ID = "shape"
	}
	if qty == 1 {
		return []Shape{base}, nil
	}
	out := make([]Shape, 0, qty)
	for i := 1; i <= qty; i++ {
		sh := base
		sh.ID = base.ID + "_" + strconv.Itoa(i)
		sh.Polygon = poly.Clone()
		out = append(out, sh)
	}
	return out, nil
}

// ExpandSpecs expands every spec in order. A spec without an ID is named
// after its 1-based position, as in NewProblem. Specs that cannot be turned
// into a polygon are reported as rejections.
func ExpandSpecs(specs []ShapeSpec) ([]Shape, []Rejection) {
	var shapes []Shape
	var rejected []Rejection
	for i, s := range specs {
		if s.ID == "" {
			s.ID = fallbackID(i)
		}
		out, err := s.Expand()
		if err != nil {
			rejected = append(rejected, Rejection{ShapeID: s.ID, Reason: err.Error(), Err: err})
			continue
		}
		shapes = append(shapes, out...)
	}
	return shapes, rejected
}

// Rectangle returns the CCW rectangle (0,0)-(w,h).
func Rectangle(w, h float64) geometry.Polygon {
	return geometry.Polygon{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}}
}

// Triangle returns the isosceles triangle with the given base on the x axis.
func Triangle(base, height float64) geometry.Polygon {
	return geometry.Polygon{{X: 0, Y: 0}, {X: base, Y: 0}, {X: base / 2, Y: height}}
}

// Circle approximates a circle of radius r centred at (r, r) with n sides.
func Circle(r float64, n int) geometry.Polygon {
	if n < 3 {
		n = 3
	}
	poly := make(geometry.Polygon, n)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		poly[i] = geometry.Pt(r+r*math.Cos(a), r+r*math.Sin(a))
	}
	return poly
}
