package engine

import (
	"github.com/piwi3910/SlabNest/internal/geometry"
	"github.com/piwi3910/SlabNest/internal/model"
)

// catalog holds every shape pre-rotated to each of its allowed angles, with
// the convex decomposition already done. It is built once per problem and
// only read afterwards, so concurrent decoders share it.
type catalog struct {
	problem *model.Problem
	angles  [][]float64
	bodies  [][]geometry.Body
	fits    [][]bool // shape fits alone on the sheet at that angle
	ifr     [][]geometry.Rect
}

func newCatalog(p *model.Problem) *catalog {
	n := len(p.Shapes)
	c := &catalog{
		problem: p,
		angles:  make([][]float64, n),
		bodies:  make([][]geometry.Body, n),
		fits:    make([][]bool, n),
		ifr:     make([][]geometry.Rect, n),
	}
	gap := p.Constraint.MinGap
	for i, s := range p.Shapes {
		base := geometry.NewBody(s.Polygon)
		angles := p.Angles(i)
		c.angles[i] = angles
		c.bodies[i] = make([]geometry.Body, len(angles))
		c.fits[i] = make([]bool, len(angles))
		c.ifr[i] = make([]geometry.Rect, len(angles))
		for k, a := range angles {
			b := base
			if a != 0 {
				b = base.Rotate(a)
			}
			c.bodies[i][k] = b
			c.ifr[i][k], c.fits[i][k] = geometry.InnerFitRect(p.Sheet.Width, p.Sheet.Height, b.Bounds, gap)
		}
	}
	return c
}

// feasible reports whether shape i fits alone at some allowed angle.
func (c *catalog) feasible(i int) bool {
	for _, ok := range c.fits[i] {
		if ok {
			return true
		}
	}
	return false
}

// firstFit returns the first angle index at which shape i fits alone, or 0.
func (c *catalog) firstFit(i int) int {
	for k, ok := range c.fits[i] {
		if ok {
			return k
		}
	}
	return 0
}

// angleIndex finds the index of deg among shape i's angles.
func (c *catalog) angleIndex(i int, deg float64) (int, bool) {
	for k, a := range c.angles[i] {
		if a == deg {
			return k, true
		}
	}
	return 0, false
}

// infeasible lists the IDs of shapes that fit in no allowed rotation.
func (c *catalog) infeasible() []string {
	var out []string
	for i := range c.bodies {
		if !c.feasible(i) {
			out = append(out, c.problem.Shapes[i].ID)
		}
	}
	return out
}
