package engine

import (
	"math"
	"sort"

	"github.com/piwi3910/SlabNest/internal/geometry"
	"github.com/piwi3910/SlabNest/internal/model"
	"k8s.io/klog/v2"
)

// feasibleSlack is how far a candidate may sit inside a no-fit polygon and
// still count as touching. It absorbs rounding in intersection points and is
// well below the overlap tolerance of the geometry kernel.
const feasibleSlack = 1e-7

// Item is one entry of a placement order: a shape index into the problem and
// an index into that shape's allowed angles.
type Item struct {
	Shape int
	Angle int
}

// Placer decodes placement orders into layouts with bottom-left fill guided
// by no-fit polygons. It holds no per-call state and is safe for concurrent
// use.
type Placer struct {
	problem *model.Problem
	cat     *catalog
}

// NewPlacer prepares the rotated shape catalog for a problem.
func NewPlacer(p *model.Problem) *Placer {
	return &Placer{problem: p, cat: newCatalog(p)}
}

func newPlacerWithCatalog(p *model.Problem, c *catalog) *Placer {
	return &Placer{problem: p, cat: c}
}

// Place puts each item at the lowest, then leftmost, admissible position at
// its angle. An angle at which the shape cannot fit on the empty sheet is
// replaced by the first angle that can. Items that find no position are
// listed as unplaced and the rest continue. Identical input gives identical
// output.
func (pl *Placer) Place(items []Item) *model.Layout {
	p := pl.problem
	layout := model.NewLayout(p.Sheet)
	gap := p.Constraint.MinGap

	done := make([]geometry.Body, 0, len(items))
	isPlaced := make([]bool, len(p.Shapes))

	for _, it := range items {
		if it.Shape < 0 || it.Shape >= len(p.Shapes) || isPlaced[it.Shape] {
			continue
		}
		s := p.Shapes[it.Shape]
		k := it.Angle
		if k < 0 || k >= len(pl.cat.angles[it.Shape]) || !pl.cat.fits[it.Shape][k] {
			k = pl.cat.firstFit(it.Shape)
		}
		if !pl.cat.fits[it.Shape][k] {
			layout.UnplacedIDs = append(layout.UnplacedIDs, s.ID)
			continue
		}

		body := pl.cat.bodies[it.Shape][k]
		pos, ok := bottomLeft(pl.cat.ifr[it.Shape][k], done, body, gap)
		if !ok {
			klog.V(4).InfoS("No admissible position", "shape", s.ID, "rotation", pl.cat.angles[it.Shape][k])
			layout.UnplacedIDs = append(layout.UnplacedIDs, s.ID)
			continue
		}
		klog.V(4).InfoS("Placed shape", "shape", s.ID, "x", pos.X, "y", pos.Y, "rotation", pl.cat.angles[it.Shape][k])

		done = append(done, body.Translate(pos.X, pos.Y))
		isPlaced[it.Shape] = true
		layout.Placements = append(layout.Placements, model.Placement{
			ShapeID:  s.ID,
			X:        pos.X,
			Y:        pos.Y,
			Rotation: pl.cat.angles[it.Shape][k],
		})
	}

	// Summing in shape order keeps the total independent of placement order.
	for i, ok := range isPlaced {
		if ok {
			layout.PlacedArea += p.Shapes[i].Area()
		}
	}
	layout.Utilization = math.Min(1, layout.PlacedArea/p.Sheet.Area())
	return layout
}

// OrderedShape is a shape with the rotation it must be placed at.
type OrderedShape struct {
	Shape    model.Shape
	Rotation float64
}

// Place decodes an explicit order on a sheet. Shapes are validated first;
// rejected ones are reported as unplaced. Only sheet and constraint errors
// are returned.
func Place(sheet model.Sheet, constraint model.Constraint, ordered []OrderedShape) (*model.Layout, error) {
	shapes := make([]model.Shape, len(ordered))
	for i, o := range ordered {
		s := o.Shape
		s.Angles = []float64{o.Rotation}
		shapes[i] = s
	}
	constraint.AllowRotation = true
	p, err := model.NewProblem(sheet, constraint, shapes)
	if err != nil {
		return nil, err
	}

	items := make([]Item, len(p.Shapes))
	for i := range p.Shapes {
		items[i] = Item{Shape: i}
	}
	layout := NewPlacer(p).Place(items)
	for _, r := range p.Rejected {
		layout.UnplacedIDs = append(layout.UnplacedIDs, r.ShapeID)
	}
	return layout, nil
}

// bottomLeft returns the lowest, then leftmost, reference point in ifr at
// which moving clears every placed body. The feasible region is ifr minus the
// interiors of the no-fit polygons, so its bottom-left point is a vertex of
// their arrangement: an ifr corner, a no-fit vertex, or a crossing of two
// boundaries. Crossings between two no-fit polygons are only computed below
// the best point found among the cheaper candidates.
func bottomLeft(ifr geometry.Rect, placed []geometry.Body, moving geometry.Body, gap float64) (geometry.Point, bool) {
	var nfps []geometry.Polygon
	var boxes []geometry.Rect
	for _, pb := range placed {
		if !pb.NoFitBounds(moving, gap).Intersects(ifr) {
			continue
		}
		for _, poly := range pb.NoFit(moving, gap) {
			bb := poly.BoundingBox()
			if !bb.Intersects(ifr) {
				continue
			}
			nfps = append(nfps, poly)
			boxes = append(boxes, bb)
		}
	}
	if len(nfps) == 0 {
		return ifr.Min, true
	}

	feasible := func(q geometry.Point) bool {
		for k, poly := range nfps {
			bb := boxes[k]
			if q.X <= bb.Min.X+feasibleSlack || q.X >= bb.Max.X-feasibleSlack ||
				q.Y <= bb.Min.Y+feasibleSlack || q.Y >= bb.Max.Y-feasibleSlack {
				continue
			}
			if geometry.Depth(poly, q) > feasibleSlack {
				return false
			}
		}
		return true
	}

	border := ifr.Polygon()
	cands := ifr.Corners()
	for _, poly := range nfps {
		n := len(poly)
		for i := 0; i < n; i++ {
			a, b := poly[i], poly[(i+1)%n]
			if ifr.Contains(a, geometry.Tolerance) {
				cands = append(cands, ifr.Clamp(a))
			}
			for j := 0; j < len(border); j++ {
				c, d := border[j], border[(j+1)%len(border)]
				if pt, ok := geometry.SegmentIntersection(a, b, c, d); ok {
					cands = append(cands, ifr.Clamp(pt))
				}
			}
		}
	}
	sortPoints(cands)

	var best geometry.Point
	found := false
	for _, q := range cands {
		if feasible(q) {
			best, found = q, true
			break
		}
	}

	limit := math.Inf(1)
	if found {
		limit = best.Y
	}
	var extra []geometry.Point
	for i := 0; i < len(nfps); i++ {
		if boxes[i].Min.Y > limit {
			continue
		}
		for j := i + 1; j < len(nfps); j++ {
			if boxes[j].Min.Y > limit || !boxes[i].Intersects(boxes[j]) {
				continue
			}
			extra = crossings(extra, nfps[i], nfps[j], ifr, limit)
		}
	}
	sortPoints(extra)
	for _, q := range extra {
		if found && !q.Less(best) {
			break
		}
		if feasible(q) {
			best, found = q, true
			break
		}
	}
	return best, found
}

// crossings appends the edge crossings of a and b that lie in ifr at or
// below limit.
func crossings(dst []geometry.Point, a, b geometry.Polygon, ifr geometry.Rect, limit float64) []geometry.Point {
	na, nb := len(a), len(b)
	for i := 0; i < na; i++ {
		a1, a2 := a[i], a[(i+1)%na]
		if math.Min(a1.Y, a2.Y) > limit {
			continue
		}
		for j := 0; j < nb; j++ {
			pt, ok := geometry.SegmentIntersection(a1, a2, b[j], b[(j+1)%nb])
			if !ok || pt.Y > limit || !ifr.Contains(pt, geometry.Tolerance) {
				continue
			}
			dst = append(dst, ifr.Clamp(pt))
		}
	}
	return dst
}

func sortPoints(pts []geometry.Point) {
	sort.Slice(pts, func(i, j int) bool { return pts[i].Less(pts[j]) })
}
