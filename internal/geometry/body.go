package geometry

// Body is a counter-clockwise polygon together with its convex decomposition
// and bounding box. Decomposing once and transforming the pieces is far
// cheaper than decomposing every rotated or translated copy.
type Body struct {
	Outline Polygon
	Pieces  []Polygon
	Bounds  Rect
}

// NewBody builds a Body from a simple polygon of either winding.
func NewBody(p Polygon) Body {
	outline := p.Clone()
	if outline.SignedArea() < 0 {
		outline = outline.Reverse()
	}
	return Body{
		Outline: outline,
		Pieces:  ConvexPieces(outline),
		Bounds:  outline.BoundingBox(),
	}
}

// Area returns the area of the outline.
func (b Body) Area() float64 {
	return b.Outline.Area()
}

// Rotate rotates the body by deg degrees about the local origin.
func (b Body) Rotate(deg float64) Body {
	out := Body{
		Outline: b.Outline.Rotate(deg),
		Pieces:  make([]Polygon, len(b.Pieces)),
	}
	for i, piece := range b.Pieces {
		out.Pieces[i] = piece.Rotate(deg)
	}
	out.Bounds = out.Outline.BoundingBox()
	return out
}

// Translate shifts the body by dx, dy.
func (b Body) Translate(dx, dy float64) Body {
	out := Body{
		Outline: b.Outline.Translate(dx, dy),
		Pieces:  make([]Polygon, len(b.Pieces)),
		Bounds: Rect{
			Min: Point{b.Bounds.Min.X + dx, b.Bounds.Min.Y + dy},
			Max: Point{b.Bounds.Max.X + dx, b.Bounds.Max.Y + dy},
		},
	}
	for i, piece := range b.Pieces {
		out.Pieces[i] = piece.Translate(dx, dy)
	}
	return out
}
