package model

import (
	"math"
	"testing"

	"github.com/piwi3910/SlabNest/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTestSheet() Sheet {
	return Sheet{Width: 2000, Height: 1000}
}

func TestNewProblemNormalizesOrientation(t *testing.T) {
	cw := geometry.Polygon{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}}
	p, err := NewProblem(makeTestSheet(), DefaultConstraint(), []Shape{{ID: "a", Polygon: cw}})
	require.NoError(t, err)
	require.Len(t, p.Shapes, 1)
	assert.True(t, p.Shapes[0].Polygon.IsCCW())
	assert.Equal(t, geometry.R(0, 0, 10, 10), p.Shapes[0].Polygon.BoundingBox())
}

func TestNewProblemRejectsInvalidShapes(t *testing.T) {
	shapes := []Shape{
		{ID: "ok", Polygon: Rectangle(10, 10)},
		{ID: "line", Polygon: geometry.Polygon{{X: 0, Y: 0}, {X: 10, Y: 0}}},
		{ID: "flat", Polygon: geometry.Polygon{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 10, Y: 0}}},
		{ID: "bowtie", Polygon: geometry.Polygon{{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 10, Y: 0}, {X: 0, Y: 10}}},
		{ID: "ok", Polygon: Rectangle(5, 5)},
	}
	p, err := NewProblem(makeTestSheet(), DefaultConstraint(), shapes)
	require.NoError(t, err)

	require.Len(t, p.Shapes, 1)
	assert.Equal(t, "ok", p.Shapes[0].ID)
	assert.Equal(t, 100.0, p.Shapes[0].Area(), "first occurrence is kept")

	require.Len(t, p.Rejected, 4)
	reasons := map[string]string{}
	for _, r := range p.Rejected {
		reasons[r.ShapeID] = r.Reason
	}
	assert.Equal(t, "fewer than 3 vertices", reasons["line"])
	assert.Contains(t, []string{"zero area", "fewer than 3 vertices"}, reasons["flat"])
	assert.Equal(t, "self-intersecting", reasons["bowtie"])
	assert.Equal(t, "duplicate id", reasons["ok"])

	assert.ErrorIs(t, p.Rejected[2].Err, ErrInvalidGeometry)
	assert.ErrorIs(t, p.Rejected[3].Err, ErrDuplicateID)
}

func TestNewProblemFatalErrors(t *testing.T) {
	_, err := NewProblem(Sheet{Width: -1, Height: 10}, DefaultConstraint(), nil)
	assert.ErrorIs(t, err, ErrInvalidSheet)

	_, err = NewProblem(makeTestSheet(), Constraint{MinGap: -2}, nil)
	assert.ErrorIs(t, err, ErrInvalidConstraint)
}

func TestProblemLookup(t *testing.T) {
	p, err := NewProblem(makeTestSheet(), DefaultConstraint(), []Shape{
		{ID: "a", Polygon: Rectangle(10, 10)},
		{ID: "b", Polygon: Triangle(10, 10)},
	})
	require.NoError(t, err)

	i, ok := p.Index("b")
	assert.True(t, ok)
	assert.Equal(t, 1, i)
	_, ok = p.Shape("missing")
	assert.False(t, ok)
	assert.InDelta(t, 150.0, p.TotalArea(), 1e-9)
	assert.Len(t, p.Angles(0), 4)
}

func TestNewProblemRejectsNonFiniteVertices(t *testing.T) {
	shapes := []Shape{
		{ID: "nan", Polygon: geometry.Polygon{{X: 0, Y: 0}, {X: math.NaN(), Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}},
		{ID: "ok", Polygon: Rectangle(10, 10)},
	}
	p, err := NewProblem(makeTestSheet(), DefaultConstraint(), shapes)
	require.NoError(t, err)

	require.Len(t, p.Shapes, 1)
	require.Len(t, p.Rejected, 1)
	assert.Equal(t, "non-finite coordinate", p.Rejected[0].Reason)
	assert.ErrorIs(t, p.Rejected[0].Err, geometry.ErrNonFinite)
	assert.ErrorIs(t, p.Rejected[0].Err, ErrInvalidGeometry)
}

func TestNewProblemFallbackIDsAreStable(t *testing.T) {
	shapes := []Shape{
		{Polygon: Rectangle(10, 10)},
		{ID: "b", Polygon: Rectangle(5, 5)},
		{Polygon: Triangle(4, 3)},
	}
	first, err := NewProblem(makeTestSheet(), DefaultConstraint(), shapes)
	require.NoError(t, err)
	second, err := NewProblem(makeTestSheet(), DefaultConstraint(), shapes)
	require.NoError(t, err)

	require.Len(t, first.Shapes, 3)
	assert.Equal(t, "shape-1", first.Shapes[0].ID)
	assert.Equal(t, "b", first.Shapes[1].ID)
	assert.Equal(t, "shape-3", first.Shapes[2].ID)
	assert.Equal(t, first.Shapes, second.Shapes)
}
