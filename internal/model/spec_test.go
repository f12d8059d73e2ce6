package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeSpecExpandQuantity(t *testing.T) {
	shapes, err := ShapeSpec{ID: "panel", Quantity: 3, Width: 100, Height: 50}.Expand()
	require.NoError(t, err)
	require.Len(t, shapes, 3)
	assert.Equal(t, "panel_1", shapes[0].ID)
	assert.Equal(t, "panel_3", shapes[2].ID)
	for _, s := range shapes {
		assert.Equal(t, 5000.0, s.Area())
	}
}

func TestShapeSpecSingleKeepsID(t *testing.T) {
	shapes, err := ShapeSpec{ID: "one", Polygon: [][2]float64{{0, 0}, {50, 0}, {25, 30}}}.Expand()
	require.NoError(t, err)
	require.Len(t, shapes, 1)
	assert.Equal(t, "one", shapes[0].ID)
	assert.Equal(t, 750.0, shapes[0].Area())
}

func TestShapeSpecShorthands(t *testing.T) {
	tri, err := ShapeSpec{ID: "t", Base: 40, Height: 30}.Outline()
	require.NoError(t, err)
	assert.Equal(t, 600.0, tri.Area())

	circle, err := ShapeSpec{ID: "c", Radius: 10}.Outline()
	require.NoError(t, err)
	assert.Len(t, circle, CircleSegments)
	want := 0.5 * CircleSegments * 100 * math.Sin(2*math.Pi/CircleSegments)
	assert.InDelta(t, want, circle.Area(), 1e-6)
	bb := circle.BoundingBox()
	assert.InDelta(t, 0, bb.Min.X, 1e-9)
	assert.InDelta(t, 20, bb.Max.X, 1e-9)
}

func TestExpandSpecsReportsEmptySpec(t *testing.T) {
	shapes, rejected := ExpandSpecs([]ShapeSpec{
		{ID: "good", Width: 10, Height: 10},
		{ID: "empty"},
	})
	assert.Len(t, shapes, 1)
	require.Len(t, rejected, 1)
	assert.Equal(t, "empty", rejected[0].ShapeID)
	assert.ErrorIs(t, rejected[0].Err, ErrInvalidShapeSpec)
}

func TestShapeSpecGeneratesID(t *testing.T) {
	shapes, err := ShapeSpec{Width: 1, Height: 1, Quantity: 2}.Expand()
	require.NoError(t, err)
	require.Len(t, shapes, 2)
	assert.Equal(t, "shape_1", shapes[0].ID)
	assert.Equal(t, "shape_2", shapes[1].ID)
}

func TestExpandSpecsNamesIDlessSpecsByPosition(t *testing.T) {
	specs := []ShapeSpec{
		{Width: 10, Height: 10},
		{ID: "named", Width: 5, Height: 5},
		{Radius: 3, Quantity: 2},
	}
	first, rejected := ExpandSpecs(specs)
	require.Empty(t, rejected)
	second, _ := ExpandSpecs(specs)

	ids := make([]string, len(first))
	for i, s := range first {
		ids[i] = s.ID
	}
	assert.Equal(t, []string{"shape-1", "named", "shape-3_1", "shape-3_2"}, ids)
	assert.Equal(t, first, second)
}
