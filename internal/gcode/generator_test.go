package gcode

import (
	"math"
	"strings"
	"testing"

	"github.com/piwi3910/SlabNest/internal/geometry"
	"github.com/piwi3910/SlabNest/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestSettings returns settings with predictable output: one pass, no
// tool offset unless the test sets it.
func newTestSettings() Settings {
	s := DefaultSettings()
	s.ToolDiameter = 0
	s.FeedRate = 1000
	s.PlungeRate = 300
	s.SpindleSpeed = 12000
	s.SafeZ = 5
	s.CutDepth = 6
	s.PassDepth = 6
	s.UseClimb = false
	return s
}

func makeTestLayout(t *testing.T, gap float64) (*model.Problem, *model.Layout) {
	t.Helper()
	constraint := model.DefaultConstraint()
	constraint.MinGap = gap
	p, err := model.NewProblem(model.Sheet{Width: 500, Height: 300}, constraint, []model.Shape{
		{ID: "box", Polygon: model.Rectangle(100, 50)},
		{ID: "wedge", Polygon: model.Triangle(60, 40)},
	})
	require.NoError(t, err)

	layout := model.NewLayout(p.Sheet)
	layout.Placements = []model.Placement{
		{ShapeID: "box", X: 10, Y: 10},
		{ShapeID: "wedge", X: 200, Y: 10, Rotation: 90},
	}
	return p, layout
}

func TestNew_InvalidSettings(t *testing.T) {
	s := newTestSettings()
	s.PassDepth = 0
	_, err := New(s)
	assert.ErrorIs(t, err, ErrInvalidSettings)

	s = newTestSettings()
	s.DecimalPlaces = 9
	_, err = New(s)
	assert.ErrorIs(t, err, ErrInvalidSettings)
}

func TestGenerate_ProgramStructure(t *testing.T) {
	p, layout := makeTestLayout(t, 10)
	g, err := New(newTestSettings())
	require.NoError(t, err)

	code := g.Generate(p, layout)

	assert.True(t, strings.HasPrefix(code, "(SlabNest GCode"))
	assert.Contains(t, code, "M3 S12000\n")
	assert.Contains(t, code, "Shape 1: box")
	assert.Contains(t, code, "Shape 2: wedge")
	assert.Contains(t, code, "[rotated 90]")
	assert.True(t, strings.HasSuffix(code, "M5\nM2\n"))
}

func TestGenerate_CutLengthMatchesPerimeters(t *testing.T) {
	p, layout := makeTestLayout(t, 10)
	g, err := New(newTestSettings())
	require.NoError(t, err)

	st := Summarize(Parse(g.Generate(p, layout)))

	side := math.Hypot(30, 40)
	want := 2*(100+50) + 60 + 2*side
	assert.InDelta(t, want, st.CutLength, 1e-2)
	assert.Equal(t, 2, st.Plunges)
}

func TestGenerate_MultiplePasses(t *testing.T) {
	p, layout := makeTestLayout(t, 10)
	s := newTestSettings()
	s.CutDepth = 18
	s.PassDepth = 6
	g, err := New(s)
	require.NoError(t, err)

	code := g.Generate(p, layout)
	assert.Equal(t, 2, strings.Count(code, "Pass 3/3"))
	assert.Contains(t, code, "G1 Z-18.000 F300.000\n")
	assert.NotContains(t, code, "Pass 4/")

	s.CutDepth = 10
	g, err = New(s)
	require.NoError(t, err)
	code = g.Generate(p, layout)
	assert.Contains(t, code, "depth=10.00mm")
	assert.NotContains(t, code, "Pass 3/")
}

func TestGenerate_ToolOffsetEnlargesContour(t *testing.T) {
	p, layout := makeTestLayout(t, 10)
	layout.Placements = layout.Placements[:1]
	s := newTestSettings()
	s.ToolDiameter = 6
	g, err := New(s)
	require.NoError(t, err)

	moves := Parse(g.Generate(p, layout))
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, m := range moves {
		if m.Type != MoveFeed {
			continue
		}
		minX, maxX = math.Min(minX, m.To[0]), math.Max(maxX, m.To[0])
		minY, maxY = math.Min(minY, m.To[1]), math.Max(maxY, m.To[1])
	}
	// The tool centre runs one radius outside every edge of [10,110]x[10,60].
	assert.InDelta(t, 7, minX, 1e-3)
	assert.InDelta(t, 113, maxX, 1e-3)
	assert.InDelta(t, 7, minY, 1e-3)
	assert.InDelta(t, 63, maxY, 1e-3)
}

func TestGenerate_ClimbReversesDirection(t *testing.T) {
	p, layout := makeTestLayout(t, 10)
	layout.Placements = layout.Placements[:1]

	signed := func(climb bool) float64 {
		s := newTestSettings()
		s.UseClimb = climb
		g, err := New(s)
		require.NoError(t, err)
		var path geometry.Polygon
		for _, m := range Parse(g.Generate(p, layout)) {
			if m.Type == MoveFeed {
				path = append(path, geometry.Pt(m.To[0], m.To[1]))
			}
		}
		return path.SignedArea()
	}

	assert.Greater(t, signed(false), 0.0)
	assert.Less(t, signed(true), 0.0)
}

func TestOffsetOutline_Square(t *testing.T) {
	sq := model.Rectangle(10, 10)
	out := offsetOutline(sq, 1)
	require.Len(t, out, 4)
	assert.InDelta(t, -1, out[0].X, 1e-12)
	assert.InDelta(t, -1, out[0].Y, 1e-12)
	assert.InDelta(t, 11, out[2].X, 1e-12)
	assert.InDelta(t, 11, out[2].Y, 1e-12)

	same := offsetOutline(sq, 0)
	assert.Equal(t, sq, same)
}

func TestFormat_NoNegativeZero(t *testing.T) {
	g := &Generator{Settings: newTestSettings()}
	assert.Equal(t, "0.000", g.format(-0.0000001))
	assert.Equal(t, "-1.500", g.format(-1.5))
	assert.Equal(t, "2.000", g.format(2))
}

func TestOffsetOutline_EveryEdgeMovesByDistance(t *testing.T) {
	shapes := map[string]geometry.Polygon{
		"triangle": model.Triangle(60, 40),
		"notched":  {{X: 0, Y: 0}, {X: 40, Y: 0}, {X: 40, Y: 30}, {X: 20, Y: 15}, {X: 0, Y: 30}},
		"octagon":  model.Circle(25, 8),
	}
	for name, poly := range shapes {
		t.Run(name, func(t *testing.T) {
			out := offsetOutline(poly, 3)
			require.Len(t, out, len(poly))
			n := len(poly)
			for i := 0; i < n; i++ {
				j := (i + 1) % n
				normal := outwardNormal(poly[j].Sub(poly[i]))
				assert.InDelta(t, 3, out[i].Sub(poly[i]).Dot(normal), 1e-9, "edge %d start", i)
				assert.InDelta(t, 3, out[j].Sub(poly[j]).Dot(normal), 1e-9, "edge %d end", i)
			}
		})
	}
}
