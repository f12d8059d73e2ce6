package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverlapArea(t *testing.T) {
	tests := map[string]struct {
		a, b Polygon
		want float64
	}{
		"partial":       {square(0, 0, 50), square(25, 25, 50), 625},
		"contained":     {square(0, 0, 50), square(10, 10, 5), 25},
		"edge contact":  {square(0, 0, 50), square(50, 0, 50), 0},
		"apart":         {square(0, 0, 10), square(30, 30, 10), 0},
		"in the notch":  {lShape(), square(10, 10, 10), 0},
		"across notch":  {lShape(), square(5, 5, 10), 75},
		"triangle tips": {Polygon{{0, 0}, {10, 0}, {0, 10}}, Polygon{{10, 10}, {0, 10}, {10, 0}}, 0},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.InDelta(t, tc.want, OverlapArea(tc.a, tc.b), 1e-6)
			assert.InDelta(t, tc.want, OverlapArea(tc.b, tc.a), 1e-6)
			assert.Equal(t, tc.want > 0, Overlapping(tc.a, tc.b))
		})
	}
}

// The clipper and the separating axis test must agree on every pair with
// no clearance.
func TestOverlapAreaAgreesWithOverlaps(t *testing.T) {
	shapes := []Polygon{
		square(0, 0, 20),
		lShape(),
		{{0, 0}, {30, 0}, {15, 12}},
		{{0, 0}, {20, 0}, {20, 5}, {5, 5}, {5, 20}, {0, 20}},
	}
	for i, a := range shapes {
		for j, b := range shapes {
			for dx := -25.0; dx <= 25; dx += 5 {
				for dy := -25.0; dy <= 25; dy += 5 {
					moved := b.Translate(dx, dy)
					assert.Equal(t, Overlaps(a, moved, 0), Overlapping(a, moved),
						"shape %d vs shape %d at (%v, %v)", i, j, dx, dy)
				}
			}
		}
	}
}
