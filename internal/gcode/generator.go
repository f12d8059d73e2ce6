// Package gcode turns a nested layout into contour-cutting toolpaths and
// reads them back for length and move statistics.
package gcode

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/piwi3910/SlabNest/internal/geometry"
	"github.com/piwi3910/SlabNest/internal/model"
	"k8s.io/klog/v2"
)

// ErrInvalidSettings is returned by Settings.Validate and New.
var ErrInvalidSettings = errors.New("invalid gcode settings")

// Settings describes the tool and feeds for contour cutting.
type Settings struct {
	ToolDiameter  float64 `json:"tool_diameter" yaml:"tool_diameter"`   // mm
	FeedRate      float64 `json:"feed_rate" yaml:"feed_rate"`           // mm/min
	PlungeRate    float64 `json:"plunge_rate" yaml:"plunge_rate"`       // mm/min
	SpindleSpeed  int     `json:"spindle_speed" yaml:"spindle_speed"`   // rpm
	SafeZ         float64 `json:"safe_z" yaml:"safe_z"`                 // mm above the sheet
	CutDepth      float64 `json:"cut_depth" yaml:"cut_depth"`           // sheet thickness
	PassDepth     float64 `json:"pass_depth" yaml:"pass_depth"`         // depth per pass
	UseClimb      bool    `json:"use_climb" yaml:"use_climb"`           // clockwise outside contours
	DecimalPlaces int     `json:"decimal_places" yaml:"decimal_places"` // coordinate precision

	// Dust shoe and fixtures, checked by CheckCollisions
	DustShoeEnabled   bool        `json:"dust_shoe_enabled" yaml:"dust_shoe_enabled"`
	DustShoeWidth     float64     `json:"dust_shoe_width" yaml:"dust_shoe_width"`         // mm, diameter
	DustShoeClearance float64     `json:"dust_shoe_clearance" yaml:"dust_shoe_clearance"` // mm kept free around the shoe
	ClampZones        []ClampZone `json:"clamp_zones,omitempty" yaml:"clamp_zones,omitempty"`
}

// DefaultSettings returns settings for a 6 mm cutter in 18 mm board.
func DefaultSettings() Settings {
	return Settings{
		ToolDiameter:  6,
		FeedRate:      1500,
		PlungeRate:    500,
		SpindleSpeed:  18000,
		SafeZ:         5,
		CutDepth:      18,
		PassDepth:     6,
		UseClimb:      true,
		DecimalPlaces: 3,
		DustShoeWidth: 80,
	}
}

// Validate reports the first unusable setting.
func (s Settings) Validate() error {
	switch {
	case s.ToolDiameter < 0:
		return fmt.Errorf("%w: tool diameter must not be negative", ErrInvalidSettings)
	case s.CutDepth <= 0:
		return fmt.Errorf("%w: cut depth must be positive", ErrInvalidSettings)
	case s.PassDepth <= 0:
		return fmt.Errorf("%w: pass depth must be positive", ErrInvalidSettings)
	case s.FeedRate <= 0 || s.PlungeRate <= 0:
		return fmt.Errorf("%w: feed and plunge rates must be positive", ErrInvalidSettings)
	case s.DecimalPlaces < 0 || s.DecimalPlaces > 6:
		return fmt.Errorf("%w: decimal places must be in [0,6]", ErrInvalidSettings)
	case s.DustShoeWidth < 0 || s.DustShoeClearance < 0:
		return fmt.Errorf("%w: dust shoe width and clearance must not be negative", ErrInvalidSettings)
	}
	for _, cz := range s.ClampZones {
		if cz.Width <= 0 || cz.Height <= 0 {
			return fmt.Errorf("%w: clamp zone %q needs a positive size", ErrInvalidSettings, cz.Label)
		}
	}
	return nil
}

// Generator produces GCode from a nested layout.
type Generator struct {
	Settings Settings
}

// New returns a Generator for validated settings.
func New(settings Settings) (*Generator, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &Generator{Settings: settings}, nil
}

// Generate produces one program that cuts every placed shape along its
// outline, offset outward by the tool radius.
func (g *Generator) Generate(p *model.Problem, layout *model.Layout) string {
	var b strings.Builder

	if p.Constraint.MinGap < g.Settings.ToolDiameter {
		klog.InfoS("Shape gap is narrower than the cutter; neighbouring cuts will overlap",
			"minGap", p.Constraint.MinGap, "toolDiameter", g.Settings.ToolDiameter)
	}

	g.writeHeader(&b, layout)
	for i, pl := range layout.Placements {
		s, ok := p.Shape(pl.ShapeID)
		if !ok {
			continue
		}
		g.writeContour(&b, pl, pl.World(s), i+1)
	}
	g.writeFooter(&b)
	return b.String()
}

func (g *Generator) writeHeader(b *strings.Builder, layout *model.Layout) {
	b.WriteString(g.comment(fmt.Sprintf("SlabNest GCode - sheet %.1f x %.1f mm", layout.Sheet.Width, layout.Sheet.Height)))
	b.WriteString(g.comment(fmt.Sprintf("Shapes: %d, Utilization: %.1f%%", len(layout.Placements), layout.Efficiency())))
	b.WriteString(g.comment(fmt.Sprintf("Tool: %.1fmm, Feed: %.0f mm/min, Plunge: %.0f mm/min",
		g.Settings.ToolDiameter, g.Settings.FeedRate, g.Settings.PlungeRate)))
	b.WriteString(g.comment(fmt.Sprintf("Depth: %.1fmm in %.1fmm passes", g.Settings.CutDepth, g.Settings.PassDepth)))
	b.WriteString("\n")

	b.WriteString("G21\n") // millimetres
	b.WriteString("G90\n") // absolute
	b.WriteString("G17\n") // XY plane
	if g.Settings.SpindleSpeed > 0 {
		b.WriteString(fmt.Sprintf("M3 S%d\n", g.Settings.SpindleSpeed))
	}
	b.WriteString(fmt.Sprintf("G0 Z%s\n", g.format(g.Settings.SafeZ)))
	b.WriteString(fmt.Sprintf("G0 X%s Y%s\n", g.format(0), g.format(0)))
	b.WriteString("\n")
}

func (g *Generator) writeFooter(b *strings.Builder) {
	b.WriteString(g.comment("=== Job complete ==="))
	b.WriteString(fmt.Sprintf("G0 Z%s\n", g.format(g.Settings.SafeZ)))
	b.WriteString("G0 X0 Y0\n")
	if g.Settings.SpindleSpeed > 0 {
		b.WriteString("M5\n")
	}
	b.WriteString("M2\n")
}

// writeContour cuts one placed polygon in as many passes as the depth needs.
func (g *Generator) writeContour(b *strings.Builder, pl model.Placement, world geometry.Polygon, partNum int) {
	b.WriteString(g.comment(fmt.Sprintf("--- Shape %d: %s at %.1f,%.1f%s ---",
		partNum, pl.ShapeID, pl.X, pl.Y, rotatedStr(pl.Rotation))))

	path := offsetOutline(world, g.Settings.ToolDiameter/2)
	if g.Settings.UseClimb {
		path = path.Reverse()
	}

	numPasses := int(math.Ceil(g.Settings.CutDepth/g.Settings.PassDepth - geometry.Epsilon))
	for pass := 1; pass <= numPasses; pass++ {
		depth := math.Min(float64(pass)*g.Settings.PassDepth, g.Settings.CutDepth)

		b.WriteString(g.comment(fmt.Sprintf("Pass %d/%d, depth=%.2fmm", pass, numPasses, depth)))
		b.WriteString(fmt.Sprintf("G0 X%s Y%s\n", g.format(path[0].X), g.format(path[0].Y)))
		b.WriteString(fmt.Sprintf("G1 Z%s F%s\n", g.format(-depth), g.format(g.Settings.PlungeRate)))

		for i := 1; i <= len(path); i++ {
			pt := path[i%len(path)]
			if i == 1 {
				b.WriteString(fmt.Sprintf("G1 X%s Y%s F%s\n", g.format(pt.X), g.format(pt.Y), g.format(g.Settings.FeedRate)))
				continue
			}
			b.WriteString(fmt.Sprintf("G1 X%s Y%s\n", g.format(pt.X), g.format(pt.Y)))
		}

		b.WriteString(fmt.Sprintf("G0 Z%s\n", g.format(g.Settings.SafeZ)))
	}
	b.WriteString("\n")
}

// minCosHalf caps the miter at acute tips to 20 tool radii.
const minCosHalf = 0.05

// offsetOutline moves every edge of a counter-clockwise polygon outward by
// dist. Each vertex goes to the meeting point of its two offset edges, along
// the bisector of the edge normals by dist/cos(half the turn angle).
func offsetOutline(poly geometry.Polygon, dist float64) geometry.Polygon {
	n := len(poly)
	if n < 3 || dist == 0 {
		return poly.Clone()
	}

	out := make(geometry.Polygon, n)
	for i := 0; i < n; i++ {
		prev := poly[(i-1+n)%n]
		curr := poly[i]
		next := poly[(i+1)%n]

		n1 := outwardNormal(curr.Sub(prev))
		n2 := outwardNormal(next.Sub(curr))
		bis := n1.Add(n2)
		l := bis.Len()
		if l <= geometry.Epsilon {
			out[i] = geometry.Pt(curr.X+n1.X*dist, curr.Y+n1.Y*dist)
			continue
		}
		bis = geometry.Pt(bis.X/l, bis.Y/l)
		miter := dist / math.Max(n1.Dot(bis), minCosHalf)
		out[i] = geometry.Pt(curr.X+bis.X*miter, curr.Y+bis.Y*miter)
	}
	return out
}

// outwardNormal is the unit right-hand normal of an edge, which points out
// of a counter-clockwise polygon.
func outwardNormal(e geometry.Point) geometry.Point {
	l := e.Len()
	if l < geometry.Epsilon {
		return geometry.Point{}
	}
	return geometry.Pt(e.Y/l, -e.X/l)
}

// comment wraps text in parentheses, which GRBL and LinuxCNC both accept.
func (g *Generator) comment(text string) string {
	r := strings.NewReplacer("(", "[", ")", "]")
	return "(" + r.Replace(text) + ")\n"
}

// format formats a coordinate to the configured decimal places.
func (g *Generator) format(v float64) string {
	s := fmt.Sprintf("%.*f", g.Settings.DecimalPlaces, v)
	if strings.HasPrefix(s, "-") && strings.Trim(s, "-0.") == "" {
		return s[1:]
	}
	return s
}

func rotatedStr(deg float64) string {
	if deg == 0 {
		return ""
	}
	return fmt.Sprintf(" [rotated %.0f]", deg)
}
