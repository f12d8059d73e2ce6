package export

import (
	"fmt"

	"github.com/piwi3910/SlabNest/internal/engine"
	"github.com/piwi3910/SlabNest/internal/geometry"
	"github.com/piwi3910/SlabNest/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"
	"github.com/yofu/dxf/table"
)

// DXF layer names.
const (
	LayerSheet = "SHEET" // sheet outline
	LayerParts = "PARTS" // placed shape outlines
)

// ExportDXF writes the sheet outline and every placed polygon, in sheet
// coordinates, as LINE entities on separate layers.
func ExportDXF(path string, p *model.Problem, res *engine.Result) error {
	if res == nil || res.Layout == nil {
		return fmt.Errorf("dxf export: %w", ErrNothingToExport)
	}

	d := dxf.NewDrawing()

	if _, err := d.AddLayer(LayerSheet, color.Yellow, table.LT_CONTINUOUS, true); err != nil {
		return fmt.Errorf("dxf export: %w", err)
	}
	sheet := res.Layout.Sheet
	if err := drawOutline(d, geometry.R(0, 0, sheet.Width, sheet.Height).Polygon()); err != nil {
		return fmt.Errorf("dxf export: sheet: %w", err)
	}

	if _, err := d.AddLayer(LayerParts, color.Cyan, table.LT_CONTINUOUS, true); err != nil {
		return fmt.Errorf("dxf export: %w", err)
	}
	for _, pl := range res.Layout.Placements {
		s, ok := p.Shape(pl.ShapeID)
		if !ok {
			continue
		}
		if err := drawOutline(d, pl.World(s)); err != nil {
			return fmt.Errorf("dxf export: %s: %w", pl.ShapeID, err)
		}
	}

	return d.SaveAs(path)
}

func drawOutline(d *drawing.Drawing, poly geometry.Polygon) error {
	for i, a := range poly {
		b := poly[(i+1)%len(poly)]
		if _, err := d.Line(a.X, a.Y, 0, b.X, b.Y, 0); err != nil {
			return err
		}
	}
	return nil
}
