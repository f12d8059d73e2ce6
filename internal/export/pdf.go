// Package export writes nesting results to PDF reports, QR-coded label
// sheets and DXF drawings for the cutting machine.
package export

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/SlabNest/internal/engine"
	"github.com/piwi3910/SlabNest/internal/geometry"
	"github.com/piwi3910/SlabNest/internal/model"
)

// ErrNothingToExport is returned when a result carries no layout or no
// placed shapes where the format needs them.
var ErrNothingToExport = errors.New("nothing to export")

// partColor represents an RGB color for a placed shape.
type partColor struct {
	R, G, B int
}

var partColors = []partColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	statsHeight  = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// sheetCanvas maps sheet coordinates (y up) onto the page (y down).
type sheetCanvas struct {
	scale   float64
	offsetX float64
	offsetY float64
	width   float64
	height  float64
}

func (c sheetCanvas) point(p geometry.Point) fpdf.PointType {
	return fpdf.PointType{X: c.offsetX + p.X*c.scale, Y: c.offsetY + c.height - p.Y*c.scale}
}

// ExportPDF writes a two-page report: the layout drawing with remnant
// zones, followed by a summary of the run and the placement table.
func ExportPDF(path string, p *model.Problem, res *engine.Result) error {
	if res == nil || res.Layout == nil {
		return fmt.Errorf("pdf export: %w", ErrNothingToExport)
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	renderSheetPage(pdf, p, res.Layout)

	pdf.AddPage()
	renderSummaryPage(pdf, p, res)

	return pdf.OutputFileAndClose(path)
}

// renderSheetPage draws the layout on the current PDF page.
func renderSheetPage(pdf *fpdf.Fpdf, p *model.Problem, layout *model.Layout) {
	sheet := layout.Sheet

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Sheet layout (%.0f x %.0f mm)", sheet.Width, sheet.Height)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	stats := layout.Stats()
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	line := fmt.Sprintf("Shapes: %d/%d | Placed area: %.0f mm² | Sheet area: %.0f mm² | Utilization: %.1f%%",
		stats.PartsPlaced, stats.TotalParts, stats.PlacedArea, stats.SheetArea, layout.Efficiency())
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, line, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - statsHeight
	scale := math.Min(drawWidth/sheet.Width, drawHeight/sheet.Height)

	c := sheetCanvas{scale: scale, offsetY: drawAreaTop, width: sheet.Width * scale, height: sheet.Height * scale}
	c.offsetX = marginLeft + (drawWidth-c.width)/2

	// Sheet background (wood color)
	pdf.SetFillColor(210, 180, 140)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(c.offsetX, c.offsetY, c.width, c.height, "FD")

	drawRemnants(pdf, model.DetectRemnants(layout, p, p.Constraint.MinGap), c)

	for i, pl := range layout.Placements {
		s, ok := p.Shape(pl.ShapeID)
		if !ok {
			continue
		}
		world := pl.World(s)
		pts := make([]fpdf.PointType, len(world))
		for k, v := range world {
			pts[k] = c.point(v)
		}

		col := partColors[i%len(partColors)]
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Polygon(pts, "FD")

		bb := world.BoundingBox()
		pw, ph := bb.Width()*scale, bb.Height()*scale
		if pw > 15 && ph > 8 {
			pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
			pdf.SetTextColor(0, 0, 0)
			centre := c.point(geometry.Pt((bb.Min.X+bb.Max.X)/2, (bb.Min.Y+bb.Max.Y)/2))
			labelW := pdf.GetStringWidth(pl.ShapeID)
			if labelW < pw-2 {
				pdf.SetXY(centre.X-labelW/2, centre.Y-2)
				pdf.CellFormat(labelW, 4, pl.ShapeID, "", 0, "C", false, 0, "")
			}
		}
	}

	drawDimensionAnnotations(pdf, sheet, c)
	drawPartsLegend(pdf, layout, c.offsetY+c.height+5)
}

// drawRemnants shades the reusable offcut strips left beside the nest.
func drawRemnants(pdf *fpdf.Fpdf, remnants []model.Remnant, c sheetCanvas) {
	for _, r := range remnants {
		topLeft := c.point(geometry.Pt(r.X, r.Y+r.Height))
		zw := r.Width * c.scale
		zh := r.Height * c.scale

		pdf.SetFillColor(220, 240, 220)
		pdf.SetDrawColor(0, 140, 0)
		pdf.SetLineWidth(0.3)
		pdf.Rect(topLeft.X, topLeft.Y, zw, zh, "FD")

		drawHatchPattern(pdf, topLeft.X, topLeft.Y, zw, zh)

		if zw > 20 && zh > 8 {
			pdf.SetFont("Helvetica", "B", 6)
			pdf.SetTextColor(0, 110, 0)
			label := fmt.Sprintf("REMNANT %.0fx%.0f", r.Width, r.Height)
			labelW := pdf.GetStringWidth(label)
			if labelW < zw-2 {
				pdf.SetXY(topLeft.X+(zw-labelW)/2, topLeft.Y+zh/2-2)
				pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
			}
		}
	}
	pdf.SetTextColor(0, 0, 0)
}

// drawHatchPattern draws diagonal lines inside a rectangle.
func drawHatchPattern(pdf *fpdf.Fpdf, x, y, w, h float64) {
	pdf.SetDrawColor(0, 140, 0)
	pdf.SetLineWidth(0.15)

	spacing := 4.0
	for d := spacing; d < w+h; d += spacing {
		x1 := x + math.Max(0, d-h)
		y1 := y + math.Min(h, d)
		x2 := x + math.Min(w, d)
		y2 := y + math.Max(0, d-w)
		pdf.Line(x1, y1, x2, y2)
	}
}

// drawDimensionAnnotations adds width and height labels outside the sheet.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, sheet model.Sheet, c sheetCanvas) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%.0f mm", sheet.Width)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(c.offsetX+(c.width-wLabelW)/2, c.offsetY+c.height+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("%.0f mm", sheet.Height)
	pdf.TransformBegin()
	pdf.TransformRotate(90, c.offsetX-3, c.offsetY+c.height/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(c.offsetX-3-hLabelW/2, c.offsetY+c.height/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawPartsLegend renders a compact legend of placed shapes below the sheet.
func drawPartsLegend(pdf *fpdf.Fpdf, layout *model.Layout, startY float64) {
	if len(layout.Placements) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Shapes placed:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight

	for i, pl := range layout.Placements {
		col := partColors[i%len(partColors)]
		label := pl.ShapeID
		if pl.Rotation != 0 {
			label += fmt.Sprintf(" R%.0f", pl.Rotation)
		}
		labelW := pdf.GetStringWidth(label) + 6

		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}
		if startY > pageHeight-marginBottom {
			break
		}

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")
		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")

		xPos += labelW + 2
	}
}

// renderSummaryPage draws the run statistics and the placement table. The
// table continues on further pages when it runs past the bottom margin.
func renderSummaryPage(pdf *fpdf.Fpdf, p *model.Problem, res *engine.Result) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Nesting Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18
	stats := res.Layout.Stats()

	summaryItems := []struct {
		label string
		value string
	}{
		{"Run", res.RunID},
		{"Stop Reason", string(res.Reason)},
		{"Generations", fmt.Sprintf("%d", res.Generations)},
		{"Evaluations", fmt.Sprintf("%d", res.Evaluations)},
		{"Elapsed", res.Elapsed.Round(time.Millisecond).String()},
		{"Shapes Placed", fmt.Sprintf("%d of %d", stats.PartsPlaced, stats.TotalParts)},
		{"Utilization", fmt.Sprintf("%.1f%%", res.Layout.Efficiency())},
		{"Waste Area", fmt.Sprintf("%.0f mm²", stats.WasteArea)},
		{"Score", fmt.Sprintf("%.4f", res.Fitness.Score)},
		{"Compactness", fmt.Sprintf("%.3f", res.Fitness.Compactness)},
		{"Rotation", rotationSummary(p.Constraint)},
		{"Minimum Gap", fmt.Sprintf("%.1f mm", p.Constraint.MinGap)},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(45, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(60, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 6
	}

	y = renderNotes(pdf, res, y+4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Placements", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{60, 40, 40, 40, 50}
	headers := []string{"Shape", "X (mm)", "Y (mm)", "Rotation", "Area (mm²)"}
	drawHeader := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		xPos := marginLeft
		for i, header := range headers {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
			xPos += colWidths[i]
		}
		y += 6
		pdf.SetFont("Helvetica", "", 9)
	}
	drawHeader()

	for i, pl := range res.Layout.Placements {
		if y > pageHeight-marginBottom-10 {
			pdf.AddPage()
			y = marginTop
			drawHeader()
		}
		area := 0.0
		if s, ok := p.Shape(pl.ShapeID); ok {
			area = s.Area()
		}
		rowData := []string{
			pl.ShapeID,
			fmt.Sprintf("%.1f", pl.X),
			fmt.Sprintf("%.1f", pl.Y),
			fmt.Sprintf("%.0f\xb0", pl.Rotation),
			fmt.Sprintf("%.0f", area),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		xPos := marginLeft
		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by SlabNest - Irregular Shape Nesting", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// renderNotes lists unplaced, infeasible and rejected shapes in red and
// returns the next free y position.
func renderNotes(pdf *fpdf.Fpdf, res *engine.Result, y float64) float64 {
	var notes []string
	infeasible := make(map[string]bool, len(res.Infeasible))
	for _, id := range res.Infeasible {
		infeasible[id] = true
		notes = append(notes, fmt.Sprintf("- %s: does not fit the sheet in any allowed rotation", id))
	}
	for _, id := range res.Layout.UnplacedIDs {
		if !infeasible[id] {
			notes = append(notes, fmt.Sprintf("- %s: no room left on the sheet", id))
		}
	}
	for _, r := range res.Rejected {
		notes = append(notes, fmt.Sprintf("- %s: rejected (%s)", r.ShapeID, r.Reason))
	}
	if len(notes) == 0 {
		return y
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(200, 0, 0)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(200, 7, "WARNING: Shapes not placed", "", 0, "L", false, 0, "")
	y += 8

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(0, 0, 0)
	for _, n := range notes {
		if y > pageHeight-marginBottom-10 {
			pdf.AddPage()
			y = marginTop
		}
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(250, 5, n, "", 0, "L", false, 0, "")
		y += 5
	}
	return y + 5
}

func rotationSummary(c model.Constraint) string {
	switch {
	case !c.AllowRotation:
		return "disabled"
	case len(c.Angles) > 0:
		return fmt.Sprintf("angles %v", c.Angles)
	case c.RotationStep > 0:
		return fmt.Sprintf("every %.0f\xb0", c.RotationStep)
	default:
		return "fixed"
	}
}

// labelFontSize returns an appropriate font size based on the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
