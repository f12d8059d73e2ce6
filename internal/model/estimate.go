package model

import "math"

// MaterialEstimate holds the results of a sheet purchasing calculation.
type MaterialEstimate struct {
	ShapeArea         float64 `json:"shape_area"`          // true polygon area of all shapes (sq mm)
	FootprintArea     float64 `json:"footprint_area"`      // bounding boxes grown by the gap (sq mm)
	TotalBoardFeet    float64 `json:"total_board_feet"`    // footprint area in board feet
	SheetArea         float64 `json:"sheet_area"`          // area of one sheet (sq mm)
	SheetsNeededExact float64 `json:"sheets_needed_exact"` // fractional number of sheets
	SheetsNeededMin   int     `json:"sheets_needed_min"`   // ceiling of exact
	SheetsWithWaste   int     `json:"sheets_with_waste"`   // recommended sheets including waste factor
	WastePercent      float64 `json:"waste_percent"`
	EstimatedCost     float64 `json:"estimated_cost"`
	PricePerSheet     float64 `json:"price_per_sheet"`
}

// sqmmPerBoardFoot is the number of square millimeters in one board foot.
// 1 board foot = 12" x 12" x 1" (area) = 144 sq inches = 144 * 645.16 sq mm = 92903.04 sq mm.
const sqmmPerBoardFoot = 92903.04

// EstimateMaterial computes how many sheets the shapes of a problem would
// need if they were nested across several copies of its sheet. Each shape
// is charged for its bounding box plus the gap, which is what a nest of
// irregular parts tends to consume, and the result is then padded by
// wastePercent.
func EstimateMaterial(p *Problem, wastePercent, pricePerSheet float64) MaterialEstimate {
	gap := p.Constraint.MinGap
	var shapeArea, footprint float64
	for _, s := range p.Shapes {
		shapeArea += s.Area()
		bb := s.Polygon.BoundingBox()
		footprint += (bb.Width() + gap) * (bb.Height() + gap)
	}

	est := MaterialEstimate{
		ShapeArea:      shapeArea,
		FootprintArea:  footprint,
		TotalBoardFeet: footprint / sqmmPerBoardFoot,
		WastePercent:   wastePercent,
		PricePerSheet:  pricePerSheet,
	}

	sheetArea := p.Sheet.Area()
	if sheetArea <= 0 {
		return est
	}

	exactSheets := footprint / sheetArea
	minSheets := int(math.Ceil(exactSheets))

	wasteFactor := 1.0 + (wastePercent / 100.0)
	sheetsWithWaste := int(math.Ceil(exactSheets * wasteFactor))
	if sheetsWithWaste < minSheets {
		sheetsWithWaste = minSheets
	}

	est.SheetArea = sheetArea
	est.SheetsNeededExact = exactSheets
	est.SheetsNeededMin = minSheets
	est.SheetsWithWaste = sheetsWithWaste
	est.EstimatedCost = float64(sheetsWithWaste) * pricePerSheet
	return est
}
