package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/SlabNest/internal/engine"
	"github.com/piwi3910/SlabNest/internal/model"
)

// buildTestRun returns a small problem with a hand-placed layout: two
// rectangles and a triangle, one shape left over.
func buildTestRun(t *testing.T) (*model.Problem, *engine.Result) {
	t.Helper()

	constraint := model.DefaultConstraint()
	constraint.MinGap = 5
	shapes := []model.Shape{
		{ID: "side", Polygon: model.Rectangle(600, 400)},
		{ID: "top", Polygon: model.Rectangle(500, 300)},
		{ID: "brace", Polygon: model.Triangle(300, 200)},
		{ID: "spare", Polygon: model.Rectangle(900, 900)},
	}
	p, err := model.NewProblem(model.Sheet{Width: 2440, Height: 1220}, constraint, shapes)
	if err != nil {
		t.Fatalf("NewProblem: %v", err)
	}

	layout := model.NewLayout(p.Sheet)
	layout.Placements = []model.Placement{
		{ShapeID: "side", X: 5, Y: 5},
		{ShapeID: "top", X: 915, Y: 5, Rotation: 90},
		{ShapeID: "brace", X: 920, Y: 5},
	}
	layout.UnplacedIDs = []string{"spare"}
	layout.PlacedArea = 600*400 + 500*300 + 300*200/2
	layout.Utilization = layout.PlacedArea / p.Sheet.Area()

	return p, &engine.Result{
		RunID:       "test-run",
		Layout:      layout,
		Fitness:     engine.Fitness{Score: 0.1, Utilization: layout.Utilization, Unplaced: 1},
		Generations: 3,
		Evaluations: 40,
		Reason:      engine.ReasonMaxGenerations,
	}
}

func assertFileWritten(t *testing.T, path string, minSize int64) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("file was not created: %v", err)
	}
	if info.Size() < minSize {
		t.Errorf("file seems too small: %d bytes", info.Size())
	}
}

func TestExportPDF_CreatesFile(t *testing.T) {
	p, res := buildTestRun(t)
	path := filepath.Join(t.TempDir(), "layout.pdf")

	if err := ExportPDF(path, p, res); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	assertFileWritten(t, path, 500)
}

func TestExportPDF_WithRejectedAndInfeasible(t *testing.T) {
	p, res := buildTestRun(t)
	res.Infeasible = []string{"spare"}
	res.Rejected = []model.Rejection{{ShapeID: "bad", Reason: "zero area"}}
	path := filepath.Join(t.TempDir(), "notes.pdf")

	if err := ExportPDF(path, p, res); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	assertFileWritten(t, path, 500)
}

func TestExportPDF_ManyPlacementsSpillOver(t *testing.T) {
	var shapes []model.Shape
	layout := model.NewLayout(model.Sheet{Width: 5000, Height: 3000})
	for i := 0; i < 60; i++ {
		s := model.NewShape(model.Rectangle(40, 40))
		shapes = append(shapes, s)
		layout.Placements = append(layout.Placements, model.Placement{
			ShapeID: s.ID, X: float64(i%50) * 50, Y: float64(i/50) * 50,
		})
	}
	p, err := model.NewProblem(layout.Sheet, model.DefaultConstraint(), shapes)
	if err != nil {
		t.Fatalf("NewProblem: %v", err)
	}
	path := filepath.Join(t.TempDir(), "many.pdf")

	if err := ExportPDF(path, p, &engine.Result{Layout: layout}); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	assertFileWritten(t, path, 500)
}

func TestExportPDF_NoLayout(t *testing.T) {
	p, _ := buildTestRun(t)
	err := ExportPDF(filepath.Join(t.TempDir(), "empty.pdf"), p, &engine.Result{})
	if err == nil {
		t.Fatal("expected error for missing layout, got nil")
	}
}

func TestExportLabels_CreatesFile(t *testing.T) {
	p, res := buildTestRun(t)
	path := filepath.Join(t.TempDir(), "labels.pdf")

	if err := ExportLabels(path, p, res); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}
	assertFileWritten(t, path, 500)
}

func TestExportLabels_NoPlacements(t *testing.T) {
	p, res := buildTestRun(t)
	res.Layout.Placements = nil

	err := ExportLabels(filepath.Join(t.TempDir(), "none.pdf"), p, res)
	if err == nil {
		t.Fatal("expected error for result with no placements, got nil")
	}
}

func TestCollectLabelInfos(t *testing.T) {
	p, res := buildTestRun(t)
	labels := CollectLabelInfos(p, res)

	if len(labels) != 3 {
		t.Fatalf("expected 3 labels, got %d", len(labels))
	}
	if labels[0].ShapeID != "side" || labels[0].RunID != "test-run" {
		t.Errorf("unexpected first label %+v", labels[0])
	}
	if labels[0].Width != 600 || labels[0].Height != 400 {
		t.Errorf("wrong dimensions: got %.0fx%.0f, want 600x400", labels[0].Width, labels[0].Height)
	}
	// Quarter turn swaps the bounding box.
	if labels[1].Width != 300 || labels[1].Height != 500 || labels[1].Rotation != 90 {
		t.Errorf("expected rotated 300x500 label, got %+v", labels[1])
	}
	if labels[2].Area != 30000 {
		t.Errorf("expected triangle area 30000, got %v", labels[2].Area)
	}
}

func TestCollectLabelInfos_NilResult(t *testing.T) {
	p, _ := buildTestRun(t)
	if got := CollectLabelInfos(p, nil); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}
