package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/piwi3910/SlabNest/internal/importer"
	"github.com/piwi3910/SlabNest/internal/model"
	"github.com/piwi3910/SlabNest/internal/project"
	"k8s.io/klog/v2"
)

// jobSource collects a job from an optional job file plus command-line
// overrides for the sheet and extra shape files.
type jobSource struct {
	sheet  string
	shapes []string
}

// load builds the job. A job file is optional when --sheet and --shapes
// describe the whole job.
func (s jobSource) load(args []string) (project.Job, error) {
	var job project.Job
	if len(args) > 0 {
		var err error
		job, err = project.LoadJob(args[0])
		if err != nil {
			return project.Job{}, err
		}
	}

	if s.sheet != "" {
		sheet, err := parseSheet(s.sheet)
		if err != nil {
			return project.Job{}, err
		}
		job.Sheet = sheet
	}

	for _, path := range s.shapes {
		specs, err := importShapes(path)
		if err != nil {
			return project.Job{}, err
		}
		job.Shapes = append(job.Shapes, specs...)
	}

	if job.Sheet == (model.Sheet{}) {
		return project.Job{}, fmt.Errorf("no sheet given: pass a job file or --sheet WIDTHxHEIGHT")
	}
	return job, nil
}

// parseSheet reads a "WIDTHxHEIGHT" sheet size in mm.
func parseSheet(s string) (model.Sheet, error) {
	parts := strings.Split(strings.ToLower(s), "x")
	if len(parts) != 2 {
		return model.Sheet{}, fmt.Errorf("invalid sheet size %q, want WIDTHxHEIGHT", s)
	}
	w, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return model.Sheet{}, fmt.Errorf("invalid sheet width %q: %w", parts[0], err)
	}
	h, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return model.Sheet{}, fmt.Errorf("invalid sheet height %q: %w", parts[1], err)
	}
	sheet := model.Sheet{Width: w, Height: h}
	return sheet, sheet.Validate()
}

// importShapes reads shape specs from a CSV, Excel or DXF file. Row-level
// problems are logged; a file that yields nothing is an error.
func importShapes(path string) ([]model.ShapeSpec, error) {
	var res importer.ImportResult
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		res = importer.ImportExcel(path)
	case ".dxf":
		res = importer.ImportDXF(path)
	default:
		res = importer.ImportCSV(path)
	}

	for _, w := range res.Warnings {
		klog.V(1).InfoS("Import warning", "file", path, "warning", w)
	}
	for _, e := range res.Errors {
		klog.InfoS("Import error", "file", path, "error", e)
	}
	if len(res.Specs) == 0 {
		if len(res.Errors) > 0 {
			return nil, fmt.Errorf("import %s: %s", path, res.Errors[0])
		}
		return nil, fmt.Errorf("import %s: no shapes found", path)
	}
	return res.Specs, nil
}
