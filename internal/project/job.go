// Package project loads nesting jobs and persists application defaults.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/piwi3910/SlabNest/internal/engine"
	"github.com/piwi3910/SlabNest/internal/gcode"
	"github.com/piwi3910/SlabNest/internal/model"
	"gopkg.in/yaml.v3"
)

// Job is one nesting job as stored on disk: a sheet, the shapes to nest and
// optional overrides of the saved defaults.
type Job struct {
	Name       string             `json:"name,omitempty" yaml:"name,omitempty"`
	Sheet      model.Sheet        `json:"sheet" yaml:"sheet"`
	Constraint *model.Constraint  `json:"constraint,omitempty" yaml:"constraint,omitempty"` // nil = app defaults
	Shapes     []model.ShapeSpec  `json:"shapes" yaml:"shapes"`
	Optimizer  *OptimizerSettings `json:"optimizer,omitempty" yaml:"optimizer,omitempty"`
	GCode      *gcode.Settings    `json:"gcode,omitempty" yaml:"gcode,omitempty"` // nil = gcode.DefaultSettings
}

// OptimizerSettings overrides engine parameters for a single job. Zero
// fields keep the value from the application defaults.
type OptimizerSettings struct {
	PopulationSize    int     `json:"population_size,omitempty" yaml:"population_size,omitempty"`
	MaxGenerations    int     `json:"max_generations,omitempty" yaml:"max_generations,omitempty"`
	PlateauLimit      int     `json:"plateau_limit,omitempty" yaml:"plateau_limit,omitempty"`
	MutationRate      float64 `json:"mutation_rate,omitempty" yaml:"mutation_rate,omitempty"`
	CrossoverRate     float64 `json:"crossover_rate,omitempty" yaml:"crossover_rate,omitempty"`
	TournamentSize    int     `json:"tournament_size,omitempty" yaml:"tournament_size,omitempty"`
	EliteCount        int     `json:"elite_count,omitempty" yaml:"elite_count,omitempty"`
	RandomSeed        *int64  `json:"random_seed,omitempty" yaml:"random_seed,omitempty"`
	TimeBudgetSeconds float64 `json:"time_budget_seconds,omitempty" yaml:"time_budget_seconds,omitempty"`
	MaxEvaluations    int     `json:"max_evaluations,omitempty" yaml:"max_evaluations,omitempty"`
	Workers           int     `json:"workers,omitempty" yaml:"workers,omitempty"`
	UnplacedWeight    float64 `json:"unplaced_area_weight,omitempty" yaml:"unplaced_area_weight,omitempty"`
}

// isYAML reports whether the path names a YAML file.
func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadJob reads a job file. Files ending in .yaml or .yml are decoded as
// YAML, everything else as JSON.
func LoadJob(path string) (Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Job{}, fmt.Errorf("failed to read job file: %w", err)
	}
	var job Job
	if isYAML(path) {
		err = yaml.Unmarshal(data, &job)
	} else {
		err = json.Unmarshal(data, &job)
	}
	if err != nil {
		return Job{}, fmt.Errorf("failed to parse job file %s: %w", path, err)
	}
	return job, nil
}

// SaveJob writes a job file, picking the format from the extension.
func SaveJob(path string, job Job) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(job)
	} else {
		data, err = json.MarshalIndent(job, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Problem expands the job's shape specs and validates them. Specs that do
// not describe a polygon are reported in Rejected next to the geometry and
// duplicate-ID rejections from model.NewProblem.
func (j Job) Problem(app model.AppConfig) (*model.Problem, error) {
	constraint := model.DefaultConstraint()
	app.ApplyToConstraint(&constraint)
	if j.Constraint != nil {
		constraint = *j.Constraint
	}

	shapes, specRejected := model.ExpandSpecs(j.Shapes)
	p, err := model.NewProblem(j.Sheet, constraint, shapes)
	if err != nil {
		return nil, err
	}
	p.Rejected = append(specRejected, p.Rejected...)
	return p, nil
}

// EngineConfig merges the job's overrides onto the application defaults and
// scales the search for the number of shapes.
func (j Job) EngineConfig(app model.AppConfig, shapes int) engine.Config {
	cfg := engine.ConfigFromApp(app).ScaleForProblem(shapes)
	o := j.Optimizer
	if o == nil {
		return cfg
	}
	if o.PopulationSize > 0 {
		cfg.PopulationSize = o.PopulationSize
	}
	if o.MaxGenerations > 0 {
		cfg.MaxGenerations = o.MaxGenerations
	}
	if o.PlateauLimit > 0 {
		cfg.PlateauLimit = o.PlateauLimit
	}
	if o.MutationRate > 0 {
		cfg.MutationRate = o.MutationRate
	}
	if o.CrossoverRate > 0 {
		cfg.CrossoverRate = o.CrossoverRate
	}
	if o.TournamentSize > 0 {
		cfg.TournamentSize = o.TournamentSize
	}
	if o.EliteCount > 0 {
		cfg.EliteCount = o.EliteCount
	}
	if o.RandomSeed != nil {
		cfg.RandomSeed = *o.RandomSeed
	}
	if o.TimeBudgetSeconds > 0 {
		cfg.TimeBudget = time.Duration(o.TimeBudgetSeconds * float64(time.Second))
	}
	if o.MaxEvaluations > 0 {
		cfg.MaxEvaluations = o.MaxEvaluations
	}
	if o.Workers > 0 {
		cfg.Workers = o.Workers
	}
	if o.UnplacedWeight > 0 {
		cfg.UnplacedAreaWeight = o.UnplacedWeight
	}
	return cfg
}

// ToolpathSettings returns the job's contour-cutting settings, falling back
// to the defaults when the job has none.
func (j Job) ToolpathSettings() gcode.Settings {
	if j.GCode == nil {
		return gcode.DefaultSettings()
	}
	return *j.GCode
}
