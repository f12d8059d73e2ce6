package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/piwi3910/SlabNest/internal/gcode"
	"github.com/piwi3910/SlabNest/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlJob = `
name: cabinet
sheet:
  width: 1000
  height: 500
constraint:
  allow_rotation: true
  rotation_step_degrees: 90
  min_gap: 2
shapes:
  - id: side
    width: 300
    height: 200
    quantity: 2
  - id: brace
    base: 100
    height: 80
  - id: knob
    radius: 20
  - id: notch
    polygon: [[0, 0], [100, 0], [100, 100], [50, 100], [50, 50], [0, 50]]
    angles: [0]
optimizer:
  population_size: 12
  max_generations: 5
  random_seed: 0
  time_budget_seconds: 1.5
`

func writeJob(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadJob_YAML(t *testing.T) {
	job, err := LoadJob(writeJob(t, "job.yaml", yamlJob))
	require.NoError(t, err)

	assert.Equal(t, "cabinet", job.Name)
	assert.Equal(t, model.Sheet{Width: 1000, Height: 500}, job.Sheet)
	require.NotNil(t, job.Constraint)
	assert.Equal(t, 2.0, job.Constraint.MinGap)
	require.Len(t, job.Shapes, 4)
	assert.Equal(t, 2, job.Shapes[0].Quantity)
	assert.Equal(t, [2]float64{50, 100}, job.Shapes[3].Polygon[3])
	assert.Equal(t, []float64{0}, job.Shapes[3].Angles)
	require.NotNil(t, job.Optimizer)
	require.NotNil(t, job.Optimizer.RandomSeed)
	assert.Equal(t, int64(0), *job.Optimizer.RandomSeed)
}

func TestLoadJob_JSON(t *testing.T) {
	path := writeJob(t, "job.json", `{
		"sheet": {"width": 400, "height": 300},
		"shapes": [{"id": "a", "width": 100, "height": 50}]
	}`)

	job, err := LoadJob(path)
	require.NoError(t, err)
	assert.Nil(t, job.Constraint)
	assert.Nil(t, job.Optimizer)
	require.Len(t, job.Shapes, 1)
	assert.Equal(t, 100.0, job.Shapes[0].Width)
}

func TestLoadJob_Errors(t *testing.T) {
	_, err := LoadJob(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadJob(writeJob(t, "bad.json", "{not json}"))
	assert.Error(t, err)

	_, err = LoadJob(writeJob(t, "bad.yml", "sheet: [unterminated"))
	assert.Error(t, err)
}

func TestSaveJob_RoundTripBothFormats(t *testing.T) {
	seed := int64(9)
	job := Job{
		Name:  "roundtrip",
		Sheet: model.Sheet{Width: 800, Height: 600},
		Shapes: []model.ShapeSpec{
			{ID: "a", Width: 100, Height: 50, Quantity: 3},
			{ID: "b", Polygon: [][2]float64{{0, 0}, {40, 0}, {0, 30}}},
		},
		Optimizer: &OptimizerSettings{PopulationSize: 20, RandomSeed: &seed},
	}

	for _, name := range []string{"job.json", "job.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out", name)
			require.NoError(t, SaveJob(path, job))

			loaded, err := LoadJob(path)
			require.NoError(t, err)
			assert.Equal(t, job, loaded)
		})
	}
}

func TestJob_Problem(t *testing.T) {
	job, err := LoadJob(writeJob(t, "job.yaml", yamlJob))
	require.NoError(t, err)

	p, err := job.Problem(model.DefaultAppConfig())
	require.NoError(t, err)

	ids := make([]string, len(p.Shapes))
	for i, s := range p.Shapes {
		ids[i] = s.ID
	}
	assert.Equal(t, []string{"side_1", "side_2", "brace", "knob", "notch"}, ids)
	assert.Empty(t, p.Rejected)
	assert.Equal(t, 2.0, p.Constraint.MinGap)

	knob, ok := p.Shape("knob")
	require.True(t, ok)
	assert.Len(t, knob.Polygon, model.CircleSegments)
}

func TestJob_ProblemUsesAppDefaultsWithoutConstraint(t *testing.T) {
	app := model.DefaultAppConfig()
	app.DefaultMinGap = 3
	app.DefaultAllowRotation = false

	job := Job{
		Sheet:  model.Sheet{Width: 100, Height: 100},
		Shapes: []model.ShapeSpec{{ID: "a", Width: 10, Height: 10}},
	}
	p, err := job.Problem(app)
	require.NoError(t, err)
	assert.Equal(t, 3.0, p.Constraint.MinGap)
	assert.False(t, p.Constraint.AllowRotation)
}

func TestJob_ProblemReportsBadSpecs(t *testing.T) {
	job := Job{
		Sheet: model.Sheet{Width: 100, Height: 100},
		Shapes: []model.ShapeSpec{
			{ID: "empty"},
			{ID: "line", Polygon: [][2]float64{{0, 0}, {10, 0}, {20, 0}}},
			{ID: "ok", Width: 10, Height: 10},
			{ID: "ok", Width: 20, Height: 20},
		},
	}
	p, err := job.Problem(model.DefaultAppConfig())
	require.NoError(t, err)

	require.Len(t, p.Shapes, 1)
	require.Len(t, p.Rejected, 3)
	assert.Equal(t, "empty", p.Rejected[0].ShapeID)
	assert.True(t, errors.Is(p.Rejected[0].Err, model.ErrInvalidShapeSpec))
	assert.Equal(t, "line", p.Rejected[1].ShapeID)
	assert.ErrorIs(t, p.Rejected[1].Err, model.ErrInvalidGeometry)
	assert.Equal(t, "duplicate id", p.Rejected[2].Reason)
}

func TestJob_ProblemInvalidSheet(t *testing.T) {
	job := Job{Sheet: model.Sheet{Width: 0, Height: 100}}
	_, err := job.Problem(model.DefaultAppConfig())
	assert.ErrorIs(t, err, model.ErrInvalidSheet)
}

func TestJob_EngineConfig(t *testing.T) {
	job, err := LoadJob(writeJob(t, "job.yaml", yamlJob))
	require.NoError(t, err)

	app := model.DefaultAppConfig()
	app.RandomSeed = 42
	cfg := job.EngineConfig(app, 5)

	assert.Equal(t, 12, cfg.PopulationSize)
	assert.Equal(t, 5, cfg.MaxGenerations)
	assert.Equal(t, int64(0), cfg.RandomSeed)
	assert.Equal(t, 1500*time.Millisecond, cfg.TimeBudget)
	assert.Equal(t, app.MutationRate, cfg.MutationRate)
	assert.NoError(t, cfg.Validate())
}

func TestJob_EngineConfigScalesWithoutOverrides(t *testing.T) {
	cfg := Job{}.EngineConfig(model.DefaultAppConfig(), 60)
	assert.Equal(t, 200, cfg.MaxGenerations)
	assert.Equal(t, 80, cfg.PopulationSize)
}

func TestJob_ToolpathSettings(t *testing.T) {
	assert.Equal(t, gcode.DefaultSettings(), Job{}.ToolpathSettings())

	job, err := LoadJob(writeJob(t, "job.yaml", yamlJob+`gcode:
  tool_diameter: 3.175
  feed_rate: 900
  plunge_rate: 250
  spindle_speed: 16000
  safe_z: 4
  cut_depth: 12
  pass_depth: 4
  decimal_places: 2
  dust_shoe_enabled: true
  dust_shoe_width: 60
  clamp_zones:
    - {label: front-left, x: 0, y: 0, width: 40, height: 30}
`))
	require.NoError(t, err)
	s := job.ToolpathSettings()
	assert.Equal(t, 3.175, s.ToolDiameter)
	assert.Equal(t, 12.0, s.CutDepth)
	assert.False(t, s.UseClimb)
	assert.True(t, s.DustShoeEnabled)
	require.Len(t, s.ClampZones, 1)
	assert.Equal(t, gcode.ClampZone{Label: "front-left", Width: 40, Height: 30}, s.ClampZones[0])
	assert.NoError(t, s.Validate())
}

func TestLoadJob_RotationStepAsList(t *testing.T) {
	job, err := LoadJob(writeJob(t, "list.yaml", `
sheet: {width: 400, height: 300}
constraint: {allow_rotation: true, rotation_step_degrees: [0, 90], min_gap: 1}
shapes:
  - {id: a, width: 100, height: 50}
`))
	require.NoError(t, err)
	require.NotNil(t, job.Constraint)
	assert.Equal(t, []float64{0, 90}, job.Constraint.Angles)

	p, err := job.Problem(model.DefaultAppConfig())
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 90}, p.Constraint.AllowedAngles(p.Shapes[0]))
}
