package engine

import (
	"context"
	"fmt"

	"github.com/piwi3910/SlabNest/internal/model"
)

// Comparison contrasts a random placement order with the optimized result.
type Comparison struct {
	Baseline        *model.Layout `json:"baseline"`
	BaselineFitness Fitness       `json:"baseline_fitness"`
	Optimized       *Result       `json:"optimized"`
	UtilizationGain float64       `json:"utilization_gain"` // optimized - baseline
	PlacedGain      int           `json:"placed_gain"`
}

// CompareWithBaseline decodes one random chromosome drawn from the run's seed
// and then runs the optimizer, so the improvement of the search over an
// arbitrary order can be reported.
func CompareWithBaseline(ctx context.Context, p *model.Problem, cfg Config) (*Comparison, error) {
	o, err := New(p, cfg)
	if err != nil {
		return nil, err
	}

	baseline := model.NewLayout(p.Sheet)
	if len(p.Shapes) > 0 {
		b := newBreeder(o.cfg, o.cat, o.cfg.RandomSeed)
		baseline = o.placer.Place(b.random().items())
	}
	baseFit := o.eval.Score(baseline)

	res := o.Run(ctx)
	return &Comparison{
		Baseline:        baseline,
		BaselineFitness: baseFit,
		Optimized:       res,
		UtilizationGain: res.Layout.Utilization - baseline.Utilization,
		PlacedGain:      len(res.Layout.Placements) - len(baseline.Placements),
	}, nil
}

// ComparisonScenario defines a named set of rules and search settings to
// compare.
type ComparisonScenario struct {
	Name       string
	Constraint model.Constraint
	Config     Config
}

// ComparisonResult holds the run result and summary figures for a single
// scenario.
type ComparisonResult struct {
	Scenario      ComparisonScenario
	Result        *Result
	Placed        int
	WastePercent  float64
	UnplacedCount int
}

// CompareScenarios runs the optimizer once per scenario on the same sheet and
// shapes and returns the results in scenario order. A scenario with an
// invalid constraint or config is returned as an error.
func CompareScenarios(ctx context.Context, sheet model.Sheet, shapes []model.Shape, scenarios []ComparisonScenario) ([]ComparisonResult, error) {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		res, err := Optimize(ctx, sheet, scenario.Constraint, shapes, scenario.Config)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}
		results = append(results, ComparisonResult{
			Scenario:      scenario,
			Result:        res,
			Placed:        len(res.Layout.Placements),
			WastePercent:  100.0 - res.Layout.Efficiency(),
			UnplacedCount: len(res.Layout.UnplacedIDs),
		})
	}

	return results, nil
}

// BuildDefaultScenarios generates what-if alternatives around the current
// rules: toggled rotation, finer rotation steps, no gap, and a larger search.
func BuildDefaultScenarios(base model.Constraint, cfg Config) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{Name: "Current Settings", Constraint: base, Config: cfg},
	}

	alt := base
	alt.AllowRotation = !base.AllowRotation
	if alt.AllowRotation && alt.RotationStep == 0 && len(alt.Angles) == 0 {
		alt.RotationStep = 90
	}
	name := "No Rotation"
	if alt.AllowRotation {
		name = "Rotation Allowed"
	}
	scenarios = append(scenarios, ComparisonScenario{Name: name, Constraint: alt, Config: cfg})

	if base.AllowRotation && len(base.Angles) == 0 && base.RotationStep >= 90 {
		fine := base
		fine.RotationStep = base.RotationStep / 2
		scenarios = append(scenarios, ComparisonScenario{
			Name:       fmt.Sprintf("Rotation Step %.0f°", fine.RotationStep),
			Constraint: fine,
			Config:     cfg,
		})
	}

	if base.MinGap > 0 {
		noGap := base
		noGap.MinGap = 0
		scenarios = append(scenarios, ComparisonScenario{Name: "No Gap", Constraint: noGap, Config: cfg})
	}

	bigger := cfg
	bigger.PopulationSize = cfg.PopulationSize * 2
	bigger.MaxGenerations = cfg.MaxGenerations * 2
	scenarios = append(scenarios, ComparisonScenario{Name: "Double Search", Constraint: base, Config: bigger})

	return scenarios
}
