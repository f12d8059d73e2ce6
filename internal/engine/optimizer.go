package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/piwi3910/SlabNest/internal/model"
	"k8s.io/klog/v2"
)

// Reason says why a run stopped.
type Reason string

const (
	ReasonNoShapes       Reason = "no-shapes"
	ReasonMaxGenerations Reason = "max-generations"
	ReasonPlateau        Reason = "plateau"
	ReasonTimeBudget     Reason = "time-budget"
	ReasonMaxEvaluations Reason = "max-evaluations"
	ReasonCancelled      Reason = "cancelled"
)

// Warning is a soft condition reported alongside a result.
type Warning string

// WarningNonconvergence means the search ended with shapes still unplaced
// that would fit on the sheet alone.
const WarningNonconvergence Warning = "nonconvergence"

// GenerationStats describes one finished generation.
type GenerationStats struct {
	Generation      int     `json:"generation"`
	BestScore       float64 `json:"best_score"`
	BestUtilization float64 `json:"best_utilization"`
	MeanScore       float64 `json:"mean_score"`
	Unplaced        int     `json:"unplaced"`
	Evaluations     int     `json:"evaluations"`
}

// Result is the outcome of a run. Layout is the best layout seen across all
// generations.
type Result struct {
	RunID       string            `json:"run_id"`
	Layout      *model.Layout     `json:"layout"`
	Fitness     Fitness           `json:"fitness"`
	Generations int               `json:"generations"`
	Evaluations int               `json:"evaluations"`
	Reason      Reason            `json:"reason"`
	History     []GenerationStats `json:"history"`
	Infeasible  []string          `json:"infeasible,omitempty"` // shapes that fit in no allowed rotation
	Rejected    []model.Rejection `json:"rejected,omitempty"`
	Warnings    []Warning         `json:"warnings,omitempty"`
	Elapsed     time.Duration     `json:"elapsed"`
}

// HasWarning reports whether w was raised.
func (r *Result) HasWarning(w Warning) bool {
	for _, x := range r.Warnings {
		if x == w {
			return true
		}
	}
	return false
}

// Optimizer runs the genetic search over placement orders and rotations.
type Optimizer struct {
	problem *model.Problem
	cfg     Config
	cat     *catalog
	placer  *Placer
	eval    *Evaluator
}

// New prepares an optimizer. Only an invalid config is an error.
func New(p *model.Problem, cfg Config) (*Optimizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Normalize()
	cat := newCatalog(p)
	eval := newEvaluatorWithCatalog(p, cat, cfg.UnplacedAreaWeight)
	eval.Strict = cfg.Strict
	return &Optimizer{
		problem: p,
		cfg:     cfg,
		cat:     cat,
		placer:  newPlacerWithCatalog(p, cat),
		eval:    eval,
	}, nil
}

// Config returns the normalized configuration in use.
func (o *Optimizer) Config() Config {
	return o.cfg
}

// Placer returns the placer bound to the optimizer's problem.
func (o *Optimizer) Placer() *Placer {
	return o.placer
}

// Evaluator returns the evaluator bound to the optimizer's problem.
func (o *Optimizer) Evaluator() *Evaluator {
	return o.eval
}

// Run searches until a termination condition holds and returns the best
// layout seen. Cancelling ctx or exceeding the time budget ends the run
// early; the best layout found so far is still returned.
func (o *Optimizer) Run(ctx context.Context) *Result {
	start := time.Now()
	res := &Result{
		RunID:      uuid.New().String(),
		Infeasible: o.cat.infeasible(),
		Rejected:   o.problem.Rejected,
	}

	if len(o.problem.Shapes) == 0 {
		res.Layout = model.NewLayout(o.problem.Sheet)
		res.Fitness = o.eval.Score(res.Layout)
		res.Reason = ReasonNoShapes
		res.Elapsed = time.Since(start)
		return res
	}

	if o.cfg.TimeBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.TimeBudget)
		defer cancel()
	}

	klog.V(1).InfoS("Starting optimization", "run", res.RunID, "shapes", len(o.problem.Shapes),
		"population", o.cfg.PopulationSize, "generations", o.cfg.MaxGenerations, "seed", o.cfg.RandomSeed, "workers", o.cfg.Workers)

	b := newBreeder(o.cfg, o.cat, o.cfg.RandomSeed)
	pop := b.initPopulation()

	// The greedy chromosome is decoded up front so a best layout exists even
	// if the run is cancelled immediately.
	evaluateOne(pop[0], o.placer, o.eval)
	best := pop[0].clone()
	res.Evaluations = 1

	stale := 0
	gen := 0
	for {
		res.Evaluations += evaluatePopulation(ctx, pop, o.cfg.Workers, o.placer, o.eval)

		improved := false
		var sum float64
		var counted int
		for _, c := range pop {
			if !c.evaluated {
				continue
			}
			sum += c.fitness.Score
			counted++
			if c.fitness.Better(best.fitness) {
				best = c.clone()
				improved = true
			}
		}
		if improved {
			stale = 0
		} else if gen > 0 {
			stale++
		}

		stats := GenerationStats{
			Generation:      gen,
			BestScore:       best.fitness.Score,
			BestUtilization: best.fitness.Utilization,
			Unplaced:        best.fitness.Unplaced,
			Evaluations:     res.Evaluations,
		}
		if counted > 0 {
			stats.MeanScore = sum / float64(counted)
		}
		res.History = append(res.History, stats)
		klog.V(2).InfoS("Generation finished", "run", res.RunID, "generation", gen,
			"bestScore", stats.BestScore, "bestUtilization", stats.BestUtilization, "unplaced", stats.Unplaced)
		if o.cfg.OnGeneration != nil {
			o.cfg.OnGeneration(stats)
		}

		if reason, done := o.stop(ctx, gen, stale, res.Evaluations); done {
			res.Reason = reason
			break
		}

		pop = b.nextGeneration(pop)
		if o.cfg.Strict {
			for _, c := range pop {
				if !validPermutation(c.order, len(o.problem.Shapes)) {
					panic(fmt.Sprintf("invalid permutation %v", c.order))
				}
			}
		}
		gen++
	}

	res.Layout = best.layout
	res.Fitness = best.fitness
	res.Generations = gen
	res.Elapsed = time.Since(start)

	infeasible := make(map[string]bool, len(res.Infeasible))
	for _, id := range res.Infeasible {
		infeasible[id] = true
	}
	for _, id := range res.Layout.UnplacedIDs {
		if !infeasible[id] {
			res.Warnings = append(res.Warnings, WarningNonconvergence)
			break
		}
	}

	klog.V(1).InfoS("Optimization finished", "run", res.RunID, "reason", res.Reason, "generations", res.Generations,
		"evaluations", res.Evaluations, "utilization", res.Fitness.Utilization, "unplaced", len(res.Layout.UnplacedIDs),
		"elapsed", res.Elapsed)
	return res
}

// stop checks the termination conditions in priority order.
func (o *Optimizer) stop(ctx context.Context, gen, stale, evaluations int) (Reason, bool) {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ReasonTimeBudget, true
		}
		return ReasonCancelled, true
	}
	if gen >= o.cfg.MaxGenerations {
		return ReasonMaxGenerations, true
	}
	if o.cfg.PlateauLimit > 0 && stale >= o.cfg.PlateauLimit {
		return ReasonPlateau, true
	}
	if o.cfg.MaxEvaluations > 0 && evaluations >= o.cfg.MaxEvaluations {
		return ReasonMaxEvaluations, true
	}
	return "", false
}

// Optimize validates the input and runs the optimizer. Rejected shapes are
// reported in the result; only sheet, constraint and config errors are
// returned.
func Optimize(ctx context.Context, sheet model.Sheet, constraint model.Constraint, shapes []model.Shape, cfg Config) (*Result, error) {
	p, err := model.NewProblem(sheet, constraint, shapes)
	if err != nil {
		return nil, err
	}
	o, err := New(p, cfg)
	if err != nil {
		return nil, err
	}
	return o.Run(ctx), nil
}
