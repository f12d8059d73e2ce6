package engine

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/piwi3910/SlabNest/internal/model"
)

// ErrInvalidConfig is returned by Config.Validate and New for unusable
// search parameters.
var ErrInvalidConfig = errors.New("invalid optimizer config")

// Config holds parameters for the genetic optimizer. The zero value is not
// usable; start from DefaultConfig.
type Config struct {
	PopulationSize int           `json:"population_size" yaml:"population_size"`
	MaxGenerations int           `json:"max_generations" yaml:"max_generations"`
	PlateauLimit   int           `json:"plateau_limit" yaml:"plateau_limit"` // generations without improvement, 0 = off
	MutationRate   float64       `json:"mutation_rate" yaml:"mutation_rate"`
	CrossoverRate  float64       `json:"crossover_rate" yaml:"crossover_rate"`
	TournamentSize int           `json:"tournament_size" yaml:"tournament_size"`
	EliteCount     int           `json:"elite_count" yaml:"elite_count"`
	RandomSeed     int64         `json:"random_seed" yaml:"random_seed"`
	TimeBudget     time.Duration `json:"time_budget" yaml:"time_budget"`         // 0 = unlimited
	MaxEvaluations int           `json:"max_evaluations" yaml:"max_evaluations"` // 0 = unlimited
	Workers        int           `json:"workers" yaml:"workers"`                 // 0 = GOMAXPROCS

	// UnplacedAreaWeight scales the penalty for unplaced area relative to
	// placed area.
	UnplacedAreaWeight float64 `json:"unplaced_area_weight" yaml:"unplaced_area_weight"`

	// Strict re-checks every decoded layout for overlaps and bounds and
	// panics on a violation. Meant for tests.
	Strict bool `json:"-" yaml:"-"`

	// OnGeneration is called after every generation from the optimizer's own
	// goroutine.
	OnGeneration func(GenerationStats) `json:"-" yaml:"-"`
}

// DefaultConfig returns sensible default parameters.
func DefaultConfig() Config {
	return Config{
		PopulationSize:     50,
		MaxGenerations:     100,
		PlateauLimit:       25,
		MutationRate:       0.15,
		CrossoverRate:      0.8,
		TournamentSize:     3,
		EliteCount:         1,
		RandomSeed:         42,
		UnplacedAreaWeight: 1.0,
	}
}

// ConfigFromApp builds a Config from persisted application defaults.
func ConfigFromApp(app model.AppConfig) Config {
	c := DefaultConfig()
	if app.PopulationSize > 0 {
		c.PopulationSize = app.PopulationSize
	}
	if app.MaxGenerations > 0 {
		c.MaxGenerations = app.MaxGenerations
	}
	if app.PlateauLimit > 0 {
		c.PlateauLimit = app.PlateauLimit
	}
	if app.MutationRate > 0 {
		c.MutationRate = app.MutationRate
	}
	if app.CrossoverRate > 0 {
		c.CrossoverRate = app.CrossoverRate
	}
	if app.TournamentSize > 0 {
		c.TournamentSize = app.TournamentSize
	}
	c.RandomSeed = app.RandomSeed
	if app.TimeBudgetSecond > 0 {
		c.TimeBudget = time.Duration(app.TimeBudgetSecond * float64(time.Second))
	}
	return c
}

// Validate reports the first out-of-range parameter.
func (c Config) Validate() error {
	switch {
	case c.PopulationSize < 1:
		return fmt.Errorf("%w: population_size must be at least 1, got %d", ErrInvalidConfig, c.PopulationSize)
	case c.MaxGenerations < 0:
		return fmt.Errorf("%w: max_generations must not be negative, got %d", ErrInvalidConfig, c.MaxGenerations)
	case c.PlateauLimit < 0:
		return fmt.Errorf("%w: plateau_limit must not be negative, got %d", ErrInvalidConfig, c.PlateauLimit)
	case c.MutationRate < 0 || c.MutationRate > 1:
		return fmt.Errorf("%w: mutation_rate must be in [0,1], got %v", ErrInvalidConfig, c.MutationRate)
	case c.CrossoverRate < 0 || c.CrossoverRate > 1:
		return fmt.Errorf("%w: crossover_rate must be in [0,1], got %v", ErrInvalidConfig, c.CrossoverRate)
	case c.TournamentSize < 1:
		return fmt.Errorf("%w: tournament_size must be at least 1, got %d", ErrInvalidConfig, c.TournamentSize)
	case c.EliteCount < 0:
		return fmt.Errorf("%w: elite_count must not be negative, got %d", ErrInvalidConfig, c.EliteCount)
	case c.TimeBudget < 0:
		return fmt.Errorf("%w: time_budget must not be negative, got %v", ErrInvalidConfig, c.TimeBudget)
	case c.MaxEvaluations < 0:
		return fmt.Errorf("%w: max_evaluations must not be negative, got %d", ErrInvalidConfig, c.MaxEvaluations)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	case c.UnplacedAreaWeight < 0:
		return fmt.Errorf("%w: unplaced_area_weight must not be negative, got %v", ErrInvalidConfig, c.UnplacedAreaWeight)
	}
	return nil
}

// Normalize fills in derived values: the worker count and an elite count that
// keeps at least the single best chromosome without exceeding the population.
func (c Config) Normalize() Config {
	if c.Workers == 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.EliteCount < 1 {
		c.EliteCount = 1
	}
	if c.EliteCount > c.PopulationSize {
		c.EliteCount = c.PopulationSize
	}
	if c.TournamentSize > c.PopulationSize {
		c.TournamentSize = c.PopulationSize
	}
	return c
}

// ScaleForProblem raises the generation count and population for larger
// shape sets. Values already above the scaled ones are kept.
func (c Config) ScaleForProblem(shapes int) Config {
	if shapes > 20 && c.MaxGenerations < 150 {
		c.MaxGenerations = 150
	}
	if shapes > 50 {
		if c.MaxGenerations < 200 {
			c.MaxGenerations = 200
		}
		if c.PopulationSize < 80 {
			c.PopulationSize = 80
		}
	}
	return c
}
