package model

// AppConfig holds application-wide preferences and default run settings.
type AppConfig struct {
	// Defaults applied to new jobs
	DefaultMinGap        float64 `json:"default_min_gap"`
	DefaultAllowRotation bool    `json:"default_allow_rotation"`
	DefaultRotationStep  float64 `json:"default_rotation_step"`

	// Optimizer defaults
	PopulationSize   int     `json:"population_size"`
	MaxGenerations   int     `json:"max_generations"`
	PlateauLimit     int     `json:"plateau_limit"`
	MutationRate     float64 `json:"mutation_rate"`
	CrossoverRate    float64 `json:"crossover_rate"`
	TournamentSize   int     `json:"tournament_size"`
	RandomSeed       int64   `json:"random_seed"`
	TimeBudgetSecond float64 `json:"time_budget_seconds"` // 0 = unlimited

	// Material estimate
	WastePercent  float64 `json:"waste_percent"`
	PricePerSheet float64 `json:"price_per_sheet"`

	// Application preferences
	RecentJobs []string `json:"recent_jobs"`
	OutputDir  string   `json:"output_dir"` // base for relative output paths
}

// DefaultAppConfig returns an AppConfig matching DefaultConstraint and the
// optimizer's built-in defaults.
func DefaultAppConfig() AppConfig {
	c := DefaultConstraint()
	return AppConfig{
		DefaultMinGap:        c.MinGap,
		DefaultAllowRotation: c.AllowRotation,
		DefaultRotationStep:  c.RotationStep,
		PopulationSize:       50,
		MaxGenerations:       100,
		PlateauLimit:         25,
		MutationRate:         0.15,
		CrossoverRate:        0.8,
		TournamentSize:       3,
		RandomSeed:           42,
		WastePercent:         15,
		RecentJobs:           []string{},
	}
}

// ApplyToConstraint copies the saved defaults into a constraint. Used when a
// job file leaves the constraint out.
func (c AppConfig) ApplyToConstraint(dst *Constraint) {
	dst.MinGap = c.DefaultMinGap
	dst.AllowRotation = c.DefaultAllowRotation
	dst.RotationStep = c.DefaultRotationStep
}

// AddRecentJob records a job path at the front of the list, without
// duplicates, keeping at most ten entries.
func (c *AppConfig) AddRecentJob(path string) {
	out := []string{path}
	for _, p := range c.RecentJobs {
		if p != path {
			out = append(out, p)
		}
	}
	if len(out) > 10 {
		out = out[:10]
	}
	c.RecentJobs = out
}
