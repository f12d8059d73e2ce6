package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/piwi3910/SlabNest/internal/engine"
	"github.com/piwi3910/SlabNest/internal/export"
	"github.com/piwi3910/SlabNest/internal/gcode"
	"github.com/piwi3910/SlabNest/internal/model"
	"github.com/piwi3910/SlabNest/internal/project"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

var (
	runSource    jobSource
	pdfPath      string
	labelsPath   string
	dxfPath      string
	jsonPath     string
	gcodePath    string
	seed         int64
	generations  int
	population   int
	timeBudget   time.Duration
	workers      int
	showProgress bool
)

var runCmd = &cobra.Command{
	Use:   "run [job-file]",
	Short: "Nest the shapes of a job onto its sheet",
	Long: `Run the genetic nesting search for a job and print the best layout found.

The job file is JSON or YAML (by extension). Shapes can also be read from
CSV, Excel or DXF files with --shapes. Ctrl-C stops the search and keeps
the best layout found so far.

Examples:
  slabnest run cabinet.yaml --pdf cabinet.pdf --labels labels.pdf
  slabnest run --sheet 2440x1220 --shapes parts.csv --dxf nest.dxf
  slabnest run cabinet.yaml --gcode cabinet.nc
  slabnest run cabinet.yaml --seed 7 --time-budget 30s -v 2`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNest,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addSourceFlags(runCmd, &runSource)
	addSearchFlags(runCmd)

	runCmd.Flags().StringVar(&pdfPath, "pdf", "", "write a PDF layout report")
	runCmd.Flags().StringVar(&labelsPath, "labels", "", "write a PDF sheet of QR labels")
	runCmd.Flags().StringVar(&dxfPath, "dxf", "", "write the layout as a DXF drawing")
	runCmd.Flags().StringVar(&jsonPath, "json", "", "write the full result as JSON")
	runCmd.Flags().StringVar(&gcodePath, "gcode", "", "write contour-cutting GCode for the placed shapes")
	runCmd.Flags().BoolVar(&showProgress, "progress", false, "print one line per generation to stderr")
}

func addSourceFlags(c *cobra.Command, src *jobSource) {
	c.Flags().StringVar(&src.sheet, "sheet", "", "sheet size in mm, e.g. 2440x1220")
	c.Flags().StringSliceVar(&src.shapes, "shapes", nil, "CSV, Excel or DXF files with extra shapes")
}

func addSearchFlags(c *cobra.Command) {
	c.Flags().Int64Var(&seed, "seed", 0, "random seed (default from config)")
	c.Flags().IntVar(&generations, "generations", 0, "maximum generations")
	c.Flags().IntVar(&population, "population", 0, "population size")
	c.Flags().DurationVar(&timeBudget, "time-budget", 0, "stop after this long, e.g. 30s")
	c.Flags().IntVar(&workers, "workers", 0, "parallel evaluators (default GOMAXPROCS)")
}

// applySearchFlags overrides cfg with the search flags the user set.
func applySearchFlags(c *cobra.Command, cfg engine.Config) engine.Config {
	if c.Flags().Changed("seed") {
		cfg.RandomSeed = seed
	}
	if c.Flags().Changed("generations") {
		cfg.MaxGenerations = generations
	}
	if c.Flags().Changed("population") {
		cfg.PopulationSize = population
	}
	if c.Flags().Changed("time-budget") {
		cfg.TimeBudget = timeBudget
	}
	if c.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	return cfg
}

func runNest(c *cobra.Command, args []string) error {
	app, err := loadAppConfig()
	if err != nil {
		return err
	}
	job, err := runSource.load(args)
	if err != nil {
		return err
	}
	p, err := job.Problem(app)
	if err != nil {
		return err
	}

	cfg := applySearchFlags(c, job.EngineConfig(app, len(p.Shapes)))
	if showProgress {
		errOut := c.ErrOrStderr()
		cfg.OnGeneration = func(s engine.GenerationStats) {
			fmt.Fprintf(errOut, "generation %d: utilization %.1f%%, unplaced %d\n",
				s.Generation, s.BestUtilization*100, s.Unplaced)
		}
	}

	opt, err := engine.New(p, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt)
	defer stop()
	res := opt.Run(ctx)

	printResult(c.OutOrStdout(), p, res)
	if len(res.Layout.UnplacedIDs) > 0 {
		printEstimate(c.OutOrStdout(), model.EstimateMaterial(p, app.WastePercent, app.PricePerSheet))
	}

	resolveOutputs(app.OutputDir)
	if err := writeOutputs(p, res); err != nil {
		return err
	}
	if gcodePath != "" {
		if err := writeGCode(c.OutOrStdout(), p, res, job.ToolpathSettings()); err != nil {
			return err
		}
	}

	if len(args) > 0 {
		rememberJob(app, args[0])
	}
	return nil
}

// printResult writes a short human-readable report of the run.
func printResult(w io.Writer, p *model.Problem, res *engine.Result) {
	stats := res.Layout.Stats()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Run:\t%s\n", res.RunID)
	fmt.Fprintf(tw, "Sheet:\t%.0f x %.0f mm\n", p.Sheet.Width, p.Sheet.Height)
	fmt.Fprintf(tw, "Placed:\t%d of %d\n", stats.PartsPlaced, stats.TotalParts)
	fmt.Fprintf(tw, "Utilization:\t%.2f%%\n", res.Layout.Efficiency())
	fmt.Fprintf(tw, "Waste:\t%.0f mm²\n", stats.WasteArea)
	fmt.Fprintf(tw, "Stopped:\t%s after %d generations, %d evaluations (%s)\n",
		res.Reason, res.Generations, res.Evaluations, res.Elapsed.Round(time.Millisecond))
	if remnants := model.DetectRemnants(res.Layout, p, p.Constraint.MinGap); len(remnants) > 0 {
		for _, r := range remnants {
			fmt.Fprintf(tw, "Remnant:\t%.0f x %.0f mm at (%.0f, %.0f)\n", r.Width, r.Height, r.X, r.Y)
		}
	}
	tw.Flush()

	if len(res.Layout.Placements) > 0 {
		fmt.Fprintln(w)
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "SHAPE\tX\tY\tROTATION\t")
		for _, pl := range res.Layout.Placements {
			fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.0f\t\n", pl.ShapeID, pl.X, pl.Y, pl.Rotation)
		}
		tw.Flush()
	}

	for _, id := range res.Infeasible {
		fmt.Fprintf(w, "warning: %s does not fit the sheet in any allowed rotation\n", id)
	}
	for _, r := range res.Rejected {
		fmt.Fprintf(w, "warning: %s rejected: %s\n", r.ShapeID, r.Reason)
	}
	if res.HasWarning(engine.WarningNonconvergence) {
		fmt.Fprintln(w, "warning: some shapes that fit alone were left unplaced; try a longer search")
	}
}

// printEstimate reports how much stock the whole job would take when it
// does not fit one sheet.
func printEstimate(w io.Writer, est model.MaterialEstimate) {
	fmt.Fprintf(w, "\nMaterial: %.2f sheets by footprint, buy %d with %.0f%% waste",
		est.SheetsNeededExact, est.SheetsWithWaste, est.WastePercent)
	if est.EstimatedCost > 0 {
		fmt.Fprintf(w, " (~%.2f)", est.EstimatedCost)
	}
	fmt.Fprintln(w)
}

// resolveOutputs places relative output paths under dir.
func resolveOutputs(dir string) {
	if dir == "" {
		return
	}
	for _, p := range []*string{&pdfPath, &labelsPath, &dxfPath, &jsonPath, &gcodePath} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

func writeOutputs(p *model.Problem, res *engine.Result) error {
	if pdfPath != "" {
		if err := export.ExportPDF(pdfPath, p, res); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		klog.V(1).InfoS("Wrote PDF report", "path", pdfPath)
	}
	if labelsPath != "" {
		if err := export.ExportLabels(labelsPath, p, res); err != nil {
			return fmt.Errorf("write labels: %w", err)
		}
		klog.V(1).InfoS("Wrote labels", "path", labelsPath)
	}
	if dxfPath != "" {
		if err := export.ExportDXF(dxfPath, p, res); err != nil {
			return fmt.Errorf("write dxf: %w", err)
		}
		klog.V(1).InfoS("Wrote DXF drawing", "path", dxfPath)
	}
	if jsonPath != "" {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		if err := os.WriteFile(jsonPath, data, 0644); err != nil {
			return fmt.Errorf("write json: %w", err)
		}
	}
	return nil
}

// writeGCode writes the toolpath program and prints its travel summary.
func writeGCode(w io.Writer, p *model.Problem, res *engine.Result, settings gcode.Settings) error {
	gen, err := gcode.New(settings)
	if err != nil {
		return err
	}
	code := gen.Generate(p, res.Layout)
	if err := os.WriteFile(gcodePath, []byte(code), 0644); err != nil {
		return fmt.Errorf("write gcode: %w", err)
	}

	st := gcode.Summarize(gcode.Parse(code))
	fmt.Fprintf(w, "\nGCode: %s (%d moves, %d plunges, cut %.0f mm, rapid %.0f mm, ~%.1f min)\n",
		gcodePath, st.Moves, st.Plunges, st.CutLength, st.RapidLength, st.CutMinutes)
	klog.V(1).InfoS("Wrote GCode", "path", gcodePath, "cutLength", st.CutLength)

	for _, msg := range gcode.FormatCollisionWarnings(gen.CheckCollisions(p, res.Layout)) {
		fmt.Fprintf(w, "warning: %s\n", msg)
	}
	return nil
}

// rememberJob records the job in the recent list. Failure to save the
// config does not fail the run.
func rememberJob(app model.AppConfig, path string) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	app.AddRecentJob(path)
	if err := project.SaveAppConfig(configPath, app); err != nil {
		klog.ErrorS(err, "Could not save recent jobs", "config", configPath)
	}
}
