package main

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/san-kum/blobsim/internal/automation"
	"github.com/san-kum/blobsim/internal/metrics"
	"github.com/san-kum/blobsim/internal/optim"
	"github.com/san-kum/blobsim/internal/sim"
	"github.com/san-kum/blobsim/internal/storage"
	"github.com/spf13/cobra"
)

func headlessCommands() []*cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "replay a scenario headless and record it",
		Args:  cobra.NoArgs,
		RunE:  runHeadless,
	}
	runCmd.Flags().Float64Var(&duration, "time", 20.0, "simulated seconds")
	runCmd.Flags().StringVar(&scenarioFile, "scenario", "", "scenario file (yaml)")
	runCmd.Flags().IntVar(&sampleEvery, "sample-every", 1, "record every n-th tick")
	runCmd.Flags().BoolVar(&idle, "idle", false, "no pointer input; just settle and reset")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "replay the drag scenario across values of one parameter",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&sweepParam, "param", "damping", "parameter ("+strings.Join(sim.TunableParams, ", ")+")")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.2, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 2.0, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 10, "number of values")
	sweepCmd.Flags().Float64Var(&sweepTime, "time", 20.0, "simulated seconds per value")

	mcCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "check that random starting layouts still replay",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	mcCmd.Flags().IntVar(&trials, "trials", 50, "number of trials")
	mcCmd.Flags().Float64Var(&perturbation, "perturb", 0.2, "maximum offset per axis")
	mcCmd.Flags().Float64Var(&mcTime, "time", 30.0, "simulated seconds per trial")
	mcCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one)")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search parameters for the fastest replay",
		Long: "Each --grid is name=lo:hi:n. Every combination replays the drag\n" +
			"scenario and the lowest objective wins.",
		Args: cobra.NoArgs,
		RunE: runTune,
	}
	tuneCmd.Flags().StringArrayVar(&grid, "grid", []string{"stiffness=0.5:2:4", "damping=0.3:1.5:4"}, "parameter grid")
	tuneCmd.Flags().StringVar(&objective, "objective", "first_reset", "first_reset or a metric name")
	tuneCmd.Flags().Float64Var(&tuneTime, "time", 30.0, "simulated seconds per combination")

	return []*cobra.Command{runCmd, sweepCmd, mcCmd, tuneCmd}
}

// dragScenario grabs the first body, pulls it up and to the right, and lets
// go half a second later.
func dragScenario(p sim.Params, d float64) *automation.Scenario {
	return automation.DragRelease("drag-release", p.Initial[0], sim.Vec{0.2, 0.5}, 0.5, d)
}

func runHeadless(cmd *cobra.Command, args []string) error {
	var sc *automation.Scenario
	if scenarioFile != "" {
		loaded, err := automation.LoadScenario(scenarioFile)
		if err != nil {
			return err
		}
		sc = loaded
		if sc.Variant != "" && !cmd.Flags().Changed("variant") {
			variant = sc.Variant
		}
		if sc.Preset != "" && !cmd.Flags().Changed("preset") {
			preset = sc.Preset
		}
		if cmd.Flags().Changed("time") {
			sc.Duration = duration
		}
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	p := cfg.Params()

	if sc == nil {
		if idle {
			sc = &automation.Scenario{Name: "idle", Duration: duration}
		} else {
			sc = dragScenario(p, duration)
		}
	}
	if sc.SampleEvery == 0 {
		sc.SampleEvery = sampleEvery
	}

	st := storage.New(cfg.Host.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	s, err := sim.New(p)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	logger.Info("running", "variant", cfg.Variant, "scenario", sc.Name, "time", sc.Duration)
	start := time.Now()
	res, err := automation.Run(ctx, s, sc, automation.Options{Metrics: metrics.Standard(), Logger: logger})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunMetadata{
		Variant:  cfg.Variant,
		Preset:   preset,
		Scenario: sc.Name,
		Dt:       p.Dt,
		Duration: res.Duration,
		Ticks:    res.Ticks,
		Resets:   res.Resets,
		Kicks:    res.Kicks,
		Metrics:  res.Metrics,
		Params:   p,
	}, res.Samples)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed.Round(time.Millisecond))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("ticks: %d  resets: %d  kicks: %d\n", res.Ticks, res.Resets, res.Kicks)
	if res.FirstReset >= 0 {
		fmt.Printf("first reset: %.3fs\n", res.FirstReset)
	}
	fmt.Println("\nmetrics:")
	printMetrics(res.Metrics)
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	p := cfg.Params()

	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunSweep(ctx, p, &automation.ParameterSweep{
		Param:    sweepParam,
		Min:      sweepMin,
		Max:      sweepMax,
		NumSteps: sweepSteps,
		Scenario: dragScenario(p, sweepTime),
	}, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tFIRST RESET\tRESETS\tKICKS\tPEAK SPEED\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%s\t%d\t%d\t%.4f\n", r.ParamValue, seconds(r.FirstReset), r.Resets, r.Kicks, r.PeakSpeed)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunMonteCarlo(ctx, cfg.Params(), &automation.MonteCarloConfig{
		Perturbation: perturbation,
		NumTrials:    trials,
		Duration:     mcTime,
		Seed:         seed,
	}, logger)
	if err != nil {
		return err
	}

	replayed, stuck := automation.MonteCarloStats(results)
	var sum float64
	worst := 0.0
	for _, r := range results {
		if r.Replayed {
			sum += r.FirstReset
			worst = math.Max(worst, r.FirstReset)
		}
	}
	fmt.Printf("trials: %d  replayed: %d  stuck: %d\n", len(results), replayed, stuck)
	if replayed > 0 {
		fmt.Printf("first reset: mean %.3fs  worst %.3fs\n", sum/float64(replayed), worst)
	}
	for _, r := range results {
		if !r.Replayed {
			fmt.Printf("  stuck trial %d from %v\n", r.TrialID, r.Initial)
		}
	}
	return nil
}

func runTune(cmd *cobra.Command, args []string) error {
	names := make([]string, 0, len(grid))
	values := make([][]float64, 0, len(grid))
	for _, g := range grid {
		name, vs, err := parseGrid(g)
		if err != nil {
			return err
		}
		names = append(names, name)
		values = append(values, vs)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	p := cfg.Params()

	var obj optim.Objective = optim.FirstReset
	if objective != "first_reset" {
		obj = optim.MetricObjective(objective)
	}

	gs, err := optim.NewGridSearch(names, values, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	best, all, err := gs.Search(ctx, p, dragScenario(p, tuneTime), obj)
	if err != nil {
		return err
	}
	fmt.Printf("evaluated %d combinations of %s\n", len(all), strings.Join(names, ", "))
	fmt.Printf("best %s: %.4f\n", objective, best.Score)
	for _, n := range names {
		fmt.Printf("  %s = %.4f\n", n, best.Params[n])
	}
	logger.Debug("tuned", "variant", cfg.Variant, "params", best.Params)
	return nil
}

// parseGrid reads name=lo:hi:n.
func parseGrid(s string) (string, []float64, error) {
	name, bounds, ok := strings.Cut(s, "=")
	if !ok {
		return "", nil, fmt.Errorf("grid %q: want name=lo:hi:n", s)
	}
	parts := strings.Split(bounds, ":")
	if len(parts) != 3 {
		return "", nil, fmt.Errorf("grid %q: want name=lo:hi:n", s)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, fmt.Errorf("grid %q: %w", s, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, fmt.Errorf("grid %q: %w", s, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return "", nil, fmt.Errorf("grid %q: bad count %q", s, parts[2])
	}
	return name, optim.Range(lo, hi, n), nil
}

func seconds(t float64) string {
	if t < 0 {
		return "never"
	}
	return fmt.Sprintf("%.3fs", t)
}
