package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/blobsim/internal/analysis"
	"github.com/san-kum/blobsim/internal/export"
	"github.com/san-kum/blobsim/internal/metrics"
	"github.com/san-kum/blobsim/internal/sim"
	"github.com/san-kum/blobsim/internal/storage"
	"github.com/san-kum/blobsim/internal/viz"
	"github.com/spf13/cobra"
)

// A sample this close to the first sample's layout counts as a reset.
const episodeTolerance = 1e-3

func inspectCommands() []*cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot body positions and spread of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase portrait of one body along one axis",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&body, "body", 0, "body index")
	phaseCmd.Flags().StringVar(&axis, "axis", "x", "x or y")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "oscillation frequency and replay episodes of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return store(cmd).ExportCSV(os.Stdout, args[0])
		},
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run frames to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	svgCmd := &cobra.Command{
		Use:   "svg [run_id]",
		Short: "render trajectories, or one frame, as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	svgCmd.Flags().IntVar(&frame, "frame", -1, "sample index to draw instead of trajectories")
	svgCmd.Flags().StringVarP(&output, "out", "o", "", "output file (default stdout)")
	svgCmd.Flags().StringVar(&theme, "theme", "", "colour theme")

	return []*cobra.Command{listCmd, plotCmd, phaseCmd, analyzeCmd, exportCmd, exportCSVCmd, exportJSONCmd, svgCmd}
}

func store(cmd *cobra.Command) *storage.Store {
	dir := dataDir
	if !cmd.Flags().Changed("data") {
		if cfg, err := loadConfig(cmd); err == nil {
			dir = cfg.Host.DataDir
		}
	}
	return storage.New(dir)
}

func loadRun(cmd *cobra.Command, runID string) (*storage.RunMetadata, [][]float64, []float64, error) {
	st := store(cmd)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	states, times, err := st.LoadStates(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(states) == 0 {
		return nil, nil, nil, fmt.Errorf("run %s has no samples", runID)
	}
	return meta, states, times, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := store(cmd).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tVARIANT\tPRESET\tSCENARIO\tTIME\tDURATION\tRESETS\tKICKS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.2fs\t%d\t%d\n",
			run.ID,
			run.Variant,
			run.Preset,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Resets,
			run.Kicks,
		)
	}
	return w.Flush()
}

func column(rows [][]float64, idx int) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		if idx < len(r) {
			out[i] = r[idx]
		}
	}
	return out
}

func spreadSeries(rows [][]float64) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		pos := storage.Positions(r)
		bodies := make([]sim.BodyView, len(pos))
		for j, p := range pos {
			bodies[j] = sim.BodyView{Pos: p}
		}
		out[i] = metrics.Spread(sim.Snapshot{Bodies: bodies})
	}
	return out
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, states, _, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("variant: %s\n", meta.Variant)
	fmt.Printf("samples: %d\n\n", len(states))

	bodies := len(states[0]) / 4
	for b := 0; b < bodies && b < 4; b++ {
		series := [][]float64{column(states, b*4), column(states, b*4+1)}
		graph := asciigraph.PlotMany(series,
			asciigraph.Height(8),
			asciigraph.Width(80),
			asciigraph.SeriesColors(asciigraph.Red, asciigraph.Blue),
			asciigraph.Caption(fmt.Sprintf("body %d: x (red), y (blue)", b)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	graph := asciigraph.Plot(spreadSeries(states),
		asciigraph.Height(8),
		asciigraph.Width(80),
		asciigraph.Caption("spread"),
	)
	fmt.Println(graph)
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, states, _, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}
	off := 0
	switch axis {
	case "x":
	case "y":
		off = 1
	default:
		return fmt.Errorf("--axis must be x or y, got %q", axis)
	}
	if body < 0 || body*4+3 >= len(states[0]) {
		return fmt.Errorf("run %s has no body %d", meta.ID, body)
	}

	p := analysis.NewPortrait(states, body*4+off, body*4+2+off)
	p.XLabel, p.YLabel = axis, "v"+axis
	minX, maxX, minY, maxY := p.Bounds()

	fmt.Printf("phase portrait: body %d, %s vs %s\n", body, p.XLabel, p.YLabel)
	fmt.Printf("%s: [%.3f, %.3f]  %s: [%.3f, %.3f]\n\n", p.XLabel, minX, maxX, p.YLabel, minY, maxY)
	fmt.Println(p.ASCII(70, 24))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, states, times, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("variant: %s  resets: %d  kicks: %d\n\n", meta.Variant, meta.Resets, meta.Kicks)

	interval := meta.Dt
	if len(times) > 1 {
		interval = times[1] - times[0]
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODY\tFREQ X\tFREQ Y")
	for b := 0; b*4+1 < len(states[0]); b++ {
		fx := analysis.DominantFrequency(column(states, b*4), interval)
		fy := analysis.DominantFrequency(column(states, b*4+1), interval)
		fmt.Fprintf(w, "%d\t%.3f hz\t%.3f hz\n", b, fx, fy)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	episodes := analysis.Episodes(states, times, episodeTolerance, meta.Params.CenterTolerance)
	fmt.Printf("\nepisodes: %d\n", len(episodes))
	if len(episodes) == 0 {
		return nil
	}
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tSTART\tEND\tLENGTH\tSETTLED")
	for i, e := range episodes {
		fmt.Fprintf(w, "%d\t%.3fs\t%.3fs\t%.3fs\t%s\n", i, e.Start, e.End, e.Duration(), seconds(e.Settled))
	}
	return w.Flush()
}

func exportRun(cmd *cobra.Command, args []string) error {
	meta, err := store(cmd).Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, states, times, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, *meta, states, times)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, states, _, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}

	th := viz.GetTheme(theme)
	colors := []string{string(th.Bodies), string(th.Alert), string(th.Calm), string(th.Busy)}

	var out string
	if frame >= 0 {
		if frame >= len(states) {
			return fmt.Errorf("run %s has %d samples, no frame %d", meta.ID, len(states), frame)
		}
		out = export.FrameSVG(meta.Params.Shape, storage.Positions(states[frame]), 512, colors)
	} else {
		paths := make([][]sim.Vec, len(states[0])/4)
		for _, row := range states {
			for b, p := range storage.Positions(row) {
				paths[b] = append(paths[b], p)
			}
		}
		out = export.TrajectorySVG(paths, 512, colors)
	}

	if output == "" {
		_, err = fmt.Println(out)
		return err
	}
	if err := os.WriteFile(output, []byte(out), 0644); err != nil {
		return err
	}
	logger.Info("wrote svg", "path", output)
	return nil
}
