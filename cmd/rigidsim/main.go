package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/san-kum/rigidsim/internal/analysis"
	"github.com/san-kum/rigidsim/internal/automation"
	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/experiment"
	"github.com/san-kum/rigidsim/internal/export"
	"github.com/san-kum/rigidsim/internal/optim"
	"github.com/san-kum/rigidsim/internal/scene"
	"github.com/san-kum/rigidsim/internal/sim"
	"github.com/san-kum/rigidsim/internal/solver"
	"github.com/san-kum/rigidsim/internal/storage"
	"github.com/san-kum/rigidsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir string
	debug   bool
	// Config file
	configFile string
	// Preset name
	preset     string
	duration   float64
	frameRate  float64
	seed       int64
	count      int
	idealHz    int
	minHz      int
	iterations int
	broadPhase bool
	gravity    bool
	shuffle    bool
	// Output
	exportPath string
	theme      string
	gifPath    string
	// Bench
	runs       int
	cpuProfile string
	// Tune
	metric string
	grid   []string
	// SVG
	outPath  string
	svgScale float64
	// Analyze
	settleTol float64
)

// main registers the commands and flags, opens the scene picker when no
// subcommand is given and exits with status 1 if a command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:   "rigidsim",
		Short: "real-time rigid body physics sandbox",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(debug)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(config.DefaultConfig())
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".rigidsim", "data directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "write diagnostics to logs/rigidsim.log")

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run a scene headless and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSceneFlags(runCmd)
	runCmd.Flags().StringVar(&exportPath, "export", "", "also write the run as JSON to this path")

	liveCmd := &cobra.Command{
		Use:   "live [scene]",
		Short: "watch a scene in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSceneFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", "cyberpunk", fmt.Sprintf("color theme %v", viz.ThemeNames()))
	liveCmd.Flags().StringVar(&gifPath, "gif", "rigidsim.gif", "where V recordings are written")

	benchCmd := &cobra.Command{
		Use:   "bench [scene]",
		Short: "compare all-pairs and broad-phase detection",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScene,
	}
	addSceneFlags(benchCmd)
	benchCmd.Flags().IntVar(&runs, "runs", 4, "independent worlds per mode, run concurrently")
	benchCmd.Flags().StringVar(&cpuProfile, "cpuprofile", "", "write a CPU profile to this file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [scene]",
		Short: "list available presets for a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for scene: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	scenesCmd := &cobra.Command{
		Use:   "scenes",
		Short: "list the scenes",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SCENE\tPRESETS\tDESCRIPTION")
			for _, name := range scene.Names() {
				fmt.Fprintf(w, "%s\t%d\t%s\n", name, len(config.ListPresets(name)), scene.Describe(name))
			}
			return w.Flush()
		},
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a stored run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	tuneCmd := &cobra.Command{
		Use:   "tune [scene]",
		Short: "grid search physics settings for the lowest metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  tuneScene,
	}
	addSceneFlags(tuneCmd)
	tuneCmd.Flags().StringVar(&metric, "metric", "energy_drift", "metric to minimise")
	tuneCmd.Flags().StringArrayVar(&grid, "grid", nil, fmt.Sprintf("name=v1,v2,... (repeatable) over %v", optim.Params()))

	scriptCmd := &cobra.Command{
		Use:   "script [file]",
		Short: "run a YAML batch of scenes",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw a stored run's body paths from above as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [scene]",
		Short: "run a scene and save its final frame as SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  snapshotScene,
	}
	addSceneFlags(snapshotCmd)
	snapshotCmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")
	snapshotCmd.Flags().Float64Var(&svgScale, "scale", 4, "SVG units per canvas dot")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "report settle time and height oscillation per body",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().Float64Var(&settleTol, "tol", analysis.DefaultSettleTolerance, "height band for settling")

	rootCmd.AddCommand(runCmd, liveCmd, benchCmd, listCmd, plotCmd, presetsCmd, scenesCmd, exportJSONCmd,
		tuneCmd, scriptCmd, exportSVGCmd, snapshotCmd, analyzeCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging(debug bool) error {
	if !debug {
		log.SetOutput(io.Discard)
		return nil
	}
	if err := os.MkdirAll("logs", 0755); err != nil {
		return fmt.Errorf("failed to create log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join("logs", "rigidsim.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	return nil
}

func addSceneFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.Float64Var(&duration, "time", config.DefaultDuration, "duration in seconds")
	f.Float64Var(&frameRate, "fps", config.DefaultFrameRate, "rendered frames per second")
	f.Int64Var(&seed, "seed", 0, "random seed")
	f.IntVar(&count, "count", config.DefaultCount, "number of the scene's main object")
	f.IntVar(&idealHz, "hz", sim.DefaultIdealHz, "ideal physics rate")
	f.IntVar(&minHz, "min-hz", sim.DefaultMinHz, "lowest physics rate")
	f.IntVar(&iterations, "iterations", solver.DefaultIterations, "constraint iterations per sub-step")
	f.BoolVar(&broadPhase, "broad", true, "use the quadtree broad-phase")
	f.BoolVar(&gravity, "gravity", true, "apply gravity")
	f.BoolVar(&shuffle, "shuffle", false, "shuffle object order every frame")
}

// resolveConfig layers defaults, then a preset, then a config file, then
// the scene argument and finally any flag the user set explicitly.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	name := cfg.Scene
	if len(args) > 0 {
		name = args[0]
	}

	if preset != "" {
		p := config.GetPreset(name, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(name))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if len(args) > 0 {
		cfg.Scene = args[0]
	}

	f := cmd.Flags()
	if f.Changed("time") {
		cfg.Duration = duration
	}
	if f.Changed("fps") {
		cfg.FrameRate = frameRate
	}
	if f.Changed("seed") {
		cfg.Seed = seed
	}
	if f.Changed("count") {
		cfg.Count = count
	}
	if f.Changed("hz") {
		cfg.Physics.IdealHz = idealHz
	}
	if f.Changed("min-hz") {
		cfg.Physics.MinHz = minHz
	}
	if f.Changed("iterations") {
		cfg.Physics.Iterations = iterations
	}
	if f.Changed("broad") {
		cfg.Physics.UseBroadPhase = broadPhase
	}
	if f.Changed("gravity") {
		cfg.Physics.UseGravity = gravity
	}
	if f.Changed("shuffle") {
		cfg.Shuffle.Objects = shuffle
	}
	return cfg, cfg.Validate()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("running %s for %.1fs...\n", cfg.Scene, cfg.Duration)
	start := time.Now()
	result, err := exp.Run(context.Background())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}
	if exportPath != "" {
		if err := storage.ExportJSON(exportPath, cfg, result); err != nil {
			return err
		}
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d, bodies: %d\n", result.Frames, len(result.Bodies))
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}
	return viz.RunLive(exp, theme, gifPath)
}

type benchRow struct {
	mode       string
	frames     int
	subSteps   int
	detections int
	minHz      int
	elapsed    time.Duration
}

func benchScene(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if runs < 1 {
		return fmt.Errorf("runs must be at least 1, got %d", runs)
	}

	if cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			return fmt.Errorf("failed to create cpu profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("failed to start cpu profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	fmt.Printf("benchmarking %s: %d worlds x %.1fs per mode\n\n", cfg.Scene, runs, cfg.Duration)

	var rows []benchRow
	for _, broad := range []bool{false, true} {
		c := cfg.Clone()
		c.Physics.UseBroadPhase = broad
		row := benchRow{mode: "all-pairs"}
		if broad {
			row.mode = "broad-phase"
		}

		start := time.Now()
		results, err := sim.NewEnsemble(experiment.Factory(c), runs, c.Seed).Run(context.Background(), c.RunConfig())
		if err != nil {
			return err
		}
		row.elapsed = time.Since(start)

		for _, r := range results {
			row.frames += r.Frames
			for i := range r.Hz {
				row.subSteps += r.SubSteps[i]
				row.detections += r.Detections[i]
				if row.minHz == 0 || r.Hz[i] < row.minHz {
					row.minHz = r.Hz[i]
				}
			}
		}
		rows = append(rows, row)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODE\tFRAMES\tSUBSTEPS\tDETECTIONS\tMIN HZ\tTIME\tSTEPS/SEC")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%v\t%.0f\n",
			r.mode, r.frames, r.subSteps, r.detections, r.minHz, r.elapsed.Round(time.Millisecond),
			float64(r.subSteps)/r.elapsed.Seconds())
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	stored, err := st.List()
	if err != nil {
		return err
	}

	if len(stored) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tDURATION\tFPS\tFRAMES\tBODIES\tBROAD")

	for _, run := range stored {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.0f\t%d\t%d\t%t\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.FrameRate,
			run.Frames,
			len(run.Bodies),
			run.BroadPhase,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	result, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("frames: %d\n\n", result.Frames)
	return viz.PlotRun(os.Stdout, result)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	result, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	result.Metrics = meta.Metrics

	cfg := config.DefaultConfig()
	cfg.Scene = meta.Scene
	cfg.FrameRate = meta.FrameRate
	cfg.Duration = meta.Duration
	cfg.Seed = meta.Seed
	cfg.Count = meta.Count
	return storage.WriteJSON(os.Stdout, cfg, result)
}

func tuneScene(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if len(grid) == 0 {
		return fmt.Errorf("at least one --grid is required, e.g. --grid iterations=1,5,10")
	}
	g, err := optim.ParseGrid(grid)
	if err != nil {
		return err
	}

	fmt.Printf("tuning %s over %d points, minimising %s\n\n", cfg.Scene, g.Size(), metric)
	best, val, trials, err := g.Search(context.Background(), cfg, metric)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARAMS\tVALUE\tERROR")
	for _, t := range trials {
		msg := ""
		if t.Err != nil {
			msg = t.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%.6g\t%s\n", formatParams(t.Params), t.Value, msg)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	if err != nil {
		return err
	}

	fmt.Printf("\nbest: %s (%s = %.6g)\n", formatParams(best), metric, val)
	return nil
}

func formatParams(params map[string]float64) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%g", name, params[name])
	}
	return strings.Join(parts, " ")
}

func runScript(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("script %s: %d steps\n", sc.Name, len(sc.Steps))
	if sc.Description != "" {
		fmt.Println(sc.Description)
	}
	results, err := automation.RunScenario(context.Background(), sc, st)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tSCENE\tRESULT")
	for _, r := range results {
		if r.Trials != nil {
			stable, unstable := automation.MonteCarloStats(r.Trials)
			fmt.Fprintf(w, "%s\t%s\t%d stable, %d unstable\n", r.Label, r.Config.Scene, stable, unstable)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s (%d frames, %d errors)\n", r.Label, r.Config.Scene, r.RunID, r.Result.Frames, len(r.Result.Errors))
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	return err
}

// output opens outPath, or stdout when it is empty.
func output() (io.WriteCloser, error) {
	if outPath == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(outPath)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	result, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	out, err := output()
	if err != nil {
		return err
	}
	defer out.Close()
	return export.WriteTrajectories(out, result, 800, 800)
}

func snapshotScene(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}
	if _, err := exp.Run(context.Background()); err != nil {
		return err
	}

	world := exp.Simulator().World()
	canvas := viz.NewCanvas(100, 50)
	w, h := canvas.Pixels()
	viz.Fit(world.Entities(), w, h).Draw(canvas, world.Entities(), world.Constraints())

	out, err := output()
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.WriteString(out, export.CanvasToSVG(canvas, svgScale))
	return err
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	result, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	reports, err := analysis.Bodies(result, meta.FrameRate, settleTol)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODY\tSETTLED\tPEAK HZ\tPOWER")
	for _, r := range reports {
		settled := "never"
		if r.Settle >= 0 {
			settled = fmt.Sprintf("%.2fs", r.Settle)
		}
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%.3g\n", r.Name, settled, r.Dominant.Freq, r.Dominant.Power)
	}
	return w.Flush()
}
