package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/san-kum/bubblesim/internal/bubble"
	"github.com/san-kum/bubblesim/internal/config"
	"github.com/san-kum/bubblesim/internal/export"
	"github.com/san-kum/bubblesim/internal/layout"
	"github.com/san-kum/bubblesim/internal/logger"
	"github.com/san-kum/bubblesim/internal/market"
	"github.com/san-kum/bubblesim/internal/scene"
	"github.com/san-kum/bubblesim/internal/sim"
	"github.com/san-kum/bubblesim/internal/storage"
	"github.com/san-kum/bubblesim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string

	sourceName string
	fixture    string
	count      int
	mode       string
	window     string
	width      float64
	height     float64
	seed       int64
	frameRate  int

	dt          float64
	duration    float64
	recordEvery int

	settle     float64
	outFile    string
	numRuns    int
	brailleOut bool
	svgScale   float64
)

func main() {
	// Optional .env so BUBBLESIM_DATA and friends work without exports.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "bubblesim",
		Short: "animated market bubble visualizer",
		RunE: func(cmd *cobra.Command, args []string) error {
			// The TUI owns the terminal; keep the default logger off it.
			if err := logger.Configure("info", "text", "discard", 0); err != nil {
				return err
			}
			return viz.RunInteractive()
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", defaultDataDir(), "data directory")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the live bubble view",
		RunE:  runLive,
	}
	addSceneFlags(liveCmd)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless scene and store the results",
		RunE:  runScene,
	}
	addSceneFlags(runCmd)
	runCmd.Flags().Float64Var(&dt, "dt", 0.02, "timestep in seconds")
	runCmd.Flags().Float64Var(&duration, "time", 10.0, "duration in seconds")
	runCmd.Flags().IntVar(&recordEvery, "record-every", 0, "record every Nth frame (0 disables)")

	layoutCmd := &cobra.Command{
		Use:   "layout",
		Short: "pack one batch and print the node table",
		RunE:  layoutTable,
	}
	addSceneFlags(layoutCmd)

	radiiCmd := &cobra.Command{
		Use:   "radii",
		Short: "print derived radii for every sizing mode",
		RunE:  radiiTable,
	}
	addSceneFlags(radiiCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot recorded motion from a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	svgCmd := &cobra.Command{
		Use:   "svg",
		Short: "render a settled scene to SVG",
		RunE:  svgScene,
	}
	addSceneFlags(svgCmd)
	svgCmd.Flags().Float64Var(&settle, "settle", 2.0, "seconds to settle before the snapshot")
	svgCmd.Flags().BoolVar(&brailleOut, "braille", false, "snapshot the braille canvas instead of vector circles")
	svgCmd.Flags().Float64Var(&svgScale, "scale", 4, "pixels per braille dot (with --braille)")
	svgCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	trailCmd := &cobra.Command{
		Use:   "trail [run_id] [instrument_id]",
		Short: "render one bubble's recorded path to SVG",
		Args:  cobra.ExactArgs(2),
		RunE:  trailSVG,
	}
	trailCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark stepping across batch sizes",
		RunE:  benchScenes,
	}
	benchCmd.Flags().Float64Var(&dt, "dt", 0.02, "timestep in seconds")
	benchCmd.Flags().Float64Var(&duration, "time", 2.0, "duration per run in seconds")
	benchCmd.Flags().IntVar(&numRuns, "runs", 4, "parallel runs per batch size")

	genCmd := &cobra.Command{
		Use:   "gen [path]",
		Short: "write a synthetic fixture file",
		Args:  cobra.ExactArgs(1),
		RunE:  genFixture,
	}
	genCmd.Flags().IntVar(&count, "count", config.DefaultCount, "instrument count")
	genCmd.Flags().Int64Var(&seed, "seed", 42, "random seed")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDESCRIPTION")
			for _, name := range config.ListPresets() {
				fmt.Fprintf(w, "%s\t%s\n", name, config.PresetInfo[name])
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(liveCmd, runCmd, layoutCmd, radiiCmd, listCmd, plotCmd, exportCmd, svgCmd, trailCmd, benchCmd, genCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func defaultDataDir() string {
	if dir := os.Getenv("BUBBLESIM_DATA"); dir != "" {
		return dir
	}
	return ".bubblesim"
}

// addSceneFlags registers the shared scene flags on a command.
func addSceneFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&sourceName, "source", "synthetic", "instrument source (synthetic|fixture)")
	cmd.Flags().StringVar(&fixture, "fixture", "", "fixture file path")
	cmd.Flags().IntVar(&count, "count", config.DefaultCount, "instrument count (synthetic)")
	cmd.Flags().StringVar(&mode, "mode", "cap", "sizing mode (cap|percent|volume)")
	cmd.Flags().StringVar(&window, "window", "24h", "change window (1h|24h|7d|30d|365d)")
	cmd.Flags().Float64Var(&width, "width", config.DefaultWidth, "viewport width in pixels")
	cmd.Flags().Float64Var(&height, "height", config.DefaultHeight, "viewport height in pixels")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 seeds from the clock)")
	cmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate (live view)")
}

// resolveConfig layers preset, config file, and changed flags, in that
// order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		c := *p
		cfg = &c
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("source") {
		cfg.Source = sourceName
	}
	if cmd.Flags().Changed("fixture") {
		cfg.Fixture = fixture
		if fixture != "" && !cmd.Flags().Changed("source") {
			cfg.Source = "fixture"
		}
	}
	if cmd.Flags().Changed("count") {
		cfg.Count = count
	}
	if cmd.Flags().Changed("mode") {
		cfg.Mode = mode
	}
	if cmd.Flags().Changed("window") {
		cfg.Timeframe = window
	}
	if cmd.Flags().Changed("width") {
		cfg.Width = width
	}
	if cmd.Flags().Changed("height") {
		cfg.Height = height
	}
	if cmd.Flags().Changed("fps") {
		cfg.FPS = frameRate
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	return cfg, nil
}

// fetchBatch pulls one batch from the configured source.
func fetchBatch(cfg *config.Config) (market.Source, []market.Instrument, error) {
	src := cfg.GetSource()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	batch, err := src.Instruments(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch instruments: %w", err)
	}
	return src, batch, nil
}

func configureLogging(cfg *config.Config) error {
	return logger.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAgeDays)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	// Terminal output would tear the frames; only files make sense here.
	if out := cfg.Logging.Output; out == "" || out == "stdout" || out == "stderr" {
		cfg.Logging.Output = "discard"
	}
	if err := configureLogging(cfg); err != nil {
		return err
	}
	src, batch, err := fetchBatch(cfg)
	if err != nil {
		return err
	}
	sc := scene.New(cfg.GetOptions())
	if err := cfg.ApplyMotion(sc.Stepper()); err != nil {
		return err
	}
	return viz.RunLive(sc, src, batch, cfg.FPS)
}

func runScene(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if err := configureLogging(cfg); err != nil {
		return err
	}
	_, batch, err := fetchBatch(cfg)
	if err != nil {
		return err
	}

	sc := scene.New(cfg.GetOptions())
	if err := cfg.ApplyMotion(sc.Stepper()); err != nil {
		return err
	}
	sc.SetBatch(batch)

	runner := scene.NewRunner(sc)
	for _, m := range sim.DefaultMetrics() {
		runner.AddMetric(m)
	}
	var rec *storage.Recorder
	if recordEvery > 0 {
		rec = storage.NewRecorder(recordEvery)
		runner.AddObserver(rec)
	}

	log := logger.Get().WithComponent("run")
	log.WithFields(logger.Fields{"count": len(batch), "duration": duration, "dt": dt}).Info("starting run")

	start := time.Now()
	result, err := runner.Run(context.Background(), scene.RunConfig{Duration: duration, Dt: dt})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	meta := storage.RunMetadata{
		Source:    cfg.Source,
		Mode:      cfg.Mode,
		Timeframe: cfg.Timeframe,
		Count:     len(batch),
		Seed:      cfg.Seed,
		Dt:        dt,
		Duration:  duration,
		Width:     cfg.Width,
		Height:    cfg.Height,
		Metrics:   result.Metrics,
	}
	var frames []storage.FrameRow
	if rec != nil {
		frames = rec.Frames()
	}
	runID, err := st.Save(meta, sc.Nodes(), frames)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed.Round(time.Millisecond))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d (%.2fs simulated)\n", result.Steps, result.Elapsed)
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}
	return nil
}

func layoutTable(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	_, batch, err := fetchBatch(cfg)
	if err != nil {
		return err
	}

	nodes := scene.Build(batch, cfg.GetOptions())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSYMBOL\tRADIUS\tSCALE\tX\tY")
	for _, n := range nodes {
		if n.Layout == nil {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%.1f\t%.3f\t%.1f\t%.1f\n",
			n.Instrument.ID, n.Instrument.Symbol, n.Radius, n.Layout.Scale, n.Layout.X, n.Layout.Y)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	sep, pairs := separatedPairs(nodes)
	if pairs > 0 {
		fmt.Printf("\nseparated pairs: %d/%d (%.1f%%) at %.0fpx gap\n",
			sep, pairs, 100*float64(sep)/float64(pairs), layout.Gap)
	}
	return nil
}

// separatedPairs counts node pairs whose gap meets the resolver's target.
func separatedPairs(nodes []*bubble.Node) (separated, pairs int) {
	for i := 0; i < len(nodes); i++ {
		if nodes[i].Layout == nil {
			continue
		}
		for j := i + 1; j < len(nodes); j++ {
			if nodes[j].Layout == nil {
				continue
			}
			pairs++
			dx := nodes[i].Layout.X - nodes[j].Layout.X
			dy := nodes[i].Layout.Y - nodes[j].Layout.Y
			min := nodes[i].ScaledRadius() + nodes[j].ScaledRadius() + layout.Gap
			if math.Hypot(dx, dy) >= min-1e-9 {
				separated++
			}
		}
	}
	return separated, pairs
}

func radiiTable(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	_, batch, err := fetchBatch(cfg)
	if err != nil {
		return err
	}

	tf := market.ParseTimeframe(cfg.Timeframe)
	capR := bubble.Radii(batch, market.SizeByCap, tf)
	pctR := bubble.Radii(batch, market.SizeByPercent, tf)
	volR := bubble.Radii(batch, market.SizeByVolume, tf)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSYMBOL\tCHANGE\tCAP\tPERCENT\tVOLUME")
	for i, inst := range batch {
		fmt.Fprintf(w, "%s\t%s\t%+.2f%%\t%.1f\t%.1f\t%.1f\n",
			inst.ID, inst.Symbol, market.ChangePercent(inst, tf), capR[i], pctR[i], volR[i])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	dist := capR
	switch market.ParseSizeMode(cfg.Mode) {
	case market.SizeByPercent:
		dist = pctR
	case market.SizeByVolume:
		dist = volR
	}
	sorted := append([]float64(nil), dist...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	fmt.Printf("\n%s radius distribution:\n", cfg.Mode)
	fmt.Println(asciigraph.Plot(sorted,
		asciigraph.Height(8),
		asciigraph.Width(60),
	))
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSOURCE\tTIME\tDURATION\tDT\tMODE\tCOUNT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%d\n",
			run.ID,
			run.Source,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Mode,
			run.Count,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no recorded frames; rerun with --record-every")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("source: %s  mode: %s  window: %s\n", meta.Source, meta.Mode, meta.Timeframe)

	// Frames arrive grouped by step: average the speed within each group.
	var series []float64
	var sum float64
	var n int
	last := frames[0].Time
	for _, f := range frames {
		if f.Time != last {
			series = append(series, sum/float64(n))
			sum, n = 0, 0
			last = f.Time
		}
		sum += math.Hypot(f.VX, f.VY)
		n++
	}
	if n > 0 {
		series = append(series, sum/float64(n))
	}

	fmt.Printf("samples: %d\n\n", len(series))
	graph := asciigraph.Plot(series,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("avg speed px/s"),
	)
	fmt.Println(graph)

	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(meta.Metrics) {
		fmt.Printf("  %s: %.6f\n", name, meta.Metrics[name])
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func svgScene(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	_, batch, err := fetchBatch(cfg)
	if err != nil {
		return err
	}

	sc := scene.New(cfg.GetOptions())
	if err := cfg.ApplyMotion(sc.Stepper()); err != nil {
		return err
	}
	sc.SetBatch(batch)

	const stepDt = 0.02
	for t := 0.0; t < settle; t += stepDt {
		sc.Step(stepDt)
	}

	tf := market.ParseTimeframe(cfg.Timeframe)
	var svg string
	if brailleOut {
		// Same canvas geometry as the live view.
		c := viz.NewCanvas(80, 24)
		viz.DrawPack(c, sc.Nodes(), cfg.Width, cfg.Height, tf)
		svg = export.CanvasToSVG(c, svgScale)
	} else {
		svg = export.SceneToSVG(sc.Nodes(), cfg.Width, cfg.Height, tf)
	}
	if outFile == "" {
		fmt.Println(svg)
		return nil
	}
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}

func trailSVG(cmd *cobra.Command, args []string) error {
	runID, instID := args[0], args[1]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	var pts []export.Point
	for _, f := range frames {
		if f.ID == instID {
			pts = append(pts, export.Point{X: f.X, Y: f.Y})
		}
	}
	if len(pts) < 2 {
		return fmt.Errorf("not enough recorded frames for %s; rerun with --record-every", instID)
	}

	svg := export.TrailToSVG(pts, int(meta.Width), int(meta.Height), "#22c55e")
	if outFile == "" {
		fmt.Println(svg)
		return nil
	}
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}

func benchScenes(cmd *cobra.Command, args []string) error {
	counts := []int{25, 50, 100, 200, 400}

	fmt.Println("benchmarking scene stepping")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COUNT\tRUNS\tSTEPS/RUN\tTIME\tSTEPS/SEC\tOVERLAPS")

	for _, c := range counts {
		src := market.NewSyntheticSource(c, 42)
		batch, err := src.Instruments(context.Background())
		if err != nil {
			return err
		}

		opts := bubble.DefaultOptions()
		opts.Width, opts.Height = config.DefaultWidth, config.DefaultHeight
		opts.Seed = 42

		ens := scene.NewEnsemble(opts, batch, numRuns, 42)
		start := time.Now()
		results, err := ens.Run(context.Background(), scene.RunConfig{Duration: duration, Dt: dt})
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		stepsPerRun := results[0].Steps
		total := stepsPerRun * len(results)

		// Mean overlapping pairs per frame, averaged across seeds: the
		// resolver quality number for this batch size.
		var overlap float64
		for _, r := range results {
			overlap += r.Metrics["overlap_pairs"]
		}
		overlap /= float64(len(results))

		fmt.Fprintf(w, "%d\t%d\t%d\t%v\t%.0f\t%.2f\n",
			c, len(results), stepsPerRun, elapsed.Round(time.Millisecond), float64(total)/elapsed.Seconds(), overlap)
	}
	return w.Flush()
}

func genFixture(cmd *cobra.Command, args []string) error {
	path := args[0]

	src := market.NewSyntheticSource(count, seed)
	batch, err := src.Instruments(context.Background())
	if err != nil {
		return err
	}
	if err := market.WriteFixture(path, batch); err != nil {
		return err
	}
	fmt.Printf("wrote %d instruments to %s\n", len(batch), path)
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
