package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/azhan137/FMM-tutorial/internal/config"
	"github.com/azhan137/FMM-tutorial/internal/direct"
	"github.com/azhan137/FMM-tutorial/internal/fmm"
	"github.com/azhan137/FMM-tutorial/internal/metrics"
	"github.com/azhan137/FMM-tutorial/internal/particle"
	"github.com/azhan137/FMM-tutorial/internal/storage"
	"github.com/azhan137/FMM-tutorial/internal/tree"
	"github.com/azhan137/FMM-tutorial/internal/viz"
)

var (
	dataDir       string
	numParticles  int
	nCrit         int
	distribution  string
	seed          int64
	workers       int
	parallel      bool
	probes        int
	probeDistance float64
	configFile    string
	preset        string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fmm",
		Short: "fast multipole method upward pass",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".fmm", "data directory")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "build an octree and run the upward sweep",
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "check sweep output against direct summation",
		RunE:  runVerify,
	}
	addRunFlags(verifyCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time serial vs parallel sweeps",
		RunE:  runBench,
	}
	benchCmd.Flags().IntVar(&nCrit, "ncrit", config.DefaultNCrit, "leaf capacity")
	benchCmd.Flags().IntVar(&workers, "workers", 0, "worker count (0 = NumCPU)")
	benchCmd.Flags().Int64Var(&seed, "seed", 1, "random seed")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot far-field error of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset configurations",
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range config.ListPresets() {
				fmt.Println(p)
			}
		},
	}

	rootCmd.AddCommand(sweepCmd, verifyCmd, benchCmd, listCmd, plotCmd, exportJSONCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&numParticles, "particles", "n", config.DefaultParticles, "particle count")
	cmd.Flags().IntVar(&nCrit, "ncrit", config.DefaultNCrit, "leaf capacity before subdivision")
	cmd.Flags().StringVar(&distribution, "distribution", "uniform", "particle distribution")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker count for parallel sweep (0 = NumCPU)")
	cmd.Flags().BoolVar(&parallel, "parallel", false, "use the parallel sweep")
	cmd.Flags().IntVar(&probes, "probes", config.DefaultProbes, "far-field probe count")
	cmd.Flags().Float64Var(&probeDistance, "probe-distance", config.DefaultProbeDistance, "max probe distance in root radii")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// resolveConfig merges preset, config file and flags; explicit flags win.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Seed = seed

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
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

	if cmd.Flags().Changed("particles") {
		cfg.Particles = numParticles
	}
	if cmd.Flags().Changed("ncrit") {
		cfg.NCrit = nCrit
	}
	if cmd.Flags().Changed("distribution") {
		cfg.Distribution = distribution
	}
	if cmd.Flags().Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	if cmd.Flags().Changed("parallel") {
		cfg.Parallel = parallel
	}
	if cmd.Flags().Changed("probes") {
		cfg.Probes = probes
	}
	if cmd.Flags().Changed("probe-distance") {
		cfg.ProbeDistance = probeDistance
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// sweepOnce generates particles, builds and validates the tree, and
// runs the configured sweep. The returned arena has every moment
// finalized.
func sweepOnce(cfg *config.Config) ([]fmm.Cell, []particle.Particle, time.Duration, error) {
	particles, err := particle.Generate(cfg.Distribution, cfg.Particles, cfg.Seed)
	if err != nil {
		return nil, nil, 0, err
	}

	cx, cy, cz, r := tree.BoundingCube(particles)
	cells, err := tree.Build(particles, cfg.NCrit, cx, cy, cz, r)
	if err != nil {
		return nil, nil, 0, err
	}
	if err := tree.Validate(cells); err != nil {
		return nil, nil, 0, fmt.Errorf("malformed tree: %w", err)
	}

	start := time.Now()
	if cfg.Parallel {
		fmm.ParallelSweep(cells, particles, cfg.Workers)
	} else {
		fmm.UpwardSweep(cells, particles)
	}
	return cells, particles, time.Since(start), nil
}

// probeCurve samples the far-field error at increasing distances from
// the root center, in units of root radii.
func probeCurve(cells []fmm.Cell, particles []particle.Particle, cfg *config.Config) []storage.ProbeSample {
	root := &cells[0]
	samples := make([]storage.ProbeSample, 0, cfg.Probes)
	for k := 0; k < cfg.Probes; k++ {
		frac := 0.0
		if cfg.Probes > 1 {
			frac = float64(k) / float64(cfg.Probes-1)
		}
		d := 3 + (cfg.ProbeDistance-3)*frac

		// walk a spiral so successive probes change direction too
		cosT := math.Cos(float64(k) * 0.7)
		sinT := math.Sqrt(1 - cosT*cosT)
		phi := math.Pi * (1 + math.Sqrt(5)) * float64(k)
		rx := d * root.R * sinT * math.Cos(phi)
		ry := d * root.R * sinT * math.Sin(phi)
		rz := d * root.R * cosT

		approx := root.Multipole.Evaluate(rx, ry, rz)
		exact := direct.Potential(particles, root.X+rx, root.Y+ry, root.Z+rz)
		rel := 0.0
		if exact != 0 {
			rel = math.Abs(approx-exact) / math.Abs(exact)
		}
		samples = append(samples, storage.ProbeSample{
			Distance: d, Approx: approx, Exact: exact, RelError: rel,
		})
	}
	return samples
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Println(viz.Title.Render("upward sweep"))
	fmt.Printf("distribution: %s, particles: %d, n_crit: %d\n",
		cfg.Distribution, cfg.Particles, cfg.NCrit)

	cells, particles, elapsed, err := sweepOnce(cfg)
	if err != nil {
		return err
	}

	results := make(map[string]float64)
	for _, m := range metrics.Defaults() {
		results[m.Name()] = m.Compute(cells, particles)
	}

	samples := probeCurve(cells, particles, cfg)

	runID, err := st.Save(storage.RunMetadata{
		Distribution: cfg.Distribution,
		Seed:         cfg.Seed,
		Particles:    len(particles),
		NCrit:        cfg.NCrit,
		Parallel:     cfg.Parallel,
		Workers:      cfg.Workers,
		ElapsedMS:    float64(elapsed.Microseconds()) / 1000,
		Metrics:      results,
	}, cells, samples)
	if err != nil {
		return err
	}

	fmt.Printf("cells: %d, sweep time: %v\n", len(cells), elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Println()
	for name, val := range results {
		fmt.Printf("  %s %s\n",
			viz.MetricLabel.Render(name+":"),
			viz.MetricValue.Render(fmt.Sprintf("%.6g", val)))
	}
	return nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	cells, particles, _, err := sweepOnce(cfg)
	if err != nil {
		return err
	}

	pass := true
	report := func(name string, ok bool, detail string) {
		status := viz.StatusOK.Render("ok")
		if !ok {
			status = viz.StatusFail.Render("FAIL")
			pass = false
		}
		fmt.Printf("%-28s %s  %s\n", name, status, viz.Subtle.Render(detail))
	}

	// conservation of total mass
	total := particle.TotalMass(particles)
	massErr := math.Abs(cells[0].Multipole[0] - total)
	report("mass conservation", massErr < 1e-9*math.Abs(total)+1e-12,
		fmt.Sprintf("|root mono - sum m| = %.3g", massErr))

	// serial, recursive and parallel sweeps must agree
	serial := snapshotMoments(cells)

	fmm.ResetMoments(cells)
	fmm.SweepRecursive(cells, particles)
	recursive := snapshotMoments(cells)
	report("recursive sweep agreement", maxMomentDiff(serial, recursive) < 1e-12,
		fmt.Sprintf("max coeff diff %.3g", maxMomentDiff(serial, recursive)))

	fmm.ResetMoments(cells)
	fmm.ParallelSweep(cells, particles, cfg.Workers)
	par := snapshotMoments(cells)
	report("parallel sweep agreement", maxMomentDiff(serial, par) < 1e-9,
		fmt.Sprintf("max coeff diff %.3g", maxMomentDiff(serial, par)))

	// root moment vs single-leaf P2M over the whole set
	whole := fmm.NewCell(cells[0].X, cells[0].Y, cells[0].Z, cells[0].R, len(particles)+1)
	for i := range particles {
		whole.Leaf = append(whole.Leaf, i)
	}
	fmm.P2M(&whole, particles)
	diff := 0.0
	for k := 0; k < fmm.Coeffs; k++ {
		d := math.Abs(whole.Multipole[k] - serial[0][k])
		if d > diff {
			diff = d
		}
	}
	report("root vs direct P2M", diff < 1e-9, fmt.Sprintf("max coeff diff %.3g", diff))

	// far-field accuracy against pairwise summation, sampled at the
	// configured probe distance
	worst := metrics.FarFieldError{
		Probes:   cfg.Probes,
		Distance: cfg.ProbeDistance,
	}.Compute(cells, particles)
	report("far-field error", worst < 0.05, fmt.Sprintf("worst rel error %.3g", worst))

	if !pass {
		return fmt.Errorf("verification failed")
	}
	return nil
}

func snapshotMoments(cells []fmm.Cell) []fmm.Multipole {
	out := make([]fmm.Multipole, len(cells))
	for i := range cells {
		out[i] = cells[i].Multipole
	}
	return out
}

func maxMomentDiff(a, b []fmm.Multipole) float64 {
	worst := 0.0
	for i := range a {
		for k := 0; k < fmm.Coeffs; k++ {
			d := math.Abs(a[i][k] - b[i][k])
			if d > worst {
				worst = d
			}
		}
	}
	return worst
}

func runBench(cmd *cobra.Command, args []string) error {
	sizes := []int{1000, 10000, 50000}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "N\tCELLS\tSERIAL\tPARALLEL")

	for _, n := range sizes {
		particles := particle.Uniform(n, seed)
		cx, cy, cz, r := tree.BoundingCube(particles)
		cells, err := tree.Build(particles, nCrit, cx, cy, cz, r)
		if err != nil {
			return err
		}
		if err := tree.Validate(cells); err != nil {
			return fmt.Errorf("malformed tree: %w", err)
		}

		start := time.Now()
		fmm.UpwardSweep(cells, particles)
		serial := time.Since(start)

		fmm.ResetMoments(cells)
		start = time.Now()
		fmm.ParallelSweep(cells, particles, workers)
		par := time.Since(start)

		fmt.Fprintf(w, "%d\t%d\t%v\t%v\n", n, len(cells), serial, par)
	}
	return w.Flush()
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
	fmt.Fprintln(w, "ID\tDIST\tTIME\tN\tNCRIT\tCELLS\tSWEEP")

	for _, run := range runs {
		mode := "serial"
		if run.Parallel {
			mode = "parallel"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			run.ID,
			run.Distribution,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.NCrit,
			run.Cells,
			mode,
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

	samples, err := st.LoadProbes(runID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no probe data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("distribution: %s, particles: %d\n\n", meta.Distribution, meta.Particles)

	errs := make([]float64, len(samples))
	for i, s := range samples {
		errs[i] = s.RelError
	}
	caption := fmt.Sprintf("log10 rel error, probe distance %.1f-%.1f root radii",
		samples[0].Distance, samples[len(samples)-1].Distance)
	fmt.Println(viz.ErrorCurve(errs, caption))
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
