package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/sixdof/internal/config"
	"github.com/san-kum/sixdof/internal/control"
	"github.com/san-kum/sixdof/internal/dynamo"
	"github.com/san-kum/sixdof/internal/eom"
	"github.com/san-kum/sixdof/internal/integrators"
	"github.com/san-kum/sixdof/internal/log"
	"github.com/san-kum/sixdof/internal/metrics"
	"github.com/san-kum/sixdof/internal/sim"
	"github.com/san-kum/sixdof/internal/storage"
	"github.com/san-kum/sixdof/internal/trim"
	"github.com/san-kum/sixdof/internal/tui"
)

// flight is everything a run needs before the simulator is built.
type flight struct {
	cfg     *config.Config
	lg      *log.Logger
	model   *eom.Model
	x0      dynamo.State
	base    control.Vector
	trimmed *trim.Result
}

func prepare(cfg *config.Config, lg *log.Logger) (*flight, error) {
	data, err := cfg.AircraftData()
	if err != nil {
		return nil, err
	}
	model, err := eom.New(data, cfg.NewTerrain(), lg)
	if err != nil {
		return nil, err
	}

	f := &flight{cfg: cfg, lg: lg, model: model}
	if !cfg.Trim.Enabled {
		f.x0 = cfg.Condition().State()
		f.base = cfg.BaseControls(model.Engines())
		return f, nil
	}

	opts, err := cfg.TrimOptions(lg)
	if err != nil {
		return nil, err
	}
	base := cfg.BaseControls(model.Engines())
	base.Gear = 0
	res, err := trim.Solve(model, cfg.TrimTarget(), base, opts)
	if err != nil {
		return nil, fmt.Errorf("initial trim: %w", err)
	}
	f.x0, f.base, f.trimmed = res.State, res.Controls, res
	return f, nil
}

func (f *flight) simulator(integ dynamo.Integrator, src control.Source) (*sim.Simulator, error) {
	return sim.New(f.model, integ, src, f.x0, f.cfg.Sim,
		sim.WithLogger(f.lg),
		sim.WithMetrics(metrics.Default()...),
		sim.WithLimits(f.model.Aircraft().ControlLimits()))
}

func (f *flight) script() *control.Script {
	return control.NewScript(f.base, f.model.Aircraft().ControlLimits(), f.cfg.Pulses...)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	lg, err := newLogger(cfg)
	if err != nil {
		return err
	}

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	f, err := prepare(cfg, lg)
	if err != nil {
		return err
	}
	if f.trimmed != nil {
		printTrim(f.trimmed)
	}

	integ, err := integrators.ByName(cfg.Integrator)
	if err != nil {
		return err
	}
	s, err := f.simulator(integ, f.script())
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	fmt.Printf("running %s for %.1fs...\n", f.model.Aircraft().Name, cfg.Sim.End-cfg.Sim.Start)
	start := time.Now()
	result, runErr := s.Run(ctx)
	elapsed := time.Since(start)
	if result == nil {
		return runErr
	}

	meta := storage.RunMetadata{
		Aircraft:   f.model.Aircraft().Name,
		Integrator: integ.Name(),
		Start:      cfg.Sim.Start,
		Dt:         cfg.Sim.Dt,
		End:        cfg.Sim.End,
		Trimmed:    f.trimmed != nil,
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		meta.Error = runErr.Error()
	}
	runID, err := st.Save(meta, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.Steps)
	printMetrics(result.Metrics)

	if meta.Error != "" {
		return runErr
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// The console owns the terminal, so logs go to a file or nowhere.
	if cfg.Log.Dir == "" {
		cfg.Log.Level = "error"
	}
	cfg.Sim.Unlimited = true
	cfg.Sim.RealTime = true
	if cfg.Sim.Window == 0 {
		cfg.Sim.Window = 120
	}

	lg, err := newLogger(cfg)
	if err != nil {
		return err
	}
	f, err := prepare(cfg, lg)
	if err != nil {
		return err
	}

	integ, err := integrators.ByName(cfg.Integrator)
	if err != nil {
		return err
	}
	shared := control.NewShared(f.base, f.model.Aircraft().ControlLimits())
	s, err := f.simulator(integ, shared)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := s.Run(ctx)
		done <- err
	}()

	if err := tui.Run(s, shared, f.model.Aircraft().Name); err != nil {
		return err
	}
	s.Stop()
	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Sim.RealTime = false
	lg, err := newLogger(cfg)
	if err != nil {
		return err
	}

	var sims []*sim.Simulator
	for _, name := range args {
		integ, err := integrators.ByName(name)
		if err != nil {
			return err
		}
		// Each simulator owns its model and integrator.
		f, err := prepare(cfg, lg.With(slog.String("integrator", name)))
		if err != nil {
			return err
		}
		s, err := f.simulator(integ, f.script())
		if err != nil {
			return err
		}
		sims = append(sims, s)
	}

	start := time.Now()
	results, err := sim.RunEnsemble(context.Background(), sims)
	if err != nil {
		return err
	}

	fmt.Printf("comparing integrators (dt=%.4f, duration=%.1fs, wall %v)\n\n",
		cfg.Sim.Dt, cfg.Sim.End-cfg.Sim.Start, time.Since(start).Round(time.Millisecond))
	fmt.Printf("%-12s  %-12s  %-12s  %-12s\n", "integrator", "final_alt", "alt_dev", "energy_drift")
	fmt.Println(strings.Repeat("-", 54))
	for i, r := range results {
		fmt.Printf("%-12s  %12.3f  %12.4f  %12.2e\n", args[i],
			r.Final[eom.Alt], r.Metrics["altitude_deviation"], r.Metrics["energy_drift"])
	}
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}
