package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/sixdof/internal/eom"
	"github.com/san-kum/sixdof/internal/trim"
)

const rad2deg = 180 / math.Pi

func trimAircraft(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Trim.Enabled = true

	lg, err := newLogger(cfg)
	if err != nil {
		return err
	}
	f, err := prepare(cfg, lg)
	if err != nil {
		return err
	}
	printTrim(f.trimmed)
	return nil
}

func printTrim(r *trim.Result) {
	t := r.Target
	fmt.Printf("trim %s: %.1f ft/s at %.0f ft, climb %.1f ft/s\n", r.Method, t.Airspeed, t.Altitude, t.Climb)
	fmt.Printf("  alpha     %8.3f deg\n", r.Condition.Alpha*rad2deg)
	fmt.Printf("  beta      %8.3f deg\n", r.Condition.Beta*rad2deg)
	fmt.Printf("  pitch     %8.3f deg\n", r.State[eom.Theta]*rad2deg)
	fmt.Printf("  elevator  %8.3f deg\n", r.Controls.Elevator*rad2deg)
	fmt.Printf("  aileron   %8.3f deg\n", r.Controls.Aileron*rad2deg)
	fmt.Printf("  rudder    %8.3f deg\n", r.Controls.Rudder*rad2deg)
	for i, th := range r.Controls.Throttle {
		fmt.Printf("  throttle%d %8.3f\n", i, th)
	}
	fmt.Printf("  residual  %8.2e after %d iterations\n\n", r.Residual, r.Iterations)
}

func sweepTrim(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !(stepSpeed > 0) || toSpeed < fromSpeed {
		return fmt.Errorf("invalid airspeed range %g..%g step %g", fromSpeed, toSpeed, stepSpeed)
	}

	lg, err := newLogger(cfg)
	if err != nil {
		return err
	}
	data, err := cfg.AircraftData()
	if err != nil {
		return err
	}
	opts, err := cfg.TrimOptions(lg)
	if err != nil {
		return err
	}

	var targets []trim.Target
	for v := fromSpeed; v <= toSpeed+1e-9; v += stepSpeed {
		t := cfg.TrimTarget()
		t.Airspeed = v
		targets = append(targets, t)
	}

	newModel := func() (*eom.Model, error) { return eom.New(data, cfg.NewTerrain(), lg) }
	m, err := newModel()
	if err != nil {
		return err
	}
	base := cfg.BaseControls(m.Engines())
	base.Gear = 0

	results, err := trim.Sweep(context.Background(), newModel, targets, base, opts, parallel)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "AIRSPEED\tALPHA\tELEVATOR\tTHROTTLE\tRESIDUAL\tCONVERGED")
	for _, r := range results {
		thr := 0.0
		if len(r.Controls.Throttle) > 0 {
			thr = r.Controls.Throttle[0]
		}
		fmt.Fprintf(w, "%.1f\t%.3f\t%.3f\t%.3f\t%.2e\t%v\n",
			r.Target.Airspeed, r.Condition.Alpha*rad2deg, r.Controls.Elevator*rad2deg,
			thr, r.Residual, r.Converged)
	}
	return w.Flush()
}
