package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/san-kum/sixdof/internal/analysis"
)

func printModes(cmd *cobra.Command, args []string) error {
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

	axes := []struct {
		name   string
		states []int
	}{
		{"longitudinal", analysis.Longitudinal},
		{"lateral", analysis.Lateral},
	}
	for _, ax := range axes {
		a, err := analysis.Linearize(f.model, f.x0, f.base, ax.states)
		if err != nil {
			return err
		}
		modes, err := analysis.Modes(a)
		if err != nil {
			return err
		}
		fmt.Printf("%s:\n", ax.name)
		for _, m := range modes {
			stable := "stable"
			if !m.Stable() {
				stable = "unstable"
			}
			fmt.Printf("  %-40s %s\n", m, stable)
		}
	}
	return nil
}

func spectrum(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	tbl, err := st.LoadTable(args[0])
	if err != nil {
		return err
	}
	times, _ := tbl.Column("time")
	col, ok := tbl.Column(spectrumVar)
	if !ok {
		return fmt.Errorf("unknown column %q (available: %v)", spectrumVar, tbl.Columns)
	}

	var data []float64
	for i, t := range times {
		if t >= spectrumFrom {
			data = append(data, col[i])
		}
	}
	hz, err := analysis.DominantFrequency(data, meta.Dt)
	if err != nil {
		return err
	}
	fmt.Printf("%s: dominant frequency %.4f Hz (%.3f rad/s) over %d samples\n",
		spectrumVar, hz, 2*math.Pi*hz, len(data))
	return nil
}
