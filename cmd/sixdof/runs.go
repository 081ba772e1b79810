package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/sixdof/internal/aircraft"
	"github.com/san-kum/sixdof/internal/config"
	"github.com/san-kum/sixdof/internal/integrators"
	"github.com/san-kum/sixdof/internal/storage"
)

func openStore(cmd *cobra.Command) (*storage.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return storage.New(cfg.DataDir), nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tAIRCRAFT\tTIME\tDURATION\tDT\tINTEG\tSTEPS\tSTATUS")

	for _, run := range runs {
		status := "ok"
		if run.Error != "" {
			status = run.Error
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%d\t%s\n",
			run.ID,
			run.Aircraft,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.End-run.Start,
			run.Dt,
			run.Integrator,
			run.Steps,
			status,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	tbl, err := st.LoadTable(runID)
	if err != nil {
		return err
	}
	if len(tbl.Rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("aircraft: %s\n", meta.Aircraft)
	fmt.Printf("samples: %d\n\n", len(tbl.Rows))

	for _, name := range plotVars {
		data, ok := tbl.Column(name)
		if !ok {
			fmt.Printf("unknown column %q (available: %v)\n\n", name, tbl.Columns)
			continue
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name+" vs time"),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func output() (io.Writer, func() error, error) {
	if outputPath == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := st.ExportCSV(w, args[0], columns...); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := st.ExportJSON(w, args[0]); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tTRIM\tEND\tPULSES")
	for _, name := range config.ListPresets() {
		c := config.GetPreset(name)
		trimmed := "-"
		if c.Trim.Enabled {
			trimmed = fmt.Sprintf("%.0f ft/s @ %.0f ft", c.Trim.Airspeed, c.Trim.Altitude)
		}
		fmt.Fprintf(w, "%s\t%s\t%.0fs\t%d\n", name, trimmed, c.Sim.End, len(c.Pulses))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\naircraft: %v\n", aircraft.Names())
	fmt.Printf("integrators: %v\n", integrators.Names())
	return nil
}
