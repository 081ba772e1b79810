package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/sixdof/internal/config"
	"github.com/san-kum/sixdof/internal/log"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	logDir     string

	aircraftName string
	integrator   string
	dt           float64
	duration     float64
	noTrim       bool
	realTime     bool

	airspeed  float64
	altitude  float64
	climb     float64
	method    string
	symmetric bool

	fromSpeed float64
	toSpeed   float64
	stepSpeed float64
	parallel  int

	spectrumVar  string
	spectrumFrom float64

	plotVars   []string
	columns    []string
	outputPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "sixdof",
		Short:         "six degree of freedom flight dynamics",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default from config)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "write rotating JSON logs to this directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "fly in real time with a live console",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	trimCmd := &cobra.Command{
		Use:   "trim",
		Short: "trim the aircraft for a flight condition",
		Args:  cobra.NoArgs,
		RunE:  trimAircraft,
	}
	addTrimFlags(trimCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "trim over a range of airspeeds",
		Args:  cobra.NoArgs,
		RunE:  sweepTrim,
	}
	addTrimFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&fromSpeed, "from", 150, "first airspeed (ft/s)")
	sweepCmd.Flags().Float64Var(&toSpeed, "to", 250, "last airspeed (ft/s)")
	sweepCmd.Flags().Float64Var(&stepSpeed, "step", 10, "airspeed increment (ft/s)")
	sweepCmd.Flags().IntVar(&parallel, "parallel", 0, "concurrent trims (0 = unlimited)")

	modesCmd := &cobra.Command{
		Use:   "modes",
		Short: "dynamic modes at a trim point",
		Args:  cobra.NoArgs,
		RunE:  printModes,
	}
	addTrimFlags(modesCmd)

	spectrumCmd := &cobra.Command{
		Use:   "spectrum [run_id]",
		Short: "dominant frequency of a recorded column",
		Args:  cobra.ExactArgs(1),
		RunE:  spectrum,
	}
	spectrumCmd.Flags().StringVar(&spectrumVar, "var", "q", "column to analyze")
	spectrumCmd.Flags().Float64Var(&spectrumFrom, "from", 0, "ignore samples before this time (s)")

	compareCmd := &cobra.Command{
		Use:   "compare [integrators...]",
		Short: "run the same flight with several integrators",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}
	addRunFlags(compareCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&plotVars, "vars", []string{"alt", "airspeed", "theta", "q"}, "columns to plot")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples as csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringSliceVar(&columns, "cols", nil, "columns to export (default all)")
	exportCSVCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and samples as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets and aircraft",
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, liveCmd, trimCmd, sweepCmd, modesCmd, compareCmd, listCmd, plotCmd,
		spectrumCmd, exportCSVCmd, exportJSONCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&aircraftName, "aircraft", "", "aircraft preset")
	cmd.Flags().StringVar(&integrator, "integrator", "", "integrator")
	cmd.Flags().Float64Var(&dt, "dt", 0, "timestep (s)")
	cmd.Flags().Float64Var(&duration, "time", 0, "duration (s)")
	cmd.Flags().BoolVar(&noTrim, "no-trim", false, "start from the configured initial condition")
	cmd.Flags().BoolVar(&realTime, "real-time", false, "pace steps to wall-clock time")
}

func addTrimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&aircraftName, "aircraft", "", "aircraft preset")
	cmd.Flags().Float64Var(&airspeed, "airspeed", 0, "true airspeed (ft/s)")
	cmd.Flags().Float64Var(&altitude, "altitude", 0, "altitude (ft)")
	cmd.Flags().Float64Var(&climb, "climb", 0, "climb rate (ft/s)")
	cmd.Flags().StringVar(&method, "method", "", "newton or simplex")
	cmd.Flags().BoolVar(&symmetric, "symmetric", false, "trim the longitudinal axes only")
}

// loadConfig resolves the preset or config file and applies flags that
// were set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-dir") {
		cfg.Log.Dir = logDir
	}
	if flags.Changed("aircraft") {
		cfg.Aircraft, cfg.AircraftFile = aircraftName, ""
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("dt") {
		cfg.Sim.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Sim.End = cfg.Sim.Start + duration
	}
	if flags.Changed("no-trim") {
		cfg.Trim.Enabled = !noTrim
	}
	if flags.Changed("real-time") {
		cfg.Sim.RealTime = realTime
	}
	if flags.Changed("airspeed") {
		cfg.Trim.Airspeed = airspeed
	}
	if flags.Changed("altitude") {
		cfg.Trim.Altitude = altitude
	}
	if flags.Changed("climb") {
		cfg.Trim.Climb = climb
	}
	if flags.Changed("method") {
		cfg.Trim.Method = method
	}
	if flags.Changed("symmetric") {
		cfg.Trim.Symmetric = symmetric
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*log.Logger, error) {
	return log.New(cfg.Log.Level, cfg.Log.Dir)
}
