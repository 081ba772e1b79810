package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/sixdof/internal/aircraft"
	"github.com/san-kum/sixdof/internal/control"
	"github.com/san-kum/sixdof/internal/eom"
	"github.com/san-kum/sixdof/internal/gear"
	"github.com/san-kum/sixdof/internal/integrators"
	"github.com/san-kum/sixdof/internal/log"
	"github.com/san-kum/sixdof/internal/sim"
	"github.com/san-kum/sixdof/internal/trim"
)

const (
	DefaultAircraft   = "navion"
	DefaultIntegrator = "rk4"
	DefaultDt         = 0.02
	DefaultEnd        = 60.0
	DefaultAirspeed   = 210.0
	DefaultAltitude   = 5000.0
	DefaultFuel       = 240.0
	DefaultDataDir    = "runs"
)

const deg = math.Pi / 180

// Config describes one run. Angles are in degrees, everything else in the
// simulator's English units.
type Config struct {
	Aircraft     string          `yaml:"aircraft"`
	AircraftFile string          `yaml:"aircraft_file,omitempty"`
	Integrator   string          `yaml:"integrator"`
	Sim          sim.Config      `yaml:"sim"`
	Trim         TrimConfig      `yaml:"trim"`
	Initial      InitialConfig   `yaml:"initial"`
	Controls     ControlConfig   `yaml:"controls"`
	Pulses       []control.Pulse `yaml:"pulses,omitempty"`
	Terrain      TerrainConfig   `yaml:"terrain"`
	Log          LogConfig       `yaml:"log"`
	DataDir      string          `yaml:"data_dir"`
}

// TrimConfig replaces the initial condition and base controls with a trim
// solution when Enabled.
type TrimConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Method    string  `yaml:"method"`
	Symmetric bool    `yaml:"symmetric"`
	Airspeed  float64 `yaml:"airspeed"`
	Altitude  float64 `yaml:"altitude"`
	Climb     float64 `yaml:"climb"`
	Heading   float64 `yaml:"heading"`
	Bank      float64 `yaml:"bank"`
	Fuel      float64 `yaml:"fuel"`
}

type InitialConfig struct {
	Airspeed float64 `yaml:"airspeed"`
	Alpha    float64 `yaml:"alpha"`
	Beta     float64 `yaml:"beta"`
	Climb    float64 `yaml:"climb"`
	Bank     float64 `yaml:"bank"`
	Heading  float64 `yaml:"heading"`
	North    float64 `yaml:"north"`
	East     float64 `yaml:"east"`
	Altitude float64 `yaml:"altitude"`
	Fuel     float64 `yaml:"fuel"`
}

// ControlConfig is the base control setting used without trim. Surface
// deflections are in degrees.
type ControlConfig struct {
	Elevator float64 `yaml:"elevator"`
	Aileron  float64 `yaml:"aileron"`
	Rudder   float64 `yaml:"rudder"`
	Throttle float64 `yaml:"throttle"`
	Flaps    float64 `yaml:"flaps"`
	Gear     float64 `yaml:"gear"`
	Brakes   float64 `yaml:"brakes"`
}

// TerrainConfig is flat ground at Elevation unless Amplitude is set.
type TerrainConfig struct {
	Elevation  float64 `yaml:"elevation"`
	Amplitude  float64 `yaml:"amplitude"`
	Wavelength float64 `yaml:"wavelength"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Aircraft:   DefaultAircraft,
		Integrator: DefaultIntegrator,
		Sim:        sim.Config{Dt: DefaultDt, End: DefaultEnd},
		Trim: TrimConfig{
			Enabled:  true,
			Method:   "newton",
			Airspeed: DefaultAirspeed,
			Altitude: DefaultAltitude,
			Fuel:     DefaultFuel,
		},
		Initial: InitialConfig{
			Airspeed: DefaultAirspeed,
			Altitude: DefaultAltitude,
			Fuel:     DefaultFuel,
		},
		Controls: ControlConfig{Throttle: 0.7},
		Log:      LogConfig{Level: "info"},
		DataDir:  DefaultDataDir,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	var errs []error
	if c.Aircraft == "" && c.AircraftFile == "" {
		errs = append(errs, errors.New("no aircraft or aircraft_file"))
	}
	if _, err := integrators.ByName(c.Integrator); err != nil {
		errs = append(errs, err)
	}
	if err := c.Sim.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Trim.Enabled {
		if _, err := trim.ParseMethod(c.Trim.Method); err != nil {
			errs = append(errs, err)
		}
		if err := c.TrimTarget().Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	known := control.DefaultLimits()
	for i, p := range c.Pulses {
		if _, ok := known[p.Control]; !ok {
			errs = append(errs, fmt.Errorf("pulse %d: unknown control %q", i, p.Control))
		}
		if !(p.Duration > 0) {
			errs = append(errs, fmt.Errorf("pulse %d: duration must be positive", i))
		}
	}
	if c.Terrain.Amplitude != 0 && !(c.Terrain.Wavelength > 0) {
		errs = append(errs, errors.New("terrain: wavelength must be positive"))
	}
	return errors.Join(errs...)
}

// AircraftData loads the aircraft file when set, the named preset otherwise.
func (c *Config) AircraftData() (*aircraft.Data, error) {
	if c.AircraftFile != "" {
		return aircraft.Load(c.AircraftFile)
	}
	return aircraft.ByName(c.Aircraft)
}

func (c *Config) NewTerrain() gear.Terrain {
	if c.Terrain.Amplitude != 0 {
		return gear.Wavy{
			Base:       c.Terrain.Elevation,
			Amplitude:  c.Terrain.Amplitude,
			Wavelength: c.Terrain.Wavelength,
		}
	}
	return gear.Flat(c.Terrain.Elevation)
}

func (c *Config) Condition() eom.Condition {
	i := c.Initial
	return eom.Condition{
		Airspeed: i.Airspeed,
		Alpha:    i.Alpha * deg,
		Beta:     i.Beta * deg,
		Climb:    i.Climb * deg,
		Bank:     i.Bank * deg,
		Heading:  i.Heading * deg,
		North:    i.North,
		East:     i.East,
		Altitude: i.Altitude,
		Fuel:     i.Fuel,
	}
}

func (c *Config) TrimTarget() trim.Target {
	t := c.Trim
	return trim.Target{
		Airspeed: t.Airspeed,
		Altitude: t.Altitude,
		Climb:    t.Climb,
		Heading:  t.Heading * deg,
		Bank:     t.Bank * deg,
		Fuel:     t.Fuel,
	}
}

func (c *Config) TrimOptions(lg *log.Logger) (trim.Options, error) {
	m, err := trim.ParseMethod(c.Trim.Method)
	if err != nil {
		return trim.Options{}, err
	}
	return trim.Options{Method: m, Symmetric: c.Trim.Symmetric, Logger: lg}, nil
}

// BaseControls is the configured control setting for every engine.
func (c *Config) BaseControls(engines int) control.Vector {
	u := control.NewVector(engines)
	u.Elevator = c.Controls.Elevator * deg
	u.Aileron = c.Controls.Aileron * deg
	u.Rudder = c.Controls.Rudder * deg
	u.Flaps = c.Controls.Flaps * deg
	u.Gear = c.Controls.Gear
	u.Brakes = c.Controls.Brakes
	for i := range u.Throttle {
		u.Throttle[i] = c.Controls.Throttle
	}
	return u
}
