package config

import (
	"sort"

	"github.com/san-kum/sixdof/internal/control"
	"github.com/san-kum/sixdof/internal/sim"
)

// Presets build a fresh Config per call so callers may edit the result.
var Presets = map[string]func() *Config{
	"cruise": func() *Config {
		return DefaultConfig()
	},
	"climb": func() *Config {
		c := DefaultConfig()
		c.Trim.Airspeed = 180
		c.Trim.Altitude = 3000
		c.Trim.Climb = 4
		c.Sim.End = 120
		return c
	},
	"doublet": func() *Config {
		c := DefaultConfig()
		c.Pulses = []control.Pulse{control.Doublet(control.Elevator, 50, 0.5, 0.035)}
		return c
	},
	"touchdown": func() *Config {
		c := DefaultConfig()
		c.Trim.Enabled = false
		c.Initial = InitialConfig{Airspeed: 110, Alpha: 4, Climb: -3, Altitude: 40, Fuel: DefaultFuel}
		c.Controls = ControlConfig{Throttle: 0.1, Flaps: 20, Gear: 1}
		c.Sim = sim.Config{Dt: 0.01, End: 30}
		return c
	},
	"ground": func() *Config {
		c := DefaultConfig()
		c.Trim.Enabled = false
		c.Initial = InitialConfig{Altitude: -10, Fuel: DefaultFuel}
		c.Controls = ControlConfig{Gear: 1, Brakes: 1}
		c.Sim = sim.Config{Dt: 0.01, End: 10}
		return c
	},
}

func GetPreset(name string) *Config {
	f, ok := Presets[name]
	if !ok {
		return nil
	}
	return f()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
