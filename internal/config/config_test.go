package config

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/san-kum/sixdof/internal/control"
	"github.com/san-kum/sixdof/internal/gear"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Aircraft != "navion" {
		t.Errorf("expected aircraft navion, got %s", cfg.Aircraft)
	}
	if cfg.Sim.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("doublet")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if len(cfg.Pulses) != 1 || cfg.Pulses[0].Start != 50 {
		t.Errorf("expected one doublet at t=50, got %+v", cfg.Pulses)
	}

	cfg.Pulses = nil
	if again := GetPreset("doublet"); len(again.Pulses) != 1 {
		t.Error("preset shared state between calls")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsValid(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("ListPresets returned %d names, want %d", len(names), len(Presets))
	}
	for _, name := range names {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"no aircraft", func(c *Config) { c.Aircraft = "" }},
		{"bad integrator", func(c *Config) { c.Integrator = "leapfrog" }},
		{"zero dt", func(c *Config) { c.Sim.Dt = 0 }},
		{"bad trim method", func(c *Config) { c.Trim.Method = "bisect" }},
		{"trim airspeed", func(c *Config) { c.Trim.Airspeed = 0 }},
		{"log level", func(c *Config) { c.Log.Level = "loud" }},
		{"pulse control", func(c *Config) { c.Pulses = []control.Pulse{{Control: "spoiler", Duration: 1}} }},
		{"pulse duration", func(c *Config) { c.Pulses = []control.Pulse{{Control: control.Elevator}} }},
		{"terrain", func(c *Config) { c.Terrain.Amplitude = 20 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := GetPreset("climb")

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Trim.Climb != 4 || got.Trim.Airspeed != 180 || got.Sim.End != 120 {
		t.Errorf("round trip lost fields: %+v", got.Trim)
	}
}

func TestConversions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Initial.Alpha = 5
	cfg.Trim.Bank = 30
	cfg.Controls.Elevator = -2
	cfg.Controls.Throttle = 0.6

	if got := cfg.Condition().Alpha; math.Abs(got-5*math.Pi/180) > 1e-12 {
		t.Errorf("alpha = %v rad", got)
	}
	if got := cfg.TrimTarget().Bank; math.Abs(got-math.Pi/6) > 1e-12 {
		t.Errorf("bank = %v rad", got)
	}
	u := cfg.BaseControls(2)
	if len(u.Throttle) != 2 || u.Throttle[1] != 0.6 {
		t.Errorf("throttle = %v", u.Throttle)
	}
	if math.Abs(u.Elevator+2*math.Pi/180) > 1e-12 {
		t.Errorf("elevator = %v rad", u.Elevator)
	}
}

func TestNewTerrain(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Terrain.Elevation = 120
	if f, ok := cfg.NewTerrain().(gear.Flat); !ok || float64(f) != 120 {
		t.Errorf("expected flat terrain at 120, got %#v", cfg.NewTerrain())
	}

	cfg.Terrain.Amplitude = 10
	cfg.Terrain.Wavelength = 500
	if _, ok := cfg.NewTerrain().(gear.Wavy); !ok {
		t.Error("expected wavy terrain")
	}
}

func TestAircraftData(t *testing.T) {
	d, err := DefaultConfig().AircraftData()
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Engines) != 1 {
		t.Errorf("navion engines = %d", len(d.Engines))
	}
}
