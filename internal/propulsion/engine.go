// Package propulsion models piston-propeller engines.
package propulsion

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/sixdof/internal/log"
	"github.com/san-kum/sixdof/internal/vec"
)

const (
	hpToFtLbPerSec = 550.0

	// DefaultStaticThreshold is the axial airspeed below which thrust comes
	// from momentum theory instead of the cruise power relation (ft/s).
	DefaultStaticThreshold = 65.0

	// Divisor of the altitude power-loss term in the density-ratio
	// correction.
	altitudeLossFactor = 7.55

	minAirspeed = 1e-3
)

// Engine is the fixed configuration of one engine.
type Engine struct {
	Name     string   `yaml:"name"`
	Index    int      `yaml:"index"`
	Position vec.Vec3 `yaml:"position"` // ft from CG, body axes
	Axis     vec.Vec3 `yaml:"axis"`     // thrust line; zero means +X

	MaxPower        float64 `yaml:"max_power"`     // hp at sea level
	PropDiameter    float64 `yaml:"prop_diameter"` // ft
	PropEfficiency  float64 `yaml:"prop_efficiency"`
	PitchSpeed      float64 `yaml:"pitch_speed"` // airspeed at which full pitch is optimal, ft/s
	StaticThreshold float64 `yaml:"static_threshold"`
	IdleRPM         float64 `yaml:"idle_rpm"`
	MaxRPM          float64 `yaml:"max_rpm"`
	BSFC            float64 `yaml:"bsfc"` // lb/hp/hr
	BestMixture     float64 `yaml:"best_mixture"`
}

func (e Engine) Validate() error {
	switch {
	case e.MaxPower <= 0:
		return fmt.Errorf("engine %s: max power must be positive", e.Key())
	case e.PropDiameter <= 0:
		return fmt.Errorf("engine %s: propeller diameter must be positive", e.Key())
	case e.PropEfficiency <= 0 || e.PropEfficiency > 1:
		return fmt.Errorf("engine %s: propeller efficiency must be in (0, 1]", e.Key())
	case e.MaxRPM < e.IdleRPM:
		return fmt.Errorf("engine %s: max rpm below idle", e.Key())
	case !e.Position.IsFinite():
		return fmt.Errorf("engine %s: position not finite", e.Key())
	}
	return nil
}

// Key identifies an engine by name, index and position.
func (e Engine) Key() string {
	return fmt.Sprintf("%s#%d@(%g,%g,%g)", e.Name, e.Index,
		e.Position.X, e.Position.Y, e.Position.Z)
}

func (e Engine) Equal(o Engine) bool {
	return e.Name == o.Name && e.Index == o.Index && e.Position == o.Position
}

// Dedupe drops engines equal to an earlier one, keeping order.
func Dedupe(engines []Engine, lg *log.Logger) []Engine {
	out := make([]Engine, 0, len(engines))
outer:
	for _, e := range engines {
		for _, k := range out {
			if k.Equal(e) {
				lg.Warn("propulsion: duplicate engine dropped", slog.String("engine", e.Key()))
				continue outer
			}
		}
		out = append(out, e)
	}
	return out
}

func (e Engine) axis() vec.Vec3 {
	if a := e.Axis.Normalize(); a != (vec.Vec3{}) {
		return a
	}
	return vec.New(1, 0, 0)
}

func (e Engine) threshold() float64 {
	if e.StaticThreshold > 0 {
		return e.StaticThreshold
	}
	return DefaultStaticThreshold
}

type Input struct {
	Velocity     vec.Vec3 // body-axis air-relative velocity, ft/s
	Density      float64
	DensityRatio float64
	Throttle     float64
	Mixture      float64
	PropPitch    float64
	Fuel         float64 // remaining fuel, lb
}

type Regime int

const (
	Off Regime = iota
	Static
	Cruise
)

func (r Regime) String() string {
	switch r {
	case Static:
		return "static"
	case Cruise:
		return "cruise"
	}
	return "off"
}

// State is the per-step output of one engine.
type State struct {
	Thrust   vec.Vec3 // body axes, lb
	Moment   vec.Vec3 // about the CG, ft-lb
	Power    float64  // shaft power, ft-lb/s
	RPM      float64
	FuelFlow float64 // lb/s
	Regime   Regime
}

// MixtureFactor is the fraction of power available at a mixture setting; it
// peaks at best and falls to zero at fully lean.
func (e Engine) MixtureFactor(m float64) float64 {
	best := e.BestMixture
	if best <= 0 {
		best = 1
	}
	d := (m - best) / best
	return math.Max(0, 1-d*d)
}

// Efficiency is the propeller efficiency at a pitch setting and airspeed.
func (e Engine) Efficiency(pitch, airspeed float64) float64 {
	opt := 1.0
	if e.PitchSpeed > 0 {
		opt = math.Max(0, math.Min(1, airspeed/e.PitchSpeed))
	}
	d := pitch - opt
	return math.Max(0, e.PropEfficiency*(1-0.5*d*d))
}

// Evaluate computes thrust, moment, RPM and fuel flow. It never fails: a
// dead or starved engine returns a zero state.
func (e Engine) Evaluate(in Input) State {
	if in.Fuel <= 0 || in.Mixture <= 0 || in.Throttle <= 0 {
		return State{}
	}

	maxPower := e.MaxPower * hpToFtLbPerSec
	sigma := in.DensityRatio
	power := maxPower * in.Throttle * e.MixtureFactor(in.Mixture) *
		(sigma - (1-sigma)/altitudeLossFactor)
	if !(power > 0) {
		return State{}
	}

	axis := e.axis()
	vAxial := in.Velocity.Dot(axis)

	var thrust float64
	var regime Regime
	if vAxial < e.threshold() || vAxial < minAirspeed {
		area := math.Pi * e.PropDiameter * e.PropDiameter / 4
		thrust = math.Cbrt(power * power * 2 * in.Density * area)
		regime = Static
	} else {
		thrust = e.Efficiency(in.PropPitch, vAxial) * power / vAxial
		regime = Cruise
	}

	f := axis.Mul(thrust)
	frac := power / maxPower
	return State{
		Thrust:   f,
		Moment:   e.Position.Cross(f),
		Power:    power,
		RPM:      e.IdleRPM + (e.MaxRPM-e.IdleRPM)*math.Sqrt(math.Min(1, frac)),
		FuelFlow: e.BSFC * power / hpToFtLbPerSec / 3600,
		Regime:   regime,
	}
}

// Total sums the thrust and moment of several engine states.
func Total(states []State) (force, moment vec.Vec3, fuelFlow float64) {
	for _, s := range states {
		force = force.Add(s.Thrust)
		moment = moment.Add(s.Moment)
		fuelFlow += s.FuelFlow
	}
	return
}
