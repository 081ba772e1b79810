package metrics

import (
	"math"

	"github.com/san-kum/sixdof/internal/atmosphere"
	"github.com/san-kum/sixdof/internal/eom"
	"github.com/san-kum/sixdof/internal/sim"
)

// AltitudeDeviation is the largest altitude change from the first sample.
type AltitudeDeviation struct {
	name    string
	initial float64
	maxDev  float64
	samples int
}

func NewAltitudeDeviation() *AltitudeDeviation {
	return &AltitudeDeviation{name: "altitude_deviation"}
}

func (a *AltitudeDeviation) Name() string { return a.name }

func (a *AltitudeDeviation) Observe(s sim.Sample) {
	alt := s.State[eom.Alt]
	if a.samples == 0 {
		a.initial = alt
	}
	a.samples++
	a.maxDev = math.Max(a.maxDev, math.Abs(alt-a.initial))
}

func (a *AltitudeDeviation) Value() float64 { return a.maxDev }

func (a *AltitudeDeviation) Reset() {
	a.initial = 0
	a.maxDev = 0
	a.samples = 0
}

// PeakLoadFactor is the largest normal load factor magnitude.
type PeakLoadFactor struct {
	name string
	peak float64
}

func NewPeakLoadFactor() *PeakLoadFactor {
	return &PeakLoadFactor{name: "peak_load_factor"}
}

func (p *PeakLoadFactor) Name() string { return p.name }

func (p *PeakLoadFactor) Observe(s sim.Sample) {
	p.peak = math.Max(p.peak, math.Abs(s.Outputs.Nz))
}

func (p *PeakLoadFactor) Value() float64 { return p.peak }

func (p *PeakLoadFactor) Reset() { p.peak = 0 }

// PitchRatePeak is the largest pitch rate magnitude in rad/s.
type PitchRatePeak struct {
	name string
	peak float64
}

func NewPitchRatePeak() *PitchRatePeak {
	return &PitchRatePeak{name: "pitch_rate_peak"}
}

func (p *PitchRatePeak) Name() string { return p.name }

func (p *PitchRatePeak) Observe(s sim.Sample) {
	p.peak = math.Max(p.peak, math.Abs(s.State[eom.Q]))
}

func (p *PitchRatePeak) Value() float64 { return p.peak }

func (p *PitchRatePeak) Reset() { p.peak = 0 }

// EnergyDrift is the largest relative change of specific energy
// (altitude plus V^2/2g) from the first sample.
type EnergyDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(s sim.Sample) {
	v := s.Outputs.Airspeed
	energy := s.State[eom.Alt] + v*v/(2*atmosphere.StandardGravity)

	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++

	if e.initial != 0 {
		drift := math.Abs(energy-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}

// Default returns a fresh instance of every flight metric.
func Default() []sim.Metric {
	return []sim.Metric{
		NewAltitudeDeviation(),
		NewPeakLoadFactor(),
		NewControlEffort(),
		NewPitchRatePeak(),
		NewEnergyDrift(),
	}
}
