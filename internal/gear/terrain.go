package gear

import "math"

// Terrain gives the ground elevation (ft, positive up) under a north/east
// position. Providers return their base elevation outside modeled bounds.
type Terrain interface {
	Height(north, east float64) float64
}

// Flat is level ground at a fixed elevation.
type Flat float64

func (f Flat) Height(north, east float64) float64 { return float64(f) }

// Wavy is a synthetic rolling terrain made of two sine waves.
type Wavy struct {
	Base       float64 `yaml:"base"`
	Amplitude  float64 `yaml:"amplitude"`
	Wavelength float64 `yaml:"wavelength"`
}

func (w Wavy) Height(north, east float64) float64 {
	if w.Wavelength <= 0 {
		return w.Base
	}
	k := 2 * math.Pi / w.Wavelength
	return w.Base +
		w.Amplitude*math.Sin(north*k) +
		0.5*w.Amplitude*math.Sin((north+east)*2*k)
}
