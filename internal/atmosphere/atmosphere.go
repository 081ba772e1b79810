// Package atmosphere implements the 1976 U.S. Standard Atmosphere below
// 65,617 ft in English units: a linear temperature lapse in the troposphere
// and an isothermal layer above the tropopause.
package atmosphere

import (
	"fmt"
	"math"

	"github.com/san-kum/sixdof/internal/dynamo"
)

const (
	SeaLevelTemperature = 518.67     // R
	SeaLevelPressure    = 2116.22    // lb/ft^2
	SeaLevelDensity     = 0.00237689 // slug/ft^3
	LapseRate           = 0.00356616 // R/ft
	TropopauseAltitude  = 36089.24   // ft
	GasConstant         = 1716.49    // ft*lb/(slug*R)
	Gamma               = 1.4
	StandardGravity     = 32.174   // ft/s^2
	EarthRadius         = 20925646 // ft
)

var (
	tropopauseTemperature = SeaLevelTemperature - LapseRate*TropopauseAltitude
	pressureExponent      = StandardGravity / (LapseRate * GasConstant)
	tropopausePressure    = SeaLevelPressure * math.Pow(tropopauseTemperature/SeaLevelTemperature, pressureExponent)
)

// Conditions are the ambient properties at one altitude.
type Conditions struct {
	Altitude     float64
	Temperature  float64
	Pressure     float64
	Density      float64
	SpeedOfSound float64
	Gravity      float64
	DensityRatio float64
}

// At returns the standard-atmosphere conditions at altitude (ft). Negative
// altitudes extrapolate the troposphere. An altitude whose density is not
// a positive finite number is an error.
func At(altitude float64) (Conditions, error) {
	if math.IsNaN(altitude) || math.IsInf(altitude, 0) {
		return Conditions{}, fmt.Errorf("%w: %v ft", dynamo.ErrAtmosphere, altitude)
	}

	var temp, pressure float64
	if altitude <= TropopauseAltitude {
		temp = SeaLevelTemperature - LapseRate*altitude
		pressure = SeaLevelPressure * math.Pow(temp/SeaLevelTemperature, pressureExponent)
	} else {
		temp = tropopauseTemperature
		pressure = tropopausePressure * math.Exp(-StandardGravity*(altitude-TropopauseAltitude)/(GasConstant*temp))
	}

	density := pressure / (GasConstant * temp)
	if !(density > 0) || math.IsInf(density, 0) {
		return Conditions{}, fmt.Errorf("%w: density %v at %v ft", dynamo.ErrAtmosphere, density, altitude)
	}

	r := EarthRadius / (EarthRadius + altitude)
	return Conditions{
		Altitude:     altitude,
		Temperature:  temp,
		Pressure:     pressure,
		Density:      density,
		SpeedOfSound: math.Sqrt(Gamma * GasConstant * temp),
		Gravity:      StandardGravity * r * r,
		DensityRatio: density / SeaLevelDensity,
	}, nil
}

// MustAt is At for altitudes known to be valid, such as configuration
// constants. It panics on error.
func MustAt(altitude float64) Conditions {
	c, err := At(altitude)
	if err != nil {
		panic(err)
	}
	return c
}
