package aircraft

import (
	"fmt"
	"sort"

	"github.com/san-kum/sixdof/internal/aero"
	"github.com/san-kum/sixdof/internal/control"
	"github.com/san-kum/sixdof/internal/gear"
	"github.com/san-kum/sixdof/internal/propulsion"
	"github.com/san-kum/sixdof/internal/vec"
)

var presets = map[string]func() *Data{
	"navion": Navion,
}

// ByName returns a fresh copy of a built-in aircraft.
func ByName(name string) (*Data, error) {
	f, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown aircraft: %s", name)
	}
	return f(), nil
}

func Names() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Navion is a Ryan Navion: a single-engine four-seat low wing.
func Navion() *Data {
	flapDrag, err := aero.NewTable(control.Flaps,
		[]float64{-0.1, 0, 0.1, 0.2},
		[]float64{0, 0.35, 0.7},
		[][]float64{
			{0.08, 0.10, 0.13},
			{0.09, 0.11, 0.14},
			{0.11, 0.13, 0.16},
			{0.14, 0.16, 0.19},
		})
	if err != nil {
		panic(err)
	}

	c := aero.Constant
	return &Data{
		Name: "navion",
		Geometry: aero.Geometry{
			Area:  184,
			Span:  33.4,
			Chord: 5.7,
		},
		Derivatives: aero.Derivatives{
			aero.CL0:    c(0.25),
			aero.CLa:    c(4.44),
			aero.CLq:    c(3.8),
			aero.CLde:   c(0.355),
			aero.CLdf:   c(0.7),
			aero.CD0:    c(0.025),
			aero.CDa:    c(0.33),
			aero.CDa2:   c(0),
			aero.CDdf:   aero.Interpolated(flapDrag),
			aero.CDgear: c(0.004),
			aero.CYb:    c(-0.564),
			aero.CYp:    c(0),
			aero.CYr:    c(0),
			aero.CYdr:   c(0.157),
			aero.Clb:    c(-0.074),
			aero.Clp:    c(-0.41),
			aero.Clr:    c(0.107),
			aero.Clda:   c(-0.134),
			aero.Cldr:   c(0.107),
			aero.Cm0:    c(0.02),
			aero.Cma:    c(-0.683),
			aero.Cmq:    c(-9.96),
			aero.Cmde:   c(-0.923),
			aero.Cmdf:   c(-0.1),
			aero.Cnb:    c(0.071),
			aero.Cnp:    c(-0.0575),
			aero.Cnr:    c(-0.125),
			aero.Cnda:   c(-0.0035),
			aero.Cndr:   c(-0.072),
		},
		Mass: Mass{
			Empty:   1780,
			Fuel:    240,
			Payload: 730,
			Jx:      1048,
			Jy:      3000,
			Jz:      3530,
		},
		Engines: []propulsion.Engine{{
			Name:           "IO-470",
			Position:       vec.New(5, 0, 0),
			MaxPower:       205,
			PropDiameter:   6.5,
			PropEfficiency: 0.8,
			PitchSpeed:     250,
			IdleRPM:        600,
			MaxRPM:         2600,
			BSFC:           0.45,
			BestMixture:    1,
		}},
		Gear: []gear.Leg{
			navionLeg("nose", vec.New(4.5, 0, 3.2), 0.03, 0, 0),
			navionLeg("left", vec.New(-0.8, -5.5, 3.2), 0.02, 0.5, 800),
			navionLeg("right", vec.New(-0.8, 5.5, 3.2), 0.02, 0.5, 800),
		},
	}
}

func navionLeg(name string, pos vec.Vec3, rolling, braking, maxBrake float64) gear.Leg {
	return gear.Leg{
		Name:            name,
		Position:        pos,
		Spring:          3000,
		Damping:         400,
		MaxCompression:  1.5,
		RollingFriction: rolling,
		BrakingFriction: braking,
		MaxBrakeForce:   maxBrake,
		StaticVelocity:  1,
	}
}
