// Package eom evaluates the rigid-body equations of motion for an aircraft.
package eom

import (
	"fmt"
	"math"

	"github.com/san-kum/sixdof/internal/dynamo"
)

// State vector layout.
const (
	U = iota // body velocities, ft/s
	V
	W
	P // body rates, rad/s
	Q
	R
	Phi // Euler angles, rad
	Theta
	Psi
	North // ft
	East
	Alt   // ft, positive up
	Fuel  // remaining fuel weight, lb
	StateDim
)

var names = [StateDim]string{
	"u", "v", "w", "p", "q", "r", "phi", "theta", "psi",
	"north", "east", "alt", "fuel",
}

// Names returns the state element names in layout order.
func Names() []string { return names[:] }

// MaxPitch is the largest pitch attitude the Euler kinematics accept.
var MaxPitch = 89.9 * math.Pi / 180

// Validate reports a state that cannot be integrated further.
func Validate(x dynamo.State) error {
	if len(x) != StateDim {
		return fmt.Errorf("%w: state has %d elements, want %d",
			dynamo.ErrDimensionMismatch, len(x), StateDim)
	}
	if !x.IsValid() {
		return dynamo.ErrInvalidState
	}
	if math.Abs(x[Theta]) >= MaxPitch {
		return fmt.Errorf("%w: theta=%.2f deg", dynamo.ErrGimbalLock, x[Theta]*180/math.Pi)
	}
	return nil
}

// Condition describes a flight condition from which a state is built.
// Climb is the flight path angle in radians.
type Condition struct {
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

// State returns the state vector for c with zero body rates. Pitch is the
// sum of angle of attack and flight path angle, exact for wings level.
func (c Condition) State() dynamo.State {
	x := make(dynamo.State, StateDim)
	sa, ca := math.Sincos(c.Alpha)
	sb, cb := math.Sincos(c.Beta)
	x[U] = c.Airspeed * ca * cb
	x[V] = c.Airspeed * sb
	x[W] = c.Airspeed * sa * cb
	x[Phi] = c.Bank
	x[Theta] = c.Alpha + c.Climb
	x[Psi] = c.Heading
	x[North] = c.North
	x[East] = c.East
	x[Alt] = c.Altitude
	x[Fuel] = c.Fuel
	return x
}
