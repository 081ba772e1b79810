// Package gear computes landing gear contact forces.
package gear

import (
	"fmt"
	"math"

	"github.com/san-kum/sixdof/internal/vec"
)

// DefaultMaxCompressionRate bounds the strut rate used for damping (ft/s).
const DefaultMaxCompressionRate = 20.0

// Leg is one landing gear leg. Position is the contact point with the strut
// fully extended, in body axes relative to the CG (ft).
type Leg struct {
	Name     string   `yaml:"name"`
	Position vec.Vec3 `yaml:"position"`

	Spring             float64 `yaml:"spring"`  // lb/ft
	Damping            float64 `yaml:"damping"` // lb/(ft/s)
	MaxCompression     float64 `yaml:"max_compression"`
	MaxCompressionRate float64 `yaml:"max_compression_rate"`

	RollingFriction float64 `yaml:"rolling_friction"`
	BrakingFriction float64 `yaml:"braking_friction"`
	MaxBrakeForce   float64 `yaml:"max_brake_force"` // lb
	StaticVelocity  float64 `yaml:"static_velocity"` // ft/s
}

func (l Leg) Validate() error {
	switch {
	case l.Spring <= 0:
		return fmt.Errorf("gear leg %s: spring constant must be positive", l.Name)
	case l.Damping < 0:
		return fmt.Errorf("gear leg %s: negative damping", l.Name)
	case l.MaxCompression <= 0:
		return fmt.Errorf("gear leg %s: max compression must be positive", l.Name)
	case !l.Position.IsFinite():
		return fmt.Errorf("gear leg %s: position not finite", l.Name)
	}
	return nil
}

func (l Leg) maxRate() float64 {
	if l.MaxCompressionRate > 0 {
		return l.MaxCompressionRate
	}
	return DefaultMaxCompressionRate
}

// History is the committed state of a leg after the previous accepted step.
// It is the only information carried from one step to the next.
type History struct {
	Compression float64
	Touching    bool
}

// Advance returns the history after committing c and whether the leg
// touched down on this step.
func (h History) Advance(c ContactState) (History, bool) {
	return History{Compression: c.Compression, Touching: c.Touching}, c.Touching && !h.Touching
}

// ContactState is the recomputed contact of one leg.
type ContactState struct {
	Leg             string
	Touching        bool
	Compression     float64 // ft, clamped to the leg's maximum
	CompressionRate float64 // ft/s, positive compressing
	Delta           float64 // compression change since the committed history
	NormalForce     float64 // lb
	FrictionForce   float64 // lb
	Force           vec.Vec3
	Moment          vec.Vec3
}

// Input is the aircraft state the gear sees.
type Input struct {
	North, East, Altitude float64
	Attitude              vec.Attitude
	Velocity              vec.Vec3 // body, ft/s
	Rates                 vec.Vec3 // body, rad/s
	Brakes                float64
}

// Evaluate computes the contact of one leg against the terrain.
func (l Leg) Evaluate(in Input, terrain Terrain, h History) ContactState {
	c := ContactState{Leg: l.Name}

	pe := in.Attitude.ToEarth(l.Position)
	north, east := in.North+pe.X, in.East+pe.Y
	legAlt := in.Altitude - pe.Z
	penetration := terrain.Height(north, east) - legAlt
	if !(penetration > 0) {
		return c
	}

	// Velocity of the contact point in the earth frame.
	vb := in.Velocity.Add(in.Rates.Cross(l.Position))
	ve := in.Attitude.ToEarth(vb)

	c.Touching = true
	c.Compression = penetration
	c.CompressionRate = math.Max(-l.maxRate(), math.Min(l.maxRate(), ve.Z))
	if c.Compression >= l.MaxCompression {
		// A bottomed strut cannot compress further.
		c.Compression = l.MaxCompression
		c.CompressionRate = math.Min(0, c.CompressionRate)
	}
	c.Delta = c.Compression - h.Compression

	n := l.Spring*c.Compression + l.Damping*c.CompressionRate
	c.NormalForce = math.Max(0, math.Min(n, l.Spring*l.MaxCompression+l.Damping*l.maxRate()))

	var fe vec.Vec3
	speed := math.Hypot(ve.X, ve.Y)
	if speed > 0 {
		brake := math.Min(in.Brakes*l.BrakingFriction*c.NormalForce, l.MaxBrakeForce)
		if brake < 0 {
			brake = 0
		}
		f := l.RollingFriction*c.NormalForce + brake
		if l.StaticVelocity > 0 && speed < l.StaticVelocity {
			f *= speed / l.StaticVelocity
		}
		c.FrictionForce = f
		fe = vec.New(-f*ve.X/speed, -f*ve.Y/speed, 0)
	}
	fe.Z = -c.NormalForce

	c.Force = in.Attitude.ToBody(fe)
	c.Moment = l.Position.Cross(c.Force)
	return c
}

// Gear is the full set of legs over a terrain.
type Gear struct {
	Legs    []Leg
	Terrain Terrain
}

// Evaluate computes every leg and the summed force and moment. hist is
// indexed like g.Legs; missing entries are treated as airborne.
func (g Gear) Evaluate(in Input, hist []History) (contacts []ContactState, force, moment vec.Vec3) {
	terrain := g.Terrain
	if terrain == nil {
		terrain = Flat(0)
	}
	contacts = make([]ContactState, len(g.Legs))
	for i, l := range g.Legs {
		var h History
		if i < len(hist) {
			h = hist[i]
		}
		c := l.Evaluate(in, terrain, h)
		contacts[i] = c
		if c.Touching {
			force = force.Add(c.Force)
			moment = moment.Add(c.Moment)
		}
	}
	return contacts, force, moment
}
