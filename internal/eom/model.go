package eom

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/sixdof/internal/aero"
	"github.com/san-kum/sixdof/internal/aircraft"
	"github.com/san-kum/sixdof/internal/atmosphere"
	"github.com/san-kum/sixdof/internal/control"
	"github.com/san-kum/sixdof/internal/dynamo"
	"github.com/san-kum/sixdof/internal/gear"
	"github.com/san-kum/sixdof/internal/log"
	"github.com/san-kum/sixdof/internal/propulsion"
	"github.com/san-kum/sixdof/internal/vec"
)

// Model evaluates forces, moments and state derivatives for one aircraft.
// The only mutable part is the committed gear history, so a Model must not
// be shared between concurrently running simulations.
type Model struct {
	data    *aircraft.Data
	aero    *aero.Model
	engines []propulsion.Engine
	gear    gear.Gear
	inertia [3][3]float64
	invI    [3][3]float64
	history []gear.History
	log     *log.Logger
}

// New builds a model. Terrain may be nil for flat ground at sea level.
func New(d *aircraft.Data, terrain gear.Terrain, lg *log.Logger) (*Model, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	invI, err := d.Mass.InverseInertia()
	if err != nil {
		return nil, err
	}
	if terrain == nil {
		terrain = gear.Flat(0)
	}

	geom, engines, legs := d.AboutCG()
	m := &Model{
		data:    d,
		aero:    aero.NewModel(d.Derivatives, geom, lg),
		engines: propulsion.Dedupe(engines, lg),
		gear:    gear.Gear{Legs: legs, Terrain: terrain},
		invI:    invI,
		history: make([]gear.History, len(legs)),
		log:     lg,
	}
	mp := d.Mass
	m.inertia = [3][3]float64{
		{mp.Jx, 0, -mp.Jxz},
		{0, mp.Jy, 0},
		{-mp.Jxz, 0, mp.Jz},
	}
	return m, nil
}

func (m *Model) Aircraft() *aircraft.Data { return m.data }

func (m *Model) Engines() int { return len(m.engines) }

func (m *Model) Terrain() gear.Terrain { return m.gear.Terrain }

func (m *Model) StateDim() int { return StateDim }

// Outputs are the derived quantities recorded with each sample.
type Outputs struct {
	Airspeed float64 `json:"airspeed" msgpack:"airspeed"`
	Mach     float64 `json:"mach" msgpack:"mach"`
	Alpha    float64 `json:"alpha" msgpack:"alpha"`
	Beta     float64 `json:"beta" msgpack:"beta"`
	Qbar     float64 `json:"qbar" msgpack:"qbar"`
	Nx       float64 `json:"nx" msgpack:"nx"`
	Ny       float64 `json:"ny" msgpack:"ny"`
	Nz       float64 `json:"nz" msgpack:"nz"`
	Thrust   float64 `json:"thrust" msgpack:"thrust"`
	FuelFlow float64 `json:"fuel_flow" msgpack:"fuel_flow"`
	OnGround bool    `json:"on_ground" msgpack:"on_ground"`
}

// Snapshot is one full evaluation of the model.
type Snapshot struct {
	Atmosphere atmosphere.Conditions
	Aero       aero.Output
	Engines    []propulsion.State
	Gear       []gear.ContactState

	// Force and Moment sum every source except gravity, in body axes
	// about the CG.
	Force   vec.Vec3
	Moment  vec.Vec3
	Gravity vec.Vec3
	Mass    float64

	Derivative dynamo.State
	Outputs    Outputs
}

// Evaluate computes the full model at state x with controls u.
func (m *Model) Evaluate(x dynamo.State, u control.Vector) (*Snapshot, error) {
	if len(x) != StateDim {
		return nil, fmt.Errorf("%w: state has %d elements", dynamo.ErrDimensionMismatch, len(x))
	}
	atm, err := atmosphere.At(x[Alt])
	if err != nil {
		return nil, err
	}

	fuel := math.Max(0, x[Fuel])
	s := &Snapshot{
		Atmosphere: atm,
		Mass:       m.data.Mass.MassAt(fuel),
		Engines:    make([]propulsion.State, len(m.engines)),
	}

	vel := vec.New(x[U], x[V], x[W])
	rates := vec.New(x[P], x[Q], x[R])
	att := vec.NewAttitude(x[Phi], x[Theta], x[Psi])

	s.Aero = m.aero.Evaluate(aero.Input{
		Velocity: vel,
		Rates:    rates,
		Density:  atm.Density,
		Controls: u,
	})

	for i, e := range m.engines {
		s.Engines[i] = e.Evaluate(propulsion.Input{
			Velocity:     vel,
			Density:      atm.Density,
			DensityRatio: atm.DensityRatio,
			Throttle:     u.Value(control.Throttle, i),
			Mixture:      u.Value(control.Mixture, i),
			PropPitch:    u.Value(control.PropPitch, i),
			Fuel:         fuel,
		})
	}
	thrust, thrustMoment, fuelFlow := propulsion.Total(s.Engines)

	var gearForce, gearMoment vec.Vec3
	s.Gear, gearForce, gearMoment = m.gear.Evaluate(gearInput(x, att, u), m.history)

	s.Force = s.Aero.Force.Add(thrust).Add(gearForce)
	s.Moment = s.Aero.Moment.Add(thrustMoment).Add(gearMoment)

	weight := s.Mass * atm.Gravity
	sphi, cphi := math.Sincos(x[Phi])
	sth, cth := math.Sincos(x[Theta])
	s.Gravity = vec.New(-weight*sth, weight*sphi*cth, weight*cphi*cth)

	s.Derivative = m.derivative(x, s, att, rates, fuelFlow, fuel)

	onGround := false
	for _, c := range s.Gear {
		onGround = onGround || c.Touching
	}
	s.Outputs = Outputs{
		Airspeed: s.Aero.Airspeed,
		Mach:     s.Aero.Airspeed / atm.SpeedOfSound,
		Alpha:    s.Aero.Alpha,
		Beta:     s.Aero.Beta,
		Qbar:     s.Aero.Qbar,
		Nx:       s.Force.X / weight,
		Ny:       s.Force.Y / weight,
		Nz:       -s.Force.Z / weight,
		Thrust:   thrust.Norm(),
		FuelFlow: fuelFlow,
		OnGround: onGround,
	}
	return s, nil
}

func (m *Model) derivative(x dynamo.State, s *Snapshot, att vec.Attitude, rates vec.Vec3, fuelFlow, fuel float64) dynamo.State {
	d := make(dynamo.State, StateDim)
	p, q, r := x[P], x[Q], x[R]

	f := s.Force.Add(s.Gravity).Mul(1 / s.Mass)
	d[U] = r*x[V] - q*x[W] + f.X
	d[V] = p*x[W] - r*x[U] + f.Y
	d[W] = q*x[U] - p*x[V] + f.Z

	I := &m.inertia
	h := vec.New(
		I[0][0]*p+I[0][1]*q+I[0][2]*r,
		I[1][0]*p+I[1][1]*q+I[1][2]*r,
		I[2][0]*p+I[2][1]*q+I[2][2]*r,
	)
	rhs := s.Moment.Sub(rates.Cross(h))
	inv := &m.invI
	d[P] = inv[0][0]*rhs.X + inv[0][1]*rhs.Y + inv[0][2]*rhs.Z
	d[Q] = inv[1][0]*rhs.X + inv[1][1]*rhs.Y + inv[1][2]*rhs.Z
	d[R] = inv[2][0]*rhs.X + inv[2][1]*rhs.Y + inv[2][2]*rhs.Z

	sphi, cphi := math.Sincos(x[Phi])
	cth := math.Cos(x[Theta])
	tth := math.Tan(x[Theta])
	d[Phi] = p + (q*sphi+r*cphi)*tth
	d[Theta] = q*cphi - r*sphi
	d[Psi] = (q*sphi + r*cphi) / cth

	ned := att.ToEarth(vec.New(x[U], x[V], x[W]))
	d[North] = ned.X
	d[East] = ned.Y
	d[Alt] = -ned.Z

	if fuel > 0 {
		d[Fuel] = -fuelFlow
	}
	return d
}

func gearInput(x dynamo.State, att vec.Attitude, u control.Vector) gear.Input {
	return gear.Input{
		North:    x[North],
		East:     x[East],
		Altitude: x[Alt],
		Attitude: att,
		Velocity: vec.New(x[U], x[V], x[W]),
		Rates:    vec.New(x[P], x[Q], x[R]),
		Brakes:   u.Brakes,
	}
}

// Derive returns dx/dt at x with controls u.
func (m *Model) Derive(x dynamo.State, u control.Vector) (dynamo.State, error) {
	s, err := m.Evaluate(x, u)
	if err != nil {
		return nil, err
	}
	return s.Derivative, nil
}

// Commit advances the per-leg gear history to the accepted state x. It
// returns the names of legs that touched down on this step.
func (m *Model) Commit(x dynamo.State, u control.Vector) []string {
	att := vec.NewAttitude(x[Phi], x[Theta], x[Psi])
	contacts, _, _ := m.gear.Evaluate(gearInput(x, att, u), m.history)

	var touched []string
	for i, c := range contacts {
		var td bool
		m.history[i], td = m.history[i].Advance(c)
		if td {
			touched = append(touched, c.Leg)
			m.log.Info("touchdown", slog.String("leg", c.Leg),
				slog.Float64("rate", c.CompressionRate))
		}
	}
	return touched
}

// History returns a copy of the committed gear history.
func (m *Model) History() []gear.History {
	return append([]gear.History(nil), m.history...)
}

// SetHistory replaces the committed gear history; nil clears it.
func (m *Model) SetHistory(h []gear.History) {
	for i := range m.history {
		m.history[i] = gear.History{}
		if i < len(h) {
			m.history[i] = h[i]
		}
	}
}

// WithControls binds u to the model as a dynamo.System for one step.
func (m *Model) WithControls(u control.Vector) *Bound {
	return &Bound{m: m, u: u}
}

// Bound is the model with fixed controls. A failed evaluation yields a NaN
// derivative and is kept in Err.
type Bound struct {
	m   *Model
	u   control.Vector
	err error
}

func (b *Bound) StateDim() int { return StateDim }

func (b *Bound) Derive(x dynamo.State, t float64) dynamo.State {
	d, err := b.m.Derive(x, b.u)
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		d = make(dynamo.State, StateDim)
		for i := range d {
			d[i] = math.NaN()
		}
	}
	return d
}

func (b *Bound) Err() error { return b.err }
