// Package aero computes aerodynamic forces and moments from stability
// derivatives.
package aero

import (
	"log/slog"
	"math"

	"github.com/san-kum/sixdof/internal/control"
	"github.com/san-kum/sixdof/internal/log"
	"github.com/san-kum/sixdof/internal/vec"
)

// Stability derivative identifiers.
const (
	CL0    = "CL0"
	CLa    = "CLa"
	CLq    = "CLq"
	CLde   = "CLde"
	CLdf   = "CLdf"
	CD0    = "CD0"
	CDa    = "CDa"
	CDa2   = "CDa2"
	CDdf   = "CDdf"
	CDgear = "CDgear"
	CYb    = "CYb"
	CYp    = "CYp"
	CYr    = "CYr"
	CYdr   = "CYdr"
	Clb    = "Clb"
	Clp    = "Clp"
	Clr    = "Clr"
	Clda   = "Clda"
	Cldr   = "Cldr"
	Cm0    = "Cm0"
	Cma    = "Cma"
	Cmq    = "Cmq"
	Cmde   = "Cmde"
	Cmdf   = "Cmdf"
	Cnb    = "Cnb"
	Cnp    = "Cnp"
	Cnr    = "Cnr"
	Cnda   = "Cnda"
	Cndr   = "Cndr"
)

// MinAirspeed is the airspeed below which the angle of attack, sideslip and
// non-dimensional rates are taken as zero (ft/s).
const MinAirspeed = 1e-3

type axis int

const (
	lift axis = iota
	drag
	side
	roll
	pitch
	yaw
)

type variable int

const (
	one variable = iota
	alphaVar
	alpha2Var
	betaVar
	pHat
	qHat
	rHat
	elevator
	aileron
	rudder
	flaps
	gear
)

type term struct {
	id   string
	axis axis
	by   variable
}

var terms = []term{
	{CL0, lift, one}, {CLa, lift, alphaVar}, {CLq, lift, qHat}, {CLde, lift, elevator}, {CLdf, lift, flaps},
	{CD0, drag, one}, {CDa, drag, alphaVar}, {CDa2, drag, alpha2Var}, {CDdf, drag, flaps}, {CDgear, drag, gear},
	{CYb, side, betaVar}, {CYp, side, pHat}, {CYr, side, rHat}, {CYdr, side, rudder},
	{Clb, roll, betaVar}, {Clp, roll, pHat}, {Clr, roll, rHat}, {Clda, roll, aileron}, {Cldr, roll, rudder},
	{Cm0, pitch, one}, {Cma, pitch, alphaVar}, {Cmq, pitch, qHat}, {Cmde, pitch, elevator}, {Cmdf, pitch, flaps},
	{Cnb, yaw, betaVar}, {Cnp, yaw, pHat}, {Cnr, yaw, rHat}, {Cnda, yaw, aileron}, {Cndr, yaw, rudder},
}

// Identifiers returns every derivative identifier the model reads.
func Identifiers() []string {
	ids := make([]string, len(terms))
	for i, t := range terms {
		ids[i] = t.id
	}
	return ids
}

// Geometry holds the reference dimensions. ACOffset is the position of the
// aerodynamic reference point relative to the CG in body axes (ft).
type Geometry struct {
	Area     float64  `yaml:"area"`
	Span     float64  `yaml:"span"`
	Chord    float64  `yaml:"chord"`
	ACOffset vec.Vec3 `yaml:"ac_offset"`
}

type Input struct {
	Velocity vec.Vec3 // body-axis air-relative velocity, ft/s
	Rates    vec.Vec3 // p, q, r in rad/s
	Density  float64  // slug/ft^3
	Controls control.Vector
}

type Coefficients struct {
	CL, CD, CY float64
	Cl, Cm, Cn float64
}

type Output struct {
	Force  vec.Vec3 // body axes, lb
	Moment vec.Vec3 // about the CG, ft-lb

	Airspeed, Alpha, Beta float64
	Qbar                  float64
	Coefficients          Coefficients

	// Extrapolated lists the identifiers whose table lookups were clamped.
	Extrapolated []string
}

type Model struct {
	geom    Geometry
	derivs  Derivatives
	present []bool
	missing []string
}

// NewModel builds a model over the given derivatives. Identifiers without an
// entry contribute nothing; each is logged once here.
func NewModel(d Derivatives, g Geometry, lg *log.Logger) *Model {
	m := &Model{geom: g, derivs: d, present: make([]bool, len(terms))}
	for i, t := range terms {
		if _, ok := d[t.id]; ok {
			m.present[i] = true
		} else {
			m.missing = append(m.missing, t.id)
		}
	}
	if len(m.missing) > 0 {
		lg.Warn("aero: missing stability derivatives contribute zero",
			slog.Any("ids", m.missing))
	}
	return m
}

func (m *Model) Geometry() Geometry { return m.geom }

func (m *Model) Missing() []string { return m.missing }

// Evaluate is a pure function of its input.
func (m *Model) Evaluate(in Input) Output {
	u, v, w := in.Velocity.X, in.Velocity.Y, in.Velocity.Z
	V := in.Velocity.Norm()

	var out Output
	out.Airspeed = V
	out.Qbar = 0.5 * in.Density * V * V

	var vars [gear + 1]float64
	vars[one] = 1
	if V >= MinAirspeed {
		out.Alpha = math.Atan2(w, u)
		out.Beta = math.Asin(math.Max(-1, math.Min(1, v/V)))
		vars[pHat] = in.Rates.X * m.geom.Span / (2 * V)
		vars[qHat] = in.Rates.Y * m.geom.Chord / (2 * V)
		vars[rHat] = in.Rates.Z * m.geom.Span / (2 * V)
	}
	vars[alphaVar] = out.Alpha
	vars[alpha2Var] = out.Alpha * out.Alpha
	vars[betaVar] = out.Beta
	vars[elevator] = in.Controls.Elevator
	vars[aileron] = in.Controls.Aileron
	vars[rudder] = in.Controls.Rudder
	vars[flaps] = in.Controls.Flaps
	vars[gear] = in.Controls.Gear

	var c [yaw + 1]float64
	for i, t := range terms {
		if !m.present[i] {
			continue
		}
		k, clamped := m.derivs[t.id].Eval(out.Alpha, in.Controls)
		if clamped {
			out.Extrapolated = append(out.Extrapolated, t.id)
		}
		c[t.axis] += k * vars[t.by]
	}
	out.Coefficients = Coefficients{
		CL: c[lift], CD: c[drag], CY: c[side],
		Cl: c[roll], Cm: c[pitch], Cn: c[yaw],
	}

	qS := out.Qbar * m.geom.Area
	L, D, Y := c[lift]*qS, c[drag]*qS, c[side]*qS
	sa, ca := math.Sincos(out.Alpha)
	out.Force = vec.Vec3{
		X: -D*ca + L*sa,
		Y: Y,
		Z: -D*sa - L*ca,
	}

	ref := vec.Vec3{
		X: c[roll] * qS * m.geom.Span,
		Y: c[pitch] * qS * m.geom.Chord,
		Z: c[yaw] * qS * m.geom.Span,
	}
	out.Moment = ref.Add(m.geom.ACOffset.Cross(out.Force))
	return out
}
