// Package trim finds control and attitude settings for which the aircraft
// is in steady, unaccelerated flight.
package trim

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/sixdof/internal/control"
	"github.com/san-kum/sixdof/internal/dynamo"
	"github.com/san-kum/sixdof/internal/eom"
	"github.com/san-kum/sixdof/internal/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// Target is the flight condition to trim for. Climb is the climb rate in
// ft/s; Bank is the bank angle held with zero body rates, producing a
// steady sideslip when non-zero.
type Target struct {
	Airspeed float64 `yaml:"airspeed"`
	Altitude float64 `yaml:"altitude"`
	Climb    float64 `yaml:"climb"`
	Heading  float64 `yaml:"heading"`
	Bank     float64 `yaml:"bank"`
	Fuel     float64 `yaml:"fuel"`
}

func (t Target) Validate() error {
	if !(t.Airspeed > 0) {
		return fmt.Errorf("trim: airspeed must be positive, got %g", t.Airspeed)
	}
	if math.Abs(t.Climb) >= t.Airspeed {
		return fmt.Errorf("trim: climb rate %g not below airspeed %g", t.Climb, t.Airspeed)
	}
	if t.Fuel < 0 {
		return fmt.Errorf("trim: negative fuel")
	}
	return nil
}

type Method int

const (
	Newton Method = iota
	Simplex
)

func (m Method) String() string {
	if m == Simplex {
		return "simplex"
	}
	return "newton"
}

func ParseMethod(s string) (Method, error) {
	switch s {
	case "", "newton":
		return Newton, nil
	case "simplex":
		return Simplex, nil
	}
	return Newton, fmt.Errorf("unknown trim method: %s", s)
}

type Options struct {
	Method Method
	// Symmetric trims only the longitudinal axes.
	Symmetric     bool
	Tolerance     float64
	MaxIterations int
	Logger        *log.Logger
}

const (
	DefaultTolerance     = 1e-6
	DefaultMaxIterations = 100

	fdStep   = 1e-6
	maxAngle = 0.5 // rad, bound on alpha and beta
)

func (o Options) withDefaults() Options {
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	return o
}

// Result is the outcome of a trim. When Converged is false the controls and
// state are the best found and must not be used as a starting condition.
type Result struct {
	Target     Target
	Method     Method
	Converged  bool
	Controls   control.Vector
	State      dynamo.State
	Condition  eom.Condition
	History    []float64
	Iterations int
	Residual   float64
}

// problem maps the free variables onto a flight condition and controls.
// Variables are alpha, elevator, throttle and, unless symmetric, beta,
// aileron, rudder.
type problem struct {
	model  *eom.Model
	target Target
	base   control.Vector
	limits control.Limits
	n      int
	err    error
}

func (p *problem) lower(i int) float64 {
	switch i {
	case 0, 3:
		return -maxAngle
	case 1:
		return p.limits[control.Elevator].Min
	case 2:
		return p.limits[control.Throttle].Min
	case 4:
		return p.limits[control.Aileron].Min
	}
	return p.limits[control.Rudder].Min
}

func (p *problem) upper(i int) float64 {
	switch i {
	case 0, 3:
		return maxAngle
	case 1:
		return p.limits[control.Elevator].Max
	case 2:
		return p.limits[control.Throttle].Max
	case 4:
		return p.limits[control.Aileron].Max
	}
	return p.limits[control.Rudder].Max
}

func (p *problem) clamp(x []float64) {
	for i := range x {
		x[i] = math.Max(p.lower(i), math.Min(p.upper(i), x[i]))
	}
}

func (p *problem) decode(x []float64) (eom.Condition, control.Vector) {
	t := p.target
	c := eom.Condition{
		Airspeed: t.Airspeed,
		Alpha:    x[0],
		Climb:    math.Asin(t.Climb / t.Airspeed),
		Bank:     t.Bank,
		Heading:  t.Heading,
		Altitude: t.Altitude,
		Fuel:     t.Fuel,
	}
	u := p.base.Clone()
	u.Elevator = x[1]
	for i := range u.Throttle {
		u.Throttle[i] = x[2]
	}
	if p.n == 6 {
		c.Beta = x[3]
		u.Aileron = x[4]
		u.Rudder = x[5]
	}
	return c, u
}

// residual returns the accelerations that must vanish. A model error is
// kept and reported as an infinite residual.
func (p *problem) residual(x []float64) []float64 {
	c, u := p.decode(x)
	d, err := p.model.Derive(c.State(), u)
	r := make([]float64, p.n)
	if err != nil {
		if p.err == nil {
			p.err = err
		}
		for i := range r {
			r[i] = math.Inf(1)
		}
		return r
	}
	r[0], r[1], r[2] = d[eom.U], d[eom.W], d[eom.Q]
	if p.n == 6 {
		r[3], r[4], r[5] = d[eom.V], d[eom.P], d[eom.R]
	}
	return r
}

// Solve trims model for target starting from base controls. It returns
// ErrNotConverged together with the best result when the tolerance is not
// met within the iteration budget.
func Solve(model *eom.Model, target Target, base control.Vector, opts Options) (*Result, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	if base.Engines() != model.Engines() {
		base = control.NewVector(model.Engines())
	}

	p := &problem{
		model:  model,
		target: target,
		base:   base,
		limits: model.Aircraft().ControlLimits(),
		n:      6,
	}
	if opts.Symmetric {
		p.n = 3
	}

	x := make([]float64, p.n)
	x[0] = 0.05
	x[2] = 0.5
	p.clamp(x)

	var res *Result
	var err error
	switch opts.Method {
	case Simplex:
		res, err = p.simplex(x, opts)
	default:
		res, err = p.newton(x, opts)
	}
	if err != nil {
		return nil, err
	}
	if p.err != nil {
		return nil, p.err
	}
	res.Target = target
	res.Method = opts.Method

	lg := opts.Logger
	if !res.Converged {
		lg.Warn("trim did not converge", slog.String("method", opts.Method.String()),
			slog.Float64("residual", res.Residual), slog.Int("iterations", res.Iterations))
		return res, fmt.Errorf("%w: residual %.3g after %d iterations",
			dynamo.ErrNotConverged, res.Residual, res.Iterations)
	}
	lg.Info("trim converged", slog.String("method", opts.Method.String()),
		slog.Float64("alpha", res.Condition.Alpha),
		slog.Float64("elevator", res.Controls.Elevator),
		slog.Float64("throttle", res.Controls.Value(control.Throttle, 0)),
		slog.Int("iterations", res.Iterations))
	return res, nil
}

func (p *problem) result(x []float64, history []float64, iterations int, tol float64) *Result {
	c, u := p.decode(x)
	norm := floats.Norm(p.residual(x), 2)
	return &Result{
		Converged:  norm < tol,
		Controls:   u,
		State:      c.State(),
		Condition:  c,
		History:    history,
		Iterations: iterations,
		Residual:   norm,
	}
}

func (p *problem) newton(x []float64, opts Options) (*Result, error) {
	n := p.n
	r := p.residual(x)
	norm := floats.Norm(r, 2)
	var history []float64

	iter := 0
	for ; iter < opts.MaxIterations; iter++ {
		history = append(history, norm)
		opts.Logger.Debug("trim iteration", slog.Int("iteration", iter), slog.Float64("residual", norm))
		if norm < opts.Tolerance || p.err != nil {
			break
		}

		jac := p.jacobian(x)
		var dx mat.VecDense
		if err := dx.SolveVec(jac, mat.NewVecDense(n, floats.ScaleTo(make([]float64, n), -1, r))); err != nil {
			// A singular Jacobian usually means a free variable sits on a limit.
			if !errors.As(err, new(mat.Condition)) {
				break
			}
		}

		improved := false
		step := 1.0
		for k := 0; k < 30; k++ {
			xn := make([]float64, n)
			for i := range xn {
				xn[i] = x[i] + step*dx.AtVec(i)
			}
			p.clamp(xn)
			rn := p.residual(xn)
			if nn := floats.Norm(rn, 2); nn < norm {
				x, r, norm = xn, rn, nn
				improved = true
				break
			}
			step /= 2
		}
		if !improved {
			break
		}
	}
	return p.result(x, history, iter, opts.Tolerance), nil
}

func (p *problem) jacobian(x []float64) *mat.Dense {
	n := p.n
	jac := mat.NewDense(n, n, nil)
	xp := make([]float64, n)
	xm := make([]float64, n)
	for j := 0; j < n; j++ {
		copy(xp, x)
		copy(xm, x)
		xp[j] += fdStep
		xm[j] -= fdStep
		rp := p.residual(xp)
		rm := p.residual(xm)
		for i := 0; i < n; i++ {
			jac.Set(i, j, (rp[i]-rm[i])/(2*fdStep))
		}
	}
	return jac
}

func (p *problem) simplex(x []float64, opts Options) (*Result, error) {
	var history []float64
	best := math.Inf(1)
	scratch := make([]float64, p.n)

	prob := optimize.Problem{
		Func: func(v []float64) float64 {
			copy(scratch, v)
			p.clamp(scratch)
			r := p.residual(scratch)
			f := floats.Dot(r, r)
			// Penalize leaving the box so the simplex stays inside it.
			for i := range v {
				f += (v[i] - scratch[i]) * (v[i] - scratch[i])
			}
			if f < best {
				best = f
				history = append(history, math.Sqrt(f))
			}
			return f
		},
	}
	settings := &optimize.Settings{
		MajorIterations: opts.MaxIterations * 50,
		FuncEvaluations: opts.MaxIterations * 200,
		Converger: &optimize.FunctionConverge{
			Absolute:   opts.Tolerance * opts.Tolerance / 100,
			Iterations: 200,
		},
	}
	res, err := optimize.Minimize(prob, x, settings, &optimize.NelderMead{SimplexSize: 0.05})
	if res == nil {
		return nil, fmt.Errorf("trim: simplex: %w", err)
	}
	xs := append([]float64(nil), res.X...)
	p.clamp(xs)
	return p.result(xs, history, res.Stats.MajorIterations, opts.Tolerance), nil
}
