package dynamo

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// System is an ODE right-hand side. Controls are bound by the caller and
// held constant over a step.
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Integrator interface {
	Name() string
	Step(dyn System, x State, t float64, dt float64) State
}

// SystemFunc adapts a plain function to the System interface.
type SystemFunc struct {
	Dim int
	F   func(x State, t float64) State
}

func (f SystemFunc) Derive(x State, t float64) State { return f.F(x, t) }
func (f SystemFunc) StateDim() int                   { return f.Dim }
