package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/sixdof/internal/control"
	"github.com/san-kum/sixdof/internal/dynamo"
	"github.com/san-kum/sixdof/internal/eom"
)

var (
	Longitudinal = []int{eom.U, eom.W, eom.Q, eom.Theta}
	Lateral      = []int{eom.V, eom.P, eom.R, eom.Phi}
)

const fdStep = 1e-5

// Linearize returns the state matrix of the subset of states at (x, u).
func Linearize(model *eom.Model, x dynamo.State, u control.Vector, states []int) (*mat.Dense, error) {
	if len(states) == 0 {
		return nil, errors.New("analysis: no states to linearize")
	}
	n := len(states)
	a := mat.NewDense(n, n, nil)

	for j, sj := range states {
		if sj < 0 || sj >= eom.StateDim {
			return nil, fmt.Errorf("analysis: state index %d out of range", sj)
		}
		h := fdStep * math.Max(1, math.Abs(x[sj]))

		xp := x.Clone()
		xp[sj] += h
		dp, err := model.Derive(xp, u)
		if err != nil {
			return nil, err
		}
		xm := x.Clone()
		xm[sj] -= h
		dm, err := model.Derive(xm, u)
		if err != nil {
			return nil, err
		}

		for i, si := range states {
			a.Set(i, j, (dp[si]-dm[si])/(2*h))
		}
	}
	return a, nil
}

// Mode is one eigenvalue of a state matrix. Oscillatory modes appear once,
// with a positive imaginary part.
type Mode struct {
	Eigenvalue complex128
	// Frequency is the undamped natural frequency in rad/s.
	Frequency float64
	Damping   float64
	// Period is zero for non-oscillatory modes.
	Period float64
	// HalfTime is the time to half amplitude, negative for unstable modes
	// where its magnitude is the time to double.
	HalfTime float64
}

func (m Mode) Oscillatory() bool { return imag(m.Eigenvalue) > 0 }

func (m Mode) Stable() bool { return real(m.Eigenvalue) < 0 }

func (m Mode) String() string {
	if m.Oscillatory() {
		return fmt.Sprintf("wn=%.3f rad/s zeta=%.3f T=%.2fs", m.Frequency, m.Damping, m.Period)
	}
	return fmt.Sprintf("lambda=%.4f t_half=%.2fs", real(m.Eigenvalue), m.HalfTime)
}

// Modes factors a and returns its modes sorted by descending frequency.
func Modes(a *mat.Dense) ([]Mode, error) {
	var eig mat.Eigen
	if ok := eig.Factorize(a, mat.EigenNone); !ok {
		return nil, errors.New("analysis: eigen decomposition failed")
	}

	var modes []Mode
	for _, ev := range eig.Values(nil) {
		if imag(ev) < 0 {
			continue
		}
		wn := cmplx.Abs(ev)
		m := Mode{Eigenvalue: ev, Frequency: wn}
		if wn > 0 {
			m.Damping = -real(ev) / wn
		}
		if imag(ev) > 0 {
			m.Period = 2 * math.Pi / imag(ev)
		}
		if real(ev) != 0 {
			m.HalfTime = -math.Ln2 / real(ev)
		}
		modes = append(modes, m)
	}
	sort.Slice(modes, func(i, j int) bool { return modes[i].Frequency > modes[j].Frequency })
	return modes, nil
}
