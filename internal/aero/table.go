package aero

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/sixdof/internal/control"
)

// Table is a 2-D grid of a stability derivative over angle of attack and
// one control deflection. Values[i][j] is the value at Alpha[i] and
// Deflection[j]. Both axes must be strictly increasing.
//
// Lookups interpolate with piecewise cubic Hermite segments whose slopes are
// central differences (the Catmull-Rom kernel on a uniform grid), applied
// first along deflection and then along alpha. The result equals the
// tabulated value at every node. An axis with two points interpolates
// linearly and one with a single point is constant.
//
// Queries outside the grid are clamped to the nearest edge.
type Table struct {
	Control    control.ID  `yaml:"control"`
	Alpha      []float64   `yaml:"alpha"`
	Deflection []float64   `yaml:"deflection"`
	Values     [][]float64 `yaml:"values"`
}

func NewTable(id control.ID, alpha, deflection []float64, values [][]float64) (*Table, error) {
	t := &Table{Control: id, Alpha: alpha, Deflection: deflection, Values: values}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table) Validate() error {
	if len(t.Alpha) == 0 {
		return fmt.Errorf("table: empty alpha axis")
	}
	if len(t.Deflection) == 0 {
		// A table over alpha only uses a single implicit deflection column.
		t.Deflection = []float64{0}
	}
	if err := increasing("alpha", t.Alpha); err != nil {
		return err
	}
	if err := increasing("deflection", t.Deflection); err != nil {
		return err
	}
	if len(t.Values) != len(t.Alpha) {
		return fmt.Errorf("table: %d rows for %d alpha points", len(t.Values), len(t.Alpha))
	}
	for i, row := range t.Values {
		if len(row) != len(t.Deflection) {
			return fmt.Errorf("table: row %d has %d values for %d deflection points",
				i, len(row), len(t.Deflection))
		}
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("table: row %d has a non-finite value", i)
			}
		}
	}
	return nil
}

func increasing(name string, xs []float64) error {
	for i := 1; i < len(xs); i++ {
		if !(xs[i] > xs[i-1]) {
			return fmt.Errorf("table: %s axis not strictly increasing at index %d", name, i)
		}
	}
	return nil
}

// At returns the interpolated value and whether either coordinate had to
// be clamped to the grid.
func (t *Table) At(alpha, deflection float64) (float64, bool) {
	a, ca := clamp(t.Alpha, alpha)
	d, cd := clamp(t.Deflection, deflection)

	row := func(i int) float64 {
		return hermite(t.Deflection, func(j int) float64 { return t.Values[i][j] }, d)
	}
	return hermite(t.Alpha, row, a), ca || cd
}

func clamp(xs []float64, x float64) (float64, bool) {
	lo, hi := xs[0], xs[len(xs)-1]
	switch {
	case math.IsNaN(x):
		return lo, true
	case x < lo:
		return lo, true
	case x > hi:
		return hi, true
	}
	return x, false
}

// hermite interpolates the samples y(0..n-1) taken at xs at a point x
// inside [xs[0], xs[n-1]].
func hermite(xs []float64, y func(int) float64, x float64) float64 {
	n := len(xs)
	if n == 1 {
		return y(0)
	}

	// Segment i spans xs[i]..xs[i+1].
	i := sort.SearchFloat64s(xs, x) - 1
	if i < 0 {
		i = 0
	}
	if i > n-2 {
		i = n - 2
	}

	y0, y1 := y(i), y(i+1)
	h := xs[i+1] - xs[i]
	s := (x - xs[i]) / h
	if s == 0 {
		return y0
	}
	if s == 1 {
		return y1
	}

	secant := (y1 - y0) / h
	m0, m1 := secant, secant
	if i > 0 {
		m0 = (y1 - y(i-1)) / (xs[i+1] - xs[i-1])
	}
	if i+2 < n {
		m1 = (y(i+2) - y0) / (xs[i+2] - xs[i])
	}

	s2 := s * s
	s3 := s2 * s
	h00 := 2*s3 - 3*s2 + 1
	h10 := s3 - 2*s2 + s
	h01 := -2*s3 + 3*s2
	h11 := s3 - s2
	return h00*y0 + h10*h*m0 + h01*y1 + h11*h*m1
}
