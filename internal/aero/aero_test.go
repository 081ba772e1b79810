package aero

import (
	"bytes"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/sixdof/internal/control"
	"github.com/san-kum/sixdof/internal/log"
	"github.com/san-kum/sixdof/internal/vec"
	"gopkg.in/yaml.v3"
)

func flapTable(t *testing.T) *Table {
	t.Helper()
	tab, err := NewTable(control.Flaps,
		[]float64{-0.1, 0, 0.1, 0.2, 0.3},
		[]float64{0, 0.2, 0.4, 0.6},
		[][]float64{
			{0.01, 0.02, 0.04, 0.07},
			{0.02, 0.03, 0.05, 0.08},
			{0.04, 0.05, 0.07, 0.10},
			{0.07, 0.08, 0.10, 0.13},
			{0.11, 0.12, 0.15, 0.19},
		})
	if err != nil {
		t.Fatal(err)
	}
	return tab
}

func TestTableExactAtNodes(t *testing.T) {
	tab := flapTable(t)
	for i, a := range tab.Alpha {
		for j, d := range tab.Deflection {
			got, clamped := tab.At(a, d)
			if clamped {
				t.Errorf("At(%v, %v) reported clamping at a node", a, d)
			}
			if got != tab.Values[i][j] {
				t.Errorf("At(%v, %v) = %v, want %v", a, d, got, tab.Values[i][j])
			}
		}
	}
}

func TestTableClampsOutsideGrid(t *testing.T) {
	tab := flapTable(t)
	tests := []struct {
		alpha, defl float64
		want        float64
	}{
		{-1, 0, 0.01},
		{1, 0.6, 0.19},
		{0, -5, 0.02},
		{0.3, 10, 0.19},
		{math.NaN(), 0, 0.01},
	}
	for _, tt := range tests {
		got, clamped := tab.At(tt.alpha, tt.defl)
		if !clamped {
			t.Errorf("At(%v, %v) not reported as clamped", tt.alpha, tt.defl)
		}
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("At(%v, %v) = %v, want edge value %v", tt.alpha, tt.defl, got, tt.want)
		}
	}
}

func TestTableReproducesLinearData(t *testing.T) {
	// Central-difference slopes are exact for a plane on a uniform grid.
	alpha := []float64{0, 0.1, 0.2, 0.3, 0.4}
	defl := []float64{0, 0.1, 0.2, 0.3}
	vals := make([][]float64, len(alpha))
	for i, a := range alpha {
		vals[i] = make([]float64, len(defl))
		for j, d := range defl {
			vals[i][j] = 2*a - 3*d + 0.5
		}
	}
	tab, err := NewTable(control.Flaps, alpha, defl, vals)
	if err != nil {
		t.Fatal(err)
	}
	for _, q := range [][2]float64{{0.05, 0.05}, {0.17, 0.22}, {0.33, 0.01}} {
		got, _ := tab.At(q[0], q[1])
		want := 2*q[0] - 3*q[1] + 0.5
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("At(%v) = %v, want %v", q, got, want)
		}
	}
}

func TestTableLowOrderAxes(t *testing.T) {
	single, err := NewTable(control.Flaps, []float64{0.1}, nil, [][]float64{{0.7}})
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := single.At(0.1, 0); got != 0.7 {
		t.Errorf("single point table = %v, want 0.7", got)
	}

	two, err := NewTable(control.Flaps, []float64{0, 1}, []float64{0}, [][]float64{{1}, {3}})
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := two.At(0.25, 0); math.Abs(got-1.5) > 1e-12 {
		t.Errorf("two point table = %v, want linear 1.5", got)
	}
}

func TestTableValidate(t *testing.T) {
	tests := []struct {
		name  string
		alpha []float64
		defl  []float64
		vals  [][]float64
	}{
		{"empty", nil, nil, nil},
		{"not increasing", []float64{0, 0}, []float64{0}, [][]float64{{1}, {2}}},
		{"row count", []float64{0, 1}, []float64{0}, [][]float64{{1}}},
		{"column count", []float64{0}, []float64{0, 1}, [][]float64{{1}}},
		{"nan", []float64{0}, []float64{0}, [][]float64{{math.NaN()}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTable(control.Flaps, tt.alpha, tt.defl, tt.vals); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDerivativeYAML(t *testing.T) {
	src := `
CLa: 4.44
CD0:
  control: flaps
  alpha: [0, 0.1]
  deflection: [0, 0.5]
  values: [[0.02, 0.05], [0.03, 0.06]]
`
	var d Derivatives
	if err := yaml.Unmarshal([]byte(src), &d); err != nil {
		t.Fatal(err)
	}
	if d[CLa].Kind() != KindConstant {
		t.Errorf("CLa kind = %v", d[CLa].Kind())
	}
	if v, _ := d[CLa].Eval(0.3, control.NewVector(1)); v != 4.44 {
		t.Errorf("CLa = %v", v)
	}
	if d[CD0].Kind() != KindInterpolated {
		t.Fatalf("CD0 kind = %v", d[CD0].Kind())
	}
	u := control.NewVector(1)
	u.Flaps = 0.5
	if v, _ := d[CD0].Eval(0.1, u); v != 0.06 {
		t.Errorf("CD0 at node = %v, want 0.06", v)
	}

	out, err := yaml.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	var back Derivatives
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatal(err)
	}
	if back[CD0].Kind() != KindInterpolated || back[CLa].Kind() != KindConstant {
		t.Errorf("kinds lost after marshal: %s", out)
	}

	if err := yaml.Unmarshal([]byte("CLa: [1, 2]"), &d); err == nil {
		t.Error("sequence accepted as derivative")
	}
}

func testModel(lg *log.Logger) *Model {
	d := Derivatives{
		CL0: Constant(0.25), CLa: Constant(4.44), CLq: Constant(3.8), CLde: Constant(0.355),
		CD0: Constant(0.025), CDa: Constant(0.33),
		CYb: Constant(-0.564), CYdr: Constant(0.157),
		Clb: Constant(-0.074), Clp: Constant(-0.41), Clr: Constant(0.107),
		Cm0: Constant(0.02), Cma: Constant(-0.683), Cmq: Constant(-9.96), Cmde: Constant(-0.923),
		Cnb: Constant(0.071), Cnp: Constant(-0.0575), Cnr: Constant(-0.125),
	}
	return NewModel(d, Geometry{Area: 184, Span: 33.4, Chord: 5.7}, lg)
}

func TestModelZeroAirspeed(t *testing.T) {
	m := testModel(nil)
	out := m.Evaluate(Input{
		Rates:    vec.New(0.3, -0.2, 0.1),
		Density:  0.0023769,
		Controls: control.NewVector(1),
	})
	if !out.Force.IsFinite() || !out.Moment.IsFinite() {
		t.Fatalf("non-finite output at zero airspeed: %+v", out)
	}
	if out.Force != (vec.Vec3{}) || out.Moment != (vec.Vec3{}) {
		t.Errorf("expected zero force and moment, got %v %v", out.Force, out.Moment)
	}
	if out.Alpha != 0 || out.Beta != 0 {
		t.Errorf("alpha/beta = %v/%v, want 0", out.Alpha, out.Beta)
	}
}

func TestModelLevelFlight(t *testing.T) {
	m := testModel(nil)
	V, alpha := 200.0, 0.05
	in := Input{
		Velocity: vec.New(V*math.Cos(alpha), 0, V*math.Sin(alpha)),
		Density:  0.0023769,
		Controls: control.NewVector(1),
	}
	out := m.Evaluate(in)

	if math.Abs(out.Alpha-alpha) > 1e-12 {
		t.Errorf("alpha = %v, want %v", out.Alpha, alpha)
	}
	wantCL := 0.25 + 4.44*alpha
	if math.Abs(out.Coefficients.CL-wantCL) > 1e-12 {
		t.Errorf("CL = %v, want %v", out.Coefficients.CL, wantCL)
	}
	if out.Force.Z >= 0 {
		t.Errorf("lift should point up (negative Z), got %v", out.Force.Z)
	}
	if out.Force.Y != 0 || out.Moment.X != 0 || out.Moment.Z != 0 {
		t.Errorf("symmetric flight produced lateral output: %v %v", out.Force, out.Moment)
	}

	// Force magnitude matches the lift/drag resultant.
	qS := out.Qbar * 184
	L, D := out.Coefficients.CL*qS, out.Coefficients.CD*qS
	if got := out.Force.Norm(); math.Abs(got-math.Hypot(L, D)) > 1e-9 {
		t.Errorf("|F| = %v, want %v", got, math.Hypot(L, D))
	}
}

func TestModelPitchDamping(t *testing.T) {
	m := testModel(nil)
	in := Input{
		Velocity: vec.New(200, 0, 0),
		Density:  0.0023769,
		Controls: control.NewVector(1),
	}
	base := m.Evaluate(in).Moment.Y
	in.Rates = vec.New(0, 0.2, 0)
	if got := m.Evaluate(in).Moment.Y; got >= base {
		t.Errorf("positive pitch rate should produce nose-down damping: %v >= %v", got, base)
	}
}

func TestModelACOffset(t *testing.T) {
	d := Derivatives{CL0: Constant(0.5)}
	in := Input{Velocity: vec.New(100, 0, 0), Density: 0.002, Controls: control.NewVector(0)}

	at := NewModel(d, Geometry{Area: 100, Span: 30, Chord: 5}, nil).Evaluate(in)
	aft := NewModel(d, Geometry{Area: 100, Span: 30, Chord: 5, ACOffset: vec.New(-1, 0, 0)}, nil).Evaluate(in)

	// Lift 1 ft behind the CG pitches the nose down.
	if at.Moment.Y != 0 {
		t.Errorf("moment with AC at CG = %v", at.Moment.Y)
	}
	if math.Abs(aft.Moment.Y-at.Force.Z) > 1e-9 || aft.Moment.Y >= 0 {
		t.Errorf("moment with aft AC = %v", aft.Moment.Y)
	}
}

func TestModelReportsMissingAndExtrapolated(t *testing.T) {
	var buf bytes.Buffer
	lg := log.NewWriter(&buf, slog.LevelWarn)

	tab, err := NewTable(control.Flaps, []float64{0, 0.1}, []float64{0}, [][]float64{{4}, {4.5}})
	if err != nil {
		t.Fatal(err)
	}
	m := NewModel(Derivatives{CLa: Interpolated(tab)}, Geometry{Area: 1, Span: 1, Chord: 1}, lg)

	if !strings.Contains(buf.String(), "CD0") {
		t.Errorf("missing derivative not logged: %q", buf.String())
	}
	if len(m.Missing()) != len(Identifiers())-1 {
		t.Errorf("Missing() = %d ids", len(m.Missing()))
	}

	out := m.Evaluate(Input{
		Velocity: vec.New(100, 0, 50), // alpha ~0.46, beyond the table
		Density:  0.002,
		Controls: control.NewVector(0),
	})
	if len(out.Extrapolated) != 1 || out.Extrapolated[0] != CLa {
		t.Errorf("Extrapolated = %v", out.Extrapolated)
	}
	if math.Abs(out.Coefficients.CL-4.5*out.Alpha) > 1e-12 {
		t.Errorf("CL = %v, want clamped slope", out.Coefficients.CL)
	}
}
