package analysis

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/sixdof/internal/aircraft"
	"github.com/san-kum/sixdof/internal/control"
	"github.com/san-kum/sixdof/internal/eom"
	"github.com/san-kum/sixdof/internal/trim"
)

func TestModesOfKnownMatrix(t *testing.T) {
	// x'' + 2*zeta*wn*x' + wn^2*x = 0 with wn=2, zeta=0.5, plus a real
	// pole at -3.
	a := mat.NewDense(3, 3, []float64{
		0, 1, 0,
		-4, -2, 0,
		0, 0, -3,
	})
	modes, err := Modes(a)
	if err != nil {
		t.Fatal(err)
	}
	if len(modes) != 2 {
		t.Fatalf("got %d modes, want 2: %v", len(modes), modes)
	}

	real3 := modes[0]
	if real3.Oscillatory() || math.Abs(real(real3.Eigenvalue)+3) > 1e-9 {
		t.Errorf("first mode = %v, want real pole at -3", real3)
	}
	if math.Abs(real3.HalfTime-math.Ln2/3) > 1e-9 {
		t.Errorf("half time = %v", real3.HalfTime)
	}

	osc := modes[1]
	if !osc.Oscillatory() || !osc.Stable() {
		t.Fatalf("second mode = %v, want stable oscillation", osc)
	}
	if math.Abs(osc.Frequency-2) > 1e-9 || math.Abs(osc.Damping-0.5) > 1e-9 {
		t.Errorf("wn=%v zeta=%v, want 2 and 0.5", osc.Frequency, osc.Damping)
	}
	if want := 2 * math.Pi / math.Sqrt(3); math.Abs(osc.Period-want) > 1e-9 {
		t.Errorf("period = %v, want %v", osc.Period, want)
	}
}

func TestUnstableHalfTime(t *testing.T) {
	modes, err := Modes(mat.NewDense(1, 1, []float64{0.1}))
	if err != nil {
		t.Fatal(err)
	}
	if modes[0].Stable() || modes[0].HalfTime >= 0 {
		t.Errorf("mode = %+v, want unstable with negative half time", modes[0])
	}
}

func TestNavionLongitudinalModes(t *testing.T) {
	model, err := eom.New(aircraft.Navion(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	u := control.NewVector(1)
	u.Gear = 0
	res, err := trim.Solve(model, trim.Target{Airspeed: 210, Altitude: 5000, Fuel: 240}, u, trim.Options{})
	if err != nil {
		t.Fatal(err)
	}

	a, err := Linearize(model, res.State, res.Controls, Longitudinal)
	if err != nil {
		t.Fatal(err)
	}
	if r, c := a.Dims(); r != 4 || c != 4 {
		t.Fatalf("state matrix is %dx%d", r, c)
	}
	// Pitch damping dominates dq/dq.
	if a.At(2, 2) >= 0 {
		t.Errorf("dq/dq = %v, want negative", a.At(2, 2))
	}

	modes, err := Modes(a)
	if err != nil {
		t.Fatal(err)
	}
	var osc []Mode
	for _, m := range modes {
		if m.Oscillatory() {
			osc = append(osc, m)
		}
	}
	if len(osc) != 2 {
		t.Fatalf("want short period and phugoid, got %v", modes)
	}
	short, phugoid := osc[0], osc[1]
	if short.Frequency < 1.5 || short.Frequency > 8 || short.Damping < 0.3 {
		t.Errorf("short period %v", short)
	}
	if phugoid.Frequency > 0.6 || math.Abs(phugoid.Damping) > 0.5 {
		t.Errorf("phugoid %v", phugoid)
	}
}

func TestLinearizeErrors(t *testing.T) {
	model, err := eom.New(aircraft.Navion(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	x := eom.Condition{Airspeed: 200, Altitude: 1000, Fuel: 100}.State()
	u := control.NewVector(1)

	if _, err := Linearize(model, x, u, nil); err == nil {
		t.Error("expected error for empty state list")
	}
	if _, err := Linearize(model, x, u, []int{eom.StateDim}); err == nil {
		t.Error("expected error for out of range state")
	}
}

func TestDominantFrequency(t *testing.T) {
	const dt = 0.02
	data := make([]float64, 1000)
	for i := range data {
		ti := float64(i) * dt
		data[i] = 3 + math.Sin(2*math.Pi*0.5*ti) + 0.2*math.Sin(2*math.Pi*3*ti)
	}

	f, err := DominantFrequency(data, dt)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(f-0.5) > 0.05 {
		t.Errorf("dominant frequency = %v Hz, want 0.5", f)
	}

	freq, mag := PowerSpectrum(data, dt)
	if len(freq) != len(data)/2+1 || len(mag) != len(freq) {
		t.Errorf("spectrum has %d bins", len(freq))
	}
	if mag[0] > 1e-6 {
		t.Errorf("mean not removed: dc bin %v", mag[0])
	}

	if _, err := DominantFrequency([]float64{1}, dt); err == nil {
		t.Error("expected error for a single sample")
	}
}
