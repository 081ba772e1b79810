package vec

import (
	"math"
	"testing"
)

func near(a, b Vec3, tol float64) bool {
	return a.Sub(b).Norm() < tol
}

func TestCross(t *testing.T) {
	x, y, z := New(1, 0, 0), New(0, 1, 0), New(0, 0, 1)
	if got := x.Cross(y); got != z {
		t.Errorf("x cross y = %v, want %v", got, z)
	}
	if got := y.Cross(x); got != z.Mul(-1) {
		t.Errorf("y cross x = %v, want %v", got, z.Mul(-1))
	}
}

func TestNorm(t *testing.T) {
	if n := New(3, 4, 0).Norm(); n != 5 {
		t.Errorf("Norm = %v, want 5", n)
	}
	if n := (Vec3{}).Normalize(); n != (Vec3{}) {
		t.Errorf("Normalize(0) = %v", n)
	}
}

func TestAttitude(t *testing.T) {
	tests := []struct {
		name            string
		phi, theta, psi float64
		body, wantEarth Vec3
	}{
		{"level north", 0, 0, 0, New(1, 0, 0), New(1, 0, 0)},
		{"heading east", 0, 0, math.Pi / 2, New(1, 0, 0), New(0, 1, 0)},
		{"nose up", 0, math.Pi / 6, 0, New(1, 0, 0), New(math.Cos(math.Pi/6), 0, -0.5)},
		{"right bank", math.Pi / 2, 0, 0, New(0, 0, 1), New(0, -1, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAttitude(tt.phi, tt.theta, tt.psi)
			got := a.ToEarth(tt.body)
			if !near(got, tt.wantEarth, 1e-12) {
				t.Errorf("ToEarth(%v) = %v, want %v", tt.body, got, tt.wantEarth)
			}
			if back := a.ToBody(got); !near(back, tt.body, 1e-12) {
				t.Errorf("ToBody round trip = %v, want %v", back, tt.body)
			}
		})
	}
}
