package control

import (
	"errors"
	"sync"
	"testing"

	"github.com/san-kum/sixdof/internal/dynamo"
)

func TestNewVector(t *testing.T) {
	v := NewVector(2)
	if v.Engines() != 2 {
		t.Fatalf("expected 2 engines, got %d", v.Engines())
	}
	if v.Gear != 1 || v.Mixture[1] != 1 {
		t.Errorf("unexpected defaults: %+v", v)
	}
}

func TestCloneIndependent(t *testing.T) {
	v := NewVector(1)
	v.Throttle[0] = 0.5
	c := v.Clone()
	c.Throttle[0] = 0.9
	if v.Throttle[0] != 0.5 {
		t.Error("Clone shares throttle slice")
	}
}

func TestSetValue(t *testing.T) {
	v := NewVector(2)
	if err := v.Set(Throttle, -1, 0.7); err != nil {
		t.Fatal(err)
	}
	if v.Value(Throttle, 0) != 0.7 || v.Value(Throttle, 1) != 0.7 {
		t.Errorf("Set all engines failed: %v", v.Throttle)
	}
	if err := v.Set(Throttle, 5, 0.1); err == nil {
		t.Error("expected error for engine out of range")
	}
	if err := v.Set(ID("spoiler"), 0, 1); err == nil {
		t.Error("expected error for unknown control")
	}
	if v.Value(Throttle, 9) != 0 {
		t.Error("out of range engine should read zero")
	}
}

func TestLimits(t *testing.T) {
	limits := DefaultLimits()
	v := NewVector(1)
	v.Elevator = 2
	v.Throttle[0] = -1

	if err := limits.Check(v); !errors.Is(err, dynamo.ErrControlRange) {
		t.Fatalf("Check err = %v, want ErrControlRange", err)
	}

	c := limits.Clamp(v)
	if c.Elevator != 0.4 || c.Throttle[0] != 0 {
		t.Errorf("Clamp = %+v", c)
	}
	if v.Elevator != 2 {
		t.Error("Clamp modified its input")
	}
	if err := limits.Check(c); err != nil {
		t.Errorf("clamped vector fails Check: %v", err)
	}
}

func TestDoubletOffset(t *testing.T) {
	p := Doublet(Elevator, 50, 0.5, 0.035)
	tests := []struct {
		t    float64
		want float64
	}{
		{49.9, 0},
		{50.0, 0.035},
		{50.2, 0.035},
		{50.25, -0.035},
		{50.49, -0.035},
		{50.5, 0},
	}
	for _, tt := range tests {
		if got := p.Offset(tt.t); got != tt.want {
			t.Errorf("Offset(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestScript(t *testing.T) {
	base := NewVector(1)
	base.Elevator = 0.125
	base.Throttle[0] = 0.95

	s := NewScript(base, DefaultLimits(),
		Doublet(Elevator, 1, 1, 0.25),
		Pulse{Control: Throttle, Engine: 0, Start: 0, Duration: 10, Amplitude: 0.2},
	)

	v := s.Controls(1.1)
	if v.Elevator != 0.375 {
		t.Errorf("elevator = %v, want 0.375", v.Elevator)
	}
	if v.Throttle[0] != 1 {
		t.Errorf("throttle should clamp to 1, got %v", v.Throttle[0])
	}

	v.Elevator = 9
	if s.Controls(1.1).Elevator == 9 {
		t.Error("script returned shared state")
	}
}

func TestSharedConcurrent(t *testing.T) {
	s := NewShared(NewVector(2), DefaultLimits())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			x := float64(i%2) * 0.5
			s.Update(func(v *Vector) {
				v.Throttle[0] = x
				v.Throttle[1] = x
			})
		}
	}()

	for i := 0; i < 1000; i++ {
		v := s.Controls(0)
		if v.Throttle[0] != v.Throttle[1] {
			t.Fatalf("torn read: %v", v.Throttle)
		}
	}
	wg.Wait()
}

func TestSharedClamps(t *testing.T) {
	s := NewShared(NewVector(1), DefaultLimits())
	s.Update(func(v *Vector) { v.Elevator = -3 })
	if got := s.Controls(0).Elevator; got != -0.4 {
		t.Errorf("elevator = %v, want -0.4", got)
	}
	v := NewVector(1)
	v.Brakes = 4
	s.Set(v)
	if got := s.Controls(0).Brakes; got != 1 {
		t.Errorf("brakes = %v, want 1", got)
	}
}
