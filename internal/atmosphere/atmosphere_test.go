package atmosphere

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/sixdof/internal/dynamo"
)

func TestSeaLevel(t *testing.T) {
	c, err := At(0)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(c.Density-SeaLevelDensity)/SeaLevelDensity > 1e-3 {
		t.Errorf("sea level density = %v, want %v", c.Density, SeaLevelDensity)
	}
	if math.Abs(c.SpeedOfSound-1116.4) > 0.5 {
		t.Errorf("sea level speed of sound = %v, want ~1116.4", c.SpeedOfSound)
	}
	if c.Gravity != StandardGravity {
		t.Errorf("sea level gravity = %v", c.Gravity)
	}
}

func TestTableValues(t *testing.T) {
	tests := []struct {
		altitude float64
		density  float64
		temp     float64
	}{
		{5000, 0.0020482, 500.84},
		{10000, 0.0017556, 483.03},
		{20000, 0.0012673, 447.35},
		{40000, 0.00058728, 389.97},
	}

	for _, tt := range tests {
		c, err := At(tt.altitude)
		if err != nil {
			t.Fatalf("At(%v): %v", tt.altitude, err)
		}
		if math.Abs(c.Density-tt.density)/tt.density > 5e-3 {
			t.Errorf("At(%v).Density = %v, want %v", tt.altitude, c.Density, tt.density)
		}
		if math.Abs(c.Temperature-tt.temp) > 0.1 {
			t.Errorf("At(%v).Temperature = %v, want %v", tt.altitude, c.Temperature, tt.temp)
		}
	}
}

func TestContinuousAtTropopause(t *testing.T) {
	below, _ := At(TropopauseAltitude - 1e-6)
	above, _ := At(TropopauseAltitude + 1e-6)

	if math.Abs(below.Density-above.Density) > 1e-10 {
		t.Errorf("density jumps at tropopause: %v vs %v", below.Density, above.Density)
	}
	if math.Abs(below.Pressure-above.Pressure) > 1e-4 {
		t.Errorf("pressure jumps at tropopause: %v vs %v", below.Pressure, above.Pressure)
	}
	if math.Abs(below.Temperature-above.Temperature) > 1e-6 {
		t.Errorf("temperature jumps at tropopause: %v vs %v", below.Temperature, above.Temperature)
	}
}

func TestBelowSeaLevel(t *testing.T) {
	c, err := At(-1000)
	if err != nil {
		t.Fatal(err)
	}
	if c.Density <= SeaLevelDensity {
		t.Errorf("density below sea level should exceed sea level, got %v", c.Density)
	}
}

func TestUndefinedAltitude(t *testing.T) {
	for _, alt := range []float64{math.NaN(), math.Inf(1), 1e9} {
		if _, err := At(alt); !errors.Is(err, dynamo.ErrAtmosphere) {
			t.Errorf("At(%v) err = %v, want ErrAtmosphere", alt, err)
		}
	}
}
