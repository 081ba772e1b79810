package control

import (
	"fmt"
	"sort"

	"github.com/brunoga/deep"
	"github.com/san-kum/sixdof/internal/dynamo"
)

// ID names one control channel. Engine channels are indexed separately.
type ID string

const (
	Elevator  ID = "elevator"
	Aileron   ID = "aileron"
	Rudder    ID = "rudder"
	Throttle  ID = "throttle"
	Mixture   ID = "mixture"
	PropPitch ID = "prop_pitch"
	Flaps     ID = "flaps"
	Gear      ID = "gear"
	Brakes    ID = "brakes"
)

// EngineChannel reports whether id has one value per engine.
func (id ID) EngineChannel() bool {
	return id == Throttle || id == Mixture || id == PropPitch
}

// Vector holds every control deflection. Surface deflections are in
// radians; throttle, mixture, prop pitch, gear and brakes are fractions.
type Vector struct {
	Elevator  float64   `yaml:"elevator" json:"elevator" msgpack:"elevator"`
	Aileron   float64   `yaml:"aileron" json:"aileron" msgpack:"aileron"`
	Rudder    float64   `yaml:"rudder" json:"rudder" msgpack:"rudder"`
	Throttle  []float64 `yaml:"throttle" json:"throttle" msgpack:"throttle"`
	Mixture   []float64 `yaml:"mixture" json:"mixture" msgpack:"mixture"`
	PropPitch []float64 `yaml:"prop_pitch" json:"prop_pitch" msgpack:"prop_pitch"`
	Flaps     float64   `yaml:"flaps" json:"flaps" msgpack:"flaps"`
	Gear      float64   `yaml:"gear" json:"gear" msgpack:"gear"`
	Brakes    float64   `yaml:"brakes" json:"brakes" msgpack:"brakes"`
}

// NewVector returns a centered vector for n engines with gear down, full
// rich mixture and fine pitch.
func NewVector(engines int) Vector {
	v := Vector{
		Throttle:  make([]float64, engines),
		Mixture:   make([]float64, engines),
		PropPitch: make([]float64, engines),
		Gear:      1,
	}
	for i := 0; i < engines; i++ {
		v.Mixture[i] = 1
		v.PropPitch[i] = 1
	}
	return v
}

func (v Vector) Engines() int { return len(v.Throttle) }

// Clone returns a copy that shares no memory with v.
func (v Vector) Clone() Vector {
	c, err := deep.Copy(v)
	if err != nil {
		panic(fmt.Sprintf("control: copy vector: %v", err))
	}
	return c
}

// Value returns the value of a channel. engine is ignored for airframe
// channels; out-of-range engine indexes read as zero.
func (v Vector) Value(id ID, engine int) float64 {
	switch id {
	case Elevator:
		return v.Elevator
	case Aileron:
		return v.Aileron
	case Rudder:
		return v.Rudder
	case Flaps:
		return v.Flaps
	case Gear:
		return v.Gear
	case Brakes:
		return v.Brakes
	case Throttle:
		return index(v.Throttle, engine)
	case Mixture:
		return index(v.Mixture, engine)
	case PropPitch:
		return index(v.PropPitch, engine)
	}
	return 0
}

// Set writes one channel. For engine channels a negative engine index sets
// every engine.
func (v *Vector) Set(id ID, engine int, value float64) error {
	switch id {
	case Elevator:
		v.Elevator = value
	case Aileron:
		v.Aileron = value
	case Rudder:
		v.Rudder = value
	case Flaps:
		v.Flaps = value
	case Gear:
		v.Gear = value
	case Brakes:
		v.Brakes = value
	case Throttle:
		return setIndex(v.Throttle, engine, value)
	case Mixture:
		return setIndex(v.Mixture, engine, value)
	case PropPitch:
		return setIndex(v.PropPitch, engine, value)
	default:
		return fmt.Errorf("unknown control: %s", id)
	}
	return nil
}

func index(s []float64, i int) float64 {
	if i < 0 || i >= len(s) {
		return 0
	}
	return s[i]
}

func setIndex(s []float64, i int, value float64) error {
	if i < 0 {
		for j := range s {
			s[j] = value
		}
		return nil
	}
	if i >= len(s) {
		return fmt.Errorf("engine %d out of range (%d engines)", i, len(s))
	}
	s[i] = value
	return nil
}

type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

func (r Range) Clamp(x float64) float64 {
	if x < r.Min {
		return r.Min
	}
	if x > r.Max {
		return r.Max
	}
	return x
}

func (r Range) Contains(x float64) bool { return x >= r.Min && x <= r.Max }

// Limits maps each channel to its declared range.
type Limits map[ID]Range

func DefaultLimits() Limits {
	return Limits{
		Elevator:  {Min: -0.4, Max: 0.4},
		Aileron:   {Min: -0.35, Max: 0.35},
		Rudder:    {Min: -0.4, Max: 0.4},
		Throttle:  {Min: 0, Max: 1},
		Mixture:   {Min: 0, Max: 1},
		PropPitch: {Min: 0, Max: 1},
		Flaps:     {Min: 0, Max: 0.7},
		Gear:      {Min: 0, Max: 1},
		Brakes:    {Min: 0, Max: 1},
	}
}

func (l Limits) ids() []ID {
	ids := make([]ID, 0, len(l))
	for id := range l {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Clamp returns a copy of v with every channel inside its range.
func (l Limits) Clamp(v Vector) Vector {
	c := v.Clone()
	for _, id := range l.ids() {
		r := l[id]
		if id.EngineChannel() {
			for i := 0; i < c.Engines(); i++ {
				_ = c.Set(id, i, r.Clamp(c.Value(id, i)))
			}
			continue
		}
		_ = c.Set(id, 0, r.Clamp(c.Value(id, 0)))
	}
	return c
}

// Check asserts that every channel is inside its range.
func (l Limits) Check(v Vector) error {
	for _, id := range l.ids() {
		r := l[id]
		n := 1
		if id.EngineChannel() {
			n = v.Engines()
		}
		for i := 0; i < n; i++ {
			if x := v.Value(id, i); !r.Contains(x) {
				if id.EngineChannel() {
					return fmt.Errorf("%w: %s[%d]=%g not in [%g, %g]", dynamo.ErrControlRange, id, i, x, r.Min, r.Max)
				}
				return fmt.Errorf("%w: %s=%g not in [%g, %g]", dynamo.ErrControlRange, id, x, r.Min, r.Max)
			}
		}
	}
	return nil
}
