package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/sixdof/internal/control"
	"github.com/san-kum/sixdof/internal/dynamo"
	"github.com/san-kum/sixdof/internal/eom"
)

type Phase int

const (
	Idle Phase = iota
	Running
	Paused
	Stopped
)

func (p Phase) String() string {
	switch p {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	}
	return "idle"
}

// Config fixes the time base of a run. Window only applies to unlimited
// runs and bounds the log to the most recent Window seconds; zero keeps
// everything.
type Config struct {
	Start     float64 `yaml:"start"`
	Dt        float64 `yaml:"dt"`
	End       float64 `yaml:"end"`
	Unlimited bool    `yaml:"unlimited"`
	Window    float64 `yaml:"window"`
	RealTime  bool    `yaml:"real_time"`
}

func (c Config) Validate() error {
	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("dt must be positive, got %g", c.Dt)
	}
	if !c.Unlimited && !(c.End > c.Start) {
		return fmt.Errorf("end time %g must be after start %g", c.End, c.Start)
	}
	if c.Window < 0 {
		return fmt.Errorf("log window must not be negative, got %g", c.Window)
	}
	return nil
}

// Steps is the number of steps from Start to End.
func (c Config) Steps() int {
	return int(math.Round((c.End - c.Start) / c.Dt))
}

// Sample is one entry of the output log. Samples are never modified after
// they are appended.
type Sample struct {
	Step     int            `json:"step" msgpack:"step"`
	Time     float64        `json:"time" msgpack:"time"`
	State    dynamo.State   `json:"state" msgpack:"state"`
	Controls control.Vector `json:"controls" msgpack:"controls"`
	Outputs  eom.Outputs    `json:"outputs" msgpack:"outputs"`
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s Sample)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(s Sample)

func (f ObserverFunc) OnStep(s Sample) { f(s) }

type Result struct {
	Samples []Sample
	Metrics map[string]float64
	Steps   int
	Time    float64
	Final   dynamo.State
}
