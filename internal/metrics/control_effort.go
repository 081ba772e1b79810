package metrics

import (
	"math"

	"github.com/san-kum/sixdof/internal/sim"
)

// ControlEffort is the mean absolute surface deflection (elevator, aileron
// and rudder) per sample, in radians.
type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(s sim.Sample) {
	u := s.Controls
	c.sum += math.Abs(u.Elevator) + math.Abs(u.Aileron) + math.Abs(u.Rudder)
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
