package control

// Pulse adds Amplitude to one channel from Start for Duration seconds. A
// doublet pulse reverses sign halfway through.
type Pulse struct {
	Control   ID      `yaml:"control"`
	Engine    int     `yaml:"engine"`
	Start     float64 `yaml:"start"`
	Duration  float64 `yaml:"duration"`
	Amplitude float64 `yaml:"amplitude"`
	Doublet   bool    `yaml:"doublet"`
}

// Doublet returns a positive-then-negative pulse on an airframe channel.
func Doublet(id ID, start, duration, amplitude float64) Pulse {
	return Pulse{Control: id, Start: start, Duration: duration, Amplitude: amplitude, Doublet: true}
}

// Offset is the pulse contribution at time t.
func (p Pulse) Offset(t float64) float64 {
	if t < p.Start || t >= p.Start+p.Duration {
		return 0
	}
	if p.Doublet && t >= p.Start+p.Duration/2 {
		return -p.Amplitude
	}
	return p.Amplitude
}

// Script is an immutable Source: a base vector plus pulses.
type Script struct {
	base   Vector
	limits Limits
	pulses []Pulse
}

func NewScript(base Vector, limits Limits, pulses ...Pulse) *Script {
	return &Script{
		base:   base.Clone(),
		limits: limits,
		pulses: append([]Pulse(nil), pulses...),
	}
}

func (s *Script) Controls(t float64) Vector {
	v := s.base.Clone()
	for _, p := range s.pulses {
		off := p.Offset(t)
		if off == 0 {
			continue
		}
		if p.Control.EngineChannel() {
			_ = v.Set(p.Control, p.Engine, v.Value(p.Control, p.Engine)+off)
			continue
		}
		_ = v.Set(p.Control, 0, v.Value(p.Control, 0)+off)
	}
	return s.limits.Clamp(v)
}
