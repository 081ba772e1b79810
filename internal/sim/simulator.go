package sim

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/san-kum/sixdof/internal/control"
	"github.com/san-kum/sixdof/internal/dynamo"
	"github.com/san-kum/sixdof/internal/eom"
	"github.com/san-kum/sixdof/internal/log"
)

type command int

const (
	cmdPause command = iota
	cmdResume
	cmdReset
	cmdStop
)

func (c command) String() string {
	return [...]string{"pause", "resume", "reset", "stop"}[c]
}

type Option func(*Simulator)

func WithLogger(lg *log.Logger) Option { return func(s *Simulator) { s.lg = lg } }

func WithMetrics(ms ...Metric) Option {
	return func(s *Simulator) { s.metrics = append(s.metrics, ms...) }
}

func WithObservers(obs ...Observer) Option {
	return func(s *Simulator) { s.observers = append(s.observers, obs...) }
}

// WithLimits overrides the control limits asserted each step.
func WithLimits(l control.Limits) Option { return func(s *Simulator) { s.limits = l } }

// Simulator steps one aircraft model through time. Run and Step must be
// called from one goroutine; Pause, Resume, Reset, Stop, Phase and the Log
// are safe from any goroutine.
type Simulator struct {
	model      *eom.Model
	integrator dynamo.Integrator
	source     control.Source
	limits     control.Limits
	cfg        Config

	x0   dynamo.State
	x    dynamo.State
	t    float64
	step int

	mu    sync.Mutex
	phase Phase

	cmds    chan command
	stopReq atomic.Bool

	log       *Log
	metrics   []Metric
	observers []Observer
	lg        *log.Logger
	warned    map[string]bool
}

func New(model *eom.Model, integrator dynamo.Integrator, source control.Source,
	x0 dynamo.State, cfg Config, opts ...Option) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := eom.Validate(x0); err != nil {
		return nil, fmt.Errorf("initial state: %w", err)
	}

	s := &Simulator{
		model:      model,
		integrator: integrator,
		source:     source,
		limits:     model.Aircraft().ControlLimits(),
		cfg:        cfg,
		x0:         x0.Clone(),
		cmds:       make(chan command, 16),
		log:        NewLog(0),
		warned:     make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	if cfg.Unlimited {
		s.log = NewLog(cfg.Window)
	}
	if err := s.reset(); err != nil {
		return nil, fmt.Errorf("initial state: %w", err)
	}
	return s, nil
}

func (s *Simulator) Config() Config { return s.cfg }

func (s *Simulator) Log() *Log { return s.log }

func (s *Simulator) Model() *eom.Model { return s.model }

func (s *Simulator) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Simulator) setPhase(p Phase) {
	s.mu.Lock()
	if s.phase != p {
		s.lg.Debug("phase change", slog.String("from", s.phase.String()), slog.String("to", p.String()))
	}
	s.phase = p
	s.mu.Unlock()
}

// Time and State describe the last committed step. They belong to the run
// loop goroutine; other goroutines read the Log instead.
func (s *Simulator) Time() float64 { return s.t }

func (s *Simulator) State() dynamo.State { return s.x.Clone() }

func (s *Simulator) Pause()  { s.send(cmdPause) }
func (s *Simulator) Resume() { s.send(cmdResume) }
func (s *Simulator) Reset()  { s.send(cmdReset) }

// Stop ends the run at the next step boundary. It is never dropped.
func (s *Simulator) Stop() {
	s.stopReq.Store(true)
	s.send(cmdStop)
}

func (s *Simulator) send(c command) {
	select {
	case s.cmds <- c:
	default:
		s.lg.Warn("command queue full, dropping", slog.String("command", c.String()))
	}
}

// drain applies every queued command.
func (s *Simulator) drain() error {
	for {
		select {
		case c := <-s.cmds:
			if err := s.apply(c); err != nil {
				return err
			}
		default:
			if s.stopReq.Load() {
				s.setPhase(Stopped)
			}
			return nil
		}
	}
}

func (s *Simulator) apply(c command) error {
	phase := s.Phase()
	if phase == Stopped {
		return nil
	}
	switch c {
	case cmdPause:
		if phase == Running {
			s.setPhase(Paused)
		}
	case cmdResume:
		if phase == Paused {
			s.setPhase(Running)
		}
	case cmdReset:
		return s.reset()
	case cmdStop:
		s.setPhase(Stopped)
	}
	return nil
}

// reset returns to the initial conditions, keeping the phase.
func (s *Simulator) reset() error {
	s.x = s.x0.Clone()
	s.t = s.cfg.Start
	s.step = 0
	s.model.SetHistory(nil)
	s.log.Reset()
	for _, m := range s.metrics {
		m.Reset()
	}

	u := s.source.Controls(s.t)
	snap, err := s.model.Evaluate(s.x, u)
	if err != nil {
		return err
	}
	s.model.Commit(s.x, u)
	s.record(u, snap)
	return nil
}

func (s *Simulator) done() bool {
	return !s.cfg.Unlimited && s.step >= s.cfg.Steps()
}

// Step advances a single step, ignoring pacing and the end time. It moves
// an idle simulator to Running.
func (s *Simulator) Step() error {
	switch s.Phase() {
	case Stopped:
		return dynamo.ErrStopped
	case Idle:
		s.setPhase(Running)
	}
	return s.advance()
}

func (s *Simulator) fail(err error) error {
	se := &dynamo.SimulationError{Step: s.step, Time: s.t, State: s.x.Clone(), Wrapped: err}
	s.lg.Error("simulation aborted", slog.Int("step", s.step),
		slog.Float64("time", s.t), slog.Any("err", err))
	s.setPhase(Stopped)
	return se
}

func (s *Simulator) advance() error {
	u := s.source.Controls(s.t)
	if err := s.limits.Check(u); err != nil {
		return s.fail(err)
	}

	sys := s.model.WithControls(u)
	next := s.integrator.Step(sys, s.x, s.t, s.cfg.Dt)
	if err := sys.Err(); err != nil {
		return s.fail(err)
	}
	if err := eom.Validate(next); err != nil {
		return s.fail(err)
	}

	s.model.Commit(next, u)
	s.x = next
	s.step++
	s.t = s.cfg.Start + float64(s.step)*s.cfg.Dt

	snap, err := s.model.Evaluate(next, u)
	if err != nil {
		return s.fail(err)
	}
	s.record(u, snap)
	return nil
}

func (s *Simulator) record(u control.Vector, snap *eom.Snapshot) {
	for _, id := range snap.Aero.Extrapolated {
		if !s.warned[id] {
			s.warned[id] = true
			s.lg.Warn("derivative table lookup clamped to grid edge",
				slog.String("id", id), slog.Float64("time", s.t),
				slog.Float64("alpha", snap.Outputs.Alpha))
		}
	}

	sample := Sample{
		Step:     s.step,
		Time:     s.t,
		State:    s.x.Clone(),
		Controls: u,
		Outputs:  snap.Outputs,
	}
	s.log.Append(sample)
	for _, m := range s.metrics {
		m.Observe(sample)
	}
	for _, o := range s.observers {
		o.OnStep(sample)
	}
}

// Run steps until the end time, Stop, cancellation of ctx or a fatal
// error. In real-time mode each step is paced to wall-clock time.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	if s.Phase() == Stopped {
		return nil, dynamo.ErrStopped
	}
	s.setPhase(Running)
	s.lg.Info("run started", slog.Float64("dt", s.cfg.Dt),
		slog.String("integrator", s.integrator.Name()),
		slog.Bool("unlimited", s.cfg.Unlimited))

	period := time.Duration(s.cfg.Dt * float64(time.Second))
	next := time.Now()

	for {
		if err := s.drain(); err != nil {
			return s.result(), s.fail(err)
		}
		if err := ctx.Err(); err != nil {
			s.setPhase(Stopped)
			return s.result(), err
		}

		switch s.Phase() {
		case Stopped:
			return s.result(), nil
		case Paused:
			select {
			case <-ctx.Done():
			case c := <-s.cmds:
				if err := s.apply(c); err != nil {
					return s.result(), s.fail(err)
				}
			}
			next = time.Now()
			continue
		}

		if s.done() {
			s.setPhase(Stopped)
			s.lg.Info("run finished", slog.Int("steps", s.step), slog.Float64("time", s.t))
			return s.result(), nil
		}
		if err := s.advance(); err != nil {
			return s.result(), err
		}

		if s.cfg.RealTime {
			next = next.Add(period)
			if wait := time.Until(next); wait > 0 {
				timer := time.NewTimer(wait)
				select {
				case <-ctx.Done():
				case c := <-s.cmds:
					if err := s.apply(c); err != nil {
						timer.Stop()
						return s.result(), s.fail(err)
					}
				case <-timer.C:
				}
				timer.Stop()
			} else {
				next = time.Now()
			}
		}
	}
}

func (s *Simulator) result() *Result {
	r := &Result{
		Samples: s.log.Snapshot(),
		Metrics: make(map[string]float64, len(s.metrics)),
		Steps:   s.step,
		Time:    s.t,
		Final:   s.x.Clone(),
	}
	for _, m := range s.metrics {
		r.Metrics[m.Name()] = m.Value()
	}
	return r
}
