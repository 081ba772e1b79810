package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/sixdof/internal/aircraft"
	"github.com/san-kum/sixdof/internal/control"
	"github.com/san-kum/sixdof/internal/dynamo"
	"github.com/san-kum/sixdof/internal/eom"
	"github.com/san-kum/sixdof/internal/gear"
	"github.com/san-kum/sixdof/internal/integrators"
	"github.com/san-kum/sixdof/internal/metrics"
	"github.com/san-kum/sixdof/internal/sim"
	"github.com/san-kum/sixdof/internal/trim"
)

const deg = math.Pi / 180

func navionModel(terrain gear.Terrain) *eom.Model {
	m, err := eom.New(aircraft.Navion(), terrain, nil)
	Expect(err).NotTo(HaveOccurred())
	return m
}

func trimCruise() *trim.Result {
	u := control.NewVector(1)
	u.Gear = 0
	res, err := trim.Solve(navionModel(nil),
		trim.Target{Airspeed: 210, Altitude: 5000, Fuel: 240}, u, trim.Options{})
	Expect(err).NotTo(HaveOccurred())
	Expect(res.Converged).To(BeTrue())
	return res
}

func run(res *trim.Result, end float64, pulses ...control.Pulse) *sim.Result {
	m := navionModel(nil)
	src := control.NewScript(res.Controls, m.Aircraft().ControlLimits(), pulses...)
	s, err := sim.New(m, integrators.NewRK4(), src, res.State,
		sim.Config{Dt: 0.02, End: end}, sim.WithMetrics(metrics.Default()...))
	Expect(err).NotTo(HaveOccurred())
	out, err := s.Run(context.Background())
	Expect(err).NotTo(HaveOccurred())
	return out
}

var _ = Describe("Navion in cruise", func() {
	var res *trim.Result

	BeforeEach(func() {
		res = trimCruise()
	})

	It("trims with a small elevator deflection", func() {
		Expect(math.Abs(res.Controls.Elevator)).To(BeNumerically("<", 0.1))
		Expect(res.Residual).To(BeNumerically("<", trim.DefaultTolerance))
	})

	It("reproduces near-zero acceleration at the trim point", func() {
		d, err := navionModel(nil).Derive(res.State, res.Controls)
		Expect(err).NotTo(HaveOccurred())
		acc := math.Sqrt(d[eom.U]*d[eom.U] + d[eom.V]*d[eom.V] + d[eom.W]*d[eom.W] +
			d[eom.P]*d[eom.P] + d[eom.Q]*d[eom.Q] + d[eom.R]*d[eom.R])
		Expect(acc).To(BeNumerically("<=", res.Residual+1e-12))
	})

	It("holds altitude and pitch for 10 seconds without input", func() {
		out := run(res, 10)
		Expect(out.Steps).To(Equal(500))

		theta0 := res.State[eom.Theta]
		for _, s := range out.Samples {
			Expect(s.State[eom.Alt]).To(BeNumerically("~", 5000, 5))
			Expect(s.State[eom.Theta]).To(BeNumerically("~", theta0, 1*deg))
		}
		Expect(out.Metrics["altitude_deviation"]).To(BeNumerically("<", 5))
	})

	It("is deterministic", func() {
		a := run(res, 5, control.Doublet(control.Elevator, 1, 0.5, 0.035))
		b := run(res, 5, control.Doublet(control.Elevator, 1, 0.5, 0.035))
		Expect(a.Samples).To(HaveLen(len(b.Samples)))
		for i := range a.Samples {
			Expect(a.Samples[i].State).To(Equal(b.Samples[i].State))
		}
	})

	It("damps the pitch response to an elevator doublet", func() {
		out := run(res, 60, control.Doublet(control.Elevator, 50, 0.5, 0.035))

		var before, during, after float64
		for _, s := range out.Samples {
			q := math.Abs(s.State[eom.Q])
			switch {
			case s.Time < 50:
				before = math.Max(before, q)
			case s.Time <= 51:
				during = math.Max(during, q)
			case s.Time >= 56:
				after = math.Max(after, q)
			}
		}
		Expect(before).To(BeNumerically("<", 2e-3))
		Expect(during).To(BeNumerically(">", 0.01))
		Expect(after).To(BeNumerically("<", 0.25*during))
		Expect(out.Metrics["pitch_rate_peak"]).To(BeNumerically(">=", during))
	})
})

var _ = Describe("Ground contact", func() {
	It("pushes an aircraft started below the terrain back out", func() {
		const terrain = 100.0
		m := navionModel(gear.Flat(terrain))
		u := control.NewVector(1)
		x0 := eom.Condition{Altitude: terrain - 10, Fuel: 240}.State()

		s, err := sim.New(m, integrators.NewRK4(), control.NewScript(u, m.Aircraft().ControlLimits()),
			x0, sim.Config{Dt: 0.01, End: 10})
		Expect(err).NotTo(HaveOccurred())

		out, err := s.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		surfaced := -1
		for i, smp := range out.Samples {
			if smp.State[eom.Alt] >= terrain {
				surfaced = i
				break
			}
		}
		Expect(surfaced).To(BeNumerically(">", 0))
		Expect(surfaced).To(BeNumerically("<", 500))
		Expect(out.Final[eom.Alt]).To(BeNumerically(">=", terrain))

		last := out.Samples[len(out.Samples)-1]
		Expect(last.Outputs.OnGround).To(BeTrue())
		Expect(last.State.IsValid()).To(BeTrue())
	})

	It("stays finite when parked with the engine at idle", func() {
		m := navionModel(nil)
		u := control.NewVector(1)
		x0 := eom.Condition{Altitude: 2.9, Fuel: 240}.State()

		s, err := sim.New(m, integrators.NewRK4(), control.NewScript(u, m.Aircraft().ControlLimits()),
			x0, sim.Config{Dt: 0.02, End: 5})
		Expect(err).NotTo(HaveOccurred())
		out, err := s.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Final.IsValid()).To(BeTrue())
		Expect(out.Final[eom.U]).To(BeNumerically("~", 0, 0.5))
	})
})

var _ = Describe("Fatal conditions", func() {
	It("aborts with a simulation error when the state blows up", func() {
		m := navionModel(nil)
		u := control.NewVector(1)
		u.Gear = 0
		x0 := eom.Condition{Airspeed: 210, Altitude: 5000, Fuel: 240}.State()
		x0[eom.Theta] = 89.8 * deg
		x0[eom.Q] = 2

		s, err := sim.New(m, integrators.NewRK4(), control.NewScript(u, m.Aircraft().ControlLimits()),
			x0, sim.Config{Dt: 0.02, End: 5})
		Expect(err).NotTo(HaveOccurred())
		_, err = s.Run(context.Background())

		var se *dynamo.SimulationError
		Expect(err).To(BeAssignableToTypeOf(se))
		Expect(err).To(MatchError(dynamo.ErrGimbalLock))
		Expect(s.Phase()).To(Equal(sim.Stopped))
	})
})
