// Package aircraft holds the immutable definition of an aircraft: geometry,
// stability derivatives, mass properties, engines and landing gear.
package aircraft

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/sixdof/internal/aero"
	"github.com/san-kum/sixdof/internal/atmosphere"
	"github.com/san-kum/sixdof/internal/control"
	"github.com/san-kum/sixdof/internal/dynamo"
	"github.com/san-kum/sixdof/internal/gear"
	"github.com/san-kum/sixdof/internal/propulsion"
	"github.com/san-kum/sixdof/internal/vec"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

// Mass holds weights (lb) and the inertia tensor about the CG (slug*ft^2).
// CG is the CG position relative to the reference datum used by every other
// position in the definition.
type Mass struct {
	Empty   float64  `yaml:"empty"`
	Fuel    float64  `yaml:"fuel"`
	Payload float64  `yaml:"payload"`
	CG      vec.Vec3 `yaml:"cg"`
	Jx      float64  `yaml:"jx"`
	Jy      float64  `yaml:"jy"`
	Jz      float64  `yaml:"jz"`
	Jxz     float64  `yaml:"jxz"`
}

// Weight returns the gross weight with the given fuel remaining.
func (m Mass) Weight(fuel float64) float64 { return m.Empty + m.Payload + fuel }

// MassAt returns the mass in slugs with the given fuel remaining.
func (m Mass) MassAt(fuel float64) float64 { return m.Weight(fuel) / atmosphere.StandardGravity }

func (m Mass) Tensor() *mat.SymDense {
	return mat.NewSymDense(3, []float64{
		m.Jx, 0, -m.Jxz,
		0, m.Jy, 0,
		-m.Jxz, 0, m.Jz,
	})
}

// InverseInertia returns the inverse inertia tensor. A tensor that is not
// symmetric positive definite yields ErrSingularInertia.
func (m Mass) InverseInertia() ([3][3]float64, error) {
	var out [3][3]float64
	var chol mat.Cholesky
	if ok := chol.Factorize(m.Tensor()); !ok {
		return out, fmt.Errorf("%w: Jx=%g Jy=%g Jz=%g Jxz=%g",
			dynamo.ErrSingularInertia, m.Jx, m.Jy, m.Jz, m.Jxz)
	}
	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return out, fmt.Errorf("%w: %v", dynamo.ErrSingularInertia, err)
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = inv.At(i, j)
		}
	}
	return out, nil
}

type Data struct {
	Name        string              `yaml:"name"`
	Geometry    aero.Geometry       `yaml:"geometry"`
	Derivatives aero.Derivatives    `yaml:"derivatives"`
	Mass        Mass                `yaml:"mass"`
	Engines     []propulsion.Engine `yaml:"engines"`
	Gear        []gear.Leg          `yaml:"gear"`
	Limits      control.Limits      `yaml:"limits,omitempty"`
}

func (d *Data) Validate() error {
	var errs []error
	if d.Name == "" {
		errs = append(errs, errors.New("aircraft: missing name"))
	}
	g := d.Geometry
	if g.Area <= 0 || g.Span <= 0 || g.Chord <= 0 {
		errs = append(errs, fmt.Errorf("aircraft %s: reference area, span and chord must be positive", d.Name))
	}
	if d.Mass.Weight(0) <= 0 || d.Mass.Fuel < 0 {
		errs = append(errs, fmt.Errorf("aircraft %s: invalid weights", d.Name))
	}
	if _, err := d.Mass.InverseInertia(); err != nil {
		errs = append(errs, fmt.Errorf("aircraft %s: %w", d.Name, err))
	}
	for _, e := range d.Engines {
		if err := e.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, l := range d.Gear {
		if err := l.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ControlLimits returns the declared limits, defaulting any channel the
// definition leaves out.
func (d *Data) ControlLimits() control.Limits {
	l := control.DefaultLimits()
	for id, r := range d.Limits {
		l[id] = r
	}
	return l
}

// AboutCG returns the aerodynamic geometry, engines and gear legs with all
// positions taken relative to the CG.
func (d *Data) AboutCG() (aero.Geometry, []propulsion.Engine, []gear.Leg) {
	cg := d.Mass.CG
	geom := d.Geometry
	geom.ACOffset = geom.ACOffset.Sub(cg)

	engines := make([]propulsion.Engine, len(d.Engines))
	for i, e := range d.Engines {
		e.Position = e.Position.Sub(cg)
		engines[i] = e
	}
	legs := make([]gear.Leg, len(d.Gear))
	for i, l := range d.Gear {
		l.Position = l.Position.Sub(cg)
		legs[i] = l
	}
	return geom, engines, legs
}

func Load(path string) (*Data, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

func Parse(b []byte) (*Data, error) {
	var d Data
	if err := yaml.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("aircraft: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

func Save(path string, d *Data) error {
	b, err := yaml.Marshal(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
