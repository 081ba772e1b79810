package aero

import (
	"fmt"

	"github.com/san-kum/sixdof/internal/control"
	"gopkg.in/yaml.v3"
)

type Kind int

const (
	KindConstant Kind = iota
	KindInterpolated
)

func (k Kind) String() string {
	if k == KindInterpolated {
		return "interpolated"
	}
	return "constant"
}

// Derivative is either a constant stability derivative or one interpolated
// from a Table. The zero value is Constant(0).
type Derivative struct {
	kind  Kind
	value float64
	table *Table
}

func Constant(v float64) Derivative { return Derivative{kind: KindConstant, value: v} }

func Interpolated(t *Table) Derivative { return Derivative{kind: KindInterpolated, table: t} }

func (d Derivative) Kind() Kind { return d.kind }

func (d Derivative) Table() *Table { return d.table }

// Eval resolves the derivative at the given angle of attack and controls.
// The second result reports a clamped table lookup.
func (d Derivative) Eval(alpha float64, u control.Vector) (float64, bool) {
	if d.kind == KindConstant || d.table == nil {
		return d.value, false
	}
	return d.table.At(alpha, u.Value(d.table.Control, 0))
}

// UnmarshalYAML reads a scalar as a constant and a mapping as a table.
func (d *Derivative) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var v float64
		if err := node.Decode(&v); err != nil {
			return err
		}
		*d = Constant(v)
		return nil
	case yaml.MappingNode:
		t := new(Table)
		if err := node.Decode(t); err != nil {
			return err
		}
		if err := t.Validate(); err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*d = Interpolated(t)
		return nil
	}
	return fmt.Errorf("line %d: derivative must be a number or a table", node.Line)
}

func (d Derivative) MarshalYAML() (any, error) {
	if d.kind == KindInterpolated && d.table != nil {
		return d.table, nil
	}
	return d.value, nil
}

// Derivatives maps identifiers such as "CLa" to their values.
type Derivatives map[string]Derivative
