package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a state vector with NaN or Inf values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrGimbalLock indicates pitch attitude reached the Euler-angle singularity.
	ErrGimbalLock = errors.New("dynamo: pitch attitude at gimbal singularity")

	// ErrSingularInertia indicates a configured inertia tensor that cannot be inverted.
	ErrSingularInertia = errors.New("dynamo: inertia tensor is not invertible")

	// ErrAtmosphere indicates an altitude for which the atmosphere is undefined.
	ErrAtmosphere = errors.New("dynamo: atmosphere undefined at altitude")

	// ErrControlRange indicates the control source delivered an unclamped value.
	ErrControlRange = errors.New("dynamo: control value outside declared range")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrNotConverged indicates the trim solver exhausted its iteration budget.
	ErrNotConverged = errors.New("dynamo: trim did not converge")

	// ErrStopped indicates an operation on a simulator that has already stopped.
	ErrStopped = errors.New("dynamo: simulator stopped")

	// ErrDimensionMismatch indicates mismatched state dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")
)

// SimulationError wraps a fatal error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
