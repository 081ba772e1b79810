// Package dynamo provides core simulation primitives shared by the flight
// model, the integrators and the run loop.
//
// The package defines the fundamental interfaces and types for numerical
// integration of the aircraft equations of motion (dX/dt = f(X, t)):
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems with controls already bound
//   - [Integrator]: fixed-step numerical integrator interface
//
// # Errors
//
// Failures that abort a run are reported as [*SimulationError], which wraps
// one of the sentinel errors declared in this package and carries the step,
// time and state at which the run stopped.
//
// # Thread Safety
//
// Integrators keep scratch buffers and are NOT thread-safe. Parallel runs
// must each own their integrator.
package dynamo
