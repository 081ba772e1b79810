// Package analysis characterizes the aircraft dynamics around a flight
// condition and in recorded runs.
//
//   - [Linearize]: state matrix of the equations of motion by central
//     differences
//   - [Modes]: eigenvalues of a state matrix as natural frequency, damping
//     ratio and time to half or double amplitude
//   - [PowerSpectrum], [DominantFrequency]: spectral content of a recorded
//     signal
//
// # Dynamic Modes
//
// Linearizing the longitudinal states at a trim point separates the short
// period from the phugoid:
//
//	a, _ := analysis.Linearize(model, res.State, res.Controls, analysis.Longitudinal)
//	modes, _ := analysis.Modes(a)
package analysis
