// Package control defines the control vector read by the flight model and
// the sources that supply it.
//
// The flight model reads one [Vector] per integration step from a
// [Source]:
//
//   - [Shared]: written by another goroutine (keyboard, joystick, network),
//     read as a deep copy so a step never sees a torn vector
//   - [Script]: time-driven pulses and doublets over a base vector
//
// Sources clamp values to their [Limits]. The flight model only checks the
// limits with [Limits.Check] so that an unclamped value points at a bug in
// the source instead of being silently corrected.
package control
