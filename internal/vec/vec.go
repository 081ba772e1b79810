// Package vec provides 3D vector operations and the Euler-angle rotation
// between body axes and the local north-east-down frame.
package vec

import "math"

// Vec3 is a 3D vector. In body axes X is forward, Y right, Z down; in the
// earth frame X is north, Y east, Z down.
type Vec3 struct{ X, Y, Z float64 }

func New(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Mul(k float64) Vec3 { return Vec3{v.X * k, v.Y * k, v.Z * k} }

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Norm() float64 { return math.Sqrt(v.Dot(v)) }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// Normalize returns a unit vector in the same direction, or the zero
// vector for a zero input.
func (v Vec3) Normalize() Vec3 {
	norm := v.Norm()
	if norm == 0 {
		return Vec3{}
	}
	return v.Mul(1 / norm)
}

func (v Vec3) IsFinite() bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Attitude is the body-to-earth direction cosine matrix for a 3-2-1
// (yaw, pitch, roll) Euler sequence.
type Attitude struct {
	m [3][3]float64
}

func NewAttitude(phi, theta, psi float64) Attitude {
	sphi, cphi := math.Sincos(phi)
	sth, cth := math.Sincos(theta)
	spsi, cpsi := math.Sincos(psi)

	return Attitude{m: [3][3]float64{
		{cth * cpsi, sphi*sth*cpsi - cphi*spsi, cphi*sth*cpsi + sphi*spsi},
		{cth * spsi, sphi*sth*spsi + cphi*cpsi, cphi*sth*spsi - sphi*cpsi},
		{-sth, sphi * cth, cphi * cth},
	}}
}

// ToEarth rotates a body-axis vector into the earth frame.
func (a Attitude) ToEarth(b Vec3) Vec3 {
	return Vec3{
		X: a.m[0][0]*b.X + a.m[0][1]*b.Y + a.m[0][2]*b.Z,
		Y: a.m[1][0]*b.X + a.m[1][1]*b.Y + a.m[1][2]*b.Z,
		Z: a.m[2][0]*b.X + a.m[2][1]*b.Y + a.m[2][2]*b.Z,
	}
}

// ToBody rotates an earth-frame vector into body axes.
func (a Attitude) ToBody(e Vec3) Vec3 {
	return Vec3{
		X: a.m[0][0]*e.X + a.m[1][0]*e.Y + a.m[2][0]*e.Z,
		Y: a.m[0][1]*e.X + a.m[1][1]*e.Y + a.m[2][1]*e.Z,
		Z: a.m[0][2]*e.X + a.m[1][2]*e.Y + a.m[2][2]*e.Z,
	}
}
