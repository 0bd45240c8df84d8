package ga

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Rotor is an even-graded multivector representing a 4D rotation, stored as
// scalar, e01, e02, e03, e12, e13, e23, e0123.
type Rotor [8]float64

// RotorIdent returns the identity rotation.
func RotorIdent() Rotor {
	return Rotor{1}
}

// FromBivector is the exponential map: cos(|b|) + sin(|b|)·b/|b|.
// A rotor built from the bivector θ·B̂ rotates by 2θ in the plane B̂.
// A zero bivector yields the identity.
func FromBivector(b Bivector) Rotor {
	angle := b.Len()
	if angle == 0 {
		return RotorIdent()
	}

	r := Rotor{math.Cos(angle)}
	s := math.Sin(angle) / angle
	for i := range b {
		r[i+1] = s * b[i]
	}
	return r
}

// Mul returns the composition l·r. As a matrix, (l·r).Matrix() equals
// r.Matrix() * l.Matrix(), so r is applied first.
func (l Rotor) Mul(r Rotor) Rotor {
	return Rotor{
		l[0]*r[0] - l[1]*r[1] - l[2]*r[2] - l[3]*r[3] - l[4]*r[4] - l[5]*r[5] - l[6]*r[6] + l[7]*r[7],
		l[0]*r[1] + l[1]*r[0] - l[2]*r[4] - l[3]*r[5] + l[4]*r[2] + l[5]*r[3] - l[6]*r[7] - l[7]*r[6],
		l[0]*r[2] + l[1]*r[4] + l[2]*r[0] - l[3]*r[6] - l[4]*r[1] + l[5]*r[7] + l[6]*r[3] + l[7]*r[5],
		l[0]*r[3] + l[1]*r[5] + l[2]*r[6] + l[3]*r[0] - l[4]*r[7] - l[5]*r[1] - l[6]*r[2] - l[7]*r[4],
		l[0]*r[4] - l[1]*r[2] + l[2]*r[1] - l[3]*r[7] + l[4]*r[0] - l[5]*r[6] + l[6]*r[5] - l[7]*r[3],
		l[0]*r[5] - l[1]*r[3] + l[2]*r[7] + l[3]*r[1] + l[4]*r[6] + l[5]*r[0] - l[6]*r[4] + l[7]*r[2],
		l[0]*r[6] - l[1]*r[7] - l[2]*r[3] + l[3]*r[2] - l[4]*r[5] + l[5]*r[4] + l[6]*r[0] - l[7]*r[1],
		l[0]*r[7] + l[1]*r[6] - l[2]*r[5] + l[3]*r[4] + l[4]*r[3] - l[5]*r[2] + l[6]*r[1] + l[7]*r[0],
	}
}

// Reverse flips the sign of the bivector part. For a unit rotor this is the inverse rotation.
func (r Rotor) Reverse() Rotor {
	for i := 1; i < 7; i++ {
		r[i] = -r[i]
	}
	return r
}

func (r Rotor) ApproxEqualThreshold(o Rotor, threshold float64) bool {
	for i := range r {
		if math.Abs(r[i]-o[i]) > threshold {
			return false
		}
	}
	return true
}

// Matrix returns the 4x4 rotation matrix of the rotor.
func (r Rotor) Matrix() mgl64.Mat4 {
	c0, c1, c2, c3, c4, c5, c6, c7 := r[0], r[1], r[2], r[3], r[4], r[5], r[6], r[7]

	return mgl64.Mat4FromRows(
		mgl64.Vec4{
			c0*c0 - c1*c1 - c2*c2 - c3*c3 + c4*c4 + c5*c5 + c6*c6 - c7*c7,
			-2*c0*c1 - 2*c2*c4 - 2*c3*c5 - 2*c6*c7,
			-2*c0*c2 + 2*c1*c4 - 2*c3*c6 + 2*c5*c7,
			-2*c0*c3 + 2*c1*c5 + 2*c2*c6 - 2*c4*c7,
		},
		mgl64.Vec4{
			2*c0*c1 - 2*c2*c4 - 2*c3*c5 + 2*c6*c7,
			c0*c0 - c1*c1 + c2*c2 + c3*c3 - c4*c4 - c5*c5 + c6*c6 - c7*c7,
			-2*c0*c4 - 2*c1*c2 - 2*c3*c7 - 2*c5*c6,
			-2*c0*c5 - 2*c1*c3 + 2*c2*c7 + 2*c4*c6,
		},
		mgl64.Vec4{
			2*c0*c2 + 2*c1*c4 - 2*c3*c6 - 2*c5*c7,
			2*c0*c4 - 2*c1*c2 + 2*c3*c7 - 2*c5*c6,
			c0*c0 + c1*c1 - c2*c2 + c3*c3 - c4*c4 + c5*c5 - c6*c6 - c7*c7,
			-2*c0*c6 - 2*c1*c7 - 2*c2*c3 - 2*c4*c5,
		},
		mgl64.Vec4{
			2*c0*c3 + 2*c1*c5 + 2*c2*c6 + 2*c4*c7,
			2*c0*c5 - 2*c1*c3 - 2*c2*c7 + 2*c4*c6,
			2*c0*c6 + 2*c1*c7 - 2*c2*c3 - 2*c4*c5,
			c0*c0 + c1*c1 + c2*c2 - c3*c3 + c4*c4 - c5*c5 - c6*c6 - c7*c7,
		},
	)
}
