// Package ga implements the pieces of 4D geometric algebra needed by the physics engine.
//
// Vectors are plain mgl64.Vec4 values. Angular quantities (angular velocity, torque,
// rotation generators) are bivectors with six coefficients, one per independent plane
// of 4D space. Orientations are rotors, the even-graded multivectors that generalize
// quaternions to four dimensions. Trivectors appear as the "normal" of a 3D hyperplane
// spanned by three vectors, which is what MPR needs to build and refine its portal.
//
// Coefficient ordering is fixed across the package:
//
//	Bivector:  e01 e02 e03 e12 e13 e23
//	Trivector: e012 e013 e023 e123
//	Rotor:     1 e01 e02 e03 e12 e13 e23 e0123
//
// References:
//   - Dorst, Fontijne, Mann: "Geometric Algebra for Computer Science" (2007)
//   - Marc ten Bosch: "N-Dimensional Rigid Body Dynamics" (SIGGRAPH 2020)
package ga

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// Bivector is an oriented plane quantity of 4D space, stored as
// e01, e02, e03, e12, e13, e23.
type Bivector [6]float64

// BivectorFromVec builds a bivector from a 6-component vector.
func BivectorFromVec(v mat.Vector) Bivector {
	if v.Len() != 6 {
		panic("ga: bivector needs exactly 6 components")
	}

	var b Bivector
	for i := range b {
		b[i] = v.AtVec(i)
	}
	return b
}

// Vec returns the bivector coefficients as a gonum vector.
func (b Bivector) Vec() *mat.VecDense {
	return mat.NewVecDense(6, b[:])
}

func (b Bivector) Add(o Bivector) Bivector {
	for i := range b {
		b[i] += o[i]
	}
	return b
}

func (b Bivector) Sub(o Bivector) Bivector {
	for i := range b {
		b[i] -= o[i]
	}
	return b
}

func (b Bivector) Mul(s float64) Bivector {
	for i := range b {
		b[i] *= s
	}
	return b
}

func (b Bivector) LenSqr() float64 {
	var n float64
	for _, c := range b {
		n += c * c
	}
	return n
}

func (b Bivector) Len() float64 {
	return math.Sqrt(b.LenSqr())
}

// Wedge returns the outer product a∧b of two vectors.
func Wedge(a, b mgl64.Vec4) Bivector {
	return Bivector{
		a[0]*b[1] - a[1]*b[0],
		a[0]*b[2] - a[2]*b[0],
		a[0]*b[3] - a[3]*b[0],
		a[1]*b[2] - a[2]*b[1],
		a[1]*b[3] - a[3]*b[1],
		a[2]*b[3] - a[3]*b[2],
	}
}

// Wedge returns v∧b. Vector and bivector wedges commute, so this is also b∧v.
func (b Bivector) Wedge(v mgl64.Vec4) Trivector {
	return Trivector{
		v[0]*b[3] - v[1]*b[1] + v[2]*b[0],
		v[0]*b[4] - v[1]*b[2] + v[3]*b[0],
		v[0]*b[5] - v[2]*b[2] + v[3]*b[1],
		v[1]*b[5] - v[2]*b[4] + v[3]*b[3],
	}
}

// Dot returns the contraction of the bivector onto v. For an angular velocity b and an
// anchor offset v this is the linear velocity of the anchor.
func (b Bivector) Dot(v mgl64.Vec4) mgl64.Vec4 {
	return mgl64.Vec4{
		-b[0]*v[1] - b[1]*v[2] - b[2]*v[3],
		b[0]*v[0] - b[3]*v[2] - b[4]*v[3],
		b[1]*v[0] + b[3]*v[1] - b[5]*v[3],
		b[2]*v[0] + b[4]*v[1] + b[5]*v[2],
	}
}

// Reject returns the component of v orthogonal to the plane b.
// A null bivector yields the zero vector.
func (b Bivector) Reject(v mgl64.Vec4) mgl64.Vec4 {
	n := b.LenSqr()
	if n == 0 {
		return mgl64.Vec4{}
	}

	s := b
	r := mgl64.Vec4{
		v[0]*s[3]*s[3] + v[0]*s[4]*s[4] + v[0]*s[5]*s[5] - v[1]*s[1]*s[3] - v[1]*s[2]*s[4] + v[2]*s[0]*s[3] - v[2]*s[2]*s[5] + v[3]*s[0]*s[4] + v[3]*s[1]*s[5],
		-v[0]*s[1]*s[3] - v[0]*s[2]*s[4] + v[1]*s[1]*s[1] + v[1]*s[2]*s[2] + v[1]*s[5]*s[5] - v[2]*s[0]*s[1] - v[2]*s[4]*s[5] - v[3]*s[0]*s[2] + v[3]*s[3]*s[5],
		v[0]*s[0]*s[3] - v[0]*s[2]*s[5] - v[1]*s[0]*s[1] - v[1]*s[4]*s[5] + v[2]*s[0]*s[0] + v[2]*s[2]*s[2] + v[2]*s[4]*s[4] - v[3]*s[1]*s[2] - v[3]*s[3]*s[4],
		v[0]*s[0]*s[4] + v[0]*s[1]*s[5] - v[1]*s[0]*s[2] + v[1]*s[3]*s[5] - v[2]*s[1]*s[2] - v[2]*s[3]*s[4] + v[3]*s[0]*s[0] + v[3]*s[1]*s[1] + v[3]*s[3]*s[3],
	}
	return r.Mul(1 / n)
}
