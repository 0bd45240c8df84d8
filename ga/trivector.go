package ga

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Trivector is an oriented volume of 4D space, stored as e012, e013, e023, e123.
type Trivector [4]float64

// Wedge3 returns a∧b∧c.
func Wedge3(a, b, c mgl64.Vec4) Trivector {
	return Wedge(b, c).Wedge(a)
}

func (t Trivector) LenSqr() float64 {
	return t[0]*t[0] + t[1]*t[1] + t[2]*t[2] + t[3]*t[3]
}

func (t Trivector) Len() float64 {
	return math.Sqrt(t.LenSqr())
}

// Reject returns the component of v orthogonal to the hyperplane t, which is the
// projection of v onto the hyperplane normal. A null trivector yields the zero vector.
func (t Trivector) Reject(v mgl64.Vec4) mgl64.Vec4 {
	n := t.LenSqr()
	if n == 0 {
		return mgl64.Vec4{}
	}

	k := (v[0]*t[3] - v[1]*t[2] + v[2]*t[1] - v[3]*t[0]) / n
	return mgl64.Vec4{t[3] * k, -t[2] * k, t[1] * k, -t[0] * k}
}
