package ga

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// Reject returns the component of v orthogonal to the line spanned by s.
// A zero s yields the zero vector.
func Reject(s, v mgl64.Vec4) mgl64.Vec4 {
	n := s.LenSqr()
	if n == 0 {
		return mgl64.Vec4{}
	}

	r := mgl64.Vec4{
		v[0]*s[1]*s[1] + v[0]*s[2]*s[2] + v[0]*s[3]*s[3] - v[1]*s[0]*s[1] - v[2]*s[0]*s[2] - v[3]*s[0]*s[3],
		-v[0]*s[0]*s[1] + v[1]*s[0]*s[0] + v[1]*s[2]*s[2] + v[1]*s[3]*s[3] - v[2]*s[1]*s[2] - v[3]*s[1]*s[3],
		-v[0]*s[0]*s[2] - v[1]*s[1]*s[2] + v[2]*s[0]*s[0] + v[2]*s[1]*s[1] + v[2]*s[3]*s[3] - v[3]*s[2]*s[3],
		-v[0]*s[0]*s[3] - v[1]*s[1]*s[3] - v[2]*s[2]*s[3] + v[3]*s[0]*s[0] + v[3]*s[1]*s[1] + v[3]*s[2]*s[2],
	}
	return r.Mul(1 / n)
}

// DotVectorMatrix returns the 4x6 matrix J such that J·ω equals ω.Dot(v) for any
// bivector ω. Its transpose maps a linear impulse f at v to the angular impulse v∧f.
func DotVectorMatrix(v mgl64.Vec4) *mat.Dense {
	return mat.NewDense(4, 6, []float64{
		-v[1], -v[2], -v[3], 0, 0, 0,
		v[0], 0, 0, -v[2], -v[3], 0,
		0, v[0], 0, v[1], 0, -v[3],
		0, 0, v[0], 0, v[1], v[2],
	})
}

// Vec4FromVec converts a 4-component gonum vector.
func Vec4FromVec(v mat.Vector) mgl64.Vec4 {
	if v.Len() != 4 {
		panic("ga: vector needs exactly 4 components")
	}
	return mgl64.Vec4{v.AtVec(0), v.AtVec(1), v.AtVec(2), v.AtVec(3)}
}

// VecDense converts v to a gonum vector.
func VecDense(v mgl64.Vec4) *mat.VecDense {
	return mat.NewVecDense(4, []float64{v[0], v[1], v[2], v[3]})
}
