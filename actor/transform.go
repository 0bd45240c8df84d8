package actor

import (
	"github.com/akmonengine/feather4d/ga"
	"github.com/go-gl/mathgl/mgl64"
)

// Transform represents a position and an orientation in 4D space
type Transform struct {
	Position        mgl64.Vec4
	Rotation        mgl64.Mat4
	InverseRotation mgl64.Mat4
}

// NewTransform builds the transform of a body placed at position with the given orientation
func NewTransform(position mgl64.Vec4, orientation ga.Rotor) Transform {
	rotation := orientation.Matrix()

	return Transform{
		Position:        position,
		Rotation:        rotation,
		InverseRotation: rotation.Transpose(),
	}
}

// Apply maps a local-space point to world space
func (t Transform) Apply(point mgl64.Vec4) mgl64.Vec4 {
	return t.Rotation.Mul4x1(point).Add(t.Position)
}

// ApplyInverse maps a world-space point to local space
func (t Transform) ApplyInverse(point mgl64.Vec4) mgl64.Vec4 {
	return t.InverseRotation.Mul4x1(point.Sub(t.Position))
}

// Inverse returns the world-to-local transform
func (t Transform) Inverse() Transform {
	return Transform{
		Position:        t.InverseRotation.Mul4x1(t.Position).Mul(-1),
		Rotation:        t.InverseRotation,
		InverseRotation: t.Rotation,
	}
}
