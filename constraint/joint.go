package constraint

import (
	"github.com/akmonengine/feather4d/actor"
	"github.com/akmonengine/feather4d/ga"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// JointBiasFactor is the fraction of the anchor separation corrected per step
const JointBiasFactor = 0.5

// Joint is a ball joint, pinning an anchor of body A onto an anchor of body B.
// The relative motion is constrained in all four linear directions; rotation stays free.
type Joint struct {
	BodyA  actor.BodyID
	BodyB  actor.BodyID
	LocalA mgl64.Vec4
	LocalB mgl64.Vec4

	anchorA mgl64.Vec4
	anchorB mgl64.Vec4

	// Inverse of the 4x4 constraint mass matrix
	effectiveMass mat.Dense
	bias          mgl64.Vec4
	impulse       mgl64.Vec4
}

func NewJoint(idA, idB actor.BodyID, localA, localB mgl64.Vec4) *Joint {
	return &Joint{
		BodyA:  idA,
		BodyB:  idB,
		LocalA: localA,
		LocalB: localB,
	}
}

// Impulse returns the linear impulse accumulated over the current step
func (j *Joint) Impulse() mgl64.Vec4 {
	return j.impulse
}

// Prepare builds and inverts the constraint mass matrix
//
//	K = (1/mA + 1/mB)·I + 1/IA·JA·JAᵀ + 1/IB·JB·JBᵀ
//
// then applies last step's impulse as a warm start. A singular K resets the
// accumulated impulse and returns ErrSingular.
func (j *Joint) Prepare(dt float64, a, b *actor.RigidBody) error {
	j.anchorA = a.Orientation.Matrix().Mul4x1(j.LocalA)
	j.anchorB = b.Orientation.Matrix().Mul4x1(j.LocalB)
	jacobianA := ga.DotVectorMatrix(j.anchorA)
	jacobianB := ga.DotVectorMatrix(j.anchorB)

	var k, angularB mat.Dense
	k.Mul(jacobianA, jacobianA.T())
	k.Scale(a.InverseInertia, &k)
	angularB.Mul(jacobianB, jacobianB.T())
	angularB.Scale(b.InverseInertia, &angularB)
	k.Add(&k, &angularB)
	for i := range 4 {
		k.Set(i, i, k.At(i, i)+a.InverseMass+b.InverseMass)
	}

	if err := j.effectiveMass.Inverse(&k); err != nil {
		j.impulse = mgl64.Vec4{}
		return errors.Wrapf(ErrSingular, "joint mass matrix: %v", err)
	}

	worldA := a.Position.Add(j.anchorA)
	worldB := b.Position.Add(j.anchorB)
	j.bias = worldA.Sub(worldB).Mul(JointBiasFactor / dt)

	j.applyImpulse(a, b, j.impulse)
	return nil
}

// Apply solves one iteration, driving the relative anchor velocity to the bias
func (j *Joint) Apply(a, b *actor.RigidBody) {
	velocity := a.VelocityAt(j.anchorA).Sub(b.VelocityAt(j.anchorB))

	var delta mat.VecDense
	delta.MulVec(&j.effectiveMass, ga.VecDense(velocity.Add(j.bias).Mul(-1)))
	impulse := ga.Vec4FromVec(&delta)

	j.impulse = j.impulse.Add(impulse)
	j.applyImpulse(a, b, impulse)
}

func (j *Joint) applyImpulse(a, b *actor.RigidBody, impulse mgl64.Vec4) {
	a.ApplyImpulse(j.anchorA, impulse)
	b.ApplyImpulse(j.anchorB, impulse.Mul(-1))
}
