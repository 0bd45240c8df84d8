package constraint

import (
	"math"

	"github.com/akmonengine/feather4d/actor"
	"github.com/akmonengine/feather4d/ga"
	"github.com/akmonengine/feather4d/mpr"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const (
	// Restitution scales the closing velocity fed back as rebound
	Restitution = 0.1

	// BiasFactor is the fraction of the penetration corrected per step (Baumgarte)
	BiasFactor = 0.1

	// DepthSlop is the penetration left uncorrected, so resting contacts persist
	DepthSlop = 0.001

	// ReboundSlop is the closing speed below which contacts do not bounce
	ReboundSlop = 0.1

	// Friction caps each tangential impulse at this fraction of the normal impulse
	Friction = 0.3

	// DriftTolerance is how far an anchor may slide along the tangent basis before the
	// contact is dropped
	DriftTolerance = 0.01
)

// Contact is a single point non-penetration constraint with friction.
// Impulses are solved along a basis whose first axis is the contact normal.
type Contact struct {
	LocalA mgl64.Vec4
	LocalB mgl64.Vec4

	// World-space offsets of the anchors from each body position
	anchorA mgl64.Vec4
	anchorB mgl64.Vec4

	// World-space anchor positions, now and when the contact was created
	WorldA  mgl64.Vec4
	WorldB  mgl64.Vec4
	originA mgl64.Vec4
	originB mgl64.Vec4

	// Columns: normal, then three tangents
	basis mgl64.Mat4

	Depth float64
	Valid bool

	effectiveMass mgl64.Vec4
	impulse       mgl64.Vec4
	bias          float64
}

// NewContact builds a contact from an MPR result and records the current anchors
// as the reference for drift tracking
func NewContact(point mpr.ContactPoint, a, b *actor.RigidBody) *Contact {
	c := &Contact{
		LocalA: point.LocalA,
		LocalB: point.LocalB,
		basis:  Basis(point.Normal),
		Depth:  point.Depth(),
		Valid:  true,
	}
	c.Update(true, a, b)

	return c
}

// Basis returns an orthonormal basis whose first column is the normalized normal.
// The tangents are closed-form complements of the normal's components.
func Basis(normal mgl64.Vec4) mgl64.Mat4 {
	n := normal
	if n.LenSqr() > 0 {
		n = n.Normalize()
	}

	return mgl64.Mat4FromCols(
		n,
		mgl64.Vec4{-n[1], n[0], -n[3], n[2]},
		mgl64.Vec4{n[2], -n[3], -n[0], n[1]},
		mgl64.Vec4{n[3], n[2], -n[1], -n[0]},
	)
}

func (c *Contact) Normal() mgl64.Vec4 {
	return c.basis.Col(0)
}

func (c *Contact) Basis() mgl64.Mat4 {
	return c.basis
}

// Impulse returns the accumulated impulse along each basis axis
func (c *Contact) Impulse() mgl64.Vec4 {
	return c.impulse
}

// Update recomputes the world anchors from the body poses. Past the first call, the
// contact stays valid only while the bodies still overlap along the normal and neither
// anchor has slid further than DriftTolerance since creation.
func (c *Contact) Update(first bool, a, b *actor.RigidBody) {
	c.anchorA = a.Orientation.Matrix().Mul4x1(c.LocalA)
	c.WorldA = a.Position.Add(c.anchorA)
	c.anchorB = b.Orientation.Matrix().Mul4x1(c.LocalB)
	c.WorldB = b.Position.Add(c.anchorB)

	if first {
		c.originA = c.WorldA
		c.originB = c.WorldB
		return
	}

	separation := c.WorldB.Sub(c.WorldA).Dot(c.Normal())
	if separation > 0 &&
		c.tangentialDrift(c.WorldA.Sub(c.originA)) < DriftTolerance &&
		c.tangentialDrift(c.WorldB.Sub(c.originB)) < DriftTolerance {
		c.Depth = separation
	} else {
		c.Valid = false
	}
}

func (c *Contact) tangentialDrift(drift mgl64.Vec4) float64 {
	local := c.basis.Transpose().Mul4x1(drift)
	return math.Sqrt(local[1]*local[1] + local[2]*local[2] + local[3]*local[3])
}

// Prepare computes the effective mass per axis and the bias, then applies the impulse
// accumulated last step as a warm start.
func (c *Contact) Prepare(dt float64, a, b *actor.RigidBody) error {
	// Column-major storage read row-major is the transpose
	columns := c.basis
	basisT := mat.NewDense(4, 4, columns[:])

	var jacobianA, jacobianB mat.Dense
	jacobianA.Mul(basisT, ga.DotVectorMatrix(c.anchorA))
	jacobianB.Mul(basisT, ga.DotVectorMatrix(c.anchorB))

	for i := range 4 {
		rowA := jacobianA.RowView(i)
		rowB := jacobianB.RowView(i)

		k := a.InverseMass + b.InverseMass +
			mat.Dot(rowA, rowA)*a.InverseInertia +
			mat.Dot(rowB, rowB)*b.InverseInertia
		if k == 0 {
			return errors.Wrapf(ErrSingular, "contact axis %d", i)
		}
		c.effectiveMass[i] = 1 / k
	}

	velocity := a.VelocityAt(c.anchorA).Sub(b.VelocityAt(c.anchorB))
	c.bias = BiasFactor*math.Max(c.Depth-DepthSlop, 0)/dt +
		Restitution*math.Max(c.Normal().Dot(velocity)-ReboundSlop, 0)

	c.applyImpulse(a, b, c.basis.Mul4x1(c.impulse))
	return nil
}

// Apply solves one iteration: the normal impulse never pulls, and the tangential
// impulses stay inside the friction box.
func (c *Contact) Apply(a, b *actor.RigidBody) {
	velocity := a.VelocityAt(c.anchorA).Sub(b.VelocityAt(c.anchorB))

	delta := c.basis.Transpose().Mul4x1(velocity.Mul(-1))
	delta[0] += c.bias
	for i := range delta {
		delta[i] *= c.effectiveMass[i]
	}

	previous := c.impulse
	c.impulse[0] = math.Max(delta[0]+c.impulse[0], 0)
	maxTangential := Friction * c.impulse[0]
	for i := 1; i < 4; i++ {
		c.impulse[i] = mgl64.Clamp(delta[i]+c.impulse[i], -maxTangential, maxTangential)
	}

	c.applyImpulse(a, b, c.basis.Mul4x1(c.impulse.Sub(previous)))
}

func (c *Contact) applyImpulse(a, b *actor.RigidBody, impulse mgl64.Vec4) {
	a.ApplyImpulse(c.anchorA, impulse)
	b.ApplyImpulse(c.anchorB, impulse.Mul(-1))
}
