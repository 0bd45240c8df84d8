package actor

import (
	"math"

	"github.com/akmonengine/feather4d/ga"
	"github.com/go-gl/mathgl/mgl64"
)

// BodyID identifies a rigid body inside a store
type BodyID uint64

// BodyType represents the type of rigid body
type BodyType int

const (
	// BodyTypeDynamic bodies are affected by forces, gravity, and collisions
	// They have finite mass and can move freely
	BodyTypeDynamic BodyType = iota

	// BodyTypeStatic bodies are immovable and have infinite mass
	// They are not affected by forces or gravity (e.g., ground, walls)
	BodyTypeStatic
)

// Material holds the per-body factors applied by the integrator
type Material struct {
	LinearDamping  float64 // velocity multiplier per step, 1 = no damping
	AngularDamping float64 // angular velocity multiplier per step, 1 = no damping
	GravityScale   float64
}

func DefaultMaterial() Material {
	return Material{
		LinearDamping:  1.0,
		AngularDamping: 1.0,
		GravityScale:   1.0,
	}
}

// RigidBody represents a rigid body in the physics simulation
type RigidBody struct {
	Position    mgl64.Vec4
	Orientation ga.Rotor

	Velocity        mgl64.Vec4  // Linear velocity
	AngularVelocity ga.Bivector // Rotation rate in each of the 6 planes

	// Inertia is a single scalar standing in for the 6x6 tensor over bivector space
	Mass           float64
	InverseMass    float64
	Inertia        float64
	InverseInertia float64

	accumulatedForce  mgl64.Vec4
	accumulatedTorque ga.Bivector

	Material Material
	BodyType BodyType
}

// NewRigidBody creates a new rigid body with the given properties
// mass is ignored for static bodies, which always have infinite mass
func NewRigidBody(position mgl64.Vec4, bodyType BodyType, mass float64) *RigidBody {
	rb := &RigidBody{
		Position:    position,
		Orientation: ga.RotorIdent(),
		Material:    DefaultMaterial(),
		BodyType:    bodyType,
	}

	if bodyType == BodyTypeStatic {
		rb.Material.GravityScale = 0
		return rb.WithMass(math.Inf(1))
	}
	return rb.WithMass(mass)
}

// NewStaticBody creates an immovable body with infinite mass
func NewStaticBody(position mgl64.Vec4) *RigidBody {
	return NewRigidBody(position, BodyTypeStatic, 0)
}

// WithMass sets mass and the scalar inertia to mass, and their inverses to 1/mass.
// An infinite mass makes the body static.
func (rb *RigidBody) WithMass(mass float64) *RigidBody {
	rb.Mass = mass
	rb.Inertia = mass
	if math.IsInf(mass, 1) {
		rb.InverseMass = 0
		rb.InverseInertia = 0
		rb.BodyType = BodyTypeStatic
	} else {
		rb.InverseMass = 1.0 / mass
		rb.InverseInertia = 1.0 / mass
	}

	return rb
}

// Integrate is the predict half of the step: damping, gravity, and accumulated forces
// are folded into the velocities, then the accumulators are cleared.
func (rb *RigidBody) Integrate(dt float64, gravity mgl64.Vec4) {
	if rb.BodyType == BodyTypeStatic {
		rb.ClearForces()
		return
	}

	// ========== LINEAR ==========
	rb.Velocity = rb.Velocity.Mul(rb.Material.LinearDamping)
	acceleration := gravity.Mul(rb.Material.GravityScale).Add(rb.accumulatedForce.Mul(rb.InverseMass))
	rb.Velocity = rb.Velocity.Add(acceleration.Mul(dt))

	// ========== ANGULAR ==========
	// Torque is divided by mass, not by the inertia term
	rb.AngularVelocity = rb.AngularVelocity.Mul(rb.Material.AngularDamping)
	rb.AngularVelocity = rb.AngularVelocity.Add(rb.accumulatedTorque.Mul(dt * rb.InverseMass))

	rb.ClearForces()
}

// Update commits the solved velocities to position and orientation.
func (rb *RigidBody) Update(dt float64) {
	if rb.BodyType == BodyTypeStatic {
		return
	}

	rb.Position = rb.Position.Add(rb.Velocity.Mul(dt))

	rb.Orientation = rb.Orientation.Mul(ga.FromBivector(rb.AngularVelocity.Mul(dt)))
}

func (rb *RigidBody) AddForce(force mgl64.Vec4) {
	if rb.BodyType != BodyTypeStatic {
		rb.accumulatedForce = rb.accumulatedForce.Add(force)
	}
}

func (rb *RigidBody) AddTorque(torque ga.Bivector) {
	if rb.BodyType != BodyTypeStatic {
		rb.accumulatedTorque = rb.accumulatedTorque.Add(torque)
	}
}

func (rb *RigidBody) ClearForces() {
	rb.accumulatedForce = mgl64.Vec4{}
	rb.accumulatedTorque = ga.Bivector{}
}

func (rb *RigidBody) Force() mgl64.Vec4 {
	return rb.accumulatedForce
}

func (rb *RigidBody) Torque() ga.Bivector {
	return rb.accumulatedTorque
}

// ApplyImpulse changes the velocities as if impulse acted at anchor, a world-space
// offset from the body position.
func (rb *RigidBody) ApplyImpulse(anchor, impulse mgl64.Vec4) {
	rb.Velocity = rb.Velocity.Add(impulse.Mul(rb.InverseMass))
	rb.AngularVelocity = rb.AngularVelocity.Add(ga.Wedge(anchor, impulse).Mul(rb.InverseInertia))
}

// VelocityAt returns the linear velocity of the world-space offset anchor.
func (rb *RigidBody) VelocityAt(anchor mgl64.Vec4) mgl64.Vec4 {
	return rb.Velocity.Add(rb.AngularVelocity.Dot(anchor))
}

func (rb *RigidBody) Transform() Transform {
	return NewTransform(rb.Position, rb.Orientation)
}

// Local axes in world space, the columns of the orientation matrix
func (rb *RigidBody) Right() mgl64.Vec4   { return rb.axis(0) }
func (rb *RigidBody) Up() mgl64.Vec4      { return rb.axis(1) }
func (rb *RigidBody) Forward() mgl64.Vec4 { return rb.axis(2) }
func (rb *RigidBody) Ana() mgl64.Vec4     { return rb.axis(3) }

func (rb *RigidBody) axis(i int) mgl64.Vec4 {
	axis := rb.Orientation.Matrix().Col(i)
	if axis.LenSqr() == 0 {
		return axis
	}
	return axis.Normalize()
}
