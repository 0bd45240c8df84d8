package actor

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"
)

// Collider is an immutable convex hull attached to one rigid body.
// Only the hull vertices are kept: GJK and MPR need nothing but the support function.
type Collider struct {
	hull   []mgl64.Vec4
	radius float64
}

// NewCollider builds a hull from a vertex list, dropping duplicate vertices.
// The bounding radius is the largest vertex norm, measured from the body origin.
func NewCollider(vertices []mgl64.Vec4) *Collider {
	hull := lo.Uniq(vertices)

	return &Collider{
		hull: hull,
		radius: lo.Max(lo.Map(hull, func(v mgl64.Vec4, _ int) float64 {
			return v.Len()
		})),
	}
}

// NewMeshCollider builds the hull of a mesh
func NewMeshCollider(mesh Mesh) *Collider {
	return NewCollider(mesh.Vertices)
}

// Hull returns a copy of the deduplicated vertices, in first-seen order
func (c *Collider) Hull() []mgl64.Vec4 {
	return append([]mgl64.Vec4(nil), c.hull...)
}

func (c *Collider) Radius() float64 {
	return c.radius
}

// Support returns the hull vertex furthest along direction, in local space.
// Ties go to the vertex that comes first in the hull.
func (c *Collider) Support(direction mgl64.Vec4) mgl64.Vec4 {
	if len(c.hull) == 0 {
		return mgl64.Vec4{}
	}

	best := c.hull[0]
	bestDot := best.Dot(direction)
	for _, v := range c.hull[1:] {
		if d := v.Dot(direction); d > bestDot {
			best = v
			bestDot = d
		}
	}
	return best
}

// SupportWorld returns the support point of the hull placed at transform, for a
// world-space direction.
func (c *Collider) SupportWorld(transform Transform, direction mgl64.Vec4) mgl64.Vec4 {
	// 1. Direction to local space (translation does not apply to directions)
	localDirection := transform.InverseRotation.Mul4x1(direction)

	// 2. Local support point
	localSupport := c.Support(localDirection)

	// 3. Back to world space
	return transform.Apply(localSupport)
}
