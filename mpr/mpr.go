// Package mpr implements Minkowski Portal Refinement (MPR) for 4D convex hulls.
//
// MPR finds a contact between two overlapping hulls without building a full polytope:
//  1. Pick an interior point of the Minkowski difference A - B (the center)
//  2. Build a portal: a tetrahedron of support points that the ray from the center
//     towards the origin passes through
//  3. Refine the portal towards the boundary until the origin lies on the center side
//     (the hulls overlap) or a support point proves a separating hyperplane
//  4. Keep refining until the portal stops moving, then read the normal and depth from
//     the portal hyperplane
//
// The contact anchors are recovered by mapping the barycentric coordinates of the
// origin projection back onto the body-local support points.
//
// References:
//   - Snethen: "XenoCollide: Complex Collision Made Simple", Game Programming Gems 7 (2008)
package mpr

import (
	"github.com/akmonengine/feather4d/actor"
	"github.com/akmonengine/feather4d/ga"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const (
	// MaxIterations caps both the discovery and the refinement loops
	MaxIterations = 10

	// Tolerance is the squared distance below which a new support point is considered to
	// lie on the portal hyperplane
	Tolerance = 1e-6

	// BarycentricTolerance admits a portal replacement whose barycentric coordinates
	// are slightly negative
	BarycentricTolerance = 1e-9
)

// centerOffset moves the interior point off the symmetry axes of the hulls. Without it,
// aligned shapes would produce a null first portal direction.
var centerOffset = mgl64.Vec4{0.31e-4, 0.17e-4, 0.23e-4, 0.11e-4}

// ContactPoint is a single potential contact between two hulls.
// Normal points from B towards A and its length is the penetration depth.
type ContactPoint struct {
	LocalA mgl64.Vec4
	LocalB mgl64.Vec4
	Normal mgl64.Vec4
}

func (p ContactPoint) Depth() float64 {
	return p.Normal.Len()
}

// supportPoint is a vertex of the Minkowski difference, with the hull vertices it came from
type supportPoint struct {
	localA mgl64.Vec4
	localB mgl64.Vec4
	point  mgl64.Vec4
}

type portal [4]supportPoint

// hyperplane returns the trivector spanned by the portal
func (p *portal) hyperplane() ga.Trivector {
	return ga.Wedge3(p[1].point.Sub(p[0].point), p[2].point.Sub(p[0].point), p[3].point.Sub(p[0].point))
}

type minkowski struct {
	colliderA  *actor.Collider
	transformA actor.Transform
	colliderB  *actor.Collider
	transformB actor.Transform
}

func (m minkowski) support(direction mgl64.Vec4) supportPoint {
	a := m.colliderA.Support(m.transformA.InverseRotation.Mul4x1(direction))
	b := m.colliderB.Support(m.transformB.InverseRotation.Mul4x1(direction.Mul(-1)))

	return supportPoint{
		localA: a,
		localB: b,
		point:  m.transformA.Apply(a).Sub(m.transformB.Apply(b)),
	}
}

// Collide tests two hulls placed at their transforms for overlap.
//
// Returns:
//   - ContactPoint: body-local anchors and a normal pointing from B to A, scaled by the
//     penetration depth
//   - bool: false when the hulls are separated, or when the refinement does not
//     converge
func Collide(colliderA *actor.Collider, transformA actor.Transform, colliderB *actor.Collider, transformB actor.Transform) (ContactPoint, bool) {
	m := minkowski{colliderA, transformA, colliderB, transformB}
	center := transformA.Position.Sub(transformB.Position).Add(centerOffset)

	var p portal
	if !discover(m, center, &p) {
		return ContactPoint{}, false
	}

	// Move the portal outwards until the origin is on the center side of it
	for i := range MaxIterations {
		plane := p.hyperplane()
		direction := plane.Reject(p[0].point.Sub(center))
		if direction.Dot(p[0].point) >= 0 {
			break
		}

		next := m.support(direction)
		if next.point.Dot(direction) < 0 ||
			plane.Reject(next.point.Sub(p[0].point)).LenSqr() < Tolerance ||
			i == MaxIterations-1 {
			return ContactPoint{}, false
		}
		if !replace(center, &p, next) {
			return ContactPoint{}, false
		}
	}

	// Push the portal onto the boundary for the depth estimate
	for range MaxIterations {
		plane := p.hyperplane()
		next := m.support(plane.Reject(p[0].point.Sub(center)))
		if plane.Reject(next.point.Sub(p[0].point)).LenSqr() < Tolerance {
			break
		}
		if !replace(center, &p, next) {
			break
		}
	}

	return contact(center, &p)
}

// discover builds the initial portal, each vertex found along the direction from the
// span of the previous ones towards the origin.
func discover(m minkowski, center mgl64.Vec4, p *portal) bool {
	direction := center.Mul(-1)

	for i := range p {
		p[i] = m.support(direction)
		if p[i].point.Dot(direction) < 0 {
			return false
		}
		if i == len(p)-1 {
			break
		}

		span := subspace(center, p, i)
		direction = span(p[i].point.Mul(-1))
		if direction.LenSqr() != 0 {
			continue
		}

		// The origin lies in the span: take any direction out of it
		var mean mgl64.Vec4
		for k := 0; k <= i; k++ {
			mean = mean.Add(p[k].point.Sub(center))
		}
		mean = mean.Mul(1 / float64(i+1))

		direction = span(mgl64.Vec4{-mean[1], mean[0], -mean[3], mean[2]})
		for k := 0; direction.LenSqr() < 1e-12 && k < 4; k++ {
			var axis mgl64.Vec4
			axis[k] = 1
			direction = span(axis)
		}
	}

	return true
}

// subspace returns the rejection from the span of the first i+1 portal vertices,
// relative to the center
func subspace(center mgl64.Vec4, p *portal, i int) func(mgl64.Vec4) mgl64.Vec4 {
	a := p[0].point.Sub(center)
	switch i {
	case 0:
		return func(v mgl64.Vec4) mgl64.Vec4 { return ga.Reject(a, v) }
	case 1:
		plane := ga.Wedge(a, p[1].point.Sub(center))
		return plane.Reject
	default:
		volume := ga.Wedge3(a, p[1].point.Sub(center), p[2].point.Sub(center))
		return volume.Reject
	}
}

// replace swaps one portal vertex for next, choosing the one whose replacement keeps
// the ray from the center to the origin inside the portal cone.
func replace(center mgl64.Vec4, p *portal, next supportPoint) bool {
	target := ga.VecDense(center.Mul(-1))

	for i := range p {
		m := columns(
			next.point.Sub(center),
			p[(i+1)%4].point.Sub(center),
			p[(i+2)%4].point.Sub(center),
			p[(i+3)%4].point.Sub(center),
		)

		var barycentric mat.VecDense
		if err := barycentric.SolveVec(m, target); errors.Is(err, mat.ErrSingular) {
			continue
		}

		inside := true
		for k := range 4 {
			if barycentric.AtVec(k) < -BarycentricTolerance {
				inside = false
				break
			}
		}
		if inside {
			p[i] = next
			return true
		}
	}

	return false
}

// contact reads the result from a converged portal: the normal is the portal
// hyperplane normal, the depth the distance from the origin to that hyperplane.
func contact(center mgl64.Vec4, p *portal) (ContactPoint, bool) {
	plane := p.hyperplane()
	depth := plane.Reject(p[0].point.Mul(-1)).Len()

	normal := plane.Reject(p[0].point.Sub(center))
	if normal.LenSqr() == 0 || depth == 0 {
		return ContactPoint{}, false
	}
	normal = normal.Normalize()

	// Barycentric coordinates of the origin projected onto the portal
	projection := normal.Mul(p[0].point.Dot(normal))
	weights := mgl64.Vec4{0.25, 0.25, 0.25, 0.25}

	var barycentric mat.VecDense
	m := columns(p[0].point, p[1].point, p[2].point, p[3].point)
	if err := barycentric.SolveVec(m, ga.VecDense(projection)); !errors.Is(err, mat.ErrSingular) {
		weights = ga.Vec4FromVec(&barycentric)
	}

	var localA, localB mgl64.Vec4
	for k := range p {
		localA = localA.Add(p[k].localA.Mul(weights[k]))
		localB = localB.Add(p[k].localB.Mul(weights[k]))
	}

	return ContactPoint{
		LocalA: localA,
		LocalB: localB,
		Normal: normal.Mul(-depth),
	}, true
}

func columns(vectors ...mgl64.Vec4) *mat.Dense {
	m := mat.NewDense(4, len(vectors), nil)
	for j, v := range vectors {
		m.SetCol(j, v[:])
	}
	return m
}
