// Package gjk implements a Gilbert-Johnson-Keerthi (GJK) ray cast against 4D convex hulls.
//
// The ray cast is a conservative advancement: it walks a simplex over the Minkowski
// difference of "ray origin vs. transformed hull", moving the origin along the ray each
// time the current separating direction proves the origin is still outside. The simplex
// is reduced with the classic GJK Voronoi-region tests, generalized from the tetrahedron
// to the 5-cell of 4D space.
//
// References:
//   - Gilbert, Johnson, Keerthi: "A Fast Procedure for Computing the Distance Between
//     Complex Objects in Three-Dimensional Space" (1988)
//   - Van den Bergen: "Ray Casting against General Convex Objects with Application to
//     Continuous Collision Detection" (2004)
package gjk

import (
	"sync"

	"github.com/akmonengine/feather4d/actor"
	"github.com/akmonengine/feather4d/ga"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// MaxIterations caps the ray cast loop. Exhausting it means no hit.
	MaxIterations = 32

	// Tolerance is both the squared separation at which the ray is considered to have
	// reached the hull, and the margin below which the ray cannot advance.
	Tolerance = 1e-5
)

// Simplex represents a set of 0-5 points of the Minkowski difference, newest last.
// Size progression: point → line → triangle → tetrahedron → 5-cell
type Simplex struct {
	Points [5]mgl64.Vec4
	Count  int
}

func (s *Simplex) Reset() {
	s.Count = 0
}

func (s *Simplex) set(points ...mgl64.Vec4) {
	s.Count = copy(s.Points[:], points)
}

var SimplexPool = sync.Pool{
	New: func() interface{} {
		return &Simplex{}
	},
}

// CastRay casts the ray origin + t·direction against the collider placed at transform.
//
// Returns:
//   - t: the ray parameter of the first hit, in units of direction
//   - bool: false when the ray misses, or when the cast gives up after MaxIterations
//
// A ray starting inside the hull hits at t = 0.
func CastRay(origin, direction mgl64.Vec4, collider *actor.Collider, transform actor.Transform) (float64, bool) {
	simplex := SimplexPool.Get().(*Simplex)
	defer SimplexPool.Put(simplex)
	simplex.Reset()

	t := 0.0
	current := origin
	normal := current.Sub(transform.Position)

	for range MaxIterations {
		if normal.LenSqr() < Tolerance {
			return t, true
		}

		point := collider.SupportWorld(transform, normal.Normalize())
		w := current.Sub(point)

		// The support plane separates the current origin from the hull: advance along the ray
		if normal.Dot(w) > 0 {
			if normal.Dot(direction) > -Tolerance {
				return 0, false
			}

			distance := normal.Dot(w) / normal.Dot(direction)
			t -= distance
			current = origin.Add(direction.Mul(t))

			shift := direction.Mul(distance)
			for i := range simplex.Count {
				simplex.Points[i] = simplex.Points[i].Add(shift)
			}
		}

		expand(simplex, point.Sub(current))

		nextNormal, contained := reduce(simplex)
		if contained {
			return t, true
		}
		normal = nextNormal
	}

	return 0, false
}

// expand adds point to the simplex if it lies outside the subspace already spanned.
func expand(simplex *Simplex, point mgl64.Vec4) {
	p := simplex.Points
	var offset mgl64.Vec4

	switch simplex.Count {
	case 0:
		offset = mgl64.Vec4{1, 1, 1, 1}
	case 1:
		offset = point.Sub(p[0])
	case 2:
		offset = ga.Reject(p[1].Sub(p[0]), point.Sub(p[0]))
	case 3:
		offset = ga.Wedge(p[1].Sub(p[0]), p[2].Sub(p[0])).Reject(point.Sub(p[0]))
	case 4:
		offset = ga.Wedge3(p[1].Sub(p[0]), p[2].Sub(p[0]), p[3].Sub(p[0])).Reject(point.Sub(p[0]))
	default:
		return
	}

	if offset.LenSqr() > 0 {
		simplex.Points[simplex.Count] = point
		simplex.Count++
	}
}

// reduce keeps the feature of the simplex closest to the origin and returns the
// direction from that feature towards the origin.
//
// Returns:
//   - true: the origin is inside the simplex, or on its closest feature
//   - false: simplex and direction updated for the next iteration
func reduce(simplex *Simplex) (mgl64.Vec4, bool) {
	switch simplex.Count {
	case 1:
		return point(simplex)
	case 2:
		return line(simplex)
	case 3:
		return triangle(simplex)
	case 4:
		return tetrahedron(simplex)
	case 5:
		return fiveCell(simplex)
	}
	return mgl64.Vec4{}, false
}

func point(simplex *Simplex) (mgl64.Vec4, bool) {
	a := simplex.Points[0]
	if a.LenSqr() == 0 {
		return mgl64.Vec4{}, true
	}
	return a.Mul(-1), false
}

func line(simplex *Simplex) (mgl64.Vec4, bool) {
	b, a := simplex.Points[0], simplex.Points[1]
	ao := a.Mul(-1)

	if b.Sub(a).Dot(ao) < 0 {
		simplex.set(a)
		return point(simplex)
	}
	if a.Sub(b).Dot(b.Mul(-1)) < 0 {
		simplex.set(b)
		return point(simplex)
	}

	return closest(ga.Reject(b.Sub(a), ao))
}

func triangle(simplex *Simplex) (mgl64.Vec4, bool) {
	c, b, a := simplex.Points[0], simplex.Points[1], simplex.Points[2]
	ao := a.Mul(-1)

	// Edge regions, tested against the outward edge normals within the triangle plane
	if ga.Reject(b.Sub(a), c.Sub(b)).Dot(ao) < 0 {
		simplex.set(b, a)
		return line(simplex)
	}
	if ga.Reject(c.Sub(a), b.Sub(c)).Dot(ao) < 0 {
		simplex.set(c, a)
		return line(simplex)
	}
	if ga.Reject(b.Sub(c), a.Sub(b)).Dot(b.Mul(-1)) < 0 {
		simplex.set(b, c)
		return line(simplex)
	}

	return closest(ga.Wedge(b.Sub(a), c.Sub(a)).Reject(ao))
}

func tetrahedron(simplex *Simplex) (mgl64.Vec4, bool) {
	d, c, b, a := simplex.Points[0], simplex.Points[1], simplex.Points[2], simplex.Points[3]
	ao := a.Mul(-1)

	if ga.Wedge(d.Sub(a), c.Sub(a)).Reject(b.Sub(c)).Dot(ao) < 0 {
		simplex.set(d, c, a)
		return triangle(simplex)
	}
	if ga.Wedge(d.Sub(a), b.Sub(a)).Reject(c.Sub(b)).Dot(ao) < 0 {
		simplex.set(d, b, a)
		return triangle(simplex)
	}
	if ga.Wedge(c.Sub(a), b.Sub(a)).Reject(d.Sub(b)).Dot(ao) < 0 {
		simplex.set(c, b, a)
		return triangle(simplex)
	}
	if ga.Wedge(c.Sub(b), d.Sub(b)).Reject(a.Sub(b)).Dot(b.Mul(-1)) < 0 {
		simplex.set(b, c, d)
		return triangle(simplex)
	}

	return closest(ga.Wedge3(b.Sub(a), c.Sub(a), d.Sub(a)).Reject(ao))
}

func fiveCell(simplex *Simplex) (mgl64.Vec4, bool) {
	e, d, c, b, a := simplex.Points[0], simplex.Points[1], simplex.Points[2], simplex.Points[3], simplex.Points[4]
	ao := a.Mul(-1)

	// Each cell is tested against its outward normal, the rejection of the opposite vertex
	if ga.Wedge3(c.Sub(a), d.Sub(a), e.Sub(a)).Reject(b.Sub(c)).Dot(ao) < 0 {
		simplex.set(c, d, e, a)
		return tetrahedron(simplex)
	}
	if ga.Wedge3(b.Sub(a), d.Sub(a), e.Sub(a)).Reject(c.Sub(b)).Dot(ao) < 0 {
		simplex.set(b, d, e, a)
		return tetrahedron(simplex)
	}
	if ga.Wedge3(b.Sub(a), c.Sub(a), e.Sub(a)).Reject(d.Sub(b)).Dot(ao) < 0 {
		simplex.set(b, c, e, a)
		return tetrahedron(simplex)
	}
	if ga.Wedge3(b.Sub(a), c.Sub(a), d.Sub(a)).Reject(e.Sub(b)).Dot(ao) < 0 {
		simplex.set(b, c, d, a)
		return tetrahedron(simplex)
	}
	if ga.Wedge3(c.Sub(b), d.Sub(b), e.Sub(b)).Reject(a.Sub(b)).Dot(b.Mul(-1)) < 0 {
		simplex.set(b, c, d, e)
		return tetrahedron(simplex)
	}

	// Origin enclosed by the 5-cell
	return mgl64.Vec4{}, true
}

// closest turns the direction from a full-dimensional feature into a result: a zero
// direction means the origin lies on the feature.
func closest(direction mgl64.Vec4) (mgl64.Vec4, bool) {
	if direction.LenSqr() > 0 {
		return direction, false
	}
	return mgl64.Vec4{}, true
}
