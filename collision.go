package feather4d

import (
	"math"
	"slices"

	"github.com/akmonengine/feather4d/actor"
	"github.com/akmonengine/feather4d/constraint"
	"github.com/akmonengine/feather4d/gjk"
	"github.com/akmonengine/feather4d/mpr"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// OverlapDelta reports a change in the number of contact pairs a body belongs to
type OverlapDelta struct {
	Body  actor.BodyID
	Delta int
}

// DoCollisions tests every pair of bodies with colliders, in insertion order, and keeps
// the contact arbiters in sync: an arbiter is created on first contact, updated while
// the contact lasts, and removed once it is lost.
//
// Returns the overlap changes in the order they occurred. Collision events are
// delivered to the subscribers before returning.
func (w *World) DoCollisions() []OverlapDelta {
	var deltas []OverlapDelta

	for i := range w.bodies {
		a := w.bodies[i]
		if a.collider == nil {
			continue
		}

		for j := i + 1; j < len(w.bodies); j++ {
			b := w.bodies[j]
			if b.collider == nil {
				continue
			}

			point, touching := collide(a, b)
			arbiter, exists := w.Constraints.Arbiter(a.id, b.id)

			switch {
			case touching && exists:
				arbiter.Update(point, a.body, b.body)
			case touching:
				w.Constraints.AddArbiter(constraint.NewArbiter(a.id, b.id, point, a.body, b.body))
				deltas = append(deltas, OverlapDelta{Body: a.id, Delta: 1}, OverlapDelta{Body: b.id, Delta: 1})
				w.logger.Debug("arbiter created", zap.Uint64("bodyA", uint64(a.id)), zap.Uint64("bodyB", uint64(b.id)))
			case exists:
				w.Constraints.RemoveArbiter(a.id, b.id)
				deltas = append(deltas, OverlapDelta{Body: a.id, Delta: -1}, OverlapDelta{Body: b.id, Delta: -1})
				w.logger.Debug("arbiter removed", zap.Uint64("bodyA", uint64(a.id)), zap.Uint64("bodyB", uint64(b.id)))
			}

			if touching {
				w.Events.recordCollision(constraint.MakePairKey(a.id, b.id))
			}
		}
	}

	w.Events.flush()
	return deltas
}

// collide is the narrow phase of a pair, behind a bounding sphere test.
// Two static bodies never touch.
func collide(a, b entry) (mpr.ContactPoint, bool) {
	if a.body.BodyType == actor.BodyTypeStatic && b.body.BodyType == actor.BodyTypeStatic {
		return mpr.ContactPoint{}, false
	}
	if a.body.Position.Sub(b.body.Position).Len() >= a.collider.Radius()+b.collider.Radius() {
		return mpr.ContactPoint{}, false
	}

	return mpr.Collide(a.collider, a.body.Transform(), b.collider, b.body.Transform())
}

// CastRay finds the nearest body hit by the ray origin + t·direction, skipping the
// ignored bodies.
//
// Returns:
//   - BodyID: the body hit
//   - float64: the ray parameter t of the hit
//   - bool: false when no collider is hit
func (w *World) CastRay(origin, direction mgl64.Vec4, ignore ...actor.BodyID) (actor.BodyID, float64, bool) {
	var nearest actor.BodyID
	nearestT := math.Inf(1)
	found := false

	for _, e := range w.bodies {
		if e.collider == nil || slices.Contains(ignore, e.id) {
			continue
		}

		if t, hit := gjk.CastRay(origin, direction, e.collider, e.body.Transform()); hit && t < nearestT {
			nearest, nearestT, found = e.id, t, true
		}
	}

	if !found {
		return 0, 0, false
	}
	return nearest, nearestT, true
}
