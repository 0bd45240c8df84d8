package feather4d

import (
	"iter"
	"slices"

	"github.com/akmonengine/feather4d/actor"
	"github.com/akmonengine/feather4d/config"
	"github.com/akmonengine/feather4d/constraint"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	// ErrSameBody is returned when a pair names the same body twice
	ErrSameBody = errors.New("same body")

	// ErrBodyNotFound is returned for an identifier the world does not hold
	ErrBodyNotFound = errors.New("body not found")
)

// entry is a body stored in the world, with its optional collider
type entry struct {
	id       actor.BodyID
	body     *actor.RigidBody
	collider *actor.Collider
}

type World struct {
	// Gravity acceleration (m/s², or N/kg)
	Gravity mgl64.Vec4
	// Timestep is the step length used by Update
	Timestep float64
	// Iterations is the number of solver passes per step
	Iterations int

	Constraints *constraint.Constraints
	Events      Events

	// Bodies in insertion order, which is also identifier order
	bodies []entry
	index  map[actor.BodyID]int
	nextID actor.BodyID

	logger *zap.Logger
}

// NewWorld creates an empty world. A nil logger discards everything.
func NewWorld(cfg config.World, logger *zap.Logger) *World {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &World{
		Gravity:     cfg.Gravity(),
		Timestep:    cfg.Timestep,
		Iterations:  max(cfg.Iterations, 1),
		Constraints: constraint.NewConstraints(logger),
		Events:      NewEvents(),
		index:       make(map[actor.BodyID]int),
		nextID:      1,
		logger:      logger,
	}
}

// AddBody adds a rigid body to the world and returns its identifier.
// A nil collider makes the body invisible to collisions and ray casts.
func (w *World) AddBody(body *actor.RigidBody, collider *actor.Collider) actor.BodyID {
	id := w.nextID
	w.nextID++

	w.index[id] = len(w.bodies)
	w.bodies = append(w.bodies, entry{id: id, body: body, collider: collider})

	return id
}

func (w *World) Body(id actor.BodyID) (*actor.RigidBody, bool) {
	i, ok := w.index[id]
	if !ok {
		return nil, false
	}
	return w.bodies[i].body, true
}

func (w *World) Collider(id actor.BodyID) (*actor.Collider, bool) {
	i, ok := w.index[id]
	if !ok {
		return nil, false
	}
	return w.bodies[i].collider, true
}

// RemoveBody removes a rigid body from the world, with every joint and arbiter
// referencing it
func (w *World) RemoveBody(id actor.BodyID) bool {
	k, ok := w.index[id]
	if !ok {
		return false
	}

	w.bodies = slices.Delete(w.bodies, k, k+1)
	delete(w.index, id)
	for i := k; i < len(w.bodies); i++ {
		w.index[w.bodies[i].id] = i
	}

	for _, key := range w.Constraints.RemoveBody(id) {
		w.logger.Debug("arbiter removed", zap.Uint64("bodyA", uint64(key.A)), zap.Uint64("bodyB", uint64(key.B)))
	}
	w.Events.forget(id)

	return true
}

// Pair returns two distinct bodies at once, both mutable
func (w *World) Pair(a, b actor.BodyID) (*actor.RigidBody, *actor.RigidBody, error) {
	if a == b {
		return nil, nil, errors.Wrapf(ErrSameBody, "pair (%d, %d)", a, b)
	}

	bodyA, ok := w.Body(a)
	if !ok {
		return nil, nil, errors.Wrapf(ErrBodyNotFound, "body %d", a)
	}
	bodyB, ok := w.Body(b)
	if !ok {
		return nil, nil, errors.Wrapf(ErrBodyNotFound, "body %d", b)
	}

	return bodyA, bodyB, nil
}

// Bodies iterates over the bodies in insertion order
func (w *World) Bodies() iter.Seq2[actor.BodyID, *actor.RigidBody] {
	return func(yield func(actor.BodyID, *actor.RigidBody) bool) {
		for _, e := range w.bodies {
			if !yield(e.id, e.body) {
				return
			}
		}
	}
}

func (w *World) Len() int {
	return len(w.bodies)
}

// AddJoint pins localA of body a onto localB of body b with a ball joint
func (w *World) AddJoint(a, b actor.BodyID, localA, localB mgl64.Vec4) (*constraint.Joint, error) {
	if _, _, err := w.Pair(a, b); err != nil {
		return nil, errors.Wrap(err, "adding joint")
	}

	joint := constraint.NewJoint(a, b, localA, localB)
	w.Constraints.AddJoint(joint)
	w.logger.Debug("joint added", zap.Uint64("bodyA", uint64(a)), zap.Uint64("bodyB", uint64(b)))

	return joint, nil
}

func (w *World) RemoveJoint(a, b actor.BodyID) bool {
	if !w.Constraints.RemoveJoint(a, b) {
		return false
	}

	w.logger.Debug("joint removed", zap.Uint64("bodyA", uint64(a)), zap.Uint64("bodyB", uint64(b)))
	return true
}

// Step advances the simulation by dt: velocities are predicted from forces, corrected
// by the constraints, then committed to the poses.
func (w *World) Step(dt float64) {
	w.integrate(dt)

	w.Constraints.Prepare(dt, w)
	for range w.Iterations {
		w.Constraints.Apply(w)
	}

	w.update(dt)
}

// Update runs the collision pass then one step of Timestep
func (w *World) Update() []OverlapDelta {
	deltas := w.DoCollisions()
	w.Step(w.Timestep)

	return deltas
}

func (w *World) integrate(dt float64) {
	for _, e := range w.bodies {
		e.body.Integrate(dt, w.Gravity)
	}
}

func (w *World) update(dt float64) {
	for _, e := range w.bodies {
		e.body.Update(dt)
	}
}
