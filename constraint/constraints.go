package constraint

import (
	"slices"

	"github.com/akmonengine/feather4d/actor"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// prepared is a constraint ready to be applied this step, with the bodies it binds
type prepared struct {
	bodyA      actor.BodyID
	bodyB      actor.BodyID
	constraint Constraint
}

// Constraints owns the joints and contact arbiters of a world, keyed by body pair.
// Both are solved in ascending pair order, joints first.
type Constraints struct {
	joints   map[PairKey]*Joint
	arbiters map[PairKey]*Arbiter
	prepared []prepared
	logger   *zap.Logger
}

func NewConstraints(logger *zap.Logger) *Constraints {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Constraints{
		joints:   make(map[PairKey]*Joint),
		arbiters: make(map[PairKey]*Arbiter),
		logger:   logger,
	}
}

// AddJoint registers a joint, replacing any joint already binding the same pair
func (c *Constraints) AddJoint(joint *Joint) {
	c.joints[MakePairKey(joint.BodyA, joint.BodyB)] = joint
}

func (c *Constraints) Joint(a, b actor.BodyID) (*Joint, bool) {
	joint, ok := c.joints[MakePairKey(a, b)]
	return joint, ok
}

func (c *Constraints) RemoveJoint(a, b actor.BodyID) bool {
	key := MakePairKey(a, b)
	_, ok := c.joints[key]
	delete(c.joints, key)
	return ok
}

// AddArbiter registers an arbiter, replacing any arbiter already tracking the same pair
func (c *Constraints) AddArbiter(arbiter *Arbiter) {
	c.arbiters[MakePairKey(arbiter.BodyA, arbiter.BodyB)] = arbiter
}

func (c *Constraints) Arbiter(a, b actor.BodyID) (*Arbiter, bool) {
	arbiter, ok := c.arbiters[MakePairKey(a, b)]
	return arbiter, ok
}

func (c *Constraints) RemoveArbiter(a, b actor.BodyID) bool {
	key := MakePairKey(a, b)
	_, ok := c.arbiters[key]
	delete(c.arbiters, key)
	return ok
}

// Joints returns the joints in ascending pair order
func (c *Constraints) Joints() []*Joint {
	return lo.Map(sortedKeys(c.joints), func(key PairKey, _ int) *Joint {
		return c.joints[key]
	})
}

// Arbiters returns the arbiters in ascending pair order
func (c *Constraints) Arbiters() []*Arbiter {
	return lo.Map(sortedKeys(c.arbiters), func(key PairKey, _ int) *Arbiter {
		return c.arbiters[key]
	})
}

// RemoveBody drops every joint and arbiter referencing the body.
// Returns the pairs whose arbiter was removed.
func (c *Constraints) RemoveBody(id actor.BodyID) []PairKey {
	var removed []PairKey
	for _, key := range sortedKeys(c.joints) {
		if key.Has(id) {
			delete(c.joints, key)
		}
	}
	for _, key := range sortedKeys(c.arbiters) {
		if key.Has(id) {
			delete(c.arbiters, key)
			removed = append(removed, key)
		}
	}

	return removed
}

// Prepare readies every joint and contact for this step. A constraint whose bodies
// cannot be fetched, or whose effective mass is singular, is skipped until the next step.
func (c *Constraints) Prepare(dt float64, store BodyStore) {
	c.prepared = c.prepared[:0]

	for _, joint := range c.Joints() {
		c.prepare(dt, store, joint.BodyA, joint.BodyB, joint)
	}
	for _, arbiter := range c.Arbiters() {
		for _, contact := range arbiter.Contacts {
			c.prepare(dt, store, arbiter.BodyA, arbiter.BodyB, contact)
		}
	}
}

func (c *Constraints) prepare(dt float64, store BodyStore, idA, idB actor.BodyID, constraint Constraint) {
	a, b, err := store.Pair(idA, idB)
	if err != nil {
		c.logger.Warn("constraint bodies unavailable",
			zap.Uint64("bodyA", uint64(idA)), zap.Uint64("bodyB", uint64(idB)), zap.Error(err))
		return
	}

	if err := constraint.Prepare(dt, a, b); err != nil {
		c.logger.Warn("constraint skipped",
			zap.Uint64("bodyA", uint64(idA)), zap.Uint64("bodyB", uint64(idB)), zap.Error(err))
		return
	}

	c.prepared = append(c.prepared, prepared{bodyA: idA, bodyB: idB, constraint: constraint})
}

// Apply runs one solver iteration over the constraints prepared this step
func (c *Constraints) Apply(store BodyStore) {
	for _, p := range c.prepared {
		a, b, err := store.Pair(p.bodyA, p.bodyB)
		if err != nil {
			c.logger.Warn("constraint bodies unavailable",
				zap.Uint64("bodyA", uint64(p.bodyA)), zap.Uint64("bodyB", uint64(p.bodyB)), zap.Error(err))
			continue
		}
		p.constraint.Apply(a, b)
	}
}

func sortedKeys[V any](m map[PairKey]V) []PairKey {
	keys := lo.Keys(m)
	slices.SortFunc(keys, PairKey.Compare)
	return keys
}
