package constraint

import (
	"cmp"

	"github.com/akmonengine/feather4d/actor"
	"github.com/pkg/errors"
)

// ErrSingular is returned by Prepare when the effective mass of a constraint cannot be
// inverted. The constraint is skipped for that step.
var ErrSingular = errors.New("singular effective mass")

// Constraint is solved by sequential impulses: Prepare once per step, then Apply as
// many times as the solver iterates.
type Constraint interface {
	Prepare(dt float64, a, b *actor.RigidBody) error
	Apply(a, b *actor.RigidBody)
}

// BodyStore fetches two distinct bodies at once.
// Pair must fail if the identifiers are equal or either one is unknown.
type BodyStore interface {
	Pair(a, b actor.BodyID) (*actor.RigidBody, *actor.RigidBody, error)
}

// PairKey identifies an unordered pair of bodies: A is always the lower identifier
type PairKey struct {
	A actor.BodyID
	B actor.BodyID
}

// MakePairKey creates a normalized pair key with consistent ordering
func MakePairKey(a, b actor.BodyID) PairKey {
	if b < a {
		a, b = b, a
	}

	return PairKey{A: a, B: b}
}

// Has reports whether the pair references the body
func (k PairKey) Has(id actor.BodyID) bool {
	return k.A == id || k.B == id
}

func (k PairKey) Compare(o PairKey) int {
	if c := cmp.Compare(k.A, o.A); c != 0 {
		return c
	}
	return cmp.Compare(k.B, o.B)
}
