package constraint

import (
	"slices"

	"github.com/akmonengine/feather4d/actor"
	"github.com/akmonengine/feather4d/mpr"
)

const (
	// MaxContacts bounds the manifold kept per pair of bodies
	MaxContacts = 6

	// MergeDistanceSqr is the squared distance under which a new contact duplicates an
	// existing one
	MergeDistanceSqr = 0.0001
)

// Arbiter holds the persistent contact manifold between two bodies.
// Contacts refer to BodyA as their first body.
type Arbiter struct {
	BodyA    actor.BodyID
	BodyB    actor.BodyID
	Contacts []*Contact
}

func NewArbiter(idA, idB actor.BodyID, point mpr.ContactPoint, a, b *actor.RigidBody) *Arbiter {
	return &Arbiter{
		BodyA:    idA,
		BodyB:    idB,
		Contacts: []*Contact{NewContact(point, a, b)},
	}
}

// Update refreshes the manifold with a new contact point. Existing contacts are
// re-validated against the current poses and the invalid ones dropped; the new one is
// added unless it duplicates a survivor. Past MaxContacts, the shallower contact of the
// closest pair is removed.
func (ar *Arbiter) Update(point mpr.ContactPoint, a, b *actor.RigidBody) {
	contact := NewContact(point, a, b)

	closest := -1.0
	kept := ar.Contacts[:0]
	for _, c := range ar.Contacts {
		c.Update(false, a, b)
		if !c.Valid {
			continue
		}
		kept = append(kept, c)

		distance := min(c.WorldA.Sub(contact.WorldA).LenSqr(), c.WorldB.Sub(contact.WorldB).LenSqr())
		if closest < 0 || distance < closest {
			closest = distance
		}
	}
	clear(ar.Contacts[len(kept):])
	ar.Contacts = kept

	if closest < 0 || closest > MergeDistanceSqr {
		ar.Contacts = append(ar.Contacts, contact)
	}

	if len(ar.Contacts) > MaxContacts {
		ar.prune()
	}
}

// prune removes one contact from the closest pair, keeping the deepest
func (ar *Arbiter) prune() {
	first, second := 0, 1
	closest := -1.0
	for i := range ar.Contacts {
		for j := i + 1; j < len(ar.Contacts); j++ {
			ci, cj := ar.Contacts[i], ar.Contacts[j]
			distance := min(ci.WorldA.Sub(cj.WorldA).LenSqr(), ci.WorldB.Sub(cj.WorldB).LenSqr())
			if closest < 0 || distance < closest {
				closest = distance
				first, second = i, j
			}
		}
	}

	removed := first
	if ar.Contacts[first].Depth > ar.Contacts[second].Depth {
		removed = second
	}
	ar.Contacts = slices.Delete(ar.Contacts, removed, removed+1)
}
