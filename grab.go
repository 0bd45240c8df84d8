package feather4d

import (
	"github.com/akmonengine/feather4d/actor"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

type GrabState uint8

const (
	GrabNot GrabState = iota
	// GrabMiss means the last grab found nothing in reach
	GrabMiss
	// GrabHit means a joint holds the target
	GrabHit
)

// Grabber lets a body pick up whatever lies ahead of it, along its forward axis.
// The held body hangs from a ball joint until released.
type Grabber struct {
	Body   actor.BodyID
	State  GrabState
	Target actor.BodyID
}

func NewGrabber(body actor.BodyID) *Grabber {
	return &Grabber{Body: body}
}

// Grab casts a ray forward from the grabbing body and joins it to the first body hit,
// at the hit point. Grabbing while already holding or after a miss does nothing until
// Release.
func (g *Grabber) Grab(w *World) (GrabState, error) {
	if g.State != GrabNot {
		return g.State, nil
	}

	body, ok := w.Body(g.Body)
	if !ok {
		return g.State, errors.Wrapf(ErrBodyNotFound, "grabbing body %d", g.Body)
	}

	forward := body.Forward()
	id, t, hit := w.CastRay(body.Position, forward, g.Body)
	if !hit {
		g.State = GrabMiss
		return g.State, nil
	}

	target, _ := w.Body(id)
	point := body.Transform().Apply(mgl64.Vec4{0, 0, t, 0})
	if _, err := w.AddJoint(g.Body, id, mgl64.Vec4{0, 0, t, 0}, target.Transform().ApplyInverse(point)); err != nil {
		return g.State, err
	}

	g.State = GrabHit
	g.Target = id
	return g.State, nil
}

// Release drops the held body, if any
func (g *Grabber) Release(w *World) {
	if g.State == GrabHit {
		w.RemoveJoint(g.Body, g.Target)
	}

	g.State = GrabNot
	g.Target = 0
}
