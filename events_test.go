package feather4d

import (
	"testing"

	"github.com/akmonengine/feather4d/constraint"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

type eventCapture struct {
	events []Event
}

func (ec *eventCapture) capture(event Event) {
	ec.events = append(ec.events, event)
}

func (ec *eventCapture) reset() {
	ec.events = ec.events[:0]
}

func (ec *eventCapture) subscribeAll(e *Events) {
	e.Subscribe(COLLISION_ENTER, ec.capture)
	e.Subscribe(COLLISION_STAY, ec.capture)
	e.Subscribe(COLLISION_EXIT, ec.capture)
}

// =============================================================================
// Events Tests
// =============================================================================

func TestEvents_Subscribe(t *testing.T) {
	events := NewEvents()
	var first, second eventCapture
	events.Subscribe(COLLISION_ENTER, first.capture)
	events.Subscribe(COLLISION_ENTER, second.capture)

	events.recordCollision(constraint.MakePairKey(1, 2))
	events.flush()

	assert.Len(t, first.events, 1)
	assert.Len(t, second.events, 1)
}

func TestEvents_EnterStayExit(t *testing.T) {
	events := NewEvents()
	var ec eventCapture
	ec.subscribeAll(&events)
	pair := constraint.MakePairKey(2, 1)

	events.recordCollision(pair)
	events.flush()
	assert.Equal(t, []Event{CollisionEnterEvent{BodyA: 1, BodyB: 2}}, ec.events)

	ec.reset()
	events.recordCollision(pair)
	events.flush()
	assert.Equal(t, []Event{CollisionStayEvent{BodyA: 1, BodyB: 2}}, ec.events)

	ec.reset()
	events.flush()
	assert.Equal(t, []Event{CollisionExitEvent{BodyA: 1, BodyB: 2}}, ec.events)

	ec.reset()
	events.flush()
	assert.Empty(t, ec.events)
}

func TestEvents_OnlySubscribedTypes(t *testing.T) {
	events := NewEvents()
	var ec eventCapture
	events.Subscribe(COLLISION_EXIT, ec.capture)

	events.recordCollision(constraint.MakePairKey(1, 2))
	events.flush()
	assert.Empty(t, ec.events)

	events.flush()
	assert.Len(t, ec.events, 1)
	assert.Equal(t, COLLISION_EXIT, ec.events[0].Type())
}

func TestEvents_Forget(t *testing.T) {
	events := NewEvents()
	var ec eventCapture
	ec.subscribeAll(&events)

	events.recordCollision(constraint.MakePairKey(1, 2))
	events.recordCollision(constraint.MakePairKey(2, 3))
	events.flush()
	ec.reset()

	events.forget(2)
	events.flush()

	assert.Empty(t, ec.events, "a removed body exits silently")
}

func TestEvents_Order(t *testing.T) {
	events := NewEvents()
	var ec eventCapture
	ec.subscribeAll(&events)

	events.recordCollision(constraint.MakePairKey(3, 4))
	events.recordCollision(constraint.MakePairKey(1, 2))
	events.flush()
	ec.reset()

	events.recordCollision(constraint.MakePairKey(2, 5))
	events.recordCollision(constraint.MakePairKey(3, 4))
	events.flush()

	want := []Event{
		CollisionEnterEvent{BodyA: 2, BodyB: 5},
		CollisionStayEvent{BodyA: 3, BodyB: 4},
		CollisionExitEvent{BodyA: 1, BodyB: 2},
	}
	if diff := cmp.Diff(want, ec.events); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestWorld_CollisionEvents(t *testing.T) {
	w := createWorld(t)
	var ec eventCapture
	ec.subscribeAll(&w.Events)
	a := createCubeBody(w, mgl64.Vec4{})
	b := createCubeBody(w, mgl64.Vec4{0.9, 0, 0, 0})

	w.DoCollisions()
	w.DoCollisions()
	body, _ := w.Body(b)
	body.Position = mgl64.Vec4{5, 0, 0, 0}
	w.DoCollisions()

	want := []Event{
		CollisionEnterEvent{BodyA: a, BodyB: b},
		CollisionStayEvent{BodyA: a, BodyB: b},
		CollisionExitEvent{BodyA: a, BodyB: b},
	}
	if diff := cmp.Diff(want, ec.events); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}
