package feather4d

import (
	"slices"

	"github.com/akmonengine/feather4d/actor"
	"github.com/akmonengine/feather4d/constraint"
	"github.com/samber/lo"
)

const (
	COLLISION_ENTER EventType = iota
	COLLISION_STAY
	COLLISION_EXIT
)

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// CollisionEnterEvent is sent on the first pass in which a pair is in contact
type CollisionEnterEvent struct {
	BodyA actor.BodyID
	BodyB actor.BodyID
}

func (e CollisionEnterEvent) Type() EventType { return COLLISION_ENTER }

// CollisionStayEvent is sent on every following pass the contact persists
type CollisionStayEvent struct {
	BodyA actor.BodyID
	BodyB actor.BodyID
}

func (e CollisionStayEvent) Type() EventType { return COLLISION_STAY }

// CollisionExitEvent is sent on the first pass the pair is no longer in contact
type CollisionExitEvent struct {
	BodyA actor.BodyID
	BodyB actor.BodyID
}

func (e CollisionExitEvent) Type() EventType { return COLLISION_EXIT }

// EventListener - callback for events
type EventListener func(event Event)

// Events manager
type Events struct {
	// Listeners by event type
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event

	// Contact tracking for Enter/Stay/Exit detection
	previousActivePairs map[constraint.PairKey]bool
	currentActivePairs  map[constraint.PairKey]bool
}

func NewEvents() Events {
	return Events{
		listeners:           make(map[EventType][]EventListener),
		buffer:              make([]Event, 0, 64),
		previousActivePairs: make(map[constraint.PairKey]bool),
		currentActivePairs:  make(map[constraint.PairKey]bool),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// recordCollision is called during the collision pass for every pair in contact
func (e *Events) recordCollision(pair constraint.PairKey) {
	e.currentActivePairs[pair] = true
}

// forget drops a removed body from the tracking, without an exit event
func (e *Events) forget(id actor.BodyID) {
	for pair := range e.previousActivePairs {
		if pair.Has(id) {
			delete(e.previousActivePairs, pair)
		}
	}
	for pair := range e.currentActivePairs {
		if pair.Has(id) {
			delete(e.currentActivePairs, pair)
		}
	}
}

// processCollisionEvents compares current and previous pairs to detect Enter/Stay/Exit.
// Events are buffered in ascending pair order.
func (e *Events) processCollisionEvents() {
	for _, pair := range sortedPairs(e.currentActivePairs) {
		if e.previousActivePairs[pair] {
			e.buffer = append(e.buffer, CollisionStayEvent{BodyA: pair.A, BodyB: pair.B})
		} else {
			e.buffer = append(e.buffer, CollisionEnterEvent{BodyA: pair.A, BodyB: pair.B})
		}
	}

	for _, pair := range sortedPairs(e.previousActivePairs) {
		if !e.currentActivePairs[pair] {
			e.buffer = append(e.buffer, CollisionExitEvent{BodyA: pair.A, BodyB: pair.B})
		}
	}

	// Swap for next pass and clear current
	e.previousActivePairs, e.currentActivePairs = e.currentActivePairs, e.previousActivePairs
	clear(e.currentActivePairs)
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	e.processCollisionEvents()

	for _, event := range e.buffer {
		for _, listener := range e.listeners[event.Type()] {
			listener(event)
		}
	}
	e.buffer = e.buffer[:0]
}

func sortedPairs(pairs map[constraint.PairKey]bool) []constraint.PairKey {
	keys := lo.Keys(pairs)
	slices.SortFunc(keys, constraint.PairKey.Compare)
	return keys
}
