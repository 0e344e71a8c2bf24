package ecs

import (
	"github.com/phanxgames/graphcanvas"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// InputEventType carries one dispatch verdict per event: the Trip that was
// dispatched, the Activation it carried (wheel delta, 1 or 0 for press and
// release, the caller's value for manual triggers, plus pointer position)
// and whether a callback handled it. Events queue in the world until
// ProcessEvents or events.ProcessAllEvents runs.
var InputEventType = events.NewEventType[graphcanvas.InputEvent]()

type worldStore struct {
	world donburi.World
}

// NewDonburiStore returns an EventStore that publishes every verdict to
// InputEventType in world.
func NewDonburiStore(world donburi.World) graphcanvas.EventStore {
	return worldStore{world: world}
}

func (s worldStore) EmitEvent(e graphcanvas.InputEvent) {
	InputEventType.Publish(s.world, e)
}

// Filter forwards to store only the verdicts keep accepts.
func Filter(store graphcanvas.EventStore, keep func(graphcanvas.InputEvent) bool) graphcanvas.EventStore {
	return filterStore{next: store, keep: keep}
}

// HandledOnly forwards to store only verdicts some callback handled.
func HandledOnly(store graphcanvas.EventStore) graphcanvas.EventStore {
	return Filter(store, func(e graphcanvas.InputEvent) bool { return e.Handled })
}

type filterStore struct {
	next graphcanvas.EventStore
	keep func(graphcanvas.InputEvent) bool
}

func (f filterStore) EmitEvent(e graphcanvas.InputEvent) {
	if f.keep(e) {
		f.next.EmitEvent(e)
	}
}
