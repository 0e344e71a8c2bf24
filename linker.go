package graphcanvas

import (
	"fmt"
	"log/slog"
	"slices"
)

// PointerEvent is a platform pointer event in canvas-local screen space.
type PointerEvent struct {
	Position Vec2
	// EffectingButton is the button that changed state, if any.
	EffectingButton Key
	// PressedButtons lists the buttons held down, used when EffectingButton
	// is not set.
	PressedButtons []Key
	WheelDelta     float64
	Modifiers      KeyModifiers
}

// button returns the effecting button, falling back to the first pressed one.
func (e PointerEvent) button() Key {
	if e.EffectingButton.IsValid() {
		return e.EffectingButton
	}
	if len(e.PressedButtons) > 0 {
		return e.PressedButtons[0]
	}
	return KeyNone
}

// KeyEvent is a platform keyboard event.
type KeyEvent struct {
	Key       Key
	Modifiers KeyModifiers
	Repeat    bool
}

// ManualTrigger is one entry returned by QueryManualTriggers.
type ManualTrigger struct {
	Name        string
	Description string
	// HasDescription is false when the entry has no description bound.
	HasDescription bool
}

// EventStore is the interface for optional ECS integration. When set on a
// linker, every dispatch verdict is forwarded to the store.
type EventStore interface {
	EmitEvent(event InputEvent)
}

// InputEvent carries one dispatch verdict for the ECS bridge.
type InputEvent struct {
	Trip       Trip
	Activation Activation
	Handled    bool
}

// InputLinker routes input to bound callbacks. It owns two tables keyed by
// Trip: conditional input callbacks and drag triggers. All methods must be
// called from the frame thread.
type InputLinker struct {
	callbacks    callbackTable[InputCallback]
	dragTriggers callbackTable[DragTrigger]
	store        EventStore
	logger       *slog.Logger
}

// NewInputLinker creates an empty linker.
func NewInputLinker() *InputLinker {
	return &InputLinker{}
}

// SetLogger overrides the package logger for this linker.
func (l *InputLinker) SetLogger(logger *slog.Logger) {
	l.logger = logger
}

func (l *InputLinker) log() *slog.Logger {
	if l.logger != nil {
		return l.logger
	}
	return packageLogger()
}

// SetEventStore sets the optional ECS bridge.
func (l *InputLinker) SetEventStore(store EventStore) {
	l.store = store
}

// --- Binding ---

// BindInputCallback adds cb under trip. Multiple callbacks may share a trip.
func (l *InputLinker) BindInputCallback(trip Trip, cb InputCallback) CallbackHandle {
	seq := l.callbacks.bind(trip, cb.Priority, cb)
	return CallbackHandle{trip: trip, seq: seq, remove: l.callbacks.remove}
}

// UnbindInputCallback removes every callback bound under trip and returns
// how many were removed.
func (l *InputLinker) UnbindInputCallback(trip Trip) int {
	return l.callbacks.unbind(trip)
}

// BindToOnDragDetected adds a drag trigger under trip.
func (l *InputLinker) BindToOnDragDetected(trip Trip, trigger DragTrigger) CallbackHandle {
	seq := l.dragTriggers.bind(trip, trigger.Priority, trigger)
	return CallbackHandle{trip: trip, seq: seq, remove: l.dragTriggers.remove}
}

// UnbindToOnDragDetected removes every drag trigger bound under trip and
// returns how many were removed.
func (l *InputLinker) UnbindToOnDragDetected(trip Trip) int {
	return l.dragTriggers.unbind(trip)
}

// NumCallbacks returns the number of bound input callbacks.
func (l *InputLinker) NumCallbacks() int { return l.callbacks.len() }

// NumDragTriggers returns the number of bound drag triggers.
func (l *InputLinker) NumDragTriggers() int { return l.dragTriggers.len() }

// --- Dispatch ---

// tryCallbacks runs the sorted, condition-gated callbacks for trip and
// returns the first short-circuiting reply, or Unhandled.
func (l *InputLinker) tryCallbacks(target Widget, trip Trip, a Activation) Reply {
	reply := Unhandled()
	for _, cb := range l.callbacks.find(trip) {
		if !passes(cb.Condition, target) || cb.Handler == nil {
			continue
		}
		r := cb.Handler.OnTriggered(target, a)
		if cb.Layer == LayerEvent && r.IsHandled() {
			reply = r
			break
		}
	}
	l.emit(trip, a, reply.IsHandled())
	return reply
}

func (l *InputLinker) emit(trip Trip, a Activation, handled bool) {
	if l.store == nil {
		return
	}
	l.store.EmitEvent(InputEvent{Trip: trip, Activation: a, Handled: handled})
}

// HandleMouseWheel dispatches a wheel event. The wheel always trips as a
// press of KeyMouseWheelAxis with the wheel delta as activation.
func (l *InputLinker) HandleMouseWheel(target Widget, ev PointerEvent) Reply {
	return l.tryCallbacks(target, PressTrip(KeyMouseWheelAxis), Activation{
		Value:     ev.WheelDelta,
		Position:  ev.Position,
		Modifiers: ev.Modifiers,
	})
}

// HandleMouseButtonDown dispatches a button press. When no callback consumes
// it, the drag table for the same trip is checked and the first passing
// LayerEvent trigger turns the reply into a handled drag-detect request.
func (l *InputLinker) HandleMouseButtonDown(target Widget, ev PointerEvent) Reply {
	button := ev.button()
	trip := PressTrip(button)
	if r := l.tryCallbacks(target, trip, Activation{
		Value:     1,
		Position:  ev.Position,
		Button:    button,
		Modifiers: ev.Modifiers,
	}); r.IsHandled() {
		return r
	}

	if target == nil || !target.IsValid() {
		return Unhandled()
	}
	for _, trigger := range l.dragTriggers.find(trip) {
		if !passes(trigger.Condition, target) || trigger.Create == nil {
			continue
		}
		if trigger.Layer == LayerEvent {
			return Handled().DetectDrag(button)
		}
	}
	return Unhandled()
}

// HandleMouseButtonUp dispatches a button release.
func (l *InputLinker) HandleMouseButtonUp(target Widget, ev PointerEvent) Reply {
	button := ev.button()
	return l.tryCallbacks(target, ReleaseTrip(button), Activation{
		Value:     0,
		Position:  ev.Position,
		Button:    button,
		Modifiers: ev.Modifiers,
	})
}

// HandleKeyDown dispatches a key press.
func (l *InputLinker) HandleKeyDown(target Widget, ev KeyEvent) Reply {
	return l.tryCallbacks(target, PressTrip(ev.Key), Activation{Value: 1, Modifiers: ev.Modifiers})
}

// HandleKeyUp dispatches a key release.
func (l *InputLinker) HandleKeyUp(target Widget, ev KeyEvent) Reply {
	return l.tryCallbacks(target, ReleaseTrip(ev.Key), Activation{Value: 0, Modifiers: ev.Modifiers})
}

// HandleManualInput dispatches the named virtual trigger with the caller's
// activation.
func (l *InputLinker) HandleManualInput(target Widget, name string, a Activation) Reply {
	return l.tryCallbacks(target, ManualTrip(name), a)
}

// HandleDragDetected negotiates a drag operation for a gesture that started
// on source. Triggers are tried in priority order; the first whose
// operation sets up successfully wins. Returns nil when no trigger produces
// an operation.
func (l *InputLinker) HandleDragDetected(source Widget, ev PointerEvent) DragDropOperation {
	if source == nil || !source.IsValid() {
		return nil
	}
	trip := PressTrip(ev.button())

	var payload any
	if cp, ok := source.(ContextProvider); ok {
		payload = cp.ContextObject()
	}

	for _, trigger := range l.dragTriggers.find(trip) {
		if !passes(trigger.Condition, source) || trigger.Create == nil {
			continue
		}
		op := trigger.Create(source)
		if op == nil {
			l.log().Warn("drag trigger produced no operation", "trip", trip.String())
			continue
		}
		if op.Setup(source, payload) {
			l.emit(trip, Activation{Value: 1, Position: ev.Position, Button: ev.button(), Modifiers: ev.Modifiers}, true)
			return op
		}
		l.log().Warn("created drag operation unnecessarily",
			"trip", trip.String(), "operation", fmt.Sprintf("%T", op))
	}
	return nil
}

// HandleDragOver forwards a hover to op and reports whether it was handled.
func (l *InputLinker) HandleDragOver(target Widget, op DragDropOperation) bool {
	if op == nil {
		return false
	}
	return op.OnHoverWidget(target)
}

// HandleDrop asks op whether it can drop on target.
func (l *InputLinker) HandleDrop(target Widget, op DragDropOperation) bool {
	if op == nil {
		return false
	}
	return op.CanDropOnWidget(target)
}

// HandleDragEnter notifies op that the pointer entered target.
func (l *InputLinker) HandleDragEnter(target Widget, op DragDropOperation) {
	if e, ok := op.(DragEnterer); ok {
		e.OnDragEnter(target)
	}
}

// HandleDragLeave notifies op that the pointer left target.
func (l *InputLinker) HandleDragLeave(target Widget, op DragDropOperation) {
	if e, ok := op.(DragLeaver); ok {
		e.OnDragLeave(target)
	}
}

// HandleDragCancelled notifies op that the drag ended without a drop.
func (l *InputLinker) HandleDragCancelled(target Widget, op DragDropOperation) {
	if e, ok := op.(DragCanceller); ok {
		e.OnDragCancelled(target)
	}
}

// --- Queries ---

// QueryManualTriggers lists the manual triggers currently available for
// target, without running them. The whole table is scanned; entries whose
// condition fails are skipped.
func (l *InputLinker) QueryManualTriggers(target Widget) []ManualTrigger {
	var out []ManualTrigger
	for _, trip := range l.callbacks.trips() {
		if trip.Type != TripManual {
			continue
		}
		for _, cb := range l.callbacks.find(trip) {
			if !passes(cb.Condition, target) {
				continue
			}
			mt := ManualTrigger{Name: trip.Name}
			if cb.Description != nil {
				mt.Description = cb.Description(target)
				mt.HasDescription = true
			}
			out = append(out, mt)
		}
	}
	return out
}

// Bindings lists every bound trip with the number of callbacks and drag
// triggers under it, in Trip.Compare order.
func (l *InputLinker) Bindings() []BindingInfo {
	seen := make(map[Trip]*BindingInfo)
	var order []Trip
	for _, trip := range l.callbacks.trips() {
		seen[trip] = &BindingInfo{Trip: trip, Callbacks: len(l.callbacks.entries[trip])}
		order = append(order, trip)
	}
	for _, trip := range l.dragTriggers.trips() {
		if b, ok := seen[trip]; ok {
			b.DragTriggers = len(l.dragTriggers.entries[trip])
			continue
		}
		seen[trip] = &BindingInfo{Trip: trip, DragTriggers: len(l.dragTriggers.entries[trip])}
		order = append(order, trip)
	}
	out := make([]BindingInfo, 0, len(order))
	for _, trip := range order {
		out = append(out, *seen[trip])
	}
	slices.SortFunc(out, func(a, b BindingInfo) int { return a.Trip.Compare(b.Trip) })
	return out
}

// BindingInfo summarizes the entries bound under one trip.
type BindingInfo struct {
	Trip         Trip
	Callbacks    int
	DragTriggers int
}
