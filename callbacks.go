package graphcanvas

import (
	"slices"
)

// Widget is any input target: the canvas, a visual node, a pin, or a popup.
// Linkers borrow widgets for the length of one dispatch and never retain them.
type Widget interface {
	// IsValid reports whether the widget is still alive. Invalid widgets are
	// never handed to drag operations.
	IsValid() bool
}

// ContextProvider is implemented by widgets that carry a context object.
// The object becomes the payload of drag operations started from the widget.
type ContextProvider interface {
	ContextObject() any
}

// Activation describes the magnitude of the event passed to a callback:
// the wheel delta for the wheel, 1 for presses, 0 for releases, and the
// caller's value for manual triggers.
type Activation struct {
	Value     float64
	Position  Vec2 // canvas-local screen position of the pointer, if any
	Button    Key  // mouse button for button events
	Modifiers KeyModifiers
}

// Reply is the verdict a callback returns.
type Reply struct {
	handled    bool
	detectDrag bool
	dragKey    Key
}

// Handled returns a reply that consumes the event.
func Handled() Reply { return Reply{handled: true} }

// Unhandled returns a reply that lets the event fall through.
func Unhandled() Reply { return Reply{} }

// DetectDrag returns a copy of the reply that asks the caller to watch the
// given button for a drag gesture.
func (r Reply) DetectDrag(button Key) Reply {
	r.detectDrag = true
	r.dragKey = button
	return r
}

// IsHandled reports whether the event was consumed.
func (r Reply) IsHandled() bool { return r.handled }

// DragDetectKey returns the button to watch for a drag gesture, if requested.
func (r Reply) DragDetectKey() (Key, bool) { return r.dragKey, r.detectDrag }

// Layer decides whether a handled reply stops dispatch.
type Layer uint8

const (
	// LayerEvent entries stop dispatch when they report handled.
	LayerEvent Layer = iota
	// LayerRaw entries always run and never stop dispatch.
	LayerRaw
)

func (l Layer) String() string {
	if l == LayerRaw {
		return "raw"
	}
	return "event"
}

// Handler reacts to a tripped input.
type Handler interface {
	OnTriggered(target Widget, a Activation) Reply
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(target Widget, a Activation) Reply

// OnTriggered calls f.
func (f HandlerFunc) OnTriggered(target Widget, a Activation) Reply { return f(target, a) }

// PredicateHandler adapts a function that only reports whether it consumed
// the event. This is the shape user scripting layers usually provide.
type PredicateHandler func(target Widget, a Activation) bool

// OnTriggered calls f and converts its result to a Reply.
func (f PredicateHandler) OnTriggered(target Widget, a Activation) Reply {
	if f(target, a) {
		return Handled()
	}
	return Unhandled()
}

// InputCallback is one conditional entry in the callback table.
// A nil Condition always passes; a nil Handler is a no-op.
type InputCallback struct {
	Handler     Handler
	Condition   func(target Widget) bool
	Description func(target Widget) string
	Priority    int
	Layer       Layer
}

// DragTrigger is one conditional entry in the drag table. Create builds the
// operation for the widget the gesture started on.
type DragTrigger struct {
	Create    func(source Widget) DragDropOperation
	Condition func(source Widget) bool
	Priority  int
	Layer     Layer
}

func passes(cond func(Widget) bool, target Widget) bool {
	return cond == nil || cond(target)
}

// --- Callback table ---

type tableEntry[T any] struct {
	seq      uint64
	priority int
	value    T
}

// callbackTable is a multi-map from Trip to entries kept sorted by
// (priority, seq). seq is monotonic per table, so equal priorities keep
// insertion order.
type callbackTable[T any] struct {
	entries map[Trip][]tableEntry[T]
	nextSeq uint64
}

func (t *callbackTable[T]) bind(trip Trip, priority int, v T) uint64 {
	if t.entries == nil {
		t.entries = make(map[Trip][]tableEntry[T])
	}
	t.nextSeq++
	e := tableEntry[T]{seq: t.nextSeq, priority: priority, value: v}
	list := t.entries[trip]
	// Insert after every entry with priority <= the new one.
	i, _ := slices.BinarySearchFunc(list, e, func(a, b tableEntry[T]) int {
		if a.priority <= b.priority {
			return -1
		}
		return 1
	})
	t.entries[trip] = slices.Insert(list, i, e)
	return e.seq
}

// unbind removes every entry under trip and returns how many were removed.
func (t *callbackTable[T]) unbind(trip Trip) int {
	n := len(t.entries[trip])
	delete(t.entries, trip)
	return n
}

// remove drops the single entry with the given sequence number.
func (t *callbackTable[T]) remove(trip Trip, seq uint64) bool {
	list := t.entries[trip]
	for i := range list {
		if list[i].seq == seq {
			list = slices.Delete(list, i, i+1)
			if len(list) == 0 {
				delete(t.entries, trip)
			} else {
				t.entries[trip] = list
			}
			return true
		}
	}
	return false
}

// find returns a snapshot of the entries under trip in dispatch order.
// Callers may bind or unbind while iterating the snapshot.
func (t *callbackTable[T]) find(trip Trip) []T {
	list := t.entries[trip]
	if len(list) == 0 {
		return nil
	}
	out := make([]T, len(list))
	for i := range list {
		out[i] = list[i].value
	}
	return out
}

// trips returns every bound trip in Trip.Compare order.
func (t *callbackTable[T]) trips() []Trip {
	out := make([]Trip, 0, len(t.entries))
	for trip := range t.entries {
		out = append(out, trip)
	}
	slices.SortFunc(out, Trip.Compare)
	return out
}

func (t *callbackTable[T]) len() int {
	n := 0
	for _, list := range t.entries {
		n += len(list)
	}
	return n
}

// CallbackHandle allows removing a single bound entry. The zero value is
// safe to Remove.
type CallbackHandle struct {
	trip   Trip
	seq    uint64
	remove func(Trip, uint64) bool
}

// Remove unbinds the entry this handle refers to. Other entries under the
// same trip are left alone. Removing twice is a no-op.
func (h CallbackHandle) Remove() {
	if h.remove == nil {
		return
	}
	h.remove(h.trip, h.seq)
}

// Trip returns the trip the entry was bound under.
func (h CallbackHandle) Trip() Trip { return h.trip }
