package graphcanvas

import (
	"errors"
	"slices"
)

// ErrUnknownAction is returned when a keymap names an action that is not in
// the ActionSet.
var ErrUnknownAction = errors.New("unknown action")

// Action is a named behavior a keymap can bind. Handler is used for input
// bindings and Drag for drag bindings; an action may provide both.
type Action struct {
	Handler     Handler
	Drag        func(source Widget) DragDropOperation
	Condition   func(target Widget) bool
	Description func(target Widget) string
}

// ActionSet maps action names to actions.
type ActionSet map[string]Action

// Names returns the action names in sorted order.
func (s ActionSet) Names() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

func isCanvasNode(w Widget) bool {
	_, ok := w.(CanvasNode)
	return ok
}

func isCanvasPin(w Widget) bool {
	_, ok := w.(CanvasPin)
	return ok
}

func describe(text string) func(Widget) string {
	return func(Widget) string { return text }
}

// DefaultActions returns the built-in actions for c.
func DefaultActions(c *Canvas) ActionSet {
	isCanvas := func(w Widget) bool { return w == Widget(c) }
	return ActionSet{
		"zoom": {
			Handler: HandlerFunc(func(_ Widget, a Activation) Reply {
				c.AddToZoom(a.Value, true)
				return Handled()
			}),
			Description: describe("Zoom the view"),
		},
		"select": {
			Handler: HandlerFunc(func(target Widget, a Activation) Reply {
				n := target.(CanvasNode)
				id := n.GraphNode().GUID()
				switch {
				case a.Modifiers.Has(ModCtrl) && c.IsNodeSelected(id):
					c.UnselectNode(id)
				case a.Modifiers.Has(ModShift) || a.Modifiers.Has(ModCtrl):
					c.SelectNode(id)
				case !c.IsNodeSelected(id):
					c.ClearNodeSelection()
					c.SelectNode(id)
				}
				if a.Button.IsValid() {
					return Handled().DetectDrag(a.Button)
				}
				return Handled()
			}),
			Condition: func(w Widget) bool {
				n, ok := w.(CanvasNode)
				return ok && n.GraphNode() != nil
			},
			Description: describe("Select node"),
		},
		"clear_selection": {
			Handler: HandlerFunc(func(Widget, Activation) Reply {
				c.ClearNodeSelection()
				return Handled()
			}),
			Condition:   isCanvas,
			Description: describe("Clear selection"),
		},
		"focus_selection": {
			Handler: PredicateHandler(func(Widget, Activation) bool {
				return c.FocusSelection()
			}),
			Description: describe("Focus selection"),
		},
		"reset_view": {
			Handler: HandlerFunc(func(Widget, Activation) Reply {
				c.view.Reset(true)
				return Handled()
			}),
			Description: describe("Reset view"),
		},
		"move_node": {
			Drag:        func(Widget) DragDropOperation { return NewNodeMoveOperation(c) },
			Condition:   isCanvasNode,
			Description: describe("Move nodes"),
		},
		"connect_pin": {
			Drag:        func(Widget) DragDropOperation { return NewPinConnectOperation(c) },
			Condition:   isCanvasPin,
			Description: describe("Connect pins"),
		},
		"pan": {
			Drag:        func(Widget) DragDropOperation { return NewPanOperation(c) },
			Description: describe("Pan the view"),
		},
	}
}

// DefaultKeymap returns the built-in bindings for DefaultActions.
func DefaultKeymap() Keymap {
	return Keymap{
		Bindings: []Binding{
			{Trip: "press:MouseWheelAxis", Action: "zoom"},
			{Trip: "press:LeftMouseButton", Action: "select"},
			{Trip: "press:LeftMouseButton", Action: "clear_selection", Priority: 10},
			{Trip: "press:F", Action: "focus_selection"},
			{Trip: "press:Home", Action: "reset_view"},
			{Trip: "manual:FocusSelection", Action: "focus_selection"},
			{Trip: "manual:ResetView", Action: "reset_view"},
		},
		DragBindings: []Binding{
			{Trip: "press:LeftMouseButton", Action: "connect_pin"},
			{Trip: "press:LeftMouseButton", Action: "move_node", Priority: 1},
			{Trip: "press:RightMouseButton", Action: "pan"},
			{Trip: "press:MiddleMouseButton", Action: "pan"},
		},
	}
}
