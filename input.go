package graphcanvas

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const defaultDragDeadZone = 4.0 // pixels

// Platform input. Tests swap these out.
var (
	cursorPosition            = ebiten.CursorPosition
	wheel                     = ebiten.Wheel
	isKeyPressed              = ebiten.IsKeyPressed
	isMouseButtonJustPressed  = inpututil.IsMouseButtonJustPressed
	isMouseButtonJustReleased = inpututil.IsMouseButtonJustReleased
	appendJustPressedKeys     = inpututil.AppendJustPressedKeys
	appendJustReleasedKeys    = inpututil.AppendJustReleasedKeys
)

var polledButtons = [...]ebiten.MouseButton{
	ebiten.MouseButtonLeft,
	ebiten.MouseButtonRight,
	ebiten.MouseButtonMiddle,
}

// --- Pointer and drag state ---

type pointerState struct {
	down    map[Key]bool
	last    Vec2
	keyBuf  []ebiten.Key
	started bool
}

func (p *pointerState) pressed() []Key {
	var out []Key
	for _, k := range [...]Key{KeyLeftMouseButton, KeyRightMouseButton, KeyMiddleMouseButton} {
		if p.down[k] {
			out = append(out, k)
		}
	}
	return out
}

// dragState tracks an armed drag probe and, once detected, the active
// operation.
type dragState struct {
	armed  bool
	button Key
	source Widget
	start  Vec2
	last   Vec2
	op     DragDropOperation
	hover  Widget
	mods   KeyModifiers
}

// IsDragging reports whether a drag operation is active.
func (c *Canvas) IsDragging() bool { return c.drag.op != nil }

// DragOperation returns the active drag operation, or nil.
func (c *Canvas) DragOperation() DragDropOperation { return c.drag.op }

// --- Hit testing ---

// route returns the responders under the canvas-local point p, topmost
// first. The canvas itself always ends the route.
func (c *Canvas) route(p Vec2) []Widget {
	for i := len(c.popups) - 1; i >= 0; i-- {
		e := c.popups[i]
		if !e.widget.IsValid() {
			continue
		}
		size := e.widget.Size()
		if (Rect{X: e.location.X, Y: e.location.Y, Width: size.X, Height: size.Y}).Contains(p.X, p.Y) {
			return []Widget{e.widget, c}
		}
	}
	zoom := c.view.Zoom()
	for i := len(c.order) - 1; i >= 0; i-- {
		n := c.nodes[c.order[i]]
		if c.IsNodeCulled(n) {
			continue
		}
		for _, pin := range n.Pins() {
			g := pin.Geometry()
			if g.Contains(p.X, p.Y) {
				return []Widget{pin, n, c}
			}
		}
		if nodeScreenRect(n, zoom).Contains(p.X, p.Y) {
			return []Widget{n, c}
		}
	}
	return []Widget{c}
}

// HitTest returns the topmost widget under the canvas-local point p.
func (c *Canvas) HitTest(p Vec2) Widget {
	return c.route(p)[0]
}

// contains reports whether p lies inside the canvas. A canvas with no size
// accepts every point.
func (c *Canvas) contains(p Vec2) bool {
	s := c.view.Size
	if s.X <= 0 || s.Y <= 0 {
		return true
	}
	return p.X >= 0 && p.Y >= 0 && p.X <= s.X && p.Y <= s.Y
}

// --- Input processing ---

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if isKeyPressed(ebiten.KeyShift) {
		mods |= ModShift
	}
	if isKeyPressed(ebiten.KeyControl) {
		mods |= ModCtrl
	}
	if isKeyPressed(ebiten.KeyAlt) {
		mods |= ModAlt
	}
	if isKeyPressed(ebiten.KeyMeta) {
		mods |= ModMeta
	}
	return mods
}

// processInput is called from Canvas.Update. An injected event replaces
// platform input for the frame.
func (c *Canvas) processInput() {
	mods := readModifiers()
	if c.processInjectedInput(mods) {
		return
	}
	c.pollPlatformInput(mods)
}

func (c *Canvas) pollPlatformInput(mods KeyModifiers) {
	x, y := cursorPosition()
	local := Vec2{float64(x), float64(y)}.Sub(c.origin)
	c.processPointer(local, KeyNone, false, mods)

	for _, b := range polledButtons {
		if isMouseButtonJustPressed(b) {
			c.processPointer(local, KeyFromMouseButton(b), true, mods)
		}
		if isMouseButtonJustReleased(b) {
			c.processPointer(local, KeyFromMouseButton(b), false, mods)
		}
	}

	if _, dy := wheel(); dy != 0 {
		c.dispatchWheel(local, dy, mods)
	}

	c.pointer.keyBuf = appendJustPressedKeys(c.pointer.keyBuf[:0])
	for _, k := range c.pointer.keyBuf {
		c.dispatchKey(KeyFromEbiten(k), true, mods)
	}
	c.pointer.keyBuf = appendJustReleasedKeys(c.pointer.keyBuf[:0])
	for _, k := range c.pointer.keyBuf {
		c.dispatchKey(KeyFromEbiten(k), false, mods)
	}
}

// processPointer runs the pointer state machine for one sample. button is
// KeyNone for a pure move.
func (c *Canvas) processPointer(p Vec2, button Key, pressed bool, mods KeyModifiers) {
	if c.pointer.down == nil {
		c.pointer.down = make(map[Key]bool)
	}
	c.cursor = p
	c.view.Cursor = p

	if !c.pointer.started || p != c.pointer.last {
		c.pointer.started = true
		c.handleMove(p, mods)
		c.pointer.last = p
	}
	if !button.IsValid() {
		return
	}

	switch {
	case pressed && !c.pointer.down[button]:
		c.pointer.down[button] = true
		c.handleButtonDown(p, button, mods)
	case !pressed && c.pointer.down[button]:
		c.pointer.down[button] = false
		c.handleButtonUp(p, button, mods)
	}
}

func (c *Canvas) handleButtonDown(p Vec2, button Key, mods KeyModifiers) {
	if !c.contains(p) {
		return
	}
	ev := PointerEvent{Position: p, EffectingButton: button, PressedButtons: c.pointer.pressed(), Modifiers: mods}
	for _, w := range c.route(p) {
		r := c.linker.HandleMouseButtonDown(w, ev)
		if !r.IsHandled() {
			continue
		}
		if key, ok := r.DragDetectKey(); ok && c.drag.op == nil {
			c.drag = dragState{armed: true, button: key, source: w, start: p, last: p, mods: mods}
		}
		return
	}
}

func (c *Canvas) handleButtonUp(p Vec2, button Key, mods KeyModifiers) {
	switch {
	case c.drag.op != nil && button == c.drag.button:
		c.finishDrag(p)
	case c.drag.armed && button == c.drag.button:
		c.drag = dragState{}
	}
	ev := PointerEvent{Position: p, EffectingButton: button, PressedButtons: c.pointer.pressed(), Modifiers: mods}
	for _, w := range c.route(p) {
		if c.linker.HandleMouseButtonUp(w, ev).IsHandled() {
			return
		}
	}
}

func (c *Canvas) handleMove(p Vec2, mods KeyModifiers) {
	if c.drag.armed && c.drag.op == nil {
		d := p.Sub(c.drag.start)
		if math.Sqrt(d.LengthSquared()) > c.DragDeadZone {
			c.beginDrag()
		}
	}
	if c.drag.op != nil {
		c.updateDrag(p)
	}
}

// beginDrag negotiates an operation for the armed probe.
func (c *Canvas) beginDrag() {
	d := c.drag
	op := c.linker.HandleDragDetected(d.source, PointerEvent{
		Position:        d.start,
		EffectingButton: d.button,
		Modifiers:       d.mods,
	})
	if op == nil {
		c.drag = dragState{}
		return
	}
	c.drag.armed = false
	c.drag.op = op
}

func (c *Canvas) updateDrag(p Vec2) {
	op := c.drag.op
	delta := p.Sub(c.drag.last)
	c.drag.last = p
	if u, ok := op.(DragUpdater); ok {
		u.OnDragged(p, delta)
	}

	route := c.route(p)
	if top := route[0]; top != c.drag.hover {
		if c.drag.hover != nil {
			c.linker.HandleDragLeave(c.drag.hover, op)
		}
		c.linker.HandleDragEnter(top, op)
		c.drag.hover = top
	}
	for _, w := range route {
		if c.linker.HandleDragOver(w, op) {
			return
		}
	}
}

func (c *Canvas) finishDrag(p Vec2) {
	op := c.drag.op
	route := c.route(p)
	dropped := false
	for _, w := range route {
		if c.linker.HandleDrop(w, op) {
			dropped = true
			break
		}
	}
	if !dropped {
		c.linker.HandleDragCancelled(route[0], op)
	}
	c.drag = dragState{}
}

// CancelDrag abandons the active drag operation or armed probe.
func (c *Canvas) CancelDrag() {
	if c.drag.op != nil {
		c.linker.HandleDragCancelled(c.drag.hover, c.drag.op)
	}
	c.drag = dragState{}
}

func (c *Canvas) dispatchWheel(p Vec2, delta float64, mods KeyModifiers) {
	if !c.contains(p) {
		return
	}
	ev := PointerEvent{Position: p, WheelDelta: delta, PressedButtons: c.pointer.pressed(), Modifiers: mods}
	for _, w := range c.route(p) {
		if c.linker.HandleMouseWheel(w, ev).IsHandled() {
			return
		}
	}
}

// dispatchKey routes key events to the canvas. Escape cancels an active
// drag before anything else sees it.
func (c *Canvas) dispatchKey(key Key, down bool, mods KeyModifiers) {
	if down && key == KeyEscape && (c.drag.op != nil || c.drag.armed) {
		c.CancelDrag()
		return
	}
	ev := KeyEvent{Key: key, Modifiers: mods}
	if down {
		c.linker.HandleKeyDown(c, ev)
		return
	}
	c.linker.HandleKeyUp(c, ev)
}

// TriggerManual fires the named manual trigger against target, or the
// canvas when target is nil.
func (c *Canvas) TriggerManual(target Widget, name string, value float64) Reply {
	if target == nil {
		target = c
	}
	return c.linker.HandleManualInput(target, name, Activation{Value: value, Position: c.cursor})
}

// AvailableManualTriggers lists the manual triggers available for target,
// or the canvas when target is nil.
func (c *Canvas) AvailableManualTriggers(target Widget) []ManualTrigger {
	if target == nil {
		target = c
	}
	return c.linker.QueryManualTriggers(target)
}
