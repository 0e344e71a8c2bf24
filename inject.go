package graphcanvas

type syntheticKind uint8

const (
	synthPointer syntheticKind = iota
	synthKey
	synthWheel
)

// syntheticEvent is one injected input event. Positions are in screen
// coordinates, like real cursor positions, and converted to canvas-local
// space when consumed.
type syntheticEvent struct {
	kind    syntheticKind
	pos     Vec2
	button  Key
	pressed bool
	key     Key
	delta   float64
}

// InjectPress queues a left button press at the given screen coordinates.
// The event is consumed on the next frame's Update.
func (c *Canvas) InjectPress(x, y float64) {
	c.InjectButtonPress(KeyLeftMouseButton, x, y)
}

// InjectButtonPress queues a press of button at the given screen coordinates.
func (c *Canvas) InjectButtonPress(button Key, x, y float64) {
	c.injectQueue = append(c.injectQueue, syntheticEvent{
		kind: synthPointer, pos: Vec2{x, y}, button: button, pressed: true,
	})
}

// InjectMove queues a pointer move to the given screen coordinates. Buttons
// held by earlier injected presses stay held, so moves between InjectPress
// and InjectRelease form a drag.
func (c *Canvas) InjectMove(x, y float64) {
	c.injectQueue = append(c.injectQueue, syntheticEvent{kind: synthPointer, pos: Vec2{x, y}})
}

// InjectRelease queues a left button release at the given screen coordinates.
func (c *Canvas) InjectRelease(x, y float64) {
	c.InjectButtonRelease(KeyLeftMouseButton, x, y)
}

// InjectButtonRelease queues a release of button at the given screen
// coordinates.
func (c *Canvas) InjectButtonRelease(button Key, x, y float64) {
	c.injectQueue = append(c.injectQueue, syntheticEvent{
		kind: synthPointer, pos: Vec2{x, y}, button: button, pressed: false,
	})
}

// InjectClick queues a press followed by a release at the same screen
// coordinates. Consumes two frames.
func (c *Canvas) InjectClick(x, y float64) {
	c.InjectPress(x, y)
	c.InjectRelease(x, y)
}

// InjectDrag queues a left button drag: press at from, frames-2 linearly
// interpolated moves, and release at to. Minimum frames is 2.
func (c *Canvas) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	c.InjectButtonDrag(KeyLeftMouseButton, fromX, fromY, toX, toY, frames)
}

// InjectButtonDrag is InjectDrag for an arbitrary button.
func (c *Canvas) InjectButtonDrag(button Key, fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	c.InjectButtonPress(button, fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		c.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	c.InjectButtonRelease(button, toX, toY)
}

// InjectKeyDown queues a key press.
func (c *Canvas) InjectKeyDown(key Key) {
	c.injectQueue = append(c.injectQueue, syntheticEvent{kind: synthKey, key: key, pressed: true})
}

// InjectKeyUp queues a key release.
func (c *Canvas) InjectKeyUp(key Key) {
	c.injectQueue = append(c.injectQueue, syntheticEvent{kind: synthKey, key: key})
}

// InjectKey queues a key press followed by its release. Consumes two frames.
func (c *Canvas) InjectKey(key Key) {
	c.InjectKeyDown(key)
	c.InjectKeyUp(key)
}

// InjectWheel queues a wheel event at the given screen coordinates.
func (c *Canvas) InjectWheel(x, y, delta float64) {
	c.injectQueue = append(c.injectQueue, syntheticEvent{kind: synthWheel, pos: Vec2{x, y}, delta: delta})
}

// PendingInjections returns the number of queued synthetic events.
func (c *Canvas) PendingInjections() int { return len(c.injectQueue) }

// processInjectedInput pops one event from the inject queue and feeds it
// through the same paths as platform input. Returns true if an event was
// consumed.
func (c *Canvas) processInjectedInput(mods KeyModifiers) bool {
	if len(c.injectQueue) == 0 {
		return false
	}
	evt := c.injectQueue[0]
	copy(c.injectQueue, c.injectQueue[1:])
	c.injectQueue = c.injectQueue[:len(c.injectQueue)-1]

	local := evt.pos.Sub(c.origin)
	switch evt.kind {
	case synthPointer:
		c.processPointer(local, evt.button, evt.pressed, mods)
	case synthKey:
		c.dispatchKey(evt.key, evt.pressed, mods)
	case synthWheel:
		c.processPointer(local, KeyNone, false, mods)
		c.dispatchWheel(local, evt.delta, mods)
	}
	return true
}
