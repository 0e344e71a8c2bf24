package graphcanvas

import (
	"fmt"
	"strings"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// View is a pan offset plus zoom factor. Screen = (offset + graph) * zoom.
type View struct {
	X, Y float64
	Zoom float64
}

// Offset returns the pan offset as a Vec2.
func (v View) Offset() Vec2 { return Vec2{v.X, v.Y} }

// ViewBounds limits every component of the target view.
type ViewBounds struct {
	Min, Max View
}

func (b ViewBounds) clampOffset(p Vec2) Vec2 {
	return Vec2{
		X: clampFloat(p.X, b.Min.X, b.Max.X),
		Y: clampFloat(p.Y, b.Min.Y, b.Max.Y),
	}
}

func (b ViewBounds) clampZoom(z float64) float64 {
	return clampFloat(z, b.Min.Zoom, b.Max.Zoom)
}

// ZoomBehavior selects how the offset compensates when zoom changes.
type ZoomBehavior uint8

const (
	// ZoomNone changes zoom without touching the offset.
	ZoomNone ZoomBehavior = iota
	// ZoomMouseRelative keeps the graph point under the cursor fixed.
	ZoomMouseRelative
	// ZoomGraphRelative keeps the graph point at the canvas center fixed.
	ZoomGraphRelative
)

func (z ZoomBehavior) String() string {
	switch z {
	case ZoomMouseRelative:
		return "mouse_relative"
	case ZoomGraphRelative:
		return "graph_relative"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (z ZoomBehavior) MarshalText() ([]byte, error) {
	return []byte(z.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so config files can name
// the behavior.
func (z *ZoomBehavior) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "none":
		*z = ZoomNone
	case "mouse_relative", "mouse":
		*z = ZoomMouseRelative
	case "graph_relative", "graph", "center":
		*z = ZoomGraphRelative
	default:
		return fmt.Errorf("unknown zoom behavior %q", string(text))
	}
	return nil
}

// Default view settings.
var (
	DefaultView           = View{X: 0, Y: 0, Zoom: 1}
	DefaultMovementScalar = View{X: 1, Y: 1, Zoom: 0.1}
	DefaultViewBounds     = ViewBounds{
		Min: View{X: -10000, Y: -10000, Zoom: 0.1},
		Max: View{X: 10000, Y: 10000, Zoom: 10},
	}
)

const defaultInterpSpeed = 10.0

// focusAnim holds active focus tweens for the target offset.
type focusAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// ViewTransform owns the current and target views. Commands move the
// target (always clamped to Bounds); Update moves the current view toward
// the target each tick.
type ViewTransform struct {
	current View
	target  View

	// MovementScalar scales AddToViewCorner deltas (X, Y) and AddToZoom
	// steps (Zoom).
	MovementScalar View
	// Bounds clamps every target mutation.
	Bounds ViewBounds
	// Behavior selects the zoom compensation policy.
	Behavior ZoomBehavior
	// ZoomInterpSpeed and PanInterpSpeed control how fast the current view
	// approaches the target. Non-positive values snap.
	ZoomInterpSpeed float64
	PanInterpSpeed  float64

	// Size is the canvas size in screen pixels; GraphRelative zoom anchors
	// at its center.
	Size Vec2
	// Cursor is the canvas-local cursor position; MouseRelative zoom anchors
	// here.
	Cursor Vec2

	dirty     bool
	focus     *focusAnim
	listeners []viewListener
	nextID    uint32
}

type viewListener struct {
	id uint32
	fn func(View)
}

// NewViewTransform creates a view transform with default settings.
func NewViewTransform() *ViewTransform {
	return &ViewTransform{
		current:         DefaultView,
		target:          DefaultView,
		MovementScalar:  DefaultMovementScalar,
		Bounds:          DefaultViewBounds,
		ZoomInterpSpeed: defaultInterpSpeed,
		PanInterpSpeed:  defaultInterpSpeed,
		dirty:           true,
	}
}

// Current returns the interpolated view used for rendering.
func (v *ViewTransform) Current() View { return v.current }

// Target returns the view the current view is moving toward.
func (v *ViewTransform) Target() View { return v.target }

// Zoom returns the current zoom factor.
func (v *ViewTransform) Zoom() float64 { return v.current.Zoom }

// ToScreen maps a graph-space point to canvas-local screen space.
func (v *ViewTransform) ToScreen(p Vec2) Vec2 {
	return v.current.Offset().Add(p).Scale(v.current.Zoom)
}

// ToGraph maps a canvas-local screen point to graph space. A zero zoom
// yields -offset rather than Inf or NaN.
func (v *ViewTransform) ToGraph(p Vec2) Vec2 {
	return safeDivideVec2(p, v.current.Zoom).Sub(v.current.Offset())
}

// OnChanged registers fn to run whenever the current view changes.
func (v *ViewTransform) OnChanged(fn func(View)) Subscription {
	v.nextID++
	id := v.nextID
	v.listeners = append(v.listeners, viewListener{id: id, fn: fn})
	return subscriptionFunc(func() {
		for i := range v.listeners {
			if v.listeners[i].id == id {
				v.listeners = append(v.listeners[:i], v.listeners[i+1:]...)
				return
			}
		}
	})
}

func (v *ViewTransform) changed() {
	v.dirty = true
	for _, l := range append([]viewListener(nil), v.listeners...) {
		l.fn(v.current)
	}
}

// consumeDirty reports whether the view changed since the last call and
// clears the flag.
func (v *ViewTransform) consumeDirty() bool {
	d := v.dirty
	v.dirty = false
	return d
}

// MarkDirty forces a re-layout on the next tick.
func (v *ViewTransform) MarkDirty() {
	v.dirty = true
}

// --- Commands ---

// SetViewCorner sets the target offset. With interp false the current
// offset jumps there immediately.
func (v *ViewTransform) SetViewCorner(corner Vec2, interp bool) {
	v.focus = nil
	v.setTargetOffset(corner)
	if !interp {
		v.setOffset(v.target.Offset())
	}
}

// AddToViewCorner moves the target offset by delta scaled by MovementScalar.
func (v *ViewTransform) AddToViewCorner(delta Vec2, interp bool) {
	v.focus = nil
	scaled := delta.Mul(Vec2{v.MovementScalar.X, v.MovementScalar.Y})
	v.setTargetOffset(v.target.Offset().Add(scaled))
	if !interp {
		v.setOffset(v.target.Offset())
	}
}

// SetZoom sets the target zoom. With interp false the current zoom jumps
// there immediately, applying the zoom behavior.
func (v *ViewTransform) SetZoom(zoom float64, interp bool) {
	v.target.Zoom = v.Bounds.clampZoom(zoom)
	if !interp {
		v.applyZoom(v.target.Zoom)
	}
}

// AddToZoom moves the target zoom by step scaled by MovementScalar.Zoom.
func (v *ViewTransform) AddToZoom(step float64, interp bool) {
	v.SetZoom(v.target.Zoom+step*v.MovementScalar.Zoom, interp)
}

// FocusOn animates the target offset so that the graph-space point ends up
// at the canvas center. A non-positive duration moves the target at once
// and lets normal interpolation take over.
func (v *ViewTransform) FocusOn(point Vec2, duration float32, easeFn ease.TweenFunc) {
	z := v.target.Zoom
	dest := v.Bounds.clampOffset(safeDivideVec2(v.Size.Scale(0.5), z).Sub(point))
	if duration <= 0 || easeFn == nil {
		v.SetViewCorner(dest, true)
		return
	}
	from := v.target.Offset()
	v.focus = &focusAnim{
		tweenX: gween.New(float32(from.X), float32(dest.X), duration, easeFn),
		tweenY: gween.New(float32(from.Y), float32(dest.Y), duration, easeFn),
	}
}

// IsFocusing reports whether a FocusOn animation is running.
func (v *ViewTransform) IsFocusing() bool { return v.focus != nil }

// Reset returns the target view to DefaultView.
func (v *ViewTransform) Reset(interp bool) {
	v.focus = nil
	v.setTargetOffset(DefaultView.Offset())
	v.SetZoom(DefaultView.Zoom, interp)
	if !interp {
		v.setOffset(v.target.Offset())
	}
}

func (v *ViewTransform) setTargetOffset(p Vec2) {
	p = v.Bounds.clampOffset(p)
	v.target.X = p.X
	v.target.Y = p.Y
}

// --- Per-tick ---

// Update advances the focus animation and interpolates the current view
// toward the target. It reports whether zoom changed this tick.
func (v *ViewTransform) Update(dt float64) (zoomChanged bool) {
	if v.focus != nil {
		f := v.focus
		next := v.target.Offset()
		if !f.doneX {
			val, done := f.tweenX.Update(float32(dt))
			next.X = float64(val)
			f.doneX = done
		}
		if !f.doneY {
			val, done := f.tweenY.Update(float32(dt))
			next.Y = float64(val)
			f.doneY = done
		}
		v.setTargetOffset(next)
		if f.doneX && f.doneY {
			v.focus = nil
		}
	}

	if v.target.Zoom != v.current.Zoom {
		v.applyZoom(interpTo(v.current.Zoom, v.target.Zoom, dt, v.ZoomInterpSpeed))
		zoomChanged = true
	}

	if v.target.X != v.current.X || v.target.Y != v.current.Y {
		v.setOffset(interpVec2To(v.current.Offset(), v.target.Offset(), dt, v.PanInterpSpeed))
	}
	return zoomChanged
}

// setOffset moves the current offset.
func (v *ViewTransform) setOffset(p Vec2) {
	if p.X == v.current.X && p.Y == v.current.Y {
		return
	}
	v.current.X = p.X
	v.current.Y = p.Y
	v.changed()
}

// applyZoom moves the current zoom, compensating the target offset per
// Behavior.
func (v *ViewTransform) applyZoom(z float64) {
	if z == v.current.Zoom {
		return
	}
	switch v.Behavior {
	case ZoomMouseRelative:
		v.zoomAround(v.Cursor, z)
	case ZoomGraphRelative:
		v.zoomAround(v.Size.Scale(0.5), z)
	default:
		v.current.Zoom = z
	}
	v.changed()
}

// zoomAround changes zoom and shifts the target offset so the graph point
// under the screen-space anchor stays under it once the offset catches up.
func (v *ViewTransform) zoomAround(anchor Vec2, z float64) {
	before := v.ToGraph(anchor)
	v.current.Zoom = z
	adjustment := v.ToGraph(anchor).Sub(before)
	v.setTargetOffset(v.target.Offset().Add(adjustment))
}
