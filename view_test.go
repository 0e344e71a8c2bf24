package graphcanvas

import (
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

// settle runs view ticks until the current view reaches the target.
func settle(v *ViewTransform) {
	for range 2000 {
		v.Update(1.0 / 60)
		if v.Current() == v.Target() && !v.IsFocusing() {
			return
		}
	}
}

func TestViewRoundTrip(t *testing.T) {
	views := []View{
		{X: 0, Y: 0, Zoom: 1},
		{X: 120, Y: -45, Zoom: 0.5},
		{X: -3000, Y: 812.5, Zoom: 2.75},
		{X: 1, Y: 1, Zoom: 0.1},
	}
	points := []Vec2{{0, 0}, {10, 20}, {-500, 333.3}, {1e4, -1e4}}
	for _, view := range views {
		v := NewViewTransform()
		v.SetZoom(view.Zoom, false)
		v.SetViewCorner(view.Offset(), false)
		for _, p := range points {
			got := v.ToGraph(v.ToScreen(p))
			if !vecApprox(got, p, 1e-6) {
				t.Errorf("view %+v: ToGraph(ToScreen(%v)) = %v", view, p, got)
			}
		}
	}
}

func TestViewZeroZoomIsFinite(t *testing.T) {
	v := NewViewTransform()
	v.current = View{X: 3, Y: 4, Zoom: 0}
	for _, p := range []Vec2{{0, 0}, {100, -100}} {
		s := v.ToScreen(p)
		g := v.ToGraph(p)
		for _, f := range []float64{s.X, s.Y, g.X, g.Y} {
			if math.IsNaN(f) || math.IsInf(f, 0) {
				t.Fatalf("zoom 0 produced %v / %v", s, g)
			}
		}
		if g != (Vec2{-3, -4}) {
			t.Errorf("ToGraph at zoom 0 = %v, want -offset", g)
		}
	}
}

func TestViewClampsTarget(t *testing.T) {
	v := NewViewTransform()
	v.SetViewCorner(Vec2{1e6, -1e6}, true)
	v.SetZoom(100, true)
	tgt := v.Target()
	if tgt.X != 10000 || tgt.Y != -10000 || tgt.Zoom != 10 {
		t.Errorf("target = %+v, want clamped to bounds", tgt)
	}

	v.AddToZoom(-1e6, true)
	if v.Target().Zoom != 0.1 {
		t.Errorf("target zoom = %v, want 0.1", v.Target().Zoom)
	}

	b := v.Bounds
	for range 600 {
		v.Update(1.0 / 60)
		c := v.Current()
		if c.X < b.Min.X || c.X > b.Max.X || c.Y < b.Min.Y || c.Y > b.Max.Y ||
			c.Zoom < b.Min.Zoom || c.Zoom > b.Max.Zoom {
			t.Fatalf("current %+v left bounds", c)
		}
	}
}

func TestViewInterpolationConverges(t *testing.T) {
	v := NewViewTransform()
	v.SetZoom(2, true)
	v.SetViewCorner(Vec2{300, -200}, true)
	if v.Current() != DefaultView {
		t.Fatalf("interp command moved current view to %+v", v.Current())
	}

	prevZoom := v.Zoom()
	for range 30 {
		v.Update(1.0 / 60)
		z := v.Zoom()
		if z < prevZoom || z > 2 {
			t.Fatalf("zoom %v not monotonic toward 2", z)
		}
		prevZoom = z
	}
	settle(v)
	if v.Current() != v.Target() {
		t.Errorf("current %+v did not reach target %+v", v.Current(), v.Target())
	}
}

func TestViewAddToViewCornerScales(t *testing.T) {
	v := NewViewTransform()
	v.MovementScalar = View{X: 2, Y: 0.5, Zoom: 0.1}
	v.AddToViewCorner(Vec2{10, 10}, false)
	if got := v.Current().Offset(); got != (Vec2{20, 5}) {
		t.Errorf("offset = %v, want (20, 5)", got)
	}
	v.AddToZoom(5, false)
	if !approxEqual(v.Zoom(), 1.5, epsilon) {
		t.Errorf("zoom = %v, want 1.5", v.Zoom())
	}
}

func TestViewZoomBehavior(t *testing.T) {
	size := Vec2{800, 600}
	cursor := Vec2{200, 150}
	tests := []struct {
		behavior ZoomBehavior
		anchor   Vec2
	}{
		{ZoomMouseRelative, cursor},
		{ZoomGraphRelative, Vec2{400, 300}},
	}
	for _, tt := range tests {
		t.Run(tt.behavior.String(), func(t *testing.T) {
			v := NewViewTransform()
			v.Size = size
			v.Cursor = cursor
			v.Behavior = tt.behavior
			v.SetViewCorner(Vec2{-50, 25}, false)
			before := v.ToGraph(tt.anchor)

			v.SetZoom(2, false)
			settle(v)
			after := v.ToGraph(tt.anchor)
			if !vecApprox(before, after, 1e-6) {
				t.Errorf("anchor moved from %v to %v", before, after)
			}
		})
	}

	t.Run("none", func(t *testing.T) {
		v := NewViewTransform()
		v.Size = size
		v.Cursor = cursor
		v.SetViewCorner(Vec2{-50, 25}, false)
		v.SetZoom(2, false)
		if got := v.Target().Offset(); got != (Vec2{-50, 25}) {
			t.Errorf("offset changed to %v", got)
		}
	})
}

func TestViewOnChanged(t *testing.T) {
	v := NewViewTransform()
	var calls int
	var last View
	sub := v.OnChanged(func(view View) {
		calls++
		last = view
	})
	v.SetViewCorner(Vec2{10, 0}, false)
	v.SetViewCorner(Vec2{10, 0}, false) // unchanged
	if calls != 1 || last.X != 10 {
		t.Errorf("calls = %d last = %+v", calls, last)
	}
	if !v.consumeDirty() || v.consumeDirty() {
		t.Error("dirty flag should be set once and cleared by consumeDirty")
	}
	sub.Unsubscribe()
	v.SetZoom(3, false)
	if calls != 1 {
		t.Errorf("listener ran after Unsubscribe")
	}
}

func TestViewFocusOn(t *testing.T) {
	v := NewViewTransform()
	v.Size = Vec2{800, 600}
	v.FocusOn(Vec2{100, 100}, 0.5, ease.OutQuad)
	if !v.IsFocusing() {
		t.Fatal("FocusOn with duration should animate")
	}
	settle(v)
	if v.IsFocusing() {
		t.Fatal("focus animation did not finish")
	}
	if got := v.ToScreen(Vec2{100, 100}); !vecApprox(got, Vec2{400, 300}, 1e-3) {
		t.Errorf("focused point at %v, want canvas center", got)
	}

	v.FocusOn(Vec2{0, 0}, 0, nil)
	if v.IsFocusing() {
		t.Error("zero duration should not animate")
	}
	if got := v.Target().Offset(); got != (Vec2{400, 300}) {
		t.Errorf("target offset = %v, want (400, 300)", got)
	}

	v.FocusOn(Vec2{50, 50}, 1, ease.Linear)
	v.SetViewCorner(Vec2{}, true)
	if v.IsFocusing() {
		t.Error("SetViewCorner should cancel the focus animation")
	}
}

func TestViewReset(t *testing.T) {
	v := NewViewTransform()
	v.SetViewCorner(Vec2{500, 500}, false)
	v.SetZoom(4, false)
	v.Reset(false)
	if v.Current() != DefaultView || v.Target() != DefaultView {
		t.Errorf("current %+v target %+v, want default", v.Current(), v.Target())
	}
}

func TestZoomBehaviorText(t *testing.T) {
	tests := []struct {
		in   string
		want ZoomBehavior
	}{
		{"", ZoomNone},
		{"none", ZoomNone},
		{"Mouse_Relative", ZoomMouseRelative},
		{"mouse", ZoomMouseRelative},
		{"graph_relative", ZoomGraphRelative},
		{"center", ZoomGraphRelative},
	}
	for _, tt := range tests {
		var z ZoomBehavior
		if err := z.UnmarshalText([]byte(tt.in)); err != nil {
			t.Errorf("UnmarshalText(%q): %v", tt.in, err)
			continue
		}
		if z != tt.want {
			t.Errorf("UnmarshalText(%q) = %v, want %v", tt.in, z, tt.want)
		}
	}
	var z ZoomBehavior
	if err := z.UnmarshalText([]byte("sideways")); err == nil {
		t.Error("expected error for unknown behavior")
	}
	b, _ := ZoomGraphRelative.MarshalText()
	if string(b) != "graph_relative" {
		t.Errorf("MarshalText = %q", b)
	}
}
