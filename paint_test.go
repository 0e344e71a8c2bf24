package graphcanvas

import (
	"strings"
	"testing"
)

func visualizer(g *testGraph) *recordingVisualizer {
	return g.schema.(testSchema).vis.(*recordingVisualizer)
}

// link connects a.out to b.in and rebuilds both visual nodes.
func link(c *Canvas, g *testGraph, a, b *testNode) {
	g.ConnectPins(a.pin("out"), b.pin("in"))
	for _, n := range []*testNode{a, b} {
		cn, _ := c.GetCanvasNode(n.id)
		cn.RebuildPinConnections()
	}
}

func TestPaintSkipsEmptyCanvas(t *testing.T) {
	c, g := newTestCanvas(t)
	c.paintConnections(nil)
	if visualizer(g).passes != 0 {
		t.Error("paint pass should be skipped with no nodes")
	}
}

func TestPaintLegacyDrawsAll(t *testing.T) {
	c, g := newTestCanvas(t)
	a := g.add("a", Vec2{100, 100})
	b := g.add("b", Vec2{400, 100})
	link(c, g, a, b)

	c.paintConnections(nil)
	vis := visualizer(g)
	if vis.passes != 1 {
		t.Fatalf("passes = %d, want 1", vis.passes)
	}
	pins := vis.pins[0]
	if len(pins) != 4 {
		t.Errorf("pin geometries = %d, want 4", len(pins))
	}
	out := pins[a.pins[1].GUID]
	if out.Synthesized || !vecApprox(out.Center(), Vec2{255, 132}, epsilon) {
		t.Errorf("a.out geometry = %+v", out)
	}
	if len(out.Pin.Links()) != 1 {
		t.Error("a.out should carry its link")
	}
}

func TestPaintSynthesizesCulledPins(t *testing.T) {
	c, g := newTestCanvas(t)
	a := g.add("a", Vec2{100, 100})
	far := g.add("far", Vec2{5000, 5000})
	link(c, g, a, far)

	c.SetDebugMode(true)
	c.paintConnections(nil)
	pins := visualizer(g).pins[0]
	in, ok := pins[far.pins[0].GUID]
	if !ok {
		t.Fatal("culled node pins should still be mapped")
	}
	if !in.Synthesized {
		t.Error("culled pin geometry should be synthesized")
	}
	if in.Bounds != (Rect{X: 5000, Y: 5000}) {
		t.Errorf("synthesized bounds = %+v, want node anchor", in.Bounds)
	}
	if c.Stats().Culled != 1 || c.Stats().Connections != 1 {
		t.Errorf("stats = %+v, want 1 culled 1 connection", c.Stats())
	}
}

func TestPaintPreviewConnection(t *testing.T) {
	c, g := newTestCanvas(t)
	a := g.add("a", Vec2{100, 100})
	c.SetPreviewConnection(a.pin("out"))
	c.cursor = Vec2{300, 300}

	c.paintConnections(nil)
	vis := visualizer(g)
	if len(vis.previews) != 1 {
		t.Fatalf("previews = %d, want 1", len(vis.previews))
	}
	p := vis.previews[0]
	if !vecApprox(p.start, Vec2{255, 132}, epsilon) || p.end != (Vec2{300, 300}) {
		t.Errorf("preview %v -> %v", p.start, p.end)
	}
	if p.from == nil || p.from.PinGUID() != a.pins[1].GUID {
		t.Error("preview should pass the start pin")
	}

	g.remove(a)
	if c.PreviewConnection().IsValid() {
		t.Error("removing the node should clear its preview")
	}
}

func TestPaintNodesDrawOwnConnections(t *testing.T) {
	c, g := newTestCanvas(t)
	a := g.add("a", Vec2{100, 100})
	b := g.add("b", Vec2{400, 100})
	g.add("far", Vec2{5000, 5000})
	link(c, g, a, b)
	c.LegacyConnectionPaint = false

	c.paintConnections(nil)
	vis := visualizer(g)
	if vis.passes != 2 {
		t.Fatalf("passes = %d, want one per visible node", vis.passes)
	}
	first := vis.pins[0]
	if len(first) != 2 {
		t.Errorf("a paints %d pins, want its output and the linked input", len(first))
	}
	if _, ok := first[b.pins[0].GUID]; !ok {
		t.Error("a's pass should include the linked b.in")
	}
	if len(vis.pins[1]) != 1 {
		t.Errorf("b paints %d pins, want only its unlinked output", len(vis.pins[1]))
	}
}

func TestPaintWithoutVisualizerLogs(t *testing.T) {
	logs := captureLogs(t)
	c, g := newTestCanvas(t)
	g.schema = testSchema{}
	g.add("a", Vec2{})

	c.paintConnections(nil)
	if !strings.Contains(logs.String(), "no connection visualizer") {
		t.Errorf("missing error in %q", logs.String())
	}

	g.schema = nil
	c.paintConnections(nil) // must not panic
}

func TestCubicBezierPoints(t *testing.T) {
	a, b := Vec2{0, 0}, Vec2{100, 50}
	c1, c2 := connectionControls(a, b, 1)
	if c1.Y != a.Y || c2.Y != b.Y {
		t.Error("controls should leave and enter horizontally")
	}
	if c1.X <= a.X || c2.X >= b.X {
		t.Errorf("controls %v %v should point inward", c1, c2)
	}

	pts := cubicBezierPoints(nil, a, c1, c2, b, 8)
	if len(pts) != 9 {
		t.Fatalf("points = %d, want 9", len(pts))
	}
	if !vecApprox(pts[0], a, epsilon) || !vecApprox(pts[8], b, epsilon) {
		t.Errorf("endpoints = %v, %v", pts[0], pts[8])
	}
	if got := cubicBezierPoints(pts, a, c1, c2, b, 0); len(got) != defaultCurveSegments+1 {
		t.Errorf("default segments gave %d points", len(got))
	}
}

func TestConnectionControlsMinimumTangent(t *testing.T) {
	c1, c2 := connectionControls(Vec2{0, 0}, Vec2{10, 0}, 2)
	if !approxEqual(c1.X, 80, epsilon) || !approxEqual(c2.X, -70, epsilon) {
		t.Errorf("controls = %v, %v, want tangent 80", c1, c2)
	}
}

func TestBuildStrip(t *testing.T) {
	var sb strokeBuffers
	pts := []Vec2{{0, 0}, {10, 0}, {20, 0}}
	sb.buildStrip(pts, 4, Color{1, 1, 1, 1})
	if len(sb.vertices) != 6 || len(sb.indices) != 12 {
		t.Fatalf("vertices %d indices %d, want 6 and 12", len(sb.vertices), len(sb.indices))
	}
	// A horizontal line gets vertices 2 above and below.
	if sb.vertices[0].DstY != 2 || sb.vertices[1].DstY != -2 {
		t.Errorf("first pair y = %v, %v", sb.vertices[0].DstY, sb.vertices[1].DstY)
	}
	for _, i := range sb.indices {
		if int(i) >= len(sb.vertices) {
			t.Fatalf("index %d out of range", i)
		}
	}

	sb.buildStrip(pts[:1], 4, Color{})
	if len(sb.vertices) != 0 || len(sb.indices) != 0 {
		t.Error("a single point should produce no geometry")
	}
}

func TestPerpendicular(t *testing.T) {
	nx, ny := perpendicular(Vec2{0, 0}, Vec2{0, 5})
	if !approxEqual(nx, -1, epsilon) || !approxEqual(ny, 0, epsilon) {
		t.Errorf("perpendicular = (%v, %v)", nx, ny)
	}
	nx, ny = perpendicular(Vec2{1, 1}, Vec2{1, 1})
	if nx != 0 || ny != -1 {
		t.Errorf("degenerate perpendicular = (%v, %v)", nx, ny)
	}
}
