package graphcanvas

import (
	"bytes"
	"log/slog"
	"math"
	"slices"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

const epsilon = 1e-6

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func vecApprox(a, b Vec2, eps float64) bool {
	return approxEqual(a.X, b.X, eps) && approxEqual(a.Y, b.Y, eps)
}

// --- Fake graph ---

type testSubs[T any] struct {
	next int
	fns  map[int]func(T)
}

func (s *testSubs[T]) add(fn func(T)) Subscription {
	if s.fns == nil {
		s.fns = make(map[int]func(T))
	}
	s.next++
	id := s.next
	s.fns[id] = fn
	return subscriptionFunc(func() { delete(s.fns, id) })
}

func (s *testSubs[T]) notify(v T) {
	ids := make([]int, 0, len(s.fns))
	for id := range s.fns {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if fn, ok := s.fns[id]; ok {
			fn(v)
		}
	}
}

type testNode struct {
	id    NodeGUID
	typ   string
	loc   Vec2
	pins  []Pin
	moved testSubs[GraphNode]
}

func (n *testNode) GUID() NodeGUID { return n.id }
func (n *testNode) NodeType() string { return n.typ }
func (n *testNode) Location() Vec2 { return n.loc }
func (n *testNode) Pins() []Pin { return n.pins }
func (n *testNode) subscribers() int { return len(n.moved.fns) }
func (n *testNode) SetLocation(l Vec2) { n.loc = l; n.moved.notify(n) }
func (n *testNode) OnLocationChanged(fn func(GraphNode)) Subscription {
	return n.moved.add(fn)
}

func (n *testNode) pin(name string) PinReference {
	for _, p := range n.pins {
		if p.Name == name {
			return PinReference{Node: n.id, Pin: p.GUID}
		}
	}
	return PinReference{}
}

type testSchema struct{ vis ConnectionVisualizer }

func (s testSchema) ConnectionVisualizer() ConnectionVisualizer { return s.vis }

type testGraph struct {
	typ     string
	nodes   []*testNode
	schema  Schema
	added   testSubs[GraphNode]
	removed testSubs[GraphNode]
	links   [][2]PinReference
}

func newTestGraph() *testGraph {
	return &testGraph{typ: "test", schema: testSchema{vis: &recordingVisualizer{}}}
}

func (g *testGraph) GraphType() string { return g.typ }
func (g *testGraph) Schema() Schema { return g.schema }
func (g *testGraph) Nodes() []GraphNode {
	out := make([]GraphNode, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = n
	}
	return out
}

func (g *testGraph) Node(id NodeGUID) (GraphNode, bool) {
	for _, n := range g.nodes {
		if n.id == id {
			return n, true
		}
	}
	return nil, false
}

func (g *testGraph) OnNodeAdded(fn func(GraphNode)) Subscription { return g.added.add(fn) }
func (g *testGraph) OnNodeRemoved(fn func(GraphNode)) Subscription { return g.removed.add(fn) }

// add appends a node with one input "in" and one output "out".
func (g *testGraph) add(typ string, loc Vec2) *testNode {
	n := &testNode{id: NewNodeGUID(), typ: typ, loc: loc}
	n.pins = []Pin{
		{GUID: NewPinGUID(), Name: "in", Direction: PinInput},
		{GUID: NewPinGUID(), Name: "out", Direction: PinOutput},
	}
	g.nodes = append(g.nodes, n)
	g.added.notify(n)
	return n
}

func (g *testGraph) remove(n *testNode) {
	g.nodes = slices.DeleteFunc(g.nodes, func(x *testNode) bool { return x == n })
	g.removed.notify(n)
}

// ConnectPins implements PinConnector.
func (g *testGraph) ConnectPins(from, to PinReference) bool {
	g.links = append(g.links, [2]PinReference{from, to})
	for _, n := range g.nodes {
		for i := range n.pins {
			switch {
			case n.id == from.Node && n.pins[i].GUID == from.Pin:
				n.pins[i].Links = append(n.pins[i].Links, to)
			case n.id == to.Node && n.pins[i].GUID == to.Pin:
				n.pins[i].Links = append(n.pins[i].Links, from)
			}
		}
	}
	return true
}

// --- Recording visualizer ---

type previewCall struct {
	start, end Vec2
	from       CanvasPin
}

type recordingVisualizer struct {
	previews []previewCall
	passes   int
	pins     []map[PinGUID]PinGeometry
}

func (v *recordingVisualizer) DrawPreviewConnection(_ *PaintContext, start, end Vec2, from CanvasPin) {
	v.previews = append(v.previews, previewCall{start, end, from})
}

func (v *recordingVisualizer) DrawPinConnections(ctx *PaintContext) {
	v.passes++
	v.pins = append(v.pins, ctx.Pins)
}

// --- Widgets ---

type testWidget struct {
	valid bool
	ctx   any
}

func (w *testWidget) IsValid() bool { return w.valid }
func (w *testWidget) ContextObject() any { return w.ctx }

func newWidget() *testWidget { return &testWidget{valid: true} }

type testPopup struct {
	size  Vec2
	valid bool
}

func (p *testPopup) IsValid() bool { return p.valid }
func (p *testPopup) Size() Vec2 { return p.size }
func (p *testPopup) Draw(*ebiten.Image, Vec2) {}

// --- Logging ---

// captureLogs routes the package logger to a buffer for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { SetLogger(nil) })
	return &buf
}

// --- Platform input ---

// setInputForTest replaces platform polling with idle input for the test.
func setInputForTest(t *testing.T) {
	t.Helper()
	saved := []any{cursorPosition, wheel, isKeyPressed, isMouseButtonJustPressed,
		isMouseButtonJustReleased, appendJustPressedKeys, appendJustReleasedKeys}
	cursorPosition = func() (int, int) { return 0, 0 }
	wheel = func() (float64, float64) { return 0, 0 }
	isKeyPressed = func(ebiten.Key) bool { return false }
	isMouseButtonJustPressed = func(ebiten.MouseButton) bool { return false }
	isMouseButtonJustReleased = func(ebiten.MouseButton) bool { return false }
	appendJustPressedKeys = func(k []ebiten.Key) []ebiten.Key { return k }
	appendJustReleasedKeys = func(k []ebiten.Key) []ebiten.Key { return k }
	t.Cleanup(func() {
		cursorPosition = saved[0].(func() (int, int))
		wheel = saved[1].(func() (float64, float64))
		isKeyPressed = saved[2].(func(ebiten.Key) bool)
		isMouseButtonJustPressed = saved[3].(func(ebiten.MouseButton) bool)
		isMouseButtonJustReleased = saved[4].(func(ebiten.MouseButton) bool)
		appendJustPressedKeys = saved[5].(func([]ebiten.Key) []ebiten.Key)
		appendJustReleasedKeys = saved[6].(func([]ebiten.Key) []ebiten.Key)
	})
}

// newTestCanvas returns an 800x600 canvas displaying a fresh test graph with
// idle platform input.
func newTestCanvas(t *testing.T) (*Canvas, *testGraph) {
	t.Helper()
	setInputForTest(t)
	c := NewCanvas(nil)
	c.SetRect(Rect{Width: 800, Height: 600})
	g := newTestGraph()
	c.SetGraph(g)
	return c, g
}

// step runs n canvas ticks at 60 TPS.
func step(c *Canvas, n int) {
	for range n {
		c.Update(1.0 / 60)
	}
}
