package graphcanvas

import (
	"strings"
	"testing"
)

func TestDragMovesNode(t *testing.T) {
	c, g := newInteractiveCanvas(t)
	n := g.add("a", Vec2{100, 100})

	c.InjectDrag(150, 110, 250, 160, 6)
	step(c, 2) // press, first move past the dead zone
	op, ok := c.DragOperation().(*NodeMoveOperation)
	if !ok {
		t.Fatalf("drag operation = %T, want *NodeMoveOperation", c.DragOperation())
	}
	if len(op.Nodes()) != 1 || op.Nodes()[0] != n.id {
		t.Errorf("moving %v, want [%v]", op.Nodes(), n.id)
	}
	drain(c)

	if c.IsDragging() {
		t.Error("drag should end on release")
	}
	if !vecApprox(n.loc, Vec2{200, 150}, 1e-9) {
		t.Errorf("node at %v, want (200, 150)", n.loc)
	}
}

func TestDragMovesSelection(t *testing.T) {
	c, g := newInteractiveCanvas(t)
	a := g.add("a", Vec2{100, 100})
	b := g.add("b", Vec2{100, 300})
	c.SelectNodes(a.id, b.id)

	c.InjectDrag(150, 110, 190, 110, 3)
	drain(c)
	if !vecApprox(a.loc, Vec2{140, 100}, 1e-9) || !vecApprox(b.loc, Vec2{140, 300}, 1e-9) {
		t.Errorf("locations = %v, %v, want both moved by 40", a.loc, b.loc)
	}
}

func TestDragMoveRespectsZoom(t *testing.T) {
	c, g := newInteractiveCanvas(t)
	n := g.add("a", Vec2{100, 100})
	c.SetZoom(2, false)
	c.SetViewCorner(Vec2{}, false)
	step(c, 1)

	// Node spans (200,200)-(520,284) on screen.
	c.InjectDrag(300, 210, 400, 210, 4)
	drain(c)
	if !vecApprox(n.loc, Vec2{150, 100}, 1e-9) {
		t.Errorf("node at %v, want (150, 100)", n.loc)
	}
}

func TestDeadZoneSuppressesDrag(t *testing.T) {
	c, g := newInteractiveCanvas(t)
	n := g.add("a", Vec2{100, 100})

	c.InjectPress(150, 110)
	c.InjectMove(153, 110)
	step(c, 2)
	if c.IsDragging() {
		t.Error("movement inside the dead zone should not start a drag")
	}
	c.InjectMove(160, 110)
	step(c, 1)
	if !c.IsDragging() {
		t.Error("leaving the dead zone should start a drag")
	}
	c.InjectRelease(160, 110)
	drain(c)
	if !vecApprox(n.loc, Vec2{110, 100}, 1e-9) {
		t.Errorf("node at %v, want (110, 100)", n.loc)
	}
}

func TestEscapeCancelsMove(t *testing.T) {
	c, g := newInteractiveCanvas(t)
	n := g.add("a", Vec2{100, 100})

	c.InjectPress(150, 110)
	c.InjectMove(180, 130)
	c.InjectMove(200, 140)
	step(c, 3)
	if n.loc == (Vec2{100, 100}) {
		t.Fatal("node should have moved before cancel")
	}
	c.InjectKeyDown(KeyEscape)
	c.InjectRelease(200, 140)
	drain(c)

	if c.IsDragging() {
		t.Error("Escape should end the drag")
	}
	if n.loc != (Vec2{100, 100}) {
		t.Errorf("node at %v, want restored (100, 100)", n.loc)
	}
}

func TestDragConnectsPins(t *testing.T) {
	c, g := newInteractiveCanvas(t)
	a := g.add("a", Vec2{100, 100})
	b := g.add("b", Vec2{400, 100})

	// a.out center (255,132), b.in center (405,132).
	c.InjectDrag(255, 132, 405, 132, 5)
	step(c, 2)
	if _, ok := c.DragOperation().(*PinConnectOperation); !ok {
		t.Fatalf("drag operation = %T, want *PinConnectOperation", c.DragOperation())
	}
	if c.PreviewConnection() != a.pin("out") {
		t.Error("preview connection should start at a.out")
	}
	drain(c)

	if len(g.links) != 1 {
		t.Fatalf("links = %d, want 1", len(g.links))
	}
	if g.links[0] != [2]PinReference{a.pin("out"), b.pin("in")} {
		t.Errorf("link = %v", g.links[0])
	}
	if c.PreviewConnection().IsValid() {
		t.Error("preview should clear after the drop")
	}
	if a.loc != (Vec2{100, 100}) {
		t.Error("dragging from a pin must not move the node")
	}
	p := c.ResolvePinReference(a.pin("out"))
	if p == nil || len(p.Links()) != 1 {
		t.Error("pin widgets should be rebuilt with the new link")
	}
}

func TestDragConnectFromInputReversesLink(t *testing.T) {
	c, g := newInteractiveCanvas(t)
	a := g.add("a", Vec2{100, 100})
	b := g.add("b", Vec2{400, 100})

	c.InjectDrag(405, 132, 255, 132, 5)
	drain(c)
	if len(g.links) != 1 || g.links[0] != [2]PinReference{a.pin("out"), b.pin("in")} {
		t.Errorf("links = %v, want a.out -> b.in", g.links)
	}
}

func TestDragConnectRejectsSameDirection(t *testing.T) {
	c, g := newInteractiveCanvas(t)
	g.add("a", Vec2{100, 100})
	g.add("b", Vec2{400, 100})

	// a.in (105,132) to b.in (405,132).
	c.InjectDrag(105, 132, 405, 132, 5)
	drain(c)
	if len(g.links) != 0 {
		t.Errorf("links = %v, want none", g.links)
	}
	if c.PreviewConnection().IsValid() {
		t.Error("cancelled connect should clear the preview")
	}
}

// plainGraph hides testGraph's PinConnector implementation.
type plainGraph struct{ Graph }

func TestDragConnectWithoutConnectorWarns(t *testing.T) {
	logs := captureLogs(t)
	setInputForTest(t)
	c := NewCanvas(nil)
	c.SetRect(Rect{Width: 800, Height: 600})
	if err := DefaultConfig().Apply(c); err != nil {
		t.Fatal(err)
	}
	tg := newTestGraph()
	c.SetGraph(plainGraph{Graph: tg})
	tg.add("a", Vec2{100, 100})
	tg.add("b", Vec2{400, 100})

	c.InjectDrag(255, 132, 405, 132, 5)
	drain(c)
	if len(tg.links) != 0 {
		t.Error("graph without PinConnector should not be linked")
	}
	if !strings.Contains(logs.String(), "graph cannot connect pins") {
		t.Errorf("missing warning in %q", logs.String())
	}
}

func TestRightDragPans(t *testing.T) {
	c, _ := newInteractiveCanvas(t)
	c.InjectButtonDrag(KeyRightMouseButton, 400, 300, 300, 250, 4)
	drain(c)
	if got := c.View().Target().Offset(); !vecApprox(got, Vec2{-100, -50}, 1e-9) {
		t.Errorf("offset = %v, want (-100, -50)", got)
	}
}

func TestLeftDragOnCanvasDoesNotPan(t *testing.T) {
	c, _ := newInteractiveCanvas(t)
	c.InjectDrag(400, 300, 300, 250, 4)
	drain(c)
	if got := c.View().Target().Offset(); got != (Vec2{}) {
		t.Errorf("offset = %v, want unchanged", got)
	}
}

type attachOp struct {
	PanOperation
	pos      Vec2
	relative bool
}

func (o *attachOp) PreviewAttachment() (Vec2, bool, bool) { return o.pos, o.relative, true }

func TestPreviewAttachment(t *testing.T) {
	c, g := newTestCanvas(t)
	a := g.add("a", Vec2{100, 100})
	ref := a.pin("out")
	c.SetPreviewConnection(ref)
	start := c.buildPinGeometries()[ref.Pin]

	c.drag.op = &attachOp{pos: Vec2{5, 0}, relative: true}
	got, ok := c.previewAttachment(start)
	if !ok || !vecApprox(got, Vec2{260, 132}, epsilon) {
		t.Errorf("relative attachment = %v, %v, want (260, 132)", got, ok)
	}

	c.drag.op = &attachOp{pos: Vec2{7, 8}}
	got, ok = c.previewAttachment(start)
	if !ok || got != (Vec2{7, 8}) {
		t.Errorf("absolute attachment = %v, %v", got, ok)
	}

	c.drag.op = nil
	if _, ok := c.previewAttachment(start); ok {
		t.Error("no operation should mean no attachment")
	}
}

func TestPreviewAttachmentCulledSource(t *testing.T) {
	c, g := newTestCanvas(t)
	c.SetRect(Rect{Width: 1000, Height: 1000})
	a := g.add("a", Vec2{5000, 5000})
	ref := a.pin("out")
	c.SetPreviewConnection(ref)

	start := c.buildPinGeometries()[ref.Pin]
	if !start.Synthesized {
		t.Fatal("pin of a culled node should have synthesized geometry")
	}
	c.drag.op = &attachOp{pos: Vec2{5, 0}, relative: true}
	got, ok := c.previewAttachment(start)
	if !ok || !vecApprox(got, Vec2{5005, 5000}, epsilon) {
		t.Errorf("relative attachment = %v, %v, want (5005, 5000)", got, ok)
	}
}
