package graphcanvas

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// PinGeometry pairs a pin widget with its canvas-local screen rectangle.
type PinGeometry struct {
	Pin    CanvasPin
	Bounds Rect
	// Synthesized is true when the pin's node is culled and Bounds is a
	// zero-size rectangle at the node anchor.
	Synthesized bool
}

// Center returns the midpoint of the pin rectangle.
func (g PinGeometry) Center() Vec2 { return g.Bounds.Center() }

// PaintContext is handed to a ConnectionVisualizer for one paint pass.
type PaintContext struct {
	Target *ebiten.Image
	// Origin is the canvas's top-left on Target. Geometry is canvas-local;
	// add Origin before drawing.
	Origin Vec2
	Zoom   float64
	Pins   map[PinGUID]PinGeometry
}

// ConnectionVisualizer draws edges between pins.
type ConnectionVisualizer interface {
	// DrawPreviewConnection draws the in-progress edge from a pin being
	// dragged. start and end are canvas-local screen positions.
	DrawPreviewConnection(ctx *PaintContext, start, end Vec2, from CanvasPin)
	// DrawPinConnections draws every link between pins in ctx.Pins.
	DrawPinConnections(ctx *PaintContext)
}

// BezierConnectionVisualizer draws connections as horizontal-tangent cubic
// curves.
type BezierConnectionVisualizer struct {
	Style        StrokeStyle
	PreviewStyle StrokeStyle

	buf strokeBuffers
}

// NewBezierConnectionVisualizer returns a visualizer with default styles.
func NewBezierConnectionVisualizer() *BezierConnectionVisualizer {
	return &BezierConnectionVisualizer{
		Style:        StrokeStyle{Color: Color{0.85, 0.85, 0.9, 0.9}, Thickness: 2},
		PreviewStyle: StrokeStyle{Color: Color{1, 0.8, 0.3, 1}, Thickness: 2},
	}
}

// DrawPreviewConnection implements ConnectionVisualizer.
func (v *BezierConnectionVisualizer) DrawPreviewConnection(ctx *PaintContext, start, end Vec2, _ CanvasPin) {
	v.stroke(ctx, start, end, v.PreviewStyle)
}

// DrawPinConnections implements ConnectionVisualizer. Each link is drawn
// once, from its output side when both ends are present.
func (v *BezierConnectionVisualizer) DrawPinConnections(ctx *PaintContext) {
	for _, from := range ctx.Pins {
		if from.Pin == nil || from.Pin.Direction() != PinOutput {
			continue
		}
		for _, link := range from.Pin.Links() {
			to, ok := ctx.Pins[link.Pin]
			if !ok {
				continue
			}
			v.stroke(ctx, from.Center(), to.Center(), v.Style)
		}
	}
}

func (v *BezierConnectionVisualizer) stroke(ctx *PaintContext, start, end Vec2, style StrokeStyle) {
	start = start.Add(ctx.Origin)
	end = end.Add(ctx.Origin)
	c1, c2 := connectionControls(start, end, ctx.Zoom)
	style.Thickness *= max(ctx.Zoom, 0.5)
	v.buf.points = cubicBezierPoints(v.buf.points, start, c1, c2, end, style.Segments)
	v.buf.buildStrip(v.buf.points, style.Thickness, style.Color)
	v.buf.draw(ctx.Target)
}

// --- Canvas paint pass ---

// buildPinGeometries maps every displayed pin to its screen geometry. Pins of
// culled nodes are placed at the node anchor.
func (c *Canvas) buildPinGeometries() map[PinGUID]PinGeometry {
	out := make(map[PinGUID]PinGeometry)
	culled := 0
	for _, id := range c.order {
		n := c.nodes[id]
		if c.IsNodeCulled(n) {
			culled++
			if n == nil || !n.IsValid() || n.GraphNode() == nil {
				continue
			}
			// Per-pin offsets are not known for culled nodes.
			anchor := c.view.ToScreen(c.displayLocation(n.GraphNode()))
			for _, p := range n.Pins() {
				out[p.PinGUID()] = PinGeometry{
					Pin:         p,
					Bounds:      Rect{X: anchor.X, Y: anchor.Y},
					Synthesized: true,
				}
			}
			continue
		}
		for _, p := range n.Pins() {
			out[p.PinGUID()] = PinGeometry{Pin: p, Bounds: p.Geometry()}
		}
	}
	c.stats.Culled = culled
	return out
}

// connectionVisualizer resolves the visualizer from the graph schema.
func (c *Canvas) connectionVisualizer() ConnectionVisualizer {
	if c.graph == nil {
		return nil
	}
	schema := c.graph.Schema()
	if schema == nil {
		return nil
	}
	return schema.ConnectionVisualizer()
}

// paintConnections runs the connection paint pass.
func (c *Canvas) paintConnections(dst *ebiten.Image) {
	if len(c.nodes) == 0 {
		return
	}
	vis := c.connectionVisualizer()
	if vis == nil {
		c.log().Error("no connection visualizer for graph, skipping connections")
		return
	}

	ctx := &PaintContext{
		Target: dst,
		Origin: c.origin,
		Zoom:   c.view.Zoom(),
		Pins:   c.buildPinGeometries(),
	}
	c.stats.Connections = 0

	if c.preview.IsValid() {
		if start, ok := ctx.Pins[c.preview.Pin]; ok {
			startPos := start.Center()
			if attach, ok := c.previewAttachment(start); ok {
				startPos = attach
			}
			vis.DrawPreviewConnection(ctx, startPos, c.cursor, start.Pin)
			c.stats.Connections++
		}
	}

	if !c.LegacyConnectionPaint {
		for _, id := range c.order {
			if p, ok := c.nodes[id].(PinConnectionPainter); ok && !c.IsNodeCulled(c.nodes[id]) {
				p.DrawPinConnections(ctx, vis)
			}
		}
		return
	}
	vis.DrawPinConnections(ctx)
	for _, g := range ctx.Pins {
		if g.Pin != nil && g.Pin.Direction() == PinOutput {
			c.stats.Connections += len(g.Pin.Links())
		}
	}
}

// PinConnectionPainter is implemented by visual nodes that draw their own
// outgoing connections when LegacyConnectionPaint is off.
type PinConnectionPainter interface {
	DrawPinConnections(ctx *PaintContext, vis ConnectionVisualizer)
}

// previewAttachment returns the custom preview start declared by the active
// drag operation, if any. Relative attachments offset the start pin geometry
// built for this frame.
func (c *Canvas) previewAttachment(start PinGeometry) (Vec2, bool) {
	ca, ok := c.drag.op.(CustomAttachment)
	if !ok || c.drag.op == nil {
		return Vec2{}, false
	}
	pos, relative, ok := ca.PreviewAttachment()
	if !ok {
		return Vec2{}, false
	}
	if relative {
		return start.Center().Add(pos), true
	}
	return pos, true
}
