package graphcanvas

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// CanvasNode is the visual instance displayed for one graph node. The
// canvas owns it from creation until Destroy.
type CanvasNode interface {
	Widget
	// GraphNode returns the model node this visual displays.
	GraphNode() GraphNode
	// DesiredSize is the node size in graph units.
	DesiredSize() Vec2
	// SetScreenPosition places the node's top-left corner in canvas-local
	// screen space.
	SetScreenPosition(p Vec2)
	ScreenPosition() Vec2
	// OnZoomSet is called whenever the canvas zoom changes.
	OnZoomSet(zoom float64)
	SetNodeSelected(selected bool)
	// Pins returns the pin widgets of this node.
	Pins() []CanvasPin
	// RebuildPinConnections refreshes pin widgets and links from the model.
	RebuildPinConnections()
	// Draw renders the node. origin is the canvas's top-left on dst.
	Draw(dst *ebiten.Image, origin Vec2)
	Destroy()
}

// CanvasPin is the visual instance of one pin.
type CanvasPin interface {
	Widget
	PinGUID() PinGUID
	Direction() PinDirection
	Links() []PinReference
	// Node returns the owning visual node.
	Node() CanvasNode
	// Geometry is the pin's canvas-local screen rectangle.
	Geometry() Rect
}

// CustomAttachment is implemented by drag operations that want the preview
// connection to start somewhere other than the pin center. Relative
// attachments are offsets from the pin center; absolute ones are
// canvas-local screen positions.
type CustomAttachment interface {
	PreviewAttachment() (pos Vec2, relative bool, ok bool)
}

// nodeScreenRect returns the on-screen box of a visual node at zoom.
func nodeScreenRect(n CanvasNode, zoom float64) Rect {
	p := n.ScreenPosition()
	s := n.DesiredSize().Scale(zoom)
	return Rect{X: p.X, Y: p.Y, Width: s.X, Height: s.Y}
}

// --- BoxNode ---

// Box node layout in graph units.
const (
	boxNodeWidth    = 160.0
	boxHeaderH      = 22.0
	boxPinRowH      = 20.0
	boxPinSize      = 10.0
	boxMinPinRows   = 1
	boxLabelMinZoom = 0.5
)

// Default box node palette.
var (
	BoxBodyColor     = Color{0.16, 0.17, 0.2, 0.95}
	BoxHeaderColor   = Color{0.3, 0.36, 0.55, 1}
	BoxSelectedColor = Color{1, 0.75, 0.2, 1}
	BoxPinColor      = Color{0.75, 0.8, 0.85, 1}
	BoxLinkedColor   = Color{0.4, 0.9, 0.5, 1}
)

// BoxNode is the default visual node: a header with the node type and one
// row per pin, inputs on the left and outputs on the right.
type BoxNode struct {
	node     GraphNode
	pos      Vec2
	zoom     float64
	selected bool
	valid    bool
	rows     int
	pins     []*BoxPin

	// Label is drawn in the header. Defaults to the node title, or the node
	// type when the node has none.
	Label string
}

// Titled is implemented by graph nodes that carry a display title.
type Titled interface {
	Title() string
}

// NewBoxNode is a NodeVisualizerFactory producing BoxNodes.
func NewBoxNode(node GraphNode, _ *Canvas) CanvasNode {
	b := &BoxNode{
		node:  node,
		zoom:  1,
		valid: node != nil,
	}
	if node != nil {
		b.Label = node.NodeType()
		if t, ok := node.(Titled); ok && t.Title() != "" {
			b.Label = t.Title()
		}
	}
	b.RebuildPinConnections()
	return b
}

// IsValid implements Widget.
func (b *BoxNode) IsValid() bool { return b.valid }

// ContextObject returns the graph node, used as drag payload.
func (b *BoxNode) ContextObject() any { return b.node }

// GraphNode implements CanvasNode.
func (b *BoxNode) GraphNode() GraphNode { return b.node }

// DesiredSize implements CanvasNode.
func (b *BoxNode) DesiredSize() Vec2 {
	return Vec2{boxNodeWidth, boxHeaderH + float64(b.rows)*boxPinRowH}
}

// SetScreenPosition implements CanvasNode.
func (b *BoxNode) SetScreenPosition(p Vec2) { b.pos = p }

// ScreenPosition implements CanvasNode.
func (b *BoxNode) ScreenPosition() Vec2 { return b.pos }

// OnZoomSet implements CanvasNode.
func (b *BoxNode) OnZoomSet(zoom float64) { b.zoom = zoom }

// SetNodeSelected implements CanvasNode.
func (b *BoxNode) SetNodeSelected(selected bool) { b.selected = selected }

// IsSelected reports the last selection state pushed by the canvas.
func (b *BoxNode) IsSelected() bool { return b.selected }

// Pins implements CanvasNode.
func (b *BoxNode) Pins() []CanvasPin {
	out := make([]CanvasPin, len(b.pins))
	for i, p := range b.pins {
		out[i] = p
	}
	return out
}

// RebuildPinConnections implements CanvasNode.
func (b *BoxNode) RebuildPinConnections() {
	for _, p := range b.pins {
		p.valid = false
	}
	b.pins = b.pins[:0]
	if b.node == nil {
		b.rows = boxMinPinRows
		return
	}
	var inputs, outputs int
	for _, pin := range b.node.Pins() {
		bp := &BoxPin{owner: b, pin: pin, valid: true}
		if pin.Direction == PinOutput {
			bp.row = outputs
			outputs++
		} else {
			bp.row = inputs
			inputs++
		}
		b.pins = append(b.pins, bp)
	}
	b.rows = max(inputs, outputs, boxMinPinRows)
}

// Draw implements CanvasNode.
func (b *BoxNode) Draw(dst *ebiten.Image, origin Vec2) {
	if !b.valid {
		return
	}
	r := nodeScreenRect(b, b.zoom)
	r.X += origin.X
	r.Y += origin.Y

	fillRect(dst, r, BoxBodyColor)
	header := r
	header.Height = boxHeaderH * b.zoom
	fillRect(dst, header, BoxHeaderColor)
	if b.selected {
		strokeRect(dst, r, 2, BoxSelectedColor)
	}

	for _, p := range b.pins {
		g := p.Geometry()
		g.X += origin.X
		g.Y += origin.Y
		col := BoxPinColor
		if len(p.pin.Links) > 0 {
			col = BoxLinkedColor
		}
		fillRect(dst, g, col)
	}

	if b.zoom >= boxLabelMinZoom {
		ebitenutil.DebugPrintAt(dst, b.Label, int(r.X)+4, int(r.Y)+2)
		for _, p := range b.pins {
			g := p.Geometry()
			x := int(origin.X+g.X+g.Width) + 3
			if p.pin.Direction == PinOutput {
				x = int(origin.X+g.X) - 3 - 6*len(p.pin.Name)
			}
			ebitenutil.DebugPrintAt(dst, p.pin.Name, x, int(origin.Y+g.Y)-4)
		}
	}
}

// Destroy implements CanvasNode.
func (b *BoxNode) Destroy() {
	b.valid = false
	for _, p := range b.pins {
		p.valid = false
	}
}

// --- BoxPin ---

// BoxPin is the pin widget of a BoxNode.
type BoxPin struct {
	owner *BoxNode
	pin   Pin
	row   int
	valid bool
}

// IsValid implements Widget.
func (p *BoxPin) IsValid() bool { return p.valid && p.owner.valid }

// ContextObject returns the pin reference, used as drag payload.
func (p *BoxPin) ContextObject() any {
	return PinReference{Node: p.owner.node.GUID(), Pin: p.pin.GUID}
}

// PinGUID implements CanvasPin.
func (p *BoxPin) PinGUID() PinGUID { return p.pin.GUID }

// Direction implements CanvasPin.
func (p *BoxPin) Direction() PinDirection { return p.pin.Direction }

// Links implements CanvasPin.
func (p *BoxPin) Links() []PinReference { return p.pin.Links }

// Name returns the pin name.
func (p *BoxPin) Name() string { return p.pin.Name }

// Node implements CanvasPin.
func (p *BoxPin) Node() CanvasNode { return p.owner }

// Geometry implements CanvasPin.
func (p *BoxPin) Geometry() Rect {
	z := p.owner.zoom
	x := 0.0
	if p.pin.Direction == PinOutput {
		x = boxNodeWidth - boxPinSize
	}
	y := boxHeaderH + float64(p.row)*boxPinRowH + (boxPinRowH-boxPinSize)/2
	return Rect{
		X:      p.owner.pos.X + x*z,
		Y:      p.owner.pos.Y + y*z,
		Width:  boxPinSize * z,
		Height: boxPinSize * z,
	}
}

// --- Drawing helpers ---

func fillRect(dst *ebiten.Image, r Rect, c Color) {
	if dst == nil || r.Width <= 0 || r.Height <= 0 {
		return
	}
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(r.Width, r.Height)
	op.GeoM.Translate(r.X, r.Y)
	op.ColorScale.ScaleWithColor(c.toRGBA())
	dst.DrawImage(whiteSubImage, &op)
}

func strokeRect(dst *ebiten.Image, r Rect, width float64, c Color) {
	fillRect(dst, Rect{r.X, r.Y, r.Width, width}, c)
	fillRect(dst, Rect{r.X, r.Y + r.Height - width, r.Width, width}, c)
	fillRect(dst, Rect{r.X, r.Y, width, r.Height}, c)
	fillRect(dst, Rect{r.X + r.Width - width, r.Y, width, r.Height}, c)
}

// DrawPinConnections implements PinConnectionPainter by drawing the links
// leaving this node's output pins.
func (b *BoxNode) DrawPinConnections(ctx *PaintContext, vis ConnectionVisualizer) {
	own := &PaintContext{
		Target: ctx.Target,
		Origin: ctx.Origin,
		Zoom:   ctx.Zoom,
		Pins:   make(map[PinGUID]PinGeometry),
	}
	for _, p := range b.pins {
		if p.pin.Direction != PinOutput {
			continue
		}
		if g, ok := ctx.Pins[p.pin.GUID]; ok {
			own.Pins[p.pin.GUID] = g
		}
		for _, link := range p.pin.Links {
			if g, ok := ctx.Pins[link.Pin]; ok {
				own.Pins[link.Pin] = g
			}
		}
	}
	vis.DrawPinConnections(own)
}
