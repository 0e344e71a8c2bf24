package graphcanvas

import (
	"log/slog"
	"reflect"
	"slices"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween/ease"
)

// PopupWidget is a widget drawn above the nodes, e.g. a context menu.
type PopupWidget interface {
	Widget
	// Size is the popup size in screen pixels.
	Size() Vec2
	// Draw renders the popup with its top-left at the screen position at.
	Draw(dst *ebiten.Image, at Vec2)
}

type popupEntry struct {
	widget   PopupWidget
	location Vec2 // canvas-local screen position
}

// Canvas displays a Graph: one visual node per graph node, positioned by a
// ViewTransform, with input routed through an InputLinker. All methods must
// be called from the frame thread.
type Canvas struct {
	graph    Graph
	registry VisualizerRegistry
	view     *ViewTransform
	linker   *InputLinker
	logger   *slog.Logger
	debug    bool
	stats    FrameStats

	nodes        map[NodeGUID]CanvasNode
	order        []NodeGUID
	locationSubs map[NodeGUID]Subscription
	graphSubs    []Subscription
	selected     map[NodeGUID]struct{}
	popups       []popupEntry
	preview      PinReference
	modifiers    LocationModifierStack

	// DesignMode skips location-changed subscriptions; positions are only
	// refreshed by canvas commands and view changes.
	DesignMode bool
	// GuardBand is the cull rectangle expansion as a fraction of canvas size.
	GuardBand float64
	// LegacyConnectionPaint makes the canvas draw every connection through
	// the schema visualizer. When false, visual nodes implementing
	// PinConnectionPainter draw their own.
	LegacyConnectionPaint bool
	// DragDeadZone is the distance in pixels the pointer must travel from a
	// drag-armed press before a drag is detected.
	DragDeadZone float64
	// FocusDuration and FocusEase control FocusSelection.
	FocusDuration float32
	FocusEase     ease.TweenFunc

	origin   Vec2    // screen-space top-left of the canvas
	cursor   Vec2    // canvas-local cursor
	nodeZoom float64 // zoom last pushed to the visual nodes

	pointer     pointerState
	drag        dragState
	injectQueue []syntheticEvent
	script      *InputScript
	keymap      *KeymapWatcher
	keyHandles  []CallbackHandle // bindings from BindKeymap
}

// NewCanvas creates an empty canvas. A nil registry displays every node as
// a BoxNode.
func NewCanvas(registry VisualizerRegistry) *Canvas {
	if registry == nil {
		m := NewVisualizerMap()
		m.Register("", "", NewBoxNode)
		registry = m
	}
	return &Canvas{
		registry:              registry,
		view:                  NewViewTransform(),
		linker:                NewInputLinker(),
		nodes:                 make(map[NodeGUID]CanvasNode),
		locationSubs:          make(map[NodeGUID]Subscription),
		selected:              make(map[NodeGUID]struct{}),
		GuardBand:             DefaultGuardBand,
		LegacyConnectionPaint: true,
		DragDeadZone:          defaultDragDeadZone,
		FocusDuration:         0.35,
		FocusEase:             ease.OutCubic,
		nodeZoom:              DefaultView.Zoom,
	}
}

// IsValid implements Widget. The canvas is the last responder of every
// routed event.
func (c *Canvas) IsValid() bool { return true }

// ContextObject returns the displayed graph.
func (c *Canvas) ContextObject() any { return c.graph }

// View returns the canvas view transform.
func (c *Canvas) View() *ViewTransform { return c.view }

// Linker returns the canvas input linker.
func (c *Canvas) Linker() *InputLinker { return c.linker }

// Graph returns the displayed graph, or nil.
func (c *Canvas) Graph() Graph { return c.graph }

// SetLogger overrides the package logger for this canvas and its linker.
func (c *Canvas) SetLogger(logger *slog.Logger) {
	c.logger = logger
	c.linker.SetLogger(logger)
}

func (c *Canvas) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return packageLogger()
}

// SetDebugMode enables per-frame stats logging and the overlay.
func (c *Canvas) SetDebugMode(enabled bool) { c.debug = enabled }

// Stats returns the stats of the last frame. Only populated in debug mode.
func (c *Canvas) Stats() FrameStats { return c.stats }

// SetRect places the canvas on screen. The view's size follows.
func (c *Canvas) SetRect(r Rect) {
	c.origin = Vec2{r.X, r.Y}
	size := Vec2{r.Width, r.Height}
	if size != c.view.Size {
		c.view.Size = size
		c.view.MarkDirty()
	}
}

// Rect returns the on-screen canvas rectangle.
func (c *Canvas) Rect() Rect {
	return Rect{X: c.origin.X, Y: c.origin.Y, Width: c.view.Size.X, Height: c.view.Size.Y}
}

// Cursor returns the canvas-local cursor position.
func (c *Canvas) Cursor() Vec2 { return c.cursor }

// --- Graph binding ---

// sameGraph reports whether a and b are the same non-nil graph without
// panicking on non-comparable dynamic types.
func sameGraph(a, b Graph) bool {
	if a == nil || b == nil {
		return false
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) || !reflect.ValueOf(a).Comparable() {
		return false
	}
	return a == b
}

// SetGraph displays g, replacing the current graph. Setting the graph that
// is already displayed logs a warning and does nothing. Graphs implemented
// by non-comparable values are never considered already displayed.
func (c *Canvas) SetGraph(g Graph) {
	if sameGraph(g, c.graph) {
		c.log().Warn("graph is already displayed", "graph", g.GraphType())
		return
	}
	for _, s := range c.graphSubs {
		s.Unsubscribe()
	}
	c.graphSubs = nil
	c.Reset()
	c.graph = g
	if g == nil {
		return
	}
	c.graphSubs = append(c.graphSubs,
		g.OnNodeAdded(c.onNodeAdded),
		g.OnNodeRemoved(c.onNodeRemoved),
	)
	c.Refresh()
}

// Reset removes every displayed node, clears the selection and the preview
// connection.
func (c *Canvas) Reset() {
	for _, s := range c.locationSubs {
		s.Unsubscribe()
	}
	clear(c.locationSubs)
	for _, id := range c.order {
		c.nodes[id].Destroy()
	}
	clear(c.nodes)
	c.order = c.order[:0]
	clear(c.selected)
	c.preview = PinReference{}
}

// Refresh displays every node of the graph and rebuilds pin connections.
// The display must be empty; otherwise a warning is logged and nothing
// happens.
func (c *Canvas) Refresh() {
	if len(c.nodes) > 0 {
		c.log().Warn("cannot refresh a canvas that has not been reset", "displayed", len(c.nodes))
		return
	}
	if c.graph == nil {
		return
	}
	for _, gn := range c.graph.Nodes() {
		c.addNode(gn)
	}
	for _, id := range c.order {
		c.nodes[id].RebuildPinConnections()
	}
}

func (c *Canvas) onNodeAdded(gn GraphNode) {
	if n := c.addNode(gn); n != nil {
		n.RebuildPinConnections()
	}
}

func (c *Canvas) onNodeRemoved(gn GraphNode) {
	if gn == nil {
		return
	}
	c.removeNode(gn.GUID())
}

// addNode creates and registers the visual node for gn.
func (c *Canvas) addNode(gn GraphNode) CanvasNode {
	if gn == nil || !gn.GUID().IsValid() {
		return nil
	}
	id := gn.GUID()
	if _, ok := c.nodes[id]; ok {
		return nil
	}
	graphType := ""
	if c.graph != nil {
		graphType = c.graph.GraphType()
	}
	factory, ok := c.registry.ResolveVisualizer(graphType, gn.NodeType())
	if !ok {
		c.log().Error("no visualizer for node", "graph", graphType, "type", gn.NodeType(), "node", id.String())
		return nil
	}
	n := factory(gn, c)
	if n == nil {
		c.log().Error("visualizer produced no node", "graph", graphType, "type", gn.NodeType(), "node", id.String())
		return nil
	}
	c.nodes[id] = n
	c.order = append(c.order, id)
	n.OnZoomSet(c.view.Zoom())
	c.updateNodePosition(n)

	if !c.DesignMode {
		c.locationSubs[id] = gn.OnLocationChanged(c.onNodeLocationChanged)
	}
	return n
}

// removeNode unsubscribes, deselects, and destroys the visual node for id.
func (c *Canvas) removeNode(id NodeGUID) {
	n, ok := c.nodes[id]
	if !ok {
		return
	}
	c.UnselectNode(id)
	if s, ok := c.locationSubs[id]; ok {
		s.Unsubscribe()
		delete(c.locationSubs, id)
	}
	delete(c.nodes, id)
	if i := slices.Index(c.order, id); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
	if c.preview.Node == id {
		c.preview = PinReference{}
	}
	n.Destroy()
}

func (c *Canvas) onNodeLocationChanged(gn GraphNode) {
	if gn == nil {
		return
	}
	if n, ok := c.nodes[gn.GUID()]; ok {
		c.updateNodePosition(n)
	}
}

// displayLocation returns the proxy location the canvas shows for gn.
func (c *Canvas) displayLocation(gn GraphNode) Vec2 {
	loc := gn.Location()
	if loc.HasNaN() {
		c.debugCheckLocation(gn.GUID(), loc)
		loc = Vec2{}
	}
	return c.modifiers.LocationToProxy(loc)
}

func (c *Canvas) updateNodePosition(n CanvasNode) {
	if n == nil || n.GraphNode() == nil {
		return
	}
	n.SetScreenPosition(c.view.ToScreen(c.displayLocation(n.GraphNode())))
}

func (c *Canvas) updateAllPositions() {
	for _, id := range c.order {
		c.updateNodePosition(c.nodes[id])
	}
}

func (c *Canvas) updateAllZoom() {
	z := c.view.Zoom()
	for _, id := range c.order {
		c.nodes[id].OnZoomSet(z)
	}
}

// --- Queries ---

// GetCanvasNode returns the visual node displayed for id.
func (c *Canvas) GetCanvasNode(id NodeGUID) (CanvasNode, bool) {
	n, ok := c.nodes[id]
	return n, ok
}

// DisplayedNodes returns the visual nodes in display order.
func (c *Canvas) DisplayedNodes() []CanvasNode {
	out := make([]CanvasNode, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.nodes[id])
	}
	return out
}

// NumDisplayedNodes returns the number of displayed nodes.
func (c *Canvas) NumDisplayedNodes() int { return len(c.nodes) }

// ResolvePinReference returns the pin widget for ref, or nil.
func (c *Canvas) ResolvePinReference(ref PinReference) CanvasPin {
	if !ref.IsValid() {
		return nil
	}
	n, ok := c.nodes[ref.Node]
	if !ok {
		return nil
	}
	for _, p := range n.Pins() {
		if p.PinGUID() == ref.Pin {
			return p
		}
	}
	return nil
}

// --- Selection ---

// SelectNode adds id to the selection. Unknown nodes are ignored.
func (c *Canvas) SelectNode(id NodeGUID) {
	n, ok := c.nodes[id]
	if !ok {
		return
	}
	if _, already := c.selected[id]; already {
		return
	}
	c.selected[id] = struct{}{}
	n.SetNodeSelected(true)
}

// SelectNodes adds every id to the selection.
func (c *Canvas) SelectNodes(ids ...NodeGUID) {
	for _, id := range ids {
		c.SelectNode(id)
	}
}

// UnselectNode removes id from the selection.
func (c *Canvas) UnselectNode(id NodeGUID) {
	if _, ok := c.selected[id]; !ok {
		return
	}
	delete(c.selected, id)
	if n, ok := c.nodes[id]; ok {
		n.SetNodeSelected(false)
	}
}

// ClearNodeSelection empties the selection.
func (c *Canvas) ClearNodeSelection() {
	for id := range c.selected {
		if n, ok := c.nodes[id]; ok {
			n.SetNodeSelected(false)
		}
	}
	clear(c.selected)
}

// IsNodeSelected reports whether id is selected.
func (c *Canvas) IsNodeSelected(id NodeGUID) bool {
	_, ok := c.selected[id]
	return ok
}

// SelectedNodes returns the selected ids in display order.
func (c *Canvas) SelectedNodes() []NodeGUID {
	out := make([]NodeGUID, 0, len(c.selected))
	for _, id := range c.order {
		if _, ok := c.selected[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// --- View commands ---

// SetViewCorner sets the view offset.
func (c *Canvas) SetViewCorner(corner Vec2, interp bool) { c.view.SetViewCorner(corner, interp) }

// AddToViewCorner pans the view by delta.
func (c *Canvas) AddToViewCorner(delta Vec2, interp bool) { c.view.AddToViewCorner(delta, interp) }

// SetZoom sets the view zoom.
func (c *Canvas) SetZoom(zoom float64, interp bool) { c.view.SetZoom(zoom, interp) }

// AddToZoom zooms the view by step.
func (c *Canvas) AddToZoom(step float64, interp bool) { c.view.AddToZoom(step, interp) }

// FocusSelection animates the view to center the selected nodes. With no
// selection every displayed node is used.
func (c *Canvas) FocusSelection() bool {
	ids := c.SelectedNodes()
	if len(ids) == 0 {
		ids = slices.Clone(c.order)
	}
	var bounds Rect
	found := false
	for _, id := range ids {
		n := c.nodes[id]
		if n == nil || n.GraphNode() == nil {
			continue
		}
		loc := c.displayLocation(n.GraphNode())
		size := n.DesiredSize()
		r := Rect{X: loc.X, Y: loc.Y, Width: size.X, Height: size.Y}
		if !found {
			bounds = r
			found = true
			continue
		}
		bounds = unionRect(bounds, r)
	}
	if !found {
		return false
	}
	c.view.FocusOn(bounds.Center(), c.FocusDuration, c.FocusEase)
	return true
}

func unionRect(a, b Rect) Rect {
	minX := min(a.X, b.X)
	minY := min(a.Y, b.Y)
	maxX := max(a.X+a.Width, b.X+b.Width)
	maxY := max(a.Y+a.Height, b.Y+b.Height)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// --- Node locations ---

// AddLocationModifier appends m to the location modifier stack.
func (c *Canvas) AddLocationModifier(m LocationModifier) {
	c.modifiers = append(c.modifiers, m)
	c.updateAllPositions()
}

// GetNodeLocation returns the displayed (proxy) location of id, or the zero
// vector for unknown nodes.
func (c *Canvas) GetNodeLocation(id NodeGUID) Vec2 {
	n, ok := c.nodes[id]
	if !ok || n.GraphNode() == nil {
		return Vec2{}
	}
	return c.displayLocation(n.GraphNode())
}

// SetNodeLocation moves id so that it displays at the proxy location loc.
// Unknown nodes are ignored.
func (c *Canvas) SetNodeLocation(id NodeGUID, loc Vec2) {
	n, ok := c.nodes[id]
	if !ok || n.GraphNode() == nil {
		return
	}
	n.GraphNode().SetLocation(c.modifiers.ProxyToLocation(loc))
	if c.DesignMode {
		c.updateNodePosition(n)
	}
}

// --- Popups ---

// AddWidgetToPopups shows w at the canvas-local screen location.
func (c *Canvas) AddWidgetToPopups(w PopupWidget, location Vec2) bool {
	if w == nil || !w.IsValid() {
		return false
	}
	c.popups = append(c.popups, popupEntry{widget: w, location: location})
	return true
}

// RemoveWidgetFromPopups removes w and reports whether it was shown.
func (c *Canvas) RemoveWidgetFromPopups(w PopupWidget) bool {
	if w == nil {
		return false
	}
	for i := range c.popups {
		if c.popups[i].widget == w {
			c.popups = slices.Delete(c.popups, i, i+1)
			return true
		}
	}
	return false
}

// ClearPopups removes every popup.
func (c *Canvas) ClearPopups() { c.popups = c.popups[:0] }

// NumPopups returns the number of popups shown.
func (c *Canvas) NumPopups() int { return len(c.popups) }

// --- Preview connection ---

// SetPreviewConnection marks ref as the pin a connection is being dragged
// from.
func (c *Canvas) SetPreviewConnection(ref PinReference) { c.preview = ref }

// ClearPreviewConnection removes the preview connection.
func (c *Canvas) ClearPreviewConnection() { c.preview = PinReference{} }

// PreviewConnection returns the current preview pin reference.
func (c *Canvas) PreviewConnection() PinReference { return c.preview }

// --- Frame ---

// Update runs one tick: keymap reloads, scripted and platform input, view
// interpolation, and the batched re-layout.
func (c *Canvas) Update(dt float64) {
	var t0 time.Time
	if c.debug {
		t0 = time.Now()
	}

	if c.keymap != nil {
		c.keymap.Poll()
	}
	if c.script != nil {
		c.script.step(c)
	}
	c.processInput()

	c.view.Update(dt)
	if z := c.view.Zoom(); z != c.nodeZoom {
		c.nodeZoom = z
		c.updateAllZoom()
	}
	layout := c.view.consumeDirty()
	if layout {
		c.updateAllPositions()
	}

	if c.debug {
		c.stats.LayoutPass = layout
		c.stats.UpdateTime = time.Since(t0)
	}
}

// Draw renders connections, nodes, popups and, in debug mode, the overlay.
func (c *Canvas) Draw(dst *ebiten.Image) {
	var t0 time.Time
	if c.debug {
		t0 = time.Now()
	}

	c.paintConnections(dst)

	displayed := 0
	for _, id := range c.order {
		n := c.nodes[id]
		if c.IsNodeCulled(n) {
			continue
		}
		n.Draw(dst, c.origin)
		displayed++
	}
	for _, p := range c.popups {
		if p.widget.IsValid() {
			p.widget.Draw(dst, c.origin.Add(p.location))
		}
	}

	if c.debug {
		c.stats.Displayed = displayed
		c.stats.DrawTime = time.Since(t0)
		c.drawDebugOverlay(dst)
		c.debugLog(c.stats)
	}
}
