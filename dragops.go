package graphcanvas

// --- NodeMoveOperation ---

// NodeMoveOperation drags visual nodes. Dragging a selected node moves the
// whole selection; dragging an unselected node moves only that node.
type NodeMoveOperation struct {
	canvas *Canvas
	ids    []NodeGUID
	starts map[NodeGUID]Vec2
	moved  Vec2 // graph-space displacement
}

// NewNodeMoveOperation creates a move operation for c.
func NewNodeMoveOperation(c *Canvas) *NodeMoveOperation {
	return &NodeMoveOperation{canvas: c}
}

// Setup implements DragDropOperation. The source must be a displayed
// CanvasNode.
func (op *NodeMoveOperation) Setup(source Widget, _ any) bool {
	n, ok := source.(CanvasNode)
	if !ok || n.GraphNode() == nil {
		return false
	}
	id := n.GraphNode().GUID()
	if _, displayed := op.canvas.GetCanvasNode(id); !displayed {
		return false
	}
	if op.canvas.IsNodeSelected(id) {
		op.ids = op.canvas.SelectedNodes()
	} else {
		op.ids = []NodeGUID{id}
	}
	op.starts = make(map[NodeGUID]Vec2, len(op.ids))
	for _, id := range op.ids {
		op.starts[id] = op.canvas.GetNodeLocation(id)
	}
	return true
}

// Nodes returns the ids being moved.
func (op *NodeMoveOperation) Nodes() []NodeGUID { return op.ids }

// OnDragged implements DragUpdater.
func (op *NodeMoveOperation) OnDragged(_, delta Vec2) {
	op.moved = op.moved.Add(safeDivideVec2(delta, op.canvas.view.Zoom()))
	for _, id := range op.ids {
		op.canvas.SetNodeLocation(id, op.starts[id].Add(op.moved))
	}
}

// OnHoverWidget implements DragDropOperation.
func (op *NodeMoveOperation) OnHoverWidget(Widget) bool { return true }

// CanDropOnWidget implements DragDropOperation. Nodes can be dropped
// anywhere.
func (op *NodeMoveOperation) CanDropOnWidget(Widget) bool { return true }

// OnDragCancelled implements DragCanceller by restoring start locations.
func (op *NodeMoveOperation) OnDragCancelled(Widget) {
	for _, id := range op.ids {
		op.canvas.SetNodeLocation(id, op.starts[id])
	}
}

// --- PinConnectOperation ---

// PinConnector is implemented by graphs that can link two pins.
type PinConnector interface {
	ConnectPins(from, to PinReference) bool
}

// PinConnectOperation drags a new connection out of a pin. While active it
// drives the canvas preview connection.
type PinConnectOperation struct {
	canvas *Canvas
	from   PinReference
	dir    PinDirection
	hover  CanvasPin
}

// NewPinConnectOperation creates a connect operation for c.
func NewPinConnectOperation(c *Canvas) *PinConnectOperation {
	return &PinConnectOperation{canvas: c}
}

// Setup implements DragDropOperation. The payload must be the source pin's
// PinReference, which BoxPin provides as its context object.
func (op *PinConnectOperation) Setup(source Widget, payload any) bool {
	pin, ok := source.(CanvasPin)
	if !ok {
		return false
	}
	ref, ok := payload.(PinReference)
	if !ok || !ref.IsValid() || op.canvas.ResolvePinReference(ref) == nil {
		return false
	}
	op.from = ref
	op.dir = pin.Direction()
	op.canvas.SetPreviewConnection(ref)
	return true
}

// From returns the pin the connection starts at.
func (op *PinConnectOperation) From() PinReference { return op.from }

// Hovered returns the pin currently under the pointer that would accept the
// connection, or nil.
func (op *PinConnectOperation) Hovered() CanvasPin { return op.hover }

// accepts reports whether target is a pin on another node with the
// opposite direction.
func (op *PinConnectOperation) accepts(target Widget) (PinReference, bool) {
	pin, ok := target.(CanvasPin)
	if !ok || !pin.IsValid() || pin.Direction() == op.dir {
		return PinReference{}, false
	}
	owner := pin.Node()
	if owner == nil || owner.GraphNode() == nil {
		return PinReference{}, false
	}
	ref := PinReference{Node: owner.GraphNode().GUID(), Pin: pin.PinGUID()}
	if ref.Node == op.from.Node {
		return PinReference{}, false
	}
	return ref, true
}

// OnHoverWidget implements DragDropOperation.
func (op *PinConnectOperation) OnHoverWidget(target Widget) bool {
	if _, ok := op.accepts(target); ok {
		op.hover = target.(CanvasPin)
		return true
	}
	op.hover = nil
	return false
}

// CanDropOnWidget implements DragDropOperation.
func (op *PinConnectOperation) CanDropOnWidget(target Widget) bool {
	to, ok := op.accepts(target)
	if !ok {
		return false
	}
	op.canvas.ClearPreviewConnection()
	conn, ok := op.canvas.Graph().(PinConnector)
	if !ok {
		op.canvas.log().Warn("graph cannot connect pins", "from", op.from.Pin.String(), "to", to.Pin.String())
		return false
	}
	from, dest := op.from, to
	if op.dir == PinInput {
		from, dest = to, op.from
	}
	if !conn.ConnectPins(from, dest) {
		return false
	}
	for _, id := range [...]NodeGUID{from.Node, dest.Node} {
		if n, ok := op.canvas.GetCanvasNode(id); ok {
			n.RebuildPinConnections()
		}
	}
	return true
}

// OnDragCancelled implements DragCanceller.
func (op *PinConnectOperation) OnDragCancelled(Widget) {
	op.hover = nil
	op.canvas.ClearPreviewConnection()
}

// --- PanOperation ---

// PanOperation pans the view with the pointer.
type PanOperation struct {
	canvas *Canvas
}

// NewPanOperation creates a pan operation for c.
func NewPanOperation(c *Canvas) *PanOperation {
	return &PanOperation{canvas: c}
}

// Setup implements DragDropOperation.
func (op *PanOperation) Setup(source Widget, _ any) bool {
	return source != nil && source.IsValid()
}

// OnDragged implements DragUpdater. Content follows the pointer.
func (op *PanOperation) OnDragged(_, delta Vec2) {
	op.canvas.AddToViewCorner(safeDivideVec2(delta, op.canvas.view.Zoom()), false)
}

// OnHoverWidget implements DragDropOperation.
func (op *PanOperation) OnHoverWidget(Widget) bool { return true }

// CanDropOnWidget implements DragDropOperation.
func (op *PanOperation) CanDropOnWidget(Widget) bool { return true }
