// Package graphmodel is an in-memory graph model for the graphcanvas
// package. It backs the CLI, the examples and canvas tests, loads graph
// description files and persists node layouts.
package graphmodel

import (
	"slices"

	gc "github.com/phanxgames/graphcanvas"
)

// observers is an ordered list of callbacks with removable registrations.
type observers[T any] struct {
	next uint64
	list []observer[T]
}

type observer[T any] struct {
	id uint64
	fn func(T)
}

func (o *observers[T]) add(fn func(T)) gc.Subscription {
	o.next++
	id := o.next
	o.list = append(o.list, observer[T]{id: id, fn: fn})
	return unsubscribeFunc(func() {
		o.list = slices.DeleteFunc(o.list, func(e observer[T]) bool { return e.id == id })
	})
}

// notify calls every observer registered at the time of the call.
func (o *observers[T]) notify(v T) {
	for _, e := range slices.Clone(o.list) {
		e.fn(v)
	}
}

type unsubscribeFunc func()

func (f unsubscribeFunc) Unsubscribe() { f() }

// Schema is a gc.Schema with a fixed connection visualizer.
type Schema struct {
	Visualizer gc.ConnectionVisualizer
}

// ConnectionVisualizer implements gc.Schema.
func (s *Schema) ConnectionVisualizer() gc.ConnectionVisualizer {
	if s == nil {
		return nil
	}
	return s.Visualizer
}

// Graph is an in-memory gc.Graph. Notifications are delivered
// synchronously. It is not safe for concurrent use.
type Graph struct {
	graphType string
	nodes     map[gc.NodeGUID]*Node
	order     []gc.NodeGUID
	schema    gc.Schema

	added   observers[gc.GraphNode]
	removed observers[gc.GraphNode]
}

// New creates an empty graph of the given type. Its schema draws bezier
// connections.
func New(graphType string) *Graph {
	return &Graph{
		graphType: graphType,
		nodes:     make(map[gc.NodeGUID]*Node),
		schema:    &Schema{Visualizer: gc.NewBezierConnectionVisualizer()},
	}
}

// GraphType implements gc.Graph.
func (g *Graph) GraphType() string { return g.graphType }

// Schema implements gc.Graph.
func (g *Graph) Schema() gc.Schema { return g.schema }

// SetSchema replaces the schema. A nil schema leaves the canvas without a
// connection visualizer.
func (g *Graph) SetSchema(s gc.Schema) { g.schema = s }

// Node implements gc.Graph.
func (g *Graph) Node(id gc.NodeGUID) (gc.GraphNode, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, false
	}
	return n, true
}

// Lookup returns the concrete node for id.
func (g *Graph) Lookup(id gc.NodeGUID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes implements gc.Graph. Nodes are returned in insertion order.
func (g *Graph) Nodes() []gc.GraphNode {
	out := make([]gc.GraphNode, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.order) }

// OnNodeAdded implements gc.Graph.
func (g *Graph) OnNodeAdded(fn func(gc.GraphNode)) gc.Subscription { return g.added.add(fn) }

// OnNodeRemoved implements gc.Graph.
func (g *Graph) OnNodeRemoved(fn func(gc.GraphNode)) gc.Subscription { return g.removed.add(fn) }

// NodeSpec describes a node to add.
type NodeSpec struct {
	Type     string
	Title    string
	Location gc.Vec2
	Inputs   []string
	Outputs  []string
}

// AddNode creates a node with its pins and notifies observers.
func (g *Graph) AddNode(spec NodeSpec) *Node {
	return g.insert(newNode(gc.NewNodeGUID(), "", spec))
}

// AddKeyedNode creates a node whose identity is derived from the graph type
// and key, so it is the same every time the graph is built. It returns false
// and adds nothing when that identity is already in the graph.
func (g *Graph) AddKeyedNode(key string, spec NodeSpec) (*Node, bool) {
	id := gc.KeyedNodeGUID(g.graphType, key)
	if _, dup := g.nodes[id]; dup {
		return nil, false
	}
	return g.insert(newNode(id, key, spec)), true
}

func newNode(id gc.NodeGUID, key string, spec NodeSpec) *Node {
	n := &Node{
		guid:     id,
		key:      key,
		nodeType: spec.Type,
		title:    spec.Title,
		location: spec.Location,
	}
	for _, name := range spec.Inputs {
		n.AddPin(name, gc.PinInput)
	}
	for _, name := range spec.Outputs {
		n.AddPin(name, gc.PinOutput)
	}
	return n
}

func (g *Graph) insert(n *Node) *Node {
	n.graph = g
	g.nodes[n.guid] = n
	g.order = append(g.order, n.guid)
	g.added.notify(n)
	return n
}

// RemoveNode removes a node, drops every link to its pins and notifies
// observers. It reports whether the node existed.
func (g *Graph) RemoveNode(id gc.NodeGUID) bool {
	n, ok := g.nodes[id]
	if !ok {
		return false
	}
	for _, other := range g.nodes {
		if other == n {
			continue
		}
		for i := range other.pins {
			other.pins[i].Links = slices.DeleteFunc(other.pins[i].Links, func(r gc.PinReference) bool {
				return r.Node == id
			})
		}
	}
	delete(g.nodes, id)
	g.order = slices.DeleteFunc(g.order, func(x gc.NodeGUID) bool { return x == id })
	g.removed.notify(n)
	n.graph = nil
	return true
}

// pin resolves ref to the pin slot on its node.
func (g *Graph) pin(ref gc.PinReference) (*Node, int, bool) {
	n, ok := g.nodes[ref.Node]
	if !ok {
		return nil, 0, false
	}
	i := n.pinIndex(ref.Pin)
	return n, i, i >= 0
}

// CanConnect reports whether from (an output) can be linked to to (an input
// on another node) and the link does not already exist.
func (g *Graph) CanConnect(from, to gc.PinReference) bool {
	fn, fi, ok := g.pin(from)
	if !ok {
		return false
	}
	tn, ti, ok := g.pin(to)
	if !ok || fn == tn {
		return false
	}
	if fn.pins[fi].Direction != gc.PinOutput || tn.pins[ti].Direction != gc.PinInput {
		return false
	}
	return !slices.Contains(fn.pins[fi].Links, to)
}

// ConnectPins links an output pin to an input pin. It implements
// gc.PinConnector.
func (g *Graph) ConnectPins(from, to gc.PinReference) bool {
	if !g.CanConnect(from, to) {
		return false
	}
	fn, fi, _ := g.pin(from)
	tn, ti, _ := g.pin(to)
	fn.pins[fi].Links = append(fn.pins[fi].Links, to)
	tn.pins[ti].Links = append(tn.pins[ti].Links, from)
	return true
}

// DisconnectPins removes the link between two pins in both directions. It
// reports whether a link was removed.
func (g *Graph) DisconnectPins(a, b gc.PinReference) bool {
	an, ai, ok := g.pin(a)
	if !ok {
		return false
	}
	bn, bi, ok := g.pin(b)
	if !ok {
		return false
	}
	before := len(an.pins[ai].Links)
	an.pins[ai].Links = slices.DeleteFunc(an.pins[ai].Links, func(r gc.PinReference) bool { return r == b })
	bn.pins[bi].Links = slices.DeleteFunc(bn.pins[bi].Links, func(r gc.PinReference) bool { return r == a })
	return len(an.pins[ai].Links) != before
}

// Links returns every output-to-input link in node order.
func (g *Graph) Links() [][2]gc.PinReference {
	var out [][2]gc.PinReference
	for _, id := range g.order {
		n := g.nodes[id]
		for _, p := range n.pins {
			if p.Direction != gc.PinOutput {
				continue
			}
			for _, to := range p.Links {
				out = append(out, [2]gc.PinReference{{Node: id, Pin: p.GUID}, to})
			}
		}
	}
	return out
}

// Node is a graph node with a title, a location and pins.
type Node struct {
	graph    *Graph
	guid     gc.NodeGUID
	key      string
	nodeType string
	title    string
	location gc.Vec2
	pins     []gc.Pin

	moved observers[gc.GraphNode]
}

// GUID implements gc.GraphNode.
func (n *Node) GUID() gc.NodeGUID { return n.guid }

// NodeType implements gc.GraphNode.
func (n *Node) NodeType() string { return n.nodeType }

// Title is the display title.
func (n *Node) Title() string { return n.title }

// Location implements gc.GraphNode.
func (n *Node) Location() gc.Vec2 { return n.location }

// SetLocation implements gc.GraphNode. Observers are notified only when the
// location changes.
func (n *Node) SetLocation(loc gc.Vec2) {
	if loc == n.location {
		return
	}
	n.location = loc
	n.moved.notify(n)
}

// OnLocationChanged implements gc.GraphNode.
func (n *Node) OnLocationChanged(fn func(gc.GraphNode)) gc.Subscription { return n.moved.add(fn) }

// Pins implements gc.GraphNode. The returned slice is a copy.
func (n *Node) Pins() []gc.Pin {
	out := make([]gc.Pin, len(n.pins))
	for i, p := range n.pins {
		p.Links = slices.Clone(p.Links)
		out[i] = p
	}
	return out
}

// AddPin appends a pin and returns a reference to it. Canvases already
// displaying the node pick the pin up on their next pin rebuild.
func (n *Node) AddPin(name string, dir gc.PinDirection) gc.PinReference {
	id := gc.NewPinGUID()
	n.pins = append(n.pins, gc.Pin{GUID: id, Name: name, Direction: dir})
	return gc.PinReference{Node: n.guid, Pin: id}
}

// PinByName returns a reference to the first pin with the given name.
func (n *Node) PinByName(name string) (gc.PinReference, bool) {
	for _, p := range n.pins {
		if p.Name == name {
			return gc.PinReference{Node: n.guid, Pin: p.GUID}, true
		}
	}
	return gc.PinReference{}, false
}

func (n *Node) pinIndex(id gc.PinGUID) int {
	return slices.IndexFunc(n.pins, func(p gc.Pin) bool { return p.GUID == id })
}
