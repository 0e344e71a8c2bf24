package graphcanvas

import (
	"fmt"

	"github.com/google/uuid"
)

// NodeGUID is the stable identity of a graph node.
type NodeGUID uuid.UUID

// PinGUID is the stable identity of a pin within a graph.
type PinGUID uuid.UUID

// NewNodeGUID returns a random node identity.
func NewNodeGUID() NodeGUID { return NodeGUID(uuid.New()) }

// nodeKeyNamespace scopes identities made by KeyedNodeGUID.
var nodeKeyNamespace = uuid.MustParse("5f0c7c1e-7a43-4c2b-9d55-2f8e4b6a1d90")

// KeyedNodeGUID derives a node identity from a graph type and a node key.
// The same pair always yields the same identity.
func KeyedNodeGUID(graphType, key string) NodeGUID {
	return NodeGUID(uuid.NewSHA1(nodeKeyNamespace, []byte(graphType+"/"+key)))
}

// NewPinGUID returns a random pin identity.
func NewPinGUID() PinGUID { return PinGUID(uuid.New()) }

// ParseNodeGUID parses the canonical string form of a node identity.
func ParseNodeGUID(s string) (NodeGUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return NodeGUID{}, fmt.Errorf("parse node guid: %w", err)
	}
	return NodeGUID(u), nil
}

// ParsePinGUID parses the canonical string form of a pin identity.
func ParsePinGUID(s string) (PinGUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return PinGUID{}, fmt.Errorf("parse pin guid: %w", err)
	}
	return PinGUID(u), nil
}

// IsValid reports whether g is not the zero identity.
func (g NodeGUID) IsValid() bool { return uuid.UUID(g) != uuid.Nil }

func (g NodeGUID) String() string { return uuid.UUID(g).String() }

// IsValid reports whether g is not the zero identity.
func (g PinGUID) IsValid() bool { return uuid.UUID(g) != uuid.Nil }

func (g PinGUID) String() string { return uuid.UUID(g).String() }

// PinReference names a pin on a node.
type PinReference struct {
	Node NodeGUID
	Pin  PinGUID
}

// IsValid reports whether both halves of the reference are set.
func (r PinReference) IsValid() bool { return r.Node.IsValid() && r.Pin.IsValid() }

// PinDirection is the flow direction of a pin.
type PinDirection uint8

const (
	PinInput PinDirection = iota
	PinOutput
)

func (d PinDirection) String() string {
	if d == PinOutput {
		return "output"
	}
	return "input"
}

// Pin describes one pin of a graph node and the pins it links to.
type Pin struct {
	GUID      PinGUID
	Name      string
	Direction PinDirection
	Links     []PinReference
}

// Subscription cancels an observer registration.
type Subscription interface {
	Unsubscribe()
}

type subscriptionFunc func()

func (f subscriptionFunc) Unsubscribe() {
	if f != nil {
		f()
	}
}

// Graph is the graph model the canvas displays. Notifications are delivered
// synchronously on the caller's goroutine.
type Graph interface {
	GraphType() string
	Node(id NodeGUID) (GraphNode, bool)
	Nodes() []GraphNode
	// Schema may return nil.
	Schema() Schema
	OnNodeAdded(fn func(GraphNode)) Subscription
	OnNodeRemoved(fn func(GraphNode)) Subscription
}

// GraphNode is one node of the graph model.
type GraphNode interface {
	GUID() NodeGUID
	NodeType() string
	Location() Vec2
	SetLocation(loc Vec2)
	Pins() []Pin
	OnLocationChanged(fn func(GraphNode)) Subscription
}

// Schema exposes graph-wide rendering policy.
type Schema interface {
	// ConnectionVisualizer returns nil when the graph has no visualizer.
	ConnectionVisualizer() ConnectionVisualizer
}

// NodeVisualizerFactory builds the visual node for a graph node.
type NodeVisualizerFactory func(node GraphNode, canvas *Canvas) CanvasNode

// VisualizerRegistry resolves a visual node factory for a node type.
type VisualizerRegistry interface {
	ResolveVisualizer(graphType, nodeType string) (NodeVisualizerFactory, bool)
}

type visualizerKey struct {
	graphType, nodeType string
}

// VisualizerMap is a VisualizerRegistry backed by a map. An empty graph or
// node type registers a wildcard; exact matches win over wildcards.
type VisualizerMap struct {
	factories map[visualizerKey]NodeVisualizerFactory
}

// NewVisualizerMap creates an empty registry.
func NewVisualizerMap() *VisualizerMap {
	return &VisualizerMap{factories: make(map[visualizerKey]NodeVisualizerFactory)}
}

// Register binds f to (graphType, nodeType).
func (m *VisualizerMap) Register(graphType, nodeType string, f NodeVisualizerFactory) {
	m.factories[visualizerKey{graphType, nodeType}] = f
}

// ResolveVisualizer implements VisualizerRegistry.
func (m *VisualizerMap) ResolveVisualizer(graphType, nodeType string) (NodeVisualizerFactory, bool) {
	for _, k := range [...]visualizerKey{
		{graphType, nodeType},
		{"", nodeType},
		{graphType, ""},
		{"", ""},
	} {
		if f, ok := m.factories[k]; ok && f != nil {
			return f, true
		}
	}
	return nil, false
}

// LocationModifier converts between the location stored on a graph node and
// the proxy location the canvas displays, e.g. for snapping or grid layouts.
type LocationModifier interface {
	ProxyToLocation(proxy Vec2) Vec2
	LocationToProxy(location Vec2) Vec2
}

// LocationModifierStack applies modifiers in order for LocationToProxy and
// in reverse for ProxyToLocation.
type LocationModifierStack []LocationModifier

// LocationToProxy maps a stored location to its displayed proxy.
func (s LocationModifierStack) LocationToProxy(loc Vec2) Vec2 {
	for _, m := range s {
		loc = m.LocationToProxy(loc)
	}
	return loc
}

// ProxyToLocation maps a displayed proxy back to a stored location.
func (s LocationModifierStack) ProxyToLocation(proxy Vec2) Vec2 {
	for i := len(s) - 1; i >= 0; i-- {
		proxy = s[i].ProxyToLocation(proxy)
	}
	return proxy
}

// GridSnap is a LocationModifier that snaps proxies to a square grid.
type GridSnap struct {
	Size float64
}

// LocationToProxy returns loc unchanged.
func (g GridSnap) LocationToProxy(loc Vec2) Vec2 { return loc }

// ProxyToLocation rounds proxy to the nearest grid point.
func (g GridSnap) ProxyToLocation(proxy Vec2) Vec2 {
	if g.Size <= 0 {
		return proxy
	}
	return Vec2{snap(proxy.X, g.Size), snap(proxy.Y, g.Size)}
}
