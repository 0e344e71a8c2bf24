package graphmodel

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	gc "github.com/phanxgames/graphcanvas"
)

// ErrBadLink is returned when a graph file names a link that cannot be made.
var ErrBadLink = errors.New("bad link")

// File is the YAML form of a graph.
//
//	type: shader
//	nodes:
//	  - key: tex
//	    type: Texture
//	    x: 0
//	    y: 0
//	    outputs: [rgb]
//	  - key: out
//	    type: Output
//	    x: 300
//	    y: 0
//	    inputs: [color]
//	links:
//	  - from: tex.rgb
//	    to: out.color
type File struct {
	Type  string     `yaml:"type"`
	Nodes []FileNode `yaml:"nodes"`
	Links []FileLink `yaml:"links,omitempty"`
}

// FileNode describes one node. Key names the node within the file. The node
// identity is ID when set, otherwise it is derived from the graph type and
// Key, so saved layouts match every time the file is loaded.
type FileNode struct {
	Key     string   `yaml:"key"`
	ID      string   `yaml:"id,omitempty"`
	Type    string   `yaml:"type"`
	Title   string   `yaml:"title,omitempty"`
	X       float64  `yaml:"x"`
	Y       float64  `yaml:"y"`
	Inputs  []string `yaml:"inputs,omitempty"`
	Outputs []string `yaml:"outputs,omitempty"`
}

// FileLink connects "node.pin" to "node.pin", output to input.
type FileLink struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Load reads a YAML graph file.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML graph description.
func Parse(data []byte) (*Graph, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse graph: %w", err)
	}
	g, err := f.Build()
	if err != nil {
		return nil, fmt.Errorf("parse graph: %w", err)
	}
	return g, nil
}

// Build creates the graph described by f.
func (f File) Build() (*Graph, error) {
	g := New(f.Type)
	byKey := make(map[string]*Node, len(f.Nodes))
	for i, fn := range f.Nodes {
		if fn.Key == "" {
			return nil, fmt.Errorf("node %d: missing key", i)
		}
		if _, dup := byKey[fn.Key]; dup {
			return nil, fmt.Errorf("node %d: duplicate key %q", i, fn.Key)
		}
		id := gc.KeyedNodeGUID(f.Type, fn.Key)
		if fn.ID != "" {
			parsed, err := gc.ParseNodeGUID(fn.ID)
			if err != nil {
				return nil, fmt.Errorf("node %q: %w", fn.Key, err)
			}
			id = parsed
		}
		if _, dup := g.nodes[id]; dup {
			return nil, fmt.Errorf("node %q: duplicate id %s", fn.Key, id)
		}
		byKey[fn.Key] = g.insert(newNode(id, fn.Key, NodeSpec{
			Type:     fn.Type,
			Title:    fn.Title,
			Location: gc.Vec2{X: fn.X, Y: fn.Y},
			Inputs:   fn.Inputs,
			Outputs:  fn.Outputs,
		}))
	}

	resolve := func(s string) (gc.PinReference, error) {
		node, pin, ok := strings.Cut(s, ".")
		if !ok {
			return gc.PinReference{}, fmt.Errorf("%w: %q is not node.pin", ErrBadLink, s)
		}
		n, ok := byKey[node]
		if !ok {
			return gc.PinReference{}, fmt.Errorf("%w: unknown node %q", ErrBadLink, node)
		}
		ref, ok := n.PinByName(pin)
		if !ok {
			return gc.PinReference{}, fmt.Errorf("%w: node %q has no pin %q", ErrBadLink, node, pin)
		}
		return ref, nil
	}
	for _, l := range f.Links {
		from, err := resolve(l.From)
		if err != nil {
			return nil, err
		}
		to, err := resolve(l.To)
		if err != nil {
			return nil, err
		}
		if !g.ConnectPins(from, to) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrBadLink, l.From, l.To)
		}
	}
	return g, nil
}

// ToFile converts g back to its file form. Node ids are always written.
func (g *Graph) ToFile() File {
	f := File{Type: g.graphType}
	keys := make(map[gc.NodeGUID]string, len(g.order))
	pinNames := make(map[gc.PinReference]string)
	for _, id := range g.order {
		n := g.nodes[id]
		key := n.key
		if key == "" {
			key = id.String()
		}
		keys[id] = key
		fn := FileNode{
			Key: key, ID: id.String(), Type: n.nodeType, Title: n.title,
			X: n.location.X, Y: n.location.Y,
		}
		for _, p := range n.pins {
			pinNames[gc.PinReference{Node: id, Pin: p.GUID}] = p.Name
			if p.Direction == gc.PinInput {
				fn.Inputs = append(fn.Inputs, p.Name)
			} else {
				fn.Outputs = append(fn.Outputs, p.Name)
			}
		}
		f.Nodes = append(f.Nodes, fn)
	}
	for _, l := range g.Links() {
		f.Links = append(f.Links, FileLink{
			From: keys[l[0].Node] + "." + pinNames[l[0]],
			To:   keys[l[1].Node] + "." + pinNames[l[1]],
		})
	}
	return f
}

// Save writes g to path as YAML.
func (g *Graph) Save(path string) error {
	data, err := yaml.Marshal(g.ToFile())
	if err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write graph: %w", err)
	}
	return nil
}
