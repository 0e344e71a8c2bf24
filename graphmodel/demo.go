package graphmodel

import gc "github.com/phanxgames/graphcanvas"

// Demo returns a small shader-style graph used when no file is given. Its
// node identities are the same on every call.
func Demo() *Graph {
	g := New("shader")
	uv, _ := g.AddKeyedNode("uv", NodeSpec{Type: "TexCoord", Title: "UV", Location: gc.Vec2{X: 0, Y: 40}, Outputs: []string{"uv"}})
	tex, _ := g.AddKeyedNode("tex", NodeSpec{Type: "Texture", Title: "Albedo", Location: gc.Vec2{X: 220, Y: 0}, Inputs: []string{"uv"}, Outputs: []string{"rgb", "a"}})
	tint, _ := g.AddKeyedNode("tint", NodeSpec{Type: "Color", Title: "Tint", Location: gc.Vec2{X: 220, Y: 160}, Outputs: []string{"rgb"}})
	mul, _ := g.AddKeyedNode("mul", NodeSpec{Type: "Multiply", Location: gc.Vec2{X: 440, Y: 60}, Inputs: []string{"a", "b"}, Outputs: []string{"out"}})
	out, _ := g.AddKeyedNode("out", NodeSpec{Type: "Output", Title: "Surface", Location: gc.Vec2{X: 660, Y: 40}, Inputs: []string{"color", "alpha"}})

	link := func(from *Node, fromPin string, to *Node, toPin string) {
		a, _ := from.PinByName(fromPin)
		b, _ := to.PinByName(toPin)
		g.ConnectPins(a, b)
	}
	link(uv, "uv", tex, "uv")
	link(tex, "rgb", mul, "a")
	link(tint, "rgb", mul, "b")
	link(mul, "out", out, "color")
	link(tex, "a", out, "alpha")
	return g
}
