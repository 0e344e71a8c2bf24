package graphcanvas

// DefaultGuardBand is the fraction of the canvas size the cull rectangle
// extends past each edge.
const DefaultGuardBand = 0.25

// guardBandRect returns the canvas-local screen rectangle outside of which
// nodes are culled. A guard band of 0 yields the canvas rectangle itself.
func guardBandRect(size Vec2, guardBand float64) Rect {
	minClip := size.Scale(-guardBand)
	maxClip := size.Scale(1 + guardBand)
	return Rect{X: minClip.X, Y: minClip.Y, Width: maxClip.X - minClip.X, Height: maxClip.Y - minClip.Y}
}

// nodeScreenBounds returns the screen-space box of a node anchored at the
// graph-space location loc with the given graph-space size.
func nodeScreenBounds(view *ViewTransform, loc, size Vec2) Rect {
	topLeft := view.ToScreen(loc)
	bottomRight := view.ToScreen(loc.Add(size))
	return Rect{X: topLeft.X, Y: topLeft.Y, Width: bottomRight.X - topLeft.X, Height: bottomRight.Y - topLeft.Y}
}

// cullTest reports whether a node at loc with size lies entirely outside the
// guard-banded canvas on either axis.
func cullTest(view *ViewTransform, loc, size Vec2, guardBand float64) bool {
	clip := guardBandRect(view.Size, guardBand)
	b := nodeScreenBounds(view, loc, size)
	return b.X+b.Width < clip.X ||
		b.Y+b.Height < clip.Y ||
		b.X > clip.X+clip.Width ||
		b.Y > clip.Y+clip.Height
}

// IsNodeCulled reports whether n is off-screen. Invalid nodes are always
// culled.
func (c *Canvas) IsNodeCulled(n CanvasNode) bool {
	if n == nil || !n.IsValid() || n.GraphNode() == nil {
		return true
	}
	return cullTest(c.view, c.displayLocation(n.GraphNode()), n.DesiredSize(), c.GuardBand)
}

// VisibleBounds returns the graph-space rectangle currently visible in the
// canvas.
func (c *Canvas) VisibleBounds() Rect {
	tl := c.view.ToGraph(Vec2{})
	br := c.view.ToGraph(c.view.Size)
	return Rect{X: tl.X, Y: tl.Y, Width: br.X - tl.X, Height: br.Y - tl.Y}
}
