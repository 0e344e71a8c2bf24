package graphcanvas

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// StrokeStyle controls how connection curves are drawn.
type StrokeStyle struct {
	Color     Color
	Thickness float64
	// Segments is the number of straight pieces a curve is split into.
	// Zero uses 24.
	Segments int
}

const defaultCurveSegments = 24

// strokeBuffers holds reusable vertex, index, and point buffers. Grown to
// the high-water mark and reused across frames.
type strokeBuffers struct {
	points   []Vec2
	vertices []ebiten.Vertex
	indices  []uint16
}

// cubicBezierPoints samples the cubic curve a, c1, c2, b into segs+1 points.
func cubicBezierPoints(buf []Vec2, a, c1, c2, b Vec2, segs int) []Vec2 {
	if segs <= 0 {
		segs = defaultCurveSegments
	}
	n := segs + 1
	if cap(buf) < n {
		buf = make([]Vec2, n)
	}
	buf = buf[:n]
	for i := 0; i < n; i++ {
		t := float64(i) / float64(segs)
		u := 1 - t
		u2 := u * u
		t2 := t * t
		buf[i] = Vec2{
			X: u2*u*a.X + 3*u2*t*c1.X + 3*u*t2*c2.X + t2*t*b.X,
			Y: u2*u*a.Y + 3*u2*t*c1.Y + 3*u*t2*c2.Y + t2*t*b.Y,
		}
	}
	return buf
}

// connectionControls returns bezier control points that leave start and
// enter end horizontally, the usual look for left-to-right node graphs.
func connectionControls(start, end Vec2, zoom float64) (Vec2, Vec2) {
	tangent := math.Max(math.Abs(end.X-start.X)*0.5, 40*zoom)
	return Vec2{start.X + tangent, start.Y}, Vec2{end.X - tangent, end.Y}
}

// buildStrip turns a polyline into a triangle strip of the given width.
func (sb *strokeBuffers) buildStrip(points []Vec2, width float64, col Color) {
	n := len(points)
	if n < 2 {
		sb.vertices = sb.vertices[:0]
		sb.indices = sb.indices[:0]
		return
	}
	numVerts := n * 2
	numInds := (n - 1) * 6
	if cap(sb.vertices) < numVerts {
		sb.vertices = make([]ebiten.Vertex, numVerts)
	}
	sb.vertices = sb.vertices[:numVerts]
	if cap(sb.indices) < numInds {
		sb.indices = make([]uint16, numInds)
	}
	sb.indices = sb.indices[:numInds]

	halfW := width / 2
	r, g, b, a := float32(col.R*col.A), float32(col.G*col.A), float32(col.B*col.A), float32(col.A)

	for i := 0; i < n; i++ {
		var nx, ny float64
		switch i {
		case 0:
			nx, ny = perpendicular(points[0], points[1])
		case n - 1:
			nx, ny = perpendicular(points[n-2], points[n-1])
		default:
			nx0, ny0 := perpendicular(points[i-1], points[i])
			nx1, ny1 := perpendicular(points[i], points[i+1])
			nx, ny = nx0+nx1, ny0+ny1
			if ln := math.Sqrt(nx*nx + ny*ny); ln > 1e-10 {
				nx /= ln
				ny /= ln
			}
		}
		vi := i * 2
		sb.vertices[vi] = ebiten.Vertex{
			DstX: float32(points[i].X + nx*halfW), DstY: float32(points[i].Y + ny*halfW),
			SrcX: 1, SrcY: 1,
			ColorR: r, ColorG: g, ColorB: b, ColorA: a,
		}
		sb.vertices[vi+1] = ebiten.Vertex{
			DstX: float32(points[i].X - nx*halfW), DstY: float32(points[i].Y - ny*halfW),
			SrcX: 1, SrcY: 1,
			ColorR: r, ColorG: g, ColorB: b, ColorA: a,
		}
	}

	for i := 0; i < n-1; i++ {
		ii := i * 6
		v := uint16(i * 2)
		sb.indices[ii+0] = v
		sb.indices[ii+1] = v + 1
		sb.indices[ii+2] = v + 2
		sb.indices[ii+3] = v + 1
		sb.indices[ii+4] = v + 3
		sb.indices[ii+5] = v + 2
	}
}

// perpendicular returns the unit left-perpendicular of the segment from a to b.
func perpendicular(a, b Vec2) (float64, float64) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	ln := math.Sqrt(dx*dx + dy*dy)
	if ln < 1e-10 {
		return 0, -1
	}
	return -dy / ln, dx / ln
}

func (sb *strokeBuffers) draw(dst *ebiten.Image) {
	if dst == nil || len(sb.indices) == 0 {
		return
	}
	op := &ebiten.DrawTrianglesOptions{ColorScaleMode: ebiten.ColorScaleModePremultipliedAlpha}
	dst.DrawTriangles(sb.vertices, sb.indices, whiteSubImage, op)
}

// DrawPolyline strokes points onto dst.
func DrawPolyline(dst *ebiten.Image, points []Vec2, style StrokeStyle) {
	var sb strokeBuffers
	sb.buildStrip(points, style.Thickness, style.Color)
	sb.draw(dst)
}

// DrawCubicBezier strokes the cubic curve a, c1, c2, b onto dst.
func DrawCubicBezier(dst *ebiten.Image, a, c1, c2, b Vec2, style StrokeStyle) {
	var sb strokeBuffers
	sb.points = cubicBezierPoints(sb.points, a, c1, c2, b, style.Segments)
	sb.buildStrip(sb.points, style.Thickness, style.Color)
	sb.draw(dst)
}
