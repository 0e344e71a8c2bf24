package graphcanvas

import (
	"fmt"
	"image/color"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

var defaultLogger atomic.Pointer[slog.Logger]

// SetLogger replaces the package logger used by canvases and linkers that
// have no logger of their own. A nil logger restores the default.
func SetLogger(logger *slog.Logger) {
	defaultLogger.Store(logger)
}

func packageLogger() *slog.Logger {
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	return slog.Default().With("component", "graphcanvas")
}

// FrameStats holds per-tick metrics. Only populated when the canvas is in
// debug mode.
type FrameStats struct {
	Displayed   int
	Culled      int
	Connections int
	LayoutPass  bool
	UpdateTime  time.Duration
	DrawTime    time.Duration
}

// debugLog writes frame stats at debug level.
func (c *Canvas) debugLog(stats FrameStats) {
	if !c.debug {
		return
	}
	c.log().Debug("frame",
		"displayed", stats.Displayed,
		"culled", stats.Culled,
		"connections", stats.Connections,
		"layout", stats.LayoutPass,
		"update", stats.UpdateTime,
		"draw", stats.DrawTime,
	)
}

// overlayBackground is the translucent panel behind the debug text.
var overlayBackground = color.RGBA{0, 0, 0, 128}

// drawDebugOverlay prints frame stats and view state in the top-left corner.
func (c *Canvas) drawDebugOverlay(dst *ebiten.Image) {
	if !c.debug {
		return
	}
	v := c.view.Current()
	s := c.stats
	text := fmt.Sprintf("FPS: %.1f  TPS: %.1f\nnodes: %d  culled: %d  links: %d\nview: %.1f, %.1f  zoom: %.2f\nselected: %d",
		ebiten.ActualFPS(), ebiten.ActualTPS(),
		s.Displayed, s.Culled, s.Connections,
		v.X, v.Y, v.Zoom,
		len(c.selected))

	var op ebiten.DrawImageOptions
	op.GeoM.Scale(220, 64)
	op.GeoM.Translate(c.origin.X, c.origin.Y)
	op.ColorScale.ScaleWithColor(overlayBackground)
	dst.DrawImage(whiteSubImage, &op)
	ebitenutil.DebugPrintAt(dst, text, int(c.origin.X)+4, int(c.origin.Y)+2)
}

// debugCheckLocation warns when a node reports a non-finite location.
func (c *Canvas) debugCheckLocation(id NodeGUID, loc Vec2) {
	if c.debug && loc.HasNaN() {
		c.log().Warn("node location is NaN, using origin", "node", id.String())
	}
}
