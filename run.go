package graphcanvas

import "github.com/hajimehoshi/ebiten/v2"

// RunConfig holds window settings for Run.
type RunConfig struct {
	Title  string
	Width  int
	Height int
	// Background fills the screen before the canvas draws.
	Background Color
	// ShowFPS turns on debug mode, which draws the stats overlay.
	ShowFPS bool
	// Update, when set, runs once per tick before the canvas updates.
	// A non-nil error stops the game.
	Update func() error
}

// DefaultBackground is the canvas clear color used by Run.
var DefaultBackground = Color{R: 0.118, G: 0.118, B: 0.157, A: 1}

type gameShell struct {
	canvas *Canvas
	cfg    RunConfig
}

func (g *gameShell) Update() error {
	if g.cfg.Update != nil {
		if err := g.cfg.Update(); err != nil {
			return err
		}
	}
	g.canvas.Update(1 / float64(ebiten.TPS()))
	return nil
}

func (g *gameShell) Draw(screen *ebiten.Image) {
	screen.Fill(g.cfg.Background.toRGBA())
	g.canvas.Draw(screen)
}

func (g *gameShell) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.canvas.SetRect(Rect{Width: float64(outsideWidth), Height: float64(outsideHeight)})
	return outsideWidth, outsideHeight
}

// Run opens a window showing c and blocks until the window closes or
// cfg.Update returns an error. The canvas fills the whole window.
func Run(c *Canvas, cfg RunConfig) error {
	if cfg.Width <= 0 {
		cfg.Width = 1280
	}
	if cfg.Height <= 0 {
		cfg.Height = 720
	}
	if cfg.Background == (Color{}) {
		cfg.Background = DefaultBackground
	}
	if cfg.ShowFPS {
		c.SetDebugMode(true)
	}
	c.SetRect(Rect{Width: float64(cfg.Width), Height: float64(cfg.Height)})

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(&gameShell{canvas: c, cfg: cfg})
}
