package main

import (
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/font"

	"infigrid/canvas"
	"infigrid/config"
	"infigrid/input"
	"infigrid/raster"
	"infigrid/ui"
)

// tileTexture is a raster tile uploaded to the GPU.
type tileTexture struct {
	img  *ebiten.Image
	tile *raster.Tile
}

// Game works in screen units. The back buffer is dpi times larger so
// lines stay crisp on HiDPI monitors; only drawing multiplies by dpi.
type Game struct {
	cfg     *config.Config
	palette config.Palette
	style   raster.Style
	logger  *log.Logger

	ctrl         *canvas.Controller[*tileTexture]
	screenWidth  int
	screenHeight int
	dpi          float64

	// Sub-systems
	input *input.InputSystem
	ui    *ui.UISystem
	face  font.Face

	// UI is drawn in screen units and scaled up onto the back buffer.
	overlay *ebiten.Image

	// events queued by toolbar buttons for the next Update
	pending []canvas.Event

	tileMode            bool
	debug               bool
	screenshotRequested bool
}

func NewGame(cfg *config.Config, logger *log.Logger, face font.Face) *Game {
	g := &Game{
		cfg:          cfg,
		palette:      cfg.Palette(),
		style:        styleFor(cfg),
		logger:       logger,
		screenWidth:  cfg.Window.Width,
		screenHeight: cfg.Window.Height,
		dpi:          1,
		face:         face,
		tileMode:     cfg.Window.Background == config.ModeTile,
		debug:        cfg.Window.Debug,
	}

	bg := canvas.NewBackground(g.generateTile, func(t *tileTexture) { t.img.Deallocate() })
	g.ctrl = canvas.NewController(cfg.Params(), float64(g.screenWidth), float64(g.screenHeight), bg)

	g.input = input.NewInputSystem(g, cfg.Input.NotchSteps)
	g.ui = ui.NewUISystem(
		func() font.Face { return g.face },
		g.ScreenSize,
		ui.Actions{
			ZoomIn:  func() { g.pending = append(g.pending, g.input.CenterZoom(1, g.screenWidth, g.screenHeight)) },
			ZoomOut: func() { g.pending = append(g.pending, g.input.CenterZoom(-1, g.screenWidth, g.screenHeight)) },
			Reset:   func() { g.pending = append(g.pending, canvas.Event{Kind: canvas.EventReset}) },
		},
		DrawTextLines,
	)
	g.ui.SetZoomLimits(g.ctrl.Frame().Scale, cfg.Grid.MinScale, cfg.Grid.MaxScale)

	if err := g.ctrl.SyncBackground(); err != nil {
		logger.Error("initial background tile failed", "err", err)
		g.ui.Status.SetError(err.Error())
	}
	return g
}

func (g *Game) generateTile(f canvas.Frame) (*tileTexture, error) {
	start := time.Now()
	style := g.style
	style.Resolution = g.dpi
	t, err := raster.GenerateTile(f, style)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("background tile regenerated", "scale", f.Scale, "pixels", t.Pixels, "took", time.Since(start))
	return &tileTexture{img: ebiten.NewImageFromImage(t.Image), tile: t}, nil
}

// --- input.Host ---

func (g *Game) IsMouseOver(mx, my int) bool {
	return g.ui.IsMouseOver(mx, my)
}

func (g *Game) ScreenSize() (int, int) {
	return g.screenWidth, g.screenHeight
}

func (g *Game) DeviceScale() float64 {
	return g.dpi
}

func (g *Game) Update() error {
	// Delegate to sub-systems
	events, cmds := g.input.Update()
	g.ui.Update(g.input.Cursor())

	events = append(g.pending, events...)
	g.pending = nil
	g.apply(events)

	if cmds.ToggleBackground {
		g.tileMode = !g.tileMode
		g.logger.Info("background mode", "tile", g.tileMode)
	}
	if cmds.ToggleDebug {
		g.debug = !g.debug
	}
	if cmds.Screenshot {
		g.screenshotRequested = true
	}

	if g.input.IsPanning() {
		ebiten.SetCursorShape(ebiten.CursorShapeMove)
	} else {
		ebiten.SetCursorShape(ebiten.CursorShapeDefault)
	}

	f := g.ctrl.Frame()
	g.ui.SetZoomLimits(f.Scale, g.cfg.Grid.MinScale, g.cfg.Grid.MaxScale)
	world := g.ctrl.WorldAt(canvas.Point{})
	g.ui.Status.Text = fmt.Sprintf("Scale: %.2f\nWorld @ top-left: (%.1f, %.1f)\nBackground: %s",
		f.Scale, world.X, world.Y, g.ctrl.Background().State())
	return nil
}

func (g *Game) apply(events []canvas.Event) {
	for _, e := range events {
		f, err := g.ctrl.Handle(e)
		if err != nil {
			g.logger.Error("background sync failed", "event", e.Kind, "err", err)
			g.ui.Status.SetError(err.Error())
			continue
		}
		switch e.Kind {
		case canvas.EventWheel, canvas.EventZoomTo, canvas.EventReset:
			g.logger.Debug("zoom", "event", e.Kind, "scale", f.Scale, "anchor", f.ZoomPoint, "remainder", f.Remainder)
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	f := g.ctrl.Frame()
	screen.Fill(g.palette.Background)

	// a tile that failed to regenerate no longer lines up, lines always do
	if g.tileMode && g.ctrl.Background().State() == canvas.Stable {
		g.drawTiledBackground(screen)
	} else {
		g.drawGridLines(screen, f)
	}

	g.overlay.Clear()
	if g.debug {
		g.drawDebugOverlay(screen, g.overlay, f)
	}
	g.ui.Draw(g.overlay)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(g.dpi, g.dpi)
	screen.DrawImage(g.overlay, op)

	// --- Save Screenshot ---
	if g.screenshotRequested {
		g.screenshotRequested = false
		name := fmt.Sprintf("infigrid-%s.png", time.Now().Format("20060102-150405"))
		style := g.style
		style.Debug = g.debug
		if err := raster.SavePNG(name, f, style); err != nil {
			g.logger.Error("screenshot failed", "err", err)
		} else {
			g.logger.Info("screenshot saved", "path", name)
		}
	}
}

// Layout keeps the viewport in screen units and returns the device-pixel
// size of the back buffer.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	dpi := ebiten.Monitor().DeviceScaleFactor()
	if dpi <= 0 {
		dpi = 1
	}
	if dpi != g.dpi {
		g.logger.Debug("device scale changed", "from", g.dpi, "to", dpi)
		g.dpi = dpi
		g.ctrl.Background().Invalidate()
		if err := g.ctrl.SyncBackground(); err != nil {
			g.logger.Error("background sync failed", "err", err)
			g.ui.Status.SetError(err.Error())
		}
	}
	if outsideWidth != g.screenWidth || outsideHeight != g.screenHeight {
		g.screenWidth = outsideWidth
		g.screenHeight = outsideHeight
		g.apply([]canvas.Event{{Kind: canvas.EventResize, Width: float64(outsideWidth), Height: float64(outsideHeight)}})
	}
	if g.overlay == nil || g.overlay.Bounds().Dx() != outsideWidth || g.overlay.Bounds().Dy() != outsideHeight {
		if g.overlay != nil {
			g.overlay.Deallocate()
		}
		g.overlay = ebiten.NewImage(max(outsideWidth, 1), max(outsideHeight, 1))
	}
	return int(math.Ceil(float64(outsideWidth) * dpi)), int(math.Ceil(float64(outsideHeight) * dpi))
}

// runWindow opens the window and blocks until it is closed.
func runWindow(cfg *config.Config, logger *log.Logger, fontPath string) error {
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	g := NewGame(cfg, logger, LoadUIFont(fontPath, logger))
	logger.Info("window opened", "width", cfg.Window.Width, "height", cfg.Window.Height, "background", cfg.Window.Background)
	return ebiten.RunGame(g)
}
