package main

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"infigrid/canvas"
)

// drawGridLines strokes the frame's visible lines in device pixels.
func (g *Game) drawGridLines(screen *ebiten.Image, f canvas.Frame) {
	d := float32(g.dpi)
	for l := range f.Lines() {
		vector.StrokeLine(screen, float32(l.X0)*d, float32(l.Y0)*d, float32(l.X1)*d, float32(l.Y1)*d, d, g.palette.Line, false)
	}
}

// drawTiledBackground repeats the current tile from its phase origin.
func (g *Game) drawTiledBackground(screen *ebiten.Image) {
	bg := g.ctrl.Background()
	tex, ok := bg.Tile()
	if !ok {
		return
	}
	origin, size := bg.TileOrigin()
	if size <= 0 {
		return
	}

	k := size * g.dpi / float64(tex.tile.Pixels)
	w, h := float64(g.screenWidth), float64(g.screenHeight)
	op := &ebiten.DrawImageOptions{}
	for y := origin.Y; y < h; y += size {
		for x := origin.X; x < w; x += size {
			op.GeoM.Reset()
			op.GeoM.Scale(k, k)
			op.GeoM.Translate(x*g.dpi, y*g.dpi)
			screen.DrawImage(tex.img, op)
		}
	}
}

// drawDebugOverlay marks the zoom point, its legs to the cell borders and
// the world origin cell on screen, and prints the readout on overlay.
func (g *Game) drawDebugOverlay(screen, overlay *ebiten.Image, f canvas.Frame) {
	d := float32(g.dpi)
	zp := f.ZoomPoint
	b := f.Bounds
	blue := color.RGBA{0, 0, 255, 255}

	zx, zy := float32(zp.X)*d, float32(zp.Y)*d
	vector.StrokeLine(screen, zx, zy, float32(b.Left)*d, zy, d, blue, false)
	vector.StrokeLine(screen, zx, zy, zx, float32(b.Top)*d, d, blue, false)
	vector.DrawFilledCircle(screen, zx, zy, 2*d, g.palette.Marker, false)

	origin := g.ctrl.ScreenAt(canvas.Point{})
	cell := float32(f.ScaledCellSize()) * d
	vector.DrawFilledRect(screen, float32(origin.X)*d, float32(origin.Y)*d, cell, cell, g.palette.Marker, false)

	ebitenutil.DebugPrintAt(overlay, fmt.Sprintf("TPS: %0.1f  remainder: (%.2f, %.2f)  tiles: %d  dpi: %.1f",
		ebiten.ActualTPS(), f.Remainder.X, f.Remainder.Y, g.ctrl.Background().Replacements(), g.dpi), 10, 10)
}
