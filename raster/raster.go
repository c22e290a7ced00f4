// Package raster renders grid frames and background tiles in software
// with gogpu/gg. The window frontend uploads tiles as textures; the
// snapshot command writes whole frames as PNG.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/gogpu/gg"

	"infigrid/canvas"
)

// Style controls colors and stroke width.
type Style struct {
	Background color.Color
	Line       color.Color
	Marker     color.Color
	LineWidth  float64

	// Resolution is device pixels per screen unit for tiles; zero means 1.
	Resolution float64

	// Debug draws the zoom point, its remainder legs and the world origin cell.
	Debug bool
}

// DefaultStyle is white paper with light grey lines.
func DefaultStyle() Style {
	return Style{
		Background: color.White,
		Line:       color.RGBA{192, 192, 192, 255},
		Marker:     color.RGBA{255, 0, 0, 255},
		LineWidth:  1,
		Resolution: 1,
	}
}

// Tile is one rasterised background cell with its grid lines through the
// centre. Size is the exact on-screen size in units; Image is Pixels wide
// and must be scaled by Size*Resolution/Pixels when drawn.
type Tile struct {
	Image  image.Image
	Size   float64
	Pixels int
}

// GenerateTile rasterises a background tile for the frame's scale.
func GenerateTile(f canvas.Frame, s Style) (*Tile, error) {
	size := f.ScaledCellSize()
	res := s.Resolution
	if res <= 0 {
		res = 1
	}
	// scale steps accumulate float error; 11.000000000000002 is an 11px tile
	px := int(math.Ceil(size*res - 1e-9))
	if px < 1 {
		return nil, fmt.Errorf("tile size %v too small", size)
	}

	dc := gg.NewContext(px, px)
	defer dc.Close()

	dc.ClearWithColor(gg.FromColor(s.Background))
	dc.SetColor(s.Line)
	dc.SetLineWidth(s.LineWidth * res)
	mid := float64(px) / 2
	dc.DrawLine(mid, 0, mid, float64(px))
	dc.DrawLine(0, mid, float64(px), mid)
	if err := dc.Stroke(); err != nil {
		return nil, fmt.Errorf("stroke tile: %w", err)
	}
	if err := flush(dc); err != nil {
		return nil, err
	}

	return &Tile{Image: dc.Image(), Size: size, Pixels: px}, nil
}

// EncodePNG renders f and writes it to w as PNG.
func EncodePNG(w io.Writer, f canvas.Frame, s Style) error {
	dc, err := draw(f, s)
	if err != nil {
		return err
	}
	defer dc.Close()
	if err := flush(dc); err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

// SavePNG renders f into a PNG file.
func SavePNG(path string, f canvas.Frame, s Style) error {
	dc, err := draw(f, s)
	if err != nil {
		return err
	}
	defer dc.Close()
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// flush completes queued accelerator work so Image reads final pixels.
func flush(dc *gg.Context) error {
	if err := dc.FlushGPU(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

func draw(f canvas.Frame, s Style) (*gg.Context, error) {
	w, h := int(math.Round(f.Width)), int(math.Round(f.Height))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid frame size %vx%v", f.Width, f.Height)
	}

	dc := gg.NewContext(w, h)
	dc.ClearWithColor(gg.FromColor(s.Background))

	dc.SetColor(s.Line)
	dc.SetLineWidth(s.LineWidth)
	n := 0
	for l := range f.Lines() {
		dc.DrawLine(l.X0, l.Y0, l.X1, l.Y1)
		n++
	}
	if n > 0 {
		if err := dc.Stroke(); err != nil {
			dc.Close()
			return nil, fmt.Errorf("stroke grid: %w", err)
		}
	}

	if s.Debug {
		if err := drawDebug(dc, f, s); err != nil {
			dc.Close()
			return nil, err
		}
	}
	return dc, nil
}

func drawDebug(dc *gg.Context, f canvas.Frame, s Style) error {
	zp := f.ZoomPoint
	b := f.Bounds

	dc.SetColor(color.RGBA{0, 0, 255, 255})
	dc.DrawLine(zp.X, zp.Y, b.Left, zp.Y)
	dc.DrawLine(zp.X, zp.Y, zp.X, b.Top)
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("stroke debug legs: %w", err)
	}

	dc.SetColor(s.Marker)
	dc.DrawCircle(zp.X, zp.Y, 2)
	cell := f.ScaledCellSize()
	dc.DrawRectangle(-f.WorldOffset.X, -f.WorldOffset.Y, cell, cell)
	if err := dc.Fill(); err != nil {
		return fmt.Errorf("fill debug markers: %w", err)
	}
	return nil
}
