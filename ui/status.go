package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"
)

// StatusPanel shows the viewport readout in the bottom-left corner and the
// last error, if any, in the bottom-right.
type StatusPanel struct {
	Text  string
	Error string
}

func (p *StatusPanel) SetError(msg string) {
	p.Error = msg
}

func (p *StatusPanel) Clear() {
	p.Error = ""
}

func (p *StatusPanel) Draw(screen *ebiten.Image, getScreenSize func() (int, int), getFace func() font.Face, drawText DrawTextFunc) {
	if p == nil || getFace == nil || drawText == nil {
		return
	}
	face := getFace()
	if face == nil {
		return
	}
	w, h := getScreenSize()

	if p.Text != "" {
		vector.DrawFilledRect(screen, 10, float32(h-70), 260, 60, color.RGBA{40, 40, 40, 200}, false)
		drawText(screen, face, p.Text, 18, h-64, color.RGBA{230, 230, 230, 255})
	}

	if p.Error != "" {
		pw, ph := 300, 80
		x := w - pw - 10
		y := h - ph - 10
		vector.DrawFilledRect(screen, float32(x), float32(y), float32(pw), float32(ph), color.RGBA{40, 40, 40, 220}, false)
		drawText(screen, face, p.Error, x+8, y+8, color.RGBA{255, 200, 50, 255})
	}
}
