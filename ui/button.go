package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"
)

var (
	buttonFill    = color.RGBA{60, 60, 70, 200}
	buttonHover   = color.RGBA{85, 85, 100, 220}
	buttonDimmed  = color.RGBA{45, 45, 50, 120}
	labelEnabled  = color.RGBA{255, 255, 255, 255}
	labelDisabled = color.RGBA{130, 130, 130, 255}
)

// Button is a toolbar button. A disabled button still occupies its area,
// so clicks on it are swallowed instead of starting a pan.
type Button struct {
	Label   string
	X, Y    float32
	W, H    float32
	OnClick func()

	Disabled bool
	hovered  bool
}

func (b *Button) Contains(mx, my int) bool {
	x, y := float32(mx), float32(my)
	return x >= b.X && x <= b.X+b.W && y >= b.Y && y <= b.Y+b.H
}

// Press runs OnClick unless the button is disabled and reports whether it did.
func (b *Button) Press() bool {
	if b.Disabled || b.OnClick == nil {
		return false
	}
	b.OnClick()
	return true
}

func (b *Button) fill() color.Color {
	switch {
	case b.Disabled:
		return buttonDimmed
	case b.hovered:
		return buttonHover
	}
	return buttonFill
}

// Draw fills the button and centres its label.
func (b *Button) Draw(screen *ebiten.Image, face font.Face, drawText DrawTextFunc) {
	vector.DrawFilledRect(screen, b.X, b.Y, b.W, b.H, b.fill(), false)
	if face == nil || drawText == nil {
		return
	}

	labelColor := labelEnabled
	if b.Disabled {
		labelColor = labelDisabled
	}
	m := face.Metrics()
	tw := float32(font.MeasureString(face, b.Label).Ceil())
	th := float32((m.Ascent + m.Descent).Ceil())
	drawText(screen, face, b.Label, int(b.X+(b.W-tw)/2), int(b.Y+(b.H-th)/2), labelColor)
}
