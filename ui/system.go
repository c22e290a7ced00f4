package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.org/x/image/font"
)

// DrawTextFunc draws s with its top-left corner at (x, y).
type DrawTextFunc func(screen *ebiten.Image, face font.Face, s string, x, y int, clr color.Color)

type UISystem struct {
	buttons       []*Button
	getFontFace   func() font.Face
	getScreenSize func() (int, int)
	drawText      DrawTextFunc
	Status        *StatusPanel
}

// Actions wires the toolbar buttons.
type Actions struct {
	ZoomIn  func()
	ZoomOut func()
	Reset   func()
}

func NewUISystem(getFontFace func() font.Face, getScreenSize func() (int, int), actions Actions, drawText DrawTextFunc) *UISystem {
	ui := &UISystem{
		getFontFace:   getFontFace,
		getScreenSize: getScreenSize,
		drawText:      drawText,
		Status:        &StatusPanel{},
	}
	ui.buttons = []*Button{
		{Label: "+", W: 30, H: 30, OnClick: actions.ZoomIn},
		{Label: "-", W: 30, H: 30, OnClick: actions.ZoomOut},
		{Label: "R", W: 30, H: 30, OnClick: actions.Reset},
	}
	ui.updateButtonPositions()
	return ui
}

// updateButtonPositions lays the buttons out right to left from the top-right corner.
func (ui *UISystem) updateButtonPositions() {
	w, _ := ui.getScreenSize()
	x := float32(w) - 10
	for _, b := range ui.buttons {
		x -= b.W
		b.X = x
		b.Y = 10
		x -= 10
	}
}

func (ui *UISystem) IsMouseOver(mx, my int) bool {
	ui.updateButtonPositions()
	for _, b := range ui.buttons {
		if b.Contains(mx, my) {
			return true
		}
	}
	return false
}

// HandleClick presses the button under (mx, my). It reports whether the
// click landed on the toolbar, even when that button is disabled.
func (ui *UISystem) HandleClick(mx, my int) bool {
	ui.updateButtonPositions()
	for _, b := range ui.buttons {
		if b.Contains(mx, my) {
			b.Press()
			return true
		}
	}
	return false
}

// SetZoomLimits dims zoom in at maxScale and zoom out at minScale.
func (ui *UISystem) SetZoomLimits(scale, minScale, maxScale float64) {
	const eps = 1e-9
	ui.buttons[0].Disabled = scale >= maxScale-eps
	ui.buttons[1].Disabled = scale <= minScale+eps
}

// Update tracks hover and handles a left click at the cursor (mx, my),
// given in screen units.
func (ui *UISystem) Update(mx, my int) {
	ui.updateButtonPositions()
	for _, b := range ui.buttons {
		b.hovered = b.Contains(mx, my)
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		ui.HandleClick(mx, my)
	}
}

func (ui *UISystem) Draw(screen *ebiten.Image) {
	ui.updateButtonPositions()
	var face font.Face
	if ui.getFontFace != nil {
		face = ui.getFontFace()
	}
	for _, b := range ui.buttons {
		b.Draw(screen, face, ui.drawText)
	}
	if ui.Status != nil {
		ui.Status.Draw(screen, ui.getScreenSize, ui.getFontFace, ui.drawText)
	}
}
