package input

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"infigrid/canvas"
)

// Host is what the input system needs from the window. Coordinates are
// screen units; DeviceScale is device pixels per unit.
type Host interface {
	IsMouseOver(mx, my int) bool
	ScreenSize() (int, int)
	DeviceScale() float64
}

// Commands are window-level requests that are not viewport events.
type Commands struct {
	Screenshot       bool
	ToggleBackground bool
	ToggleDebug      bool
}

// TouchPoint is an active touch in screen units.
type TouchPoint struct {
	X, Y float64
}

// Sample is one frame of raw input, in screen units.
type Sample struct {
	MouseX, MouseY float64
	WheelY         float64
	Touches        []TouchPoint

	LeftPressed bool
	PanPressed  bool // middle or right button
	ForcePan    bool // space held: left drag pans even over UI
	OverUI      bool

	ZoomInKey  bool
	ZoomOutKey bool
	ResetKey   bool
	// ActualSizeKey returns to scale 1 around the cursor.
	ActualSizeKey bool

	Commands Commands
}

type InputSystem struct {
	host       Host
	notchSteps int

	// Internal state
	isPanning  bool
	lastMouseX float64
	lastMouseY float64

	pinching  bool
	pinchDist float64
	pinchAcc  float64
	touchIDs  []ebiten.TouchID
	cursor    [2]int
}

// pinchStepDistance is how far the fingers must spread, in screen units,
// for one zoom step.
const pinchStepDistance = 40

func NewInputSystem(h Host, notchSteps int) *InputSystem {
	if notchSteps == 0 {
		notchSteps = 1
	}
	return &InputSystem{host: h, notchSteps: notchSteps}
}

// Update samples ebiten and returns the viewport events for this tick.
func (is *InputSystem) Update() ([]canvas.Event, Commands) {
	s := is.sample()
	return is.Translate(s), s.Commands
}

func (is *InputSystem) sample() Sample {
	scale := is.host.DeviceScale()
	if scale <= 0 {
		scale = 1
	}
	cx, cy := ebiten.CursorPosition()
	mx, my := float64(cx)/scale, float64(cy)/scale
	is.cursor = [2]int{int(mx), int(my)}
	_, wy := ebiten.Wheel()

	is.touchIDs = ebiten.AppendTouchIDs(is.touchIDs[:0])
	var touches []TouchPoint
	for _, id := range is.touchIDs {
		tx, ty := ebiten.TouchPosition(id)
		touches = append(touches, TouchPoint{X: float64(tx) / scale, Y: float64(ty) / scale})
	}

	return Sample{
		MouseX:        mx,
		MouseY:        my,
		WheelY:        wy,
		Touches:       touches,
		LeftPressed:   ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		PanPressed:    ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle) || ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight),
		ForcePan:      ebiten.IsKeyPressed(ebiten.KeySpace),
		OverUI:        is.host.IsMouseOver(int(mx), int(my)),
		ZoomInKey:     inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyKPAdd),
		ZoomOutKey:    inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract),
		ResetKey:      inpututil.IsKeyJustPressed(ebiten.KeyR),
		ActualSizeKey: inpututil.IsKeyJustPressed(ebiten.KeyDigit1),
		Commands: Commands{
			Screenshot:       inpututil.IsKeyJustPressed(ebiten.KeyF12),
			ToggleBackground: inpututil.IsKeyJustPressed(ebiten.KeyG),
			ToggleDebug:      inpututil.IsKeyJustPressed(ebiten.KeyD),
		},
	}
}

// Cursor is the pointer position of the last sample in screen units.
func (is *InputSystem) Cursor() (int, int) {
	return is.cursor[0], is.cursor[1]
}

// Translate turns a raw sample into viewport events. It keeps the drag
// state between calls.
func (is *InputSystem) Translate(s Sample) []canvas.Event {
	var events []canvas.Event

	// --- Keys ---
	if s.ResetKey {
		events = append(events, canvas.Event{Kind: canvas.EventReset})
	}
	w, h := is.host.ScreenSize()
	if s.ZoomInKey {
		events = append(events, is.CenterZoom(1, w, h))
	}
	if s.ZoomOutKey {
		events = append(events, is.CenterZoom(-1, w, h))
	}
	if s.ActualSizeKey {
		events = append(events, canvas.Event{Kind: canvas.EventZoomTo, Scale: 1, X: s.MouseX, Y: s.MouseY})
	}

	// --- Wheel ---
	if steps := is.wheelSteps(s.WheelY); steps != 0 && !s.OverUI {
		events = append(events, canvas.Event{
			Kind:  canvas.EventWheel,
			Steps: steps,
			X:     s.MouseX,
			Y:     s.MouseY,
		})
	}

	events = append(events, is.handlePinch(s)...)
	return append(events, is.handlePanning(s)...)
}

// handlePinch turns the spread of the first two touches into zoom steps
// anchored at their midpoint. Partial steps carry over to later samples.
func (is *InputSystem) handlePinch(s Sample) []canvas.Event {
	if len(s.Touches) < 2 {
		is.pinching = false
		return nil
	}
	a, b := s.Touches[0], s.Touches[1]
	dist := math.Hypot(b.X-a.X, b.Y-a.Y)
	if !is.pinching {
		is.pinching = true
		is.pinchDist = dist
		is.pinchAcc = 0
		return nil
	}

	is.pinchAcc += dist - is.pinchDist
	is.pinchDist = dist
	n := int(is.pinchAcc / pinchStepDistance)
	if n == 0 {
		return nil
	}
	is.pinchAcc -= float64(n) * pinchStepDistance
	return []canvas.Event{{
		Kind:  canvas.EventWheel,
		Steps: n * is.notchSteps,
		X:     (a.X + b.X) / 2,
		Y:     (a.Y + b.Y) / 2,
	}}
}

// CenterZoom builds a wheel event anchored at the middle of a w x h screen.
func (is *InputSystem) CenterZoom(notches, w, h int) canvas.Event {
	return canvas.Event{
		Kind:  canvas.EventWheel,
		Steps: notches * is.notchSteps,
		X:     float64(w) / 2,
		Y:     float64(h) / 2,
	}
}

// wheelSteps keeps the magnitude of multi-notch events; fractional
// trackpad deltas count as a single notch.
func (is *InputSystem) wheelSteps(dy float64) int {
	if dy == 0 {
		return 0
	}
	n := int(math.Round(math.Abs(dy)))
	if n < 1 {
		n = 1
	}
	if dy < 0 {
		n = -n
	}
	return n * is.notchSteps
}

func (is *InputSystem) handlePanning(s Sample) []canvas.Event {
	// a left press on a button is a click, not a drag
	isPanButtonHeld := s.PanPressed ||
		(s.LeftPressed && (s.ForcePan || !s.OverUI))

	if !is.isPanning {
		if isPanButtonHeld {
			is.isPanning = true
			is.lastMouseX, is.lastMouseY = s.MouseX, s.MouseY
			return []canvas.Event{{Kind: canvas.EventDragStart}}
		}
		return nil
	}

	if !(s.PanPressed || s.LeftPressed) {
		is.isPanning = false
		return []canvas.Event{{Kind: canvas.EventDragEnd}}
	}

	dx := s.MouseX - is.lastMouseX
	dy := s.MouseY - is.lastMouseY
	is.lastMouseX, is.lastMouseY = s.MouseX, s.MouseY
	if dx == 0 && dy == 0 {
		return nil
	}
	return []canvas.Event{{Kind: canvas.EventPointerMove, DX: dx, DY: dy}}
}

// IsPanning reports whether a drag gesture is active.
func (is *InputSystem) IsPanning() bool {
	return is.isPanning
}
