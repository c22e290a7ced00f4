// Package tui is a terminal frontend for the grid: one terminal cell per
// screen unit, driven by the same controller as the window.
package tui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"infigrid/canvas"
)

var (
	gridStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	markerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("236"))
)

const panStep = 2

type model struct {
	ctrl       *canvas.Controller[struct{}]
	logger     *log.Logger
	notchSteps int

	dragging   bool
	lastX      int
	lastY      int
	width      int
	height     int
	showMarker bool
}

// New builds the bubbletea model. notchSteps scales keyboard and wheel zoom.
func New(p canvas.Params, notchSteps int, logger *log.Logger) tea.Model {
	if notchSteps == 0 {
		notchSteps = 1
	}
	return &model{
		ctrl:       canvas.NewController[struct{}](p, 80, 23, nil),
		logger:     logger,
		notchSteps: notchSteps,
		width:      80,
		height:     24,
	}
}

// Run starts the terminal frontend and blocks until it exits.
func Run(p canvas.Params, notchSteps int, logger *log.Logger) error {
	_, err := tea.NewProgram(New(p, notchSteps, logger), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.handle(canvas.Event{Kind: canvas.EventResize, Width: float64(msg.Width), Height: float64(max(msg.Height-1, 1))})
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "left", "h":
		m.pan(panStep, 0)
	case "right", "l":
		m.pan(-panStep, 0)
	case "up", "k":
		m.pan(0, panStep)
	case "down", "j":
		m.pan(0, -panStep)
	case "+", "=":
		m.zoomCenter(1)
	case "-", "_":
		m.zoomCenter(-1)
	case "r":
		m.handle(canvas.Event{Kind: canvas.EventReset})
	case "1":
		f := m.ctrl.Frame()
		m.handle(canvas.Event{Kind: canvas.EventZoomTo, Scale: 1, X: math.Floor(f.Width / 2), Y: math.Floor(f.Height / 2)})
	case "m":
		m.showMarker = !m.showMarker
	}
	return m, nil
}

func (m *model) handleMouse(msg tea.MouseMsg) {
	switch {
	case msg.Button == tea.MouseButtonWheelUp && msg.Action == tea.MouseActionPress:
		m.handle(canvas.Event{Kind: canvas.EventWheel, Steps: m.notchSteps, X: float64(msg.X), Y: float64(msg.Y)})
	case msg.Button == tea.MouseButtonWheelDown && msg.Action == tea.MouseActionPress:
		m.handle(canvas.Event{Kind: canvas.EventWheel, Steps: -m.notchSteps, X: float64(msg.X), Y: float64(msg.Y)})
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.dragging = true
		m.lastX, m.lastY = msg.X, msg.Y
		m.handle(canvas.Event{Kind: canvas.EventDragStart})
	case msg.Action == tea.MouseActionMotion && m.dragging:
		dx, dy := msg.X-m.lastX, msg.Y-m.lastY
		m.lastX, m.lastY = msg.X, msg.Y
		m.handle(canvas.Event{Kind: canvas.EventPointerMove, DX: float64(dx), DY: float64(dy)})
	case msg.Action == tea.MouseActionRelease && m.dragging:
		m.dragging = false
		m.handle(canvas.Event{Kind: canvas.EventDragEnd})
	}
}

func (m *model) pan(dx, dy float64) {
	m.handle(canvas.Event{Kind: canvas.EventDragStart})
	m.handle(canvas.Event{Kind: canvas.EventPointerMove, DX: dx, DY: dy})
	m.handle(canvas.Event{Kind: canvas.EventDragEnd})
}

func (m *model) zoomCenter(notches int) {
	f := m.ctrl.Frame()
	m.handle(canvas.Event{Kind: canvas.EventWheel, Steps: notches * m.notchSteps, X: math.Floor(f.Width / 2), Y: math.Floor(f.Height / 2)})
}

func (m *model) handle(e canvas.Event) {
	f, _ := m.ctrl.Handle(e)
	if m.logger != nil {
		m.logger.Debug("event", "kind", e.Kind, "scale", f.Scale, "left", f.Bounds.Left, "top", f.Bounds.Top)
	}
}

func (m *model) View() string {
	f := m.ctrl.Frame()
	rows := Raster(f)

	if m.showMarker {
		zx, zy := int(math.Round(f.ZoomPoint.X)), int(math.Round(f.ZoomPoint.Y))
		if zy >= 0 && zy < len(rows) && zx >= 0 && zx < len(rows[zy]) {
			rows[zy][zx] = '●'
		}
	}

	var b strings.Builder
	for _, row := range rows {
		for _, r := range row {
			switch r {
			case ' ':
				b.WriteRune(r)
			case '●':
				b.WriteString(markerStyle.Render(string(r)))
			default:
				b.WriteString(gridStyle.Render(string(r)))
			}
		}
		b.WriteByte('\n')
	}

	world := m.ctrl.WorldAt(canvas.Point{})
	status := fmt.Sprintf(" scale %.2f  world (%.1f, %.1f)  arrows/drag pan  +/-/wheel zoom  r reset  q quit ", f.Scale, world.X, world.Y)
	if r := []rune(status); len(r) > m.width {
		status = string(r[:max(m.width, 0)])
	}
	b.WriteString(statusStyle.Width(m.width).Render(status))
	return b.String()
}

// Raster draws the frame's grid lines into a rune matrix, one rune per
// screen unit.
func Raster(f canvas.Frame) [][]rune {
	w, h := int(f.Width), int(f.Height)
	rows := make([][]rune, h)
	for y := range rows {
		rows[y] = []rune(strings.Repeat(" ", w))
	}

	for l := range f.Lines() {
		if l.Vertical {
			x := int(math.Round(l.X0))
			if x < 0 || x >= w {
				continue
			}
			for y := 0; y < h; y++ {
				rows[y][x] = cross(rows[y][x], '│')
			}
			continue
		}
		y := int(math.Round(l.Y0))
		if y < 0 || y >= h {
			continue
		}
		for x := 0; x < w; x++ {
			rows[y][x] = cross(rows[y][x], '─')
		}
	}
	return rows
}

func cross(existing, r rune) rune {
	if existing == ' ' || existing == r {
		return r
	}
	return '┼'
}
