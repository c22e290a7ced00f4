package canvas

import "math"

// Point is a 2D coordinate. Whether it lives in screen or world space
// depends on where it is used.
type Point struct {
	X, Y float64
}

// Bounds are the screen-space edges of the grid cell containing the zoom point.
type Bounds struct {
	Left, Right, Top, Bottom float64
}

// Params holds the constants of a viewport.
type Params struct {
	CellSize  float64
	ScaleStep float64
	MinScale  float64
	MaxScale  float64
}

// DefaultParams matches the classic infinite grid: 10px cells, zoom 1x..10x.
func DefaultParams() Params {
	return Params{
		CellSize:  10,
		ScaleStep: 0.1,
		MinScale:  1,
		MaxScale:  10,
	}
}

// Viewport maps between screen space and the unbounded world.
//
// WorldOffset is the scaled world coordinate sitting at the screen origin:
// the world origin is drawn at -WorldOffset and the world point under
// screen pixel p is (p + WorldOffset) / Scale.
//
// Remainder is kept in unscaled cell units so grid borders stay pinned
// to world multiples of CellSize however many steps have been applied.
type Viewport struct {
	Params

	Scale     float64
	LastScale float64

	ZoomPoint     Point
	LastZoomPoint Point

	WorldOffset Point
	Remainder   Point

	Width, Height float64

	bounds Bounds
}

// New returns a viewport at scale 1 anchored at the screen origin.
// It panics on a non-positive cell size or minimum scale.
func New(p Params, width, height float64) *Viewport {
	if p.CellSize <= 0 {
		panic("canvas: cell size must be positive")
	}
	if p.MinScale <= 0 || p.MaxScale < p.MinScale {
		panic("canvas: invalid scale range")
	}
	v := &Viewport{Params: p, Width: width, Height: height}
	v.Reset()
	return v
}

// Reset restores the initial transform. Viewport dimensions are kept.
func (v *Viewport) Reset() {
	v.Scale = v.clamp(1)
	v.LastScale = v.Scale
	v.ZoomPoint = Point{}
	v.LastZoomPoint = Point{}
	v.WorldOffset = Point{}
	v.Remainder = Point{}
	v.RecomputeDrawingBounds()
}

// Pan moves the view by a screen-space drag delta. The remainder is not
// recomputed: the zoom point travels with the content, so its distance
// to the preceding cell border is unchanged.
func (v *Viewport) Pan(dx, dy float64) {
	v.ZoomPoint.X += dx
	v.ZoomPoint.Y += dy
	v.WorldOffset.X -= dx
	v.WorldOffset.Y -= dy
	v.RecomputeDrawingBounds()
}

// Zoom changes the scale by amount steps around anchor, keeping the world
// point under anchor fixed on screen.
func (v *Viewport) Zoom(amount int, anchor Point) {
	v.zoom(v.Scale+float64(amount)*v.ScaleStep, anchor)
}

// ZoomTo sets an absolute scale around anchor.
func (v *Viewport) ZoomTo(scale float64, anchor Point) {
	v.zoom(scale, anchor)
}

func (v *Viewport) zoom(target float64, anchor Point) {
	v.LastScale = v.Scale
	v.Scale = v.clamp(target)

	// --- Anchor ---
	world := Point{
		X: (anchor.X + v.WorldOffset.X) / v.LastScale,
		Y: (anchor.Y + v.WorldOffset.Y) / v.LastScale,
	}
	v.WorldOffset.X = world.X*v.Scale - anchor.X
	v.WorldOffset.Y = world.Y*v.Scale - anchor.Y

	v.LastZoomPoint = v.ZoomPoint
	v.ZoomPoint = anchor

	v.recomputeRemainder()
	v.RecomputeDrawingBounds()
}

// recomputeRemainder takes the modulo in the previous scale's pixel space
// and only then converts back to cell units.
func (v *Viewport) recomputeRemainder() {
	v.Remainder.X = v.remainderAxis(v.ZoomPoint.X-v.LastZoomPoint.X, v.Remainder.X)
	v.Remainder.Y = v.remainderAxis(v.ZoomPoint.Y-v.LastZoomPoint.Y, v.Remainder.Y)
}

func (v *Viewport) remainderAxis(moved, r float64) float64 {
	span := v.LastScale * v.CellSize
	d := moved + r*v.LastScale
	d -= math.Floor(d/span) * span
	r = d / v.LastScale

	// float rounding can land exactly on the upper edge
	if r >= v.CellSize || r < 0 {
		r = 0
	}
	return r
}

// RecomputeDrawingBounds derives the screen edges of the cell containing
// the zoom point.
func (v *Viewport) RecomputeDrawingBounds() {
	scaled := v.ScaledCellSize()
	v.bounds.Left = v.ZoomPoint.X - v.Remainder.X*v.Scale
	v.bounds.Right = v.bounds.Left + scaled
	v.bounds.Top = v.ZoomPoint.Y - v.Remainder.Y*v.Scale
	v.bounds.Bottom = v.bounds.Top + scaled
}

// Resize updates the viewport dimensions. Scale and remainder are untouched
// so the grid keeps its world alignment.
func (v *Viewport) Resize(width, height float64) {
	v.Width = width
	v.Height = height
	v.RecomputeDrawingBounds()
}

// Bounds returns the bounds computed by the last update.
func (v *Viewport) Bounds() Bounds {
	return v.bounds
}

// ScaledCellSize is the on-screen size of one cell.
func (v *Viewport) ScaledCellSize() float64 {
	return v.CellSize * v.Scale
}

// ScreenToWorld converts a screen pixel to world units.
func (v *Viewport) ScreenToWorld(p Point) Point {
	return Point{
		X: (p.X + v.WorldOffset.X) / v.Scale,
		Y: (p.Y + v.WorldOffset.Y) / v.Scale,
	}
}

// WorldToScreen converts world units to a screen pixel.
func (v *Viewport) WorldToScreen(w Point) Point {
	return Point{
		X: w.X*v.Scale - v.WorldOffset.X,
		Y: w.Y*v.Scale - v.WorldOffset.Y,
	}
}

// Snapshot returns an immutable copy of everything a renderer needs.
func (v *Viewport) Snapshot() Frame {
	return Frame{
		Bounds:      v.bounds,
		Scale:       v.Scale,
		CellSize:    v.CellSize,
		Width:       v.Width,
		Height:      v.Height,
		WorldOffset: v.WorldOffset,
		ZoomPoint:   v.ZoomPoint,
		Remainder:   v.Remainder,
	}
}

func (v *Viewport) clamp(s float64) float64 {
	return math.Max(v.MinScale, math.Min(v.MaxScale, s))
}

// Frame is a read-only view of the viewport handed to renderers after
// each update.
type Frame struct {
	Bounds      Bounds
	Scale       float64
	CellSize    float64
	Width       float64
	Height      float64
	WorldOffset Point
	ZoomPoint   Point
	Remainder   Point
}

// ScaledCellSize is the on-screen size of one cell in this frame.
func (f Frame) ScaledCellSize() float64 {
	return f.CellSize * f.Scale
}

// WorldLeftTop is the world-space point at the screen's top-left corner.
func (f Frame) WorldLeftTop() Point {
	return Point{X: f.WorldOffset.X / f.Scale, Y: f.WorldOffset.Y / f.Scale}
}
