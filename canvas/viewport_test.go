package canvas

import (
	"math"
	"math/rand"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func worldUnder(v *Viewport, p Point) Point {
	return v.ScreenToWorld(p)
}

func TestNewDefaults(t *testing.T) {
	v := New(DefaultParams(), 800, 600)

	if v.Scale != 1 {
		t.Errorf("Expected scale 1, got %f", v.Scale)
	}
	if v.ZoomPoint != (Point{}) || v.Remainder != (Point{}) || v.WorldOffset != (Point{}) {
		t.Errorf("Expected zeroed anchor state, got zp=%v r=%v w=%v", v.ZoomPoint, v.Remainder, v.WorldOffset)
	}
	want := Bounds{Left: 0, Right: 10, Top: 0, Bottom: 10}
	if v.Bounds() != want {
		t.Errorf("Expected bounds %+v, got %+v", want, v.Bounds())
	}
}

func TestNewPanicsOnZeroCellSize(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for zero cell size")
		}
	}()
	p := DefaultParams()
	p.CellSize = 0
	New(p, 100, 100)
}

func TestZoomConcreteScenario(t *testing.T) {
	v := New(DefaultParams(), 800, 600)
	v.Pan(100, 100)

	anchor := Point{X: 100, Y: 100}
	before := worldUnder(v, anchor)

	v.Zoom(1, anchor)

	if !near(v.Scale, 1.1) {
		t.Errorf("Expected scale 1.1, got %f", v.Scale)
	}
	if v.ZoomPoint != anchor {
		t.Errorf("Expected zoom point %v, got %v", anchor, v.ZoomPoint)
	}
	after := worldUnder(v, anchor)
	if !near(before.X, after.X) || !near(before.Y, after.Y) {
		t.Errorf("World point under anchor moved: %v -> %v", before, after)
	}
	s := v.WorldToScreen(before)
	if !near(s.X, 100) || !near(s.Y, 100) {
		t.Errorf("Expected world point back at (100,100), got %v", s)
	}
}

func TestZoomAnchorInvariance(t *testing.T) {
	v := New(DefaultParams(), 800, 600)
	v.Pan(-37, 52)

	anchor := Point{X: 313, Y: 127}
	steps := []int{1, 3, -2, 5, 5, -1, -7, 2}
	for _, s := range steps {
		before := worldUnder(v, anchor)
		v.Zoom(s, anchor)
		after := worldUnder(v, anchor)
		if !near(before.X, after.X) || !near(before.Y, after.Y) {
			t.Fatalf("zoom(%d): world point under anchor moved %v -> %v", s, before, after)
		}
	}
}

func TestZoomClamp(t *testing.T) {
	p := DefaultParams()
	v := New(p, 800, 600)
	anchor := Point{X: 50, Y: 50}

	for i := 0; i < 200; i++ {
		v.Zoom(1, anchor)
		if v.Scale > p.MaxScale+eps {
			t.Fatalf("Scale exceeded max: %f", v.Scale)
		}
	}
	if !near(v.Scale, p.MaxScale) {
		t.Errorf("Expected scale %f, got %f", p.MaxScale, v.Scale)
	}

	for i := 0; i < 200; i++ {
		v.Zoom(-1, anchor)
		if v.Scale < p.MinScale-eps {
			t.Fatalf("Scale below min: %f", v.Scale)
		}
	}
	if !near(v.Scale, p.MinScale) {
		t.Errorf("Expected scale %f, got %f", p.MinScale, v.Scale)
	}
}

func TestZoomAtClampStillMovesAnchor(t *testing.T) {
	v := New(DefaultParams(), 800, 600)
	v.Zoom(-1, Point{X: 10, Y: 10})

	anchor := Point{X: 123, Y: 77}
	v.Zoom(-3, anchor)

	if v.Scale != v.MinScale {
		t.Errorf("Expected scale to stay at min, got %f", v.Scale)
	}
	if v.ZoomPoint != anchor {
		t.Errorf("Expected zoom point %v, got %v", anchor, v.ZoomPoint)
	}
	if !near(v.Remainder.X, 3) || !near(v.Remainder.Y, 7) {
		t.Errorf("Expected remainder (3,7), got %v", v.Remainder)
	}
}

func TestPanShiftsBounds(t *testing.T) {
	v := New(DefaultParams(), 800, 600)
	v.Zoom(4, Point{X: 211, Y: 97})
	before := v.Bounds()
	r := v.Remainder

	v.Pan(13.5, -42)

	after := v.Bounds()
	if !near(after.Left-before.Left, 13.5) || !near(after.Right-before.Right, 13.5) {
		t.Errorf("Expected horizontal shift 13.5, got %+v -> %+v", before, after)
	}
	if !near(after.Top-before.Top, -42) || !near(after.Bottom-before.Bottom, -42) {
		t.Errorf("Expected vertical shift -42, got %+v -> %+v", before, after)
	}
	if v.Remainder != r {
		t.Errorf("Pan changed remainder: %v -> %v", r, v.Remainder)
	}
}

func TestRemainderBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	v := New(DefaultParams(), 1024, 768)

	for i := 0; i < 5000; i++ {
		switch rng.Intn(3) {
		case 0:
			v.Pan(rng.Float64()*200-100, rng.Float64()*200-100)
		case 1:
			v.Zoom(rng.Intn(11)-5, Point{X: rng.Float64() * 1024, Y: rng.Float64() * 768})
		case 2:
			v.Resize(float64(rng.Intn(2000)+1), float64(rng.Intn(2000)+1))
		}
		if v.Remainder.X < 0 || v.Remainder.X >= v.CellSize || v.Remainder.Y < 0 || v.Remainder.Y >= v.CellSize {
			t.Fatalf("step %d: remainder out of range: %v", i, v.Remainder)
		}
	}
}

// Grid borders must stay on world multiples of the cell size after any
// mix of pans and zooms.
func TestBoundsStayOnWorldLattice(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	v := New(DefaultParams(), 1024, 768)

	for i := 0; i < 2000; i++ {
		if rng.Intn(2) == 0 {
			v.Pan(rng.Float64()*60-30, rng.Float64()*60-30)
		} else {
			v.Zoom(rng.Intn(7)-3, Point{X: rng.Float64() * 1024, Y: rng.Float64() * 768})
		}

		b := v.Bounds()
		w := v.ScreenToWorld(Point{X: b.Left, Y: b.Top})
		cellsX := w.X / v.CellSize
		cellsY := w.Y / v.CellSize
		if math.Abs(cellsX-math.Round(cellsX)) > 1e-6 || math.Abs(cellsY-math.Round(cellsY)) > 1e-6 {
			t.Fatalf("step %d: cell border at world %v is off the lattice", i, w)
		}
	}
}

func TestResizeIdempotent(t *testing.T) {
	v := New(DefaultParams(), 800, 600)
	v.Zoom(3, Point{X: 45, Y: 91})
	v.Pan(7, 8)
	scale, r := v.Scale, v.Remainder

	v.Resize(1280, 720)
	first := v.Bounds()
	v.Resize(1280, 720)
	second := v.Bounds()

	if first != second {
		t.Errorf("Expected identical bounds, got %+v and %+v", first, second)
	}
	if v.Scale != scale || v.Remainder != r {
		t.Errorf("Resize changed scale/remainder: %f %v -> %f %v", scale, r, v.Scale, v.Remainder)
	}
	if v.Width != 1280 || v.Height != 720 {
		t.Errorf("Expected 1280x720, got %fx%f", v.Width, v.Height)
	}
}

func TestReset(t *testing.T) {
	v := New(DefaultParams(), 800, 600)
	v.Zoom(5, Point{X: 300, Y: 300})
	v.Pan(40, 40)
	v.Reset()

	if v.Scale != 1 || v.WorldOffset != (Point{}) || v.Remainder != (Point{}) {
		t.Errorf("Expected initial transform, got scale=%f w=%v r=%v", v.Scale, v.WorldOffset, v.Remainder)
	}
	if v.Width != 800 || v.Height != 600 {
		t.Errorf("Reset changed dimensions: %fx%f", v.Width, v.Height)
	}
}

func TestScreenWorldRoundTrip(t *testing.T) {
	v := New(DefaultParams(), 800, 600)
	v.Pan(-120, 33)
	v.Zoom(6, Point{X: 400, Y: 300})

	p := Point{X: 17, Y: 555}
	got := v.WorldToScreen(v.ScreenToWorld(p))
	if !near(got.X, p.X) || !near(got.Y, p.Y) {
		t.Errorf("Expected %v, got %v", p, got)
	}
}

func TestZoomTo(t *testing.T) {
	v := New(DefaultParams(), 800, 600)
	anchor := Point{X: 400, Y: 300}
	before := v.ScreenToWorld(anchor)

	v.ZoomTo(4, anchor)

	if v.Scale != 4 {
		t.Errorf("Expected scale 4, got %f", v.Scale)
	}
	after := v.ScreenToWorld(anchor)
	if !near(before.X, after.X) || !near(before.Y, after.Y) {
		t.Errorf("World point under anchor moved: %v -> %v", before, after)
	}
}
