package canvas

import (
	"errors"
	"math"
	"testing"
)

type fakeTile struct {
	scale float64
}

func newFakeBackground() (*Background[*fakeTile], *[]*fakeTile) {
	released := []*fakeTile{}
	bg := NewBackground(
		func(f Frame) (*fakeTile, error) { return &fakeTile{scale: f.Scale}, nil },
		func(t *fakeTile) { released = append(released, t) },
	)
	return bg, &released
}

func TestBackgroundFirstSyncGenerates(t *testing.T) {
	bg, _ := newFakeBackground()
	if bg.State() != PendingReplace {
		t.Fatalf("Expected pending-replace before first sync, got %s", bg.State())
	}

	v := New(DefaultParams(), 800, 600)
	if err := bg.Sync(v.Snapshot()); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if bg.State() != Stable {
		t.Errorf("Expected stable, got %s", bg.State())
	}
	if bg.Replacements() != 1 {
		t.Errorf("Expected 1 replacement, got %d", bg.Replacements())
	}
	tile, ok := bg.Tile()
	if !ok || tile.scale != 1 {
		t.Errorf("Expected tile at scale 1, got %+v (ok=%v)", tile, ok)
	}
}

func TestBackgroundPanNeverReplaces(t *testing.T) {
	bg, released := newFakeBackground()
	v := New(DefaultParams(), 800, 600)
	bg.Sync(v.Snapshot())

	for i := 0; i < 50; i++ {
		v.Pan(float64(i), -float64(i))
		bg.Observe(v.Snapshot())
		if bg.State() != Stable {
			t.Fatalf("pan %d: expected stable, got %s", i, bg.State())
		}
		bg.Sync(v.Snapshot())
	}

	if bg.Replacements() != 1 {
		t.Errorf("Expected no replacement after pans, got %d total", bg.Replacements())
	}
	if len(*released) != 0 {
		t.Errorf("Expected no released tiles, got %d", len(*released))
	}
}

func TestBackgroundScaleChangeReplacesOnce(t *testing.T) {
	bg, released := newFakeBackground()
	v := New(DefaultParams(), 800, 600)
	bg.Sync(v.Snapshot())
	first, _ := bg.Tile()

	v.Zoom(2, Point{X: 100, Y: 100})
	bg.Observe(v.Snapshot())
	if bg.State() != PendingReplace {
		t.Fatalf("Expected pending-replace after zoom, got %s", bg.State())
	}

	bg.Sync(v.Snapshot())
	bg.Sync(v.Snapshot())

	if bg.State() != Stable {
		t.Errorf("Expected stable, got %s", bg.State())
	}
	if bg.Replacements() != 2 {
		t.Errorf("Expected exactly one replace for the zoom, got %d total", bg.Replacements())
	}
	if len(*released) != 1 || (*released)[0] != first {
		t.Errorf("Expected the first tile to be released, got %v", *released)
	}
	tile, _ := bg.Tile()
	if tile.scale != v.Scale {
		t.Errorf("Expected tile at scale %f, got %f", v.Scale, tile.scale)
	}
}

func TestBackgroundClampedZoomDoesNotReplace(t *testing.T) {
	bg, _ := newFakeBackground()
	v := New(DefaultParams(), 800, 600)
	bg.Sync(v.Snapshot())

	v.Zoom(-1, Point{X: 5, Y: 5})
	bg.Sync(v.Snapshot())

	if bg.Replacements() != 1 {
		t.Errorf("Expected no replacement when scale is clamped, got %d total", bg.Replacements())
	}
}

func TestBackgroundGeneratorError(t *testing.T) {
	fail := true
	bg := NewBackground(func(f Frame) (int, error) {
		if fail {
			return 0, errors.New("boom")
		}
		return 1, nil
	}, nil)

	v := New(DefaultParams(), 800, 600)
	if err := bg.Sync(v.Snapshot()); err == nil {
		t.Fatal("Expected error from generator")
	}
	if bg.State() != PendingReplace {
		t.Errorf("Expected pending-replace after failure, got %s", bg.State())
	}

	fail = false
	if err := bg.Sync(v.Snapshot()); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if bg.State() != Stable {
		t.Errorf("Expected stable, got %s", bg.State())
	}
}

func TestBackgroundMovePhase(t *testing.T) {
	bg, _ := newFakeBackground()
	v := New(DefaultParams(), 800, 600)
	v.Pan(-30, -20)
	bg.Sync(v.Snapshot())

	if !near(bg.Anchor.X, 30) || !near(bg.Anchor.Y, 20) {
		t.Errorf("Expected anchor (30,20), got %v", bg.Anchor)
	}
	if !near(bg.Phase.X, -25) || !near(bg.Phase.Y, -15) {
		t.Errorf("Expected phase (-25,-15), got %v", bg.Phase)
	}
}

// Tile centre lines must land on the same lattice VisibleGridLines walks.
func TestBackgroundTileOriginMatchesLines(t *testing.T) {
	bg, _ := newFakeBackground()
	v := New(DefaultParams(), 800, 600)
	v.Pan(-17, 6)
	v.Zoom(7, Point{X: 333, Y: 222})
	v.Pan(4.5, -9)
	f := v.Snapshot()
	bg.Sync(f)

	origin, size := bg.TileOrigin()
	if !near(size, f.ScaledCellSize()) {
		t.Fatalf("Expected tile size %f, got %f", f.ScaledCellSize(), size)
	}
	if origin.X > 0 || origin.X <= -size || origin.Y > 0 || origin.Y <= -size {
		t.Fatalf("Tile origin out of range: %v (size %f)", origin, size)
	}

	lineX := origin.X + size/2
	for l := range f.Lines() {
		if !l.Vertical {
			continue
		}
		k := (l.X0 - lineX) / size
		if math.Abs(k-math.Round(k)) > 1e-6 {
			t.Fatalf("Line at %f is off the tile lattice (origin %f, size %f)", l.X0, origin.X, size)
		}
	}
}

func TestBackgroundNoOriginWhileRegenerationFails(t *testing.T) {
	fail := false
	bg := NewBackground(func(f Frame) (float64, error) {
		if fail {
			return 0, errors.New("boom")
		}
		return f.Scale, nil
	}, nil)

	v := New(DefaultParams(), 800, 600)
	if err := bg.Sync(v.Snapshot()); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	fail = true
	v.Zoom(7, Point{X: 333, Y: 222})
	if err := bg.Sync(v.Snapshot()); err == nil {
		t.Fatal("Expected error from generator")
	}
	if _, size := bg.TileOrigin(); size != 0 {
		t.Errorf("Expected no tile origin for a stale tile, got size %f", size)
	}
	if tile, ok := bg.Tile(); !ok || tile != 1 {
		t.Errorf("Expected old tile to be kept, got %v (ok=%v)", tile, ok)
	}

	fail = false
	f := v.Snapshot()
	if err := bg.Sync(f); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if _, size := bg.TileOrigin(); !near(size, f.ScaledCellSize()) {
		t.Errorf("Expected tile size %f, got %f", f.ScaledCellSize(), size)
	}
}

func TestBackgroundInvalidate(t *testing.T) {
	bg, released := newFakeBackground()
	v := New(DefaultParams(), 800, 600)
	bg.Sync(v.Snapshot())

	bg.Invalidate()
	if bg.State() != PendingReplace {
		t.Fatalf("Expected pending-replace, got %s", bg.State())
	}
	v.Pan(5, 5)
	bg.Sync(v.Snapshot())

	if bg.State() != Stable || bg.Replacements() != 2 {
		t.Errorf("Expected one regeneration, got state %s and %d replacements", bg.State(), bg.Replacements())
	}
	if len(*released) != 1 {
		t.Errorf("Expected the old tile to be released, got %d", len(*released))
	}
}
