package canvas

import "math"

// SyncState is the state of a tiled background relative to the viewport.
type SyncState int

const (
	// Stable means the tile matches the current scale; only its phase moves.
	Stable SyncState = iota
	// PendingReplace means the scale changed and the tile must be regenerated.
	PendingReplace
)

func (s SyncState) String() string {
	switch s {
	case Stable:
		return "stable"
	case PendingReplace:
		return "pending-replace"
	}
	return "unknown"
}

// TileGenerator renders one background tile for the given frame's scale.
type TileGenerator[T any] func(f Frame) (T, error)

// Background keeps a repeating tile texture in phase with the world grid.
//
// A pan only repositions the tile (Anchor and Phase). A scale change
// invalidates the raster, so the tile is discarded and regenerated once
// before the next draw.
type Background[T any] struct {
	generate TileGenerator[T]
	release  func(T)

	state   SyncState
	tile    T
	hasTile bool

	tileScale float64
	cellSize  float64

	// Anchor is the world point at the viewport's top-left corner.
	Anchor Point
	// Phase is the tile offset in world units.
	Phase Point

	replacements int
}

// NewBackground returns a background with no tile yet. The first Sync
// generates it. release, if non-nil, is called on every discarded tile.
func NewBackground[T any](generate TileGenerator[T], release func(T)) *Background[T] {
	return &Background[T]{
		generate: generate,
		release:  release,
		state:    PendingReplace,
	}
}

// State reports the current sync state.
func (b *Background[T]) State() SyncState {
	return b.state
}

// Replacements counts executed replace transitions, the first generation included.
func (b *Background[T]) Replacements() int {
	return b.replacements
}

// Tile returns the current tile and whether one has been generated.
func (b *Background[T]) Tile() (T, bool) {
	return b.tile, b.hasTile
}

// Invalidate forces the next Sync to regenerate the tile at an unchanged
// scale, e.g. when the output resolution changes.
func (b *Background[T]) Invalidate() {
	b.state = PendingReplace
}

// Observe records a viewport update. A scale change marks the tile for
// replacement; anything else is the move-only path.
func (b *Background[T]) Observe(f Frame) {
	if !b.hasTile || f.Scale != b.tileScale {
		b.state = PendingReplace
	}
	b.move(f)
}

// Sync observes f and executes a pending replacement. On a generator error
// the old tile is kept and the state stays PendingReplace.
func (b *Background[T]) Sync(f Frame) error {
	b.Observe(f)
	if b.state != PendingReplace {
		return nil
	}

	tile, err := b.generate(f)
	if err != nil {
		return err
	}
	if b.hasTile && b.release != nil {
		b.release(b.tile)
	}
	b.tile = tile
	b.hasTile = true
	b.tileScale = f.Scale
	b.move(f)
	b.state = Stable
	b.replacements++
	return nil
}

func (b *Background[T]) move(f Frame) {
	lt := f.WorldLeftTop()
	half := f.CellSize / 2
	b.cellSize = f.CellSize
	b.Anchor = lt
	b.Phase = Point{X: -lt.X + half, Y: -lt.Y + half}
}

// TileOrigin is the screen position of the top-left tile, in (-size, 0].
// Tiles are then laid out every size pixels to cover the viewport. While a
// replacement is pending the tile no longer matches the phase, and size
// is zero.
func (b *Background[T]) TileOrigin() (origin Point, size float64) {
	size = b.cellSize * b.tileScale
	if b.state == PendingReplace || size <= 0 {
		return Point{}, 0
	}
	origin.X = wrap(b.Phase.X*b.tileScale, size)
	origin.Y = wrap(b.Phase.Y*b.tileScale, size)
	return origin, size
}

func wrap(v, size float64) float64 {
	v = math.Mod(v, size)
	if v > 0 {
		v -= size
	}
	return v
}
