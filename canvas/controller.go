package canvas

// Controller owns the session for one surface and runs the full
// {update, bounds, background sync} sequence for each event.
type Controller[T any] struct {
	session    Session
	background *Background[T]
	frame      Frame
}

// NewController creates a controller for a width x height surface.
// background may be nil for frontends that only draw lines.
func NewController[T any](p Params, width, height float64, background *Background[T]) *Controller[T] {
	c := &Controller[T]{
		session:    Session{View: *New(p, width, height)},
		background: background,
	}
	c.frame = c.session.View.Snapshot()
	return c
}

// Handle applies e and returns the frame to draw. The returned error comes
// from tile generation only; the viewport is updated regardless.
func (c *Controller[T]) Handle(e Event) (Frame, error) {
	c.session = Dispatch(c.session, e)
	c.frame = c.session.View.Snapshot()
	return c.frame, c.SyncBackground()
}

// HandleAll applies events in order and stops at the first error.
func (c *Controller[T]) HandleAll(events []Event) (Frame, error) {
	for _, e := range events {
		if _, err := c.Handle(e); err != nil {
			return c.frame, err
		}
	}
	return c.frame, nil
}

// SyncBackground executes a pending tile replacement, if any.
func (c *Controller[T]) SyncBackground() error {
	if c.background == nil {
		return nil
	}
	return c.background.Sync(c.frame)
}

// Frame returns the frame produced by the last event.
func (c *Controller[T]) Frame() Frame {
	return c.frame
}

// Dragging reports whether a drag is in progress.
func (c *Controller[T]) Dragging() bool {
	return c.session.Dragging
}

// Background returns the background kept in sync, or nil.
func (c *Controller[T]) Background() *Background[T] {
	return c.background
}

// WorldAt converts a screen pixel of the current frame to world units.
func (c *Controller[T]) WorldAt(p Point) Point {
	return c.session.View.ScreenToWorld(p)
}

// ScreenAt converts a world point to a screen pixel of the current frame.
func (c *Controller[T]) ScreenAt(w Point) Point {
	return c.session.View.WorldToScreen(w)
}
