package canvas

import "fmt"

// EventKind identifies an input event.
type EventKind int

const (
	EventDragStart EventKind = iota
	EventDragEnd
	EventPointerMove
	EventWheel
	EventResize
	EventReset
	EventZoomTo
)

func (k EventKind) String() string {
	switch k {
	case EventDragStart:
		return "drag-start"
	case EventDragEnd:
		return "drag-end"
	case EventPointerMove:
		return "pointer-move"
	case EventWheel:
		return "wheel"
	case EventResize:
		return "resize"
	case EventReset:
		return "reset"
	case EventZoomTo:
		return "zoom-to"
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is one input sample. Only the fields of its Kind are meaningful.
type Event struct {
	Kind EventKind

	DX, DY float64 // pointer move delta
	Steps  int     // wheel notches, positive zooms in
	X, Y   float64 // wheel and zoom-to anchor
	Scale  float64 // zoom-to target

	Width, Height float64 // resize
}

// Session is the state the dispatch table transforms.
type Session struct {
	View     Viewport
	Dragging bool
}

// Transition is a pure state update for one event kind.
type Transition func(Session, Event) Session

var transitions = map[EventKind]Transition{
	EventDragStart: func(s Session, _ Event) Session {
		s.Dragging = true
		return s
	},
	EventDragEnd: func(s Session, _ Event) Session {
		s.Dragging = false
		return s
	},
	EventPointerMove: func(s Session, e Event) Session {
		if s.Dragging {
			s.View.Pan(e.DX, e.DY)
		}
		return s
	},
	EventWheel: func(s Session, e Event) Session {
		s.View.Zoom(e.Steps, Point{X: e.X, Y: e.Y})
		return s
	},
	EventResize: func(s Session, e Event) Session {
		s.View.Resize(e.Width, e.Height)
		return s
	},
	EventReset: func(s Session, _ Event) Session {
		s.View.Reset()
		return s
	},
	EventZoomTo: func(s Session, e Event) Session {
		s.View.ZoomTo(e.Scale, Point{X: e.X, Y: e.Y})
		return s
	},
}

// Dispatch applies the transition registered for e.Kind. Unknown kinds
// leave the session unchanged.
func Dispatch(s Session, e Event) Session {
	t, ok := transitions[e.Kind]
	if !ok {
		return s
	}
	return t(s, e)
}
