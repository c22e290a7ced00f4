// Package script turns Starlark replay scripts into viewport events.
//
//	resize(800, 600)
//	for i in range(10):
//	    zoom(1, 400, 300)
//	pan(-120, 40)
package script

import (
	"fmt"
	"os"
	"strconv"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"infigrid/canvas"
)

// Replay scripts are short imperative sequences, so top-level loops and
// reassignment are allowed.
var fileOptions = &syntax.FileOptions{
	TopLevelControl: true,
	GlobalReassign:  true,
	While:           true,
	Set:             true,
}

// Recorder collects the events emitted by a script.
type Recorder struct {
	Events []canvas.Event
	Print  func(msg string)
}

// Run executes src and returns the recorded events. vars are exposed to
// the script as globals.
func Run(name, src string, vars map[string]interface{}) ([]canvas.Event, error) {
	r := &Recorder{}
	if err := r.Exec(name, src, vars); err != nil {
		return nil, err
	}
	return r.Events, nil
}

// RunFile reads and runs a script file.
func RunFile(path string, vars map[string]interface{}) ([]canvas.Event, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Run(path, string(src), vars)
}

// Exec runs src, appending to r.Events.
func (r *Recorder) Exec(name, src string, vars map[string]interface{}) error {
	thread := &starlark.Thread{Name: name, Print: func(_ *starlark.Thread, msg string) {
		if r.Print != nil {
			r.Print(msg)
		}
	}}

	globals := r.builtins()
	for k, v := range vars {
		val, err := toStarlarkValue(v)
		if err != nil {
			return fmt.Errorf("%s: var %s: %w", name, k, err)
		}
		globals[k] = val
	}

	if _, err := starlark.ExecFileOptions(fileOptions, thread, name, src, globals); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (r *Recorder) builtins() starlark.StringDict {
	return starlark.StringDict{
		"pan":        starlark.NewBuiltin("pan", r.pan),
		"move":       starlark.NewBuiltin("move", r.move),
		"drag_start": starlark.NewBuiltin("drag_start", r.simple(canvas.EventDragStart)),
		"drag_end":   starlark.NewBuiltin("drag_end", r.simple(canvas.EventDragEnd)),
		"zoom":       starlark.NewBuiltin("zoom", r.zoom),
		"resize":     starlark.NewBuiltin("resize", r.resize),
		"reset":      starlark.NewBuiltin("reset", r.simple(canvas.EventReset)),
		"zoom_to":    starlark.NewBuiltin("zoom_to", r.zoomTo),
	}
}

type builtinFn = func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error)

// pan(dx, dy) records a complete drag gesture.
func (r *Recorder) pan(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var dx, dy starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "dx", &dx, "dy", &dy); err != nil {
		return nil, err
	}
	x, y, err := floats(b.Name(), dx, dy)
	if err != nil {
		return nil, err
	}
	r.Events = append(r.Events,
		canvas.Event{Kind: canvas.EventDragStart},
		canvas.Event{Kind: canvas.EventPointerMove, DX: x, DY: y},
		canvas.Event{Kind: canvas.EventDragEnd},
	)
	return starlark.None, nil
}

// move(dx, dy) records a bare pointer move; it only pans inside drag_start/drag_end.
func (r *Recorder) move(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var dx, dy starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "dx", &dx, "dy", &dy); err != nil {
		return nil, err
	}
	x, y, err := floats(b.Name(), dx, dy)
	if err != nil {
		return nil, err
	}
	r.Events = append(r.Events, canvas.Event{Kind: canvas.EventPointerMove, DX: x, DY: y})
	return starlark.None, nil
}

// zoom(steps, x, y)
func (r *Recorder) zoom(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var steps int
	var ax, ay starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "steps", &steps, "x", &ax, "y", &ay); err != nil {
		return nil, err
	}
	x, y, err := floats(b.Name(), ax, ay)
	if err != nil {
		return nil, err
	}
	r.Events = append(r.Events, canvas.Event{Kind: canvas.EventWheel, Steps: steps, X: x, Y: y})
	return starlark.None, nil
}

// zoom_to(scale, x, y) sets an absolute scale around (x, y).
func (r *Recorder) zoomTo(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var sv, ax, ay starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "scale", &sv, "x", &ax, "y", &ay); err != nil {
		return nil, err
	}
	scale, ok := starlark.AsFloat(sv)
	if !ok || scale <= 0 {
		return nil, fmt.Errorf("%s: scale must be a positive number, got %s", b.Name(), sv)
	}
	x, y, err := floats(b.Name(), ax, ay)
	if err != nil {
		return nil, err
	}
	r.Events = append(r.Events, canvas.Event{Kind: canvas.EventZoomTo, Scale: scale, X: x, Y: y})
	return starlark.None, nil
}

// resize(width, height)
func (r *Recorder) resize(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var w, h starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "width", &w, "height", &h); err != nil {
		return nil, err
	}
	width, height, err := floats(b.Name(), w, h)
	if err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%s: size must be positive, got %vx%v", b.Name(), width, height)
	}
	r.Events = append(r.Events, canvas.Event{Kind: canvas.EventResize, Width: width, Height: height})
	return starlark.None, nil
}

func (r *Recorder) simple(kind canvas.EventKind) builtinFn {
	return func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
			return nil, err
		}
		r.Events = append(r.Events, canvas.Event{Kind: kind})
		return starlark.None, nil
	}
}

func floats(fn string, a, b starlark.Value) (float64, float64, error) {
	x, ok := starlark.AsFloat(a)
	if !ok {
		return 0, 0, fmt.Errorf("%s: want number, got %s", fn, a.Type())
	}
	y, ok := starlark.AsFloat(b)
	if !ok {
		return 0, 0, fmt.Errorf("%s: want number, got %s", fn, b.Type())
	}
	return x, y, nil
}

// ParseVars types command-line variables: integers, floats and booleans
// become numbers and bools, anything else stays a string.
func ParseVars(raw map[string]string) map[string]interface{} {
	vars := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			vars[k] = n
		} else if f, err := strconv.ParseFloat(v, 64); err == nil {
			vars[k] = f
		} else if b, err := strconv.ParseBool(v); err == nil {
			vars[k] = b
		} else {
			vars[k] = v
		}
	}
	return vars
}

// toStarlarkValue converts the scalar types a replay can be parameterised with.
func toStarlarkValue(v interface{}) (starlark.Value, error) {
	switch val := v.(type) {
	case nil:
		return starlark.None, nil
	case starlark.Value:
		return val, nil
	case string:
		return starlark.String(val), nil
	case bool:
		return starlark.Bool(val), nil
	case int:
		return starlark.MakeInt(val), nil
	case int64:
		return starlark.MakeInt64(val), nil
	case float64:
		return starlark.Float(val), nil
	}
	return nil, fmt.Errorf("unsupported type %T", v)
}
