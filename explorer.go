package fractal

import "sync"

// Explorer links a Julia renderer to the pointer position over a
// Mandelbrot view: the Julia constant is the plane point under the
// pointer.
//
// At most one Julia frame is in flight. Pointer moves during a frame are
// coalesced; when the frame completes, the explorer renders the latest
// position if it changed and pauses otherwise.
type Explorer struct {
	source *Navigator
	julia  *Navigator

	mu       sync.Mutex
	x, y     float64 // latest pointer position
	lastX    float64 // position of the frame in flight or last shown
	lastY    float64
	paused   bool
	frameErr error
}

// NewExplorer starts an explorer. source is the Mandelbrot navigator the
// pointer moves over; julia renders the linked Julia set.
func NewExplorer(source, julia *Navigator) *Explorer {
	e := &Explorer{source: source, julia: julia, paused: true}
	julia.OnRenderComplete(e.onComplete)
	return e
}

// Track records the pointer position in pixels of the source view and
// starts a frame if none is running.
func (e *Explorer) Track(px, py float64) {
	e.mu.Lock()
	e.x, e.y = px, py
	if !e.paused {
		e.mu.Unlock()
		return
	}
	e.paused = false
	e.mu.Unlock()

	e.frame()
}

// Paused reports whether no Julia frame is in flight.
func (e *Explorer) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// Err returns the error of the last frame that failed to dispatch.
func (e *Explorer) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frameErr
}

// frame renders the Julia set for the latest pointer position.
func (e *Explorer) frame() {
	e.mu.Lock()
	x, y := e.x, e.y
	e.lastX, e.lastY = x, y
	e.mu.Unlock()

	re, im := e.source.View().ToWorld(x, y)
	view := e.julia.View()
	view.Variant = Julia
	view.C = complex(re, im)

	_, err := e.julia.SetView(view)

	e.mu.Lock()
	e.frameErr = err
	if err != nil {
		e.paused = true
	}
	e.mu.Unlock()
}

// onComplete runs on the Julia renderer's coordinator goroutine.
func (e *Explorer) onComplete(RenderStats) {
	e.mu.Lock()
	if e.x == e.lastX && e.y == e.lastY {
		e.paused = true
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	// Dispatch off the coordinator goroutine so it keeps draining results.
	go e.frame()
}
