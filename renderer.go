package fractal

import (
	"errors"
	"fmt"
	"image"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/fractal/internal/kernel"
	"github.com/gogpu/fractal/internal/palette"
	"github.com/gogpu/fractal/internal/parallel"
)

// ErrClosed is returned by Render after Close.
var ErrClosed = errors.New("fractal: renderer closed")

// State is the phase of the current render cycle.
type State uint8

const (
	// Idle means nothing has been rendered yet.
	Idle State = iota
	// Dispatched means bands of the current generation are outstanding.
	Dispatched
	// Composited means every band of the current generation has arrived.
	Composited
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dispatched:
		return "dispatched"
	case Composited:
		return "composited"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// RenderRequest is an immutable snapshot of a view tagged with the
// generation it was dispatched under.
type RenderRequest struct {
	View       ViewState
	Generation uint64
}

// RenderStats describes one completed render.
type RenderStats struct {
	Generation uint64
	Bands      int
	// FailedBands counts bands that errored; their rows keep old pixels.
	FailedBands int
	// GuardHits counts Newton pixels stopped by a zero denominator.
	GuardHits int
	Pixels    int
	Elapsed   time.Duration
}

// MicrosPerPixel returns the wall time per pixel in microseconds.
func (s RenderStats) MicrosPerPixel() float64 {
	if s.Pixels == 0 {
		return 0
	}
	return float64(s.Elapsed) / float64(time.Microsecond) / float64(s.Pixels)
}

// Stats are cumulative counters over the renderer's lifetime.
type Stats struct {
	Renders        uint64 // renders dispatched
	Completed      uint64 // renders fully composited
	StaleDiscarded uint64 // band results dropped for a superseded generation
	FailedBands    uint64 // band results that carried an error
	QueuedBands    int    // band tasks waiting for a worker, approximate
}

// bandResult is the message a band task posts back to the coordinator.
type bandResult struct {
	Generation uint64
	Span       parallel.Span
	Band       *kernel.Band
	Err        error
}

// Renderer is the render coordinator.
//
// Render snapshots a view, assigns it the next generation, splits the
// image into bands and hands one task per band to a worker pool. Results
// come back on a channel drained by a single coordinator goroutine, which
// is the only writer of the PixelBuffer. Results from a generation other
// than the latest are dropped on arrival; nothing is cancelled early.
//
// Thread safety: all methods are safe for concurrent use.
type Renderer struct {
	opts    rendererOptions
	pool    *parallel.WorkerPool
	results chan bandResult
	quit    chan struct{}
	done    chan struct{}
	closed  atomic.Bool

	// mu guards the cycle state.
	mu        sync.Mutex
	current   RenderRequest
	state     State
	expected  int
	completed int
	failed    int
	guardHits int
	started   time.Time
	pal       *palette.Palette
	rootPals  []*palette.Palette
	callbacks []func(RenderStats)

	// pixMu makes each band composite atomic with respect to readers.
	// Lock order: mu before pixMu.
	pixMu  sync.RWMutex
	pixels *PixelBuffer
	dirty  *parallel.DirtyRows // rows composited since the last TakeDirty

	renders     atomic.Uint64
	completions atomic.Uint64
	stale       atomic.Uint64
	failures    atomic.Uint64
}

// NewRenderer creates a renderer and starts its worker pool and
// coordinator goroutine. Call Close to release them.
func NewRenderer(opts ...Option) *Renderer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	r := &Renderer{
		opts:    o,
		pool:    parallel.NewWorkerPool(o.workers),
		results: make(chan bandResult, 4*parallel.MaxBands),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		pixels:  NewPixelBuffer(0, 0),
	}
	go r.loop()
	return r
}

// Render dispatches a new render of view and returns its request.
// Invalid views fail with ErrInvalidConfiguration before anything is
// dispatched. Render does not wait for the bands.
func (r *Renderer) Render(view ViewState) (RenderRequest, error) {
	if r.closed.Load() || !r.pool.IsRunning() {
		return RenderRequest{}, ErrClosed
	}
	if err := view.Validate(); err != nil {
		return RenderRequest{}, err
	}
	k, err := view.kernel()
	if err != nil {
		return RenderRequest{}, err
	}
	pal, err := palette.Lookup(view.Palette)
	if err != nil {
		return RenderRequest{}, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	spans := parallel.PlanBudget(view.Width, view.Height, r.opts.maxBands, r.opts.budget, r.opts.leftover)
	if err := checkPlan(spans, view.Height); err != nil {
		return RenderRequest{}, err
	}

	r.mu.Lock()
	req := RenderRequest{View: view, Generation: r.current.Generation + 1}
	r.current = req
	r.state = Dispatched
	r.expected = len(spans)
	r.completed = 0
	r.failed = 0
	r.guardHits = 0
	r.started = time.Now()
	r.pal = pal
	r.rootPals = rootPalettes(k.Roots())
	r.resize(view.Width, view.Height)
	r.mu.Unlock()

	r.renders.Add(1)
	Logger().Debug("render dispatched",
		"generation", req.Generation,
		"variant", view.Variant.String(),
		"width", view.Width,
		"height", view.Height,
		"bands", len(spans))

	plane := view.plane()
	for _, s := range spans {
		r.pool.Submit(r.task(req.Generation, k, plane, s, view.MaxIter))
	}
	return req, nil
}

// checkPlan rejects spans that do not tile [0, height) exactly.
func checkPlan(spans []parallel.Span, height int) error {
	if err := parallel.Validate(spans, height); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	return nil
}

// resize reallocates the buffer when the view size changes.
// The caller holds mu.
func (r *Renderer) resize(width, height int) {
	r.pixMu.Lock()
	defer r.pixMu.Unlock()

	if r.pixels.width != width || r.pixels.height != height {
		r.pixels = NewPixelBuffer(width, height)
		r.dirty = parallel.NewDirtyRows(height)
		r.dirty.MarkAll()
	}
}

// rootPalettes returns the per-root palettes indexed by root number.
func rootPalettes(roots int) []*palette.Palette {
	if roots == 0 {
		return nil
	}
	pals := make([]*palette.Palette, roots+1)
	for k := 1; k <= roots; k++ {
		pals[k] = palette.ForRoot(uint8(k))
	}
	return pals
}

// task builds the compute closure for one band. It reads only its
// arguments and posts exactly one result.
func (r *Renderer) task(gen uint64, k kernel.Kernel, plane kernel.Plane, s parallel.Span, nMax int) parallel.Task {
	return func() {
		select {
		case <-r.quit:
			return
		default:
		}

		res := bandResult{Generation: gen, Span: s}
		func() {
			defer func() {
				if p := recover(); p != nil {
					res.Band = nil
					res.Err = fmt.Errorf("fractal: band [%d,%d) panicked: %v", s.Offset, s.End(), p)
				}
			}()
			res.Band, res.Err = kernel.ComputeBand(k, plane, s.Offset, s.Rows, nMax)
		}()

		select {
		case r.results <- res:
		case <-r.quit:
		}
	}
}

// loop is the coordinator goroutine.
func (r *Renderer) loop() {
	defer close(r.done)
	for {
		select {
		case res := <-r.results:
			r.handleResult(res)
		case <-r.quit:
			return
		}
	}
}

// handleResult composites or discards one band result. It reports
// whether the result belonged to the current generation.
func (r *Renderer) handleResult(res bandResult) bool {
	r.mu.Lock()
	if res.Generation != r.current.Generation || r.state != Dispatched {
		current := r.current.Generation
		r.mu.Unlock()

		r.stale.Add(1)
		Logger().Debug("band discarded",
			"reason", "stale",
			"generation", res.Generation,
			"current", current,
			"offset", res.Span.Offset,
			"rows", res.Span.Rows)
		return false
	}

	err := res.Err
	if err == nil {
		err = r.composite(res.Band)
	}
	if err != nil {
		r.failed++
		r.failures.Add(1)
		Logger().Warn("band failed",
			"generation", res.Generation,
			"offset", res.Span.Offset,
			"rows", res.Span.Rows,
			"error", err)
	} else {
		r.guardHits += res.Band.GuardHits
	}

	r.completed++
	if r.completed < r.expected {
		r.mu.Unlock()
		return true
	}

	r.state = Composited
	view := r.current.View
	stats := RenderStats{
		Generation:  r.current.Generation,
		Bands:       r.expected,
		FailedBands: r.failed,
		GuardHits:   r.guardHits,
		Pixels:      view.Width * view.Height,
		Elapsed:     time.Since(r.started),
	}
	callbacks := slices.Clone(r.callbacks)
	r.mu.Unlock()

	r.completions.Add(1)
	Logger().Info("render complete",
		"generation", stats.Generation,
		"bands", stats.Bands,
		"failed", stats.FailedBands,
		"elapsed", stats.Elapsed,
		"us_per_pixel", stats.MicrosPerPixel())

	for _, cb := range callbacks {
		cb(stats)
	}
	return true
}

// composite writes one band into the buffer through the active palettes.
// The caller holds mu.
func (r *Renderer) composite(b *kernel.Band) error {
	if b == nil {
		return errors.New("fractal: nil band")
	}

	r.pixMu.Lock()
	defer r.pixMu.Unlock()

	px := r.pixels
	if b.Width != px.width || b.Offset < 0 || b.Offset+b.Rows > px.height ||
		len(b.Intensity) != b.Width*b.Rows ||
		(b.Roots != nil && len(b.Roots) != len(b.Intensity)) {
		return fmt.Errorf("fractal: band [%d,%d) width %d does not fit %dx%d buffer",
			b.Offset, b.Offset+b.Rows, b.Width, px.width, px.height)
	}

	for y := range b.Rows {
		dst := px.row(b.Offset + y)
		src := b.Intensity[y*b.Width : (y+1)*b.Width]

		var roots []byte
		if b.Roots != nil {
			roots = b.Roots[y*b.Width : (y+1)*b.Width]
		}

		for x, v := range src {
			pal := r.pal
			if roots != nil {
				if k := int(roots[x]); k != 0 && k < len(r.rootPals) && r.rootPals[k] != nil {
					pal = r.rootPals[k]
				}
			}
			c := pal.Colors[v]
			i := x * 4
			dst[i] = c[0]
			dst[i+1] = c[1]
			dst[i+2] = c[2]
			dst[i+3] = 0xff
		}
	}
	r.dirty.Mark(parallel.Span{Offset: b.Offset, Rows: b.Rows})
	return nil
}

// OnRenderComplete registers cb to run after every completed render.
// Callbacks run on the coordinator goroutine and must not block for long.
func (r *Renderer) OnRenderComplete(cb func(RenderStats)) {
	if cb == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks = append(r.callbacks, cb)
}

// ReadPixels calls fn with the composited buffer. The buffer must not be
// retained or modified after fn returns.
func (r *Renderer) ReadPixels(fn func(*PixelBuffer)) {
	r.pixMu.RLock()
	defer r.pixMu.RUnlock()
	fn(r.pixels)
}

// TakeDirty returns the full-width row ranges composited since the
// previous call, or since the buffer was last reallocated, and forgets
// them. Displays can poll it during a render to redraw bands as they land.
func (r *Renderer) TakeDirty() []image.Rectangle {
	r.pixMu.RLock()
	defer r.pixMu.RUnlock()

	if r.dirty == nil || r.dirty.IsEmpty() {
		return nil
	}
	spans := r.dirty.Take()
	rects := make([]image.Rectangle, len(spans))
	for i, s := range spans {
		rects[i] = image.Rect(0, s.Offset, r.pixels.width, s.End())
	}
	return rects
}

// Snapshot returns a copy of the composited buffer.
func (r *Renderer) Snapshot() *image.RGBA {
	var img *image.RGBA
	r.ReadPixels(func(p *PixelBuffer) {
		img = p.ToImage()
	})
	return img
}

// State returns the phase of the current render cycle.
func (r *Renderer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Current returns the latest dispatched request.
func (r *Renderer) Current() RenderRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Generation returns the latest assigned generation id; 0 before the
// first render.
func (r *Renderer) Generation() uint64 {
	return r.Current().Generation
}

// Stats returns the cumulative counters.
func (r *Renderer) Stats() Stats {
	return Stats{
		Renders:        r.renders.Load(),
		Completed:      r.completions.Load(),
		StaleDiscarded: r.stale.Load(),
		FailedBands:    r.failures.Load(),
		QueuedBands:    r.pool.QueuedWork(),
	}
}

// Workers returns the number of compute goroutines.
func (r *Renderer) Workers() int {
	return r.pool.Workers()
}

// Close stops the coordinator and the worker pool. Pending bands are
// dropped and no further callbacks run. Close is safe to call more than once.
func (r *Renderer) Close() {
	if !r.closed.CompareAndSwap(false, true) {
		return
	}
	close(r.quit)
	r.pool.Close()
	<-r.done
}
