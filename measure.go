package fractal

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/fractal/internal/kernel"
	"github.com/gogpu/fractal/internal/palette"
	"github.com/gogpu/fractal/internal/parallel"
)

// ComputeStats reports a compute-only pass over a view.
type ComputeStats struct {
	Bands     int
	GuardHits int
	Elapsed   time.Duration
}

// MeasureCompute computes every band of view on a private worker pool and
// waits for all of them. Nothing is composited and no generation is
// assigned, so the result is the kernel cost without coordination.
// The options select workers and band planning as for NewRenderer.
func MeasureCompute(view ViewState, opts ...Option) (ComputeStats, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := view.Validate(); err != nil {
		return ComputeStats{}, err
	}
	k, err := view.kernel()
	if err != nil {
		return ComputeStats{}, err
	}
	if _, err := palette.Lookup(view.Palette); err != nil {
		return ComputeStats{}, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	spans := parallel.PlanBudget(view.Width, view.Height, o.maxBands, o.budget, o.leftover)
	if err := checkPlan(spans, view.Height); err != nil {
		return ComputeStats{}, err
	}

	pool := parallel.NewWorkerPool(o.workers)
	defer pool.Close()

	plane := view.plane()
	bands := make([]*kernel.Band, len(spans))
	errs := make([]error, len(spans))
	tasks := make([]parallel.Task, len(spans))
	for i, s := range spans {
		tasks[i] = func() {
			bands[i], errs[i] = kernel.ComputeBand(k, plane, s.Offset, s.Rows, view.MaxIter)
		}
	}

	start := time.Now()
	pool.ExecuteAll(tasks)
	stats := ComputeStats{Bands: len(spans), Elapsed: time.Since(start)}

	if err := errors.Join(errs...); err != nil {
		return stats, err
	}
	for _, b := range bands {
		stats.GuardHits += b.GuardHits
	}
	return stats, nil
}
