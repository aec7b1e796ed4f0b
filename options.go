package fractal

import "github.com/gogpu/fractal/internal/parallel"

// Option configures a Renderer during creation.
//
// Example:
//
//	r := fractal.NewRenderer(
//	    fractal.WithWorkers(4),
//	    fractal.WithMaxBands(8),
//	)
type Option func(*rendererOptions)

// rendererOptions holds optional configuration for Renderer creation.
type rendererOptions struct {
	workers  int
	maxBands int
	budget   int
	leftover parallel.LeftoverMode
}

// defaultOptions returns the default renderer options.
func defaultOptions() rendererOptions {
	return rendererOptions{
		workers:  0, // GOMAXPROCS
		maxBands: parallel.MaxBands,
		budget:   parallel.PixelsPerBand,
		leftover: parallel.LeftoverSecondToLast,
	}
}

// WithWorkers sets the number of compute goroutines.
// Zero or a negative value uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *rendererOptions) {
		o.workers = n
	}
}

// WithMaxBands caps the number of bands per render.
// Values outside 1..MaxBands fall back to MaxBands.
func WithMaxBands(n int) Option {
	return func(o *rendererOptions) {
		if n <= 0 || n > parallel.MaxBands {
			n = parallel.MaxBands
		}
		o.maxBands = n
	}
}

// WithBandBudget sets the target pixel count of one band.
// Smaller budgets give more, smaller bands; mostly useful in tests.
func WithBandBudget(pixels int) Option {
	return func(o *rendererOptions) {
		if pixels <= 0 {
			pixels = parallel.PixelsPerBand
		}
		o.budget = pixels
	}
}

// LeftoverMode selects which band absorbs rows left over after the even
// split of the image height.
type LeftoverMode = parallel.LeftoverMode

const (
	// LeftoverSecondToLast is the historical behaviour: the extra rows go to
	// the second-to-last band.
	LeftoverSecondToLast = parallel.LeftoverSecondToLast
	// LeftoverLast gives the extra rows to the last band.
	LeftoverLast = parallel.LeftoverLast
)

// WithLeftoverMode selects where leftover rows go.
func WithLeftoverMode(m LeftoverMode) Option {
	return func(o *rendererOptions) {
		o.leftover = m
	}
}
