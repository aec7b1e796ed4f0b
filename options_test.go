package fractal

import (
	"runtime"
	"testing"

	"github.com/gogpu/fractal/internal/parallel"
)

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if o.maxBands != parallel.MaxBands {
		t.Errorf("maxBands = %d, want %d", o.maxBands, parallel.MaxBands)
	}
	if o.budget != parallel.PixelsPerBand {
		t.Errorf("budget = %d, want %d", o.budget, parallel.PixelsPerBand)
	}
	if o.leftover != LeftoverSecondToLast {
		t.Errorf("leftover = %v, want %v", o.leftover, LeftoverSecondToLast)
	}
}

func TestWithMaxBands(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{1, 1},
		{8, 8},
		{16, 16},
		{0, parallel.MaxBands},
		{-3, parallel.MaxBands},
		{17, parallel.MaxBands},
	}
	for _, tt := range tests {
		o := defaultOptions()
		WithMaxBands(tt.in)(&o)
		if o.maxBands != tt.want {
			t.Errorf("WithMaxBands(%d) = %d, want %d", tt.in, o.maxBands, tt.want)
		}
	}
}

func TestWithBandBudget(t *testing.T) {
	o := defaultOptions()
	WithBandBudget(1000)(&o)
	if o.budget != 1000 {
		t.Errorf("budget = %d, want 1000", o.budget)
	}
	WithBandBudget(0)(&o)
	if o.budget != parallel.PixelsPerBand {
		t.Errorf("budget = %d, want default", o.budget)
	}
}

func TestWithWorkers(t *testing.T) {
	r := NewRenderer(WithWorkers(3))
	defer r.Close()
	if r.Workers() != 3 {
		t.Errorf("Workers() = %d, want 3", r.Workers())
	}

	d := NewRenderer()
	defer d.Close()
	if d.Workers() != runtime.GOMAXPROCS(0) {
		t.Errorf("default Workers() = %d, want GOMAXPROCS %d", d.Workers(), runtime.GOMAXPROCS(0))
	}
}

func TestWithLeftoverMode(t *testing.T) {
	r := NewRenderer(WithLeftoverMode(LeftoverLast), WithBandBudget(10), WithMaxBands(3))
	defer r.Close()
	done := completions(r)

	// 10x5 with a 10 pixel budget clamps to 3 bands of 1 row plus 2
	// leftover rows on the last band.
	req, err := r.Render(smallView(Mandelbrot, 10, 5))
	if err != nil {
		t.Fatal(err)
	}
	stats := waitGeneration(t, done, req.Generation)
	if stats.Bands != 3 {
		t.Errorf("Bands = %d, want 3", stats.Bands)
	}
}
