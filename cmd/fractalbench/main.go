// Command fractalbench measures render throughput.
//
// It fires a burst of zooms without waiting for any of them, so most bands
// arrive for superseded generations and are discarded, then waits for the
// final render and reports timings and discard counts. The final view is
// then computed once more without compositing as a baseline.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/fractal"
	"github.com/gogpu/fractal/internal/config"
)

func main() {
	var (
		configPath = flag.String("config", "", "JSON settings file")
		width      = flag.Int("width", 1920, "image width")
		height     = flag.Int("height", 1080, "image height")
		zooms      = flag.Int("zooms", 20, "zoom steps fired back to back")
		variant    = flag.String("variant", "", "fractal variant: mandelbrot, julia, newton3 or newton5")
		timeout    = flag.Duration("timeout", time.Minute, "give up waiting after this long")
	)
	flag.Parse()

	if err := run(*configPath, *variant, *width, *height, *zooms, *timeout); err != nil {
		fmt.Fprintln(os.Stderr, "fractalbench:", err)
		os.Exit(1)
	}
}

func run(configPath, variant string, width, height, zooms int, timeout time.Duration) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	fractal.SetLogger(logger)

	view, err := cfg.ViewState()
	if err != nil {
		return err
	}
	if variant != "" {
		v, err := fractal.ParseVariant(variant)
		if err != nil {
			return err
		}
		palette := view.Palette
		view = fractal.DefaultView()
		if v == fractal.Julia {
			view = fractal.DefaultJuliaView()
		}
		view.Variant = v
		view.Palette = palette
	}
	view.Width, view.Height = width, height

	opts, err := cfg.RendererOptions()
	if err != nil {
		return err
	}
	r := fractal.NewRenderer(opts...)
	defer r.Close()

	// Each generation completes at most once.
	zooms = max(zooms, 0)
	done := make(chan fractal.RenderStats, zooms+1)
	nav := fractal.NewNavigator(r, view)
	nav.OnRenderComplete(func(s fractal.RenderStats) {
		select {
		case done <- s:
		default:
		}
	})

	start := time.Now()
	last, err := nav.Refresh()
	if err != nil {
		return err
	}
	// Zoom towards a point left of the centre so successive views differ.
	fx, fy := float64(width)*0.4, float64(height)*0.5
	for i := 0; i < zooms; i++ {
		if last, err = nav.Zoom(fx, fy, -1); err != nil {
			return err
		}
	}

	deadline := time.After(timeout)
	var stats fractal.RenderStats
	for stats.Generation != last.Generation {
		select {
		case stats = <-done:
		case <-deadline:
			return fmt.Errorf("render %d did not complete within %v", last.Generation, timeout)
		}
	}
	total := time.Since(start)

	// The same final view computed without the coordinator.
	baseline, err := fractal.MeasureCompute(last.View, opts...)
	if err != nil {
		return err
	}

	counters := r.Stats()
	logger.Info("benchmark complete",
		"variant", view.Variant.String(),
		"workers", r.Workers(),
		"renders", counters.Renders,
		"completed", counters.Completed,
		"stale_bands", counters.StaleDiscarded,
		"failed_bands", counters.FailedBands,
		"queued_bands", counters.QueuedBands,
		"final_elapsed", stats.Elapsed,
		"compute_only", baseline.Elapsed,
		"total", total)

	p := message.NewPrinter(language.English)
	p.Printf("%s %dx%d: %d renders, final render %v (%.4f us/px, %d bands), %d stale bands discarded, total %v\n",
		view.Variant, width, height, counters.Renders, stats.Elapsed.Round(time.Microsecond),
		stats.MicrosPerPixel(), stats.Bands, counters.StaleDiscarded, total.Round(time.Millisecond))
	p.Printf("compute only: %v over %d bands\n", baseline.Elapsed.Round(time.Microsecond), baseline.Bands)
	return nil
}
