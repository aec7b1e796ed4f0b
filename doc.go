// Package fractal renders escape-time and root-finding fractals into an
// RGBA raster, recomputing on every pan and zoom.
//
// # Overview
//
// Four variants are supported: the Mandelbrot set, Julia sets, and the
// Newton basins of z^3-1 and z^5-1. A render splits the image into at most
// 16 horizontal bands, computes them in parallel, maps the per-pixel
// iteration counts through a 256-entry palette and composites the bands
// into a PixelBuffer as they arrive.
//
// # Quick Start
//
//	r := fractal.NewRenderer()
//	defer r.Close()
//
//	nav := fractal.NewNavigator(r, fractal.DefaultView())
//	nav.OnRenderComplete(func(s fractal.RenderStats) {
//	    img := r.Snapshot()
//	    // show img
//	})
//	nav.Refresh()
//	nav.Zoom(250, 250, -2) // zoom in around the centre
//
// # Cancellation
//
// Every render gets a strictly increasing generation id. Band results
// carry the id they were dispatched with, and the coordinator drops any
// result whose id is not the latest. Superseded bands are not interrupted;
// their work is simply discarded when it arrives, so rapid zooming never
// mixes bands from different views in the buffer.
//
// # Architecture
//
// The library is organized into:
//   - Public API: ViewState, Renderer, Navigator, Explorer, Present
//   - internal/kernel: per-pixel algorithms and band computation
//   - internal/palette: the named colour ramps
//   - internal/parallel: band planning and the worker pool
//   - internal/config: JSON configuration and bookmarks for the commands
//
// # Logging
//
// Nothing is logged by default. Use SetLogger to install a log/slog logger.
package fractal
