// Command fractalterm is an interactive fractal viewer for the terminal.
//
// Each character cell shows two pixels using the upper half block, so a
// true-colour terminal is recommended.
//
// Keys:
//
//	arrows   pan
//	+ -      zoom in/out at the centre
//	wheel    zoom at the pointer
//	v        next variant
//	p        next palette
//	j        toggle the Julia explorer (pointer picks the constant)
//	b        save a bookmark
//	n        show the next saved bookmark
//	r        render again
//	q, Esc   quit
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gdamore/tcell/v2"

	"github.com/gogpu/fractal"
	"github.com/gogpu/fractal/internal/config"
)

func main() {
	var (
		configPath  = flag.String("config", "", "JSON settings file; bookmarks are saved here")
		variant     = flag.String("variant", "", "fractal variant: mandelbrot, julia, newton3 or newton5")
		paletteName = flag.String("palette", "", "palette name")
		bookmark    = flag.String("bookmark", "", "start from this saved bookmark")
		list        = flag.Bool("bookmarks", false, "list saved bookmarks and exit")
		logPath     = flag.String("log", "", "write logs to this file")
		supersample = flag.Int("supersample", 2, "rendered pixels per displayed pixel along each axis")
	)
	flag.Parse()

	var err error
	if *list {
		err = listBookmarks(os.Stdout, bookmarkFile(*configPath))
	} else {
		err = run(*configPath, *variant, *paletteName, *bookmark, *logPath, *supersample)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "fractalterm:", err)
		os.Exit(1)
	}
}

// bookmarkFile returns the file bookmarks are kept in.
func bookmarkFile(configPath string) string {
	if configPath == "" {
		return "fractal.json"
	}
	return configPath
}

func listBookmarks(w io.Writer, path string) error {
	names, err := config.Bookmarks(path)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(w, name)
	}
	return nil
}

// startView resolves the first view: the configured view, replaced by a
// bookmark if one is named, then the variant and palette flags.
func startView(cfg config.Config, bookmarks, bookmark, variant, paletteName string) (fractal.ViewState, error) {
	view, err := cfg.ViewState()
	if err != nil {
		return fractal.ViewState{}, err
	}
	if bookmark != "" {
		width, height := view.Width, view.Height
		if view, err = config.LoadBookmark(bookmarks, bookmark); err != nil {
			return fractal.ViewState{}, err
		}
		view.Width, view.Height = width, height
	}
	if variant != "" {
		v, err := fractal.ParseVariant(variant)
		if err != nil {
			return fractal.ViewState{}, err
		}
		pal := view.Palette
		view = defaultsFor(v, view.Width, view.Height)
		view.Palette = pal
	}
	if paletteName != "" {
		view.Palette = paletteName
	}
	if err := view.Validate(); err != nil {
		return fractal.ViewState{}, err
	}
	return view, nil
}

func run(configPath, variant, paletteName, bookmark, logPath string, supersample int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	bookmarks := bookmarkFile(configPath)
	view, err := startView(cfg, bookmarks, bookmark, variant, paletteName)
	if err != nil {
		return err
	}

	if logPath != "" {
		level, err := cfg.SlogLevel()
		if err != nil {
			return err
		}
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		fractal.SetLogger(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})))
		defer fractal.SetLogger(nil)
	}

	opts, err := cfg.RendererOptions()
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.HideCursor()

	v := newViewer(screen, view, opts, max(supersample, 1), bookmarks)
	defer v.close()
	return v.run()
}

// defaultsFor returns the start view of variant at the given size.
func defaultsFor(v fractal.Variant, width, height int) fractal.ViewState {
	view := fractal.DefaultView()
	if v == fractal.Julia {
		view = fractal.DefaultJuliaView()
	}
	view.Variant = v
	view.Width = width
	view.Height = height
	return view
}
