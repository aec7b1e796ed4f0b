package main

import (
	"image"
	"image/color"
	"slices"
	"time"

	"github.com/gdamore/tcell/v2"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/fractal"
	"github.com/gogpu/fractal/internal/config"
	"github.com/gogpu/fractal/internal/palette"
)

const (
	halfBlock     = '▀'
	frameInterval = 40 * time.Millisecond
)

// pane is a rectangle of the screen showing one navigator.
type pane struct {
	nav  *fractal.Navigator
	left int // first column
	cols int
	rows int
	img  *image.RGBA // cols x 2*rows display pixels
}

// renderDone is posted to the event loop when a pane's render completes.
type renderDone struct {
	pane  *pane
	stats fractal.RenderStats
}

type viewer struct {
	screen    tcell.Screen
	opts      []fractal.Option
	ss        int
	bookmarks string
	bookmark  string // last bookmark shown with n
	printer   *message.Printer

	main     *pane
	julia    *pane
	explorer *fractal.Explorer

	stats  fractal.RenderStats
	notice string
}

func newViewer(screen tcell.Screen, view fractal.ViewState, opts []fractal.Option, ss int, bookmarks string) *viewer {
	v := &viewer{
		screen:    screen,
		opts:      opts,
		ss:        ss,
		bookmarks: bookmarks,
		printer:   message.NewPrinter(language.English),
	}
	v.main = v.newPane(view)
	return v
}

func (v *viewer) newPane(view fractal.ViewState) *pane {
	p := &pane{nav: fractal.NewNavigator(fractal.NewRenderer(v.opts...), view)}
	p.nav.OnRenderComplete(func(s fractal.RenderStats) {
		// Runs on the renderer's coordinator; hand off to the event loop.
		_ = v.screen.PostEvent(tcell.NewEventInterrupt(renderDone{pane: p, stats: s}))
	})
	return p
}

func (v *viewer) close() {
	if v.julia != nil {
		v.julia.nav.Renderer().Close()
	}
	v.main.nav.Renderer().Close()
}

func (v *viewer) run() error {
	stop := make(chan struct{})
	defer close(stop)
	go v.tick(stop)

	v.layout()
	for {
		ev := v.screen.PollEvent()
		if ev == nil {
			return nil
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			v.screen.Sync()
			v.layout()
		case *tcell.EventInterrupt:
			v.interrupt(ev.Data())
		case *tcell.EventKey:
			if v.key(ev) {
				return nil
			}
		case *tcell.EventMouse:
			v.mouse(ev)
		}
	}
}

type redraw struct{}

// tick asks the event loop to draw newly composited bands while renders
// are in flight.
func (v *viewer) tick(stop <-chan struct{}) {
	t := time.NewTicker(frameInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			_ = v.screen.PostEvent(tcell.NewEventInterrupt(redraw{}))
		case <-stop:
			return
		}
	}
}

func (v *viewer) interrupt(data any) {
	switch d := data.(type) {
	case redraw:
		drawn := v.drawDirty(v.main)
		if v.julia != nil && v.drawDirty(v.julia) {
			drawn = true
		}
		if drawn {
			v.screen.Show()
		}
	case renderDone:
		if d.pane != v.main && d.pane != v.julia {
			return
		}
		if d.pane == v.main {
			v.stats = d.stats
		}
		v.drawDirty(d.pane)
		v.drawStatus()
		v.screen.Show()
	}
}

// layout sizes the panes to the terminal and renders them again.
func (v *viewer) layout() {
	cols, rows := v.screen.Size()
	rows-- // status line
	if cols < 2 || rows < 1 {
		return
	}
	v.screen.Clear()

	panes := []*pane{v.main}
	if v.julia != nil {
		panes = append(panes, v.julia)
	}
	width := cols / len(panes)
	for i, p := range panes {
		p.left = i * width
		p.cols = width
		if i == len(panes)-1 {
			p.cols = cols - p.left
		}
		p.rows = rows
		p.img = image.NewRGBA(image.Rect(0, 0, p.cols, 2*p.rows))
		v.report(p.nav.Resize(p.cols*v.ss, 2*p.rows*v.ss))
	}
	v.drawStatus()
	v.screen.Show()
}

// drawDirty redraws the cell rows showing bands composited since the
// last call and reports whether anything was drawn.
func (v *viewer) drawDirty(p *pane) bool {
	if p.img == nil {
		return false
	}
	dirty := p.nav.Renderer().TakeDirty()
	if len(dirty) == 0 {
		return false
	}

	var scaler xdraw.Scaler = xdraw.NearestNeighbor
	if v.ss > 1 {
		scaler = xdraw.ApproxBiLinear
	}
	fractal.Present(p.img, p.nav.Renderer(), scaler)

	// Rendered rows map to cell rows through the supersample factor and the
	// two pixels per cell. Filtering may bleed into a neighbouring row.
	perCell := 2 * v.ss
	for _, r := range dirty {
		top := max(r.Min.Y/perCell-1, 0)
		bottom := min((r.Max.Y+perCell-1)/perCell+1, p.rows)
		v.drawRows(p, top, bottom)
	}
	return true
}

// drawRows copies cell rows [top, bottom) of the pane onto the screen.
func (v *viewer) drawRows(p *pane, top, bottom int) {
	for y := top; y < bottom; y++ {
		for x := 0; x < p.cols; x++ {
			upper := p.img.RGBAAt(x, 2*y)
			lower := p.img.RGBAAt(x, 2*y+1)
			style := tcell.StyleDefault.Foreground(tcellColor(upper)).Background(tcellColor(lower))
			v.screen.SetContent(p.left+x, y, halfBlock, nil, style)
		}
	}
}

func tcellColor(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func (v *viewer) drawStatus() {
	cols, rows := v.screen.Size()
	y := rows - 1
	view := v.main.nav.View()

	line := v.printer.Sprintf("%s | %s | gen %d | %d bands | %d px | %.3f us/px",
		view.Variant, view.Palette, v.stats.Generation, v.stats.Bands,
		v.stats.Pixels, v.stats.MicrosPerPixel())
	if v.stats.FailedBands > 0 {
		line += v.printer.Sprintf(" | %d failed", v.stats.FailedBands)
	}
	if v.notice != "" {
		line += " | " + v.notice
	}

	style := tcell.StyleDefault.Reverse(true)
	runes := []rune(line)
	for x := 0; x < cols; x++ {
		r := ' '
		if x < len(runes) {
			r = runes[x]
		}
		v.screen.SetContent(x, y, r, nil, style)
	}
}

// report shows err on the status line, if any.
func (v *viewer) report(_ fractal.RenderRequest, err error) {
	if err != nil {
		v.notice = err.Error()
		fractal.Logger().Warn("render rejected", "error", err)
	}
}

// key handles a key press and reports whether to quit.
func (v *viewer) key(ev *tcell.EventKey) bool {
	nav := v.main.nav
	v.notice = ""

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyLeft:
		v.report(nav.Pan(fractal.Left))
	case tcell.KeyRight:
		v.report(nav.Pan(fractal.Right))
	case tcell.KeyUp:
		v.report(nav.Pan(fractal.Up))
	case tcell.KeyDown:
		v.report(nav.Pan(fractal.Down))
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case '+', '=':
			v.zoomCentre(-2)
		case '-', '_':
			v.zoomCentre(2)
		case 'v':
			v.nextVariant()
		case 'p':
			v.nextPalette()
		case 'j':
			v.toggleExplorer()
		case 'b':
			v.saveBookmark()
		case 'n':
			v.showNextBookmark()
		case 'r':
			v.report(nav.Refresh())
		}
	}
	v.drawStatus()
	v.screen.Show()
	return false
}

func (v *viewer) zoomCentre(delta float64) {
	view := v.main.nav.View()
	v.report(v.main.nav.Zoom(float64(view.Width)/2, float64(view.Height)/2, delta))
}

func (v *viewer) nextVariant() {
	view := v.main.nav.View()
	all := fractal.Variants()
	next := all[(slices.Index(all, view.Variant)+1)%len(all)]
	v.report(v.main.nav.SetView(defaultsFor(next, view.Width, view.Height)))
}

func (v *viewer) nextPalette() {
	view := v.main.nav.View()
	names := palette.Names()
	i := slices.Index(names, palette.Normalize(view.Palette))
	view.Palette = names[(i+1)%len(names)]
	v.report(v.main.nav.SetView(view))
}

func (v *viewer) toggleExplorer() {
	if v.julia != nil {
		v.julia.nav.Renderer().Close()
		v.julia = nil
		v.explorer = nil
		v.layout()
		return
	}
	v.julia = v.newPane(fractal.DefaultJuliaView())
	v.explorer = fractal.NewExplorer(v.main.nav, v.julia.nav)
	v.layout()
}

func (v *viewer) saveBookmark() {
	name := time.Now().Format("20060102-150405")
	if err := config.SaveBookmark(v.bookmarks, name, v.main.nav.View()); err != nil {
		v.notice = err.Error()
		fractal.Logger().Warn("bookmark not saved", "path", v.bookmarks, "error", err)
		return
	}
	v.notice = "saved " + name
	fractal.Logger().Info("bookmark saved", "path", v.bookmarks, "name", name)
}

// showNextBookmark loads the bookmark after the one shown last, in name
// order, keeping the pane size.
func (v *viewer) showNextBookmark() {
	names, err := config.Bookmarks(v.bookmarks)
	if err != nil {
		v.notice = err.Error()
		return
	}
	name := nextBookmark(names, v.bookmark)
	if name == "" {
		v.notice = "no bookmarks"
		return
	}
	view, err := config.LoadBookmark(v.bookmarks, name)
	if err != nil {
		v.notice = err.Error()
		fractal.Logger().Warn("bookmark not loaded", "path", v.bookmarks, "name", name, "error", err)
		return
	}
	current := v.main.nav.View()
	view.Width, view.Height = current.Width, current.Height
	v.bookmark = name
	v.notice = name
	v.report(v.main.nav.SetView(view))
}

// nextBookmark returns the first name after current in sorted names,
// wrapping around, or "" if there are none.
func nextBookmark(names []string, current string) string {
	if len(names) == 0 {
		return ""
	}
	for _, name := range names {
		if name > current {
			return name
		}
	}
	return names[0]
}

func (v *viewer) mouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	p := v.main
	if x < p.left || x >= p.left+p.cols || y >= p.rows {
		return
	}
	// Centre of the upper half of the cell, in rendered pixels.
	px := (float64(x-p.left) + 0.5) * float64(v.ss)
	py := (float64(2*y) + 0.5) * float64(v.ss)

	switch btn := ev.Buttons(); {
	case btn&tcell.WheelUp != 0:
		v.report(p.nav.Zoom(px, py, -1))
	case btn&tcell.WheelDown != 0:
		v.report(p.nav.Zoom(px, py, 1))
	case v.explorer != nil:
		v.explorer.Track(px, py)
		if err := v.explorer.Err(); err != nil {
			v.notice = err.Error()
		}
	}
}
