package fractal

import (
	"fmt"
	"sync"
)

// Direction is a pan direction in screen space.
type Direction uint8

const (
	Left Direction = iota
	Right
	Up
	Down
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return fmt.Sprintf("Direction(%d)", d)
	}
}

const (
	// zoomPerStep is the scale change per unit of raw zoom delta.
	zoomPerStep = 0.1
	minZoom     = 0.1
	maxZoom     = 2.0

	// panDivisions is the number of pan steps across the view width.
	panDivisions = 20
)

// Navigator owns the mutable view and turns gestures into renders.
// It is the interface the display layer drives.
type Navigator struct {
	r *Renderer

	mu   sync.Mutex
	view ViewState
}

// NewNavigator creates a navigator over r starting at view.
// Nothing is rendered until SetView, Zoom, Pan, Resize or Refresh is called.
func NewNavigator(r *Renderer, view ViewState) *Navigator {
	return &Navigator{r: r, view: view}
}

// Renderer returns the renderer driven by the navigator.
func (n *Navigator) Renderer() *Renderer {
	return n.r
}

// View returns a copy of the current view.
func (n *Navigator) View() ViewState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.view
}

// SetView replaces the view and renders it. An invalid view is rejected
// and the previous view is kept.
func (n *Navigator) SetView(view ViewState) (RenderRequest, error) {
	if err := view.Validate(); err != nil {
		return RenderRequest{}, err
	}
	return n.update(func(v *ViewState) { *v = view })
}

// Refresh renders the current view again.
func (n *Navigator) Refresh() (RenderRequest, error) {
	return n.update(func(*ViewState) {})
}

// Zoom rescales the view around screen pixel (fx, fy). The plane point
// under that pixel stays under it. Negative delta zooms in, positive zooms
// out; the scale factor 1 + 0.1*delta is clamped to [0.1, 2].
func (n *Navigator) Zoom(fx, fy, delta float64) (RenderRequest, error) {
	return n.update(func(v *ViewState) {
		*v = zoomed(*v, fx, fy, delta)
	})
}

// zoomed returns v rescaled around the focal pixel.
func zoomed(v ViewState, fx, fy, delta float64) ViewState {
	x1, _, y1, _ := v.Bounds()
	xWorld, yWorld := v.ToWorld(fx, fy)

	s := min(max(1+delta*zoomPerStep, minZoom), maxZoom)
	v.Scale *= s

	// The focal point sits at the same fraction of the new, s-times
	// larger rectangle.
	nx1 := x1 + (1-s)*(xWorld-x1)
	ny1 := y1 + (1-s)*(yWorld-y1)

	v.CenterRe = nx1 + v.Scale
	v.CenterIm = ny1 + v.Scale*float64(v.Height)/float64(v.Width)
	return v
}

// Pan shifts the view by one twentieth of its width.
func (n *Navigator) Pan(dir Direction) (RenderRequest, error) {
	if dir > Down {
		return RenderRequest{}, fmt.Errorf("%w: pan direction %v", ErrInvalidConfiguration, dir)
	}
	return n.update(func(v *ViewState) {
		x1, x2, _, _ := v.Bounds()
		step := (x2 - x1) / panDivisions
		switch dir {
		case Left:
			v.CenterRe -= step
		case Right:
			v.CenterRe += step
		case Up:
			v.CenterIm -= step
		case Down:
			v.CenterIm += step
		}
	})
}

// Resize changes the image size. Sizes of 1 or less in either dimension
// are ignored and the current view is rendered unchanged.
func (n *Navigator) Resize(width, height int) (RenderRequest, error) {
	return n.update(func(v *ViewState) {
		if width > 1 && height > 1 {
			v.Width = width
			v.Height = height
		}
	})
}

// OnRenderComplete registers cb with the renderer.
func (n *Navigator) OnRenderComplete(cb func(RenderStats)) {
	n.r.OnRenderComplete(cb)
}

// update applies fn to a copy of the view and renders it. The view is
// only committed when the render is accepted.
func (n *Navigator) update(fn func(*ViewState)) (RenderRequest, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	next := n.view
	fn(&next)

	req, err := n.r.Render(next)
	if err != nil {
		return RenderRequest{}, err
	}
	n.view = next
	return req, nil
}
