package fractal

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/cases"

	"github.com/gogpu/fractal/internal/kernel"
	"github.com/gogpu/fractal/internal/palette"
)

// Variant selects the per-pixel algorithm.
type Variant uint8

const (
	// Mandelbrot iterates z^2 + c with c taken from the pixel.
	Mandelbrot Variant = iota
	// Julia iterates z^2 + C with z taken from the pixel and C fixed.
	Julia
	// Newton3 runs Newton's method on z^3 - 1 and colours the basins.
	Newton3
	// Newton5 runs Newton's method on z^5 - 1 and colours the basins.
	Newton5
)

var variantNames = [...]string{
	Mandelbrot: "mandelbrot",
	Julia:      "julia",
	Newton3:    "newton3",
	Newton5:    "newton5",
}

// Variants lists all variants in declaration order.
func Variants() []Variant {
	return []Variant{Mandelbrot, Julia, Newton3, Newton5}
}

// String returns the variant name.
func (v Variant) String() string {
	if int(v) < len(variantNames) {
		return variantNames[v]
	}
	return fmt.Sprintf("Variant(%d)", v)
}

var variantFolder = cases.Fold()

// ParseVariant returns the variant with the given name, ignoring case.
func ParseVariant(s string) (Variant, error) {
	s = variantFolder.String(strings.TrimSpace(s))
	for i, name := range variantNames {
		if s == name {
			return Variant(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown variant %q", ErrInvalidConfiguration, s)
}

// kernel returns the per-pixel algorithm for the view.
func (v ViewState) kernel() (kernel.Kernel, error) {
	switch v.Variant {
	case Mandelbrot:
		return kernel.Mandelbrot{}, nil
	case Julia:
		return kernel.Julia{C: v.C}, nil
	case Newton3:
		return kernel.Newton3{}, nil
	case Newton5:
		return kernel.Newton5{}, nil
	}
	return nil, fmt.Errorf("%w: unknown variant %v", ErrInvalidConfiguration, v.Variant)
}

// ViewState describes what to render.
type ViewState struct {
	Variant Variant

	// CenterRe and CenterIm locate the middle of the image in the plane.
	CenterRe, CenterIm float64

	// Scale is the half-width of the view. The half-height is
	// Scale*Height/Width so pixels stay square.
	Scale float64

	// C is the Julia constant; other variants ignore it.
	C complex128

	MaxIter int
	Palette string

	Width, Height int
}

// DefaultView returns the initial Mandelbrot view.
func DefaultView() ViewState {
	return ViewState{
		Variant:  Mandelbrot,
		CenterRe: -0.75,
		CenterIm: 0,
		Scale:    1.3,
		C:        complex(-0.7588, 0.079),
		MaxIter:  100,
		Palette:  "gray",
		Width:    500,
		Height:   500,
	}
}

// DefaultJuliaView returns the initial view of the Julia explorer.
func DefaultJuliaView() ViewState {
	return ViewState{
		Variant:  Julia,
		CenterRe: 0,
		CenterIm: 0,
		Scale:    1.7,
		C:        complex(0.105, -0.645),
		MaxIter:  120,
		Palette:  "red2",
		Width:    500,
		Height:   500,
	}
}

// Bounds returns the plane rectangle covered by the view.
func (v ViewState) Bounds() (x1, x2, y1, y2 float64) {
	half := v.Scale * float64(v.Height) / float64(v.Width)
	return v.CenterRe - v.Scale, v.CenterRe + v.Scale, v.CenterIm - half, v.CenterIm + half
}

// ToWorld returns the plane coordinates under screen pixel (px, py).
func (v ViewState) ToWorld(px, py float64) (re, im float64) {
	x1, x2, y1, y2 := v.Bounds()
	re = (x2-x1)/float64(v.Width)*px + x1
	im = (y2-y1)/float64(v.Height)*py + y1
	return re, im
}

// plane returns the kernel mapping for the view.
func (v ViewState) plane() kernel.Plane {
	x1, x2, y1, y2 := v.Bounds()
	return kernel.Plane{Width: v.Width, Height: v.Height, X1: x1, X2: x2, Y1: y1, Y2: y2}
}

// Validate reports whether the view can be rendered.
func (v ViewState) Validate() error {
	if v.Width <= 0 || v.Height <= 0 {
		return fmt.Errorf("%w: image size %dx%d", ErrInvalidConfiguration, v.Width, v.Height)
	}
	if v.MaxIter <= 0 {
		return fmt.Errorf("%w: max iterations %d", ErrInvalidConfiguration, v.MaxIter)
	}
	if !(v.Scale > 0) || math.IsInf(v.Scale, 0) {
		return fmt.Errorf("%w: scale %g", ErrInvalidConfiguration, v.Scale)
	}
	if math.IsNaN(v.CenterRe) || math.IsNaN(v.CenterIm) {
		return fmt.Errorf("%w: center is NaN", ErrInvalidConfiguration)
	}
	if _, err := v.kernel(); err != nil {
		return err
	}
	if _, err := palette.Lookup(v.Palette); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	return v.plane().Validate()
}
