// Package kernel implements the per-pixel fractal algorithms and the
// band computation that runs them over a horizontal slice of the image.
//
// A kernel is a pure function of its inputs: computing a band reads no
// shared state and writes only the band's own buffers, so bands can be
// computed in parallel without synchronisation.
package kernel

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfiguration reports non-positive extents, a non-positive
// iteration limit, or an unknown variant or palette.
var ErrInvalidConfiguration = errors.New("fractal: invalid configuration")

// Kernel computes one pixel.
type Kernel interface {
	// Iterate runs the iteration for the plane point (re, im) for at most
	// nMax steps. It returns the step count n, the 1-based index of the
	// root reached (0 if none), and whether a zero-denominator guard
	// stopped the iteration.
	Iterate(re, im float64, nMax int) (n int, root uint8, guard bool)

	// Roots returns the number of known roots; 0 for escape-time kernels.
	Roots() int
}

// Plane maps screen pixels to the complex plane.
// Each axis is an independent linear interpolation:
// [0, Width) -> [X1, X2] and [0, Height) -> [Y1, Y2].
type Plane struct {
	Width, Height int
	X1, X2        float64
	Y1, Y2        float64
}

// Point returns the plane coordinates of pixel (x, y).
func (p Plane) Point(x, y int) (re, im float64) {
	re = (p.X2-p.X1)/float64(p.Width)*float64(x) + p.X1
	im = (p.Y2-p.Y1)/float64(p.Height)*float64(y) + p.Y1
	return re, im
}

// Validate checks that the plane has positive extents.
func (p Plane) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("%w: image extents %dx%d", ErrInvalidConfiguration, p.Width, p.Height)
	}
	if !(p.X2 > p.X1) || !(p.Y2 > p.Y1) {
		return fmt.Errorf("%w: degenerate plane bounds [%g,%g]x[%g,%g]",
			ErrInvalidConfiguration, p.X1, p.X2, p.Y1, p.Y2)
	}
	return nil
}

// Band is the output of one compute task.
//
// Intensity and Roots both have length Width*Rows. Roots is nil for
// escape-time kernels; otherwise each entry is 0 (unclassified) or the
// 1-based root index.
type Band struct {
	Offset int
	Rows   int
	Width  int

	Intensity []byte
	Roots     []byte

	// GuardHits counts pixels stopped by a zero-denominator guard.
	GuardHits int
}

// Normalize scales an iteration count to a byte: round(n/nMax*255).
func Normalize(n, nMax int) byte {
	v := math.Round(float64(n) / float64(nMax) * 255)
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(v)
}

// ComputeBand runs k over rows [offset, offset+rows) of the plane.
func ComputeBand(k Kernel, plane Plane, offset, rows, nMax int) (*Band, error) {
	if k == nil {
		return nil, fmt.Errorf("%w: nil kernel", ErrInvalidConfiguration)
	}
	if nMax <= 0 {
		return nil, fmt.Errorf("%w: max iterations %d", ErrInvalidConfiguration, nMax)
	}
	if err := plane.Validate(); err != nil {
		return nil, err
	}
	if rows <= 0 || offset < 0 || offset+rows > plane.Height {
		return nil, fmt.Errorf("%w: band rows [%d,%d) outside image height %d",
			ErrInvalidConfiguration, offset, offset+rows, plane.Height)
	}

	width := plane.Width
	b := &Band{
		Offset:    offset,
		Rows:      rows,
		Width:     width,
		Intensity: make([]byte, width*rows),
	}
	if k.Roots() > 0 {
		b.Roots = make([]byte, width*rows)
	}

	for y := offset; y < offset+rows; y++ {
		row := (y - offset) * width
		for x := 0; x < width; x++ {
			re, im := plane.Point(x, y)
			n, root, guard := k.Iterate(re, im, nMax)

			idx := row + x
			b.Intensity[idx] = Normalize(n, nMax)
			if b.Roots != nil {
				b.Roots[idx] = root
			}
			if guard {
				b.GuardHits++
			}
		}
	}
	return b, nil
}
