package kernel

// escapeRadius2 is the squared escape radius (|z| >= 2 diverges).
const escapeRadius2 = 4

// Mandelbrot iterates z <- z^2 + c from z = 0, where c is the pixel.
type Mandelbrot struct{}

// Iterate implements Kernel.
func (Mandelbrot) Iterate(cRe, cIm float64, nMax int) (int, uint8, bool) {
	return escape(0, 0, cRe, cIm, nMax), 0, false
}

// Roots implements Kernel.
func (Mandelbrot) Roots() int { return 0 }

// Julia iterates z <- z^2 + C from z = pixel, with C fixed.
type Julia struct {
	C complex128
}

// Iterate implements Kernel.
func (j Julia) Iterate(re, im float64, nMax int) (int, uint8, bool) {
	return escape(re, im, real(j.C), imag(j.C), nMax), 0, false
}

// Roots implements Kernel.
func (Julia) Roots() int { return 0 }

// escape returns the number of steps before |z|^2 reaches 4, capped at nMax.
func escape(re, im, cRe, cIm float64, nMax int) int {
	n := 0
	for re*re+im*im < escapeRadius2 && n < nMax {
		re, im = re*re-im*im+cRe, 2*re*im+cIm
		n++
	}
	return n
}
