package kernel

import "math"

// root is a known zero of a Newton polynomial.
type root struct{ re, im float64 }

// match returns the 1-based index of the first root whose tolerance box
// contains (a, b), or 0.
func match(roots []root, a, b, tol float64) uint8 {
	for i, r := range roots {
		if a < r.re+tol && a > r.re-tol && b < r.im+tol && b > r.im-tol {
			return uint8(i + 1)
		}
	}
	return 0
}

// =============================================================================
// z^5 - 1
// =============================================================================

const newton5Tolerance = 1e-9

// The fifth roots of unity, counter-clockwise from 1.
var newton5Roots = []root{
	{1, 0},
	{0.309016994374947424102, 0.95105651629515357211},
	{-0.80901699437494742410, 0.58778525229247312916},
	{-0.80901699437494742410, -0.58778525229247312916},
	{0.309016994374947424102, -0.95105651629515357211},
}

// Newton5 runs Newton-Raphson on z^5 - 1 using the closed-form real and
// imaginary parts of z - (z^5-1)/(5z^4).
type Newton5 struct{}

// Roots implements Kernel.
func (Newton5) Roots() int { return len(newton5Roots) }

// Iterate implements Kernel.
func (Newton5) Iterate(a, b float64, nMax int) (int, uint8, bool) {
	n := 0
	for n < nMax {
		a2, b2 := a*a, b*b
		a3, b3 := a2*a, b2*b
		a4, b4 := a3*a, b3*b
		a5, b5 := a3*a2, b3*b2
		a6, b6 := a3*a3, b3*b3
		a8, b8 := a4*a4, b4*b4

		// 5|z|^8; zero only at the origin.
		denom := 5*a8 + 20*a6*b2 + 30*a4*b4 + 20*a2*b6 + 5*b8
		if denom == 0 {
			return n, 0, true
		}

		aNext := (a4-6*a2*b2-a*b8+b4-a8*a-4*a6*a*b2-6*a5*b4-4*a3*b6)/denom + a
		bNext := (-b8*b-4*a2*b6*b+4*a*b3-a8*b-4*a6*b3-6*a4*b5-4*a3*b)/denom + b
		a, b = aNext, bNext

		if k := match(newton5Roots, a, b, newton5Tolerance); k != 0 {
			return n, k, false
		}
		n++
	}
	return n, 0, false
}

// =============================================================================
// z^3 - 1
// =============================================================================

// newton3Tolerance is the half-width of the root boxes for z^3 - 1.
const newton3Tolerance = 1e-6

var sqrt3Half = math.Sqrt(3) / 2

var newton3Roots = []root{
	{1, 0},
	{-0.5, sqrt3Half},
	{-0.5, -sqrt3Half},
}

// Newton3 runs the generalised Newton step for z^3 - 1:
//
//	z <- z - 1/(k/(z-r1) + 1/(z-r2) + 1/(z-r3))
//
// with weight k on the first root. Every division is guarded; a zero
// denominator stops the pixel as non-convergent.
type Newton3 struct {
	// K weights the first root; the zero value uses 0.5.
	K complex128
}

// Roots implements Kernel.
func (Newton3) Roots() int { return len(newton3Roots) }

// Iterate implements Kernel.
func (nt Newton3) Iterate(a, b float64, nMax int) (int, uint8, bool) {
	c, d := real(nt.K), imag(nt.K)
	if nt.K == 0 {
		c = 0.5
	}
	g := sqrt3Half

	n := 0
	for n < nMax {
		a2, b2, g2 := a*a, b*b, g*g

		// Squared distances to (-1/2, -g), (-1/2, g) and (1, 0).
		d1 := (a2 + a + 0.25) + (b2 + 2*b*g + g2)
		d2 := (a2 + a + 0.25) + (b2 - 2*b*g + g2)
		d3 := (a2 - 2*a + 1) + b2
		if d1 == 0 || d2 == 0 || d3 == 0 {
			return n, 0, true
		}

		sumRe := (a+0.5)/d1 + (a+0.5)/d2 + (c*(a-1)+d*b)/d3
		sumIm := -(b+g)/d1 - (b-g)/d2 + (d*(a-1)-c*b)/d3

		denom := sumRe*sumRe + sumIm*sumIm
		if denom == 0 {
			return n, 0, true
		}

		a, b = a-sumRe/denom, b+sumIm/denom

		if k := match(newton3Roots, a, b, newton3Tolerance); k != 0 {
			return n, k, false
		}
		n++
	}
	return n, 0, false
}
