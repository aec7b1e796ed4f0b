package kernel

import (
	"errors"
	"math"
	"testing"
)

// =============================================================================
// Plane Tests
// =============================================================================

func TestPlane_Point(t *testing.T) {
	p := Plane{Width: 4, Height: 2, X1: -2, X2: 2, Y1: -1, Y2: 1}

	tests := []struct {
		x, y   int
		re, im float64
	}{
		{0, 0, -2, -1},
		{2, 1, 0, 0},
		{3, 1, 1, 0},
		{4, 2, 2, 1}, // one past the last pixel reaches the far bound
	}
	for _, tt := range tests {
		re, im := p.Point(tt.x, tt.y)
		if re != tt.re || im != tt.im {
			t.Errorf("Point(%d, %d) = (%v, %v), want (%v, %v)", tt.x, tt.y, re, im, tt.re, tt.im)
		}
	}
}

func TestPlane_Validate(t *testing.T) {
	tests := []struct {
		name  string
		plane Plane
		ok    bool
	}{
		{"valid", Plane{Width: 10, Height: 10, X1: -1, X2: 1, Y1: -1, Y2: 1}, true},
		{"zero width", Plane{Width: 0, Height: 10, X1: -1, X2: 1, Y1: -1, Y2: 1}, false},
		{"negative height", Plane{Width: 10, Height: -1, X1: -1, X2: 1, Y1: -1, Y2: 1}, false},
		{"collapsed x", Plane{Width: 10, Height: 10, X1: 1, X2: 1, Y1: -1, Y2: 1}, false},
		{"NaN bounds", Plane{Width: 10, Height: 10, X1: math.NaN(), X2: 1, Y1: -1, Y2: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.plane.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("Validate() = %v, want ErrInvalidConfiguration", err)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		n, nMax int
		want    byte
	}{
		{0, 100, 0},
		{100, 100, 255},
		{50, 100, 128}, // 127.5 rounds up
		{1, 3, 85},
		{2, 3, 170},
	}
	for _, tt := range tests {
		if got := Normalize(tt.n, tt.nMax); got != tt.want {
			t.Errorf("Normalize(%d, %d) = %d, want %d", tt.n, tt.nMax, got, tt.want)
		}
	}
}

// =============================================================================
// Escape-time Kernels
// =============================================================================

func TestMandelbrot_CardioidNeverEscapes(t *testing.T) {
	n, root, guard := Mandelbrot{}.Iterate(-0.75, 0, 100)
	if n != 100 {
		t.Errorf("n = %d, want 100", n)
	}
	if root != 0 || guard {
		t.Errorf("root, guard = %d, %v, want 0, false", root, guard)
	}
	if Normalize(n, 100) != 255 {
		t.Errorf("intensity = %d, want 255", Normalize(n, 100))
	}
}

func TestMandelbrot_Escapes(t *testing.T) {
	// 0 -> 1+i (|z|^2 = 2) -> 1+3i (|z|^2 = 10)
	n, _, _ := Mandelbrot{}.Iterate(1, 1, 100)
	if n != 2 {
		t.Errorf("n = %d, want 2", n)
	}
}

func TestJulia(t *testing.T) {
	tests := []struct {
		name   string
		c      complex128
		re, im float64
		want   int
	}{
		{"inside disc", 0, 0.5, 0, 50},
		{"on the escape radius", 0, 2, 0, 0},
		{"escapes after one step", 0, 1.5, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, _, _ := Julia{C: tt.c}.Iterate(tt.re, tt.im, 50)
			if n != tt.want {
				t.Errorf("n = %d, want %d", n, tt.want)
			}
		})
	}
}

// =============================================================================
// Newton Kernels
// =============================================================================

func TestNewton5_ConvergesNearRoot(t *testing.T) {
	for i, r := range newton5Roots {
		n, root, guard := Newton5{}.Iterate(r.re+1e-10, r.im-1e-10, 50)
		if guard {
			t.Fatalf("root %d: guard triggered", i+1)
		}
		if int(root) != i+1 {
			t.Errorf("root = %d, want %d", root, i+1)
		}
		if n > 3 {
			t.Errorf("root %d: n = %d, want <= 3", i+1, n)
		}
	}
}

func TestNewton5_RootTwo(t *testing.T) {
	n, root, _ := Newton5{}.Iterate(0.309016994374947424102+5e-10, 0.95105651629515357211, 100)
	if root != 2 {
		t.Errorf("root = %d, want 2", root)
	}
	if n > 3 {
		t.Errorf("n = %d, want <= 3", n)
	}
}

func TestNewton5_OriginGuard(t *testing.T) {
	n, root, guard := Newton5{}.Iterate(0, 0, 100)
	if !guard {
		t.Error("guard = false, want true at the origin")
	}
	if root != 0 || n != 0 {
		t.Errorf("n, root = %d, %d, want 0, 0", n, root)
	}
}

func TestNewton5_ConvergesFromAfar(t *testing.T) {
	// A point on the positive real axis falls into root 1.
	_, root, _ := Newton5{}.Iterate(3, 0, 100)
	if root != 1 {
		t.Errorf("root = %d, want 1", root)
	}
}

func TestNewton3_ConvergesNearRoot(t *testing.T) {
	n, root, guard := Newton3{}.Iterate(-0.5, sqrt3Half+1e-4, 100)
	if guard {
		t.Fatal("guard triggered")
	}
	if root != 2 {
		t.Errorf("root = %d, want 2", root)
	}
	if n > 5 {
		t.Errorf("n = %d, want <= 5", n)
	}
}

func TestNewton3_ZeroDenominatorGuard(t *testing.T) {
	// Exactly on root 1 the reciprocal term has a zero denominator.
	n, root, guard := Newton3{}.Iterate(1, 0, 100)
	if !guard {
		t.Error("guard = false, want true")
	}
	if root != 0 || n != 0 {
		t.Errorf("n, root = %d, %d, want 0, 0", n, root)
	}
}

func TestNewton_RootIndexBounded(t *testing.T) {
	kernels := []Kernel{Newton5{}, Newton3{}}
	for _, k := range kernels {
		for y := -20; y <= 20; y++ {
			for x := -20; x <= 20; x++ {
				n, root, _ := k.Iterate(float64(x)/10, float64(y)/10, 60)
				if int(root) > k.Roots() {
					t.Fatalf("%T: root %d > %d", k, root, k.Roots())
				}
				if n < 0 || n > 60 {
					t.Fatalf("%T: n = %d out of range", k, n)
				}
			}
		}
	}
}

// =============================================================================
// ComputeBand Tests
// =============================================================================

func TestComputeBand_Mandelbrot(t *testing.T) {
	plane := Plane{Width: 4, Height: 2, X1: -2, X2: 1, Y1: -1, Y2: 1}
	b, err := ComputeBand(Mandelbrot{}, plane, 0, 2, 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Intensity) != 8 {
		t.Errorf("len(Intensity) = %d, want 8", len(b.Intensity))
	}
	if b.Roots != nil {
		t.Error("escape-time band should have no root buffer")
	}
	if b.Offset != 0 || b.Rows != 2 || b.Width != 4 {
		t.Errorf("band = (%d, %d, %d), want (0, 2, 4)", b.Offset, b.Rows, b.Width)
	}
}

func TestComputeBand_OffsetRows(t *testing.T) {
	plane := Plane{Width: 8, Height: 8, X1: -2, X2: 2, Y1: -2, Y2: 2}
	full, err := ComputeBand(Newton5{}, plane, 0, 8, 40)
	if err != nil {
		t.Fatal(err)
	}
	part, err := ComputeBand(Newton5{}, plane, 3, 2, 40)
	if err != nil {
		t.Fatal(err)
	}

	if len(part.Roots) != 16 {
		t.Fatalf("len(Roots) = %d, want 16", len(part.Roots))
	}
	for i := range part.Intensity {
		j := 3*8 + i
		if part.Intensity[i] != full.Intensity[j] || part.Roots[i] != full.Roots[j] {
			t.Fatalf("pixel %d differs from the full-image band", i)
		}
	}
}

func TestComputeBand_GuardCounted(t *testing.T) {
	// Pixel (1, 1) of a 2x2 plane over [-1,1]^2 is the origin.
	plane := Plane{Width: 2, Height: 2, X1: -1, X2: 1, Y1: -1, Y2: 1}
	b, err := ComputeBand(Newton5{}, plane, 0, 2, 10)
	if err != nil {
		t.Fatal(err)
	}
	if b.GuardHits != 1 {
		t.Errorf("GuardHits = %d, want 1", b.GuardHits)
	}
	if b.Roots[3] != 0 {
		t.Errorf("guarded pixel root = %d, want 0", b.Roots[3])
	}
}

func TestComputeBand_Invalid(t *testing.T) {
	plane := Plane{Width: 4, Height: 4, X1: -1, X2: 1, Y1: -1, Y2: 1}

	tests := []struct {
		name         string
		k            Kernel
		plane        Plane
		offset, rows int
		nMax         int
	}{
		{"zero nMax", Mandelbrot{}, plane, 0, 4, 0},
		{"negative nMax", Mandelbrot{}, plane, 0, 4, -5},
		{"nil kernel", nil, plane, 0, 4, 10},
		{"band past height", Mandelbrot{}, plane, 2, 3, 10},
		{"empty band", Mandelbrot{}, plane, 0, 0, 10},
		{"degenerate plane", Mandelbrot{}, Plane{Width: 0, Height: 4, X1: -1, X2: 1, Y1: -1, Y2: 1}, 0, 4, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeBand(tt.k, tt.plane, tt.offset, tt.rows, tt.nMax)
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("error = %v, want ErrInvalidConfiguration", err)
			}
		})
	}
}
