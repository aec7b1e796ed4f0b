package kernel

import "testing"

// =============================================================================
// Band Benchmarks
// =============================================================================

func benchPlane(w, h int) Plane {
	return Plane{Width: w, Height: h, X1: -2.05, X2: 0.55, Y1: -1.3, Y2: 1.3}
}

func benchmarkBand(b *testing.B, k Kernel, nMax int) {
	plane := benchPlane(500, 500)
	b.ReportAllocs()
	b.SetBytes(int64(plane.Width * 64))
	for i := 0; i < b.N; i++ {
		if _, err := ComputeBand(k, plane, 218, 64, nMax); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkComputeBand_Mandelbrot benchmarks a 500x64 band through the
// middle of the set.
func BenchmarkComputeBand_Mandelbrot(b *testing.B) {
	benchmarkBand(b, Mandelbrot{}, 100)
}

// BenchmarkComputeBand_Julia benchmarks a 500x64 band of the default Julia set.
func BenchmarkComputeBand_Julia(b *testing.B) {
	benchmarkBand(b, Julia{C: complex(0.105, -0.645)}, 120)
}

// BenchmarkComputeBand_Newton5 benchmarks a 500x64 band of z^5 - 1.
func BenchmarkComputeBand_Newton5(b *testing.B) {
	benchmarkBand(b, Newton5{}, 100)
}

// BenchmarkComputeBand_Newton3 benchmarks a 500x64 band of z^3 - 1.
func BenchmarkComputeBand_Newton3(b *testing.B) {
	benchmarkBand(b, Newton3{}, 100)
}

// =============================================================================
// Pixel Benchmarks
// =============================================================================

// BenchmarkMandelbrot_Interior benchmarks a point that runs to the cap.
func BenchmarkMandelbrot_Interior(b *testing.B) {
	k := Mandelbrot{}
	for i := 0; i < b.N; i++ {
		_, _, _ = k.Iterate(-0.75, 0, 1000)
	}
}

// BenchmarkNormalize benchmarks intensity scaling.
func BenchmarkNormalize(b *testing.B) {
	var sink byte
	for i := 0; i < b.N; i++ {
		sink += Normalize(i%101, 100)
	}
	_ = sink
}
