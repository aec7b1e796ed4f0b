package fractal

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Present scales the composited buffer into dst, filling dst's bounds.
// A nil scaler uses nearest-neighbour, which keeps hard palette edges;
// pass xdraw.ApproxBiLinear or xdraw.CatmullRom for smoother output.
func Present(dst xdraw.Image, r *Renderer, scaler xdraw.Scaler) {
	if scaler == nil {
		scaler = xdraw.NearestNeighbor
	}
	r.ReadPixels(func(p *PixelBuffer) {
		if p.width == 0 || p.height == 0 {
			return
		}
		src := &image.RGBA{Pix: p.data, Stride: p.Stride(), Rect: p.Bounds()}
		scaler.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	})
}
