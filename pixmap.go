package fractal

import (
	"image"
	"image/color"
)

// PixelBuffer is the composited RGBA raster.
//
// The Renderer is the only writer. Display code reads it through
// Renderer.ReadPixels or Renderer.Snapshot, which hold the renderer's read
// lock so a band is never observed half written.
type PixelBuffer struct {
	width  int
	height int
	data   []uint8 // RGBA, 4 bytes per pixel, row-major
}

// NewPixelBuffer creates a transparent buffer with the given dimensions.
func NewPixelBuffer(width, height int) *PixelBuffer {
	return &PixelBuffer{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*4),
	}
}

// Width returns the width of the buffer.
func (p *PixelBuffer) Width() int {
	return p.width
}

// Height returns the height of the buffer.
func (p *PixelBuffer) Height() int {
	return p.height
}

// Pix returns the raw RGBA bytes. Callers must not modify them.
func (p *PixelBuffer) Pix() []uint8 {
	return p.data
}

// Stride returns the number of bytes per row.
func (p *PixelBuffer) Stride() int {
	return p.width * 4
}

// RGBAAt returns the colour of a pixel; out-of-range pixels are transparent.
func (p *PixelBuffer) RGBAAt(x, y int) color.RGBA {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return color.RGBA{}
	}
	i := (y*p.width + x) * 4
	return color.RGBA{R: p.data[i], G: p.data[i+1], B: p.data[i+2], A: p.data[i+3]}
}

// row returns the writable bytes of row y.
func (p *PixelBuffer) row(y int) []uint8 {
	start := y * p.width * 4
	return p.data[start : start+p.width*4]
}

// ToImage copies the buffer into a new image.RGBA.
func (p *PixelBuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	copy(img.Pix, p.data)
	return img
}

// At implements the image.Image interface.
func (p *PixelBuffer) At(x, y int) color.Color {
	return p.RGBAAt(x, y)
}

// Bounds implements the image.Image interface.
func (p *PixelBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.width, p.height)
}

// ColorModel implements the image.Image interface.
func (p *PixelBuffer) ColorModel() color.Model {
	return color.RGBAModel
}
