// Package capture produces RGB pixel buffers from windows and monitors.
package capture

import (
	"fmt"
	"image"
	"image/color"
)

// PixelBuffer is a Height x Width x 3 array of 8-bit RGB samples in row-major order.
// It is never modified after it has been returned to a caller.
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []byte
}

// At returns the RGB sample at (x, y).
func (b *PixelBuffer) At(x, y int) (r, g, bl uint8) {
	i := (y*b.Width + x) * 3
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2]
}

// Bounds returns the buffer rectangle anchored at the origin.
func (b *PixelBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// RGBA converts the buffer to an opaque *image.RGBA.
func (b *PixelBuffer) RGBA() *image.RGBA {
	img := image.NewRGBA(b.Bounds())
	src, dst := 0, 0
	for n := b.Width * b.Height; n > 0; n-- {
		img.Pix[dst], img.Pix[dst+1], img.Pix[dst+2], img.Pix[dst+3] = b.Pix[src], b.Pix[src+1], b.Pix[src+2], 0xFF
		src += 3
		dst += 4
	}
	return img
}

// FromImage copies any image into a new buffer, discarding alpha.
func FromImage(img image.Image) *PixelBuffer {
	r := img.Bounds()
	buf := &PixelBuffer{Width: r.Dx(), Height: r.Dy(), Pix: make([]byte, r.Dx()*r.Dy()*3)}
	i := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2] = c.R, c.G, c.B
			i += 3
		}
	}
	return buf
}

// fromBGRX converts a top-down 32 bpp BI_RGB scanline dump: the padding byte is
// dropped and blue/red are swapped.
func fromBGRX(width, height int, bgrx []byte) (*PixelBuffer, error) {
	if len(bgrx) < width*height*4 {
		return nil, fmt.Errorf("bitmap data too short: got %d bytes for %dx%d", len(bgrx), width, height)
	}
	buf := &PixelBuffer{Width: width, Height: height, Pix: make([]byte, width*height*3)}
	src, dst := 0, 0
	for n := width * height; n > 0; n-- {
		buf.Pix[dst], buf.Pix[dst+1], buf.Pix[dst+2] = bgrx[src+2], bgrx[src+1], bgrx[src]
		src += 4
		dst += 3
	}
	return buf, nil
}
