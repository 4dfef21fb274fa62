package geom

import (
	"image"

	"golang.org/x/image/draw"
)

// GrayImage is a read-only grayscale image view: 8-bit, row-major, no row
// padding, origin at top-left — the contract every detector in this module
// receives its source pixels through.
type GrayImage struct {
	Width, Height int
	Pixels        []uint8
}

// NewGrayImage wraps an existing row-major, unpadded pixel buffer.
func NewGrayImage(width, height int, pixels []uint8) *GrayImage {
	return &GrayImage{Width: width, Height: height, Pixels: pixels}
}

// NewBlankGrayImage allocates a zeroed width x height image.
func NewBlankGrayImage(width, height int) *GrayImage {
	return &GrayImage{Width: width, Height: height, Pixels: make([]uint8, width*height)}
}

// NewGrayImageFromImage converts an arbitrary image.Image into a GrayImage,
// using x/image/draw to do the color-to-gray conversion instead of a
// hand-rolled channel-averaging loop.
func NewGrayImageFromImage(src image.Image) *GrayImage {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	out := NewBlankGrayImage(w, h)
	if dst.Stride == w {
		copy(out.Pixels, dst.Pix[:w*h])
		return out
	}
	for y := 0; y < h; y++ {
		copy(out.Pixels[y*w:(y+1)*w], dst.Pix[y*dst.Stride:y*dst.Stride+w])
	}
	return out
}

// At returns the pixel value at integer coordinates (x, y) and whether
// those coordinates are in bounds.
func (g *GrayImage) At(x, y int) (uint8, bool) {
	if x < 0 || x >= g.Width || y < 0 || y >= g.Height {
		return 0, false
	}
	return g.Pixels[y*g.Width+x], true
}

// AtClamped returns the pixel value at (x, y), clamping out-of-bounds
// coordinates to the nearest edge pixel.
func (g *GrayImage) AtClamped(x, y int) uint8 {
	if x < 0 {
		x = 0
	} else if x >= g.Width {
		x = g.Width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= g.Height {
		y = g.Height - 1
	}
	return g.Pixels[y*g.Width+x]
}

// Set writes the pixel value at (x, y). It is a no-op if out of bounds.
func (g *GrayImage) Set(x, y int, v uint8) {
	if x < 0 || x >= g.Width || y < 0 || y >= g.Height {
		return
	}
	g.Pixels[y*g.Width+x] = v
}
