package geom

// WarpPerspectiveGray fills a dstWidth x dstHeight grayscale image by
// bilinear sampling src at hDstToSrc*(x+0.5, y+0.5, 1) for each destination
// pixel, with edge-clamp for samples that land outside src.
func WarpPerspectiveGray(src *GrayImage, hDstToSrc Homography, dstWidth, dstHeight int) *GrayImage {
	dst := NewBlankGrayImage(dstWidth, dstHeight)
	for y := 0; y < dstHeight; y++ {
		for x := 0; x < dstWidth; x++ {
			p := hDstToSrc.Apply(PixelCenter(x, y))
			dst.Set(x, y, SampleBilinearU8(src, p[0], p[1]))
		}
	}
	return dst
}

// WarpPerspectiveGrayFast is the same as WarpPerspectiveGray but assumes
// every mapped coordinate lands in-bounds and skips the clamp checks that
// SampleBilinearU8 performs on every call. Callers must have already
// verified (e.g. via a bounding-box pre-check) that the quad being warped
// lies entirely within src; behavior is undefined otherwise.
func WarpPerspectiveGrayFast(src *GrayImage, hDstToSrc Homography, dstWidth, dstHeight int) *GrayImage {
	dst := NewBlankGrayImage(dstWidth, dstHeight)
	w, h := src.Width, src.Height
	for y := 0; y < dstHeight; y++ {
		for x := 0; x < dstWidth; x++ {
			p := hDstToSrc.Apply(PixelCenter(x, y))
			sx, sy := p[0]-0.5, p[1]-0.5
			ix, iy := int(sx), int(sy)
			if ix < 0 {
				ix = 0
			}
			if iy < 0 {
				iy = 0
			}
			if ix >= w-1 {
				ix = w - 2
			}
			if iy >= h-1 {
				iy = h - 2
			}
			if ix < 0 {
				ix = 0
			}
			if iy < 0 {
				iy = 0
			}
			fx := sx - float64(ix)
			fy := sy - float64(iy)
			v00 := float64(src.Pixels[iy*w+ix])
			v10 := float64(src.Pixels[iy*w+ix+1])
			v01 := float64(src.Pixels[(iy+1)*w+ix])
			v11 := float64(src.Pixels[(iy+1)*w+ix+1])
			top := lerp(v00, v10, fx)
			bottom := lerp(v01, v11, fx)
			v := lerp(top, bottom, fy)
			dst.Set(x, y, uint8(v+0.5))
		}
	}
	return dst
}
