package geom

import "math"

// SampleBilinearF samples img at (x, y) with bilinear interpolation,
// returning 0 for any tap that falls outside the image instead of
// clamping — used where an out-of-image sample should contribute nothing
// (e.g. marker-cell bit sampling, where a cell that spills off the image
// should read dark-as-background, not extrapolate edge pixels).
func SampleBilinearF(img *GrayImage, x, y float64) float64 {
	x -= 0.5
	y -= 0.5
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	fx := x - float64(x0)
	fy := y - float64(y0)

	v00, ok00 := img.At(x0, y0)
	v10, ok10 := img.At(x0+1, y0)
	v01, ok01 := img.At(x0, y0+1)
	v11, ok11 := img.At(x0+1, y0+1)
	f := func(v uint8, ok bool) float64 {
		if !ok {
			return 0
		}
		return float64(v)
	}
	top := lerp(f(v00, ok00), f(v10, ok10), fx)
	bottom := lerp(f(v01, ok01), f(v11, ok11), fx)
	return lerp(top, bottom, fy)
}

// SampleBilinearU8 samples img at (x, y) with bilinear interpolation,
// clamping the coordinate to the nearest edge pixel when out of bounds
// (the edge-clamp policy WarpPerspectiveGray relies on) and clamping the
// interpolated result to [0, 255].
func SampleBilinearU8(img *GrayImage, x, y float64) uint8 {
	x = clampF(x-0.5, 0, float64(img.Width-1))
	y = clampF(y-0.5, 0, float64(img.Height-1))
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	fx := x - float64(x0)
	fy := y - float64(y0)

	v00 := img.AtClamped(x0, y0)
	v10 := img.AtClamped(x0+1, y0)
	v01 := img.AtClamped(x0, y0+1)
	v11 := img.AtClamped(x0+1, y0+1)
	top := lerp(float64(v00), float64(v10), fx)
	bottom := lerp(float64(v01), float64(v11), fx)
	v := lerp(top, bottom, fy)
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return uint8(v + 0.5)
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
