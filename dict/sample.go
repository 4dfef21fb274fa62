package dict

import (
	"sort"

	"github.com/quartzvision/calibtarget/geom"
)

// ScanDecodeConfig configures cell sampling and decoding, mirroring the
// ScanDecodeConfig configuration surface.
type ScanDecodeConfig struct {
	BorderBits     int
	MarkerSizeRel  float64
	InsetFrac      float64
	MinBorderScore float64
	DedupByID      bool
}

// DefaultScanDecodeConfig returns the bracketed defaults.
func DefaultScanDecodeConfig() ScanDecodeConfig {
	return ScanDecodeConfig{
		BorderBits:     1,
		MarkerSizeRel:  1.0,
		InsetFrac:      0.06,
		MinBorderScore: 0.6,
		DedupByID:      true,
	}
}

// CellSample is the binarized bit grid sampled from one candidate cell,
// along with its border score.
type CellSample struct {
	Interior    Code // side x side, excluding the border ring
	Side        int
	BorderScore float64
	Inverted    Code // interior bits with polarity flipped, equal to !Interior
}

// SampleCellQuad samples a marker from the cell whose TL,TR,BR,BL image
// corners are quad, against a dictionary of side bitsPerSide, returning
// false if the border score does not clear cfg.MinBorderScore.
func SampleCellQuad(img *geom.GrayImage, quad geom.Quad, bitsPerSide int, cfg ScanDecodeConfig) (CellSample, bool) {
	markerQuad := shrinkQuad(quad, (1.0-cfg.MarkerSizeRel)/2)
	markerQuad = shrinkQuad(markerQuad, cfg.InsetFrac)

	unitSquare := [4]geom.Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	h, err := geom.EstimateFourPoint(unitSquare, [4]geom.Point(markerQuad))
	if err != nil {
		return CellSample{}, false
	}

	gridSide := bitsPerSide + 2*cfg.BorderBits
	intensities := make([]float64, gridSide*gridSide)
	for r := 0; r < gridSide; r++ {
		for c := 0; c < gridSide; c++ {
			u := (float64(c) + 0.5) / float64(gridSide)
			v := (float64(r) + 0.5) / float64(gridSide)
			p := h.Apply(geom.Point{u, v})
			intensities[r*gridSide+c] = geom.SampleBilinearF(img, p[0], p[1])
		}
	}

	threshold := otsuThreshold(intensities)
	bits := make([]bool, len(intensities))
	for i, v := range intensities {
		bits[i] = v < threshold // darker than threshold -> black -> bit 1
	}

	borderBlack, borderTotal := 0, 0
	for r := 0; r < gridSide; r++ {
		for c := 0; c < gridSide; c++ {
			if r < cfg.BorderBits || r >= gridSide-cfg.BorderBits || c < cfg.BorderBits || c >= gridSide-cfg.BorderBits {
				borderTotal++
				if bits[r*gridSide+c] {
					borderBlack++
				}
			}
		}
	}
	borderScore := 0.0
	if borderTotal > 0 {
		borderScore = float64(borderBlack) / float64(borderTotal)
	}
	if borderScore < cfg.MinBorderScore {
		return CellSample{}, false
	}

	interior := make(Code, bitsPerSide*bitsPerSide)
	for r := 0; r < bitsPerSide; r++ {
		for c := 0; c < bitsPerSide; c++ {
			interior[r*bitsPerSide+c] = bits[(r+cfg.BorderBits)*gridSide+(c+cfg.BorderBits)]
		}
	}
	inverted := make(Code, len(interior))
	for i, b := range interior {
		inverted[i] = !b
	}

	return CellSample{Interior: interior, Side: bitsPerSide, BorderScore: borderScore, Inverted: inverted}, true
}

// shrinkQuad moves every corner of q along both of its adjacent edges by
// fraction frac of each edge's length — i.e. each side is inset by frac of
// the length of the sides next to it, so a non-rectangular (perspective)
// quad shrinks in local coordinates rather than toward a single global
// center.
func shrinkQuad(q geom.Quad, frac float64) geom.Quad {
	var out geom.Quad
	for i := range q {
		prev := q[(i+3)%4]
		next := q[(i+1)%4]
		// Move corner i toward both neighbors by frac along each edge,
		// which for a convex quad approximates an inward offset on both
		// sides meeting at that corner.
		toPrev := geom.Scale(geom.Sub(prev, q[i]), frac)
		toNext := geom.Scale(geom.Sub(next, q[i]), frac)
		out[i] = geom.Add(q[i], geom.Add(toPrev, toNext))
	}
	return out
}

// otsuThreshold computes an Otsu-style binarization threshold over a
// sample of intensities: the threshold that minimizes intra-class
// variance (equivalently maximizes inter-class variance) between the
// "dark" and "light" sides of a histogram built from the samples
// themselves, rather than a fixed 8-bit histogram, since the input here is
// a few dozen floating point taps rather than a whole image.
func otsuThreshold(values []float64) float64 {
	if len(values) == 0 {
		return 128
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var total float64
	for _, v := range sorted {
		total += v
	}
	n := float64(len(sorted))

	var sumB, wB float64
	var bestVar float64 = -1
	bestThreshold := sorted[len(sorted)/2]
	for i := 0; i < len(sorted)-1; i++ {
		wB++
		sumB += sorted[i]
		wF := n - wB
		if wF == 0 {
			break
		}
		mB := sumB / wB
		mF := (total - sumB) / wF
		betweenVar := wB * wF * (mB - mF) * (mB - mF)
		if betweenVar > bestVar {
			bestVar = betweenVar
			bestThreshold = (sorted[i] + sorted[i+1]) / 2
		}
	}
	return bestThreshold
}
