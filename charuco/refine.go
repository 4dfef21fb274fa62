package charuco

import (
	"github.com/quartzvision/calibtarget/corner"
	"github.com/quartzvision/calibtarget/dict"
	"github.com/quartzvision/calibtarget/geom"
)

// refinementPass re-examines cells the first decoding pass produced no
// marker for (or produced the wrong marker for) but whose board position,
// predicted by the now-known alignment, says a specific marker ID should
// be there. It decodes just that cell against just that expected ID,
// tolerating one extra bit of Hamming distance over the matcher's normal
// threshold — a marker that failed the library-wide nearest-neighbor
// search by a hair, at a position alignment already corroborates, is far
// more likely a true positive than noise.
func refinementPass(
	img *geom.GrayImage,
	cellQuads map[corner.GridCoords]geom.Quad,
	board *CharucoBoard,
	align corner.GridAlignment,
	matcher dict.Matcher,
	p Params,
	already []dict.MarkerDetection,
) []dict.MarkerDetection {
	confirmed := make(map[corner.GridCoords]bool, len(already))
	for _, m := range already {
		confirmed[m.GC0] = true
	}

	relaxedMax := p.MaxHamming + 1

	var found []dict.MarkerDetection
	for gc0, quad := range cellQuads {
		if confirmed[gc0] {
			continue
		}
		bc := align.Apply(gc0)
		expectedID, ok := board.Layout.MarkerAt(bc.I, bc.J)
		if !ok {
			continue
		}
		sample, ok := dict.SampleCellQuad(img, quad, board.Dictionary.BitsPerSide, p.Scan)
		if !ok {
			continue
		}
		rotation, hamming, ok := matchExpected(sample.Interior, board.Dictionary, expectedID, relaxedMax)
		code := sample.Interior
		inverted := false
		if !ok {
			var hamming2 int
			var rotation2 int
			rotation2, hamming2, ok = matchExpected(sample.Inverted, board.Dictionary, expectedID, relaxedMax)
			if ok {
				rotation, hamming, code, inverted = rotation2, hamming2, sample.Inverted, true
			}
		}
		if !ok {
			continue
		}
		quadCopy := quad
		found = append(found, dict.MarkerDetection{
			ID:          expectedID,
			GC:          gc0.Add(dict.RotOffset(rotation)),
			GC0:         gc0,
			Rotation:    rotation,
			Hamming:     hamming,
			Score:       0.5 + 0.5*sample.BorderScore,
			BorderScore: sample.BorderScore,
			Code:        code,
			Inverted:    inverted,
			CornersRect: quad,
			CornersImg:  &quadCopy,
		})
	}
	return found
}

// matchExpected tests observed against a single dictionary entry (not the
// whole dictionary) at all four rotations, returning the best rotation
// within maxHamming.
func matchExpected(observed dict.Code, d *dict.Dictionary, id, maxHamming int) (rotation, hamming int, ok bool) {
	if id < 0 || id >= len(d.Codes) {
		return 0, 0, false
	}
	code := d.Codes[id]
	best := len(observed) + 1
	bestRot := 0
	for r := 0; r < 4; r++ {
		h := codeHamming(observed, dict.Rotate(code, d.BitsPerSide, r))
		if h < best {
			best, bestRot = h, r
		}
	}
	if best > maxHamming {
		return 0, 0, false
	}
	return bestRot, best, true
}

func codeHamming(a, b dict.Code) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	diff := 0
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			diff++
		}
	}
	return diff
}
