package markerboard

import (
	"sort"

	"github.com/quartzvision/calibtarget/corner"
	"github.com/quartzvision/calibtarget/geom"
	"github.com/quartzvision/calibtarget/internal/d4"
)

// candidate is one cell scored as a plausible circle.
type candidate struct {
	gc       corner.GridCoords // top-left corner index of the cell
	polarity Polarity
	contrast float64
}

// scoreCandidates warps every cell quad to a canonical square patch and
// scores it for a circle of either polarity, keeping only cells clearing
// MinContrast.
func scoreCandidates(img *geom.GrayImage, cellQuads map[corner.GridCoords]geom.Quad, p CircleScoreParams) []candidate {
	lut := buildSampleLUT(p.Samples, p.RingThicknessFrac)
	unitSquare := [4]geom.Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	var out []candidate
	for gc, quad := range cellQuads {
		h, err := geom.EstimateFourPoint(unitSquare, [4]geom.Point(quad))
		if err != nil {
			continue
		}
		patch := geom.NewBlankGrayImage(p.PatchSize, p.PatchSize)
		for y := 0; y < p.PatchSize; y++ {
			for x := 0; x < p.PatchSize; x++ {
				u := (float64(x) + 0.5) / float64(p.PatchSize)
				v := (float64(y) + 0.5) / float64(p.PatchSize)
				src := h.Apply(geom.Point{u, v})
				patch.Set(x, y, geom.SampleBilinearU8(img, src[0], src[1]))
			}
		}
		meanDisk, meanRing, contrast := scoreCircle(patch, lut, p)
		if contrast < p.MinContrast {
			continue
		}
		out = append(out, candidate{gc: gc, polarity: classifyPolarity(meanDisk, meanRing), contrast: contrast})
	}
	return out
}

// topCandidatesByPolarity keeps, per polarity, the n highest-contrast
// candidates, sorted descending by contrast with lowest-gc tie-break for
// determinism.
func topCandidatesByPolarity(cands []candidate, n int) map[Polarity][]candidate {
	byPolarity := map[Polarity][]candidate{}
	for _, c := range cands {
		byPolarity[c.polarity] = append(byPolarity[c.polarity], c)
	}
	for pol, list := range byPolarity {
		sort.Slice(list, func(a, b int) bool {
			if list[a].contrast != list[b].contrast {
				return list[a].contrast > list[b].contrast
			}
			if list[a].gc.J != list[b].gc.J {
				return list[a].gc.J < list[b].gc.J
			}
			return list[a].gc.I < list[b].gc.I
		})
		if n > 0 && len(list) > n {
			list = list[:n]
		}
		byPolarity[pol] = list
	}
	return byPolarity
}

// voteKey identifies one (transform, translation) hypothesis.
type voteKey struct {
	t      d4.Transform
	tx, ty int
}

// matchLayout enumerates, for every D4 transform and every pairing of a
// circle candidate to an expected circle of matching polarity, the implied
// translation, then scores each (T, t) hypothesis by how many of the three
// expected circles it places on some candidate of the right polarity.
// Ties are broken by summed contrast, then lexicographically on (T, t).
func matchLayout(layout Layout, byPolarity map[Polarity][]candidate) (corner.GridAlignment, int, bool) {
	tally := map[voteKey]struct {
		count int
		score float64
	}{}

	for _, t := range d4.Elements {
		for k := 0; k < 3; k++ {
			expected := layout.expectedCell(k)
			pol := layout.Circles[k].Polarity
			for _, c := range byPolarity[pol] {
				ti, tj := t.Apply(c.gc.I, c.gc.J)
				tx, ty := expected.I-ti, expected.J-tj
				key := voteKey{t: t, tx: tx, ty: ty}
				v := tally[key]
				v.count++
				v.score += c.contrast
				tally[key] = v
			}
		}
	}

	var best voteKey
	var bestCount int
	var bestScore float64
	found := false
	for k, v := range tally {
		better := !found ||
			v.count > bestCount ||
			(v.count == bestCount && v.score > bestScore) ||
			(v.count == bestCount && v.score == bestScore && lessVoteKey(k, best))
		if better {
			best, bestCount, bestScore, found = k, v.count, v.score, true
		}
	}
	if !found {
		return corner.GridAlignment{}, 0, false
	}

	// bestCount above is the number of (candidate, expected-circle) votes
	// cast for this key, which can exceed 3 when more than one candidate
	// of the same polarity maps onto the same expected circle. The actual
	// inlier count the caller cares about is how many of the 3 *distinct*
	// expected circles this alignment satisfies with at least one
	// candidate.
	align := corner.GridAlignment{Transform: best.t, TX: best.tx, TY: best.ty}
	inliers := 0
	for k := 0; k < 3; k++ {
		expected := layout.expectedCell(k)
		pol := layout.Circles[k].Polarity
		for _, c := range byPolarity[pol] {
			got := align.Apply(c.gc)
			if got == expected {
				inliers++
				break
			}
		}
	}
	return align, inliers, true
}

func lessVoteKey(a, b voteKey) bool {
	if !a.t.Equal(b.t) {
		return a.t.Less(b.t)
	}
	if a.tx != b.tx {
		return a.tx < b.tx
	}
	return a.ty < b.ty
}
