package charuco

import (
	"github.com/quartzvision/calibtarget/corner"
	"github.com/quartzvision/calibtarget/dict"
	"github.com/quartzvision/calibtarget/internal/d4"
)

// voteKey identifies one (transform, translation) candidate.
type voteKey struct {
	t      d4.Transform
	tx, ty int
}

// alignVotes tallies every decoded marker's vote for each of the 8
// candidate transforms: a marker decoded at cell gc0 claiming board id
// votes, under transform t, for the translation that would make
// t.Apply(gc0) + (tx,ty) equal the id's known board cell.
func alignVotes(markers []dict.MarkerDetection, board *CharucoBoard) map[voteKey]struct {
	count int
	score float64
} {
	tally := map[voteKey]struct {
		count int
		score float64
	}{}
	for _, m := range markers {
		col, row, _, ok := board.Layout.LayoutCell(m.ID)
		if !ok {
			continue
		}
		for _, t := range d4.Elements {
			ti, tj := t.Apply(m.GC0.I, m.GC0.J)
			tx, ty := col-ti, row-tj
			k := voteKey{t: t, tx: tx, ty: ty}
			v := tally[k]
			v.count++
			v.score += m.Score
			tally[k] = v
		}
	}
	return tally
}

// bestAlignment picks the (transform, translation) with the most marker
// votes, breaking ties first by summed score and finally by lexicographic
// order on (transform, tx, ty) for full determinism.
func bestAlignment(markers []dict.MarkerDetection, board *CharucoBoard) (corner.GridAlignment, int, float64, bool) {
	tally := alignVotes(markers, board)
	var bestKey voteKey
	var bestCount int
	var bestScore float64
	found := false
	for k, v := range tally {
		better := !found ||
			v.count > bestCount ||
			(v.count == bestCount && v.score > bestScore) ||
			(v.count == bestCount && v.score == bestScore && lessVoteKey(k, bestKey))
		if better {
			bestKey, bestCount, bestScore, found = k, v.count, v.score, true
		}
	}
	if !found {
		return corner.GridAlignment{}, 0, 0, false
	}
	return corner.GridAlignment{Transform: bestKey.t, TX: bestKey.tx, TY: bestKey.ty}, bestCount, bestScore, true
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

// inlierMarkers returns the subset of markers consistent with alignment:
// those whose decoded id's board cell matches alignment applied to their
// detected cell.
func inlierMarkers(markers []dict.MarkerDetection, board *CharucoBoard, align corner.GridAlignment) []dict.MarkerDetection {
	var out []dict.MarkerDetection
	for _, m := range markers {
		col, row, _, ok := board.Layout.LayoutCell(m.ID)
		if !ok {
			continue
		}
		want := align.Apply(m.GC0)
		if want.I == col && want.J == row {
			out = append(out, m)
		}
	}
	return out
}
