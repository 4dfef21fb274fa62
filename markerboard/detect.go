package markerboard

import (
	"fmt"

	"github.com/quartzvision/calibtarget/chessboard"
	"github.com/quartzvision/calibtarget/corner"
	"github.com/quartzvision/calibtarget/geom"
)

// Debug carries optional introspection data about a Detect call.
type Debug struct {
	Chessboard       *chessboard.Debug
	CandidatesFound  int
	AlignmentInliers int
}

// Result is the outcome of a Detect call.
type Result struct {
	Detection corner.TargetDetection
	Alignment corner.GridAlignment
	Debug     *Debug
}

// Detect runs the relaxed-completeness chessboard detector, scores every
// complete square cell as a candidate circle, matches the layout's three
// circles against the candidates under all 8 grid symmetries, and, on a
// successful match, relabels every corner's grid coordinate into board
// space and attaches its physical target position.
func Detect(corners []corner.Corner, img *geom.GrayImage, layout Layout, p Params) (Result, error) {
	chessRes, err := chessboard.Detect(corners, p.Chessboard)
	if err != nil {
		return Result{}, err
	}

	cellQuads := cellQuadsFromLabeled(chessRes.Detection.Corners)
	if len(p.ROICells) > 0 {
		for gc := range cellQuads {
			if !p.ROICells[[2]int{gc.I, gc.J}] {
				delete(cellQuads, gc)
			}
		}
	}

	cands := scoreCandidates(img, cellQuads, p.CircleScore)
	byPolarity := topCandidatesByPolarity(cands, p.Match.MaxCandidatesPerPolarity)

	align, inliers, ok := matchLayout(layout, byPolarity)
	if !ok || inliers < p.Match.MinOffsetInliers {
		p.Chessboard.Logger.Debug().Int("inliers", inliers).Int("need", p.Match.MinOffsetInliers).Int("candidates", len(cands)).Msg("circle layout match failed")
		return Result{}, fmt.Errorf("markerboard: %d/%d circle inliers: %w",
			inliers, p.Match.MinOffsetInliers, corner.ErrAlignmentFailed)
	}

	var labeled []corner.LabeledCorner
	for _, c := range chessRes.Detection.Corners {
		if c.Grid == nil {
			continue
		}
		bc := align.Apply(*c.Grid)
		targetPt := geom.Point{float64(bc.I) * layout.CellSize, float64(bc.J) * layout.CellSize}
		gc := bc
		labeled = append(labeled, corner.LabeledCorner{
			Position:       c.Position,
			Grid:           &gc,
			TargetPosition: &targetPt,
			Score:          c.Score,
		})
	}
	if len(labeled) == 0 {
		return Result{}, fmt.Errorf("markerboard: no corners to relabel: %w", corner.ErrAlignmentFailed)
	}

	stats := chessRes.Detection.Stats
	stats.FinalLabeled = len(labeled)
	det := corner.NewDetection(corner.CheckerboardMarker, labeled, stats)

	var dbg *Debug
	if p.Chessboard.CollectDebug {
		dbg = &Debug{Chessboard: chessRes.Debug, CandidatesFound: len(cands), AlignmentInliers: inliers}
	}
	p.Chessboard.Logger.Debug().Int("labeled", len(labeled)).Int("inliers", inliers).Msg("markerboard aligned")
	return Result{Detection: det, Alignment: align, Debug: dbg}, nil
}

// cellQuadsFromLabeled extracts one image-space quad per fully-bounded
// square cell from a labeled chessboard corner set, keyed by the cell's
// top-left (I,J) grid index — identical in shape to charuco's
// buildCellQuads, duplicated here since the two packages share no
// dependency on each other by design.
func cellQuadsFromLabeled(labeled []corner.LabeledCorner) map[corner.GridCoords]geom.Quad {
	byGrid := make(map[corner.GridCoords]geom.Point, len(labeled))
	for _, c := range labeled {
		if c.Grid != nil {
			byGrid[*c.Grid] = c.Position
		}
	}
	quads := map[corner.GridCoords]geom.Quad{}
	for gc, tl := range byGrid {
		tr, ok1 := byGrid[corner.GridCoords{I: gc.I + 1, J: gc.J}]
		br, ok2 := byGrid[corner.GridCoords{I: gc.I + 1, J: gc.J + 1}]
		bl, ok3 := byGrid[corner.GridCoords{I: gc.I, J: gc.J + 1}]
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		quads[gc] = geom.Quad{tl, tr, br, bl}
	}
	return quads
}
