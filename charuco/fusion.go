// Package charuco implements C7: fusing a chessboard grid with decoded
// ArUco markers to assign logical, board-relative IDs to inner corners —
// the ChArUco target family.
package charuco

import (
	"fmt"

	"github.com/quartzvision/calibtarget/chessboard"
	"github.com/quartzvision/calibtarget/corner"
	"github.com/quartzvision/calibtarget/dict"
	"github.com/quartzvision/calibtarget/geom"
	"github.com/quartzvision/calibtarget/rectify"
)

// Debug carries optional introspection data about a Detect call.
type Debug struct {
	Chessboard       *chessboard.Debug
	MarkersDecoded   int
	AlignmentInliers int
	AlignmentScore   float64
	UsedFallback     bool
	DroppedCorners   int
}

// Result is the outcome of a Detect call.
type Result struct {
	Detection corner.TargetDetection
	Alignment corner.GridAlignment
	Debug     *Debug
}

// Detect fuses chessboard-grid assembly (C4) with marker decoding (C6) to
// produce a fully ID-assigned ChArUco detection. img is the raw (un-
// rectified) grayscale frame the corners were observed in.
func Detect(corners []corner.Corner, img *geom.GrayImage, board *CharucoBoard, p Params, redetect RedetectFunc) (Result, error) {
	chessRes, err := chessboard.Detect(corners, p.Chessboard)
	if err != nil {
		return Result{}, err
	}

	cellQuads := buildCellQuads(chessRes.Detection.Corners)
	matcher := dict.NewMatcher(board.Dictionary, p.MaxHamming)
	markers := dict.ScanDecodeMarkersInCells(img, cellQuads, matcher, p.Scan)

	// Order matters here: initial per-cell decode, then alignment, then
	// refinement against that alignment, and only then (if still short of
	// inliers) the optional full-rectified rescan, followed by a final
	// re-alignment. Interleaving refine and rescan differently changes
	// which false markers the refinement pass's relaxed tolerance can
	// pick up.
	align, count, score, ok := bestAlignment(markers, board)
	if ok {
		markers = append(markers, refinementPass(img, cellQuads, board, align, matcher, p, inlierMarkers(markers, board, align))...)
		align, count, score, ok = bestAlignment(markers, board)
	}

	usedFallback := false
	if !ok || count < p.MinMarkerInliers {
		if !p.FallbackToRectified {
			return Result{}, fmt.Errorf("charuco: %d/%d marker inliers, rectified fallback disabled: %w",
				count, p.MinMarkerInliers, corner.ErrAlignmentFailed)
		}
		usedFallback = true
		p.Chessboard.Logger.Debug().Int("count", count).Int("need", p.MinMarkerInliers).Msg("falling back to rectified rescan")
		const marginPx = 4
		view, rerr := rectify.FitGlobal(chessRes.Detection.Corners, p.PxPerSquareRectified, marginPx, img)
		if rerr != nil {
			return Result{}, fmt.Errorf("charuco: rectified fallback failed: %w", corner.ErrAlignmentFailed)
		}
		minI, minJ, _, _ := gridBounds(chessRes.Detection.Corners)
		rectCellQuads := buildRectifiedCellQuads(cellQuads, minI, minJ, p.PxPerSquareRectified, marginPx)
		rMarkers := dict.ScanDecodeMarkersInCells(view.Pixels, rectCellQuads, matcher, p.Scan)
		align, count, score, ok = bestAlignment(rMarkers, board)
		if ok {
			rMarkers = append(rMarkers, refinementPass(view.Pixels, rectCellQuads, board, align, matcher, p, inlierMarkers(rMarkers, board, align))...)
			align, count, score, ok = bestAlignment(rMarkers, board)
		}
		markers = rMarkers
		if !ok || count < p.MinMarkerInliers {
			return Result{}, fmt.Errorf("charuco: %d/%d marker inliers after rectified fallback: %w",
				count, p.MinMarkerInliers, corner.ErrAlignmentFailed)
		}
	}

	inliers := inlierMarkers(markers, board, align)
	boardH, herr := boardHomography(inliers, board, align)
	stats := chessRes.Detection.Stats

	var dbg *Debug
	if p.Chessboard.CollectDebug {
		dbg = &Debug{Chessboard: chessRes.Debug, MarkersDecoded: len(markers), AlignmentInliers: count, AlignmentScore: score, UsedFallback: usedFallback}
	}

	var labeled []corner.LabeledCorner
	dropped := 0
	p0 := board.TargetPosition(board.Spec.Cols/2, board.Spec.Rows/2)
	pxPerSquare := board.Spec.CellSize
	if herr == nil {
		pxPerSquare = estimatedPxPerSquare(boardH, geom.Point{p0[0], p0[1]}, board.Spec.CellSize)
	}
	thresholdPx := p.CornerValidationThresholdRel * pxPerSquare

	for _, c := range chessRes.Detection.Corners {
		if c.Grid == nil {
			continue
		}
		bc := align.Apply(*c.Grid)
		id, ok := board.InnerCornerID(bc.I, bc.J)
		if !ok {
			continue
		}
		pos := board.TargetPosition(bc.I, bc.J)
		final := c.Position
		if herr == nil {
			predicted := boardH.Apply(geom.Point{pos[0], pos[1]})
			confirmed, isOK := validateCorner(c.Position, predicted, thresholdPx, redetect)
			if !isOK {
				dropped++
				continue
			}
			final = confirmed
		}
		gc := bc
		targetPt := geom.Point{pos[0], pos[1]}
		labeled = append(labeled, corner.LabeledCorner{
			Position:       final,
			Grid:           &gc,
			ID:             &id,
			TargetPosition: &targetPt,
			Score:          c.Score,
		})
	}
	if dbg != nil {
		dbg.DroppedCorners = dropped
	}

	if len(labeled) == 0 {
		return Result{}, fmt.Errorf("charuco: no corners survived id assignment: %w", corner.ErrAlignmentFailed)
	}

	stats.FinalLabeled = len(labeled)
	det := corner.NewDetection(corner.Charuco, labeled, stats)
	p.Chessboard.Logger.Debug().Int("labeled", len(labeled)).Int("dropped", dropped).Bool("fallback", usedFallback).Msg("charuco fused")
	return Result{Detection: det, Alignment: align, Debug: dbg}, nil
}

// buildCellQuads extracts one image-space quad per fully-bounded square
// cell from a labeled chessboard corner set, keyed by the cell's top-left
// (I,J) grid index.
func buildCellQuads(labeled []corner.LabeledCorner) map[corner.GridCoords]geom.Quad {
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

// buildRectifiedCellQuads re-derives each cell's quad in the coordinate
// space of a rectify.FitGlobal view: every cell keeps the same grid key it
// had in the original image, but its corners are now the known, noise-free
// rectangle positions the rectifier placed them at.
func buildRectifiedCellQuads(cellQuads map[corner.GridCoords]geom.Quad, minI, minJ int, pxPerSquare float64, marginPx int) map[corner.GridCoords]geom.Quad {
	out := make(map[corner.GridCoords]geom.Quad, len(cellQuads))
	for gc := range cellQuads {
		x0 := float64(gc.I-minI)*pxPerSquare + float64(marginPx)
		y0 := float64(gc.J-minJ)*pxPerSquare + float64(marginPx)
		out[gc] = geom.Quad{
			{x0, y0}, {x0 + pxPerSquare, y0},
			{x0 + pxPerSquare, y0 + pxPerSquare}, {x0, y0 + pxPerSquare},
		}
	}
	return out
}

func gridBounds(labeled []corner.LabeledCorner) (minI, minJ, maxI, maxJ int) {
	first := true
	for _, c := range labeled {
		if c.Grid == nil {
			continue
		}
		if first {
			minI, maxI, minJ, maxJ = c.Grid.I, c.Grid.I, c.Grid.J, c.Grid.J
			first = false
			continue
		}
		if c.Grid.I < minI {
			minI = c.Grid.I
		}
		if c.Grid.I > maxI {
			maxI = c.Grid.I
		}
		if c.Grid.J < minJ {
			minJ = c.Grid.J
		}
		if c.Grid.J > maxJ {
			maxJ = c.Grid.J
		}
	}
	return minI, minJ, maxI, maxJ
}
