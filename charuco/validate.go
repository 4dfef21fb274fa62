package charuco

import (
	"fmt"
	"math"

	"github.com/quartzvision/calibtarget/corner"
	"github.com/quartzvision/calibtarget/dict"
	"github.com/quartzvision/calibtarget/geom"
)

// cellGCOffsets are the grid-space offsets of a cell's four corners from
// its top-left (GC0) index, TL,TR,BR,BL ordered — the same convention
// dict.MarkerDetection.CornersImg/CornersRect are indexed by.
var cellGCOffsets = [4]corner.GridCoords{{I: 0, J: 0}, {I: 1, J: 0}, {I: 1, J: 1}, {I: 0, J: 1}}

// boardHomography fits a single homography from board physical-unit
// positions to image positions, using the four image-space corners of
// every inlier marker's cell as correspondences.
func boardHomography(inliers []dict.MarkerDetection, board *CharucoBoard, align corner.GridAlignment) (geom.Homography, error) {
	var boardPts, imgPts []geom.Point
	for _, m := range inliers {
		if m.CornersImg == nil {
			continue
		}
		for k, off := range cellGCOffsets {
			gc := m.GC0.Add(off)
			bc := align.Apply(gc)
			pos := board.TargetPosition(bc.I, bc.J)
			boardPts = append(boardPts, geom.Point{pos[0], pos[1]})
			imgPts = append(imgPts, m.CornersImg[k])
		}
	}
	if len(boardPts) < 4 {
		return geom.Homography{}, fmt.Errorf("charuco: not enough inlier corners for board homography: %w", corner.ErrDegenerateGeometry)
	}
	h, err := geom.EstimateDLT(boardPts, imgPts)
	if err != nil {
		return geom.Homography{}, fmt.Errorf("charuco: board homography fit failed: %w", corner.ErrDegenerateGeometry)
	}
	return h, nil
}

// estimatedPxPerSquare measures the board homography's local scale near
// board-space origin p0, by finite-differencing one cell size in each
// axis direction and averaging the resulting image-space distances.
func estimatedPxPerSquare(h geom.Homography, p0 geom.Point, cellSize float64) float64 {
	origin := h.Apply(p0)
	dx := h.Apply(geom.Point{p0[0] + cellSize, p0[1]})
	dy := h.Apply(geom.Point{p0[0], p0[1] + cellSize})
	distX := geom.Sub(dx, origin)
	distY := geom.Sub(dy, origin)
	lenX := math.Hypot(distX[0], distX[1])
	lenY := math.Hypot(distY[0], distY[1])
	return (lenX + lenY) / 2
}

// validateCorner checks a single assigned corner's detected position
// against its board-homography-predicted position; if it deviates by more
// than thresholdPx, it invokes redetect on a small ROI and either accepts
// the refined position or reports the corner as unconfirmed.
func validateCorner(detected geom.Point, predicted geom.Point, thresholdPx float64, redetect RedetectFunc) (geom.Point, bool) {
	d := geom.Sub(detected, predicted)
	if math.Hypot(d[0], d[1]) <= thresholdPx {
		return detected, true
	}
	if redetect == nil {
		return detected, false
	}
	refined, ok := redetect([2]float64{predicted[0], predicted[1]}, thresholdPx*2)
	if !ok {
		return detected, false
	}
	refinedPt := geom.Point{refined[0], refined[1]}
	rd := geom.Sub(refinedPt, predicted)
	if math.Hypot(rd[0], rd[1]) > thresholdPx {
		return detected, false
	}
	return refinedPt, true
}
