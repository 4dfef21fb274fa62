package rectify

import (
	"fmt"

	"github.com/quartzvision/calibtarget/corner"
	"github.com/quartzvision/calibtarget/geom"
)

// GlobalMapper is a RectToImgMapper backed by a single homography.
type GlobalMapper struct {
	RectToImg geom.Homography
}

// Map applies the homography; it is always "in grid" since a single
// global homography has no notion of cell boundaries.
func (m GlobalMapper) Map(rectPt geom.Point) (geom.Point, bool) {
	return m.RectToImg.Apply(rectPt), true
}

// FitGlobal fits a single homography from every labeled corner's board-rect
// position (i*pxPerSquare, j*pxPerSquare), offset by marginPx, to its
// image-space position, then warps src into a canvas sized to the grid
// extent plus margin on every side.
func FitGlobal(corners []corner.LabeledCorner, pxPerSquare float64, marginPx int, src *geom.GrayImage) (View, error) {
	labeled := make([]corner.LabeledCorner, 0, len(corners))
	for _, c := range corners {
		if c.Grid != nil {
			labeled = append(labeled, c)
		}
	}
	if len(labeled) < 4 {
		return View{}, fmt.Errorf("rectify: need at least 4 labeled corners, got %d: %w", len(labeled), corner.ErrDegenerateGeometry)
	}

	minI, minJ, maxI, maxJ := labeled[0].Grid.I, labeled[0].Grid.J, labeled[0].Grid.I, labeled[0].Grid.J
	for _, c := range labeled {
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

	rectPts := make([]geom.Point, len(labeled))
	imgPts := make([]geom.Point, len(labeled))
	for i, c := range labeled {
		ri := float64(c.Grid.I-minI)*pxPerSquare + float64(marginPx)
		rj := float64(c.Grid.J-minJ)*pxPerSquare + float64(marginPx)
		rectPts[i] = geom.Point{ri, rj}
		imgPts[i] = c.Position
	}

	h, err := geom.EstimateDLT(rectPts, imgPts)
	if err != nil {
		return View{}, fmt.Errorf("rectify: global fit failed: %w", corner.ErrDegenerateGeometry)
	}

	width := int((float64(maxI-minI))*pxPerSquare) + 2*marginPx
	height := int((float64(maxJ-minJ))*pxPerSquare) + 2*marginPx
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	pixels := geom.WarpPerspectiveGray(src, h, width, height)
	return View{Pixels: pixels, PxPerSquare: pxPerSquare, Mapper: GlobalMapper{RectToImg: h}}, nil
}
