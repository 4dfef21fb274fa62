package rectify

import (
	"fmt"

	"github.com/quartzvision/calibtarget/corner"
	"github.com/quartzvision/calibtarget/geom"
)

// cellKey identifies a square cell by its top-left inner-corner index.
type cellKey struct{ I, J int }

// MeshMapper is a RectToImgMapper backed by one homography per square
// cell. Cells lacking any of their four corners are simply absent from
// the map. A query whose cell is absent falls back to the cell found by
// clamping its cell index to the covered bounds and uses that cell's
// homography, extrapolated — a bilinear perturbation of a plane is still a
// reasonable local model a few pixels past its own boundary. If that
// clamped cell is absent too, no point is produced.
type MeshMapper struct {
	PxPerSquare float64
	cells       map[cellKey]geom.Homography
	minI, minJ  int
	maxI, maxJ  int // inclusive cell-index bounds of the covered region
}

// Map locates the cell containing rectPt, applies that cell's homography,
// and reports false if the query had to fall back to the clamped cell; if
// the clamped cell is absent as well it returns the zero point and false.
func (m MeshMapper) Map(rectPt geom.Point) (geom.Point, bool) {
	ci := int(rectPt[0] / m.PxPerSquare)
	cj := int(rectPt[1] / m.PxPerSquare)
	if rectPt[0] < 0 {
		ci--
	}
	if rectPt[1] < 0 {
		cj--
	}

	key := cellKey{ci, cj}
	h, ok := m.cells[key]
	inGrid := ok
	if !ok {
		key = m.nearestCell(ci, cj)
		h, ok = m.cells[key]
		if !ok {
			return geom.Point{}, false
		}
	}
	local := geom.Point{rectPt[0] - float64(key.I)*m.PxPerSquare, rectPt[1] - float64(key.J)*m.PxPerSquare}
	return h.Apply(local), inGrid
}

func (m MeshMapper) nearestCell(ci, cj int) cellKey {
	if ci < m.minI {
		ci = m.minI
	} else if ci > m.maxI {
		ci = m.maxI
	}
	if cj < m.minJ {
		cj = m.minJ
	} else if cj > m.maxJ {
		cj = m.maxJ
	}
	return cellKey{ci, cj}
}

// FitMesh fits a 4-point homography per complete square cell (all four of
// its TL/TR/BR/BL corners labeled) and warps each cell independently into
// the corresponding pxPerSquare-sized block of the output canvas.
func FitMesh(corners []corner.LabeledCorner, pxPerSquare float64, src *geom.GrayImage) (View, error) {
	byGrid := make(map[corner.GridCoords]geom.Point, len(corners))
	minI, minJ, maxI, maxJ := 0, 0, 0, 0
	first := true
	for _, c := range corners {
		if c.Grid == nil {
			continue
		}
		byGrid[*c.Grid] = c.Position
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
	if len(byGrid) == 0 {
		return View{}, fmt.Errorf("rectify: no labeled corners: %w", corner.ErrDegenerateGeometry)
	}

	px := pxPerSquare
	rectQuad := [4]geom.Point{{0, 0}, {px, 0}, {px, px}, {0, px}}

	cells := make(map[cellKey]geom.Homography)
	for i := minI; i < maxI; i++ {
		for j := minJ; j < maxJ; j++ {
			tl, okTL := byGrid[corner.GridCoords{I: i, J: j}]
			tr, okTR := byGrid[corner.GridCoords{I: i + 1, J: j}]
			br, okBR := byGrid[corner.GridCoords{I: i + 1, J: j + 1}]
			bl, okBL := byGrid[corner.GridCoords{I: i, J: j + 1}]
			if !okTL || !okTR || !okBR || !okBL {
				continue
			}
			imgQuad := [4]geom.Point{tl, tr, br, bl}
			h, err := geom.EstimateFourPoint(rectQuad, imgQuad)
			if err != nil {
				continue // degenerate cell: leave blank, reported via debug channel by the caller
			}
			cells[cellKey{i, j}] = h
		}
	}
	if len(cells) == 0 {
		return View{}, fmt.Errorf("rectify: no complete cells to rectify: %w", corner.ErrDegenerateGeometry)
	}

	width := int(float64(maxI-minI) * px)
	height := int(float64(maxJ-minJ) * px)
	pixels := geom.NewBlankGrayImage(maxInt(width, 1), maxInt(height, 1))

	cellMinI, cellMinJ, cellMaxI, cellMaxJ := maxI, maxJ, minI, minJ
	for key, h := range cells {
		if key.I < cellMinI {
			cellMinI = key.I
		}
		if key.I > cellMaxI {
			cellMaxI = key.I
		}
		if key.J < cellMinJ {
			cellMinJ = key.J
		}
		if key.J > cellMaxJ {
			cellMaxJ = key.J
		}
		ox := int(float64(key.I-minI) * px)
		oy := int(float64(key.J-minJ) * px)
		blitCell(pixels, src, h, ox, oy, int(px))
	}

	mapper := MeshMapper{PxPerSquare: px, cells: cells, minI: cellMinI, minJ: cellMinJ, maxI: cellMaxI, maxJ: cellMaxJ}
	return View{Pixels: pixels, PxPerSquare: px, Mapper: mapper}, nil
}

// blitCell warps one cell's homography into the (ox, oy)-offset
// size-by-size block of dst.
func blitCell(dst, src *geom.GrayImage, rectToImg geom.Homography, ox, oy, size int) {
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			p := rectToImg.Apply(geom.PixelCenter(x, y))
			dst.Set(ox+x, oy+y, geom.SampleBilinearU8(src, p[0], p[1]))
		}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
