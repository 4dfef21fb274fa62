// Package rectify produces a RectifiedView — a synthetic image in which
// each board square is a known px_per_square-pixel axis-aligned rectangle —
// either by a single global homography or by a per-cell mesh of
// homographies that tolerates lens distortion.
package rectify

import "github.com/quartzvision/calibtarget/geom"

// RectToImgMapper maps a point in rectified (board-square) space to image
// space. Implementations are Global (one homography for the whole view)
// or Mesh (one homography per square cell).
type RectToImgMapper interface {
	// Map returns the image-space point corresponding to rectPt, and
	// whether the query landed inside the known grid (for Mesh mappers a
	// false ok returns an extrapolated point from the clamped cell, or the
	// zero point when that cell is absent too).
	Map(rectPt geom.Point) (geom.Point, bool)
}

// View is a rectified image plus the mapper that produced it.
type View struct {
	Pixels      *geom.GrayImage
	PxPerSquare float64
	Mapper      RectToImgMapper
}
