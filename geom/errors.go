package geom

import "errors"

// ErrDegenerate is returned when a homography fit cannot be inverted:
// collinear or duplicated correspondences, or an SVD that fails to
// converge. Callers in detector packages wrap this into
// corner.ErrDegenerateGeometry at the point they decide whether the
// failure aborts a single cell or the whole call.
var ErrDegenerate = errors.New("geom: degenerate geometry")
