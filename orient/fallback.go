package orient

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// EstimateAxesFromOrientations recovers two axis angles directly from
// circular means, without histogram peak-finding or k-means refinement.
// It is used when too few corners remain to trust a histogram, or when the
// two dominant peaks are not separated enough to be meaningful.
//
// The circular mean of the quadrupled orientations (quartered back down)
// locates the orthogonal pair of line directions as a whole, so two
// perpendicular families do not cancel each other out. Each orientation is
// then assigned to the nearer direction of that pair, and each family is
// refined by the circular mean of its doubled orientations (halved back
// down), which correctly averages line directions across the 0/pi
// wraparound. The larger family gives axis A. If no orientation lies
// nearer the orthogonal direction, axis B is axis A plus 90 degrees — a
// reasonable default for a planar chessboard pattern seen at any
// perspective short of edge-on.
func EstimateAxesFromOrientations(orientations []float64) (axisA, axisB float64) {
	if len(orientations) == 0 {
		return 0, math.Pi / 2
	}

	quadrupled := make([]float64, len(orientations))
	for i, o := range orientations {
		quadrupled[i] = 4 * o
	}
	axisA = wrapHalfCircle(stat.CircularMean(quadrupled, nil) / 4)

	ortho := wrapHalfCircle(axisA + math.Pi/2)
	var doubled, orthoDoubled []float64
	for _, o := range orientations {
		if angularDistHalfCircle(o, ortho) < angularDistHalfCircle(o, axisA) {
			orthoDoubled = append(orthoDoubled, 2*o)
		} else {
			doubled = append(doubled, 2*o)
		}
	}
	if len(orthoDoubled) > len(doubled) {
		doubled, orthoDoubled = orthoDoubled, doubled
	}
	axisA = wrapHalfCircle(stat.CircularMean(doubled, nil) / 2)
	if len(orthoDoubled) == 0 {
		return axisA, wrapHalfCircle(axisA + math.Pi/2)
	}
	axisB = wrapHalfCircle(stat.CircularMean(orthoDoubled, nil)/2 + 0)
	return axisA, axisB
}
