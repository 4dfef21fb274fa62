// Package orient recovers the two dominant grid-axis directions from a
// cloud of per-corner orientations defined modulo pi (line directions, not
// vectors).
package orient

import (
	"math"

	"github.com/quartzvision/calibtarget/corner"
)

// Params configures orientation clustering.
type Params struct {
	HistogramBins        int
	MinPeakSeparationDeg  float64
	OutlierToleranceDeg   float64
}

// DefaultParams returns the bracketed defaults from the configuration
// surface.
func DefaultParams() Params {
	return Params{
		HistogramBins:       36,
		MinPeakSeparationDeg: 20,
		OutlierToleranceDeg:  10,
	}
}

// Result holds the two recovered axis angles (in [0, pi)) and, for each
// input corner (by index), which axis it was assigned to.
type Result struct {
	AxisA, AxisB float64
	Clusters     []corner.OrientationCluster
	// UsedFallback reports whether the circular-mean fallback was used
	// (too few corners, or histogram peaks not separated enough) instead
	// of histogram clustering + k-means refinement. Downstream callers
	// that care about clustering-vs-bisector edge-validation mode should
	// treat a fallback result as "no clustering available".
	UsedFallback bool
}

// minCornersForHistogram below this count, histogram-peak clustering is
// unreliable; Cluster falls back to the circular-mean estimator.
const minCornersForHistogram = 8

// Cluster recovers the two dominant axes from orientations (each in
// [0, pi)) by building a histogram, finding its two tallest peaks subject
// to a minimum angular separation, and refining with two iterations of
// 1-D k-means (k=2) on the doubled angle (angle*2 mod 2pi) to avoid the
// wraparound a plain mean would suffer on a half-circle.
//
// If there are too few corners or the two histogram peaks are not
// separated enough to trust, Cluster defers to EstimateAxesFromOrientations
// instead.
func Cluster(orientations []float64, p Params) Result {
	if len(orientations) < minCornersForHistogram {
		return fallbackResult(orientations)
	}

	bins := p.HistogramBins
	if bins < 4 {
		bins = 4
	}
	hist := make([]int, bins)
	binWidth := math.Pi / float64(bins)
	for _, o := range orientations {
		b := int(wrapHalfCircle(o) / binWidth)
		if b >= bins {
			b = bins - 1
		}
		hist[b]++
	}

	peakA, peakB, ok := twoTallestPeaks(hist, binWidth, p.MinPeakSeparationDeg*math.Pi/180)
	if !ok {
		return fallbackResult(orientations)
	}

	axisA, axisB := peakA, peakB
	for iter := 0; iter < 2; iter++ {
		axisA, axisB = kmeansStep(orientations, axisA, axisB)
	}

	tol := p.OutlierToleranceDeg * math.Pi / 180
	clusters := make([]corner.OrientationCluster, len(orientations))
	for i, o := range orientations {
		da := angularDistHalfCircle(o, axisA)
		db := angularDistHalfCircle(o, axisB)
		switch {
		case da <= tol && da <= db:
			clusters[i] = corner.ClusterA
		case db <= tol && db < da:
			clusters[i] = corner.ClusterB
		default:
			clusters[i] = corner.ClusterNone
		}
	}
	return Result{AxisA: axisA, AxisB: axisB, Clusters: clusters}
}

// twoTallestPeaks returns the bin centers of the tallest non-empty bin in
// hist and of the tallest bin at least minSep radians (mod pi) away from
// it.
func twoTallestPeaks(hist []int, binWidth, minSep float64) (a, b float64, ok bool) {
	type peak struct {
		idx, count int
	}
	peaks := make([]peak, len(hist))
	for i, c := range hist {
		peaks[i] = peak{idx: i, count: c}
	}
	// simple selection of the tallest bin, then the tallest bin that is at
	// least minSep away (mod pi) from it.
	best := -1
	for i, pk := range peaks {
		if pk.count == 0 {
			continue
		}
		if best == -1 || pk.count > peaks[best].count {
			best = i
		}
	}
	if best == -1 {
		return 0, 0, false
	}
	second := -1
	centerOf := func(i int) float64 { return (float64(i) + 0.5) * binWidth }
	for i, pk := range peaks {
		if pk.count == 0 || i == best {
			continue
		}
		if angularDistHalfCircle(centerOf(i), centerOf(best)) < minSep {
			continue
		}
		if second == -1 || pk.count > peaks[second].count {
			second = i
		}
	}
	if second == -1 {
		return 0, 0, false
	}
	return centerOf(best), centerOf(second), true
}

// kmeansStep performs one assignment+update pass of 1-D k-means (k=2) on
// the unit half-circle, using angle doubling so that angles near 0 and
// near pi (which represent the same line direction) are adjacent in the
// space the mean is taken over.
func kmeansStep(orientations []float64, a, b float64) (float64, float64) {
	var sumSinA, sumCosA, sumSinB, sumCosB float64
	var nA, nB int
	for _, o := range orientations {
		if angularDistHalfCircle(o, a) <= angularDistHalfCircle(o, b) {
			sumSinA += math.Sin(2 * o)
			sumCosA += math.Cos(2 * o)
			nA++
		} else {
			sumSinB += math.Sin(2 * o)
			sumCosB += math.Cos(2 * o)
			nB++
		}
	}
	newA, newB := a, b
	if nA > 0 {
		newA = wrapHalfCircle(math.Atan2(sumSinA, sumCosA) / 2)
	}
	if nB > 0 {
		newB = wrapHalfCircle(math.Atan2(sumSinB, sumCosB) / 2)
	}
	return newA, newB
}

// wrapHalfCircle folds an angle into [0, pi).
func wrapHalfCircle(a float64) float64 {
	const pi = math.Pi
	a = math.Mod(a, pi)
	if a < 0 {
		a += pi
	}
	return a
}

// angularDistHalfCircle returns the smallest angular distance between two
// line directions defined modulo pi.
func angularDistHalfCircle(a, b float64) float64 {
	d := math.Abs(wrapHalfCircle(a) - wrapHalfCircle(b))
	if d > math.Pi/2 {
		d = math.Pi - d
	}
	return d
}

func fallbackResult(orientations []float64) Result {
	axisA, axisB := EstimateAxesFromOrientations(orientations)
	clusters := make([]corner.OrientationCluster, len(orientations))
	for i := range clusters {
		clusters[i] = corner.ClusterNone
	}
	return Result{AxisA: axisA, AxisB: axisB, Clusters: clusters, UsedFallback: true}
}
