package gridgraph

import (
	"math"
	"sort"

	"github.com/quartzvision/calibtarget/corner"
	"github.com/quartzvision/calibtarget/geom"
)

// Params configures grid-graph construction.
type Params struct {
	MinSpacingPix          float64
	MaxSpacingPix          float64
	KNeighbors             int
	OrientationToleranceDeg float64
}

// DefaultParams returns the bracketed defaults from the configuration
// surface; MinSpacingPix/MaxSpacingPix have no universal default and must
// be set by the caller based on expected square size.
func DefaultParams() Params {
	return Params{KNeighbors: 8, OrientationToleranceDeg: 10}
}

// Axes describes the two dominant grid-axis directions, in clustering mode
// (use_orientation_clustering=true), used to validate candidate edge
// directions against the cluster each endpoint belongs to.
type Axes struct {
	A, B float64
	// UseClustering selects between clustering mode (edge direction must
	// be near axis A or axis B, and endpoints' cluster labels must be
	// consistent with the edge) and the non-clustering fallback mode (edge
	// direction must be near the 45-degree bisector of both endpoints'
	// orientations). In non-clustering mode A and B are corner-orientation
	// axes, and edges are classified against them rotated by 45 degrees.
	UseClustering bool
}

// Build constructs the grid graph for corners, given per-corner cluster
// assignments (ignored in non-clustering mode) and the two axis angles.
func Build(corners []corner.Corner, axes Axes, p Params) *Graph {
	g := &Graph{Corners: corners, adjacency: make([][4]neighborSlot, len(corners))}
	if len(corners) == 0 {
		return g
	}

	k := p.KNeighbors
	if k <= 0 {
		k = 8
	}
	tol := p.OrientationToleranceDeg * math.Pi / 180
	axisUnitA := geom.Point{math.Cos(axes.A), math.Sin(axes.A)}
	axisUnitB := geom.Point{math.Cos(axes.B), math.Sin(axes.B)}
	if !axes.UseClustering {
		// Bisector-mode edges run 45 degrees off the orientation axes, so
		// classify them against the axes rotated onto the edge directions.
		rotA := wrapHalfCircle(axes.A + math.Pi/4)
		rotB := wrapHalfCircle(axes.B + math.Pi/4)
		axisUnitA = geom.Point{math.Cos(rotA), math.Sin(rotA)}
		axisUnitB = geom.Point{math.Cos(rotB), math.Sin(rotB)}
	}

	for i := range corners {
		neighbors := kNearest(corners, i, k)
		for _, nb := range neighbors {
			j := nb.idx
			d := nb.dist
			if d < p.MinSpacingPix || d > p.MaxSpacingPix {
				continue
			}
			edge := geom.Sub(corners[j].Position, corners[i].Position)
			edgeUnit := normalize(edge)

			var deviation float64
			var ok bool
			if axes.UseClustering {
				deviation, ok = clusteringDeviation(corners[i], corners[j], edgeUnit, axisUnitA, axisUnitB, tol)
			} else {
				deviation, ok = bisectorDeviation(corners[i], corners[j], edgeUnit, tol)
			}
			if !ok {
				continue
			}

			dir := classifyDirection(edgeUnit, axisUnitA, axisUnitB)
			considerCandidate(g, i, j, dir, deviation, d)
			considerCandidate(g, j, i, dir.Opposite(), deviation, d)
		}
	}
	return g
}

type neighborCandidate struct {
	idx  int
	dist float64
}

// kNearest returns the k nearest corners to corners[i] by Euclidean
// distance, brute force — the corner clouds this module operates on (a few
// hundred to a few thousand corners per image) make an O(n^2) scan cheap
// enough that no spatial index is warranted.
func kNearest(corners []corner.Corner, i, k int) []neighborCandidate {
	cands := make([]neighborCandidate, 0, len(corners)-1)
	for j := range corners {
		if j == i {
			continue
		}
		dx := corners[j].Position[0] - corners[i].Position[0]
		dy := corners[j].Position[1] - corners[i].Position[1]
		cands = append(cands, neighborCandidate{idx: j, dist: math.Hypot(dx, dy)})
	}
	sort.Slice(cands, func(a, b int) bool { return cands[a].dist < cands[b].dist })
	if len(cands) > k {
		cands = cands[:k]
	}
	return cands
}

func normalize(p geom.Point) geom.Point {
	n := math.Hypot(p[0], p[1])
	if n == 0 {
		return geom.Point{0, 0}
	}
	return geom.Point{p[0] / n, p[1] / n}
}

// lineAngularDist returns the angular distance between a direction vector
// (not necessarily unit) and a line direction (mod pi, as an angle).
func lineAngularDist(dir geom.Point, lineAngle float64) float64 {
	edgeAngle := math.Atan2(dir[1], dir[0])
	d := math.Abs(wrapHalfCircle(edgeAngle) - wrapHalfCircle(lineAngle))
	if d > math.Pi/2 {
		d = math.Pi - d
	}
	return d
}

func wrapHalfCircle(a float64) float64 {
	a = math.Mod(a, math.Pi)
	if a < 0 {
		a += math.Pi
	}
	return a
}

// clusteringDeviation validates an edge against the two cluster axes: the
// edge direction must be close to axis A or axis B, and the two endpoints'
// cluster labels (when assigned) must agree with whichever axis the edge
// matched.
func clusteringDeviation(a, b corner.Corner, edgeUnit, axisA, axisB geom.Point, tol float64) (float64, bool) {
	distA := lineAngularDist(edgeUnit, math.Atan2(axisA[1], axisA[0]))
	distB := lineAngularDist(edgeUnit, math.Atan2(axisB[1], axisB[0]))

	tryAxis := func(dist float64, cluster corner.OrientationCluster) (float64, bool) {
		if dist > tol {
			return 0, false
		}
		if a.Cluster != corner.ClusterNone && a.Cluster != cluster {
			return 0, false
		}
		if b.Cluster != corner.ClusterNone && b.Cluster != cluster {
			return 0, false
		}
		return dist, true
	}

	if distA <= distB {
		if dev, ok := tryAxis(distA, corner.ClusterA); ok {
			return dev, true
		}
		return tryAxis(distB, corner.ClusterB)
	}
	if dev, ok := tryAxis(distB, corner.ClusterB); ok {
		return dev, true
	}
	return tryAxis(distA, corner.ClusterA)
}

// bisectorDeviation implements the non-clustering fallback: the edge
// direction must be close to the bisector (at ~45 degrees) of both
// endpoints' raw orientations.
func bisectorDeviation(a, b corner.Corner, edgeUnit geom.Point, tol float64) (float64, bool) {
	bisector := circularMeanOfTwo(a.Orientation, b.Orientation) + math.Pi/4
	dist := lineAngularDist(edgeUnit, bisector)
	if dist > tol {
		return 0, false
	}
	return dist, true
}

func circularMeanOfTwo(a, b float64) float64 {
	sx := math.Cos(2*a) + math.Cos(2*b)
	sy := math.Sin(2*a) + math.Sin(2*b)
	return wrapHalfCircle(math.Atan2(sy, sx) / 2)
}

// classifyDirection projects the edge direction onto the two axes and
// returns which of Right/Left/Up/Down it represents: the axis with the
// larger |projection| determines the dimension (axisA -> Right/Left,
// axisB -> Up/Down), and the sign of the projection determines polarity.
func classifyDirection(edgeUnit, axisA, axisB geom.Point) Dir {
	projA := geom.Dot(edgeUnit, axisA)
	projB := geom.Dot(edgeUnit, axisB)
	if math.Abs(projA) >= math.Abs(projB) {
		if projA >= 0 {
			return Right
		}
		return Left
	}
	if projB >= 0 {
		return Down
	}
	return Up
}

// considerCandidate keeps the best candidate for a (node, direction) slot:
// lowest angular deviation, ties broken by distance.
func considerCandidate(g *Graph, from, to int, dir Dir, deviation, distance float64) {
	cur := &g.adjacency[from][dir]
	if !cur.present ||
		deviation < cur.deviation ||
		(deviation == cur.deviation && distance < cur.distance) {
		cur.present = true
		cur.target = to
		cur.deviation = deviation
		cur.distance = distance
	}
}
