package chessboard

import (
	"fmt"

	"github.com/quartzvision/calibtarget/corner"
	"github.com/quartzvision/calibtarget/gridgraph"
	"github.com/quartzvision/calibtarget/orient"
)

// Debug carries optional introspection data, populated only when
// Params.CollectDebug is set.
type Debug struct {
	OrientationAxisA, OrientationAxisB float64
	UsedClusteringFallback             bool
	ComponentSizes                     []int
}

// Result is the outcome of a Detect call: the accepted detection plus
// optional debug data. On failure, Detection is the zero value and the
// error returned alongside it names why — it always wraps one of the
// corner.Err* sentinels.
type Result struct {
	Detection corner.TargetDetection
	Debug     *Debug
}

// Detect assembles corners into an indexed chessboard grid. It never
// panics on noisy input: every expected failure mode returns a wrapped
// corner.Err* sentinel.
func Detect(corners []corner.Corner, p Params) (Result, error) {
	survivors := make([]corner.Corner, 0, len(corners))
	for _, c := range corners {
		if c.Strength >= p.MinCornerStrength {
			survivors = append(survivors, c)
		}
	}
	stats := corner.Stats{CornersIn: len(corners), DroppedByStrength: len(corners) - len(survivors)}

	if len(survivors) < p.MinCorners {
		p.Logger.Debug().Int("survivors", len(survivors)).Int("need", p.MinCorners).Msg("insufficient corners")
		return Result{}, fmt.Errorf("chessboard: %d corners survive strength filter, need %d: %w",
			len(survivors), p.MinCorners, corner.ErrInsufficientCorners)
	}

	orientations := make([]float64, len(survivors))
	for i, c := range survivors {
		orientations[i] = c.Orientation
	}

	var axes gridgraph.Axes
	var dbg *Debug
	if p.UseOrientationClustering {
		res := orient.Cluster(orientations, p.Orientation)
		for i := range survivors {
			survivors[i].Cluster = res.Clusters[i]
		}
		axes = gridgraph.Axes{A: res.AxisA, B: res.AxisB, UseClustering: !res.UsedFallback}
		if p.CollectDebug {
			dbg = &Debug{OrientationAxisA: res.AxisA, OrientationAxisB: res.AxisB, UsedClusteringFallback: res.UsedFallback}
		}
	} else {
		a, b := orient.EstimateAxesFromOrientations(orientations)
		axes = gridgraph.Axes{A: a, B: b, UseClustering: false}
		if p.CollectDebug {
			dbg = &Debug{OrientationAxisA: a, OrientationAxisB: b, UsedClusteringFallback: true}
		}
	}
	stats.SurvivedClustering = len(survivors)

	graph := gridgraph.Build(survivors, axes, p.GridGraph)

	components := findComponents(graph)
	if dbg != nil {
		for _, comp := range components {
			dbg.ComponentSizes = append(dbg.ComponentSizes, len(comp))
		}
	}

	best, bestLabels, bestScoreOK := selectBestComponent(graph, components, p)
	if !bestScoreOK {
		p.Logger.Debug().Int("components", len(components)).Msg("no component met acceptance criteria")
		return Result{}, fmt.Errorf("chessboard: no component met acceptance criteria: %w", corner.ErrNoBoardFound)
	}

	labeled := make([]corner.LabeledCorner, 0, len(best))
	for _, idx := range best {
		gc := bestLabels[idx]
		labeled = append(labeled, corner.LabeledCorner{
			Position: survivors[idx].Position,
			Grid:     &gc,
			Score:    survivors[idx].Strength,
		})
	}
	stats.FinalLabeled = len(labeled)

	det := corner.NewDetection(corner.Chessboard, labeled, stats)
	p.Logger.Debug().Int("labeled", len(labeled)).Msg("chessboard assembled")
	return Result{Detection: det, Debug: dbg}, nil
}

// findComponents returns the weakly-connected components of graph as
// lists of node indices, via BFS over the 4-directional adjacency.
func findComponents(graph *gridgraph.Graph) [][]int {
	n := graph.NumNodes()
	visited := make([]bool, n)
	var components [][]int
	for start := 0; start < n; start++ {
		if visited[start] {
			continue
		}
		queue := []int{start}
		visited[start] = true
		var comp []int
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			comp = append(comp, cur)
			for _, d := range [4]gridgraph.Dir{gridgraph.Right, gridgraph.Left, gridgraph.Up, gridgraph.Down} {
				if nb, ok := graph.Neighbor(cur, d); ok && !visited[nb] {
					visited[nb] = true
					queue = append(queue, nb)
				}
			}
		}
		components = append(components, comp)
	}
	return components
}

// assignGridCoords BFS-labels a single component starting from an
// arbitrary seed assigned (0,0). It returns the label map and false if the
// component is inconsistent (some corner would receive two different grid
// labels via different BFS paths).
func assignGridCoords(graph *gridgraph.Graph, comp []int) (map[int]corner.GridCoords, bool) {
	labels := make(map[int]corner.GridCoords, len(comp))
	if len(comp) == 0 {
		return labels, true
	}
	seed := comp[0]
	labels[seed] = corner.GridCoords{I: 0, J: 0}
	queue := []int{seed}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		curGC := labels[cur]
		for _, d := range [4]gridgraph.Dir{gridgraph.Right, gridgraph.Left, gridgraph.Up, gridgraph.Down} {
			nb, ok := graph.Neighbor(cur, d)
			if !ok {
				continue
			}
			di, dj := d.Delta()
			want := corner.GridCoords{I: curGC.I + di, J: curGC.J + dj}
			if existing, seen := labels[nb]; seen {
				if existing != want {
					return labels, false
				}
				continue
			}
			labels[nb] = want
			queue = append(queue, nb)
		}
	}
	return labels, true
}

// candidate is one accepted, normalized component ready for scoring.
type candidate struct {
	nodes        []int
	labels       map[int]corner.GridCoords
	completeness float64
}

// selectBestComponent evaluates every weakly connected component against
// the acceptance criteria in spec.md 4.4 step 6, and returns the indices
// and grid labels of the best-scoring accepted component (by completeness,
// then size).
func selectBestComponent(graph *gridgraph.Graph, components [][]int, p Params) ([]int, map[int]corner.GridCoords, bool) {
	var best *candidate
	for _, comp := range components {
		labels, ok := assignGridCoords(graph, comp)
		if !ok {
			continue
		}
		if len(comp) < p.MinCorners {
			continue
		}

		minI, minJ := labels[comp[0]].I, labels[comp[0]].J
		maxI, maxJ := minI, minJ
		for _, idx := range comp {
			gc := labels[idx]
			if gc.I < minI {
				minI = gc.I
			}
			if gc.I > maxI {
				maxI = gc.I
			}
			if gc.J < minJ {
				minJ = gc.J
			}
			if gc.J > maxJ {
				maxJ = gc.J
			}
		}
		for idx := range labels {
			gc := labels[idx]
			labels[idx] = corner.GridCoords{I: gc.I - minI, J: gc.J - minJ}
		}
		w := maxI - minI + 1
		h := maxJ - minJ + 1
		completeness := float64(len(comp)) / float64(w*h)
		if completeness < p.CompletenessThreshold {
			continue
		}
		if p.ExpectedRows != nil && p.ExpectedCols != nil {
			rows, cols := *p.ExpectedRows, *p.ExpectedCols
			matchesDirect := w == cols && h == rows
			matchesSwapped := w == rows && h == cols
			if !matchesDirect && !matchesSwapped {
				continue
			}
		}

		cand := &candidate{nodes: comp, labels: labels, completeness: completeness}
		if best == nil || cand.completeness > best.completeness ||
			(cand.completeness == best.completeness && len(cand.nodes) > len(best.nodes)) {
			best = cand
		}
	}
	if best == nil {
		return nil, nil, false
	}
	return best.nodes, best.labels, true
}
