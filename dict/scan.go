package dict

import (
	"runtime"
	"sort"
	"sync"

	"github.com/quartzvision/calibtarget/corner"
	"github.com/quartzvision/calibtarget/geom"
)

// rotOffset is the per-rotation corner-indexing offset from spec.md 3: a
// marker detected with Rotation r sits at cell gc = gc0 + rotOffset(r),
// where gc0 (the cell's top-left corner index) is what CornersImg/
// CornersRect are always indexed by.
var rotOffset = [4]corner.GridCoords{{I: 0, J: 0}, {I: 1, J: 0}, {I: 1, J: 1}, {I: 0, J: 1}}

// RotOffset returns the grid offset associated with rotation r.
func RotOffset(r int) corner.GridCoords { return rotOffset[((r%4)+4)%4] }

// MarkerDetection is one decoded marker, indexed by the top-left corner
// (gc0) of the cell it was sampled from — never by its post-rotation cell
// coordinate gc, which is gc0 + RotOffset(Rotation).
type MarkerDetection struct {
	ID          int
	GC          corner.GridCoords // post-rotation cell coordinate
	GC0         corner.GridCoords // top-left corner index of the sampled cell
	Rotation    int
	Hamming     int
	Score       float64
	BorderScore float64
	Code        Code
	Inverted    bool
	CornersRect geom.Quad
	CornersImg  *geom.Quad
}

// markerScore combines hamming distance and border score into a single
// monotonic quality figure, stored as MarkerDetection.Score: lower
// hamming and higher border score both raise it.
func markerScore(hamming int, maxHamming int, borderScore float64) float64 {
	hammingQuality := 1.0
	if maxHamming > 0 {
		hammingQuality = 1.0 - float64(hamming)/float64(maxHamming+1)
	}
	return 0.5*hammingQuality + 0.5*borderScore
}

// decodeCell samples and decodes a single cell quad, trying the computed
// polarity and, if cfg.DedupByID, the inverted polarity too, keeping
// the inverted match only if it is strictly better (lower hamming); on a
// tie the computed polarity is kept.
func decodeCell(img *geom.GrayImage, quad geom.Quad, m Matcher, cfg ScanDecodeConfig) (MarkerDetection, bool) {
	sample, ok := SampleCellQuad(img, quad, m.Dict.BitsPerSide, cfg)
	if !ok {
		return MarkerDetection{}, false
	}

	id, rot, hamming, ok1 := m.Match(sample.Interior)
	inverted := false
	if cfg.DedupByID {
		id2, rot2, hamming2, ok2 := m.Match(sample.Inverted)
		if ok2 && (!ok1 || hamming2 < hamming) {
			id, rot, hamming, ok1, inverted = id2, rot2, hamming2, ok2, true
		}
	}
	if !ok1 {
		return MarkerDetection{}, false
	}

	code := sample.Interior
	if inverted {
		code = sample.Inverted
	}
	return MarkerDetection{
		ID:          id,
		Rotation:    rot,
		Hamming:     hamming,
		Score:       markerScore(hamming, m.MaxHamming, sample.BorderScore),
		BorderScore: sample.BorderScore,
		Code:        code,
		Inverted:    inverted,
		CornersRect: quad,
	}, true
}

// ScanDecodeMarkers iterates a regular grid of cells over a rectified
// image, one cell per (i,j) in [minI,maxI) x [minJ,maxJ), decoding each.
func ScanDecodeMarkers(view *geom.GrayImage, pxPerSquare float64, minI, minJ, maxI, maxJ int, m Matcher, cfg ScanDecodeConfig) []MarkerDetection {
	var dets []MarkerDetection
	for j := minJ; j < maxJ; j++ {
		for i := minI; i < maxI; i++ {
			x0, y0 := float64(i)*pxPerSquare, float64(j)*pxPerSquare
			quad := geom.Quad{
				{x0, y0}, {x0 + pxPerSquare, y0},
				{x0 + pxPerSquare, y0 + pxPerSquare}, {x0, y0 + pxPerSquare},
			}
			det, ok := decodeCell(view, quad, m, cfg)
			if !ok {
				continue
			}
			det.GC0 = corner.GridCoords{I: i, J: j}
			off := RotOffset(det.Rotation)
			det.GC = det.GC0.Add(off)
			imgQuad := quad
			det.CornersImg = &imgQuad
			dets = append(dets, det)
		}
	}
	return dets
}

// ScanDecodeMarkersInCells decodes per-cell image-space quads directly,
// avoiding a full rectified image and parallelizing across cells; results
// are reassembled in ascending (J, I) order regardless of completion
// order so output is deterministic.
func ScanDecodeMarkersInCells(img *geom.GrayImage, cellQuads map[corner.GridCoords]geom.Quad, m Matcher, cfg ScanDecodeConfig) []MarkerDetection {
	keys := make([]corner.GridCoords, 0, len(cellQuads))
	for k := range cellQuads {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].J != keys[b].J {
			return keys[a].J < keys[b].J
		}
		return keys[a].I < keys[b].I
	})

	results := make([]*MarkerDetection, len(keys))
	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	if workers > len(keys) {
		workers = len(keys)
	}
	if workers <= 1 {
		for idx, k := range keys {
			if det, ok := decodeCell(img, cellQuads[k], m, cfg); ok {
				det.GC0 = k
				off := RotOffset(det.Rotation)
				det.GC = det.GC0.Add(off)
				q := cellQuads[k]
				det.CornersImg = &q
				results[idx] = &det
			}
		}
	} else {
		var wg sync.WaitGroup
		jobs := make(chan int)
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for idx := range jobs {
					k := keys[idx]
					if det, ok := decodeCell(img, cellQuads[k], m, cfg); ok {
						det.GC0 = k
						off := RotOffset(det.Rotation)
						det.GC = det.GC0.Add(off)
						q := cellQuads[k]
						det.CornersImg = &q
						results[idx] = &det
					}
				}
			}()
		}
		for idx := range keys {
			jobs <- idx
		}
		close(jobs)
		wg.Wait()
	}

	out := make([]MarkerDetection, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}
