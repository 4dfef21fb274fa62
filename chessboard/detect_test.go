package chessboard

import (
	"errors"
	"math"
	"testing"

	"github.com/quartzvision/calibtarget/corner"
	"github.com/quartzvision/calibtarget/geom"
	"github.com/quartzvision/calibtarget/gridgraph"
)

// buildRow creates n collinear corners spaced px apart along the x axis,
// each carrying the same raw orientation. With UseOrientationClustering
// disabled, gridgraph's bisector fallback accepts an edge whose direction
// is near circularMeanOfTwo(a,b)+pi/4; giving every corner the same
// orientation of 3*pi/4 makes that bisector land on 0 radians, matching
// this row's horizontal edges.
func buildRow(n int, px float64) []corner.Corner {
	corners := make([]corner.Corner, n)
	for i := range corners {
		corners[i] = corner.Corner{
			Position:    geom.Point{float64(i) * px, 0},
			Orientation: 3 * math.Pi / 4,
			Cluster:     corner.ClusterNone,
			Strength:    1,
		}
	}
	return corners
}

func baseParams() Params {
	p := DefaultParams()
	p.UseOrientationClustering = false
	p.GridGraph = gridgraph.Params{MinSpacingPix: 5, MaxSpacingPix: 15, KNeighbors: 8, OrientationToleranceDeg: 10}
	return p
}

func TestDetectAssemblesRow(t *testing.T) {
	corners := buildRow(20, 10)
	res, err := Detect(corners, baseParams())
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if res.Detection.Kind != corner.Chessboard {
		t.Errorf("Kind = %v, want Chessboard", res.Detection.Kind)
	}
	if len(res.Detection.Corners) != 20 {
		t.Fatalf("got %d labeled corners, want 20", len(res.Detection.Corners))
	}
	for idx, lc := range res.Detection.Corners {
		if lc.Grid == nil {
			t.Fatalf("corner %d has no grid coordinate", idx)
		}
		if lc.Grid.J != 0 {
			t.Errorf("corner %d: J = %d, want 0", idx, lc.Grid.J)
		}
		if lc.Grid.I != idx {
			t.Errorf("corners not sorted by I: index %d has I=%d", idx, lc.Grid.I)
		}
	}
}

func TestDetectInsufficientCorners(t *testing.T) {
	corners := buildRow(5, 10)
	p := baseParams()
	p.MinCorners = 16
	_, err := Detect(corners, p)
	if !errors.Is(err, corner.ErrInsufficientCorners) {
		t.Fatalf("err = %v, want ErrInsufficientCorners", err)
	}
}

func TestDetectNoBoardFoundWithImpossibleSpacingBand(t *testing.T) {
	corners := buildRow(20, 10)
	p := baseParams()
	p.GridGraph.MinSpacingPix = 1000
	p.GridGraph.MaxSpacingPix = 1001
	_, err := Detect(corners, p)
	if !errors.Is(err, corner.ErrNoBoardFound) {
		t.Fatalf("err = %v, want ErrNoBoardFound", err)
	}
}

func TestDetectDropsLowStrengthCorners(t *testing.T) {
	corners := buildRow(20, 10)
	corners[0].Strength = 0
	p := baseParams()
	p.MinCornerStrength = 0.5
	p.MinCorners = 16
	res, err := Detect(corners, p)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if res.Detection.Stats.DroppedByStrength != 1 {
		t.Errorf("DroppedByStrength = %d, want 1", res.Detection.Stats.DroppedByStrength)
	}
}
