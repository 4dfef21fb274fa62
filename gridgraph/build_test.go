package gridgraph

import (
	"math"
	"testing"

	"github.com/quartzvision/calibtarget/corner"
	"github.com/quartzvision/calibtarget/geom"
)

func make3x3Grid(spacing float64) []corner.Corner {
	var corners []corner.Corner
	for j := 0; j < 3; j++ {
		for i := 0; i < 3; i++ {
			corners = append(corners, corner.Corner{
				Position: geom.Point{float64(i) * spacing, float64(j) * spacing},
				Cluster:  corner.ClusterNone,
				Strength: 1,
			})
		}
	}
	return corners
}

func TestBuildFourConnectedLattice(t *testing.T) {
	corners := make3x3Grid(10)
	axes := Axes{A: 0, B: math.Pi / 2, UseClustering: true}
	p := Params{MinSpacingPix: 5, MaxSpacingPix: 15, KNeighbors: 8, OrientationToleranceDeg: 10}
	g := Build(corners, axes, p)

	center := 4 // (1,1)
	right, ok := g.Neighbor(center, Right)
	if !ok || right != 5 {
		t.Errorf("Neighbor(center, Right) = (%d, %v), want (5, true)", right, ok)
	}
	left, ok := g.Neighbor(center, Left)
	if !ok || left != 3 {
		t.Errorf("Neighbor(center, Left) = (%d, %v), want (3, true)", left, ok)
	}
	up, ok := g.Neighbor(center, Up)
	if !ok || up != 1 {
		t.Errorf("Neighbor(center, Up) = (%d, %v), want (1, true)", up, ok)
	}
	down, ok := g.Neighbor(center, Down)
	if !ok || down != 7 {
		t.Errorf("Neighbor(center, Down) = (%d, %v), want (7, true)", down, ok)
	}
}

func TestBuildRejectsOutOfSpacingBand(t *testing.T) {
	corners := make3x3Grid(100) // spacing well outside the band below
	axes := Axes{A: 0, B: math.Pi / 2, UseClustering: true}
	p := Params{MinSpacingPix: 5, MaxSpacingPix: 15, KNeighbors: 8, OrientationToleranceDeg: 10}
	g := Build(corners, axes, p)
	if _, ok := g.Neighbor(4, Right); ok {
		t.Error("expected no neighbor when spacing exceeds MaxSpacingPix")
	}
}

func TestDirOppositeAndDelta(t *testing.T) {
	cases := []struct {
		d        Dir
		opposite Dir
		di, dj   int
	}{
		{Right, Left, 1, 0},
		{Left, Right, -1, 0},
		{Up, Down, 0, -1},
		{Down, Up, 0, 1},
	}
	for _, c := range cases {
		if got := c.d.Opposite(); got != c.opposite {
			t.Errorf("%v.Opposite() = %v, want %v", c.d, got, c.opposite)
		}
		di, dj := c.d.Delta()
		if di != c.di || dj != c.dj {
			t.Errorf("%v.Delta() = (%d,%d), want (%d,%d)", c.d, di, dj, c.di, c.dj)
		}
	}
}
