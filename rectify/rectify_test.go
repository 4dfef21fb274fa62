package rectify

import (
	"errors"
	"testing"

	"github.com/quartzvision/calibtarget/corner"
	"github.com/quartzvision/calibtarget/geom"
)

// frontoParallelCorners builds a 3x3 inner-corner grid whose image
// positions are an exact affine map of their grid coordinates: pos =
// (I,J)*scale + offset. That makes the board-to-image homography a pure
// translation, trivial to check without a full perspective setup.
func frontoParallelCorners(scale, offset float64) []corner.LabeledCorner {
	var corners []corner.LabeledCorner
	for j := 0; j < 3; j++ {
		for i := 0; i < 3; i++ {
			gc := corner.GridCoords{I: i, J: j}
			corners = append(corners, corner.LabeledCorner{
				Position: geom.Point{float64(i)*scale + offset, float64(j)*scale + offset},
				Grid:     &gc,
			})
		}
	}
	return corners
}

func TestFitGlobalProducesExpectedCanvasSize(t *testing.T) {
	corners := frontoParallelCorners(20, 10)
	src := geom.NewBlankGrayImage(200, 200)
	for y := 0; y < 200; y++ {
		for x := 0; x < 200; x++ {
			src.Set(x, y, 200)
		}
	}

	view, err := FitGlobal(corners, 20, 5, src)
	if err != nil {
		t.Fatalf("FitGlobal: %v", err)
	}
	if view.Pixels.Width != 50 || view.Pixels.Height != 50 {
		t.Errorf("canvas = %dx%d, want 50x50", view.Pixels.Width, view.Pixels.Height)
	}
	if v, _ := view.Pixels.At(25, 25); v != 200 {
		t.Errorf("warped pixel = %v, want 200", v)
	}
}

func TestFitGlobalMapperRecoversImagePoint(t *testing.T) {
	corners := frontoParallelCorners(20, 10)
	src := geom.NewBlankGrayImage(200, 200)
	view, err := FitGlobal(corners, 20, 5, src)
	if err != nil {
		t.Fatalf("FitGlobal: %v", err)
	}
	got, ok := view.Mapper.Map(geom.Point{5, 5})
	if !ok {
		t.Fatal("Map reported out of grid for a global mapper")
	}
	want := geom.Point{10, 10}
	if absF(got[0]-want[0]) > 1e-6 || absF(got[1]-want[1]) > 1e-6 {
		t.Errorf("Map(5,5) = %v, want %v", got, want)
	}
}

func TestFitGlobalRejectsTooFewCorners(t *testing.T) {
	corners := frontoParallelCorners(20, 10)[:3]
	src := geom.NewBlankGrayImage(200, 200)
	_, err := FitGlobal(corners, 20, 5, src)
	if !errors.Is(err, corner.ErrDegenerateGeometry) {
		t.Fatalf("err = %v, want ErrDegenerateGeometry", err)
	}
}

func TestFitMeshProducesOneHomographyPerCompleteCell(t *testing.T) {
	corners := frontoParallelCorners(20, 10)
	src := geom.NewBlankGrayImage(200, 200)
	for y := 0; y < 200; y++ {
		for x := 0; x < 200; x++ {
			src.Set(x, y, 150)
		}
	}

	view, err := FitMesh(corners, 20, src)
	if err != nil {
		t.Fatalf("FitMesh: %v", err)
	}
	if view.Pixels.Width != 40 || view.Pixels.Height != 40 {
		t.Errorf("canvas = %dx%d, want 40x40", view.Pixels.Width, view.Pixels.Height)
	}
	if v, _ := view.Pixels.At(10, 10); v != 150 {
		t.Errorf("warped pixel = %v, want 150", v)
	}

	got, inGrid := view.Mapper.Map(geom.Point{5, 5})
	if !inGrid {
		t.Error("Map(5,5) should land inside the known mesh")
	}
	want := geom.Point{15, 15}
	if absF(got[0]-want[0]) > 1e-6 || absF(got[1]-want[1]) > 1e-6 {
		t.Errorf("Map(5,5) = %v, want %v", got, want)
	}
}

func TestFitMeshFallsBackForOutOfGridQuery(t *testing.T) {
	corners := frontoParallelCorners(20, 10)
	src := geom.NewBlankGrayImage(200, 200)
	view, err := FitMesh(corners, 20, src)
	if err != nil {
		t.Fatalf("FitMesh: %v", err)
	}
	_, inGrid := view.Mapper.Map(geom.Point{1000, 1000})
	if inGrid {
		t.Error("far out-of-grid query should report inGrid=false")
	}
}

func TestFitMeshRejectsNoLabeledCorners(t *testing.T) {
	src := geom.NewBlankGrayImage(200, 200)
	_, err := FitMesh(nil, 20, src)
	if !errors.Is(err, corner.ErrDegenerateGeometry) {
		t.Fatalf("err = %v, want ErrDegenerateGeometry", err)
	}
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
