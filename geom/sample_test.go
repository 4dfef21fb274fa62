package geom

import "testing"

func TestSampleBilinearFExactPixel(t *testing.T) {
	img := NewGrayImage(2, 2, []uint8{10, 20, 30, 40})
	got := SampleBilinearF(img, 0.5, 0.5)
	if got != 10 {
		t.Errorf("SampleBilinearF at pixel center (0,0) = %v, want 10", got)
	}
}

func TestSampleBilinearFInterpolates(t *testing.T) {
	img := NewGrayImage(2, 2, []uint8{0, 100, 0, 100})
	// Midway between column 0 and 1 centers (x=0.5 and x=1.5) is x=1.0.
	got := SampleBilinearF(img, 1.0, 0.5)
	if got != 50 {
		t.Errorf("SampleBilinearF midpoint = %v, want 50", got)
	}
}

func TestSampleBilinearFOutOfBoundsIsZero(t *testing.T) {
	img := NewGrayImage(2, 2, []uint8{255, 255, 255, 255})
	got := SampleBilinearF(img, -10, -10)
	if got != 0 {
		t.Errorf("SampleBilinearF out of bounds = %v, want 0", got)
	}
}

func TestSampleBilinearU8ClampsToEdge(t *testing.T) {
	img := NewGrayImage(2, 2, []uint8{255, 255, 255, 255})
	got := SampleBilinearU8(img, -10, -10)
	if got != 255 {
		t.Errorf("SampleBilinearU8 out of bounds = %v, want edge-clamped 255", got)
	}
}

func TestGrayImageAtClamped(t *testing.T) {
	img := NewGrayImage(3, 3, []uint8{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	})
	if got := img.AtClamped(-1, -1); got != 1 {
		t.Errorf("AtClamped(-1,-1) = %v, want 1", got)
	}
	if got := img.AtClamped(10, 10); got != 9 {
		t.Errorf("AtClamped(10,10) = %v, want 9", got)
	}
	if got := img.AtClamped(1, 1); got != 5 {
		t.Errorf("AtClamped(1,1) = %v, want 5", got)
	}
}

func TestGrayImageAtOutOfBounds(t *testing.T) {
	img := NewBlankGrayImage(2, 2)
	if _, ok := img.At(5, 5); ok {
		t.Error("At(5,5) should report out of bounds")
	}
	if _, ok := img.At(0, 0); !ok {
		t.Error("At(0,0) should be in bounds")
	}
}

func TestPixelCenter(t *testing.T) {
	p := PixelCenter(3, 4)
	if p[0] != 3.5 || p[1] != 4.5 {
		t.Errorf("PixelCenter(3,4) = %v, want {3.5,4.5}", p)
	}
}

func TestQuadSignedAreaClockwise(t *testing.T) {
	q := Quad{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	if area := q.SignedArea(); area <= 0 {
		t.Errorf("TL,TR,BR,BL quad should have positive signed area, got %v", area)
	}
	if !q.IsClockwiseConvexish() {
		t.Error("TL,TR,BR,BL unit square should be clockwise-convexish")
	}
}

func TestQuadCounterClockwiseFails(t *testing.T) {
	q := Quad{{0, 0}, {0, 1}, {1, 1}, {1, 0}}
	if q.IsClockwiseConvexish() {
		t.Error("counter-clockwise quad should not be clockwise-convexish")
	}
}
